package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	controller "github.com/Itish41/COIDashboard/controller"
	"github.com/Itish41/COIDashboard/initializers"
	"github.com/Itish41/COIDashboard/metrics"
	middleware "github.com/Itish41/COIDashboard/middleware"
	"github.com/Itish41/COIDashboard/scheduler"
	service "github.com/Itish41/COIDashboard/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := initializers.LoadConfig()
	if err != nil {
		logrus.Fatalf("[CRITICAL] Failed to load config: %s", err)
	}
	log := initializers.InitLogger(cfg)

	db, err := initializers.ConnectDB(cfg)
	if err != nil {
		log.Fatalf("[CRITICAL] Failed to initialize database connection: %s", err)
	}
	if err := initializers.Migrate(db, cfg.DBDriver); err != nil {
		log.Fatalf("[CRITICAL] Failed to run database migrations: %s", err)
	}

	persister, err := service.NewIndexingPersister(
		service.NewKVPersister(db, cfg.StorageKey),
		cfg.ElasticsearchURL,
		initializers.Component("search-index"),
	)
	if err != nil {
		log.Warnf("Elasticsearch mirror disabled: %v", err)
		persister = service.NewKVPersister(db, cfg.StorageKey)
	}

	var notifier service.ReminderNotifier = service.NewLogNotifier(initializers.Component("notifier"))
	if cfg.SMTPEnabled() {
		notifier = service.NewSMTPNotifier(service.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		}, initializers.Component("notifier"))
	}

	storeMetrics := metrics.New()
	ctx := context.Background()
	store := service.NewCOIStore(ctx, persister,
		service.WithLogger(initializers.Component("store")),
		service.WithNotifier(notifier),
		service.WithObserver(storeMetrics),
	)

	view, err := service.NewDashboardView(store, cfg.SearchDebounce, cfg.DefaultPageSize)
	if err != nil {
		log.Fatalf("[CRITICAL] Invalid DEFAULT_PAGE_SIZE %d: %s", cfg.DefaultPageSize, err)
	}
	defer view.Close()

	var archiver service.Archiver = service.NewDirArchiver(cfg.ExportArchiveDir)
	if cfg.S3Enabled() {
		s3Archiver, err := service.NewS3Archiver(service.S3Config{
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
		}, initializers.Component("archiver"))
		if err != nil {
			log.Warnf("S3 archiving disabled, using %s: %v", cfg.ExportArchiveDir, err)
		} else {
			archiver = s3Archiver
		}
	}
	exportScheduler := scheduler.NewExportScheduler(store, archiver, initializers.Component("scheduler"), cfg.ExportCronSpec)
	if err := exportScheduler.Start(); err != nil {
		log.Fatalf("[CRITICAL] Failed to start export scheduler: %s", err)
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(initializers.Component("http")))
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.GlobalRateLimiter.Limit())

	controller.RegisterRoutes(router,
		controller.NewCOIController(store),
		controller.NewDashboardController(view),
		storeMetrics.Handler(),
	)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}
	go func() {
		log.Infof("Listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[CRITICAL] Server failed: %s", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down...")
	exportScheduler.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Server shutdown failed: %v", err)
	}
	if indexer, ok := persister.(*service.IndexingPersister); ok {
		if err := indexer.Close(shutdownCtx); err != nil {
			log.Errorf("Search index flush failed: %v", err)
		}
	}
}
