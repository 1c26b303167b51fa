package scheduler

import (
	"context"
	"fmt"
	"time"

	services "github.com/Itish41/COIDashboard/service"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const exportTimeout = 2 * time.Minute

// ExportScheduler archives a CSV export of the full collection on a cron schedule.
type ExportScheduler struct {
	cronEngine *cron.Cron
	store      *services.COIStore
	archiver   services.Archiver
	logger     *logrus.Entry
	cronSpec   string
}

func NewExportScheduler(store *services.COIStore, archiver services.Archiver, logger *logrus.Entry, cronSpec string) *ExportScheduler {
	return &ExportScheduler{
		cronEngine: cron.New(cron.WithLocation(time.Local)),
		store:      store,
		archiver:   archiver,
		logger:     logger,
		cronSpec:   cronSpec,
	}
}

// Start registers the export job and starts the cron engine.
func (s *ExportScheduler) Start() error {
	if _, err := s.cronEngine.AddFunc(s.cronSpec, s.RunExport); err != nil {
		return fmt.Errorf("could not add export cron job %q: %w", s.cronSpec, err)
	}
	s.cronEngine.Start()
	s.logger.WithField("spec", s.cronSpec).Info("Export scheduler started")
	return nil
}

// RunExport performs one archive run. Failures are logged.
func (s *ExportScheduler) RunExport() {
	ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
	defer cancel()

	location, err := services.ArchiveExport(ctx, s.store, s.archiver, time.Now())
	if err != nil {
		s.logger.Errorf("Export archive failed: %v", err)
		return
	}
	s.logger.WithField("location", location).Info("Export archived")
}

// Stop stops the cron engine and waits for a running job to finish.
func (s *ExportScheduler) Stop() {
	s.logger.Info("Stopping export scheduler...")
	ctx := s.cronEngine.Stop()
	<-ctx.Done()
	s.logger.Info("Export scheduler stopped")
}
