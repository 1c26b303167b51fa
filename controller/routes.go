package controller

import (
	"net/http"

	middleware "github.com/Itish41/COIDashboard/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the dashboard API on router. metricsHandler may be nil.
func RegisterRoutes(router *gin.Engine, cois *COIController, dashboard *DashboardController, metricsHandler http.Handler) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	router.GET("/cois", cois.ListCOIs)
	router.POST("/cois", cois.CreateCOI)
	router.PUT("/cois/:id", cois.UpdateCOI)
	router.PATCH("/cois/:id/status", cois.UpdateStatus)
	router.DELETE("/cois/:id", cois.DeleteCOI)
	router.POST("/cois/:id/select", cois.ToggleSelect)
	router.POST("/cois/select-all", cois.SelectAll)

	// Sensitive routes with stricter rate limiting
	router.POST("/reminders", middleware.StrictRateLimiter.Limit(), cois.SendReminders)
	router.POST("/cois/:id/reminder", middleware.StrictRateLimiter.Limit(), cois.SendReminder)
	router.GET("/export", middleware.StrictRateLimiter.Limit(), cois.ExportCSV)

	router.GET("/dashboard", dashboard.GetDashboard)
	router.PUT("/dashboard/filters", dashboard.SetFilters)
	router.POST("/dashboard/sort", dashboard.ToggleSort)
	router.PUT("/dashboard/page", dashboard.SetPage)
	router.PUT("/dashboard/page-size", dashboard.SetPageSize)

	if metricsHandler != nil {
		router.GET("/metrics", gin.WrapH(metricsHandler))
	}
}
