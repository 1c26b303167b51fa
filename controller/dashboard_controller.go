package controller

import (
	"errors"
	"net/http"

	model "github.com/Itish41/COIDashboard/models"
	service "github.com/Itish41/COIDashboard/service"

	"github.com/gin-gonic/gin"
)

// DashboardController serves the filtered, sorted and paginated table view.
type DashboardController struct {
	view *service.DashboardView
}

func NewDashboardController(view *service.DashboardView) *DashboardController {
	return &DashboardController{view: view}
}

func (dc *DashboardController) GetDashboard(c *gin.Context) {
	c.JSON(http.StatusOK, dc.view.Snapshot())
}

// SetFilters stages new filters. With ?immediate=true they apply before the response.
func (dc *DashboardController) SetFilters(c *gin.Context) {
	var filters model.COIFilters
	if err := c.ShouldBindJSON(&filters); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if err := dc.view.SetFilters(filters); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if c.Query("immediate") == "true" {
		dc.view.FlushFilters()
		c.JSON(http.StatusOK, dc.view.Snapshot())
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "Filters scheduled"})
}

type sortRequest struct {
	Column model.SortColumn `json:"column" binding:"required"`
}

func (dc *DashboardController) ToggleSort(c *gin.Context) {
	var req sortRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	sortCfg, err := dc.view.ToggleSort(req.Column)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sort": sortCfg})
}

type pageRequest struct {
	Page int `json:"page" binding:"required"`
}

func (dc *DashboardController) SetPage(c *gin.Context) {
	var req pageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if err := dc.view.SetPage(req.Page); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, service.ErrPageOutOfRange) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dc.view.Snapshot())
}

type pageSizeRequest struct {
	PageSize int `json:"pageSize" binding:"required"`
}

func (dc *DashboardController) SetPageSize(c *gin.Context) {
	var req pageSizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if err := dc.view.SetPageSize(req.PageSize); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dc.view.Snapshot())
}
