package controller

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	service "github.com/Itish41/COIDashboard/service"

	"github.com/gin-gonic/gin"
)

// ExportCSV downloads the full unfiltered collection as CSV.
func (cc *COIController) ExportCSV(c *gin.Context) {
	var buf bytes.Buffer
	if err := service.ExportCSV(&buf, cc.store.Snapshot()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	filename := service.ExportFileName(time.Now())
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, service.CSVContentType, buf.Bytes())
}
