package controller

import (
	"errors"
	"net/http"

	model "github.com/Itish41/COIDashboard/models"
	service "github.com/Itish41/COIDashboard/service"

	"github.com/gin-gonic/gin"
)

// COIController serves record CRUD, selection and reminders.
type COIController struct {
	store *service.COIStore
}

func NewCOIController(store *service.COIStore) *COIController {
	return &COIController{store: store}
}

// ListCOIs returns the full unfiltered collection, newest first.
func (cc *COIController) ListCOIs(c *gin.Context) {
	cois := cc.store.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"cois":  cois,
		"total": len(cois),
	})
}

func (cc *COIController) CreateCOI(c *gin.Context) {
	var in model.COIInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	coi, err := cc.store.Add(c.Request.Context(), in)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"coi": coi})
}

func (cc *COIController) UpdateCOI(c *gin.Context) {
	var upd model.COIUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	cc.respondUpdate(c, func() (model.COI, bool, error) {
		return cc.store.Update(c.Request.Context(), c.Param("id"), upd)
	})
}

type statusRequest struct {
	Status model.COIStatus `json:"status" binding:"required"`
}

// UpdateStatus changes only the approval status.
func (cc *COIController) UpdateStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	cc.respondUpdate(c, func() (model.COI, bool, error) {
		return cc.store.SetStatus(c.Request.Context(), c.Param("id"), req.Status)
	})
}

func (cc *COIController) respondUpdate(c *gin.Context, update func() (model.COI, bool, error)) {
	coi, found, err := update()
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "COI not found"})
		return
	}
	if err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"coi": coi})
}

// DeleteCOI is idempotent: deleting an unknown id succeeds.
func (cc *COIController) DeleteCOI(c *gin.Context) {
	if err := cc.store.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "COI deleted"})
}

func (cc *COIController) ToggleSelect(c *gin.Context) {
	id := c.Param("id")
	if _, ok := cc.store.Get(id); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "COI not found"})
		return
	}
	selected := cc.store.ToggleSelect(id)
	c.JSON(http.StatusOK, gin.H{
		"id":        id,
		"selected":  selected,
		"selection": cc.store.Selection(),
	})
}

type selectAllRequest struct {
	Select *bool `json:"select" binding:"required"`
}

func (cc *COIController) SelectAll(c *gin.Context) {
	var req selectAllRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	cc.store.SelectAll(*req.Select)
	c.JSON(http.StatusOK, gin.H{"selection": cc.store.Selection()})
}

type remindersRequest struct {
	IDs []string `json:"ids"`
}

// SendReminders reminds the given ids, or the current selection when none are given.
func (cc *COIController) SendReminders(c *gin.Context) {
	var req remindersRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
			return
		}
	}
	ids := req.IDs
	if len(ids) == 0 {
		ids = cc.store.Selection()
	}
	cc.sendReminders(c, ids)
}

// SendReminder reminds a single record.
func (cc *COIController) SendReminder(c *gin.Context) {
	id := c.Param("id")
	if _, ok := cc.store.Get(id); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "COI not found"})
		return
	}
	cc.sendReminders(c, []string{id})
}

func (cc *COIController) sendReminders(c *gin.Context, ids []string) {
	n, err := cc.store.SendReminders(c.Request.Context(), ids)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "Reminders sent",
		"reminded": n,
	})
}

func respondStoreError(c *gin.Context, err error) {
	var ve *service.ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": ve.Fields})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
