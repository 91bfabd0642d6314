package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ExportData streams the full data-subject export as a JSON attachment. The
// document materializes before anything is written; a failed aggregation
// returns a 500 and no partial export.
func (h HandlerSet) ExportData(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	doc, err := h.privacyService.Export(c.Request.Context(), user.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		h.respondError(c, err)
		return
	}

	filename := fmt.Sprintf("user-data-%s-%s.json", user.ID, doc.GeneratedAt.Format(time.RFC3339))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("X-Content-Type-Options", "nosniff")
	c.Data(http.StatusOK, "application/json; charset=utf-8", payload)
}

type deleteAccountRequest struct {
	Immediate bool   `json:"immediate"`
	Reason    string `json:"reason"`
}

func (h HandlerSet) RequestDeletion(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req deleteAccountRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	outcome, err := h.privacyService.RequestDeletion(c.Request.Context(), user.ID, req.Immediate, req.Reason)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if outcome.DeletedAt != nil {
		c.JSON(http.StatusOK, gin.H{
			"message":   "account deleted",
			"deletedAt": outcome.DeletedAt,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "account deletion scheduled",
		"scheduledFor": outcome.ScheduledFor,
	})
}

func (h HandlerSet) CancelDeletion(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.privacyService.CancelDeletion(c.Request.Context(), user.ID); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "account deletion cancelled"})
}

func (h HandlerSet) DeletionStatus(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	status, err := h.privacyService.Status(c.Request.Context(), user.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"deletionRequested": status.Requested,
		"scheduledFor":      status.ScheduledFor,
		"canCancel":         status.CanCancel,
	})
}
