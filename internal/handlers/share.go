package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type issueShareRequest struct {
	DesignID   string   `json:"designId" binding:"required"`
	ImagePaths []string `json:"imagePaths" binding:"required"`
}

type issueShareResponse struct {
	Success    bool      `json:"success"`
	ShareURL   string    `json:"shareUrl"`
	ShareToken string    `json:"shareToken"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

func (h HandlerSet) IssueShareLink(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req issueShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	issue, err := h.shareService.Issue(c.Request.Context(), user.ID, req.DesignID, req.ImagePaths)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, issueShareResponse{
		Success:    true,
		ShareURL:   issue.URL,
		ShareToken: issue.Token,
		ExpiresAt:  issue.ExpiresAt,
	})
}

type resolveShareResponse struct {
	Success   bool      `json:"success"`
	DesignID  string    `json:"designId"`
	Images    []string  `json:"images"`
	ImageURLs []string  `json:"imageUrls"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ResolveShareLink is the public, capability-style endpoint: the token is
// the only credential.
func (h HandlerSet) ResolveShareLink(c *gin.Context) {
	view, err := h.shareService.Resolve(c.Request.Context(), c.Param("token"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resolveShareResponse{
		Success:   true,
		DesignID:  view.DesignID,
		Images:    view.ImagePaths,
		ImageURLs: view.ImageURLs,
		ExpiresAt: view.ExpiresAt,
	})
}
