package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/marcuseden/slavajewlery-sub001/internal/models"
	"github.com/marcuseden/slavajewlery-sub001/internal/service"
)

type createDesignRequest struct {
	Prompt     string   `json:"prompt" binding:"required"`
	Title      string   `json:"title"`
	Tags       []string `json:"tags"`
	PriceCents int64    `json:"priceCents"`
}

type imageRefResponse struct {
	ViewIndex int    `json:"viewIndex"`
	Label     string `json:"label"`
	Path      string `json:"path"`
	URL       string `json:"url"`
}

type designResponse struct {
	ID         string             `json:"id"`
	Prompt     string             `json:"prompt"`
	Title      string             `json:"title"`
	Tags       []string           `json:"tags"`
	PriceCents int64              `json:"priceCents"`
	Status     string             `json:"status"`
	Images     []imageRefResponse `json:"images"`
	CreatedAt  time.Time          `json:"createdAt"`
}

func toDesignResponse(design models.Design) designResponse {
	images := make([]imageRefResponse, 0, len(design.Images))
	for _, ref := range design.Images {
		images = append(images, imageRefResponse{
			ViewIndex: ref.ViewIndex,
			Label:     ref.Label,
			Path:      ref.ObjectKey,
			URL:       ref.PublicURL,
		})
	}
	return designResponse{
		ID:         design.ID,
		Prompt:     design.Prompt,
		Title:      design.Title,
		Tags:       design.Tags,
		PriceCents: design.PriceCents,
		Status:     string(design.Status),
		Images:     images,
		CreatedAt:  design.CreatedAt,
	}
}

func (h HandlerSet) CreateDesign(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req createDesignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	design, err := h.designService.Create(c.Request.Context(), service.CreateDesignInput{
		OwnerID:    user.ID,
		Prompt:     req.Prompt,
		Title:      req.Title,
		Tags:       req.Tags,
		PriceCents: req.PriceCents,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"design": toDesignResponse(design)})
}

func (h HandlerSet) GetDesign(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	design, err := h.designService.Get(c.Request.Context(), user.ID, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"design": toDesignResponse(design)})
}

func (h HandlerSet) ListDesigns(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	designs, err := h.designService.List(c.Request.Context(), user.ID, limit, offset)
	if err != nil {
		h.respondError(c, err)
		return
	}

	out := make([]designResponse, 0, len(designs))
	for _, design := range designs {
		out = append(out, toDesignResponse(design))
	}
	c.JSON(http.StatusOK, gin.H{"designs": out})
}

type generateImagesRequest struct {
	Views []struct {
		Index int    `json:"index"`
		Label string `json:"label" binding:"required"`
	} `json:"views" binding:"required,min=1,dive"`
}

type viewOutcomeResponse struct {
	ViewIndex int    `json:"viewIndex"`
	Label     string `json:"label"`
	Success   bool   `json:"success"`
	Path      string `json:"path,omitempty"`
	URL       string `json:"url,omitempty"`
	Error     string `json:"error,omitempty"`
}

func (h HandlerSet) GenerateDesignImages(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req generateImagesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	views := make([]service.ViewRequest, len(req.Views))
	for i, v := range req.Views {
		views[i] = service.ViewRequest{Index: v.Index, Label: v.Label}
	}

	outcomes, err := h.designService.GenerateImages(c.Request.Context(), user.ID, c.Param("id"), views)
	if err != nil {
		h.respondError(c, err)
		return
	}

	out := make([]viewOutcomeResponse, len(outcomes))
	for i, outcome := range outcomes {
		out[i] = viewOutcomeResponse{
			ViewIndex: outcome.Index,
			Label:     outcome.Label,
			Success:   outcome.Err == nil,
		}
		if outcome.Err != nil {
			out[i].Error = outcome.Err.Error()
			continue
		}
		out[i].Path = outcome.Ref.ObjectKey
		out[i].URL = outcome.Ref.PublicURL
	}

	c.JSON(http.StatusOK, gin.H{"results": out})
}
