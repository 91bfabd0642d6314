package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/marcuseden/slavajewlery-sub001/internal/models"
)

type createOrderRequest struct {
	DesignID string `json:"designId" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,min=1"`
}

type orderResponse struct {
	ID              string    `json:"id"`
	DesignID        string    `json:"designId"`
	Quantity        int       `json:"quantity"`
	UnitPriceCents  int64     `json:"unitPriceCents"`
	SubtotalCents   int64     `json:"subtotalCents"`
	CommissionCents int64     `json:"commissionCents"`
	TotalCents      int64     `json:"totalCents"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"createdAt"`
}

func toOrderResponse(order models.Order) orderResponse {
	return orderResponse{
		ID:              order.ID,
		DesignID:        order.DesignID,
		Quantity:        order.Quantity,
		UnitPriceCents:  order.UnitPriceCents,
		SubtotalCents:   order.SubtotalCents,
		CommissionCents: order.CommissionCents,
		TotalCents:      order.TotalCents,
		Status:          string(order.Status),
		CreatedAt:       order.CreatedAt,
	}
}

func (h HandlerSet) CreateOrder(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.orderService.Create(c.Request.Context(), user.ID, req.DesignID, req.Quantity)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"order": toOrderResponse(order)})
}

func (h HandlerSet) ListOrders(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	orders, err := h.orderService.List(c.Request.Context(), user.ID, limit, offset)
	if err != nil {
		h.respondError(c, err)
		return
	}

	out := make([]orderResponse, 0, len(orders))
	for _, order := range orders {
		out = append(out, toOrderResponse(order))
	}
	c.JSON(http.StatusOK, gin.H{"orders": out})
}
