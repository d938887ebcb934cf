package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ovapp/sales-ledger/internal/service"
)

type createOrderRequest struct {
	ContractID   int64   `json:"contract_id" binding:"required"`
	Volume       float64 `json:"volume" binding:"required"`
	Price        float64 `json:"price"`
	OrderDate    string  `json:"order_date"`
	DeliveryDate string  `json:"delivery_date"`
	Notes        string  `json:"notes"`
}

type updateOrderRequest struct {
	Volume       *float64 `json:"volume"`
	Price        *float64 `json:"price"`
	OrderDate    *string  `json:"order_date"`
	DeliveryDate *string  `json:"delivery_date"`
	Notes        *string  `json:"notes"`
}

type deliverOrderRequest struct {
	DeliveryDate string `json:"delivery_date"`
}

func (h *Handler) createOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := service.CreateOrderInput{
		ContractID: req.ContractID,
		Volume:     req.Volume,
		Price:      req.Price,
		Notes:      req.Notes,
	}
	if req.OrderDate != "" {
		orderDate, err := parseDate(req.OrderDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order_date"})
			return
		}
		input.OrderDate = orderDate
	}
	delivery, err := parseOptionalDate(req.DeliveryDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid delivery_date"})
		return
	}
	input.DeliveryDate = delivery

	order, err := h.orders.Create(c.Request.Context(), input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *Handler) listOrders(c *gin.Context) {
	if query := c.Query("q"); query != "" {
		orders, err := h.orders.Search(c.Request.Context(), query)
		if err != nil {
			h.handleError(c, err)
			return
		}
		c.JSON(http.StatusOK, orders)
		return
	}

	orders, err := h.orders.List(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Handler) getOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	order, err := h.orders.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) updateOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req updateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := service.UpdateOrderInput{
		Volume: req.Volume,
		Price:  req.Price,
		Notes:  req.Notes,
	}
	if req.OrderDate != nil {
		orderDate, err := parseDate(*req.OrderDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order_date"})
			return
		}
		input.OrderDate = &orderDate
	}
	if req.DeliveryDate != nil {
		delivery, err := parseDate(*req.DeliveryDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid delivery_date"})
			return
		}
		input.DeliveryDate = &delivery
	}

	order, err := h.orders.Update(c.Request.Context(), id, input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) deleteOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.orders.Delete(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) deliverOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req deliverOrderRequest
	_ = c.ShouldBindJSON(&req)

	delivery, err := parseOptionalDate(req.DeliveryDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid delivery_date"})
		return
	}

	order, err := h.orders.MarkDelivered(c.Request.Context(), id, delivery)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) cancelOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req cancelRequest
	_ = c.ShouldBindJSON(&req)

	order, err := h.orders.MarkCancelled(c.Request.Context(), id, req.Reason)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) reactivateOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	order, err := h.orders.Reactivate(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) orderStats(c *gin.Context) {
	stats, err := h.orders.Stats(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
