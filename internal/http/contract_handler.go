package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ovapp/sales-ledger/internal/model"
	"github.com/ovapp/sales-ledger/internal/service"
)

type createContractRequest struct {
	ClientID    int64   `json:"client_id" binding:"required"`
	TotalVolume float64 `json:"total_volume" binding:"required"`
	SalePrice   float64 `json:"sale_price"`
	StartDate   string  `json:"start_date" binding:"required"`
	EndDate     string  `json:"end_date" binding:"required"`
	Status      string  `json:"status"`
}

type updateContractRequest struct {
	TotalVolume *float64 `json:"total_volume"`
	SalePrice   *float64 `json:"sale_price"`
	StartDate   *string  `json:"start_date"`
	EndDate     *string  `json:"end_date"`
	Status      *string  `json:"status"`
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) createContract(c *gin.Context) {
	var req createContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	start, err := parseDate(req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date"})
		return
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_date"})
		return
	}

	contract, err := h.contracts.Create(c.Request.Context(), service.CreateContractInput{
		ClientID:    req.ClientID,
		TotalVolume: req.TotalVolume,
		SalePrice:   req.SalePrice,
		StartDate:   start,
		EndDate:     end,
		Status:      model.ContractStatus(req.Status),
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, contract)
}

func (h *Handler) listContracts(c *gin.Context) {
	contracts, err := h.contracts.List(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, contracts)
}

func (h *Handler) getContract(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	contract, err := h.contracts.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, contract)
}

func (h *Handler) updateContract(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req updateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := service.UpdateContractInput{
		TotalVolume: req.TotalVolume,
		SalePrice:   req.SalePrice,
	}
	if req.StartDate != nil {
		start, err := parseDate(*req.StartDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date"})
			return
		}
		input.StartDate = &start
	}
	if req.EndDate != nil {
		end, err := parseDate(*req.EndDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_date"})
			return
		}
		input.EndDate = &end
	}
	if req.Status != nil {
		status := model.ContractStatus(*req.Status)
		input.Status = &status
	}

	contract, err := h.contracts.Update(c.Request.Context(), id, input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, contract)
}

func (h *Handler) deleteContract(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.contracts.Delete(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) cancelContract(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req cancelRequest
	_ = c.ShouldBindJSON(&req)

	if err := h.contracts.ManualCancel(c.Request.Context(), id, req.Reason); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) reactivateContract(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.contracts.ManualReactivate(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) refreshContractStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	status, changed, err := h.contracts.DeriveStatus(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": status, "changed": changed})
}

func (h *Handler) contractStats(c *gin.Context) {
	stats, err := h.contracts.Stats(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) listContractOrders(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if _, err := h.contracts.Get(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}
	orders, err := h.orders.ListByContract(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Handler) contractStatement(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	result, err := h.export.ContractStatement(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	sendFile(c, result)
}
