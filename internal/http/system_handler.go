package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ovapp/sales-ledger/internal/model"
	"github.com/ovapp/sales-ledger/internal/service"
)

func (h *Handler) dashboardStats(c *gin.Context) {
	stats, err := h.dashboard.Stats(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) dashboardRecent(c *gin.Context) {
	recent, err := h.dashboard.Recent(c.Request.Context(), 5)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, recent)
}

func (h *Handler) dashboardTrends(c *gin.Context) {
	months := 6
	if raw := c.Query("months"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "months must be a positive integer"})
			return
		}
		months = parsed
	}

	trends, err := h.dashboard.MonthlyTrends(c.Request.Context(), months)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, trends)
}

func (h *Handler) getSettings(c *gin.Context) {
	settings, err := h.settings.Get(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

type updateSettingsRequest struct {
	General       *model.GeneralSettings      `json:"general"`
	Localization  *model.LocalizationSettings `json:"localization"`
	Files         *model.FileSettings         `json:"files"`
	Backup        *model.BackupSettings       `json:"backup"`
	Notifications *model.NotificationSettings `json:"notifications"`
}

func (h *Handler) updateSettings(c *gin.Context) {
	var req updateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	settings, err := h.settings.Update(c.Request.Context(), service.UpdateSettingsInput{
		General:       req.General,
		Localization:  req.Localization,
		Files:         req.Files,
		Backup:        req.Backup,
		Notifications: req.Notifications,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (h *Handler) resetSettings(c *gin.Context) {
	settings, err := h.settings.Reset(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

type exportRequest struct {
	Format   string   `json:"format" binding:"required"`
	DataSets []string `json:"data_sets" binding:"required"`
}

func (h *Handler) exportData(c *gin.Context) {
	var req exportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := service.ExportInput{Format: service.ExportFormat(strings.ToLower(req.Format))}
	for _, name := range req.DataSets {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "clients":
			input.Clients = true
		case "contracts":
			input.Contracts = true
		case "orders":
			input.Orders = true
		case "all":
			input.Clients = true
			input.Contracts = true
			input.Orders = true
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown data set " + name})
			return
		}
	}

	result, err := h.export.Export(c.Request.Context(), input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	sendFile(c, result)
}
