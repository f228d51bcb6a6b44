package handler

import (
	"github.com/erp/fulfillment/internal/application/analysis"
	"github.com/erp/fulfillment/internal/infrastructure/config"
	"github.com/gin-gonic/gin"
)

// AnalysisHandler handles analysis run and override requests
type AnalysisHandler struct {
	BaseHandler
	service  *analysis.Service
	defaults config.AnalysisConfig
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(service *analysis.Service, defaults config.AnalysisConfig) *AnalysisHandler {
	return &AnalysisHandler{
		service:  service,
		defaults: defaults,
	}
}

// RegisterRoutes registers analysis routes
func (h *AnalysisHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/analysis")
	{
		group.POST("", h.Run)
		group.POST("/override", h.Override)
	}
}

// Run executes a full fulfillment analysis over the posted exports
func (h *AnalysisHandler) Run(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.service.Run(c.Request.Context(), req.ToInput(h.defaults))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Override manually toggles one order's fulfillment status on a
// previously returned analysis result
func (h *AnalysisHandler) Override(c *gin.Context) {
	var req OverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	output, err := h.service.Override(c.Request.Context(), req.ToInput())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, output)
}
