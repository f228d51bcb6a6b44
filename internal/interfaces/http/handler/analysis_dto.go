package handler

import (
	"github.com/erp/fulfillment/internal/application/analysis"
	"github.com/erp/fulfillment/internal/domain/fulfillment"
	"github.com/erp/fulfillment/internal/infrastructure/config"
)

// AnalyzeRequest is the request body for running an analysis. Threshold
// and lookback fall back to the server configuration when omitted.
type AnalyzeRequest struct {
	Orders []fulfillment.RawOrderRow `json:"orders" binding:"required,min=1"`
	Stock  []fulfillment.RawStockRow `json:"stock"`
	Rules  []fulfillment.Rule        `json:"rules"`

	Carriers           []fulfillment.CarrierRule `json:"carriers"`
	LowStockThreshold  *int                      `json:"low_stock_threshold" binding:"omitempty,min=0"`
	RepeatLookbackDays *int                      `json:"repeat_lookback_days" binding:"omitempty,min=0"`

	RecordHistory bool `json:"record_history"`
}

// ToInput converts the request to an application input, filling omitted
// settings from the configured defaults
func (r *AnalyzeRequest) ToInput(defaults config.AnalysisConfig) analysis.AnalyzeInput {
	input := analysis.AnalyzeInput{
		Orders:             r.Orders,
		Stock:              r.Stock,
		Rules:              r.Rules,
		Carriers:           fulfillment.CarrierMapping(r.Carriers),
		LowStockThreshold:  defaults.LowStockThreshold,
		RepeatLookbackDays: defaults.RepeatLookbackDays,
		RecordHistory:      r.RecordHistory,
	}
	if r.LowStockThreshold != nil {
		input.LowStockThreshold = *r.LowStockThreshold
	}
	if r.RepeatLookbackDays != nil {
		input.RepeatLookbackDays = *r.RepeatLookbackDays
	}
	return input
}

// OverrideRequest is the request body for a manual fulfillment toggle.
// The engine keeps no server-side result state, so the caller sends the
// analyzed table and final stock back along with the order to flip.
type OverrideRequest struct {
	Items      []*fulfillment.LineItem `json:"items" binding:"required,min=1"`
	FinalStock map[string]int          `json:"final_stock" binding:"required"`
	OrderID    string                  `json:"order_id" binding:"required"`
}

// ToInput converts the request to an application input
func (r *OverrideRequest) ToInput() analysis.OverrideInput {
	return analysis.OverrideInput{
		Items:      fulfillment.Table(r.Items),
		FinalStock: r.FinalStock,
		OrderID:    r.OrderID,
	}
}
