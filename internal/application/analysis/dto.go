package analysis

import (
	"time"

	"github.com/erp/fulfillment/internal/domain/fulfillment"
	"github.com/google/uuid"
)

// AnalyzeInput carries everything one analysis run needs. The engine
// reads no ambient configuration; carrier mappings, rules and thresholds
// all arrive here.
type AnalyzeInput struct {
	Orders []fulfillment.RawOrderRow `json:"orders"`
	Stock  []fulfillment.RawStockRow `json:"stock"`
	Rules  []fulfillment.Rule        `json:"rules"`

	Carriers          fulfillment.CarrierMapping `json:"carriers"`
	LowStockThreshold int                        `json:"low_stock_threshold"`
	// RepeatLookbackDays limits repeat detection; zero counts any
	// historical appearance
	RepeatLookbackDays int `json:"repeat_lookback_days"`

	// RecordHistory persists the fulfillable order IDs after the run so
	// future runs can flag them as repeats
	RecordHistory bool `json:"record_history"`
}

// AnalyzeResult is the final artifact of one analysis run
type AnalyzeResult struct {
	RunID uuid.UUID         `json:"run_id"`
	Items fulfillment.Table `json:"items"`

	InitialStock map[string]int `json:"initial_stock"`
	FinalStock   map[string]int `json:"final_stock"`

	Statistics       fulfillment.Statistics     `json:"statistics"`
	FulfillableBySKU map[string]int             `json:"fulfillable_by_sku"`
	ShortBySKU       map[string]int             `json:"short_by_sku"`
	OrderReport      fulfillment.NormalizeReport `json:"order_report"`
	StockReport      fulfillment.NormalizeReport `json:"stock_report"`
	RuleReport       fulfillment.RuleReport      `json:"rule_report"`

	AnalyzedAt time.Time `json:"analyzed_at"`
}

// OverrideInput asks for a manual fulfillment toggle of one order on an
// already produced result
type OverrideInput struct {
	Items      fulfillment.Table `json:"items"`
	FinalStock map[string]int    `json:"final_stock"`
	OrderID    string            `json:"order_id"`
}

// OverrideOutput reports a completed toggle together with the updated
// table and stock so the caller can persist them
type OverrideOutput struct {
	Result     *fulfillment.OverrideResult `json:"result"`
	Items      fulfillment.Table           `json:"items"`
	FinalStock map[string]int              `json:"final_stock"`
}
