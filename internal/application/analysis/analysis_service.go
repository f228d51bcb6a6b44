package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/fulfillment/internal/domain/fulfillment"
	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service orchestrates the fulfillment analysis pipeline: normalize,
// prioritize, simulate, enrich, aggregate, apply rules. History is the
// only collaborator it talks to; everything else is pure computation on
// the in-memory table, so concurrent runs just need separate inputs.
type Service struct {
	historyRepo fulfillment.HistoryRepository
	logger      *zap.Logger
}

// NewService creates a new analysis service
func NewService(historyRepo fulfillment.HistoryRepository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		historyRepo: historyRepo,
		logger:      logger,
	}
}

// Run executes one full analysis over the raw order and stock exports
func (s *Service) Run(ctx context.Context, input AnalyzeInput) (*AnalyzeResult, error) {
	runID := uuid.New()
	log := s.logger.With(zap.String("run_id", runID.String()))

	for i := range input.Rules {
		if err := input.Rules[i].Validate(); err != nil {
			return nil, err
		}
	}

	table, orderReport := fulfillment.NormalizeOrders(input.Orders)
	if len(table) == 0 {
		return nil, shared.NewDomainError("EMPTY_ORDERS", "No usable order rows after normalization")
	}
	stock, stockReport := fulfillment.NormalizeStock(input.Stock)

	if orderReport.DroppedRows > 0 || orderReport.CoercedQuantities > 0 {
		log.Warn("Order export had data quality issues",
			zap.Int("dropped_rows", orderReport.DroppedRows),
			zap.Int("coerced_quantities", orderReport.CoercedQuantities),
			zap.Int("coerced_prices", orderReport.CoercedPrices),
		)
	}
	if stockReport.DuplicateSKUs > 0 || stockReport.CoercedQuantities > 0 {
		log.Warn("Stock export had data quality issues",
			zap.Int("duplicate_skus", stockReport.DuplicateSKUs),
			zap.Int("coerced_quantities", stockReport.CoercedQuantities),
		)
	}

	sequence := fulfillment.Prioritize(table)
	simulation := fulfillment.Simulate(table, sequence, stock)

	now := time.Now()
	history, err := s.loadHistory(ctx, input.RepeatLookbackDays, now)
	if err != nil {
		return nil, fmt.Errorf("failed to load fulfillment history: %w", err)
	}

	fulfillment.Enrich(table, fulfillment.EnrichOptions{
		Carriers:          input.Carriers,
		History:           history,
		RepeatLookback:    time.Duration(input.RepeatLookbackDays) * 24 * time.Hour,
		LowStockThreshold: input.LowStockThreshold,
		Now:               now,
	})

	stats := fulfillment.Aggregate(table)
	ruleReport := fulfillment.ApplyRules(table, input.Rules)

	if input.RecordHistory {
		if err := s.recordFulfilled(ctx, table, now); err != nil {
			return nil, fmt.Errorf("failed to record fulfillment history: %w", err)
		}
	}

	log.Info("Analysis completed",
		zap.Int("line_items", len(table)),
		zap.Int("orders", len(sequence)),
		zap.Int("fulfillable_orders", stats.FulfillableOrders),
		zap.Int("not_fulfillable_orders", stats.NotFulfillableOrders),
		zap.Int("rules_applied", len(ruleReport.Applications)),
	)

	return &AnalyzeResult{
		RunID:            runID,
		Items:            table,
		InitialStock:     simulation.InitialStock,
		FinalStock:       simulation.FinalStock,
		Statistics:       stats,
		FulfillableBySKU: fulfillment.FulfillableBySKU(table),
		ShortBySKU:       fulfillment.ShortBySKU(table, simulation.InitialStock),
		OrderReport:      orderReport,
		StockReport:      stockReport,
		RuleReport:       ruleReport,
		AnalyzedAt:       now,
	}, nil
}

// Override toggles one order's fulfillment status on a produced result,
// preserving stock conservation. Precondition failures come back as
// domain errors with the table untouched.
func (s *Service) Override(ctx context.Context, input OverrideInput) (*OverrideOutput, error) {
	result, err := fulfillment.ToggleOrder(input.Items, input.FinalStock, input.OrderID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Fulfillment status overridden",
		zap.String("order_id", input.OrderID),
		zap.String("previous_status", result.PreviousStatus.String()),
		zap.String("new_status", result.NewStatus.String()),
	)

	return &OverrideOutput{
		Result:     result,
		Items:      input.Items,
		FinalStock: input.FinalStock,
	}, nil
}

// loadHistory reads the repeat-detection history, narrowing the query to
// the lookback window when one is configured
func (s *Service) loadHistory(ctx context.Context, lookbackDays int, now time.Time) ([]fulfillment.HistoryRecord, error) {
	if s.historyRepo == nil {
		return nil, nil
	}
	since := time.Time{}
	if lookbackDays > 0 {
		since = now.AddDate(0, 0, -lookbackDays)
	}
	return s.historyRepo.ListSince(ctx, since)
}

// recordFulfilled persists one history record per fulfillable order
func (s *Service) recordFulfilled(ctx context.Context, table fulfillment.Table, now time.Time) error {
	if s.historyRepo == nil {
		return nil
	}
	var records []fulfillment.HistoryRecord
	seen := make(map[string]bool)
	for _, li := range table {
		if li.Status == fulfillment.StatusFulfillable && !seen[li.OrderID] {
			seen[li.OrderID] = true
			records = append(records, fulfillment.HistoryRecord{
				OrderID:     li.OrderID,
				FulfilledAt: now,
			})
		}
	}
	if len(records) == 0 {
		return nil
	}
	return s.historyRepo.RecordFulfilled(ctx, records)
}
