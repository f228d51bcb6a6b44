package analysis

import (
	"context"
	"testing"
	"time"

	"github.com/erp/fulfillment/internal/domain/fulfillment"
	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeHistoryRepo is an in-memory HistoryRepository for service tests
type fakeHistoryRepo struct {
	records  []fulfillment.HistoryRecord
	recorded []fulfillment.HistoryRecord
	err      error
}

func (f *fakeHistoryRepo) ListSince(_ context.Context, since time.Time) ([]fulfillment.HistoryRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []fulfillment.HistoryRecord
	for _, r := range f.records {
		if since.IsZero() || !r.FulfilledAt.Before(since) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeHistoryRepo) RecordFulfilled(_ context.Context, records []fulfillment.HistoryRecord) error {
	if f.err != nil {
		return f.err
	}
	f.recorded = append(f.recorded, records...)
	return nil
}

func testInput() AnalyzeInput {
	return AnalyzeInput{
		Orders: []fulfillment.RawOrderRow{
			{OrderID: "1001", SKU: "A", Quantity: "2", ShippingMethod: "DHL Paket", TotalPrice: "120"},
			{OrderID: "1001", SKU: "B", Quantity: "1"},
			{OrderID: "1002", SKU: "A", Quantity: "3", ShippingMethod: "ups standard", TotalPrice: "30"},
		},
		Stock: []fulfillment.RawStockRow{
			{SKU: "A", Quantity: "4"},
			{SKU: "B", Quantity: "1"},
		},
		Carriers: fulfillment.CarrierMapping{
			{Carrier: "DHL", Patterns: []string{"dhl"}},
			{Carrier: "UPS", Patterns: []string{"ups"}},
		},
		LowStockThreshold: 1,
	}
}

func TestServiceRun(t *testing.T) {
	t.Run("runs the full pipeline", func(t *testing.T) {
		repo := &fakeHistoryRepo{}
		service := NewService(repo, nil)

		result, err := service.Run(context.Background(), testInput())

		require.NoError(t, err)
		require.Len(t, result.Items, 3)

		// Multi-item 1001 wins the contention on A.
		byOrder := result.Items.Orders()
		assert.Equal(t, fulfillment.StatusFulfillable, byOrder["1001"][0].Status)
		assert.Equal(t, fulfillment.StatusNotFulfillable, byOrder["1002"][0].Status)

		assert.Equal(t, 2, result.FinalStock["A"])
		assert.Equal(t, 0, result.FinalStock["B"])
		assert.Equal(t, map[string]int{"A": 2, "B": 1}, result.FulfillableBySKU)
		assert.Empty(t, result.ShortBySKU)

		assert.Equal(t, "DHL", byOrder["1001"][0].ShippingProvider)
		assert.Equal(t, "UPS", byOrder["1002"][0].ShippingProvider)

		assert.Equal(t, 1, result.Statistics.FulfillableOrders)
		assert.Equal(t, 1, result.Statistics.NotFulfillableOrders)
		assert.NotEqual(t, "", result.RunID.String())
	})

	t.Run("flags repeats from the history repository", func(t *testing.T) {
		repo := &fakeHistoryRepo{records: []fulfillment.HistoryRecord{
			{OrderID: "1002", FulfilledAt: time.Now().AddDate(0, -1, 0)},
		}}
		service := NewService(repo, nil)

		result, err := service.Run(context.Background(), testInput())

		require.NoError(t, err)
		for _, li := range result.Items {
			if li.OrderID == "1002" {
				assert.Equal(t, fulfillment.SystemNoteRepeat, li.SystemNote)
			} else {
				assert.Empty(t, li.SystemNote)
			}
		}
	})

	t.Run("records fulfillable orders when asked", func(t *testing.T) {
		repo := &fakeHistoryRepo{}
		service := NewService(repo, nil)
		input := testInput()
		input.RecordHistory = true

		_, err := service.Run(context.Background(), input)

		require.NoError(t, err)
		require.Len(t, repo.recorded, 1)
		assert.Equal(t, "1001", repo.recorded[0].OrderID)
	})

	t.Run("applies the configured rules", func(t *testing.T) {
		service := NewService(&fakeHistoryRepo{}, nil)
		input := testInput()
		input.Rules = []fulfillment.Rule{{
			Name:      "High value",
			MatchMode: fulfillment.MatchAll,
			Level:     fulfillment.LevelArticle,
			Conditions: []fulfillment.Condition{
				{Field: fulfillment.FieldTotalPrice, Operator: fulfillment.OperatorGreaterThan, Value: "100"},
			},
			Actions: []fulfillment.Action{{Type: fulfillment.ActionAddTag, Value: "HighValue"}},
		}}

		result, err := service.Run(context.Background(), input)

		require.NoError(t, err)
		tagged := 0
		for _, li := range result.Items {
			if li.StatusNote == "HighValue" {
				tagged++
			}
		}
		assert.Equal(t, 1, tagged)
	})

	t.Run("rejects invalid rules up front", func(t *testing.T) {
		service := NewService(&fakeHistoryRepo{}, nil)
		input := testInput()
		input.Rules = []fulfillment.Rule{{Name: "bad", MatchMode: "SOMETIMES", Level: fulfillment.LevelArticle,
			Actions: []fulfillment.Action{{Type: fulfillment.ActionAddTag, Value: "x"}}}}

		_, err := service.Run(context.Background(), input)

		assert.Error(t, err)
	})

	t.Run("rejects an empty order export", func(t *testing.T) {
		service := NewService(&fakeHistoryRepo{}, nil)
		input := testInput()
		input.Orders = []fulfillment.RawOrderRow{{OrderID: "1001", SKU: "", Quantity: "1"}}

		_, err := service.Run(context.Background(), input)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "EMPTY_ORDERS", domainErr.Code)
	})

	t.Run("works without a history repository", func(t *testing.T) {
		service := NewService(nil, nil)

		result, err := service.Run(context.Background(), testInput())

		require.NoError(t, err)
		for _, li := range result.Items {
			assert.Empty(t, li.SystemNote)
		}
	})
}

func TestServiceOverride(t *testing.T) {
	t.Run("toggles and returns the updated table", func(t *testing.T) {
		service := NewService(&fakeHistoryRepo{}, nil)
		result, err := service.Run(context.Background(), testInput())
		require.NoError(t, err)

		out, err := service.Override(context.Background(), OverrideInput{
			Items:      result.Items,
			FinalStock: result.FinalStock,
			OrderID:    "1001",
		})

		require.NoError(t, err)
		assert.Equal(t, fulfillment.StatusNotFulfillable, out.Result.NewStatus)
		assert.Equal(t, 4, out.FinalStock["A"])
	})

	t.Run("propagates structured precondition failures", func(t *testing.T) {
		service := NewService(&fakeHistoryRepo{}, nil)
		result, err := service.Run(context.Background(), testInput())
		require.NoError(t, err)

		_, err = service.Override(context.Background(), OverrideInput{
			Items:      result.Items,
			FinalStock: result.FinalStock,
			OrderID:    "1002",
		})

		var insufficient *fulfillment.InsufficientStockError
		assert.ErrorAs(t, err, &insufficient)
	})
}
