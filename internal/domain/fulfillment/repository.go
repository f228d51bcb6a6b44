package fulfillment

import (
	"context"
	"time"
)

// HistoryRepository provides access to persisted fulfillment history.
// The analysis core only ever reads history; writing happens after an
// analysis when the caller decides to record the fulfillable orders.
type HistoryRepository interface {
	// ListSince returns history records fulfilled at or after the given
	// time; the zero time returns everything
	ListSince(ctx context.Context, since time.Time) ([]HistoryRecord, error)

	// RecordFulfilled persists the given records, overwriting the
	// fulfillment date of order IDs already present
	RecordFulfilled(ctx context.Context, records []HistoryRecord) error
}
