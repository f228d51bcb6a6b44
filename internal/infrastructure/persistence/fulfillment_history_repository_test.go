package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/erp/fulfillment/internal/domain/fulfillment"
	"github.com/erp/fulfillment/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDB(t *testing.T) *Database {
	t.Helper()
	db, err := NewDatabase(&config.DatabaseConfig{Path: ":memory:", MaxOpenConns: 1, MaxIdleConns: 1})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestGormFulfillmentHistoryRepository(t *testing.T) {
	ctx := context.Background()
	now := time.Now().Truncate(time.Second)

	t.Run("records and lists history", func(t *testing.T) {
		repo := NewGormFulfillmentHistoryRepository(testDB(t).DB)

		err := repo.RecordFulfilled(ctx, []fulfillment.HistoryRecord{
			{OrderID: "1001", FulfilledAt: now.AddDate(0, 0, -10)},
			{OrderID: "1002", FulfilledAt: now},
		})
		require.NoError(t, err)

		records, err := repo.ListSince(ctx, time.Time{})
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "1001", records[0].OrderID)
	})

	t.Run("since narrows the window", func(t *testing.T) {
		repo := NewGormFulfillmentHistoryRepository(testDB(t).DB)

		require.NoError(t, repo.RecordFulfilled(ctx, []fulfillment.HistoryRecord{
			{OrderID: "old", FulfilledAt: now.AddDate(-1, 0, 0)},
			{OrderID: "recent", FulfilledAt: now},
		}))

		records, err := repo.ListSince(ctx, now.AddDate(0, 0, -30))
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "recent", records[0].OrderID)
	})

	t.Run("re-recording an order refreshes its date", func(t *testing.T) {
		repo := NewGormFulfillmentHistoryRepository(testDB(t).DB)

		require.NoError(t, repo.RecordFulfilled(ctx, []fulfillment.HistoryRecord{
			{OrderID: "1001", FulfilledAt: now.AddDate(0, 0, -5)},
		}))
		require.NoError(t, repo.RecordFulfilled(ctx, []fulfillment.HistoryRecord{
			{OrderID: "1001", FulfilledAt: now},
		}))

		records, err := repo.ListSince(ctx, time.Time{})
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.WithinDuration(t, now, records[0].FulfilledAt, time.Second)
	})

	t.Run("recording nothing is a no-op", func(t *testing.T) {
		repo := NewGormFulfillmentHistoryRepository(testDB(t).DB)
		assert.NoError(t, repo.RecordFulfilled(ctx, nil))
	})
}
