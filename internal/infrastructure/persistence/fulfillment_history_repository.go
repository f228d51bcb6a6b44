package persistence

import (
	"context"
	"time"

	"github.com/erp/fulfillment/internal/domain/fulfillment"
	"github.com/erp/fulfillment/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormFulfillmentHistoryRepository implements fulfillment.HistoryRepository
// using GORM
type GormFulfillmentHistoryRepository struct {
	db *gorm.DB
}

// NewGormFulfillmentHistoryRepository creates a new repository
func NewGormFulfillmentHistoryRepository(db *gorm.DB) *GormFulfillmentHistoryRepository {
	return &GormFulfillmentHistoryRepository{db: db}
}

// ListSince returns history records fulfilled at or after the given time;
// the zero time returns everything
func (r *GormFulfillmentHistoryRepository) ListSince(ctx context.Context, since time.Time) ([]fulfillment.HistoryRecord, error) {
	query := r.db.WithContext(ctx).Model(&models.FulfillmentHistoryModel{})
	if !since.IsZero() {
		query = query.Where("fulfilled_at >= ?", since)
	}

	var rows []models.FulfillmentHistoryModel
	if err := query.Order("fulfilled_at").Find(&rows).Error; err != nil {
		return nil, err
	}

	records := make([]fulfillment.HistoryRecord, len(rows))
	for i := range rows {
		records[i] = rows[i].ToDomain()
	}
	return records, nil
}

// RecordFulfilled upserts one row per order ID, refreshing the
// fulfillment date of orders already present
func (r *GormFulfillmentHistoryRepository) RecordFulfilled(ctx context.Context, records []fulfillment.HistoryRecord) error {
	if len(records) == 0 {
		return nil
	}

	rows := make([]*models.FulfillmentHistoryModel, len(records))
	for i, record := range records {
		rows[i] = models.FromDomain(record)
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"fulfilled_at", "updated_at"}),
		}).
		Create(&rows).Error
}
