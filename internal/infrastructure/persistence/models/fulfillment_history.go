package models

import (
	"time"

	"github.com/erp/fulfillment/internal/domain/fulfillment"
)

// FulfillmentHistoryModel is the persistence model for one fulfilled
// order, keyed by order ID so re-recording an order refreshes its date
type FulfillmentHistoryModel struct {
	OrderID       string    `gorm:"column:order_id;primaryKey"`
	FulfilledAt   time.Time `gorm:"column:fulfilled_at;not null;index"`
	CreatedAt     time.Time `gorm:"column:created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

// TableName returns the table name
func (FulfillmentHistoryModel) TableName() string {
	return "fulfillment_history"
}

// ToDomain converts the model to a domain history record
func (m *FulfillmentHistoryModel) ToDomain() fulfillment.HistoryRecord {
	return fulfillment.HistoryRecord{
		OrderID:     m.OrderID,
		FulfilledAt: m.FulfilledAt,
	}
}

// FromDomain converts a domain history record to a persistence model
func FromDomain(record fulfillment.HistoryRecord) *FulfillmentHistoryModel {
	return &FulfillmentHistoryModel{
		OrderID:     record.OrderID,
		FulfilledAt: record.FulfilledAt,
	}
}
