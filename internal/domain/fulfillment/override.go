package fulfillment

import (
	"fmt"
	"sort"
	"strings"

	"github.com/erp/fulfillment/internal/domain/shared"
)

// SKUShortage names one SKU that blocked a force-fulfill attempt
type SKUShortage struct {
	SKU       string `json:"sku"`
	Required  int    `json:"required"`
	Available int    `json:"available"`
}

// InsufficientStockError reports the specific SKUs that blocked toggling
// an order to Fulfillable. The table and stock map were left untouched.
type InsufficientStockError struct {
	OrderID   string        `json:"order_id"`
	Shortages []SKUShortage `json:"shortages"`
}

// Error implements the error interface
func (e *InsufficientStockError) Error() string {
	skus := make([]string, len(e.Shortages))
	for i, s := range e.Shortages {
		skus[i] = fmt.Sprintf("%s (need %d, have %d)", s.SKU, s.Required, s.Available)
	}
	return fmt.Sprintf("insufficient stock to fulfill order %s: %s",
		e.OrderID, strings.Join(skus, ", "))
}

// OverrideResult describes a completed manual toggle
type OverrideResult struct {
	OrderID        string            `json:"order_id"`
	PreviousStatus FulfillmentStatus `json:"previous_status"`
	NewStatus      FulfillmentStatus `json:"new_status"`
}

// ToggleOrder manually flips one order's fulfillment status on an already
// simulated table, keeping stock conservation intact.
//
// Fulfillable orders return their quantities to finalStock and become
// NotFulfillable. NotFulfillable orders are pre-flighted line by line
// against finalStock first; if any line falls short, nothing is mutated
// and an *InsufficientStockError names the blocking SKUs. An unknown
// order ID reports shared.ErrOrderNotFound with no mutation. SKUs absent
// from finalStock count as zero available.
func ToggleOrder(t Table, finalStock map[string]int, orderID string) (*OverrideResult, error) {
	lines := t.Orders()[orderID]
	if len(lines) == 0 {
		return nil, shared.ErrOrderNotFound
	}

	previous := lines[0].Status
	var next FulfillmentStatus

	switch previous {
	case StatusFulfillable:
		next = StatusNotFulfillable
		for _, li := range lines {
			finalStock[li.SKU] += li.Quantity
		}

	case StatusNotFulfillable:
		next = StatusFulfillable

		// Pre-flight the whole order before touching anything, so a
		// failure leaves table and stock exactly as they were.
		required := make(map[string]int, len(lines))
		for _, li := range lines {
			required[li.SKU] += li.Quantity
		}
		var shortages []SKUShortage
		for sku, quantity := range required {
			if quantity > finalStock[sku] {
				shortages = append(shortages, SKUShortage{
					SKU:       sku,
					Required:  quantity,
					Available: finalStock[sku],
				})
			}
		}
		if len(shortages) > 0 {
			sort.Slice(shortages, func(i, j int) bool {
				return shortages[i].SKU < shortages[j].SKU
			})
			return nil, &InsufficientStockError{OrderID: orderID, Shortages: shortages}
		}
		for _, li := range lines {
			finalStock[li.SKU] -= li.Quantity
		}

	default:
		return nil, shared.ErrInvalidState
	}

	for _, li := range lines {
		li.Status = next
	}

	// FinalStock is global per SKU, so every line touching an affected
	// SKU gets re-stamped, not just the toggled order's lines.
	affected := make(map[string]bool, len(lines))
	for _, li := range lines {
		affected[li.SKU] = true
	}
	for _, li := range t {
		if affected[li.SKU] {
			li.FinalStock = finalStock[li.SKU]
		}
	}

	return &OverrideResult{
		OrderID:        orderID,
		PreviousStatus: previous,
		NewStatus:      next,
	}, nil
}
