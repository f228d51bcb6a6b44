package fulfillment

import "sort"

// CourierStat is the per-courier slice of the statistics record,
// restricted to fulfillable orders
type CourierStat struct {
	Courier             string `json:"courier"`
	OrdersAssigned      int    `json:"orders_assigned"`
	RepeatedOrdersFound int    `json:"repeated_orders_found"`
}

// Statistics summarizes one enriched analysis result
type Statistics struct {
	FulfillableOrders      int `json:"fulfillable_orders"`
	NotFulfillableOrders   int `json:"not_fulfillable_orders"`
	FulfillableQuantity    int `json:"fulfillable_quantity"`
	NotFulfillableQuantity int `json:"not_fulfillable_quantity"`

	// CourierBreakdown is empty, not an error, when nothing is fulfillable
	CourierBreakdown []CourierStat `json:"courier_breakdown,omitempty"`
}

// Aggregate computes summary counts and the courier breakdown over an
// enriched table. It is a pure function; the table is not modified.
func Aggregate(t Table) Statistics {
	var stats Statistics

	type orderInfo struct {
		status   FulfillmentStatus
		courier  string
		repeated bool
	}
	orders := make(map[string]*orderInfo)

	for _, li := range t {
		info := orders[li.OrderID]
		if info == nil {
			info = &orderInfo{status: li.Status, courier: li.ShippingProvider}
			orders[li.OrderID] = info
		}
		if li.SystemNote == SystemNoteRepeat {
			info.repeated = true
		}
		switch li.Status {
		case StatusFulfillable:
			stats.FulfillableQuantity += li.Quantity
		case StatusNotFulfillable:
			stats.NotFulfillableQuantity += li.Quantity
		}
	}

	byCourier := make(map[string]*CourierStat)
	for _, info := range orders {
		switch info.status {
		case StatusFulfillable:
			stats.FulfillableOrders++
			entry := byCourier[info.courier]
			if entry == nil {
				entry = &CourierStat{Courier: info.courier}
				byCourier[info.courier] = entry
			}
			entry.OrdersAssigned++
			if info.repeated {
				entry.RepeatedOrdersFound++
			}
		case StatusNotFulfillable:
			stats.NotFulfillableOrders++
		}
	}

	if len(byCourier) > 0 {
		stats.CourierBreakdown = make([]CourierStat, 0, len(byCourier))
		for _, entry := range byCourier {
			stats.CourierBreakdown = append(stats.CourierBreakdown, *entry)
		}
		sort.Slice(stats.CourierBreakdown, func(i, j int) bool {
			return stats.CourierBreakdown[i].Courier < stats.CourierBreakdown[j].Courier
		})
	}

	return stats
}

// FulfillableBySKU sums required quantities per SKU over fulfillable
// lines, the written-off summary handed to downstream renderers.
func FulfillableBySKU(t Table) map[string]int {
	summary := make(map[string]int)
	for _, li := range t {
		if li.Status == StatusFulfillable {
			summary[li.SKU] += li.Quantity
		}
	}
	return summary
}

// ShortBySKU sums required quantities per SKU over genuinely short lines,
// those whose requirement exceeded even the initial stock pool. Lines that
// merely lost the pool to a higher-priority order are not genuinely short.
func ShortBySKU(t Table, initialStock map[string]int) map[string]int {
	summary := make(map[string]int)
	for _, li := range t {
		if li.Quantity > initialStock[li.SKU] {
			summary[li.SKU] += li.Quantity
		}
	}
	return summary
}
