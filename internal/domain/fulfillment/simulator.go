package fulfillment

// SimulationResult carries the stock state bracketing one simulation pass.
// InitialStock is the de-duplicated input pool; FinalStock is the globally
// remaining quantity per SKU after every order was decided. Both maps are
// owned by the caller once returned; the live pool mutated during the pass
// never escapes Simulate.
type SimulationResult struct {
	InitialStock map[string]int `json:"initial_stock"`
	FinalStock   map[string]int `json:"final_stock"`

	FulfillableOrders    int `json:"fulfillable_orders"`
	NotFulfillableOrders int `json:"not_fulfillable_orders"`
}

// Simulate walks the prioritized order sequence once, allocating stock
// all-or-nothing per order. An order is Fulfillable only if every line's
// required quantity fits the live pool; its quantities are then deducted
// immediately so later (lower-priority) orders see the reduced pool. There
// is no rollback: the sequence from Prioritize is outcome-determining.
//
// A SKU absent from stock counts as zero available, so any line requiring
// it fails its order. Zero-quantity lines trivially pass.
//
// Per line, Stock is stamped with the live quantity at the moment the
// owning order was evaluated (before that order's own deduction) and
// FinalStock with the globally final quantity once the pass completes.
func Simulate(t Table, sequence []string, stock []StockEntry) *SimulationResult {
	initial := make(map[string]int, len(stock))
	live := make(map[string]int, len(stock))
	for _, entry := range stock {
		if _, ok := initial[entry.SKU]; ok {
			continue
		}
		initial[entry.SKU] = entry.Quantity
		live[entry.SKU] = entry.Quantity
	}

	orders := t.Orders()
	result := &SimulationResult{InitialStock: initial}

	for _, orderID := range sequence {
		lines := orders[orderID]
		if len(lines) == 0 {
			continue
		}

		// Snapshot before this order's own deduction.
		for _, li := range lines {
			li.Stock = live[li.SKU]
		}

		// Required quantities accumulate per SKU so an order listing the
		// same SKU on several lines cannot over-draw the pool.
		required := make(map[string]int, len(lines))
		fulfillable := true
		for _, li := range lines {
			required[li.SKU] += li.Quantity
			if required[li.SKU] > live[li.SKU] {
				fulfillable = false
				break
			}
		}

		status := StatusNotFulfillable
		if fulfillable {
			status = StatusFulfillable
			for _, li := range lines {
				live[li.SKU] -= li.Quantity
			}
			result.FulfillableOrders++
		} else {
			result.NotFulfillableOrders++
		}
		for _, li := range lines {
			li.Status = status
		}
	}

	for _, li := range t {
		li.FinalStock = live[li.SKU]
	}
	result.FinalStock = live

	return result
}
