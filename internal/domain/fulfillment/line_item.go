package fulfillment

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// FulfillmentStatus is the order-level shipping decision produced by the
// stock simulation. Every line of an order carries the same status.
type FulfillmentStatus string

const (
	// StatusPending means the order has not been simulated yet
	StatusPending FulfillmentStatus = "Pending"
	// StatusFulfillable means every line of the order was allocated stock
	StatusFulfillable FulfillmentStatus = "Fulfillable"
	// StatusNotFulfillable means at least one line could not be allocated
	StatusNotFulfillable FulfillmentStatus = "NotFulfillable"
)

// IsValid checks if the status is a known value
func (s FulfillmentStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusFulfillable, StatusNotFulfillable:
		return true
	}
	return false
}

// String returns the string representation
func (s FulfillmentStatus) String() string {
	return string(s)
}

// OrderType classifies an order by its distinct line count
type OrderType string

const (
	// OrderTypeSingle marks orders with exactly one line item
	OrderTypeSingle OrderType = "Single"
	// OrderTypeMulti marks orders with more than one line item
	OrderTypeMulti OrderType = "Multi"
)

// String returns the string representation
func (t OrderType) String() string {
	return string(t)
}

// DefaultPriority is the initial value of the rule-owned priority column
const DefaultPriority = "Normal"

// SystemNoteRepeat is written by the enricher when an order number was
// already present in fulfillment history
const SystemNoteRepeat = "Repeat"

// ShippingProviderUnknown is the carrier fallback for blank shipping input
const ShippingProviderUnknown = "Unknown"

// LineItem is one row of the working table. A line belongs to exactly one
// order; multiple lines may share the same OrderID. The zero fields below
// the source columns are filled in by the simulator, the enricher and the
// rule engine as the analysis pipeline progresses.
type LineItem struct {
	// Source columns (normalizer output)
	OrderID            string          `json:"order_id"`
	SKU                string          `json:"sku"`
	ProductName        string          `json:"product_name"`
	Quantity           int             `json:"quantity"`
	ShippingMethodRaw  string          `json:"shipping_method_raw"`
	DestinationCountry string          `json:"destination_country"`
	TotalPrice         decimal.Decimal `json:"total_price"`

	// Simulation columns
	Stock      int               `json:"stock"`
	FinalStock int               `json:"final_stock"`
	Status     FulfillmentStatus `json:"order_fulfillment_status"`

	// Enrichment columns
	OrderType        OrderType `json:"order_type"`
	ShippingProvider string    `json:"shipping_provider"`
	SystemNote       string    `json:"system_note"`
	StockAlert       bool      `json:"stock_alert"`

	// Rule-owned columns, created with their defaults so rules can be
	// configured before any rule ever wrote them
	StatusNote string `json:"status_note"`
	Priority   string `json:"priority"`
	Excluded   bool   `json:"excluded"`
}

// Table is the working set of line items for one analysis invocation.
// It is created fresh per invocation and mutated in place through the
// simulate/enrich/rule stages; it is never shared across invocations.
type Table []*LineItem

// OrderIDs returns the distinct order IDs in first-seen row order
func (t Table) OrderIDs() []string {
	seen := make(map[string]bool, len(t))
	ids := make([]string, 0, len(t))
	for _, li := range t {
		if !seen[li.OrderID] {
			seen[li.OrderID] = true
			ids = append(ids, li.OrderID)
		}
	}
	return ids
}

// Orders groups the table's lines by order ID
func (t Table) Orders() map[string][]*LineItem {
	groups := make(map[string][]*LineItem)
	for _, li := range t {
		groups[li.OrderID] = append(groups[li.OrderID], li)
	}
	return groups
}

// ItemCounts returns the number of line items per order
func (t Table) ItemCounts() map[string]int {
	counts := make(map[string]int, len(t))
	for _, li := range t {
		counts[li.OrderID]++
	}
	return counts
}

// Line-level field names usable in rule conditions
const (
	FieldOrderID            = "order_id"
	FieldSKU                = "sku"
	FieldProductName        = "product_name"
	FieldQuantity           = "quantity"
	FieldShippingMethodRaw  = "shipping_method_raw"
	FieldDestinationCountry = "destination_country"
	FieldTotalPrice         = "total_price"
	FieldStock              = "stock"
	FieldFinalStock         = "final_stock"
	FieldFulfillmentStatus  = "order_fulfillment_status"
	FieldOrderType          = "order_type"
	FieldShippingProvider   = "shipping_provider"
	FieldSystemNote         = "system_note"
	FieldStockAlert         = "stock_alert"
	FieldStatusNote         = "status_note"
	FieldPriority           = "priority"
	FieldExcluded           = "excluded"
)

// Order-level field names usable in order-scoped rule conditions
const (
	FieldItemCount     = "item_count"
	FieldTotalQuantity = "total_quantity"
	FieldHasSKU        = "has_sku"
)

// FieldValue resolves a line-level field by name to its string form.
// Unknown names report ok=false so a misconfigured rule condition can
// degrade to "never matches" instead of aborting the run.
func (li *LineItem) FieldValue(name string) (string, bool) {
	switch name {
	case FieldOrderID:
		return li.OrderID, true
	case FieldSKU:
		return li.SKU, true
	case FieldProductName:
		return li.ProductName, true
	case FieldQuantity:
		return strconv.Itoa(li.Quantity), true
	case FieldShippingMethodRaw:
		return li.ShippingMethodRaw, true
	case FieldDestinationCountry:
		return li.DestinationCountry, true
	case FieldTotalPrice:
		return li.TotalPrice.String(), true
	case FieldStock:
		return strconv.Itoa(li.Stock), true
	case FieldFinalStock:
		return strconv.Itoa(li.FinalStock), true
	case FieldFulfillmentStatus:
		return li.Status.String(), true
	case FieldOrderType:
		return li.OrderType.String(), true
	case FieldShippingProvider:
		return li.ShippingProvider, true
	case FieldSystemNote:
		return li.SystemNote, true
	case FieldStockAlert:
		return strconv.FormatBool(li.StockAlert), true
	case FieldStatusNote:
		return li.StatusNote, true
	case FieldPriority:
		return li.Priority, true
	case FieldExcluded:
		return strconv.FormatBool(li.Excluded), true
	}
	return "", false
}
