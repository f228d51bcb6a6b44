package fulfillment

import (
	"strings"

	"github.com/shopspring/decimal"
)

// RawOrderRow is one row of the raw order export after the external loader
// has resolved column names. Values are still raw strings.
type RawOrderRow struct {
	OrderID            string `json:"order_id"`
	SKU                string `json:"sku"`
	ProductName        string `json:"product_name"`
	Quantity           string `json:"quantity"`
	ShippingMethod     string `json:"shipping_method"`
	DestinationCountry string `json:"destination_country"`
	TotalPrice         string `json:"total_price"`
}

// RawStockRow is one row of the raw stock export
type RawStockRow struct {
	SKU      string `json:"sku"`
	Quantity string `json:"quantity"`
}

// StockEntry is a de-duplicated stock record keyed by SKU
type StockEntry struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

// NormalizeReport surfaces the data-quality issues recovered during
// normalization so the caller can log or display them. Recoveries are
// never fatal.
type NormalizeReport struct {
	// DroppedRows counts order rows discarded for a blank SKU
	DroppedRows int `json:"dropped_rows"`
	// CoercedQuantities counts quantities forced to zero because the raw
	// value was non-numeric or negative
	CoercedQuantities int `json:"coerced_quantities"`
	// CoercedPrices counts total prices forced to zero
	CoercedPrices int `json:"coerced_prices"`
	// DuplicateSKUs counts stock rows discarded because their SKU was
	// already seen (first occurrence wins)
	DuplicateSKUs int `json:"duplicate_skus"`
}

// NormalizeOrders converts raw order rows into the canonical working table.
//
// Order-level fields that source exports blank after the first line of an
// order (shipping method, destination country, total price) are forward
// filled within the order group. Rows whose SKU is blank after trimming
// are dropped and counted in the report.
func NormalizeOrders(rows []RawOrderRow) (Table, NormalizeReport) {
	var report NormalizeReport
	table := make(Table, 0, len(rows))

	type orderFill struct {
		shippingMethod string
		country        string
		totalPrice     string
	}
	fills := make(map[string]*orderFill)

	for _, row := range rows {
		orderID := strings.TrimSpace(row.OrderID)

		fill := fills[orderID]
		if fill == nil {
			fill = &orderFill{}
			fills[orderID] = fill
		}
		if v := strings.TrimSpace(row.ShippingMethod); v != "" {
			fill.shippingMethod = v
		}
		if v := strings.TrimSpace(row.DestinationCountry); v != "" {
			fill.country = v
		}
		if v := strings.TrimSpace(row.TotalPrice); v != "" {
			fill.totalPrice = v
		}

		sku := strings.TrimSpace(row.SKU)
		if sku == "" {
			report.DroppedRows++
			continue
		}

		quantity, ok := coerceQuantity(row.Quantity)
		if !ok {
			report.CoercedQuantities++
		}
		price, ok := coercePrice(fill.totalPrice)
		if !ok {
			report.CoercedPrices++
		}

		table = append(table, &LineItem{
			OrderID:            orderID,
			SKU:                sku,
			ProductName:        strings.TrimSpace(row.ProductName),
			Quantity:           quantity,
			ShippingMethodRaw:  fill.shippingMethod,
			DestinationCountry: fill.country,
			TotalPrice:         price,
			Status:             StatusPending,
			Priority:           DefaultPriority,
		})
	}

	return table, report
}

// NormalizeStock converts raw stock rows into de-duplicated stock entries.
// Duplicate SKUs keep the first occurrence; they are counted, not an error.
func NormalizeStock(rows []RawStockRow) ([]StockEntry, NormalizeReport) {
	var report NormalizeReport
	entries := make([]StockEntry, 0, len(rows))
	seen := make(map[string]bool, len(rows))

	for _, row := range rows {
		sku := strings.TrimSpace(row.SKU)
		if sku == "" {
			report.DroppedRows++
			continue
		}
		if seen[sku] {
			report.DuplicateSKUs++
			continue
		}
		seen[sku] = true

		quantity, ok := coerceQuantity(row.Quantity)
		if !ok {
			report.CoercedQuantities++
		}
		entries = append(entries, StockEntry{SKU: sku, Quantity: quantity})
	}

	return entries, report
}

// coerceQuantity parses a raw quantity into a non-negative integer.
// Non-numeric, fractional or negative input coerces to zero with ok=false.
// Decimal parsing tolerates exports that render whole numbers as "3.0".
func coerceQuantity(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, false
	}
	if !d.IsInteger() || d.IsNegative() {
		return 0, false
	}
	return int(d.IntPart()), true
}

// coercePrice parses a raw total price; blank or unparseable input
// coerces to zero, blank counting as ok since the column is optional.
func coercePrice(raw string) (decimal.Decimal, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, true
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
