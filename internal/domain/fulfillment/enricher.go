package fulfillment

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CarrierRule maps a canonical carrier name to the raw shipping-method
// substrings that identify it
type CarrierRule struct {
	Carrier  string   `json:"carrier"`
	Patterns []string `json:"patterns"`
}

// CarrierMapping is an ordered carrier rule list; earlier rules win
type CarrierMapping []CarrierRule

// Match canonicalizes a raw shipping method. Matching is case-insensitive
// substring matching in declared order. Unmatched input falls back to a
// title-cased copy of the raw string; blank input maps to "Unknown".
func (m CarrierMapping) Match(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ShippingProviderUnknown
	}
	lowered := strings.ToLower(raw)
	for _, rule := range m {
		for _, pattern := range rule.Patterns {
			if pattern == "" {
				continue
			}
			if strings.Contains(lowered, strings.ToLower(pattern)) {
				return rule.Carrier
			}
		}
	}
	return cases.Title(language.Und).String(lowered)
}

// HistoryRecord is a read-only fulfillment history entry used for repeat
// detection. This core never mutates history.
type HistoryRecord struct {
	OrderID     string    `json:"order_id"`
	FulfilledAt time.Time `json:"fulfilled_at"`
}

// EnrichOptions carries the caller-supplied enrichment configuration.
// The core never reads ambient state; everything arrives here.
type EnrichOptions struct {
	// Carriers canonicalizes shipping methods
	Carriers CarrierMapping
	// History is the known fulfillment history for repeat detection
	History []HistoryRecord
	// RepeatLookback limits how far back a history entry may lie to still
	// count as a repeat. Zero means any historical appearance counts.
	RepeatLookback time.Duration
	// LowStockThreshold flags lines whose final stock fell below it
	LowStockThreshold int
	// Now anchors the lookback window; zero value means time.Now()
	Now time.Time
}

// Enrich derives the display and classification columns on a simulated
// table: order type, canonical shipping provider, repeat note and the
// low-stock alert flag. It only reads the stock columns already stamped
// by the simulator.
func Enrich(t Table, opts EnrichOptions) {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	repeats := make(map[string]bool, len(opts.History))
	for _, record := range opts.History {
		if opts.RepeatLookback > 0 && record.FulfilledAt.Before(now.Add(-opts.RepeatLookback)) {
			continue
		}
		repeats[record.OrderID] = true
	}

	counts := t.ItemCounts()
	providers := make(map[string]string)

	for _, li := range t {
		if counts[li.OrderID] > 1 {
			li.OrderType = OrderTypeMulti
		} else {
			li.OrderType = OrderTypeSingle
		}

		provider, ok := providers[li.ShippingMethodRaw]
		if !ok {
			provider = opts.Carriers.Match(li.ShippingMethodRaw)
			providers[li.ShippingMethodRaw] = provider
		}
		li.ShippingProvider = provider

		if repeats[li.OrderID] {
			li.SystemNote = SystemNoteRepeat
		} else {
			li.SystemNote = ""
		}

		li.StockAlert = li.FinalStock < opts.LowStockThreshold
	}
}
