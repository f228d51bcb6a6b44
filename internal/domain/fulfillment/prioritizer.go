package fulfillment

import "sort"

// Prioritize returns the total order in which the simulator walks the
// orders. Multi-item orders come first (item count descending) because a
// complete multi-line shipment is judged more valuable than raw fulfilled
// line count; order ID ascending breaks ties so the sequence is fully
// deterministic for identical input.
func Prioritize(t Table) []string {
	counts := t.ItemCounts()
	ids := t.OrderIDs()

	sort.Slice(ids, func(i, j int) bool {
		if counts[ids[i]] != counts[ids[j]] {
			return counts[ids[i]] > counts[ids[j]]
		}
		return ids[i] < ids[j]
	})

	return ids
}
