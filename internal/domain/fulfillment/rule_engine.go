package fulfillment

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// RuleApplication reports how one rule matched
type RuleApplication struct {
	Rule         string `json:"rule"`
	MatchedLines int    `json:"matched_lines"`
}

// RuleReport summarizes one rule pass over a table
type RuleReport struct {
	Applications []RuleApplication `json:"applications"`
}

// ApplyRules evaluates the rules in declared order against the enriched
// table and executes their actions on matched lines. Misconfigured
// conditions (unknown field, unparseable numeric comparison) evaluate to
// false so a broken rule silently matches nothing instead of aborting the
// whole pass.
func ApplyRules(t Table, rules []Rule) RuleReport {
	report := RuleReport{Applications: make([]RuleApplication, 0, len(rules))}

	for _, rule := range rules {
		var matched []*LineItem
		switch rule.Level {
		case LevelOrder:
			matched = matchOrderLevel(t, rule)
		default:
			matched = matchArticleLevel(t, rule)
		}

		for _, li := range matched {
			for _, action := range rule.Actions {
				execute(li, action)
			}
		}

		report.Applications = append(report.Applications, RuleApplication{
			Rule:         rule.Name,
			MatchedLines: len(matched),
		})
	}

	return report
}

// matchArticleLevel evaluates conditions row by row
func matchArticleLevel(t Table, rule Rule) []*LineItem {
	var matched []*LineItem
	for _, li := range t {
		if combine(rule.MatchMode, rule.Conditions, func(c Condition) bool {
			value, ok := li.FieldValue(c.Field)
			if !ok {
				return false
			}
			return evaluate(c.Operator, value, c.Value)
		}) {
			matched = append(matched, li)
		}
	}
	return matched
}

// matchOrderLevel evaluates conditions once per distinct order against
// order-derived fields and broadcasts the decision to the order's lines
func matchOrderLevel(t Table, rule Rule) []*LineItem {
	var matched []*LineItem
	for _, orderID := range t.OrderIDs() {
		lines := t.Orders()[orderID]
		view := newOrderFields(lines)
		if combine(rule.MatchMode, rule.Conditions, view.evaluate) {
			matched = append(matched, lines...)
		}
	}
	return matched
}

// combine folds condition results under the rule's match mode. An empty
// condition list matches everything under ALL and nothing under ANY,
// mirroring the identity of each fold.
func combine(mode MatchMode, conditions []Condition, eval func(Condition) bool) bool {
	if mode == MatchAny {
		for _, c := range conditions {
			if eval(c) {
				return true
			}
		}
		return false
	}
	for _, c := range conditions {
		if !eval(c) {
			return false
		}
	}
	return true
}

// orderFields holds the order-derived values order-level conditions see
type orderFields struct {
	itemCount     int
	totalQuantity int
	totalPrice    decimal.Decimal
	skus          []string
}

func newOrderFields(lines []*LineItem) orderFields {
	fields := orderFields{itemCount: len(lines), totalPrice: decimal.Zero}
	seen := make(map[string]bool, len(lines))
	for _, li := range lines {
		fields.totalQuantity += li.Quantity
		fields.totalPrice = fields.totalPrice.Add(li.TotalPrice)
		if !seen[li.SKU] {
			seen[li.SKU] = true
			fields.skus = append(fields.skus, li.SKU)
		}
	}
	return fields
}

func (f orderFields) evaluate(c Condition) bool {
	switch c.Field {
	case FieldItemCount:
		return evaluate(c.Operator, strconv.Itoa(f.itemCount), c.Value)
	case FieldTotalQuantity:
		return evaluate(c.Operator, strconv.Itoa(f.totalQuantity), c.Value)
	case FieldTotalPrice:
		return evaluate(c.Operator, f.totalPrice.String(), c.Value)
	case FieldHasSKU:
		return f.evaluateHasSKU(c)
	}
	return false
}

// evaluateHasSKU is a membership test over the order's SKU set supporting
// the same operators as field conditions. Positive operators ask whether
// any SKU satisfies them; the negated operators are the complement of
// their positive counterpart over the whole set.
func (f orderFields) evaluateHasSKU(c Condition) bool {
	anyMatches := func(op ConditionOperator) bool {
		for _, sku := range f.skus {
			if evaluate(op, sku, c.Value) {
				return true
			}
		}
		return false
	}

	switch c.Operator {
	case OperatorNotEquals:
		return !anyMatches(OperatorEquals)
	case OperatorNotContains:
		return !anyMatches(OperatorContains)
	case OperatorIsEmpty:
		return len(f.skus) == 0
	case OperatorIsNotEmpty:
		return len(f.skus) > 0
	default:
		return anyMatches(c.Operator)
	}
}

// evaluate applies one operator to a field value and the condition
// literal. Ordering operators compare numerically via decimal; values
// that fail to parse make the condition false.
func evaluate(op ConditionOperator, value, target string) bool {
	switch op {
	case OperatorEquals:
		return value == target
	case OperatorNotEquals:
		return value != target
	case OperatorContains:
		return strings.Contains(value, target)
	case OperatorNotContains:
		return !strings.Contains(value, target)
	case OperatorGreaterThan:
		cmp, ok := compareNumeric(value, target)
		return ok && cmp > 0
	case OperatorLessThan:
		cmp, ok := compareNumeric(value, target)
		return ok && cmp < 0
	case OperatorStartsWith:
		return strings.HasPrefix(value, target)
	case OperatorEndsWith:
		return strings.HasSuffix(value, target)
	case OperatorIsEmpty:
		return strings.TrimSpace(value) == ""
	case OperatorIsNotEmpty:
		return strings.TrimSpace(value) != ""
	}
	return false
}

func compareNumeric(value, target string) (int, bool) {
	a, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return 0, false
	}
	b, err := decimal.NewFromString(strings.TrimSpace(target))
	if err != nil {
		return 0, false
	}
	return a.Cmp(b), true
}

// execute applies a single action to a line
func execute(li *LineItem, action Action) {
	switch action.Type {
	case ActionAddTag:
		li.StatusNote = appendTag(li.StatusNote, action.Value)
	case ActionSetPriority:
		li.Priority = action.Value
	case ActionExcludeOrder:
		li.Excluded = parseExcluded(action.Value)
	}
}

// appendTag appends a tag token unless it is already present, keeping
// re-application of the same rule idempotent
func appendTag(note, tag string) string {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return note
	}
	if note == "" {
		return tag
	}
	for _, token := range strings.Split(note, ",") {
		if strings.TrimSpace(token) == tag {
			return note
		}
	}
	return note + ", " + tag
}

// parseExcluded reads the action value as a bool; a blank value means
// "exclude", the action's usual intent
func parseExcluded(value string) bool {
	if strings.TrimSpace(value) == "" {
		return true
	}
	excluded, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return true
	}
	return excluded
}
