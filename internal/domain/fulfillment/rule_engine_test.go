package fulfillment

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pricedLine(orderID, sku string, quantity int, price string) *LineItem {
	li := line(orderID, sku, quantity)
	li.TotalPrice = decimal.RequireFromString(price)
	return li
}

func TestApplyRules(t *testing.T) {
	t.Run("tags high value orders and leaves cheap ones alone", func(t *testing.T) {
		table := Table{
			pricedLine("1001", "A", 1, "150"),
			pricedLine("1002", "B", 1, "50"),
		}

		report := ApplyRules(table, []Rule{{
			Name:      "High value",
			MatchMode: MatchAll,
			Level:     LevelArticle,
			Conditions: []Condition{
				{Field: FieldTotalPrice, Operator: OperatorGreaterThan, Value: "100"},
			},
			Actions: []Action{{Type: ActionAddTag, Value: "HighValue"}},
		}})

		assert.Equal(t, "HighValue", table[0].StatusNote)
		assert.Empty(t, table[1].StatusNote)
		require.Len(t, report.Applications, 1)
		assert.Equal(t, 1, report.Applications[0].MatchedLines)
	})

	t.Run("append tag is idempotent across re-application", func(t *testing.T) {
		table := Table{pricedLine("1001", "A", 1, "150")}
		rules := []Rule{{
			Name:      "High value",
			MatchMode: MatchAll,
			Level:     LevelArticle,
			Conditions: []Condition{
				{Field: FieldTotalPrice, Operator: OperatorGreaterThan, Value: "100"},
			},
			Actions: []Action{{Type: ActionAddTag, Value: "HighValue"}},
		}}

		ApplyRules(table, rules)
		ApplyRules(table, rules)

		assert.Equal(t, "HighValue", table[0].StatusNote)
	})

	t.Run("distinct tags accumulate as discrete tokens", func(t *testing.T) {
		table := Table{pricedLine("1001", "A", 1, "150")}
		table[0].SystemNote = SystemNoteRepeat

		ApplyRules(table, []Rule{
			{
				Name: "High value", MatchMode: MatchAll, Level: LevelArticle,
				Conditions: []Condition{{Field: FieldTotalPrice, Operator: OperatorGreaterThan, Value: "100"}},
				Actions:    []Action{{Type: ActionAddTag, Value: "HighValue"}},
			},
			{
				Name: "Repeat", MatchMode: MatchAll, Level: LevelArticle,
				Conditions: []Condition{{Field: FieldSystemNote, Operator: OperatorEquals, Value: SystemNoteRepeat}},
				Actions:    []Action{{Type: ActionAddTag, Value: "CheckAddress"}},
			},
		})

		assert.Equal(t, "HighValue, CheckAddress", table[0].StatusNote)
	})

	t.Run("ANY matches when at least one condition holds", func(t *testing.T) {
		table := Table{pricedLine("1001", "A", 1, "10")}

		ApplyRules(table, []Rule{{
			Name: "Any", MatchMode: MatchAny, Level: LevelArticle,
			Conditions: []Condition{
				{Field: FieldTotalPrice, Operator: OperatorGreaterThan, Value: "100"},
				{Field: FieldSKU, Operator: OperatorEquals, Value: "A"},
			},
			Actions: []Action{{Type: ActionAddTag, Value: "Matched"}},
		}})

		assert.Equal(t, "Matched", table[0].StatusNote)
	})

	t.Run("ALL requires every condition", func(t *testing.T) {
		table := Table{pricedLine("1001", "A", 1, "10")}

		ApplyRules(table, []Rule{{
			Name: "All", MatchMode: MatchAll, Level: LevelArticle,
			Conditions: []Condition{
				{Field: FieldTotalPrice, Operator: OperatorGreaterThan, Value: "100"},
				{Field: FieldSKU, Operator: OperatorEquals, Value: "A"},
			},
			Actions: []Action{{Type: ActionAddTag, Value: "Matched"}},
		}})

		assert.Empty(t, table[0].StatusNote)
	})

	t.Run("unknown field silently matches nothing", func(t *testing.T) {
		table := Table{pricedLine("1001", "A", 1, "150")}

		report := ApplyRules(table, []Rule{{
			Name: "Broken", MatchMode: MatchAll, Level: LevelArticle,
			Conditions: []Condition{{Field: "no_such_column", Operator: OperatorEquals, Value: "x"}},
			Actions:    []Action{{Type: ActionAddTag, Value: "Never"}},
		}})

		assert.Empty(t, table[0].StatusNote)
		assert.Equal(t, 0, report.Applications[0].MatchedLines)
	})

	t.Run("order-level conditions broadcast to every line", func(t *testing.T) {
		table := Table{
			pricedLine("1001", "A", 2, "10"),
			pricedLine("1001", "B", 3, "10"),
			pricedLine("1002", "C", 1, "10"),
		}

		ApplyRules(table, []Rule{{
			Name: "Bulky", MatchMode: MatchAll, Level: LevelOrder,
			Conditions: []Condition{{Field: FieldTotalQuantity, Operator: OperatorGreaterThan, Value: "4"}},
			Actions:    []Action{{Type: ActionSetPriority, Value: "High"}},
		}})

		assert.Equal(t, "High", table[0].Priority)
		assert.Equal(t, "High", table[1].Priority)
		assert.Equal(t, DefaultPriority, table[2].Priority)
	})

	t.Run("has_sku membership over the order's SKU set", func(t *testing.T) {
		table := Table{
			pricedLine("1001", "GIFT-01", 1, "0"),
			pricedLine("1001", "B", 1, "0"),
			pricedLine("1002", "C", 1, "0"),
		}

		ApplyRules(table, []Rule{
			{
				Name: "Contains gift", MatchMode: MatchAll, Level: LevelOrder,
				Conditions: []Condition{{Field: FieldHasSKU, Operator: OperatorStartsWith, Value: "GIFT"}},
				Actions:    []Action{{Type: ActionAddTag, Value: "Gift"}},
			},
			{
				Name: "No gift anywhere", MatchMode: MatchAll, Level: LevelOrder,
				Conditions: []Condition{{Field: FieldHasSKU, Operator: OperatorNotContains, Value: "GIFT"}},
				Actions:    []Action{{Type: ActionAddTag, Value: "Plain"}},
			},
		})

		assert.Equal(t, "Gift", table[0].StatusNote)
		assert.Equal(t, "Gift", table[1].StatusNote)
		assert.Equal(t, "Plain", table[2].StatusNote)
	})

	t.Run("exclude order action", func(t *testing.T) {
		table := Table{pricedLine("1001", "A", 1, "0")}

		ApplyRules(table, []Rule{{
			Name: "Exclude", MatchMode: MatchAll, Level: LevelArticle,
			Conditions: []Condition{{Field: FieldSKU, Operator: OperatorEquals, Value: "A"}},
			Actions:    []Action{{Type: ActionExcludeOrder}},
		}})

		assert.True(t, table[0].Excluded)
	})

	t.Run("later rules overwrite earlier assignments", func(t *testing.T) {
		table := Table{pricedLine("1001", "A", 1, "0")}

		ApplyRules(table, []Rule{
			{
				Name: "First", MatchMode: MatchAll, Level: LevelArticle,
				Conditions: []Condition{{Field: FieldSKU, Operator: OperatorEquals, Value: "A"}},
				Actions:    []Action{{Type: ActionSetPriority, Value: "Low"}},
			},
			{
				Name: "Second", MatchMode: MatchAll, Level: LevelArticle,
				Conditions: []Condition{{Field: FieldSKU, Operator: OperatorEquals, Value: "A"}},
				Actions:    []Action{{Type: ActionSetPriority, Value: "High"}},
			},
		})

		assert.Equal(t, "High", table[0].Priority)
	})
}

func TestEvaluate(t *testing.T) {
	cases := []struct {
		name     string
		operator ConditionOperator
		value    string
		target   string
		want     bool
	}{
		{"equals", OperatorEquals, "DHL", "DHL", true},
		{"equals mismatch", OperatorEquals, "DHL", "UPS", false},
		{"not equals", OperatorNotEquals, "DHL", "UPS", true},
		{"contains", OperatorContains, "DHL Paket", "Paket", true},
		{"not contains", OperatorNotContains, "DHL Paket", "Express", true},
		{"greater than numeric", OperatorGreaterThan, "150", "100", true},
		{"greater than decimal", OperatorGreaterThan, "99.5", "100", false},
		{"greater than non-numeric", OperatorGreaterThan, "abc", "100", false},
		{"less than", OperatorLessThan, "3", "10", true},
		{"starts with", OperatorStartsWith, "GIFT-01", "GIFT", true},
		{"ends with", OperatorEndsWith, "A-RETURN", "RETURN", true},
		{"is empty", OperatorIsEmpty, "  ", "", true},
		{"is not empty", OperatorIsNotEmpty, "x", "", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, evaluate(tc.operator, tc.value, tc.target))
		})
	}
}

func TestRuleValidate(t *testing.T) {
	valid := Rule{
		Name:      "ok",
		MatchMode: MatchAll,
		Level:     LevelArticle,
		Conditions: []Condition{
			{Field: FieldSKU, Operator: OperatorEquals, Value: "A"},
		},
		Actions: []Action{{Type: ActionAddTag, Value: "T"}},
	}

	t.Run("valid rule passes", func(t *testing.T) {
		assert.NoError(t, valid.Validate())
	})

	t.Run("missing name fails", func(t *testing.T) {
		r := valid
		r.Name = ""
		assert.Error(t, r.Validate())
	})

	t.Run("unknown match mode fails", func(t *testing.T) {
		r := valid
		r.MatchMode = "SOME"
		assert.Error(t, r.Validate())
	})

	t.Run("unknown level fails", func(t *testing.T) {
		r := valid
		r.Level = "row"
		assert.Error(t, r.Validate())
	})

	t.Run("no actions fails", func(t *testing.T) {
		r := valid
		r.Actions = nil
		assert.Error(t, r.Validate())
	})

	t.Run("unknown operator fails", func(t *testing.T) {
		r := valid
		r.Conditions = []Condition{{Field: FieldSKU, Operator: "like", Value: "A"}}
		assert.Error(t, r.Validate())
	})

	t.Run("unknown field is allowed, it just never matches", func(t *testing.T) {
		r := valid
		r.Conditions = []Condition{{Field: "whatever", Operator: OperatorEquals, Value: "A"}}
		assert.NoError(t, r.Validate())
	})
}
