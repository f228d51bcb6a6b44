package fulfillment

import (
	"fmt"

	"github.com/erp/fulfillment/internal/domain/shared"
)

// MatchMode decides how a rule combines its condition results
type MatchMode string

const (
	// MatchAll requires every condition to hold (logical AND)
	MatchAll MatchMode = "ALL"
	// MatchAny requires at least one condition to hold (logical OR)
	MatchAny MatchMode = "ANY"
)

// IsValid checks if the match mode is a known value
func (m MatchMode) IsValid() bool {
	return m == MatchAll || m == MatchAny
}

// RuleLevel decides whether conditions evaluate per line item or once per
// whole order
type RuleLevel string

const (
	// LevelArticle evaluates conditions row by row over every line item
	LevelArticle RuleLevel = "article"
	// LevelOrder evaluates conditions once per distinct order against
	// order-derived fields, broadcasting the result to the order's lines
	LevelOrder RuleLevel = "order"
)

// IsValid checks if the rule level is a known value
func (l RuleLevel) IsValid() bool {
	return l == LevelArticle || l == LevelOrder
}

// ConditionOperator is the closed set of comparison operators available to
// rule conditions. Dispatch is an exhaustive switch so an unhandled
// operator is a compile-time miss, not a runtime lookup failure.
type ConditionOperator string

const (
	OperatorEquals      ConditionOperator = "equals"
	OperatorNotEquals   ConditionOperator = "not_equals"
	OperatorContains    ConditionOperator = "contains"
	OperatorNotContains ConditionOperator = "not_contains"
	OperatorGreaterThan ConditionOperator = "greater_than"
	OperatorLessThan    ConditionOperator = "less_than"
	OperatorStartsWith  ConditionOperator = "starts_with"
	OperatorEndsWith    ConditionOperator = "ends_with"
	OperatorIsEmpty     ConditionOperator = "is_empty"
	OperatorIsNotEmpty  ConditionOperator = "is_not_empty"
)

// IsValid checks if the operator is a known value
func (o ConditionOperator) IsValid() bool {
	switch o {
	case OperatorEquals, OperatorNotEquals, OperatorContains, OperatorNotContains,
		OperatorGreaterThan, OperatorLessThan, OperatorStartsWith, OperatorEndsWith,
		OperatorIsEmpty, OperatorIsNotEmpty:
		return true
	}
	return false
}

// String returns the string representation
func (o ConditionOperator) String() string {
	return string(o)
}

// ActionType is the closed set of rule actions. Each action owns its
// target column: add_tag appends to status_note, set_priority assigns
// priority, exclude_order assigns the excluded flag.
type ActionType string

const (
	// ActionAddTag appends a discrete tag token to the status note;
	// re-appending an existing token is a no-op
	ActionAddTag ActionType = "add_tag"
	// ActionSetPriority overwrites the priority column
	ActionSetPriority ActionType = "set_priority"
	// ActionExcludeOrder overwrites the excluded flag
	ActionExcludeOrder ActionType = "exclude_order"
)

// IsValid checks if the action type is a known value
func (a ActionType) IsValid() bool {
	switch a {
	case ActionAddTag, ActionSetPriority, ActionExcludeOrder:
		return true
	}
	return false
}

// Condition is a single field comparison inside a rule
type Condition struct {
	Field    string            `json:"field"`
	Operator ConditionOperator `json:"operator"`
	Value    string            `json:"value"`
}

// Action is a single rule effect applied to matched lines
type Action struct {
	Type  ActionType `json:"type"`
	Value string     `json:"value"`
}

// Rule tags or reclassifies orders after simulation. Rules run in
// declared order; later rules may overwrite columns written by earlier
// ones (last writer wins, no conflict detection).
type Rule struct {
	Name       string      `json:"name"`
	MatchMode  MatchMode   `json:"match_mode"`
	Level      RuleLevel   `json:"level"`
	Conditions []Condition `json:"conditions"`
	Actions    []Action    `json:"actions"`
}

// Validate checks a rule's structural validity. Unknown condition fields
// are deliberately not rejected here: they degrade to "never matches"
// during evaluation.
func (r *Rule) Validate() error {
	if r.Name == "" {
		return shared.NewDomainError("INVALID_RULE", "Rule name is required")
	}
	if !r.MatchMode.IsValid() {
		return shared.NewDomainError("INVALID_RULE",
			fmt.Sprintf("Rule %q has unknown match mode %q", r.Name, r.MatchMode))
	}
	if !r.Level.IsValid() {
		return shared.NewDomainError("INVALID_RULE",
			fmt.Sprintf("Rule %q has unknown level %q", r.Name, r.Level))
	}
	if len(r.Actions) == 0 {
		return shared.NewDomainError("INVALID_RULE",
			fmt.Sprintf("Rule %q has no actions", r.Name))
	}
	for _, condition := range r.Conditions {
		if !condition.Operator.IsValid() {
			return shared.NewDomainError("INVALID_RULE",
				fmt.Sprintf("Rule %q uses unknown operator %q", r.Name, condition.Operator))
		}
	}
	for _, action := range r.Actions {
		if !action.Type.IsValid() {
			return shared.NewDomainError("INVALID_RULE",
				fmt.Sprintf("Rule %q uses unknown action type %q", r.Name, action.Type))
		}
	}
	return nil
}
