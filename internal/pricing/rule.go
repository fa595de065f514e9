package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/andes-labs/backend-precios/internal/catalog"
)

// Condition is one rule variant's applicability test. Each variant carries
// only the fields relevant to its kind, so malformed combinations (a channel
// rule with a quantity range, say) cannot be expressed after compilation.
type Condition interface {
	Matches(in ConditionInput) bool
}

// ConditionInput bundles the per-evaluation facts conditions test against.
type ConditionInput struct {
	ListChannel      catalog.Channel
	RequestedChannel catalog.Channel
	Quantity         int
	ArticleAmount    decimal.Decimal // quantity * article.last_cost
	OrderAmount      decimal.Decimal
}

// ChannelCondition matches when the list serves the requested channel.
type ChannelCondition struct{}

func (ChannelCondition) Matches(in ConditionInput) bool {
	return in.ListChannel == in.RequestedChannel || in.ListChannel == catalog.ChannelAll
}

// UnitScaleCondition matches when the quantity falls inside the bounds.
// A nil bound is unbounded on that side.
type UnitScaleCondition struct {
	Min *int
	Max *int
}

func (c UnitScaleCondition) Matches(in ConditionInput) bool {
	if c.Min != nil && in.Quantity < *c.Min {
		return false
	}
	if c.Max != nil && in.Quantity > *c.Max {
		return false
	}
	return true
}

// AmountScaleCondition matches on the article's cost-based amount.
type AmountScaleCondition struct {
	Min *decimal.Decimal
	Max *decimal.Decimal
}

func (c AmountScaleCondition) Matches(in ConditionInput) bool {
	return amountInRange(in.ArticleAmount, c.Min, c.Max)
}

// OrderAmountCondition matches on the order's total amount.
type OrderAmountCondition struct {
	Min *decimal.Decimal
	Max *decimal.Decimal
}

func (c OrderAmountCondition) Matches(in ConditionInput) bool {
	return amountInRange(in.OrderAmount, c.Min, c.Max)
}

func amountInRange(amount decimal.Decimal, min, max *decimal.Decimal) bool {
	if min != nil && amount.LessThan(*min) {
		return false
	}
	if max != nil && amount.GreaterThan(*max) {
		return false
	}
	return true
}

// Adjustment is a pure price -> price transform. The orchestrator folds an
// ordered sequence of these onto the base price, which keeps every
// intermediate state inspectable.
type Adjustment interface {
	Apply(price decimal.Decimal) decimal.Decimal
}

// PercentageOff subtracts a percentage of the running price.
type PercentageOff struct {
	Value decimal.Decimal
}

func (a PercentageOff) Apply(price decimal.Decimal) decimal.Decimal {
	return price.Sub(price.Mul(a.Value).Div(decimal.NewFromInt(100)))
}

// AmountOff subtracts a fixed amount from the running price.
type AmountOff struct {
	Value decimal.Decimal
}

func (a AmountOff) Apply(price decimal.Decimal) decimal.Decimal {
	return price.Sub(a.Value)
}

// FixedPrice overwrites the running price. Later adjustments still apply on
// top of the overwritten value.
type FixedPrice struct {
	Value decimal.Decimal
}

func (a FixedPrice) Apply(decimal.Decimal) decimal.Decimal {
	return a.Value
}

// Scope restricts a rule to a line or group of the article taxonomy. Both nil
// means the rule applies to every article.
type Scope struct {
	LineID  *int64
	GroupID *int64
}

// AppliesTo mirrors the original applicability check: no filter applies to
// all; a line filter matching the article's line is sufficient on its own;
// otherwise a group filter may still match. Line and group are mutually
// exclusive in well-formed rules, but both-set records keep this behavior.
func (s Scope) AppliesTo(groupID, lineID int64) bool {
	if s.LineID == nil && s.GroupID == nil {
		return true
	}
	if s.LineID != nil && *s.LineID == lineID {
		return true
	}
	if s.GroupID != nil && *s.GroupID == groupID {
		return true
	}
	return false
}

// Rule is the compiled, typed form of a stored catalog.PriceRule.
type Rule struct {
	ID        int64
	Name      string
	Type      catalog.RuleType
	AdjType   catalog.AdjustmentType
	Value     decimal.Decimal
	Priority  int
	Scope     Scope
	Condition Condition
	Adjust    Adjustment
}

// CompileRule converts a stored rule record into its typed form. The second
// return is false for records the rule engine does not evaluate: BUNDLE rules
// (bundles are evaluated from their own definitions) and unknown types.
func CompileRule(r catalog.PriceRule) (Rule, bool) {
	rule := Rule{
		ID:       r.ID,
		Name:     r.Name,
		Type:     r.Type,
		AdjType:  r.Adjustment,
		Value:    r.Value,
		Priority: r.Priority,
		Scope:    Scope{LineID: r.LineID, GroupID: r.GroupID},
	}

	switch r.Type {
	case catalog.RuleChannel:
		rule.Condition = ChannelCondition{}
	case catalog.RuleUnitScale:
		rule.Condition = UnitScaleCondition{Min: r.MinQuantity, Max: r.MaxQuantity}
	case catalog.RuleAmountScale:
		rule.Condition = AmountScaleCondition{Min: r.MinAmount, Max: r.MaxAmount}
	case catalog.RuleOrderAmount:
		rule.Condition = OrderAmountCondition{Min: r.MinAmount, Max: r.MaxAmount}
	case catalog.RuleBundle:
		return Rule{}, false
	default:
		return Rule{}, false
	}

	adjust, ok := compileAdjustment(r.Adjustment, r.Value)
	if !ok {
		return Rule{}, false
	}
	rule.Adjust = adjust
	return rule, true
}

func compileAdjustment(t catalog.AdjustmentType, value decimal.Decimal) (Adjustment, bool) {
	switch t {
	case catalog.AdjustPercentage:
		return PercentageOff{Value: value}, true
	case catalog.AdjustFixedAmount:
		return AmountOff{Value: value}, true
	case catalog.AdjustFixedPrice:
		return FixedPrice{Value: value}, true
	default:
		return nil, false
	}
}
