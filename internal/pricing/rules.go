package pricing

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/andes-labs/backend-precios/internal/catalog"
)

// AppliedRule is one entry of the adjustment trace.
type AppliedRule struct {
	RuleID         int64
	Name           string
	Type           catalog.RuleType
	AdjustmentType catalog.AdjustmentType
	Value          decimal.Decimal

	adjust Adjustment
}

// applyRules selects the list's rules that match the article, quantity, and
// order context, in ascending priority order. Every matching rule
// contributes; there is no first-match short-circuit. The orchestrator folds
// the whole sequence cumulatively.
func (e *Engine) applyRules(ctx context.Context, list catalog.PriceList, article catalog.Article, lineID int64, quantity int, orderAmount decimal.Decimal, channel catalog.Channel) []AppliedRule {
	records, err := e.source().RulesByList(ctx, list.ID)
	if err != nil {
		e.debug(err, "fetch price rules")
		return nil
	}

	rules := make([]Rule, 0, len(records))
	for _, rec := range records {
		if !rec.Active {
			continue
		}
		rule, ok := CompileRule(rec)
		if !ok {
			continue
		}
		rules = append(rules, rule)
	}
	// The source contract already orders by priority; sort again so a
	// misbehaving implementation cannot change the fold order.
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].Priority != rules[j].Priority {
			return rules[i].Priority < rules[j].Priority
		}
		return rules[i].ID < rules[j].ID
	})

	input := ConditionInput{
		ListChannel:      list.Channel,
		RequestedChannel: channel,
		Quantity:         quantity,
		ArticleAmount:    decimal.NewFromInt(int64(quantity)).Mul(article.LastCost),
		OrderAmount:      orderAmount,
	}

	var applied []AppliedRule
	for _, rule := range rules {
		if !rule.Scope.AppliesTo(article.GroupID, lineID) {
			continue
		}
		if !rule.Condition.Matches(input) {
			continue
		}
		applied = append(applied, AppliedRule{
			RuleID:         rule.ID,
			Name:           rule.Name,
			Type:           rule.Type,
			AdjustmentType: rule.AdjType,
			Value:          rule.Value,
			adjust:         rule.Adjust,
		})
	}
	return applied
}
