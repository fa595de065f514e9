package pricing

import (
	"github.com/shopspring/decimal"
)

// Status tags a quote outcome. Every failure mode inside the engine is an
// expected, typed outcome rather than an error.
type Status string

const (
	StatusOK               Status = "ok"
	StatusNoPriceList      Status = "no_active_price_list"
	StatusArticleNotPriced Status = "article_not_priced"
	StatusArticleNotFound  Status = "article_not_found"
)

// Result is the outcome of the single-article pipeline. For non-OK statuses
// only Status and Reason are meaningful; prices render as null on the wire.
type Result struct {
	Status Status
	Reason string

	PriceListID   int64
	PriceListName string

	BasePrice          decimal.Decimal
	FinalPrice         decimal.Decimal
	TotalDiscount      decimal.Decimal
	DiscountPercentage decimal.Decimal

	AppliedRules   []AppliedRule
	AppliedBundles []AppliedBundle

	Validation          Verdict
	BelowCost           bool
	SupplierDiscountPct decimal.Decimal
	AuthorizedBy        string
}

// OK reports whether the pipeline produced a priced result.
func (r Result) OK() bool {
	return r.Status == StatusOK
}

func statusReason(s Status) string {
	switch s {
	case StatusNoPriceList:
		return "no active price list for the company and date"
	case StatusArticleNotPriced:
		return "article not priced in the resolved price list"
	case StatusArticleNotFound:
		return "article not found"
	default:
		return ""
	}
}

func errorResult(s Status) Result {
	return Result{Status: s, Reason: statusReason(s)}
}

// OrderItemResult pairs one order line with its quote outcome.
type OrderItemResult struct {
	ArticleID int64
	Quantity  int
	Result
}

// OrderSummary aggregates the order pipeline.
type OrderSummary struct {
	TotalItems           int
	OrderTotal           decimal.Decimal
	EstimatedOrderAmount decimal.Decimal
}

// OrderResult is the outcome of the order pipeline.
type OrderResult struct {
	Items   []OrderItemResult
	Summary OrderSummary
}
