// Package pricing implements the price resolution engine: price list
// resolution, prioritized rule adjustments, bundle discounts, and cost floor
// validation, composed into deterministic quote pipelines.
//
// The engine is stateless and side-effect-free over its inputs. All catalog
// data arrives through the injected catalog.Source; any fetch failure is
// treated as absence of data, per the commercial requirement that lookup
// problems surface as "not found" results rather than transport errors.
package pricing

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/andes-labs/backend-precios/internal/catalog"
)

// Engine evaluates quotes against a read-only catalog source. Safe for
// concurrent use: it holds no mutable state between calls.
type Engine struct {
	Source catalog.Source
	Logger *zerolog.Logger
	// Now supplies the default as-of date when a request carries none.
	// Overridable for tests.
	Now func() time.Time
}

// QuoteRequest is one single-article calculation.
type QuoteRequest struct {
	CompanyID int64
	BranchID  *int64
	ArticleID int64
	Channel   catalog.Channel
	Quantity  int
	// OrderAmount is the caller-supplied order total used by ORDER_AMOUNT
	// rules. The order pipeline fills it with its cost-based estimate.
	OrderAmount decimal.Decimal
	// Items is the optional order-wide context; when present, bundle
	// discounts are evaluated against it.
	Items []OrderItem
	// AsOf is the pricing date; zero means "today".
	AsOf time.Time
}

// OrderRequest runs the pipeline across all items of an order.
type OrderRequest struct {
	CompanyID int64
	BranchID  *int64
	Channel   catalog.Channel
	Items     []OrderItem
	AsOf      time.Time
}

// Quote runs the single-article pipeline: resolve the price list, look up the
// base price, apply matching rules in priority order, apply bundle discounts
// when an order context is present, clamp at zero, and validate against cost.
func (e *Engine) Quote(ctx context.Context, req QuoteRequest) Result {
	asOf := req.AsOf
	if asOf.IsZero() {
		asOf = e.now()
	}

	list := e.resolvePriceList(ctx, req.CompanyID, req.BranchID, req.Channel, asOf)
	if list == nil {
		return errorResult(StatusNoPriceList)
	}

	entry, err := e.source().ArticlePrice(ctx, list.ID, req.ArticleID)
	if err != nil {
		e.debug(err, "fetch article price")
		entry = nil
	}
	if entry == nil {
		return errorResult(StatusArticleNotPriced)
	}

	article, err := e.source().Article(ctx, req.CompanyID, req.ArticleID)
	if err != nil {
		e.debug(err, "fetch article")
		article = nil
	}
	if article == nil {
		return errorResult(StatusArticleNotFound)
	}

	lineID := int64(0)
	if group, err := e.source().ArticleGroup(ctx, article.GroupID); err == nil && group != nil {
		lineID = group.LineID
	}

	applied := e.applyRules(ctx, *list, *article, lineID, req.Quantity, req.OrderAmount, req.Channel)

	price := entry.BasePrice
	for _, rule := range applied {
		price = rule.adjust.Apply(price)
	}

	var bundles []AppliedBundle
	if len(req.Items) > 0 {
		bundles = e.evaluateBundles(ctx, req.CompanyID, list.ID, req.Items)
		for _, b := range bundles {
			price = b.adjust.Apply(price)
		}
	}

	if price.IsNegative() {
		price = decimal.Zero
	}

	verdict := ValidateCost(price, article.LastCost, entry.SupplierDiscountPct)

	totalDiscount := entry.BasePrice.Sub(price)
	discountPct := decimal.Zero
	if entry.BasePrice.IsPositive() {
		discountPct = totalDiscount.Div(entry.BasePrice).Mul(decimal.NewFromInt(100)).Round(2)
	}

	return Result{
		Status:              StatusOK,
		PriceListID:         list.ID,
		PriceListName:       list.Name,
		BasePrice:           entry.BasePrice,
		FinalPrice:          price,
		TotalDiscount:       totalDiscount,
		DiscountPercentage:  discountPct,
		AppliedRules:        applied,
		AppliedBundles:      bundles,
		Validation:          verdict,
		BelowCost:           entry.BelowCost || verdict.BelowCost,
		SupplierDiscountPct: entry.SupplierDiscountPct,
		AuthorizedBy:        entry.AuthorizedBy,
	}
}

// QuoteOrder runs the pipeline for every order item. The shared order total
// is a cost-based estimate, sum(quantity * last_cost) over resolvable items,
// so ORDER_AMOUNT rules see the same figure for every line regardless of
// evaluation order. Items are evaluated sequentially; they are independent
// apart from the shared estimate and item list, so the outcome would be
// identical in any order.
func (e *Engine) QuoteOrder(ctx context.Context, req OrderRequest) OrderResult {
	estimate := decimal.Zero
	for _, it := range req.Items {
		article, err := e.source().Article(ctx, req.CompanyID, it.ArticleID)
		if err != nil || article == nil {
			e.debug(err, "fetch article for order estimate")
			continue
		}
		estimate = estimate.Add(decimal.NewFromInt(int64(it.Quantity)).Mul(article.LastCost))
	}

	results := make([]OrderItemResult, 0, len(req.Items))
	orderTotal := decimal.Zero
	for _, it := range req.Items {
		res := e.Quote(ctx, QuoteRequest{
			CompanyID:   req.CompanyID,
			BranchID:    req.BranchID,
			ArticleID:   it.ArticleID,
			Channel:     req.Channel,
			Quantity:    it.Quantity,
			OrderAmount: estimate,
			Items:       req.Items,
			AsOf:        req.AsOf,
		})
		if res.OK() {
			orderTotal = orderTotal.Add(res.FinalPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
		}
		results = append(results, OrderItemResult{ArticleID: it.ArticleID, Quantity: it.Quantity, Result: res})
	}

	return OrderResult{
		Items: results,
		Summary: OrderSummary{
			TotalItems:           len(req.Items),
			OrderTotal:           orderTotal,
			EstimatedOrderAmount: estimate,
		},
	}
}

func (e *Engine) source() catalog.Source {
	return e.Source
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// debug records swallowed fetch errors so operators can tell an outage from
// genuinely missing data. The result the caller sees is unaffected.
func (e *Engine) debug(err error, msg string) {
	if err == nil || e.Logger == nil {
		return
	}
	e.Logger.Debug().Err(err).Msg(msg)
}
