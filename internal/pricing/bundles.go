package pricing

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/andes-labs/backend-precios/internal/catalog"
)

// OrderItem is one line of the order context supplied to bundle evaluation.
type OrderItem struct {
	ArticleID int64
	Quantity  int
}

// AppliedBundle is one entry of the bundle trace.
type AppliedBundle struct {
	BundleID     int64
	Name         string
	DiscountType catalog.DiscountType
	Value        decimal.Decimal
	MinQuantity  int

	adjust Adjustment
}

// evaluateBundles checks the order's item set against every active bundle of
// the list. All applicable bundles are collected; there is no mutual
// exclusion between them.
//
// Thresholds are deliberately asymmetric: explicit-article-set bundles
// compare the number of DISTINCT matching articles against min_quantity,
// while group and line bundles count matching order lines. This mirrors the
// commercial policy as specified; do not unify the two.
func (e *Engine) evaluateBundles(ctx context.Context, companyID, priceListID int64, items []OrderItem) []AppliedBundle {
	if len(items) == 0 {
		return nil
	}
	bundles, err := e.source().BundlesByList(ctx, priceListID)
	if err != nil {
		e.debug(err, "fetch bundles")
		return nil
	}
	if len(bundles) == 0 {
		return nil
	}

	taxonomy := e.orderTaxonomy(ctx, companyID, items)

	var applied []AppliedBundle
	for _, b := range bundles {
		if !b.Active || b.MinQuantity <= 0 {
			continue
		}
		if !e.bundleApplies(b, items, taxonomy) {
			continue
		}
		var adjust Adjustment
		switch b.DiscountType {
		case catalog.DiscountPercentage:
			adjust = PercentageOff{Value: b.DiscountValue}
		case catalog.DiscountFixedAmount:
			adjust = AmountOff{Value: b.DiscountValue}
		default:
			continue
		}
		applied = append(applied, AppliedBundle{
			BundleID:     b.ID,
			Name:         b.Name,
			DiscountType: b.DiscountType,
			Value:        b.DiscountValue,
			MinQuantity:  b.MinQuantity,
			adjust:       adjust,
		})
	}
	return applied
}

// itemTaxonomy is an article's position in the group/line hierarchy.
type itemTaxonomy struct {
	GroupID int64
	LineID  int64
}

// orderTaxonomy resolves group and line membership for the distinct articles
// of the order. Lookup failures leave the article out, which makes the
// affected bundles simply not match.
func (e *Engine) orderTaxonomy(ctx context.Context, companyID int64, items []OrderItem) map[int64]itemTaxonomy {
	out := make(map[int64]itemTaxonomy, len(items))
	for _, it := range items {
		if _, seen := out[it.ArticleID]; seen {
			continue
		}
		article, err := e.source().Article(ctx, companyID, it.ArticleID)
		if err != nil || article == nil {
			e.debug(err, "fetch article for bundle taxonomy")
			continue
		}
		tax := itemTaxonomy{GroupID: article.GroupID}
		if group, err := e.source().ArticleGroup(ctx, article.GroupID); err == nil && group != nil {
			tax.LineID = group.LineID
		}
		out[it.ArticleID] = tax
	}
	return out
}

func (e *Engine) bundleApplies(b catalog.ProductBundle, items []OrderItem, taxonomy map[int64]itemTaxonomy) bool {
	switch {
	case len(b.ArticleIDs) > 0:
		wanted := make(map[int64]struct{}, len(b.ArticleIDs))
		for _, id := range b.ArticleIDs {
			wanted[id] = struct{}{}
		}
		distinct := make(map[int64]struct{})
		for _, it := range items {
			if _, ok := wanted[it.ArticleID]; ok {
				distinct[it.ArticleID] = struct{}{}
			}
		}
		return len(distinct) >= b.MinQuantity
	case b.GroupID != nil:
		matches := 0
		for _, it := range items {
			if tax, ok := taxonomy[it.ArticleID]; ok && tax.GroupID == *b.GroupID {
				matches++
			}
		}
		return matches >= b.MinQuantity
	case b.LineID != nil:
		matches := 0
		for _, it := range items {
			if tax, ok := taxonomy[it.ArticleID]; ok && tax.LineID == *b.LineID {
				matches++
			}
		}
		return matches >= b.MinQuantity
	default:
		// A bundle with no trigger set never applies.
		return false
	}
}
