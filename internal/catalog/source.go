package catalog

import "context"

// Source is the read-only data-access contract the pricing engine consumes.
// Implementations return (nil, nil) for a missing record; errors are reserved
// for infrastructure faults, which the engine treats the same as absence.
//
// RulesByList returns active rules ordered by ascending priority.
// BundlesByList returns active bundles. PriceLists returns every list of the
// company regardless of date or active flag; validity filtering is the
// resolver's job so its precedence stages stay testable in one place.
type Source interface {
	PriceLists(ctx context.Context, companyID int64) ([]PriceList, error)
	ArticlePrice(ctx context.Context, priceListID, articleID int64) (*ArticlePrice, error)
	Article(ctx context.Context, companyID, articleID int64) (*Article, error)
	ArticleGroup(ctx context.Context, groupID int64) (*ArticleGroup, error)
	RulesByList(ctx context.Context, priceListID int64) ([]PriceRule, error)
	BundlesByList(ctx context.Context, priceListID int64) ([]ProductBundle, error)
}
