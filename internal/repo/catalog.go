// Package repo provides the Postgres-backed catalog source.
package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/andes-labs/backend-precios/internal/catalog"
)

// CatalogRepo implements catalog.Source over a pgx connection pool. Absent
// rows are reported as (nil, nil); the engine turns absence into its typed
// not-found results.
type CatalogRepo struct {
	Pool *pgxpool.Pool
}

var _ catalog.Source = (*CatalogRepo)(nil)

// NewCatalogRepo constructs a CatalogRepo.
func NewCatalogRepo(pool *pgxpool.Pool) *CatalogRepo {
	return &CatalogRepo{Pool: pool}
}

// PriceLists returns every list belonging to the company. Validity and channel
// filtering happen in the resolver, not here.
func (r *CatalogRepo) PriceLists(ctx context.Context, companyID int64) ([]catalog.PriceList, error) {
	rows, err := r.Pool.Query(ctx, `SELECT id, company_id, branch_id, name, list_type, channel, start_date, end_date, active
FROM price_lists WHERE company_id = $1`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []catalog.PriceList
	for rows.Next() {
		var l catalog.PriceList
		var listType, channel string
		if err := rows.Scan(&l.ID, &l.CompanyID, &l.BranchID, &l.Name, &listType, &channel, &l.StartDate, &l.EndDate, &l.Active); err != nil {
			return nil, err
		}
		l.Type = catalog.ListType(listType)
		l.Channel = catalog.Channel(channel)
		out = append(out, l)
	}
	return out, rows.Err()
}

// ArticlePrice returns the base price entry for (list, article), or nil.
func (r *CatalogRepo) ArticlePrice(ctx context.Context, priceListID, articleID int64) (*catalog.ArticlePrice, error) {
	row := r.Pool.QueryRow(ctx, `SELECT id, price_list_id, article_id, base_price::text, below_cost,
COALESCE(supplier_discount_pct, 0)::text, COALESCE(authorized_by, ''), authorized_at
FROM article_prices WHERE price_list_id = $1 AND article_id = $2`, priceListID, articleID)

	var p catalog.ArticlePrice
	var basePrice, supplierPct string
	err := row.Scan(&p.ID, &p.PriceListID, &p.ArticleID, &basePrice, &p.BelowCost, &supplierPct, &p.AuthorizedBy, &p.AuthorizedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if p.BasePrice, err = decimal.NewFromString(basePrice); err != nil {
		return nil, err
	}
	if p.SupplierDiscountPct, err = decimal.NewFromString(supplierPct); err != nil {
		return nil, err
	}
	return &p, nil
}

// Article returns the company's article by id, or nil.
func (r *CatalogRepo) Article(ctx context.Context, companyID, articleID int64) (*catalog.Article, error) {
	row := r.Pool.QueryRow(ctx, `SELECT id, company_id, group_id, code, name, unit, last_cost::text, active
FROM articles WHERE company_id = $1 AND id = $2`, companyID, articleID)

	var a catalog.Article
	var lastCost string
	err := row.Scan(&a.ID, &a.CompanyID, &a.GroupID, &a.Code, &a.Name, &a.Unit, &lastCost, &a.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if a.LastCost, err = decimal.NewFromString(lastCost); err != nil {
		return nil, err
	}
	return &a, nil
}

// ArticleGroup returns a group by id, or nil.
func (r *CatalogRepo) ArticleGroup(ctx context.Context, groupID int64) (*catalog.ArticleGroup, error) {
	row := r.Pool.QueryRow(ctx, `SELECT id, company_id, line_id, code, name, active
FROM article_groups WHERE id = $1`, groupID)

	var g catalog.ArticleGroup
	err := row.Scan(&g.ID, &g.CompanyID, &g.LineID, &g.Code, &g.Name, &g.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// RulesByList returns the list's active rules ordered by ascending priority,
// ties broken by id.
func (r *CatalogRepo) RulesByList(ctx context.Context, priceListID int64) ([]catalog.PriceRule, error) {
	rows, err := r.Pool.Query(ctx, `SELECT id, price_list_id, name, rule_type, adjustment_type, line_id, group_id,
min_quantity, max_quantity, min_amount::text, max_amount::text, value::text, priority, active
FROM price_rules WHERE price_list_id = $1 AND active ORDER BY priority, id`, priceListID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []catalog.PriceRule
	for rows.Next() {
		var (
			rec                  catalog.PriceRule
			ruleType, adjustment string
			minAmount, maxAmount *string
			value                string
		)
		if err := rows.Scan(&rec.ID, &rec.PriceListID, &rec.Name, &ruleType, &adjustment, &rec.LineID, &rec.GroupID,
			&rec.MinQuantity, &rec.MaxQuantity, &minAmount, &maxAmount, &value, &rec.Priority, &rec.Active); err != nil {
			return nil, err
		}
		rec.Type = catalog.RuleType(ruleType)
		rec.Adjustment = catalog.AdjustmentType(adjustment)
		if rec.MinAmount, err = parseOptionalDecimal(minAmount); err != nil {
			return nil, err
		}
		if rec.MaxAmount, err = parseOptionalDecimal(maxAmount); err != nil {
			return nil, err
		}
		if rec.Value, err = decimal.NewFromString(value); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// BundlesByList returns the list's active bundles.
func (r *CatalogRepo) BundlesByList(ctx context.Context, priceListID int64) ([]catalog.ProductBundle, error) {
	rows, err := r.Pool.Query(ctx, `SELECT id, price_list_id, name, COALESCE(description, ''), line_id, group_id,
COALESCE(article_ids, '{}'), min_quantity, discount_type, discount_value::text, active
FROM product_bundles WHERE price_list_id = $1 AND active`, priceListID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []catalog.ProductBundle
	for rows.Next() {
		var (
			b             catalog.ProductBundle
			discountType  string
			discountValue string
		)
		if err := rows.Scan(&b.ID, &b.PriceListID, &b.Name, &b.Description, &b.LineID, &b.GroupID,
			&b.ArticleIDs, &b.MinQuantity, &discountType, &discountValue, &b.Active); err != nil {
			return nil, err
		}
		b.DiscountType = catalog.DiscountType(discountType)
		if b.DiscountValue, err = decimal.NewFromString(discountValue); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func parseOptionalDecimal(value *string) (*decimal.Decimal, error) {
	if value == nil {
		return nil, nil
	}
	d, err := decimal.NewFromString(*value)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
