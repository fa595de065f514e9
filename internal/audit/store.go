// Package audit persists the computed order lines of priced orders. Records
// are write-only from the engine's point of view: they feed reporting and
// margin reviews and never influence a later quote.
package audit

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ErrStoreUnavailable indicates the audit store dependency is not configured.
var ErrStoreUnavailable = errors.New("audit: store unavailable")

// OrderLineDetail is one priced order line as it was computed, frozen at
// quote time. AppliedRules is the serialized trace of the rules and bundles
// that shaped the price. Error lines keep their status and carry zero prices.
type OrderLineDetail struct {
	ID            uuid.UUID       `json:"id"`
	OrderNumber   string          `json:"order_number"`
	CompanyID     int64           `json:"company_id"`
	BranchID      *int64          `json:"branch_id,omitempty"`
	ArticleID     int64           `json:"article_id"`
	Quantity      int             `json:"quantity"`
	Status        string          `json:"status"`
	PriceListID   *int64          `json:"price_list_id,omitempty"`
	BasePrice     decimal.Decimal `json:"base_price"`
	FinalPrice    decimal.Decimal `json:"final_price"`
	TotalDiscount decimal.Decimal `json:"total_discount"`
	AppliedRules  json.RawMessage `json:"applied_rules,omitempty"`
	BelowCost     bool            `json:"below_cost"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Store provides database accessors for order line audit records.
type Store interface {
	InsertOrderLines(ctx context.Context, lines []OrderLineDetail) error
	ListOrderLines(ctx context.Context, orderNumber string, limit, offset int) ([]OrderLineDetail, error)
	CountOrderLines(ctx context.Context, orderNumber string) (int64, error)
}

// NewStore constructs a Store backed by a pgx connection pool.
func NewStore(pool *pgxpool.Pool) Store {
	return &pgStore{pool: pool}
}

type pgStore struct {
	pool *pgxpool.Pool
}

// InsertOrderLines persists a batch of order lines in one transaction.
func (s *pgStore) InsertOrderLines(ctx context.Context, lines []OrderLineDetail) error {
	if s == nil || s.pool == nil {
		return ErrStoreUnavailable
	}
	if len(lines) == 0 {
		return nil
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, line := range lines {
		var trace any
		if len(line.AppliedRules) > 0 {
			trace = string(line.AppliedRules)
		}
		_, err := tx.Exec(ctx, `INSERT INTO order_line_details
(order_number, company_id, branch_id, article_id, quantity, status, price_list_id, base_price, final_price, total_discount, applied_rules, below_cost)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			line.OrderNumber, line.CompanyID, line.BranchID, line.ArticleID, line.Quantity,
			line.Status, line.PriceListID, line.BasePrice.String(), line.FinalPrice.String(),
			line.TotalDiscount.String(), trace, line.BelowCost)
		if err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// ListOrderLines fetches audit records for one order, newest first.
func (s *pgStore) ListOrderLines(ctx context.Context, orderNumber string, limit, offset int) ([]OrderLineDetail, error) {
	if s == nil || s.pool == nil {
		return nil, ErrStoreUnavailable
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := s.pool.Query(ctx, `SELECT id, order_number, company_id, branch_id, article_id, quantity, status,
price_list_id, base_price::text, final_price::text, total_discount::text, applied_rules, below_cost, created_at
FROM order_line_details WHERE order_number = $1 ORDER BY created_at DESC, article_id LIMIT $2 OFFSET $3`,
		orderNumber, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]OrderLineDetail, 0, limit)
	for rows.Next() {
		var (
			line                            OrderLineDetail
			basePrice, finalPrice, discount string
			trace                           *string
		)
		if err := rows.Scan(&line.ID, &line.OrderNumber, &line.CompanyID, &line.BranchID, &line.ArticleID,
			&line.Quantity, &line.Status, &line.PriceListID, &basePrice, &finalPrice, &discount,
			&trace, &line.BelowCost, &line.CreatedAt); err != nil {
			return nil, err
		}
		if trace != nil {
			line.AppliedRules = json.RawMessage(*trace)
		}
		if line.BasePrice, err = decimal.NewFromString(basePrice); err != nil {
			return nil, err
		}
		if line.FinalPrice, err = decimal.NewFromString(finalPrice); err != nil {
			return nil, err
		}
		if line.TotalDiscount, err = decimal.NewFromString(discount); err != nil {
			return nil, err
		}
		out = append(out, line)
	}
	return out, rows.Err()
}

// CountOrderLines counts audit records for one order.
func (s *pgStore) CountOrderLines(ctx context.Context, orderNumber string) (int64, error) {
	if s == nil || s.pool == nil {
		return 0, ErrStoreUnavailable
	}
	var total int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM order_line_details WHERE order_number = $1`, orderNumber).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}
