package pricing

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/andes-labs/backend-precios/internal/catalog"
	"github.com/andes-labs/backend-precios/internal/common"
	"github.com/andes-labs/backend-precios/internal/obs"
)

// OrderAuditor records computed order lines as write-only audit artifacts.
// Recording happens after the response is computed and never affects it.
type OrderAuditor interface {
	RecordOrderLines(ctx context.Context, orderNumber string, companyID int64, branchID *int64, result OrderResult)
}

// Handler exposes the quote endpoints.
type Handler struct {
	Engine   *Engine
	Validate *validator.Validate
	Auditor  OrderAuditor
	Logger   zerolog.Logger
}

type orderItemRequest struct {
	ArticleID int64 `json:"article_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,gte=1"`
}

type quoteRequest struct {
	CompanyID        int64              `json:"company_id" validate:"required,gt=0"`
	BranchID         *int64             `json:"branch_id" validate:"omitempty,gt=0"`
	ArticleID        int64              `json:"article_id" validate:"required,gt=0"`
	Channel          string             `json:"channel" validate:"required,oneof=ALL STORE ONLINE DISTRIBUTOR CORPORATE"`
	Quantity         int                `json:"quantity" validate:"required,gte=1"`
	OrderTotalAmount *catalog.Money     `json:"order_total_amount"`
	OrderItems       []orderItemRequest `json:"order_items" validate:"omitempty,dive"`
	AsOfDate         string             `json:"as_of_date"`
}

type orderRequest struct {
	CompanyID   int64              `json:"company_id" validate:"required,gt=0"`
	BranchID    *int64             `json:"branch_id" validate:"omitempty,gt=0"`
	Channel     string             `json:"channel" validate:"required,oneof=ALL STORE ONLINE DISTRIBUTOR CORPORATE"`
	OrderNumber string             `json:"order_number"`
	Items       []orderItemRequest `json:"items" validate:"required,min=1,dive"`
	AsOfDate    string             `json:"as_of_date"`
}

// Quote handles POST /api/v1/pricing/quote.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	if h.Engine == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "pricing engine not configured", nil)
		return
	}
	var req quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
		return
	}
	if err := h.validate(req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}
	orderAmount := catalog.Money{}
	if req.OrderTotalAmount != nil {
		orderAmount = *req.OrderTotalAmount
		if orderAmount.IsNegative() {
			common.JSONError(w, http.StatusBadRequest, "VALIDATION", "order_total_amount must not be negative", nil)
			return
		}
	}
	asOf, err := parseAsOf(req.AsOfDate)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION", "as_of_date must be formatted YYYY-MM-DD", nil)
		return
	}

	start := time.Now()
	res := h.Engine.Quote(r.Context(), QuoteRequest{
		CompanyID:   req.CompanyID,
		BranchID:    req.BranchID,
		ArticleID:   req.ArticleID,
		Channel:     catalog.Channel(req.Channel),
		Quantity:    req.Quantity,
		OrderAmount: orderAmount.Decimal,
		Items:       toOrderItems(req.OrderItems),
		AsOf:        asOf,
	})
	observeQuote(res, time.Since(start))

	if !res.OK() {
		common.JSON(w, http.StatusNotFound, errorBody(res))
		return
	}
	common.JSON(w, http.StatusOK, toQuoteResponse(res))
}

// QuoteOrder handles POST /api/v1/pricing/order.
func (h *Handler) QuoteOrder(w http.ResponseWriter, r *http.Request) {
	if h.Engine == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "pricing engine not configured", nil)
		return
	}
	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
		return
	}
	if err := h.validate(req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}
	asOf, err := parseAsOf(req.AsOfDate)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION", "as_of_date must be formatted YYYY-MM-DD", nil)
		return
	}

	start := time.Now()
	res := h.Engine.QuoteOrder(r.Context(), OrderRequest{
		CompanyID: req.CompanyID,
		BranchID:  req.BranchID,
		Channel:   catalog.Channel(req.Channel),
		Items:     toOrderItems(req.Items),
		AsOf:      asOf,
	})
	for _, item := range res.Items {
		observeQuote(item.Result, 0)
	}
	if obs.QuoteDuration != nil {
		obs.QuoteDuration.Observe(obs.DurationMillis(time.Since(start)))
	}

	if h.Auditor != nil && strings.TrimSpace(req.OrderNumber) != "" {
		h.Auditor.RecordOrderLines(r.Context(), req.OrderNumber, req.CompanyID, req.BranchID, res)
	}

	items := make([]map[string]any, 0, len(res.Items))
	for _, item := range res.Items {
		entry := map[string]any{
			"article_id": item.ArticleID,
			"quantity":   item.Quantity,
		}
		if item.OK() {
			entry["result"] = toQuoteResponse(item.Result)
		} else {
			entry["result"] = errorBody(item.Result)
		}
		items = append(items, entry)
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"order_number": req.OrderNumber,
		"results":      items,
		"summary": map[string]any{
			"total_items":            res.Summary.TotalItems,
			"order_total":            catalog.NewMoney(res.Summary.OrderTotal),
			"estimated_order_amount": catalog.NewMoney(res.Summary.EstimatedOrderAmount),
		},
	})
}

func (h *Handler) validate(v any) error {
	if h.Validate == nil {
		return nil
	}
	return h.Validate.Struct(v)
}

func parseAsOf(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", trimmed)
}

func toOrderItems(items []orderItemRequest) []OrderItem {
	if len(items) == 0 {
		return nil
	}
	out := make([]OrderItem, 0, len(items))
	for _, it := range items {
		out = append(out, OrderItem{ArticleID: it.ArticleID, Quantity: it.Quantity})
	}
	return out
}

func observeQuote(res Result, elapsed time.Duration) {
	if obs.QuoteTotal != nil {
		obs.QuoteTotal.WithLabelValues(string(res.Status)).Inc()
	}
	if res.OK() && res.BelowCost && obs.BelowCostTotal != nil {
		verdict := "authorized"
		if !res.Validation.Valid {
			verdict = "unauthorized"
		}
		obs.BelowCostTotal.WithLabelValues(verdict).Inc()
	}
	if elapsed > 0 && obs.QuoteDuration != nil {
		obs.QuoteDuration.Observe(obs.DurationMillis(elapsed))
	}
}

type appliedRuleDTO struct {
	RuleID         int64         `json:"rule_id"`
	Name           string        `json:"name"`
	Type           string        `json:"type"`
	AdjustmentType string        `json:"adjustment_type"`
	Value          catalog.Money `json:"value"`
}

type appliedBundleDTO struct {
	BundleID     int64         `json:"bundle_id"`
	Name         string        `json:"name"`
	DiscountType string        `json:"discount_type"`
	Value        catalog.Money `json:"value"`
	MinQuantity  int           `json:"min_quantity"`
}

type validationDTO struct {
	Valid     bool   `json:"valid"`
	Message   string `json:"message"`
	BelowCost bool   `json:"below_cost"`
}

type quoteResponse struct {
	PriceListID         int64              `json:"price_list_id"`
	PriceListName       string             `json:"price_list_name"`
	BasePrice           catalog.Money      `json:"base_price"`
	FinalPrice          catalog.Money      `json:"final_price"`
	TotalDiscount       catalog.Money      `json:"total_discount"`
	DiscountPercentage  catalog.Money      `json:"discount_percentage"`
	AppliedRules        []appliedRuleDTO   `json:"applied_rules"`
	AppliedBundles      []appliedBundleDTO `json:"applied_bundles"`
	Validation          validationDTO      `json:"validation"`
	BelowCost           bool               `json:"below_cost"`
	SupplierDiscountPct catalog.Money      `json:"supplier_discount_pct"`
	AuthorizedBy        string             `json:"authorized_by"`
}

func toQuoteResponse(res Result) quoteResponse {
	rules := make([]appliedRuleDTO, 0, len(res.AppliedRules))
	for _, r := range res.AppliedRules {
		rules = append(rules, appliedRuleDTO{
			RuleID:         r.RuleID,
			Name:           r.Name,
			Type:           string(r.Type),
			AdjustmentType: string(r.AdjustmentType),
			Value:          catalog.NewMoney(r.Value),
		})
	}
	bundles := make([]appliedBundleDTO, 0, len(res.AppliedBundles))
	for _, b := range res.AppliedBundles {
		bundles = append(bundles, appliedBundleDTO{
			BundleID:     b.BundleID,
			Name:         b.Name,
			DiscountType: string(b.DiscountType),
			Value:        catalog.NewMoney(b.Value),
			MinQuantity:  b.MinQuantity,
		})
	}
	return quoteResponse{
		PriceListID:         res.PriceListID,
		PriceListName:       res.PriceListName,
		BasePrice:           catalog.NewMoney(res.BasePrice),
		FinalPrice:          catalog.NewMoney(res.FinalPrice),
		TotalDiscount:       catalog.NewMoney(res.TotalDiscount),
		DiscountPercentage:  catalog.NewMoney(res.DiscountPercentage),
		AppliedRules:        rules,
		AppliedBundles:      bundles,
		Validation: validationDTO{
			Valid:     res.Validation.Valid,
			Message:   res.Validation.Message,
			BelowCost: res.Validation.BelowCost,
		},
		BelowCost:           res.BelowCost,
		SupplierDiscountPct: catalog.NewMoney(res.SupplierDiscountPct),
		AuthorizedBy:        res.AuthorizedBy,
	}
}

func errorBody(res Result) map[string]any {
	return map[string]any{
		"error":       string(res.Status),
		"message":     res.Reason,
		"base_price":  nil,
		"final_price": nil,
	}
}
