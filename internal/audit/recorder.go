package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/andes-labs/backend-precios/internal/catalog"
	"github.com/andes-labs/backend-precios/internal/obs"
	"github.com/andes-labs/backend-precios/internal/pricing"
	"github.com/andes-labs/backend-precios/internal/queue"
)

// TaskKind is the queue topic carrying order line batches.
const TaskKind = "order-lines"

// TaskEnqueuer publishes audit tasks; satisfied by queue.Enqueuer.
type TaskEnqueuer interface {
	Enqueue(ctx context.Context, t queue.Task) error
}

// Recorder turns priced orders into queued audit tasks. Enqueue failures are
// logged and dropped; auditing must never fail a quote response.
type Recorder struct {
	Queue  TaskEnqueuer
	Logger zerolog.Logger
}

// batchPayload is the wire form of one recorded order.
type batchPayload struct {
	OrderNumber string            `json:"order_number"`
	CompanyID   int64             `json:"company_id"`
	BranchID    *int64            `json:"branch_id,omitempty"`
	Lines       []OrderLineDetail `json:"lines"`
}

// RecordOrderLines enqueues one task per priced order. The order number doubles
// as the idempotency key, so re-quoting the same order within the dedup window
// does not duplicate rows.
func (rec *Recorder) RecordOrderLines(ctx context.Context, orderNumber string, companyID int64, branchID *int64, result pricing.OrderResult) {
	if rec == nil || rec.Queue == nil {
		return
	}
	payload := batchPayload{
		OrderNumber: orderNumber,
		CompanyID:   companyID,
		BranchID:    branchID,
		Lines:       buildLines(orderNumber, companyID, branchID, result),
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		rec.Logger.Error().Err(err).Str("order_number", orderNumber).Msg("audit: encode order lines")
		return
	}
	err = rec.Queue.Enqueue(ctx, queue.Task{
		Kind:           TaskKind,
		Payload:        raw,
		IdempotencyKey: fmt.Sprintf("%d:%s", companyID, orderNumber),
	})
	if err != nil {
		if obs.AuditEnqueueTotal != nil {
			obs.AuditEnqueueTotal.WithLabelValues("error").Inc()
		}
		rec.Logger.Error().Err(err).Str("order_number", orderNumber).Msg("audit: enqueue order lines")
		return
	}
	if obs.AuditEnqueueTotal != nil {
		obs.AuditEnqueueTotal.WithLabelValues("ok").Inc()
	}
}

func buildLines(orderNumber string, companyID int64, branchID *int64, result pricing.OrderResult) []OrderLineDetail {
	lines := make([]OrderLineDetail, 0, len(result.Items))
	for _, item := range result.Items {
		line := OrderLineDetail{
			OrderNumber: orderNumber,
			CompanyID:   companyID,
			BranchID:    branchID,
			ArticleID:   item.ArticleID,
			Quantity:    item.Quantity,
			Status:      string(item.Status),
		}
		if item.OK() {
			listID := item.PriceListID
			line.PriceListID = &listID
			line.BasePrice = item.BasePrice
			line.FinalPrice = item.FinalPrice
			line.TotalDiscount = item.TotalDiscount
			line.AppliedRules = serializeTrace(item.AppliedRules, item.AppliedBundles)
			line.BelowCost = item.BelowCost
		}
		lines = append(lines, line)
	}
	return lines
}

// ruleTrace and bundleTrace mirror the quote response's applied_rules and
// applied_bundles shapes, so the persisted trace reads the same as the wire.
type ruleTrace struct {
	RuleID         int64         `json:"rule_id"`
	Name           string        `json:"name"`
	Type           string        `json:"type"`
	AdjustmentType string        `json:"adjustment_type"`
	Value          catalog.Money `json:"value"`
}

type bundleTrace struct {
	BundleID     int64         `json:"bundle_id"`
	Name         string        `json:"name"`
	DiscountType string        `json:"discount_type"`
	Value        catalog.Money `json:"value"`
	MinQuantity  int           `json:"min_quantity"`
}

type lineTrace struct {
	Rules   []ruleTrace   `json:"rules"`
	Bundles []bundleTrace `json:"bundles"`
}

func serializeTrace(rules []pricing.AppliedRule, bundles []pricing.AppliedBundle) json.RawMessage {
	if len(rules) == 0 && len(bundles) == 0 {
		return nil
	}
	trace := lineTrace{
		Rules:   make([]ruleTrace, 0, len(rules)),
		Bundles: make([]bundleTrace, 0, len(bundles)),
	}
	for _, r := range rules {
		trace.Rules = append(trace.Rules, ruleTrace{
			RuleID:         r.RuleID,
			Name:           r.Name,
			Type:           string(r.Type),
			AdjustmentType: string(r.AdjustmentType),
			Value:          catalog.NewMoney(r.Value),
		})
	}
	for _, b := range bundles {
		trace.Bundles = append(trace.Bundles, bundleTrace{
			BundleID:     b.BundleID,
			Name:         b.Name,
			DiscountType: string(b.DiscountType),
			Value:        catalog.NewMoney(b.Value),
			MinQuantity:  b.MinQuantity,
		})
	}
	raw, err := json.Marshal(trace)
	if err != nil {
		return nil
	}
	return raw
}
