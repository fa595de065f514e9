package pricing

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	validator "github.com/go-playground/validator/v10"

	"github.com/andes-labs/backend-precios/internal/catalog"
)

type recordedOrder struct {
	orderNumber string
	companyID   int64
	items       int
}

type captureAuditor struct {
	calls []recordedOrder
}

func (c *captureAuditor) RecordOrderLines(_ context.Context, orderNumber string, companyID int64, _ *int64, result OrderResult) {
	c.calls = append(c.calls, recordedOrder{orderNumber: orderNumber, companyID: companyID, items: len(result.Items)})
}

func newTestHandler(snap *catalog.Snapshot) (*Handler, *captureAuditor) {
	auditor := &captureAuditor{}
	return &Handler{
		Engine:   testEngine(snap),
		Validate: validator.New(),
		Auditor:  auditor,
	}, auditor
}

func TestQuoteEndpointHappyPath(t *testing.T) {
	snap := baseCatalog()
	snap.Rules = []catalog.PriceRule{
		{ID: 1, PriceListID: 1, Name: "10%", Type: catalog.RuleChannel, Adjustment: catalog.AdjustPercentage, Value: dec("10"), Priority: 1, Active: true},
	}
	h, _ := newTestHandler(snap)

	body := `{"company_id":1,"article_id":1000,"channel":"STORE","quantity":1}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/pricing/quote", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.Quote(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rr.Code, rr.Body.String())
	}
	var resp map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["base_price"] != "100.00" {
		t.Fatalf("base_price = %v, want 100.00", resp["base_price"])
	}
	if resp["final_price"] != "90.00" {
		t.Fatalf("final_price = %v, want 90.00", resp["final_price"])
	}
	if resp["discount_percentage"] != "10.00" {
		t.Fatalf("discount_percentage = %v, want 10.00", resp["discount_percentage"])
	}
	rules, ok := resp["applied_rules"].([]any)
	if !ok || len(rules) != 1 {
		t.Fatalf("applied_rules = %v", resp["applied_rules"])
	}
	validation, ok := resp["validation"].(map[string]any)
	if !ok || validation["valid"] != true {
		t.Fatalf("validation = %v", resp["validation"])
	}
}

func TestQuoteEndpointNotFoundStatuses(t *testing.T) {
	snap := baseCatalog()
	snap.Lists = nil
	h, _ := newTestHandler(snap)

	body := `{"company_id":1,"article_id":1000,"channel":"STORE","quantity":1}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/pricing/quote", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.Quote(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["error"] != string(StatusNoPriceList) {
		t.Fatalf("error = %v, want %s", resp["error"], StatusNoPriceList)
	}
	if v, present := resp["base_price"]; !present || v != nil {
		t.Fatalf("base_price must be null, got %v", v)
	}
	if v, present := resp["final_price"]; !present || v != nil {
		t.Fatalf("final_price must be null, got %v", v)
	}
}

func TestQuoteEndpointValidation(t *testing.T) {
	h, _ := newTestHandler(baseCatalog())

	cases := []struct {
		name string
		body string
	}{
		{"missing company", `{"article_id":1000,"channel":"STORE","quantity":1}`},
		{"bad channel", `{"company_id":1,"article_id":1000,"channel":"PHONE","quantity":1}`},
		{"zero quantity", `{"company_id":1,"article_id":1000,"channel":"STORE","quantity":0}`},
		{"negative order amount", `{"company_id":1,"article_id":1000,"channel":"STORE","quantity":1,"order_total_amount":"-5.00"}`},
		{"bad as_of_date", `{"company_id":1,"article_id":1000,"channel":"STORE","quantity":1,"as_of_date":"15/06/2026"}`},
		{"not json", `{"company_id":`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/pricing/quote", strings.NewReader(tc.body))
			rr := httptest.NewRecorder()
			h.Quote(rr, req)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400 (body %s)", rr.Code, rr.Body.String())
			}
		})
	}
}

func TestQuoteEndpointAsOfDateSelectsList(t *testing.T) {
	snap := baseCatalog()
	snap.Lists = []catalog.PriceList{
		{ID: 1, CompanyID: 1, Name: "2025", Channel: catalog.ChannelAll, StartDate: day("2025-01-01"), EndDate: dayPtr("2025-12-31"), Active: true},
		{ID: 2, CompanyID: 1, Name: "2026", Channel: catalog.ChannelAll, StartDate: day("2026-01-01"), Active: true},
	}
	snap.Prices = []catalog.ArticlePrice{
		{ID: 1, PriceListID: 1, ArticleID: 1000, BasePrice: dec("95")},
		{ID: 2, PriceListID: 2, ArticleID: 1000, BasePrice: dec("100")},
	}
	h, _ := newTestHandler(snap)

	body := `{"company_id":1,"article_id":1000,"channel":"STORE","quantity":1,"as_of_date":"2025-06-01"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/pricing/quote", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.Quote(rr, req)

	var resp map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["price_list_name"] != "2025" {
		t.Fatalf("expected the 2025 list for a 2025 date, got %v", resp["price_list_name"])
	}
}

func TestOrderEndpointRecordsAuditAndSummarizes(t *testing.T) {
	snap := baseCatalog()
	h, auditor := newTestHandler(snap)

	body := `{"company_id":1,"channel":"STORE","order_number":"PED-0042","items":[{"article_id":1000,"quantity":2},{"article_id":1001,"quantity":1}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/pricing/order", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.QuoteOrder(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rr.Code, rr.Body.String())
	}
	var resp map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["order_number"] != "PED-0042" {
		t.Fatalf("order_number = %v", resp["order_number"])
	}
	results, ok := resp["results"].([]any)
	if !ok || len(results) != 2 {
		t.Fatalf("results = %v", resp["results"])
	}
	summary, ok := resp["summary"].(map[string]any)
	if !ok {
		t.Fatalf("summary missing: %v", resp)
	}
	// 100*2 + 80*1 with no rules configured.
	if summary["order_total"] != "280.00" {
		t.Fatalf("order_total = %v, want 280.00", summary["order_total"])
	}

	if len(auditor.calls) != 1 {
		t.Fatalf("expected one audit call, got %d", len(auditor.calls))
	}
	if auditor.calls[0].orderNumber != "PED-0042" || auditor.calls[0].items != 2 {
		t.Fatalf("audit call = %+v", auditor.calls[0])
	}
}

func TestOrderEndpointSkipsAuditWithoutOrderNumber(t *testing.T) {
	h, auditor := newTestHandler(baseCatalog())

	body := `{"company_id":1,"channel":"STORE","items":[{"article_id":1000,"quantity":1}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/pricing/order", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.QuoteOrder(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if len(auditor.calls) != 0 {
		t.Fatalf("no order number must mean no audit, got %d calls", len(auditor.calls))
	}
}

func TestOrderEndpointRequiresItems(t *testing.T) {
	h, _ := newTestHandler(baseCatalog())

	body := `{"company_id":1,"channel":"STORE","items":[]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/pricing/order", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.QuoteOrder(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}
