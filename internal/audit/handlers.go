package audit

import (
	"net/http"
	"strings"

	"github.com/andes-labs/backend-precios/internal/common"
)

// Handler exposes read access to recorded order lines.
type Handler struct {
	Store Store
}

// List returns the audit records of one order.
// GET /api/v1/order-lines?order_number=...
func (h Handler) List(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, "AUDIT_NOT_CONFIGURED", "audit store not configured", nil)
		return
	}
	orderNumber := strings.TrimSpace(r.URL.Query().Get("order_number"))
	if orderNumber == "" {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION", "order_number is required", nil)
		return
	}
	limit := common.AtoiDefault(r.URL.Query().Get("limit"), 100)
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	offset := common.AtoiDefault(r.URL.Query().Get("offset"), 0)
	if offset < 0 {
		offset = 0
	}

	lines, err := h.Store.ListOrderLines(r.Context(), orderNumber, limit, offset)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "AUDIT_QUERY_FAILED", "unable to fetch order lines", nil)
		return
	}
	total, err := h.Store.CountOrderLines(r.Context(), orderNumber)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "AUDIT_QUERY_FAILED", "unable to count order lines", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"order_number": orderNumber,
		"total":        total,
		"lines":        lines,
	})
}
