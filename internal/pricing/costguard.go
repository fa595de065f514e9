package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Supplier discount window inside which a below-cost price counts as an
// authorized exception rather than a violation.
var (
	supplierExceptionMin = decimal.NewFromInt(50)
	supplierExceptionMax = decimal.NewFromInt(70)
)

// Verdict is the cost guard's outcome. An invalid verdict does not reject the
// price; it flags it as requiring purchasing authorization.
type Verdict struct {
	Valid     bool
	BelowCost bool
	Message   string
}

// ValidateCost checks the fully adjusted price against the article's last
// cost. At or above cost the price is valid outright. Below cost, the price
// is still accepted when the supplier discount sits in the 50-70% window and
// the price stays at or above the discounted cost floor
// last_cost * (1 - pct/100). Anything else is flagged invalid.
func ValidateCost(finalPrice, lastCost, supplierDiscountPct decimal.Decimal) Verdict {
	if finalPrice.GreaterThanOrEqual(lastCost) {
		return Verdict{Valid: true, BelowCost: false, Message: "price at or above cost"}
	}

	inWindow := supplierDiscountPct.GreaterThanOrEqual(supplierExceptionMin) &&
		supplierDiscountPct.LessThanOrEqual(supplierExceptionMax)
	if inWindow {
		floor := lastCost.Mul(decimal.NewFromInt(1).Sub(supplierDiscountPct.Div(decimal.NewFromInt(100))))
		if finalPrice.GreaterThanOrEqual(floor) {
			return Verdict{
				Valid:     true,
				BelowCost: true,
				Message:   fmt.Sprintf("below-cost price authorized (supplier discount %s%%)", supplierDiscountPct.String()),
			}
		}
	}

	return Verdict{
		Valid:     false,
		BelowCost: true,
		Message:   fmt.Sprintf("price below minimum allowed cost (cost: %s)", lastCost.Round(2).StringFixed(2)),
	}
}
