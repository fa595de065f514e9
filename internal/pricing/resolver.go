package pricing

import (
	"context"
	"time"

	"github.com/andes-labs/backend-precios/internal/catalog"
)

// resolvePriceList picks the single applicable price list for the request, or
// nil when none is in effect. Resolution runs in two named stages:
//
//  1. branch-scoped lists for the given branch, when a branch is supplied;
//  2. company-wide lists (branch absent).
//
// A branch-scoped hit strictly wins over any company-wide candidate. Within a
// stage the latest start date wins; equal start dates fall back to the lowest
// id so resolution stays deterministic.
func (e *Engine) resolvePriceList(ctx context.Context, companyID int64, branchID *int64, channel catalog.Channel, asOf time.Time) *catalog.PriceList {
	lists, err := e.source().PriceLists(ctx, companyID)
	if err != nil {
		e.debug(err, "fetch price lists")
		return nil
	}

	eligible := lists[:0:0]
	for _, l := range lists {
		if !l.InEffect(asOf) {
			continue
		}
		if l.Channel != channel && l.Channel != catalog.ChannelAll {
			continue
		}
		eligible = append(eligible, l)
	}

	if branchID != nil {
		if hit := pickLatest(eligible, func(l catalog.PriceList) bool {
			return l.BranchID != nil && *l.BranchID == *branchID
		}); hit != nil {
			return hit
		}
	}
	return pickLatest(eligible, func(l catalog.PriceList) bool {
		return l.BranchID == nil
	})
}

func pickLatest(lists []catalog.PriceList, keep func(catalog.PriceList) bool) *catalog.PriceList {
	var best *catalog.PriceList
	for i := range lists {
		l := lists[i]
		if !keep(l) {
			continue
		}
		if best == nil {
			best = &lists[i]
			continue
		}
		li, lb := catalog.DateOnly(l.StartDate), catalog.DateOnly(best.StartDate)
		switch {
		case li.After(lb):
			best = &lists[i]
		case li.Equal(lb) && l.ID < best.ID:
			best = &lists[i]
		}
	}
	return best
}
