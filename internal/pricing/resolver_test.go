package pricing

import (
	"context"
	"testing"

	"github.com/andes-labs/backend-precios/internal/catalog"
)

func TestResolveBranchListWinsOverCompanyWide(t *testing.T) {
	snap := baseCatalog()
	snap.Lists = []catalog.PriceList{
		{ID: 1, CompanyID: 1, Name: "General", Channel: catalog.ChannelAll, StartDate: day("2026-01-01"), Active: true},
		{ID: 2, CompanyID: 1, BranchID: i64(10), Name: "Central", Channel: catalog.ChannelAll, StartDate: day("2026-01-01"), Active: true},
	}
	e := testEngine(snap)

	got := e.resolvePriceList(context.Background(), 1, i64(10), catalog.ChannelStore, day("2026-06-15"))
	if got == nil || got.ID != 2 {
		t.Fatalf("expected branch list 2, got %+v", got)
	}
}

func TestResolveFallsBackToCompanyWide(t *testing.T) {
	snap := baseCatalog()
	snap.Lists = []catalog.PriceList{
		{ID: 1, CompanyID: 1, Name: "General", Channel: catalog.ChannelAll, StartDate: day("2026-01-01"), Active: true},
		{ID: 2, CompanyID: 1, BranchID: i64(99), Name: "Otra sucursal", Channel: catalog.ChannelAll, StartDate: day("2026-01-01"), Active: true},
	}
	e := testEngine(snap)

	got := e.resolvePriceList(context.Background(), 1, i64(10), catalog.ChannelStore, day("2026-06-15"))
	if got == nil || got.ID != 1 {
		t.Fatalf("expected company-wide list 1, got %+v", got)
	}
}

func TestResolveNoBranchSkipsBranchLists(t *testing.T) {
	snap := baseCatalog()
	snap.Lists = []catalog.PriceList{
		{ID: 2, CompanyID: 1, BranchID: i64(10), Name: "Central", Channel: catalog.ChannelAll, StartDate: day("2026-01-01"), Active: true},
	}
	e := testEngine(snap)

	if got := e.resolvePriceList(context.Background(), 1, nil, catalog.ChannelStore, day("2026-06-15")); got != nil {
		t.Fatalf("expected nil without a branch, got %+v", got)
	}
}

func TestResolveLatestStartDateWins(t *testing.T) {
	snap := baseCatalog()
	snap.Lists = []catalog.PriceList{
		{ID: 1, CompanyID: 1, Name: "Vieja", Channel: catalog.ChannelAll, StartDate: day("2026-01-01"), Active: true},
		{ID: 2, CompanyID: 1, Name: "Nueva", Channel: catalog.ChannelAll, StartDate: day("2026-05-01"), Active: true},
	}
	e := testEngine(snap)

	got := e.resolvePriceList(context.Background(), 1, nil, catalog.ChannelStore, day("2026-06-15"))
	if got == nil || got.ID != 2 {
		t.Fatalf("expected list 2 with the later start date, got %+v", got)
	}
}

func TestResolveEqualStartDatesLowestIDWins(t *testing.T) {
	snap := baseCatalog()
	snap.Lists = []catalog.PriceList{
		{ID: 7, CompanyID: 1, Name: "B", Channel: catalog.ChannelAll, StartDate: day("2026-05-01"), Active: true},
		{ID: 3, CompanyID: 1, Name: "A", Channel: catalog.ChannelAll, StartDate: day("2026-05-01"), Active: true},
	}
	e := testEngine(snap)

	got := e.resolvePriceList(context.Background(), 1, nil, catalog.ChannelStore, day("2026-06-15"))
	if got == nil || got.ID != 3 {
		t.Fatalf("expected list 3 on the tie, got %+v", got)
	}
}

func TestResolveValidityWindow(t *testing.T) {
	cases := []struct {
		name string
		list catalog.PriceList
		want bool
	}{
		{"inactive", catalog.PriceList{ID: 1, CompanyID: 1, Channel: catalog.ChannelAll, StartDate: day("2026-01-01"), Active: false}, false},
		{"future start", catalog.PriceList{ID: 1, CompanyID: 1, Channel: catalog.ChannelAll, StartDate: day("2026-07-01"), Active: true}, false},
		{"expired", catalog.PriceList{ID: 1, CompanyID: 1, Channel: catalog.ChannelAll, StartDate: day("2026-01-01"), EndDate: dayPtr("2026-02-01"), Active: true}, false},
		{"starts today", catalog.PriceList{ID: 1, CompanyID: 1, Channel: catalog.ChannelAll, StartDate: day("2026-06-15"), Active: true}, true},
		{"ends today", catalog.PriceList{ID: 1, CompanyID: 1, Channel: catalog.ChannelAll, StartDate: day("2026-01-01"), EndDate: dayPtr("2026-06-15"), Active: true}, true},
		{"open ended", catalog.PriceList{ID: 1, CompanyID: 1, Channel: catalog.ChannelAll, StartDate: day("2026-01-01"), Active: true}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			snap := baseCatalog()
			snap.Lists = []catalog.PriceList{tc.list}
			e := testEngine(snap)
			got := e.resolvePriceList(context.Background(), 1, nil, catalog.ChannelStore, day("2026-06-15"))
			if (got != nil) != tc.want {
				t.Fatalf("in effect = %v, want %v", got != nil, tc.want)
			}
		})
	}
}

func TestResolveChannelFilter(t *testing.T) {
	snap := baseCatalog()
	snap.Lists = []catalog.PriceList{
		{ID: 1, CompanyID: 1, Name: "Online", Channel: catalog.ChannelOnline, StartDate: day("2026-01-01"), Active: true},
		{ID: 2, CompanyID: 1, Name: "Todas", Channel: catalog.ChannelAll, StartDate: day("2025-01-01"), Active: true},
	}
	e := testEngine(snap)

	got := e.resolvePriceList(context.Background(), 1, nil, catalog.ChannelStore, day("2026-06-15"))
	if got == nil || got.ID != 2 {
		t.Fatalf("STORE request should skip the ONLINE list, got %+v", got)
	}

	got = e.resolvePriceList(context.Background(), 1, nil, catalog.ChannelOnline, day("2026-06-15"))
	if got == nil || got.ID != 1 {
		t.Fatalf("ONLINE request should prefer the later ONLINE list, got %+v", got)
	}
}
