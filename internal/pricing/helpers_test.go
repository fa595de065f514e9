package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/andes-labs/backend-precios/internal/catalog"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func i64(v int64) *int64 { return &v }

func intPtr(v int) *int { return &v }

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func dayPtr(s string) *time.Time {
	t := day(s)
	return &t
}

// testEngine wires an engine over a fixed snapshot with a frozen clock.
func testEngine(snap *catalog.Snapshot) *Engine {
	return &Engine{
		Source: snap,
		Now:    func() time.Time { return day("2026-06-15") },
	}
}

// baseCatalog is the shared fixture most tests start from: one company, one
// branch, a two-level taxonomy, two articles, and one company-wide list with a
// priced article.
func baseCatalog() *catalog.Snapshot {
	return &catalog.Snapshot{
		Companies: []catalog.Company{{ID: 1, Name: "Andes Mayorista", Active: true}},
		Branches:  []catalog.Branch{{ID: 10, CompanyID: 1, Code: "CEN", Name: "Central", Active: true}},
		Lines: []catalog.ArticleLine{
			{ID: 100, CompanyID: 1, Code: "BEB", Name: "Bebidas", Active: true},
			{ID: 101, CompanyID: 1, Code: "LIM", Name: "Limpieza", Active: true},
		},
		Groups: []catalog.ArticleGroup{
			{ID: 200, CompanyID: 1, LineID: 100, Code: "GAS", Name: "Gaseosas", Active: true},
			{ID: 201, CompanyID: 1, LineID: 101, Code: "DET", Name: "Detergentes", Active: true},
		},
		Articles: []catalog.Article{
			{ID: 1000, CompanyID: 1, GroupID: 200, Code: "COLA-1L", Name: "Cola 1L", Unit: "UN", LastCost: dec("60"), Active: true},
			{ID: 1001, CompanyID: 1, GroupID: 201, Code: "DET-3KG", Name: "Detergente 3kg", Unit: "UN", LastCost: dec("40"), Active: true},
		},
		Lists: []catalog.PriceList{
			{ID: 1, CompanyID: 1, Name: "General", Type: catalog.ListGeneral, Channel: catalog.ChannelAll, StartDate: day("2026-01-01"), Active: true},
		},
		Prices: []catalog.ArticlePrice{
			{ID: 1, PriceListID: 1, ArticleID: 1000, BasePrice: dec("100")},
			{ID: 2, PriceListID: 1, ArticleID: 1001, BasePrice: dec("80")},
		},
	}
}
