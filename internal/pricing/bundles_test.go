package pricing

import (
	"context"
	"testing"

	"github.com/andes-labs/backend-precios/internal/catalog"
)

func TestBundleExplicitSetCountsDistinctArticles(t *testing.T) {
	snap := baseCatalog()
	snap.Bundles = []catalog.ProductBundle{
		{ID: 1, PriceListID: 1, Name: "Cola y detergente", ArticleIDs: []int64{1000, 1001}, MinQuantity: 2, DiscountType: catalog.DiscountPercentage, DiscountValue: dec("5"), Active: true},
	}
	e := testEngine(snap)

	both := []OrderItem{{ArticleID: 1000, Quantity: 1}, {ArticleID: 1001, Quantity: 1}}
	if got := e.evaluateBundles(context.Background(), 1, 1, both); len(got) != 1 {
		t.Fatalf("order with both articles should trigger the bundle, got %+v", got)
	}

	// Quantity does not substitute for distinct membership.
	onlyOne := []OrderItem{{ArticleID: 1000, Quantity: 10}}
	if got := e.evaluateBundles(context.Background(), 1, 1, onlyOne); len(got) != 0 {
		t.Fatalf("order with only one of the articles must not trigger, got %+v", got)
	}
}

func TestBundleGroupCountsMatchingLines(t *testing.T) {
	snap := baseCatalog()
	snap.Articles = append(snap.Articles,
		catalog.Article{ID: 1002, CompanyID: 1, GroupID: 200, Code: "COLA-2L", Name: "Cola 2L", Unit: "UN", LastCost: dec("90"), Active: true},
	)
	snap.Bundles = []catalog.ProductBundle{
		{ID: 1, PriceListID: 1, Name: "Gaseosas x2", GroupID: i64(200), MinQuantity: 2, DiscountType: catalog.DiscountFixedAmount, DiscountValue: dec("10"), Active: true},
	}
	e := testEngine(snap)

	twoLines := []OrderItem{{ArticleID: 1000, Quantity: 1}, {ArticleID: 1002, Quantity: 1}}
	if got := e.evaluateBundles(context.Background(), 1, 1, twoLines); len(got) != 1 {
		t.Fatalf("two order lines in the group should trigger, got %+v", got)
	}

	oneLine := []OrderItem{{ArticleID: 1000, Quantity: 5}, {ArticleID: 1001, Quantity: 5}}
	if got := e.evaluateBundles(context.Background(), 1, 1, oneLine); len(got) != 0 {
		t.Fatalf("one matching line must not trigger, got %+v", got)
	}
}

func TestBundleLineCountsThroughTaxonomyChain(t *testing.T) {
	snap := baseCatalog()
	snap.Articles = append(snap.Articles,
		catalog.Article{ID: 1002, CompanyID: 1, GroupID: 200, Code: "COLA-2L", Name: "Cola 2L", Unit: "UN", LastCost: dec("90"), Active: true},
	)
	snap.Bundles = []catalog.ProductBundle{
		{ID: 1, PriceListID: 1, Name: "Bebidas x2", LineID: i64(100), MinQuantity: 2, DiscountType: catalog.DiscountPercentage, DiscountValue: dec("3"), Active: true},
	}
	e := testEngine(snap)

	items := []OrderItem{{ArticleID: 1000, Quantity: 1}, {ArticleID: 1002, Quantity: 1}, {ArticleID: 1001, Quantity: 1}}
	got := e.evaluateBundles(context.Background(), 1, 1, items)
	if len(got) != 1 || got[0].BundleID != 1 {
		t.Fatalf("two lines resolving to line 100 should trigger, got %+v", got)
	}
}

func TestBundleWithNoTriggerNeverApplies(t *testing.T) {
	snap := baseCatalog()
	snap.Bundles = []catalog.ProductBundle{
		{ID: 1, PriceListID: 1, Name: "mal definido", MinQuantity: 1, DiscountType: catalog.DiscountPercentage, DiscountValue: dec("50"), Active: true},
	}
	e := testEngine(snap)

	items := []OrderItem{{ArticleID: 1000, Quantity: 1}}
	if got := e.evaluateBundles(context.Background(), 1, 1, items); len(got) != 0 {
		t.Fatalf("a bundle without article set, group, or line must not apply, got %+v", got)
	}
}

func TestBundleInactiveAndZeroMinQuantitySkipped(t *testing.T) {
	snap := baseCatalog()
	snap.Bundles = []catalog.ProductBundle{
		{ID: 1, PriceListID: 1, Name: "apagado", ArticleIDs: []int64{1000}, MinQuantity: 1, DiscountType: catalog.DiscountPercentage, DiscountValue: dec("5"), Active: false},
		{ID: 2, PriceListID: 1, Name: "sin minimo", ArticleIDs: []int64{1000}, MinQuantity: 0, DiscountType: catalog.DiscountPercentage, DiscountValue: dec("5"), Active: true},
	}
	e := testEngine(snap)

	items := []OrderItem{{ArticleID: 1000, Quantity: 1}}
	if got := e.evaluateBundles(context.Background(), 1, 1, items); len(got) != 0 {
		t.Fatalf("inactive or zero-threshold bundles must be skipped, got %+v", got)
	}
}

func TestBundleUnknownArticleDropsFromTaxonomy(t *testing.T) {
	snap := baseCatalog()
	snap.Bundles = []catalog.ProductBundle{
		{ID: 1, PriceListID: 1, Name: "Gaseosas x2", GroupID: i64(200), MinQuantity: 2, DiscountType: catalog.DiscountPercentage, DiscountValue: dec("5"), Active: true},
	}
	e := testEngine(snap)

	// Article 9999 does not exist; only one resolvable line remains.
	items := []OrderItem{{ArticleID: 1000, Quantity: 1}, {ArticleID: 9999, Quantity: 1}}
	if got := e.evaluateBundles(context.Background(), 1, 1, items); len(got) != 0 {
		t.Fatalf("unresolvable articles must not count toward the threshold, got %+v", got)
	}
}
