package catalog

import (
	"context"
	"sort"
)

// Snapshot is an in-memory Source. It backs tests and callers that already
// hold a read-only copy of the catalog; once built it is never mutated, so it
// is safe for concurrent use without locking.
type Snapshot struct {
	Companies []Company
	Branches  []Branch
	Lines     []ArticleLine
	Groups    []ArticleGroup
	Articles  []Article
	Lists     []PriceList
	Prices    []ArticlePrice
	Rules     []PriceRule
	Bundles   []ProductBundle
}

var _ Source = (*Snapshot)(nil)

// PriceLists returns every list belonging to the company.
func (s *Snapshot) PriceLists(_ context.Context, companyID int64) ([]PriceList, error) {
	var out []PriceList
	for _, l := range s.Lists {
		if l.CompanyID == companyID {
			out = append(out, l)
		}
	}
	return out, nil
}

// ArticlePrice returns the base price entry for (list, article), or nil.
func (s *Snapshot) ArticlePrice(_ context.Context, priceListID, articleID int64) (*ArticlePrice, error) {
	for _, p := range s.Prices {
		if p.PriceListID == priceListID && p.ArticleID == articleID {
			entry := p
			return &entry, nil
		}
	}
	return nil, nil
}

// Article returns the company's article by id, or nil.
func (s *Snapshot) Article(_ context.Context, companyID, articleID int64) (*Article, error) {
	for _, a := range s.Articles {
		if a.ID == articleID && a.CompanyID == companyID {
			art := a
			return &art, nil
		}
	}
	return nil, nil
}

// ArticleGroup returns a group by id, or nil.
func (s *Snapshot) ArticleGroup(_ context.Context, groupID int64) (*ArticleGroup, error) {
	for _, g := range s.Groups {
		if g.ID == groupID {
			grp := g
			return &grp, nil
		}
	}
	return nil, nil
}

// RulesByList returns the list's active rules ordered by ascending priority,
// ties broken by id for a stable evaluation order.
func (s *Snapshot) RulesByList(_ context.Context, priceListID int64) ([]PriceRule, error) {
	var out []PriceRule
	for _, r := range s.Rules {
		if r.PriceListID == priceListID && r.Active {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// BundlesByList returns the list's active bundles.
func (s *Snapshot) BundlesByList(_ context.Context, priceListID int64) ([]ProductBundle, error) {
	var out []ProductBundle
	for _, b := range s.Bundles {
		if b.PriceListID == priceListID && b.Active {
			out = append(out, b)
		}
	}
	return out, nil
}
