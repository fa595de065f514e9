package catalog

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache wraps Redis helpers for JSON payloads.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache constructs a cache helper.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// GetJSON unmarshals a cached JSON payload into dst. It reports whether the key existed.
func (c *Cache) GetJSON(ctx context.Context, key string, dst any) (bool, error) {
	if c == nil || c.client == nil || key == "" {
		return false, nil
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON serialises v as JSON and stores it with the configured TTL.
func (c *Cache) SetJSON(ctx context.Context, key string, v any) error {
	if c == nil || c.client == nil || key == "" {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}

// CachedSource is a read-through decorator over a Source. Catalog data changes
// rarely relative to quote volume, so positive lookups are cached under short
// TTLs; absence and fetch errors are never cached.
type CachedSource struct {
	Inner Source
	Cache *Cache
}

var _ Source = (*CachedSource)(nil)

// PriceLists caches the company's full list set.
func (s *CachedSource) PriceLists(ctx context.Context, companyID int64) ([]PriceList, error) {
	key := cacheKey("lists", companyID)
	var cached []PriceList
	if ok, err := s.Cache.GetJSON(ctx, key, &cached); err == nil && ok {
		return cached, nil
	}
	lists, err := s.Inner.PriceLists(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if len(lists) > 0 {
		_ = s.Cache.SetJSON(ctx, key, lists)
	}
	return lists, nil
}

// ArticlePrice caches the (list, article) base price entry.
func (s *CachedSource) ArticlePrice(ctx context.Context, priceListID, articleID int64) (*ArticlePrice, error) {
	key := cacheKey("price", priceListID, articleID)
	var cached ArticlePrice
	if ok, err := s.Cache.GetJSON(ctx, key, &cached); err == nil && ok {
		return &cached, nil
	}
	price, err := s.Inner.ArticlePrice(ctx, priceListID, articleID)
	if err != nil || price == nil {
		return price, err
	}
	_ = s.Cache.SetJSON(ctx, key, price)
	return price, nil
}

// Article caches article records.
func (s *CachedSource) Article(ctx context.Context, companyID, articleID int64) (*Article, error) {
	key := cacheKey("article", companyID, articleID)
	var cached Article
	if ok, err := s.Cache.GetJSON(ctx, key, &cached); err == nil && ok {
		return &cached, nil
	}
	article, err := s.Inner.Article(ctx, companyID, articleID)
	if err != nil || article == nil {
		return article, err
	}
	_ = s.Cache.SetJSON(ctx, key, article)
	return article, nil
}

// ArticleGroup caches group records.
func (s *CachedSource) ArticleGroup(ctx context.Context, groupID int64) (*ArticleGroup, error) {
	key := cacheKey("group", groupID)
	var cached ArticleGroup
	if ok, err := s.Cache.GetJSON(ctx, key, &cached); err == nil && ok {
		return &cached, nil
	}
	group, err := s.Inner.ArticleGroup(ctx, groupID)
	if err != nil || group == nil {
		return group, err
	}
	_ = s.Cache.SetJSON(ctx, key, group)
	return group, nil
}

// RulesByList caches the list's active rule set.
func (s *CachedSource) RulesByList(ctx context.Context, priceListID int64) ([]PriceRule, error) {
	key := cacheKey("rules", priceListID)
	var cached []PriceRule
	if ok, err := s.Cache.GetJSON(ctx, key, &cached); err == nil && ok {
		return cached, nil
	}
	rules, err := s.Inner.RulesByList(ctx, priceListID)
	if err != nil {
		return nil, err
	}
	if len(rules) > 0 {
		_ = s.Cache.SetJSON(ctx, key, rules)
	}
	return rules, nil
}

// BundlesByList caches the list's active bundle set.
func (s *CachedSource) BundlesByList(ctx context.Context, priceListID int64) ([]ProductBundle, error) {
	key := cacheKey("bundles", priceListID)
	var cached []ProductBundle
	if ok, err := s.Cache.GetJSON(ctx, key, &cached); err == nil && ok {
		return cached, nil
	}
	bundles, err := s.Inner.BundlesByList(ctx, priceListID)
	if err != nil {
		return nil, err
	}
	if len(bundles) > 0 {
		_ = s.Cache.SetJSON(ctx, key, bundles)
	}
	return bundles, nil
}

func cacheKey(kind string, ids ...int64) string {
	key := "catalog:" + kind
	for _, id := range ids {
		key += ":" + strconv.FormatInt(id, 10)
	}
	return key
}
