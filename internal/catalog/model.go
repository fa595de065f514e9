package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// Channel identifies the sales context a price list or rule applies to.
type Channel string

const (
	ChannelAll         Channel = "ALL"
	ChannelStore       Channel = "STORE"
	ChannelOnline      Channel = "ONLINE"
	ChannelDistributor Channel = "DISTRIBUTOR"
	ChannelCorporate   Channel = "CORPORATE"
)

// Valid reports whether the channel is one of the known values.
func (c Channel) Valid() bool {
	switch c {
	case ChannelAll, ChannelStore, ChannelOnline, ChannelDistributor, ChannelCorporate:
		return true
	}
	return false
}

// ListType classifies a price list.
type ListType string

const (
	ListGeneral   ListType = "GENERAL"
	ListWholesale ListType = "WHOLESALE"
	ListRetail    ListType = "RETAIL"
	ListSpecial   ListType = "SPECIAL"
)

// RuleType discriminates stored price rule records. The engine compiles these
// into typed conditions; see pricing.CompileRule.
type RuleType string

const (
	RuleChannel     RuleType = "CHANNEL"
	RuleUnitScale   RuleType = "UNIT_SCALE"
	RuleAmountScale RuleType = "AMOUNT_SCALE"
	RuleOrderAmount RuleType = "ORDER_AMOUNT"
	RuleBundle      RuleType = "BUNDLE"
)

// AdjustmentType describes how a rule's value modifies the running price.
type AdjustmentType string

const (
	AdjustPercentage  AdjustmentType = "PERCENTAGE"
	AdjustFixedAmount AdjustmentType = "FIXED_AMOUNT"
	AdjustFixedPrice  AdjustmentType = "FIXED_PRICE"
)

// DiscountType is the adjustment subset bundles are allowed to use.
type DiscountType string

const (
	DiscountPercentage  DiscountType = "PERCENTAGE"
	DiscountFixedAmount DiscountType = "FIXED_AMOUNT"
)

// Company is the tenant root. Lifecycle is owned by an external CRUD
// collaborator; the engine only reads it.
type Company struct {
	ID     int64
	Name   string
	TaxID  string
	Active bool
}

// Branch is an optional sub-scope of a company.
type Branch struct {
	ID        int64
	CompanyID int64
	Code      string
	Name      string
	Active    bool
}

// ArticleLine is the top level of the two-level product taxonomy.
type ArticleLine struct {
	ID        int64
	CompanyID int64
	Code      string
	Name      string
	Active    bool
}

// ArticleGroup belongs to exactly one line of the same company.
type ArticleGroup struct {
	ID        int64
	CompanyID int64
	LineID    int64
	Code      string
	Name      string
	Active    bool
}

// Article carries the last purchase cost used as the cost floor reference.
type Article struct {
	ID        int64
	CompanyID int64
	GroupID   int64
	Code      string
	Name      string
	Unit      string
	LastCost  decimal.Decimal
	Active    bool
}

// PriceList is a dated, scoped catalog of base prices and rules. BranchID nil
// means the list is company-wide. EndDate nil means open-ended validity.
type PriceList struct {
	ID        int64
	CompanyID int64
	BranchID  *int64
	Name      string
	Type      ListType
	Channel   Channel
	StartDate time.Time
	EndDate   *time.Time
	Active    bool
}

// InEffect reports whether the list's validity window covers the given date.
func (l PriceList) InEffect(asOf time.Time) bool {
	if !l.Active {
		return false
	}
	day := DateOnly(asOf)
	if DateOnly(l.StartDate).After(day) {
		return false
	}
	if l.EndDate != nil && DateOnly(*l.EndDate).Before(day) {
		return false
	}
	return true
}

// ArticlePrice is the single base price entry for an article within a list.
type ArticlePrice struct {
	ID                  int64
	PriceListID         int64
	ArticleID           int64
	BasePrice           decimal.Decimal
	BelowCost           bool
	SupplierDiscountPct decimal.Decimal
	AuthorizedBy        string
	AuthorizedAt        *time.Time
}

// PriceRule is a stored conditional adjustment scoped to one price list.
// LineID and GroupID are optional scope filters; Min/Max pairs are open-ended
// when nil. Value is non-negative; Priority ascends in evaluation order.
type PriceRule struct {
	ID          int64
	PriceListID int64
	Name        string
	Type        RuleType
	Adjustment  AdjustmentType
	LineID      *int64
	GroupID     *int64
	MinQuantity *int
	MaxQuantity *int
	MinAmount   *decimal.Decimal
	MaxAmount   *decimal.Decimal
	Value       decimal.Decimal
	Priority    int
	Active      bool
}

// ProductBundle is a multi-article discount trigger. Exactly one of
// ArticleIDs, GroupID, or LineID is expected to be set.
type ProductBundle struct {
	ID            int64
	PriceListID   int64
	Name          string
	Description   string
	LineID        *int64
	GroupID       *int64
	ArticleIDs    []int64
	MinQuantity   int
	DiscountType  DiscountType
	DiscountValue decimal.Decimal
	Active        bool
}

// DateOnly truncates a timestamp to its calendar day in UTC. Price list
// validity is a date window, not an instant window.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
