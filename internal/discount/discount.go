// Package discount decides whether a promotional rule applies to a menu item
// at a given instant and what the item costs once it does.
package discount

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

type Type string

const (
	Percentage  Type = "percentage"
	FixedAmount Type = "fixed_amount"
)

func (t Type) Valid() bool {
	return t == Percentage || t == FixedAmount
}

type Scope string

const (
	AllItems      Scope = "all_items"
	SpecificItems Scope = "specific_items"
)

func (s Scope) Valid() bool {
	return s == AllItems || s == SpecificItems
}

// Status is the display class of a rule. It is computed, never stored.
type Status string

const (
	StatusInactive Status = "inactive"
	StatusExpired  Status = "expired"
	StatusUpcoming Status = "upcoming"
	StatusActive   Status = "active"
)

func (s Status) Valid() bool {
	switch s {
	case StatusInactive, StatusExpired, StatusUpcoming, StatusActive:
		return true
	}
	return false
}

// Rule is the storage-independent view of a discount.
type Rule struct {
	ID        uint
	Type      Type
	Value     float64
	Scope     Scope
	IsActive  bool
	StartDate *time.Time
	EndDate   *time.Time
	ItemIDs   []uint
}

// InWindow reports whether now lies within [StartDate, EndDate]. A missing
// bound is unbounded on that side.
func (r Rule) InWindow(now time.Time) bool {
	if r.StartDate != nil && now.Before(*r.StartDate) {
		return false
	}
	if r.EndDate != nil && now.After(*r.EndDate) {
		return false
	}
	return true
}

func (r Rule) Covers(itemID uint) bool {
	if r.Scope == AllItems {
		return true
	}
	for _, id := range r.ItemIDs {
		if id == itemID {
			return true
		}
	}
	return false
}

func (r Rule) AppliesTo(itemID uint, now time.Time) bool {
	return r.IsActive && r.InWindow(now) && r.Covers(itemID)
}

// Price returns the price of an item originally costing original once the
// rule is applied. The result is never negative.
func (r Rule) Price(original float64) float64 {
	orig := decimal.NewFromFloat(original)
	value := decimal.NewFromFloat(r.Value)

	var price decimal.Decimal
	switch r.Type {
	case Percentage:
		factor := decimal.NewFromInt(1).Sub(value.Div(decimal.NewFromInt(100)))
		price = orig.Mul(factor)
	case FixedAmount:
		price = orig.Sub(value)
	default:
		return original
	}

	if price.IsNegative() {
		return 0
	}
	return price.InexactFloat64()
}

// Classify returns the display class of the rule at now. Expired wins over
// upcoming when both bounds are violated.
func (r Rule) Classify(now time.Time) Status {
	switch {
	case !r.IsActive:
		return StatusInactive
	case r.EndDate != nil && r.EndDate.Before(now):
		return StatusExpired
	case r.StartDate != nil && r.StartDate.After(now):
		return StatusUpcoming
	default:
		return StatusActive
	}
}

// Quote is what a customer sees for one item.
type Quote struct {
	MenuItemID      uint    `json:"menuItemId"`
	Applies         bool    `json:"applies"`
	OriginalPrice   float64 `json:"originalPrice"`
	DiscountedPrice float64 `json:"discountedPrice"`
	Savings         float64 `json:"savings"`
	DiscountID      *uint   `json:"discountId,omitempty"`
}

// Applicable returns the rules that apply to itemID at now, in input order.
func Applicable(rules []Rule, itemID uint, now time.Time) []Rule {
	var out []Rule
	for _, r := range rules {
		if r.AppliesTo(itemID, now) {
			out = append(out, r)
		}
	}
	return out
}

// Best picks the single rule giving the largest saving on price. Equal
// savings fall back to the lowest rule ID so the choice is stable.
func Best(rules []Rule, itemID uint, price float64, now time.Time) (Rule, bool) {
	candidates := Applicable(rules, itemID, now)
	if len(candidates) == 0 {
		return Rule{}, false
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		si := price - candidates[i].Price(price)
		sj := price - candidates[j].Price(price)
		if si != sj {
			return si > sj
		}
		return candidates[i].ID < candidates[j].ID
	})
	return candidates[0], true
}

func Resolve(rules []Rule, itemID uint, price float64, now time.Time) Quote {
	q := Quote{
		MenuItemID:      itemID,
		OriginalPrice:   price,
		DiscountedPrice: price,
	}

	best, ok := Best(rules, itemID, price, now)
	if !ok {
		return q
	}

	id := best.ID
	q.Applies = true
	q.DiscountID = &id
	q.DiscountedPrice = best.Price(price)
	q.Savings = decimal.NewFromFloat(price).Sub(decimal.NewFromFloat(q.DiscountedPrice)).InexactFloat64()
	return q
}
