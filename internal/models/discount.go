package models

import (
	"time"

	"github.com/pryme0/vyb-q-admin/internal/discount"
)

type Discount struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"not null" json:"name"`
	Description string          `json:"description"`
	Type        discount.Type   `gorm:"type:varchar(32);not null" json:"type"`
	Value       float64         `gorm:"not null" json:"value"`
	Scope       discount.Scope  `gorm:"type:varchar(32);not null" json:"scope"`
	IsActive    bool            `gorm:"not null;default:true" json:"isActive"`
	StartDate   *time.Time      `json:"startDate"`
	EndDate     *time.Time      `json:"endDate"`
	MenuItems   []MenuItem      `gorm:"many2many:discount_menu_items" json:"menuItems,omitempty"`
	Status      discount.Status `gorm:"-" json:"status"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Rule converts the stored discount into the resolver's view. MenuItems
// must be preloaded for specific-item discounts.
func (d Discount) Rule() discount.Rule {
	ids := make([]uint, 0, len(d.MenuItems))
	for _, m := range d.MenuItems {
		ids = append(ids, m.ID)
	}
	return discount.Rule{
		ID:        d.ID,
		Type:      d.Type,
		Value:     d.Value,
		Scope:     d.Scope,
		IsActive:  d.IsActive,
		StartDate: d.StartDate,
		EndDate:   d.EndDate,
		ItemIDs:   ids,
	}
}

func Rules(ds []Discount) []discount.Rule {
	rules := make([]discount.Rule, 0, len(ds))
	for _, d := range ds {
		rules = append(rules, d.Rule())
	}
	return rules
}
