package models

import "time"

// Cart is a storefront basket kept server side. The browser session only
// carries its ID.
type Cart struct {
	ID        string     `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Lines     []CartLine `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"lines"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// CartLine snapshots the menu item at the time it was added. It holds no
// reference constraint on menu_items so deleting a dish never breaks a cart.
type CartLine struct {
	ID         uint    `gorm:"primaryKey" json:"id"`
	CartID     string  `gorm:"type:varchar(36);index;not null" json:"cartId"`
	Position   int     `gorm:"not null" json:"position"`
	MenuItemID uint    `gorm:"not null" json:"menuItemId"`
	Name       string  `gorm:"not null" json:"name"`
	UnitPrice  float64 `gorm:"not null" json:"unitPrice"`
	Quantity   int     `gorm:"not null" json:"quantity"`
	ImageURL   string  `json:"imageUrl"`
}
