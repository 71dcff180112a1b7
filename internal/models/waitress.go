package models

import "time"

type Waitress struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Email     string    `gorm:"index" json:"email"`
	Phone     string    `json:"phone"`
	IsActive  bool      `gorm:"not null;default:true" json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type WaitressOrderStatus string

const (
	WaitressOrderOpen   WaitressOrderStatus = "open"
	WaitressOrderClosed WaitressOrderStatus = "closed"
)

// WaitressOrder is a table order taken by front-of-house staff. It holds at
// least one item for as long as it exists.
type WaitressOrder struct {
	ID          uint                `gorm:"primaryKey" json:"id"`
	WaitressID  uint                `gorm:"index;not null" json:"waitressId"`
	Waitress    *Waitress           `json:"waitress,omitempty"`
	TableNumber string              `gorm:"not null" json:"tableNumber"`
	Status      WaitressOrderStatus `gorm:"type:varchar(16);index;not null;default:'open'" json:"status"`
	Items       []WaitressOrderItem `gorm:"foreignKey:WaitressOrderID;constraint:OnDelete:CASCADE" json:"items"`
	Total       float64             `gorm:"not null" json:"total"`
	ClosedAt    *time.Time          `json:"closedAt"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

type WaitressOrderItem struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	WaitressOrderID uint      `gorm:"index;not null" json:"waitressOrderId"`
	MenuItemID      uint      `gorm:"index;not null" json:"menuItemId"`
	Name            string    `gorm:"not null" json:"name"`
	Quantity        uint      `gorm:"not null" json:"quantity"`
	UnitPrice       float64   `gorm:"not null" json:"unitPrice"`
	Notes           string    `json:"notes"`
	CreatedAt       time.Time `json:"createdAt"`
}
