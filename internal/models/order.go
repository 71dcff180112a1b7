package models

import "time"

type OrderStatus string

const (
	OrderPending        OrderStatus = "pending"
	OrderCompleted      OrderStatus = "completed"
	OrderCancelled      OrderStatus = "cancelled"
	OrderOutForDelivery OrderStatus = "out-for-delivery"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderCompleted, OrderCancelled, OrderOutForDelivery:
		return true
	}
	return false
}

type Order struct {
	ID              uint        `gorm:"primaryKey" json:"id"`
	CustomerID      *uint       `gorm:"index" json:"customerId"`
	Customer        *Customer   `json:"customer,omitempty"`
	Status          OrderStatus `gorm:"type:varchar(32);index;not null;default:'pending'" json:"status"`
	DeliveryAddress string      `json:"deliveryAddress"`
	Notes           string      `json:"notes"`
	Subtotal        float64     `gorm:"not null" json:"subtotal"`
	DiscountTotal   float64     `gorm:"not null" json:"discountTotal"`
	Total           float64     `gorm:"not null" json:"total"`
	Items           []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

type OrderItem struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	OrderID    uint      `gorm:"index;not null" json:"orderId"`
	MenuItemID uint      `gorm:"index;not null" json:"menuItemId"`
	MenuItem   *MenuItem `json:"menuItem,omitempty"`
	Name       string    `gorm:"not null" json:"name"`
	Quantity   uint      `gorm:"not null" json:"quantity"`
	UnitPrice  float64   `gorm:"not null" json:"unitPrice"` // list price at order time
	Price      float64   `gorm:"not null" json:"price"`     // charged unit price
	DiscountID *uint     `json:"discountId,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}
