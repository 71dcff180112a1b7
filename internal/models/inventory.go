package models

import (
	"time"

	"gorm.io/gorm"
)

type InventoryItem struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"uniqueIndex;not null" json:"name"`
	Quantity     float64   `gorm:"not null" json:"quantity"`
	Unit         string    `gorm:"not null" json:"unit"`
	ReorderLevel float64   `gorm:"not null" json:"reorderLevel"`
	CostPerUnit  float64   `json:"costPerUnit"`
	Supplier     string    `json:"supplier"`
	LowStock     bool      `gorm:"-" json:"lowStock"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (i *InventoryItem) IsLowStock() bool {
	return i.Quantity <= i.ReorderLevel
}

func (i *InventoryItem) AfterFind(_ *gorm.DB) error {
	i.LowStock = i.IsLowStock()
	return nil
}
