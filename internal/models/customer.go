package models

import "time"

type Customer struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Email     string    `gorm:"uniqueIndex:idx_customers_email,where:email <> '';not null" json:"email"`
	Phone     string    `gorm:"not null" json:"phone"`
	Address   string    `json:"address"`
	OIDCID    *string   `gorm:"column:oidc_id;uniqueIndex" json:"-"` // OpenID Connect identifier
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
