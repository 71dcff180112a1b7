package models

import "time"

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationCancelled ReservationStatus = "cancelled"
)

func (s ReservationStatus) Valid() bool {
	switch s {
	case ReservationPending, ReservationConfirmed, ReservationCancelled:
		return true
	}
	return false
}

type Reservation struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	CustomerID *uint             `gorm:"index" json:"customerId"`
	Name       string            `gorm:"not null" json:"name"`
	Email      string            `json:"email"`
	Phone      string            `gorm:"not null" json:"phone"`
	PartySize  int               `gorm:"not null" json:"partySize"`
	ReservedAt time.Time         `gorm:"index;not null" json:"reservedAt"`
	Status     ReservationStatus `gorm:"type:varchar(32);index;not null;default:'pending'" json:"status"`
	Notes      string            `json:"notes"`
	CreatedAt  time.Time         `json:"createdAt"`
	UpdatedAt  time.Time         `json:"updatedAt"`
}
