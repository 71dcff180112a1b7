package models

import "time"

type Event struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	StartsAt    time.Time `gorm:"index;not null" json:"startsAt"`
	EndsAt      time.Time `gorm:"not null" json:"endsAt"`
	Capacity    int       `json:"capacity"`
	ImageURL    string    `json:"imageUrl"`
	IsPublished bool      `gorm:"not null;default:false" json:"isPublished"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
