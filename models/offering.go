package models

import "time"

// ConsultationOffering is a purchasable consultation service type.
// Price and currency are snapshotted onto bookings at creation time,
// so editing an offering never touches in-flight bookings.
type ConsultationOffering struct {
	ID              string    `bson:"id" json:"id"`
	Title           string    `bson:"title" json:"title"`
	Description     string    `bson:"description,omitempty" json:"description,omitempty"`
	Category        string    `bson:"category" json:"category"`
	Price           float64   `bson:"price" json:"price"`
	Currency        string    `bson:"currency" json:"currency"`
	DurationMinutes int       `bson:"durationMinutes" json:"durationMinutes"`
	MaxPerDay       int       `bson:"maxPerDay,omitempty" json:"maxPerDay,omitempty"` // 0 means unlimited
	Active          bool      `bson:"active" json:"active"`
	CreatedAt       time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time `bson:"updatedAt" json:"updatedAt"`
}
