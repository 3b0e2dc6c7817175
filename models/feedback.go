package models

import "time"

// ConsultationFeedback is a rating/comment tied 1:1 to a completed booking.
// Immutable once created except for the visibility flag.
type ConsultationFeedback struct {
	ID          string    `bson:"id" json:"id"`
	BookingID   string    `bson:"bookingId" json:"bookingId"`
	RequesterID string    `bson:"requesterId" json:"requesterId"`
	Rating      int       `bson:"rating" json:"rating"` // 1..5
	Comment     string    `bson:"comment,omitempty" json:"comment,omitempty"`
	IsPublic    bool      `bson:"isPublic" json:"isPublic"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
}
