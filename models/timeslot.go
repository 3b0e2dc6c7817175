package models

import "time"

// TimeSlot is one bookable interval belonging to an offering.
// The [Start, End) interval of a slot never overlaps another slot
// of the same offering.
type TimeSlot struct {
	ID          string    `bson:"id" json:"id"`
	OfferingID  string    `bson:"offeringId" json:"offeringId"`
	Start       time.Time `bson:"start" json:"start"` // absolute instant, stored UTC
	End         time.Time `bson:"end" json:"end"`
	IsAvailable bool      `bson:"isAvailable" json:"isAvailable"`
	Version     int       `bson:"version" json:"version"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
}
