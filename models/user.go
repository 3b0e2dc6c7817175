package models

import "time"

// UserProfile is the minimal requester profile the booking core needs:
// display data snapshotted onto bookings and the push token for
// notifications. Credentials live with the external identity service.
type UserProfile struct {
	ID        string    `bson:"id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	Email     string    `bson:"email" json:"email"`
	FCMToken  string    `bson:"fcmToken,omitempty" json:"-"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
