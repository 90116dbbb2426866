package model

import "time"

const (
	EventUserRegistered     = "user.registered"
	EventUserProfileUpdated = "user.profile_updated"
	EventUserDeleted        = "user.deleted"
)

// UserEvent is published on the user events exchange with Type as routing key.
type UserEvent struct {
	Type       string    `json:"type"`
	UserID     string    `json:"userId"`
	Email      string    `json:"email"`
	OccurredAt time.Time `json:"occurredAt"`
}
