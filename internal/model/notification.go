package model

import "time"

// Notification is a deadline reminder surfaced to the user.
type Notification struct {
	// ID is the unique identifier for this notification.
	ID string `json:"id"`

	// TechnologyID links this notification to the technology it is about.
	TechnologyID int64 `json:"technology_id"`

	// Urgency is the deadline classification that triggered the reminder
	// (overdue, today or urgent).
	Urgency string `json:"urgency"`

	// DaysRemaining is negative when the deadline has passed.
	DaysRemaining int `json:"days_remaining"`

	// Message is the human-readable notification text.
	Message string `json:"message"`

	// CreatedAt is when this notification was generated.
	CreatedAt time.Time `json:"created_at"`
}
