package core

import "time"

// Notification is a single human-readable event message for the tutor's
// notification tray. Phone, when set, is the parent contact the message may be
// forwarded to; Link is the prebuilt outbound chat deep link for that contact.
type Notification struct {
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Phone     string    `json:"phone,omitempty"`
	Link      string    `json:"link,omitempty"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

// NotificationService is any service that can dispatch notifications.
// Dispatch is fire-and-forget: failures must never propagate to the caller.
type NotificationService interface {
	Send(notifs ...Notification)
	// Recent returns the most recently sent notifications, newest first.
	Recent() []Notification
}
