package models

import "time"

// Notification types
const (
	NotificationAlert  = "alert"
	NotificationNotice = "notice"
	NotificationSystem = "system"
)

// Notification is an in-app notification record
type Notification struct {
	ID        string    `json:"id" bson:"id"`
	Type      string    `json:"type" bson:"type"`
	Title     string    `json:"title" bson:"title"`
	Body      string    `json:"body" bson:"body"`
	ProfileID string    `json:"profile_id,omitempty" bson:"profile_id,omitempty"`
	Read      bool      `json:"read" bson:"read"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// NotificationList is the list payload, including the empty-state message
// the notification page renders when there is nothing to show.
type NotificationList struct {
	Notifications []*Notification `json:"notifications"`
	UnreadCount   int             `json:"unread_count"`
	EmptyMessage  string          `json:"empty_message,omitempty"`
}
