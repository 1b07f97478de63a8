package domain

import "time"

// Notification is a user-facing message generated by the storefront.
type Notification struct {
	ID        string
	UserID    string
	Message   string
	IsRead    bool
	CreatedAt time.Time
}
