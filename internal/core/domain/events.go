package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// UserRegisteredEvent represents the payload for store.user.registered messages.
type UserRegisteredEvent struct {
	EventID      string
	UserID       string
	Username     string
	Email        string
	RegisteredAt time.Time
	Metadata     map[string]any
}

// OrderPlacedEvent represents the payload for store.order.placed messages.
type OrderPlacedEvent struct {
	EventID   string
	OrderID   string
	UserID    string
	Total     decimal.Decimal
	ItemCount int
	PlacedAt  time.Time
	Metadata  map[string]any
}

// OrderCancelledEvent represents the payload for store.order.cancelled messages.
type OrderCancelledEvent struct {
	EventID     string
	OrderID     string
	UserID      string
	Refunded    decimal.Decimal
	CancelledBy string
	CancelledAt time.Time
	Metadata    map[string]any
}

// PasswordResetRequestedEvent represents the payload for store.password.reset_requested messages.
type PasswordResetRequestedEvent struct {
	EventID           string
	UserID            string
	RequestID         string
	RequestedAt       time.Time
	MaskedDestination string
	ExpiresAt         time.Time
	Metadata          map[string]any
}

// PasswordChangedEvent represents the payload for store.password.changed messages.
type PasswordChangedEvent struct {
	EventID   string
	UserID    string
	ChangedAt time.Time
	ChangedBy string
	Metadata  map[string]any
}

// AdminActionEvent represents the payload for store.admin.action messages.
// It mirrors the activity log row appended for the same action.
type AdminActionEvent struct {
	EventID    string
	AdminID    string
	Action     string
	TargetType string
	TargetID   string
	Details    string
	OccurredAt time.Time
	Metadata   map[string]any
}
