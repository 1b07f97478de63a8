package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus enumerates the order lifecycle states. Cancelled and completed
// orders are terminal and never re-opened.
type OrderStatus string

const (
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// Terminal reports whether the status permits no further transitions.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// Order records a checkout. TotalPrice is the denormalized sum of its items
// captured at creation time and is never recomputed.
type Order struct {
	ID         string
	UserID     string
	Status     OrderStatus
	TotalPrice decimal.Decimal
	CreatedAt  time.Time
	Items      []OrderItem
}

// OrderItem is a line of an order. PriceAtPurchase snapshots the game's
// catalog price at checkout time; later catalog changes never alter it.
type OrderItem struct {
	ID              string
	OrderID         string
	GameID          string
	Quantity        int
	PriceAtPurchase decimal.Decimal
}

// LibraryEntry is a purchased game as shown in the user's library.
type LibraryEntry struct {
	Game       Game
	AcquiredAt time.Time
}
