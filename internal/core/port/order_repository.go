package port

import (
	"context"

	"github.com/aidosk/gameverse/internal/core/domain"
)

// OrderFilter narrows order listing queries.
type OrderFilter struct {
	UserID string
	Status domain.OrderStatus
	Limit  int
	Offset int
}

// OrderSummary aggregates counts and revenue for the admin dashboard.
type OrderSummary struct {
	Total          int
	ProcessingCnt  int
	PendingCnt     int
	CompletedCnt   int
	CancelledCnt   int
	CompletedTotal string
}

// OrderRepository persists orders and their line items.
type OrderRepository interface {
	Create(ctx context.Context, order domain.Order) error
	CreateItems(ctx context.Context, items []domain.OrderItem) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	ListItems(ctx context.Context, orderID string) ([]domain.OrderItem, error)
	List(ctx context.Context, filter OrderFilter) ([]domain.Order, error)
	Count(ctx context.Context) (int, error)
	Summary(ctx context.Context) (*OrderSummary, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error
	// ListLibrary returns the purchased games for a user from non-cancelled
	// orders, most recently acquired first.
	ListLibrary(ctx context.Context, userID string) ([]domain.LibraryEntry, error)
}
