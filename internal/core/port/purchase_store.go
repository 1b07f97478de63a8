package port

import (
	"context"
	"time"

	"github.com/aidosk/gameverse/internal/core/domain"
)

// PurchaseStore runs the money-moving order operations atomically. Both
// operations execute in a single database transaction serialized on the
// buyer's account row, so concurrent checkouts against one balance cannot
// interleave.
type PurchaseStore interface {
	// Purchase re-reads live catalog prices, verifies the buyer can cover
	// the total, debits the balance, and writes the order with snapshotted
	// line items. quantities maps game id to a positive quantity.
	Purchase(ctx context.Context, userID string, quantities map[string]int, at time.Time) (*domain.Order, error)
	// CancelOrder transitions a non-terminal order to cancelled and
	// refunds its total to the buyer in the same transaction.
	CancelOrder(ctx context.Context, orderID string) (*domain.Order, error)
}
