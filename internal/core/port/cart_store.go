package port

import "context"

// CartStore holds per-session cart state: a mapping of game id to a positive
// quantity. Implementations are ephemeral; cart contents live only as long
// as the session and are never snapshotted until checkout.
type CartStore interface {
	// Add increments the quantity for gameID by one, creating the entry
	// when absent.
	Add(ctx context.Context, sessionID, gameID string) error
	// Set replaces the quantity for gameID when the entry exists. A
	// quantity of zero or less removes the entry.
	Set(ctx context.Context, sessionID, gameID string, quantity int) error
	// Remove deletes the entry; removing an absent entry is a no-op.
	Remove(ctx context.Context, sessionID, gameID string) error
	// Get returns the game-id to quantity mapping for the session.
	Get(ctx context.Context, sessionID string) (map[string]int, error)
	// Clear drops all entries for the session.
	Clear(ctx context.Context, sessionID string) error
}

// ResetStateStore tracks the transient "code verified" flag of the password
// reset flow, keyed by email. The flag is what entitles a caller to complete
// the reset; it is cleared when the password change lands.
type ResetStateStore interface {
	MarkVerified(ctx context.Context, email string) error
	IsVerified(ctx context.Context, email string) (bool, error)
	ClearVerified(ctx context.Context, email string) error
}
