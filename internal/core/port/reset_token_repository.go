package port

import (
	"context"

	"github.com/aidosk/gameverse/internal/core/domain"
)

// ResetTokenRepository persists password reset codes. Tokens are never
// deleted; they expire logically via timestamp comparison and are
// invalidated by setting the used flag.
type ResetTokenRepository interface {
	Create(ctx context.Context, token domain.PasswordResetToken) error
	// GetLatestUnused returns the most recent unused token matching the
	// email and code hash.
	GetLatestUnused(ctx context.Context, email, codeHash string) (*domain.PasswordResetToken, error)
	MarkUsed(ctx context.Context, id string) error
	// InvalidateForEmail marks all unused tokens for the email used and
	// returns how many were invalidated.
	InvalidateForEmail(ctx context.Context, email string) (int, error)
}
