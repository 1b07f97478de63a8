package port

import (
	"context"

	"github.com/aidosk/gameverse/internal/core/domain"
)

// ActivityLogRepository appends and reads the admin audit trail. The
// interface deliberately exposes no update or delete operation.
type ActivityLogRepository interface {
	Append(ctx context.Context, entry domain.ActivityLog) error
	ListRecent(ctx context.Context, limit int) ([]domain.ActivityLog, error)
}
