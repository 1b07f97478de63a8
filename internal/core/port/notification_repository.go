package port

import (
	"context"

	"github.com/aidosk/gameverse/internal/core/domain"
)

// NotificationRepository persists user notifications.
type NotificationRepository interface {
	Create(ctx context.Context, notification domain.Notification) error
	GetByID(ctx context.Context, id string) (*domain.Notification, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context, userID string) error
}
