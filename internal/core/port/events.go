package port

import (
	"context"

	"github.com/aidosk/gameverse/internal/core/domain"
)

// EventPublisher publishes domain events to the message bus.
type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, event domain.UserRegisteredEvent) error
	PublishOrderPlaced(ctx context.Context, event domain.OrderPlacedEvent) error
	PublishOrderCancelled(ctx context.Context, event domain.OrderCancelledEvent) error
	PublishPasswordResetRequested(ctx context.Context, event domain.PasswordResetRequestedEvent) error
	PublishPasswordChanged(ctx context.Context, event domain.PasswordChangedEvent) error
	PublishAdminAction(ctx context.Context, event domain.AdminActionEvent) error
}
