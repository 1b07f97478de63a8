package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/aidosk/gameverse/internal/core/domain"
	"github.com/aidosk/gameverse/internal/core/port"
)

// StubPublisher logs events instead of sending them to Kafka. Useful for development environments.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType, subjectID string, at time.Time, payload any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("Stub event published",
		zap.String("event_type", eventType),
		zap.String("subject_id", subjectID),
		zap.Time("timestamp", at.UTC()),
		zap.Any("payload", payload),
	)
}

// PublishUserRegistered logs store.user.registered events.
func (p *StubPublisher) PublishUserRegistered(_ context.Context, event domain.UserRegisteredEvent) error {
	payload := map[string]any{
		"user_id":       event.UserID,
		"username":      event.Username,
		"email":         event.Email,
		"registered_at": event.RegisteredAt,
		"metadata":      event.Metadata,
	}
	p.logEvent("store.user.registered", event.UserID, event.RegisteredAt, payload)
	return nil
}

// PublishOrderPlaced logs store.order.placed events.
func (p *StubPublisher) PublishOrderPlaced(_ context.Context, event domain.OrderPlacedEvent) error {
	payload := map[string]any{
		"order_id":   event.OrderID,
		"user_id":    event.UserID,
		"total":      event.Total.StringFixed(2),
		"item_count": event.ItemCount,
		"placed_at":  event.PlacedAt,
		"metadata":   event.Metadata,
	}
	p.logEvent("store.order.placed", event.UserID, event.PlacedAt, payload)
	return nil
}

// PublishOrderCancelled logs store.order.cancelled events.
func (p *StubPublisher) PublishOrderCancelled(_ context.Context, event domain.OrderCancelledEvent) error {
	payload := map[string]any{
		"order_id":     event.OrderID,
		"user_id":      event.UserID,
		"refunded":     event.Refunded.StringFixed(2),
		"cancelled_by": event.CancelledBy,
		"cancelled_at": event.CancelledAt,
		"metadata":     event.Metadata,
	}
	p.logEvent("store.order.cancelled", event.UserID, event.CancelledAt, payload)
	return nil
}

// PublishPasswordResetRequested logs store.password.reset_requested events.
func (p *StubPublisher) PublishPasswordResetRequested(_ context.Context, event domain.PasswordResetRequestedEvent) error {
	payload := map[string]any{
		"user_id":            event.UserID,
		"request_id":         event.RequestID,
		"requested_at":       event.RequestedAt,
		"masked_destination": event.MaskedDestination,
		"expires_at":         event.ExpiresAt,
		"metadata":           event.Metadata,
	}
	p.logEvent("store.password.reset_requested", event.UserID, event.RequestedAt, payload)
	return nil
}

// PublishPasswordChanged logs store.password.changed events.
func (p *StubPublisher) PublishPasswordChanged(_ context.Context, event domain.PasswordChangedEvent) error {
	payload := map[string]any{
		"user_id":    event.UserID,
		"changed_at": event.ChangedAt,
		"changed_by": event.ChangedBy,
		"metadata":   event.Metadata,
	}
	p.logEvent("store.password.changed", event.UserID, event.ChangedAt, payload)
	return nil
}

// PublishAdminAction logs store.admin.action events.
func (p *StubPublisher) PublishAdminAction(_ context.Context, event domain.AdminActionEvent) error {
	payload := map[string]any{
		"admin_id":    event.AdminID,
		"action":      event.Action,
		"target_type": event.TargetType,
		"target_id":   event.TargetID,
		"details":     event.Details,
		"occurred_at": event.OccurredAt,
		"metadata":    event.Metadata,
	}
	p.logEvent("store.admin.action", event.AdminID, event.OccurredAt, payload)
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
