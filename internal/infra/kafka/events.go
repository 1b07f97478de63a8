package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/aidosk/gameverse/internal/core/domain"
	"github.com/aidosk/gameverse/internal/core/port"
	"github.com/aidosk/gameverse/internal/infra/config"
)

const schemaVersion = "1.0"

// EventPublisher implements port.EventPublisher using Kafka.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

type envelopeMetadata map[string]string

type eventEnvelope struct {
	EventID   string           `json:"event_id"`
	EventType string           `json:"event_type"`
	UserID    string           `json:"user_id,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Version   string           `json:"version"`
	Payload   any              `json:"payload"`
	Metadata  envelopeMetadata `json:"metadata,omitempty"`
}

func (p *EventPublisher) publish(ctx context.Context, eventID, eventType, userID string, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	id := eventID
	if id == "" {
		id = uuid.NewString()
	}

	metadata := envelopeMetadata{
		"service":     p.appCfg.Name,
		"environment": p.appCfg.Env,
	}

	if span := trace.SpanFromContext(ctx); span != nil {
		if sc := span.SpanContext(); sc.IsValid() {
			metadata["trace_id"] = sc.TraceID().String()
		}
	}

	envelope := eventEnvelope{
		EventID:   id,
		EventType: eventType,
		UserID:    userID,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata:  metadata,
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(eventType),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Producer().Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishUserRegistered publishes store.user.registered events.
func (p *EventPublisher) PublishUserRegistered(ctx context.Context, event domain.UserRegisteredEvent) error {
	payload := struct {
		UserID       string         `json:"user_id"`
		Username     string         `json:"username"`
		Email        string         `json:"email"`
		RegisteredAt time.Time      `json:"registered_at"`
		Metadata     map[string]any `json:"metadata,omitempty"`
	}{
		UserID:       event.UserID,
		Username:     event.Username,
		Email:        event.Email,
		RegisteredAt: event.RegisteredAt.UTC(),
		Metadata:     event.Metadata,
	}

	return p.publish(ctx, event.EventID, "store.user.registered", event.UserID, event.RegisteredAt, payload)
}

// PublishOrderPlaced publishes store.order.placed events.
func (p *EventPublisher) PublishOrderPlaced(ctx context.Context, event domain.OrderPlacedEvent) error {
	payload := struct {
		OrderID   string         `json:"order_id"`
		UserID    string         `json:"user_id"`
		Total     string         `json:"total"`
		ItemCount int            `json:"item_count"`
		PlacedAt  time.Time      `json:"placed_at"`
		Metadata  map[string]any `json:"metadata,omitempty"`
	}{
		OrderID:   event.OrderID,
		UserID:    event.UserID,
		Total:     event.Total.StringFixed(2),
		ItemCount: event.ItemCount,
		PlacedAt:  event.PlacedAt.UTC(),
		Metadata:  event.Metadata,
	}

	return p.publish(ctx, event.EventID, "store.order.placed", event.UserID, event.PlacedAt, payload)
}

// PublishOrderCancelled publishes store.order.cancelled events.
func (p *EventPublisher) PublishOrderCancelled(ctx context.Context, event domain.OrderCancelledEvent) error {
	payload := struct {
		OrderID     string         `json:"order_id"`
		UserID      string         `json:"user_id"`
		Refunded    string         `json:"refunded"`
		CancelledBy string         `json:"cancelled_by"`
		CancelledAt time.Time      `json:"cancelled_at"`
		Metadata    map[string]any `json:"metadata,omitempty"`
	}{
		OrderID:     event.OrderID,
		UserID:      event.UserID,
		Refunded:    event.Refunded.StringFixed(2),
		CancelledBy: event.CancelledBy,
		CancelledAt: event.CancelledAt.UTC(),
		Metadata:    event.Metadata,
	}

	return p.publish(ctx, event.EventID, "store.order.cancelled", event.UserID, event.CancelledAt, payload)
}

// PublishPasswordResetRequested publishes store.password.reset_requested events.
func (p *EventPublisher) PublishPasswordResetRequested(ctx context.Context, event domain.PasswordResetRequestedEvent) error {
	payload := struct {
		UserID            string         `json:"user_id"`
		RequestID         string         `json:"request_id"`
		RequestedAt       time.Time      `json:"requested_at"`
		MaskedDestination string         `json:"masked_destination,omitempty"`
		ExpiresAt         time.Time      `json:"expires_at"`
		Metadata          map[string]any `json:"metadata,omitempty"`
	}{
		UserID:            event.UserID,
		RequestID:         event.RequestID,
		RequestedAt:       event.RequestedAt.UTC(),
		MaskedDestination: event.MaskedDestination,
		ExpiresAt:         event.ExpiresAt.UTC(),
		Metadata:          event.Metadata,
	}

	return p.publish(ctx, event.EventID, "store.password.reset_requested", event.UserID, event.RequestedAt, payload)
}

// PublishPasswordChanged publishes store.password.changed events.
func (p *EventPublisher) PublishPasswordChanged(ctx context.Context, event domain.PasswordChangedEvent) error {
	payload := struct {
		UserID    string         `json:"user_id"`
		ChangedAt time.Time      `json:"changed_at"`
		ChangedBy string         `json:"changed_by"`
		Metadata  map[string]any `json:"metadata,omitempty"`
	}{
		UserID:    event.UserID,
		ChangedAt: event.ChangedAt.UTC(),
		ChangedBy: event.ChangedBy,
		Metadata:  event.Metadata,
	}

	return p.publish(ctx, event.EventID, "store.password.changed", event.UserID, event.ChangedAt, payload)
}

// PublishAdminAction publishes store.admin.action events.
func (p *EventPublisher) PublishAdminAction(ctx context.Context, event domain.AdminActionEvent) error {
	payload := struct {
		AdminID    string         `json:"admin_id"`
		Action     string         `json:"action"`
		TargetType string         `json:"target_type"`
		TargetID   string         `json:"target_id"`
		Details    string         `json:"details,omitempty"`
		OccurredAt time.Time      `json:"occurred_at"`
		Metadata   map[string]any `json:"metadata,omitempty"`
	}{
		AdminID:    event.AdminID,
		Action:     event.Action,
		TargetType: event.TargetType,
		TargetID:   event.TargetID,
		Details:    event.Details,
		OccurredAt: event.OccurredAt.UTC(),
		Metadata:   event.Metadata,
	}

	return p.publish(ctx, event.EventID, "store.admin.action", event.AdminID, event.OccurredAt, payload)
}

var _ port.EventPublisher = (*EventPublisher)(nil)
