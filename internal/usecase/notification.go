package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/aidosk/gameverse/internal/core/domain"
	"github.com/aidosk/gameverse/internal/core/port"
	"github.com/aidosk/gameverse/internal/repository"
)

// NotificationService reads and acknowledges user notifications.
type NotificationService struct {
	notifications port.NotificationRepository
}

// NewNotificationService constructs a NotificationService.
func NewNotificationService(notifications port.NotificationRepository) *NotificationService {
	return &NotificationService{notifications: notifications}
}

// List returns the user's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, userID string) ([]domain.Notification, error) {
	notifications, err := s.notifications.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return notifications, nil
}

// MarkRead acknowledges a single notification owned by the caller.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	notification, err := s.notifications.GetByID(ctx, notificationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotificationNotFound
		}
		return fmt.Errorf("lookup notification: %w", err)
	}

	if notification.UserID != userID {
		return ErrNotOwner
	}

	if err := s.notifications.MarkRead(ctx, notificationID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotificationNotFound
		}
		return fmt.Errorf("mark notification read: %w", err)
	}

	return nil
}

// MarkAllRead acknowledges every unread notification of the caller.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	if err := s.notifications.MarkAllRead(ctx, userID); err != nil {
		return fmt.Errorf("mark all notifications read: %w", err)
	}
	return nil
}
