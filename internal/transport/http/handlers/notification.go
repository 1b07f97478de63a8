package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aidosk/gameverse/internal/infra/logger"
	"github.com/aidosk/gameverse/internal/transport/http/middleware"
	"github.com/aidosk/gameverse/internal/usecase"
)

// NotificationDispatcher delivers out-of-band credentials to users.
type NotificationDispatcher interface {
	SendPasswordResetCode(ctx context.Context, payload PasswordResetNotification) error
}

// PasswordResetNotification captures data needed to deliver a password reset code.
type PasswordResetNotification struct {
	Email     string
	Code      string
	ExpiresAt time.Time
}

type noopDispatcher struct{}

func (noopDispatcher) SendPasswordResetCode(ctx context.Context, payload PasswordResetNotification) error {
	return nil
}

// LoggingNotificationDispatcher records credential dispatch events for observability without delivering them.
type LoggingNotificationDispatcher struct {
	logger *zap.Logger
}

// NewLoggingNotificationDispatcher constructs a notification dispatcher backed by structured logging.
func NewLoggingNotificationDispatcher(log *zap.Logger) NotificationDispatcher {
	if log == nil {
		return noopDispatcher{}
	}
	return &LoggingNotificationDispatcher{logger: log}
}

func (d *LoggingNotificationDispatcher) SendPasswordResetCode(ctx context.Context, payload PasswordResetNotification) error {
	if d == nil || d.logger == nil {
		return nil
	}

	d.logger.Info("dispatch password reset code",
		zap.String("email", logger.MaskEmail(payload.Email)),
		zap.Time("expires_at", payload.ExpiresAt),
	)
	return nil
}

// NotificationHandler exposes a user's notification feed.
type NotificationHandler struct {
	notifications *usecase.NotificationService
}

// NewNotificationHandler constructs NotificationHandler.
func NewNotificationHandler(notifications *usecase.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// RegisterRoutes binds notification routes.
func (h *NotificationHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("", h.list)
	r.POST("/:id/read", h.markRead)
	r.POST("/read-all", h.markAllRead)
}

func (h *NotificationHandler) list(c *gin.Context) {
	userID, ok := middleware.GetSubjectID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	notifications, err := h.notifications.List(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to list notifications"))
		return
	}

	payloads, unread := newNotificationPayloads(notifications)
	c.JSON(http.StatusOK, NotificationListResponse{
		Notifications: payloads,
		Unread:        unread,
	})
}

func (h *NotificationHandler) markRead(c *gin.Context) {
	userID, ok := middleware.GetSubjectID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	err := h.notifications.MarkRead(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrNotificationNotFound, Status: http.StatusNotFound, Message: "notification not found"},
			{Err: usecase.ErrNotOwner, Status: http.StatusForbidden, Message: "notification belongs to another user"},
		}, http.StatusInternalServerError, "failed to mark notification read")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *NotificationHandler) markAllRead(c *gin.Context) {
	userID, ok := middleware.GetSubjectID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	if err := h.notifications.MarkAllRead(c.Request.Context(), userID); err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to mark notifications read"))
		return
	}

	c.Status(http.StatusNoContent)
}
