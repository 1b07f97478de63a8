package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aidosk/gameverse/internal/core/domain"
	"github.com/aidosk/gameverse/internal/core/port"
	"github.com/aidosk/gameverse/internal/infra/logger"
	"github.com/aidosk/gameverse/internal/infra/security"
	"github.com/aidosk/gameverse/internal/repository"
)

const (
	defaultResetTTL    = 15 * time.Minute
	fallbackCodeLength = 6

	passwordResetReason = "password_reset"
)

// PasswordResetService coordinates the three-step reset flow: request a
// code, verify it, complete with a new password. Issuing a new code
// invalidates every earlier unused code for the same email.
type PasswordResetService struct {
	users             port.UserRepository
	tokens            port.ResetTokenRepository
	state             port.ResetStateStore
	events            port.EventPublisher
	passwordValidator *security.PasswordValidator
	logger            *zap.Logger
	now               func() time.Time
	resetTTL          time.Duration
	codeLength        int
}

// ResetRequestResult describes the generated reset artifact returned to the caller.
type ResetRequestResult struct {
	Email     string
	Code      string
	ExpiresAt time.Time
}

// NewPasswordResetService constructs a PasswordResetService.
func NewPasswordResetService(
	users port.UserRepository,
	tokens port.ResetTokenRepository,
	state port.ResetStateStore,
	events port.EventPublisher,
	validator *security.PasswordValidator,
	log *zap.Logger,
) *PasswordResetService {
	if validator == nil {
		validator = security.DefaultPasswordValidator()
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &PasswordResetService{
		users:             users,
		tokens:            tokens,
		state:             state,
		events:            events,
		passwordValidator: validator,
		logger:            log,
		now:               time.Now,
		resetTTL:          defaultResetTTL,
		codeLength:        fallbackCodeLength,
	}
}

// WithClock allows tests to override the clock used by the service.
func (s *PasswordResetService) WithClock(clock func() time.Time) {
	if clock != nil {
		s.now = clock
	}
}

// WithTTL allows tests to override the default reset TTL.
func (s *PasswordResetService) WithTTL(ttl time.Duration) {
	if ttl > 0 {
		s.resetTTL = ttl
	}
}

// WithCodeLength overrides the generated code length.
func (s *PasswordResetService) WithCodeLength(length int) {
	if length > 0 {
		s.codeLength = length
	}
}

// Request issues a fresh reset code for the email. All earlier unused codes
// for the same email are invalidated first so only the newest code works.
func (s *PasswordResetService) Request(ctx context.Context, email string) (*ResetRequestResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	invalidated, err := s.tokens.InvalidateForEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("invalidate prior reset codes: %w", err)
	}

	// A stale verified flag from an earlier code must not survive a re-request.
	if err := s.state.ClearVerified(ctx, email); err != nil {
		s.logger.Warn("clear stale verified flag failed",
			zap.String("email", logger.MaskEmail(email)),
			zap.Error(err),
		)
	}

	code, err := security.GenerateNumericCode(s.codeLength)
	if err != nil {
		return nil, fmt.Errorf("generate reset code: %w", err)
	}

	now := s.now().UTC()
	expiresAt := now.Add(s.resetTTL)
	token := domain.PasswordResetToken{
		ID:        uuid.NewString(),
		Email:     email,
		CodeHash:  security.HashToken(code),
		CreatedAt: now,
		ExpiresAt: expiresAt,
	}

	if err := s.tokens.Create(ctx, token); err != nil {
		return nil, fmt.Errorf("store reset token: %w", err)
	}

	if s.events != nil {
		event := domain.PasswordResetRequestedEvent{
			EventID:           uuid.NewString(),
			UserID:            user.ID,
			RequestID:         token.ID,
			RequestedAt:       now,
			MaskedDestination: logger.MaskEmail(email),
			ExpiresAt:         expiresAt,
		}
		if err := s.events.PublishPasswordResetRequested(ctx, event); err != nil {
			s.logger.Warn("publish reset requested event failed",
				zap.String("user_id", user.ID),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("password reset requested",
		zap.String("email", logger.MaskEmail(email)),
		zap.Int("invalidated", invalidated),
	)

	return &ResetRequestResult{Email: email, Code: code, ExpiresAt: expiresAt}, nil
}

// Verify checks the supplied code against the latest unused token for the
// email and, on success, opens the completion window.
func (s *PasswordResetService) Verify(ctx context.Context, email, code string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	code = strings.TrimSpace(code)
	if email == "" || code == "" {
		return ErrResetCodeInvalid
	}

	token, err := s.tokens.GetLatestUnused(ctx, email, security.HashToken(code))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrResetCodeInvalid
		}
		return fmt.Errorf("lookup reset token: %w", err)
	}

	if token.Expired(s.now().UTC()) {
		// Burn the token so replaying the same code cannot loop on the
		// expiry branch.
		if err := s.tokens.MarkUsed(ctx, token.ID); err != nil {
			s.logger.Warn("mark expired reset code used failed",
				zap.String("email", logger.MaskEmail(email)),
				zap.Error(err))
		}
		return ErrResetCodeExpired
	}

	if err := s.state.MarkVerified(ctx, email); err != nil {
		return fmt.Errorf("mark reset verified: %w", err)
	}

	return nil
}

// Complete sets the new password. It requires a previously verified code and
// consumes both the verified flag and any outstanding codes for the email.
func (s *PasswordResetService) Complete(ctx context.Context, email, newPassword string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return ErrResetNotVerified
	}

	verified, err := s.state.IsVerified(ctx, email)
	if err != nil {
		return fmt.Errorf("check reset verified: %w", err)
	}
	if !verified {
		return ErrResetNotVerified
	}

	if err := s.passwordValidator.Validate(newPassword); err != nil {
		return err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	hash, err := security.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	if err := s.users.UpdatePassword(ctx, user.ID, hash, now); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if _, err := s.tokens.InvalidateForEmail(ctx, email); err != nil {
		s.logger.Warn("invalidate reset codes after completion failed",
			zap.String("email", logger.MaskEmail(email)),
			zap.Error(err),
		)
	}

	if err := s.state.ClearVerified(ctx, email); err != nil {
		s.logger.Warn("clear verified flag failed",
			zap.String("email", logger.MaskEmail(email)),
			zap.Error(err),
		)
	}

	if s.events != nil {
		event := domain.PasswordChangedEvent{
			EventID:   uuid.NewString(),
			UserID:    user.ID,
			ChangedAt: now,
			ChangedBy: passwordResetReason,
		}
		if err := s.events.PublishPasswordChanged(ctx, event); err != nil {
			s.logger.Warn("publish password changed event failed",
				zap.String("user_id", user.ID),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("password reset completed",
		zap.String("user_id", user.ID),
		zap.String("email", logger.MaskEmail(email)),
	)

	return nil
}
