package usecase

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/aidosk/gameverse/internal/core/domain"
	"github.com/aidosk/gameverse/internal/core/port"
	"github.com/aidosk/gameverse/internal/infra/logger"
	"github.com/aidosk/gameverse/internal/infra/security"
	"github.com/aidosk/gameverse/internal/repository"
)

// AuthService handles storefront and back-office sign-up and login.
type AuthService struct {
	users             port.UserRepository
	admins            port.AdminRepository
	notifications     port.NotificationRepository
	events            port.EventPublisher
	sessions          *security.SessionManager
	passwordValidator *security.PasswordValidator
	logger            *zap.Logger
	now               func() time.Time
	signupBalance     decimal.Decimal
	adminSignupKey    string
}

// RegisterInput carries the payload for user registration.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// LoginResult bundles the authenticated principal and its session token.
type LoginResult struct {
	UserID   string
	Username string
	Role     string
	Token    string
}

// NewAuthService constructs an AuthService.
func NewAuthService(
	users port.UserRepository,
	admins port.AdminRepository,
	notifications port.NotificationRepository,
	events port.EventPublisher,
	sessions *security.SessionManager,
	validator *security.PasswordValidator,
	signupBalance decimal.Decimal,
	adminSignupKey string,
	log *zap.Logger,
) *AuthService {
	if validator == nil {
		validator = security.DefaultPasswordValidator()
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &AuthService{
		users:             users,
		admins:            admins,
		notifications:     notifications,
		events:            events,
		sessions:          sessions,
		passwordValidator: validator,
		logger:            log,
		now:               time.Now,
		signupBalance:     signupBalance,
		adminSignupKey:    adminSignupKey,
	}
}

// WithClock allows tests to override the clock used by the service.
func (s *AuthService) WithClock(clock func() time.Time) {
	if clock != nil {
		s.now = clock
	}
}

// Register creates a storefront user with the configured signup balance.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.ToLower(strings.TrimSpace(input.Email))

	if username == "" {
		return nil, fmt.Errorf("username is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("invalid email address")
	}
	if err := s.passwordValidator.Validate(input.Password); err != nil {
		return nil, err
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup username: %w", err)
	}

	hash, err := security.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	user := domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Status:       domain.AccountStatusActive,
		Balance:      s.signupBalance,
		CreatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	if s.events != nil {
		event := domain.UserRegisteredEvent{
			EventID:      uuid.NewString(),
			UserID:       user.ID,
			Username:     user.Username,
			Email:        user.Email,
			RegisteredAt: now,
		}
		if err := s.events.PublishUserRegistered(ctx, event); err != nil {
			s.logger.Warn("publish user registered event failed",
				zap.String("user_id", user.ID),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("user registered",
		zap.String("user_id", user.ID),
		zap.String("email", logger.MaskEmail(user.Email)),
	)

	return &user, nil
}

// Login authenticates a storefront user by email and password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	if user.Status == domain.AccountStatusBanned {
		return nil, ErrAccountBanned
	}

	token, err := s.sessions.Issue(user.ID, security.RoleUser)
	if err != nil {
		return nil, fmt.Errorf("issue session token: %w", err)
	}

	if s.notifications != nil {
		notification := domain.Notification{
			ID:        uuid.NewString(),
			UserID:    user.ID,
			Message:   fmt.Sprintf("Welcome back, %s!", user.Username),
			CreatedAt: s.now().UTC(),
		}
		if err := s.notifications.Create(ctx, notification); err != nil {
			s.logger.Warn("create welcome notification failed",
				zap.String("user_id", user.ID),
				zap.Error(err),
			)
		}
	}

	return &LoginResult{
		UserID:   user.ID,
		Username: user.Username,
		Role:     security.RoleUser,
		Token:    token,
	}, nil
}

// RegisterAdmin creates a back-office principal. The caller must present the
// configured signup key.
func (s *AuthService) RegisterAdmin(ctx context.Context, name, email, password, signupKey string) (*domain.Admin, error) {
	if s.adminSignupKey == "" ||
		subtle.ConstantTimeCompare([]byte(signupKey), []byte(s.adminSignupKey)) != 1 {
		return nil, ErrAdminKeyInvalid
	}

	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("invalid email address")
	}
	if err := s.passwordValidator.Validate(password); err != nil {
		return nil, err
	}

	if _, err := s.admins.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup admin email: %w", err)
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	admin := domain.Admin{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}

	if err := s.admins.Create(ctx, admin); err != nil {
		return nil, fmt.Errorf("create admin: %w", err)
	}

	s.logger.Info("admin registered",
		zap.String("admin_id", admin.ID),
		zap.String("email", logger.MaskEmail(admin.Email)),
	)

	return &admin, nil
}

// LoginAdmin authenticates a back-office principal.
func (s *AuthService) LoginAdmin(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	admin, err := s.admins.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup admin: %w", err)
	}

	ok, err := security.VerifyPassword(password, admin.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	token, err := s.sessions.Issue(admin.ID, security.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("issue session token: %w", err)
	}

	return &LoginResult{
		UserID:   admin.ID,
		Username: admin.Name,
		Role:     security.RoleAdmin,
		Token:    token,
	}, nil
}
