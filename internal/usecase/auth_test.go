package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/aidosk/gameverse/internal/core/domain"
	"github.com/aidosk/gameverse/internal/infra/security"
)

const goodPassword = "Vq7#mPl2xWz9"

type authServiceUnderTest struct {
	*AuthService
	users         *fakeUserRepo
	admins        *fakeAdminRepo
	notifications *fakeNotificationRepo
	events        *fakeEventPublisher
	sessions      *security.SessionManager
}

func newAuthService(t *testing.T, adminKey string) *authServiceUnderTest {
	t.Helper()

	sessions, err := security.NewSessionManager("auth-test-secret-0123456789", "gameverse-test", time.Hour)
	if err != nil {
		t.Fatalf("new session manager: %v", err)
	}

	users := newFakeUserRepo()
	admins := newFakeAdminRepo()
	notifications := newFakeNotificationRepo()
	events := &fakeEventPublisher{}

	service := NewAuthService(
		users, admins, notifications, events, sessions,
		security.DefaultPasswordValidator(),
		mustDecimal(t, "100.00"), adminKey,
		zaptest.NewLogger(t),
	)

	return &authServiceUnderTest{
		AuthService:   service,
		users:         users,
		admins:        admins,
		notifications: notifications,
		events:        events,
		sessions:      sessions,
	}
}

func TestAuthServiceRegister(t *testing.T) {
	s := newAuthService(t, "")

	user, err := s.Register(context.Background(), RegisterInput{
		Username: "ada",
		Email:    "Ada@Example.com",
		Password: goodPassword,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if user.Email != "ada@example.com" {
		t.Errorf("email = %q, want lowercased", user.Email)
	}
	if user.Status != domain.AccountStatusActive {
		t.Errorf("status = %q, want active", user.Status)
	}
	if !user.Balance.Equal(mustDecimal(t, "100.00")) {
		t.Errorf("signup balance = %s, want 100.00", user.Balance)
	}

	ok, err := security.VerifyPassword(goodPassword, user.PasswordHash)
	if err != nil || !ok {
		t.Errorf("stored hash does not verify: ok=%v err=%v", ok, err)
	}

	if len(s.events.registered) != 1 {
		t.Fatalf("registered events = %d, want 1", len(s.events.registered))
	}
	if s.events.registered[0].UserID != user.ID {
		t.Errorf("event user id = %q, want %q", s.events.registered[0].UserID, user.ID)
	}
}

func TestAuthServiceRegisterDuplicates(t *testing.T) {
	s := newAuthService(t, "")
	s.users.users["user-1"] = domain.User{ID: "user-1", Username: "ada", Email: "ada@example.com"}

	_, err := s.Register(context.Background(), RegisterInput{
		Username: "other", Email: "ada@example.com", Password: goodPassword,
	})
	if !errors.Is(err, ErrEmailTaken) {
		t.Errorf("err = %v, want ErrEmailTaken", err)
	}

	_, err = s.Register(context.Background(), RegisterInput{
		Username: "ada", Email: "new@example.com", Password: goodPassword,
	})
	if !errors.Is(err, ErrUsernameTaken) {
		t.Errorf("err = %v, want ErrUsernameTaken", err)
	}
}

func TestAuthServiceRegisterWeakPassword(t *testing.T) {
	s := newAuthService(t, "")

	_, err := s.Register(context.Background(), RegisterInput{
		Username: "ada", Email: "ada@example.com", Password: "short1",
	})

	var violation *security.PasswordValidationError
	if !errors.As(err, &violation) {
		t.Fatalf("err = %v, want a password policy violation", err)
	}
	if len(s.users.created) != 0 {
		t.Error("no user row on a rejected password")
	}
}

func TestAuthServiceLogin(t *testing.T) {
	s := newAuthService(t, "")

	hash, err := security.HashPassword(goodPassword)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	s.users.users["user-1"] = domain.User{
		ID: "user-1", Username: "ada", Email: "ada@example.com",
		PasswordHash: hash, Status: domain.AccountStatusActive,
	}

	result, err := s.Login(context.Background(), "ADA@example.com", goodPassword)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.Role != security.RoleUser {
		t.Errorf("role = %q, want %q", result.Role, security.RoleUser)
	}

	claims, err := s.sessions.Verify(result.Token)
	if err != nil {
		t.Fatalf("verify issued token: %v", err)
	}
	if claims.Subject != "user-1" || claims.Role != security.RoleUser {
		t.Errorf("claims = %+v, want user-1/user", claims)
	}

	welcome := s.notifications.forUser("user-1")
	if len(welcome) != 1 || !strings.Contains(welcome[0].Message, "ada") {
		t.Errorf("notifications = %+v, want one greeting ada", welcome)
	}

	if _, err := s.Login(context.Background(), "ada@example.com", "wrong-password-9"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password err = %v, want ErrInvalidCredentials", err)
	}
	if _, err := s.Login(context.Background(), "nobody@example.com", goodPassword); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email err = %v, want ErrInvalidCredentials", err)
	}
}

func TestAuthServiceLoginBanned(t *testing.T) {
	s := newAuthService(t, "")

	hash, err := security.HashPassword(goodPassword)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	s.users.users["user-1"] = domain.User{
		ID: "user-1", Email: "ada@example.com",
		PasswordHash: hash, Status: domain.AccountStatusBanned,
	}

	_, err = s.Login(context.Background(), "ada@example.com", goodPassword)
	if !errors.Is(err, ErrAccountBanned) {
		t.Fatalf("err = %v, want ErrAccountBanned", err)
	}
}

func TestAuthServiceRegisterAdmin(t *testing.T) {
	s := newAuthService(t, "backoffice-key")

	_, err := s.RegisterAdmin(context.Background(), "Root", "root@example.com", goodPassword, "wrong-key")
	if !errors.Is(err, ErrAdminKeyInvalid) {
		t.Fatalf("wrong key err = %v, want ErrAdminKeyInvalid", err)
	}

	admin, err := s.RegisterAdmin(context.Background(), "Root", "root@example.com", goodPassword, "backoffice-key")
	if err != nil {
		t.Fatalf("register admin: %v", err)
	}
	if admin.Email != "root@example.com" {
		t.Errorf("admin email = %q", admin.Email)
	}

	result, err := s.LoginAdmin(context.Background(), "root@example.com", goodPassword)
	if err != nil {
		t.Fatalf("login admin: %v", err)
	}
	if result.Role != security.RoleAdmin {
		t.Errorf("role = %q, want %q", result.Role, security.RoleAdmin)
	}
}

func TestAuthServiceRegisterAdminKeyUnset(t *testing.T) {
	s := newAuthService(t, "")

	// An empty configured key disables admin signup outright.
	_, err := s.RegisterAdmin(context.Background(), "Root", "root@example.com", goodPassword, "")
	if !errors.Is(err, ErrAdminKeyInvalid) {
		t.Fatalf("err = %v, want ErrAdminKeyInvalid", err)
	}
}
