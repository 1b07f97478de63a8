package port

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/aidosk/gameverse/internal/core/domain"
)

// UserFilter narrows user listing queries.
type UserFilter struct {
	Search string
	Status domain.AccountStatus
	Limit  int
	Offset int
}

// UserRepository persists storefront users.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context, filter UserFilter) ([]domain.User, error)
	Count(ctx context.Context) (int, error)
	Update(ctx context.Context, user domain.User) error
	UpdateStatus(ctx context.Context, id string, status domain.AccountStatus) error
	UpdatePassword(ctx context.Context, id string, passwordHash string, changedAt time.Time) error
	AdjustBalance(ctx context.Context, id string, delta decimal.Decimal) error
	Delete(ctx context.Context, id string) error
}

// AdminRepository persists back-office principals.
type AdminRepository interface {
	Create(ctx context.Context, admin domain.Admin) error
	GetByID(ctx context.Context, id string) (*domain.Admin, error)
	GetByEmail(ctx context.Context, email string) (*domain.Admin, error)
}
