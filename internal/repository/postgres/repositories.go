package postgres

import "github.com/jackc/pgx/v5/pgxpool"

// Repositories groups concrete PostgreSQL repository implementations.
type Repositories struct {
	Users         *UserRepository
	Admins        *AdminRepository
	Games         *GameRepository
	Reviews       *ReviewRepository
	Orders        *OrderRepository
	Notifications *NotificationRepository
	ResetTokens   *ResetTokenRepository
	ActivityLogs  *ActivityLogRepository
}

// NewRepositories wires all repositories backed by the provided pool.
func NewRepositories(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		Users:         NewUserRepository(pool),
		Admins:        NewAdminRepository(pool),
		Games:         NewGameRepository(pool),
		Reviews:       NewReviewRepository(pool),
		Orders:        NewOrderRepository(pool),
		Notifications: NewNotificationRepository(pool),
		ResetTokens:   NewResetTokenRepository(pool),
		ActivityLogs:  NewActivityLogRepository(pool),
	}
}
