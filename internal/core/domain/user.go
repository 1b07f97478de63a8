package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountStatus enumerates possible user account states.
type AccountStatus string

const (
	AccountStatusActive AccountStatus = "active"
	AccountStatusBanned AccountStatus = "banned"
)

// User mirrors the persisted representation in the users table.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Status       AccountStatus
	Balance      decimal.Decimal
	ProfilePhoto *string
	CreatedAt    time.Time
}

// Admin is a back-office principal, stored separately from storefront users.
type Admin struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
