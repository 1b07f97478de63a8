package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Game is a purchasable catalog entry.
type Game struct {
	ID        string
	Title     string
	Category  string
	Price     decimal.Decimal
	Rating    *float64
	Downloads int64
	Image     string
	CreatedAt time.Time
}

// Review is a user's opinion on a game. A user holds at most one review per game.
type Review struct {
	ID        string
	UserID    string
	GameID    string
	Comment   string
	Rating    *float64
	CreatedAt time.Time
	UpdatedAt time.Time
}
