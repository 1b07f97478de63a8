package repository

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrInsufficientFunds indicates a balance debit would go negative.
	ErrInsufficientFunds = errors.New("repository: insufficient funds")
	// ErrOrderClosed indicates the order is in a terminal state.
	ErrOrderClosed = errors.New("repository: order closed")
)
