package usecase

import "errors"

var (
	// ErrUserNotFound indicates the referenced user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrGameNotFound indicates the referenced game does not exist.
	ErrGameNotFound = errors.New("game not found")
	// ErrGameInvalid indicates the game payload fails validation.
	ErrGameInvalid = errors.New("invalid game")
	// ErrOrderNotFound indicates the referenced order does not exist.
	ErrOrderNotFound = errors.New("order not found")
	// ErrReviewNotFound indicates the referenced review does not exist.
	ErrReviewNotFound = errors.New("review not found")
	// ErrReviewInvalid indicates the review payload fails validation.
	ErrReviewInvalid = errors.New("invalid review")
	// ErrReviewExists indicates the user already reviewed the game.
	ErrReviewExists = errors.New("review already exists")
	// ErrNotificationNotFound indicates the referenced notification does not exist.
	ErrNotificationNotFound = errors.New("notification not found")

	// ErrInvalidCredentials indicates the supplied email/password pair is wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountBanned indicates the account is banned and may not log in or buy.
	ErrAccountBanned = errors.New("account banned")
	// ErrEmailTaken indicates the email is already registered.
	ErrEmailTaken = errors.New("email already registered")
	// ErrUsernameTaken indicates the username is already registered.
	ErrUsernameTaken = errors.New("username already registered")
	// ErrAdminKeyInvalid indicates the admin signup key did not match.
	ErrAdminKeyInvalid = errors.New("admin signup key invalid")

	// ErrNotOwner indicates the caller does not own the targeted resource.
	ErrNotOwner = errors.New("not resource owner")

	// ErrCartEmpty indicates checkout was attempted on an empty cart.
	ErrCartEmpty = errors.New("cart is empty")
	// ErrInsufficientFunds indicates the balance cannot cover the order total.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrOrderClosed indicates the order is terminal and cannot transition.
	ErrOrderClosed = errors.New("order already closed")
	// ErrStatusTransitionInvalid indicates the requested status change is not
	// allowed through this path.
	ErrStatusTransitionInvalid = errors.New("invalid status transition")

	// ErrResetCodeInvalid indicates the reset code does not match an active token.
	ErrResetCodeInvalid = errors.New("reset code invalid")
	// ErrResetCodeExpired indicates the matched reset token is past expiry.
	ErrResetCodeExpired = errors.New("reset code expired")
	// ErrResetNotVerified indicates reset completion was attempted without a verified code.
	ErrResetNotVerified = errors.New("reset code not verified")

	// ErrRateLimited indicates the caller exhausted the attempt budget for the window.
	ErrRateLimited = errors.New("rate limit exceeded")
)
