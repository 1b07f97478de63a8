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
	"github.com/aidosk/gameverse/internal/repository"
)

// ReviewService manages game reviews. A user holds at most one review per
// game; a second submission is rejected and edits go through Update.
type ReviewService struct {
	reviews       port.ReviewRepository
	games         port.GameRepository
	notifications port.NotificationRepository
	logger        *zap.Logger
	now           func() time.Time
}

// ReviewInput carries a review submission.
type ReviewInput struct {
	UserID  string
	GameID  string
	Comment string
	Rating  *float64
}

// NewReviewService constructs a ReviewService.
func NewReviewService(
	reviews port.ReviewRepository,
	games port.GameRepository,
	notifications port.NotificationRepository,
	log *zap.Logger,
) *ReviewService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ReviewService{
		reviews:       reviews,
		games:         games,
		notifications: notifications,
		logger:        log,
		now:           time.Now,
	}
}

// WithClock allows tests to override the clock used by the service.
func (s *ReviewService) WithClock(clock func() time.Time) {
	if clock != nil {
		s.now = clock
	}
}

func validateReviewInput(comment string, rating *float64) error {
	if comment == "" && rating == nil {
		return fmt.Errorf("%w: requires a comment or a rating", ErrReviewInvalid)
	}
	if rating != nil && (*rating < 0 || *rating > 5) {
		return fmt.Errorf("%w: rating must be between 0 and 5", ErrReviewInvalid)
	}
	return nil
}

// Submit creates the user's review of the game. A user who already reviewed
// the game gets ErrReviewExists and must edit the existing review instead.
func (s *ReviewService) Submit(ctx context.Context, input ReviewInput) (*domain.Review, error) {
	comment := strings.TrimSpace(input.Comment)
	if err := validateReviewInput(comment, input.Rating); err != nil {
		return nil, err
	}

	game, err := s.games.GetByID(ctx, input.GameID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("lookup game: %w", err)
	}

	_, err = s.reviews.GetByUserAndGame(ctx, input.UserID, input.GameID)
	switch {
	case err == nil:
		return nil, ErrReviewExists
	case errors.Is(err, repository.ErrNotFound):
	default:
		return nil, fmt.Errorf("lookup review: %w", err)
	}

	now := s.now().UTC()
	review := domain.Review{
		ID:        uuid.NewString(),
		UserID:    input.UserID,
		GameID:    input.GameID,
		Comment:   comment,
		Rating:    input.Rating,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}

	s.notify(ctx, input.UserID, fmt.Sprintf("Your review of %s was published.", game.Title))

	return &review, nil
}

// Update edits an existing review. Only the author may edit through this path.
func (s *ReviewService) Update(ctx context.Context, userID, reviewID string, input ReviewInput) (*domain.Review, error) {
	comment := strings.TrimSpace(input.Comment)
	if err := validateReviewInput(comment, input.Rating); err != nil {
		return nil, err
	}

	review, err := s.reviews.GetByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("lookup review: %w", err)
	}

	if review.UserID != userID {
		return nil, ErrNotOwner
	}

	review.Comment = comment
	review.Rating = input.Rating
	review.UpdatedAt = s.now().UTC()

	if err := s.reviews.Update(ctx, *review); err != nil {
		return nil, fmt.Errorf("update review: %w", err)
	}

	return review, nil
}

// Delete removes a review. Only the author may delete through this path.
func (s *ReviewService) Delete(ctx context.Context, userID, reviewID string) error {
	review, err := s.reviews.GetByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrReviewNotFound
		}
		return fmt.Errorf("lookup review: %w", err)
	}

	if review.UserID != userID {
		return ErrNotOwner
	}

	if err := s.reviews.Delete(ctx, reviewID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrReviewNotFound
		}
		return fmt.Errorf("delete review: %w", err)
	}

	return nil
}

// ListByGame returns a game's reviews, newest first.
func (s *ReviewService) ListByGame(ctx context.Context, gameID string) ([]domain.Review, error) {
	reviews, err := s.reviews.ListByGame(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}

func (s *ReviewService) notify(ctx context.Context, userID, message string) {
	if s.notifications == nil {
		return
	}
	notification := domain.Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Message:   message,
		CreatedAt: s.now().UTC(),
	}
	if err := s.notifications.Create(ctx, notification); err != nil {
		s.logger.Warn("create notification failed",
			zap.String("user_id", userID),
			zap.Error(err),
		)
	}
}
