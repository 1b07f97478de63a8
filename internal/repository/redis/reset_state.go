package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	red "github.com/redis/go-redis/v9"

	"github.com/aidosk/gameverse/internal/core/port"
)

const defaultResetPrefix = "store:reset"

// ResetStateRepository tracks the transient "code verified" flag of the
// password reset flow. The flag expires on its own so an abandoned reset
// never stays completable.
type ResetStateRepository struct {
	client *red.Client
	prefix string
	ttl    time.Duration
}

// NewResetStateRepository constructs a Redis-backed reset state store.
func NewResetStateRepository(client *red.Client, keyPrefix string, ttl time.Duration) *ResetStateRepository {
	prefix := strings.TrimSpace(keyPrefix)
	if prefix == "" {
		prefix = defaultResetPrefix
	}

	return &ResetStateRepository{client: client, prefix: prefix, ttl: ttl}
}

// MarkVerified records that the email's reset code was verified.
func (r *ResetStateRepository) MarkVerified(ctx context.Context, email string) error {
	key, err := r.key(email)
	if err != nil {
		return err
	}

	if err := r.client.Set(ctx, key, "1", r.ttl).Err(); err != nil {
		return fmt.Errorf("redis reset mark verified: %w", err)
	}

	return nil
}

// IsVerified reports whether the email holds an unexpired verified flag.
func (r *ResetStateRepository) IsVerified(ctx context.Context, email string) (bool, error) {
	key, err := r.key(email)
	if err != nil {
		return false, err
	}

	_, err = r.client.Get(ctx, key).Result()
	if err == red.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis reset is verified: %w", err)
	}

	return true, nil
}

// ClearVerified drops the verified flag, ending the reset window.
func (r *ResetStateRepository) ClearVerified(ctx context.Context, email string) error {
	key, err := r.key(email)
	if err != nil {
		return err
	}

	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis reset clear verified: %w", err)
	}

	return nil
}

func (r *ResetStateRepository) key(email string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return "", errors.New("email is required")
	}
	return fmt.Sprintf("%s:verified:%s", r.prefix, email), nil
}

var _ port.ResetStateStore = (*ResetStateRepository)(nil)
