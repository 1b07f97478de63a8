package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	red "github.com/redis/go-redis/v9"

	"github.com/aidosk/gameverse/internal/core/port"
)

const defaultCartPrefix = "store:cart"

// CartRepository persists per-session carts as Redis hashes keyed by
// session, field per game id, value the quantity. Every write refreshes the
// key TTL so abandoned carts eventually evaporate.
type CartRepository struct {
	client *red.Client
	prefix string
	ttl    time.Duration
}

// NewCartRepository constructs a Redis-backed cart store.
func NewCartRepository(client *red.Client, keyPrefix string, ttl time.Duration) *CartRepository {
	prefix := strings.TrimSpace(keyPrefix)
	if prefix == "" {
		prefix = defaultCartPrefix
	}

	return &CartRepository{client: client, prefix: prefix, ttl: ttl}
}

// Add increments the quantity for gameID by one, creating the entry when absent.
func (r *CartRepository) Add(ctx context.Context, sessionID, gameID string) error {
	key, err := r.key(sessionID)
	if err != nil {
		return err
	}
	if strings.TrimSpace(gameID) == "" {
		return errors.New("game id is required")
	}

	pipe := r.client.TxPipeline()
	pipe.HIncrBy(ctx, key, gameID, 1)
	if r.ttl > 0 {
		pipe.Expire(ctx, key, r.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis cart add: %w", err)
	}

	return nil
}

// Set replaces the quantity for gameID. A quantity of zero or less removes
// the entry.
func (r *CartRepository) Set(ctx context.Context, sessionID, gameID string, quantity int) error {
	if quantity <= 0 {
		return r.Remove(ctx, sessionID, gameID)
	}

	key, err := r.key(sessionID)
	if err != nil {
		return err
	}
	if strings.TrimSpace(gameID) == "" {
		return errors.New("game id is required")
	}

	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, key, gameID, strconv.Itoa(quantity))
	if r.ttl > 0 {
		pipe.Expire(ctx, key, r.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis cart set: %w", err)
	}

	return nil
}

// Remove deletes the entry; removing an absent entry is a no-op.
func (r *CartRepository) Remove(ctx context.Context, sessionID, gameID string) error {
	key, err := r.key(sessionID)
	if err != nil {
		return err
	}
	if strings.TrimSpace(gameID) == "" {
		return errors.New("game id is required")
	}

	if err := r.client.HDel(ctx, key, gameID).Err(); err != nil {
		return fmt.Errorf("redis cart remove: %w", err)
	}

	return nil
}

// Get returns the game-id to quantity mapping for the session.
func (r *CartRepository) Get(ctx context.Context, sessionID string) (map[string]int, error) {
	key, err := r.key(sessionID)
	if err != nil {
		return nil, err
	}

	values, err := r.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis cart get: %w", err)
	}

	cart := make(map[string]int, len(values))
	for field, raw := range values {
		qty, convErr := strconv.Atoi(raw)
		if convErr != nil || qty <= 0 {
			continue
		}
		cart[field] = qty
	}

	return cart, nil
}

// Clear drops all entries for the session.
func (r *CartRepository) Clear(ctx context.Context, sessionID string) error {
	key, err := r.key(sessionID)
	if err != nil {
		return err
	}

	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis cart clear: %w", err)
	}

	return nil
}

func (r *CartRepository) key(sessionID string) (string, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return "", errors.New("session id is required")
	}
	return fmt.Sprintf("%s:%s", r.prefix, sessionID), nil
}

var _ port.CartStore = (*CartRepository)(nil)
