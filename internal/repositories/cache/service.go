package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"habitstake/internal/models"

	"github.com/redis/go-redis/v9"
)

// Cache key prefixes
const (
	accountKeyPrefix = "account:"
	betKeyPrefix     = "bet:"
)

// CacheService is a read cache in front of the ledger store. It is never
// consulted inside a transaction scope; mutations invalidate after commit.
type CacheService struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCacheService(client *redis.Client, defaultTTL time.Duration) *CacheService {
	return &CacheService{
		client: client,
		ttl:    defaultTTL,
	}
}

// Base operations

func (s *CacheService) Set(ctx context.Context, key string, value interface{}) error {
	return s.SetWithTTL(ctx, key, value, s.ttl)
}

func (s *CacheService) SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	return s.client.Set(ctx, key, data, ttl).Err()
}

// Get unmarshals the cached value into dest. The bool reports a hit.
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, fmt.Errorf("failed to get cache value: %w", err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}
	return true, nil
}

func (s *CacheService) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}

// Domain helpers

func (s *CacheService) GetAccount(ctx context.Context, address string) (*models.Account, error) {
	var account models.Account
	hit, err := s.Get(ctx, accountKeyPrefix+address, &account)
	if err != nil || !hit {
		return nil, redis.Nil
	}
	return &account, nil
}

func (s *CacheService) SetAccount(ctx context.Context, account *models.Account) error {
	return s.Set(ctx, accountKeyPrefix+account.Address, account)
}

func (s *CacheService) InvalidateAccount(ctx context.Context, address string) error {
	return s.Delete(ctx, accountKeyPrefix+address)
}

func (s *CacheService) GetBet(ctx context.Context, address string) (*models.Bet, error) {
	var bet models.Bet
	hit, err := s.Get(ctx, betKeyPrefix+address, &bet)
	if err != nil || !hit {
		return nil, redis.Nil
	}
	return &bet, nil
}

func (s *CacheService) SetBet(ctx context.Context, bet *models.Bet) error {
	return s.Set(ctx, betKeyPrefix+bet.Address, bet)
}

func (s *CacheService) InvalidateBet(ctx context.Context, address string) error {
	return s.Delete(ctx, betKeyPrefix+address)
}

// Operational helpers

func (s *CacheService) HealthCheck(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis connection failed: %w", err)
	}
	return nil
}

func (s *CacheService) FlushAll(ctx context.Context) error {
	return s.client.FlushAll(ctx).Err()
}

func (s *CacheService) Close() error {
	return s.client.Close()
}
