package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rhinoeg/rhino-backend/config"
	"github.com/rhinoeg/rhino-backend/pkg/logger"
)

const revokedTokenPrefix = "revoked_token:"

var client *redis.Client

// Init connects the shared Redis client
func Init(cfg *config.RedisConfig) error {
	logger.Info("Initializing Redis connection", map[string]interface{}{
		"addr": cfg.Addr(),
		"db":   cfg.DB,
	})

	client = redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("Failed to connect to Redis", err, map[string]interface{}{
			"addr": cfg.Addr(),
		})
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis connection established successfully")
	return nil
}

// GetClient returns the shared client, nil before Init
func GetClient() *redis.Client {
	return client
}

func Close() error {
	if client != nil {
		logger.Info("Closing Redis connection")
		return client.Close()
	}
	return nil
}

// TokenStore records revoked access token ids until they would have expired
type TokenStore struct {
	client *redis.Client
}

func NewTokenStore(client *redis.Client) *TokenStore {
	return &TokenStore{client: client}
}

// Revoke marks a token id as revoked for ttl. A non-positive ttl is a no-op
// since the token is already unusable.
func (s *TokenStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	logger.Debug("Revoking access token", map[string]interface{}{
		"token_id": tokenID,
		"ttl":      ttl.String(),
	})

	if err := s.client.Set(ctx, revokedTokenPrefix+tokenID, "1", ttl).Err(); err != nil {
		logger.Error("Failed to revoke access token", err, map[string]interface{}{
			"token_id": tokenID,
		})
		return err
	}
	return nil
}

// IsRevoked reports whether a token id has been revoked
func (s *TokenStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	err := s.client.Get(ctx, revokedTokenPrefix+tokenID).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		logger.Error("Failed to check token revocation", err, map[string]interface{}{
			"token_id": tokenID,
		})
		return false, err
	}
	return true, nil
}
