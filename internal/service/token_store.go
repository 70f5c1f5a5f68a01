package service

import (
	"context"
	"fmt"
	"time"

	"clinic-management/pkg/jwt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// TokenStore tracks issued tokens in Redis so they can be revoked before expiry.
// Keys look like access_token:<user id>:<token id>.
type TokenStore struct {
	redisClient *redis.Client
}

func NewTokenStore(redisClient *redis.Client) *TokenStore {
	return &TokenStore{redisClient: redisClient}
}

func tokenKey(tokenType jwt.TokenType, userID uuid.UUID, tokenID string) string {
	return fmt.Sprintf("%s_token:%s:%s", tokenType, userID, tokenID)
}

// SavePair stores an access and a refresh token in one round trip
func (s *TokenStore) SavePair(ctx context.Context, userID uuid.UUID, accessID string, accessTTL time.Duration, refreshID string, refreshTTL time.Duration) error {
	pipe := s.redisClient.TxPipeline()
	pipe.Set(ctx, tokenKey(jwt.AccessToken, userID, accessID), "valid", accessTTL)
	pipe.Set(ctx, tokenKey(jwt.RefreshToken, userID, refreshID), "valid", refreshTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store tokens: %w", err)
	}
	return nil
}

func (s *TokenStore) Exists(ctx context.Context, tokenType jwt.TokenType, userID uuid.UUID, tokenID string) (bool, error) {
	n, err := s.redisClient.Exists(ctx, tokenKey(tokenType, userID, tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("check token: %w", err)
	}
	return n > 0, nil
}

// Revoke deletes a single token. Missing tokens are ignored.
func (s *TokenStore) Revoke(ctx context.Context, tokenType jwt.TokenType, userID uuid.UUID, tokenID string) error {
	if tokenID == "" {
		return nil
	}
	if err := s.redisClient.Del(ctx, tokenKey(tokenType, userID, tokenID)).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// RevokeAll deletes every token issued to the user
func (s *TokenStore) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	for _, tokenType := range []jwt.TokenType{jwt.AccessToken, jwt.RefreshToken} {
		pattern := tokenKey(tokenType, userID, "*")
		iter := s.redisClient.Scan(ctx, 0, pattern, 100).Iterator()
		var keys []string
		for iter.Next(ctx) {
			keys = append(keys, iter.Val())
		}
		if err := iter.Err(); err != nil {
			return fmt.Errorf("scan %s tokens: %w", tokenType, err)
		}
		if len(keys) > 0 {
			if err := s.redisClient.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("revoke %s tokens: %w", tokenType, err)
			}
		}
	}
	return nil
}
