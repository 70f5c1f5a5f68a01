package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"clinic-management/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	// RedisACLKeyPrefix prefixes the per-user hash of role and permission names
	RedisACLKeyPrefix = "acl:user:"

	aclFieldRoles       = "roles"
	aclFieldPermissions = "permissions"

	defaultACLTTL = 10 * time.Minute

	// Keys deleted per pipeline when flushing the whole cache
	invalidateBatchSize = 500
)

// ACLInvalidator drops cached role and permission sets after they change
type ACLInvalidator interface {
	InvalidateUser(ctx context.Context, userIDs ...uuid.UUID) error
	InvalidateAll(ctx context.Context) error
}

// PermissionCache resolves a user's roles and permissions and keeps them in Redis.
// The database stays the source of truth; Redis failures fall back to it.
type PermissionCache struct {
	redisClient *redis.Client
	roleRepo    repository.RoleRepository
	log         *logrus.Logger
	ttl         time.Duration
}

func NewPermissionCache(redisClient *redis.Client, roleRepo repository.RoleRepository, log *logrus.Logger) *PermissionCache {
	return &PermissionCache{
		redisClient: redisClient,
		roleRepo:    roleRepo,
		log:         log,
		ttl:         defaultACLTTL,
	}
}

// Resolve builds the Actor for a user, reading Redis first
func (c *PermissionCache) Resolve(ctx context.Context, userID uuid.UUID, email string) (*Actor, error) {
	key := aclKey(userID)

	cached, err := c.redisClient.HGetAll(ctx, key).Result()
	if err != nil {
		c.log.Warnf("Failed to read ACL cache for user %s, falling back to database: %+v", userID, err)
	} else if len(cached) > 0 {
		return &Actor{
			UserID:      userID,
			Email:       email,
			Roles:       splitNames(cached[aclFieldRoles]),
			Permissions: splitNames(cached[aclFieldPermissions]),
		}, nil
	}

	roles, err := c.roleRepo.FindRoleNamesByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load roles for user %s: %w", userID, err)
	}
	permissions, err := c.roleRepo.FindPermissionNamesByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load permissions for user %s: %w", userID, err)
	}

	pipe := c.redisClient.TxPipeline()
	pipe.HSet(ctx, key, aclFieldRoles, strings.Join(roles, ","), aclFieldPermissions, strings.Join(permissions, ","))
	pipe.Expire(ctx, key, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		c.log.Warnf("Failed to cache ACL for user %s: %+v", userID, err)
	}

	return &Actor{
		UserID:      userID,
		Email:       email,
		Roles:       roles,
		Permissions: permissions,
	}, nil
}

// InvalidateUser drops the cached ACL of the given users
func (c *PermissionCache) InvalidateUser(ctx context.Context, userIDs ...uuid.UUID) error {
	if len(userIDs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, aclKey(id))
	}
	if err := c.redisClient.Del(ctx, keys...).Err(); err != nil {
		c.log.Warnf("Failed to invalidate ACL cache: %+v", err)
		return fmt.Errorf("invalidate acl cache: %w", err)
	}
	return nil
}

// InvalidateAll drops every cached ACL. Called when a role's permissions change.
// Keys are scanned and deleted batch by batch, one pipeline per batch.
func (c *PermissionCache) InvalidateAll(ctx context.Context) error {
	var cursor uint64
	total := 0

	for {
		keys, next, err := c.redisClient.Scan(ctx, cursor, RedisACLKeyPrefix+"*", invalidateBatchSize).Result()
		if err != nil {
			c.log.Warnf("Failed to scan ACL cache at cursor %d: %+v", cursor, err)
			return fmt.Errorf("scan acl cache: %w", err)
		}

		if len(keys) > 0 {
			pipe := c.redisClient.Pipeline()
			for _, key := range keys {
				pipe.Del(ctx, key)
			}
			if _, err := pipe.Exec(ctx); err != nil {
				c.log.Warnf("Failed to delete ACL cache batch: %+v", err)
				return fmt.Errorf("delete acl cache batch: %w", err)
			}
			total += len(keys)
		}

		cursor = next
		if cursor == 0 {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}

	c.log.Debugf("Invalidated %d cached ACL entries", total)
	return nil
}

func aclKey(userID uuid.UUID) string {
	return RedisACLKeyPrefix + userID.String()
}

func splitNames(joined string) []string {
	if joined == "" {
		return []string{}
	}
	return strings.Split(joined, ",")
}
