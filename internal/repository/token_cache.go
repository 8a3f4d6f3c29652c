package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/djenkins26/products-app/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	tokenKeyPrefix = "auth:token:"
	userKeyPrefix  = "auth:user:"
)

// TokenCache decorates a UserRepository with a Redis lookaside cache for
// FindByToken. Users served from the cache carry only ID, Email and Token.
// A miss costs two store lookups: the read and a check after the cache write.
// Redis failures are logged and fall through to the wrapped repository.
type TokenCache struct {
	UserRepository
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

type cachedUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// NewTokenCache wraps next with a Redis cache whose entries expire after ttl.
func NewTokenCache(next UserRepository, client *redis.Client, ttl time.Duration, log zerolog.Logger) *TokenCache {
	return &TokenCache{
		UserRepository: next,
		client:         client,
		ttl:            ttl,
		log:            log.With().Str("component", "token_cache").Logger(),
	}
}

func (c *TokenCache) FindByToken(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrNotFound
	}

	raw, err := c.client.Get(ctx, tokenKeyPrefix+token).Bytes()
	switch {
	case err == nil:
		var cached cachedUser
		if jsonErr := json.Unmarshal(raw, &cached); jsonErr == nil && cached.ID != "" {
			return &models.User{ID: cached.ID, Email: cached.Email, Token: token}, nil
		}
		c.log.Warn().Msg("discarding malformed cache entry")
	case errors.Is(err, redis.Nil):
	default:
		c.log.Warn().Err(err).Msg("token cache read failed")
	}

	user, err := c.UserRepository.FindByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(cachedUser{ID: user.ID, Email: user.Email})
	if err == nil {
		_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, tokenKeyPrefix+token, payload, c.ttl)
			pipe.Set(ctx, userKeyPrefix+models.NormalizeID(user.ID), token, c.ttl)
			return nil
		})
	}
	if err != nil {
		c.log.Warn().Err(err).Msg("token cache write failed")
		return user, nil
	}

	// A rotation that landed between the store read and the cache write has
	// already run its eviction, so the entry just written would outlive it.
	// Any rotation after this check evicts the entry itself.
	if _, err := c.UserRepository.FindByToken(ctx, token); err != nil {
		c.drop(ctx, token, user.ID)
		return nil, err
	}
	return user, nil
}

func (c *TokenCache) drop(ctx context.Context, token, id string) {
	if err := c.client.Del(ctx, tokenKeyPrefix+token, userKeyPrefix+models.NormalizeID(id)).Err(); err != nil {
		c.log.Warn().Err(err).Str("user_id", id).Msg("token cache drop failed")
	}
}

// UpdateToken rotates the token in the wrapped repository and evicts the
// previous token so it stops resolving immediately.
func (c *TokenCache) UpdateToken(ctx context.Context, id, token string) error {
	if err := c.UserRepository.UpdateToken(ctx, id, token); err != nil {
		return err
	}
	c.evict(ctx, id)
	return nil
}

func (c *TokenCache) evict(ctx context.Context, id string) {
	userKey := userKeyPrefix + models.NormalizeID(id)
	previous, err := c.client.Get(ctx, userKey).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn().Err(err).Str("user_id", id).Msg("token cache eviction lookup failed")
		}
		return
	}
	if err := c.client.Del(ctx, tokenKeyPrefix+previous, userKey).Err(); err != nil {
		c.log.Warn().Err(err).Str("user_id", id).Msg("token cache eviction failed")
	}
}
