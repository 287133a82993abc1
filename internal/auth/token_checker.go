package auth

import (
	"context"

	"github.com/go-redis/redis/v8"
)

// TokenChecker resolves a bearer token to the principal behind it.
// The token signature and expiry are verified first, then the session
// registry is consulted so that revoked tokens stop working immediately.
type TokenChecker struct {
	service     *Service
	redisClient *redis.Client
}

func NewTokenChecker(service *Service, redisClient *redis.Client) *TokenChecker {
	return &TokenChecker{
		service:     service,
		redisClient: redisClient,
	}
}

func (c *TokenChecker) Check(ctx context.Context, token string) (Principal, error) {
	claims, err := c.service.parseClaims(token)
	if err != nil {
		return Principal{}, err
	}

	sessionKey := sessionKeyPrefix + claims.ID
	cmdExists := c.redisClient.Exists(ctx, sessionKey)
	if err := cmdExists.Err(); err != nil {
		return Principal{}, err
	}
	if cmdExists.Val() == 0 {
		return Principal{}, ErrNotLoggedIn
	}

	role, err := ParseRole(claims.Role)
	if err != nil {
		return Principal{}, ErrInvalidToken
	}

	return Principal{
		UserID: claims.UserID,
		Role:   role,
	}, nil
}
