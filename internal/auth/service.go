package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/azelenovic/fitcoach/pkg"

	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v4"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultTTL       = 24 * 7 * time.Hour
	sessionKeyPrefix = "fitcoach-session||"
	tokensSetKey     = "fitcoach-sessions"
)

var (
	ErrNotLoggedIn  = errors.New("not logged in")
	ErrInvalidToken = errors.New("invalid token")
)

// tokenClaims carry the principal inside the signed bearer token. The
// session is additionally registered in redis, so that logout can revoke
// a token before its expiry.
type tokenClaims struct {
	UserID int    `json:"uid"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type Service struct {
	signingKey  []byte
	ttl         time.Duration
	redisClient *redis.Client
	// ability to inject random string generator func for token IDs (for unit and dev testing)
	RandStringFunc func(s int) (string, error)
}

func NewService(
	signingKey []byte,
	ttl time.Duration,
	redisClient *redis.Client,
) *Service {
	return &Service{
		signingKey:     signingKey,
		ttl:            ttl,
		redisClient:    redisClient,
		RandStringFunc: pkg.GenerateRandomString,
	}
}

// Login issues a signed bearer token for the principal and registers
// the session in redis.
func (s *Service) Login(ctx context.Context, principal Principal, createdAt time.Time) (string, error) {
	tokenID, err := s.RandStringFunc(35)
	if err != nil {
		return "", err
	}

	claims := tokenClaims{
		UserID: principal.UserID,
		Role:   string(principal.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			IssuedAt:  jwt.NewNumericDate(createdAt),
			ExpiresAt: jwt.NewNumericDate(createdAt.Add(s.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	sessionKey := sessionKeyPrefix + tokenID
	cmdSet := s.redisClient.Set(ctx, sessionKey, createdAt.Unix(), s.ttl)
	if err := cmdSet.Err(); err != nil {
		return "", err
	}

	// add token id to the list of sessions
	cmdSAdd := s.redisClient.SAdd(ctx, tokensSetKey, tokenID)
	if err := cmdSAdd.Err(); err != nil {
		return "", err
	}

	return token, nil
}

// Logout revokes the session behind the given token.
func (s *Service) Logout(ctx context.Context, token string) error {
	claims, err := s.parseClaims(token)
	if err != nil {
		return err
	}

	sessionKey := sessionKeyPrefix + claims.ID
	cmdDel := s.redisClient.Del(ctx, sessionKey)
	if err := cmdDel.Err(); err != nil {
		return err
	}
	if cmdDel.Val() == 0 {
		return ErrNotLoggedIn
	}

	// remove token id from the list of sessions
	cmdSRem := s.redisClient.SRem(ctx, tokensSetKey, claims.ID)
	if err := cmdSRem.Err(); err != nil {
		return err
	}

	return nil
}

func (s *Service) parseClaims(token string) (*tokenClaims, error) {
	var claims tokenClaims
	parsed, err := jwt.ParseWithClaims(
		token,
		&claims,
		func(t *jwt.Token) (interface{}, error) {
			return s.signingKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}

// ScanAndClean will run through all registered sessions and remove the
// set members whose session key already expired.
func (s *Service) ScanAndClean(ctx context.Context) {
	cmd := s.redisClient.SMembers(ctx, tokensSetKey)
	if err := cmd.Err(); err != nil {
		log.Errorf("!!! auth service, scan and clean, get sessions: %s", err)
		return
	}

	tokenIDs := cmd.Val()
	if len(tokenIDs) == 0 {
		return
	}

	log.Debugf("=> auth service, scan and clean [%d sessions] start ...", len(tokenIDs))
	for _, tokenID := range tokenIDs {
		sessionKey := sessionKeyPrefix + tokenID
		cmdExists := s.redisClient.Exists(ctx, sessionKey)
		if err := cmdExists.Err(); err != nil {
			log.Errorf("=> auth service, scan and clean token %s: %s", tokenID, err)
			continue
		}
		if cmdExists.Val() > 0 {
			continue
		}

		if err := s.redisClient.SRem(ctx, tokensSetKey, tokenID).Err(); err != nil {
			log.Errorf("=> auth service, clean token %s: %s", tokenID, err)
		}
	}
}
