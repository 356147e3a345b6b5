package controllers

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/adamanr/shift_console/internal/entity"
	"github.com/adamanr/shift_console/internal/session"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
)

const (
	TokenSize     = 16
	sessionPrefix = "session:"
)

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrSessionRevoked = errors.New("session revoked")
)

type SessionController struct {
	deps *Dependens
}

func NewSessionController(deps *Dependens) *SessionController {
	return &SessionController{
		deps: deps,
	}
}

// Issue signs a console token for id and stores the session behind it.
func (c *SessionController) Issue(ctx context.Context, id session.Identity) (string, error) {
	tokenID, err := generateTokenID(c.deps.Logger)
	if err != nil {
		return "", err
	}

	ttl := c.deps.Config.Redis.SessionTTL
	claims := entity.Claims{
		UserID:  id.UserID,
		Role:    id.Role,
		TokenID: tokenID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenStr, err := token.SignedString([]byte(c.deps.Config.Server.JWTSecret))
	if err != nil {
		c.deps.Logger.Error("Error signing token", slog.String("error", err.Error()))
		return "", err
	}

	payload, err := json.Marshal(id)
	if err != nil {
		c.deps.Logger.Error("Error encoding session", slog.String("error", err.Error()))
		return "", err
	}

	if err = c.deps.Redis.Set(ctx, sessionPrefix+tokenID, payload, ttl).Err(); err != nil {
		c.deps.Logger.Error("Error storing session", slog.String("error", err.Error()))
		return "", err
	}

	return tokenStr, nil
}

func generateTokenID(logger *slog.Logger) (string, error) {
	b := make([]byte, TokenSize)
	if _, err := rand.Read(b); err != nil {
		logger.Error("Error generating token ID", slog.String("error", err.Error()))
		return "", err
	}

	return hex.EncodeToString(b), nil
}

// Check validates a token (bare or "Bearer ...") and loads its session.
func (c *SessionController) Check(ctx context.Context, raw string) (*session.Identity, *entity.Claims, error) {
	tokenStr := strings.TrimSpace(strings.TrimPrefix(raw, "Bearer "))
	if tokenStr == "" {
		return nil, nil, ErrInvalidToken
	}

	token, err := jwt.ParseWithClaims(tokenStr, &entity.Claims{}, func(_ *jwt.Token) (any, error) {
		return []byte(c.deps.Config.Server.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		c.deps.Logger.Warn("Error parsing token", slog.String("error", err.Error()))
		return nil, nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*entity.Claims)
	if !ok || !token.Valid || claims.TokenID == "" {
		return nil, nil, ErrInvalidToken
	}

	payload, err := c.deps.Redis.Get(ctx, sessionPrefix+claims.TokenID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			c.deps.Logger.Warn("Session revoked", slog.String("user_id", claims.UserID))
			return nil, nil, ErrSessionRevoked
		}
		c.deps.Logger.Error("Error loading session", slog.String("error", err.Error()))
		return nil, nil, err
	}

	var id session.Identity
	if err := json.Unmarshal([]byte(payload), &id); err != nil {
		c.deps.Logger.Error("Error decoding session", slog.String("error", err.Error()))
		return nil, nil, err
	}
	if id.UserID != claims.UserID {
		c.deps.Logger.Warn("Session does not match token", slog.String("user_id", claims.UserID))
		return nil, nil, ErrInvalidToken
	}

	return &id, claims, nil
}

// Revoke deletes the session so the token stops working before it expires.
func (c *SessionController) Revoke(ctx context.Context, tokenID string) error {
	if err := c.deps.Redis.Del(ctx, sessionPrefix+tokenID).Err(); err != nil {
		c.deps.Logger.Error("Error revoking session", slog.String("error", err.Error()))
		return err
	}
	return nil
}
