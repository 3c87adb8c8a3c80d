// Package auth verifies join tokens issued by the identity service.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dkeye/Arena/internal/core"
	"github.com/dkeye/Arena/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
)

var ErrWeakSecret = errors.New("jwt secret too short")

const minSecretLen = 16

// JWTAuthenticator accepts HS256 tokens signed with a shared secret.
// The user id is read from the userId claim, then user_id, then sub.
type JWTAuthenticator struct {
	secret []byte
	parser *jwt.Parser
}

func NewJWTAuthenticator(secret, issuer string) (*JWTAuthenticator, error) {
	if len(secret) < minSecretLen {
		return nil, fmt.Errorf("%w: need at least %d bytes", ErrWeakSecret, minSecretLen)
	}
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	return &JWTAuthenticator{secret: []byte(secret), parser: jwt.NewParser(opts...)}, nil
}

func (a *JWTAuthenticator) Authenticate(_ context.Context, token string) (*domain.User, error) {
	token = strings.TrimSpace(token)
	token = strings.TrimPrefix(token, "Bearer ")
	if token == "" {
		return nil, fmt.Errorf("%w: empty token", core.ErrAuthFailure)
	}

	claims := jwt.MapClaims{}
	parsed, err := a.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	})
	if err != nil || !parsed.Valid {
		log.Debug().Err(err).Str("module", "auth").Msg("token rejected")
		return nil, fmt.Errorf("%w: %v", core.ErrAuthFailure, err)
	}

	uid := firstString(claims, "userId", "user_id")
	if uid == "" {
		uid, _ = claims.GetSubject()
	}
	username := firstString(claims, "username")
	user, err := domain.NewUser(domain.UserID(uid), username)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrAuthFailure, err)
	}
	return user, nil
}

func firstString(claims jwt.MapClaims, keys ...string) string {
	for _, k := range keys {
		if s, ok := claims[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
