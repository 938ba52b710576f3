package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/ponder/internal/common"
	"github.com/Veraticus/ponder/internal/service"
	jwt "github.com/golang-jwt/jwt/v5"
)

// Claims are the token claims ponder reads. Subject carries the user id.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Issue signs a token for userID valid for ttl.
func Issue(secret []byte, userID, email string, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", fmt.Errorf("%w: jwt secret is empty", common.ErrMissingConfig)
	}
	if strings.TrimSpace(userID) == "" {
		return "", fmt.Errorf("%w: user id is required", common.ErrValidation)
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	now := time.Now()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// Parse verifies token against secret and returns the session it describes.
func Parse(secret []byte, token string) (service.Session, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(*jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return service.Session{}, fmt.Errorf("%w: session expired, run 'ponder auth login' again", common.ErrAuth)
		}
		return service.Session{}, fmt.Errorf("%w: invalid session token: %w", common.ErrAuth, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return service.Session{}, fmt.Errorf("%w: invalid session token", common.ErrAuth)
	}

	s := service.Session{
		UserID:      claims.Subject,
		Email:       claims.Email,
		AccessToken: token,
	}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
	}
	return s, nil
}

// TokenStore persists the raw session token between runs.
type TokenStore interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// JWTProvider reads the stored token and verifies it on every call, so an
// expired token is noticed before a record is written.
type JWTProvider struct {
	store  TokenStore
	secret []byte
}

// NewJWTProvider creates a provider for tokens signed with secret.
func NewJWTProvider(store TokenStore, secret []byte) (*JWTProvider, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: token store is required", common.ErrMissingConfig)
	}
	if len(secret) == 0 {
		return nil, fmt.Errorf("%w: auth.jwt_secret or PONDER_AUTH_JWT_SECRET must be set", common.ErrMissingConfig)
	}
	return &JWTProvider{store: store, secret: secret}, nil
}

// Current implements service.SessionProvider.
func (p *JWTProvider) Current(ctx context.Context) (service.Session, error) {
	if err := ctx.Err(); err != nil {
		return service.Session{}, err
	}
	token, err := p.store.Load()
	if err != nil {
		return service.Session{}, err
	}
	return Parse(p.secret, token)
}

// Login verifies token and stores it.
func (p *JWTProvider) Login(token string) (service.Session, error) {
	token = strings.TrimSpace(token)
	s, err := Parse(p.secret, token)
	if err != nil {
		return service.Session{}, err
	}
	if err := p.store.Save(token); err != nil {
		return service.Session{}, err
	}
	return s, nil
}

// Logout removes the stored token.
func (p *JWTProvider) Logout() error {
	return p.store.Clear()
}
