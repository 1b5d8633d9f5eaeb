// Package token issues and validates the signed access and refresh tokens
// used by the session protocol. Validation is pure: the only ambient input is
// the injected clock, so the package is usable without any HTTP context.
package token

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/motormania/motormania-go/internal/clock"
	"github.com/motormania/motormania-go/internal/model"
)

// Validation failure kinds, in the order they are detected.
var (
	ErrMissingHeader   = errors.New("access token is missing")
	ErrMalformedHeader = errors.New("access token format is invalid")
	ErrInvalidToken    = errors.New("token is invalid")
	ErrExpired         = errors.New("token has expired")
	ErrNotYetValid     = errors.New("token is not yet valid")
	ErrInvalidClaims   = errors.New("token issuer or audience is invalid")
)

// Identity is the user identity embedded in access token claims.
type Identity struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type accessClaims struct {
	Data Identity `json:"data"`
	jwt.RegisteredClaims
}

// Config carries the signing key and claim parameters shared by the issuer
// and validator. It is loaded once at process start.
type Config struct {
	Secret     string
	Issuer     string
	Audience   string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Issuer mints signed access and refresh tokens.
type Issuer struct {
	cfg   Config
	clock clock.Clock
}

func NewIssuer(cfg Config, clk clock.Clock) *Issuer {
	return &Issuer{cfg: cfg, clock: clk}
}

// AccessToken signs a short-lived token embedding the user's identity.
func (i *Issuer) AccessToken(u model.User) (string, error) {
	now := i.clock.Now()
	claims := accessClaims{
		Data: Identity{ID: u.ID, Name: u.Name, Email: u.Email},
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.cfg.Issuer,
			Audience:  jwt.ClaimStrings{i.cfg.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.cfg.AccessTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(i.cfg.Secret))
}

// RefreshToken signs a long-lived token whose subject is the user ID.
// It also returns the expiry so the caller can persist it in the ledger.
func (i *Issuer) RefreshToken(userID int64) (string, time.Time, error) {
	now := i.clock.Now()
	expiresAt := now.Add(i.cfg.RefreshTTL)
	claims := jwt.RegisteredClaims{
		Issuer:    i.cfg.Issuer,
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(i.cfg.Secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Validator verifies token signatures and claims.
type Validator struct {
	cfg   Config
	clock clock.Clock
}

func NewValidator(cfg Config, clk clock.Clock) *Validator {
	return &Validator{cfg: cfg, clock: clk}
}

// ValidateAccess verifies signature, expiry, not-before, issuer and audience,
// and returns the embedded identity.
func (v *Validator) ValidateAccess(tokenString string) (Identity, error) {
	claims := &accessClaims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, v.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(v.clock.Now),
		jwt.WithIssuer(v.cfg.Issuer),
		jwt.WithAudience(v.cfg.Audience),
	)
	if err != nil {
		return Identity{}, classify(err)
	}
	if !parsed.Valid {
		return Identity{}, ErrInvalidToken
	}
	return claims.Data, nil
}

// ValidateRefresh verifies a refresh token's signature, expiry, and issuer,
// and returns the user ID from the subject claim. Ledger matching is the
// session service's responsibility; a structurally valid token alone does not
// grant a refresh.
func (v *Validator) ValidateRefresh(tokenString string) (int64, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, v.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(v.clock.Now),
		jwt.WithIssuer(v.cfg.Issuer),
	)
	if err != nil {
		return 0, classify(err)
	}
	if !parsed.Valid {
		return 0, ErrInvalidToken
	}
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return 0, ErrInvalidClaims
	}
	return userID, nil
}

func (v *Validator) keyFunc(*jwt.Token) (any, error) {
	return []byte(v.cfg.Secret), nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return ErrNotYetValid
	case errors.Is(err, jwt.ErrTokenInvalidIssuer), errors.Is(err, jwt.ErrTokenInvalidAudience):
		return ErrInvalidClaims
	default:
		return ErrInvalidToken
	}
}

// FromBearer extracts the raw token from an Authorization header value.
// The "Bearer" prefix is matched case-insensitively.
func FromBearer(header string) (string, error) {
	if header == "" {
		return "", ErrMissingHeader
	}
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", ErrMalformedHeader
	}
	raw := strings.TrimSpace(header[len(prefix):])
	if raw == "" {
		return "", ErrMalformedHeader
	}
	return raw, nil
}
