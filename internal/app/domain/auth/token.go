package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/ppk-his/ppk-portal/internal/app/models"
	"github.com/ppk-his/ppk-portal/internal/pkg/config"
)

// TokenCodec mints and verifies the signed session tokens carried in
// the access cookie. Tokens are stateless and self-verifying so the
// request gate never touches the database; revocation is by expiry or
// cookie-clear only.
type TokenCodec struct {
	cfg    config.JWTConfig
	logger *zap.Logger
}

// NewTokenCodec fails when no signing secret is configured; the
// process must not serve requests in that state.
func NewTokenCodec(cfg config.JWTConfig, logger *zap.Logger) (*TokenCodec, error) {
	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("jwt signing secret is not configured")
	}
	if cfg.TokenLifetime <= 0 {
		cfg.TokenLifetime = 24 * time.Hour
	}
	return &TokenCodec{cfg: cfg, logger: logger}, nil
}

// Lifetime is the configured token lifetime, also used as the cookie
// Max-Age so both expire together.
func (c *TokenCodec) Lifetime() time.Duration {
	return c.cfg.TokenLifetime
}

// Mint produces a signed token for the given user. Expiry is always
// issued-at plus the configured lifetime.
func (c *TokenCodec) Mint(user *models.User) (string, error) {
	now := time.Now()
	claims := &models.Claims{
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			Issuer:    c.cfg.Issuer,
			Audience:  jwt.ClaimStrings{c.cfg.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.cfg.TokenLifetime)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(c.cfg.SecretKey))
	if err != nil {
		c.logger.Error("Failed to sign session token", zap.Error(err))
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify validates signature, algorithm, issuer, audience and expiry.
// Every failure collapses into the same ErrUnauthenticated so callers
// cannot tell an expired token from a tampered one.
func (c *TokenCodec) Verify(tokenString string) (*models.Claims, error) {
	claims := &models.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(c.cfg.SecretKey), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(c.cfg.Issuer),
		jwt.WithAudience(c.cfg.Audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid session token: %w", models.ErrUnauthenticated)
	}
	return claims, nil
}
