package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ppk-his/ppk-portal/internal/app/models"
	"github.com/ppk-his/ppk-portal/internal/pkg/config"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		SecretKey:     "test-secret",
		TokenLifetime: time.Hour,
		Issuer:        "ppk-app",
		Audience:      "ppk-users",
		CookieName:    "access_token",
	}
}

func newTestCodec(t *testing.T) *TokenCodec {
	t.Helper()
	codec, err := NewTokenCodec(testJWTConfig(), zap.NewNop())
	require.NoError(t, err)
	return codec
}

func TestNewTokenCodecRequiresSecret(t *testing.T) {
	cfg := testJWTConfig()
	cfg.SecretKey = ""
	_, err := NewTokenCodec(cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestMintVerifyRoundTrip(t *testing.T) {
	codec := newTestCodec(t)

	user := &models.User{ID: 42, Username: "alice", Role: models.RoleAdmin}
	token, err := codec.Mint(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := codec.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.Equal(t, "ppk-app", claims.Issuer)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}

// signToken builds arbitrary tokens for the failure cases.
func signToken(t *testing.T, secret string, claims *models.Claims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestVerifyRejections(t *testing.T) {
	codec := newTestCodec(t)
	now := time.Now()

	base := func() *models.Claims {
		return &models.Claims{
			Username: "alice",
			Role:     models.RoleUser,
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "1",
				Issuer:    "ppk-app",
				Audience:  jwt.ClaimStrings{"ppk-users"},
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			},
		}
	}

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"empty", ""},
		{"wrong secret", signToken(t, "other-secret", base())},
		{"expired", signToken(t, "test-secret", func() *models.Claims {
			c := base()
			c.ExpiresAt = jwt.NewNumericDate(now.Add(-time.Minute))
			return c
		}())},
		{"missing expiry", signToken(t, "test-secret", func() *models.Claims {
			c := base()
			c.ExpiresAt = nil
			return c
		}())},
		{"wrong issuer", signToken(t, "test-secret", func() *models.Claims {
			c := base()
			c.Issuer = "someone-else"
			return c
		}())},
		{"wrong audience", signToken(t, "test-secret", func() *models.Claims {
			c := base()
			c.Audience = jwt.ClaimStrings{"other-users"}
			return c
		}())},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := codec.Verify(tt.token)
			assert.Nil(t, claims)
			// All rejection reasons collapse to the same sentinel.
			assert.ErrorIs(t, err, models.ErrUnauthenticated)
		})
	}
}

func TestVerifyRejectsUnsignedToken(t *testing.T) {
	codec := newTestCodec(t)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &models.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			Issuer:    "ppk-app",
			Audience:  jwt.ClaimStrings{"ppk-users"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = codec.Verify(token)
	assert.ErrorIs(t, err, models.ErrUnauthenticated)
}

func TestLifetimeDefaultsWhenUnset(t *testing.T) {
	cfg := testJWTConfig()
	cfg.TokenLifetime = 0
	codec, err := NewTokenCodec(cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, codec.Lifetime())
}
