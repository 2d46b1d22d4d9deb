package auth

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ppk-his/ppk-portal/internal/app/models"
	"github.com/ppk-his/ppk-portal/internal/pkg/config"
)

var _ AuthService = (*AuthServiceImpl)(nil)

// AuthService verifies credentials and issues session tokens.
type AuthService interface {
	// Login checks the submitted credentials against the stored
	// record and, on success, returns the public user projection and
	// a minted session token.
	Login(ctx context.Context, username, password string) (*models.User, string, error)
	// SessionCookie builds the cookie spec attaching a token to a
	// response; secure reflects the request transport.
	SessionCookie(token string, secure bool) CookieSpec
	// ClearCookie builds the matching clear spec for logout.
	ClearCookie(secure bool) CookieSpec
}

type AuthServiceImpl struct {
	logger *zap.Logger
	repo   UserRepo
	codec  *TokenCodec
	cfg    config.JWTConfig
}

func NewAuthService(repo UserRepo, codec *TokenCodec, cfg config.JWTConfig, logger *zap.Logger) *AuthServiceImpl {
	return &AuthServiceImpl{logger: logger, repo: repo, codec: codec, cfg: cfg}
}

// Login validates credentials and mints a session token. The error
// identifies the failure class (not-found, disabled, bad password) so
// the handler can map it to a status; the hash never leaves here.
func (s *AuthServiceImpl) Login(ctx context.Context, username, password string) (*models.User, string, error) {
	l := s.logger.With(zap.String("method", "Login"), zap.String("username", username))

	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		l.Warn("User lookup failed", zap.Error(err))
		return nil, "", err
	}

	if !user.IsActive {
		l.Warn("Login attempt on disabled account")
		return nil, "", fmt.Errorf("account is disabled: %w", models.ErrForbidden)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		l.Warn("Password comparison failed")
		return nil, "", fmt.Errorf("invalid credentials: %w", models.ErrUnauthenticated)
	}

	public := user.Public()
	token, err := s.codec.Mint(public)
	if err != nil {
		l.Error("Failed to mint session token", zap.Error(err))
		return nil, "", fmt.Errorf("error generating token: %w", err)
	}

	l.Info("Login successful", zap.Int64("user_id", public.ID))
	return public, token, nil
}

func (s *AuthServiceImpl) SessionCookie(token string, secure bool) CookieSpec {
	return NewSessionCookie(s.cfg.CookieName, token, int(s.codec.Lifetime().Seconds()), secure)
}

func (s *AuthServiceImpl) ClearCookie(secure bool) CookieSpec {
	return NewClearCookie(s.cfg.CookieName, secure)
}
