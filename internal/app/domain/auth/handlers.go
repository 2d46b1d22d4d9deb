package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ppk-his/ppk-portal/internal/app/models"
)

// LoginRequest is the JSON body shape; form-encoded bodies use the
// same field names. The email alias matches what the login form may
// submit.
type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthHandlers struct {
	authService AuthService
	logger      *zap.Logger
}

func NewAuthHandlers(authService AuthService, logger *zap.Logger) *AuthHandlers {
	return &AuthHandlers{authService: authService, logger: logger}
}

// LoginHandler handles POST /api/auth/login. Credentials arrive as
// JSON or a form body; ?redirect= names the post-login destination.
func (h *AuthHandlers) LoginHandler(c *gin.Context) {
	username, password := h.readCredentials(c)
	redirect := c.DefaultQuery("redirect", "/dashboard")

	if username == "" || password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "username and password are required"})
		return
	}

	user, token, err := h.authService.Login(c.Request.Context(), username, password)
	if err != nil {
		status, message := loginErrorResponse(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("Login failed", zap.Error(err), zap.String("username", username))
		}
		loginAttempts.WithLabelValues(http.StatusText(status)).Inc()
		c.JSON(status, gin.H{"ok": false, "message": message})
		return
	}
	loginAttempts.WithLabelValues("success").Inc()

	spec := h.authService.SessionCookie(token, IsSecureRequest(c.Request))
	spec.Apply(c.Writer)

	c.JSON(http.StatusOK, gin.H{
		"ok":       true,
		"redirect": redirect,
		"user":     user,
	})
}

// LogoutHandler handles POST /api/auth/logout: clears the session
// cookie with the exact attribute set issuance used. Idempotent.
func (h *AuthHandlers) LogoutHandler(c *gin.Context) {
	spec := h.authService.ClearCookie(IsSecureRequest(c.Request))
	spec.Apply(c.Writer)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// MeHandler handles GET /api/me. The route sits outside the auth
// allowlist, so the gate has already verified the session and stashed
// the claims in the request context.
func (h *AuthHandlers) MeHandler(c *gin.Context) {
	claims, ok := c.Value(models.ClaimsContextKey).(*models.Claims)
	if !ok || claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "message": "not signed in"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ok": true,
		"user": gin.H{
			"id":       claims.Subject,
			"username": claims.Username,
			"role":     claims.Role,
		},
	})
}

func (h *AuthHandlers) readCredentials(c *gin.Context) (username, password string) {
	ct := strings.ToLower(c.ContentType())
	if strings.Contains(ct, "application/json") {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			h.logger.Warn("Failed to parse login body", zap.Error(err))
			return "", ""
		}
		username = req.Username
		if username == "" {
			username = req.Email
		}
		return strings.TrimSpace(username), req.Password
	}

	username = c.PostForm("username")
	if username == "" {
		username = c.PostForm("email")
	}
	return strings.TrimSpace(username), c.PostForm("password")
}

func loginErrorResponse(err error) (int, string) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound, "account not found"
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden, "account is disabled"
	case errors.Is(err, models.ErrUnauthenticated):
		return http.StatusUnauthorized, "invalid username or password"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}
