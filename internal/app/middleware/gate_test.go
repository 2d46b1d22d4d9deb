package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ppk-his/ppk-portal/internal/app/domain/auth"
	"github.com/ppk-his/ppk-portal/internal/app/models"
	"github.com/ppk-his/ppk-portal/internal/pkg/config"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		path string
		want RouteClass
	}{
		{"/favicon.ico", ClassBypass},
		{"/favicon", ClassBypass},
		{"/static/app.css", ClassBypass},
		{"/metrics", ClassBypass},
		{"/logo.png", ClassBypass},
		{"/dashboard/report.json", ClassBypass},

		{"/login", ClassAuthRoute},
		{"/api/auth", ClassAuthRoute},
		{"/api/auth/login", ClassAuthRoute},
		{"/api/auth/logout", ClassAuthRoute},

		{"/", ClassPublic},
		{"/about", ClassPublic},
		{"/dashboardx", ClassPublic},
		{"/formulas", ClassPublic},
		{"/loginx", ClassPublic},

		{"/dashboard", ClassProtectedPage},
		{"/dashboard/", ClassProtectedPage},
		{"/dashboard/reports", ClassProtectedPage},
		{"/form", ClassProtectedPage},

		{"/api", ClassProtectedAPI},
		{"/api/me", ClassProtectedAPI},
		{"/api/records/search", ClassProtectedAPI},
		{"/api/authx", ClassProtectedAPI},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.path), "path %s", tt.path)
		})
	}
}

type stubVerifier struct {
	claims *models.Claims
	err    error
}

func (s stubVerifier) Verify(string) (*models.Claims, error) {
	return s.claims, s.err
}

func newStubGate(claims *models.Claims, err error) *Gate {
	return NewGate(stubVerifier{claims: claims, err: err}, "access_token", zap.NewNop())
}

func TestEvaluatePrefetchWinsOverEverything(t *testing.T) {
	gate := newStubGate(nil, models.ErrUnauthenticated)

	d := gate.Evaluate(GateRequest{Path: "/dashboard", Prefetch: true})
	assert.Equal(t, ActionContinue, d.Action)
	assert.Equal(t, "prefetch", d.Tag)
	assert.Empty(t, d.CookieOps)
}

func TestEvaluateOpenClasses(t *testing.T) {
	// A verifier that always fails proves these classes never consult
	// the token.
	gate := newStubGate(nil, models.ErrUnauthenticated)

	tests := []struct {
		path string
		tag  string
	}{
		{"/favicon.ico", "bypass"},
		{"/metrics", "bypass"},
		{"/login", "auth-route"},
		{"/api/auth/login", "auth-route"},
		{"/", "public"},
		{"/dashboardx", "public"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			d := gate.Evaluate(GateRequest{Path: tt.path, Token: "junk", HasToken: true})
			assert.Equal(t, ActionContinue, d.Action)
			assert.Equal(t, tt.tag, d.Tag)
		})
	}
}

func TestEvaluateProtectedPageWithoutToken(t *testing.T) {
	gate := newStubGate(nil, nil)

	d := gate.Evaluate(GateRequest{Path: "/dashboard"})
	assert.Equal(t, ActionRedirect, d.Action)
	assert.Equal(t, "/login?redirect=%2Fdashboard&reason=unauthorized", d.RedirectURL)
	assert.Equal(t, "no-token-page", d.Tag)
	assert.Empty(t, d.CookieOps, "no cookie to clear when none was sent")
}

func TestEvaluateRedirectPreservesQuery(t *testing.T) {
	gate := newStubGate(nil, nil)

	d := gate.Evaluate(GateRequest{Path: "/form", RawQuery: "tab=export"})
	assert.Equal(t, "/login?redirect=%2Fform%3Ftab%3Dexport&reason=unauthorized", d.RedirectURL)
}

func TestEvaluateProtectedAPIWithoutToken(t *testing.T) {
	gate := newStubGate(nil, nil)

	d := gate.Evaluate(GateRequest{Path: "/api/records/search"})
	assert.Equal(t, ActionReject, d.Action)
	assert.Equal(t, "no-token-api", d.Tag)
	assert.Equal(t, "authentication required", d.Message)
	assert.NotEmpty(t, d.RedirectURL)
}

func TestEvaluateBadTokenClearsCookie(t *testing.T) {
	gate := newStubGate(nil, models.ErrUnauthenticated)

	d := gate.Evaluate(GateRequest{Path: "/dashboard", Token: "expired", HasToken: true, Secure: true})
	assert.Equal(t, ActionRedirect, d.Action)
	assert.Equal(t, "bad-token-page", d.Tag)
	require.Len(t, d.CookieOps, 1)
	spec := d.CookieOps[0].Spec
	assert.Equal(t, "access_token", spec.Name)
	assert.Equal(t, -1, spec.MaxAge)
	assert.True(t, spec.Secure)
}

func TestEvaluateValidToken(t *testing.T) {
	claims := &models.Claims{Username: "alice", Role: models.RoleUser}
	gate := newStubGate(claims, nil)

	d := gate.Evaluate(GateRequest{Path: "/api/me", Token: "good", HasToken: true})
	assert.Equal(t, ActionContinue, d.Action)
	assert.Equal(t, "ok-token", d.Tag)
	assert.Same(t, claims, d.Claims)
}

// Adapter tests run the real codec end to end through gin.

func adapterFixture(t *testing.T) (*gin.Engine, *auth.TokenCodec) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.JWTConfig{
		SecretKey:     "test-secret",
		TokenLifetime: time.Hour,
		Issuer:        "ppk-app",
		Audience:      "ppk-users",
		CookieName:    "access_token",
	}
	codec, err := auth.NewTokenCodec(cfg, zap.NewNop())
	require.NoError(t, err)

	r := gin.New()
	r.Use(NewGate(codec, cfg.CookieName, zap.NewNop()).Handler())
	handler := func(c *gin.Context) { c.String(http.StatusOK, "ok") }
	r.GET("/dashboard", handler)
	r.GET("/login", handler)
	r.GET("/api/me", func(c *gin.Context) {
		claims := c.Value(models.ClaimsContextKey).(*models.Claims)
		c.String(http.StatusOK, claims.Username)
	})
	return r, codec
}

func TestHandlerRedirectsPageWithoutCookie(t *testing.T) {
	r, _ := adapterFixture(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login?redirect=%2Fdashboard&reason=unauthorized", w.Header().Get("Location"))
	assert.Equal(t, "no-token-page", w.Header().Get(GateHeader))
}

func TestHandlerRejectsAPIWithBadCookie(t *testing.T) {
	r, _ := adapterFixture(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: "garbage"})
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "bad-token-api", w.Header().Get(GateHeader))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.NotEmpty(t, w.Header().Get("X-Redirect-To"))
	assert.Contains(t, w.Body.String(), "redirect_to")

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "access_token", cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Less(t, cookies[0].MaxAge, 0)
}

func TestHandlerPassesValidCookieAndStashesClaims(t *testing.T) {
	r, codec := adapterFixture(t)

	token, err := codec.Mint(&models.User{ID: 7, Username: "alice", Role: models.RoleUser})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice", w.Body.String())
	assert.Equal(t, "ok-token", w.Header().Get(GateHeader))
}

func TestHandlerPrefetchSkipsGate(t *testing.T) {
	r, _ := adapterFixture(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.Header.Set(PrefetchHeader, "1")
	r.ServeHTTP(w, req)

	// The gate lets the request through; the route handler answers.
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "prefetch", w.Header().Get(GateHeader))
}
