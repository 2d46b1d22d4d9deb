package middleware

import (
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ppk-his/ppk-portal/internal/app/domain/auth"
	"github.com/ppk-his/ppk-portal/internal/app/models"
)

// The gate runs once per inbound request, before any handler. Its
// core is a pure decision function over (path, cookie, headers); the
// gin adapter at the bottom applies the decision to the response.

// PrefetchHeader short-circuits the gate so link prefetching never
// triggers a redirect.
const PrefetchHeader = "X-Middleware-Prefetch"

// GateHeader carries the decision tag on responses, for debugging.
const GateHeader = "X-Auth-Gate"

// RouteClass is the classification of a request path. Every path maps
// to exactly one class; classification is a pure function of the
// path string.
type RouteClass int

const (
	ClassBypass RouteClass = iota
	ClassAuthRoute
	ClassPublic
	ClassProtectedPage
	ClassProtectedAPI
)

func (c RouteClass) String() string {
	switch c {
	case ClassBypass:
		return "bypass"
	case ClassAuthRoute:
		return "auth-route"
	case ClassPublic:
		return "public"
	case ClassProtectedPage:
		return "protected-page"
	case ClassProtectedAPI:
		return "protected-api"
	default:
		return "unknown"
	}
}

// Action is the terminal outcome of a gate decision.
type Action int

const (
	ActionContinue Action = iota
	ActionRedirect
	ActionReject
)

// CookieOp is a cookie mutation attached to a decision, applied by
// the adapter at the response boundary.
type CookieOp struct {
	Spec auth.CookieSpec
}

// Decision is the gate's verdict for one request. It is a plain value
// so the decision logic stays unit-testable without a network stack.
type Decision struct {
	Action      Action
	RedirectURL string
	Message     string
	CookieOps   []CookieOp
	Tag         string
	Claims      *models.Claims
}

// protectedPrefixes is the explicit page allowlist: exact match or
// prefix followed by a separator, so /dashboard and /dashboard/x are
// protected but /dashboardx is not.
var protectedPrefixes = []string{"/dashboard", "/form"}

var staticExtRe = regexp.MustCompile(`\.(?:png|jpg|jpeg|gif|svg|ico|css|js|map|txt|json|woff2?|ttf|webp)$`)

func isProtectedPath(path string) bool {
	for _, p := range protectedPrefixes {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

func isAPIPath(path string) bool {
	return path == "/api" || strings.HasPrefix(path, "/api/")
}

func isAuthRoute(path string) bool {
	return path == "/login" || path == "/api/auth" || strings.HasPrefix(path, "/api/auth/")
}

func isBypassPath(path string) bool {
	return strings.HasPrefix(path, "/static") ||
		strings.HasPrefix(path, "/favicon") ||
		path == "/metrics" ||
		staticExtRe.MatchString(path)
}

// Classify maps a path to its route class. Evaluation order is the
// tie-break: bypass > auth-route > public > protected.
func Classify(path string) RouteClass {
	switch {
	case isBypassPath(path):
		return ClassBypass
	case isAuthRoute(path):
		return ClassAuthRoute
	case isProtectedPath(path):
		return ClassProtectedPage
	case isAPIPath(path):
		return ClassProtectedAPI
	default:
		return ClassPublic
	}
}

// GateRequest is the slice of an HTTP request the gate looks at.
type GateRequest struct {
	Path     string
	RawQuery string
	Prefetch bool
	Token    string
	HasToken bool
	Secure   bool
}

// TokenVerifier verifies a serialized session token.
type TokenVerifier interface {
	Verify(token string) (*models.Claims, error)
}

// Gate evaluates every inbound request against the ordered predicate
// table and decides pass-through, redirect or rejection.
type Gate struct {
	codec      TokenVerifier
	cookieName string
	logger     *zap.Logger
}

func NewGate(codec TokenVerifier, cookieName string, logger *zap.Logger) *Gate {
	return &Gate{codec: codec, cookieName: cookieName, logger: logger}
}

// loginURL builds the login redirect target preserving the original
// path and query, so login can send the user back.
func loginURL(path, rawQuery string) string {
	target := path
	if rawQuery != "" {
		target += "?" + rawQuery
	}
	return "/login?redirect=" + url.QueryEscape(target) + "&reason=unauthorized"
}

// Evaluate is the gate's pure decision core. Predicates run top to
// bottom; the first match wins. No state survives between calls.
func (g *Gate) Evaluate(req GateRequest) Decision {
	// 1. Prefetch bypass.
	if req.Prefetch {
		return Decision{Action: ActionContinue, Tag: "prefetch"}
	}

	// 2. Asset/meta bypass: static files are never gated and never
	// cost a token verification.
	class := Classify(req.Path)
	if class == ClassBypass {
		return Decision{Action: ActionContinue, Tag: "bypass"}
	}

	// 3. Auth routes stay reachable even with an expired session.
	if class == ClassAuthRoute {
		return Decision{Action: ActionContinue, Tag: "auth-route"}
	}

	// 4. Default-open for everything not explicitly protected.
	if class == ClassPublic {
		return Decision{Action: ActionContinue, Tag: "public"}
	}

	// 5. Protected page or API: a valid session is required.
	isAPI := class == ClassProtectedAPI

	if !req.HasToken {
		return g.block(req, isAPI, false, "no-token")
	}

	claims, err := g.codec.Verify(req.Token)
	if err != nil {
		// Stale cookie: clear it so it does not persist across the
		// redirect to login.
		return g.block(req, isAPI, true, "bad-token")
	}

	return Decision{Action: ActionContinue, Tag: "ok-token", Claims: claims}
}

func (g *Gate) block(req GateRequest, isAPI, clearCookie bool, tag string) Decision {
	d := Decision{RedirectURL: loginURL(req.Path, req.RawQuery)}
	if isAPI {
		d.Action = ActionReject
		d.Message = "authentication required"
		d.Tag = tag + "-api"
	} else {
		d.Action = ActionRedirect
		d.Tag = tag + "-page"
	}
	if clearCookie {
		d.CookieOps = append(d.CookieOps, CookieOp{Spec: auth.NewClearCookie(g.cookieName, req.Secure)})
	}
	return d
}

// Handler is the gin adapter: it builds the GateRequest, evaluates,
// and applies the decision. On pass-through with a valid token the
// verified claims are stashed in the context for handlers.
func (g *Gate) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		req := GateRequest{
			Path:     c.Request.URL.Path,
			RawQuery: c.Request.URL.RawQuery,
			Prefetch: c.GetHeader(PrefetchHeader) == "1",
			Secure:   auth.IsSecureRequest(c.Request),
		}
		if token, err := c.Cookie(g.cookieName); err == nil && token != "" {
			req.Token = token
			req.HasToken = true
		}

		decision := g.Evaluate(req)
		c.Header(GateHeader, decision.Tag)
		for _, op := range decision.CookieOps {
			op.Spec.Apply(c.Writer)
		}
		gateDecisions.WithLabelValues(decision.Tag).Inc()

		switch decision.Action {
		case ActionRedirect:
			c.Redirect(http.StatusFound, decision.RedirectURL)
			c.Abort()
		case ActionReject:
			c.Header("X-Redirect-To", decision.RedirectURL)
			c.Header("Cache-Control", "no-store")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message":     decision.Message,
				"redirect_to": decision.RedirectURL,
			})
		default:
			if decision.Claims != nil {
				c.Set(models.ClaimsContextKey, decision.Claims)
			}
			c.Next()
		}
	}
}
