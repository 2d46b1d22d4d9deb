package pages

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ppk-his/ppk-portal/internal/app/models"
)

//go:embed templates/*.html
var templateFS embed.FS

// PageHandlers serves the three server-rendered pages. All data work
// happens through the gated /api endpoints; these are deliberately
// thin.
type PageHandlers struct {
	tmpl   *template.Template
	logger *zap.Logger
}

func NewPageHandlers(logger *zap.Logger) (*PageHandlers, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &PageHandlers{tmpl: tmpl, logger: logger}, nil
}

// ShowLoginPage handles GET /login. The redirect/reason query
// parameters come from the request gate.
func (h *PageHandlers) ShowLoginPage(c *gin.Context) {
	h.render(c, "login.html", gin.H{
		"Redirect": c.DefaultQuery("redirect", "/dashboard"),
		"Reason":   c.Query("reason"),
	})
}

// ShowDashboardPage handles GET /dashboard (gated).
func (h *PageHandlers) ShowDashboardPage(c *gin.Context) {
	h.render(c, "dashboard.html", gin.H{"Username": usernameFromContext(c)})
}

// ShowFormPage handles GET /form (gated).
func (h *PageHandlers) ShowFormPage(c *gin.Context) {
	h.render(c, "form.html", gin.H{"Username": usernameFromContext(c)})
}

func (h *PageHandlers) render(c *gin.Context, name string, data gin.H) {
	c.Status(http.StatusOK)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := h.tmpl.ExecuteTemplate(c.Writer, name, data); err != nil {
		h.logger.Error("Failed to render page", zap.String("template", name), zap.Error(err))
	}
}

func usernameFromContext(c *gin.Context) string {
	if claims, ok := c.Value(models.ClaimsContextKey).(*models.Claims); ok && claims != nil {
		return claims.Username
	}
	return ""
}
