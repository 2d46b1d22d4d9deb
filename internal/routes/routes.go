package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ppk-his/ppk-portal/internal/app/domain/auth"
	"github.com/ppk-his/ppk-portal/internal/app/domain/pages"
	"github.com/ppk-his/ppk-portal/internal/app/domain/records"
	"github.com/ppk-his/ppk-portal/internal/app/middleware"
	"github.com/ppk-his/ppk-portal/internal/pkg/config"
)

type AppHandlers struct {
	Auth    *auth.AuthHandlers
	Records *records.RecordsHandlers
	Pages   *pages.PageHandlers
}

// Setup wires dependencies and registers all routes. The gate is
// mounted before any route so every request is classified first.
func Setup(r *gin.Engine, cfg *config.Config, dbPool *pgxpool.Pool, log *zap.Logger) error {
	codec, err := auth.NewTokenCodec(cfg.JWT, log)
	if err != nil {
		return err
	}

	userRepo := auth.NewPostgresUserRepo(dbPool, log)
	authService := auth.NewAuthService(userRepo, codec, cfg.JWT, log)
	hisClient := records.NewHISClient(cfg.HIS, log)

	pageHandlers, err := pages.NewPageHandlers(log)
	if err != nil {
		return err
	}

	h := &AppHandlers{
		Auth:    auth.NewAuthHandlers(authService, log),
		Records: records.NewRecordsHandlers(hisClient, log),
		Pages:   pageHandlers,
	}

	gate := middleware.NewGate(codec, cfg.JWT.CookieName, log)
	r.Use(gate.Handler())

	setupRouter(r, h, log)
	return nil
}

func setupRouter(r *gin.Engine, h *AppHandlers, log *zap.Logger) {
	// Pages. /dashboard and /form are in the gate's protected set;
	// /login is allowlisted.
	r.GET("/login", h.Pages.ShowLoginPage)
	r.GET("/dashboard", h.Pages.ShowDashboardPage)
	r.GET("/form", h.Pages.ShowFormPage)
	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/dashboard")
	})

	// Auth API: reachable without a session by design.
	authGroup := r.Group("/api/auth")
	{
		authGroup.POST("/login", h.Auth.LoginHandler)
		authGroup.POST("/logout", h.Auth.LogoutHandler)
	}

	// Everything below is under /api outside the auth prefix, so the
	// gate requires a valid session before these run.
	r.GET("/api/me", h.Auth.MeHandler)

	hisGroup := r.Group("/api/his")
	{
		hisGroup.GET("/doctors", h.Records.GetDoctors)
		hisGroup.GET("/locations", h.Records.GetLocations)
	}

	recordsGroup := r.Group("/api/records")
	{
		recordsGroup.POST("/search", h.Records.Search)
		recordsGroup.POST("/export", h.Records.Export)
	}

	// The metrics path sits in the gate's bypass class so scrapes
	// never touch token verification.
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.NoRoute(func(c *gin.Context) {
		log.Info("404 - not found",
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method))
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "message": "not found"})
	})
}
