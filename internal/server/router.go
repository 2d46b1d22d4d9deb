package server

import (
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	appmiddleware "github.com/ppk-his/ppk-portal/internal/app/middleware"
	"github.com/ppk-his/ppk-portal/internal/pkg/config"
	"github.com/ppk-his/ppk-portal/internal/routes"
)

// SetupRouter configures the gin router with all middleware and
// routes. The request gate is mounted globally, ahead of every
// handler, so classification happens exactly once per request.
func SetupRouter(cfg *config.Config, dbPool *pgxpool.Pool, logger *zap.Logger) (*gin.Engine, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	r.Use(ginzap.GinzapWithConfig(logger, &ginzap.Config{
		UTC:        true,
		TimeFormat: time.RFC3339,
		Context:    zapContextFunc(),
	}))
	r.Use(ginzap.RecoveryWithZap(logger, true))
	r.Use(appmiddleware.RequestIDMiddleware())
	r.Use(appmiddleware.CORSMiddleware())
	r.Use(appmiddleware.SecurityMiddleware())

	if err := routes.Setup(r, cfg, dbPool, logger); err != nil {
		return nil, err
	}

	return r, nil
}

func zapContextFunc() ginzap.Fn {
	return func(c *gin.Context) []zapcore.Field {
		fields := []zapcore.Field{}
		if requestID := c.Writer.Header().Get("X-Request-Id"); requestID != "" {
			fields = append(fields, zap.String("request_id", requestID))
		}
		if tag := c.Writer.Header().Get(appmiddleware.GateHeader); tag != "" {
			fields = append(fields, zap.String("gate", tag))
		}
		return fields
	}
}
