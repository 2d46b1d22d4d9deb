package main

import (
	"errors"
	"log"
	"net/http"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/ppk-his/ppk-portal/internal/pkg/config"
	applogger "github.com/ppk-his/ppk-portal/internal/pkg/logger"
	"github.com/ppk-his/ppk-portal/internal/server"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file, using environment variables")
	}

	// Initialize logger
	if err := applogger.Init(zap.InfoLevel, zap.String("service", "ppk-portal")); err != nil {
		return err
	}
	logger := applogger.Log
	defer logger.Sync()

	// Load configuration. A missing JWT secret is fatal here, before
	// anything listens.
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Create server (database pool + migrations)
	srv, err := server.New(cfg, logger)
	if err != nil {
		return err
	}
	defer srv.Close()

	// Setup router
	router, err := server.SetupRouter(cfg, srv.DBPool(), logger)
	if err != nil {
		return err
	}
	srv.SetRouter(router)

	httpServer := srv.HTTPServer()

	// Setup graceful shutdown
	done := make(chan bool, 1)
	go server.GracefulShutdown(httpServer, logger, done)

	logger.Info("Server starting", zap.String("port", cfg.ServerPort))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", zap.Error(err))
		return err
	}

	// Wait for graceful shutdown to complete
	<-done
	logger.Info("Graceful shutdown complete")

	return nil
}
