// Command seeduser creates or updates a portal account. It is meant
// for bootstrapping the first admin after the database comes up:
//
//	ADMIN_USERNAME=admin ADMIN_PASSWORD=secret go run ./cmd/seeduser
package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ppk-his/ppk-portal/internal/app/models"
	database "github.com/ppk-his/ppk-portal/internal/db"
	"github.com/ppk-his/ppk-portal/internal/pkg/config"
	applogger "github.com/ppk-his/ppk-portal/internal/pkg/logger"
)

const upsertUser = `
INSERT INTO users (username, password_hash, role, is_active)
VALUES ($1, $2, $3, TRUE)
ON CONFLICT (username)
DO UPDATE SET password_hash = EXCLUDED.password_hash, role = EXCLUDED.role, is_active = TRUE
RETURNING id`

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file, using environment variables")
	}

	if err := applogger.Init(zap.InfoLevel, zap.String("service", "ppk-seeduser")); err != nil {
		log.Fatal(err)
	}
	logger := applogger.Log
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	username := envOr("ADMIN_USERNAME", "admin")
	password := envOr("ADMIN_PASSWORD", "123456")
	role := envOr("ADMIN_ROLE", models.RoleAdmin)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Fatal("Failed to hash password", zap.Error(err))
	}

	dbConfig, err := database.NewDatabaseConfig(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to build database configuration", zap.Error(err))
	}

	pool, err := database.Init(dbConfig.ConnectionURL, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	ctx := context.Background()
	database.WaitForDB(ctx, pool, logger)

	if err := database.RunMigrations(dbConfig.ConnectionURL, logger); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}

	var id int64
	if err := pool.QueryRow(ctx, upsertUser, username, string(hash), role).Scan(&id); err != nil {
		logger.Fatal("Failed to upsert user", zap.Error(err))
	}

	logger.Info("User seeded",
		zap.Int64("id", id),
		zap.String("username", username),
		zap.String("role", role))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
