package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/djenkins26/products-app/internal/config"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
)

// OpenPostgres opens and pings the Postgres pool described by cfg.
func OpenPostgres(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*sql.DB, error) {
	log.Info().
		Str("host", cfg.DBHost).
		Str("port", cfg.DBPort).
		Str("user", cfg.DBUser).
		Str("db", cfg.DBName).
		Str("sslmode", cfg.DBSSLMode).
		Msg("connecting to postgres")

	db, err := sql.Open("postgres", cfg.PostgresDSN())
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	ConfigurePool(db, cfg)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	log.Info().Msg("connected to postgres")
	return db, nil
}

// ConfigurePool applies the pool limits from cfg.
func ConfigurePool(db *sql.DB, cfg *config.Config) {
	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	db.SetConnMaxIdleTime(time.Duration(cfg.DBConnMaxIdleMinutes) * time.Minute)
	db.SetConnMaxLifetime(time.Duration(cfg.DBConnMaxLifetimeMinutes) * time.Minute)
}
