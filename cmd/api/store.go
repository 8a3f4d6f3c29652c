package main

import (
	"context"
	"fmt"

	"github.com/djenkins26/products-app/internal/config"
	"github.com/djenkins26/products-app/internal/database"
	"github.com/djenkins26/products-app/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// store is the selected backend plus the way to release it.
type store struct {
	users    repository.UserRepository
	products repository.ProductRepository
	pinger   repository.Pinger
	closers  []func(context.Context) error
}

func (s *store) Close(ctx context.Context) error {
	var firstErr error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// openStore connects the configured backend and makes sure its schema exists.
func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*store, error) {
	s := &store{}

	switch cfg.StoreDriver {
	case config.DriverMemory:
		mem := repository.NewMemory()
		s.users, s.products, s.pinger = mem.Users(), mem.Products(), mem
	case config.DriverPostgres:
		db, err := database.OpenPostgres(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, func(context.Context) error { return db.Close() })
		if err := database.CreateTables(ctx, db); err != nil {
			_ = s.Close(ctx)
			return nil, err
		}
		pg := repository.NewPostgres(db)
		s.users, s.products, s.pinger = pg.Users(), pg.Products(), pg
	case config.DriverMongo:
		client, err := database.ConnectMongo(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, client.Disconnect)
		if err := database.EnsureIndexes(ctx, client.Database(cfg.MongoDatabase)); err != nil {
			_ = s.Close(ctx)
			return nil, err
		}
		mg := repository.NewMongo(client.Database(cfg.MongoDatabase))
		s.users, s.products, s.pinger = mg.Users(), mg.Products(), mg
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}

	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			_ = s.Close(ctx)
			return nil, fmt.Errorf("connect redis %s: %w", cfg.RedisAddr, err)
		}
		s.closers = append(s.closers, func(context.Context) error { return client.Close() })
		s.users = repository.NewTokenCache(s.users, client, cfg.TokenCacheTTL, log)
		log.Info().Str("addr", cfg.RedisAddr).Dur("ttl", cfg.TokenCacheTTL).Msg("token cache enabled")
	}

	log.Info().Str("driver", cfg.StoreDriver).Msg("store ready")
	return s, nil
}
