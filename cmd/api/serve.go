package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"syscall"
	"time"

	"github.com/djenkins26/products-app/internal/config"
	"github.com/djenkins26/products-app/internal/database"
	"github.com/djenkins26/products-app/internal/handlers"
	"github.com/djenkins26/products-app/internal/logger"
	"github.com/djenkins26/products-app/internal/monitoring"
	"github.com/djenkins26/products-app/internal/routes"
	"github.com/djenkins26/products-app/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/oklog/run"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
)

const connectTimeout = 10 * time.Second

func loadConfig(c *cli.Context) (*config.Config, zerolog.Logger, error) {
	cfg := config.FromCLI(c)
	log := logger.New(cfg.Environment, cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		return nil, log, err
	}
	return cfg, log, nil
}

func serveAction(c *cli.Context) error {
	startedAt := time.Now()

	cfg, log, err := loadConfig(c)
	if err != nil {
		return err
	}
	log.Info().Str("version", Version).Msg("zerolog initialised")

	if cfg.Environment == "production" || cfg.Environment == "staging" {
		gin.SetMode(gin.ReleaseMode)
	}

	connectCtx, cancelConnect := context.WithTimeout(c.Context, connectTimeout)
	defer cancelConnect()

	st, err := openStore(connectCtx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := st.Close(closeCtx); err != nil {
			log.Warn().Err(err).Msg("closing store")
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := monitoring.NewMetrics(registry)

	authService := service.NewAuthService(st.users, log)
	productService := service.NewProductService(st.products, log)
	monitor := monitoring.NewService(startedAt, cfg.StoreDriver, st.pinger, st.users, st.products, metrics)

	router := gin.New()
	routes.Setup(router, routes.Dependencies{
		Products:      handlers.NewProductHandler(productService, log),
		Auth:          handlers.NewAuthHandler(authService, log),
		Status:        handlers.NewStatusHandler(monitor),
		Authenticator: authService,
		Metrics:       metrics,
		Gatherer:      registry,
		Log:           log,
	})

	server := &http.Server{
		Addr:              cfg.APIAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	g := &run.Group{}
	// Listen for os.interrupt and SIGTERM
	g.Add(run.SignalHandler(ctx, os.Interrupt, syscall.SIGTERM))
	// start the server
	g.Add(func() error {
		log.Info().Str("addr", cfg.APIAddr).Msg("products API starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}, func(error) {
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancelShutdown()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("graceful shutdown did not finish")
		}
		cancel()
	})

	err = g.Run()
	var signalErr run.SignalError
	if errors.As(err, &signalErr) {
		log.Info().Str("signal", signalErr.Signal.String()).Msg("shutting down")
		return nil
	}
	return err
}

func migrateAction(c *cli.Context) error {
	cfg, log, err := loadConfig(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Context, connectTimeout)
	defer cancel()

	switch cfg.StoreDriver {
	case config.DriverPostgres:
		db, err := database.OpenPostgres(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := database.CreateTables(ctx, db); err != nil {
			return err
		}
	case config.DriverMongo:
		client, err := database.ConnectMongo(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer func() { _ = client.Disconnect(context.Background()) }()
		if err := database.EnsureIndexes(ctx, client.Database(cfg.MongoDatabase)); err != nil {
			return err
		}
	default:
		log.Info().Str("driver", cfg.StoreDriver).Msg("nothing to migrate")
		return nil
	}

	log.Info().Str("driver", cfg.StoreDriver).Msg("migration complete")
	return nil
}
