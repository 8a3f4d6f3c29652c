// Package config defines the service settings and their command-line/env sources.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
)

const envPrefix = "PRODUCTS"

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

// Config holds all configuration for the products API.
type Config struct {
	Environment string
	LogLevel    string
	APIAddr     string
	StoreDriver string

	DBHost                   string
	DBPort                   string
	DBUser                   string
	DBPassword               string
	DBName                   string
	DBSSLMode                string
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxIdleMinutes     int
	DBConnMaxLifetimeMinutes int

	MongoURI      string
	MongoDatabase string

	RedisAddr     string
	RedisPassword string
	TokenCacheTTL time.Duration

	ShutdownTimeout time.Duration
}

func envVars(name string) []string {
	upper := strings.ToUpper(name)
	return []string{envPrefix + "_" + upper, upper}
}

// Flags returns the cli flags backing Config. Every flag can also be set from
// PRODUCTS_<NAME> or <NAME> in the environment.
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "environment", Value: "development", EnvVars: envVars("environment"), Usage: "Program environment (development, test, staging, production), sets log format"},
		&cli.StringFlag{Name: "log_level", Value: "info", EnvVars: envVars("log_level"), Usage: "zerolog level (trace, debug, info, warn, error)"},
		&cli.StringFlag{Name: "api_addr", Value: ":4741", EnvVars: envVars("api_addr"), Usage: "host:port to run the API"},
		&cli.StringFlag{Name: "store_driver", Value: DriverMongo, EnvVars: envVars("store_driver"), Usage: "Backing store: memory, postgres or mongo"},

		&cli.StringFlag{Name: "db_host", Value: "localhost", EnvVars: envVars("db_host"), Usage: "Postgres host"},
		&cli.StringFlag{Name: "db_port", Value: "5432", EnvVars: envVars("db_port"), Usage: "Postgres port"},
		&cli.StringFlag{Name: "db_user", Value: "postgres", EnvVars: envVars("db_user"), Usage: "Postgres user"},
		&cli.StringFlag{Name: "db_password", Value: "password", EnvVars: envVars("db_password"), Usage: "Postgres password"},
		&cli.StringFlag{Name: "db_name", Value: "products", EnvVars: envVars("db_name"), Usage: "Postgres database name"},
		&cli.StringFlag{Name: "db_sslmode", Value: "disable", EnvVars: envVars("db_sslmode"), Usage: "Postgres sslmode"},
		&cli.IntFlag{Name: "db_max_open_conns", Value: 25, EnvVars: envVars("db_max_open_conns"), Usage: "Postgres max open connections"},
		&cli.IntFlag{Name: "db_max_idle_conns", Value: 25, EnvVars: envVars("db_max_idle_conns"), Usage: "Postgres max idle connections"},
		&cli.IntFlag{Name: "db_conn_max_idle_minutes", Value: 5, EnvVars: envVars("db_conn_max_idle_minutes"), Usage: "Postgres connection max idle time in minutes"},
		&cli.IntFlag{Name: "db_conn_max_lifetime_minutes", Value: 30, EnvVars: envVars("db_conn_max_lifetime_minutes"), Usage: "Postgres connection max lifetime in minutes"},

		&cli.StringFlag{Name: "mongo_uri", Value: "mongodb://localhost:27017", EnvVars: envVars("mongo_uri"), Usage: "MongoDB connection string"},
		&cli.StringFlag{Name: "mongo_database", Value: "products-app", EnvVars: envVars("mongo_database"), Usage: "MongoDB database name"},

		&cli.StringFlag{Name: "redis_addr", Value: "", EnvVars: envVars("redis_addr"), Usage: "host:port of Redis for the token cache, empty disables it"},
		&cli.StringFlag{Name: "redis_password", Value: "", EnvVars: envVars("redis_password"), Usage: "Redis password"},
		&cli.DurationFlag{Name: "token_cache_ttl", Value: 5 * time.Minute, EnvVars: envVars("token_cache_ttl"), Usage: "How long a resolved token stays cached"},

		&cli.DurationFlag{Name: "shutdown_timeout", Value: 10 * time.Second, EnvVars: envVars("shutdown_timeout"), Usage: "Grace period for in-flight requests on shutdown"},
	}
}

// FromCLI builds a Config from parsed flags.
func FromCLI(c *cli.Context) *Config {
	return &Config{
		Environment: c.String("environment"),
		LogLevel:    c.String("log_level"),
		APIAddr:     c.String("api_addr"),
		StoreDriver: strings.ToLower(strings.TrimSpace(c.String("store_driver"))),

		DBHost:                   c.String("db_host"),
		DBPort:                   c.String("db_port"),
		DBUser:                   c.String("db_user"),
		DBPassword:               c.String("db_password"),
		DBName:                   c.String("db_name"),
		DBSSLMode:                c.String("db_sslmode"),
		DBMaxOpenConns:           c.Int("db_max_open_conns"),
		DBMaxIdleConns:           c.Int("db_max_idle_conns"),
		DBConnMaxIdleMinutes:     c.Int("db_conn_max_idle_minutes"),
		DBConnMaxLifetimeMinutes: c.Int("db_conn_max_lifetime_minutes"),

		MongoURI:      c.String("mongo_uri"),
		MongoDatabase: c.String("mongo_database"),

		RedisAddr:     strings.TrimSpace(c.String("redis_addr")),
		RedisPassword: c.String("redis_password"),
		TokenCacheTTL: c.Duration("token_cache_ttl"),

		ShutdownTimeout: c.Duration("shutdown_timeout"),
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.APIAddr) == "" {
		errs = append(errs, errors.New("api_addr is required"))
	}

	switch c.StoreDriver {
	case DriverMemory:
	case DriverPostgres:
		if c.DBHost == "" || c.DBName == "" {
			errs = append(errs, errors.New("db_host and db_name are required for the postgres driver"))
		}
		if c.DBMaxOpenConns <= 0 || c.DBMaxIdleConns <= 0 {
			errs = append(errs, errors.New("db_max_open_conns and db_max_idle_conns must be positive"))
		}
		if c.DBConnMaxIdleMinutes <= 0 || c.DBConnMaxLifetimeMinutes <= 0 {
			errs = append(errs, errors.New("db connection lifetimes must be positive"))
		}
	case DriverMongo:
		if c.MongoURI == "" || c.MongoDatabase == "" {
			errs = append(errs, errors.New("mongo_uri and mongo_database are required for the mongo driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store_driver %q (want memory, postgres or mongo)", c.StoreDriver))
	}

	if c.RedisAddr != "" && c.TokenCacheTTL <= 0 {
		errs = append(errs, errors.New("token_cache_ttl must be positive when redis_addr is set"))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("shutdown_timeout must be positive"))
	}

	return errors.Join(errs...)
}

// PostgresDSN renders the lib/pq key/value connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}
