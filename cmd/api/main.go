package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/djenkins26/products-app/internal/config"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
)

// Variable passed in at compile time using `-ldflags`
var (
	Version   string // -X main.Version=$(git describe --tags --abbrev=0)
	GitHash   string // -X main.GitHash=$(git rev-parse HEAD)
	BuildDate string // -X main.BuildDate=$(date -u +%Y%m%d%H%M%S)
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
	}

	app := &cli.App{
		Name:    "products-api",
		Usage:   "CRUD API for products with token auth and owner-only writes",
		Version: Version,
		Commands: []*cli.Command{
			{
				Name:    "serve",
				Aliases: []string{"s"},
				Usage:   "run the HTTP API",
				Flags:   config.Flags(),
				Action:  serveAction,
			},
			{
				Name:   "migrate",
				Usage:  "create tables (postgres) or indexes (mongo) and exit",
				Flags:  config.Flags(),
				Action: migrateAction,
			},
			{
				Name:    "version",
				Aliases: []string{"v"},
				Usage:   "print version",
				Action: func(c *cli.Context) error {
					fmt.Printf("Version=%s\nCommit=%s\nBuildDate=%s\n", Version, GitHash, BuildDate)
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log := zerolog.New(os.Stderr).With().Timestamp().Logger()
		log.Fatal().Err(err).Msg("products-api exited with error")
	}
}
