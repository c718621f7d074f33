package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Rrens/estate-chat/internal/config"
	"github.com/Rrens/estate-chat/internal/logger"
	"github.com/Rrens/estate-chat/internal/repository/postgres"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	source := flag.String("source", "", "migration source URL (defaults to database.migrations_path)")
	flag.Parse()

	// Load .env file if it exists
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	closer, err := logger.Setup(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()

	if cfg.Database.Driver != "postgres" {
		log.Info().Str("driver", cfg.Database.Driver).Msg("store bootstraps its own schema, nothing to migrate")
		return
	}

	sourceURL := cfg.Database.MigrationsPath
	if *source != "" {
		sourceURL = *source
	}

	log.Info().Str("host", cfg.Database.Host).Int("port", cfg.Database.Port).Str("source", sourceURL).Msg("running migrations")

	if err := postgres.RunMigrations(cfg.Database.DSN(), sourceURL); err != nil {
		log.Error().Err(err).Msg("migration failed")
		closer.Close()
		os.Exit(1)
	}
}
