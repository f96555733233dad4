// Command migrate applies the embedded schema migrations.
//
//	migrate up | down | steps N | version
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/pulsmedic/pulsmedic-backend/pkg/config"
	"github.com/pulsmedic/pulsmedic-backend/pkg/logger"
	"github.com/pulsmedic/pulsmedic-backend/pkg/migrations"
)

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	log := logger.New("migrate", config.GetEnvironment())

	cfg, err := config.LoadWithValidation("clinic-api")
	if err != nil {
		log.Fatal().Err(err).Msg("configuration error")
	}

	if os.Args[1] == "down" && config.IsProductionLike() &&
		config.GetEnv("PULSMEDIC_MIGRATE_ALLOW_DOWN", "") != "true" {
		log.Fatal().Str("environment", cfg.Server.Environment).
			Msg("refusing to roll back all migrations; set PULSMEDIC_MIGRATE_ALLOW_DOWN=true to override")
	}

	m, err := migrations.NewFromURL(cfg.Database.MigrationURL(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialise migrations")
	}
	defer m.Close()

	if err := run(m, os.Args[1:]); err != nil {
		log.Error().Err(err).Str("command", os.Args[1]).Msg("migration failed")
		m.Close()
		os.Exit(1)
	}
}

func run(m *migrations.Migrator, args []string) error {
	switch args[0] {
	case "up":
		return m.Up()
	case "down":
		return m.Down()
	case "steps":
		if len(args) < 2 {
			return fmt.Errorf("steps needs a count")
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid step count %q: %w", args[1], err)
		}
		return m.Steps(n)
	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			return err
		}
		fmt.Printf("version %d (dirty: %t)\n", version, dirty)
		return nil
	default:
		usage()
		return nil
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: migrate up | down | steps N | version")
	os.Exit(2)
}
