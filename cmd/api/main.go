package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urmzd/remotehub/pkg/api"
	"github.com/urmzd/remotehub/pkg/db"
	"github.com/urmzd/remotehub/pkg/device/schema"
	"github.com/urmzd/remotehub/pkg/hub"

	_ "github.com/urmzd/remotehub/docs"
)

// @title           Remotehub API
// @version         1.0
// @description     REST API for learning IR/RF remote commands and generating home-automation configuration

// @host      localhost:8080
// @BasePath  /api/v1
// @schemes   http https

func main() {
	// Configure logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Flags default to REMOTEHUB_* variables, optionally from .env
	env := hub.OverridesFromEnv()
	dbPath := flag.String("db", env.DBPath, "Path to database file (default: ~/.config/remotehub/remotehub.db)")
	dataDir := flag.String("data", env.DataDir, "Directory holding the device document (default: profile storage dir)")
	outputDir := flag.String("output", env.OutputDir, "Directory generated YAML is written to (default: profile output dir)")
	commandTable := flag.String("table", env.CommandTable, "Raw command table JSON file")
	serialPort := flag.String("port", env.SerialPort, "Serial port of the transceiver used when none is registered")
	baudRate := flag.Int("baud", env.BaudRate, "Serial baud rate (default 115200)")
	broker := flag.String("mqtt", env.MQTTBroker, "MQTT broker URL for learn and generate events")
	simulate := flag.Bool("simulate", env.Simulate, "Run without transceiver hardware")
	flag.Parse()

	ctx := context.Background()

	// Open database
	database, err := db.Open(*dbPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer func() {
		if err := database.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close database")
		}
	}()

	log.Info().Str("path", database.Path()).Msg("Database opened")

	// Run migrations
	if err := database.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	// Bootstrap if needed (first run)
	needsBootstrap, err := database.NeedsBootstrap(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to check bootstrap status")
	}
	if needsBootstrap {
		log.Info().Msg("First run detected, bootstrapping database...")
		if err := database.Bootstrap(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to bootstrap database")
		}
		log.Info().Msg("Database bootstrapped successfully")
	}

	// Load configuration
	cfg, err := database.ActiveConfig(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log.Info().
		Str("profile", cfg.Profile.Name).
		Str("timezone", cfg.Timezone()).
		Str("api_address", cfg.APIAddress()).
		Msg("Configuration loaded")

	h, err := hub.Assemble(database, cfg, hub.Overrides{
		DataDir:      *dataDir,
		OutputDir:    *outputDir,
		CommandTable: *commandTable,
		SerialPort:   *serialPort,
		BaudRate:     *baudRate,
		MQTTBroker:   *broker,
		Simulate:     *simulate,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to assemble hub")
	}

	validator := schema.NewValidator()

	// Create and start API router
	router := api.NewRouter(h, validator)

	// Handle shutdown gracefully
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info().Msg("Shutting down...")
		if err := h.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close hub")
		}
		if err := database.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close database")
		}
		os.Exit(0)
	}()

	// Start server
	addr := cfg.APIAddress()
	log.Info().Str("address", addr).Msg("Starting API server")

	if err := router.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}
