package hub

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/urmzd/remotehub/pkg/db"
	"github.com/urmzd/remotehub/pkg/device"
	"github.com/urmzd/remotehub/pkg/events"
	"github.com/urmzd/remotehub/pkg/generate"
	"github.com/urmzd/remotehub/pkg/learn"
	"github.com/urmzd/remotehub/pkg/store"
	"github.com/urmzd/remotehub/pkg/transceiver"
)

// Overrides replace values from the active profile when non-empty.
type Overrides struct {
	DBPath       string // Read by the caller before the database is opened
	DataDir      string
	OutputDir    string
	CommandTable string
	SerialPort   string // Fallback transceiver when none is registered
	BaudRate     int
	MQTTBroker   string
	Simulate     bool // Use device.NullOpener instead of serial hardware
}

// Assemble builds a Hub for the active profile. No hardware is opened until
// the first learn or test. An unreachable broker is logged and publishing is
// disabled rather than failing startup.
func Assemble(database *db.DB, cfg *db.Config, o Overrides) (*Hub, error) {
	dataDir := firstNonEmpty(o.DataDir, cfg.StorageDir())
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	st, err := store.New(dataDir)
	if err != nil {
		return nil, err
	}

	var opener device.Opener = transceiver.Opener{BaudRate: o.BaudRate}
	if o.Simulate {
		log.Warn().Msg("Simulation mode, learning and testing will report not connected")
		opener = device.NullOpener{}
	}

	var publisher events.Publisher = events.NullPublisher{}
	if broker := firstNonEmpty(o.MQTTBroker, cfg.MQTTBroker()); broker != "" {
		pub, err := events.Connect(events.Options{Broker: broker})
		if err != nil {
			log.Warn().Err(err).Str("broker", broker).Msg("MQTT broker unavailable, events disabled")
		} else {
			log.Info().Str("broker", broker).Msg("Publishing events")
			publisher = pub
		}
	}

	outputDir := firstNonEmpty(o.OutputDir, cfg.OutputDir())
	log.Info().
		Str("data_dir", st.Path()).
		Str("output_dir", outputDir).
		Msg("Hub assembled")

	return New(Options{
		Store:        st,
		Engine:       learn.NewEngine(opener),
		Generator:    generate.New(st, outputDir),
		Sessions:     database.Sessions(),
		Transceivers: database.Transceivers(),
		ProfileID:    cfg.Profile.ID,
		Publisher:    publisher,
		CommandTable: firstNonEmpty(o.CommandTable, cfg.CommandTablePath()),
		Endpoint:     device.Endpoint{Host: o.SerialPort},
	}), nil
}

// OverridesFromEnv loads .env from the working directory if present and
// reads the REMOTEHUB_* variables. Binaries use the result as flag defaults.
func OverridesFromEnv() Overrides {
	_ = godotenv.Load()

	o := Overrides{
		DBPath:       os.Getenv("REMOTEHUB_DB"),
		DataDir:      os.Getenv("REMOTEHUB_DATA_DIR"),
		OutputDir:    os.Getenv("REMOTEHUB_OUTPUT_DIR"),
		CommandTable: os.Getenv("REMOTEHUB_COMMAND_TABLE"),
		SerialPort:   os.Getenv("REMOTEHUB_SERIAL_PORT"),
		MQTTBroker:   os.Getenv("REMOTEHUB_MQTT_BROKER"),
	}
	if v, err := strconv.Atoi(os.Getenv("REMOTEHUB_BAUD_RATE")); err == nil {
		o.BaudRate = v
	}
	if v, err := strconv.ParseBool(os.Getenv("REMOTEHUB_SIMULATE")); err == nil {
		o.Simulate = v
	}
	return o
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
