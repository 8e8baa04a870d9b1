package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init initializes the global logger with configuration from environment variables.
// FILMSTRIP_LOG_LEVEL controls the log level: debug, info, warn, error (default: info)
//
// Durations log in milliseconds: export and render timings are the
// numbers worth reading here, and they live between 1ms and 45s.
func Init() {
	zerolog.DurationFieldUnit = time.Millisecond

	level := os.Getenv("FILMSTRIP_LOG_LEVEL")
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05.000"})
}
