// Package logging configures the process-wide zerolog logger.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup installs the global logger. console selects the human readable
// writer, otherwise lines are JSON. An unknown level falls back to info and
// is reported once.
func Setup(level string, console bool) {
	SetupWriter(os.Stderr, level, console)
}

func SetupWriter(w io.Writer, level string, console bool) {
	zerolog.TimeFieldFormat = time.RFC3339

	out := w
	if console {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}
	log.Logger = zerolog.New(out).With().Timestamp().Logger()

	lvl := zerolog.InfoLevel
	var bad error
	if level != "" {
		if parsed, err := zerolog.ParseLevel(level); err == nil {
			lvl = parsed
		} else {
			bad = err
		}
	}
	zerolog.SetGlobalLevel(lvl)

	if bad != nil {
		log.Warn().Err(bad).Str("level", level).Msg("[!] unknown log level, using info")
	}
}
