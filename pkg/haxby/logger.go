package haxby

import (
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/funvibe/haxby/internal/config"
)

// NewLogger builds the runtime logger described by cfg. color only applies
// to the console format.
func NewLogger(cfg config.LogConfig, w io.Writer, color bool) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), err
	}
	if cfg.Format == "json" {
		return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
	}
	out := zerolog.ConsoleWriter{Out: w, NoColor: !color, TimeFormat: time.TimeOnly}
	return zerolog.New(out).Level(level).With().Timestamp().Logger(), nil
}
