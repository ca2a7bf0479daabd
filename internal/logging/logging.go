package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var (
	output io.Writer = os.Stdout
	level            = zerolog.InfoLevel
)

// Setup configures the level and output format shared by every component logger.
// It should be called once from main before any logger is used.
func Setup(levelName, format string) {
	if lvl, err := zerolog.ParseLevel(strings.ToLower(levelName)); err == nil && levelName != "" {
		level = lvl
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if strings.EqualFold(format, "console") {
		output = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}
	} else {
		output = os.Stdout
	}
}

// New returns a logger tagged with the given component name.
func New(component string) zerolog.Logger {
	return zerolog.New(writer{}).With().Timestamp().Str("component", component).Logger()
}

// writer resolves the configured output at write time so that package-level
// loggers created before Setup still honour it.
type writer struct{}

func (writer) Write(p []byte) (int, error) {
	return output.Write(p)
}
