package logger

import (
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	once sync.Once
	root zerolog.Logger
)

// Init configures the process-wide logger. Level comes from LOG_LEVEL
// (zerolog level names), defaulting to info.
func Init() {
	once.Do(func() {
		zerolog.TimeFieldFormat = time.RFC3339

		output := zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}

		root = zerolog.New(output).
			Level(levelFromEnv()).
			With().
			Timestamp().
			Logger()
	})
}

func levelFromEnv() zerolog.Level {
	level, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

// For returns a logger tagged with the given component name.
func For(component string) zerolog.Logger {
	Init()
	return root.With().Str("component", component).Logger()
}
