package utils

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger configures the global logger. With fileLog set, events go to
// LogFile in the working directory so they don't fight the progress display.
func InitLogger(debug bool, fileLog bool) (io.Closer, error) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	if !fileLog {
		SetLogOutput(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.DateTime})
		return io.NopCloser(nil), nil
	}
	f, err := os.OpenFile(LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	SetLogOutput(f)
	return f, nil
}

func GetLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

func SetLogOutput(w io.Writer) {
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
}
