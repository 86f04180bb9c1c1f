package utils

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger configures the global zerolog logger. Every line of one
// invocation carries a short run ID so interleaved log files stay readable.
func InitLogger(debug bool, logFile string) error {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	console := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.DateTime,
	}
	var sink io.Writer = console
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("error opening log file: %w", err)
		}
		sink = zerolog.MultiLevelWriter(console, f)
	}
	runID := strings.SplitN(uuid.NewString(), "-", 2)[0]
	log.Logger = zerolog.New(sink).With().Timestamp().Str("run", runID).Logger()
	return nil
}

func GetLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}
