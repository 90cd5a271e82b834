package log

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Logger = zerolog.Logger

// New configures the process-wide zerolog logger.  Development environments
// get the human-readable console writer; everything else emits JSON.
func New(env string) Logger {
	if env == "dev" || env == "local" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}
	return log.Level(zerolog.InfoLevel)
}
