package common

import (
	"io"
	"os"
	"time"

	"github.com/beam-cloud/dockerfs/pkg/types"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
	"gopkg.in/natefinch/lumberjack.v2"
)

// ConfigureLogging replaces the global zerolog logger according to config.
// It returns a closer for the rotating log file, if one was opened.
func ConfigureLogging(config types.AppConfig) (io.Closer, error) {
	level, err := zerolog.ParseLevel(config.Logging.Level)
	if err != nil {
		return nil, err
	}
	if level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	if config.DebugMode {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	var out io.Writer = os.Stderr
	if config.PrettyLogs {
		out = zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: "2006-01-02T15:04:05",
		}
	}

	var closer io.Closer
	if config.Logging.File != "" {
		rotating := &lumberjack.Logger{
			Filename:   config.Logging.File,
			MaxSize:    config.Logging.MaxSizeMB,
			MaxBackups: config.Logging.MaxBackups,
			MaxAge:     config.Logging.MaxAgeDays,
			Compress:   config.Logging.Compress,
		}
		out = zerolog.MultiLevelWriter(out, rotating)
		closer = rotating
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	log.Logger = zerolog.New(out).With().Timestamp().Logger()

	return closer, nil
}
