package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/saltyorg/simpledb/internal/config"
)

const (
	DefaultMaxSizeMB  = 50
	DefaultMaxBackups = 5
	DefaultMaxAgeDays = 30
	DefaultCompress   = true

	timeFormat = "2006-01-02 15:04:05"
)

// Apply sets the global log level and output writers. Logs always go to the
// console; when logFilePath is set they are also written to a rotating file
// whose limits come from the log.* settings.
func Apply(level string, loader *config.Loader, logFilePath string) {
	applyLevel(level)
	applyOutputs(loader, logFilePath)
}

// LevelForVerbosity maps a -v count to a level name understood by Apply
func LevelForVerbosity(verbosity int) string {
	switch {
	case verbosity <= 0:
		return "info"
	case verbosity == 1:
		return "debug"
	default:
		return "trace"
	}
}

func applyLevel(level string) {
	switch level {
	case "trace":
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

func applyOutputs(loader *config.Loader, logFilePath string) {
	consoleOutput := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: timeFormat}
	log.Logger = zerolog.New(consoleOutput).With().Timestamp().Logger()

	if logFilePath == "" {
		return
	}

	if err := ensureLogDir(logFilePath); err != nil {
		log.Error().Err(err).Str("path", logFilePath).Msg("Failed to prepare log directory; logging to console only")
		return
	}

	fileWriter := &lumberjack.Logger{
		Filename:   logFilePath,
		MaxSize:    positiveOr(loader.Int("log.max_size_mb", DefaultMaxSizeMB), DefaultMaxSizeMB),
		MaxBackups: nonNegativeOr(loader.Int("log.max_backups", DefaultMaxBackups), DefaultMaxBackups),
		MaxAge:     nonNegativeOr(loader.Int("log.max_age_days", DefaultMaxAgeDays), DefaultMaxAgeDays),
		Compress:   loader.Bool("log.compress", DefaultCompress),
	}

	fileConsole := zerolog.ConsoleWriter{
		Out:        fileWriter,
		TimeFormat: timeFormat,
		NoColor:    true,
	}

	multi := zerolog.MultiLevelWriter(consoleOutput, fileConsole)
	log.Logger = zerolog.New(multi).With().Timestamp().Logger()
}

// Diagnostic returns the logger used for the dev mode SQL echo. Terminals get
// the console format; any other writer gets one JSON object per statement.
func Diagnostic(w io.Writer) zerolog.Logger {
	if f, ok := w.(*os.File); ok && (f == os.Stdout || f == os.Stderr) {
		w = zerolog.ConsoleWriter{Out: f, TimeFormat: timeFormat}
	}
	return zerolog.New(w).With().Timestamp().Logger()
}

func positiveOr(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

func nonNegativeOr(v, def int) int {
	if v >= 0 {
		return v
	}
	return def
}

func ensureLogDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
