package logging

import (
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config holds logging configuration.
type Config struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	Console    bool   `mapstructure:"console"`
	Format     string `mapstructure:"format"` // console output: "pretty" or "json"
	TimeFormat string `mapstructure:"time_format"`
}

// output is the writer behind the global logger and every Component logger.
// Setup swaps its target, so loggers captured earlier follow the new
// configuration.
var output = &switchWriter{w: zerolog.MultiLevelWriter(os.Stderr)}

var (
	fileMu  sync.Mutex
	logFile *os.File
)

func init() {
	log.Logger = zerolog.New(output).With().Timestamp().Logger()
}

type switchWriter struct {
	mu sync.RWMutex
	w  zerolog.LevelWriter
}

func (s *switchWriter) Write(p []byte) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.w.Write(p)
}

func (s *switchWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.w.WriteLevel(level, p)
}

func (s *switchWriter) set(w zerolog.LevelWriter) {
	s.mu.Lock()
	s.w = w
	s.mu.Unlock()
}

// Setup initializes the global logger. Calling it again replaces the
// previous configuration and closes the previously opened log file.
func Setup(cfg Config) {
	var writers []io.Writer

	if cfg.Console {
		writers = append(writers, consoleWriter(cfg))
	}

	fileMu.Lock()
	previous := logFile
	logFile = nil
	var fileErr error
	if cfg.File != "" {
		logFile, fileErr = os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if fileErr == nil {
			writers = append(writers, logFile)
		} else {
			logFile = nil
		}
	}

	if len(writers) == 0 {
		writers = append(writers, consoleWriter(cfg))
	}

	output.set(zerolog.MultiLevelWriter(writers...))
	log.Logger = zerolog.New(output).With().Timestamp().Logger()
	if previous != nil {
		previous.Close()
	}
	fileMu.Unlock()

	if fileErr != nil {
		log.Error().Err(fileErr).Str("file", cfg.File).Msg("Failed to open log file")
	}

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		log.Warn().Str("configured_level", cfg.Level).Msg("Invalid log level, defaulting to info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	log.Debug().Str("level", level.String()).Str("file", cfg.File).Msg("Logger initialized")
}

func consoleWriter(cfg Config) io.Writer {
	if cfg.Format == "json" {
		return os.Stderr
	}
	return zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: cfg.TimeFormat}
}

// Close closes the log file opened by Setup, if any. Later log lines go
// to stderr.
func Close() {
	fileMu.Lock()
	defer fileMu.Unlock()
	if logFile == nil {
		return
	}
	output.set(zerolog.MultiLevelWriter(os.Stderr))
	logFile.Close()
	logFile = nil
}

// Component returns a sub-logger tagged with the component name. Components
// capture it once at construction; it keeps following later Setup calls.
func Component(name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}
