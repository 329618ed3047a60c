package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

// LogLevel represents the logging level
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

// Logger provides leveled logging for the pipeline. Diagnostics (parse
// failure summaries, cache degradation, per-file faults) go through here;
// they never fail the operation that reported them.
type Logger struct {
	level  LogLevel
	logger *log.Logger
}

var (
	globalLogger *Logger
	loggerMu     sync.Mutex
)

// NewLogger creates a logger writing to logFile, or stderr when logFile is
// empty.
func NewLogger(levelStr string, logFile string) *Logger {
	level := parseLogLevel(levelStr)

	var out io.Writer = os.Stderr
	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open log file %s: %v, falling back to stderr\n", logFile, err)
		} else {
			out = file
		}
	}

	return &Logger{
		level:  level,
		logger: log.New(out, "", log.LstdFlags),
	}
}

func parseLogLevel(levelStr string) LogLevel {
	switch strings.ToLower(levelStr) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Debugf logs a formatted debug message
func (l *Logger) Debugf(format string, args ...interface{}) {
	if l.level <= LevelDebug {
		l.logger.Printf("[DEBUG] "+format, args...)
	}
}

// Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	if l.level <= LevelInfo {
		l.logger.Printf("[INFO] "+format, args...)
	}
}

// Warnf logs a formatted warning message
func (l *Logger) Warnf(format string, args ...interface{}) {
	if l.level <= LevelWarn {
		l.logger.Printf("[WARN] "+format, args...)
	}
}

// Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	if l.level <= LevelError {
		l.logger.Printf("[ERROR] "+format, args...)
	}
}

// InitLogger initializes the global logger instance. Later calls replace
// the earlier logger, which lets the CLI re-init after flags are parsed.
func InitLogger(logLevel, logFile string) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	globalLogger = NewLogger(logLevel, logFile)
}

func getLogger() *Logger {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	if globalLogger == nil {
		globalLogger = NewLogger("info", "")
	}
	return globalLogger
}

// Global convenience functions for logging
func LogDebugf(format string, args ...interface{}) {
	getLogger().Debugf(format, args...)
}

func LogInfof(format string, args ...interface{}) {
	getLogger().Infof(format, args...)
}

func LogWarnf(format string, args ...interface{}) {
	getLogger().Warnf(format, args...)
}

func LogErrorf(format string, args ...interface{}) {
	getLogger().Errorf(format, args...)
}
