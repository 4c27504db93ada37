package logger

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/julianstephens/go-utils/helpers"
	goulog "github.com/julianstephens/go-utils/logger"
)

// ConsoleLogger writes structured logs to a pair of writers with timestamps.
// Errors go to the error writer, everything else to the output writer.
type ConsoleLogger struct {
	minLevel Level
	out      io.Writer
	err      io.Writer
}

// NewConsoleLogger creates a logger that writes to stdout and stderr.
// An unparseable level falls back to info.
func NewConsoleLogger(level string) Logger {
	return NewWriterLogger(level, os.Stdout, os.Stderr)
}

// NewWriterLogger is NewConsoleLogger with explicit destinations.
// A nil errOut sends errors to out as well.
func NewWriterLogger(level string, out, errOut io.Writer) Logger {
	lvl, err := ParseLevel(level)
	if err != nil {
		lvl = LevelInfo
	}
	if errOut == nil {
		errOut = out
	}
	return &ConsoleLogger{
		minLevel: lvl,
		out:      out,
		err:      errOut,
	}
}

func (cl *ConsoleLogger) Debug(msg string, fields ...interface{}) {
	if cl.minLevel <= LevelDebug {
		cl.log(LevelDebug, msg, fields...)
	}
}

func (cl *ConsoleLogger) Info(msg string, fields ...interface{}) {
	if cl.minLevel <= LevelInfo {
		cl.log(LevelInfo, msg, fields...)
	}
}

func (cl *ConsoleLogger) Warn(msg string, fields ...interface{}) {
	if cl.minLevel <= LevelWarn {
		cl.log(LevelWarn, msg, fields...)
	}
}

func (cl *ConsoleLogger) Error(msg string, err error, fields ...interface{}) {
	allFields := append([]interface{}{"error", err}, fields...)
	cl.log(LevelError, msg, allFields...)
}

func (cl *ConsoleLogger) log(level Level, msg string, fields ...interface{}) {
	timestamp := time.Now().Format("2006-01-02T15:04:05.000Z07:00")

	var sb strings.Builder
	for i := 0; i+1 < len(fields); i += 2 {
		fmt.Fprintf(&sb, " %v=%v", fields[i], fields[i+1])
	}

	logLine := fmt.Sprintf("[%s] %s: %s%s\n", timestamp, strings.ToUpper(level.String()), msg, sb.String())

	if level == LevelError {
		fmt.Fprint(cl.err, logLine) // nolint:errcheck
	} else {
		fmt.Fprint(cl.out, logLine) // nolint:errcheck
	}
}

const (
	defaultFileMaxSizeMB  = 100
	defaultFileMaxAgeDays = 28
)

// FileConfig controls the rotating file logger.
type FileConfig struct {
	Dir        string
	FileName   string
	Level      string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// FileLogger wraps go-utils/logger with rotating file output.
// Level filtering happens here so the file honours the same levels as the console.
type FileLogger struct {
	underlying *goulog.Logger
	filePath   string
	minLevel   Level
}

// NewFileLogger creates a logger that writes JSON lines to a rotating file.
// The directory is created if missing. Old files are compressed.
func NewFileLogger(cfg FileConfig) (Logger, error) {
	if cfg.FileName == "" {
		return nil, wrapLoggerErr("create file logger", ErrLogCreate, errors.New("empty file name"), cfg.Dir)
	}
	lvl, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	if err := helpers.Ensure(cfg.Dir, true); err != nil {
		return nil, wrapLoggerErr("create file logger", ErrLogCreate, err, cfg.Dir)
	}

	logPath := filepath.Join(cfg.Dir, cfg.FileName)
	maxSize := cfg.MaxSizeMB
	if maxSize <= 0 {
		maxSize = defaultFileMaxSizeMB
	}
	maxBackups := cfg.MaxBackups
	maxAge := cfg.MaxAgeDays
	if maxAge <= 0 {
		maxAge = defaultFileMaxAgeDays
	}

	underlying := goulog.New()
	// The wrapper filters by level itself; let everything through underneath.
	if err := underlying.SetLogLevel(LevelDebug.String()); err != nil {
		return nil, wrapLoggerErr("create file logger", ErrLogCreate, err, logPath)
	}
	if err := underlying.SetFileOutputWithConfig(goulog.FileRotationConfig{
		Filename:   logPath,
		MaxSize:    maxSize,
		MaxBackups: &maxBackups,
		MaxAge:     &maxAge,
		Compress:   true,
	}); err != nil {
		return nil, wrapLoggerErr("create file logger", ErrLogCreate, err, logPath)
	}

	return &FileLogger{
		underlying: underlying,
		filePath:   logPath,
		minLevel:   lvl,
	}, nil
}

// Path returns the active log file.
func (fl *FileLogger) Path() string { return fl.filePath }

func (fl *FileLogger) Debug(msg string, fields ...interface{}) {
	if fl.minLevel > LevelDebug {
		return
	}
	if len(fields) > 0 {
		fl.underlying.WithFields(fieldsToMap(fields)).Debug(msg)
	} else {
		fl.underlying.Debug(msg)
	}
}

func (fl *FileLogger) Info(msg string, fields ...interface{}) {
	if fl.minLevel > LevelInfo {
		return
	}
	if len(fields) > 0 {
		fl.underlying.WithFields(fieldsToMap(fields)).Info(msg)
	} else {
		fl.underlying.Info(msg)
	}
}

func (fl *FileLogger) Warn(msg string, fields ...interface{}) {
	if fl.minLevel > LevelWarn {
		return
	}
	if len(fields) > 0 {
		fl.underlying.WithFields(fieldsToMap(fields)).Warn(msg)
	} else {
		fl.underlying.Warn(msg)
	}
}

func (fl *FileLogger) Error(msg string, err error, fields ...interface{}) {
	allFields := append([]interface{}{"error", err}, fields...)
	fl.underlying.WithFields(fieldsToMap(allFields)).Error(msg)
}

// Close syncs and closes the log file.
func (fl *FileLogger) Close() error {
	if err := fl.underlying.Close(); err != nil {
		return wrapLoggerErr("close file logger", ErrLogClose, err, fl.filePath)
	}
	return nil
}

// fieldsToMap converts key/value pairs to a map. A trailing odd key is dropped.
func fieldsToMap(fields []interface{}) map[string]interface{} {
	result := make(map[string]interface{}, len(fields)/2)
	for i := 0; i+1 < len(fields); i += 2 {
		result[fmt.Sprintf("%v", fields[i])] = fields[i+1]
	}
	return result
}

// MultiLogger fans every call out to several loggers.
type MultiLogger struct {
	loggers []Logger
}

// NewMultiLogger combines loggers. Nil entries are skipped.
func NewMultiLogger(loggers ...Logger) Logger {
	kept := make([]Logger, 0, len(loggers))
	for _, lg := range loggers {
		if lg != nil {
			kept = append(kept, lg)
		}
	}
	return &MultiLogger{loggers: kept}
}

func (ml *MultiLogger) Debug(msg string, fields ...interface{}) {
	for _, lg := range ml.loggers {
		lg.Debug(msg, fields...)
	}
}

func (ml *MultiLogger) Info(msg string, fields ...interface{}) {
	for _, lg := range ml.loggers {
		lg.Info(msg, fields...)
	}
}

func (ml *MultiLogger) Warn(msg string, fields ...interface{}) {
	for _, lg := range ml.loggers {
		lg.Warn(msg, fields...)
	}
}

func (ml *MultiLogger) Error(msg string, err error, fields ...interface{}) {
	for _, lg := range ml.loggers {
		lg.Error(msg, err, fields...)
	}
}

// Close closes every Closeable logger and reports the last failure, if any.
func (ml *MultiLogger) Close() error {
	var lastErr error
	for _, lg := range ml.loggers {
		if c, ok := lg.(Closeable); ok {
			if err := c.Close(); err != nil {
				lastErr = err
			}
		}
	}
	if lastErr != nil {
		return wrapLoggerErr("close multi logger", ErrLogClose, lastErr, "")
	}
	return nil
}
