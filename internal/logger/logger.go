package logger

import (
	"io"
	"os"
	"sync"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu  sync.Mutex
	log *zap.Logger
)

// Options controls where log entries go.
type Options struct {
	Debug bool
	// File receives JSON entries with rotation; empty disables file logging.
	File string
	// Console defaults to stderr. Stdout is left to command output.
	Console io.Writer
}

// Init initializes the global logger with console output only
func Init(debug bool) {
	Configure(Options{Debug: debug})
}

// InitWithFile initializes the global logger with both console and file output
func InitWithFile(debug bool, logFile string) {
	Configure(Options{Debug: debug, File: logFile})
}

// Configure replaces the global logger. The previous one is flushed.
func Configure(opts Options) {
	l := build(opts)
	mu.Lock()
	prev := log
	log = l
	mu.Unlock()
	if prev != nil {
		_ = prev.Sync()
	}
}

func build(opts Options) *zap.Logger {
	level := zapcore.InfoLevel
	encoderConfig := zap.NewProductionEncoderConfig()
	if opts.Debug {
		level = zapcore.DebugLevel
		encoderConfig = zap.NewDevelopmentEncoderConfig()
	}

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.AddSync(console), level),
	}

	if opts.File != "" {
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(&lumberjack.Logger{
				Filename:   opts.File,
				MaxSize:    50, // MB
				MaxBackups: 5,
				MaxAge:     30, // days
			}),
			level,
		))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddStacktrace(zapcore.ErrorLevel))
}

// Set installs l as the global logger, e.g. an observer in tests.
func Set(l *zap.Logger) {
	mu.Lock()
	log = l
	mu.Unlock()
}

// Get returns the global logger, creating an info level console logger on
// first use.
func Get() *zap.Logger {
	mu.Lock()
	defer mu.Unlock()
	if log == nil {
		log = build(Options{})
	}
	return log
}

// Sync flushes any buffered log entries
func Sync() {
	mu.Lock()
	l := log
	mu.Unlock()
	if l != nil {
		_ = l.Sync()
	}
}
