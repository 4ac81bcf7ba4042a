// Package log provides structured logging for training runs, built on
// zerolog. The package-level logger defaults to a no-op so library users pay
// nothing unless they opt in via Setup.
//
// Example:
//
//	log.Setup(zerolog.InfoLevel, false)
//	logger := log.GetLogger().With().
//	    Str(log.ModelNameKey, "GradientDescent").
//	    Logger()
//	logger.Info().
//	    Str(log.OperationKey, "fit").
//	    Int(log.SamplesKey, 1000).
//	    Msg("training started")
package log

import (
	"os"
	"sync"

	"github.com/rs/zerolog"

	"github.com/j2slab/MLStudio/pkg/errors"
)

var (
	mu     sync.RWMutex
	logger = zerolog.Nop()
)

// Setup configures the package logger. With console=true output is
// human-readable on stderr, otherwise JSON on stdout. It also routes library
// warnings (errors.Warn) through the logger; structured warning types that
// implement zerolog.LogObjectMarshaler are embedded as objects.
func Setup(level zerolog.Level, console bool) {
	mu.Lock()
	defer mu.Unlock()

	if console {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
	} else {
		logger = zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
	}

	errors.SetZerologWarnFunc(func(warning error) {
		l := GetLogger()
		ev := l.Warn()
		if obj, ok := warning.(zerolog.LogObjectMarshaler); ok {
			ev.Object("warning", obj).Msg(warning.Error())
			return
		}
		ev.Err(warning).Msg("warning")
	})
}

// SetLogger replaces the package logger. Useful in tests to capture output.
func SetLogger(l zerolog.Logger) {
	mu.Lock()
	defer mu.Unlock()
	logger = l
}

// GetLogger returns the current package logger.
func GetLogger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}
