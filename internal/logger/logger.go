// Package logger provides the process-wide zerolog logger.
//
// Output always goes to stderr: stdout carries the JSON-RPC stream when the
// server runs over stdio.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

var (
	once   sync.Once
	logger *zerolog.Logger
)

// Get returns the singleton logger instance, initializing it on first call.
func Get() *zerolog.Logger {
	once.Do(func() {
		logger = newLogger(os.Stderr)
	})
	return logger
}

// Nop returns a logger that discards everything.
func Nop() *zerolog.Logger {
	ret := zerolog.Nop()
	return &ret
}

// newLogger creates a logger based on the ENV and LOG_LEVEL environment variables
func newLogger(out io.Writer) *zerolog.Logger {
	logLevel := zerolog.InfoLevel
	if levelStr := os.Getenv("LOG_LEVEL"); levelStr != "" {
		if parsedLevel, err := zerolog.ParseLevel(strings.ToLower(levelStr)); err == nil {
			logLevel = parsedLevel
		} else {
			fmt.Fprintf(os.Stderr, "Invalid LOG_LEVEL %q; defaulting to 'info'\n", levelStr)
		}
	}
	switch os.Getenv("ENV") {
	case "", "dev", "development":
		zl := zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: "2006-01-02 15:04:05"}).
			Level(logLevel).With().Timestamp().Logger()
		return &zl
	}
	zl := zerolog.New(out).Level(logLevel).With().Timestamp().Logger()
	return &zl
}
