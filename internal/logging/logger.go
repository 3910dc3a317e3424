// Copyright (c) 2026 VasteLijn
// VasteLijn Portal - Device Owner provisioning client
// This source code is licensed under the MIT license found in the LICENSE file.

// Package logging holds the process-wide logger. While the TUI owns the
// terminal, output is redirected to a file so it does not corrupt the screen.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	clog "github.com/charmbracelet/log"
)

// L is the package-level logger. Callers should use the helper functions
// below instead of touching L directly.
var L = clog.NewWithOptions(os.Stderr, clog.Options{
	ReportTimestamp: true,
	Prefix:          "portal",
})

// Setup applies the configured level and, when file is non-empty, sends all
// output to that file. The returned closer must be called on shutdown.
func Setup(level, file string) (io.Closer, error) {
	if level != "" {
		lvl, err := clog.ParseLevel(level)
		if err != nil {
			return nopCloser{}, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		L.SetLevel(lvl)
	}
	if file == "" {
		return nopCloser{}, nil
	}
	if err := os.MkdirAll(filepath.Dir(file), 0o700); err != nil {
		return nopCloser{}, fmt.Errorf("could not create log directory: %w", err)
	}
	f, err := os.OpenFile(file, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nopCloser{}, fmt.Errorf("could not open log file: %w", err)
	}
	L.SetOutput(f)
	return f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Debugf logs a debug-level formatted message.
func Debugf(format string, v ...interface{}) {
	L.Debug(fmt.Sprintf(format, v...))
}

// Infof logs an info-level formatted message.
func Infof(format string, v ...interface{}) {
	L.Info(fmt.Sprintf(format, v...))
}

// Warnf logs a warning-level formatted message.
func Warnf(format string, v ...interface{}) {
	L.Warn(fmt.Sprintf(format, v...))
}

// Errorf logs an error-level formatted message.
func Errorf(format string, v ...interface{}) {
	L.Error(fmt.Sprintf(format, v...))
}
