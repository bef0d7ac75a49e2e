// Package logger builds the zerolog logger shared by the server and the TUI
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

const (
	permission = 0664
)

// LogBuild collects the logger options before Make
type LogBuild struct {
	writer io.Writer
	path   string
	level  zerolog.Level
}

// LogData is the built logger and the file it owns, if any
type LogData struct {
	LogFile *os.File
	Logger  zerolog.Logger
}

// New starts a builder. Without a writer or path the logger discards everything.
func New() *LogBuild {
	return &LogBuild{level: zerolog.InfoLevel}
}

func (build *LogBuild) FromPath(path string) *LogBuild {
	build.path = path
	return build
}

func (build *LogBuild) FromWriter(w io.Writer) *LogBuild {
	build.writer = w
	return build
}

// WithLevel sets the minimum level by name; unknown names keep the current level
func (build *LogBuild) WithLevel(name string) *LogBuild {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(name)))
	if err == nil && name != "" {
		build.level = lvl
	}
	return build
}

func (build *LogBuild) Make() (*LogData, error) {
	logData := new(LogData)
	writer := build.writer
	if build.path != "" {
		f, err := os.OpenFile(build.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, permission)
		if err != nil {
			return nil, err
		}
		logData.LogFile = f
		writer = zerolog.SyncWriter(f)
	}
	if writer == nil {
		writer = io.Discard
	}
	logData.Logger = zerolog.New(writer).Level(build.level).With().Timestamp().Logger()
	return logData, nil
}

// Close releases the log file
func (d *LogData) Close() error {
	if d == nil || d.LogFile == nil {
		return nil
	}
	return d.LogFile.Close()
}
