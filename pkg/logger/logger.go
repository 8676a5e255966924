// Package logger builds the application's zerolog logger.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotation limits for file output.
const (
	maxSizeMB  = 100
	maxBackups = 5
	maxAgeDays = 28
)

type LogBuild struct {
	writer  io.Writer
	path    string
	level   zerolog.Level
	console bool
}

type LogData struct {
	// LogFile is the rotating file writer, nil without FromPath.
	LogFile *lumberjack.Logger
	Logger  zerolog.Logger
}

func New() *LogBuild {
	return &LogBuild{level: zerolog.InfoLevel}
}

// FromPath also writes to a size-rotated file at path.
func (build *LogBuild) FromPath(path string) *LogBuild {
	build.path = path
	return build
}

func (build *LogBuild) FromBuffer(w io.Writer) *LogBuild {
	build.writer = w
	return build
}

// WithLevel parses level ("debug", "info", ...). Unknown values keep the
// current level.
func (build *LogBuild) WithLevel(level string) *LogBuild {
	if lvl, err := zerolog.ParseLevel(strings.ToLower(level)); err == nil && lvl != zerolog.NoLevel {
		build.level = lvl
	}
	return build
}

// Console renders human readable lines instead of JSON on the primary
// writer, colored only on stdout. File output is always JSON.
func (build *LogBuild) Console(enabled bool) *LogBuild {
	build.console = enabled
	return build
}

func (build *LogBuild) Make() (logData *LogData, err error) {
	logData = new(LogData)

	var writer io.Writer = os.Stdout
	if build.writer != nil {
		writer = build.writer
	}
	if build.console {
		writer = zerolog.ConsoleWriter{Out: writer, TimeFormat: "15:04:05", NoColor: build.writer != nil}
	}

	if build.path != "" {
		logData.LogFile = &lumberjack.Logger{
			Filename:   build.path,
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
			MaxAge:     maxAgeDays,
		}
		writer = zerolog.MultiLevelWriter(writer, logData.LogFile)
	}

	logData.Logger = zerolog.New(writer).Level(build.level).With().Timestamp().Logger()
	return
}

// Close closes the log file, if any.
func (data *LogData) Close() error {
	if data.LogFile == nil {
		return nil
	}
	return data.LogFile.Close()
}
