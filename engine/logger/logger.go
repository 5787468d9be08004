// Package logger provides named, leveled loggers for every engine package.
// All loggers share one backend whose sink and verbosity can be changed at runtime.
package logger

import (
	"io"
	"os"
	"sync"

	"github.com/op/go-logging"
)

// Level is a logger verbosity level.
type Level int

// The levels that can be passed to the SetLevel function.
const (
	Debug Level = iota
	Info
	Notice
	Warning
	Error
)

// format is the line layout used by every logger.
var format = logging.MustStringFormatter(
	`%{color}[%{time:15:04:05.000}] [%{module}] [%{level}]%{color:reset} %{message}`,
)

var (
	mu             sync.Mutex
	leveledBackend logging.LeveledBackend
)

// Logger is the logging surface used by engine packages.
type Logger interface {
	Debug(v ...interface{})
	Debugf(format string, v ...interface{})

	Info(v ...interface{})
	Infof(format string, v ...interface{})

	Notice(v ...interface{})
	Noticef(format string, v ...interface{})

	Warning(v ...interface{})
	Warningf(format string, v ...interface{})

	Error(v ...interface{})
	Errorf(format string, v ...interface{})
}

// New creates a named logger. The name is printed in the module column of each line.
//
// Parameters:
//   - module: the logger name, usually the package name
//
// Returns:
//   - Logger: the named logger
func New(module string) Logger {
	return logging.MustGetLogger(module)
}

// SetSink replaces the output sink shared by all loggers. The current level is kept.
//
// Parameters:
//   - sink: the writer receiving formatted log lines
func SetSink(sink io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	level := logging.INFO
	if leveledBackend != nil {
		level = leveledBackend.GetLevel("")
	}

	backend := logging.NewLogBackend(sink, "", 0)
	backendWithFormatter := logging.NewBackendFormatter(backend, format)
	leveledBackend = logging.AddModuleLevel(backendWithFormatter)
	leveledBackend.SetLevel(level, "")
	logging.SetBackend(leveledBackend)
}

// SetLevel sets the verbosity shared by all loggers.
//
// Parameters:
//   - level: the minimum level that is written
func SetLevel(level Level) {
	mu.Lock()
	defer mu.Unlock()

	var loggerLevel logging.Level
	switch level {
	case Debug:
		loggerLevel = logging.DEBUG
	case Info:
		loggerLevel = logging.INFO
	case Notice:
		loggerLevel = logging.NOTICE
	case Warning:
		loggerLevel = logging.WARNING
	default:
		loggerLevel = logging.ERROR
	}

	leveledBackend.SetLevel(loggerLevel, "")
}

func init() {
	SetSink(os.Stderr)
	SetLevel(Info)
}
