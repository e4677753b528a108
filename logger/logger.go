package logger

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"github.com/mattn/go-isatty"
	log "github.com/sirupsen/logrus"
)

// Logger type is interface for available logging methods.
type Logger interface {
	Trace(...interface{})
	Debug(...interface{})
	Info(...interface{})
	Warn(...interface{})
	Error(...interface{})
	Panic(...interface{})
	Fatal(...interface{})
}

// LoggerImpl is a struct that extends sirupsen/logrus.
type LoggerImpl struct {
	Logger         *log.Entry
	Service        string
	LogLevelStr    string
	PrintStackDump bool
	base           *log.Logger
}

// NewLogger will create a new logger implementation writing to STDERR.
// An unknown level falls back to info and a warning is logged.
func NewLogger(serviceName string, level string, stackDumpOnPanic bool) *LoggerImpl {
	base := log.New()
	l := &LoggerImpl{
		Logger:         base.WithFields(log.Fields{"service": serviceName}),
		Service:        serviceName,
		LogLevelStr:    level,
		PrintStackDump: stackDumpOnPanic,
		base:           base,
	}
	l.SetOutput(os.Stderr)
	logLevel, err := log.ParseLevel(level)
	if err != nil {
		base.SetLevel(log.InfoLevel)
		l.LogLevelStr = log.InfoLevel.String()
		l.Logger.Warn("Unable to parse log level ", level, ", using info: ", err)
	} else {
		base.SetLevel(logLevel)
	}
	return l
}

// NewLambdaLogger is a logger that always writes JSON and registers exitHandlerFn with logrus.
func NewLambdaLogger(serviceName string, level string, exitHandlerFn func()) *LoggerImpl {
	l := NewLogger(serviceName, level, false)
	l.base.SetFormatter(&log.JSONFormatter{})
	if exitHandlerFn != nil {
		log.RegisterExitHandler(exitHandlerFn)
	}
	return l
}

// Trace log.
func (l *LoggerImpl) Trace(message ...interface{}) {
	l.Logger.Trace(message...)
}

// Debug log.
func (l *LoggerImpl) Debug(message ...interface{}) {
	l.Logger.Debug(message...)
}

// Info log.
func (l *LoggerImpl) Info(message ...interface{}) {
	l.Logger.Info(message...)
}

// Warn log.
func (l *LoggerImpl) Warn(message ...interface{}) {
	l.Logger.Warn(message...)
}

// Error (with stack trace in trace mode or if the user explicitly sets PrintStackDump).
func (l *LoggerImpl) Error(message ...interface{}) {
	if l.LogLevelStr == "trace" || l.PrintStackDump {
		l.Logger.WithField("stackTrace", fmt.Sprintf("%s", debug.Stack())).Error(message...)
	} else {
		l.Logger.Error(message...)
	}
}

// Panic (with stack trace in debug mode, or if user explicitly sets PrintStackDump).
func (l *LoggerImpl) Panic(message ...interface{}) {
	if l.LogLevelStr == "debug" || l.LogLevelStr == "trace" || l.PrintStackDump {
		l.Logger.WithField("stackTrace", fmt.Sprintf("%s", debug.Stack())).Panic(message...)
	} else {
		l.Logger.Panic(message...)
	}
}

// Fatal (with stack trace in debug mode).
// This causes exit(1) without a stack dump by default.
func (l *LoggerImpl) Fatal(message ...interface{}) {
	if l.LogLevelStr == "debug" || l.LogLevelStr == "trace" {
		l.Logger.WithField("stackTrace", fmt.Sprintf("%s", debug.Stack())).Fatal(message...)
	} else {
		l.Logger.Fatal(message...)
	}
}

// WithField returns a Logger that adds key=value to every entry.
func (l *LoggerImpl) WithField(key string, value interface{}) *LoggerImpl {
	c := *l
	c.Logger = l.Logger.WithField(key, value)
	return &c
}

// SetOutput will set the log output to the Writer supplied.
// Terminals get human readable text; anything else gets JSON.
func (l *LoggerImpl) SetOutput(writer io.Writer) {
	l.base.SetOutput(writer)
	if f, ok := writer.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		l.base.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	} else {
		l.base.SetFormatter(&log.JSONFormatter{})
	}
}
