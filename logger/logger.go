package logger

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"github.com/mattn/go-isatty"
	log "github.com/sirupsen/logrus"
)

// Fields is a set of structured key-values to attach to log lines.
type Fields map[string]interface{}

// Logger type is interface for available logging methods.
type Logger interface {
	Trace(...interface{})
	Debug(...interface{})
	Info(...interface{})
	Warn(...interface{})
	Error(...interface{})
	Panic(...interface{})
	Fatal(...interface{})
	WithFields(Fields) Logger
}

// LoggerImpl is a struct that extends sirupsen/logrus.
type LoggerImpl struct {
	Logger         *log.Entry
	Service        string
	LogLevelStr    string
	PrintStackDump bool
}

// NewLogger will create a new logger implementation.
// Output is plain text on an interactive terminal and JSON otherwise, so that
// the listen and serve commands produce lines that log collectors can parse.
func NewLogger(serviceName string, level string, stackDumpOnPanic bool) *LoggerImpl {
	log.SetOutput(os.Stderr)
	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	} else {
		log.SetFormatter(&log.JSONFormatter{})
	}
	logLevel, err := log.ParseLevel(level)
	if err == nil {
		log.SetLevel(logLevel)
	} else {
		fmt.Println("Error setting up logging: ", err)
		os.Exit(1)
	}
	logger := log.WithFields(log.Fields{
		"service": serviceName,
	})
	return &LoggerImpl{Logger: logger, Service: serviceName, LogLevelStr: level, PrintStackDump: stackDumpOnPanic}
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

// Error (with stack trace in trace mode or if the user asked for stack dumps).
func (l *LoggerImpl) Error(message ...interface{}) {
	if l.LogLevelStr == "trace" || l.PrintStackDump {
		l.Logger.WithField("stackTrace", fmt.Sprintf("%s", debug.Stack())).Error(message...)
	} else {
		l.Logger.Error(message...)
	}
}

// Panic (with stack trace in debug mode, or if user explicitly sets PrintStackDump).
func (l *LoggerImpl) Panic(message ...interface{}) {
	if l.LogLevelStr == "debug" || l.LogLevelStr == "trace" {
		if l.PrintStackDump {
			l.Logger.WithField("stackTrace", fmt.Sprintf("%s", debug.Stack())).Panic(message...)
		} else {
			l.Logger.Fatal(message...)
		}
	} else {
		if l.PrintStackDump { // if the user wants a stack dump without having to use debug|trace levels...
			l.Logger.Panic(message...)
		} else { // else log the message and quit without a stack dump...
			l.Logger.Fatal(message...)
		}
	}
}

// Fatal (with stack trace in debug mode).
// This causes exit(1) without a stack dump by default.
// Call Panic() to get a stack dump instead.
func (l *LoggerImpl) Fatal(message ...interface{}) {
	if l.LogLevelStr == "debug" || l.LogLevelStr == "trace" {
		l.Logger.WithField("stackTrace", fmt.Sprintf("%s", debug.Stack())).Fatal(message...)
	} else {
		l.Logger.Fatal(message...)
	}
}

// WithFields returns a child logger that adds the given fields to every line.
func (l *LoggerImpl) WithFields(f Fields) Logger {
	return &LoggerImpl{
		Logger:         l.Logger.WithFields(log.Fields(f)),
		Service:        l.Service,
		LogLevelStr:    l.LogLevelStr,
		PrintStackDump: l.PrintStackDump,
	}
}

// SetOutput will set the log output to the Writer supplied.
func (l *LoggerImpl) SetOutput(writer io.Writer) {
	log.SetOutput(writer)
}

// SetJSONFormat forces JSON output regardless of the terminal type.
func (l *LoggerImpl) SetJSONFormat() {
	log.SetFormatter(&log.JSONFormatter{})
}
