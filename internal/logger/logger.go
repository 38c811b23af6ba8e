package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Color codes for terminal output
const (
	ColorReset  = "\033[0m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorCyan   = "\033[36m"
	ColorBold   = "\033[1m"
	ColorRed    = "\033[31m"
)

type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

var (
	mu          sync.Mutex
	globalLevel = LogLevelInfo
	output      io.Writer = os.Stdout
)

func (l LogLevel) rank() int {
	switch l {
	case LogLevelDebug:
		return 0
	case LogLevelWarn:
		return 2
	case LogLevelError:
		return 3
	default:
		return 1
	}
}

// ParseLevel maps a config string onto a LogLevel, falling back to info.
func ParseLevel(s string) LogLevel {
	switch LogLevel(strings.ToLower(strings.TrimSpace(s))) {
	case LogLevelDebug:
		return LogLevelDebug
	case LogLevelWarn, "warning":
		return LogLevelWarn
	case LogLevelError:
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

// SetGlobalLevel changes the level of every logger created afterwards.
func SetGlobalLevel(level LogLevel) {
	mu.Lock()
	globalLevel = level
	mu.Unlock()
}

// SetOutput redirects all loggers; nil restores stdout.
func SetOutput(w io.Writer) {
	if w == nil {
		w = os.Stdout
	}
	mu.Lock()
	output = w
	mu.Unlock()
}

type Log struct {
	level LogLevel
	err   error
	user  string
}

func New() *Log {
	mu.Lock()
	defer mu.Unlock()
	return &Log{
		level: globalLevel,
	}
}

func (l *Log) SetLevel(level LogLevel) {
	l.level = level
}

func (l *Log) WithError(err error) *Log {
	return &Log{level: l.level, err: err, user: l.user}
}

// ForUser tags every line with the session's username.
func (l *Log) ForUser(username string) *Log {
	return &Log{level: l.level, err: l.err, user: username}
}

func (l *Log) timestamp() string {
	return time.Now().Format("15:04:05")
}

func (l *Log) enabled(level LogLevel) bool {
	return level.rank() >= l.level.rank()
}

func (l *Log) write(color, icon, msg string) {
	if l.user != "" {
		msg = fmt.Sprintf("%s[%s]%s %s", ColorBold, l.user, ColorReset, msg)
	}
	mu.Lock()
	defer mu.Unlock()
	if l.err != nil {
		fmt.Fprintf(output, "%s[%s]%s %s %s: %v%s\n", color, l.timestamp(), ColorReset, icon, msg, l.err, ColorReset)
		return
	}
	fmt.Fprintf(output, "%s[%s]%s %s %s%s\n", color, l.timestamp(), ColorReset, icon, msg, ColorReset)
}

func (l *Log) Debug(msg string) {
	if !l.enabled(LogLevelDebug) {
		return
	}
	l.write(ColorCyan, "🔎", msg)
}

func (l *Log) Info(msg string) {
	if !l.enabled(LogLevelInfo) {
		return
	}
	l.write(ColorBlue, "ℹ️ ", msg)
}

// Success is an info-level line for things the player did, like a level up.
func (l *Log) Success(msg string) {
	if !l.enabled(LogLevelInfo) {
		return
	}
	l.write(ColorGreen, "✨", msg)
}

func (l *Log) Warn(msg string) {
	if !l.enabled(LogLevelWarn) {
		return
	}
	l.write(ColorYellow, "⚠️ ", msg)
}

func (l *Log) Error(msg string) {
	l.write(ColorRed, "❌", msg)
}

func (l *Log) Debugf(format string, args ...any)   { l.Debug(fmt.Sprintf(format, args...)) }
func (l *Log) Infof(format string, args ...any)    { l.Info(fmt.Sprintf(format, args...)) }
func (l *Log) Successf(format string, args ...any) { l.Success(fmt.Sprintf(format, args...)) }
func (l *Log) Warnf(format string, args ...any)    { l.Warn(fmt.Sprintf(format, args...)) }
func (l *Log) Errorf(format string, args ...any)   { l.Error(fmt.Sprintf(format, args...)) }
