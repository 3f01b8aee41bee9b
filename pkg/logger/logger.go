// Kunhua Huang 2026

package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelNone
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelNone:
		return "NONE"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a level name to a Level, defaulting to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	case "none", "off":
		return LevelNone
	default:
		return LevelInfo
	}
}

// Logger is a leveled line logger. A Logger is safe for concurrent use; all
// children created with WithPrefix share the parent's sink.
type Logger struct {
	mu     *sync.RWMutex
	level  *Level
	out    *log.Logger
	prefix string
}

var (
	globalMu     sync.Mutex
	globalLogger = New(os.Stdout, LevelInfo, "")
)

func New(w io.Writer, level Level, prefix string) *Logger {
	if w == nil {
		w = io.Discard
	}
	lvl := level
	return &Logger{
		mu:     &sync.RWMutex{},
		level:  &lvl,
		out:    log.New(w, "", 0),
		prefix: prefix,
	}
}

// Discard returns a logger that drops everything, for tests.
func Discard() *Logger {
	return New(io.Discard, LevelNone, "")
}

func Global() *Logger {
	globalMu.Lock()
	defer globalMu.Unlock()
	return globalLogger
}

func SetGlobal(l *Logger) {
	globalMu.Lock()
	defer globalMu.Unlock()
	if l != nil {
		globalLogger = l
	}
}

func (l *Logger) WithPrefix(prefix string) *Logger {
	newPrefix := prefix
	if l.prefix != "" {
		newPrefix = l.prefix + ":" + prefix
	}

	return &Logger{
		mu:     l.mu,
		level:  l.level,
		out:    l.out,
		prefix: newPrefix,
	}
}

func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	*l.level = level
}

func (l *Logger) GetLevel() Level {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return *l.level
}

func (l *Logger) logf(level Level, format string, args ...any) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if *l.level == LevelNone || level < *l.level {
		return
	}

	timestamp := time.Now().Format("2006-01-02 15:04:05.000")
	msg := fmt.Sprintf(format, args...)

	prefix := l.prefix
	if prefix != "" {
		prefix = "[" + prefix + "] "
	}

	l.out.Printf("%s [%s] %s%s", timestamp, level, prefix, msg)
}

func (l *Logger) Debugf(format string, args ...any) {
	l.logf(LevelDebug, format, args...)
}

func (l *Logger) Infof(format string, args ...any) {
	l.logf(LevelInfo, format, args...)
}

func (l *Logger) Warnf(format string, args ...any) {
	l.logf(LevelWarn, format, args...)
}

func (l *Logger) Errorf(format string, args ...any) {
	l.logf(LevelError, format, args...)
}

func Debugf(format string, args ...any) { Global().Debugf(format, args...) }
func Infof(format string, args ...any)  { Global().Infof(format, args...) }
func Warnf(format string, args ...any)  { Global().Warnf(format, args...) }
func Errorf(format string, args ...any) { Global().Errorf(format, args...) }
