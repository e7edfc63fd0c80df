// Package logger provides the leveled logging used across the server and the
// sequence core.
//
// All output goes through the standard library log package, which the binary
// points at stderr. Stdout is reserved for the MCP protocol stream.
package logger

import (
	"fmt"
	"log"
	"strings"
	"sync/atomic"
)

// Level orders log messages by severity.
type Level int32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelError
)

var levelPrefix = map[Level]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelError: "ERROR",
}

// String returns the lowercase level name.
func (l Level) String() string {
	if p, ok := levelPrefix[l]; ok {
		return strings.ToLower(p)
	}
	return fmt.Sprintf("level(%d)", int32(l))
}

// ParseLevel converts a level name ("debug", "info", "error") to a Level.
// Matching is case-insensitive. An empty string yields LevelInfo.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// Logger is implemented by everything that accepts log output.
type Logger interface {
	Debugf(format string, a ...interface{})
	Infof(format string, a ...interface{})
	Errorf(format string, a ...interface{})
}

// StdLogger writes level-prefixed lines through the standard log package.
// It is safe for concurrent use.
type StdLogger struct {
	level atomic.Int32
}

// New returns a StdLogger that drops messages below level.
func New(level Level) *StdLogger {
	l := &StdLogger{}
	l.SetLevel(level)
	return l
}

func (l *StdLogger) printf(level Level, format string, a ...interface{}) {
	if level < l.Level() {
		return
	}
	log.Println(levelPrefix[level] + ": " + fmt.Sprintf(format, a...))
}

func (l *StdLogger) Debugf(format string, a ...interface{}) {
	l.printf(LevelDebug, format, a...)
}

func (l *StdLogger) Infof(format string, a ...interface{}) {
	l.printf(LevelInfo, format, a...)
}

func (l *StdLogger) Errorf(format string, a ...interface{}) {
	l.printf(LevelError, format, a...)
}

// SetLevel changes the minimum level that is written.
func (l *StdLogger) SetLevel(level Level) {
	l.level.Store(int32(level))
}

// Level returns the minimum level that is written.
func (l *StdLogger) Level() Level {
	return Level(l.level.Load())
}

// Null discards everything. Used where no logger was configured and in tests.
type Null struct{}

func (Null) Debugf(format string, a ...interface{}) {}
func (Null) Infof(format string, a ...interface{})  {}
func (Null) Errorf(format string, a ...interface{}) {}
