package ilist

import (
	"io"
	"log"
)

// Logger is a small leveled logging interface, a subset of the kind
// skipor/memcached's log package exposes. The list itself never logs --
// tracing a busy-spin would turn a latency bug into a worse one -- so
// Logger exists only for test and benchmark code that wants to narrate
// interleavings while debugging a failure.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
}

// stdLogger adapts the standard library's log.Logger to Logger.
type stdLogger struct {
	l *log.Logger
}

// NewLogger wraps w in a Logger that starts each line with a
// microsecond timestamp followed by the message's level.
func NewLogger(w io.Writer) Logger {
	return &stdLogger{l: log.New(w, "", log.LstdFlags|log.Lmicroseconds)}
}

func (s *stdLogger) Debugf(format string, args ...interface{}) { s.l.Printf("DEBUG "+format, args...) }
func (s *stdLogger) Infof(format string, args ...interface{})  { s.l.Printf("INFO "+format, args...) }
func (s *stdLogger) Warnf(format string, args ...interface{})  { s.l.Printf("WARN "+format, args...) }

// discardLogger implements Logger by doing nothing. It is the default
// for benchmarks and tests, which run far too many operations to narrate
// every one of them.
type discardLogger struct{}

func (discardLogger) Debugf(string, ...interface{}) {}
func (discardLogger) Infof(string, ...interface{})  {}
func (discardLogger) Warnf(string, ...interface{})  {}

// NewDiscardLogger returns a Logger that discards everything.
func NewDiscardLogger() Logger { return discardLogger{} }
