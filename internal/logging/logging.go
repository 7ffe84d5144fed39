// Package logging provides the Logger interface threaded through the
// logging layers of the protocol stack (cotp, rcb, client), generalizing
// the teacher's single-method logger.Logger into the four-level shape
// used across this module, and backing it with
// github.com/sirupsen/logrus instead of a bare log.Printf wrapper.
package logging

import (
	"github.com/sirupsen/logrus"
)

// Logger is implemented by every logging backend this module uses.
// Each logging layer (cotp, rcb, client) holds or receives one, typically scoped
// to a component via New(component).
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// logrusLogger adapts a *logrus.Entry to Logger.
type logrusLogger struct {
	entry *logrus.Entry
}

// New returns a Logger backed by a fresh logrus.Logger with text output,
// scoped to component via a "component" field — mirroring the teacher's
// per-category bracketed prefix but as structured fields instead of a
// string prefix, which is what a logrus-based rewrite of the same idea
// looks like.
func New(component string) Logger {
	base := logrus.New()
	return &logrusLogger{entry: base.WithField("component", component)}
}

// WithCorrelationID returns a derived Logger that attaches id to every
// line, used to tie a session's log output to its diagnostics/metrics
// under the same correlation ID.
func WithCorrelationID(l Logger, id string) Logger {
	ll, ok := l.(*logrusLogger)
	if !ok {
		return l
	}
	return &logrusLogger{entry: ll.entry.WithField("correlation_id", id)}
}

func (l *logrusLogger) Debug(format string, args ...any) { l.entry.Debugf(format, args...) }
func (l *logrusLogger) Info(format string, args ...any)  { l.entry.Infof(format, args...) }
func (l *logrusLogger) Warn(format string, args ...any)  { l.entry.Warnf(format, args...) }
func (l *logrusLogger) Error(format string, args ...any) { l.entry.Errorf(format, args...) }

// noop discards everything. Used as the default in tests and by callers
// who pass no WithLogger option, following the teacher's discardable
// default-logger convention.
type noop struct{}

// NewNoop returns a Logger that discards all output.
func NewNoop() Logger { return noop{} }

func (noop) Debug(string, ...any) {}
func (noop) Info(string, ...any)  {}
func (noop) Warn(string, ...any)  {}
func (noop) Error(string, ...any) {}
