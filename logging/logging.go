// Package logging provides the leveled, structured logger used across sensorviz.
//
// A Logger is a zap SugaredLogger whose core fans entries out to a list of appenders. The list is
// shared by a logger and all of its subloggers, so an appender added to the root (a log file, say)
// receives entries from every component. Each sublogger keeps its own level.
package logging

import (
	"strings"
	"sync"
	"testing"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// DefaultTimeFormatStr is the timestamp layout used by console and test appenders.
const DefaultTimeFormatStr = "2006-01-02T15:04:05.000Z0700"

// Logger is the logging interface handed to every component that wants to log.
type Logger interface {
	Debug(args ...interface{})
	Debugf(template string, args ...interface{})
	Debugw(msg string, keysAndValues ...interface{})
	Info(args ...interface{})
	Infof(template string, args ...interface{})
	Infow(msg string, keysAndValues ...interface{})
	Warn(args ...interface{})
	Warnf(template string, args ...interface{})
	Warnw(msg string, keysAndValues ...interface{})
	Error(args ...interface{})
	Errorf(template string, args ...interface{})
	Errorw(msg string, keysAndValues ...interface{})

	// Sublogger returns a logger whose name is this logger's name joined with subname.
	Sublogger(subname string) Logger
	SetLevel(level Level)
	GetLevel() Level
	AddAppender(appender Appender)
	// AsZap returns the underlying zap logger for libraries that require one.
	AsZap() *zap.SugaredLogger
	Sync() error
}

type logger struct {
	*zap.SugaredLogger
	name  string
	level zap.AtomicLevel
	out   *fanout
}

func newLogger(name string, level Level, out *fanout) *logger {
	atom := zap.NewAtomicLevelAt(level.AsZap())
	core := &fanoutCore{LevelEnabler: atom, out: out}
	return &logger{
		SugaredLogger: zap.New(core, zap.AddCaller()).Named(name).Sugar(),
		name:          name,
		level:         atom,
		out:           out,
	}
}

func (l *logger) Sublogger(subname string) Logger {
	name := subname
	if l.name != "" {
		name = l.name + "." + subname
	}
	return newLogger(name, l.GetLevel(), l.out)
}

func (l *logger) SetLevel(level Level) {
	l.level.SetLevel(level.AsZap())
}

func (l *logger) GetLevel() Level {
	return levelFromZap(l.level.Level())
}

func (l *logger) AddAppender(appender Appender) {
	l.out.add(appender)
}

func (l *logger) AsZap() *zap.SugaredLogger {
	return l.SugaredLogger
}

// fanout is the appender list shared by a logger tree.
type fanout struct {
	mu        sync.RWMutex
	appenders []Appender
	inUTC     bool
}

func (f *fanout) add(appender Appender) {
	f.mu.Lock()
	f.appenders = append(f.appenders, appender)
	f.mu.Unlock()
}

func (f *fanout) write(entry zapcore.Entry, fields []zapcore.Field) error {
	if f.inUTC {
		entry.Time = entry.Time.UTC()
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	var err error
	for _, appender := range f.appenders {
		err = multierr.Append(err, appender.Write(entry, fields))
	}
	return err
}

func (f *fanout) sync() error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	var err error
	for _, appender := range f.appenders {
		err = multierr.Append(err, appender.Sync())
	}
	return err
}

// fanoutCore adapts a fanout to zapcore.Core so the sugared API can drive it.
type fanoutCore struct {
	zapcore.LevelEnabler
	out    *fanout
	fields []zapcore.Field
}

func (c *fanoutCore) With(fields []zapcore.Field) zapcore.Core {
	merged := make([]zapcore.Field, 0, len(c.fields)+len(fields))
	merged = append(merged, c.fields...)
	return &fanoutCore{LevelEnabler: c.LevelEnabler, out: c.out, fields: append(merged, fields...)}
}

func (c *fanoutCore) Check(entry zapcore.Entry, checked *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(entry.Level) {
		return checked.AddCore(entry, c)
	}
	return checked
}

func (c *fanoutCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	if len(c.fields) > 0 {
		fields = append(append([]zapcore.Field{}, c.fields...), fields...)
	}
	return c.out.write(entry, fields)
}

func (c *fanoutCore) Sync() error {
	return c.out.sync()
}

// NewLogger returns a new logger that outputs Info+ logs to stdout in UTC.
func NewLogger(name string) Logger {
	return newLogger(name, INFO, &fanout{appenders: []Appender{NewStdoutAppender()}, inUTC: true})
}

// NewDebugLogger returns a new logger that outputs Debug+ logs to stdout in UTC.
func NewDebugLogger(name string) Logger {
	return newLogger(name, DEBUG, &fanout{appenders: []Appender{NewStdoutAppender()}, inUTC: true})
}

// NewBlankLogger returns a Debug+ logger in UTC without any appenders.
func NewBlankLogger(name string) Logger {
	return newLogger(name, DEBUG, &fanout{inUTC: true})
}

// NewTestLogger returns a new logger that outputs Debug+ logs to the test in local time.
func NewTestLogger(tb testing.TB) Logger {
	logger, _ := NewObservedTestLogger(tb)
	return logger
}

// NewObservedTestLogger is like NewTestLogger but also saves logs to an in memory observer.
func NewObservedTestLogger(tb testing.TB) (Logger, *observer.ObservedLogs) {
	observerCore, observedLogs := observer.New(zapcore.DebugLevel)
	out := &fanout{appenders: []Appender{&testAppender{tb}, observerCore}}
	return newLogger("", DEBUG, out), observedLogs
}

// testAppender writes each line with tb.Log so output stays attached to the test that produced it.
type testAppender struct {
	tb testing.TB
}

func (tapp *testAppender) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	tapp.tb.Helper()
	line, err := formatEntry(entry, fields)
	tapp.tb.Log(strings.TrimSuffix(line, "\n"))
	return err
}

func (tapp *testAppender) Sync() error {
	return nil
}
