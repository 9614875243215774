package logging

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the structured logger handed to the evaluator and the command line tool.
type Logger interface {
	// Sublogger returns a child named "<parent>.<name>" that shares the parent's appenders.
	Sublogger(name string) Logger
	AddAppender(appender Appender)
	SetLevel(level Level)
	GetLevel() Level

	Debugw(msg string, keysAndValues ...interface{})
	Info(args ...interface{})
	Infow(msg string, keysAndValues ...interface{})
	Warn(args ...interface{})
	Warnw(msg string, keysAndValues ...interface{})
	Errorw(msg string, keysAndValues ...interface{})
}

const unpairedValue = "(missing value)"

type logger struct {
	name      string
	level     AtomicLevel
	utc       bool
	appenders []Appender
}

func newLogger(name string, level Level, utc bool, appenders ...Appender) *logger {
	return &logger{name: name, level: NewAtomicLevelAt(level), utc: utc, appenders: appenders}
}

func (l *logger) Sublogger(name string) Logger {
	if l.name != "" {
		name = l.name + "." + name
	}
	return newLogger(name, l.level.Get(), l.utc, l.appenders...)
}

func (l *logger) AddAppender(appender Appender) {
	l.appenders = append(l.appenders, appender)
}

func (l *logger) SetLevel(level Level) {
	l.level.Set(level)
}

func (l *logger) GetLevel() Level {
	return l.level.Get()
}

func (l *logger) Debugw(msg string, keysAndValues ...interface{}) {
	l.emit(DEBUG, msg, keysAndValues)
}

func (l *logger) Info(args ...interface{}) {
	l.emit(INFO, fmt.Sprint(args...), nil)
}

func (l *logger) Infow(msg string, keysAndValues ...interface{}) {
	l.emit(INFO, msg, keysAndValues)
}

func (l *logger) Warn(args ...interface{}) {
	l.emit(WARN, fmt.Sprint(args...), nil)
}

func (l *logger) Warnw(msg string, keysAndValues ...interface{}) {
	l.emit(WARN, msg, keysAndValues)
}

func (l *logger) Errorw(msg string, keysAndValues ...interface{}) {
	l.emit(ERROR, msg, keysAndValues)
}

// emit must be called directly from the exported method so that the caller frame lines up.
func (l *logger) emit(level Level, msg string, keysAndValues []interface{}) {
	if level < l.level.Get() {
		return
	}
	entry := zapcore.Entry{
		Level:      level.AsZap(),
		Time:       time.Now(),
		LoggerName: l.name,
		Message:    msg,
		Caller:     caller(3),
	}
	if l.utc {
		entry.Time = entry.Time.UTC()
	}
	fields := toFields(keysAndValues)
	for _, appender := range l.appenders {
		if err := appender.Write(entry, fields); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}
}

// toFields pairs keys with the value that follows them. A trailing key without a value is kept
// with a placeholder value so it still shows up in the output.
func toFields(keysAndValues []interface{}) []zapcore.Field {
	if len(keysAndValues) == 0 {
		return nil
	}
	fields := make([]zapcore.Field, 0, (len(keysAndValues)+1)/2)
	for i := 0; i < len(keysAndValues); i += 2 {
		key := fmt.Sprint(keysAndValues[i])
		if i+1 == len(keysAndValues) {
			fields = append(fields, zap.String(key, unpairedValue))
			break
		}
		fields = append(fields, zap.Any(key, keysAndValues[i+1]))
	}
	return fields
}

func caller(skip int) zapcore.EntryCaller {
	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		return zapcore.EntryCaller{}
	}
	ec := zapcore.EntryCaller{Defined: true, PC: pc, File: file, Line: line}
	if fn := runtime.FuncForPC(pc); fn != nil {
		ec.Function = fn.Name()
	}
	return ec
}
