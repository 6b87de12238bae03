package logger

import (
	"sort"

	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
)

// Sink receives a labelled diagnostic record at each major session transition.
type Sink interface {
	Record(label string, fields map[string]interface{})
}

// SinkFunc adapts a plain function to Sink.
type SinkFunc func(label string, fields map[string]interface{})

func (f SinkFunc) Record(label string, fields map[string]interface{}) {
	f(label, fields)
}

// ZapSink writes records through a zap logger at debug level.
type ZapSink struct {
	L *zap.Logger
}

func NewZapSink(l *zap.Logger) *ZapSink {
	if l == nil {
		l = Named("diagnostic")
	}
	return &ZapSink{L: l}
}

func (s *ZapSink) Record(label string, fields map[string]interface{}) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	zf := make([]zap.Field, 0, len(keys))
	for _, k := range keys {
		zf = append(zf, zap.Any(k, fields[k]))
	}
	s.L.Debug(label, zf...)
}

// LogrusSink writes records through a logrus logger.
type LogrusSink struct {
	L *logrus.Logger
}

func NewLogrusSink(l *logrus.Logger) *LogrusSink {
	if l == nil {
		l = logrus.StandardLogger()
	}
	return &LogrusSink{L: l}
}

func (s *LogrusSink) Record(label string, fields map[string]interface{}) {
	s.L.WithFields(logrus.Fields(fields)).Info(label)
}

// Emit hands a record to sink. A panicking sink is logged and otherwise ignored.
func Emit(sink Sink, label string, fields map[string]interface{}) {
	if sink == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			Warn("diagnostic sink panicked", zap.String("label", label), zap.Any("panic", r))
		}
	}()
	sink.Record(label, fields)
}
