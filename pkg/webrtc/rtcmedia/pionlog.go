package rtcmedia

import (
	"fmt"

	"github.com/pion/logging"
	"go.uber.org/zap"
)

// ZapLoggerFactory routes pion's internal logging into zap.
type ZapLoggerFactory struct {
	Logger *zap.Logger
}

func NewZapLoggerFactory(l *zap.Logger) *ZapLoggerFactory {
	if l == nil {
		l = zap.NewNop()
	}
	return &ZapLoggerFactory{Logger: l}
}

func (f *ZapLoggerFactory) NewLogger(scope string) logging.LeveledLogger {
	return &zapLeveledLogger{l: f.Logger.With(zap.String("scope", scope))}
}

// pion trace output is folded into debug
type zapLeveledLogger struct {
	l *zap.Logger
}

func (z *zapLeveledLogger) Trace(msg string) { z.l.Debug(msg) }
func (z *zapLeveledLogger) Tracef(format string, args ...interface{}) {
	z.l.Debug(fmt.Sprintf(format, args...))
}
func (z *zapLeveledLogger) Debug(msg string) { z.l.Debug(msg) }
func (z *zapLeveledLogger) Debugf(format string, args ...interface{}) {
	z.l.Debug(fmt.Sprintf(format, args...))
}
func (z *zapLeveledLogger) Info(msg string) { z.l.Info(msg) }
func (z *zapLeveledLogger) Infof(format string, args ...interface{}) {
	z.l.Info(fmt.Sprintf(format, args...))
}
func (z *zapLeveledLogger) Warn(msg string) { z.l.Warn(msg) }
func (z *zapLeveledLogger) Warnf(format string, args ...interface{}) {
	z.l.Warn(fmt.Sprintf(format, args...))
}
func (z *zapLeveledLogger) Error(msg string) { z.l.Error(msg) }
func (z *zapLeveledLogger) Errorf(format string, args ...interface{}) {
	z.l.Error(fmt.Sprintf(format, args...))
}
