package logx

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the base logger. Components derive their own with Component.
func New(verbose bool) (*zap.SugaredLogger, error) {
	zcfg := zap.NewDevelopmentConfig()
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	zcfg.DisableStacktrace = true
	zcfg.DisableCaller = !verbose
	zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)

	zl, err := zcfg.Build()
	if err != nil {
		return nil, err
	}
	return zl.Sugar(), nil
}

// Component returns a named child logger. Debug entries are only emitted
// when debug is true for that component.
func Component(base *zap.SugaredLogger, name string, debug bool) *zap.SugaredLogger {
	if base == nil {
		base = zap.NewNop().Sugar()
	}
	l := base.Named(name)
	if !debug {
		l = l.WithOptions(zap.IncreaseLevel(zapcore.InfoLevel))
	}
	return l
}

// Nop is used by tests and by callers that pass a nil logger.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.SugaredLogger) *zap.SugaredLogger {
	if l == nil {
		return Nop()
	}
	return l
}
