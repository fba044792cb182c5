package utils

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a thin key/value wrapper around zap's sugared logger.
type Logger struct {
	sugar *zap.SugaredLogger
}

// InitLogger builds a production logger for "prod" and a development logger otherwise.
func InitLogger(mode string) (*Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(mode) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	case "test":
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	default:
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.InitialFields = map[string]interface{}{"app": "katuripu"}

	zl, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}
	return &Logger{sugar: zl.Sugar()}, nil
}

// NewNopLogger discards everything.
func NewNopLogger() *Logger {
	return &Logger{sugar: zap.NewNop().Sugar()}
}

func (l *Logger) Debug(msg string, kv ...interface{}) { l.sugar.Debugw(msg, redact(kv)...) }
func (l *Logger) Info(msg string, kv ...interface{})  { l.sugar.Infow(msg, redact(kv)...) }
func (l *Logger) Warn(msg string, kv ...interface{})  { l.sugar.Warnw(msg, redact(kv)...) }
func (l *Logger) Error(msg string, kv ...interface{}) { l.sugar.Errorw(msg, redact(kv)...) }
func (l *Logger) Fatal(msg string, kv ...interface{}) { l.sugar.Fatalw(msg, redact(kv)...) }

func (l *Logger) With(kv ...interface{}) *Logger {
	return &Logger{sugar: l.sugar.With(redact(kv)...)}
}

// Zap exposes the underlying logger, e.g. to bridge gorm's logger.
func (l *Logger) Zap() *zap.Logger {
	return l.sugar.Desugar()
}

func (l *Logger) Sync() {
	_ = l.sugar.Sync()
}

func redact(kv []interface{}) []interface{} {
	if len(kv) == 0 {
		return kv
	}
	out := make([]interface{}, len(kv))
	copy(out, kv)
	for i := 0; i+1 < len(out); i += 2 {
		if isSensitiveKey(fmt.Sprint(out[i])) {
			out[i+1] = "[REDACTED]"
		}
	}
	return out
}

func isSensitiveKey(key string) bool {
	key = strings.ToLower(key)
	for _, s := range []string{"password", "token", "secret", "authorization"} {
		if strings.Contains(key, s) {
			return true
		}
	}
	return false
}
