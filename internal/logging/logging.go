// Package logging 包装 zap，提供带字段脱敏的结构化日志。
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger 是各组件共享的结构化日志入口（key/value 风格）。
type Logger struct {
	sugar *zap.SugaredLogger
}

// New 按运行模式构造 Logger。
// mode：production/prod 使用 JSON 输出；其余使用开发模式（彩色 console）。
// level：debug/info/warn/error，空串时 production 为 info、开发模式为 debug。
func New(mode, level string) (*Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
	}

	if strings.TrimSpace(level) != "" {
		var lvl zapcore.Level
		if err := lvl.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(level)))); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	z, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{sugar: z.Sugar()}, nil
}

// NewNop 返回丢弃所有输出的 Logger（测试与未配置时使用）。
func NewNop() *Logger {
	return &Logger{sugar: zap.NewNop().Sugar()}
}

// OrNop 让组件可以接受 nil Logger。
func OrNop(l *Logger) *Logger {
	if l == nil {
		return NewNop()
	}
	return l
}

func (l *Logger) Sync() { _ = l.sugar.Sync() }

func (l *Logger) Debug(msg string, kv ...any) { l.sugar.Debugw(msg, sanitize(kv)...) }
func (l *Logger) Info(msg string, kv ...any)  { l.sugar.Infow(msg, sanitize(kv)...) }
func (l *Logger) Warn(msg string, kv ...any)  { l.sugar.Warnw(msg, sanitize(kv)...) }
func (l *Logger) Error(msg string, kv ...any) { l.sugar.Errorw(msg, sanitize(kv)...) }

// With 返回附带固定字段的子 Logger（例如 component、request_id）。
func (l *Logger) With(kv ...any) *Logger {
	return &Logger{sugar: l.sugar.With(sanitize(kv)...)}
}

// Component 是 With("component", name) 的简写。
func (l *Logger) Component(name string) *Logger {
	return l.With("component", name)
}

const redacted = "[REDACTED]"

func sanitize(kv []any) []any {
	if len(kv) == 0 {
		return kv
	}
	out := make([]any, 0, len(kv))
	for i := 0; i < len(kv); i += 2 {
		if i == len(kv)-1 {
			out = append(out, kv[i])
			break
		}
		key := fmt.Sprint(kv[i])
		if isSecretKey(key) {
			out = append(out, key, redacted)
			continue
		}
		out = append(out, key, kv[i+1])
	}
	return out
}

func isSecretKey(key string) bool {
	k := strings.ToLower(strings.TrimSpace(key))
	for _, s := range []string{"token", "secret", "salt", "password", "authorization", "api_key", "apikey", "signature"} {
		if strings.Contains(k, s) {
			return true
		}
	}
	return false
}
