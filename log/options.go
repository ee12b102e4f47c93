package log

import (
	"github.com/rs/zerolog"

	"github.com/kochabx/smkit/log/redact"
)

// options Logger 构建参数
type options struct {
	level      zerolog.Level
	caller     bool
	callerSkip int
	redactor   *redact.Redactor
}

// Option Logger 选项函数
type Option func(*options)

// WithLevel 设置日志级别
func WithLevel(level zerolog.Level) Option {
	return func(o *options) {
		o.level = level
	}
}

// WithCaller 记录调用位置
func WithCaller() Option {
	return func(o *options) {
		o.caller = true
	}
}

// WithCallerSkip 记录调用位置并跳过指定帧数
func WithCallerSkip(skip int) Option {
	return func(o *options) {
		o.callerSkip = skip
	}
}

// WithRedact 设置脱敏器，输出前遮蔽密钥材料
func WithRedact(r *redact.Redactor) Option {
	return func(o *options) {
		o.redactor = r
	}
}
