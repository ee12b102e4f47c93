package log

import (
	"sync/atomic"

	"github.com/rs/zerolog"
)

// global 全局日志实例，默认输出到控制台
var global atomic.Pointer[Logger]

func init() {
	global.Store(New(WithLevel(zerolog.InfoLevel)))
}

// L 返回全局日志记录器
func L() *Logger {
	return global.Load()
}

// SetGlobalLogger 替换全局日志记录器，nil 会被忽略
func SetGlobalLogger(logger *Logger) {
	if logger != nil {
		global.Store(logger)
	}
}

// SetGlobalLevel 调整全局日志级别
func SetGlobalLevel(level zerolog.Level) {
	old := global.Load()
	global.Store(&Logger{
		Logger:   old.Logger.Level(level),
		redactor: old.redactor,
		closer:   old.closer,
	})
}

// Debug 返回 debug 级别的日志事件
func Debug() *zerolog.Event {
	return L().Debug()
}

// Info 返回 info 级别的日志事件
func Info() *zerolog.Event {
	return L().Info()
}

// Warn 返回 warn 级别的日志事件
func Warn() *zerolog.Event {
	return L().Warn()
}

// Error 返回 error 级别的日志事件（带堆栈）
func Error() *zerolog.Event {
	return L().Error().Stack()
}

// Fatal 返回 fatal 级别的日志事件（带堆栈）
func Fatal() *zerolog.Event {
	return L().Fatal().Stack()
}

// Debugf 格式化输出 debug 日志
func Debugf(format string, args ...any) {
	L().Debug().Msgf(format, args...)
}

// Infof 格式化输出 info 日志
func Infof(format string, args ...any) {
	L().Info().Msgf(format, args...)
}

// Warnf 格式化输出 warn 日志
func Warnf(format string, args ...any) {
	L().Warn().Msgf(format, args...)
}

// Errorf 格式化输出 error 日志（带堆栈）
func Errorf(format string, args ...any) {
	L().Error().Stack().Msgf(format, args...)
}
