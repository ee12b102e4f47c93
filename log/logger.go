package log

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"

	"github.com/kochabx/smkit/core/tag"
	"github.com/kochabx/smkit/log/redact"
	"github.com/kochabx/smkit/log/writer"
)

// Logger 日志记录器
type Logger struct {
	zerolog.Logger
	redactor *redact.Redactor
	closer   io.Closer // 用于资源清理
}

// Redactor 获取脱敏器，未启用时返回 nil
func (l *Logger) Redactor() *redact.Redactor {
	return l.redactor
}

// Close 关闭日志记录器，释放资源
func (l *Logger) Close() error {
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}

func init() {
	zerolog.TimeFieldFormat = time.DateTime
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
}

// newLogger 统一的 Logger 构建方法
func newLogger(w io.Writer, opts ...Option) *Logger {
	o := &options{level: zerolog.TraceLevel}
	for _, opt := range opts {
		opt(o)
	}

	// 脱敏 writer 必须位于最外层，保证所有输出都经过过滤
	if o.redactor != nil {
		w = redact.NewWriter(w, o.redactor)
	}

	ctx := zerolog.New(w).Level(o.level).With().Timestamp()
	switch {
	case o.callerSkip > 0:
		ctx = ctx.CallerWithSkipFrameCount(o.callerSkip)
	case o.caller:
		ctx = ctx.Caller()
	}

	return &Logger{
		Logger:   ctx.Logger(),
		redactor: o.redactor,
	}
}

// New 创建新的 Logger 实例，输出到控制台（stderr）
func New(opts ...Option) *Logger {
	return newLogger(writer.Console(), opts...)
}

// NewWithWriter 创建输出 JSON 到任意 writer 的 Logger
func NewWithWriter(w io.Writer, opts ...Option) *Logger {
	return newLogger(w, opts...)
}

// NewFile 创建文件输出的 Logger
func NewFile(c FileConfig, opts ...Option) (*Logger, error) {
	fw, err := newFileWriter(&c)
	if err != nil {
		return nil, err
	}

	logger := newLogger(fw, opts...)
	if closer, ok := fw.(io.Closer); ok {
		logger.closer = closer
	}
	return logger, nil
}

// NewMulti 创建同时输出到文件和控制台的 Logger
func NewMulti(c FileConfig, opts ...Option) (*Logger, error) {
	fw, err := newFileWriter(&c)
	if err != nil {
		return nil, err
	}

	logger := newLogger(zerolog.MultiLevelWriter(fw, writer.Console()), opts...)
	if closer, ok := fw.(io.Closer); ok {
		logger.closer = closer
	}
	return logger, nil
}

// NewFromConfig 按配置创建 Logger，供命令行使用
func NewFromConfig(c Config) (*Logger, error) {
	if err := tag.ApplyDefaults(&c); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}

	level, err := zerolog.ParseLevel(c.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", c.Level, err)
	}

	opts := []Option{WithLevel(level)}
	if c.Caller {
		opts = append(opts, WithCaller())
	}
	if c.Redact == nil || *c.Redact {
		opts = append(opts, WithRedact(redact.Default()))
	}

	switch c.Output {
	case OutputConsole:
		return New(opts...), nil
	case OutputJSON:
		return NewWithWriter(writer.Stderr(), opts...), nil
	case OutputFile:
		return NewFile(c.File, opts...)
	case OutputMulti:
		return NewMulti(c.File, opts...)
	default:
		return nil, fmt.Errorf("unsupported log output: %q", c.Output)
	}
}

func newFileWriter(c *FileConfig) (io.Writer, error) {
	if err := tag.ApplyDefaults(c); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}

	w, err := writer.File(c.toWriterConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create file writer: %w", err)
	}
	return w, nil
}
