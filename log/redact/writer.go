package redact

import (
	"io"

	"github.com/kochabx/smkit/log/internal"
)

// Writer 在写入下游前对内容脱敏
type Writer struct {
	writer   io.Writer
	redactor *Redactor
}

// NewWriter 创建脱敏 writer
func NewWriter(writer io.Writer, redactor *Redactor) *Writer {
	if writer == nil {
		panic("writer cannot be nil")
	}
	if redactor == nil {
		panic("redactor cannot be nil")
	}

	return &Writer{
		writer:   writer,
		redactor: redactor,
	}
}

// Write 实现 io.Writer 接口，成功时返回 len(p)
func (w *Writer) Write(p []byte) (int, error) {
	if len(p) == 0 || w.redactor.Len() == 0 {
		return w.writer.Write(p)
	}

	text := string(p)
	redacted := w.redactor.Redact(text)
	if redacted == text {
		return w.writer.Write(p)
	}

	buf := internal.GetBuffer()
	defer internal.PutBuffer(buf)

	buf.WriteString(redacted)
	if _, err := w.writer.Write(buf.Bytes()); err != nil {
		return 0, err
	}
	return len(p), nil
}
