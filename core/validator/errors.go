package validator

import (
	"errors"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
)

// ValidationErrors 已翻译的校验错误集合
type ValidationErrors struct {
	fields []FieldError
}

func (e *ValidationErrors) Error() string {
	msgs := make([]string, 0, len(e.fields))
	for _, f := range e.fields {
		msgs = append(msgs, f.Message())
	}
	return strings.Join(msgs, "; ")
}

// Errors 返回字段错误列表
func (e *ValidationErrors) Errors() []FieldError {
	return e.fields
}

// Field 查找指定字段的错误
func (e *ValidationErrors) Field(name string) (FieldError, bool) {
	for _, f := range e.fields {
		if f.Field() == name || f.Namespace() == name {
			return f, true
		}
	}
	return FieldError{}, false
}

// FieldError 单个字段的校验错误
type FieldError struct {
	fe          validator.FieldError
	message     string
	translators map[string]ut.Translator
}

// Field 字段名
func (f FieldError) Field() string { return f.fe.Field() }

// Namespace 带结构体路径的字段名，例如 Config.Engine.Mode
func (f FieldError) Namespace() string { return f.fe.Namespace() }

// Tag 校验标签
func (f FieldError) Tag() string { return f.fe.Tag() }

// Value 字段值
func (f FieldError) Value() any { return f.fe.Value() }

// Message 错误消息
func (f FieldError) Message() string { return f.message }

// Translate 使用指定语言翻译错误消息
func (f FieldError) Translate(lang string) string {
	if trans, ok := f.translators[lang]; ok {
		return f.fe.Translate(trans)
	}
	return f.message
}

// AsValidationErrors 从错误链中提取校验错误
func AsValidationErrors(err error) (*ValidationErrors, bool) {
	var ve *ValidationErrors
	ok := errors.As(err, &ve)
	return ve, ok
}

// HasFieldError 检查是否存在指定字段的错误
func HasFieldError(err error, field string) bool {
	ve, ok := AsValidationErrors(err)
	if !ok {
		return false
	}
	_, found := ve.Field(field)
	return found
}
