package validator

import (
	"fmt"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// engineConfig 测试用配置结构体
type engineConfig struct {
	Mode     string `validate:"required,mode"`
	Encoding string `validate:"oneof=der plain"`
	UserID   string `validate:"max=8191"`
	Dirpath  string `validate:"required"`
}

var modeRule = Rule{
	Tag: "mode",
	Func: func(fl validator.FieldLevel) bool {
		s := strings.ToUpper(fl.Field().String())
		return s == "C1C3C2" || s == "C1C2C3"
	},
	Messages: map[string]string{
		"en": "{0} must be C1C3C2 or C1C2C3",
		"zh": "{0}必须为C1C3C2或C1C2C3",
	},
}

func valid() engineConfig {
	return engineConfig{Mode: "C1C3C2", Encoding: "der", UserID: "1234567812345678", Dirpath: "."}
}

// TestValidatorCreation 测试校验器创建
func TestValidatorCreation(t *testing.T) {
	assert.NotNil(t, Default)
	assert.NotNil(t, New(WithTagName("validate"), WithLanguage("zh")))
	assert.Panics(t, func() {
		New(WithRules(Rule{Tag: "", Func: modeRule.Func}))
	})
}

// TestBasicValidation 测试基本校验功能
func TestBasicValidation(t *testing.T) {
	v := New(WithRules(modeRule))
	c := valid()
	assert.NoError(t, v.Struct(&c))

	c.Mode = "c1c2c3"
	assert.NoError(t, v.Struct(&c))

	assert.Error(t, v.Struct(nil))
}

// TestValidationErrors 测试校验错误
func TestValidationErrors(t *testing.T) {
	v := New(WithRules(modeRule))

	c := engineConfig{Mode: "C3C1C2", Encoding: "pem", UserID: strings.Repeat("a", 8192)}
	err := v.Struct(&c)
	require.Error(t, err)

	ve, ok := AsValidationErrors(err)
	require.True(t, ok)
	assert.Len(t, ve.Errors(), 4)

	fe, ok := ve.Field("Mode")
	require.True(t, ok)
	assert.Equal(t, "mode", fe.Tag())
	assert.Equal(t, "C3C1C2", fe.Value())
	assert.Equal(t, "Mode must be C1C3C2 or C1C2C3", fe.Message())
	assert.Equal(t, "Mode必须为C1C3C2或C1C2C3", fe.Translate("zh"))
	assert.Equal(t, fe.Message(), fe.Translate("fr"))

	assert.True(t, HasFieldError(fmt.Errorf("load: %w", err), "Dirpath"))
	assert.False(t, HasFieldError(err, "NonExistent"))
	assert.False(t, HasFieldError(fmt.Errorf("plain"), "Mode"))
}

// TestChineseTranslation 测试中文翻译
func TestChineseTranslation(t *testing.T) {
	v := New(WithLanguage("zh"), WithRules(modeRule))

	c := valid()
	c.Dirpath = ""
	err := v.Struct(&c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Dirpath为必填字段")
}

// TestEnglishTranslation 测试英文翻译
func TestEnglishTranslation(t *testing.T) {
	c := valid()
	c.Encoding = "pem"
	err := New(WithRules(modeRule)).Struct(&c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Encoding must be one of [der plain]")
}

// TestValidateVar 测试单个变量校验
func TestValidateVar(t *testing.T) {
	v := New(WithRules(modeRule))

	assert.NoError(t, v.Var("C1C2C3", "mode"))
	assert.Error(t, v.Var("C2", "mode"))
	assert.Error(t, v.Var("", "required"))
	assert.NoError(t, v.Var("not empty", "required"))
}

// TestConcurrentAccess 测试并发访问
func TestConcurrentAccess(t *testing.T) {
	v := New(WithRules(modeRule))

	done := make(chan error, 10)
	for i := 0; i < 10; i++ {
		go func(i int) {
			c := valid()
			c.Dirpath = fmt.Sprintf("keys-%d", i)
			done <- v.Struct(&c)
		}(i)
	}

	for i := 0; i < 10; i++ {
		assert.NoError(t, <-done)
	}
}

// BenchmarkValidation 基准测试
func BenchmarkValidation(b *testing.B) {
	v := New(WithRules(modeRule))
	c := valid()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = v.Struct(&c)
	}
}
