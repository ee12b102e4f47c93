// Package validator 封装 go-playground/validator，提供中英文错误翻译
package validator

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
)

// Validator 定义校验器接口
type Validator interface {
	// Struct 校验结构体
	Struct(s any) error
	// StructCtx 带上下文校验结构体
	StructCtx(ctx context.Context, s any) error
	// Var 校验单个变量
	Var(field any, tag string) error
}

// Rule 自定义校验规则，Messages 按语言给出错误模板，{0} 为字段名
type Rule struct {
	Tag      string
	Func     validator.Func
	Messages map[string]string
}

// Option 校验器选项
type Option func(*Validate)

// WithTagName 设置校验标签名
func WithTagName(tagName string) Option {
	return func(v *Validate) {
		v.validate.SetTagName(tagName)
	}
}

// WithLanguage 设置错误信息的语言，支持 en 与 zh
func WithLanguage(lang string) Option {
	return func(v *Validate) {
		v.lang = lang
	}
}

// WithRules 注册自定义校验规则
func WithRules(rules ...Rule) Option {
	return func(v *Validate) {
		v.rules = append(v.rules, rules...)
	}
}

// Validate 校验器实现，创建后只读，可并发使用
type Validate struct {
	validate    *validator.Validate
	translators map[string]ut.Translator
	lang        string
	rules       []Rule
}

// Default 默认校验器
var Default = New()

// New 创建新的校验器实例
func New(opts ...Option) *Validate {
	v := &Validate{
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		translators: make(map[string]ut.Translator, 2),
		lang:        "en",
	}
	for _, opt := range opts {
		opt(v)
	}

	enLocale, zhLocale := en.New(), zh.New()
	uni := ut.New(enLocale, enLocale, zhLocale)

	if trans, ok := uni.GetTranslator("en"); ok {
		_ = en_translations.RegisterDefaultTranslations(v.validate, trans)
		v.translators["en"] = trans
	}
	if trans, ok := uni.GetTranslator("zh"); ok {
		_ = zh_translations.RegisterDefaultTranslations(v.validate, trans)
		v.translators["zh"] = trans
	}

	for _, rule := range v.rules {
		if err := v.register(rule); err != nil {
			panic(err)
		}
	}
	return v
}

func (v *Validate) register(rule Rule) error {
	if err := v.validate.RegisterValidation(rule.Tag, rule.Func); err != nil {
		return fmt.Errorf("register rule %q: %w", rule.Tag, err)
	}

	for lang, msg := range rule.Messages {
		trans, ok := v.translators[lang]
		if !ok {
			continue
		}
		err := v.validate.RegisterTranslation(rule.Tag, trans,
			func(ut ut.Translator) error {
				return ut.Add(rule.Tag, msg, true)
			},
			func(ut ut.Translator, fe validator.FieldError) string {
				t, _ := ut.T(fe.Tag(), fe.Field())
				return t
			},
		)
		if err != nil {
			return fmt.Errorf("register translation %q/%s: %w", rule.Tag, lang, err)
		}
	}
	return nil
}

// Struct 校验结构体
func (v *Validate) Struct(s any) error {
	return v.StructCtx(context.Background(), s)
}

// StructCtx 带上下文校验结构体
func (v *Validate) StructCtx(ctx context.Context, s any) error {
	if s == nil {
		return errors.New("validation target cannot be nil")
	}
	return v.translate(v.validate.StructCtx(ctx, s))
}

// Var 校验单个变量
func (v *Validate) Var(field any, tag string) error {
	return v.translate(v.validate.Var(field, tag))
}

func (v *Validate) translate(err error) error {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return err
	}

	trans, ok := v.translators[v.lang]
	if !ok {
		trans = v.translators["en"]
	}

	out := &ValidationErrors{fields: make([]FieldError, 0, len(ves))}
	for _, fe := range ves {
		out.fields = append(out.fields, FieldError{
			fe:          fe,
			message:     fe.Translate(trans),
			translators: v.translators,
		})
	}
	return out
}
