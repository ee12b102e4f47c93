// Package redact 在日志写出前遮蔽密钥材料
package redact

import (
	"slices"
	"sync"
)

// Redactor 按注册顺序依次应用规则
type Redactor struct {
	mu    sync.RWMutex
	rules []Rule
}

// New 创建脱敏器，可直接传入初始规则
func New(rules ...Rule) *Redactor {
	r := &Redactor{}
	r.Add(rules...)
	return r
}

// Default 创建包含全部内置密钥规则的脱敏器
func Default() *Redactor {
	return New(BuiltinRules()...)
}

// Add 追加规则，同名规则会被替换
func (r *Redactor) Add(rules ...Rule) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, rule := range rules {
		if rule == nil {
			continue
		}
		if i := r.indexLocked(rule.Name()); i >= 0 {
			r.rules[i] = rule
			continue
		}
		r.rules = append(r.rules, rule)
	}
}

// AddContentRule 添加基于内容匹配的规则
func (r *Redactor) AddContentRule(name, pattern, replacement string) error {
	rule, err := NewContentRule(name, pattern, replacement)
	if err != nil {
		return err
	}
	r.Add(rule)
	return nil
}

// AddFieldRule 添加基于 JSON 字段名匹配的规则
func (r *Redactor) AddFieldRule(name, fieldName, replacement string) error {
	rule, err := NewFieldRule(name, fieldName, replacement)
	if err != nil {
		return err
	}
	r.Add(rule)
	return nil
}

// Remove 移除规则
func (r *Redactor) Remove(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexLocked(name)
	if i < 0 {
		return false
	}
	r.rules = slices.Delete(r.rules, i, i+1)
	return true
}

// Rule 获取指定规则
func (r *Redactor) Rule(name string) (Rule, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if i := r.indexLocked(name); i >= 0 {
		return r.rules[i], true
	}
	return nil, false
}

// Names 按应用顺序列出规则名称
func (r *Redactor) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.rules))
	for _, rule := range r.rules {
		names = append(names, rule.Name())
	}
	return names
}

// Len 返回规则数量
func (r *Redactor) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rules)
}

func (r *Redactor) indexLocked(name string) int {
	return slices.IndexFunc(r.rules, func(rule Rule) bool {
		return rule.Name() == name
	})
}

// Redact 对字符串应用所有启用的规则
func (r *Redactor) Redact(s string) string {
	if s == "" {
		return s
	}

	r.mu.RLock()
	rules := slices.Clone(r.rules)
	r.mu.RUnlock()

	for _, rule := range rules {
		if rule.Enabled() {
			s = rule.Process(s)
		}
	}
	return s
}
