// Package tag fills zero-valued struct fields from `default` struct tags.
package tag

import (
	"reflect"
)

const (
	defaultTagName  = "default"
	defaultMaxDepth = 16
)

// Option configures ApplyDefaults.
type Option func(*walker)

// WithTagName reads defaults from a tag other than `default`.
func WithTagName(name string) Option {
	return func(w *walker) {
		w.tagName = name
	}
}

// WithMaxDepth bounds recursion into nested structs.
func WithMaxDepth(depth int) Option {
	return func(w *walker) {
		w.maxDepth = depth
	}
}

// ApplyDefaults sets default values for zero fields of the struct target
// points to. Fields that already hold a value are left alone, nested structs
// and pointers to structs are walked recursively.
//
//	type KeyConfig struct {
//	    Dirpath string `default:"."`
//	    Mode    string `default:"C1C3C2"`
//	}
//	err := tag.ApplyDefaults(&cfg)
func ApplyDefaults(target any, opts ...Option) error {
	w := &walker{
		tagName:  defaultTagName,
		maxDepth: defaultMaxDepth,
	}
	for _, opt := range opts {
		opt(w)
	}

	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Pointer {
		return ErrTargetMustBePointer
	}
	if v.IsNil() {
		return ErrTargetIsNil
	}
	if v.Elem().Kind() != reflect.Struct {
		return ErrUnsupportedType
	}
	return w.walkStruct(v.Elem(), "", 0)
}

type walker struct {
	tagName  string
	maxDepth int
}

func (w *walker) walkStruct(v reflect.Value, path string, depth int) error {
	if depth >= w.maxDepth {
		return ErrMaxDepthExceeded
	}

	t := v.Type()
	for i := range t.NumField() {
		field := t.Field(i)
		fv := v.Field(i)
		if !fv.CanSet() {
			continue
		}

		fieldPath := field.Name
		if path != "" {
			fieldPath = path + "." + field.Name
		}
		if err := w.walkField(fv, field.Tag.Get(w.tagName), fieldPath, depth); err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) walkField(v reflect.Value, tagValue, path string, depth int) error {
	switch {
	case v.Kind() == reflect.Struct && !isTextValue(v):
		return w.walkStruct(v, path, depth+1)

	case v.Kind() == reflect.Pointer && v.Type().Elem().Kind() == reflect.Struct:
		if v.IsNil() {
			v.Set(reflect.New(v.Type().Elem()))
		}
		return w.walkStruct(v.Elem(), path, depth+1)

	case tagValue == "" || !v.IsZero():
		return nil

	case v.Kind() == reflect.Pointer:
		elem := reflect.New(v.Type().Elem())
		if err := parseValue(elem.Elem(), tagValue); err != nil {
			return newFieldError(path, v.Kind(), w.tagName, tagValue, err)
		}
		v.Set(elem)
		return nil

	default:
		if err := parseValue(v, tagValue); err != nil {
			return newFieldError(path, v.Kind(), w.tagName, tagValue, err)
		}
		return nil
	}
}
