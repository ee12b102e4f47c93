package config

import (
	"io/fs"
	"path"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/kochabx/smkit/core/tag"
	"github.com/kochabx/smkit/core/validator"
	"github.com/kochabx/smkit/errors"
)

// DefaultFilename is the configuration file searched for by default
const DefaultFilename = "smkit.yaml"

// EnvPrefix prefixes environment overrides, e.g. SMKIT_ENGINE_MODE
const EnvPrefix = "SMKIT"

var (
	ErrConfigNotFound   = errors.NotFound("config file not found")
	ErrConfigParse      = errors.Internal("config parse error")
	ErrConfigDefaults   = errors.Internal("failed to apply defaults")
	ErrConfigValidation = errors.BadRequest("config validation failed")
)

// FileLoader loads configuration from a yaml/json/toml file
type FileLoader struct {
	viper    *viper.Viper
	validate validator.Validator
	optional bool
}

// FileLoaderOption configures a FileLoader
type FileLoaderOption func(*FileLoader)

// Optional lets Load succeed with defaults and env overrides when the file is missing
func Optional() FileLoaderOption {
	return func(l *FileLoader) {
		l.optional = true
	}
}

// NewFileLoader searches paths for a file called name
func NewFileLoader(name string, paths []string, v *viper.Viper, validate validator.Validator, opts ...FileLoaderOption) *FileLoader {
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetConfigName(name)
	v.SetConfigType(strings.TrimPrefix(path.Ext(name), "."))

	return newFileLoader(v, validate, opts)
}

// NewPathLoader reads exactly the file at file
func NewPathLoader(file string, v *viper.Viper, validate validator.Validator, opts ...FileLoaderOption) *FileLoader {
	v.SetConfigFile(file)
	return newFileLoader(v, validate, opts)
}

func newFileLoader(v *viper.Viper, validate validator.Validator, opts []FileLoaderOption) *FileLoader {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	l := &FileLoader{viper: v, validate: validate}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load implements Loader interface
func (l *FileLoader) Load(target any) error {
	// Defaults go in first so keys absent from the file keep them.
	if err := tag.ApplyDefaults(target); err != nil {
		return ErrConfigDefaults.WithCause(err)
	}

	if err := l.viper.ReadInConfig(); err != nil {
		if !l.optional || !isNotFound(err) {
			return ErrConfigNotFound.WithCause(err)
		}
	}

	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := l.viper.Unmarshal(target, hook); err != nil {
		return ErrConfigParse.WithCause(err)
	}

	if l.validate != nil {
		if err := l.validate.Struct(target); err != nil {
			return ErrConfigValidation.WithCause(err)
		}
	}

	return nil
}

// Watch implements Loader interface
func (l *FileLoader) Watch(callback func()) error {
	if l.viper.ConfigFileUsed() == "" {
		return ErrConfigNotFound
	}

	l.viper.OnConfigChange(func(fsnotify.Event) {
		if callback != nil {
			callback()
		}
	})
	l.viper.WatchConfig()
	return nil
}

func isNotFound(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
}
