package tag

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fileConfig struct {
	Filepath string        `default:"log"`
	MaxSize  int           `default:"100"`
	Compress *bool         `default:"true"`
	Ratio    float64       `default:"0.5"`
	Interval time.Duration `default:"1h"`
	Levels   []string      `default:"info,warn"`
}

type keyConfig struct {
	Dirpath string `default:"."`
	Mode    string `default:"C1C3C2"`
	File    fileConfig
	Extra   *fileConfig
	skipped string `default:"nope"`
}

func TestApplyDefaults(t *testing.T) {
	var c keyConfig
	require.NoError(t, ApplyDefaults(&c))

	assert.Equal(t, ".", c.Dirpath)
	assert.Equal(t, "C1C3C2", c.Mode)
	assert.Equal(t, "log", c.File.Filepath)
	assert.Equal(t, 100, c.File.MaxSize)
	require.NotNil(t, c.File.Compress)
	assert.True(t, *c.File.Compress)
	assert.Equal(t, 0.5, c.File.Ratio)
	assert.Equal(t, time.Hour, c.File.Interval)
	assert.Equal(t, []string{"info", "warn"}, c.File.Levels)
	require.NotNil(t, c.Extra)
	assert.Equal(t, "log", c.Extra.Filepath)
	assert.Empty(t, c.skipped)
}

func TestApplyDefaultsKeepsValues(t *testing.T) {
	off := false
	c := keyConfig{Mode: "C1C2C3", File: fileConfig{MaxSize: 5, Compress: &off}}
	require.NoError(t, ApplyDefaults(&c))

	assert.Equal(t, "C1C2C3", c.Mode)
	assert.Equal(t, 5, c.File.MaxSize)
	assert.False(t, *c.File.Compress)
}

func TestApplyDefaultsErrors(t *testing.T) {
	var c keyConfig
	assert.ErrorIs(t, ApplyDefaults(c), ErrTargetMustBePointer)
	assert.ErrorIs(t, ApplyDefaults((*keyConfig)(nil)), ErrTargetIsNil)

	n := 1
	assert.ErrorIs(t, ApplyDefaults(&n), ErrUnsupportedType)

	var bad struct {
		Size int `default:"big"`
	}
	err := ApplyDefaults(&bad)
	var fe *FieldError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "Size", fe.Path)
}

func TestWithTagName(t *testing.T) {
	var c struct {
		Name string `env:"smkit"`
	}
	require.NoError(t, ApplyDefaults(&c, WithTagName("env")))
	assert.Equal(t, "smkit", c.Name)
}
