package cmd

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/kochabx/smkit/core/crypto/sm2"
	"github.com/kochabx/smkit/core/crypto/sm2/curve"
	validate "github.com/kochabx/smkit/core/validator"
	"github.com/kochabx/smkit/log"
)

// Config is the layout of smkit.yaml.
type Config struct {
	Engine EngineConfig `mapstructure:"engine"`
	Keys   KeysConfig   `mapstructure:"keys"`
	HMAC   HMACConfig   `mapstructure:"hmac"`
	Log    log.Config   `mapstructure:"log"`
}

// EngineConfig selects the SM2 engine options.
type EngineConfig struct {
	Mode      string `mapstructure:"mode" default:"C1C3C2" validate:"sm2mode"`
	Encoding  string `mapstructure:"encoding" default:"der" validate:"sm2encoding"`
	UserID    string `mapstructure:"user_id" default:"1234567812345678" validate:"sm2uid"`
	PointForm string `mapstructure:"point_form" default:"uncompressed" validate:"pointform"`
	Format    string `mapstructure:"format" default:"hex" validate:"oneof=hex base64 raw"`
}

// KeysConfig locates the PEM key files.
type KeysConfig struct {
	Dirpath    string `mapstructure:"dirpath" default:"." validate:"required"`
	PrivateKey string `mapstructure:"private_key" default:"private.pem" validate:"required"`
	PublicKey  string `mapstructure:"public_key" default:"public.pem" validate:"required"`
}

// HMACConfig configures request signing.
type HMACConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration" default:"5m" validate:"gt=0"`
}

// PrivateKeyPath resolves the private key file against Dirpath.
func (c KeysConfig) PrivateKeyPath() string {
	return c.resolve(c.PrivateKey)
}

// PublicKeyPath resolves the public key file against Dirpath.
func (c KeysConfig) PublicKeyPath() string {
	return c.resolve(c.PublicKey)
}

func (c KeysConfig) resolve(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.Dirpath, name)
}

// Options translates the engine section into sm2 options.
func (c EngineConfig) Options(logger *log.Logger) ([]sm2.Option, error) {
	mode, err := sm2.ParseMode(c.Mode)
	if err != nil {
		return nil, err
	}
	encoding, err := sm2.ParseSignatureEncoding(c.Encoding)
	if err != nil {
		return nil, err
	}
	form, err := curve.ParsePointForm(strings.ToLower(c.PointForm))
	if err != nil {
		return nil, err
	}

	return []sm2.Option{
		sm2.WithMode(mode),
		sm2.WithSignatureEncoding(encoding),
		sm2.WithUserID([]byte(c.UserID)),
		sm2.WithPointForm(form),
		sm2.WithLogger(logger),
	}, nil
}

// rules validate the engine enums and the user id with the same checks the engine uses.
var rules = []validate.Rule{
	{
		Tag: "sm2mode",
		Func: func(fl validator.FieldLevel) bool {
			_, err := sm2.ParseMode(fl.Field().String())
			return err == nil
		},
		Messages: map[string]string{
			"en": "{0} must be C1C3C2 or C1C2C3",
			"zh": "{0}必须为C1C3C2或C1C2C3",
		},
	},
	{
		Tag: "sm2encoding",
		Func: func(fl validator.FieldLevel) bool {
			_, err := sm2.ParseSignatureEncoding(fl.Field().String())
			return err == nil
		},
		Messages: map[string]string{
			"en": "{0} must be der or plain",
			"zh": "{0}必须为der或plain",
		},
	},
	{
		Tag: "pointform",
		Func: func(fl validator.FieldLevel) bool {
			_, err := curve.ParsePointForm(strings.ToLower(fl.Field().String()))
			return err == nil
		},
		Messages: map[string]string{
			"en": "{0} must be uncompressed, compressed or hybrid",
			"zh": "{0}必须为uncompressed、compressed或hybrid",
		},
	},
	{
		Tag: "sm2uid",
		Func: func(fl validator.FieldLevel) bool {
			return sm2.CheckUserID([]byte(fl.Field().String())) == nil
		},
		Messages: map[string]string{
			"en": "{0} must be at most 8191 bytes",
			"zh": "{0}长度不能超过8191字节",
		},
	},
}
