// Package cmd implements the smkit command line.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kochabx/smkit/config"
	"github.com/kochabx/smkit/core/validator"
	"github.com/kochabx/smkit/log"
)

// flagKeys maps command line flags onto configuration keys. A flag given on
// the command line wins over the file and the environment.
var flagKeys = map[string]string{
	"mode":        "engine.mode",
	"encoding":    "engine.encoding",
	"uid":         "engine.user_id",
	"form":        "engine.point_form",
	"format":      "engine.format",
	"dir":         "keys.dirpath",
	"private-key": "keys.private_key",
	"public-key":  "keys.public_key",
	"secret":      "hmac.secret",
	"expiration":  "hmac.expiration",
	"log-level":   "log.level",
}

type app struct {
	configPath string
	cfg        Config
	logger     *log.Logger
}

// NewRootCommand builds a fresh command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "smkit",
		Short:         "SM2 key generation, encryption and signatures",
		Long:          "smkit generates SM2 key pairs and encrypts, decrypts, signs and verifies data with them (GB/T 32918).",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if a.logger == nil {
				return nil
			}
			return a.logger.Close()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "config file (default ./smkit.yaml when present)")
	flags.String("log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		a.keygenCmd(),
		a.encryptCmd(),
		a.decryptCmd(),
		a.signCmd(),
		a.verifyCmd(),
		a.hmacCmd(),
	)
	return root
}

// Execute runs the command line against os.Args.
func Execute() error {
	return NewRootCommand().Execute()
}

func (a *app) init(cmd *cobra.Command) error {
	v := viper.New()
	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			v.Set(key, f.Value.String())
		}
	}

	validate := validator.New(validator.WithRules(rules...))

	var loader config.Loader
	if a.configPath != "" {
		loader = config.NewPathLoader(a.configPath, v, validate)
	} else {
		loader = config.NewFileLoader(config.DefaultFilename, []string{"."}, v, validate, config.Optional())
	}

	// AutomaticEnv only covers keys viper already knows from the file
	for _, key := range flagKeys {
		_ = v.BindEnv(key)
	}

	c := config.New(&a.cfg, config.WithViper(v), config.WithValidator(validate), config.WithLoader(loader))
	if err := c.Load(); err != nil {
		return err
	}

	logger, err := log.NewFromConfig(a.cfg.Log)
	if err != nil {
		return err
	}
	log.SetGlobalLogger(logger)
	a.logger = logger

	a.logger.Debug().
		Str("config", v.ConfigFileUsed()).
		Str("mode", a.cfg.Engine.Mode).
		Str("encoding", a.cfg.Engine.Encoding).
		Str("point_form", a.cfg.Engine.PointForm).
		Msg("configuration loaded")
	return nil
}
