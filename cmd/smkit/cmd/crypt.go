package cmd

import (
	"github.com/spf13/cobra"

	"github.com/kochabx/smkit/core/crypto/sm2"
)

func (a *app) publicEngine() (*sm2.Engine, error) {
	pub, err := sm2.LoadPublicKey(a.cfg.Keys.PublicKeyPath())
	if err != nil {
		return nil, err
	}
	opts, err := a.cfg.Engine.Options(a.logger)
	if err != nil {
		return nil, err
	}
	return sm2.NewWithPublicKey(pub, opts...)
}

func (a *app) privateEngine() (*sm2.Engine, error) {
	priv, err := sm2.LoadPrivateKey(a.cfg.Keys.PrivateKeyPath())
	if err != nil {
		return nil, err
	}
	opts, err := a.cfg.Engine.Options(a.logger)
	if err != nil {
		return nil, err
	}
	return sm2.NewWithPrivateKey(priv, opts...)
}

func (a *app) encryptCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encrypt [plaintext]",
		Short: "Encrypt to the public key",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			engine, err := a.publicEngine()
			if err != nil {
				return err
			}

			ciphertext, err := engine.Encrypt(msg)
			if err != nil {
				return err
			}
			return write(cmd, encode(a.cfg.Engine.Format, ciphertext))
		},
	}
	addInputFlag(cmd)
	addEngineFlags(cmd)
	return cmd
}

func (a *app) decryptCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decrypt [ciphertext]",
		Short: "Decrypt with the private key",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			ciphertext, err := decode(a.cfg.Engine.Format, input)
			if err != nil {
				return err
			}
			engine, err := a.privateEngine()
			if err != nil {
				return err
			}

			msg, err := engine.Decrypt(ciphertext)
			if err != nil {
				return err
			}
			return write(cmd, msg)
		},
	}
	addInputFlag(cmd)
	addEngineFlags(cmd)
	return cmd
}
