package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kochabx/smkit/core/crypto/sm2"
	"github.com/kochabx/smkit/errors"
)

var errKeyExists = errors.BadRequest("key file already exists, pass --force to overwrite")

func (a *app) keygenCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate an SM2 key pair as PEM files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			keys := a.cfg.Keys
			privPath, pubPath := keys.PrivateKeyPath(), keys.PublicKeyPath()

			if !force {
				for _, path := range []string{privPath, pubPath} {
					if _, err := os.Stat(path); err == nil {
						return errKeyExists.WithMetadata(map[string]string{"path": path})
					}
				}
			}

			err := sm2.GenerateKeyPair(
				sm2.WithDirpath(keys.Dirpath),
				sm2.WithPrivateKeyFilename(keys.PrivateKey),
				sm2.WithPublicKeyFilename(keys.PublicKey),
			)
			if err != nil {
				return err
			}

			a.logger.Info().Str("private_key_path", privPath).Str("public_key_path", pubPath).Msg("key pair generated")
			return write(cmd, fmt.Appendf(nil, "%s\n%s\n", privPath, pubPath))
		},
	}

	flags := cmd.Flags()
	flags.BoolVarP(&force, "force", "f", false, "overwrite existing key files")
	flags.String("dir", "", "directory for the key files")
	flags.String("private-key", "", "private key file name")
	flags.String("public-key", "", "public key file name")
	return cmd
}
