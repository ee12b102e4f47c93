package cmd

import (
	"github.com/spf13/cobra"

	"github.com/kochabx/smkit/errors"
)

var errSignatureInvalid = errors.BadRequest("signature is invalid")

func (a *app) signCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sign [message]",
		Short: "Sign a message with the private key",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			engine, err := a.privateEngine()
			if err != nil {
				return err
			}

			sig, err := engine.Sign(msg)
			if err != nil {
				return err
			}
			return write(cmd, encode(a.cfg.Engine.Format, sig))
		},
	}
	addInputFlag(cmd)
	addEngineFlags(cmd)
	return cmd
}

func (a *app) verifyCmd() *cobra.Command {
	var signature string

	cmd := &cobra.Command{
		Use:   "verify [message]",
		Short: "Verify a signature with the public key",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			format := a.cfg.Engine.Format
			if format == formatRaw {
				format = formatHex
			}
			sig, err := decode(format, []byte(signature))
			if err != nil {
				return err
			}
			engine, err := a.publicEngine()
			if err != nil {
				return err
			}

			ok, err := engine.Verify(msg, sig)
			if err != nil {
				return err
			}
			if !ok {
				return errSignatureInvalid
			}
			return write(cmd, []byte("OK\n"))
		},
	}
	cmd.Flags().StringVarP(&signature, "sig", "s", "", "signature, hex or base64 per --format")
	_ = cmd.MarkFlagRequired("sig")
	addInputFlag(cmd)
	addEngineFlags(cmd)
	return cmd
}
