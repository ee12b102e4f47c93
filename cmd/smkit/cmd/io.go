package cmd

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kochabx/smkit/errors"
)

const (
	formatHex    = "hex"
	formatBase64 = "base64"
	formatRaw    = "raw"
)

var errNoInput = errors.BadRequest("no input: pass it as an argument, with --in or on stdin")

// readInput returns the first positional argument, the file named by --in,
// or stdin, in that order.
func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) > 0 {
		return []byte(args[0]), nil
	}

	if path, _ := cmd.Flags().GetString("in"); path != "" && path != "-" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.NotFound("input file %s", path).WithCause(err)
		}
		return data, nil
	}

	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return nil, errors.Internal("read stdin").WithCause(err)
	}
	if len(data) == 0 {
		return nil, errNoInput
	}
	return data, nil
}

func encode(format string, b []byte) []byte {
	switch format {
	case formatBase64:
		return []byte(base64.StdEncoding.EncodeToString(b) + "\n")
	case formatRaw:
		return b
	default:
		return []byte(hex.EncodeToString(b) + "\n")
	}
}

func decode(format string, b []byte) ([]byte, error) {
	if format == formatRaw {
		return b, nil
	}

	s := strings.TrimSpace(string(b))
	var (
		out []byte
		err error
	)
	if format == formatBase64 {
		out, err = base64.StdEncoding.DecodeString(s)
	} else {
		out, err = hex.DecodeString(s)
	}
	if err != nil {
		return nil, errors.BadRequest("input is not valid %s", format).WithCause(err)
	}
	return out, nil
}

func write(cmd *cobra.Command, b []byte) error {
	if _, err := cmd.OutOrStdout().Write(b); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

func addInputFlag(cmd *cobra.Command) {
	cmd.Flags().String("in", "", "read input from file, - for stdin")
}

func addEngineFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.String("mode", "", "ciphertext layout: C1C3C2 or C1C2C3")
	flags.String("encoding", "", "signature encoding: der or plain")
	flags.String("uid", "", "signer user ID")
	flags.String("form", "", "C1 point form: uncompressed, compressed or hybrid")
	flags.String("format", "", "text encoding of binary input and output: hex, base64 or raw")
	flags.String("dir", "", "directory holding the key files")
	flags.String("private-key", "", "private key file")
	flags.String("public-key", "", "public key file")
}
