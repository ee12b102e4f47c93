package sm2

import (
	"fmt"
	"strings"

	"github.com/kochabx/smkit/core/crypto/sm2/curve"
)

// Sizes
const (
	// KeySize is the byte length of a private scalar and of each public coordinate
	KeySize = curve.FieldSize

	// DigestSize is the SM3 output length, which is also the length of C3
	DigestSize = 32

	// PlainSignatureSize is the length of a plain r‖s signature
	PlainSignatureSize = 2 * KeySize

	// prefixlessPointSize is an uncompressed point whose 0x04 tag was dropped by the producer
	prefixlessPointSize = 2 * KeySize

	// maxUserIDLen keeps ENTL, the bit length of the user ID, within two bytes
	maxUserIDLen = 0xffff / 8

	// maxIterations bounds every resampling loop
	maxIterations = 255
)

// DefaultUserID is the signer identity used when none is configured.
var DefaultUserID = []byte("1234567812345678")

// Mode selects the order of the ciphertext components.
type Mode int

const (
	// C1C3C2 serializes C1 ‖ C3 ‖ C2, the layout of GB/T 32918.4-2016.
	C1C3C2 Mode = iota
	// C1C2C3 serializes C1 ‖ C2 ‖ C3, the legacy layout of the 2010 draft.
	C1C2C3
)

func (m Mode) String() string {
	switch m {
	case C1C3C2:
		return "C1C3C2"
	case C1C2C3:
		return "C1C2C3"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode maps "C1C3C2" or "C1C2C3" (case-insensitive) to a Mode. The empty string
// selects the default.
func ParseMode(s string) (Mode, error) {
	switch strings.ToUpper(s) {
	case "", "C1C3C2":
		return C1C3C2, nil
	case "C1C2C3":
		return C1C2C3, nil
	default:
		return 0, ErrEncoding.WithCausef("unknown ciphertext mode %q", s)
	}
}

// SignatureEncoding selects how (r, s) are serialized.
type SignatureEncoding int

const (
	// EncodingDER is SEQUENCE { INTEGER r, INTEGER s }.
	EncodingDER SignatureEncoding = iota
	// EncodingPlain is r ‖ s, each a KeySize-byte big-endian integer.
	EncodingPlain
)

func (e SignatureEncoding) String() string {
	switch e {
	case EncodingDER:
		return "der"
	case EncodingPlain:
		return "plain"
	default:
		return fmt.Sprintf("SignatureEncoding(%d)", int(e))
	}
}

// ParseSignatureEncoding maps "der" or "plain" (case-insensitive) to a
// SignatureEncoding. The empty string selects the default.
func ParseSignatureEncoding(s string) (SignatureEncoding, error) {
	switch strings.ToLower(s) {
	case "", "der":
		return EncodingDER, nil
	case "plain":
		return EncodingPlain, nil
	default:
		return 0, ErrEncoding.WithCausef("unknown signature encoding %q", s)
	}
}
