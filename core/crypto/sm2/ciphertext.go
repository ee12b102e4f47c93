package sm2

import (
	"bytes"
	"math/big"

	"golang.org/x/crypto/cryptobyte"
	cbasn1 "golang.org/x/crypto/cryptobyte/asn1"

	"github.com/kochabx/smkit/core/crypto/sm2/curve"
)

// Ciphertext holds the three components of an SM2 ciphertext: the ephemeral point C1,
// the masked message C2 and the SM3 digest C3.
type Ciphertext struct {
	C1 *curve.Point
	C2 []byte
	C3 []byte
}

func (c *Ciphertext) check() error {
	if c == nil || c.C1 == nil {
		return ErrEncoding.WithCausef("ciphertext without C1")
	}
	if !c.C1.IsOnCurve() {
		return ErrCurve.WithCausef("C1 not on curve")
	}
	if len(c.C2) == 0 {
		return ErrLength.WithCausef("empty C2")
	}
	if len(c.C3) != DigestSize {
		return ErrLength.WithCausef("C3 of %d bytes, want %d", len(c.C3), DigestSize)
	}
	return nil
}

// Bytes serializes the ciphertext in the given component order, with C1 in the given
// point form.
func (c *Ciphertext) Bytes(mode Mode, form curve.PointForm) ([]byte, error) {
	if err := c.check(); err != nil {
		return nil, err
	}

	c1, err := c.C1.Bytes(form)
	if err != nil {
		return nil, err
	}
	return assemble(c1, c.C2, c.C3, mode)
}

func assemble(c1, c2, c3 []byte, mode Mode) ([]byte, error) {
	out := make([]byte, 0, len(c1)+len(c2)+len(c3))
	out = append(out, c1...)

	switch mode {
	case C1C3C2:
		out = append(out, c3...)
		out = append(out, c2...)
	case C1C2C3:
		out = append(out, c2...)
		out = append(out, c3...)
	default:
		return nil, ErrEncoding.WithCausef("unknown ciphertext mode %d", int(mode))
	}
	return out, nil
}

// MarshalASN1 encodes the ciphertext as the GM/T 0009 structure
//
//	SEQUENCE { x INTEGER, y INTEGER, C3 OCTET STRING, C2 OCTET STRING }
func (c *Ciphertext) MarshalASN1() ([]byte, error) {
	if err := c.check(); err != nil {
		return nil, err
	}

	x, y, err := c.C1.Affine()
	if err != nil {
		return nil, err
	}

	var b cryptobyte.Builder
	b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1BigInt(new(big.Int).SetBytes(x))
		b.AddASN1BigInt(new(big.Int).SetBytes(y))
		b.AddASN1OctetString(c.C3)
		b.AddASN1OctetString(c.C2)
	})
	return b.Bytes()
}

// ParseCiphertextASN1 decodes the structure written by MarshalASN1.
func ParseCiphertextASN1(der []byte) (*Ciphertext, error) {
	var (
		inner  cryptobyte.String
		c2, c3 cryptobyte.String
		x, y   = new(big.Int), new(big.Int)
	)

	input := cryptobyte.String(der)
	if !input.ReadASN1(&inner, cbasn1.SEQUENCE) || !input.Empty() ||
		!inner.ReadASN1Integer(x) ||
		!inner.ReadASN1Integer(y) ||
		!inner.ReadASN1(&c3, cbasn1.OCTET_STRING) ||
		!inner.ReadASN1(&c2, cbasn1.OCTET_STRING) ||
		!inner.Empty() {
		return nil, ErrEncoding.WithCausef("malformed ASN.1 ciphertext")
	}
	if x.Sign() < 0 || y.Sign() < 0 {
		return nil, ErrEncoding.WithCausef("negative C1 coordinate")
	}

	c1, err := curve.NewPoint(x.Bytes(), y.Bytes())
	if err != nil {
		return nil, err
	}

	c := &Ciphertext{
		C1: c1,
		C2: bytes.Clone(c2),
		C3: bytes.Clone(c3),
	}
	if err := c.check(); err != nil {
		return nil, err
	}
	return c, nil
}

// ParseCiphertext splits b into its components according to mode. C1 may carry any
// point prefix, or be a 64-byte uncompressed point without one; when both readings are
// structurally valid the prefixed one wins.
func ParseCiphertext(b []byte, mode Mode) (*Ciphertext, error) {
	candidates, err := parseCandidates(b, mode)
	if err != nil {
		return nil, err
	}
	return candidates[0].Ciphertext, nil
}

// candidate is one structural reading of a serialized ciphertext.
type candidate struct {
	*Ciphertext
	c1Len int // length of the C1 encoding in the input
}

// parseCandidates returns every structurally valid reading of b: the prefixed C1 first,
// then the prefix-less one.
func parseCandidates(b []byte, mode Mode) ([]candidate, error) {
	if mode != C1C3C2 && mode != C1C2C3 {
		return nil, ErrEncoding.WithCausef("unknown ciphertext mode %d", int(mode))
	}
	if len(b) == 0 {
		return nil, ErrLength.WithCausef("empty ciphertext")
	}

	var (
		out     []candidate
		lastErr error
	)

	if n := prefixedPointSize(b[0]); n > 0 {
		c, err := split(b, n, b[:n], mode)
		if err == nil {
			out = append(out, candidate{Ciphertext: c, c1Len: n})
		} else {
			lastErr = err
		}
	}

	if len(b) > prefixlessPointSize {
		c1 := make([]byte, 0, curve.UncompressedSize)
		c1 = append(c1, curve.UncompressedTag)
		c1 = append(c1, b[:prefixlessPointSize]...)

		c, err := split(b, prefixlessPointSize, c1, mode)
		if err == nil {
			out = append(out, candidate{Ciphertext: c, c1Len: prefixlessPointSize})
		} else if lastErr == nil {
			lastErr = err
		}
	}

	if len(out) == 0 {
		if lastErr == nil {
			lastErr = ErrLength.WithCausef("ciphertext of %d bytes is too short", len(b))
		}
		return nil, lastErr
	}
	return out, nil
}

func split(b []byte, c1Len int, c1Enc []byte, mode Mode) (*Ciphertext, error) {
	rest := b[c1Len:]
	if len(rest) <= DigestSize {
		return nil, ErrLength.WithCausef("ciphertext of %d bytes leaves no room for C2", len(b))
	}

	c1, err := curve.ParsePoint(c1Enc)
	if err != nil {
		return nil, err
	}

	var c2, c3 []byte
	switch mode {
	case C1C3C2:
		c3, c2 = rest[:DigestSize], rest[DigestSize:]
	case C1C2C3:
		c2, c3 = rest[:len(rest)-DigestSize], rest[len(rest)-DigestSize:]
	}

	return &Ciphertext{
		C1: c1,
		C2: bytes.Clone(c2),
		C3: bytes.Clone(c3),
	}, nil
}

func prefixedPointSize(tag byte) int {
	switch tag {
	case curve.CompressedEvenTag, curve.CompressedOddTag:
		return curve.CompressedSize
	case curve.UncompressedTag, curve.HybridEvenTag, curve.HybridOddTag:
		return curve.UncompressedSize
	default:
		return 0
	}
}

// ConvertMode reorders a serialized ciphertext from one component order to the other.
// C1 is copied byte for byte, so a prefix-less C1 stays prefix-less.
func ConvertMode(b []byte, from, to Mode) ([]byte, error) {
	candidates, err := parseCandidates(b, from)
	if err != nil {
		return nil, err
	}
	c := candidates[0]
	return assemble(b[:c.c1Len], c.C2, c.C3, to)
}
