package sm2

import (
	"math/big"

	"golang.org/x/crypto/cryptobyte"
	cbasn1 "golang.org/x/crypto/cryptobyte/asn1"
)

// Signature is an SM2 signature (r, s).
type Signature struct {
	R, S *big.Int
}

// Bytes serializes the signature as DER SEQUENCE { INTEGER r, INTEGER s } or as the
// 64-byte plain r ‖ s.
func (sig *Signature) Bytes(enc SignatureEncoding) ([]byte, error) {
	if sig == nil || sig.R == nil || sig.S == nil {
		return nil, ErrSignatureFormat.WithCausef("missing r or s")
	}

	switch enc {
	case EncodingDER:
		var b cryptobyte.Builder
		b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
			b.AddASN1BigInt(sig.R)
			b.AddASN1BigInt(sig.S)
		})
		return b.Bytes()
	case EncodingPlain:
		if sig.R.Sign() < 0 || sig.S.Sign() < 0 ||
			sig.R.BitLen() > KeySize*8 || sig.S.BitLen() > KeySize*8 {
			return nil, ErrSignatureFormat.WithCausef("r or s does not fit %d bytes", KeySize)
		}
		out := make([]byte, PlainSignatureSize)
		sig.R.FillBytes(out[:KeySize])
		sig.S.FillBytes(out[KeySize:])
		return out, nil
	default:
		return nil, ErrEncoding.WithCausef("unknown signature encoding %d", int(enc))
	}
}

// ParseSignature decodes a signature in the given encoding. Trailing data, wrong tags
// and a plain length other than 64 bytes fail with ErrSignatureFormat. The range of r
// and s is left to Verify.
func ParseSignature(b []byte, enc SignatureEncoding) (*Signature, error) {
	switch enc {
	case EncodingDER:
		var (
			inner cryptobyte.String
			r, s  = new(big.Int), new(big.Int)
		)
		input := cryptobyte.String(b)
		if !input.ReadASN1(&inner, cbasn1.SEQUENCE) ||
			!input.Empty() ||
			!inner.ReadASN1Integer(r) ||
			!inner.ReadASN1Integer(s) ||
			!inner.Empty() {
			return nil, ErrSignatureFormat.WithCausef("invalid DER sequence")
		}
		return &Signature{R: r, S: s}, nil
	case EncodingPlain:
		if len(b) != PlainSignatureSize {
			return nil, ErrSignatureFormat.WithCausef("plain signature of %d bytes, want %d", len(b), PlainSignatureSize)
		}
		return &Signature{
			R: new(big.Int).SetBytes(b[:KeySize]),
			S: new(big.Int).SetBytes(b[KeySize:]),
		}, nil
	default:
		return nil, ErrEncoding.WithCausef("unknown signature encoding %d", int(enc))
	}
}
