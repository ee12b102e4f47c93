package sm2

import (
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"

	"github.com/kochabx/smkit/core/crypto/sm2/curve"
)

// PublicKey is an SM2 public key: a finite point Q on sm2p256v1.
type PublicKey struct {
	point *curve.Point
	x, y  []byte // affine coordinates, KeySize bytes each
}

func newPublicKey(q *curve.Point) (*PublicKey, error) {
	if q == nil || !q.IsOnCurve() {
		return nil, ErrInvalidPublicKey.WithCause(ErrCurve)
	}

	x, y, err := q.Affine()
	if err != nil {
		return nil, ErrInvalidPublicKey.WithCause(err)
	}

	return &PublicKey{
		point: new(curve.Point).Set(q),
		x:     x,
		y:     y,
	}, nil
}

// NewPublicKey parses a public key in compressed, uncompressed or hybrid form. A
// 64-byte string is taken as an uncompressed point without its 0x04 tag.
func NewPublicKey(b []byte) (*PublicKey, error) {
	if len(b) == 0 {
		return nil, ErrPublicKeyEmpty
	}

	q, err := parsePoint(b)
	if err != nil {
		return nil, ErrInvalidPublicKey.WithCause(err)
	}
	return newPublicKey(q)
}

// NewPublicKeyFromHex parses a hex-encoded public key, see NewPublicKey.
func NewPublicKeyFromHex(s string) (*PublicKey, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, ErrEncoding.WithCause(err)
	}
	return NewPublicKey(b)
}

// NewPublicKeyFromCoordinates builds a public key from big-endian affine coordinates.
func NewPublicKeyFromCoordinates(x, y []byte) (*PublicKey, error) {
	q, err := curve.NewPoint(x, y)
	if err != nil {
		return nil, ErrInvalidPublicKey.WithCause(err)
	}
	return newPublicKey(q)
}

// parsePoint decodes a prefixed point, or a prefix-less uncompressed one.
func parsePoint(b []byte) (*curve.Point, error) {
	if len(b) == prefixlessPointSize {
		buf := make([]byte, 0, curve.UncompressedSize)
		buf = append(buf, curve.UncompressedTag)
		return curve.ParsePoint(append(buf, b...))
	}
	return curve.ParsePoint(b)
}

// Point returns a copy of Q.
func (pub *PublicKey) Point() *curve.Point {
	return new(curve.Point).Set(pub.point)
}

// X returns the KeySize-byte affine x coordinate.
func (pub *PublicKey) X() []byte {
	return append([]byte(nil), pub.x...)
}

// Y returns the KeySize-byte affine y coordinate.
func (pub *PublicKey) Y() []byte {
	return append([]byte(nil), pub.y...)
}

// Bytes encodes the key in the given point form. An unknown form yields nil.
func (pub *PublicKey) Bytes(form curve.PointForm) []byte {
	b, err := pub.point.Bytes(form)
	if err != nil {
		return nil
	}
	return b
}

// Hex returns the key in hexadecimal encoding.
func (pub *PublicKey) Hex(form curve.PointForm) string {
	return hex.EncodeToString(pub.Bytes(form))
}

// Base64 returns the key in standard base64 encoding.
func (pub *PublicKey) Base64(form curve.PointForm) string {
	return base64.StdEncoding.EncodeToString(pub.Bytes(form))
}

// Equals compares two public keys in constant time.
func (pub *PublicKey) Equals(other *PublicKey) bool {
	if pub == nil || other == nil {
		return pub == other
	}
	eqX := subtle.ConstantTimeCompare(pub.x, other.x)
	eqY := subtle.ConstantTimeCompare(pub.y, other.y)
	return eqX&eqY == 1
}
