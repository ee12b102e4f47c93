package sm2

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"io"
	"sync"

	"github.com/cronokirby/saferith"

	"github.com/kochabx/smkit/core/crypto/sm2/curve"
	"github.com/kochabx/smkit/core/crypto/sm2/internal"
)

// PrivateKey is an SM2 private key: a scalar d in [1, n-2] together with Q = d·G.
// The upper bound keeps 1 + d invertible modulo n, which signing requires.
type PrivateKey struct {
	d         *saferith.Nat
	publicKey *PublicKey

	invOnce sync.Once
	inv     *saferith.Nat // (1 + d)⁻¹ mod n
}

func newPrivateKey(d *saferith.Nat) (*PrivateKey, error) {
	if !isValidPrivateScalar(d) {
		return nil, ErrInvalidPrivateKey.WithCausef("scalar out of range [1, n-2]")
	}

	q, err := curve.ScalarBaseMult(d)
	if err != nil {
		return nil, ErrInvalidPrivateKey.WithCause(err)
	}
	pub, err := newPublicKey(q)
	if err != nil {
		return nil, err
	}

	return &PrivateKey{
		d:         new(saferith.Nat).SetNat(d),
		publicKey: pub,
	}, nil
}

// isValidPrivateScalar reports whether 1 ≤ d ≤ n-2.
func isValidPrivateScalar(d *saferith.Nat) bool {
	if !curve.IsValidScalar(d) {
		return false
	}
	one := new(saferith.Nat).SetUint64(1)
	return new(saferith.Nat).ModAdd(d, one, curve.Order()).EqZero() == 0
}

// NewPrivateKey builds a private key from a big-endian scalar of at most KeySize bytes.
// Shorter input is left-padded with zeros.
func NewPrivateKey(b []byte) (*PrivateKey, error) {
	if len(b) == 0 {
		return nil, ErrPrivateKeyEmpty
	}
	if len(b) > KeySize {
		return nil, ErrInvalidPrivateKey.WithCause(
			ErrLength.WithCausef("scalar of %d bytes, want at most %d", len(b), KeySize))
	}

	padded := internal.ZeroPad(b, KeySize)
	d := new(saferith.Nat).SetBytes(padded)
	if len(b) < KeySize {
		internal.Wipe(padded)
	}
	return newPrivateKey(d)
}

// NewPrivateKeyFromHex builds a private key from a hex-encoded scalar.
func NewPrivateKeyFromHex(s string) (*PrivateKey, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, ErrEncoding.WithCause(err)
	}
	defer internal.Wipe(b)
	return NewPrivateKey(b)
}

// GenerateKey draws a fresh key pair from rand, crypto/rand.Reader when nil.
func GenerateKey(random io.Reader) (*PrivateKey, error) {
	if random == nil {
		random = rand.Reader
	}

	for i := 0; i < maxIterations; i++ {
		d, err := curve.RandomScalar(random)
		if err != nil {
			return nil, err
		}
		if isValidPrivateScalar(d) {
			return newPrivateKey(d)
		}
	}
	return nil, ErrCurve.WithCausef("no valid private scalar after %d draws", maxIterations)
}

// Public returns the public key corresponding to this private key.
func (priv *PrivateKey) Public() *PublicKey {
	return priv.publicKey
}

// Bytes returns d as a KeySize-byte big-endian string.
func (priv *PrivateKey) Bytes() []byte {
	if priv.d == nil {
		return nil
	}
	return curve.ScalarBytes(priv.d)
}

// Hex returns the private key in hexadecimal encoding.
func (priv *PrivateKey) Hex() string {
	return hex.EncodeToString(priv.Bytes())
}

// Base64 returns the private key in standard base64 encoding.
func (priv *PrivateKey) Base64() string {
	return base64.StdEncoding.EncodeToString(priv.Bytes())
}

// Equals compares two private keys using constant-time comparison.
func (priv *PrivateKey) Equals(other *PrivateKey) bool {
	if priv == nil || other == nil {
		return priv == other
	}
	if priv.d == nil || other.d == nil {
		return priv.d == other.d
	}
	return priv.d.Eq(other.d) == 1
}

// Destroy clears the scalar and its cached inverse. The key must not be used afterwards.
func (priv *PrivateKey) Destroy() {
	if priv.d != nil {
		priv.d.SetUint64(0)
		priv.d = nil
	}
	if priv.inv != nil {
		priv.inv.SetUint64(0)
	}
}

// scalar returns d, or nil after Destroy.
func (priv *PrivateKey) scalar() *saferith.Nat {
	if priv == nil {
		return nil
	}
	return priv.d
}

// inverse returns (1 + d)⁻¹ mod n, computed on first use.
func (priv *PrivateKey) inverse() *saferith.Nat {
	priv.invOnce.Do(func() {
		n := curve.Order()
		one := new(saferith.Nat).SetUint64(1)
		t := new(saferith.Nat).ModAdd(priv.d, one, n)
		priv.inv = new(saferith.Nat).ModInverse(t, n)
	})
	return priv.inv
}
