package sm2

import (
	"crypto/rand"
	"crypto/subtle"
	"io"

	"github.com/cronokirby/saferith"
	"github.com/tjfoc/gmsm/sm3"

	"github.com/kochabx/smkit/core/crypto/sm2/curve"
	"github.com/kochabx/smkit/core/crypto/sm2/internal"
	"github.com/kochabx/smkit/errors"
)

// EncryptCiphertext encrypts msg to pub and returns the unserialized components.
//
// The encryption process (GB/T 32918.4 §6.1):
// 1. Draw an ephemeral k in [1, n-1] and compute C1 = k·G
// 2. Compute S = k·Q = (x2, y2)
// 3. Derive t = KDF(x2 ‖ y2, len(msg)), drawing a new k when t is all zero
// 4. C2 = msg ⊕ t
// 5. C3 = SM3(x2 ‖ msg ‖ y2)
//
// An invalid pub fails with ErrInvalidPublicKey and empty msg with ErrLength. Only an
// infinite S or an all-zero mask draws a new k; running out of draws fails with ErrCurve.
func EncryptCiphertext(random io.Reader, pub *PublicKey, msg []byte) (*Ciphertext, error) {
	if pub == nil {
		return nil, ErrPublicKeyEmpty
	}
	if pub.point == nil || !pub.point.IsOnCurve() {
		return nil, ErrInvalidPublicKey.WithCausef("point not on curve")
	}
	if len(msg) == 0 {
		return nil, ErrLength.WithCausef("plaintext is empty")
	}
	if uint64(len(msg)) > maxKDFLength {
		return nil, ErrLength.WithCausef("plaintext of %d bytes exceeds the kdf range", len(msg))
	}
	if random == nil {
		random = rand.Reader
	}

	for i := 0; i < maxIterations; i++ {
		k, err := curve.RandomScalar(random)
		if err != nil {
			return nil, err
		}

		c, retry, err := encryptWith(k, pub, msg)
		k.SetUint64(0)
		if err != nil {
			return nil, err
		}
		if !retry {
			return c, nil
		}
	}
	return nil, ErrCurve.WithCausef("no usable ephemeral key after %d attempts", maxIterations)
}

// encryptWith runs one encryption with the ephemeral k. retry is set when S is the
// point at infinity or the KDF mask is all zero.
func encryptWith(k *saferith.Nat, pub *PublicKey, msg []byte) (c *Ciphertext, retry bool, err error) {
	s, err := curve.ScalarMult(k, pub.point)
	if err != nil {
		return nil, false, err
	}
	if s.IsInfinity() {
		return nil, true, nil
	}
	x2, y2, err := s.Affine()
	if err != nil {
		return nil, false, err
	}

	z := getSecret()
	z = append(z, x2...)
	z = append(z, y2...)
	defer putSecret(z)

	t, err := KDF(z, len(msg))
	if err != nil {
		// length is checked by the caller, so only an all-zero mask lands here
		if errors.Is(err, ErrLength) {
			return nil, true, nil
		}
		return nil, false, err
	}
	defer internal.Wipe(t)

	c1, err := curve.ScalarBaseMult(k)
	if err != nil {
		return nil, false, err
	}

	c2 := make([]byte, len(msg))
	internal.XOR(c2, msg, t)

	return &Ciphertext{
		C1: c1,
		C2: c2,
		C3: digestC3(x2, msg, y2),
	}, false, nil
}

// DecryptCiphertext recovers the message from c with priv.
//
// The decryption process (GB/T 32918.4 §7.1):
// 1. Check C1 is a finite point on the curve
// 2. Compute S = d·C1 = (x2, y2) and t = KDF(x2 ‖ y2, len(C2))
// 3. Recover msg = C2 ⊕ t
// 4. Compare SM3(x2 ‖ msg ‖ y2) with C3 in constant time
//
// A C3 mismatch fails with ErrMacMismatch and no part of the recovered message is
// returned.
func DecryptCiphertext(priv *PrivateKey, c *Ciphertext) ([]byte, error) {
	d := priv.scalar()
	if d == nil {
		return nil, ErrPrivateKeyEmpty
	}
	if err := c.check(); err != nil {
		return nil, err
	}

	s, err := curve.ScalarMult(d, c.C1)
	if err != nil {
		return nil, err
	}
	x2, y2, err := s.Affine()
	if err != nil {
		return nil, err
	}

	z := getSecret()
	z = append(z, x2...)
	z = append(z, y2...)
	defer putSecret(z)

	t, err := KDF(z, len(c.C2))
	if err != nil {
		return nil, err
	}
	defer internal.Wipe(t)

	msg := make([]byte, len(c.C2))
	internal.XOR(msg, c.C2, t)

	if subtle.ConstantTimeCompare(digestC3(x2, msg, y2), c.C3) != 1 {
		internal.Wipe(msg)
		return nil, ErrMacMismatch
	}
	return msg, nil
}

// Encrypt encrypts msg to pub and serializes the result. Mode and the C1 point form
// come from opts; random defaults to crypto/rand.Reader when nil.
func Encrypt(random io.Reader, pub *PublicKey, msg []byte, opts ...Option) ([]byte, error) {
	o := newOptions(opts...)
	if err := o.validate(); err != nil {
		return nil, err
	}
	if random == nil {
		random = o.random
	}

	c, err := EncryptCiphertext(random, pub, msg)
	if err != nil {
		return nil, err
	}
	return c.Bytes(o.mode, o.form)
}

// Decrypt parses b according to the mode in opts and decrypts it with priv.
//
// C1 may be prefixed in any point form or be a prefix-less 64-byte point, as written by
// some peer implementations. When both readings parse, each is tried in turn and the
// first one whose C3 matches is returned.
func Decrypt(priv *PrivateKey, b []byte, opts ...Option) ([]byte, error) {
	if priv.scalar() == nil {
		return nil, ErrPrivateKeyEmpty
	}

	o := newOptions(opts...)
	candidates, err := parseCandidates(b, o.mode)
	if err != nil {
		return nil, err
	}

	for _, c := range candidates {
		var msg []byte
		msg, err = DecryptCiphertext(priv, c.Ciphertext)
		if err == nil {
			return msg, nil
		}
	}
	return nil, err
}

// digestC3 returns SM3(x2 ‖ msg ‖ y2).
func digestC3(x2, msg, y2 []byte) []byte {
	h := sm3.New()
	h.Write(x2)
	h.Write(msg)
	h.Write(y2)
	return h.Sum(nil)
}
