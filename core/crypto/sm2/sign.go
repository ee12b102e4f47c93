package sm2

import (
	"crypto/rand"
	"encoding/binary"
	"io"
	"math/big"

	"github.com/cronokirby/saferith"
	"github.com/tjfoc/gmsm/sm3"

	"github.com/kochabx/smkit/core/crypto/sm2/curve"
)

// order is n as a big.Int, for range checks on untrusted signatures.
var order = curve.Params().N

// CheckUserID reports ErrLength when uid is too long for its bit length to fit the
// two-byte ENTL field of ZA.
func CheckUserID(uid []byte) error {
	if len(uid) > maxUserIDLen {
		return ErrLength.WithCausef("user id of %d bytes, want at most %d", len(uid), maxUserIDLen)
	}
	return nil
}

// ZA returns the identity hash SM3(ENTL ‖ ID ‖ a ‖ b ‖ xG ‖ yG ‖ xA ‖ yA), where ENTL
// is the bit length of uid as a 2-byte big-endian integer.
func ZA(pub *PublicKey, uid []byte) ([]byte, error) {
	if pub == nil {
		return nil, ErrPublicKeyEmpty
	}
	if err := CheckUserID(uid); err != nil {
		return nil, err
	}

	var entl [2]byte
	binary.BigEndian.PutUint16(entl[:], uint16(len(uid)*8))

	a, b, gx, gy := curve.ParamBytes()

	h := sm3.New()
	h.Write(entl[:])
	h.Write(uid)
	h.Write(a)
	h.Write(b)
	h.Write(gx)
	h.Write(gy)
	h.Write(pub.x)
	h.Write(pub.y)
	return h.Sum(nil), nil
}

// digest returns e = SM3(ZA ‖ msg) reduced modulo n.
func digest(pub *PublicKey, msg, uid []byte) (*saferith.Nat, error) {
	za, err := ZA(pub, uid)
	if err != nil {
		return nil, err
	}

	h := sm3.New()
	h.Write(za)
	h.Write(msg)

	e := new(saferith.Nat).SetBytes(h.Sum(nil))
	return e.Mod(e, curve.Order()), nil
}

// Sign signs msg with priv under the signer identity uid, DefaultUserID when nil.
//
// The signing process (GB/T 32918.2 §6.1):
// 1. e = SM3(ZA ‖ msg)
// 2. Draw k in [1, n-1] and compute (x1, y1) = k·G
// 3. r = (e + x1) mod n, drawing again when r = 0 or r + k = n
// 4. s = (1 + d)⁻¹ · (k - r·d) mod n, drawing again when s = 0
func Sign(random io.Reader, priv *PrivateKey, msg, uid []byte) (*Signature, error) {
	d := priv.scalar()
	if d == nil {
		return nil, ErrPrivateKeyEmpty
	}
	if uid == nil {
		uid = DefaultUserID
	}
	if random == nil {
		random = rand.Reader
	}

	e, err := digest(priv.publicKey, msg, uid)
	if err != nil {
		return nil, err
	}

	n := curve.Order()
	dInv := priv.inverse()

	for i := 0; i < maxIterations; i++ {
		k, err := curve.RandomScalar(random)
		if err != nil {
			return nil, err
		}

		p1, err := curve.ScalarBaseMult(k)
		if err != nil {
			return nil, err
		}
		x1b, _, err := p1.Affine()
		if err != nil {
			return nil, err
		}
		x1 := new(saferith.Nat).SetBytes(x1b)
		x1.Mod(x1, n)

		r := new(saferith.Nat).ModAdd(e, x1, n)
		if r.EqZero() == 1 || new(saferith.Nat).ModAdd(r, k, n).EqZero() == 1 {
			k.SetUint64(0)
			continue
		}

		s := new(saferith.Nat).ModMul(r, d, n)
		s.ModSub(k, s, n)
		s.ModMul(s, dInv, n)
		k.SetUint64(0)
		if s.EqZero() == 1 {
			continue
		}

		return &Signature{R: r.Big(), S: s.Big()}, nil
	}
	return nil, ErrCurve.WithCausef("no usable nonce after %d attempts", maxIterations)
}

// Verify reports whether sig is a valid signature of msg by pub under the signer
// identity uid, DefaultUserID when nil.
//
// Verify never fails with an error: r or s outside [1, n-1], t = (r + s) mod n = 0,
// an over-long uid and a mismatch all return false.
func Verify(pub *PublicKey, msg, uid []byte, sig *Signature) bool {
	if pub == nil || sig == nil || !inRange(sig.R) || !inRange(sig.S) {
		return false
	}
	if uid == nil {
		uid = DefaultUserID
	}

	e, err := digest(pub, msg, uid)
	if err != nil {
		return false
	}

	n := curve.Order()
	r := new(saferith.Nat).SetBig(sig.R, curve.FieldSize*8)
	s := new(saferith.Nat).SetBig(sig.S, curve.FieldSize*8)

	t := new(saferith.Nat).ModAdd(r, s, n)
	if t.EqZero() == 1 {
		return false
	}

	// (x1, y1) = s·G + t·Q
	sg, err := curve.ScalarBaseMult(s)
	if err != nil {
		return false
	}
	tq, err := curve.ScalarMult(t, pub.point)
	if err != nil {
		return false
	}
	sum, err := curve.Add(sg, tq)
	if err != nil {
		return false
	}
	x1b, _, err := sum.Affine()
	if err != nil {
		return false
	}

	x1 := new(saferith.Nat).SetBytes(x1b)
	x1.Mod(x1, n)
	return new(saferith.Nat).ModAdd(e, x1, n).Eq(r) == 1
}

// inRange reports whether 1 ≤ v ≤ n-1.
func inRange(v *big.Int) bool {
	return v != nil && v.Sign() > 0 && v.Cmp(order) < 0
}
