package curve

import (
	"fmt"
	"io"

	"github.com/cronokirby/saferith"
)

// maxIterations bounds rejection sampling; with n close to 2²⁵⁶ a draw is rejected
// with probability below 2⁻³².
const maxIterations = 255

// IsValidScalar reports whether 1 ≤ k ≤ n-1.
func IsValidScalar(k *saferith.Nat) bool {
	if k == nil {
		return false
	}
	_, _, lt := k.CmpMod(n)
	return (lt & (k.EqZero() ^ 1)) == 1
}

// NewScalar interprets b as a big-endian integer and checks it lies in [1, n-1].
func NewScalar(b []byte) (*saferith.Nat, error) {
	if len(b) == 0 || len(b) > FieldSize {
		return nil, ErrCurve.WithCausef("scalar must be 1..%d bytes, got %d", FieldSize, len(b))
	}
	k := new(saferith.Nat).SetBytes(b)
	if !IsValidScalar(k) {
		return nil, ErrCurve.WithCausef("scalar out of range [1, n-1]")
	}
	return k.Mod(k, n), nil
}

// ScalarBytes writes k mod n as a FieldSize-byte big-endian string.
func ScalarBytes(k *saferith.Nat) []byte {
	out := make([]byte, FieldSize)
	new(saferith.Nat).Mod(k, n).FillBytes(out)
	return out
}

// RandomScalar samples k uniformly from [1, n-1] by rejection.
func RandomScalar(rand io.Reader) (*saferith.Nat, error) {
	buf := make([]byte, FieldSize)
	k := new(saferith.Nat)
	for i := 0; i < maxIterations; i++ {
		if _, err := io.ReadFull(rand, buf); err != nil {
			return nil, fmt.Errorf("sm2: read randomness: %w", err)
		}
		k.SetBytes(buf)
		if IsValidScalar(k) {
			return k.Mod(k, n), nil
		}
	}
	return nil, ErrCurve.WithCausef("no valid scalar after %d draws", maxIterations)
}

// ScalarMult returns k·q. k must lie in [1, n-1] and q must be a finite point on the
// curve; both violations fail with ErrCurve.
func ScalarMult(k *saferith.Nat, q *Point) (*Point, error) {
	if !IsValidScalar(k) {
		return nil, ErrCurve.WithCausef("scalar out of range [1, n-1]")
	}
	if q == nil || !q.IsOnCurve() {
		return nil, ErrCurve.WithCausef("point not on curve")
	}
	return new(Point).scalarMult(k, q), nil
}

// ScalarBaseMult returns k·G.
func ScalarBaseMult(k *saferith.Nat) (*Point, error) {
	return ScalarMult(k, Generator())
}

// scalarMult runs a Montgomery ladder over all fieldBits bits of k, most significant
// first. Every iteration performs one addition and one doubling regardless of the bit.
func (v *Point) scalarMult(k *saferith.Nat, q *Point) *Point {
	var kb [FieldSize]byte
	new(saferith.Nat).Mod(k, n).FillBytes(kb[:])

	var s scratch
	var swap Point
	r0 := Infinity()
	r1 := new(Point).Set(q)
	for i := 0; i < fieldBits; i++ {
		bit := saferith.Choice((kb[i/8] >> (7 - uint(i%8))) & 1)
		r0.condSwap(r1, bit, &swap)
		r1.addWith(r0, r1, &s)
		r0.doubleWith(r0, &s)
		r0.condSwap(r1, bit, &swap)
	}

	return v.Set(r0)
}
