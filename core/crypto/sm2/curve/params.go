// Package curve implements arithmetic on the SM2 recommended curve sm2p256v1
// (GB/T 32918.5-2017): y² = x³ + ax + b over GF(p) with a = p - 3.
//
// Field and scalar values are saferith naturals, so every modular operation runs in
// time independent of the operand values. Points are kept in Jacobian coordinates and
// scalar multiplication is a fixed-length Montgomery ladder driven by constant-time
// conditional swaps.
package curve

import (
	"encoding/hex"
	"math/big"

	"github.com/cronokirby/saferith"

	"github.com/kochabx/smkit/errors"
)

const (
	// FieldSize is the byte length of a field element or scalar.
	FieldSize = 32

	fieldBits = FieldSize * 8
)

const (
	pHex  = "FFFFFFFEFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFF00000000FFFFFFFFFFFFFFFF"
	aHex  = "FFFFFFFEFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFF00000000FFFFFFFFFFFFFFFC"
	bHex  = "28E9FA9E9D9F5E344D5A9E4BCF6509A7F39789F515AB8F92DDBCBD414D940E93"
	nHex  = "FFFFFFFEFFFFFFFFFFFFFFFFFFFFFFFF7203DF6B21C6052B53BBF40939D54123"
	gxHex = "32C4AE2C1F1981195F9904466A39C9948FE30BBFF2660BE1715A4589334C74C7"
	gyHex = "BC3736A2F4F6779C59BDCEE36B692153D0A9877CC62A474002DF32E52139F0A0"
)

var (
	// ErrCurve covers points off the curve, infinity where a finite point is required,
	// out-of-range scalars and exhausted resampling loops.
	ErrCurve = errors.Curve("sm2: curve error")

	// ErrEncoding reports an unrecognised point prefix or a malformed length.
	ErrEncoding = errors.Encoding("sm2: invalid point encoding")
)

var (
	p = saferith.ModulusFromBytes(mustDecodeHex(pHex))
	n = saferith.ModulusFromBytes(mustDecodeHex(nHex))

	a  = natFromHex(aHex)
	b  = natFromHex(bHex)
	gx = natFromHex(gxHex)
	gy = natFromHex(gyHex)

	// p ≡ 3 (mod 4), so square roots are a single exponentiation by (p+1)/4.
	sqrtExp = new(saferith.Nat).SetBig(
		new(big.Int).Rsh(new(big.Int).Add(bigFromHex(pHex), big.NewInt(1)), 2), fieldBits)

	one   = new(saferith.Nat).SetUint64(1)
	three = new(saferith.Nat).SetUint64(3)
	four  = new(saferith.Nat).SetUint64(4)
	eight = new(saferith.Nat).SetUint64(8)
)

// CurveParams exposes the domain parameters of sm2p256v1.
type CurveParams struct {
	Name    string
	BitSize int
	P       *big.Int // field prime
	A, B    *big.Int // equation coefficients
	N       *big.Int // order of the base point
	Gx, Gy  *big.Int // base point
	H       int      // cofactor
}

// Params returns a fresh copy of the curve parameters.
func Params() *CurveParams {
	return &CurveParams{
		Name:    "sm2p256v1",
		BitSize: fieldBits,
		P:       bigFromHex(pHex),
		A:       bigFromHex(aHex),
		B:       bigFromHex(bHex),
		N:       bigFromHex(nHex),
		Gx:      bigFromHex(gxHex),
		Gy:      bigFromHex(gyHex),
		H:       1,
	}
}

// Order returns the group order n as a modulus.
func Order() *saferith.Modulus {
	return n
}

// Field returns the field prime p as a modulus.
func Field() *saferith.Modulus {
	return p
}

// ParamBytes returns a, b, Gx and Gy as fixed-width big-endian strings, the layout
// used by the signer identity hash.
func ParamBytes() (aBytes, bBytes, gxBytes, gyBytes []byte) {
	return natBytes(a), natBytes(b), natBytes(gx), natBytes(gy)
}

func mustDecodeHex(s string) []byte {
	out, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return out
}

func natFromHex(s string) *saferith.Nat {
	return new(saferith.Nat).SetBytes(mustDecodeHex(s))
}

func bigFromHex(s string) *big.Int {
	return new(big.Int).SetBytes(mustDecodeHex(s))
}

// natBytes writes x as a FieldSize-byte big-endian string.
func natBytes(x *saferith.Nat) []byte {
	out := make([]byte, FieldSize)
	new(saferith.Nat).Mod(x, p).FillBytes(out)
	return out
}
