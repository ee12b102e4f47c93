package curve

import (
	"fmt"

	"github.com/cronokirby/saferith"
)

// PointForm selects the octet-string layout of an encoded point (GB/T 32918.1 §4.2.9).
type PointForm int

const (
	// Uncompressed is 0x04 ‖ X ‖ Y.
	Uncompressed PointForm = iota
	// Compressed is (0x02 | ỹ) ‖ X, ỹ being the parity of Y.
	Compressed
	// Hybrid is (0x06 | ỹ) ‖ X ‖ Y.
	Hybrid
)

// Point prefixes
const (
	CompressedEvenTag = 0x02
	CompressedOddTag  = 0x03
	UncompressedTag   = 0x04
	HybridEvenTag     = 0x06
	HybridOddTag      = 0x07
)

// Encoded point sizes
const (
	CompressedSize   = 1 + FieldSize
	UncompressedSize = 1 + 2*FieldSize
	HybridSize       = UncompressedSize
)

// String returns the name of the form.
func (f PointForm) String() string {
	switch f {
	case Uncompressed:
		return "uncompressed"
	case Compressed:
		return "compressed"
	case Hybrid:
		return "hybrid"
	default:
		return fmt.Sprintf("PointForm(%d)", int(f))
	}
}

// ParsePointForm maps a form name to its PointForm.
func ParsePointForm(s string) (PointForm, error) {
	switch s {
	case "uncompressed", "":
		return Uncompressed, nil
	case "compressed":
		return Compressed, nil
	case "hybrid":
		return Hybrid, nil
	default:
		return 0, ErrEncoding.WithCausef("unknown point form %q", s)
	}
}

// Bytes encodes v in the given form. The point at infinity has no encoding.
func (v *Point) Bytes(form PointForm) ([]byte, error) {
	x, y, err := v.Affine()
	if err != nil {
		return nil, err
	}
	parity := y[FieldSize-1] & 1

	switch form {
	case Uncompressed:
		out := make([]byte, 0, UncompressedSize)
		out = append(out, UncompressedTag)
		out = append(out, x...)
		return append(out, y...), nil
	case Compressed:
		out := make([]byte, 0, CompressedSize)
		out = append(out, CompressedEvenTag|parity)
		return append(out, x...), nil
	case Hybrid:
		out := make([]byte, 0, HybridSize)
		out = append(out, HybridEvenTag|parity)
		out = append(out, x...)
		return append(out, y...), nil
	default:
		return nil, ErrEncoding.WithCausef("unknown point form %d", int(form))
	}
}

// ParsePoint decodes a prefixed point in any of the three forms. An unknown prefix or
// a length that does not match the prefix fails with ErrEncoding; a result that is not
// on the curve fails with ErrCurve.
func ParsePoint(data []byte) (*Point, error) {
	if len(data) == 0 {
		return nil, ErrEncoding.WithCausef("empty point")
	}

	switch tag := data[0]; tag {
	case CompressedEvenTag, CompressedOddTag:
		if len(data) != CompressedSize {
			return nil, ErrEncoding.WithCausef("compressed point must be %d bytes, got %d", CompressedSize, len(data))
		}
		return decompress(data[1:], tag&1)
	case UncompressedTag:
		if len(data) != UncompressedSize {
			return nil, ErrEncoding.WithCausef("uncompressed point must be %d bytes, got %d", UncompressedSize, len(data))
		}
		return NewPoint(data[1:1+FieldSize], data[1+FieldSize:])
	case HybridEvenTag, HybridOddTag:
		if len(data) != HybridSize {
			return nil, ErrEncoding.WithCausef("hybrid point must be %d bytes, got %d", HybridSize, len(data))
		}
		y := data[1+FieldSize:]
		if y[FieldSize-1]&1 != tag&1 {
			return nil, ErrEncoding.WithCausef("hybrid prefix parity does not match y")
		}
		return NewPoint(data[1:1+FieldSize], y)
	default:
		return nil, ErrEncoding.WithCausef("unknown point prefix 0x%02x", tag)
	}
}

// decompress recovers y from x and the requested parity.
func decompress(xb []byte, parity byte) (*Point, error) {
	v := new(Point)
	if err := setCoordinate(&v.x, xb); err != nil {
		return nil, err
	}

	// rhs = x³ + ax + b
	rhs := new(saferith.Nat).ModMul(&v.x, &v.x, p)
	rhs.ModMul(rhs, &v.x, p)
	ax := new(saferith.Nat).ModMul(a, &v.x, p)
	rhs.ModAdd(rhs, ax, p)
	rhs.ModAdd(rhs, b, p)

	y := new(saferith.Nat).Exp(rhs, sqrtExp, p)
	if new(saferith.Nat).ModMul(y, y, p).Eq(rhs) != 1 {
		return nil, ErrCurve.WithCausef("x is not the abscissa of a curve point")
	}

	neg := new(saferith.Nat).ModNeg(y, p)
	flip := saferith.Choice(natBytes(y)[FieldSize-1]&1 ^ parity)
	y.CondAssign(flip, neg)

	v.y.SetNat(y)
	v.z.SetNat(one).Resize(fieldBits)
	return v, nil
}
