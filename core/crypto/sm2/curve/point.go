package curve

import (
	"github.com/cronokirby/saferith"
)

// Point is a point on sm2p256v1 in Jacobian coordinates (X, Y, Z), representing the
// affine point (X/Z², Y/Z³). Z = 0 is the point at infinity.
//
// Points built by this package are always on the curve; the zero value is the point
// at infinity.
type Point struct {
	x, y, z saferith.Nat
}

// Infinity returns the point at infinity.
func Infinity() *Point {
	return new(Point).setInfinity()
}

// Generator returns the base point G.
func Generator() *Point {
	v := new(Point)
	v.x.SetNat(gx)
	v.y.SetNat(gy)
	v.z.SetNat(one).Resize(fieldBits)
	return v
}

// NewPoint builds a point from big-endian affine coordinates of at most FieldSize
// bytes. Coordinates outside the field fail with ErrEncoding, a pair that does not
// satisfy the curve equation fails with ErrCurve.
func NewPoint(x, y []byte) (*Point, error) {
	if len(x) > FieldSize || len(y) > FieldSize {
		return nil, ErrEncoding.WithCausef("coordinate longer than %d bytes", FieldSize)
	}

	v := new(Point)
	if err := setCoordinate(&v.x, x); err != nil {
		return nil, err
	}
	if err := setCoordinate(&v.y, y); err != nil {
		return nil, err
	}
	v.z.SetNat(one).Resize(fieldBits)

	if !v.IsOnCurve() {
		return nil, ErrCurve.WithCausef("point not on curve")
	}
	return v, nil
}

func setCoordinate(dst *saferith.Nat, src []byte) error {
	dst.SetBytes(src)
	if _, _, lt := dst.CmpMod(p); lt != 1 {
		return ErrEncoding.WithCausef("coordinate not reduced modulo p")
	}
	dst.Mod(dst, p)
	return nil
}

func (v *Point) setInfinity() *Point {
	v.x.SetNat(one).Resize(fieldBits)
	v.y.SetNat(one).Resize(fieldBits)
	v.z.SetUint64(0).Resize(fieldBits)
	return v
}

// Set sets v = q and returns v.
func (v *Point) Set(q *Point) *Point {
	v.x.SetNat(&q.x)
	v.y.SetNat(&q.y)
	v.z.SetNat(&q.z)
	return v
}

// IsInfinity reports whether v is the point at infinity.
func (v *Point) IsInfinity() bool {
	return v.z.EqZero() == 1
}

// IsOnCurve reports whether v is a finite point satisfying
// Y² = X³ + aXZ⁴ + bZ⁶.
func (v *Point) IsOnCurve() bool {
	if v.IsInfinity() {
		return false
	}

	z2 := new(saferith.Nat).ModMul(&v.z, &v.z, p)
	z4 := new(saferith.Nat).ModMul(z2, z2, p)
	z6 := new(saferith.Nat).ModMul(z4, z2, p)

	rhs := new(saferith.Nat).ModMul(&v.x, &v.x, p)
	rhs.ModMul(rhs, &v.x, p)

	ax := new(saferith.Nat).ModMul(a, &v.x, p)
	ax.ModMul(ax, z4, p)
	rhs.ModAdd(rhs, ax, p)

	bz := new(saferith.Nat).ModMul(b, z6, p)
	rhs.ModAdd(rhs, bz, p)

	lhs := new(saferith.Nat).ModMul(&v.y, &v.y, p)
	return lhs.Eq(rhs) == 1
}

// Equal reports whether v and q represent the same point.
func (v *Point) Equal(q *Point) bool {
	vInf, qInf := v.IsInfinity(), q.IsInfinity()
	if vInf || qInf {
		return vInf == qInf
	}

	// X1·Z2² = X2·Z1² and Y1·Z2³ = Y2·Z1³
	z1z1 := new(saferith.Nat).ModMul(&v.z, &v.z, p)
	z2z2 := new(saferith.Nat).ModMul(&q.z, &q.z, p)

	u1 := new(saferith.Nat).ModMul(&v.x, z2z2, p)
	u2 := new(saferith.Nat).ModMul(&q.x, z1z1, p)

	s1 := new(saferith.Nat).ModMul(&v.y, z2z2, p)
	s1.ModMul(s1, &q.z, p)
	s2 := new(saferith.Nat).ModMul(&q.y, z1z1, p)
	s2.ModMul(s2, &v.z, p)

	return (u1.Eq(u2) & s1.Eq(s2)) == 1
}

// Affine returns the FieldSize-byte big-endian affine coordinates of v.
func (v *Point) Affine() (x, y []byte, err error) {
	ax, ay, err := v.affine()
	if err != nil {
		return nil, nil, err
	}
	return natBytes(ax), natBytes(ay), nil
}

func (v *Point) affine() (x, y *saferith.Nat, err error) {
	if v.IsInfinity() {
		return nil, nil, ErrCurve.WithCausef("point at infinity has no affine form")
	}

	zInv := new(saferith.Nat).ModInverse(&v.z, p)
	zInv2 := new(saferith.Nat).ModMul(zInv, zInv, p)
	zInv3 := new(saferith.Nat).ModMul(zInv2, zInv, p)

	x = new(saferith.Nat).ModMul(&v.x, zInv2, p)
	y = new(saferith.Nat).ModMul(&v.y, zInv3, p)
	return x, y, nil
}

// scratch holds the temporaries of one addition or doubling. The ladder keeps a
// single scratch for all of its iterations.
type scratch struct {
	t   [15]saferith.Nat
	out Point
	tmp Point
}

// double sets v = 2q using dbl-2001-b for a = -3 and returns v. Doubling the point
// at infinity yields the point at infinity.
func (v *Point) double(q *Point) *Point {
	return v.doubleWith(q, new(scratch))
}

func (v *Point) doubleWith(q *Point, s *scratch) *Point {
	delta := s.t[0].ModMul(&q.z, &q.z, p)
	gamma := s.t[1].ModMul(&q.y, &q.y, p)
	beta := s.t[2].ModMul(&q.x, gamma, p)

	// alpha = 3(X1 - delta)(X1 + delta)
	t0 := s.t[3].ModSub(&q.x, delta, p)
	t1 := s.t[4].ModAdd(&q.x, delta, p)
	alpha := s.t[5].ModMul(t0, t1, p)
	alpha.ModMul(alpha, three, p)

	// X3 = alpha² - 8beta
	x3 := s.t[6].ModMul(alpha, alpha, p)
	t0.ModMul(beta, eight, p)
	x3.ModSub(x3, t0, p)

	// Z3 = (Y1 + Z1)² - gamma - delta
	z3 := s.t[7].ModAdd(&q.y, &q.z, p)
	z3.ModMul(z3, z3, p)
	z3.ModSub(z3, gamma, p)
	z3.ModSub(z3, delta, p)

	// Y3 = alpha(4beta - X3) - 8gamma²
	y3 := s.t[8].ModMul(beta, four, p)
	y3.ModSub(y3, x3, p)
	y3.ModMul(y3, alpha, p)
	t1.ModMul(gamma, gamma, p)
	t1.ModMul(t1, eight, p)
	y3.ModSub(y3, t1, p)

	v.x.SetNat(x3)
	v.y.SetNat(y3)
	v.z.SetNat(z3)
	return v
}

// add sets v = q1 + q2 using add-2007-bl and returns v. The exceptional cases
// (either input at infinity, q1 = q2) are resolved by constant-time selection, so
// the sequence of field operations never depends on the inputs.
func (v *Point) add(q1, q2 *Point) *Point {
	return v.addWith(q1, q2, new(scratch))
}

func (v *Point) addWith(q1, q2 *Point, s *scratch) *Point {
	z1z1 := s.t[0].ModMul(&q1.z, &q1.z, p)
	z2z2 := s.t[1].ModMul(&q2.z, &q2.z, p)

	u1 := s.t[2].ModMul(&q1.x, z2z2, p)
	u2 := s.t[3].ModMul(&q2.x, z1z1, p)

	s1 := s.t[4].ModMul(&q1.y, &q2.z, p)
	s1.ModMul(s1, z2z2, p)
	s2 := s.t[5].ModMul(&q2.y, &q1.z, p)
	s2.ModMul(s2, z1z1, p)

	h := s.t[6].ModSub(u2, u1, p)
	i := s.t[7].ModAdd(h, h, p)
	i.ModMul(i, i, p)
	j := s.t[8].ModMul(h, i, p)

	r := s.t[9].ModSub(s2, s1, p)
	r.ModAdd(r, r, p)
	vv := s.t[10].ModMul(u1, i, p)

	// X3 = r² - J - 2V
	x3 := s.t[11].ModMul(r, r, p)
	x3.ModSub(x3, j, p)
	x3.ModSub(x3, vv, p)
	x3.ModSub(x3, vv, p)

	// Y3 = r(V - X3) - 2·S1·J
	y3 := s.t[12].ModSub(vv, x3, p)
	y3.ModMul(y3, r, p)
	t := s.t[13].ModMul(s1, j, p)
	t.ModAdd(t, t, p)
	y3.ModSub(y3, t, p)

	// Z3 = ((Z1 + Z2)² - Z1Z1 - Z2Z2)·H
	z3 := s.t[14].ModAdd(&q1.z, &q2.z, p)
	z3.ModMul(z3, z3, p)
	z3.ModSub(z3, z1z1, p)
	z3.ModSub(z3, z2z2, p)
	z3.ModMul(z3, h, p)

	out := &s.out
	out.x.SetNat(x3)
	out.y.SetNat(y3)
	out.z.SetNat(z3)

	// the doubling below reuses the temporaries, so h and r are read first
	same := h.EqZero() & r.EqZero()
	dbl := s.tmp.doubleWith(q1, s)
	out.condAssign(same, dbl)
	out.condAssign(q1.z.EqZero(), q2)
	out.condAssign(q2.z.EqZero(), q1)

	return v.Set(out)
}

// condAssign sets v = q when c is 1, without branching on c.
func (v *Point) condAssign(c saferith.Choice, q *Point) {
	v.x.CondAssign(c, &q.x)
	v.y.CondAssign(c, &q.y)
	v.z.CondAssign(c, &q.z)
}

// condSwap exchanges v and q when c is 1, without branching on c. tmp is scratch.
func (v *Point) condSwap(q *Point, c saferith.Choice, tmp *Point) {
	tmp.Set(v)
	v.condAssign(c, q)
	q.condAssign(c, tmp)
}

// validate accepts the point at infinity or a finite on-curve point.
func (v *Point) validate() error {
	if v == nil {
		return ErrCurve.WithCausef("nil point")
	}
	if !v.IsInfinity() && !v.IsOnCurve() {
		return ErrCurve.WithCausef("point not on curve")
	}
	return nil
}

// Add returns q1 + q2.
func Add(q1, q2 *Point) (*Point, error) {
	if err := q1.validate(); err != nil {
		return nil, err
	}
	if err := q2.validate(); err != nil {
		return nil, err
	}
	return new(Point).add(q1, q2), nil
}

// Double returns 2q.
func Double(q *Point) (*Point, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}
	return new(Point).double(q), nil
}

// Negate returns -q.
func Negate(q *Point) (*Point, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}
	out := new(Point).Set(q)
	out.y.ModNeg(&out.y, p)
	return out, nil
}
