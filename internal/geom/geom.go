// Package geom provides the 2D primitives shared by the sampling, transform
// and rendering stages:
// - Points, which double as complex numbers (X real, Y imaginary)
// - Complex arithmetic (add, multiply, magnitude, unit vector from angle)
// - Bounding boxes and affine transforms used to fit curves to a viewport
package geom

import (
	"fmt"
	"math"
)

// Point is a 2D point in Cartesian coordinates. The Fourier stages read the
// same pair as a complex number x + iy; call sites say which reading they use.
type Point struct {
	X float64
	Y float64
}

// Box represents an axis-aligned rectangle.
type Box struct {
	X float64
	Y float64
	W float64
	H float64
}

// Affine represents a 2D affine transform in row-major form:
// [ a b c ]
// [ d e f ]
// where (x', y') = (a*x + b*y + c, d*x + e*y + f)
type Affine struct {
	A float64
	B float64
	C float64
	D float64
	E float64
	F float64
}

func MakePoint(x, y float64) Point               { return Point{X: x, Y: y} }
func MakeBox(x, y, w, h float64) Box             { return Box{X: x, Y: y, W: w, H: h} }
func MakeAffine(a, b, c, d, e, f float64) Affine { return Affine{A: a, B: b, C: c, D: d, E: e, F: f} }

// Identity is the identity transform.
var Identity = MakeAffine(1, 0, 0, 0, 1, 0)

func (p Point) Add(q Point) Point     { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) Sub(q Point) Point     { return Point{p.X - q.X, p.Y - q.Y} }
func (p Point) Scale(s float64) Point { return Point{p.X * s, p.Y * s} }

// Mul multiplies p and q as complex numbers.
func (p Point) Mul(q Point) Point {
	return Point{
		X: p.X*q.X - p.Y*q.Y,
		Y: p.X*q.Y + p.Y*q.X,
	}
}

// Abs returns the magnitude of p read as a complex number.
func (p Point) Abs() float64 { return math.Hypot(p.X, p.Y) }

// Arg returns the phase angle of p read as a complex number, in (-π, π].
func (p Point) Arg() float64 { return math.Atan2(p.Y, p.X) }

// IsNaN reports whether either coordinate is NaN.
func (p Point) IsNaN() bool { return math.IsNaN(p.X) || math.IsNaN(p.Y) }

func (p Point) String() string { return fmt.Sprintf("(%g, %g)", p.X, p.Y) }

// Expim returns e^(i·theta), the unit vector (cos θ, sin θ).
func Expim(theta float64) Point {
	sin, cos := math.Sincos(theta)
	return Point{X: cos, Y: sin}
}

// Lerp linearly interpolates between p (t=0) and q (t=1).
func Lerp(p, q Point, t float64) Point {
	mt := 1 - t
	return Point{
		X: mt*p.X + t*q.X,
		Y: mt*p.Y + t*q.Y,
	}
}

func Dot(p, q Point) float64 { return p.X*q.X + p.Y*q.Y }

func Dist(p, q Point) float64 {
	dx := p.X - q.X
	dy := p.Y - q.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Mean returns the arithmetic mean of the given points. It returns the zero
// point for an empty slice.
func Mean(points []Point) Point {
	if len(points) == 0 {
		return Point{}
	}
	var sum Point
	for _, p := range points {
		sum = sum.Add(p)
	}
	return sum.Scale(1 / float64(len(points)))
}

// Pad grows the box by the given fraction of its larger side on every edge.
func (b Box) Pad(frac float64) Box {
	d := math.Max(b.W, b.H) * frac
	return MakeBox(b.X-d, b.Y-d, b.W+2*d, b.H+2*d)
}

// Center returns the center of the box.
func (b Box) Center() Point { return MakePoint(b.X+0.5*b.W, b.Y+0.5*b.H) }

// Empty reports whether the box has no area.
func (b Box) Empty() bool { return b.W <= 0 || b.H <= 0 }

// MulPoint applies the affine transform to a point.
func (t Affine) MulPoint(p Point) Point {
	return Point{
		X: t.A*p.X + t.B*p.Y + t.C,
		Y: t.D*p.X + t.E*p.Y + t.F,
	}
}

// Mul composes two affine transforms (applies u then t).
func (t Affine) Mul(u Affine) Affine {
	return MakeAffine(
		t.A*u.A+t.B*u.D,
		t.A*u.B+t.B*u.E,
		t.A*u.C+t.B*u.F+t.C,
		t.D*u.A+t.E*u.D,
		t.D*u.B+t.E*u.E,
		t.D*u.C+t.E*u.F+t.F,
	)
}

// Inv returns the inverse of the affine transform.
// Returns an error if the transform is not invertible (determinant is zero).
func (t Affine) Inv() (Affine, error) {
	det := t.A*t.E - t.B*t.D
	if math.Abs(det) < 1e-10 {
		return Affine{}, fmt.Errorf("affine transform is not invertible (determinant ≈ 0)")
	}
	return MakeAffine(
		t.E/det, -t.B/det, (t.B*t.F-t.C*t.E)/det,
		-t.D/det, t.A/det, (t.C*t.D-t.A*t.F)/det,
	), nil
}

// Scale returns the uniform scale factor of the transform, assuming it has no
// shear.
func (t Affine) Scale() float64 {
	return math.Sqrt(math.Abs(t.A*t.E - t.B*t.D))
}

// FillBox returns a transform that maps box b1 into b2, preserving aspect
// ratio and centering b1 inside b2.
func FillBox(b1, b2 Box) (Affine, error) {
	if b1.Empty() {
		return Affine{}, fmt.Errorf("source box must have positive width and height, got W=%v H=%v", b1.W, b1.H)
	}
	if b2.Empty() {
		return Affine{}, fmt.Errorf("destination box must have positive width and height, got W=%v H=%v", b2.W, b2.H)
	}

	sc := math.Min(b2.W/b1.W, b2.H/b1.H)
	centerDst := MakeAffine(1, 0, b2.X+0.5*b2.W, 0, 1, b2.Y+0.5*b2.H)
	centerSrc := MakeAffine(1, 0, -(b1.X + 0.5*b1.W), 0, 1, -(b1.Y + 0.5*b1.H))
	return centerDst.Mul(MakeAffine(sc, 0, 0, 0, sc, 0)).Mul(centerSrc), nil
}

// Circle returns n evenly spaced points on the circle of radius r around c,
// starting at angle zero. The first point is not repeated.
func Circle(c Point, r float64, n int) []Point {
	if n <= 0 {
		return nil
	}
	points := make([]Point, n)
	for i := range points {
		points[i] = c.Add(Expim(2 * math.Pi * float64(i) / float64(n)).Scale(r))
	}
	return points
}
