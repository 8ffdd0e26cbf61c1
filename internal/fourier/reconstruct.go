package fourier

import (
	"fmt"
	"iter"
	"math"

	"github.com/irfansharif/epicycle/internal/geom"
)

// Frame is one reconstruction: a closed polyline of evenly spaced points
// (the closing edge is implied, the first point is not repeated) and the
// number of terms that produced it.
type Frame struct {
	Terms  int
	Points []geom.Point
}

// Reconstructor produces frames for term counts 0, 1, ..., M-1, 0, 1, ...
// forever. Its only mutable state is the current term count; the coefficient
// table is shared read-only.
type Reconstructor struct {
	coeffs []Coefficient
	points int
	terms  int
}

// NewReconstructor returns a reconstructor over the coefficient table that
// evaluates q points per frame, starting at zero terms.
func NewReconstructor(coeffs []Coefficient, q int) (*Reconstructor, error) {
	if len(coeffs) == 0 {
		return nil, fmt.Errorf("%w: empty coefficient table", ErrInvalidParams)
	}
	if q <= 0 {
		return nil, fmt.Errorf("%w: point count must be positive, got %d", ErrInvalidParams, q)
	}
	return &Reconstructor{coeffs: coeffs, points: q}, nil
}

// Terms returns the term count of the next frame.
func (r *Reconstructor) Terms() int { return r.terms }

// MaxTerms returns the number of coefficients available.
func (r *Reconstructor) MaxTerms() int { return len(r.coeffs) }

// Points returns the number of points per frame.
func (r *Reconstructor) Points() int { return r.points }

// Seek sets the term count of the next frame, wrapping modulo MaxTerms.
func (r *Reconstructor) Seek(m int) {
	n := len(r.coeffs)
	r.terms = ((m % n) + n) % n
}

// Peek computes the frame for the current term count without advancing.
func (r *Reconstructor) Peek() Frame {
	return Frame{Terms: r.terms, Points: r.polyline(r.terms)}
}

// Next computes the frame for the current term count, then advances the term
// count by one, wrapping from MaxTerms-1 back to 0.
func (r *Reconstructor) Next() Frame {
	f := r.Peek()
	r.terms = (r.terms + 1) % len(r.coeffs)
	return f
}

// Frames returns an unending sequence of frames driven by Next. It stops only
// when the consumer stops ranging.
func (r *Reconstructor) Frames() iter.Seq[Frame] {
	return func(yield func(Frame) bool) {
		for {
			if !yield(r.Next()) {
				return
			}
		}
	}
}

func (r *Reconstructor) polyline(m int) []geom.Point {
	points := make([]geom.Point, r.points)
	for t := range points {
		a := float64(t) * 2 / float64(r.points) * math.Pi
		points[t] = Eval(r.coeffs, m, a)
	}
	return points
}
