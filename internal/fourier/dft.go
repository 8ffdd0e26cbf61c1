package fourier

import (
	"context"
	"errors"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/irfansharif/epicycle/internal/geom"
)

// ErrInvalidParams is returned (wrapped) when sample, term or point counts are
// out of range.
var ErrInvalidParams = errors.New("invalid parameters")

// Coefficient is one epicycle: a complex amplitude rotating at an integer
// frequency. Value is read as a complex number.
type Coefficient struct {
	Frequency int
	Value     geom.Point
}

// Amplitude returns the radius of the epicycle.
func (c Coefficient) Amplitude() float64 { return c.Value.Abs() }

// Phase returns the epicycle's angle at θ=0.
func (c Coefficient) Phase() float64 { return c.Value.Arg() }

// Transform computes m coefficients from the samples, which are read as
// complex numbers. Coefficient i has frequency k = Frequency(i) and value
//
//	c(k) = 1/N · Σ_{j<N} P_j · e^(-2πi·k·j/N)
//
// This is a direct O(N·m) summation; it runs once per curve.
func Transform(samples []geom.Point, m int) ([]Coefficient, error) {
	if err := checkTransform(samples, m); err != nil {
		return nil, err
	}
	coeffs := make([]Coefficient, m)
	transformRange(samples, coeffs, 0, m)
	return coeffs, nil
}

// TransformParallel is Transform with the frequencies split across up to
// workers goroutines. Each worker owns a disjoint range of the output, and the
// samples are only read, so the result is identical to Transform.
func TransformParallel(ctx context.Context, samples []geom.Point, m, workers int) ([]Coefficient, error) {
	if err := checkTransform(samples, m); err != nil {
		return nil, err
	}
	if workers <= 1 {
		return Transform(samples, m)
	}

	coeffs := make([]Coefficient, m)
	chunk := (m + workers - 1) / workers
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for lo := 0; lo < m; lo += chunk {
		hi := min(lo+chunk, m)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			transformRange(samples, coeffs, lo, hi)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return coeffs, nil
}

func checkTransform(samples []geom.Point, m int) error {
	if len(samples) == 0 {
		return fmt.Errorf("%w: no samples", ErrInvalidParams)
	}
	if m <= 0 {
		return fmt.Errorf("%w: term count must be positive, got %d", ErrInvalidParams, m)
	}
	return nil
}

// transformRange fills coeffs[lo:hi].
func transformRange(samples []geom.Point, coeffs []Coefficient, lo, hi int) {
	n := len(samples)
	for i := lo; i < hi; i++ {
		k := Frequency(i)
		var x geom.Point
		for j, p := range samples {
			x = x.Add(p.Mul(geom.Expim(float64(k) * float64(j) * 2 / float64(n) * -math.Pi)))
		}
		coeffs[i] = Coefficient{
			Frequency: k,
			Value:     x.Scale(1 / float64(n)),
		}
	}
}

// Eval returns the truncated inverse transform at angle theta: the sum of the
// first m coefficients, each rotated by e^(i·k·θ). The result is read as a
// plane point. m is clamped to len(coeffs).
func Eval(coeffs []Coefficient, m int, theta float64) geom.Point {
	m = max(0, min(m, len(coeffs)))
	var p geom.Point
	for _, c := range coeffs[:m] {
		p = p.Add(c.Value.Mul(geom.Expim(theta * float64(c.Frequency))))
	}
	return p
}

// Arms returns the joints of the epicycle chain at angle theta: the origin
// followed by the running partial sums over the first m coefficients. The last
// joint equals Eval(coeffs, m, theta).
func Arms(coeffs []Coefficient, m int, theta float64) []geom.Point {
	m = max(0, min(m, len(coeffs)))
	joints := make([]geom.Point, 0, m+1)
	var p geom.Point
	joints = append(joints, p)
	for _, c := range coeffs[:m] {
		p = p.Add(c.Value.Mul(geom.Expim(theta * float64(c.Frequency))))
		joints = append(joints, p)
	}
	return joints
}
