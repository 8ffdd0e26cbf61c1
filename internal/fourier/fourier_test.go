package fourier

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/irfansharif/epicycle/internal/geom"
	"github.com/irfansharif/epicycle/internal/path"
)

func diff(t *testing.T, want, got any, opts ...cmp.Option) {
	t.Helper()
	if d := cmp.Diff(want, got, opts...); d != "" {
		t.Error(d)
	}
}

func pt(x, y float64) geom.Point { return geom.MakePoint(x, y) }

// unitCircle approximates the unit circle with four cubic Béziers.
func unitCircle() []path.Command {
	const k = 0.5522847498307936
	return []path.Command{
		path.MoveTo(pt(1, 0)),
		path.CubicTo(pt(1, k), pt(k, 1), pt(0, 1)),
		path.CubicTo(pt(-k, 1), pt(-1, k), pt(-1, 0)),
		path.CubicTo(pt(-1, -k), pt(-k, -1), pt(0, -1)),
		path.CubicTo(pt(k, -1), pt(1, -k), pt(1, 0)),
		path.ClosePath(),
	}
}

func blob() []path.Command {
	return []path.Command{
		path.MoveTo(pt(0, 0)),
		path.LineTo(pt(10, 0)),
		path.CubicTo(pt(14, 3), pt(12, 9), pt(7, 8)),
		path.CubicTo(pt(3, 12), pt(-2, 6), pt(1, 4)),
		path.ClosePath(),
	}
}

func TestFrequencies(t *testing.T) {
	diff(t, []int{0, 1, -1, 2, -2, 3, -3}, Frequencies(7))
	if Frequencies(0) != nil {
		t.Error("expected no frequencies for m=0")
	}
	for i := range 100 {
		if k := Frequency(i); k != Frequencies(100)[i] {
			t.Fatalf("Frequency(%d) = %d disagrees with table", i, k)
		}
	}
}

func TestDCIsMean(t *testing.T) {
	for name, cmds := range map[string][]path.Command{
		"circle": unitCircle(),
		"blob":   blob(),
	} {
		t.Run(name, func(t *testing.T) {
			s, err := path.NewSampler(cmds)
			if err != nil {
				t.Fatal(err)
			}
			samples, err := s.Sample(500)
			if err != nil {
				t.Fatal(err)
			}
			coeffs, err := Transform(samples, 9)
			if err != nil {
				t.Fatal(err)
			}
			if coeffs[0].Frequency != 0 {
				t.Fatalf("first coefficient has frequency %d, want 0", coeffs[0].Frequency)
			}
			diff(t, geom.Mean(samples), coeffs[0].Value, cmpopts.EquateApprox(0, 1e-12))
		})
	}
}

func TestTransformOfCircle(t *testing.T) {
	// P_j = c + r·e^(2πij/N) has exactly two non-zero coefficients.
	const n = 64
	center := pt(3, -2)
	radius := pt(0, 1.5) // radius 1.5, starting at angle π/2
	samples := make([]geom.Point, n)
	for j := range samples {
		samples[j] = center.Add(radius.Mul(geom.Expim(2 * math.Pi * float64(j) / n)))
	}
	coeffs, err := Transform(samples, 7)
	if err != nil {
		t.Fatal(err)
	}
	opt := cmpopts.EquateApprox(0, 1e-12)
	diff(t, center, coeffs[0].Value, opt)
	diff(t, 1, coeffs[1].Frequency)
	diff(t, radius, coeffs[1].Value, opt)
	diff(t, 1.5, coeffs[1].Amplitude(), opt)
	diff(t, math.Pi/2, coeffs[1].Phase(), opt)
	for _, c := range coeffs[2:] {
		if a := c.Amplitude(); a > 1e-12 {
			t.Errorf("frequency %d has amplitude %g, want 0", c.Frequency, a)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	const n = 256
	model, err := Compile(context.Background(), unitCircle(), Params{Samples: n, Terms: n, Points: n})
	if err != nil {
		t.Fatal(err)
	}
	frame := model.Frame(n)
	if frame.Terms != n {
		t.Fatalf("got %d terms, want %d", frame.Terms, n)
	}
	if len(frame.Points) != n {
		t.Fatalf("got %d points, want %d", len(frame.Points), n)
	}
	for i, p := range frame.Points {
		if d := geom.Dist(p, model.Samples[i]); d > 1e-9 {
			t.Fatalf("point %d: reconstructed %v is %g away from sample %v", i, p, d, model.Samples[i])
		}
	}
}

func TestTruncationConverges(t *testing.T) {
	model, err := Compile(context.Background(), blob(), Params{Samples: 512, Terms: 101, Points: 512})
	if err != nil {
		t.Fatal(err)
	}
	maxErr := func(terms int) float64 {
		var worst float64
		for i, p := range model.Frame(terms).Points {
			worst = math.Max(worst, geom.Dist(p, model.Samples[i]))
		}
		return worst
	}
	coarse, fine := maxErr(5), maxErr(101)
	if !(fine < coarse) {
		t.Errorf("error with 101 terms (%g) not below error with 5 terms (%g)", fine, coarse)
	}
}

func TestTransformParallelMatchesSerial(t *testing.T) {
	s, err := path.NewSampler(blob())
	if err != nil {
		t.Fatal(err)
	}
	samples, err := s.Sample(300)
	if err != nil {
		t.Fatal(err)
	}
	serial, err := Transform(samples, 37)
	if err != nil {
		t.Fatal(err)
	}
	for _, workers := range []int{0, 1, 2, 5, 64} {
		parallel, err := TransformParallel(context.Background(), samples, 37, workers)
		if err != nil {
			t.Fatal(err)
		}
		diff(t, serial, parallel)
	}
}

func TestTransformParallelCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	samples := []geom.Point{{X: 1, Y: 0}, {X: 0, Y: 1}, {X: -1, Y: 0}, {X: 0, Y: -1}}
	if _, err := TransformParallel(ctx, samples, 8, 4); !errors.Is(err, context.Canceled) {
		t.Errorf("got error %v, want context.Canceled", err)
	}
}

func TestInvalidParams(t *testing.T) {
	if _, err := Transform(nil, 3); !errors.Is(err, ErrInvalidParams) {
		t.Errorf("Transform with no samples: got %v", err)
	}
	if _, err := Transform([]geom.Point{{X: 1, Y: 1}}, 0); !errors.Is(err, ErrInvalidParams) {
		t.Errorf("Transform with no terms: got %v", err)
	}
	if _, err := NewReconstructor(nil, 10); !errors.Is(err, ErrInvalidParams) {
		t.Errorf("NewReconstructor with no coefficients: got %v", err)
	}
	if _, err := NewReconstructor([]Coefficient{{}}, 0); !errors.Is(err, ErrInvalidParams) {
		t.Errorf("NewReconstructor with no points: got %v", err)
	}
	for _, p := range []Params{
		{Samples: 0, Terms: 1, Points: 1},
		{Samples: 1, Terms: 0, Points: 1},
		{Samples: 1, Terms: 1, Points: 0},
	} {
		if _, err := Compile(context.Background(), unitCircle(), p); !errors.Is(err, ErrInvalidParams) {
			t.Errorf("Compile(%+v): got %v, want ErrInvalidParams", p, err)
		}
	}
	if err := DefaultParams().Validate(); err != nil {
		t.Errorf("default params invalid: %v", err)
	}
}

func TestCompileMalformedPath(t *testing.T) {
	cmds := []path.Command{path.LineTo(pt(1, 1)), path.ClosePath()}
	_, err := Compile(context.Background(), cmds, DefaultParams())
	var mpe *path.MalformedPathError
	if !errors.As(err, &mpe) {
		t.Errorf("got error %v, want *path.MalformedPathError", err)
	}
}

func TestReconstructorCycles(t *testing.T) {
	model, err := Compile(context.Background(), blob(), Params{Samples: 64, Terms: 5, Points: 32})
	if err != nil {
		t.Fatal(err)
	}
	r := model.Reconstructor()
	for _, m0 := range []int{0, 3} {
		r.Seek(m0)
		for i := range 5 {
			f := r.Next()
			if want := (m0 + i) % 5; f.Terms != want {
				t.Errorf("frame %d from m0=%d: got %d terms, want %d", i, m0, f.Terms, want)
			}
			if len(f.Points) != 32 {
				t.Errorf("frame %d: got %d points, want 32", i, len(f.Points))
			}
		}
		if r.Terms() != m0 {
			t.Errorf("after 5 frames term count is %d, want %d", r.Terms(), m0)
		}
	}
}

func TestReconstructorFrames(t *testing.T) {
	model, err := Compile(context.Background(), unitCircle(), Params{Samples: 64, Terms: 3, Points: 16})
	if err != nil {
		t.Fatal(err)
	}
	r := model.Reconstructor()

	first := r.Peek()
	if first.Terms != 0 {
		t.Fatalf("first frame has %d terms, want 0", first.Terms)
	}
	for _, p := range first.Points {
		diff(t, geom.Point{}, p)
	}

	var terms []int
	for f := range r.Frames() {
		terms = append(terms, f.Terms)
		if len(terms) == 7 {
			break
		}
	}
	diff(t, []int{0, 1, 2, 0, 1, 2, 0}, terms)
	diff(t, 1, r.Terms())
}

func TestSeekWraps(t *testing.T) {
	r, err := NewReconstructor(make([]Coefficient, 4), 8)
	if err != nil {
		t.Fatal(err)
	}
	for _, tc := range []struct{ seek, want int }{
		{0, 0}, {3, 3}, {4, 0}, {9, 1}, {-1, 3}, {-6, 2},
	} {
		r.Seek(tc.seek)
		if r.Terms() != tc.want {
			t.Errorf("Seek(%d): got %d, want %d", tc.seek, r.Terms(), tc.want)
		}
	}
}

func TestArms(t *testing.T) {
	model, err := Compile(context.Background(), blob(), Params{Samples: 128, Terms: 12, Points: 8})
	if err != nil {
		t.Fatal(err)
	}
	for _, theta := range []float64{0, 1, 4.5} {
		joints := Arms(model.Coefficients, 12, theta)
		if len(joints) != 13 {
			t.Fatalf("got %d joints, want 13", len(joints))
		}
		diff(t, geom.Point{}, joints[0])
		diff(t, Eval(model.Coefficients, 12, theta), joints[12], cmpopts.EquateApprox(0, 1e-12))
		// The first arm is the DC term.
		diff(t, model.Coefficients[0].Value, joints[1], cmpopts.EquateApprox(0, 1e-12))
	}
	if got := Arms(model.Coefficients, 100, 0); len(got) != 13 {
		t.Errorf("term count not clamped: got %d joints", len(got))
	}
}
