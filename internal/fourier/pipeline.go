package fourier

import (
	"context"
	"fmt"

	"github.com/irfansharif/epicycle/internal/geom"
	"github.com/irfansharif/epicycle/internal/path"
)

// Default pipeline sizes.
const (
	DefaultSamples = 2000
	DefaultTerms   = 350
	DefaultPoints  = 2000
)

// Params sizes the pipeline.
type Params struct {
	Samples int // N, points sampled from the source path
	Terms   int // M, coefficients computed (and maximum term count)
	Points  int // Q, points per reconstructed frame
	Workers int // goroutines used by the transform; <= 1 runs serially
}

// DefaultParams returns the default pipeline sizes.
func DefaultParams() Params {
	return Params{
		Samples: DefaultSamples,
		Terms:   DefaultTerms,
		Points:  DefaultPoints,
		Workers: 1,
	}
}

// Validate checks that every count is positive.
func (p Params) Validate() error {
	if p.Samples <= 0 {
		return fmt.Errorf("%w: samples must be positive, got %d", ErrInvalidParams, p.Samples)
	}
	if p.Terms <= 0 {
		return fmt.Errorf("%w: terms must be positive, got %d", ErrInvalidParams, p.Terms)
	}
	if p.Points <= 0 {
		return fmt.Errorf("%w: points must be positive, got %d", ErrInvalidParams, p.Points)
	}
	return nil
}

// Model is the immutable result of running a path through the pipeline.
type Model struct {
	Params       Params
	Sampler      *path.Sampler
	Samples      []geom.Point
	Coefficients []Coefficient
}

// Compile samples the closed path described by cmds and transforms the
// samples into coefficients.
func Compile(ctx context.Context, cmds []path.Command, params Params) (*Model, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	sampler, err := path.NewSampler(cmds)
	if err != nil {
		return nil, err
	}
	samples, err := sampler.Sample(params.Samples)
	if err != nil {
		return nil, err
	}
	coeffs, err := TransformParallel(ctx, samples, params.Terms, params.Workers)
	if err != nil {
		return nil, fmt.Errorf("transforming %d samples: %w", len(samples), err)
	}
	return &Model{
		Params:       params,
		Sampler:      sampler,
		Samples:      samples,
		Coefficients: coeffs,
	}, nil
}

// Reconstructor returns a fresh reconstructor over the model's coefficients.
func (m *Model) Reconstructor() *Reconstructor {
	r, err := NewReconstructor(m.Coefficients, m.Params.Points)
	if err != nil {
		panic(fmt.Sprintf("unreachable: model built with invalid params: %v", err))
	}
	return r
}

// Frame returns the reconstruction with the given number of terms, clamped to
// [0, Terms].
func (m *Model) Frame(terms int) Frame {
	r := m.Reconstructor()
	terms = max(0, min(terms, len(m.Coefficients)))
	return Frame{Terms: terms, Points: r.polyline(terms)}
}
