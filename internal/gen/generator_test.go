package gen

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/irfansharif/epicycle/internal/geom"
	"github.com/irfansharif/epicycle/internal/path"
)

func TestGenerateDeterministic(t *testing.T) {
	for _, seed := range []int64{0, 1, 42, 1 << 40} {
		a := NewGenerator().Generate(seed, nil)
		b := NewGenerator().Generate(seed, nil)
		if d := cmp.Diff(a, b); d != "" {
			t.Errorf("seed %d not deterministic:\n%s", seed, d)
		}
	}
	a := NewGenerator().Generate(1, nil)
	b := NewGenerator().Generate(2, nil)
	if cmp.Equal(a.Commands, b.Commands) {
		t.Error("different seeds produced the same shape")
	}
}

func TestGenerateIsClosed(t *testing.T) {
	for seed := range int64(50) {
		s := NewGenerator().Generate(seed, nil)
		cmds := s.Commands
		if n := len(cmds); n != 2*s.Features.Lobes+2 {
			t.Fatalf("seed %d: got %d commands for %d lobes", seed, n, s.Features.Lobes)
		}
		if cmds[0].Kind != path.MoveToKind || cmds[len(cmds)-1].Kind != path.ClosePathKind {
			t.Fatalf("seed %d: bad framing %v", seed, cmds)
		}
		if start, end := cmds[0].End(), cmds[len(cmds)-2].End(); start != end {
			t.Errorf("seed %d: ends at %v, starts at %v", seed, end, start)
		}
		sampler, err := path.NewSampler(cmds)
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		// No implicit closing segment was needed.
		if sampler.Len() != len(cmds)-2 {
			t.Errorf("seed %d: got %d segments, want %d", seed, sampler.Len(), len(cmds)-2)
		}
		samples, err := sampler.Sample(200)
		if err != nil {
			t.Fatal(err)
		}
		for _, p := range samples {
			if !inside(s.ViewBox, p) {
				t.Errorf("seed %d: sample %v outside view box %+v", seed, p, s.ViewBox)
				break
			}
		}
	}
}

func TestComplexity(t *testing.T) {
	for _, tc := range []struct {
		complexity int
		lobes      int
		straight   bool
	}{
		{complexity: 0, lobes: 2},
		{complexity: 4, lobes: 4, straight: true},
		{complexity: 30, lobes: 30, straight: true},
	} {
		c := tc.complexity
		s := NewGenerator().Generate(7, &c)
		if s.Features.Lobes != tc.lobes {
			t.Errorf("complexity %d: got %d lobes, want %d", c, s.Features.Lobes, tc.lobes)
		}
		if got := s.Features.StraightRatio > 0; got != tc.straight {
			t.Errorf("complexity %d: straight ratio %g", c, s.Features.StraightRatio)
		}
	}
}

func inside(b geom.Box, p geom.Point) bool {
	return p.X >= b.X && p.X <= b.X+b.W && p.Y >= b.Y && p.Y <= b.Y+b.H
}
