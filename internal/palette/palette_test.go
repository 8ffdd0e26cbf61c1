package palette

import (
	"image/color"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func diff(t *testing.T, want, got any, opts ...cmp.Option) {
	t.Helper()
	if d := cmp.Diff(want, got, opts...); d != "" {
		t.Error(d)
	}
}

func TestRandomPaletteDeterministic(t *testing.T) {
	a := RandomPalette(rand.New(rand.NewSource(3)))
	b := RandomPalette(rand.New(rand.NewSource(3)))
	diff(t, a, b)
	if a.Background.A != 255 || a.Stroke.A != 255 {
		t.Errorf("background and stroke must be opaque: %+v", a)
	}
}

func TestFromHex(t *testing.T) {
	p, err := FromHex("#000000", "#ff8000", "", "", "#0000ff")
	if err != nil {
		t.Fatal(err)
	}
	diff(t, color.RGBA{A: 255}, p.Background)
	diff(t, color.RGBA{R: 255, G: 128, A: 255}, p.Stroke)
	diff(t, Default().Fill, p.Fill)
	diff(t, color.RGBA{B: 255, A: 255}, p.Samples)
	diff(t, "#ff8000", Hex(p.Stroke))

	if _, err := FromHex("", "orange", "", "", ""); err == nil {
		t.Error("expected error for non-hex colour")
	}
}

func TestFaded(t *testing.T) {
	p := Palette{
		Background: color.RGBA{A: 255},
		Stroke:     color.RGBA{R: 255, G: 255, B: 255, A: 255},
	}
	diff(t, p.Stroke, Faded(p, 0, 10))
	diff(t, p.Stroke, Faded(p, 3, 0))
	diff(t, p.Background, Faded(p, 10, 10))
	diff(t, p.Background, Faded(p, 50, 10))

	// Fading is monotone from stroke to background.
	prev := 256
	for age := range 11 {
		c := Faded(p, age, 10)
		if int(c.R) > prev {
			t.Errorf("age %d: red %d brighter than previous %d", age, c.R, prev)
		}
		prev = int(c.R)
	}
}

func TestFloats(t *testing.T) {
	diff(t, [4]float32{1, 0, 0, 1}, Floats(color.RGBA{R: 255, A: 255}))
}
