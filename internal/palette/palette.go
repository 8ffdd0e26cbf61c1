// Package palette provides the colours used to draw a shape and its trail.
// Random palettes are generated in HSV; trail fading blends in Lab space so
// intermediate colours stay perceptually even.
package palette

import (
	"fmt"
	"image/color"
	"math"
	"math/rand"

	"github.com/lucasb-eyer/go-colorful"
)

// Palette holds the colours of one scene. Alpha is straight, not
// premultiplied.
type Palette struct {
	Background color.RGBA
	Stroke     color.RGBA // current frame
	Fill       color.RGBA // interior of the current frame, if filled
	Arms       color.RGBA // epicycle arms
	Samples    color.RGBA // the sampled source path
}

// Default is the palette used when none is configured: a light stroke on a
// near-black background.
func Default() Palette {
	return Palette{
		Background: color.RGBA{R: 17, G: 17, B: 24, A: 255},
		Stroke:     color.RGBA{R: 240, G: 240, B: 232, A: 255},
		Fill:       color.RGBA{R: 64, G: 96, B: 160, A: 160},
		Arms:       color.RGBA{R: 230, G: 120, B: 80, A: 200},
		Samples:    color.RGBA{R: 90, G: 90, B: 110, A: 255},
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// hsb converts hue, saturation and brightness, each on a 0-100 scale, to RGBA.
func hsb(h, s, b float64, alpha uint8) color.RGBA {
	hue := math.Mod(math.Mod(h, 100)+100, 100) * 3.6
	sat := clamp(s/100.0, 0, 1)
	bright := clamp(b/100.0, 0, 1)

	c := colorful.Hsv(hue, sat, bright)
	red, green, blue := c.RGB255()
	return color.RGBA{R: red, G: green, B: blue, A: alpha}
}

// RandomPalette returns a palette using HSV generation: a dark background
// with a bright stroke, and accents at unrelated hues.
func RandomPalette(r *rand.Rand) Palette {
	hue := r.Float64() * 100
	return Palette{
		Background: hsb(hue, r.Float64()*60, r.Float64()*15, 255),
		Stroke:     hsb(hue+50*r.Float64()-25, r.Float64()*30, 90+r.Float64()*10, 255),
		Fill:       hsb(r.Float64()*100, r.Float64()*50+25, r.Float64()*50+25, 160),
		Arms:       hsb(r.Float64()*100, r.Float64()*50+40, r.Float64()*30+60, 200),
		Samples:    hsb(hue, r.Float64()*20, r.Float64()*20+30, 255),
	}
}

// FromHex builds a palette from hex strings ("#rrggbb"), in the order
// background, stroke, fill, arms, samples. Empty strings keep the default.
func FromHex(background, stroke, fill, arms, samples string) (Palette, error) {
	p := Default()
	for _, c := range []struct {
		name string
		hex  string
		dst  *color.RGBA
	}{
		{"background", background, &p.Background},
		{"stroke", stroke, &p.Stroke},
		{"fill", fill, &p.Fill},
		{"arms", arms, &p.Arms},
		{"samples", samples, &p.Samples},
	} {
		if c.hex == "" {
			continue
		}
		col, err := colorful.Hex(c.hex)
		if err != nil {
			return Palette{}, fmt.Errorf("palette %s colour: %w", c.name, err)
		}
		red, green, blue := col.RGB255()
		*c.dst = color.RGBA{R: red, G: green, B: blue, A: c.dst.A}
	}
	return p, nil
}

// Faded returns the stroke colour of a trail frame that is age frames old in
// a trail of the given length. Age 0 is the stroke itself; the oldest frame
// has all but faded into the background.
func Faded(p Palette, age, length int) color.RGBA {
	if length <= 0 || age <= 0 {
		return p.Stroke
	}
	t := clamp(float64(age)/float64(length), 0, 1)
	stroke, _ := colorful.MakeColor(p.Stroke)
	bg, _ := colorful.MakeColor(p.Background)
	c := stroke.BlendLab(bg, t).Clamped()
	red, green, blue := c.RGB255()
	return color.RGBA{R: red, G: green, B: blue, A: 255}
}

// Floats returns the colour as normalized RGBA components.
func Floats(c color.RGBA) [4]float32 {
	return [4]float32{
		float32(c.R) / 255.0, float32(c.G) / 255.0,
		float32(c.B) / 255.0, float32(c.A) / 255.0,
	}
}

// Hex formats the colour as "#rrggbb", ignoring alpha.
func Hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
