package svgpath

import (
	"math"

	"github.com/irfansharif/epicycle/internal/geom"
)

// arcToCubics approximates the SVG elliptical arc from p0 to p1 with cubic
// Béziers of at most 90° each. It returns the control points flattened as
// (c1, c2, end) triples, or nil if the arc is degenerate (zero radius or
// coincident endpoints). rotation is in degrees.
//
// Out-of-range radii are scaled up as described in SVG 1.1 F.6.6.
func arcToCubics(p0, p1, radii geom.Point, rotation float64, large, sweep bool) []geom.Point {
	rx, ry := math.Abs(radii.X), math.Abs(radii.Y)
	if rx == 0 || ry == 0 {
		return nil
	}

	sinPhi, cosPhi := math.Sincos(rotation * math.Pi / 180)

	// Midpoint-relative start point in the ellipse's rotated frame.
	hx := (p0.X - p1.X) / 2
	hy := (p0.Y - p1.Y) / 2
	x1p := cosPhi*hx + sinPhi*hy
	y1p := -sinPhi*hx + cosPhi*hy
	if x1p == 0 && y1p == 0 {
		return nil
	}

	lambda := (x1p*x1p)/(rx*rx) + (y1p*y1p)/(ry*ry)
	if lambda > 1 {
		s := math.Sqrt(lambda)
		rx *= s
		ry *= s
	}

	cx, cy, theta1, dtheta := arcCenter(p0, p1, rx, ry, sinPhi, cosPhi, x1p, y1p, large, sweep)

	ratio := math.Abs(dtheta) / (math.Pi / 2)
	if math.Abs(1-ratio) < 1e-7 {
		ratio = 1
	}
	n := max(1, int(math.Ceil(ratio)))
	dtheta /= float64(n)

	pts := make([]geom.Point, 0, 3*n)
	for range n {
		for _, u := range unitArc(theta1, dtheta) {
			pts = append(pts, geom.Point{
				X: cosPhi*u.X*rx - sinPhi*u.Y*ry + cx,
				Y: sinPhi*u.X*rx + cosPhi*u.Y*ry + cy,
			})
		}
		theta1 += dtheta
	}
	// Land exactly on the requested endpoint.
	pts[len(pts)-1] = p1
	return pts
}

// arcCenter converts from endpoint to center parameterization (SVG 1.1
// F.6.5), returning the center, start angle and signed sweep.
func arcCenter(p0, p1 geom.Point, rx, ry, sinPhi, cosPhi, x1p, y1p float64, large, sweep bool) (cx, cy, theta1, dtheta float64) {
	rx2, ry2 := rx*rx, ry*ry
	x1p2, y1p2 := x1p*x1p, y1p*y1p

	radicand := rx2*ry2 - rx2*y1p2 - ry2*x1p2
	if radicand < 0 {
		radicand = 0
	} else {
		radicand = math.Sqrt(radicand / (rx2*y1p2 + ry2*x1p2))
	}
	if large == sweep {
		radicand = -radicand
	}

	cxp := radicand * rx / ry * y1p
	cyp := radicand * -ry / rx * x1p

	cx = cosPhi*cxp - sinPhi*cyp + (p0.X+p1.X)/2
	cy = sinPhi*cxp + cosPhi*cyp + (p0.Y+p1.Y)/2

	ux, uy := (x1p-cxp)/rx, (y1p-cyp)/ry
	vx, vy := (-x1p-cxp)/rx, (-y1p-cyp)/ry

	theta1 = vectorAngle(1, 0, ux, uy)
	dtheta = vectorAngle(ux, uy, vx, vy)
	if !sweep && dtheta > 0 {
		dtheta -= 2 * math.Pi
	}
	if sweep && dtheta < 0 {
		dtheta += 2 * math.Pi
	}
	return cx, cy, theta1, dtheta
}

func vectorAngle(ux, uy, vx, vy float64) float64 {
	sign := 1.0
	if ux*vy-uy*vx < 0 {
		sign = -1
	}
	dot := (ux*vx + uy*vy) / (math.Hypot(ux, uy) * math.Hypot(vx, vy))
	dot = max(-1, min(1, dot))
	return sign * math.Acos(dot)
}

// unitArc returns the control points of a cubic approximating the unit circle
// arc from theta1 sweeping by dtheta.
func unitArc(theta1, dtheta float64) [3]geom.Point {
	a := 4.0 / 3.0 * math.Tan(dtheta/4)

	s1, c1 := math.Sincos(theta1)
	s2, c2 := math.Sincos(theta1 + dtheta)
	return [3]geom.Point{
		{X: c1 - s1*a, Y: s1 + c1*a},
		{X: c2 + s2*a, Y: s2 - c2*a},
		{X: c2, Y: s2},
	}
}
