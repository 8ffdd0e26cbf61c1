package render

import (
	"fmt"

	"github.com/rclancey/earcut"

	"github.com/irfansharif/epicycle/internal/geom"
)

// triangulate fills a closed polygon using the earcut algorithm. Partial
// reconstructions can self-intersect; earcut still returns a best-effort
// covering, which is what the fill shows.
func triangulate(polygon []geom.Point) ([][3]geom.Point, error) {
	if len(polygon) < 3 {
		return nil, fmt.Errorf("degenerate polygon (%d vertices < 3)", len(polygon))
	}

	// Format: [x0, y0, x1, y1, ..., xn, yn]
	coords := make([]float64, 2*len(polygon))
	for i, p := range polygon {
		coords[2*i] = p.X
		coords[2*i+1] = p.Y
	}

	indices, err := earcut.Earcut(coords, nil /* holeIndices */, 2 /* dim */)
	if err != nil {
		return nil, fmt.Errorf("triangulating %d-vertex polygon: %w", len(polygon), err)
	}
	if len(indices)%3 != 0 {
		return nil, fmt.Errorf("invalid triangle index count %d", len(indices))
	}

	tris := make([][3]geom.Point, len(indices)/3)
	for i := range tris {
		tris[i] = [3]geom.Point{
			polygon[indices[3*i]],
			polygon[indices[3*i+1]],
			polygon[indices[3*i+2]],
		}
	}
	return tris, nil
}
