// Package source loads the closed path to be drawn, from an SVG file, a JSON
// command list, the procedural generator, or the built-in default shape.
package source

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/irfansharif/epicycle/internal/gen"
	"github.com/irfansharif/epicycle/internal/geom"
	"github.com/irfansharif/epicycle/internal/outline"
	"github.com/irfansharif/epicycle/internal/path"
	"github.com/irfansharif/epicycle/internal/svgpath"
)

// Random is the input name that selects a generated shape.
const Random = "random"

//go:embed default.svg
var defaultSVG []byte

//go:embed schema.json
var schemaJSON string

var schema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
})

// Source is a path ready for the pipeline.
type Source struct {
	Name     string
	ViewBox  geom.Box
	Commands []path.Command
}

// SchemaError lists the reasons a JSON document was rejected.
type SchemaError struct {
	Name   string
	Errors []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: invalid path document: %s", e.Name, strings.Join(e.Errors, "; "))
}

// Load reads the named file, choosing the format by extension (.svg or
// .json). An empty name loads the built-in default shape.
func Load(name string) (Source, error) {
	if name == "" {
		return ReadSVG(bytes.NewReader(defaultSVG), "default")
	}
	f, err := os.Open(name)
	if err != nil {
		return Source{}, err
	}
	defer f.Close()

	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".svg":
		return ReadSVG(f, name)
	case ".json":
		return ReadJSON(f, name)
	default:
		return Source{}, fmt.Errorf("%s: unsupported input format %q (want .svg or .json)", name, ext)
	}
}

// Generate returns a procedurally generated shape for the seed. A positive
// complexity fixes the number of lobes and how irregular they are; otherwise
// the seed picks them too.
func Generate(seed int64, complexity int) Source {
	name := fmt.Sprintf("%s:%d", Random, seed)
	var c *int
	if complexity > 0 {
		c = &complexity
		name = fmt.Sprintf("%s,%d", name, complexity)
	}
	shape := gen.NewGenerator().Generate(seed, c)
	return Source{
		Name:     name,
		ViewBox:  shape.ViewBox,
		Commands: shape.Commands,
	}
}

// ReadSVG uses the first <path> of an SVG document. The document's viewBox
// frames the shape; without one the path's bounds are used.
func ReadSVG(r io.Reader, name string) (Source, error) {
	doc, err := svgpath.ReadDocument(r)
	if err != nil {
		return Source{}, fmt.Errorf("%s: %w", name, err)
	}
	if len(doc.Paths) == 0 {
		return Source{}, fmt.Errorf("%s: no <path> with path data", name)
	}
	cmds, err := svgpath.Parse(doc.Paths[0])
	if err != nil {
		return Source{}, fmt.Errorf("%s: %w", name, err)
	}
	box := doc.ViewBox
	if !doc.HasViewBox {
		if box, err = bounds(cmds); err != nil {
			return Source{}, fmt.Errorf("%s: %w", name, err)
		}
	}
	return Source{Name: name, ViewBox: box, Commands: cmds}, nil
}

// document is the JSON form of a path:
//
//	{"viewBox": [0, 0, 100, 100],
//	 "commands": [{"type": "M", "points": [[0, 0]]}, ..., {"type": "Z"}]}
type document struct {
	ViewBox  []float64 `json:"viewBox"`
	Commands []struct {
		Type   string       `json:"type"`
		Points [][2]float64 `json:"points"`
	} `json:"commands"`
}

// ReadJSON reads a JSON command list, validating it against the embedded
// schema first.
func ReadJSON(r io.Reader, name string) (Source, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Source{}, fmt.Errorf("%s: %w", name, err)
	}
	s, err := schema()
	if err != nil {
		return Source{}, fmt.Errorf("loading path schema: %w", err)
	}
	result, err := s.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return Source{}, fmt.Errorf("%s: %w", name, err)
	}
	if !result.Valid() {
		se := &SchemaError{Name: name}
		for _, e := range result.Errors() {
			se.Errors = append(se.Errors, e.String())
		}
		return Source{}, se
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Source{}, fmt.Errorf("%s: %w", name, err)
	}
	cmds := make([]path.Command, 0, len(doc.Commands))
	for _, c := range doc.Commands {
		p := make([]geom.Point, len(c.Points))
		for i, xy := range c.Points {
			p[i] = geom.MakePoint(xy[0], xy[1])
		}
		switch c.Type {
		case "M":
			cmds = append(cmds, path.MoveTo(p[0]))
		case "L":
			cmds = append(cmds, path.LineTo(p[0]))
		case "C":
			cmds = append(cmds, path.CubicTo(p[0], p[1], p[2]))
		case "Z":
			cmds = append(cmds, path.ClosePath())
		}
	}

	var box geom.Box
	if len(doc.ViewBox) == 4 {
		box = geom.MakeBox(doc.ViewBox[0], doc.ViewBox[1], doc.ViewBox[2], doc.ViewBox[3])
		if box.Empty() {
			return Source{}, fmt.Errorf("%s: viewBox width and height must be positive", name)
		}
	} else if box, err = bounds(cmds); err != nil {
		return Source{}, fmt.Errorf("%s: %w", name, err)
	}
	return Source{Name: name, ViewBox: box, Commands: cmds}, nil
}

// bounds frames the curves of the path, not their control points.
func bounds(cmds []path.Command) (geom.Box, error) {
	if len(cmds) == 0 {
		return geom.Box{}, errors.New("framing path: no commands")
	}
	b := outline.Bounds(outline.FromCommands(cmds))
	if b.Empty() {
		return geom.Box{}, fmt.Errorf("framing path: bounds are degenerate: %gx%g", b.W, b.H)
	}
	return b.Pad(0.05), nil
}
