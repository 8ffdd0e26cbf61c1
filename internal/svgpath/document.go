package svgpath

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/irfansharif/epicycle/internal/geom"
)

// Document is the subset of an SVG file the pipeline needs.
type Document struct {
	ViewBox    geom.Box // root viewBox, or zero if absent
	HasViewBox bool
	Paths      []string // d attribute of every <path>, in document order
}

// ReadDocument scans an SVG document for its root viewBox and path data.
func ReadDocument(r io.Reader) (Document, error) {
	var doc Document
	dec := xml.NewDecoder(r)
	sawRoot := false
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Document{}, fmt.Errorf("reading svg: %w", err)
		}
		el, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch {
		case !sawRoot:
			if el.Name.Local != "svg" {
				return Document{}, fmt.Errorf("reading svg: root element is <%s>, want <svg>", el.Name.Local)
			}
			sawRoot = true
			if v, ok := attr(el, "viewBox"); ok {
				box, err := parseViewBox(v)
				if err != nil {
					return Document{}, err
				}
				doc.ViewBox, doc.HasViewBox = box, true
			}
		case el.Name.Local == "path":
			if d, ok := attr(el, "d"); ok && strings.TrimSpace(d) != "" {
				doc.Paths = append(doc.Paths, d)
			}
		}
	}
	if !sawRoot {
		return Document{}, fmt.Errorf("reading svg: no <svg> element")
	}
	return doc, nil
}

func attr(el xml.StartElement, name string) (string, bool) {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// parseViewBox parses "min-x min-y width height", separated by whitespace
// and/or commas.
func parseViewBox(v string) (geom.Box, error) {
	fields := strings.FieldsFunc(v, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	if len(fields) != 4 {
		return geom.Box{}, fmt.Errorf("invalid viewBox %q: want 4 numbers, got %d", v, len(fields))
	}
	var n [4]float64
	for i, f := range fields {
		x, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return geom.Box{}, fmt.Errorf("invalid viewBox %q: %w", v, err)
		}
		n[i] = x
	}
	box := geom.MakeBox(n[0], n[1], n[2], n[3])
	if box.Empty() {
		return geom.Box{}, fmt.Errorf("invalid viewBox %q: width and height must be positive", v)
	}
	return box, nil
}
