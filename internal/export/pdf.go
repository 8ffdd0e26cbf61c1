package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// Contact sheet layout, in points.
const (
	sheetMargin  = 36.0
	captionSpace = 16.0
	cellGap      = 8.0
)

// writeContactSheet lays the rendered PNGs out in a grid over as many A4
// pages as needed, each captioned with its term count.
func writeContactSheet(outPath string, frames []rendered, opts Options) error {
	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetTitle(fmt.Sprintf("%s: %d reconstructions", opts.Name, len(frames)), false)
	pdf.SetCreator("epicycle", false)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetFont("Helvetica", "", 9)

	pageW, pageH := pdf.GetPageSize()
	cols := max(1, opts.Columns)
	cellW := (pageW - 2*sheetMargin - float64(cols-1)*cellGap) / float64(cols)
	imgH := cellW * float64(opts.Height) / float64(opts.Width)
	cellH := imgH + captionSpace
	rows := max(1, int((pageH-2*sheetMargin+cellGap)/(cellH+cellGap)))
	perPage := rows * cols

	imgOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	for i, f := range frames {
		if i%perPage == 0 {
			pdf.AddPage()
		}
		slot := i % perPage
		x := sheetMargin + float64(slot%cols)*(cellW+cellGap)
		y := sheetMargin + float64(slot/cols)*(cellH+cellGap)

		name := fmt.Sprintf("frame-%d", i)
		pdf.RegisterImageOptionsReader(name, imgOpts, bytes.NewReader(f.png))
		pdf.ImageOptions(name, x, y, cellW, imgH, false, imgOpts, 0, "")

		caption := fmt.Sprintf("%d terms", f.terms)
		if f.terms == 1 {
			caption = "1 term"
		}
		pdf.SetXY(x, y+imgH)
		pdf.CellFormat(cellW, captionSpace, caption, "", 0, "C", false, 0, "")
	}

	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
