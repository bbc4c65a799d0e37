// Package export renders document snapshots for people: a PDF drawing and a
// plain text summary.
package export

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"ScrapBoard/internal/geom"
	"ScrapBoard/internal/logging"
	"ScrapBoard/internal/state"

	"github.com/jung-kurt/gofpdf"
)

const (
	pageMargin  = 36.0
	minPageSide = 144.0
)

// PDFOptions tunes PDF rendering.
type PDFOptions struct {
	// Flatten replaces Bézier segments with this many straight pieces.
	// Zero keeps native curves.
	Flatten int
}

// pathDrawer is the part of gofpdf.Fpdf strokes are drawn with.
type pathDrawer interface {
	geom.PathSink
	CurveBezierCubicTo(cx0, cy0, cx1, cy1, x, y float64)
}

// PDF draws every scrap of doc on a single page sized to fit them.
func PDF(w io.Writer, doc state.Document, opts PDFOptions) error {
	scraps := doc.Scraps()
	minX, minY, maxX, maxY := bounds(scraps)

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size: gofpdf.SizeType{
			Wd: math.Max(maxX-minX, minPageSide) + 2*pageMargin,
			Ht: math.Max(maxY-minY, minPageSide) + 2*pageMargin,
		},
	})
	pdf.SetTitle(fmt.Sprintf("Board %d", doc.ID()), true)
	pdf.AddPage()

	for _, s := range scraps {
		f := s.Frame
		// a zero scale collapses the scrap to nothing
		if s.Sketch == nil || f.ScaleX == 0 || f.ScaleY == 0 {
			continue
		}
		pdf.TransformBegin()
		pdf.TransformTranslate(f.X-minX+pageMargin, f.Y-minY+pageMargin)
		if f.RotationInDegrees != 0 {
			pdf.TransformRotate(-f.RotationInDegrees, 0, 0)
		}
		if f.ScaleX != 1 || f.ScaleY != 1 {
			pdf.TransformScale(f.ScaleX*100, f.ScaleY*100, 0, 0)
		}
		for _, st := range s.Sketch.Strokes {
			r, g, b := parseColor(st.Color)
			pdf.SetDrawColor(r, g, b)
			pdf.SetLineWidth(st.Width)
			if drawStroke(pdf, st, opts.Flatten) {
				pdf.DrawPath("D")
			}
		}
		pdf.TransformEnd()
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("unable to render board %d: %w", doc.ID(), err)
	}
	return pdf.Output(w)
}

// drawStroke emits the path of st into p and reports whether anything was
// drawn.
func drawStroke(p pathDrawer, st state.Stroke, flatten int) bool {
	anchors := st.Anchors()
	if len(anchors) < 2 {
		return false
	}
	start := anchors[0].Point
	p.MoveTo(start.X, start.Y)
	for _, seg := range geom.StrokeSegments(anchors) {
		switch it := seg.(type) {
		case geom.Bezier:
			if flatten > 0 {
				if err := geom.Flatten(it, flatten, false, p); err != nil {
					logging.Logger().Warn("[EXPORT] unable to flatten segment", "err", err)
				}
				continue
			}
			p.CurveBezierCubicTo(it.C1.X, it.C1.Y, it.C2.X, it.C2.Y, it.P1.X, it.P1.Y)
		default:
			end := seg.End()
			p.LineTo(end.X, end.Y)
		}
	}
	return true
}

// bounds is the page area covered by the scaled frames.
func bounds(scraps []state.Scrap) (minX, minY, maxX, maxY float64) {
	if len(scraps) == 0 {
		return 0, 0, 0, 0
	}
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, s := range scraps {
		f := s.Frame
		x0, x1 := f.X, f.X+f.Width*f.ScaleX
		y0, y1 := f.Y, f.Y+f.Height*f.ScaleY
		minX, maxX = math.Min(minX, math.Min(x0, x1)), math.Max(maxX, math.Max(x0, x1))
		minY, maxY = math.Min(minY, math.Min(y0, y1)), math.Max(maxY, math.Max(y0, y1))
	}
	return minX, minY, maxX, maxY
}

// parseColor reads "#rrggbb" or "#rgb". Anything else is black.
func parseColor(s string) (r, g, b int) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return 0, 0, 0
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, 0, 0
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)
}
