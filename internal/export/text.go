package export

import (
	"bufio"
	"fmt"
	"io"

	"ScrapBoard/internal/state"
)

// Text writes a plain summary of doc, one block per scrap in z order.
func Text(w io.Writer, doc state.Document) error {
	bw := bufio.NewWriter(w)
	scraps := doc.Scraps()

	fmt.Fprintf(bw, "ScrapBoard Export\n")
	fmt.Fprintf(bw, "=================\n\n")
	fmt.Fprintf(bw, "Board: %d\n", doc.ID())
	fmt.Fprintf(bw, "Total scraps: %d\n\n", len(scraps))

	for i, s := range scraps {
		f := s.Frame
		fmt.Fprintf(bw, "Scrap %d: %s\n", i+1, s.ID)
		fmt.Fprintf(bw, "  Frame: (%.2f, %.2f) %.2fx%.2f z=%d\n", f.X, f.Y, f.Width, f.Height, f.Z)
		if f.ScaleX != 1 || f.ScaleY != 1 || f.RotationInDegrees != 0 {
			fmt.Fprintf(bw, "  Transform: scale %.2fx%.2f rotation %.2f\n", f.ScaleX, f.ScaleY, f.RotationInDegrees)
		}
		if s.Sketch == nil {
			fmt.Fprintf(bw, "\n")
			continue
		}
		fmt.Fprintf(bw, "  Strokes: %d\n", len(s.Sketch.Strokes))
		for j, st := range s.Sketch.Strokes {
			anchors := st.Anchors()
			fmt.Fprintf(bw, "  Stroke %d: color %s width %.2f points %d\n", j+1, st.Color, st.Width, len(anchors))
			if len(anchors) > 0 {
				first, last := anchors[0].Point, anchors[len(anchors)-1].Point
				fmt.Fprintf(bw, "    Start: (%.2f, %.2f)\n", first.X, first.Y)
				if len(anchors) > 1 {
					fmt.Fprintf(bw, "    End: (%.2f, %.2f)\n", last.X, last.Y)
				}
			}
		}
		fmt.Fprintf(bw, "\n")
	}

	return bw.Flush()
}
