package geom

import "fmt"

// PathSink receives a polyline. gofpdf.Fpdf satisfies it.
type PathSink interface {
	MoveTo(x, y float64)
	LineTo(x, y float64)
}

// Flatten samples it at segments+1 evenly spaced parameters and feeds the
// result into sink as one MoveTo followed by LineTo calls. When moveTo is
// false the leading MoveTo is skipped so consecutive curves join up.
func Flatten(it Interpolator, segments int, moveTo bool, sink PathSink) error {
	if segments < 1 {
		return fmt.Errorf("%w: segments must be positive, got %d", ErrInvalidArgument, segments)
	}
	if moveTo {
		p := it.Start()
		sink.MoveTo(p.X, p.Y)
	}
	for i := 1; i <= segments; i++ {
		p, err := it.At(float64(i) / float64(segments))
		if err != nil {
			return err
		}
		sink.LineTo(p.X, p.Y)
	}
	return nil
}

// Anchor is a stroke vertex with optional incoming and outgoing control
// points, the way path tuples store them.
type Anchor struct {
	Point Point
	In    *Point
	Out   *Point
}

// StrokeSegments returns one interpolator per pair of consecutive anchors: a
// Bézier when the first anchor has an outgoing and the second an incoming
// control point, a straight line otherwise.
func StrokeSegments(anchors []Anchor) []Interpolator {
	if len(anchors) < 2 {
		return nil
	}
	segs := make([]Interpolator, 0, len(anchors)-1)
	for i := 1; i < len(anchors); i++ {
		a, b := anchors[i-1], anchors[i]
		var it Interpolator = Linear{P0: a.Point, P1: b.Point}
		if a.Out != nil && b.In != nil {
			it = Bezier{P0: a.Point, C1: *a.Out, C2: *b.In, P1: b.Point}
		}
		segs = append(segs, it)
	}
	return segs
}
