package state

import (
	"encoding/json"
	"math"
	"reflect"

	"ScrapBoard/internal/geom"

	"github.com/google/uuid"
)

// DocumentID identifies a whiteboard.
type DocumentID int64

const (
	// MostBottomZ places a scrap below every other scrap. It is what a frame
	// without an explicit z decodes to.
	MostBottomZ = math.MinInt32
	// MostTopZ places a scrap above every other scrap.
	MostTopZ = math.MaxInt32
)

// Frame holds a scrap's position, size, z-order, scale and rotation.
type Frame struct {
	X                 float64 `json:"x"`
	Y                 float64 `json:"y"`
	Width             float64 `json:"width"`
	Height            float64 `json:"height"`
	Z                 int     `json:"z"`
	ScaleX            float64 `json:"scaleX"`
	ScaleY            float64 `json:"scaleY"`
	RotationInDegrees float64 `json:"rotationInDegrees"`
}

// DefaultFrame is the frame every missing JSON field falls back to.
func DefaultFrame() Frame {
	return Frame{Z: MostBottomZ, ScaleX: 1, ScaleY: 1}
}

// UnmarshalJSON fills in DefaultFrame values for absent keys.
func (f *Frame) UnmarshalJSON(b []byte) error {
	type frameFields Frame
	v := frameFields(DefaultFrame())
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*f = Frame(v)
	return nil
}

// Translate returns f moved by d.
func (f Frame) Translate(d geom.Point) Frame {
	f.X += d.X
	f.Y += d.Y
	return f
}

// Origin returns the top-left corner of the frame.
func (f Frame) Origin() geom.Point {
	return geom.Pt(f.X, f.Y)
}

// Contains reports whether p lies inside the scaled, axis-aligned bounds of
// the frame. Rotation is ignored.
func (f Frame) Contains(p geom.Point) bool {
	minX, maxX := span(f.X, f.Width*f.ScaleX)
	minY, maxY := span(f.Y, f.Height*f.ScaleY)
	return p.X >= minX && p.X <= maxX && p.Y >= minY && p.Y <= maxY
}

func span(origin, extent float64) (float64, float64) {
	if extent < 0 {
		return origin + extent, origin
	}
	return origin, origin + extent
}

// Scrap is a positioned element of the whiteboard.
type Scrap struct {
	ID     uuid.UUID `json:"uuid"`
	Frame  Frame     `json:"frame"`
	Sketch *Sketch   `json:"sketch,omitempty"`
}

// NewScrap returns a scrap with a fresh ID.
func NewScrap(frame Frame, sketch *Sketch) Scrap {
	return Scrap{ID: NewScrapID(), Frame: frame, Sketch: sketch}
}

// Clone returns a deep copy of s.
func (s Scrap) Clone() Scrap {
	if s.Sketch != nil {
		sk := s.Sketch.clone()
		s.Sketch = &sk
	}
	return s
}

// Equal reports structural equality.
func (s Scrap) Equal(o Scrap) bool {
	return reflect.DeepEqual(s, o)
}

// Sketch is the drawn content of a scrap.
type Sketch struct {
	Strokes []Stroke `json:"strokes"`
}

func (s Sketch) clone() Sketch {
	if s.Strokes == nil {
		return s
	}
	strokes := make([]Stroke, len(s.Strokes))
	for i, st := range s.Strokes {
		strokes[i] = st.clone()
	}
	return Sketch{Strokes: strokes}
}

// Stroke is one continuous pen line.
type Stroke struct {
	Color  string      `json:"color"`
	Width  float64     `json:"width"`
	Tuples []PathTuple `json:"path_tuples"`
}

func (s Stroke) clone() Stroke {
	if s.Tuples == nil {
		return s
	}
	tuples := make([]PathTuple, len(s.Tuples))
	for i, t := range s.Tuples {
		if t.Points != nil {
			t.Points = append([]geom.Point(nil), t.Points...)
		}
		tuples[i] = t
	}
	s.Tuples = tuples
	return s
}

// Anchors converts the path tuples for geom.StrokeSegments. Empty tuples are
// skipped.
func (s Stroke) Anchors() []geom.Anchor {
	anchors := make([]geom.Anchor, 0, len(s.Tuples))
	for _, t := range s.Tuples {
		if a, ok := t.Anchor(); ok {
			anchors = append(anchors, a)
		}
	}
	return anchors
}

// PathTuple is an anchor point optionally followed by its incoming and
// outgoing control points.
type PathTuple struct {
	Points []geom.Point `json:"points"`
}

// Anchor returns the tuple as a geom.Anchor. ok is false for an empty tuple.
func (t PathTuple) Anchor() (a geom.Anchor, ok bool) {
	if len(t.Points) == 0 {
		return a, false
	}
	a.Point = t.Points[0]
	if len(t.Points) > 1 {
		in := t.Points[1]
		a.In = &in
	}
	if len(t.Points) > 2 {
		out := t.Points[2]
		a.Out = &out
	}
	return a, true
}
