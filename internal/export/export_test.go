package export

import (
	"bytes"
	"fmt"
	"testing"

	"ScrapBoard/internal/geom"
	"ScrapBoard/internal/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	calls []string
}

func (r *recorder) MoveTo(x, y float64) { r.calls = append(r.calls, fmt.Sprintf("M %g %g", x, y)) }
func (r *recorder) LineTo(x, y float64) { r.calls = append(r.calls, fmt.Sprintf("L %g %g", x, y)) }
func (r *recorder) CurveBezierCubicTo(cx0, cy0, cx1, cy1, x, y float64) {
	r.calls = append(r.calls, fmt.Sprintf("C %g %g %g %g %g %g", cx0, cy0, cx1, cy1, x, y))
}

func curvyStroke() state.Stroke {
	return state.Stroke{
		Color: "#336699",
		Width: 2,
		Tuples: []state.PathTuple{
			{Points: []geom.Point{geom.Pt(0, 0), geom.Pt(0, 0), geom.Pt(5, 0)}},
			{Points: []geom.Point{geom.Pt(10, 10), geom.Pt(10, 5)}},
			{Points: []geom.Point{geom.Pt(20, 10)}},
		},
	}
}

func testDocument(t *testing.T) state.Document {
	t.Helper()
	frame := state.DefaultFrame()
	frame.X, frame.Y, frame.Width, frame.Height, frame.Z = 10, 20, 100, 50, 1
	rotated := frame
	rotated.X, rotated.RotationInDegrees, rotated.ScaleX = 200, 45, 2
	doc, err := state.NewDocument(5,
		state.NewScrap(frame, &state.Sketch{Strokes: []state.Stroke{curvyStroke()}}),
		state.NewScrap(rotated, &state.Sketch{Strokes: []state.Stroke{curvyStroke()}}),
		state.NewScrap(state.DefaultFrame(), nil),
	)
	require.NoError(t, err)
	return doc
}

func TestDrawStroke(t *testing.T) {
	r := &recorder{}
	require.True(t, drawStroke(r, curvyStroke(), 0))
	assert.Equal(t, []string{
		"M 0 0",
		"C 5 0 10 5 10 10",
		"L 20 10",
	}, r.calls)
}

func TestDrawStroke_Flatten(t *testing.T) {
	r := &recorder{}
	require.True(t, drawStroke(r, curvyStroke(), 4))
	require.Len(t, r.calls, 1+4+1)
	assert.Equal(t, "M 0 0", r.calls[0])
	assert.Equal(t, "L 10 10", r.calls[4])
	assert.Equal(t, "L 20 10", r.calls[5])
}

func TestDrawStroke_TooShort(t *testing.T) {
	r := &recorder{}
	st := state.Stroke{Tuples: []state.PathTuple{{Points: []geom.Point{geom.Pt(1, 1)}}, {}}}
	assert.False(t, drawStroke(r, st, 0))
	assert.Empty(t, r.calls)
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		r, g, b int
	}{
		{"#336699", 0x33, 0x66, 0x99},
		{"#fff", 255, 255, 255},
		{"ff0000", 255, 0, 0},
		{"red", 0, 0, 0},
		{"#zzzzzz", 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			r, g, b := parseColor(tt.in)
			assert.Equal(t, []int{tt.r, tt.g, tt.b}, []int{r, g, b})
		})
	}
}

func TestPDF(t *testing.T) {
	for _, flatten := range []int{0, 8} {
		var buf bytes.Buffer
		require.NoError(t, PDF(&buf, testDocument(t), PDFOptions{Flatten: flatten}))
		assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	}

	var buf bytes.Buffer
	require.NoError(t, PDF(&buf, state.EmptyDocument(1), PDFOptions{}))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Text(&buf, testDocument(t)))
	out := buf.String()

	assert.Contains(t, out, "Board: 5\n")
	assert.Contains(t, out, "Total scraps: 3\n")
	assert.Contains(t, out, "Stroke 1: color #336699 width 2.00 points 3\n")
	assert.Contains(t, out, "    End: (20.00, 10.00)\n")
	assert.Contains(t, out, "  Transform: scale 2.00x1.00 rotation 45.00\n")
}
