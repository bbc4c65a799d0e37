package state

import (
	"testing"

	"ScrapBoard/internal/geom"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func sketchScrap(t *testing.T, x, y float64, z int) Scrap {
	t.Helper()
	frame := DefaultFrame()
	frame.X, frame.Y, frame.Width, frame.Height, frame.Z = x, y, 100, 50, z
	return NewScrap(frame, &Sketch{Strokes: []Stroke{{
		Color: "#ff0000",
		Width: 2.5,
		Tuples: []PathTuple{
			{Points: []geom.Point{geom.Pt(0, 0)}},
			{Points: []geom.Point{geom.Pt(10, 10), geom.Pt(8, 9), geom.Pt(12, 11)}},
		},
	}}})
}

func documentOf(t *testing.T, scraps ...Scrap) Document {
	t.Helper()
	d, err := NewDocument(42, scraps...)
	require.NoError(t, err)
	return d
}

func mustParse(t *testing.T, s string) uuid.UUID {
	t.Helper()
	id, err := uuid.Parse(s)
	require.NoError(t, err)
	return id
}
