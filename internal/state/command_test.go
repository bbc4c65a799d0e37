package state

import (
	"testing"

	"ScrapBoard/internal/geom"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommand_UndoRestoresDocument(t *testing.T) {
	existing := sketchScrap(t, 0, 0, 1)
	other := sketchScrap(t, 200, 0, 2)
	fresh := sketchScrap(t, 40, 40, 3)
	d := documentOf(t, existing, other)

	tests := []struct {
		name string
		cmd  Command
	}{
		{"add", NewAddScrap(fresh)},
		{"remove", NewRemoveScrap(existing)},
		{"update frame", NewUpdateScrapFrame(existing.ID, existing.Frame, existing.Frame.Translate(geom.Pt(10, 5)))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			done, err := tt.cmd.Doo(d)
			require.NoError(t, err)
			assert.False(t, done.Equal(d))

			undone, err := tt.cmd.Undo(done)
			require.NoError(t, err)
			assert.True(t, undone.Equal(d))
		})
	}

	// d itself was never touched
	assert.Equal(t, 2, d.Len())
	s, _ := d.Scrap(existing.ID)
	assert.True(t, s.Equal(existing))
}

func TestCommand_MissingTarget(t *testing.T) {
	d := documentOf(t, sketchScrap(t, 0, 0, 0))
	ghost := sketchScrap(t, 0, 0, 0)

	tests := []struct {
		name string
		run  func() (Document, error)
	}{
		{"remove doo", func() (Document, error) { return NewRemoveScrap(ghost).Doo(d) }},
		{"add undo", func() (Document, error) { return NewAddScrap(ghost).Undo(d) }},
		{"update doo", func() (Document, error) {
			return NewUpdateScrapFrame(ghost.ID, DefaultFrame(), DefaultFrame()).Doo(d)
		}},
		{"update undo", func() (Document, error) {
			return NewUpdateScrapFrame(uuid.New(), DefaultFrame(), DefaultFrame()).Undo(d)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.run()
			assert.ErrorIs(t, err, ErrMissingTarget)
			assert.True(t, got.Equal(d))
		})
	}
}

func TestCommand_DuplicateScrap(t *testing.T) {
	s := sketchScrap(t, 0, 0, 0)
	d := documentOf(t, s)

	got, err := NewAddScrap(s).Doo(d)
	assert.ErrorIs(t, err, ErrDuplicateScrap)
	assert.True(t, got.Equal(d))

	got, err = NewRemoveScrap(s).Undo(d)
	assert.ErrorIs(t, err, ErrDuplicateScrap)
	assert.True(t, got.Equal(d))
}

func TestNewAddScrap_CopiesScrap(t *testing.T) {
	s := sketchScrap(t, 0, 0, 0)
	c := NewAddScrap(s)
	s.Sketch.Strokes[0].Color = "#000000"
	assert.Equal(t, "#ff0000", c.Scrap.Sketch.Strokes[0].Color)
	assert.NotEqual(t, uuid.Nil, c.ID())
}
