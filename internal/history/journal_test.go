package history

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ScrapBoard/internal/geom"
	"ScrapBoard/internal/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTimeout = 5 * time.Second

func TestJournal_AppendReadAll(t *testing.T) {
	j, err := OpenJournal(filepath.Join(t.TempDir(), "nested", "board.journal"))
	require.NoError(t, err)

	entries, err := j.ReadAll()
	require.NoError(t, err)
	assert.Empty(t, entries)

	add := state.NewAddScrap(state.NewScrap(state.DefaultFrame(), nil))
	move := state.NewUpdateScrapFrame(add.Scrap.ID, add.Scrap.Frame, add.Scrap.Frame.Translate(geom.Pt(5, 5)))
	require.NoError(t, j.Append(Entry{Direction: DirectionDoo, Command: add}))
	require.NoError(t, j.Append(Entry{Direction: DirectionDoo, Command: move}))
	require.NoError(t, j.Append(Entry{Direction: DirectionUndo, Command: move}))

	entries, err = j.ReadAll()
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, DirectionDoo, entries[0].Direction)
	assert.Equal(t, add, entries[0].Command)
	assert.Equal(t, move, entries[1].Command)
	assert.Equal(t, DirectionUndo, entries[2].Direction)
}

func TestReadEntries_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		err   error
	}{
		{"unknown signature", `{"direction":"doo","command":{"signature":"Nope","command_id":"x"}}`, state.ErrUnknownVariant},
		{"missing command", `{"direction":"doo"}`, state.ErrMalformedCommand},
		{"bad direction", `{"direction":"sideways","command":{}}`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadEntries(strings.NewReader(tt.input))
			require.Error(t, err)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
			}
		})
	}
}

func TestReadEntries_SkipsBlankLines(t *testing.T) {
	add := state.NewAddScrap(state.NewScrap(state.DefaultFrame(), nil))
	line, err := Entry{Direction: DirectionDoo, Command: add}.MarshalJSON()
	require.NoError(t, err)

	entries, err := ReadEntries(strings.NewReader("\n" + string(line) + "\n\n"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, add, entries[0].Command)
}

func TestJournal_Follow(t *testing.T) {
	j, err := OpenJournal(filepath.Join(t.TempDir(), "board.journal"))
	require.NoError(t, err)

	existing := state.NewAddScrap(state.NewScrap(state.DefaultFrame(), nil))
	require.NoError(t, j.Append(Entry{Direction: DirectionDoo, Command: existing}))

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	got := make(chan Entry, 8)
	done := make(chan error, 1)
	go func() {
		done <- j.Follow(ctx, func(e Entry) error {
			got <- e
			return nil
		})
	}()

	select {
	case e := <-got:
		assert.Equal(t, existing.ID(), e.Command.ID())
	case <-ctx.Done():
		t.Fatal("existing entry was not replayed")
	}

	// a garbage line is skipped, the next good one still arrives
	f, err := os.OpenFile(j.Path(), os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.WriteString("not json\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	later := state.NewAddScrap(state.NewScrap(state.DefaultFrame(), nil))
	require.NoError(t, j.Append(Entry{Direction: DirectionDoo, Command: later}))

	select {
	case e := <-got:
		assert.Equal(t, later.ID(), e.Command.ID())
	case <-ctx.Done():
		t.Fatal("appended entry was not followed")
	}

	cancel()
	assert.NoError(t, <-done)
}
