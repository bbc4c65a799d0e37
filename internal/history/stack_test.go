package history

import (
	"errors"
	"testing"

	"ScrapBoard/internal/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type offer struct {
	dir Direction
	cmd state.Command
}

type fakeSink struct {
	offers []offer
	err    error
}

func (f *fakeSink) OfferCommandDoo(c state.Command) error {
	if f.err != nil {
		return f.err
	}
	f.offers = append(f.offers, offer{DirectionDoo, c})
	return nil
}

func (f *fakeSink) OfferCommandUndo(c state.Command) error {
	if f.err != nil {
		return f.err
	}
	f.offers = append(f.offers, offer{DirectionUndo, c})
	return nil
}

func addCommand() state.Command {
	return state.NewAddScrap(state.NewScrap(state.DefaultFrame(), nil))
}

func TestRecorder_UndoRedo(t *testing.T) {
	sink := &fakeSink{}
	r := NewRecorder(sink, NewStack(0), nil)

	a, b := addCommand(), addCommand()
	require.NoError(t, r.Do(a))
	require.NoError(t, r.Do(b))

	require.NoError(t, r.Undo())
	require.NoError(t, r.Undo())
	assert.ErrorIs(t, r.Undo(), ErrNothingToUndo)

	require.NoError(t, r.Redo())
	assert.Equal(t, []offer{
		{DirectionDoo, a},
		{DirectionDoo, b},
		{DirectionUndo, b},
		{DirectionUndo, a},
		{DirectionDoo, a},
	}, sink.offers)
}

func TestRecorder_DoClearsRedo(t *testing.T) {
	s := NewStack(0)
	r := NewRecorder(&fakeSink{}, s, nil)

	require.NoError(t, r.Do(addCommand()))
	require.NoError(t, r.Undo())
	assert.True(t, s.CanRedo())

	require.NoError(t, r.Do(addCommand()))
	assert.False(t, s.CanRedo())
	assert.ErrorIs(t, r.Redo(), ErrNothingToRedo)
}

func TestRecorder_FailedOfferKeepsStack(t *testing.T) {
	sink := &fakeSink{}
	s := NewStack(0)
	r := NewRecorder(sink, s, nil)
	require.NoError(t, r.Do(addCommand()))

	boom := errors.New("stopped")
	sink.err = boom
	assert.ErrorIs(t, r.Undo(), boom)
	assert.True(t, s.CanUndo())
	assert.False(t, s.CanRedo())

	sink.err = nil
	require.NoError(t, r.Undo())
	sink.err = boom
	assert.ErrorIs(t, r.Redo(), boom)
	assert.True(t, s.CanRedo())
	assert.False(t, s.CanUndo())
}

func TestStack_Limit(t *testing.T) {
	sink := &fakeSink{}
	r := NewRecorder(sink, NewStack(2), nil)
	first := addCommand()
	require.NoError(t, r.Do(first))
	require.NoError(t, r.Do(addCommand()))
	require.NoError(t, r.Do(addCommand()))

	require.NoError(t, r.Undo())
	require.NoError(t, r.Undo())
	assert.ErrorIs(t, r.Undo(), ErrNothingToUndo)
	for _, o := range sink.offers {
		if o.dir == DirectionUndo {
			assert.NotEqual(t, first.ID(), o.cmd.ID())
		}
	}
}
