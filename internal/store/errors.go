package store

import (
	"errors"
	"fmt"

	"ScrapBoard/internal/state"
)

var (
	// ErrDoubleStart is returned by Start on a running store.
	ErrDoubleStart = errors.New("store already started")
	// ErrNotStarted is returned when offering to a store that was never started.
	ErrNotStarted = errors.New("store not started")
	// ErrStopped is returned when offering to a stopped store.
	ErrStopped = errors.New("store stopped")
	// ErrLoadFailure is reported when the repository cannot load the document.
	ErrLoadFailure = errors.New("document load failed")
	// ErrNotLoaded is reported for work that needs a document the store does not have.
	ErrNotLoaded = errors.New("document not loaded")
)

// Direction tells whether a command is applied forwards or backwards.
type Direction int

const (
	Doo Direction = iota
	Undo
)

func (d Direction) String() string {
	if d == Undo {
		return "undo"
	}
	return "doo"
}

// CommandError reports a command the store could not apply. The document is
// left as it was and later commands are still applied.
type CommandError struct {
	Direction Direction
	Command   state.Command
	Err       error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s %s %s: %v", e.Direction, e.Command.Signature(), e.Command.ID(), e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }
