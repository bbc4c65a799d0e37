// Package history keeps the host side of command history: an undo/redo
// stack in memory and a journal of applied commands on disk.
package history

import (
	"errors"
	"sync"

	"ScrapBoard/internal/state"
)

var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// Sink is where recorded commands are sent. *store.Store satisfies it.
type Sink interface {
	OfferCommandDoo(state.Command) error
	OfferCommandUndo(state.Command) error
}

// Stack is a bounded undo/redo stack. It is safe for concurrent use.
type Stack struct {
	mu    sync.Mutex
	limit int
	undo  []state.Command
	redo  []state.Command
}

// NewStack returns a stack that forgets the oldest command beyond limit
// entries. A limit of zero or less keeps everything.
func NewStack(limit int) *Stack {
	return &Stack{limit: limit}
}

// Push records c as the newest undoable command and clears the redo side.
func (s *Stack) Push(c state.Command) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.undo = append(s.undo, c)
	if s.limit > 0 && len(s.undo) > s.limit {
		s.undo = append([]state.Command(nil), s.undo[len(s.undo)-s.limit:]...)
	}
	s.redo = nil
}

func (s *Stack) popUndo() (state.Command, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.undo) == 0 {
		return nil, false
	}
	c := s.undo[len(s.undo)-1]
	s.undo = s.undo[:len(s.undo)-1]
	s.redo = append(s.redo, c)
	return c, true
}

func (s *Stack) popRedo() (state.Command, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.redo) == 0 {
		return nil, false
	}
	c := s.redo[len(s.redo)-1]
	s.redo = s.redo[:len(s.redo)-1]
	s.undo = append(s.undo, c)
	return c, true
}

// unpop reverses a pop whose offer failed.
func (s *Stack) unpop(toUndo bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if toUndo {
		c := s.redo[len(s.redo)-1]
		s.redo = s.redo[:len(s.redo)-1]
		s.undo = append(s.undo, c)
		return
	}
	c := s.undo[len(s.undo)-1]
	s.undo = s.undo[:len(s.undo)-1]
	s.redo = append(s.redo, c)
}

func (s *Stack) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.undo) > 0
}

func (s *Stack) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.redo) > 0
}

// Recorder offers commands to a sink and keeps them on a Stack so they can
// be undone and redone. When a journal is attached every accepted offer is
// appended to it.
type Recorder struct {
	sink    Sink
	stack   *Stack
	journal *Journal
}

func NewRecorder(sink Sink, stack *Stack, journal *Journal) *Recorder {
	return &Recorder{sink: sink, stack: stack, journal: journal}
}

// Do applies c and makes it the newest undoable command.
func (r *Recorder) Do(c state.Command) error {
	if err := r.sink.OfferCommandDoo(c); err != nil {
		return err
	}
	r.stack.Push(c)
	return r.record(DirectionDoo, c)
}

// OfferCommandDoo lets a Recorder stand in for the store as a gesture sink.
func (r *Recorder) OfferCommandDoo(c state.Command) error {
	return r.Do(c)
}

// Undo reverts the newest command.
func (r *Recorder) Undo() error {
	c, ok := r.stack.popUndo()
	if !ok {
		return ErrNothingToUndo
	}
	if err := r.sink.OfferCommandUndo(c); err != nil {
		r.stack.unpop(true)
		return err
	}
	return r.record(DirectionUndo, c)
}

// Redo re-applies the most recently undone command.
func (r *Recorder) Redo() error {
	c, ok := r.stack.popRedo()
	if !ok {
		return ErrNothingToRedo
	}
	if err := r.sink.OfferCommandDoo(c); err != nil {
		r.stack.unpop(false)
		return err
	}
	return r.record(DirectionDoo, c)
}

func (r *Recorder) record(dir Direction, c state.Command) error {
	if r.journal == nil {
		return nil
	}
	return r.journal.Append(Entry{Direction: dir, Command: c})
}
