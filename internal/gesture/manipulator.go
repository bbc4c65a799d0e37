package gesture

import (
	"context"
	"errors"
	"fmt"

	"ScrapBoard/internal/geom"
	"ScrapBoard/internal/logging"
	"ScrapBoard/internal/state"
)

// ErrSettled is returned when a resolved or cancelled manipulator is fed
// another event.
var ErrSettled = errors.New("gesture already settled")

// Phase is the lifecycle position of a manipulator.
type Phase int

const (
	Idle Phase = iota
	Armed
	Accumulating
	Resolved
	Cancelled
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Armed:
		return "armed"
	case Accumulating:
		return "accumulating"
	case Resolved:
		return "resolved"
	case Cancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Settled reports whether the manipulator accepts no more events.
func (p Phase) Settled() bool {
	return p == Resolved || p == Cancelled
}

// Manipulator turns the events of a single gesture into at most one command.
type Manipulator interface {
	// Handle feeds the next event. It returns a command only on the event that
	// resolves the gesture.
	Handle(Event) (state.Command, error)
	Phase() Phase
	// Dispose cancels an unsettled gesture, releasing everything it holds.
	Dispose()
}

// DragManipulator moves one scrap by the pointer's total travel.
type DragManipulator struct {
	target     state.Scrap
	transients *Transients

	phase        Phase
	lease        *Lease
	startPointer geom.Point
	displacement geom.Point
}

var _ Manipulator = (*DragManipulator)(nil)

// NewDragManipulator prepares a drag of target, whose current frame becomes
// the command's starting frame.
func NewDragManipulator(target state.Scrap, ts *Transients) *DragManipulator {
	return &DragManipulator{target: target, transients: ts}
}

func (m *DragManipulator) Phase() Phase { return m.phase }

func (m *DragManipulator) Handle(ev Event) (state.Command, error) {
	switch m.phase {
	case Idle:
		return nil, m.arm(ev)
	case Armed, Accumulating:
		return m.accumulate(ev), nil
	default:
		return nil, ErrSettled
	}
}

func (m *DragManipulator) arm(ev Event) error {
	if ev.Kind != DragBegin && ev.Kind != DragMove {
		// taps and stray drag ends pass through
		m.phase = Resolved
		return nil
	}

	lease, err := m.transients.Acquire(m.target.ID)
	if err != nil {
		m.phase = Cancelled
		return fmt.Errorf("drag %s: %w", m.target.ID, err)
	}
	m.lease = lease
	m.startPointer = ev.Pointer
	m.phase = Armed
	logging.Logger().Debug("[GESTURE] drag armed", "scrap", m.target.ID, "at", ev.Pointer)
	return nil
}

func (m *DragManipulator) accumulate(ev Event) state.Command {
	switch ev.Kind {
	case DragMove:
		m.displacement = ev.Pointer.Sub(m.startPointer)
		m.lease.SetDisplacement(m.displacement)
		m.phase = Accumulating
		return nil
	case DragEnd:
		m.displacement = ev.Pointer.Sub(m.startPointer)
		m.settle(Resolved)
		if m.displacement.IsZero() {
			return nil
		}
		from := m.target.Frame
		to := from.Translate(m.displacement)
		logging.Logger().Debug("[GESTURE] drag resolved", "scrap", m.target.ID, "by", m.displacement)
		return state.NewUpdateScrapFrame(m.target.ID, from, to)
	default:
		logging.Logger().Debug("[GESTURE] drag cancelled", "scrap", m.target.ID, "by", ev.Kind)
		m.settle(Cancelled)
		return nil
	}
}

func (m *DragManipulator) Dispose() {
	if m.phase.Settled() {
		return
	}
	m.settle(Cancelled)
}

// settle is the only exit path; it always drops the busy flag.
func (m *DragManipulator) settle(p Phase) {
	if m.lease != nil {
		m.lease.Release()
		m.lease = nil
	}
	m.phase = p
}

// Drive feeds events to m until the gesture settles. Cancelling ctx or
// closing events disposes m and yields no command.
func Drive(ctx context.Context, events <-chan Event, m Manipulator) (state.Command, error) {
	for {
		select {
		case <-ctx.Done():
			m.Dispose()
			return nil, ctx.Err()
		case ev, ok := <-events:
			if !ok {
				m.Dispose()
				return nil, nil
			}
			cmd, err := m.Handle(ev)
			if err != nil || m.Phase().Settled() {
				return cmd, err
			}
		}
	}
}
