package gesture

import (
	"errors"
	"sync"

	"ScrapBoard/internal/geom"

	"github.com/google/uuid"
)

// ErrTargetBusy is returned by Acquire when another gesture owns the scrap.
var ErrTargetBusy = errors.New("scrap is busy with another gesture")

// Transient is the in-flight gesture state of one scrap.
type Transient struct {
	Busy         bool
	Displacement geom.Point
}

// Transients tracks which scraps are being manipulated and how far they have
// been dragged so far. Renderers read it; only the lease holder writes it.
type Transients struct {
	mu      sync.Mutex
	entries map[uuid.UUID]Transient

	// OnChange, when set, is called after every change with the new state.
	// It runs on the goroutine driving the gesture.
	OnChange func(id uuid.UUID, t Transient)
}

func NewTransients() *Transients {
	return &Transients{entries: make(map[uuid.UUID]Transient)}
}

// Acquire marks id busy and returns the lease that owns its transient state.
func (ts *Transients) Acquire(id uuid.UUID) (*Lease, error) {
	ts.mu.Lock()
	if ts.entries[id].Busy {
		ts.mu.Unlock()
		return nil, ErrTargetBusy
	}
	t := Transient{Busy: true}
	ts.entries[id] = t
	ts.mu.Unlock()

	ts.notify(id, t)
	return &Lease{ts: ts, id: id}, nil
}

// Get returns the transient state of id; the zero value when idle.
func (ts *Transients) Get(id uuid.UUID) Transient {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.entries[id]
}

func (ts *Transients) Busy(id uuid.UUID) bool {
	return ts.Get(id).Busy
}

// BusyCount returns how many scraps are currently held by a gesture.
func (ts *Transients) BusyCount() int {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return len(ts.entries)
}

func (ts *Transients) notify(id uuid.UUID, t Transient) {
	if ts.OnChange != nil {
		ts.OnChange(id, t)
	}
}

// Lease is the exclusive right to a scrap's transient state.
type Lease struct {
	ts       *Transients
	id       uuid.UUID
	released bool
}

func (l *Lease) ID() uuid.UUID { return l.id }

// SetDisplacement publishes the live offset of the dragged scrap.
func (l *Lease) SetDisplacement(d geom.Point) {
	if l.released {
		return
	}
	t := Transient{Busy: true, Displacement: d}
	l.ts.mu.Lock()
	l.ts.entries[l.id] = t
	l.ts.mu.Unlock()
	l.ts.notify(l.id, t)
}

// Release clears the busy flag and displacement. Calling it again is a no-op.
func (l *Lease) Release() {
	if l.released {
		return
	}
	l.released = true
	l.ts.mu.Lock()
	delete(l.ts.entries, l.id)
	l.ts.mu.Unlock()
	l.ts.notify(l.id, Transient{})
}
