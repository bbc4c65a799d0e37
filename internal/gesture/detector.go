package gesture

import (
	"context"

	"ScrapBoard/internal/logging"
	"ScrapBoard/internal/state"

	"github.com/google/uuid"
)

// Sink accepts the commands produced by gestures. *store.Store satisfies it.
type Sink interface {
	OfferCommandDoo(state.Command) error
}

// DocumentSource provides the snapshot gestures are hit-tested against.
type DocumentSource interface {
	Document() (state.Document, bool)
}

// Detector splits one pointer stream into gestures. Events are handled
// synchronously, one gesture at a time; it is not safe for concurrent use.
type Detector struct {
	sink       Sink
	docs       DocumentSource
	transients *Transients

	active Manipulator
}

func NewDetector(sink Sink, docs DocumentSource, ts *Transients) *Detector {
	return &Detector{sink: sink, docs: docs, transients: ts}
}

// Active reports whether a gesture is in progress.
func (d *Detector) Active() bool {
	return d.active != nil
}

// Handle routes ev to the current gesture, starting one when none is active.
func (d *Detector) Handle(ev Event) error {
	if d.active == nil {
		m, ok := d.begin(ev)
		if !ok {
			return nil
		}
		d.active = m
	}

	cmd, err := d.active.Handle(ev)
	if d.active.Phase().Settled() {
		d.active = nil
	}
	if err != nil {
		logging.Logger().Warn("[GESTURE] gesture rejected", "err", err)
		return err
	}
	if cmd == nil {
		return nil
	}
	return d.sink.OfferCommandDoo(cmd)
}

// begin starts a gesture on a DragBegin or a non-drag event. Moves and ends
// without a gesture belong to one that was rejected or missed, and are dropped
// so they cannot take over the scrap mid-drag.
func (d *Detector) begin(ev Event) (Manipulator, bool) {
	if ev.Kind.IsDrag() && ev.Kind != DragBegin {
		logging.Logger().Debug("[GESTURE] dropping event outside a gesture", "kind", ev.Kind)
		return nil, false
	}
	doc, loaded := d.docs.Document()
	if !loaded {
		logging.Logger().Debug("[GESTURE] ignoring event before document load", "kind", ev.Kind)
		return nil, false
	}

	var (
		target state.Scrap
		found  bool
	)
	if ev.Target != uuid.Nil {
		target, found = doc.Scrap(ev.Target)
	} else {
		target, found = doc.ScrapAt(ev.Pointer)
	}
	if !found {
		return nil, false
	}
	return NewDragManipulator(target, d.transients), true
}

// Close cancels the gesture in progress, if any.
func (d *Detector) Close() {
	if d.active != nil {
		d.active.Dispose()
		d.active = nil
	}
}

// Run handles events until ctx is done or events is closed, then closes d.
// Errors from individual gestures are logged and do not stop the stream.
func (d *Detector) Run(ctx context.Context, events <-chan Event) error {
	defer d.Close()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			_ = d.Handle(ev)
		}
	}
}
