// Package store owns the authoritative whiteboard document.
//
// A Store loads one document from a Repository and applies the commands
// offered to it, forwards (doo) or backwards (undo). Offers may come from any
// number of goroutines; a single coordinator goroutine per started store
// applies them one at a time in the order they were offered. Observers read
// the results from the Loaded, Busy, Snapshots and Errors channels.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"ScrapBoard/internal/logging"
	"ScrapBoard/internal/state"

	"github.com/google/uuid"
)

const (
	defaultInboxDepth = 256
	defaultErrorDepth = 64
)

// Repository loads and saves documents. Both calls may block; they are made
// from goroutines owned by the store and are cancelled through ctx on Stop.
type Repository interface {
	LoadDocument(ctx context.Context, id state.DocumentID) (state.Document, error)
	SaveDocument(ctx context.Context, id state.DocumentID, doc state.Document) error
}

// Status is the lifecycle state of a Store.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusFailed
	StatusStopped
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	case StatusStopped:
		return "stopped"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Store mediates every mutation of one document.
type Store struct {
	repo       Repository
	log        *slog.Logger
	inboxDepth int
	errorDepth int
	autosave   int

	loaded     chan state.Document
	loadedOnce sync.Once
	busy       chan bool
	snapshots  chan state.Document
	errs       chan error

	sigMu   sync.Mutex
	busyNow bool

	mu         sync.Mutex
	status     Status
	run        *run
	current    state.Document
	hasCurrent bool
}

// New returns an idle store reading from repo.
func New(repo Repository, opts ...Option) *Store {
	s := &Store{
		repo:       repo,
		log:        logging.Logger(),
		inboxDepth: defaultInboxDepth,
		errorDepth: defaultErrorDepth,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.loaded = make(chan state.Document, 1)
	s.busy = make(chan bool, 1)
	s.snapshots = make(chan state.Document, 1)
	s.errs = make(chan error, s.errorDepth)
	return s
}

type messageKind int

const (
	msgCommand messageKind = iota
	msgSave
	msgFlush
)

type message struct {
	kind  messageKind
	dir   Direction
	cmd   state.Command
	reply chan error
}

type loadResult struct {
	doc state.Document
	err error
}

// run is the state of one Start..Stop cycle. Fields below the blank line
// belong to the coordinator goroutine.
type run struct {
	id     state.DocumentID
	ctx    context.Context
	cancel context.CancelFunc
	inbox  chan message
	loads  chan loadResult
	saves  chan error
	done   chan struct{}
	exited chan struct{}
	saveWG sync.WaitGroup

	doc        state.Document
	loaded     bool
	failed     bool
	saving      bool
	saveQueued  bool
	sinceSave   int
	pending     []message
	waiters     []chan error
	saveWaiters []chan error
	appliedIDs map[uuid.UUID]struct{}
}

// Start begins loading document id. It fails with ErrDoubleStart when the
// store is already running; a stopped store may be started again.
func (s *Store) Start(ctx context.Context, id state.DocumentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.run != nil {
		s.log.Error("[STORE] start called on a running store", "running", s.run.id, "requested", id)
		return fmt.Errorf("%w: document %d is running", ErrDoubleStart, s.run.id)
	}

	runCtx, cancel := context.WithCancel(ctx)
	r := &run{
		id:         id,
		ctx:        runCtx,
		cancel:     cancel,
		inbox:      make(chan message, s.inboxDepth),
		loads:      make(chan loadResult),
		saves:      make(chan error),
		done:       make(chan struct{}),
		exited:     make(chan struct{}),
		appliedIDs: make(map[uuid.UUID]struct{}),
	}
	s.run = r
	s.status = StatusLoading
	s.hasCurrent = false
	s.publishBusy(true)

	s.log.Info("[STORE] loading document", "id", id)
	go s.coordinate(r)
	go s.load(r)
	return nil
}

// Stop abandons any in-flight load or save and stops applying commands.
// Calling it on a store that is not running does nothing.
func (s *Store) Stop() {
	s.mu.Lock()
	r := s.run
	s.run = nil
	s.mu.Unlock()
	if r == nil {
		return
	}

	r.cancel()
	close(r.done)
	<-r.exited
	r.saveWG.Wait()

	// a Start since the unlock above owns the status and busy signal now
	s.mu.Lock()
	if s.run == nil {
		s.status = StatusStopped
		s.hasCurrent = false
		s.publishBusy(false)
	}
	s.mu.Unlock()
	s.log.Info("[STORE] stopped", "id", r.id)
}

// OfferCommandDoo queues c to be applied forwards. Commands offered before
// the document has loaded are held and applied in order once it has.
func (s *Store) OfferCommandDoo(c state.Command) error {
	_, err := s.offer(message{kind: msgCommand, dir: Doo, cmd: c})
	return err
}

// OfferCommandUndo queues c to be reverted.
func (s *Store) OfferCommandUndo(c state.Command) error {
	_, err := s.offer(message{kind: msgCommand, dir: Undo, cmd: c})
	return err
}

// Save writes the current document through the repository. The store is
// busy until the write completes; failures are reported on Errors.
func (s *Store) Save() error {
	_, err := s.offer(message{kind: msgSave})
	return err
}

// Flush blocks until every command offered before the call has been applied
// or rejected and no save is in flight. If the load fails it returns an error
// wrapping ErrLoadFailure.
func (s *Store) Flush(ctx context.Context) error {
	reply := make(chan error, 1)
	r, err := s.offer(message{kind: msgFlush, reply: reply})
	if err != nil {
		return err
	}
	select {
	case err := <-reply:
		return err
	case <-r.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) offer(m message) (*run, error) {
	s.mu.Lock()
	r, status := s.run, s.status
	s.mu.Unlock()

	if r == nil {
		if status == StatusStopped {
			return nil, ErrStopped
		}
		return nil, ErrNotStarted
	}
	select {
	case r.inbox <- m:
		return r, nil
	case <-r.done:
		return nil, ErrStopped
	}
}

// Loaded delivers the document once, the first time a load succeeds.
func (s *Store) Loaded() <-chan state.Document { return s.loaded }

// Busy delivers the latest busy value. Only the newest value is kept for a
// slow reader.
func (s *Store) Busy() <-chan bool { return s.busy }

// Snapshots delivers the document after the load and after every applied
// command. Only the newest snapshot is kept for a slow reader.
func (s *Store) Snapshots() <-chan state.Document { return s.snapshots }

// Errors delivers command and repository failures. When the buffer is full
// new errors are logged and dropped.
func (s *Store) Errors() <-chan error { return s.errs }

// Document returns the latest snapshot. ok is false until the document has
// loaded and after Stop.
func (s *Store) Document() (doc state.Document, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.hasCurrent
}

func (s *Store) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// IsBusy returns the value most recently published on Busy.
func (s *Store) IsBusy() bool {
	s.sigMu.Lock()
	defer s.sigMu.Unlock()
	return s.busyNow
}

func (s *Store) load(r *run) {
	doc, err := s.repo.LoadDocument(r.ctx, r.id)
	select {
	case r.loads <- loadResult{doc: doc, err: err}:
	case <-r.done:
		s.log.Debug("[STORE] discarding load result after stop", "id", r.id)
	}
}

func (s *Store) coordinate(r *run) {
	defer close(r.exited)
	for {
		select {
		case <-r.done:
			return
		case res := <-r.loads:
			s.onLoad(r, res)
		case err := <-r.saves:
			s.onSave(r, err)
		case m := <-r.inbox:
			s.receive(r, m)
		}
	}
}

func (s *Store) receive(r *run, m message) {
	switch m.kind {
	case msgCommand:
		switch {
		case r.loaded:
			s.apply(r, m)
		case r.failed:
			s.report(&CommandError{Direction: m.dir, Command: m.cmd, Err: ErrNotLoaded})
		default:
			r.pending = append(r.pending, m)
		}
	case msgSave:
		if !r.loaded {
			s.report(fmt.Errorf("save document %d: %w", r.id, ErrNotLoaded))
			return
		}
		s.startSave(r)
	case msgFlush:
		switch {
		case r.loaded && r.saving:
			r.saveWaiters = append(r.saveWaiters, m.reply)
		case r.loaded:
			m.reply <- nil
		case r.failed:
			m.reply <- fmt.Errorf("document %d: %w", r.id, ErrLoadFailure)
		default:
			r.waiters = append(r.waiters, m.reply)
		}
	}
}

func (s *Store) onLoad(r *run, res loadResult) {
	if res.err != nil {
		r.failed = true
		s.setStatus(r, StatusFailed)
		err := fmt.Errorf("%w: document %d: %w", ErrLoadFailure, r.id, res.err)
		s.report(err)
		for _, m := range r.pending {
			s.report(&CommandError{Direction: m.dir, Command: m.cmd, Err: ErrNotLoaded})
		}
		r.pending = nil
		for _, w := range r.waiters {
			w <- err
		}
		r.waiters = nil
		return
	}

	r.doc = res.doc
	r.loaded = true
	s.setStatus(r, StatusReady)
	s.setCurrent(r, r.doc)
	s.log.Info("[STORE] document loaded", "id", r.id, "scraps", r.doc.Len(), "held", len(r.pending))

	s.loadedOnce.Do(func() { s.loaded <- res.doc })
	publishLatest(&s.sigMu, s.snapshots, r.doc)

	for _, m := range r.pending {
		s.apply(r, m)
	}
	r.pending = nil
	s.publishBusy(s.busyValue(r))

	for _, w := range r.waiters {
		w <- nil
	}
	r.waiters = nil
}

func (s *Store) apply(r *run, m message) {
	c := m.cmd
	var (
		next state.Document
		err  error
	)
	switch m.dir {
	case Doo:
		if _, seen := r.appliedIDs[c.ID()]; seen {
			s.log.Debug("[STORE] skipping duplicate command", "command", c.ID())
			return
		}
		next, err = c.Doo(r.doc)
	case Undo:
		next, err = c.Undo(r.doc)
	}
	if err != nil {
		s.report(&CommandError{Direction: m.dir, Command: c, Err: err})
		return
	}

	if m.dir == Doo {
		r.appliedIDs[c.ID()] = struct{}{}
	} else {
		delete(r.appliedIDs, c.ID())
	}
	r.doc = next
	s.setCurrent(r, next)
	publishLatest(&s.sigMu, s.snapshots, next)

	r.sinceSave++
	if s.autosave > 0 && r.sinceSave >= s.autosave {
		s.startSave(r)
	}
}

// startSave writes the current document. Only one save runs at a time; a
// save requested meanwhile is queued and writes the newest document once the
// running one completes.
func (s *Store) startSave(r *run) {
	r.sinceSave = 0
	if r.saving {
		r.saveQueued = true
		return
	}
	r.saving = true
	s.publishBusy(true)

	doc := r.doc
	r.saveWG.Add(1)
	go func() {
		defer r.saveWG.Done()
		err := s.repo.SaveDocument(r.ctx, r.id, doc)
		select {
		case r.saves <- err:
		case <-r.done:
		}
	}()
}

func (s *Store) onSave(r *run, err error) {
	r.saving = false
	if err != nil {
		s.report(fmt.Errorf("save document %d: %w", r.id, err))
	} else {
		s.log.Debug("[STORE] document saved", "id", r.id)
	}

	if r.saveQueued {
		r.saveQueued = false
		s.startSave(r)
		return
	}
	s.publishBusy(s.busyValue(r))
	for _, w := range r.saveWaiters {
		w <- nil
	}
	r.saveWaiters = nil
}

func (s *Store) busyValue(r *run) bool {
	return !r.loaded || r.saving
}

func (s *Store) setStatus(r *run, st Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.run == r {
		s.status = st
	}
}

func (s *Store) setCurrent(r *run, doc state.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.run == r {
		s.current = doc
		s.hasCurrent = true
	}
}

func (s *Store) report(err error) {
	s.log.Warn("[STORE] "+err.Error())
	select {
	case s.errs <- err:
	default:
		s.log.Error("[STORE] error channel full, dropping error", "err", err)
	}
}

func (s *Store) publishBusy(v bool) {
	s.sigMu.Lock()
	s.busyNow = v
	s.sigMu.Unlock()
	publishLatest(&s.sigMu, s.busy, v)
}

// publishLatest replaces whatever value is waiting in ch with v.
func publishLatest[T any](mu *sync.Mutex, ch chan T, v T) {
	mu.Lock()
	defer mu.Unlock()
	for {
		select {
		case ch <- v:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
