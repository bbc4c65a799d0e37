package history

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"ScrapBoard/internal/logging"
	"ScrapBoard/internal/state"

	"github.com/fsnotify/fsnotify"
	"github.com/mitchellh/go-homedir"
)

// Direction names the way a journaled command was applied.
type Direction string

const (
	DirectionDoo  Direction = "doo"
	DirectionUndo Direction = "undo"
)

// Entry is one line of a journal.
type Entry struct {
	Direction Direction
	Command   state.Command
}

type entryJSON struct {
	Direction Direction       `json:"direction"`
	Command   json.RawMessage `json:"command"`
}

func (e Entry) MarshalJSON() ([]byte, error) {
	cmd, err := state.EncodeCommand(e.Command)
	if err != nil {
		return nil, err
	}
	return json.Marshal(entryJSON{Direction: e.Direction, Command: cmd})
}

func (e *Entry) UnmarshalJSON(b []byte) error {
	var v entryJSON
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch v.Direction {
	case DirectionDoo, DirectionUndo:
	default:
		return fmt.Errorf("unknown journal direction %q", v.Direction)
	}
	if len(v.Command) == 0 {
		return fmt.Errorf("%w: journal entry without command", state.ErrMalformedCommand)
	}
	cmd, err := state.DecodeCommand(v.Command)
	if err != nil {
		return err
	}
	e.Direction, e.Command = v.Direction, cmd
	return nil
}

// Journal is an append-only file of entries, one JSON object per line.
type Journal struct {
	mu   sync.Mutex
	path string
}

// OpenJournal prepares a journal at path, creating its directory. The file
// itself is created on the first Append.
func OpenJournal(path string) (*Journal, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0700); err != nil {
		return nil, fmt.Errorf("error creating %s: %w", filepath.Dir(abs), err)
	}
	return &Journal{path: abs}, nil
}

func (j *Journal) Path() string { return j.path }

// Append writes e as a new line.
func (j *Journal) Append(e Entry) error {
	line, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("unable to encode journal entry: %w", err)
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	f, err := os.OpenFile(j.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("unable to open %s: %w", j.path, err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("unable to append to %s: %w", j.path, err)
	}
	return f.Sync()
}

// ReadAll returns every entry in the journal; a missing file is empty.
func (j *Journal) ReadAll() ([]Entry, error) {
	f, err := os.Open(j.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("unable to open %s: %w", j.path, err)
	}
	defer f.Close()
	return ReadEntries(f)
}

// ReadEntries parses newline separated entries, skipping blank lines. The
// first bad line fails the whole read.
func ReadEntries(r io.Reader) ([]Entry, error) {
	var entries []Entry
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for n := 1; sc.Scan(); n++ {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(line, &e); err != nil {
			return nil, fmt.Errorf("journal line %d: %w", n, err)
		}
		entries = append(entries, e)
	}
	return entries, sc.Err()
}

// Follow calls fn for every entry already in the journal and then for each
// entry appended later, until ctx is done. Lines that fail to decode are
// logged and skipped. An error from fn stops the follow and is returned.
func (j *Journal) Follow(ctx context.Context, fn func(Entry) error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(j.path)); err != nil {
		return fmt.Errorf("unable to watch %s: %w", filepath.Dir(j.path), err)
	}

	t := tail{path: j.path}
	if err := t.drain(fn); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != j.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				if err := t.drain(fn); err != nil {
					return err
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logging.Logger().Warn("[JOURNAL] watch error", "path", j.path, "err", err)
		}
	}
}

// tail remembers how much of a growing file has been consumed.
type tail struct {
	path    string
	offset  int64
	partial []byte
}

func (t *tail) drain(fn func(Entry) error) error {
	f, err := os.Open(t.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	if st, err := f.Stat(); err == nil && st.Size() < t.offset {
		logging.Logger().Warn("[JOURNAL] journal truncated, rereading", "path", t.path)
		t.offset, t.partial = 0, nil
	}
	if _, err := f.Seek(t.offset, io.SeekStart); err != nil {
		return err
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return err
	}
	t.offset += int64(len(data))
	t.partial = append(t.partial, data...)

	for {
		i := bytes.IndexByte(t.partial, '\n')
		if i < 0 {
			return nil
		}
		line := bytes.TrimSpace(t.partial[:i])
		t.partial = t.partial[i+1:]
		if len(line) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(line, &e); err != nil {
			logging.Logger().Warn("[JOURNAL] skipping bad entry", "path", t.path, "err", err)
			continue
		}
		if err := fn(e); err != nil {
			return err
		}
	}
}
