// Package fs stores whiteboard documents as JSON files in a directory.
package fs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"ScrapBoard/internal/logging"
	"ScrapBoard/internal/state"

	"github.com/dustin/go-humanize"
	"github.com/go-playground/validator"
	"github.com/mitchellh/go-homedir"
)

const (
	StorageSuffix = ".board.json"
	StorageGlob   = "*" + StorageSuffix
)

var ErrDocumentMismatch = errors.New("stored document id does not match its file")

type SyncStatus string

const (
	StatusUninitialized SyncStatus = "uninitialized"
	StatusOK            SyncStatus = "ok"
	StatusSynchronizing SyncStatus = "synchronizing"
	StatusError         SyncStatus = "error"
)

// Repository keeps one file per document under Directory.
type Repository struct {
	mu        sync.Mutex
	Directory string `validate:"required,dir"`
	status    SyncStatus
}

// New expands dir, creating it when missing.
func New(dir string) (*Repository, error) {
	expandedPath, err := homedir.Expand(dir)
	if err != nil {
		return nil, err
	}
	expandedPath, err = filepath.Abs(expandedPath)
	if err != nil {
		return nil, err
	}

	if finfo, err := os.Stat(expandedPath); err != nil || !finfo.IsDir() {
		if err := os.MkdirAll(expandedPath, 0700); err != nil {
			return nil, fmt.Errorf("error creating %s: %w", expandedPath, err)
		}
	}

	r := &Repository{Directory: expandedPath, status: StatusUninitialized}
	if err := validator.New().Struct(r); err != nil {
		return nil, fmt.Errorf("error validating repository: %w", err)
	}
	r.status = StatusOK
	return r, nil
}

func (r *Repository) Status() SyncStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

func (r *Repository) setStatus(s SyncStatus) {
	r.mu.Lock()
	r.status = s
	r.mu.Unlock()
}

// StoragePath is where document id lives.
func (r *Repository) StoragePath(id state.DocumentID) string {
	return filepath.Join(r.Directory, strconv.FormatInt(int64(id), 10)+StorageSuffix)
}

// List returns the ids of every stored document in ascending order.
func (r *Repository) List() ([]state.DocumentID, error) {
	files, err := filepath.Glob(filepath.Join(r.Directory, StorageGlob))
	if err != nil {
		return nil, err
	}
	ids := make([]state.DocumentID, 0, len(files))
	for _, fn := range files {
		n, err := strconv.ParseInt(strings.TrimSuffix(filepath.Base(fn), StorageSuffix), 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, state.DocumentID(n))
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// LoadDocument reads document id. A document that was never saved loads as
// an empty one.
func (r *Repository) LoadDocument(ctx context.Context, id state.DocumentID) (state.Document, error) {
	if err := ctx.Err(); err != nil {
		return state.Document{}, err
	}

	fn := r.StoragePath(id)
	b, err := os.ReadFile(fn)
	if errors.Is(err, os.ErrNotExist) {
		logging.Logger().Info("[REPO] no stored document, starting empty", "id", id, "path", fn)
		return state.EmptyDocument(id), nil
	}
	if err != nil {
		r.setStatus(StatusError)
		return state.Document{}, fmt.Errorf("unable to read %s: %w", fn, err)
	}

	var doc state.Document
	if err := json.Unmarshal(b, &doc); err != nil {
		r.setStatus(StatusError)
		return state.Document{}, fmt.Errorf("unable to decode %s: %w", fn, err)
	}
	if doc.ID() != id {
		r.setStatus(StatusError)
		return state.Document{}, fmt.Errorf("%w: %s holds %d", ErrDocumentMismatch, fn, doc.ID())
	}

	if err := ctx.Err(); err != nil {
		return state.Document{}, err
	}
	logging.Logger().Info("[REPO] loaded document", "id", id, "scraps", doc.Len(), "size", humanize.Bytes(uint64(len(b))))
	return doc, nil
}

// SaveDocument writes doc to a temporary file and renames it into place so
// readers never observe a partial document.
func (r *Repository) SaveDocument(ctx context.Context, id state.DocumentID, doc state.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if doc.ID() != id {
		return fmt.Errorf("%w: saving document %d as %d", ErrDocumentMismatch, doc.ID(), id)
	}

	r.setStatus(StatusSynchronizing)

	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		r.setStatus(StatusError)
		return fmt.Errorf("unable to encode document %d: %w", id, err)
	}

	fn := r.StoragePath(id)
	tmp, err := os.CreateTemp(r.Directory, filepath.Base(fn)+".*.tmp")
	if err != nil {
		r.setStatus(StatusError)
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(b, '\n')); err != nil {
		tmp.Close()
		r.setStatus(StatusError)
		return fmt.Errorf("unable to write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		r.setStatus(StatusError)
		return err
	}
	if err := tmp.Close(); err != nil {
		r.setStatus(StatusError)
		return err
	}
	if err := os.Rename(tmp.Name(), fn); err != nil {
		r.setStatus(StatusError)
		return fmt.Errorf("unable to replace %s: %w", fn, err)
	}

	r.setStatus(StatusOK)
	logging.Logger().Info("[REPO] saved document", "id", id, "scraps", doc.Len(), "size", humanize.Bytes(uint64(len(b)+1)))
	return nil
}
