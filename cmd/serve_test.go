package cmd

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"ScrapBoard/internal/history"
	"ScrapBoard/internal/logging"
	"ScrapBoard/internal/state"

	"github.com/stretchr/testify/assert"
)

type fakeDocs struct {
	doc    state.Document
	loaded bool
}

func (f fakeDocs) Document() (state.Document, bool) { return f.doc, f.loaded }

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	logging.SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { logging.SetLogger(nil) })
	return &buf
}

func TestDocumentHandler(t *testing.T) {
	docs := fakeDocs{doc: state.EmptyDocument(3), loaded: true}
	h := documentHandler(docs, "text", "text/plain", func(w io.Writer, doc state.Document) error {
		_, err := io.WriteString(w, "board")
		return err
	})

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/board.txt", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/plain", rec.Header().Get("Content-Type"))
	assert.Equal(t, "board", rec.Body.String())
}

func TestDocumentHandler_NotLoaded(t *testing.T) {
	h := documentHandler(fakeDocs{}, "pdf", "application/pdf", func(io.Writer, state.Document) error {
		t.Fatal("rendered an unloaded board")
		return nil
	})
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/board.pdf", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestDocumentHandler_RenderErrorLogged(t *testing.T) {
	buf := captureLog(t)
	docs := fakeDocs{doc: state.EmptyDocument(3), loaded: true}
	h := documentHandler(docs, "text", "text/plain", func(io.Writer, state.Document) error {
		return errors.New("connection reset")
	})

	h(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/board.txt", nil))
	assert.Contains(t, buf.String(), "export failed")
	assert.Contains(t, buf.String(), "format=text")
	assert.Contains(t, buf.String(), "connection reset")
}

func TestHistoryHandler(t *testing.T) {
	tests := []struct {
		name   string
		method string
		err    error
		code   int
	}{
		{"ok", http.MethodPost, nil, http.StatusNoContent},
		{"get", http.MethodGet, nil, http.StatusMethodNotAllowed},
		{"empty", http.MethodPost, history.ErrNothingToUndo, http.StatusConflict},
		{"failed", http.MethodPost, errors.New("stopped"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			historyHandler(func() error { return tt.err })(rec, httptest.NewRequest(tt.method, "/undo", nil))
			assert.Equal(t, tt.code, rec.Code)
		})
	}
}
