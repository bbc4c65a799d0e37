package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	gonet "net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ScrapBoard/internal/export"
	"ScrapBoard/internal/gesture"
	"ScrapBoard/internal/history"
	"ScrapBoard/internal/logging"
	"ScrapBoard/internal/net"
	"ScrapBoard/internal/state"
	"ScrapBoard/internal/store"

	"github.com/spf13/cobra"
)

var (
	serveFlags = struct {
		Follow string
	}{}

	serveCmd = &cobra.Command{
		Use:   "serve <board-id>",
		Short: "Serve a board to viewers on the local network",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			id, err := parseDocumentID(args[0])
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			sess, err := openSession(ctx, cfg, id, store.WithAutosave(cfg.Autosave))
			if err != nil {
				return err
			}
			go sess.logErrors(ctx)

			journal, err := history.OpenJournal(cfg.JournalPath(int64(id)))
			if err != nil {
				return err
			}
			recorder := history.NewRecorder(sess.store, history.NewStack(cfg.UndoLimit), journal)

			if serveFlags.Follow != "" {
				feed, err := history.OpenJournal(serveFlags.Follow)
				if err != nil {
					return err
				}
				go func() {
					if err := feed.Follow(ctx, func(e history.Entry) error { return offer(sess.store, e) }); err != nil {
						logging.Logger().Error("[JOURNAL] follow stopped", "path", feed.Path(), "err", err)
					}
				}()
			}

			hub := net.NewHub(recorder, sess.store, gesture.NewTransients())
			go hub.Run(ctx, sess.store.Snapshots())

			mux := http.NewServeMux()
			mux.Handle("/ws", hub)
			mux.HandleFunc("/board.pdf", documentHandler(sess.store, "pdf", "application/pdf",
				func(w io.Writer, doc state.Document) error { return export.PDF(w, doc, export.PDFOptions{}) }))
			mux.HandleFunc("/board.txt", documentHandler(sess.store, "text", "text/plain; charset=utf-8", export.Text))
			mux.HandleFunc("/undo", historyHandler(recorder.Undo))
			mux.HandleFunc("/redo", historyHandler(recorder.Redo))

			listener, err := gonet.Listen("tcp", cfg.Listen)
			if err != nil {
				return fmt.Errorf("failed to start server: %w", err)
			}
			port := listener.Addr().(*gonet.TCPAddr).Port

			if cfg.Advertise {
				server, err := net.Advertise(port, cfg.BoardName)
				if err != nil {
					logging.Logger().Warn("[NET] mDNS advertisement failed", "err", err)
				} else {
					defer server.Shutdown()
				}
			}
			if ip, err := net.GetOutgoingIP(); err == nil {
				logging.Logger().Info("[HUB] share link", "url", fmt.Sprintf("ws://%s:%d/ws", ip, port))
			}

			srv := &http.Server{Handler: mux}
			serveErr := make(chan error, 1)
			go func() { serveErr <- srv.Serve(listener) }()

			select {
			case <-ctx.Done():
			case err := <-serveErr:
				if !errors.Is(err, http.ErrServerClosed) {
					logging.Logger().Error("[HUB] server failed", "err", err)
				}
			}

			hub.Close()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
			return sess.close(shutdownCtx)
		},
	}
)

func init() {
	serveCmd.Flags().StringVar(&serveFlags.Follow, "follow", "", "apply commands appended to this journal while serving")
	root.AddCommand(serveCmd)
}

// documentHandler renders the current board with render. Render failures
// after the header is written can only be logged.
func documentHandler(docs gesture.DocumentSource, format, contentType string, render func(io.Writer, state.Document) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, ok := docs.Document()
		if !ok {
			http.Error(w, "board not loaded", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", contentType)
		if err := render(w, doc); err != nil {
			logging.Logger().Error("[HUB] export failed", "format", format, "err", err)
		}
	}
}

func historyHandler(fn func() error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		err := fn()
		switch {
		case errors.Is(err, history.ErrNothingToUndo), errors.Is(err, history.ErrNothingToRedo):
			http.Error(w, err.Error(), http.StatusConflict)
		case err != nil:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusNoContent)
		}
	}
}

// offer hands a journal entry to the store in its recorded direction.
func offer(st *store.Store, e history.Entry) error {
	if e.Direction == history.DirectionUndo {
		return st.OfferCommandUndo(e.Command)
	}
	return st.OfferCommandDoo(e.Command)
}
