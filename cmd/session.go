package cmd

import (
	"context"
	"errors"
	"fmt"

	"ScrapBoard/internal/config"
	"ScrapBoard/internal/logging"
	"ScrapBoard/internal/repo/fs"
	"ScrapBoard/internal/state"
	"ScrapBoard/internal/store"
)

// session is a started store over the file repository.
type session struct {
	id    state.DocumentID
	repo  *fs.Repository
	store *store.Store
}

func openSession(ctx context.Context, cfg *config.Config, id state.DocumentID, opts ...store.Option) (*session, error) {
	repo, err := fs.New(cfg.Directory)
	if err != nil {
		return nil, err
	}
	opts = append([]store.Option{store.WithInboxDepth(cfg.InboxDepth)}, opts...)
	st := store.New(repo, opts...)
	if err := st.Start(ctx, id); err != nil {
		return nil, err
	}

	select {
	case <-st.Loaded():
	case err := <-st.Errors():
		st.Stop()
		return nil, err
	case <-ctx.Done():
		st.Stop()
		return nil, ctx.Err()
	}
	return &session{id: id, repo: repo, store: st}, nil
}

// logErrors reports asynchronous store failures until ctx is done.
func (s *session) logErrors(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-s.store.Errors():
			var cerr *store.CommandError
			if errors.As(err, &cerr) {
				logging.Logger().Warn("[STORE] command rejected", "direction", cerr.Direction, "command", cerr.Command.ID(), "err", cerr.Err)
				continue
			}
			logging.Logger().Error("[STORE] failure", "err", err)
		}
	}
}

// close applies everything offered so far, writes the document and stops
// the store.
func (s *session) close(ctx context.Context) error {
	defer s.store.Stop()
	if err := s.store.Flush(ctx); err != nil {
		return err
	}
	doc, ok := s.store.Document()
	if !ok {
		return fmt.Errorf("board %d is not loaded", s.id)
	}
	return s.repo.SaveDocument(ctx, s.id, doc)
}
