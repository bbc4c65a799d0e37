package store

import "log/slog"

// Option configures a Store.
type Option func(*Store)

// WithLogger overrides the shared logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithInboxDepth sets how many offered commands may queue before Offer blocks.
func WithInboxDepth(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.inboxDepth = n
		}
	}
}

// WithErrorDepth sets how many errors Errors buffers before dropping new ones.
func WithErrorDepth(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.errorDepth = n
		}
	}
}

// WithAutosave saves the document after every n applied commands. Zero
// disables it.
func WithAutosave(n int) Option {
	return func(s *Store) {
		if n >= 0 {
			s.autosave = n
		}
	}
}
