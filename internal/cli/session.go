package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/rituals/internal/config"
	"github.com/roach88/rituals/internal/model"
	"github.com/roach88/rituals/internal/repository"
	"github.com/roach88/rituals/internal/store"
)

// session is one command's view of the ritual database: an open store, a
// loaded repository, and the resolved configuration.
type session struct {
	cfg    config.Config
	store  *store.Store
	repo   *repository.Repository
	logger *slog.Logger
	out    *OutputFormatter
}

// openSession opens the database and loads every ritual into a repository.
func openSession(ctx context.Context, opts *RootOptions, cmd *cobra.Command) (*session, error) {
	cfg, err := opts.resolve()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load configuration", err)
	}

	logger := newLogger(cmd.ErrOrStderr(), cfg.LogLevel)

	if err := cfg.EnsureDataDir(); err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to prepare data directory", err)
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, WrapExitError(ExitFailure, "failed to open database", err)
	}
	logger.Debug("database opened", "path", cfg.DBPath)

	repo := repository.New(st,
		repository.WithClock(opts.clock()),
		repository.WithLogger(logger),
	)
	if err := repo.LoadRituals(ctx); err != nil {
		repo.Close()
		st.Close()
		return nil, WrapExitError(ExitFailure, "failed to load rituals", err)
	}

	return &session{
		cfg:    cfg,
		store:  st,
		repo:   repo,
		logger: logger,
		out:    newFormatter(cmd, opts),
	}, nil
}

// Close stops the repository writer and releases the database.
func (s *session) Close() {
	s.repo.Close()
	if err := s.store.Close(); err != nil {
		s.logger.Warn("close database", "error", err)
	}
}

// t formats a localized message.
func (s *session) t(key string, args ...any) string {
	return translator().T(s.cfg.Lang, key, args...)
}

// findRitual resolves ref as an exact id or a unique id prefix.
func (s *session) findRitual(ref string) (model.Ritual, error) {
	ref = strings.TrimSpace(ref)
	if r, ok := s.repo.GetRitualByID(ref); ok {
		return r, nil
	}

	var matches []model.Ritual
	for _, r := range s.repo.Snapshot().Rituals {
		if ref != "" && strings.HasPrefix(r.ID, ref) {
			matches = append(matches, r)
		}
	}

	switch len(matches) {
	case 0:
		return model.Ritual{}, WrapExitError(ExitFailure, "unknown ritual", model.NewRitualNotFoundError(ref))
	case 1:
		return matches[0], nil
	default:
		return model.Ritual{}, NewExitError(ExitCommandError,
			fmt.Sprintf("ritual prefix %q is ambiguous (%d matches)", ref, len(matches)))
	}
}

// shortID abbreviates an id for text output.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
