package repository

import (
	"context"
	"fmt"

	"github.com/roach88/rituals/internal/merge"
	"github.com/roach88/rituals/internal/model"
)

// LoadRituals replaces the collection with everything in the Store.
// On failure the previous collection is kept.
func (r *Repository) LoadRituals(ctx context.Context) error {
	return r.submit(ctx, "load", func(ctx context.Context) error {
		r.update(func(s *State) {
			s.Loading = true
			s.Err = nil
		})

		rituals, err := r.store.GetAll(ctx)
		if err != nil {
			err = fmt.Errorf("load rituals: %w", err)
			r.update(func(s *State) {
				s.Loading = false
				s.Err = err
			})
			return err
		}

		sortByRecency(rituals)
		r.update(func(s *State) {
			s.Rituals = rituals
			s.Loading = false
		})

		r.logger.Debug("rituals loaded", "count", len(rituals))
		return nil
	})
}

// CreateRitual validates and persists a new ritual, then adds it to memory.
// A ritual whose id is already loaded replaces it, as the Store upserts.
func (r *Repository) CreateRitual(ctx context.Context, ritual model.Ritual) error {
	ritual = ritual.Clone()
	return r.submit(ctx, "create", func(ctx context.Context) error {
		if err := ritual.Validate(); err != nil {
			return r.fail(fmt.Errorf("create ritual: %w", err))
		}

		if _, err := r.store.Save(ctx, ritual); err != nil {
			return r.fail(fmt.Errorf("create ritual %s: %w", ritual.ID, err))
		}

		next := model.CloneAll(r.current())
		if i := indexOf(next, ritual.ID); i >= 0 {
			next[i] = ritual
		} else {
			next = append(next, ritual)
		}
		sortByRecency(next)
		r.update(func(s *State) { s.Rituals = next })

		r.logger.Info("ritual created", "ritual_id", ritual.ID, "title", ritual.Title)
		return nil
	})
}

// DeleteRitual removes a ritual from the Store and from memory. Deleting an
// unknown id is not an error.
func (r *Repository) DeleteRitual(ctx context.Context, id string) error {
	return r.submit(ctx, "delete", func(ctx context.Context) error {
		if err := r.store.Delete(ctx, id); err != nil {
			return r.fail(fmt.Errorf("delete ritual %s: %w", id, err))
		}

		cur := r.current()
		next := make([]model.Ritual, 0, len(cur))
		for _, rt := range cur {
			if rt.ID != id {
				next = append(next, rt.Clone())
			}
		}
		r.update(func(s *State) { s.Rituals = next })

		r.logger.Info("ritual deleted", "ritual_id", id)
		return nil
	})
}

// AddEntry appends an entry to a ritual, bumps its UpdatedAt, and persists
// the whole ritual. Fails with RITUAL_NOT_FOUND if the ritual is not loaded.
func (r *Repository) AddEntry(ctx context.Context, ritualID string, entry model.Entry) error {
	entry = entry.Clone()
	return r.submit(ctx, "add_entry", func(ctx context.Context) error {
		return r.replaceRitual(ctx, "add entry", ritualID, func(rt *model.Ritual) {
			rt.Entries = append(rt.Entries, entry)
		})
	})
}

// DeleteEntry removes an entry from a ritual, bumps its UpdatedAt, and
// persists the whole ritual. Fails with RITUAL_NOT_FOUND if the ritual is
// not loaded. An unknown entry id still bumps UpdatedAt.
func (r *Repository) DeleteEntry(ctx context.Context, ritualID, entryID string) error {
	return r.submit(ctx, "delete_entry", func(ctx context.Context) error {
		return r.replaceRitual(ctx, "delete entry", ritualID, func(rt *model.Ritual) {
			kept := make([]model.Entry, 0, len(rt.Entries))
			for _, e := range rt.Entries {
				if e.ID != entryID {
					kept = append(kept, e)
				}
			}
			rt.Entries = kept
		})
	})
}

// replaceRitual is the shared read-modify-persist-replace path for entry
// mutations. Writer goroutine only.
func (r *Repository) replaceRitual(ctx context.Context, op, ritualID string, edit func(rt *model.Ritual)) error {
	cur := r.current()
	idx := indexOf(cur, ritualID)
	if idx < 0 {
		return r.fail(fmt.Errorf("%s: %w", op, model.NewRitualNotFoundError(ritualID)))
	}

	updated := cur[idx].Clone()
	edit(&updated)
	updated.UpdatedAt = r.now()

	if _, err := r.store.Save(ctx, updated); err != nil {
		return r.fail(fmt.Errorf("%s on ritual %s: %w", op, ritualID, err))
	}

	next := model.CloneAll(cur)
	next[idx] = updated
	sortByRecency(next)
	r.update(func(s *State) { s.Rituals = next })

	r.logger.Info(op, "ritual_id", ritualID, "entries", len(updated.Entries))
	return nil
}

// ImportRituals merges incoming rituals into the collection, persists the
// entire merged collection in one bulk write, and returns what was added.
// Memory is unchanged if the bulk write fails.
func (r *Repository) ImportRituals(ctx context.Context, incoming []model.Ritual) (merge.Summary, error) {
	incoming = model.CloneAll(incoming)
	var summary merge.Summary
	err := r.submit(ctx, "import", func(ctx context.Context) error {
		cur := r.current()
		merged := merge.Rituals(cur, incoming)

		if err := r.store.ImportBulk(ctx, merged); err != nil {
			return r.fail(fmt.Errorf("import rituals: %w", err))
		}

		summary = merge.Diff(cur, merged)
		sortByRecency(merged)
		r.update(func(s *State) { s.Rituals = merged })

		r.logger.Info("rituals imported",
			"count", len(incoming),
			"new_rituals", summary.Rituals,
			"new_entries", summary.Entries,
		)
		return nil
	})
	if err != nil {
		return merge.Summary{}, err
	}
	return summary, nil
}
