package store

import (
	"context"
	"fmt"

	"github.com/roach88/rituals/internal/model"
)

const upsertRitualSQL = `
	INSERT INTO rituals (id, record, updated_at)
	VALUES (?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		record = excluded.record,
		updated_at = excluded.updated_at
`

// GetAll returns every stored ritual. The order is by id, which callers
// should treat as unspecified.
func (s *Store) GetAll(ctx context.Context) ([]model.Ritual, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	db, err := s.conn("get all rituals")
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `SELECT id, record FROM rituals ORDER BY id ASC`)
	if err != nil {
		return nil, model.NewStorageUnavailableError("get all rituals", err)
	}
	defer rows.Close()

	rituals := []model.Ritual{}
	for rows.Next() {
		var id, record string
		if err := rows.Scan(&id, &record); err != nil {
			return nil, model.NewStorageUnavailableError("scan ritual", err)
		}
		r, err := unmarshalRitual(id, record)
		if err != nil {
			return nil, err
		}
		rituals = append(rituals, r)
	}
	if err := rows.Err(); err != nil {
		return nil, model.NewStorageUnavailableError("iterate rituals", err)
	}

	return rituals, nil
}

// Save upserts a ritual by id and returns the id. An existing record is
// fully overwritten; callers must pass the complete aggregate.
func (s *Store) Save(ctx context.Context, r model.Ritual) (string, error) {
	record, err := marshalRitual(r)
	if err != nil {
		return "", err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	db, err := s.conn("save ritual")
	if err != nil {
		return "", err
	}

	if _, err := db.ExecContext(ctx, upsertRitualSQL, r.ID, record, formatTime(r.UpdatedAt)); err != nil {
		return "", model.NewStorageUnavailableError(fmt.Sprintf("save ritual %s", r.ID), err)
	}
	return r.ID, nil
}

// Delete removes a ritual. Deleting an absent id is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	db, err := s.conn("delete ritual")
	if err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, `DELETE FROM rituals WHERE id = ?`, id); err != nil {
		return model.NewStorageUnavailableError(fmt.Sprintf("delete ritual %s", id), err)
	}
	return nil
}

// ImportBulk upserts every ritual inside one transaction. If any write
// fails the transaction is rolled back and the failure is returned.
func (s *Store) ImportBulk(ctx context.Context, rituals []model.Ritual) error {
	records := make([]string, len(rituals))
	for i, r := range rituals {
		record, err := marshalRitual(r)
		if err != nil {
			return err
		}
		records[i] = record
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	db, err := s.conn("import rituals")
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return model.NewStorageUnavailableError("import rituals: begin tx", err)
	}
	defer tx.Rollback() // No-op if committed

	stmt, err := tx.PrepareContext(ctx, upsertRitualSQL)
	if err != nil {
		return model.NewStorageUnavailableError("import rituals: prepare", err)
	}
	defer stmt.Close()

	for i, r := range rituals {
		if _, err := stmt.ExecContext(ctx, r.ID, records[i], formatTime(r.UpdatedAt)); err != nil {
			return model.NewStorageUnavailableError(fmt.Sprintf("import rituals: save %s", r.ID), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return model.NewStorageUnavailableError("import rituals: commit", err)
	}
	return nil
}
