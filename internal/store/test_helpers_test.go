package store

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/rituals/internal/model"
)

// createTestStore opens a file-backed store in a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// verifyPragma checks a PRAGMA reports the expected value.
func (s *Store) verifyPragma(name, want string) error {
	var got string
	if err := s.db.QueryRow("PRAGMA " + name).Scan(&got); err != nil {
		return fmt.Errorf("PRAGMA %s: %w", name, err)
	}
	if got != want {
		return fmt.Errorf("PRAGMA %s = %q, want %q", name, got, want)
	}
	return nil
}

// createTestRitual builds a minimal valid ritual with one entry.
func createTestRitual(id string, updated time.Time) model.Ritual {
	created := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	return model.Ritual{
		ID:        id,
		Title:     "Ritual " + id,
		Scale:     10,
		Frequency: model.Weekly,
		Participants: []model.Participant{
			{ID: id + "-p1", Name: "Alex", Color: "#3B82F6"},
		},
		Questions: []model.Question{
			{ID: id + "-q1", Text: "How was the week?", Details: "Be honest", Order: 0},
		},
		Entries: []model.Entry{
			{
				ID:        id + "-e1",
				RitualID:  id,
				CreatedAt: created.Add(24 * time.Hour),
				Responses: []model.Response{
					{QuestionID: id + "-q1", ParticipantID: id + "-p1", Value: 7},
				},
			},
		},
		CreatedAt: created,
		UpdatedAt: updated,
	}
}
