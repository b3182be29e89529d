package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/roach88/rituals/internal/model"
)

// marshalRitual converts a Ritual to JSON TEXT for the record column.
// HTML escaping is disabled so stored text matches what the user typed.
func marshalRitual(r model.Ritual) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(r); err != nil {
		return "", fmt.Errorf("marshal ritual %s: %w", r.ID, err)
	}
	// Encoder adds a trailing newline, remove it
	return strings.TrimSpace(buf.String()), nil
}

// unmarshalRitual parses a record column back into a Ritual. Entries is
// never nil on the way out.
func unmarshalRitual(id, data string) (model.Ritual, error) {
	var r model.Ritual
	if err := json.Unmarshal([]byte(data), &r); err != nil {
		return model.Ritual{}, fmt.Errorf("unmarshal ritual %s: %w", id, err)
	}
	if r.Entries == nil {
		r.Entries = []model.Entry{}
	}
	return r, nil
}

// formatTime renders the updated_at column; UTC RFC 3339 sorts lexically.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
