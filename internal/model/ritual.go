package model

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// ParticipantDraft describes a participant before ids are assigned.
type ParticipantDraft struct {
	Name  string `yaml:"name" json:"name"`
	Color string `yaml:"color,omitempty" json:"color,omitempty"`
}

// QuestionDraft describes a question before ids are assigned.
type QuestionDraft struct {
	Text    string `yaml:"text" json:"text"`
	Details string `yaml:"details,omitempty" json:"details,omitempty"`
}

// RitualDraft is the user-supplied shape of a new ritual.
type RitualDraft struct {
	Title        string             `yaml:"title" json:"title"`
	Scale        Scale              `yaml:"scale" json:"scale"`
	Frequency    Frequency          `yaml:"frequency" json:"frequency"`
	Participants []ParticipantDraft `yaml:"participants" json:"participants"`
	Questions    []QuestionDraft    `yaml:"questions" json:"questions"`
}

// NewRitual builds a ritual from a draft, assigning ids from ids and stamping
// both timestamps with now. Questions are ordered by their position in the
// draft and empty colors are filled from Palette.
//
// The result is validated; an invalid draft returns an INVALID_RITUAL error.
func NewRitual(draft RitualDraft, ids IDGenerator, now time.Time) (Ritual, error) {
	r := Ritual{
		ID:           ids.NewID(),
		Title:        normalizeText(draft.Title),
		Scale:        draft.Scale,
		Frequency:    draft.Frequency,
		Participants: make([]Participant, 0, len(draft.Participants)),
		Questions:    make([]Question, 0, len(draft.Questions)),
		Entries:      []Entry{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	for i, p := range draft.Participants {
		color := strings.TrimSpace(p.Color)
		if color == "" {
			color = Palette[i%len(Palette)]
		}
		r.Participants = append(r.Participants, Participant{
			ID:    ids.NewID(),
			Name:  normalizeText(p.Name),
			Color: color,
		})
	}

	for i, q := range draft.Questions {
		r.Questions = append(r.Questions, Question{
			ID:      ids.NewID(),
			Text:    normalizeText(q.Text),
			Details: normalizeText(q.Details),
			Order:   i,
		})
	}

	if err := r.Validate(); err != nil {
		return Ritual{}, err
	}
	return r, nil
}

// Validate checks the structural invariants required before a ritual is
// persisted. Response values are deliberately not checked.
func (r Ritual) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return NewInvalidRitualError(r.ID, "id is required")
	}
	if strings.TrimSpace(r.Title) == "" {
		return NewInvalidRitualError(r.ID, "title is required")
	}
	if !r.Scale.Valid() {
		return NewInvalidRitualError(r.ID, fmt.Sprintf("scale %d must be one of %v", r.Scale, Scales))
	}
	if !r.Frequency.Valid() {
		return NewInvalidRitualError(r.ID, fmt.Sprintf("frequency %q must be one of %v", r.Frequency, Frequencies))
	}
	if len(r.Participants) == 0 {
		return NewInvalidRitualError(r.ID, "at least one participant is required")
	}
	if len(r.Questions) == 0 {
		return NewInvalidRitualError(r.ID, "at least one question is required")
	}

	seen := make(map[string]bool, len(r.Participants))
	for _, p := range r.Participants {
		if strings.TrimSpace(p.Name) == "" {
			return NewInvalidRitualError(r.ID, fmt.Sprintf("participant %s has no name", p.ID))
		}
		if strings.TrimSpace(p.Color) == "" {
			return NewInvalidRitualError(r.ID, fmt.Sprintf("participant %s has no color", p.ID))
		}
		if seen[p.ID] {
			return NewInvalidRitualError(r.ID, fmt.Sprintf("duplicate participant id %s", p.ID))
		}
		seen[p.ID] = true
	}

	seen = make(map[string]bool, len(r.Questions))
	for _, q := range r.Questions {
		if strings.TrimSpace(q.Text) == "" {
			return NewInvalidRitualError(r.ID, fmt.Sprintf("question %s has no text", q.ID))
		}
		if seen[q.ID] {
			return NewInvalidRitualError(r.ID, fmt.Sprintf("duplicate question id %s", q.ID))
		}
		seen[q.ID] = true
	}

	return nil
}

// Clone returns a deep copy of r. Nil slices stay nil.
func (r Ritual) Clone() Ritual {
	out := r
	if r.Participants != nil {
		out.Participants = make([]Participant, len(r.Participants))
		copy(out.Participants, r.Participants)
	}
	if r.Questions != nil {
		out.Questions = make([]Question, len(r.Questions))
		copy(out.Questions, r.Questions)
	}
	if r.Entries != nil {
		out.Entries = make([]Entry, len(r.Entries))
		for i, e := range r.Entries {
			out.Entries[i] = e.Clone()
		}
	}
	return out
}

// Clone returns a deep copy of e.
func (e Entry) Clone() Entry {
	out := e
	if e.Responses != nil {
		out.Responses = make([]Response, len(e.Responses))
		copy(out.Responses, e.Responses)
	}
	return out
}

// CloneAll deep-copies a ritual collection. The result is never nil.
func CloneAll(rituals []Ritual) []Ritual {
	out := make([]Ritual, len(rituals))
	for i, r := range rituals {
		out[i] = r.Clone()
	}
	return out
}

// LastEntryAt returns the creation time of the most recent entry, if any.
func (r Ritual) LastEntryAt() (time.Time, bool) {
	var last time.Time
	for _, e := range r.Entries {
		if e.CreatedAt.After(last) {
			last = e.CreatedAt
		}
	}
	return last, len(r.Entries) > 0
}

// Participant looks up a participant by id.
func (r Ritual) Participant(id string) (Participant, bool) {
	for _, p := range r.Participants {
		if p.ID == id {
			return p, true
		}
	}
	return Participant{}, false
}

// Question looks up a question by id.
func (r Ritual) Question(id string) (Question, bool) {
	for _, q := range r.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

// Entry looks up an entry by id.
func (r Ritual) Entry(id string) (Entry, bool) {
	for _, e := range r.Entries {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

func normalizeText(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
