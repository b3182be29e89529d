package testutil

import (
	"time"

	"github.com/roach88/rituals/internal/model"
)

// Ritual returns a valid ritual with two participants and two questions and
// no entries. Ids are derived from id so fixtures never collide:
// "<id>-p1", "<id>-p2", "<id>-q1", "<id>-q2".
func Ritual(id string, updatedAt time.Time) model.Ritual {
	return model.Ritual{
		ID:        id,
		Title:     "Ritual " + id,
		Scale:     10,
		Frequency: model.Weekly,
		Participants: []model.Participant{
			{ID: id + "-p1", Name: "Alex", Color: model.Palette[0]},
			{ID: id + "-p2", Name: "Sam", Color: model.Palette[1]},
		},
		Questions: []model.Question{
			{ID: id + "-q1", Text: "How did it go?", Order: 0},
			{ID: id + "-q2", Text: "Energy level", Details: "1 is exhausted", Order: 1},
		},
		Entries:   []model.Entry{},
		CreatedAt: Epoch,
		UpdatedAt: updatedAt,
	}
}

// Entry returns an entry for r answering every step with value.
func Entry(r model.Ritual, entryID string, createdAt time.Time, value int) model.Entry {
	responses := make([]model.Response, 0, len(r.Questions)*len(r.Participants))
	for _, step := range model.Steps(r) {
		responses = append(responses, model.Response{
			QuestionID:    step.Question.ID,
			ParticipantID: step.Participant.ID,
			Value:         value,
		})
	}
	return model.Entry{
		ID:        entryID,
		RitualID:  r.ID,
		CreatedAt: createdAt,
		Responses: responses,
	}
}

// WithEntries returns r with the given entries appended.
func WithEntries(r model.Ritual, entries ...model.Entry) model.Ritual {
	r = r.Clone()
	r.Entries = append(r.Entries, entries...)
	return r
}
