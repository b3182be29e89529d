package model

import (
	"fmt"
	"regexp"
	"time"
)

// ResponseKey is the composite identity of a response within one entry.
// It is comparable and used directly as a map key, so ids containing
// separator characters cannot collide.
type ResponseKey struct {
	QuestionID    string
	ParticipantID string
}

// String returns the legacy flattened encoding "q_<question>_p_<participant>".
func (k ResponseKey) String() string {
	return fmt.Sprintf("q_%s_p_%s", k.QuestionID, k.ParticipantID)
}

var legacyKeyPattern = regexp.MustCompile(`^q_(.+)_p_(.+)$`)

// ParseResponseKey decodes the legacy flattened encoding. A key that does not
// match fails with MALFORMED_RESPONSE_KEY rather than being dropped.
func ParseResponseKey(s string) (ResponseKey, error) {
	m := legacyKeyPattern.FindStringSubmatch(s)
	if m == nil {
		return ResponseKey{}, NewMalformedResponseKeyError(s)
	}
	return ResponseKey{QuestionID: m[1], ParticipantID: m[2]}, nil
}

// ResponseSet accumulates answers during capture. Setting a key twice keeps
// the last value but the first insertion position.
type ResponseSet struct {
	order  []ResponseKey
	values map[ResponseKey]int
}

// NewResponseSet returns an empty set.
func NewResponseSet() *ResponseSet {
	return &ResponseSet{values: make(map[ResponseKey]int)}
}

// Set records value for key.
func (s *ResponseSet) Set(key ResponseKey, value int) {
	if _, ok := s.values[key]; !ok {
		s.order = append(s.order, key)
	}
	s.values[key] = value
}

// Get returns the value recorded for key.
func (s *ResponseSet) Get(key ResponseKey) (int, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Len returns the number of distinct keys.
func (s *ResponseSet) Len() int {
	return len(s.order)
}

// SetLegacy records a value under a flattened legacy key.
func (s *ResponseSet) SetLegacy(key string, value int) error {
	k, err := ParseResponseKey(key)
	if err != nil {
		return err
	}
	s.Set(k, value)
	return nil
}

// Responses returns the set as a response slice in insertion order.
func (s *ResponseSet) Responses() []Response {
	out := make([]Response, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, Response{
			QuestionID:    k.QuestionID,
			ParticipantID: k.ParticipantID,
			Value:         s.values[k],
		})
	}
	return out
}

// ResponsesFromLegacy rebuilds responses from a flattened key map, as stored
// by older answer-capture state. Keys are processed in the order given.
func ResponsesFromLegacy(keys []string, values map[string]int) ([]Response, error) {
	set := NewResponseSet()
	for _, key := range keys {
		if err := set.SetLegacy(key, values[key]); err != nil {
			return nil, err
		}
	}
	return set.Responses(), nil
}

// Step is one prompt of the answer sequence.
type Step struct {
	Question      Question
	Participant   Participant
	QuestionIndex int
}

// Key returns the response key answered by this step.
func (s Step) Key() ResponseKey {
	return ResponseKey{QuestionID: s.Question.ID, ParticipantID: s.Participant.ID}
}

// Steps returns every question crossed with every participant, questions
// outermost, both in ritual order.
func Steps(r Ritual) []Step {
	steps := make([]Step, 0, len(r.Questions)*len(r.Participants))
	for qi, q := range r.Questions {
		for _, p := range r.Participants {
			steps = append(steps, Step{Question: q, Participant: p, QuestionIndex: qi})
		}
	}
	return steps
}

// Contains reports whether v is a valid rating on this scale.
func (s Scale) Contains(v int) bool {
	return v >= 1 && v <= int(s)
}

// NewEntry builds an entry for ritualID from the captured responses.
func NewEntry(ritualID string, set *ResponseSet, ids IDGenerator, now time.Time) Entry {
	return Entry{
		ID:        ids.NewID(),
		RitualID:  ritualID,
		CreatedAt: now,
		Responses: set.Responses(),
	}
}
