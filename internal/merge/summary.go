package merge

import "github.com/roach88/rituals/internal/model"

// Summary counts what a merge added relative to the local collection.
type Summary struct {
	Rituals      int `json:"rituals"`
	Participants int `json:"participants"`
	Questions    int `json:"questions"`
	Entries      int `json:"entries"`
}

// IsZero reports whether the merge added nothing.
func (s Summary) IsZero() bool {
	return s == Summary{}
}

// Diff reports what merged contains that before did not. Participants,
// questions and entries of brand-new rituals are counted too.
func Diff(before, merged []model.Ritual) Summary {
	byID := make(map[string]model.Ritual, len(before))
	for _, r := range before {
		byID[r.ID] = r
	}

	var s Summary
	for _, r := range merged {
		old, ok := byID[r.ID]
		if !ok {
			s.Rituals++
		}
		s.Participants += countNew(r.Participants, old.Participants, func(p model.Participant) string { return p.ID })
		s.Questions += countNew(r.Questions, old.Questions, func(q model.Question) string { return q.ID })
		s.Entries += countNew(r.Entries, old.Entries, func(e model.Entry) string { return e.ID })
	}
	return s
}

func countNew[T any](after, before []T, id func(T) string) int {
	seen := make(map[string]bool, len(before))
	for _, v := range before {
		seen[id(v)] = true
	}
	n := 0
	for _, v := range after {
		if !seen[id(v)] {
			n++
		}
	}
	return n
}
