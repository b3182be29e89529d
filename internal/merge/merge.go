package merge

import (
	"sort"

	"github.com/roach88/rituals/internal/model"
)

// Rituals merges incoming into local and returns a new collection.
// Neither input is modified and the result shares no slices with them.
func Rituals(local, incoming []model.Ritual) []model.Ritual {
	localByID := make(map[string]int, len(local))
	for i, r := range local {
		if _, dup := localByID[r.ID]; !dup {
			localByID[r.ID] = i
		}
	}

	result := make([]model.Ritual, 0, len(local)+len(incoming))
	resultByID := make(map[string]int, len(local)+len(incoming))

	for _, in := range incoming {
		// A package listing the same ritual twice folds into the first occurrence.
		if idx, seen := resultByID[in.ID]; seen {
			result[idx] = Ritual(result[idx], in)
			continue
		}

		if li, ok := localByID[in.ID]; ok {
			result = append(result, Ritual(local[li], in))
		} else {
			result = append(result, in.Clone())
		}
		resultByID[in.ID] = len(result) - 1
	}

	for _, r := range local {
		if _, seen := resultByID[r.ID]; seen {
			continue
		}
		result = append(result, r.Clone())
		resultByID[r.ID] = len(result) - 1
	}

	return result
}

// Ritual merges two versions of the same ritual. local is authoritative for
// identity and configuration fields.
func Ritual(local, incoming model.Ritual) model.Ritual {
	out := local.Clone()

	out.Participants = unionParticipants(local.Participants, incoming.Participants)

	out.Questions = unionQuestions(local.Questions, incoming.Questions)
	sort.SliceStable(out.Questions, func(i, j int) bool {
		return out.Questions[i].Order < out.Questions[j].Order
	})

	out.Entries = unionEntries(local.Entries, incoming.Entries)
	sort.SliceStable(out.Entries, func(i, j int) bool {
		return out.Entries[i].CreatedAt.Before(out.Entries[j].CreatedAt)
	})

	if incoming.UpdatedAt.After(local.UpdatedAt) {
		out.UpdatedAt = incoming.UpdatedAt
	}

	return out
}

func unionParticipants(local, incoming []model.Participant) []model.Participant {
	out := make([]model.Participant, 0, len(local)+len(incoming))
	seen := make(map[string]bool, len(local)+len(incoming))
	for _, list := range [][]model.Participant{local, incoming} {
		for _, p := range list {
			if seen[p.ID] {
				continue
			}
			seen[p.ID] = true
			out = append(out, p)
		}
	}
	return out
}

func unionQuestions(local, incoming []model.Question) []model.Question {
	out := make([]model.Question, 0, len(local)+len(incoming))
	seen := make(map[string]bool, len(local)+len(incoming))
	for _, list := range [][]model.Question{local, incoming} {
		for _, q := range list {
			if seen[q.ID] {
				continue
			}
			seen[q.ID] = true
			out = append(out, q)
		}
	}
	return out
}

// unionEntries keeps the local copy of any id present on both sides: entries
// are immutable once created, so a collision is a duplicate.
func unionEntries(local, incoming []model.Entry) []model.Entry {
	out := make([]model.Entry, 0, len(local)+len(incoming))
	seen := make(map[string]bool, len(local)+len(incoming))
	for _, list := range [][]model.Entry{local, incoming} {
		for _, e := range list {
			if seen[e.ID] {
				continue
			}
			seen[e.ID] = true
			out = append(out, e.Clone())
		}
	}
	return out
}
