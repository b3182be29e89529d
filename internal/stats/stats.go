// Package stats derives chart series from a ritual's entries.
//
// Each entry becomes one Point, in CreatedAt order, carrying one value per
// line. An entry with no matching responses for a line is plotted as 0,
// which is indistinguishable from a genuine average of 0.
package stats

import (
	"math"
	"sort"
	"time"

	"github.com/roach88/rituals/internal/model"
)

// Mode selects how responses are aggregated per entry.
type Mode int

const (
	// PerParticipantQuestion plots each participant's answer to one question.
	PerParticipantQuestion Mode = iota + 1
	// PerParticipantAverage plots each participant's average over all questions.
	PerParticipantAverage
	// QuestionAverage plots the average of all answers to one question.
	QuestionAverage
	// GlobalAverage plots the average of every answer in the entry.
	GlobalAverage
)

// Modes lists every mode in display order.
var Modes = []Mode{PerParticipantQuestion, PerParticipantAverage, QuestionAverage, GlobalAverage}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m >= PerParticipantQuestion && m <= GlobalAverage
}

// NeedsQuestion reports whether the mode is scoped to a single question.
func (m Mode) NeedsQuestion() bool {
	return m == PerParticipantQuestion || m == QuestionAverage
}

// GlobalKey is the line key used by the aggregate modes.
const GlobalKey = "global"

// GlobalColor is the line color used by the aggregate modes.
const GlobalColor = "#3B82F6"

// Point is one entry's values. Values is keyed by line key: participant id
// for the per-participant modes, GlobalKey otherwise.
type Point struct {
	EntryID string             `json:"entryId"`
	Date    time.Time          `json:"date"`
	Index   int                `json:"index"`
	Values  map[string]float64 `json:"values"`
}

// Line describes one plotted series.
type Line struct {
	Key   string `json:"key"`
	Color string `json:"color"`
	Name  string `json:"name"`
}

// Series computes the points for r under mode. questionID is only used by
// PerParticipantQuestion and QuestionAverage. Index starts at 1.
func Series(r model.Ritual, mode Mode, questionID string) []Point {
	entries := make([]model.Entry, len(r.Entries))
	copy(entries, r.Entries)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})

	points := make([]Point, 0, len(entries))
	for i, e := range entries {
		p := Point{
			EntryID: e.ID,
			Date:    e.CreatedAt,
			Index:   i + 1,
			Values:  make(map[string]float64),
		}

		switch mode {
		case PerParticipantQuestion:
			for _, part := range r.Participants {
				p.Values[part.ID] = 0
				for _, resp := range e.Responses {
					if resp.ParticipantID == part.ID && resp.QuestionID == questionID {
						p.Values[part.ID] = float64(resp.Value)
						break
					}
				}
			}
		case PerParticipantAverage:
			for _, part := range r.Participants {
				p.Values[part.ID] = average(e.Responses, func(resp model.Response) bool {
					return resp.ParticipantID == part.ID
				})
			}
		case QuestionAverage:
			p.Values[GlobalKey] = average(e.Responses, func(resp model.Response) bool {
				return resp.QuestionID == questionID
			})
		case GlobalAverage:
			p.Values[GlobalKey] = average(e.Responses, func(model.Response) bool { return true })
		}

		points = append(points, p)
	}
	return points
}

// Lines returns the series plotted for mode: one per participant for the
// per-participant modes, a single global line otherwise.
func Lines(r model.Ritual, mode Mode, globalName string) []Line {
	if mode == PerParticipantQuestion || mode == PerParticipantAverage {
		lines := make([]Line, 0, len(r.Participants))
		for _, p := range r.Participants {
			lines = append(lines, Line{Key: p.ID, Color: p.Color, Name: p.Name})
		}
		return lines
	}
	return []Line{{Key: GlobalKey, Color: GlobalColor, Name: globalName}}
}

// average returns the mean of matching response values rounded to two
// decimals, or 0 when nothing matches.
func average(responses []model.Response, match func(model.Response) bool) float64 {
	sum, n := 0, 0
	for _, r := range responses {
		if match(r) {
			sum += r.Value
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return round2(float64(sum) / float64(n))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
