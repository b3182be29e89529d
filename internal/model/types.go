package model

import "time"

// Scale is the maximum valid rating value for a ritual.
type Scale int

// Scales lists every allowed scale in display order.
var Scales = []Scale{5, 10, 20, 100}

// Valid reports whether s is one of the allowed scales.
func (s Scale) Valid() bool {
	for _, v := range Scales {
		if s == v {
			return true
		}
	}
	return false
}

// Frequency is how often a ritual is expected to be answered.
type Frequency string

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
)

// Frequencies lists every allowed frequency in display order.
var Frequencies = []Frequency{Daily, Weekly, Monthly}

// Valid reports whether f is one of the allowed frequencies.
func (f Frequency) Valid() bool {
	switch f {
	case Daily, Weekly, Monthly:
		return true
	}
	return false
}

// Days returns the number of days between two expected answers.
func (f Frequency) Days() int {
	switch f {
	case Weekly:
		return 7
	case Monthly:
		return 30
	default:
		return 1
	}
}

// Palette is the default participant color cycle.
var Palette = []string{
	"#3B82F6", // blue
	"#EF4444", // red
	"#10B981", // green
	"#F59E0B", // amber
	"#8B5CF6", // purple
	"#EC4899", // pink
	"#6366F1", // indigo
}

// Participant is one person answering a ritual.
type Participant struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"` // hex #RRGGBB, never empty
}

// Question is one rating prompt of a ritual.
type Question struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Details string `json:"details,omitempty"`
	Order   int    `json:"order"`
}

// Response is one participant's answer to one question within an Entry.
type Response struct {
	QuestionID    string `json:"questionId"`
	ParticipantID string `json:"participantId"`
	Value         int    `json:"value"`
}

// Key returns the (question, participant) identity of the response.
func (r Response) Key() ResponseKey {
	return ResponseKey{QuestionID: r.QuestionID, ParticipantID: r.ParticipantID}
}

// Entry is one occurrence of a ritual. Entries are never mutated after creation.
type Entry struct {
	ID        string     `json:"id"`
	RitualID  string     `json:"ritualId"`
	CreatedAt time.Time  `json:"createdAt"`
	Responses []Response `json:"responses"`
}

// Ritual is the root aggregate.
type Ritual struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	Scale        Scale         `json:"scale"`
	Frequency    Frequency     `json:"frequency"`
	Participants []Participant `json:"participants"`
	Questions    []Question    `json:"questions"`
	Entries      []Entry       `json:"entries"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}
