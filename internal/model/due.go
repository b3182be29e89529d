package model

import "time"

// Due labels.
const (
	DueLabelNew      = "new"
	DueLabelDue      = "due"
	DueLabelUpToDate = "up to date"
)

// Due describes whether a ritual should be answered again.
type Due struct {
	Due   bool   `json:"due"`
	Label string `json:"label"`
}

// DueStatus reports whether a ritual last answered at last (ok=false when it
// has never been answered) is due again at now for the given frequency.
func DueStatus(last time.Time, ok bool, frequency Frequency, now time.Time) Due {
	if !ok {
		return Due{Due: true, Label: DueLabelNew}
	}
	next := last.AddDate(0, 0, frequency.Days())
	if now.After(next) {
		return Due{Due: true, Label: DueLabelDue}
	}
	return Due{Due: false, Label: DueLabelUpToDate}
}

// DueStatus is a convenience wrapper around the package-level DueStatus.
func (r Ritual) DueStatus(now time.Time) Due {
	last, ok := r.LastEntryAt()
	return DueStatus(last, ok, r.Frequency, now)
}
