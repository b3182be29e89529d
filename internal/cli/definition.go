package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/rituals/internal/model"
)

// Definition error codes.
const (
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeParseFailed = "E008" // Definition could not be parsed
	ErrCodeInvalidFlag = "E009" // Flag value could not be interpreted
)

// LoadError represents a failure reading a ritual definition.
type LoadError struct {
	Code    string
	Path    string
	Line    int
	Message string
}

func (e *LoadError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s: %s", e.Path, e.Line, e.Code, e.Message)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %s", e.Path, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadDefinition reads a YAML ritual definition:
//
//	title: Weekly retro
//	scale: 10
//	frequency: weekly
//	participants:
//	  - name: Alex
//	    color: "#3B82F6"
//	  - name: Sam
//	questions:
//	  - text: How did the week go?
//	    details: 1 is terrible, 10 is great
//
// Unknown keys are rejected.
func LoadDefinition(path string) (model.RitualDraft, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return model.RitualDraft{}, &LoadError{Code: ErrCodeNotFound, Path: path, Message: "definition file not found"}
	}
	if err != nil {
		return model.RitualDraft{}, &LoadError{Code: ErrCodeNotFound, Path: path, Message: err.Error()}
	}
	return ParseDefinition(path, data)
}

// ParseDefinition decodes a YAML ritual definition. name is used in errors.
func ParseDefinition(name string, data []byte) (model.RitualDraft, error) {
	var draft model.RitualDraft
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&draft); err != nil {
		if errors.Is(err, io.EOF) {
			return model.RitualDraft{}, &LoadError{Code: ErrCodeParseFailed, Path: name, Message: "definition is empty"}
		}
		return model.RitualDraft{}, &LoadError{Code: ErrCodeParseFailed, Path: name, Line: yamlErrorLine(err), Message: err.Error()}
	}
	return draft, nil
}

// yamlErrorLine extracts the first line number from a yaml.v3 error.
func yamlErrorLine(err error) int {
	var typeErr *yaml.TypeError
	msg := err.Error()
	if errors.As(err, &typeErr) && len(typeErr.Errors) > 0 {
		msg = typeErr.Errors[0]
	}
	// yaml.v3 messages look like "yaml: line 4: ..." or "line 4: ..."
	idx := strings.Index(msg, "line ")
	if idx < 0 {
		return 0
	}
	rest := msg[idx+len("line "):]
	end := strings.IndexByte(rest, ':')
	if end < 0 {
		return 0
	}
	n, err := strconv.Atoi(rest[:end])
	if err != nil {
		return 0
	}
	return n
}

// draftFromFlags builds a RitualDraft from create's inline flags.
// Participants are "name" or "name:#RRGGBB"; questions are "text" or
// "text::details".
func draftFromFlags(title string, scale int, frequency string, participants, questions []string) (model.RitualDraft, error) {
	draft := model.RitualDraft{
		Title:     title,
		Scale:     model.Scale(scale),
		Frequency: model.Frequency(strings.ToLower(strings.TrimSpace(frequency))),
	}

	for _, p := range participants {
		name, color, _ := strings.Cut(p, ":")
		if strings.TrimSpace(name) == "" {
			return model.RitualDraft{}, &LoadError{Code: ErrCodeInvalidFlag, Message: fmt.Sprintf("participant %q has no name", p)}
		}
		draft.Participants = append(draft.Participants, model.ParticipantDraft{Name: name, Color: strings.TrimSpace(color)})
	}

	for _, q := range questions {
		text, details, _ := strings.Cut(q, "::")
		draft.Questions = append(draft.Questions, model.QuestionDraft{Text: text, Details: strings.TrimSpace(details)})
	}

	return draft, nil
}
