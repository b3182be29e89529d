package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/rituals/internal/model"
)

// AnswerOptions holds flags for the answer command.
type AnswerOptions struct {
	*RootOptions
	Sets    []string
	Partial bool
}

// NewAnswerCommand creates the answer command.
func NewAnswerCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AnswerOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "answer <ritual>",
		Short: "Record an entry for a ritual",
		Long: `Record one entry: every participant's rating for every question.

Each --set addresses one (question, participant) pair and may be written as
  <question>.<participant>=<value>        positions as listed by "show", from 1
  <questionId>/<participantId>=<value>    ids
  q_<questionId>_p_<participantId>=<value> legacy flattened key
Setting the same pair twice keeps the last value. Values must lie within
the ritual's scale. Every pair must be answered unless --partial is given.

Exit codes:
  0 - Entry recorded
  1 - Ritual not found or storage failure
  2 - Malformed key, unknown question/participant, or value out of range

Examples:
  rituals answer 3f2a --set 1.1=7 --set 1.2=8 --set 2.1=6 --set 2.2=9`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnswer(opts, cmd, args[0])
		},
	}

	cmd.Flags().StringArrayVar(&opts.Sets, "set", nil, "answer as key=value (repeatable)")
	cmd.Flags().BoolVar(&opts.Partial, "partial", false, "allow unanswered pairs")
	_ = cmd.MarkFlagRequired("set")

	return cmd
}

func runAnswer(opts *AnswerOptions, cmd *cobra.Command, ref string) error {
	ctx := context.Background()
	s, err := openSession(ctx, opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	r, err := s.findRitual(ref)
	if err != nil {
		return err
	}

	set, err := collectAnswers(r, opts.Sets, opts.Partial)
	if err != nil {
		return err
	}

	entry := model.NewEntry(r.ID, set, opts.idGenerator(), opts.clock()())
	if err := s.repo.AddEntry(ctx, r.ID, entry); err != nil {
		return WrapExitError(ExitFailure, "failed to record entry", err)
	}

	return s.out.Success(entry, func(w io.Writer) {
		fmt.Fprintln(w, s.t("entry.added", shortID(entry.ID), r.Title))
	})
}

// collectAnswers parses --set values against r and returns them in answer
// step order.
func collectAnswers(r model.Ritual, sets []string, partial bool) (*model.ResponseSet, error) {
	captured := model.NewResponseSet()
	for _, raw := range sets {
		keyPart, valuePart, ok := strings.Cut(raw, "=")
		if !ok {
			return nil, NewExitError(ExitCommandError, fmt.Sprintf("answer %q: expected key=value", raw))
		}

		key, err := resolveAnswerKey(r, strings.TrimSpace(keyPart))
		if err != nil {
			return nil, WrapExitError(ExitCommandError, fmt.Sprintf("answer %q", raw), err)
		}

		value, err := strconv.Atoi(strings.TrimSpace(valuePart))
		if err != nil {
			return nil, WrapExitError(ExitCommandError, fmt.Sprintf("answer %q: value is not an integer", raw), err)
		}
		if !r.Scale.Contains(value) {
			return nil, NewExitError(ExitCommandError, fmt.Sprintf("answer %q: value must be between 1 and %d", raw, r.Scale))
		}

		captured.Set(key, value)
	}

	ordered := model.NewResponseSet()
	var missing []string
	for _, step := range model.Steps(r) {
		v, ok := captured.Get(step.Key())
		if !ok {
			missing = append(missing, fmt.Sprintf("%q/%s", step.Question.Text, step.Participant.Name))
			continue
		}
		ordered.Set(step.Key(), v)
	}

	if len(missing) > 0 && !partial {
		return nil, NewExitError(ExitCommandError,
			fmt.Sprintf("%d unanswered: %s (use --partial to allow)", len(missing), strings.Join(missing, ", ")))
	}
	if ordered.Len() == 0 {
		return nil, NewExitError(ExitCommandError, "no answers given")
	}
	return ordered, nil
}

// resolveAnswerKey interprets one --set key. See NewAnswerCommand for forms.
func resolveAnswerKey(r model.Ritual, key string) (model.ResponseKey, error) {
	var (
		k   model.ResponseKey
		err error
	)
	switch {
	case strings.Contains(key, "/"):
		qid, pid, _ := strings.Cut(key, "/")
		k = model.ResponseKey{QuestionID: qid, ParticipantID: pid}
	case isPositionKey(key):
		k, err = positionKey(r, key)
	default:
		k, err = model.ParseResponseKey(key)
	}
	if err != nil {
		return model.ResponseKey{}, err
	}

	if _, ok := r.Question(k.QuestionID); !ok {
		return model.ResponseKey{}, fmt.Errorf("unknown question %q", k.QuestionID)
	}
	if _, ok := r.Participant(k.ParticipantID); !ok {
		return model.ResponseKey{}, fmt.Errorf("unknown participant %q", k.ParticipantID)
	}
	return k, nil
}

func isPositionKey(key string) bool {
	q, p, ok := strings.Cut(key, ".")
	if !ok {
		return false
	}
	_, errQ := strconv.Atoi(q)
	_, errP := strconv.Atoi(p)
	return errQ == nil && errP == nil
}

func positionKey(r model.Ritual, key string) (model.ResponseKey, error) {
	q, p, _ := strings.Cut(key, ".")
	qi, _ := strconv.Atoi(q)
	pi, _ := strconv.Atoi(p)
	if qi < 1 || qi > len(r.Questions) {
		return model.ResponseKey{}, fmt.Errorf("question position %d out of range 1-%d", qi, len(r.Questions))
	}
	if pi < 1 || pi > len(r.Participants) {
		return model.ResponseKey{}, fmt.Errorf("participant position %d out of range 1-%d", pi, len(r.Participants))
	}
	return model.ResponseKey{
		QuestionID:    r.Questions[qi-1].ID,
		ParticipantID: r.Participants[pi-1].ID,
	}, nil
}
