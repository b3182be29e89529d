package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/rituals/internal/model"
)

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <ritual>",
		Short: "Show a ritual with its entries",
		Long: `Show a ritual's participants, questions and recorded entries.

The ritual may be given as its full id or any unique id prefix.
Questions and participants are numbered so they can be addressed by
position in "rituals answer".

Examples:
  rituals show 3f2a
  rituals show 3f2a9c1e-... --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(rootOpts, cmd, args[0])
		},
	}
}

func runShow(opts *RootOptions, cmd *cobra.Command, ref string) error {
	s, err := openSession(context.Background(), opts, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	r, err := s.findRitual(ref)
	if err != nil {
		return err
	}

	due := r.DueStatus(opts.clock()())
	return s.out.Success(r, func(w io.Writer) {
		fmt.Fprintf(w, "%s (%s)\n", r.Title, r.ID)
		fmt.Fprintf(w, "Scale: 1-%d  Frequency: %s  Status: %s\n",
			r.Scale, r.Frequency, translator().DueLabel(s.cfg.Lang, due.Label))

		fmt.Fprintln(w, "\nParticipants:")
		for i, p := range r.Participants {
			fmt.Fprintf(w, "  %d. %s %s (%s)\n", i+1, p.Name, p.Color, p.ID)
		}

		fmt.Fprintln(w, "\nQuestions:")
		for i, q := range r.Questions {
			fmt.Fprintf(w, "  %d. %s (%s)\n", i+1, q.Text, q.ID)
			if q.Details != "" {
				fmt.Fprintf(w, "     %s\n", q.Details)
			}
		}

		fmt.Fprintf(w, "\nEntries (%d):\n", len(r.Entries))
		for _, e := range r.Entries {
			fmt.Fprintf(w, "  %s  %s  %s\n", e.CreatedAt.Format("2006-01-02 15:04"), shortID(e.ID), formatResponses(r, e))
		}
	})
}

// formatResponses renders an entry's answers as "q1.p1=7 q1.p2=8 ...",
// using positions from the ritual. Responses to removed questions or
// participants fall back to their ids.
func formatResponses(r model.Ritual, e model.Entry) string {
	qIndex := make(map[string]int, len(r.Questions))
	for i, q := range r.Questions {
		qIndex[q.ID] = i + 1
	}
	pIndex := make(map[string]int, len(r.Participants))
	for i, p := range r.Participants {
		pIndex[p.ID] = i + 1
	}

	parts := make([]string, 0, len(e.Responses))
	for _, resp := range e.Responses {
		qi, qok := qIndex[resp.QuestionID]
		pi, pok := pIndex[resp.ParticipantID]
		if qok && pok {
			parts = append(parts, fmt.Sprintf("%d.%d=%d", qi, pi, resp.Value))
		} else {
			parts = append(parts, fmt.Sprintf("%s/%s=%d", resp.QuestionID, resp.ParticipantID, resp.Value))
		}
	}
	return strings.Join(parts, " ")
}
