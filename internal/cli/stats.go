package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/rituals/internal/model"
	"github.com/roach88/rituals/internal/stats"
)

// StatsOptions holds flags for the stats command.
type StatsOptions struct {
	*RootOptions
	Mode     int
	Question string
}

// StatsResult is the JSON payload of the stats command.
type StatsResult struct {
	RitualID   string        `json:"ritualId"`
	Mode       stats.Mode    `json:"mode"`
	QuestionID string        `json:"questionId,omitempty"`
	Lines      []stats.Line  `json:"lines"`
	Points     []stats.Point `json:"points"`
}

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StatsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "stats <ritual>",
		Short: "Show a ritual's rating trend",
		Long: `Show one value per entry, oldest first, aggregated by mode:

  1 - each participant's answer to one question (requires --question)
  2 - each participant's average over all questions
  3 - the average of all answers to one question (requires --question)
  4 - the average of every answer

--question takes a question id or its position as listed by "show".
Entries without a matching answer show 0.

Examples:
  rituals stats 3f2a
  rituals stats 3f2a --mode 1 --question 2`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(opts, cmd, args[0])
		},
	}

	cmd.Flags().IntVar(&opts.Mode, "mode", int(stats.GlobalAverage), "aggregation mode (1-4)")
	cmd.Flags().StringVarP(&opts.Question, "question", "q", "", "question id or position for modes 1 and 3")

	return cmd
}

func runStats(opts *StatsOptions, cmd *cobra.Command, ref string) error {
	mode := stats.Mode(opts.Mode)
	if !mode.Valid() {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid mode %d: must be 1-4", opts.Mode))
	}
	if mode.NeedsQuestion() && opts.Question == "" {
		return NewExitError(ExitCommandError, fmt.Sprintf("mode %d requires --question", opts.Mode))
	}

	s, err := openSession(context.Background(), opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	r, err := s.findRitual(ref)
	if err != nil {
		return err
	}

	var questionID string
	if mode.NeedsQuestion() {
		q, err := resolveQuestion(r, opts.Question)
		if err != nil {
			return err
		}
		questionID = q.ID
	}

	result := StatsResult{
		RitualID:   r.ID,
		Mode:       mode,
		QuestionID: questionID,
		Lines:      stats.Lines(r, mode, s.t("stats.average")),
		Points:     stats.Series(r, mode, questionID),
	}

	return s.out.Success(result, func(w io.Writer) {
		if len(result.Points) == 0 {
			fmt.Fprintln(w, "No entries yet.")
			return
		}
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprint(tw, "#\tDATE")
		for _, l := range result.Lines {
			fmt.Fprintf(tw, "\t%s", l.Name)
		}
		fmt.Fprintln(tw)
		for _, p := range result.Points {
			fmt.Fprintf(tw, "%d\t%s", p.Index, p.Date.Format("2006-01-02"))
			for _, l := range result.Lines {
				fmt.Fprintf(tw, "\t%s", strconv.FormatFloat(p.Values[l.Key], 'f', -1, 64))
			}
			fmt.Fprintln(tw)
		}
		tw.Flush()
	})
}

// resolveQuestion finds a question by id or 1-based position.
func resolveQuestion(r model.Ritual, ref string) (model.Question, error) {
	if q, ok := r.Question(ref); ok {
		return q, nil
	}
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(r.Questions) {
		return r.Questions[n-1], nil
	}
	return model.Question{}, NewExitError(ExitCommandError, fmt.Sprintf("unknown question %q", ref))
}
