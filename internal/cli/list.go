package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/rituals/internal/model"
)

// RitualSummary is one row of the list command.
type RitualSummary struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Scale       model.Scale     `json:"scale"`
	Frequency   model.Frequency `json:"frequency"`
	Entries     int             `json:"entries"`
	LastEntryAt *time.Time      `json:"lastEntryAt,omitempty"`
	Due         bool            `json:"due"`
	DueLabel    string          `json:"dueLabel"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List rituals, most recently active first",
		Long: `List every ritual, most recently active first, with its due status.

A ritual is due when it has no entries yet, or when more than its
frequency (1, 7 or 30 days) has passed since the last entry.

Examples:
  rituals list
  rituals list --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(rootOpts, cmd)
		},
	}
}

func runList(opts *RootOptions, cmd *cobra.Command) error {
	s, err := openSession(context.Background(), opts, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	now := opts.clock()()
	rituals := s.repo.Snapshot().Rituals
	rows := make([]RitualSummary, 0, len(rituals))
	for _, r := range rituals {
		due := r.DueStatus(now)
		row := RitualSummary{
			ID:        r.ID,
			Title:     r.Title,
			Scale:     r.Scale,
			Frequency: r.Frequency,
			Entries:   len(r.Entries),
			Due:       due.Due,
			DueLabel:  translator().DueLabel(s.cfg.Lang, due.Label),
			UpdatedAt: r.UpdatedAt,
		}
		if last, ok := r.LastEntryAt(); ok {
			row.LastEntryAt = &last
		}
		rows = append(rows, row)
	}

	return s.out.Success(rows, func(w io.Writer) {
		if len(rows) == 0 {
			fmt.Fprintln(w, "No rituals yet.")
			return
		}
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tTITLE\tSCALE\tFREQUENCY\tENTRIES\tLAST ENTRY\tSTATUS")
		for _, row := range rows {
			last := "-"
			if row.LastEntryAt != nil {
				last = row.LastEntryAt.Format("2006-01-02")
			}
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%d\t%s\t%s\n",
				shortID(row.ID), row.Title, row.Scale, row.Frequency, row.Entries, last, row.DueLabel)
		}
		tw.Flush()
	})
}
