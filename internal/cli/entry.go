package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/rituals/internal/model"
)

// NewEntryCommand creates the entry command group.
func NewEntryCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entry",
		Short: "Manage recorded entries",
	}
	cmd.AddCommand(newEntryDeleteCommand(rootOpts))
	return cmd
}

func newEntryDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <ritual> <entry>",
		Short: "Delete one entry from a ritual",
		Long: `Delete one entry from a ritual. The entry may be given as its full id
or any unique id prefix within the ritual.

Examples:
  rituals entry delete 3f2a 9b01`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEntryDelete(rootOpts, cmd, args[0], args[1])
		},
	}
}

func runEntryDelete(opts *RootOptions, cmd *cobra.Command, ritualRef, entryRef string) error {
	ctx := context.Background()
	s, err := openSession(ctx, opts, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	r, err := s.findRitual(ritualRef)
	if err != nil {
		return err
	}

	entry, err := findEntry(r, entryRef)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteEntry(ctx, r.ID, entry.ID); err != nil {
		return WrapExitError(ExitFailure, "failed to delete entry", err)
	}

	return s.out.Success(map[string]string{"ritualId": r.ID, "entryId": entry.ID}, func(w io.Writer) {
		fmt.Fprintln(w, s.t("entry.deleted", shortID(entry.ID), r.Title))
	})
}

// findEntry resolves ref as an exact entry id or unique prefix within r.
func findEntry(r model.Ritual, ref string) (model.Entry, error) {
	ref = strings.TrimSpace(ref)
	if e, ok := r.Entry(ref); ok {
		return e, nil
	}

	var matches []model.Entry
	for _, e := range r.Entries {
		if ref != "" && strings.HasPrefix(e.ID, ref) {
			matches = append(matches, e)
		}
	}
	switch len(matches) {
	case 0:
		return model.Entry{}, NewExitError(ExitFailure, fmt.Sprintf("entry %q not found in ritual %s", ref, r.ID))
	case 1:
		return matches[0], nil
	default:
		return model.Entry{}, NewExitError(ExitCommandError, fmt.Sprintf("entry prefix %q is ambiguous (%d matches)", ref, len(matches)))
	}
}
