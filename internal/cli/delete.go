package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <ritual>",
		Short: "Delete a ritual and all of its entries",
		Long: `Delete a ritual and all of its entries. This cannot be undone;
export a backup first if in doubt.

Examples:
  rituals delete 3f2a`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(rootOpts, cmd, args[0])
		},
	}
}

func runDelete(opts *RootOptions, cmd *cobra.Command, ref string) error {
	ctx := context.Background()
	s, err := openSession(ctx, opts, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	r, err := s.findRitual(ref)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteRitual(ctx, r.ID); err != nil {
		return WrapExitError(ExitFailure, "failed to delete ritual", err)
	}

	return s.out.Success(map[string]string{"id": r.ID}, func(w io.Writer) {
		fmt.Fprintln(w, s.t("ritual.deleted", r.Title))
	})
}
