package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/rituals/internal/transfer"
)

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Merge a backup file into the local rituals",
		Long: `Merge a transfer package into the local rituals. Nothing local is lost:
rituals, participants, questions and entries are matched by id and only
the ones not already present are added. Matching rituals keep their local
title, scale and frequency.

A file that is not a valid version 1 package is rejected and nothing is
written.

Exit codes:
  0 - Merge completed (possibly with nothing new)
  1 - Invalid package or storage failure
  2 - File could not be read

Examples:
  rituals import rituals_backup_2024-03-01.json
  rituals import - < rituals.json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(rootOpts, cmd, args[0])
		},
	}
}

func runImport(opts *RootOptions, cmd *cobra.Command, path string) error {
	raw, err := readInput(cmd, path)
	if err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("failed to read %s", path), err)
	}

	pkg, err := transfer.Decode(raw)
	if err != nil {
		return WrapExitError(ExitFailure, "rejected import", err)
	}

	ctx := context.Background()
	s, err := openSession(ctx, opts, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	summary, err := s.repo.ImportRituals(ctx, pkg.Rituals)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to import", err)
	}
	s.out.VerboseLog("import: %d rituals, %d entries from package exported at %s",
		len(pkg.Rituals), countEntries(pkg.Rituals), pkg.ExportedAt.Format(time.RFC3339))

	return s.out.Success(summary, func(w io.Writer) {
		if summary.IsZero() {
			fmt.Fprintln(w, s.t("import.nothing"))
			return
		}
		fmt.Fprintln(w, s.t("import.summary", summary.Rituals, summary.Participants, summary.Questions, summary.Entries))
	})
}

// readInput reads path, or stdin when path is "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}
