package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/rituals/internal/model"
	"github.com/roach88/rituals/internal/transfer"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Output string
}

// ExportResult is the JSON payload of a file export.
type ExportResult struct {
	Path    string `json:"path"`
	Rituals int    `json:"rituals"`
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every ritual to a versioned backup file",
		Long: `Write every ritual, with all participants, questions and entries, to a
version 1 transfer package.

Without -o the package is written to rituals_backup_<YYYY-MM-DD>.json in
the current directory. Use -o - to write it to stdout.

Examples:
  rituals export
  rituals export -o ~/backups/rituals.json
  rituals export -o - > rituals.json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file, or - for stdout")

	return cmd
}

func runExport(opts *ExportOptions, cmd *cobra.Command) error {
	s, err := openSession(context.Background(), opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	pkg := transfer.Generate(s.repo.Snapshot().Rituals, opts.clock()().UTC())

	if opts.Output == "-" {
		data, err := transfer.Encode(pkg)
		if err != nil {
			return WrapExitError(ExitFailure, "failed to encode package", err)
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}

	path := opts.Output
	if path == "" {
		path = transfer.FileName(pkg)
	}
	if err := transfer.WriteFile(path, pkg); err != nil {
		return WrapExitError(ExitCommandError, "failed to write export", err)
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	s.out.VerboseLog("export: %d rituals, %d entries, exported at %s",
		len(pkg.Rituals), countEntries(pkg.Rituals), pkg.ExportedAt.Format(time.RFC3339))

	return s.out.Success(ExportResult{Path: path, Rituals: len(pkg.Rituals)}, func(w io.Writer) {
		fmt.Fprintln(w, s.t("export.written", len(pkg.Rituals), path))
	})
}

// countEntries totals the entries across rituals.
func countEntries(rituals []model.Ritual) int {
	n := 0
	for _, r := range rituals {
		n += len(r.Entries)
	}
	return n
}
