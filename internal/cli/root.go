package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/rituals/internal/config"
	"github.com/roach88/rituals/internal/i18n"
	"github.com/roach88/rituals/internal/model"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	DBPath  string // overrides RITUALS_DB_PATH
	Lang    string // overrides RITUALS_LANG

	// Test seams; zero values mean wall clock and random UUIDs.
	now func() time.Time
	ids model.IDGenerator
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

var defaultTranslator = mustLoadTranslator()

func mustLoadTranslator() *i18n.Translator {
	tr, err := i18n.New()
	if err != nil {
		panic(fmt.Sprintf("load message catalogs: %v", err))
	}
	return tr
}

func translator() *i18n.Translator {
	return defaultTranslator
}

// NewRootCommand creates the root command for the rituals CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rituals",
		Short: "Track recurring team rituals",
		Long: `Track recurring rituals offline: define participants and rating questions,
record entries, watch trends, and back up or restore with a versioned JSON
package that merges without losing data.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "", "path to SQLite database (default $RITUALS_DB_PATH or ~/.rituals/rituals.db)")
	cmd.PersistentFlags().StringVar(&opts.Lang, "lang", "", "message language (en|fr, default $RITUALS_LANG or en)")

	// Add subcommands
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewCreateCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))
	cmd.AddCommand(NewAnswerCommand(opts))
	cmd.AddCommand(NewEntryCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))

	return cmd
}

// Execute runs the CLI with args and returns the process exit code.
func Execute(args []string, stdout, stderr io.Writer) int {
	return execute(&RootOptions{}, args, stdout, stderr)
}

func execute(opts *RootOptions, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCommand(opts)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.Execute()
	if err == nil {
		return ExitSuccess
	}

	f := &OutputFormatter{Format: opts.Format, Writer: stdout, ErrWriter: stderr, Verbose: opts.Verbose}
	if !isValidFormat(f.Format) {
		f.Format = "text"
	}
	reportError(f, opts.lang(), err)
	return GetExitCode(err)
}

// resolve merges environment configuration with flag overrides.
func (o *RootOptions) resolve() (config.Config, error) {
	cfg, err := config.Parse()
	if err != nil {
		return config.Config{}, err
	}
	if o.DBPath != "" {
		cfg.DBPath = o.DBPath
	}
	if err := cfg.ResolveDBPath(); err != nil {
		return config.Config{}, err
	}
	if o.Lang != "" {
		cfg.Lang = o.Lang
	}
	if o.Verbose {
		cfg.LogLevel = slog.LevelDebug
	}
	return cfg, nil
}

// lang returns the flag language, else the environment's, else the base.
func (o *RootOptions) lang() string {
	if o.Lang != "" {
		return o.Lang
	}
	if cfg, err := config.Parse(); err == nil && cfg.Lang != "" {
		return cfg.Lang
	}
	return i18n.BaseLocale
}

func (o *RootOptions) clock() func() time.Time {
	if o.now != nil {
		return o.now
	}
	return time.Now
}

func (o *RootOptions) idGenerator() model.IDGenerator {
	if o.ids != nil {
		return o.ids
	}
	return model.UUIDGenerator{}
}

// newLogger builds the process logger: text records on w at level.
func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
