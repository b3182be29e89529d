package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/rituals/internal/model"
)

// CreateOptions holds flags for the create command.
type CreateOptions struct {
	*RootOptions
	File         string
	Title        string
	Scale        int
	Frequency    string
	Participants []string
	Questions    []string
}

// NewCreateCommand creates the create command.
func NewCreateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CreateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a ritual",
		Long: `Create a ritual from a YAML definition file or from inline flags.

Participants are given as "name" or "name:#RRGGBB"; a missing color is
picked from the default palette. Questions are given as "text" or
"text::details" and keep the order they are listed in.

Examples:
  rituals create --file retro.yaml
  rituals create --title "Weekly retro" --scale 10 --frequency weekly \
    --participant Alex --participant "Sam:#EF4444" \
    --question "How did the week go?" --question "Energy::1 is exhausted"`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "YAML ritual definition")
	cmd.Flags().StringVar(&opts.Title, "title", "", "ritual title")
	cmd.Flags().IntVar(&opts.Scale, "scale", 10, "rating scale (5|10|20|100)")
	cmd.Flags().StringVar(&opts.Frequency, "frequency", string(model.Weekly), "frequency (daily|weekly|monthly)")
	cmd.Flags().StringArrayVar(&opts.Participants, "participant", nil, "participant as name[:color] (repeatable)")
	cmd.Flags().StringArrayVar(&opts.Questions, "question", nil, "question as text[::details] (repeatable)")
	cmd.MarkFlagsMutuallyExclusive("file", "title")

	return cmd
}

func runCreate(opts *CreateOptions, cmd *cobra.Command) error {
	var (
		draft model.RitualDraft
		err   error
	)
	if opts.File != "" {
		draft, err = LoadDefinition(opts.File)
	} else {
		draft, err = draftFromFlags(opts.Title, opts.Scale, opts.Frequency, opts.Participants, opts.Questions)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read ritual definition", err)
	}

	ritual, err := model.NewRitual(draft, opts.idGenerator(), opts.clock()())
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid ritual definition", err)
	}

	ctx := context.Background()
	s, err := openSession(ctx, opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.repo.CreateRitual(ctx, ritual); err != nil {
		return WrapExitError(ExitFailure, "failed to create ritual", err)
	}

	return s.out.Success(ritual, func(w io.Writer) {
		fmt.Fprintln(w, s.t("ritual.created", ritual.ID))
	})
}
