package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/waveline/waveline/internal/store"
)

// RunsOptions holds flags for the runs command.
type RunsOptions struct {
	*RootOptions
	DB    string
	Limit int
	Token string
}

// NewRunsCommand creates the runs command.
func NewRunsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded runs",
		Long: `List runs recorded in the run database, most recent first.
With --token, show one run in full including its channel fingerprints.

Exit codes:
  0 - Listed successfully
  2 - Command error (database not found, unknown token)`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRuns(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", "waveline.db", "run database path")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum number of runs to list")
	cmd.Flags().StringVar(&opts.Token, "token", "", "show a single run by token")

	return cmd
}

func runRuns(opts *RunsOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if _, err := os.Stat(opts.DB); os.IsNotExist(err) {
		formatter.Error(ErrCodeNotFound, fmt.Sprintf("run database not found: %s", opts.DB))
		return NewExitError(ExitCommandError, "database not found")
	}

	st, err := store.Open(opts.DB)
	if err != nil {
		formatter.Error(ErrCodeGeneric, fmt.Sprintf("opening run database: %v", err))
		return NewExitError(ExitCommandError, "database open failed")
	}
	defer st.Close()

	ctx := context.Background()

	if opts.Token != "" {
		run, err := st.GetRun(ctx, opts.Token)
		if err != nil {
			formatter.Error(ErrCodeNotFound, err.Error())
			return NewExitError(ExitCommandError, "run not found")
		}
		if opts.Format == "json" {
			return formatter.Success(run)
		}
		fmt.Fprintf(formatter.Writer, "Run %s\n", run.Token)
		fmt.Fprintf(formatter.Writer, "  Sequence:    %s (%d ticks at %g Hz)\n", run.Sequence, run.Length, run.SampleRate)
		fmt.Fprintf(formatter.Writer, "  Fingerprint: %s\n", run.Fingerprint)
		for _, ch := range run.Channels {
			fmt.Fprintf(formatter.Writer, "  %-12s %-8s %6d samples  %s\n",
				ch.Name, ch.Kind, ch.Samples, ch.Fingerprint)
		}
		return nil
	}

	runs, err := st.ListRuns(ctx, opts.Limit)
	if err != nil {
		formatter.Error(ErrCodeGeneric, err.Error())
		return NewExitError(ExitCommandError, "listing runs failed")
	}

	if opts.Format == "json" {
		return formatter.Success(runs)
	}
	if len(runs) == 0 {
		fmt.Fprintln(formatter.Writer, "No runs recorded.")
		return nil
	}
	for _, r := range runs {
		fmt.Fprintf(formatter.Writer, "%s  %-20s %8d ticks  %s\n",
			r.Token, r.Sequence, r.Length, r.Fingerprint[:12])
	}
	return nil
}
