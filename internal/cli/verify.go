package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/waveline/waveline/internal/store"
)

// VerifyOptions holds flags for the verify command.
type VerifyOptions struct {
	*RootOptions
	DB string
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &VerifyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "verify <sequence-dir> <token>",
		Short: "Verify a recorded run against its sequence",
		Long: `Recompile the sequence and compare definition and per-channel sample
fingerprints against what the run recorded. The compiler is pure, so a
mismatch means the sequence definition changed since the run.

Exit codes:
  0 - All fingerprints match
  1 - Fingerprint mismatch (definition drifted or compile changed)
  2 - Command error (unknown token, database problems, ...)`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", "waveline.db", "run database path")

	return cmd
}

func runVerify(opts *VerifyOptions, dir, token string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	s, err := LoadSequence(dir)
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			formatter.Error(loadErr.Code, loadErr.Message)
			return NewExitError(ExitCommandError, loadErr.Message)
		}
		formatter.Error(ErrCodeGeneric, err.Error())
		return NewExitError(ExitCommandError, err.Error())
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

	v, err := st.VerifyRun(context.Background(), token, s)
	if err != nil {
		if errors.Is(err, store.ErrRunNotFound) {
			formatter.Error(ErrCodeNotFound, err.Error())
			return NewExitError(ExitCommandError, "run not found")
		}
		formatter.Error(ErrCodeGeneric, err.Error())
		return NewExitError(ExitFailure, "verification could not recompile")
	}

	if opts.Format == "json" {
		if err := formatter.Success(v); err != nil {
			return err
		}
	} else {
		printVerification(formatter, v)
	}

	if !v.OK {
		return NewExitError(ExitFailure, "fingerprint mismatch")
	}
	return nil
}

func printVerification(formatter *OutputFormatter, v *store.Verification) {
	status := func(match bool) string {
		if match {
			return "ok"
		}
		return "MISMATCH"
	}
	fmt.Fprintf(formatter.Writer, "Run %s (sequence %s)\n", v.Token, v.Sequence)
	fmt.Fprintf(formatter.Writer, "  definition   %s\n", status(v.Fingerprint.Match))
	if !v.Fingerprint.Match {
		fmt.Fprintf(formatter.Writer, "    stored:   %s\n", v.Fingerprint.Stored)
		fmt.Fprintf(formatter.Writer, "    computed: %s\n", v.Fingerprint.Computed)
	}
	for _, ch := range v.Channels {
		fmt.Fprintf(formatter.Writer, "  %-12s %s\n", ch.Channel, status(ch.Match))
		if !ch.Match {
			fmt.Fprintf(formatter.Writer, "    stored:   %s\n", ch.Stored)
			fmt.Fprintf(formatter.Writer, "    computed: %s\n", ch.Computed)
		}
	}
	if v.OK {
		fmt.Fprintln(formatter.Writer, "Verification passed.")
	} else {
		fmt.Fprintln(formatter.Writer, "Verification FAILED.")
	}
}
