package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/waveline/waveline/internal/compiler"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
}

// ValidationReport is the validate command's payload.
type ValidationReport struct {
	Sequence string                    `json:"sequence"`
	Valid    bool                      `json:"valid"`
	Errors   []compiler.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <sequence-dir>",
		Short: "Validate a sequence definition",
		Long: `Validate a CUE sequence definition without compiling samples.

All structural errors are collected and reported together: empty names,
non-positive sample rates, unknown channel kinds, duplicate channels,
records past the sequence length, and overlapping placements.

Exit codes:
  0 - Sequence is valid
  1 - Validation errors found
  2 - Command error (directory not found, malformed CUE, ...)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *ValidateOptions, dir string, cmd *cobra.Command) error {
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
			if loadErr.Code == ErrCodeDecodeError || isConstructionCode(loadErr.Code) {
				return NewExitError(ExitFailure, "sequence definition rejected")
			}
			return NewExitError(ExitCommandError, loadErr.Message)
		}
		formatter.Error(ErrCodeGeneric, err.Error())
		return NewExitError(ExitCommandError, err.Error())
	}

	report := &ValidationReport{Sequence: s.Name}
	report.Errors = compiler.Validate(s)
	report.Valid = len(report.Errors) == 0

	if opts.Format == "json" {
		if err := formatter.Success(report); err != nil {
			return err
		}
	} else {
		if report.Valid {
			fmt.Fprintf(formatter.Writer, "Sequence %s is valid (%d channel(s))\n", s.Name, len(s.Channels))
		} else {
			fmt.Fprintf(formatter.Writer, "Sequence %s has %d error(s):\n", s.Name, len(report.Errors))
			for _, ve := range report.Errors {
				fmt.Fprintf(formatter.Writer, "  [%s] %s: %s\n", ve.Code, ve.Field, ve.Message)
			}
		}
	}

	if !report.Valid {
		return NewExitError(ExitFailure, fmt.Sprintf("%d validation error(s)", len(report.Errors)))
	}
	return nil
}
