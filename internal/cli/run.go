package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/waveline/waveline/internal/compiler"
	"github.com/waveline/waveline/internal/store"
	"github.com/waveline/waveline/internal/stream"
)

// RunCmdOptions holds flags for the run command.
type RunCmdOptions struct {
	*RootOptions
	DB             string
	TriggerSource  string
	TriggerEdge    string
	RefClockSource string
	RefClockRate   float64
	ExportTrigger  string
	VoltageMin     float64
	VoltageMax     float64
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunCmdOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <sequence-dir>",
		Short: "Compile a sequence and stream it to the simulated device",
		Long: `Compile a sequence, configure the simulated output device, stream
every channel's samples and start generation. The run report (token,
definition fingerprint, per-channel sample fingerprints) is recorded
in the run database for later listing and verification.

Exit codes:
  0 - Run started and recorded
  1 - Validation or compile failure
  2 - Command error (directory or database problems)

Examples:
  waveline run ./seqs/demo --db runs.db
  waveline run ./seqs/demo --db runs.db --trigger-source /Dev1/PFI0
  waveline run ./seqs/demo --db runs.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", "waveline.db", "run database path")
	cmd.Flags().StringVar(&opts.TriggerSource, "trigger-source", "", "digital start trigger terminal (empty = start immediately)")
	cmd.Flags().StringVar(&opts.TriggerEdge, "trigger-edge", "rising", "start trigger edge (rising|falling)")
	cmd.Flags().StringVar(&opts.RefClockSource, "ref-clock-source", "", "reference clock terminal (empty = onboard timebase)")
	cmd.Flags().Float64Var(&opts.RefClockRate, "ref-clock-rate", 10e6, "reference clock rate in Hz")
	cmd.Flags().StringVar(&opts.ExportTrigger, "export-trigger", "", "terminal to export the start trigger to")
	cmd.Flags().Float64Var(&opts.VoltageMin, "voltage-min", -10, "analog channel minimum voltage")
	cmd.Flags().Float64Var(&opts.VoltageMax, "voltage-max", 10, "analog channel maximum voltage")

	return cmd
}

func runRun(opts *RunCmdOptions, dir string, cmd *cobra.Command) error {
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

	log := zerolog.Nop()
	if opts.Verbose {
		log = zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()}).With().Timestamp().Logger()
	}

	device := stream.NewSimDevice()
	defer device.Close()
	runner := stream.NewRunner(device, log)

	runOpts := stream.RunOptions{
		ClockSource: "",
		VoltageMin:  opts.VoltageMin,
		VoltageMax:  opts.VoltageMax,
	}
	if opts.TriggerSource != "" {
		runOpts.Trigger = stream.TriggerConfig{
			Source: opts.TriggerSource,
			Edge:   stream.TriggerEdge(opts.TriggerEdge),
		}
	}
	if opts.RefClockSource != "" {
		runOpts.RefClock = stream.RefClockConfig{
			Source: opts.RefClockSource,
			Rate:   opts.RefClockRate,
		}
	}
	runOpts.ExportTerminal = opts.ExportTrigger

	report, err := runner.Run(s, runOpts)
	if err != nil {
		var ce *compiler.CompileError
		if errors.As(err, &ce) {
			formatter.Error(string(ce.Code), ce.Error())
		} else {
			formatter.Error(ErrCodeGeneric, err.Error())
		}
		return NewExitError(ExitFailure, "run failed")
	}

	st, err := store.Open(opts.DB)
	if err != nil {
		formatter.Error(ErrCodeGeneric, fmt.Sprintf("opening run database: %v", err))
		return NewExitError(ExitCommandError, "database open failed")
	}
	defer st.Close()

	if err := st.WriteRun(context.Background(), report); err != nil {
		formatter.Error(ErrCodeWriteFailed, fmt.Sprintf("recording run: %v", err))
		return NewExitError(ExitCommandError, "database write failed")
	}

	if opts.Format == "json" {
		return formatter.Success(report)
	}
	fmt.Fprintf(formatter.Writer, "Run %s started: sequence %s, %d channel(s), %d ticks\n",
		report.Token, report.Sequence, len(report.Channels), report.Length)
	for _, ch := range report.Channels {
		fmt.Fprintf(formatter.Writer, "  %-12s %-8s %6d samples  %s\n",
			ch.Name, ch.Kind, ch.Samples, ch.Fingerprint[:12])
	}
	return nil
}
