package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/waveline/waveline/internal/compiler"
	"github.com/waveline/waveline/internal/seq"
	"github.com/waveline/waveline/internal/stream"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path for canonical samples
}

// ChannelSummary describes one compiled channel for CLI output.
type ChannelSummary struct {
	Name        string  `json:"name"`
	Kind        string  `json:"kind"`
	Samples     int     `json:"samples"`
	Fingerprint string  `json:"fingerprint"`
	First       float64 `json:"first"`
	Last        float64 `json:"last"`
}

// CompileSummary is the compile command's success payload.
type CompileSummary struct {
	Sequence    string           `json:"sequence"`
	Fingerprint string           `json:"fingerprint"`
	SampleRate  float64          `json:"sample_rate"`
	Length      uint64           `json:"length"`
	Channels    []ChannelSummary `json:"channels"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <sequence-dir>",
		Short: "Compile a sequence to dense sample arrays",
		Long: `Compile a CUE sequence definition into per-channel sample arrays.

Every channel's timeline is swept once: gaps fill from the channel
default or the last retained level, overlaps abort the channel, and
the output always covers the sequence's full length.

Exit codes:
  0 - Compile succeeded
  1 - Validation or compile failure (overlap, bad instruction, ...)
  2 - Command error (directory not found, unreadable files, ...)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write canonical sample JSON to file")

	return cmd
}

func runCompile(opts *CompileOptions, dir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	res, err := loadAndCompile(formatter, dir)
	if err != nil {
		return err
	}

	if opts.Output != "" {
		if err := writeCanonicalSamples(res, opts.Output); err != nil {
			formatter.Error(ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err))
			return NewExitError(ExitCommandError, "write failed")
		}
		formatter.VerboseLog("Wrote canonical samples to %s", opts.Output)
	}

	summary := summarize(res)
	if opts.Format == "json" {
		return formatter.Success(summary)
	}
	printCompileSummary(formatter, summary)
	return nil
}

// loadAndCompile runs the full load -> validate -> compile pipeline,
// emitting formatted errors and mapping failures to exit codes.
func loadAndCompile(formatter *OutputFormatter, dir string) (*compiler.Result, error) {
	s, err := LoadSequence(dir)
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			formatter.Error(loadErr.Code, loadErr.Message)
			if loadErr.Code == ErrCodeDecodeError || isConstructionCode(loadErr.Code) {
				return nil, NewExitError(ExitFailure, "sequence definition rejected")
			}
			return nil, NewExitError(ExitCommandError, loadErr.Message)
		}
		formatter.Error(ErrCodeGeneric, err.Error())
		return nil, NewExitError(ExitCommandError, err.Error())
	}

	formatter.VerboseLog("Loaded sequence %s: %d channel(s), length %d at %g Hz",
		s.Name, len(s.Channels), s.Length, s.SampleRate)

	if verrs := compiler.Validate(s); len(verrs) > 0 {
		for _, ve := range verrs {
			formatter.Error(ve.Code, fmt.Sprintf("%s: %s", ve.Field, ve.Message))
		}
		return nil, NewExitError(ExitFailure, fmt.Sprintf("%d validation error(s)", len(verrs)))
	}

	clock, err := stream.NewClock(s.SampleRate)
	if err != nil {
		formatter.Error(ErrCodeGeneric, err.Error())
		return nil, NewExitError(ExitFailure, err.Error())
	}

	res, err := compiler.CompileSequence(s, clock.Times(s.Length))
	if err != nil {
		var ce *compiler.CompileError
		if errors.As(err, &ce) {
			formatter.Error(string(ce.Code), ce.Error())
		} else {
			formatter.Error(ErrCodeGeneric, err.Error())
		}
		return nil, NewExitError(ExitFailure, "compile failed")
	}
	return res, nil
}

func isConstructionCode(code string) bool {
	switch seq.ConstructionErrorCode(code) {
	case seq.ErrCodeMissingArgument, seq.ErrCodeInvalidInterval, seq.ErrCodeDegenerateRamp:
		return true
	}
	return false
}

func summarize(res *compiler.Result) *CompileSummary {
	summary := &CompileSummary{
		Sequence:    res.Sequence,
		Fingerprint: res.Fingerprint,
		SampleRate:  res.SampleRate,
		Length:      res.Length,
	}
	for _, ch := range res.Channels {
		cs := ChannelSummary{
			Name:        ch.Name,
			Kind:        string(ch.Kind),
			Samples:     len(ch.Samples),
			Fingerprint: ch.Fingerprint,
		}
		if len(ch.Samples) > 0 {
			cs.First = ch.Samples[0]
			cs.Last = ch.Samples[len(ch.Samples)-1]
		}
		summary.Channels = append(summary.Channels, cs)
	}
	return summary
}

func printCompileSummary(formatter *OutputFormatter, s *CompileSummary) {
	var b strings.Builder
	fmt.Fprintf(&b, "Compiled sequence %s (%d ticks at %g Hz)\n", s.Sequence, s.Length, s.SampleRate)
	fmt.Fprintf(&b, "Fingerprint: %s\n", s.Fingerprint)
	for _, ch := range s.Channels {
		fmt.Fprintf(&b, "  %-12s %-8s %6d samples  first=%-10g last=%-10g %s",
			ch.Name, ch.Kind, ch.Samples, ch.First, ch.Last, ch.Fingerprint[:12])
		b.WriteByte('\n')
	}
	fmt.Fprint(formatter.Writer, b.String())
}

// writeCanonicalSamples writes the full compile output as canonical JSON.
// The same bytes feed the sample fingerprints, so the file is reproducible
// byte for byte across machines.
func writeCanonicalSamples(res *compiler.Result, path string) error {
	channels := make([]any, len(res.Channels))
	for i, ch := range res.Channels {
		channels[i] = map[string]any{
			"name":        ch.Name,
			"kind":        string(ch.Kind),
			"fingerprint": ch.Fingerprint,
			"samples":     ch.Samples,
		}
	}
	data, err := seq.MarshalCanonical(map[string]any{
		"sequence":    res.Sequence,
		"fingerprint": res.Fingerprint,
		"sample_rate": res.SampleRate,
		"length":      res.Length,
		"channels":    channels,
	})
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
