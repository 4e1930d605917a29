package harness

import (
	"bytes"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/waveline/waveline/internal/seq"
)

// Scenario defines a conformance test scenario.
// A scenario pairs an inline sequence definition with expectations about
// the compiled samples, or about the error the compile must produce.
type Scenario struct {
	// Name uniquely identifies this scenario. It is also the golden file name.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Sequence is the inline sequence definition to compile.
	Sequence SequenceDoc `yaml:"sequence"`

	// ExpectError, when set, is the error code the compile must fail with
	// (e.g. "OVERLAP"). Mutually exclusive with Checks.
	ExpectError string `yaml:"expect_error,omitempty"`

	// Checks validate the compiled samples.
	// Supported types: length, at, all_equal, range_equal, linear_between
	Checks []Check `yaml:"checks,omitempty"`
}

// SequenceDoc is the YAML form of a sequence definition.
type SequenceDoc struct {
	Name       string       `yaml:"name"`
	SampleRate float64      `yaml:"sample_rate"`
	Length     uint64       `yaml:"length"`
	Channels   []ChannelDoc `yaml:"channels"`
}

// ChannelDoc is the YAML form of one channel and its timeline.
type ChannelDoc struct {
	Name    string      `yaml:"name"`
	Kind    string      `yaml:"kind"`
	Default float64     `yaml:"default"`
	Records []RecordDoc `yaml:"records"`
}

// RecordDoc is the YAML form of one interval record.
// An absent end makes the record open-ended: it plays until the next
// record's start or the channel length, and never retains.
type RecordDoc struct {
	Start  uint64   `yaml:"start"`
	End    *uint64  `yaml:"end,omitempty"`
	Retain bool     `yaml:"retain,omitempty"`
	Instr  InstrDoc `yaml:"instr"`
}

// InstrDoc is the YAML form of an instruction.
type InstrDoc struct {
	Type string             `yaml:"type"`
	Args map[string]float64 `yaml:"args"`
}

// Check validates one property of a compiled channel.
type Check struct {
	// Type specifies the check type:
	// - "length": the channel has exactly Count samples
	// - "at": the sample at Tick equals Value
	// - "all_equal": every sample equals Value
	// - "range_equal": samples in [From, To) equal Value
	// - "linear_between": samples in [From, To) interpolate StartValue..EndValue
	Type string `yaml:"type"`

	// Channel names the compiled channel under test.
	Channel string `yaml:"channel"`

	Count      uint64  `yaml:"count,omitempty"`
	Tick       uint64  `yaml:"tick,omitempty"`
	Value      float64 `yaml:"value,omitempty"`
	From       uint64  `yaml:"from,omitempty"`
	To         uint64  `yaml:"to,omitempty"`
	StartValue float64 `yaml:"start_value,omitempty"`
	EndValue   float64 `yaml:"end_value,omitempty"`
}

// Check type constants.
const (
	CheckLength        = "length"
	CheckAt            = "at"
	CheckAllEqual      = "all_equal"
	CheckRangeEqual    = "range_equal"
	CheckLinearBetween = "linear_between"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML with strict field validation
// (catches typos like "check:" vs "checks:").
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Sequence.Channels) == 0 {
		return fmt.Errorf("sequence.channels is required and must be non-empty")
	}

	if s.ExpectError == "" && len(s.Checks) == 0 {
		return fmt.Errorf("either expect_error or checks is required")
	}
	if s.ExpectError != "" && len(s.Checks) > 0 {
		return fmt.Errorf("expect_error and checks are mutually exclusive")
	}

	channels := make(map[string]bool, len(s.Sequence.Channels))
	for _, ch := range s.Sequence.Channels {
		channels[ch.Name] = true
	}

	for i, check := range s.Checks {
		if err := validateCheck(i, &check, channels); err != nil {
			return err
		}
	}

	return nil
}

// validateCheck validates a single check based on its type.
func validateCheck(index int, c *Check, channels map[string]bool) error {
	if c.Type == "" {
		return fmt.Errorf("checks[%d]: type is required", index)
	}
	if c.Channel == "" {
		return fmt.Errorf("checks[%d]: channel is required", index)
	}
	if !channels[c.Channel] {
		return fmt.Errorf("checks[%d]: channel %q is not defined in the sequence", index, c.Channel)
	}

	switch c.Type {
	case CheckLength, CheckAt, CheckAllEqual:
		// No further shape requirements.
	case CheckRangeEqual, CheckLinearBetween:
		if c.To <= c.From {
			return fmt.Errorf("checks[%d]: to must be greater than from", index)
		}
	default:
		return fmt.Errorf("checks[%d]: unknown check type %q", index, c.Type)
	}

	return nil
}

// Build converts the document into a validated sequence.
// Instruction and record construction errors surface here with the
// channel and record index that caused them.
func (d *SequenceDoc) Build() (*seq.Sequence, error) {
	s := &seq.Sequence{
		Name:       d.Name,
		SampleRate: d.SampleRate,
		Length:     d.Length,
	}
	for _, chDoc := range d.Channels {
		ch := seq.Channel{
			Name:    chDoc.Name,
			Kind:    seq.ChannelKind(chDoc.Kind),
			Default: chDoc.Default,
		}
		for i, recDoc := range chDoc.Records {
			rec, err := recDoc.build()
			if err != nil {
				return nil, fmt.Errorf("channel %s records[%d]: %w", chDoc.Name, i, err)
			}
			ch.Records = append(ch.Records, rec)
		}
		s.Channels = append(s.Channels, ch)
	}
	return s, nil
}

func (d *RecordDoc) build() (seq.IntervalRecord, error) {
	typ, ok := seq.ParseInstrType(d.Instr.Type)
	if !ok {
		return seq.IntervalRecord{}, fmt.Errorf("unknown instruction type %q", d.Instr.Type)
	}

	// YAML maps are unordered; sort by name so the authored argument order
	// (and with it the sequence fingerprint) is deterministic.
	names := make([]string, 0, len(d.Instr.Args))
	for name := range d.Instr.Args {
		names = append(names, name)
	}
	sort.Strings(names)
	args := make(seq.InstrArgs, 0, len(names))
	for _, name := range names {
		args = append(args, seq.Arg{Name: name, Value: d.Instr.Args[name]})
	}

	instr, err := seq.NewInstruction(typ, args)
	if err != nil {
		return seq.IntervalRecord{}, err
	}

	end := seq.OpenEnd()
	if d.End != nil {
		end = seq.ClosedEnd(*d.End, d.Retain)
	}
	return seq.NewIntervalRecord(d.Start, end, instr)
}
