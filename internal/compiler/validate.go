package compiler

import (
	"fmt"
	"sort"
	"strings"

	"github.com/waveline/waveline/internal/seq"
)

// Validation error codes (E100-E199)
const (
	// Sequence errors (E101-E109)
	ErrSequenceNameEmpty = "E101" // sequence name is required
	ErrZeroLength        = "E102" // total tick count must be positive
	ErrInvalidRate       = "E103" // sample rate must be positive and finite
	ErrNoChannels        = "E104" // at least one channel required

	// Channel errors (E110-E119)
	ErrChannelNameEmpty = "E110" // channel name is required
	ErrInvalidKind      = "E111" // channel kind must be analog or digital
	ErrDuplicateChannel = "E112" // duplicate channel name
	ErrRecordPastEnd    = "E113" // record extends past the sequence length
	ErrRecordsOverlap   = "E114" // two records claim the same tick
)

// ValidationError represents a static validation finding.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a sequence document against placement rules.
// Returns all errors found (does not fail-fast).
//
// Overlap findings here mirror what the sweep would reject, but report every
// conflicting pair instead of aborting on the first, so authors can fix a
// whole document in one pass.
func Validate(s *seq.Sequence) []ValidationError {
	var errs []ValidationError

	if strings.TrimSpace(s.Name) == "" {
		errs = append(errs, ValidationError{
			Field:   "sequence.name",
			Message: "name is required and must be non-empty",
			Code:    ErrSequenceNameEmpty,
		})
	}
	if s.Length == 0 {
		errs = append(errs, ValidationError{
			Field:   "sequence.length",
			Message: "total tick count must be positive",
			Code:    ErrZeroLength,
		})
	}
	if !(s.SampleRate > 0) {
		errs = append(errs, ValidationError{
			Field:   "sequence.sample_rate",
			Message: fmt.Sprintf("sample rate must be positive, got %v", s.SampleRate),
			Code:    ErrInvalidRate,
		})
	}
	if len(s.Channels) == 0 {
		errs = append(errs, ValidationError{
			Field:   "sequence.channels",
			Message: "at least one channel is required",
			Code:    ErrNoChannels,
		})
	}

	seen := make(map[string]bool)
	for i, ch := range s.Channels {
		field := fmt.Sprintf("channel[%d]", i)
		if ch.Name != "" {
			field = "channel." + ch.Name
		}

		if strings.TrimSpace(ch.Name) == "" {
			errs = append(errs, ValidationError{
				Field:   field + ".name",
				Message: "channel name is required and must be non-empty",
				Code:    ErrChannelNameEmpty,
			})
		} else if seen[ch.Name] {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("duplicate channel name %q", ch.Name),
				Code:    ErrDuplicateChannel,
			})
		}
		seen[ch.Name] = true

		if !seq.ValidChannelKinds[ch.Kind] {
			errs = append(errs, ValidationError{
				Field:   field + ".kind",
				Message: fmt.Sprintf("kind must be %q or %q, got %q", seq.KindAnalog, seq.KindDigital, ch.Kind),
				Code:    ErrInvalidKind,
			})
		}

		errs = append(errs, validatePlacements(field, ch, s.Length)...)
	}

	return errs
}

// validatePlacements reports every record placement conflict on one channel.
func validatePlacements(field string, ch seq.Channel, length uint64) []ValidationError {
	var errs []ValidationError

	ordered := make([]seq.IntervalRecord, len(ch.Records))
	copy(ordered, ch.Records)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Start() < ordered[j].Start()
	})

	var prevEnd uint64
	for i, rec := range ordered {
		if rec.EffectiveEnd() > length {
			errs = append(errs, ValidationError{
				Field: fmt.Sprintf("%s.records[%d]", field, i),
				Message: fmt.Sprintf("record [%d, %d) extends past sequence length %d",
					rec.Start(), rec.EffectiveEnd(), length),
				Code: ErrRecordPastEnd,
			})
		}
		if i > 0 && rec.Start() < prevEnd {
			errs = append(errs, ValidationError{
				Field: fmt.Sprintf("%s.records[%d]", field, i),
				Message: fmt.Sprintf("record [%d, %d) overlaps previous record ending at %d",
					rec.Start(), rec.EffectiveEnd(), prevEnd),
				Code: ErrRecordsOverlap,
			})
		}
		if rec.EffectiveEnd() > prevEnd {
			prevEnd = rec.EffectiveEnd()
		}
	}

	return errs
}
