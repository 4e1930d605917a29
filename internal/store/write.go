package store

import (
	"context"
	"fmt"

	"github.com/waveline/waveline/internal/stream"
)

// WriteRun inserts a run report and its channel rows in one transaction.
// Idempotent on token: a duplicate write is silently ignored, matching the
// purity of what it records (the same token always denotes the same run).
//
// The run's seq is assigned here from the store's monotonic counter; ordering
// never depends on wall-clock time.
func (s *Store) WriteRun(ctx context.Context, report *stream.RunReport) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs (token, sequence_name, fingerprint, sample_rate, length, seq)
		VALUES (?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM runs))
		ON CONFLICT(token) DO NOTHING
	`,
		report.Token,
		report.Sequence,
		report.Fingerprint,
		report.SampleRate,
		int64(report.Length),
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	if inserted == 0 {
		// Existing token: the run (and its channels) are already recorded.
		return nil
	}

	for _, ch := range report.Channels {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO channel_runs
			(run_token, channel, kind, fingerprint, samples, first_sample, last_sample)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`,
			report.Token,
			ch.Name,
			string(ch.Kind),
			ch.Fingerprint,
			int64(ch.Samples),
			ch.First,
			ch.Last,
		)
		if err != nil {
			return fmt.Errorf("write channel run %s: %w", ch.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	return nil
}
