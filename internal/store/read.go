package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/waveline/waveline/internal/seq"
	"github.com/waveline/waveline/internal/stream"
)

// ErrRunNotFound is returned when no run exists for a token.
var ErrRunNotFound = errors.New("run not found")

// ListRuns returns stored run reports, most recent first.
// Ordering is by the store's monotonic seq, so listings are deterministic.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]stream.RunReport, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT token, sequence_name, fingerprint, sample_rate, length
		FROM runs
		ORDER BY seq DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []stream.RunReport
	for rows.Next() {
		var r stream.RunReport
		var length int64
		if err := rows.Scan(&r.Token, &r.Sequence, &r.Fingerprint, &r.SampleRate, &length); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Length = uint64(length)
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	if runs == nil {
		runs = []stream.RunReport{}
	}
	return runs, nil
}

// GetRun returns one run with its channel rows, or ErrRunNotFound.
func (s *Store) GetRun(ctx context.Context, token string) (*stream.RunReport, error) {
	var r stream.RunReport
	var length int64
	err := s.db.QueryRowContext(ctx, `
		SELECT token, sequence_name, fingerprint, sample_rate, length
		FROM runs WHERE token = ?
	`, token).Scan(&r.Token, &r.Sequence, &r.Fingerprint, &r.SampleRate, &length)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, token)
	}
	if err != nil {
		return nil, fmt.Errorf("query run: %w", err)
	}
	r.Length = uint64(length)

	rows, err := s.db.QueryContext(ctx, `
		SELECT channel, kind, fingerprint, samples, first_sample, last_sample
		FROM channel_runs
		WHERE run_token = ?
		ORDER BY channel COLLATE BINARY ASC
	`, token)
	if err != nil {
		return nil, fmt.Errorf("query channel runs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ch stream.ChannelReport
		var kind string
		var samples int64
		if err := rows.Scan(&ch.Name, &kind, &ch.Fingerprint, &samples, &ch.First, &ch.Last); err != nil {
			return nil, fmt.Errorf("scan channel run: %w", err)
		}
		ch.Kind = seq.ChannelKind(kind)
		ch.Samples = uint64(samples)
		r.Channels = append(r.Channels, ch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate channel runs: %w", err)
	}

	return &r, nil
}
