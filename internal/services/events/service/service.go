// Package service implements the events service: fetch with per-call
// deadlines, retry with backoff on retryable store failures, and skip-and-log
// for malformed rows. The resolver and segmenter never retry on their own;
// this adapter owns that policy
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"deskwatch/internal/modkit/repokit"
	perr "deskwatch/internal/platform/errors"
	"deskwatch/internal/platform/logger"
	"deskwatch/internal/services/events/domain"
	"deskwatch/internal/services/events/repo"
)

// Config for the events service
type Config struct {
	// FetchTimeout bounds each store call; defaults to 15s if <= 0
	FetchTimeout time.Duration

	// Attempts is the total tries per call for retryable failures;
	// defaults to 3 if <= 0
	Attempts int

	// Backoff is the first retry delay, doubled per attempt;
	// defaults to 100ms if <= 0
	Backoff time.Duration

	// HardLimit caps rows per fetch; defaults to 50000 if <= 0
	HardLimit int
}

// runFn executes one attempt against a bound Storage
type runFn func(ctx context.Context, fn func(ctx context.Context, st repo.Storage) error) error

// Service implements domain.FetcherPort
type Service struct {
	run runFn
	Cfg Config
	Log *logger.Logger
}

func normalize(cfg Config) Config {
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 15 * time.Second
	}
	if cfg.Attempts <= 0 {
		cfg.Attempts = 3
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = 100 * time.Millisecond
	}
	if cfg.HardLimit <= 0 {
		cfg.HardLimit = 50000
	}
	return cfg
}

// New constructs an events service over the Postgres timeline. Each call
// runs inside one transaction so multi-query reads see one snapshot
func New(db repokit.TxRunner, b repokit.Binder[repo.Storage], cfg Config) *Service {
	run := func(ctx context.Context, fn func(ctx context.Context, st repo.Storage) error) error {
		return db.Tx(ctx, func(q repokit.Queryer) error {
			return fn(ctx, b.Bind(q))
		})
	}
	return &Service{run: run, Cfg: normalize(cfg), Log: logger.Named("events")}
}

// NewWithStorage constructs an events service over a pre-bound Storage,
// e.g. the ClickHouse mirror, which has no transaction seam
func NewWithStorage(st repo.Storage, cfg Config) *Service {
	run := func(ctx context.Context, fn func(ctx context.Context, st repo.Storage) error) error {
		return fn(ctx, st)
	}
	return &Service{run: run, Cfg: normalize(cfg), Log: logger.Named("events")}
}

// fetch runs fn with the per-call deadline, retrying retryable failures
func (s *Service) fetch(ctx context.Context, op string, fn func(ctx context.Context, st repo.Storage) error) error {
	var last error
	delay := s.Cfg.Backoff
	for attempt := 1; attempt <= s.Cfg.Attempts; attempt++ {
		cctx, cancel := context.WithTimeout(ctx, s.Cfg.FetchTimeout)
		err := s.run(cctx, fn)
		cancel()
		if err == nil {
			return nil
		}
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			err = perr.Wrapf(err, perr.ErrorCodeTimeout, "events: %s exceeded %s", op, s.Cfg.FetchTimeout)
		}
		last = err
		if ctx.Err() != nil || !perr.Retryable(err) || attempt == s.Cfg.Attempts {
			break
		}
		s.Log.Warn().Err(err).Str("op", op).Int("attempt", attempt).Msg("retrying store call")
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		delay *= 2
	}
	return perr.WithOp(last, op)
}

// logSkipped reports malformed rows. Skips are invisible to callers except
// via reduced counts
func (s *Service) logSkipped(op string, skipped []error) {
	for _, err := range skipped {
		s.Log.Warn().Err(err).Str("op", op).Msg("skipping malformed event")
	}
}

// FetchEvents implements domain.FetcherPort
func (s *Service) FetchEvents(ctx context.Context, q domain.Query) ([]domain.DetectionEvent, error) {
	var res repo.FetchResult
	err := s.fetch(ctx, "fetch_events", func(ctx context.Context, st repo.Storage) error {
		var err error
		res, err = st.FetchEvents(ctx, q, s.Cfg.HardLimit)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logSkipped("fetch_events", res.Skipped)
	return res.Events, nil
}

// PersonTimestamps implements domain.FetcherPort
func (s *Service) PersonTimestamps(ctx context.Context, identity string, since, until float64) ([]float64, error) {
	var out []float64
	err := s.fetch(ctx, "person_timestamps", func(ctx context.Context, st repo.Storage) error {
		var err error
		out, err = st.PersonTimestamps(ctx, identity, since, until)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DistinctIdentities implements domain.FetcherPort
func (s *Service) DistinctIdentities(ctx context.Context, since, until float64) ([]string, error) {
	var out []string
	err := s.fetch(ctx, "distinct_identities", func(ctx context.Context, st repo.Storage) error {
		var err error
		out, err = st.DistinctIdentities(ctx, since, until)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// StatementTimeoutHook caps each transaction's statements server-side so a
// stuck query cannot outlive the fetch deadline by much
func StatementTimeoutHook(d time.Duration) repokit.BeginHook {
	return func(ctx context.Context, q repokit.Queryer) error {
		_, err := q.Exec(ctx, fmt.Sprintf("SET LOCAL statement_timeout = %d", d.Milliseconds()))
		return err
	}
}
