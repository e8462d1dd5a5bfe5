package storage

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Candidate is a backend tried during selection
type Candidate struct {
	Name       string
	Configured bool
	Open       func(ctx context.Context) (Store, error)
}

// Select returns the first configured candidate that opens successfully.
// Unconfigured candidates are skipped and open failures are logged, never
// fatal. When nothing else works, fallback is used.
func Select(ctx context.Context, logger zerolog.Logger, candidates []Candidate, fallback func() (Store, error)) (Store, error) {
	for _, c := range candidates {
		if !c.Configured {
			logger.Info().Str("backend", c.Name).Msg("storage backend not configured, skipping")
			continue
		}

		store, err := c.Open(ctx)
		if err != nil {
			logger.Warn().Err(err).Str("backend", c.Name).Msg("storage backend failed to initialize, falling through")
			continue
		}

		logger.Info().Str("backend", store.Name()).Msg("storage backend selected")
		return store, nil
	}

	store, err := fallback()
	if err != nil {
		return nil, fmt.Errorf("fallback storage: %w", err)
	}
	logger.Info().Str("backend", store.Name()).Msg("storage backend selected")
	return store, nil
}
