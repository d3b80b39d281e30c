package filtering

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/PhoenixMystique/alice-jobseeker/internal/listing"
	"github.com/PhoenixMystique/alice-jobseeker/internal/tracker"
)

const forceFlagSetMsg = "force flag is set"

type processedFilter struct {
	deps   *ProcessedDeps
	ignore bool
}

type ProcessedDeps struct {
	Tracker *tracker.Store
	Logger  *zap.Logger
}

type ProcessedConfig struct {
	Ignore bool
}

// NewProcessed creates a filter that removes listings already present in
// the processed jobs store.
func NewProcessed(cfg *ProcessedConfig, deps *ProcessedDeps) Filter {
	ignore := false
	if cfg != nil {
		ignore = cfg.Ignore
	}

	return &processedFilter{
		deps:   deps,
		ignore: ignore,
	}
}

func (f *processedFilter) Name() string { return "processed" }

func (f *processedFilter) Disable(string) {}

func (f *processedFilter) IsEnabled() bool { return true }

func (f *processedFilter) Validate() error {
	if f.deps == nil || f.deps.Tracker == nil {
		return fmt.Errorf("processed jobs store is required")
	}

	if f.deps.Logger == nil {
		return fmt.Errorf("logger is required")
	}

	return nil
}

func (f *processedFilter) Apply(_ context.Context, jobs *listing.Listings) (*listing.Listings, Step, error) {
	initial := jobs.Len()
	if f.ignore {
		f.deps.Logger.Info("ignoring already processed jobs", zap.String("reason", forceFlagSetMsg))
		return jobs, Step{Initial: initial, Dropped: 0, Left: jobs.Len()}, nil
	}

	processed, err := f.deps.Tracker.ProcessedURLs()
	if err != nil {
		return jobs, Step{}, fmt.Errorf("load processed jobs: %w", err)
	}

	excluded := jobs.Exclude(listing.URLField, processed)
	if len(excluded) > 0 {
		f.deps.Logger.Info("excluding jobs already processed in previous runs",
			zap.Strings("excluded_jobs", excluded),
			zap.Int("jobs_left", jobs.Len()),
		)
	}

	return jobs, Step{Initial: initial, Dropped: len(excluded), Left: jobs.Len()}, nil
}
