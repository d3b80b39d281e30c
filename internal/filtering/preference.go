package filtering

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/PhoenixMystique/alice-jobseeker/internal/ai"
	"github.com/PhoenixMystique/alice-jobseeker/internal/journal"
	"github.com/PhoenixMystique/alice-jobseeker/internal/listing"
)

type preferenceFilter struct {
	enabled bool
	reason  string
	deps    *PreferenceDeps
}

type PreferenceDeps struct {
	Logger  *zap.Logger
	Matcher ai.Matcher
	Source  Source
	Journal *journal.Journal
}

type PreferenceConfig struct {
	Enabled bool
}

// NewPreference creates the AI preference matching step. Each surviving
// listing is visited, scraped, and judged against the user's preferences.
func NewPreference(cfg *PreferenceConfig, deps *PreferenceDeps) Filter {
	enabled := cfg == nil || cfg.Enabled
	return &preferenceFilter{
		enabled: enabled,
		deps:    deps,
	}
}

func (f *preferenceFilter) Name() string { return "preference" }

func (f *preferenceFilter) Disable(reason string) {
	f.enabled = false
	f.reason = reason
}

func (f *preferenceFilter) IsEnabled() bool { return f.enabled }

func (f *preferenceFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: f.enabled, Reason: f.reason}
}

func (f *preferenceFilter) Validate() error {
	if f.deps == nil {
		return fmt.Errorf("deps are not initialized: filter is not usable")
	}
	if f.deps.Matcher == nil {
		return fmt.Errorf("matcher is required when the preference filter is enabled")
	}
	if f.deps.Source == nil {
		return fmt.Errorf("listing source is required when the preference filter is enabled")
	}
	return nil
}

func (f *preferenceFilter) Apply(ctx context.Context, jobs *listing.Listings) (*listing.Listings, Step, error) {
	initial := jobs.Len()
	approved := make([]*listing.Listing, 0, initial)

	for _, job := range jobs.Items {
		detailed, err := f.deps.Source.Fetch(ctx, job)
		if err != nil {
			f.deps.Logger.Warn("fetching job details failed. It will be skipped.",
				zap.String("job_url", job.URL),
				zap.Error(err),
			)
			continue
		}

		assessment, err := f.deps.Matcher.Evaluate(ctx, detailed)
		if err != nil {
			// Keep listings the matcher could not judge; the record of the
			// failure travels with them.
			f.deps.Logger.Warn("AI evaluation failed",
				zap.String("job_url", job.URL),
				zap.Error(err),
			)
			detailed.AI = &listing.Assessment{Error: err.Error()}
			approved = append(approved, detailed)
			continue
		}

		detailed.AI = &listing.Assessment{
			Match:  assessment.Match,
			Reason: assessment.Reason,
			Raw:    assessment.Raw,
		}

		f.record(detailed)

		if !detailed.AI.Match {
			f.deps.Logger.Info("job rejected by preference match",
				zap.String("job_url", job.URL),
				zap.String("reason", assessment.Reason),
			)
			continue
		}

		f.deps.Logger.Info("job approved by preference match",
			zap.String("job_url", job.URL),
		)

		approved = append(approved, detailed)
	}

	jobs.Items = approved

	f.deps.Logger.Info("preference filtering completed",
		zap.Int("initial_jobs", initial),
		zap.Int("approved_jobs", len(approved)),
	)

	left := jobs.Len()
	return jobs, Step{Initial: initial, Dropped: initial - left, Left: left}, nil
}

func (f *preferenceFilter) record(job *listing.Listing) {
	if f.deps.Journal == nil {
		return
	}

	err := f.deps.Journal.PreferenceMatch(journal.PreferenceMatch{
		URL:      job.URL,
		Title:    job.Title,
		Company:  job.Company,
		Match:    job.AI.Match,
		Response: job.AI.Raw,
	})
	if err != nil {
		f.deps.Logger.Warn("failed to journal preference match",
			zap.String("job_url", job.URL),
			zap.Error(err),
		)
	}
}
