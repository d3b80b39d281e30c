package filtering

import (
	"context"

	"go.uber.org/zap"

	"github.com/PhoenixMystique/alice-jobseeker/internal/journal"
	"github.com/PhoenixMystique/alice-jobseeker/internal/listing"
)

type externalFilter struct {
	deps   *ExternalDeps
	follow bool
}

type ExternalDeps struct {
	Logger  *zap.Logger
	Journal *journal.Journal
}

type ExternalConfig struct {
	// FollowRedirects keeps company-site listings in the pipeline so the
	// application flow can click through to the external page.
	FollowRedirects bool `mapstructure:"follow-redirects"`
}

// NewExternal creates a filter that drops listings which only offer an
// "Apply on company site" button, unless external redirects are enabled.
// Runs after the preference step so the company-site flag is populated.
func NewExternal(cfg *ExternalConfig, deps *ExternalDeps) Filter {
	follow := cfg != nil && cfg.FollowRedirects
	return &externalFilter{
		deps:   deps,
		follow: follow,
	}
}

func (f *externalFilter) Name() string { return "external" }

func (f *externalFilter) Disable(string) {}

func (f *externalFilter) IsEnabled() bool { return true }

func (f *externalFilter) Validate() error { return nil }

func (f *externalFilter) Apply(_ context.Context, jobs *listing.Listings) (*listing.Listings, Step, error) {
	initial := jobs.Len()
	if f.follow {
		return jobs, Step{Initial: initial, Dropped: 0, Left: initial}, nil
	}

	kept := make([]*listing.Listing, 0, initial)
	for _, job := range jobs.Items {
		if !job.CompanySite {
			kept = append(kept, job)
			continue
		}

		f.deps.Logger.Info("skipping job that applies through a company site",
			zap.String("job_url", job.URL),
		)
		if f.deps.Journal != nil {
			_ = f.deps.Journal.Application(journal.Application{
				URL:     job.URL,
				Title:   job.Title,
				Company: job.Company,
				Status:  "skipped",
				Method:  "external_site",
			})
		}
	}

	jobs.Items = kept
	return jobs, Step{Initial: initial, Dropped: initial - len(kept), Left: len(kept)}, nil
}
