package filtering

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/PhoenixMystique/alice-jobseeker/internal/listing"
)

type keywordFilter struct {
	enabled bool
	reason  string
	config  *KeywordConfig
	logger  *zap.Logger
}

// KeywordConfig drives the cheap title-based classifier that runs before
// any AI evaluation. A listing is dropped when its title contains a reject
// keyword, or when require keywords are set and none of them appear.
type KeywordConfig struct {
	Require []string `mapstructure:"require"`
	Reject  []string `mapstructure:"reject"`
}

// NewKeyword creates the keyword classifier step. It stays disabled when
// no keywords are configured.
func NewKeyword(cfg *KeywordConfig, logger *zap.Logger) Filter {
	enabled := cfg != nil && (len(cfg.Require) > 0 || len(cfg.Reject) > 0)

	f := &keywordFilter{
		enabled: enabled,
		config:  cfg,
		logger:  logger,
	}
	if !enabled {
		f.reason = "no keywords configured"
	}
	return f
}

func (f *keywordFilter) Name() string { return "keyword" }

func (f *keywordFilter) Disable(reason string) {
	f.enabled = false
	f.reason = reason
}

func (f *keywordFilter) IsEnabled() bool { return f.enabled }

func (f *keywordFilter) Validate() error { return nil }

func (f *keywordFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: f.enabled, Reason: f.reason}
}

func (f *keywordFilter) Apply(_ context.Context, jobs *listing.Listings) (*listing.Listings, Step, error) {
	initial := jobs.Len()
	kept := make([]*listing.Listing, 0, initial)

	for _, job := range jobs.Items {
		title := strings.ToLower(job.Title)

		if keyword, hit := containsAny(title, f.config.Reject); hit {
			f.logger.Debug("job rejected by keyword",
				zap.String("job_url", job.URL),
				zap.String("keyword", keyword),
			)
			continue
		}

		if len(f.config.Require) > 0 {
			if _, hit := containsAny(title, f.config.Require); !hit {
				f.logger.Debug("job missing required keywords",
					zap.String("job_url", job.URL),
					zap.String("title", job.Title),
				)
				continue
			}
		}

		kept = append(kept, job)
	}

	jobs.Items = kept
	return jobs, Step{Initial: initial, Dropped: initial - len(kept), Left: len(kept)}, nil
}

func containsAny(text string, keywords []string) (string, bool) {
	for _, keyword := range keywords {
		keyword = strings.ToLower(strings.TrimSpace(keyword))
		if keyword == "" {
			continue
		}
		if strings.Contains(text, keyword) {
			return keyword, true
		}
	}
	return "", false
}
