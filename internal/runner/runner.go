// Package runner orchestrates a full session: it discovers listings page
// by page, filters them, and hands the survivors to concurrent application
// workers.
package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/PhoenixMystique/alice-jobseeker/internal/applicant"
	"github.com/PhoenixMystique/alice-jobseeker/internal/board"
	"github.com/PhoenixMystique/alice-jobseeker/internal/filtering"
	"github.com/PhoenixMystique/alice-jobseeker/internal/journal"
	"github.com/PhoenixMystique/alice-jobseeker/internal/listing"
	"github.com/PhoenixMystique/alice-jobseeker/internal/tracker"
	"github.com/PhoenixMystique/alice-jobseeker/internal/utils"
)

const (
	defaultBatchSize      = 20
	defaultMaxPages       = 10
	defaultConcurrency    = 1
	defaultPageWait       = 3 * time.Second
	defaultSessionRetries = 2
)

// Config bounds a runner session.
type Config struct {
	SearchURL       string        `mapstructure:"search-url"`
	MaxApplications int           `mapstructure:"max-applications"`
	MaxPages        int           `mapstructure:"max-pages"`
	BatchSize       int           `mapstructure:"batch-size"`
	Concurrency     int           `mapstructure:"concurrency"`
	PageWait        time.Duration `mapstructure:"page-wait"`
	SessionRetries  int           `mapstructure:"session-retries"`

	// DryRun discovers and filters listings without applying to them.
	DryRun bool `mapstructure:"dry-run"`
}

func (c *Config) batchSize() int {
	if c.BatchSize <= 0 {
		return defaultBatchSize
	}
	return c.BatchSize
}

func (c *Config) maxPages() int {
	if c.MaxPages <= 0 {
		return defaultMaxPages
	}
	return c.MaxPages
}

func (c *Config) concurrency() int {
	if c.Concurrency <= 0 {
		return defaultConcurrency
	}
	return c.Concurrency
}

func (c *Config) pageWait() time.Duration {
	if c.PageWait <= 0 {
		return defaultPageWait
	}
	return c.PageWait
}

func (c *Config) sessionRetries() int {
	if c.SessionRetries <= 0 {
		return defaultSessionRetries
	}
	return c.SessionRetries
}

// StepsFactory builds the filter chain for a discovery session. The source
// argument fetches listing details through the session's own page.
type StepsFactory func(source filtering.Source) []filtering.Filter

// Result tallies a completed session. Listings carries every processed
// listing, with its AI assessment attached, for reporting.
type Result struct {
	Applied  int
	Failed   int
	Skipped  int
	Pages    int
	Listings *listing.Listings
}

func (r *Result) Total() int {
	return r.Applied + r.Failed + r.Skipped
}

// Runner ties discovery, filtering, and application together.
type Runner struct {
	cfg       *Config
	client    *board.Client
	newSteps  StepsFactory
	applicant *applicant.Applicant
	tracker   *tracker.Store
	journal   *journal.Journal
	logger    *zap.Logger

	mu     sync.Mutex
	result Result
}

func New(cfg *Config, client *board.Client, newSteps StepsFactory, app *applicant.Applicant, store *tracker.Store, jrnl *journal.Journal, logger *zap.Logger) *Runner {
	return &Runner{
		cfg:       cfg,
		client:    client,
		newSteps:  newSteps,
		applicant: app,
		tracker:   store,
		journal:   jrnl,
		logger:    logger,
		result:    Result{Listings: &listing.Listings{}},
	}
}

// Run executes the whole session and writes the summary journal entry.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	if r.cfg.SearchURL == "" {
		return nil, fmt.Errorf("search url is required")
	}

	if err := r.client.Start(ctx); err != nil {
		return nil, err
	}

	feed := make(chan *listing.Listing)
	group, gctx := errgroup.WithContext(ctx)

	for i := 0; i < r.cfg.concurrency(); i++ {
		worker := i
		group.Go(func() error {
			return r.worker(gctx, worker, feed)
		})
	}

	discoverErr := r.discover(gctx, feed)
	close(feed)

	if err := group.Wait(); err != nil {
		return nil, err
	}
	if discoverErr != nil && ctx.Err() == nil {
		return nil, discoverErr
	}

	r.mu.Lock()
	result := r.result
	r.mu.Unlock()

	if r.journal != nil {
		_ = r.journal.Summary(journal.Summary{
			Succeeded: result.Applied,
			Failed:    result.Failed,
			Skipped:   result.Skipped,
			Total:     result.Total(),
		})
	}

	r.logger.Info("session finished",
		zap.Int("applied", result.Applied),
		zap.Int("failed", result.Failed),
		zap.Int("skipped", result.Skipped),
		zap.Int("pages_visited", result.Pages),
	)

	return &result, nil
}

// discover walks the search result pages, filters each batch, and feeds
// surviving listings to the workers.
func (r *Runner) discover(ctx context.Context, feed chan<- *listing.Listing) error {
	session, err := r.client.NewSession(ctx, r.cfg.SearchURL)
	if err != nil {
		return fmt.Errorf("open search session: %w", err)
	}
	defer session.Close()

	// Consent popups tend to show up on the very first page.
	for i := 0; i < 3; i++ {
		if dismissed, err := session.DismissConsent(ctx); err != nil || !dismissed {
			break
		}
		utils.WaitFor(ctx, utils.Jitter(time.Second))
	}

	steps := r.newSteps(&sessionSource{session: session})
	detector := newStuckDetector()
	pageURL := r.cfg.SearchURL

	for page := 1; page <= r.cfg.maxPages(); page++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if r.budgetExhausted() {
			r.logger.Info("application budget reached, stopping discovery")
			return nil
		}

		found, err := extractWithLazyLoad(ctx, session, r.cfg.batchSize(), time.Second)
		if err != nil {
			return fmt.Errorf("extract listings from page %d: %w", page, err)
		}

		r.mu.Lock()
		r.result.Pages = page
		r.mu.Unlock()

		if detector.Observe(found.URLs()) {
			r.logger.Warn("same results served repeatedly, stopping discovery",
				zap.Int("page", page))
			return nil
		}

		if found.Len() == 0 {
			if shot, err := session.Screenshot(ctx, false); err == nil {
				path, saveErr := r.saveScreenshot(page, shot)
				if saveErr != nil {
					r.logger.Warn("no listings extracted, screenshot not saved",
						zap.Int("page", page),
						zap.Error(saveErr),
					)
				} else {
					r.logger.Warn("no listings extracted, screenshot saved",
						zap.Int("page", page),
						zap.String("screenshot", path),
					)
				}
			}
		}

		if found.Len() > r.cfg.batchSize() {
			r.logger.Info("limiting batch",
				zap.Int("found", found.Len()),
				zap.Int("batch_size", r.cfg.batchSize()),
			)
			found.Items = found.Items[:r.cfg.batchSize()]
		}

		filtered, err := filtering.Run(ctx, r.logger, steps, found)
		if err != nil {
			return fmt.Errorf("filter listings from page %d: %w", page, err)
		}

		for _, job := range filtered.Items {
			if r.budgetExhausted() {
				r.logger.Info("application budget reached, stopping discovery")
				return nil
			}
			select {
			case feed <- job:
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if page == r.cfg.maxPages() {
			break
		}

		pageURL = board.NextPageURL(pageURL)
		r.logger.Info("navigating to next results page",
			zap.Int("page", page+1),
			zap.String("url", pageURL),
		)
		if err := session.Navigate(ctx, pageURL); err != nil {
			r.logger.Warn("pagination failed, stopping discovery", zap.Error(err))
			return nil
		}

		utils.WaitFor(ctx, utils.Jitter(r.cfg.pageWait()))
	}

	return nil
}

// worker applies to jobs from the feed on its own browser page. A broken
// session is replaced a bounded number of times before the worker gives up.
func (r *Runner) worker(ctx context.Context, id int, feed <-chan *listing.Listing) error {
	logger := r.logger.With(zap.Int("worker", id))

	var session *board.Session
	defer func() {
		if session != nil {
			_ = session.Close()
		}
	}()

	for job := range feed {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if r.cfg.DryRun {
			logger.Info("dry run, not applying",
				zap.String("job_url", job.URL),
				zap.String("title", job.Title),
			)
			r.mu.Lock()
			r.result.Skipped++
			r.result.Listings.Append(job)
			r.mu.Unlock()
			continue
		}

		outcome, err := r.processWithRecovery(ctx, &session, job, logger)
		if err != nil {
			return fmt.Errorf("worker %d: %w", id, err)
		}

		r.recordOutcome(job, outcome, logger)

		utils.WaitFor(ctx, utils.Jitter(r.cfg.pageWait()))
	}

	return nil
}

func (r *Runner) processWithRecovery(ctx context.Context, session **board.Session, job *listing.Listing, logger *zap.Logger) (*applicant.Outcome, error) {
	var lastErr error

	for attempt := 0; attempt <= r.cfg.sessionRetries(); attempt++ {
		if *session == nil {
			fresh, err := r.client.NewSession(ctx, job.URL)
			if err != nil {
				lastErr = err
				continue
			}
			*session = fresh
		}

		outcome, err := r.applicant.Process(ctx, *session, job)
		if err == nil {
			return outcome, nil
		}

		lastErr = err
		logger.Warn("browser session failed, recreating",
			zap.String("job_url", job.URL),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
		_ = (*session).Close()
		*session = nil
	}

	// The job itself failed, not the run. Report it and move on.
	logger.Error("giving up on job after repeated session failures",
		zap.String("job_url", job.URL),
		zap.Error(lastErr),
	)
	return &applicant.Outcome{
		Status: applicant.StatusFailed,
		Reason: "session_failure",
		Detail: lastErr.Error(),
	}, nil
}

func (r *Runner) recordOutcome(job *listing.Listing, outcome *applicant.Outcome, logger *zap.Logger) {
	if r.tracker != nil {
		err := r.tracker.MarkProcessed(tracker.Record{
			URL:     job.URL,
			Title:   job.Title,
			Company: job.Company,
			Status:  outcome.Status,
			Detail:  outcome.Reason,
		})
		if err != nil {
			logger.Warn("failed to mark job as processed", zap.Error(err))
		}
	}

	r.mu.Lock()
	switch outcome.Status {
	case applicant.StatusApplied:
		r.result.Applied++
	case applicant.StatusSkipped:
		r.result.Skipped++
	default:
		r.result.Failed++
	}
	r.result.Listings.Append(job)
	r.mu.Unlock()

	logger.Info("job processed",
		zap.String("job_url", job.URL),
		zap.String("status", outcome.Status),
		zap.String("method", outcome.Method),
		zap.Int("questions", outcome.Questions),
	)
}

// saveScreenshot writes a debugging screenshot of the current results page
// under the journal directory.
func (r *Runner) saveScreenshot(page int, shot []byte) (string, error) {
	if r.journal == nil {
		return "", errors.New("no journal directory configured")
	}

	dir := filepath.Join(r.journal.Dir(), "screenshots")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	name := fmt.Sprintf("page_screenshot_page%d_%s.png", page, time.Now().Format("20060102_150405"))
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, shot, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func (r *Runner) budgetExhausted() bool {
	if r.cfg.MaxApplications <= 0 {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.result.Applied >= r.cfg.MaxApplications
}

// searchSession is the slice of session behavior discovery needs to pull
// listings off a results page.
type searchSession interface {
	ExtractListings(ctx context.Context) (*listing.Listings, error)
	LoadMore(ctx context.Context) (bool, error)
}

// extractWithLazyLoad pulls listings off the current page. When the first
// pass comes up short of a full batch it scrolls and clicks the board's
// "Show More" style button, then extracts again.
func extractWithLazyLoad(ctx context.Context, page searchSession, batch int, wait time.Duration) (*listing.Listings, error) {
	found, err := page.ExtractListings(ctx)
	if err != nil {
		return nil, err
	}
	if found.Len() >= batch {
		return found, nil
	}

	clicked, err := page.LoadMore(ctx)
	if err != nil || !clicked {
		return found, nil
	}

	utils.WaitFor(ctx, utils.Jitter(wait))

	more, err := page.ExtractListings(ctx)
	if err != nil || more.Len() <= found.Len() {
		return found, nil
	}
	return more, nil
}

// sessionSource fetches listing details through the discovery session.
type sessionSource struct {
	session *board.Session
}

func (s *sessionSource) Fetch(ctx context.Context, job *listing.Listing) (*listing.Listing, error) {
	if err := s.session.Navigate(ctx, job.URL); err != nil {
		return nil, err
	}
	_, _ = s.session.DismissConsent(ctx)
	return s.session.JobDetails(ctx, job)
}
