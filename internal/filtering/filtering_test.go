package filtering

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/PhoenixMystique/alice-jobseeker/internal/ai"
	"github.com/PhoenixMystique/alice-jobseeker/internal/listing"
	"github.com/PhoenixMystique/alice-jobseeker/internal/tracker"
)

type stubSource struct {
	details map[string]*listing.Listing
	err     error
}

func (s *stubSource) Fetch(_ context.Context, job *listing.Listing) (*listing.Listing, error) {
	if s.err != nil {
		return nil, s.err
	}
	if detailed, ok := s.details[job.URL]; ok {
		return detailed, nil
	}
	return job, nil
}

type stubMatcher struct {
	match  map[string]bool
	err    error
	called int
}

func (m *stubMatcher) Evaluate(_ context.Context, job *listing.Listing) (*ai.FitAssessment, error) {
	m.called++
	if m.err != nil {
		return nil, m.err
	}
	return &ai.FitAssessment{
		Match:  m.match[job.URL],
		Reason: "stub reason",
		Raw:    "stub raw",
	}, nil
}

func sampleJobs(urls ...string) *listing.Listings {
	jobs := &listing.Listings{}
	for _, url := range urls {
		jobs.Items = append(jobs.Items, &listing.Listing{URL: url, Title: "Go Developer"})
	}
	return jobs
}

func TestProcessedFilterDropsKnownJobs(t *testing.T) {
	store, err := tracker.Open(t.TempDir() + "/processed.db")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	if err := store.MarkProcessed(tracker.Record{URL: "https://example.com/job-listings/a", Status: tracker.StatusApplied}); err != nil {
		t.Fatalf("mark processed: %v", err)
	}

	filter := NewProcessed(nil, &ProcessedDeps{Tracker: store, Logger: zap.NewNop()})
	jobs := sampleJobs("https://example.com/job-listings/a", "https://example.com/job-listings/b")

	jobs, step, err := filter.Apply(context.Background(), jobs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if step.Dropped != 1 || step.Left != 1 {
		t.Fatalf("unexpected step: %+v", step)
	}
	if jobs.FindByURL("https://example.com/job-listings/b") == nil {
		t.Fatalf("expected unprocessed job to survive")
	}
}

func TestProcessedFilterIgnoreFlag(t *testing.T) {
	store, err := tracker.Open(t.TempDir() + "/processed.db")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	if err := store.MarkProcessed(tracker.Record{URL: "u1", Status: tracker.StatusApplied}); err != nil {
		t.Fatalf("mark processed: %v", err)
	}

	filter := NewProcessed(&ProcessedConfig{Ignore: true}, &ProcessedDeps{Tracker: store, Logger: zap.NewNop()})
	jobs := sampleJobs("u1", "u2")

	jobs, step, err := filter.Apply(context.Background(), jobs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if step.Dropped != 0 || jobs.Len() != 2 {
		t.Fatalf("expected no jobs dropped, got %+v", step)
	}
}

func TestKeywordFilterRequireAndReject(t *testing.T) {
	filter := NewKeyword(&KeywordConfig{
		Require: []string{"golang", "backend"},
		Reject:  []string{"intern"},
	}, zap.NewNop())

	jobs := &listing.Listings{Items: []*listing.Listing{
		{URL: "u1", Title: "Golang Engineer"},
		{URL: "u2", Title: "Backend Intern"},
		{URL: "u3", Title: "Sales Manager"},
	}}

	jobs, step, err := filter.Apply(context.Background(), jobs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if step.Left != 1 || jobs.Items[0].URL != "u1" {
		t.Fatalf("expected only the golang job to survive, got %+v", jobs.URLs())
	}
}

func TestKeywordFilterDisabledWithoutKeywords(t *testing.T) {
	filter := NewKeyword(&KeywordConfig{}, zap.NewNop())
	if filter.IsEnabled() {
		t.Fatalf("expected filter to be disabled without keywords")
	}
}

func TestPreferenceFilterDropsMismatches(t *testing.T) {
	matcher := &stubMatcher{match: map[string]bool{"u1": true, "u2": false}}
	filter := NewPreference(nil, &PreferenceDeps{
		Logger:  zap.NewNop(),
		Matcher: matcher,
		Source:  &stubSource{},
	})

	jobs := sampleJobs("u1", "u2")
	jobs, step, err := filter.Apply(context.Background(), jobs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if step.Dropped != 1 || jobs.Len() != 1 {
		t.Fatalf("unexpected step: %+v", step)
	}

	survivor := jobs.Items[0]
	if survivor.URL != "u1" || survivor.AI == nil || !survivor.AI.Match {
		t.Fatalf("expected matching job with assessment, got %+v", survivor)
	}
}

func TestPreferenceFilterKeepsJobsOnMatcherError(t *testing.T) {
	matcher := &stubMatcher{err: errors.New("quota exceeded")}
	filter := NewPreference(nil, &PreferenceDeps{
		Logger:  zap.NewNop(),
		Matcher: matcher,
		Source:  &stubSource{},
	})

	jobs := sampleJobs("u1")
	jobs, _, err := filter.Apply(context.Background(), jobs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if jobs.Len() != 1 {
		t.Fatalf("expected job to survive a matcher error")
	}
	if jobs.Items[0].AI == nil || jobs.Items[0].AI.Error == "" {
		t.Fatalf("expected error annotation on the listing")
	}
}

func TestExternalFilterDropsCompanySiteJobs(t *testing.T) {
	filter := NewExternal(nil, &ExternalDeps{Logger: zap.NewNop()})

	jobs := &listing.Listings{Items: []*listing.Listing{
		{URL: "u1", CompanySite: true},
		{URL: "u2"},
	}}

	jobs, step, err := filter.Apply(context.Background(), jobs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if step.Dropped != 1 || jobs.Items[0].URL != "u2" {
		t.Fatalf("expected company-site job to be dropped, got %+v", jobs.URLs())
	}
}

func TestExternalFilterKeepsJobsWhenFollowing(t *testing.T) {
	filter := NewExternal(&ExternalConfig{FollowRedirects: true}, &ExternalDeps{Logger: zap.NewNop()})

	jobs := &listing.Listings{Items: []*listing.Listing{{URL: "u1", CompanySite: true}}}
	jobs, _, err := filter.Apply(context.Background(), jobs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if jobs.Len() != 1 {
		t.Fatalf("expected company-site job to stay in the pipeline")
	}
}

func TestRunExecutesStepsInOrder(t *testing.T) {
	matcher := &stubMatcher{match: map[string]bool{"u2": true}}
	steps := []Filter{
		NewKeyword(&KeywordConfig{Reject: []string{"manager"}}, zap.NewNop()),
		NewPreference(nil, &PreferenceDeps{Logger: zap.NewNop(), Matcher: matcher, Source: &stubSource{}}),
		NewExternal(nil, &ExternalDeps{Logger: zap.NewNop()}),
	}

	jobs := &listing.Listings{Items: []*listing.Listing{
		{URL: "u1", Title: "Engineering Manager"},
		{URL: "u2", Title: "Go Developer"},
	}}

	jobs, err := Run(context.Background(), zap.NewNop(), steps, jobs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if jobs.Len() != 1 || jobs.Items[0].URL != "u2" {
		t.Fatalf("unexpected pipeline result: %+v", jobs.URLs())
	}
	if matcher.called != 1 {
		t.Fatalf("expected matcher to see only the job surviving earlier steps, saw %d", matcher.called)
	}
}

func TestDisableByName(t *testing.T) {
	steps := []Filter{
		NewKeyword(&KeywordConfig{Reject: []string{"x"}}, zap.NewNop()),
		NewPreference(nil, &PreferenceDeps{Logger: zap.NewNop(), Matcher: &stubMatcher{}, Source: &stubSource{}}),
	}

	DisableByName(steps, "preference", "dry run")

	statuses := Describe(steps)
	for _, status := range statuses {
		if status.Name == "preference" && status.Enabled {
			t.Fatalf("expected preference filter to be disabled")
		}
	}
}
