package applicant

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/PhoenixMystique/alice-jobseeker/internal/answers"
	"github.com/PhoenixMystique/alice-jobseeker/internal/listing"
)

// fakePage scripts the browser side of an application flow. Questions are
// served in order; success flips to true once all of them are answered.
type fakePage struct {
	details        *listing.Listing
	questions      []*listing.Question
	successAfter   int
	applyClickable bool

	answeredText    []string
	chosenOptions   []int
	submitted       int
	navigated       []string
	consentAsked    int
	questionErr     error
	alwaysSucceeded bool
}

func (p *fakePage) Navigate(_ context.Context, url string) error {
	p.navigated = append(p.navigated, url)
	return nil
}

func (p *fakePage) DismissConsent(context.Context) (bool, error) {
	p.consentAsked++
	return false, nil
}

func (p *fakePage) JobDetails(_ context.Context, known *listing.Listing) (*listing.Listing, error) {
	if p.details != nil {
		return p.details, nil
	}
	return known, nil
}

func (p *fakePage) ClickCompanySite(context.Context) (string, error) {
	return "https://careers.example.com/apply", nil
}

func (p *fakePage) ClickApply(context.Context) (bool, error) {
	return p.applyClickable, nil
}

func (p *fakePage) PendingQuestion(context.Context) (*listing.Question, error) {
	if p.questionErr != nil {
		return nil, p.questionErr
	}
	if len(p.questions) == 0 {
		return nil, nil
	}
	question := p.questions[0]
	p.questions = p.questions[1:]
	return question, nil
}

func (p *fakePage) AnswerText(_ context.Context, answer string, _ bool) error {
	p.answeredText = append(p.answeredText, answer)
	return nil
}

func (p *fakePage) ChooseOption(_ context.Context, index int) error {
	p.chosenOptions = append(p.chosenOptions, index)
	return nil
}

func (p *fakePage) SubmitAnswer(context.Context) error {
	p.submitted++
	return nil
}

func (p *fakePage) ApplySucceeded(context.Context) (bool, error) {
	if p.alwaysSucceeded {
		return true, nil
	}
	return p.successAfter > 0 && p.submitted >= p.successAfter, nil
}

type fakeAnswerer struct {
	answer    string
	choice    int
	answerErr error
}

func (a *fakeAnswerer) Answer(context.Context, string) (string, error) {
	if a.answerErr != nil {
		return "", a.answerErr
	}
	return a.answer, nil
}

func (a *fakeAnswerer) Choose(context.Context, string, []string) (int, error) {
	return a.choice, nil
}

func testConfig() *Config {
	return &Config{InteractionWait: time.Millisecond}
}

func testDefaults() *answers.Defaults {
	return &answers.Defaults{
		NoticePeriod:    "30 days",
		CurrentLocation: "Berlin",
	}
}

func testJob() *listing.Listing {
	return &listing.Listing{URL: "https://example.com/job-listings/go-dev", Title: "Go Developer"}
}

func TestProcessDirectApply(t *testing.T) {
	page := &fakePage{applyClickable: true, alwaysSucceeded: true}
	applicant := New(testConfig(), &fakeAnswerer{answer: "Yes"}, testDefaults(), nil, zap.NewNop())

	outcome, err := applicant.Process(context.Background(), page, testJob())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if outcome.Status != StatusApplied || outcome.Method != "direct_apply" {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
}

func TestProcessAnswersQuestions(t *testing.T) {
	page := &fakePage{
		applyClickable: true,
		successAfter:   2,
		questions: []*listing.Question{
			{Kind: listing.QuestionText, Text: "What is your notice period?"},
			{Kind: listing.QuestionChoice, Text: "Willing to relocate?", Options: []string{"No", "Yes"}},
		},
	}
	applicant := New(testConfig(), &fakeAnswerer{answer: "30 days", choice: 1}, testDefaults(), nil, zap.NewNop())

	outcome, err := applicant.Process(context.Background(), page, testJob())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if outcome.Status != StatusApplied {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
	if outcome.Questions != 2 {
		t.Fatalf("expected 2 questions answered, got %d", outcome.Questions)
	}
	if len(page.answeredText) != 1 || page.answeredText[0] != "30 days" {
		t.Fatalf("unexpected text answers: %v", page.answeredText)
	}
	if len(page.chosenOptions) != 1 || page.chosenOptions[0] != 1 {
		t.Fatalf("unexpected option choices: %v", page.chosenOptions)
	}
}

func TestProcessFallsBackToDefaultsWhenAIFails(t *testing.T) {
	page := &fakePage{
		applyClickable: true,
		successAfter:   1,
		questions: []*listing.Question{
			{Kind: listing.QuestionText, Text: "What is your current location?"},
		},
	}
	answerer := &fakeAnswerer{answerErr: errors.New("quota exceeded")}
	applicant := New(testConfig(), answerer, testDefaults(), nil, zap.NewNop())

	outcome, err := applicant.Process(context.Background(), page, testJob())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if outcome.Status != StatusApplied {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
	if len(page.answeredText) != 1 || page.answeredText[0] != "Berlin" {
		t.Fatalf("expected default answer, got %v", page.answeredText)
	}
}

func TestProcessSkipsAlreadyApplied(t *testing.T) {
	page := &fakePage{
		details: &listing.Listing{
			URL:            "https://example.com/job-listings/go-dev",
			AlreadyApplied: true,
		},
	}
	applicant := New(testConfig(), nil, testDefaults(), nil, zap.NewNop())

	outcome, err := applicant.Process(context.Background(), page, testJob())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if outcome.Method != "already_applied" {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
	if len(page.answeredText) != 0 && page.submitted != 0 {
		t.Fatalf("expected no form interaction for an already applied job")
	}
}

func TestProcessSkipsCompanySiteJobs(t *testing.T) {
	page := &fakePage{
		details: &listing.Listing{
			URL:         "https://example.com/job-listings/go-dev",
			CompanySite: true,
		},
	}
	applicant := New(testConfig(), nil, testDefaults(), nil, zap.NewNop())

	outcome, err := applicant.Process(context.Background(), page, testJob())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if outcome.Status != StatusSkipped || outcome.Method != "external_site" {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
}

func TestProcessFollowsCompanySiteWhenConfigured(t *testing.T) {
	page := &fakePage{
		details: &listing.Listing{
			URL:         "https://example.com/job-listings/go-dev",
			CompanySite: true,
		},
	}
	cfg := testConfig()
	cfg.FollowExternal = true
	applicant := New(cfg, nil, testDefaults(), nil, zap.NewNop())

	outcome, err := applicant.Process(context.Background(), page, testJob())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if outcome.Method != "external_site_visited" {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
	if outcome.Detail != "https://careers.example.com/apply" {
		t.Fatalf("expected external url in outcome, got %q", outcome.Detail)
	}
}

func TestProcessFailsWhenApplyButtonMissing(t *testing.T) {
	page := &fakePage{applyClickable: false}
	applicant := New(testConfig(), nil, testDefaults(), nil, zap.NewNop())

	outcome, err := applicant.Process(context.Background(), page, testJob())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if outcome.Status != StatusFailed || outcome.Reason != "apply_button_missing" {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
}

func TestProcessAbortsAfterTooManyErrors(t *testing.T) {
	page := &fakePage{
		applyClickable: true,
		questionErr:    errors.New("page exploded"),
	}
	applicant := New(testConfig(), nil, testDefaults(), nil, zap.NewNop())

	outcome, err := applicant.Process(context.Background(), page, testJob())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if outcome.Status != StatusFailed || outcome.Reason != "too_many_errors" {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
}
