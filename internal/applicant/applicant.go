// Package applicant walks the application form of a single job: it clicks
// apply, answers the chatbot's questions with AI or configured defaults,
// and decides the outcome.
package applicant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/PhoenixMystique/alice-jobseeker/internal/ai"
	"github.com/PhoenixMystique/alice-jobseeker/internal/answers"
	"github.com/PhoenixMystique/alice-jobseeker/internal/journal"
	"github.com/PhoenixMystique/alice-jobseeker/internal/listing"
	"github.com/PhoenixMystique/alice-jobseeker/internal/utils"
)

// Outcome statuses, matching the tracker's vocabulary.
const (
	StatusApplied = "applied"
	StatusSkipped = "skipped"
	StatusFailed  = "failed"
)

const (
	defaultMaxErrorsPerJob = 2
	defaultMaxRounds       = 10
	defaultMaxQuestions    = 15
	defaultInteractionWait = 2 * time.Second
	defaultConsentAttempts = 3
)

// Page is the slice of browser session behavior the application flow needs.
type Page interface {
	Navigate(ctx context.Context, url string) error
	DismissConsent(ctx context.Context) (bool, error)
	JobDetails(ctx context.Context, known *listing.Listing) (*listing.Listing, error)
	ClickCompanySite(ctx context.Context) (string, error)
	ClickApply(ctx context.Context) (bool, error)
	PendingQuestion(ctx context.Context) (*listing.Question, error)
	AnswerText(ctx context.Context, answer string, dateOfBirth bool) error
	ChooseOption(ctx context.Context, index int) error
	SubmitAnswer(ctx context.Context) error
	ApplySucceeded(ctx context.Context) (bool, error)
}

// Config bounds a single application attempt.
type Config struct {
	MaxErrorsPerJob int           `mapstructure:"max-errors-per-job"`
	MaxRounds       int           `mapstructure:"max-rounds"`
	MaxQuestions    int           `mapstructure:"max-questions"`
	InteractionWait time.Duration `mapstructure:"interaction-wait"`
	FollowExternal  bool          `mapstructure:"follow-external"`
}

func (c *Config) maxErrorsPerJob() int {
	if c == nil || c.MaxErrorsPerJob <= 0 {
		return defaultMaxErrorsPerJob
	}
	return c.MaxErrorsPerJob
}

func (c *Config) maxRounds() int {
	if c == nil || c.MaxRounds <= 0 {
		return defaultMaxRounds
	}
	return c.MaxRounds
}

func (c *Config) maxQuestions() int {
	if c == nil || c.MaxQuestions <= 0 {
		return defaultMaxQuestions
	}
	return c.MaxQuestions
}

func (c *Config) interactionWait() time.Duration {
	if c == nil || c.InteractionWait <= 0 {
		return defaultInteractionWait
	}
	return c.InteractionWait
}

func (c *Config) followExternal() bool {
	return c != nil && c.FollowExternal
}

// Outcome is the result of processing one job.
type Outcome struct {
	Status    string
	Method    string
	Reason    string
	Detail    string
	Questions int
}

// Applicant drives application forms. The answerer may be nil, in which
// case every question falls back to the configured defaults.
type Applicant struct {
	cfg      *Config
	answerer ai.Answerer
	defaults *answers.Defaults
	journal  *journal.Journal
	logger   *zap.Logger
}

func New(cfg *Config, answerer ai.Answerer, defaults *answers.Defaults, jrnl *journal.Journal, logger *zap.Logger) *Applicant {
	return &Applicant{
		cfg:      cfg,
		answerer: answerer,
		defaults: defaults,
		journal:  jrnl,
		logger:   logger,
	}
}

// Process applies to a single job and returns its outcome. The returned
// error is reserved for infrastructure failures; application-level
// failures land in the outcome as status "failed".
func (a *Applicant) Process(ctx context.Context, page Page, job *listing.Listing) (*Outcome, error) {
	logger := a.logger.With(zap.String("job_url", job.URL))

	if err := page.Navigate(ctx, job.URL); err != nil {
		return nil, fmt.Errorf("open job page: %w", err)
	}

	for attempt := 0; attempt < defaultConsentAttempts; attempt++ {
		dismissed, err := page.DismissConsent(ctx)
		if err != nil || !dismissed {
			break
		}
		logger.Debug("dismissed a consent dialog before applying")
		utils.WaitFor(ctx, a.cfg.interactionWait())
	}

	details, err := page.JobDetails(ctx, job)
	if err != nil {
		outcome := &Outcome{
			Status: StatusFailed,
			Reason: "details_unavailable",
			Detail: err.Error(),
		}
		a.recordOutcome(job, outcome)
		return outcome, nil
	}
	*job = *details

	if job.AlreadyApplied {
		logger.Info("already applied to this job, skipping")
		outcome := &Outcome{Status: StatusApplied, Method: "already_applied"}
		a.recordOutcome(job, outcome)
		return outcome, nil
	}

	if job.CompanySite {
		return a.processExternal(ctx, page, job, logger)
	}

	outcome := a.fillForm(ctx, page, job, logger)
	a.recordOutcome(job, outcome)
	return outcome, nil
}

func (a *Applicant) processExternal(ctx context.Context, page Page, job *listing.Listing, logger *zap.Logger) (*Outcome, error) {
	outcome := &Outcome{Status: StatusSkipped, Method: "external_site"}

	if !a.cfg.followExternal() {
		logger.Info("job applies through a company site, skipping")
		a.recordOutcome(job, outcome)
		return outcome, nil
	}

	externalURL, err := page.ClickCompanySite(ctx)
	if err != nil {
		logger.Warn("failed to open company site", zap.Error(err))
		outcome.Detail = err.Error()
		a.recordOutcome(job, outcome)
		return outcome, nil
	}

	logger.Info("opened external application page", zap.String("external_url", externalURL))
	outcome.Method = "external_site_visited"
	outcome.Detail = externalURL
	a.recordOutcome(job, outcome)
	return outcome, nil
}

// fillForm runs the apply click and the question loop.
func (a *Applicant) fillForm(ctx context.Context, page Page, job *listing.Listing, logger *zap.Logger) *Outcome {
	errorCount := 0
	answered := 0

	clicked, err := page.ClickApply(ctx)
	if err != nil {
		logger.Warn("apply click failed", zap.Error(err))
		errorCount++
	}
	if !clicked && err == nil {
		return &Outcome{Status: StatusFailed, Reason: "apply_button_missing"}
	}

	utils.WaitFor(ctx, a.cfg.interactionWait())

	if success, err := page.ApplySucceeded(ctx); err == nil && success {
		logger.Info("applied without any questions")
		return &Outcome{Status: StatusApplied, Method: "direct_apply"}
	}

	for round := 0; round < a.cfg.maxRounds() && answered < a.cfg.maxQuestions(); round++ {
		if ctx.Err() != nil {
			return &Outcome{Status: StatusFailed, Reason: "canceled", Detail: ctx.Err().Error(), Questions: answered}
		}

		question, err := page.PendingQuestion(ctx)
		if err != nil {
			logger.Warn("failed to read pending question", zap.Error(err))
			errorCount++
			if errorCount > a.cfg.maxErrorsPerJob() {
				return &Outcome{
					Status:    StatusFailed,
					Reason:    "too_many_errors",
					Detail:    fmt.Sprintf("encountered %d errors during the application flow", errorCount),
					Questions: answered,
				}
			}
		}

		if question == nil || strings.TrimSpace(question.Text) == "" && len(question.Options) == 0 {
			if success, err := page.ApplySucceeded(ctx); err == nil && success {
				logger.Info("application submitted", zap.Int("questions_answered", answered))
				return &Outcome{Status: StatusApplied, Method: "question_flow", Questions: answered}
			}
			if answered > 0 {
				// The chatbot went quiet after taking answers; treat the
				// application as completed the way the board usually means it.
				logger.Info("question flow finished without an explicit confirmation",
					zap.Int("questions_answered", answered))
				return &Outcome{Status: StatusApplied, Method: "question_flow_completed", Questions: answered}
			}
			utils.WaitFor(ctx, a.cfg.interactionWait())
			continue
		}

		if err := a.answerQuestion(ctx, page, job, question, answered+1, logger); err != nil {
			logger.Warn("failed to answer question",
				zap.String("question", question.Text),
				zap.Error(err),
			)
			errorCount++
		} else {
			answered++
		}

		if errorCount > a.cfg.maxErrorsPerJob() {
			return &Outcome{
				Status:    StatusFailed,
				Reason:    "too_many_errors",
				Detail:    fmt.Sprintf("encountered %d errors during the application flow", errorCount),
				Questions: answered,
			}
		}

		utils.WaitFor(ctx, a.cfg.interactionWait())

		if success, err := page.ApplySucceeded(ctx); err == nil && success {
			logger.Info("application submitted", zap.Int("questions_answered", answered))
			return &Outcome{Status: StatusApplied, Method: "question_flow", Questions: answered}
		}
	}

	if answered > 0 && errorCount <= 1 {
		logger.Info("application flow ended after answering questions, assuming success",
			zap.Int("questions_answered", answered))
		return &Outcome{Status: StatusApplied, Method: "probable_success", Questions: answered}
	}

	return &Outcome{Status: StatusFailed, Reason: "no_success_indicator", Questions: answered}
}

func (a *Applicant) answerQuestion(ctx context.Context, page Page, job *listing.Listing, question *listing.Question, number int, logger *zap.Logger) error {
	var answer string
	var err error

	if question.IsChoice() {
		answer, err = a.answerChoice(ctx, page, question)
	} else {
		answer, err = a.answerText(ctx, page, question)
	}
	if err != nil {
		return err
	}

	if err := page.SubmitAnswer(ctx); err != nil {
		return err
	}

	logger.Info("answered application question",
		zap.String("question", question.Text),
		zap.String("answer", answer),
	)

	if a.journal != nil {
		_ = a.journal.Question(journal.Question{
			URL:     job.URL,
			Title:   job.Title,
			Company: job.Company,
			Kind:    string(question.Kind),
			Text:    question.Text,
			Options: question.Options,
			Answer:  answer,
			Number:  number,
		})
	}
	return nil
}

func (a *Applicant) answerChoice(ctx context.Context, page Page, question *listing.Question) (string, error) {
	index := 0
	if a.answerer != nil {
		chosen, err := a.answerer.Choose(ctx, question.Text, question.Options)
		if err != nil {
			a.logger.Warn("AI option choice failed, using the first option", zap.Error(err))
		} else {
			index = chosen
		}
	}

	if err := page.ChooseOption(ctx, index); err != nil {
		return "", err
	}

	if index < len(question.Options) {
		return question.Options[index], nil
	}
	return fmt.Sprintf("option %d", index+1), nil
}

func (a *Applicant) answerText(ctx context.Context, page Page, question *listing.Question) (string, error) {
	dateOfBirth := isDateOfBirth(question.Text)

	answer := ""
	if dateOfBirth {
		answer = a.defaults.Fallback(question.Text)
	} else if a.answerer != nil {
		generated, err := a.answerer.Answer(ctx, question.Text)
		if err != nil {
			a.logger.Warn("AI answer failed, using the default answer",
				zap.String("question", question.Text),
				zap.Error(err),
			)
		} else {
			answer = generated
		}
	}
	if strings.TrimSpace(answer) == "" {
		answer = a.defaults.Fallback(question.Text)
	}

	if err := page.AnswerText(ctx, answer, dateOfBirth); err != nil {
		return "", err
	}
	return answer, nil
}

func isDateOfBirth(question string) bool {
	lower := strings.ToLower(question)
	return strings.Contains(lower, "date of birth") || strings.Contains(lower, "dob")
}

func (a *Applicant) recordOutcome(job *listing.Listing, outcome *Outcome) {
	if a.journal == nil {
		return
	}

	err := a.journal.Application(journal.Application{
		URL:       job.URL,
		Title:     job.Title,
		Company:   job.Company,
		Status:    outcome.Status,
		Method:    outcome.Method,
		Questions: outcome.Questions,
		Reason:    outcome.Reason,
		Details:   outcome.Detail,
	})
	if err != nil {
		a.logger.Warn("failed to journal application outcome",
			zap.String("job_url", job.URL),
			zap.Error(err),
		)
	}
}
