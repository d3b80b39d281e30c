package gemini

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/PhoenixMystique/alice-jobseeker/internal/ai"
	"github.com/PhoenixMystique/alice-jobseeker/internal/listing"
	"github.com/PhoenixMystique/alice-jobseeker/internal/utils"
	"go.uber.org/zap"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt, system string) (string, error)
}

//go:embed match_prompt.md
var matchPromptTemplate string

const defaultMaxLogLength = 200

const matcherSystemInstruction = "You are a job preference matching assistant. " +
	"Compare the job details against the user's preferences and respond with 'yes' " +
	"if the job is a good match or 'no' if it is not, followed by a brief one-sentence explanation."

// Matcher decides whether a job listing fits the configured preferences.
type Matcher struct {
	generator   contentGenerator
	preferences string
	logger      *zap.Logger
	maxLogLen   int
}

func NewMatcher(generator contentGenerator, preferences string, logger *zap.Logger, maxLogLength int) *Matcher {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Matcher{
		generator:   generator,
		preferences: preferences,
		logger:      logger,
		maxLogLen:   maxLogLength,
	}
}

func (m *Matcher) Evaluate(ctx context.Context, job *listing.Listing) (*ai.FitAssessment, error) {
	if job == nil {
		return nil, fmt.Errorf("job listing is required")
	}
	if strings.TrimSpace(m.preferences) == "" {
		return nil, fmt.Errorf("job preferences are required")
	}

	prompt := buildMatchPrompt(m.preferences, job)

	m.logger.Debug("gemini preference match request",
		zap.String("job_url", job.URL),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, m.maxLogLen)),
	)

	raw, err := m.generator.GenerateContent(ctx, prompt, matcherSystemInstruction)
	if err != nil {
		return nil, err
	}

	m.logger.Debug("gemini preference match response",
		zap.String("job_url", job.URL),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, m.maxLogLen)),
	)

	return &ai.FitAssessment{
		Match:  parseDecision(raw),
		Reason: strings.TrimSpace(raw),
		Raw:    raw,
	}, nil
}

func buildMatchPrompt(preferences string, job *listing.Listing) string {
	template := matchPromptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Preferences:\n{{PREFERENCES}}\n\nJob: {{TITLE}} at {{COMPANY}}\n\n{{DESCRIPTION}}"
	}

	replacements := []struct{ placeholder, value string }{
		{"{{PREFERENCES}}", preferences},
		{"{{TITLE}}", job.Title},
		{"{{COMPANY}}", job.Company},
		{"{{LOCATION}}", job.Location},
		{"{{EXPERIENCE}}", job.Experience},
		{"{{DESCRIPTION}}", job.Description},
		{"{{REQUIREMENTS}}", job.Requirements},
	}

	prompt := template
	for _, r := range replacements {
		prompt = strings.ReplaceAll(prompt, r.placeholder, r.value)
	}
	return prompt
}

// parseDecision treats a response as positive when it starts with "yes" or
// mentions " yes " anywhere. Anything else, including empty output, is a no.
func parseDecision(raw string) bool {
	lower := strings.ToLower(strings.TrimSpace(raw))
	return strings.HasPrefix(lower, "yes") || strings.Contains(lower, " yes ")
}
