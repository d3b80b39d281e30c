package gemini

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/PhoenixMystique/alice-jobseeker/internal/utils"
	"go.uber.org/zap"
)

//go:embed answer_prompt.md
var answerPromptTemplate string

const answererSystemInstruction = "You are filling a job application for the candidate whose resume is provided. " +
	"Answer questions with minimum 1 word, average 3 words and maximum 5 words. " +
	"When a question lists numbered options, respond with only the number of the best option and nothing else."

// Answerer produces short free-text answers and option choices for
// application form questions, grounded in the candidate's resume.
type Answerer struct {
	generator  contentGenerator
	resumeJSON string
	logger     *zap.Logger
	maxLogLen  int
}

func NewAnswerer(generator contentGenerator, resumeJSON string, logger *zap.Logger, maxLogLength int) *Answerer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Answerer{
		generator:  generator,
		resumeJSON: resumeJSON,
		logger:     logger,
		maxLogLen:  maxLogLength,
	}
}

func (a *Answerer) Answer(ctx context.Context, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", fmt.Errorf("question text is required")
	}

	raw, err := a.generate(ctx, question)
	if err != nil {
		return "", err
	}

	answer := strings.TrimSpace(raw)
	if answer == "" {
		return "", fmt.Errorf("empty answer for question %q", utils.TruncateForLog(question, a.maxLogLen))
	}
	return answer, nil
}

// Choose returns the zero-based index of the best option for a
// multiple-choice question.
func (a *Answerer) Choose(ctx context.Context, question string, options []string) (int, error) {
	if len(options) == 0 {
		return 0, fmt.Errorf("options are required for a choice question")
	}

	var sb strings.Builder
	sb.WriteString(question)
	sb.WriteString("\n\nOptions:\n")
	for i, opt := range options {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, opt)
	}
	sb.WriteString("\nRespond with only the number of the best option.")

	raw, err := a.generate(ctx, sb.String())
	if err != nil {
		return 0, err
	}

	choice, err := parseChoice(raw, len(options))
	if err != nil {
		return 0, err
	}
	return choice, nil
}

func (a *Answerer) generate(ctx context.Context, question string) (string, error) {
	prompt := buildAnswerPrompt(a.resumeJSON, question)

	a.logger.Debug("gemini answer request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("question_preview", utils.TruncateForLog(question, a.maxLogLen)),
	)

	raw, err := a.generator.GenerateContent(ctx, prompt, answererSystemInstruction)
	if err != nil {
		return "", err
	}

	a.logger.Debug("gemini answer response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, a.maxLogLen)),
	)

	return raw, nil
}

func buildAnswerPrompt(resumeJSON, question string) string {
	template := answerPromptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Resume:\n{{RESUME_JSON}}\n\nQuestion:\n{{QUESTION}}"
	}
	prompt := strings.ReplaceAll(template, "{{RESUME_JSON}}", resumeJSON)
	prompt = strings.ReplaceAll(prompt, "{{QUESTION}}", question)
	return prompt
}

// parseChoice extracts the leading option number from a model response and
// converts it to a zero-based index.
func parseChoice(raw string, optionCount int) (int, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.Trim(cleaned, ".`*")

	digits := cleaned
	for i, r := range cleaned {
		if r < '0' || r > '9' {
			digits = cleaned[:i]
			break
		}
	}

	number, err := strconv.Atoi(strings.TrimSpace(digits))
	if err != nil {
		return 0, fmt.Errorf("parse option choice from %q: %w", raw, err)
	}
	if number < 1 || number > optionCount {
		return 0, fmt.Errorf("option choice %d out of range 1..%d", number, optionCount)
	}
	return number - 1, nil
}
