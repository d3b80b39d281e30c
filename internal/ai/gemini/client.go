package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PhoenixMystique/alice-jobseeker/internal/utils"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

const defaultModel = "gemini-1.5-flash"

// GenerationParams mirror the model tuning knobs exposed in the
// configuration file.
type GenerationParams struct {
	Temperature     float64 `mapstructure:"temperature"`
	TopP            float64 `mapstructure:"top-p"`
	TopK            float64 `mapstructure:"top-k"`
	MaxOutputTokens int32   `mapstructure:"max-output-tokens"`
}

// Generator wraps the Google GenAI client to provide simple prompt-based interactions.
type Generator struct {
	client     *genai.Client
	modelName  string
	params     GenerationParams
	maxRetries int
	logger     *zap.Logger
}

// NewGenerator creates a new Generator configured for the Gemini API backend.
func NewGenerator(ctx context.Context, apiKey, model string, params GenerationParams, maxRetries int, logger *zap.Logger) (*Generator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}

	if maxRetries < 0 {
		maxRetries = 0
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Generator{
		client:     client,
		modelName:  model,
		params:     params,
		maxRetries: maxRetries,
		logger:     logger,
	}, nil
}

// GenerateContent sends the prompt to Gemini under the provided system
// instruction and returns the first textual response. Transient failures
// are retried with exponential backoff up to the configured limit.
func (g *Generator) GenerateContent(ctx context.Context, prompt, system string) (string, error) {
	if g == nil || g.client == nil {
		return "", errors.New("gemini generator is not initialized")
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	cfg := g.contentConfig(system)

	var lastErr error
	for attempt := 0; attempt <= g.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt-1)) * time.Second
			g.logger.Debug("retrying gemini request",
				zap.Int("attempt", attempt),
				zap.Duration("backoff", backoff),
				zap.Error(lastErr),
			)
			if err := utils.WaitFor(ctx, backoff); err != nil {
				return "", err
			}
		}

		resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), cfg)
		if err != nil {
			lastErr = fmt.Errorf("generate content: %w", err)
			continue
		}

		output := collectText(resp)
		if output == "" {
			lastErr = errors.New("gemini api returned empty response")
			continue
		}

		return output, nil
	}

	return "", lastErr
}

func (g *Generator) contentConfig(system string) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}

	if g.params.Temperature > 0 {
		cfg.Temperature = f32(g.params.Temperature)
	}
	if g.params.TopP > 0 {
		cfg.TopP = f32(g.params.TopP)
	}
	if g.params.TopK > 0 {
		cfg.TopK = f32(g.params.TopK)
	}
	if g.params.MaxOutputTokens > 0 {
		cfg.MaxOutputTokens = g.params.MaxOutputTokens
	}

	if system = strings.TrimSpace(system); system != "" {
		cfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		}
	}

	return cfg
}

func collectText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	return strings.TrimSpace(builder.String())
}

func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.modelName
}

func f32(v float64) *float32 {
	f := float32(v)
	return &f
}
