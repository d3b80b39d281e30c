package gemini

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/PhoenixMystique/alice-jobseeker/internal/listing"
	"go.uber.org/zap"
)

type stubGenerator struct {
	response   string
	err        error
	lastPrompt string
	lastSystem string
}

func (s *stubGenerator) GenerateContent(_ context.Context, prompt, system string) (string, error) {
	s.lastPrompt = prompt
	s.lastSystem = system
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func (s *stubGenerator) Model() string {
	return "stub-model"
}

func TestMatcherEvaluate(t *testing.T) {
	stub := &stubGenerator{response: "Yes, the role matches your Go backend preferences."}
	matcher := NewMatcher(stub, "Remote Go backend roles", zap.NewNop(), 0)

	job := &listing.Listing{
		URL:     "https://example.com/job-listings/go-dev",
		Title:   "Go Developer",
		Company: "Acme",
	}

	assessment, err := matcher.Evaluate(context.Background(), job)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !assessment.Match {
		t.Fatalf("expected match to be true")
	}

	if assessment.Reason == "" {
		t.Fatalf("expected reason to be populated")
	}

	if !strings.Contains(stub.lastPrompt, "Remote Go backend preferences") && !strings.Contains(stub.lastPrompt, "Remote Go backend roles") {
		t.Fatalf("expected preferences in prompt, got: %s", stub.lastPrompt)
	}

	if !strings.Contains(stub.lastPrompt, "Go Developer") {
		t.Fatalf("expected job title in prompt, got: %s", stub.lastPrompt)
	}

	if stub.lastSystem != matcherSystemInstruction {
		t.Fatalf("unexpected system instruction: %s", stub.lastSystem)
	}
}

func TestMatcherEvaluateNegative(t *testing.T) {
	stub := &stubGenerator{response: "No, this is an on-site sales position."}
	matcher := NewMatcher(stub, "Remote Go backend roles", zap.NewNop(), 0)

	assessment, err := matcher.Evaluate(context.Background(), &listing.Listing{URL: "https://example.com/job-listings/sales"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if assessment.Match {
		t.Fatalf("expected match to be false")
	}
}

func TestMatcherEvaluatePropagatesGeneratorError(t *testing.T) {
	stub := &stubGenerator{err: errors.New("quota exceeded")}
	matcher := NewMatcher(stub, "anything", zap.NewNop(), 0)

	if _, err := matcher.Evaluate(context.Background(), &listing.Listing{URL: "u"}); err == nil {
		t.Fatalf("expected error from generator")
	}
}

func TestMatcherEvaluateRequiresPreferences(t *testing.T) {
	matcher := NewMatcher(&stubGenerator{response: "yes"}, "   ", zap.NewNop(), 0)

	if _, err := matcher.Evaluate(context.Background(), &listing.Listing{URL: "u"}); err == nil {
		t.Fatalf("expected error for empty preferences")
	}
}

func TestParseDecision(t *testing.T) {
	cases := []struct {
		name     string
		raw      string
		expected bool
	}{
		{"leading yes", "Yes, good match.", true},
		{"embedded yes", "I would say yes because the stack overlaps.", true},
		{"leading no", "No, the location does not fit.", false},
		{"garbage", "```maybe```", false},
		{"empty", "   ", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := parseDecision(tc.raw); got != tc.expected {
				t.Fatalf("parseDecision(%q) = %v, expected %v", tc.raw, got, tc.expected)
			}
		})
	}
}
