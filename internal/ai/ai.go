package ai

import (
	"context"

	"github.com/PhoenixMystique/alice-jobseeker/internal/listing"
)

// FitAssessment is the result of matching a listing against the user's
// job preferences.
type FitAssessment struct {
	Match  bool
	Reason string
	Raw    string
}

// Matcher decides whether a listing satisfies the configured preferences.
type Matcher interface {
	Evaluate(ctx context.Context, job *listing.Listing) (*FitAssessment, error)
}

// Answerer produces responses for application-form questions.
type Answerer interface {
	// Answer returns a short free-text answer for the question.
	Answer(ctx context.Context, question string) (string, error)
	// Choose returns the zero-based index of the option to select.
	Choose(ctx context.Context, question string, options []string) (int, error)
}
