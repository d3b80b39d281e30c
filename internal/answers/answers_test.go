package answers

import "testing"

func TestFallbackRouting(t *testing.T) {
	t.Parallel()

	d := &Defaults{
		NoticePeriod:       "60 days",
		ExpectedSalary:     "18 LPA",
		CurrentLocation:    "Noida",
		PreferredLocations: []string{"Remote", "Bangalore"},
		ReasonForChange:    "Growth opportunities",
		Experience:         "3.5 years",
		Skills:             "Go, Kubernetes",
		DateOfBirth:        "06/12/2004",
		Email:              "applicant@example.com",
		Generic:            "Absolutely",
	}

	tests := []struct {
		name     string
		question string
		expect   string
	}{
		{"notice period", "What is your notice period?", "60 days"},
		{"joining", "When can you join us?", "60 days"},
		{"salary", "What is your expected CTC?", "18 LPA"},
		{"relocation always yes", "Are you willing to relocate to Pune?", "Yes"},
		{"preferred location", "What is your preferred location?", "Remote"},
		{"current location", "Which city do you live in?", "Noida"},
		{"shift", "Are you comfortable with night shift?", "Flexible"},
		{"reason", "Why do you want to change your job?", "Growth opportunities"},
		{"dob", "Please provide your DOB", "06/12/2004"},
		{"experience", "How many years of experience do you have?", "3.5 years"},
		{"skills", "List your primary technologies", "Go, Kubernetes"},
		{"email", "What is your email address?", "applicant@example.com"},
		{"unknown", "Do you own a laptop?", "Absolutely"},
		{"empty", "   ", "Absolutely"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := d.Fallback(tt.question); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}

func TestFallbackMissingDefaults(t *testing.T) {
	t.Parallel()

	d := &Defaults{}

	if got := d.Fallback("What is your notice period?"); got != "Yes" {
		t.Fatalf("expected generic fallback, got %q", got)
	}

	if got := d.Fallback("What is your preferred location?"); got != "Remote" {
		t.Fatalf("expected Remote, got %q", got)
	}

	var nilDefaults *Defaults
	if got := nilDefaults.Fallback("anything"); got != "Yes" {
		t.Fatalf("expected built-in fallback for nil defaults, got %q", got)
	}
}
