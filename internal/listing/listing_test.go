package listing

import "testing"

func sample() *Listings {
	return &Listings{Items: []*Listing{
		{URL: "https://example.com/job-listings-a", Title: "Go Developer", Company: "Acme"},
		{URL: "https://example.com/job-listings-b", Title: "Python Developer", Company: "Globex"},
		{URL: "https://example.com/job-listings-c", Title: "SRE", Company: "Acme"},
	}}
}

func TestExcludeByURL(t *testing.T) {
	l := sample()

	excluded := l.Exclude(URLField, []string{"https://example.com/job-listings-b", "https://example.com/missing"})

	if len(excluded) != 1 {
		t.Fatalf("expected 1 excluded, got %d", len(excluded))
	}
	if l.Len() != 2 {
		t.Fatalf("expected 2 left, got %d", l.Len())
	}
	if l.FindByURL("https://example.com/job-listings-b") != nil {
		t.Fatalf("excluded listing still present")
	}
}

func TestExcludeRemovesEveryCompanyMatch(t *testing.T) {
	l := sample()

	excluded := l.Exclude(CompanyField, []string{"Acme"})

	if len(excluded) != 2 {
		t.Fatalf("expected 2 excluded, got %d: %v", len(excluded), excluded)
	}
	if l.Len() != 1 {
		t.Fatalf("expected 1 left, got %d", l.Len())
	}
	if l.Items[0].Company != "Globex" {
		t.Fatalf("expected Globex listing to survive, got %q", l.Items[0].Company)
	}
}

func TestAppendDeduplicates(t *testing.T) {
	l := sample()

	added := l.Append(
		&Listing{URL: "https://example.com/job-listings-a"},
		&Listing{URL: "https://example.com/job-listings-d"},
		&Listing{},
		nil,
	)

	if added != 1 {
		t.Fatalf("expected 1 added, got %d", added)
	}
	if l.Len() != 4 {
		t.Fatalf("expected 4 items, got %d", l.Len())
	}
}

func TestReportByCompanyIncludesAIResults(t *testing.T) {
	l := &Listings{Items: []*Listing{
		{
			URL:     "https://example.com/job-listings-a",
			Title:   "Go Developer",
			Company: "Acme",
			AI:      &Assessment{Match: true, Reason: "Matches tech stack"},
		},
		{
			URL:     "https://example.com/job-listings-b",
			Title:   "Python Developer",
			Company: "Globex",
			AI:      &Assessment{Error: "quota exceeded"},
		},
	}}

	report := l.ReportByCompany()

	acme, ok := report["Acme"]
	if !ok || len(acme) != 1 {
		t.Fatalf("expected single Acme entry, got %v", report)
	}
	if acme[0]["ai_match"] != "true" {
		t.Fatalf("expected ai_match true, got %q", acme[0]["ai_match"])
	}
	if acme[0]["ai_reason"] != "Matches tech stack" {
		t.Fatalf("unexpected ai_reason: %q", acme[0]["ai_reason"])
	}

	globex := report["Globex"]
	if len(globex) != 1 {
		t.Fatalf("expected single Globex entry")
	}
	if globex[0]["ai_error"] != "quota exceeded" {
		t.Fatalf("unexpected ai_error: %q", globex[0]["ai_error"])
	}
	if _, ok := globex[0]["ai_match"]; ok {
		t.Fatalf("did not expect ai_match for error case")
	}
}
