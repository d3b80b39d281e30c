package listing

import (
	"encoding/json"
	"fmt"
	"os"
)

const (
	URLField     = "URL"
	CompanyField = "Company"
)

// Listings is a mutable collection of job listings discovered on a board.
type Listings struct {
	Items []*Listing
}

// Listing is a single job posting. Detail fields are empty until the job
// page itself has been visited.
type Listing struct {
	URL        string `json:"url,omitempty"`
	ID         string `json:"id,omitempty"`
	Title      string `json:"title,omitempty"`
	Company    string `json:"company,omitempty"`
	Location   string `json:"location,omitempty"`
	Experience string `json:"experience,omitempty"`
	Salary     string `json:"salary,omitempty"`
	PostedAt   string `json:"posted,omitempty"`
	Openings   string `json:"openings,omitempty"`
	Applicants string `json:"applicants,omitempty"`

	Description  string `json:"description,omitempty"`
	Requirements string `json:"requirements,omitempty"`

	CompanySite    bool `json:"company_site,omitempty"`
	AlreadyApplied bool `json:"already_applied,omitempty"`

	AI *Assessment `json:"ai,omitempty"`
}

// Assessment holds the preference-match result attached to a listing.
type Assessment struct {
	Match  bool   `json:"match"`
	Reason string `json:"reason,omitempty"`
	Raw    string `json:"raw,omitempty"`
	Error  string `json:"error,omitempty"`
}

func (l *Listings) Len() int {
	return len(l.Items)
}

func (l *Listings) FindByURL(url string) *Listing {
	for _, item := range l.Items {
		if item.URL == url {
			return item
		}
	}
	return nil
}

func (li *Listing) GetStringField(name string) string {
	switch name {
	case URLField:
		return li.URL
	case CompanyField:
		return li.Company
	default:
		return ""
	}
}

// Exclude removes every listing whose named field matches any of the
// targets and returns the URLs of the removed listings. Companies list the
// same vacancy many times, so a single target may remove several listings.
func (l *Listings) Exclude(name string, targets []string) []string {
	drop := make(map[string]bool, len(targets))
	for _, target := range targets {
		drop[target] = true
	}

	var excluded []string
	kept := l.Items[:0]
	for _, item := range l.Items {
		if drop[item.GetStringField(name)] {
			excluded = append(excluded, item.URL)
			continue
		}
		kept = append(kept, item)
	}
	l.Items = kept
	return excluded
}

// Append adds listings not already present, deduplicating by URL.
func (l *Listings) Append(items ...*Listing) int {
	added := 0
	for _, item := range items {
		if item == nil || item.URL == "" {
			continue
		}
		if l.FindByURL(item.URL) != nil {
			continue
		}
		l.Items = append(l.Items, item)
		added++
	}
	return added
}

// ReportByCompany groups listings for a human-readable report.
func (l *Listings) ReportByCompany() map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, item := range l.Items {
		key := item.Company
		if key == "" {
			key = "unknown"
		}
		entry := map[string]string{
			"title":      item.Title,
			"url":        item.URL,
			"location":   item.Location,
			"experience": item.Experience,
			"salary":     item.Salary,
		}
		if item.AI != nil {
			if item.AI.Error != "" {
				entry["ai_error"] = item.AI.Error
			} else {
				entry["ai_match"] = fmt.Sprintf("%t", item.AI.Match)
				entry["ai_reason"] = item.AI.Reason
			}
		}
		report[key] = append(report[key], entry)
	}
	return report
}

func (l *Listings) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "listings_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(l); err != nil {
		return "", err
	}
	return file.Name(), nil
}

func (l *Listings) URLs() []string {
	urls := make([]string, 0, len(l.Items))
	for _, item := range l.Items {
		urls = append(urls, item.URL)
	}
	return urls
}
