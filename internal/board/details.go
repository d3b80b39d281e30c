package board

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PhoenixMystique/alice-jobseeker/internal/listing"
	"go.uber.org/zap"
)

// jobDetailsJS scrapes the job description page. Selector pairs cover both
// the classic markup (h1.jd-header-title) and the current CSS-module
// variants (h1[class*='jd-header-title']).
const jobDetailsJS = `
() => {
	const text = (sel) => {
		const el = document.querySelector(sel);
		return el ? el.innerText.trim() : '';
	};

	const details = {
		url: window.location.href,
		title: text("h1.jd-header-title") || text("h1[class*='jd-header-title']"),
		company: text("div.jd-header-comp-name a") || text("div[class*='jd-header-comp-name'] a"),
		location: text("span.loc") || text("span[class*='jhc__location'] a"),
		experience: text("span.exp") || text("div[class*='jhc__exp'] span"),
		salary: text("div[class*='jhc__salary'] span"),
		description: text("div.job-desc") || text("section[class*='job-desc']") || text("[class*='job-desc-main']"),
		requirements: '',
		posted: '',
		openings: '',
		applicants: '',
		company_site: document.querySelector("button#company-site-button, button[class*='company-site-button']") !== null,
		already_applied: false,
	};

	const skills = document.querySelector('div.key-skill') || document.querySelector("section[class*='requirements']");
	if (skills) {
		details.requirements = skills.innerText.trim();
	}

	for (const stat of document.querySelectorAll("span[class*='jhc__stat']")) {
		const statText = stat.innerText.toLowerCase();
		if (statText.includes('posted:')) details.posted = statText.replace('posted:', '').trim();
		else if (statText.includes('applicants:')) details.applicants = statText.replace('applicants:', '').trim();
		else if (statText.includes('openings:')) details.openings = statText.replace('openings:', '').trim();
	}

	if (document.querySelector('#already-applied')) {
		details.already_applied = true;
	} else {
		const body = document.body ? document.body.innerText : '';
		if (body.includes('already applied') || body.includes('Already Applied')) {
			details.already_applied = true;
		}
	}

	return details;
}
`

// JobDetails scrapes the currently open job page into a listing record.
// Fields already known from the search results are kept when the page
// yields nothing for them.
func (s *Session) JobDetails(ctx context.Context, known *listing.Listing) (*listing.Listing, error) {
	if splash, err := s.onSplashScreen(ctx); err == nil && splash {
		return nil, fmt.Errorf("job page shows a splash screen instead of content")
	}

	raw, err := s.eval(ctx, jobDetailsJS)
	if err != nil {
		return nil, fmt.Errorf("extract job details: %w", err)
	}

	var scraped listing.Listing
	if err := json.Unmarshal(raw, &scraped); err != nil {
		return nil, fmt.Errorf("decode job details: %w", err)
	}

	if known != nil {
		if strings.TrimSpace(scraped.Title) == "" {
			scraped.Title = known.Title
		}
		if strings.TrimSpace(scraped.Company) == "" {
			scraped.Company = known.Company
		}
		if strings.TrimSpace(scraped.Location) == "" {
			scraped.Location = known.Location
		}
		scraped.ID = known.ID
		if strings.TrimSpace(scraped.URL) == "" {
			scraped.URL = known.URL
		}
		scraped.AI = known.AI
	}

	s.logger.Debug("extracted job details",
		zap.String("url", scraped.URL),
		zap.String("title", scraped.Title),
		zap.Bool("company_site", scraped.CompanySite),
		zap.Bool("already_applied", scraped.AlreadyApplied),
	)

	return &scraped, nil
}

// ClickCompanySite follows the "Apply on company site" button and reports
// the external URL it landed on.
func (s *Session) ClickCompanySite(ctx context.Context) (string, error) {
	const js = `
	() => {
		const button = document.querySelector("button#company-site-button, button[class*='company-site-button']");
		if (!button || button.offsetParent === null) return false;
		button.click();
		return true;
	}
	`
	raw, err := s.eval(ctx, js)
	if err != nil {
		return "", fmt.Errorf("click company site button: %w", err)
	}

	var clicked bool
	if err := json.Unmarshal(raw, &clicked); err != nil {
		return "", err
	}
	if !clicked {
		return "", fmt.Errorf("company site button not found")
	}

	if err := s.page.Context(ctx).Timeout(s.cfg.navigationTimeout()).WaitLoad(); err != nil {
		s.logger.Debug("external page load wait ended early", zap.Error(err))
	}

	return s.CurrentURL(ctx)
}
