package board

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PhoenixMystique/alice-jobseeker/internal/listing"
	"go.uber.org/zap"
)

// extractLinksJS walks the search results page through a chain of selectors,
// from the card markup the board currently renders down to a raw scan of
// every anchor. Only links pointing at job listing pages are kept.
const extractLinksJS = `
() => {
	const seen = new Set();
	const results = [];

	const add = (card, link) => {
		const url = link.href || '';
		if (!url || !url.includes('/job-listings') || seen.has(url)) return;
		seen.add(url);
		const root = card || link.closest('div[data-job-id], article') || link;
		const pick = (sel) => {
			const el = root.querySelector(sel);
			return el ? el.innerText.trim() : '';
		};
		results.push({
			url,
			id: (card && card.getAttribute) ? (card.getAttribute('data-job-id') || '') : '',
			title: pick('.title, .jobTitle, a.title') || link.innerText.trim(),
			company: pick('.comp-name, .companyName, .subTitle'),
			location: pick('.loc, .location, .locWdth'),
		});
	};

	const cards = document.querySelectorAll('div[data-job-id]');
	for (const card of cards) {
		for (const link of card.querySelectorAll('a')) add(card, link);
	}
	if (results.length) return results;

	for (const selector of ['article.jobTuple', '.jobTitle', '.title', "a[href*='/job-listings']"]) {
		const elements = document.querySelectorAll(selector);
		for (const el of elements) {
			if (el.tagName === 'A') {
				add(null, el);
				continue;
			}
			const parentLink = el.closest('a');
			if (parentLink) {
				add(null, parentLink);
				continue;
			}
			for (const link of el.querySelectorAll('a')) add(el, link);
		}
		if (results.length) break;
	}
	if (results.length) return results;

	for (const link of document.querySelectorAll('a')) add(null, link);
	return results;
}
`

const loginDetectJS = `
() => {
	const nodes = document.evaluate("//*[contains(text(), 'Login')]", document, null, XPathResult.ORDERED_NODE_SNAPSHOT_TYPE, null);
	return nodes.snapshotLength > 0;
}
`

type cardData struct {
	URL      string `json:"url"`
	ID       string `json:"id"`
	Title    string `json:"title"`
	Company  string `json:"company"`
	Location string `json:"location"`
}

// ExtractListings pulls job links off the current search results page.
func (s *Session) ExtractListings(ctx context.Context) (*listing.Listings, error) {
	if splash, err := s.onSplashScreen(ctx); err == nil && splash {
		s.logger.Info("splash screen detected, refreshing page")
		if err := s.Refresh(ctx); err != nil {
			return nil, err
		}
	}

	raw, err := s.eval(ctx, extractLinksJS)
	if err != nil {
		return nil, fmt.Errorf("extract job links: %w", err)
	}

	var cards []cardData
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &cards); err != nil {
			return nil, fmt.Errorf("decode job links: %w", err)
		}
	}

	found := &listing.Listings{}
	for _, card := range cards {
		if strings.TrimSpace(card.URL) == "" {
			continue
		}
		found.Items = append(found.Items, &listing.Listing{
			URL:      card.URL,
			ID:       card.ID,
			Title:    card.Title,
			Company:  card.Company,
			Location: card.Location,
		})
	}

	if found.Len() == 0 {
		if loggedOut, err := s.loginRequired(ctx); err == nil && loggedOut {
			s.logger.Warn("login button detected, you may need to log in first")
		}
	}

	s.logger.Debug("extracted job links", zap.Int("count", found.Len()))
	return found, nil
}

func (s *Session) loginRequired(ctx context.Context) (bool, error) {
	raw, err := s.eval(ctx, loginDetectJS)
	if err != nil {
		return false, err
	}
	var found bool
	if err := json.Unmarshal(raw, &found); err != nil {
		return false, err
	}
	return found, nil
}

// LoadMore scrolls to the bottom and clicks any visible "Show More" style
// button to trigger lazy loading. Returns true when a button was clicked.
func (s *Session) LoadMore(ctx context.Context) (bool, error) {
	const js = `
	() => {
		window.scrollTo(0, document.body.scrollHeight);
		const labels = ['Show More', 'View More', 'Load More', 'See More', 'More Jobs'];
		for (const label of labels) {
			const candidates = [...document.querySelectorAll('button'), ...document.querySelectorAll('a')];
			for (const el of candidates) {
				if (el.innerText.includes(label) && el.offsetParent !== null) {
					el.scrollIntoView({block: 'center'});
					el.click();
					return true;
				}
			}
		}
		return false;
	}
	`
	raw, err := s.eval(ctx, js)
	if err != nil {
		return false, fmt.Errorf("load more results: %w", err)
	}
	var clicked bool
	if err := json.Unmarshal(raw, &clicked); err != nil {
		return false, err
	}
	return clicked, nil
}
