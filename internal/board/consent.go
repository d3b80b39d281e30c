package board

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

// dismissConsentJS handles the privacy and cookie dialogs the board throws
// up: chatbot "Yes" chips, plain Yes/Agree/Accept/Allow buttons, cookie
// banner buttons, and finally any visible button while a splash screen is
// covering the page. Returns the kind of element it clicked, or "".
const dismissConsentJS = `
() => {
	const visible = (el) => el && el.offsetParent !== null;
	const click = (el) => { try { el.click(); return true; } catch (e) { return false; } };

	const chips = document.querySelectorAll("div[class*='chatbot_Chip'] span, div.chips span");
	for (const span of chips) {
		if (span.innerText.trim() !== 'Yes') continue;
		if (click(span.parentElement || span) || click(span)) return 'chip';
	}

	for (const button of document.querySelectorAll('button')) {
		const text = button.innerText;
		if (/Yes|Agree|Accept|Allow/.test(text) && visible(button)) {
			if (click(button)) return 'privacy';
		}
	}

	for (const button of document.querySelectorAll("[class*='cookie']")) {
		const cls = button.className || '';
		if ((cls.includes('btn') || cls.includes('button')) && click(button)) return 'cookie';
	}

	if (document.querySelector("div[class*='splashscreen-container']")) {
		for (const button of document.querySelectorAll('button')) {
			if (visible(button) && click(button)) return 'splash';
		}
	}

	const chipSpans = document.querySelectorAll("div[class*='chip'] span");
	for (const span of chipSpans) {
		if (!/Yes|Accept/.test(span.innerText)) continue;
		if (click(span.parentElement || span) || click(span)) return 'chip-fallback';
	}

	return '';
}
`

// DismissConsent clicks away privacy popups if any are present. Returns
// true when something was dismissed.
func (s *Session) DismissConsent(ctx context.Context) (bool, error) {
	raw, err := s.eval(ctx, dismissConsentJS)
	if err != nil {
		return false, fmt.Errorf("dismiss consent dialog: %w", err)
	}

	var kind string
	if err := json.Unmarshal(raw, &kind); err != nil {
		return false, err
	}
	if kind == "" {
		return false, nil
	}

	s.logger.Debug("dismissed consent dialog", zap.String("kind", kind))
	return true, nil
}

func (s *Session) onSplashScreen(ctx context.Context) (bool, error) {
	raw, err := s.eval(ctx, `() => document.querySelector("div[class*='splashscreen-container']") !== null`)
	if err != nil {
		return false, err
	}
	var splash bool
	if err := json.Unmarshal(raw, &splash); err != nil {
		return false, err
	}
	return splash, nil
}
