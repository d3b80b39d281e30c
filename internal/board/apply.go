package board

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/PhoenixMystique/alice-jobseeker/internal/listing"
	"go.uber.org/zap"
)

// pendingQuestionJS looks at the application chatbot for an unanswered
// question. Radio button groups become choice questions, everything else a
// free-text one. The last bot message in the chat list is the live question.
const pendingQuestionJS = `
() => {
	const radios = document.querySelectorAll('.ssrc__radio-btn-container');
	if (radios.length > 0) {
		const questionEl = document.querySelector("li[class*='botItem'] div div span");
		const options = [];
		for (const container of radios) {
			const label = container.querySelector('label');
			const input = container.querySelector('input');
			options.push({
				label: label ? label.innerText.trim() : '',
				value: input ? (input.value || '') : '',
			});
		}
		return {
			kind: 'choice',
			text: questionEl ? questionEl.innerText.trim() : '',
			options,
		};
	}

	const chatList = document.querySelector("ul[id*='chatList']");
	if (!chatList) return null;

	const items = chatList.querySelectorAll('li');
	for (let i = items.length - 1; i >= 0; i--) {
		const item = items[i];
		if ((item.className || '').includes('userItem')) continue;
		const span = item.querySelector('span');
		const text = (span ? span.innerText : item.innerText) || '';
		if (text.trim()) {
			return { kind: 'text', text: text.trim(), options: [] };
		}
	}
	return null;
}
`

// ClickApply presses the Apply button on the job page. Returns false when
// no such button is present.
func (s *Session) ClickApply(ctx context.Context) (bool, error) {
	const js = `
	() => {
		const visible = (el) => el && el.offsetParent !== null;
		const nodes = document.evaluate("//*[text()='Apply']", document, null, XPathResult.ORDERED_NODE_SNAPSHOT_TYPE, null);
		for (let i = 0; i < nodes.snapshotLength; i++) {
			const el = nodes.snapshotItem(i);
			if (visible(el)) { el.click(); return true; }
		}
		for (const button of document.querySelectorAll("button[class*='apply-button']")) {
			if (visible(button)) { button.click(); return true; }
		}
		return false;
	}
	`
	raw, err := s.eval(ctx, js)
	if err != nil {
		return false, fmt.Errorf("click apply button: %w", err)
	}
	var clicked bool
	if err := json.Unmarshal(raw, &clicked); err != nil {
		return false, err
	}
	s.logger.Debug("apply button", zap.Bool("clicked", clicked))
	return clicked, nil
}

type pendingQuestion struct {
	Kind    string `json:"kind"`
	Text    string `json:"text"`
	Options []struct {
		Label string `json:"label"`
		Value string `json:"value"`
	} `json:"options"`
}

// PendingQuestion returns the next unanswered form question, or nil when
// the chatbot has nothing left to ask.
func (s *Session) PendingQuestion(ctx context.Context) (*listing.Question, error) {
	raw, err := s.eval(ctx, pendingQuestionJS)
	if err != nil {
		return nil, fmt.Errorf("inspect pending question: %w", err)
	}
	if len(raw) == 0 {
		return nil, nil
	}

	var pending pendingQuestion
	if err := json.Unmarshal(raw, &pending); err != nil {
		return nil, fmt.Errorf("decode pending question: %w", err)
	}

	question := &listing.Question{
		Kind: listing.QuestionKind(pending.Kind),
		Text: pending.Text,
	}
	for _, opt := range pending.Options {
		label := opt.Label
		if label == "" {
			label = opt.Value
		}
		question.Options = append(question.Options, label)
	}

	s.logger.Debug("pending question",
		zap.String("kind", string(question.Kind)),
		zap.String("text", question.Text),
		zap.Int("options", len(question.Options)),
	)
	return question, nil
}

// AnswerText types an answer into the chatbot input field. Date of birth
// questions use the dedicated date input when one is rendered.
func (s *Session) AnswerText(ctx context.Context, answer string, dateOfBirth bool) error {
	const js = `
	(answer, dob) => {
		if (dob) {
			const dobInput = document.querySelector("ul[id*='dob__input-container'] input, ul[id*='dob__input-container']");
			if (dobInput) {
				dobInput.focus();
				dobInput.value = answer;
				dobInput.dispatchEvent(new Event('input', {bubbles: true}));
				return true;
			}
		}
		const selectors = ['div.textArea', "div[class*='textInput']", 'textarea', "input[type='text']"];
		for (const selector of selectors) {
			for (const field of document.querySelectorAll(selector)) {
				if (field.offsetParent === null) continue;
				field.focus();
				if (field.isContentEditable || field.tagName === 'DIV') {
					field.innerText = answer;
				} else {
					field.value = answer;
				}
				field.dispatchEvent(new Event('input', {bubbles: true}));
				return true;
			}
		}
		return false;
	}
	`
	raw, err := s.eval(ctx, js, answer, dateOfBirth)
	if err != nil {
		return fmt.Errorf("fill answer field: %w", err)
	}
	var filled bool
	if err := json.Unmarshal(raw, &filled); err != nil {
		return err
	}
	if !filled {
		return fmt.Errorf("no visible input field for answer")
	}
	return nil
}

// ChooseOption selects the radio button at the given zero-based index.
func (s *Session) ChooseOption(ctx context.Context, index int) error {
	const js = `
	(index) => {
		const radios = document.querySelectorAll('.ssrc__radio-btn-container');
		if (index < 0 || index >= radios.length) return false;
		const input = radios[index].querySelector('input');
		if (!input) return false;
		input.click();
		return true;
	}
	`
	raw, err := s.eval(ctx, js, index)
	if err != nil {
		return fmt.Errorf("select option %d: %w", index, err)
	}
	var selected bool
	if err := json.Unmarshal(raw, &selected); err != nil {
		return err
	}
	if !selected {
		return fmt.Errorf("option %d not present on the page", index)
	}
	return nil
}

// SubmitAnswer clicks the chatbot send button.
func (s *Session) SubmitAnswer(ctx context.Context) error {
	const js = `
	() => {
		const visible = (el) => el && el.offsetParent !== null;
		const selectors = [
			"button[class*='send']",
			"button[class*='submit']",
			"div[class*='sendBtn']",
			"button[class*='btn-primary']",
		];
		for (const selector of selectors) {
			for (const button of document.querySelectorAll(selector)) {
				if (visible(button) && !button.disabled) { button.click(); return true; }
			}
		}
		const nodes = document.evaluate("//button[text()='Send' or text()='Submit' or text()='Save']", document, null, XPathResult.ORDERED_NODE_SNAPSHOT_TYPE, null);
		for (let i = 0; i < nodes.snapshotLength; i++) {
			const el = nodes.snapshotItem(i);
			if (visible(el)) { el.click(); return true; }
		}
		return false;
	}
	`
	raw, err := s.eval(ctx, js)
	if err != nil {
		return fmt.Errorf("click send button: %w", err)
	}
	var clicked bool
	if err := json.Unmarshal(raw, &clicked); err != nil {
		return err
	}
	if !clicked {
		return fmt.Errorf("send button not found")
	}
	return nil
}

// ApplySucceeded checks the page for any of the success indicators shown
// after an application goes through.
func (s *Session) ApplySucceeded(ctx context.Context) (bool, error) {
	const js = `
	() => {
		const visible = (el) => el && el.offsetParent !== null;
		for (const span of document.querySelectorAll("span[class*='apply-message']")) {
			if (visible(span) && span.innerText.includes('successfully applied')) return true;
		}
		for (const header of document.querySelectorAll("div[class*='apply-status-header']")) {
			if (visible(header) && (header.className || '').includes('green')) return true;
		}
		const body = (document.body ? document.body.innerText : '').toLowerCase();
		const phrases = ['successfully applied', 'application submitted', 'thank you for applying', 'application has been submitted'];
		return phrases.some((phrase) => body.includes(phrase));
	}
	`
	raw, err := s.eval(ctx, js)
	if err != nil {
		return false, fmt.Errorf("check success indicators: %w", err)
	}
	var success bool
	if err := json.Unmarshal(raw, &success); err != nil {
		return false, err
	}
	return success, nil
}
