package gemini

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestAnswererAnswer(t *testing.T) {
	stub := &stubGenerator{response: " 30 days \n"}
	answerer := NewAnswerer(stub, `{"name":"Jane"}`, zap.NewNop(), 0)

	answer, err := answerer.Answer(context.Background(), "What is your notice period?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if answer != "30 days" {
		t.Fatalf("expected trimmed answer, got %q", answer)
	}

	if !strings.Contains(stub.lastPrompt, `{"name":"Jane"}`) {
		t.Fatalf("expected resume in prompt, got: %s", stub.lastPrompt)
	}

	if stub.lastSystem != answererSystemInstruction {
		t.Fatalf("unexpected system instruction: %s", stub.lastSystem)
	}
}

func TestAnswererAnswerEmptyResponse(t *testing.T) {
	answerer := NewAnswerer(&stubGenerator{response: "  \n"}, "{}", zap.NewNop(), 0)

	if _, err := answerer.Answer(context.Background(), "Anything?"); err == nil {
		t.Fatalf("expected error for empty model response")
	}
}

func TestAnswererChoose(t *testing.T) {
	stub := &stubGenerator{response: "2"}
	answerer := NewAnswerer(stub, "{}", zap.NewNop(), 0)

	options := []string{"Immediate", "30 days", "60 days"}
	idx, err := answerer.Choose(context.Background(), "Notice period?", options)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if idx != 1 {
		t.Fatalf("expected zero-based index 1, got %d", idx)
	}

	if !strings.Contains(stub.lastPrompt, "2. 30 days") {
		t.Fatalf("expected numbered options in prompt, got: %s", stub.lastPrompt)
	}
}

func TestAnswererChooseRequiresOptions(t *testing.T) {
	answerer := NewAnswerer(&stubGenerator{response: "1"}, "{}", zap.NewNop(), 0)

	if _, err := answerer.Choose(context.Background(), "Pick one", nil); err == nil {
		t.Fatalf("expected error for missing options")
	}
}

func TestParseChoice(t *testing.T) {
	cases := []struct {
		name     string
		raw      string
		count    int
		expected int
		wantErr  bool
	}{
		{"plain number", "3", 3, 2, false},
		{"number with period", "1.", 3, 0, false},
		{"number with text", "2 (30 days)", 3, 1, false},
		{"out of range", "5", 3, 0, true},
		{"zero", "0", 3, 0, true},
		{"not a number", "the second one", 3, 0, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			idx, err := parseChoice(tc.raw, tc.count)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tc.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if idx != tc.expected {
				t.Fatalf("parseChoice(%q) = %d, expected %d", tc.raw, idx, tc.expected)
			}
		})
	}
}
