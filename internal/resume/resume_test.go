package resume

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/PhoenixMystique/alice-jobseeker/internal/answers"
)

func TestLoadFromJSONFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "resume.json")
	content := `{"name": "Jane Doe", "email": "jane@example.com", "skills": ["Go"]}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write resume: %v", err)
	}

	data, err := Load(&Settings{Folder: dir, Filename: "resume.json"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if data.Fallback {
		t.Fatalf("expected real resume, got fallback")
	}
	if data.Name() != "Jane Doe" {
		t.Fatalf("unexpected name: %q", data.Name())
	}
	if data.Email() != "jane@example.com" {
		t.Fatalf("unexpected email: %q", data.Email())
	}
}

func TestLoadMissingFileFallsBack(t *testing.T) {
	defaults := &answers.Defaults{
		Email:      "applicant@example.com",
		Experience: "3 years",
	}

	data, err := Load(&Settings{Folder: t.TempDir(), Filename: "resume.json"}, defaults)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !data.Fallback {
		t.Fatalf("expected fallback resume")
	}
	if data.Name() != "Job Applicant" {
		t.Fatalf("unexpected fallback name: %q", data.Name())
	}
	if data.Email() != "applicant@example.com" {
		t.Fatalf("expected email from defaults, got %q", data.Email())
	}
}

func TestLoadInvalidJSONFallsBack(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "resume.json"), []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatalf("write resume: %v", err)
	}

	data, err := Load(&Settings{Folder: dir, Filename: "resume.json"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !data.Fallback {
		t.Fatalf("expected fallback for non-JSON content")
	}
}

func TestJSONAlwaysValid(t *testing.T) {
	data := &Data{}
	out, err := data.JSON()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "{}" {
		t.Fatalf("expected empty object, got %q", out)
	}
}
