// Package resume loads the applicant's resume data used for both
// preference matching and answer generation.
package resume

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/PhoenixMystique/alice-jobseeker/internal/answers"

	"github.com/mitchellh/mapstructure"
)

// Settings configures where the resume JSON lives.
type Settings struct {
	Folder   string `mapstructure:"folder"`
	Filename string `mapstructure:"filename"`
}

// Data is the parsed resume document. The shape is user-controlled, so it
// stays a free-form map handed verbatim to the AI prompts. The few fields
// the application flow reads directly are decoded into Contact.
type Data struct {
	Raw      map[string]any
	Contact  Contact
	Fallback bool
}

// Contact is the typed slice of the resume document.
type Contact struct {
	Name  string `mapstructure:"name"`
	Email string `mapstructure:"email"`
	Phone string `mapstructure:"phone"`
}

func (d *Data) Name() string {
	if d == nil {
		return ""
	}
	return strings.TrimSpace(d.Contact.Name)
}

func (d *Data) Email() string {
	if d == nil {
		return ""
	}
	return strings.TrimSpace(d.Contact.Email)
}

func decodeContact(raw map[string]any) Contact {
	var contact Contact
	// Best effort: a resume with a non-string name is still usable.
	_ = mapstructure.WeakDecode(raw, &contact)
	return contact
}

// JSON returns the resume serialized for embedding into a prompt.
func (d *Data) JSON() (string, error) {
	raw := d.Raw
	if raw == nil {
		raw = map[string]any{}
	}
	out, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal resume: %w", err)
	}
	return string(out), nil
}

// Load reads the configured resume JSON file. A missing or invalid file
// falls back to a resume synthesized from the default answers so a run can
// still proceed.
func Load(settings *Settings, defaults *answers.Defaults) (*Data, error) {
	if settings == nil || strings.TrimSpace(settings.Filename) == "" {
		return synthesize(defaults), nil
	}

	folder := settings.Folder
	if folder == "" {
		folder = "./resume"
	}

	path := filepath.Join(folder, settings.Filename)
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return synthesize(defaults), nil
		}
		return nil, fmt.Errorf("read resume %q: %w", path, err)
	}

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return synthesize(defaults), nil
	}

	return &Data{Raw: doc, Contact: decodeContact(doc)}, nil
}

func synthesize(defaults *answers.Defaults) *Data {
	raw := map[string]any{
		"name":   "Job Applicant",
		"skills": []string{"Not specified"},
	}

	if defaults != nil {
		set := func(key, value string) {
			if strings.TrimSpace(value) != "" {
				raw[key] = value
			}
		}
		set("email", defaults.Email)
		set("phone", defaults.Phone)
		set("current_location", defaults.CurrentLocation)
		set("experience", defaults.Experience)
		set("expected_salary", defaults.ExpectedSalary)
		set("notice_period", defaults.NoticePeriod)
		if strings.TrimSpace(defaults.Skills) != "" {
			raw["skills"] = defaults.Skills
		}
	}

	return &Data{Raw: raw, Contact: decodeContact(raw), Fallback: true}
}
