// Package answers resolves fallback responses for application-form
// questions when no AI-generated answer is available.
package answers

import "strings"

// Defaults holds the predefined free-text answers keyed by question
// category, as configured by the user.
type Defaults struct {
	NoticePeriod       string   `mapstructure:"notice-period"`
	ExpectedSalary     string   `mapstructure:"expected-salary"`
	CurrentSalary      string   `mapstructure:"current-salary"`
	CurrentLocation    string   `mapstructure:"current-location"`
	PreferredLocations []string `mapstructure:"preferred-locations"`
	ReasonForChange    string   `mapstructure:"reason-for-change"`
	Experience         string   `mapstructure:"experience"`
	Skills             string   `mapstructure:"skills"`
	DateOfBirth        string   `mapstructure:"date-of-birth"`
	Email              string   `mapstructure:"email"`
	Phone              string   `mapstructure:"phone"`
	Generic            string   `mapstructure:"generic"`
}

const genericFallback = "Yes"

// Fallback categorizes the question by keyword and returns the matching
// predefined answer. Empty or unrecognized questions get the generic answer.
func (d *Defaults) Fallback(question string) string {
	if d == nil {
		return genericFallback
	}

	q := strings.ToLower(strings.TrimSpace(question))
	if q == "" {
		return d.generic()
	}

	switch {
	case containsAny(q, "notice", "join"):
		return orGeneric(d, d.NoticePeriod)
	case containsAny(q, "salary", "ctc", "package", "compensation"):
		return orGeneric(d, d.ExpectedSalary)
	case containsAny(q, "willing to relocate", "relocate"):
		return "Yes"
	case containsAny(q, "preferred location"):
		if len(d.PreferredLocations) > 0 {
			return d.PreferredLocations[0]
		}
		return "Remote"
	case containsAny(q, "location", "city"):
		return orGeneric(d, d.CurrentLocation)
	case containsAny(q, "shift", "work hours", "timing"):
		return "Flexible"
	case containsAny(q, "reason", "why"):
		return orGeneric(d, d.ReasonForChange)
	case containsAny(q, "date of birth", "dob"):
		return orGeneric(d, d.DateOfBirth)
	case containsAny(q, "experience", "years"):
		return orGeneric(d, d.Experience)
	case containsAny(q, "skills", "technologies"):
		return orGeneric(d, d.Skills)
	case containsAny(q, "email"):
		return orGeneric(d, d.Email)
	case containsAny(q, "phone", "mobile", "contact number"):
		return orGeneric(d, d.Phone)
	default:
		return d.generic()
	}
}

func (d *Defaults) generic() string {
	if d != nil && strings.TrimSpace(d.Generic) != "" {
		return d.Generic
	}
	return genericFallback
}

func orGeneric(d *Defaults, v string) string {
	if strings.TrimSpace(v) != "" {
		return v
	}
	return d.generic()
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
