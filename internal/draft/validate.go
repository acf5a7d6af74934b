package draft

import (
	"regexp"
	"strings"
)

// Violation is a single field-level validation failure.
type Violation struct {
	Field   string
	Message string
}

// hexColorRe matches 3- or 6-digit hex colors with a leading '#'.
var hexColorRe = regexp.MustCompile(`^#([0-9A-Fa-f]{6}|[0-9A-Fa-f]{3})$`)

// ValidateStep runs the validator for the given step against the draft and
// returns the list of violations. An empty result means the step may be
// submitted. Validators are pure: the same draft always yields the same
// result, and the draft is never modified.
func ValidateStep(step int, d AgentDraft) []Violation {
	switch step {
	case StepBranding:
		return validateBranding(d)
	case StepPersona:
		return validatePersona(d)
	case StepKnowledge:
		return validateKnowledge(d)
	case StepReview:
		// Review is read-only and always valid.
		return nil
	default:
		return []Violation{{Field: "step", Message: "Unknown step"}}
	}
}

func validateBranding(d AgentDraft) []Violation {
	var v []Violation

	if strings.TrimSpace(d.Name) == "" {
		v = append(v, Violation{Field: "name", Message: "Name is required"})
	}
	if strings.TrimSpace(d.Description) == "" {
		v = append(v, Violation{Field: "description", Message: "Description is required"})
	}
	if strings.TrimSpace(d.Domain) == "" {
		v = append(v, Violation{Field: "domain", Message: "Domain expertise is required"})
	}
	if !hexColorRe.MatchString(d.Color) {
		v = append(v, Violation{Field: "color", Message: "Color must be a hex value like #007bff"})
	}
	if d.Logo.IsEmpty() {
		v = append(v, Violation{Field: "logo", Message: "A logo image is required"})
	}

	return v
}

func validatePersona(d AgentDraft) []Violation {
	var v []Violation

	if strings.TrimSpace(d.Greeting) == "" {
		v = append(v, Violation{Field: "greeting", Message: "Greeting message is required"})
	}
	if strings.TrimSpace(string(d.Tone)) == "" {
		v = append(v, Violation{Field: "tone", Message: "Tone is required"})
	}
	if strings.TrimSpace(d.CustomRules) == "" {
		v = append(v, Violation{Field: "customRules", Message: "Custom rules are required"})
	}
	if strings.TrimSpace(d.Language) == "" {
		v = append(v, Violation{Field: "language", Message: "Language is required"})
	}
	if len(d.Starters) == 0 {
		v = append(v, Violation{Field: "starters", Message: "At least one conversation starter is required"})
	}
	for _, s := range d.Starters {
		if len([]rune(s)) > MaxStarterLen {
			v = append(v, Violation{Field: "starters", Message: "Conversation starters must be 50 characters or fewer"})
			break
		}
	}

	return v
}

func validateKnowledge(d AgentDraft) []Violation {
	if len(d.FAQs) > 0 || len(d.Documents) > 0 || !d.CSV.IsEmpty() {
		return nil
	}
	return []Violation{{
		Field:   "knowledge",
		Message: "Add at least one FAQ, document, or CSV file",
	}}
}
