// Package draft holds the in-memory model of the agent being configured:
// the working draft, its asset fields, and the per-step validators. The
// model is pure data; all network effects live in draftsync.
package draft

import (
	"errors"
	"fmt"
	"strings"
)

// Wizard step indexes. Each step owns a disjoint subset of draft fields.
const (
	StepBranding  = 0 // Name, description, domain, color, logo, banner
	StepPersona   = 1 // Greeting, tone, rules, starters, language, toggles
	StepKnowledge = 2 // FAQs, documents, CSV
	StepReview    = 3 // Read-only summary
	StepCount     = 4
)

// MaxStarters caps the conversation-starter list.
const MaxStarters = 4

// MaxStarterLen caps the length of a single conversation starter.
const MaxStarterLen = 50

// Starter list errors, surfaced at the point of addition.
var (
	ErrStarterEmpty     = errors.New("conversation starter cannot be empty")
	ErrStarterTooLong   = fmt.Errorf("conversation starter too long (max %d characters)", MaxStarterLen)
	ErrStarterLimit     = fmt.Errorf("at most %d conversation starters allowed", MaxStarters)
	ErrStarterDuplicate = errors.New("conversation starter already exists")
)

// Tone is the agent's conversational tone.
type Tone string

const (
	ToneFriendly     Tone = "friendly"
	ToneProfessional Tone = "professional"
	ToneCasual       Tone = "casual"
	TonePlayful      Tone = "playful"
)

// Tones lists the selectable tones in display order.
var Tones = []Tone{ToneFriendly, ToneProfessional, ToneCasual, TonePlayful}

// FAQ is a single question/answer pair in the knowledge base.
type FAQ struct {
	Question string
	Answer   string
}

// AgentDraft is the working configuration of the agent being set up.
// It is a value type: mutations go through Apply (or the starter/FAQ
// helpers), which return a new draft and leave the receiver untouched.
type AgentDraft struct {
	// Identity. Empty until the branding step first succeeds; immutable after.
	ID string

	// Branding
	Name        string
	Description string
	Domain      string // Domain-expertise tag, e.g. "Support"
	Color       string // Hex color, e.g. "#007bff"
	Logo        Asset
	Banner      Asset // Optional

	// Persona
	Greeting        string
	Tone            Tone
	CustomRules     string
	Starters        []string
	Language        string
	AllowFreeText   bool
	AllowBranching  bool
	FlowDescription string

	// Knowledge
	FAQs      []FAQ
	Documents []Asset
	CSV       Asset
}

// New returns a draft with defaults for a fresh session.
func New() AgentDraft {
	return AgentDraft{
		Color:         "#007bff",
		Tone:          ToneFriendly,
		Language:      "English",
		AllowFreeText: true,
	}
}

// Patch is a partial update to a draft. Nil fields are left unchanged by
// Apply. Asset fields carry already-tagged asset values, so the state
// invariant (binary → local-pending, string → remote, nil → empty) is
// enforced by construction.
type Patch struct {
	Name        *string
	Description *string
	Domain      *string
	Color       *string
	Logo        *Asset
	Banner      *Asset

	Greeting        *string
	Tone            *Tone
	CustomRules     *string
	Starters        *[]string
	Language        *string
	AllowFreeText   *bool
	AllowBranching  *bool
	FlowDescription *string

	FAQs      *[]FAQ
	Documents *[]Asset
	CSV       *Asset
}

// Apply performs a pure shallow merge of the patch into the draft,
// returning the merged draft. Unset patch fields keep their current
// values; slices are copied so the result shares no memory with the patch.
// Applying the same patch twice yields the same draft.
func (d AgentDraft) Apply(p Patch) AgentDraft {
	out := d.clone()

	if p.Name != nil {
		out.Name = *p.Name
	}
	if p.Description != nil {
		out.Description = *p.Description
	}
	if p.Domain != nil {
		out.Domain = *p.Domain
	}
	if p.Color != nil {
		out.Color = *p.Color
	}
	if p.Logo != nil {
		out.Logo = *p.Logo
	}
	if p.Banner != nil {
		out.Banner = *p.Banner
	}
	if p.Greeting != nil {
		out.Greeting = *p.Greeting
	}
	if p.Tone != nil {
		out.Tone = *p.Tone
	}
	if p.CustomRules != nil {
		out.CustomRules = *p.CustomRules
	}
	if p.Starters != nil {
		out.Starters = append([]string(nil), (*p.Starters)...)
	}
	if p.Language != nil {
		out.Language = *p.Language
	}
	if p.AllowFreeText != nil {
		out.AllowFreeText = *p.AllowFreeText
	}
	if p.AllowBranching != nil {
		out.AllowBranching = *p.AllowBranching
	}
	if p.FlowDescription != nil {
		out.FlowDescription = *p.FlowDescription
	}
	if p.FAQs != nil {
		out.FAQs = append([]FAQ(nil), (*p.FAQs)...)
	}
	if p.Documents != nil {
		out.Documents = append([]Asset(nil), (*p.Documents)...)
	}
	if p.CSV != nil {
		out.CSV = *p.CSV
	}

	return out
}

// clone returns a deep-enough copy of the draft (slices duplicated).
func (d AgentDraft) clone() AgentDraft {
	out := d
	out.Starters = append([]string(nil), d.Starters...)
	out.FAQs = append([]FAQ(nil), d.FAQs...)
	out.Documents = append([]Asset(nil), d.Documents...)
	return out
}

// AddStarter appends a conversation starter, enforcing the list cap, the
// per-entry length cap, and case-insensitive uniqueness. The checks run at
// the point of addition, not at validation time.
func (d AgentDraft) AddStarter(s string) (AgentDraft, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return d, ErrStarterEmpty
	}
	if len([]rune(s)) > MaxStarterLen {
		return d, ErrStarterTooLong
	}
	if len(d.Starters) >= MaxStarters {
		return d, ErrStarterLimit
	}
	for _, existing := range d.Starters {
		if strings.EqualFold(existing, s) {
			return d, ErrStarterDuplicate
		}
	}

	out := d.clone()
	out.Starters = append(out.Starters, s)
	return out, nil
}

// RemoveStarter deletes the starter at the given index, if it exists.
func (d AgentDraft) RemoveStarter(i int) AgentDraft {
	if i < 0 || i >= len(d.Starters) {
		return d
	}
	out := d.clone()
	out.Starters = append(out.Starters[:i], out.Starters[i+1:]...)
	return out
}

// AddFAQ appends a question/answer pair. Blank questions are rejected.
func (d AgentDraft) AddFAQ(question, answer string) (AgentDraft, error) {
	question = strings.TrimSpace(question)
	answer = strings.TrimSpace(answer)
	if question == "" {
		return d, errors.New("FAQ question cannot be empty")
	}
	if answer == "" {
		return d, errors.New("FAQ answer cannot be empty")
	}

	out := d.clone()
	out.FAQs = append(out.FAQs, FAQ{Question: question, Answer: answer})
	return out, nil
}

// RemoveFAQ deletes the FAQ at the given index, if it exists.
func (d AgentDraft) RemoveFAQ(i int) AgentDraft {
	if i < 0 || i >= len(d.FAQs) {
		return d
	}
	out := d.clone()
	out.FAQs = append(out.FAQs[:i], out.FAQs[i+1:]...)
	return out
}

// AddDocument appends a document asset to the knowledge base.
func (d AgentDraft) AddDocument(a Asset) AgentDraft {
	if a.IsEmpty() {
		return d
	}
	out := d.clone()
	out.Documents = append(out.Documents, a)
	return out
}

// RemoveDocument deletes the document at the given index, if it exists.
func (d AgentDraft) RemoveDocument(i int) AgentDraft {
	if i < 0 || i >= len(d.Documents) {
		return d
	}
	out := d.clone()
	out.Documents = append(out.Documents[:i], out.Documents[i+1:]...)
	return out
}

// HasIdentity reports whether the branding step has completed and the
// server has assigned an ID.
func (d AgentDraft) HasIdentity() bool { return d.ID != "" }
