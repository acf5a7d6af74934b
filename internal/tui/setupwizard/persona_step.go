package setupwizard

import (
	"fmt"
	"os"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/editor"

	"github.com/forgeworks/botsmith/internal/draft"
	"github.com/forgeworks/botsmith/internal/logger"
	"github.com/forgeworks/botsmith/internal/tui/theme"
)

// Persona focus zones, in order.
const (
	personaGreeting = iota
	personaTone
	personaRules
	personaStarters
	personaLanguage
	personaFreeText
	personaBranching
	personaFlow
	personaZoneCount
)

// PersonaStep edits how the agent talks: greeting, tone, custom rules,
// conversation starters, language, and the conversation-mode toggles.
type PersonaStep struct {
	greeting textinput.Model
	starter  textinput.Model
	language textinput.Model
	flow     textinput.Model

	focused int
	d       draft.AgentDraft

	touched [personaZoneCount]bool
	showAll bool

	// Error from the last starter-add attempt
	starterErr string

	rulesTmp string // temp file while $EDITOR is open

	width  int
	height int
}

// NewPersonaStep creates the persona step seeded from the draft.
func NewPersonaStep(d draft.AgentDraft) *PersonaStep {
	s := &PersonaStep{d: d, width: 60}

	s.greeting = textinput.New()
	s.greeting.Placeholder = "e.g. 'Hi! How can I help you today?'"
	s.greeting.SetValue(d.Greeting)
	s.greeting.Focus()

	s.starter = textinput.New()
	s.starter.Placeholder = fmt.Sprintf("add a starter (max %d chars), enter to add", draft.MaxStarterLen)

	s.language = textinput.New()
	s.language.Placeholder = "e.g. 'English'"
	s.language.SetValue(d.Language)

	s.flow = textinput.New()
	s.flow.Placeholder = "describe the conversation flow (optional)"
	s.flow.SetValue(d.FlowDescription)

	return s
}

// SetDraft replaces the working draft after a refetch.
func (s *PersonaStep) SetDraft(d draft.AgentDraft) {
	s.d = d
	s.greeting.SetValue(d.Greeting)
	s.language.SetValue(d.Language)
	s.flow.SetValue(d.FlowDescription)
	s.starter.SetValue("")
	s.starterErr = ""
}

// Draft returns the working draft with current text values applied.
func (s *PersonaStep) Draft() draft.AgentDraft {
	greeting := strings.TrimSpace(s.greeting.Value())
	language := strings.TrimSpace(s.language.Value())
	flow := strings.TrimSpace(s.flow.Value())
	return s.d.Apply(draft.Patch{
		Greeting:        &greeting,
		Language:        &language,
		FlowDescription: &flow,
	})
}

// ShowAllViolations reveals every violation regardless of touch state.
func (s *PersonaStep) ShowAllViolations() { s.showAll = true }

func (s *PersonaStep) Init() tea.Cmd {
	return textinput.Blink
}

func (s *PersonaStep) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "tab", "down":
			s.touched[s.focused] = true
			if s.focused == personaZoneCount-1 {
				return func() tea.Msg { return TabExitForwardMsg{} }
			}
			s.focusZone(s.focused + 1)
			return nil
		case "shift+tab", "up":
			s.touched[s.focused] = true
			if s.focused == 0 {
				return func() tea.Msg { return TabExitBackwardMsg{} }
			}
			s.focusZone(s.focused - 1)
			return nil
		case "enter":
			switch s.focused {
			case personaRules:
				return s.openRulesEditor()
			case personaStarters:
				s.addStarter()
				return nil
			default:
				return func() tea.Msg { return NextRequestedMsg{} }
			}
		case "left", "right":
			if s.focused == personaTone {
				s.touched[personaTone] = true
				s.cycleTone(msg.String() == "right")
				return nil
			}
		case "space":
			switch s.focused {
			case personaFreeText:
				s.touched[personaFreeText] = true
				s.d.AllowFreeText = !s.d.AllowFreeText
				return nil
			case personaBranching:
				s.touched[personaBranching] = true
				s.d.AllowBranching = !s.d.AllowBranching
				return nil
			}
		case "ctrl+d":
			if s.focused == personaStarters && len(s.d.Starters) > 0 {
				s.d = s.d.RemoveStarter(len(s.d.Starters) - 1)
				return nil
			}
		default:
			s.touched[s.focused] = true
			if s.focused == personaStarters {
				s.starterErr = ""
			}
		}

	case RulesEditedMsg:
		s.d.CustomRules = strings.TrimSpace(msg.Content)
		s.touched[personaRules] = true
		if s.rulesTmp != "" {
			_ = os.Remove(s.rulesTmp)
			s.rulesTmp = ""
		}
		return nil
	}

	var cmd tea.Cmd
	switch s.focused {
	case personaGreeting:
		s.greeting, cmd = s.greeting.Update(msg)
	case personaStarters:
		s.starter, cmd = s.starter.Update(msg)
	case personaLanguage:
		s.language, cmd = s.language.Update(msg)
	case personaFlow:
		s.flow, cmd = s.flow.Update(msg)
	}
	return cmd
}

func (s *PersonaStep) focusZone(i int) {
	s.blurInputs()
	s.focused = i
	switch i {
	case personaGreeting:
		s.greeting.Focus()
	case personaStarters:
		s.starter.Focus()
	case personaLanguage:
		s.language.Focus()
	case personaFlow:
		s.flow.Focus()
	}
}

func (s *PersonaStep) blurInputs() {
	s.greeting.Blur()
	s.starter.Blur()
	s.language.Blur()
	s.flow.Blur()
}

// cycleTone steps through the tone list in display order.
func (s *PersonaStep) cycleTone(forward bool) {
	idx := 0
	for i, t := range draft.Tones {
		if t == s.d.Tone {
			idx = i
			break
		}
	}
	if forward {
		idx = (idx + 1) % len(draft.Tones)
	} else {
		idx = (idx - 1 + len(draft.Tones)) % len(draft.Tones)
	}
	s.d.Tone = draft.Tones[idx]
}

// addStarter runs the point-of-addition checks and surfaces their errors
// inline.
func (s *PersonaStep) addStarter() {
	s.touched[personaStarters] = true
	next, err := s.d.AddStarter(s.starter.Value())
	if err != nil {
		s.starterErr = err.Error()
		return
	}
	s.d = next
	s.starter.SetValue("")
	s.starterErr = ""
}

// openRulesEditor hands the custom rules to $EDITOR via a temp file.
func (s *PersonaStep) openRulesEditor() tea.Cmd {
	tmp, err := os.CreateTemp("", "botsmith_rules_*.md")
	if err != nil {
		logger.Warn("cannot create rules temp file: %v", err)
		return nil
	}
	if _, err := tmp.WriteString(s.d.CustomRules); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return nil
	}
	_ = tmp.Close()
	s.rulesTmp = tmp.Name()

	cmd, err := editor.Command("botsmith", tmp.Name())
	if err != nil {
		_ = os.Remove(tmp.Name())
		s.rulesTmp = ""
		return nil
	}

	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		if err != nil {
			return nil
		}
		content, err := os.ReadFile(tmp.Name())
		if err != nil {
			return nil
		}
		return RulesEditedMsg{Content: string(content)}
	})
}

// visibleViolations filters step violations by touch state. The starter
// zone also owns the list-level "at least one" violation.
func (s *PersonaStep) visibleViolations() map[string]string {
	keys := map[string]int{
		"greeting":    personaGreeting,
		"tone":        personaTone,
		"customRules": personaRules,
		"starters":    personaStarters,
		"language":    personaLanguage,
	}
	out := make(map[string]string)
	for _, v := range draft.ValidateStep(draft.StepPersona, s.Draft()) {
		if zone, ok := keys[v.Field]; ok && (s.showAll || s.touched[zone]) {
			out[v.Field] = v.Message
		}
	}
	return out
}

func (s *PersonaStep) View() string {
	st := theme.Current().S()
	violations := s.visibleViolations()

	label := func(zone int, text string) string {
		if zone == s.focused {
			return st.LabelFocused.Render(text)
		}
		return st.Label.Render(text)
	}
	violationLine := func(field string) string {
		if msg, ok := violations[field]; ok {
			return st.FieldError.Render("✗ " + msg)
		}
		return ""
	}
	check := func(on bool) string {
		if on {
			return "[x]"
		}
		return "[ ]"
	}

	// Tone selector line
	var tones []string
	for _, t := range draft.Tones {
		if t == s.d.Tone {
			tones = append(tones, st.ButtonFocused.Render(string(t)))
		} else {
			tones = append(tones, st.Help.Render(string(t)))
		}
	}

	// Custom rules summary
	rules := "press enter to edit in $EDITOR"
	if s.d.CustomRules != "" {
		rules = fmt.Sprintf("%d chars, press enter to edit", len(s.d.CustomRules))
	}

	// Starter list
	var starterRows []string
	for i, starter := range s.d.Starters {
		starterRows = append(starterRows, st.Subtitle.Render(fmt.Sprintf("  %d. %s", i+1, starter)))
	}
	starterHeader := fmt.Sprintf("Conversation starters (%d/%d)", len(s.d.Starters), draft.MaxStarters)

	rows := []string{
		label(personaGreeting, "Greeting"),
		s.greeting.View(),
		violationLine("greeting"),
		"",
		label(personaTone, "Tone (←/→ to change)"),
		strings.Join(tones, " "),
		violationLine("tone"),
		"",
		label(personaRules, "Custom rules"),
		st.Subtitle.Render(rules),
		violationLine("customRules"),
		"",
		label(personaStarters, starterHeader),
	}
	rows = append(rows, starterRows...)
	rows = append(rows, s.starter.View())
	if s.starterErr != "" {
		rows = append(rows, st.FieldError.Render("✗ "+s.starterErr))
	} else {
		rows = append(rows, violationLine("starters"))
	}
	rows = append(rows,
		st.Help.Render("enter to add · ctrl+d to remove last"),
		"",
		label(personaLanguage, "Language"),
		s.language.View(),
		violationLine("language"),
		"",
		label(personaFreeText, check(s.d.AllowFreeText)+" Allow free-text questions (space to toggle)"),
		label(personaBranching, check(s.d.AllowBranching)+" Allow conversation branching (space to toggle)"),
		"",
		label(personaFlow, "Flow description (optional)"),
		s.flow.View(),
	)

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (s *PersonaStep) SetSize(width, height int) {
	s.width = width
	s.height = height
	w := width - 4
	s.greeting.SetWidth(w)
	s.starter.SetWidth(w)
	s.language.SetWidth(w)
	s.flow.SetWidth(w)
}

func (s *PersonaStep) Focus() { s.focusZone(s.focused) }

// FocusLast moves focus to the last zone, for Shift+Tab from the buttons.
func (s *PersonaStep) FocusLast() { s.focusZone(personaZoneCount - 1) }

func (s *PersonaStep) Blur() { s.blurInputs() }
