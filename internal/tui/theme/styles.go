package theme

import "charm.land/lipgloss/v2"

// Styles contains the pre-built lipgloss styles for the TUI.
type Styles struct {
	Title        lipgloss.Style
	Subtitle     lipgloss.Style
	Label        lipgloss.Style
	LabelFocused lipgloss.Style
	Help         lipgloss.Style
	FieldError   lipgloss.Style
	Success      lipgloss.Style

	// Step indicator in the wizard header
	StepActive lipgloss.Style
	StepDone   lipgloss.Style
	StepLocked lipgloss.Style

	Button        lipgloss.Style
	ButtonFocused lipgloss.Style
	ModalBorder   lipgloss.Style

	// Chat preview roles
	ChatVisitor   lipgloss.Style
	ChatAssistant lipgloss.Style
}
