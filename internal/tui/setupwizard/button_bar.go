package setupwizard

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/forgeworks/botsmith/internal/tui/theme"
)

// ButtonID identifies a navigation button.
type ButtonID int

const (
	ButtonBack ButtonID = iota
	ButtonNext
)

// Button is a single button in the bar.
type Button struct {
	ID       ButtonID
	Label    string
	Disabled bool
}

// ButtonBar renders the Back/Next row and tracks which button holds
// keyboard focus. focused is -1 when no button is focused.
type ButtonBar struct {
	buttons []Button
	focused int
	width   int
}

// NewButtonBar creates an unfocused button bar.
func NewButtonBar(buttons []Button) *ButtonBar {
	return &ButtonBar{buttons: buttons, focused: -1, width: 60}
}

// SetWidth updates the centering width.
func (b *ButtonBar) SetWidth(width int) { b.width = width }

// FocusFirst focuses the first enabled button.
func (b *ButtonBar) FocusFirst() {
	for i, btn := range b.buttons {
		if !btn.Disabled {
			b.focused = i
			return
		}
	}
	b.focused = -1
}

// FocusLast focuses the last enabled button.
func (b *ButtonBar) FocusLast() {
	for i := len(b.buttons) - 1; i >= 0; i-- {
		if !b.buttons[i].Disabled {
			b.focused = i
			return
		}
	}
	b.focused = -1
}

// FocusNext moves focus forward, reporting false when focus runs off the
// end of the bar.
func (b *ButtonBar) FocusNext() bool {
	for i := b.focused + 1; i < len(b.buttons); i++ {
		if !b.buttons[i].Disabled {
			b.focused = i
			return true
		}
	}
	return false
}

// FocusPrev moves focus backward, reporting false when focus runs off the
// front of the bar.
func (b *ButtonBar) FocusPrev() bool {
	for i := b.focused - 1; i >= 0; i-- {
		if !b.buttons[i].Disabled {
			b.focused = i
			return true
		}
	}
	return false
}

// Blur removes button focus.
func (b *ButtonBar) Blur() { b.focused = -1 }

// FocusedButton returns the ID of the focused button, or -1 when none is.
func (b *ButtonBar) FocusedButton() ButtonID {
	if b.focused < 0 || b.focused >= len(b.buttons) {
		return -1
	}
	return b.buttons[b.focused].ID
}

// Render renders the button row centered in the bar's width.
func (b *ButtonBar) Render() string {
	if len(b.buttons) == 0 {
		return ""
	}
	s := theme.Current().S()

	rendered := make([]string, 0, len(b.buttons))
	for i, btn := range b.buttons {
		style := s.Button
		switch {
		case i == b.focused:
			style = s.ButtonFocused
		case btn.Disabled:
			style = s.Help
		}
		rendered = append(rendered, " "+style.Render(btn.Label)+" ")
	}

	row := strings.Join(rendered, "")
	return lipgloss.Place(b.width, 1, lipgloss.Center, lipgloss.Center, row)
}
