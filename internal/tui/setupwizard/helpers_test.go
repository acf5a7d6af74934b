package setupwizard

import (
	"os"
	"path/filepath"
	"testing"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/colorprofile"
)

func init() {
	// Ascii profile keeps rendered output stable across CI/platforms
	lipgloss.Writer.Profile = colorprofile.Ascii
}

type stepUnderTest interface {
	Update(tea.Msg) tea.Cmd
}

// typeString feeds a string into the focused input one keypress at a time.
func typeString(s stepUnderTest, text string) {
	for _, r := range text {
		s.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
	}
}

func pressKey(s stepUnderTest, key tea.KeyPressMsg) tea.Cmd {
	return s.Update(key)
}

// runCmd executes a command and returns the message it produces.
func runCmd(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command, got nil")
	}
	return cmd()
}

// writeTempFile creates a file with the given name under a temp dir.
func writeTempFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

var (
	keyEnter     = tea.KeyPressMsg{Code: tea.KeyEnter}
	keyTab       = tea.KeyPressMsg{Code: tea.KeyTab}
	keyShiftTab  = tea.KeyPressMsg{Code: tea.KeyTab, Mod: tea.ModShift}
	keyRight     = tea.KeyPressMsg{Code: tea.KeyRight}
	keyLeft      = tea.KeyPressMsg{Code: tea.KeyLeft}
	keySpace     = tea.KeyPressMsg{Code: tea.KeySpace, Text: " "}
	keyCtrlD     = tea.KeyPressMsg{Code: 'd', Mod: tea.ModCtrl}
	keyBackspace = tea.KeyPressMsg{Code: tea.KeyBackspace}
)
