package setupwizard

import (
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/forgeworks/botsmith/internal/draft"
	"github.com/forgeworks/botsmith/internal/tui/theme"
)

// CompletionStep is the terminal screen: setup is done and the agent has
// its shareable slug.
type CompletionStep struct {
	d    draft.AgentDraft
	slug string

	width  int
	height int
}

// NewCompletionStep creates the completion screen.
func NewCompletionStep(d draft.AgentDraft, slug string) *CompletionStep {
	return &CompletionStep{d: d, slug: slug, width: 60}
}

func (s *CompletionStep) Init() tea.Cmd { return nil }

func (s *CompletionStep) Update(msg tea.Msg) tea.Cmd {
	if key, ok := msg.(tea.KeyPressMsg); ok {
		switch key.String() {
		case "enter", "q":
			return tea.Quit
		}
	}
	return nil
}

func (s *CompletionStep) View() string {
	st := theme.Current().S()

	return lipgloss.JoinVertical(
		lipgloss.Left,
		st.Success.Render("✓ Setup complete"),
		"",
		st.Label.Render(fmt.Sprintf("%s is ready to chat.", s.d.Name)),
		"",
		st.Subtitle.Render("Share link:  /chat/"+s.slug),
		st.Subtitle.Render("Agent ID:    "+s.d.ID),
		"",
		st.Help.Render("try it out with: botsmith preview"),
		"",
		st.Help.Render("enter or q to exit"),
	)
}

func (s *CompletionStep) SetSize(width, height int) {
	s.width = width
	s.height = height
}
