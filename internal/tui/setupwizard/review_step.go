package setupwizard

import (
	"bytes"
	"encoding/json"
	"strings"

	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	chroma "github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/aymanbagabas/go-udiff"

	"github.com/forgeworks/botsmith/internal/draft"
	"github.com/forgeworks/botsmith/internal/tui/theme"
)

// ReviewStep shows the full configuration that finishing will submit: the
// payload as highlighted JSON, plus a diff of anything edited since the
// last save.
type ReviewStep struct {
	viewport viewport.Model
	current  draft.AgentDraft
	saved    draft.AgentDraft

	width  int
	height int
}

// NewReviewStep creates the review step over the current draft and the
// last canonical snapshot.
func NewReviewStep(current, saved draft.AgentDraft) *ReviewStep {
	vp := viewport.New(
		viewport.WithWidth(60),
		viewport.WithHeight(12),
	)
	vp.MouseWheelEnabled = true

	s := &ReviewStep{viewport: vp, current: current, saved: saved, width: 60, height: 20}
	s.refreshContent()
	return s
}

// SetDraft replaces the drafts shown, after a refetch or late save result.
func (s *ReviewStep) SetDraft(current, saved draft.AgentDraft) {
	s.current = current
	s.saved = saved
	s.refreshContent()
}

// Draft returns the draft under review, unmodified. Review is read-only.
func (s *ReviewStep) Draft() draft.AgentDraft { return s.current }

// ShowAllViolations is a no-op: the review step is always valid.
func (s *ReviewStep) ShowAllViolations() {}

func (s *ReviewStep) refreshContent() {
	st := theme.Current().S()

	var b strings.Builder
	b.WriteString(st.Subtitle.Render("This configuration will be finalized:"))
	b.WriteString("\n\n")
	b.WriteString(highlightJSON(payloadJSON(s.current)))

	if diff := unsavedDiff(s.saved, s.current); diff != "" {
		b.WriteString("\n\n")
		b.WriteString(st.Title.Render("Unsaved changes"))
		b.WriteString("\n")
		b.WriteString(renderDiff(diff))
	}

	s.viewport.SetContent(b.String())
	s.viewport.GotoTop()
}

// reviewPayload is the JSON shape shown to the user. Asset fields render
// as their stable handle: the reference for saved assets, the filename
// for pending uploads.
type reviewPayload struct {
	ID              string      `json:"id,omitempty"`
	Name            string      `json:"name"`
	Description     string      `json:"description"`
	Domain          string      `json:"domain"`
	Color           string      `json:"color"`
	Logo            string      `json:"logo,omitempty"`
	Banner          string      `json:"banner,omitempty"`
	Greeting        string      `json:"greeting"`
	Tone            string      `json:"tone"`
	CustomRules     string      `json:"custom_rules"`
	Starters        []string    `json:"conversation_starters"`
	Language        string      `json:"language"`
	AllowFreeText   bool        `json:"allow_free_text"`
	AllowBranching  bool        `json:"allow_branching"`
	FlowDescription string      `json:"flow_description,omitempty"`
	FAQs            []draft.FAQ `json:"faqs"`
	Documents       []string    `json:"documents"`
	CSV             string      `json:"csv,omitempty"`
}

func assetHandle(a draft.Asset) string {
	switch a.State() {
	case draft.AssetLocalPending:
		return a.Name() + " (pending upload)"
	case draft.AssetRemote:
		return a.Ref()
	default:
		return ""
	}
}

// payloadJSON renders the draft as indented JSON.
func payloadJSON(d draft.AgentDraft) string {
	p := reviewPayload{
		ID:              d.ID,
		Name:            d.Name,
		Description:     d.Description,
		Domain:          d.Domain,
		Color:           d.Color,
		Logo:            assetHandle(d.Logo),
		Banner:          assetHandle(d.Banner),
		Greeting:        d.Greeting,
		Tone:            string(d.Tone),
		CustomRules:     d.CustomRules,
		Starters:        d.Starters,
		Language:        d.Language,
		AllowFreeText:   d.AllowFreeText,
		AllowBranching:  d.AllowBranching,
		FlowDescription: d.FlowDescription,
		FAQs:            d.FAQs,
		Documents:       make([]string, 0, len(d.Documents)),
		CSV:             assetHandle(d.CSV),
	}
	for _, doc := range d.Documents {
		p.Documents = append(p.Documents, assetHandle(doc))
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}

// unsavedDiff returns a unified diff between the last saved snapshot and
// the current draft, or "" when they match.
func unsavedDiff(saved, current draft.AgentDraft) string {
	before := payloadJSON(saved)
	after := payloadJSON(current)
	if before == after {
		return ""
	}
	return udiff.Unified("saved", "draft", before+"\n", after+"\n")
}

// renderDiff colors added and removed diff lines.
func renderDiff(diff string) string {
	t := theme.Current()
	addStyle := lipgloss.NewStyle().Background(lipgloss.Color(t.DiffInsertBg))
	delStyle := lipgloss.NewStyle().Background(lipgloss.Color(t.DiffDeleteBg))

	lines := strings.Split(diff, "\n")
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "+++"):
			lines[i] = addStyle.Render(line)
		case strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "---"):
			lines[i] = delStyle.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}

// highlightJSON applies chroma highlighting with the background forced to
// the theme's base so the block does not clash with the modal.
func highlightJSON(source string) string {
	lexer := lexers.Get("json")
	if lexer == nil {
		return source
	}
	formatter := formatters.Get("terminal16m")
	if formatter == nil {
		formatter = formatters.Get("terminal256")
	}
	if formatter == nil {
		return source
	}

	baseStyle := styles.Get("monokai")
	if baseStyle == nil {
		baseStyle = styles.Fallback
	}
	bg := chroma.MustParseColour(theme.Current().BgBase)
	style, err := baseStyle.Builder().Transform(func(entry chroma.StyleEntry) chroma.StyleEntry {
		entry.Background = bg
		return entry
	}).Build()
	if err != nil {
		style = baseStyle
	}

	iterator, err := lexer.Tokenise(nil, source)
	if err != nil {
		return source
	}
	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return source
	}
	return strings.TrimRight(buf.String(), "\n")
}

func (s *ReviewStep) Init() tea.Cmd { return nil }

func (s *ReviewStep) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	s.viewport, cmd = s.viewport.Update(msg)
	return cmd
}

func (s *ReviewStep) View() string {
	st := theme.Current().S()
	return lipgloss.JoinVertical(
		lipgloss.Left,
		s.viewport.View(),
		"",
		st.Help.Render("↑↓ scroll"),
	)
}

func (s *ReviewStep) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.viewport.SetWidth(width)
	vh := height - 2
	if vh < 5 {
		vh = 5
	}
	s.viewport.SetHeight(vh)
	s.refreshContent()
}

func (s *ReviewStep) Focus()     {}
func (s *ReviewStep) FocusLast() {}
func (s *ReviewStep) Blur()      {}
