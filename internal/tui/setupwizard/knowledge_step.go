package setupwizard

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/forgeworks/botsmith/internal/assets"
	"github.com/forgeworks/botsmith/internal/draft"
	"github.com/forgeworks/botsmith/internal/logger"
	"github.com/forgeworks/botsmith/internal/tui/theme"
)

// Knowledge focus zones, in order.
const (
	knowledgeQuestion = iota
	knowledgeAnswer
	knowledgeDocument
	knowledgeCSV
	knowledgeZoneCount
)

// KnowledgeStep edits the agent's knowledge base: FAQ pairs, reference
// documents, and an optional CSV. The step is valid once any of the three
// sources has content.
type KnowledgeStep struct {
	question textinput.Model
	answer   textinput.Model
	document textinput.Model
	csv      textinput.Model

	focused int
	d       draft.AgentDraft

	touched bool // Any interaction reveals the step-level violation
	showAll bool

	faqErr  string
	fileErr string

	maxAssetBytes int64
	width         int
	height        int
}

// NewKnowledgeStep creates the knowledge step seeded from the draft.
func NewKnowledgeStep(d draft.AgentDraft, maxAssetBytes int64) *KnowledgeStep {
	s := &KnowledgeStep{d: d, maxAssetBytes: maxAssetBytes, width: 60}

	s.question = textinput.New()
	s.question.Placeholder = "FAQ question"
	s.question.Focus()

	s.answer = textinput.New()
	s.answer.Placeholder = "FAQ answer, enter to add the pair"

	s.document = textinput.New()
	s.document.Placeholder = "path to a document (.pdf, .txt, .md, .doc), enter to attach"

	s.csv = textinput.New()
	s.csv.Placeholder = "path to a CSV file, enter to attach"

	return s
}

// SetDraft replaces the working draft after a refetch.
func (s *KnowledgeStep) SetDraft(d draft.AgentDraft) {
	s.d = d
	s.question.SetValue("")
	s.answer.SetValue("")
	s.document.SetValue("")
	s.csv.SetValue("")
	s.faqErr = ""
	s.fileErr = ""
}

// Draft returns the working draft.
func (s *KnowledgeStep) Draft() draft.AgentDraft { return s.d }

// ShowAllViolations reveals the step violation regardless of touch state.
func (s *KnowledgeStep) ShowAllViolations() { s.showAll = true }

func (s *KnowledgeStep) Init() tea.Cmd {
	return textinput.Blink
}

func (s *KnowledgeStep) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "tab", "down":
			s.touched = true
			if s.focused == knowledgeZoneCount-1 {
				return func() tea.Msg { return TabExitForwardMsg{} }
			}
			s.focusZone(s.focused + 1)
			return nil
		case "shift+tab", "up":
			s.touched = true
			if s.focused == 0 {
				return func() tea.Msg { return TabExitBackwardMsg{} }
			}
			s.focusZone(s.focused - 1)
			return nil
		case "enter":
			s.touched = true
			switch s.focused {
			case knowledgeQuestion:
				s.focusZone(knowledgeAnswer)
				return nil
			case knowledgeAnswer:
				s.addFAQ()
				return nil
			case knowledgeDocument:
				s.attachDocument()
				return nil
			case knowledgeCSV:
				s.attachCSV()
				return nil
			}
		case "ctrl+d":
			switch s.focused {
			case knowledgeQuestion, knowledgeAnswer:
				if len(s.d.FAQs) > 0 {
					s.d = s.d.RemoveFAQ(len(s.d.FAQs) - 1)
				}
			case knowledgeDocument:
				if len(s.d.Documents) > 0 {
					s.d = s.d.RemoveDocument(len(s.d.Documents) - 1)
				}
			case knowledgeCSV:
				empty := draft.Asset{}
				s.d = s.d.Apply(draft.Patch{CSV: &empty})
			}
			return nil
		default:
			s.touched = true
			s.faqErr = ""
			s.fileErr = ""
		}
	}

	var cmd tea.Cmd
	switch s.focused {
	case knowledgeQuestion:
		s.question, cmd = s.question.Update(msg)
	case knowledgeAnswer:
		s.answer, cmd = s.answer.Update(msg)
	case knowledgeDocument:
		s.document, cmd = s.document.Update(msg)
	case knowledgeCSV:
		s.csv, cmd = s.csv.Update(msg)
	}
	return cmd
}

func (s *KnowledgeStep) focusZone(i int) {
	s.question.Blur()
	s.answer.Blur()
	s.document.Blur()
	s.csv.Blur()
	s.focused = i
	switch i {
	case knowledgeQuestion:
		s.question.Focus()
	case knowledgeAnswer:
		s.answer.Focus()
	case knowledgeDocument:
		s.document.Focus()
	case knowledgeCSV:
		s.csv.Focus()
	}
}

func (s *KnowledgeStep) addFAQ() {
	next, err := s.d.AddFAQ(s.question.Value(), s.answer.Value())
	if err != nil {
		s.faqErr = err.Error()
		return
	}
	s.d = next
	s.question.SetValue("")
	s.answer.SetValue("")
	s.faqErr = ""
	s.focusZone(knowledgeQuestion)
}

// loadFile validates and reads the file behind a typed path.
func (s *KnowledgeStep) loadFile(path string, kind assets.Kind) (draft.Asset, bool) {
	info, err := os.Stat(path)
	if err != nil {
		s.fileErr = fmt.Sprintf("cannot read %s", path)
		return draft.Asset{}, false
	}
	if err := assets.CheckSelection(info.Name(), info.Size(), kind, s.maxAssetBytes); err != nil {
		s.fileErr = err.Error()
		return draft.Asset{}, false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		s.fileErr = fmt.Sprintf("cannot read %s", path)
		return draft.Asset{}, false
	}
	s.fileErr = ""
	return draft.LocalAsset(filepath.Base(path), data), true
}

func (s *KnowledgeStep) attachDocument() {
	path := strings.TrimSpace(s.document.Value())
	if path == "" {
		return
	}
	a, ok := s.loadFile(path, assets.KindDocument)
	if !ok {
		return
	}
	s.d = s.d.AddDocument(a)
	s.document.SetValue("")
	logger.Debug("attached document %s", a.Name())
}

func (s *KnowledgeStep) attachCSV() {
	path := strings.TrimSpace(s.csv.Value())
	if path == "" {
		return
	}
	a, ok := s.loadFile(path, assets.KindCSV)
	if !ok {
		return
	}
	s.d = s.d.Apply(draft.Patch{CSV: &a})
	s.csv.SetValue("")
	logger.Debug("attached CSV %s", a.Name())
}

func (s *KnowledgeStep) View() string {
	st := theme.Current().S()

	label := func(zone int, text string) string {
		if zone == s.focused {
			return st.LabelFocused.Render(text)
		}
		return st.Label.Render(text)
	}

	var faqRows []string
	for i, f := range s.d.FAQs {
		faqRows = append(faqRows, st.Subtitle.Render(fmt.Sprintf("  %d. Q: %s", i+1, f.Question)))
	}

	var docRows []string
	for i, doc := range s.d.Documents {
		name := doc.Name()
		if doc.State() == draft.AssetRemote {
			name = doc.Ref()
		}
		docRows = append(docRows, st.Subtitle.Render(fmt.Sprintf("  %d. %s", i+1, name)))
	}

	csvLine := st.Help.Render("none attached")
	switch s.d.CSV.State() {
	case draft.AssetLocalPending:
		csvLine = st.Subtitle.Render("⏳ " + s.d.CSV.Name() + " (will upload on save)")
	case draft.AssetRemote:
		csvLine = st.Success.Render("✓ saved: " + s.d.CSV.Ref())
	}

	rows := []string{
		label(knowledgeQuestion, fmt.Sprintf("FAQs (%d)", len(s.d.FAQs))),
	}
	rows = append(rows, faqRows...)
	rows = append(rows, s.question.View(), s.answer.View())
	if s.faqErr != "" {
		rows = append(rows, st.FieldError.Render("✗ "+s.faqErr))
	}
	rows = append(rows,
		st.Help.Render("enter to add pair · ctrl+d to remove last"),
		"",
		label(knowledgeDocument, fmt.Sprintf("Documents (%d)", len(s.d.Documents))),
	)
	rows = append(rows, docRows...)
	rows = append(rows, s.document.View(), "",
		label(knowledgeCSV, "CSV"),
		csvLine,
		s.csv.View(),
	)
	if s.fileErr != "" {
		rows = append(rows, st.FieldError.Render("✗ "+s.fileErr))
	}

	if s.showAll || s.touched {
		for _, v := range draft.ValidateStep(draft.StepKnowledge, s.d) {
			rows = append(rows, "", st.FieldError.Render("✗ "+v.Message))
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (s *KnowledgeStep) SetSize(width, height int) {
	s.width = width
	s.height = height
	w := width - 4
	s.question.SetWidth(w)
	s.answer.SetWidth(w)
	s.document.SetWidth(w)
	s.csv.SetWidth(w)
}

func (s *KnowledgeStep) Focus() { s.focusZone(s.focused) }

// FocusLast moves focus to the last zone, for Shift+Tab from the buttons.
func (s *KnowledgeStep) FocusLast() { s.focusZone(knowledgeZoneCount - 1) }

func (s *KnowledgeStep) Blur() {
	s.question.Blur()
	s.answer.Blur()
	s.document.Blur()
	s.csv.Blur()
}
