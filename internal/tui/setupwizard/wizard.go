// Package setupwizard is the interactive agent setup flow: four gated
// steps (branding, persona, knowledge, review) that each validate and
// save before the next unlocks, ending in the completion screen.
package setupwizard

import (
	"context"
	"errors"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"

	"github.com/forgeworks/botsmith/internal/config"
	"github.com/forgeworks/botsmith/internal/draft"
	"github.com/forgeworks/botsmith/internal/draftsync"
	"github.com/forgeworks/botsmith/internal/logger"
	"github.com/forgeworks/botsmith/internal/recordapi"
	"github.com/forgeworks/botsmith/internal/tui/theme"
	"github.com/forgeworks/botsmith/internal/wizard"
)

const (
	modalWidth        = 74
	modalPadding      = 2
	modalBorderWidth  = 1
	modalContentWidth = modalWidth - (modalPadding * 2) - (modalBorderWidth * 2)
)

var stepNames = [draft.StepCount]string{"Branding", "Persona", "Knowledge", "Review"}

// Model is the root Bubble Tea model for the setup wizard.
type Model struct {
	cfg        *config.Config
	gate       *wizard.Gate
	controller *draftsync.Controller

	draft draft.AgentDraft // Working draft, including unsaved edits
	saved draft.AgentDraft // Last canonical snapshot from the server

	cancelled bool
	width     int
	height    int

	// Step components
	brandingStep   *BrandingStep
	personaStep    *PersonaStep
	knowledgeStep  *KnowledgeStep
	reviewStep     *ReviewStep
	completionStep *CompletionStep

	// Button bar with focus tracking, cached per step so focus state
	// survives re-renders
	buttonBar     *ButtonBar
	buttonFocused bool
	buttonBars    map[int]*ButtonBar

	// Save error state
	saveError     string
	showSaveError bool
}

// NewModel creates the wizard model over a sync controller.
func NewModel(cfg *config.Config, controller *draftsync.Controller) *Model {
	return &Model{
		cfg:        cfg,
		controller: controller,
		gate:       wizard.NewGate(controller),
		draft:      draft.New(),
		saved:      draft.New(),
		buttonBars: make(map[int]*ButtonBar),
	}
}

// Run is the entry point for the setup wizard.
func Run(cfg *config.Config) error {
	client := recordapi.New(cfg.APIBaseURL, cfg.APIToken)
	m := NewModel(cfg, draftsync.New(client))

	p := tea.NewProgram(m)
	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("setup wizard failed: %w", err)
	}

	wm, ok := finalModel.(*Model)
	if !ok {
		return fmt.Errorf("unexpected model type")
	}
	if wm.cancelled {
		return fmt.Errorf("setup cancelled by user")
	}
	return nil
}

// Init seeds the branding step and fetches any existing record so a
// returning user resumes where their data lives.
func (m *Model) Init() tea.Cmd {
	m.brandingStep = NewBrandingStep(m.draft, m.cfg.MaxAssetBytes, m.cfg.AssetBaseOrigin)
	return tea.Batch(m.brandingStep.Init(), m.refetchCmd())
}

// Update handles messages for the wizard.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		if m.showSaveError {
			switch msg.String() {
			case "y", "Y":
				return m, func() tea.Msg { return RetrySaveMsg{} }
			case "n", "N", "esc":
				m.showSaveError = false
				m.saveError = ""
				return m, nil
			}
			return m, nil
		}

		if m.buttonFocused && m.buttonBar != nil {
			switch msg.String() {
			case "tab", "right":
				if !m.buttonBar.FocusNext() {
					m.buttonFocused = false
					m.buttonBar.Blur()
					m.focusStepContentFirst()
				}
				return m, nil
			case "shift+tab", "left":
				if !m.buttonBar.FocusPrev() {
					m.buttonFocused = false
					m.buttonBar.Blur()
					m.focusStepContentLast()
				}
				return m, nil
			case "enter", "space":
				return m.activateButton(m.buttonBar.FocusedButton())
			case "1", "2", "3", "4":
				return m.jumpTo(int(msg.String()[0] - '1'))
			}
		}

		switch msg.String() {
		case "ctrl+c":
			m.cancelled = !m.gate.Completed()
			return m, tea.Quit
		case "esc":
			if m.gate.Completed() {
				return m, tea.Quit
			}
			if m.gate.Current() == draft.StepBranding {
				m.cancelled = true
				return m, tea.Quit
			}
			return m.goBack()
		case "tab":
			if !m.buttonFocused && !m.gate.Completed() {
				m.buttonFocused = true
				m.blurStepContent()
				m.ensureButtonBar()
				m.buttonBar.FocusFirst()
				return m, nil
			}
		case "shift+tab":
			if !m.buttonFocused && !m.gate.Completed() {
				m.buttonFocused = true
				m.blurStepContent()
				m.ensureButtonBar()
				m.buttonBar.FocusLast()
				return m, nil
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateCurrentStepSize()
		return m, nil

	case NextRequestedMsg:
		return m.goNext()

	case BackRequestedMsg:
		return m.goBack()

	case TabExitForwardMsg:
		m.buttonFocused = true
		m.blurStepContent()
		m.ensureButtonBar()
		m.buttonBar.FocusFirst()
		return m, nil

	case TabExitBackwardMsg:
		m.buttonFocused = true
		m.blurStepContent()
		m.ensureButtonBar()
		m.buttonBar.FocusLast()
		return m, nil

	case StepSavedMsg:
		m.controller.EndSubmit()
		if msg.Gen != m.controller.Generation() {
			logger.Debug("discarding stale save result for step %d", msg.Step)
			return m, nil
		}
		// Results issued before this save now refer to a pre-save record.
		m.controller.Bump()
		m.draft = msg.Draft
		// The snapshot only adopts the submitted step's canonical fields;
		// the merged draft may still carry unsaved edits for other steps.
		saved := m.saved.Apply(draftsync.StepPatch(msg.Step, msg.Draft))
		saved.ID = msg.Draft.ID
		m.saved = saved
		m.gate.Advance(m.draft)
		if m.gate.Completed() {
			m.completionStep = NewCompletionStep(m.draft, m.gate.Slug())
			m.completionStep.SetSize(m.getModalContentSize())
			return m, m.completionStep.Init()
		}
		m.buttonFocused = false
		m.buttonBar = nil
		// Refetch so server-side changes to other steps' fields show up.
		return m, tea.Batch(m.initCurrentStep(), m.refetchCmd())

	case SaveFailedMsg:
		m.controller.EndSubmit()
		if msg.Gen != m.controller.Generation() {
			return m, nil
		}
		logger.Error("step %d save failed: %v", msg.Step, msg.Err)
		m.saveError = msg.Err.Error()
		m.showSaveError = true
		return m, nil

	case RetrySaveMsg:
		m.showSaveError = false
		m.saveError = ""
		return m.goNext()

	case RefetchedMsg:
		if msg.Gen != m.controller.Generation() {
			logger.Debug("discarding stale refetch result")
			return m, nil
		}
		if msg.Err != nil {
			if errors.Is(msg.Err, recordapi.ErrNotFound) {
				// Fresh session, nothing to resume.
				return m, nil
			}
			logger.Warn("refetch failed: %v", msg.Err)
			return m, nil
		}
		m.draft = msg.Draft
		m.saved = msg.Draft
		m.seedCurrentStep()
		return m, nil
	}

	return m, m.updateCurrentStep(msg)
}

// goNext validates the current step and, when clean, submits it. The gate
// only advances once the save result comes back fresh.
func (m *Model) goNext() (tea.Model, tea.Cmd) {
	d := m.currentDraft()

	if err := m.gate.Validate(d); err != nil {
		var verr *wizard.ValidationError
		if errors.As(err, &verr) {
			logger.Debug("step %d blocked by %d violations", verr.Step, len(verr.Violations))
		}
		m.showAllViolations()
		return m, nil
	}

	step := m.gate.Current()
	if err := m.controller.BeginSubmit(step); err != nil {
		// A save is already running; ignore the repeat press.
		return m, nil
	}
	m.draft = d

	gen := m.controller.Generation()
	ctrl := m.controller
	return m, func() tea.Msg {
		merged, err := ctrl.SubmitStep(context.Background(), step, d)
		if err != nil {
			return SaveFailedMsg{Step: step, Err: err, Gen: gen}
		}
		return StepSavedMsg{Step: step, Draft: merged, Gen: gen}
	}
}

// goBack reverts unsaved edits, moves back, and refetches the canonical
// record so the step shows what the server has.
func (m *Model) goBack() (tea.Model, tea.Cmd) {
	if m.gate.Current() == draft.StepBranding {
		return m, nil
	}
	m.gate.RequestBack()
	m.controller.Bump()
	m.draft = m.saved
	m.buttonFocused = false
	m.buttonBar = nil

	cmds := []tea.Cmd{m.initCurrentStep()}
	if m.draft.HasIdentity() {
		cmds = append(cmds, m.refetchCmd())
	}
	return m, tea.Batch(cmds...)
}

// jumpTo moves directly to an already-reachable step.
func (m *Model) jumpTo(step int) (tea.Model, tea.Cmd) {
	if step == m.gate.Current() {
		return m, nil
	}
	if err := m.gate.JumpTo(step); err != nil {
		logger.Debug("jump refused: %v", err)
		return m, nil
	}
	m.controller.Bump()
	m.draft = m.saved
	m.buttonFocused = false
	m.buttonBar = nil

	cmds := []tea.Cmd{m.initCurrentStep()}
	if m.draft.HasIdentity() {
		cmds = append(cmds, m.refetchCmd())
	}
	return m, tea.Batch(cmds...)
}

// refetchCmd fetches the canonical record tagged with the current
// generation.
func (m *Model) refetchCmd() tea.Cmd {
	gen := m.controller.Generation()
	ctrl := m.controller
	return func() tea.Msg {
		d, err := ctrl.Refetch(context.Background())
		return RefetchedMsg{Draft: d, Err: err, Gen: gen}
	}
}

// currentDraft returns the working draft including the current step's
// in-progress edits.
func (m *Model) currentDraft() draft.AgentDraft {
	switch m.gate.Current() {
	case draft.StepBranding:
		if m.brandingStep != nil {
			return m.brandingStep.Draft()
		}
	case draft.StepPersona:
		if m.personaStep != nil {
			return m.personaStep.Draft()
		}
	case draft.StepKnowledge:
		if m.knowledgeStep != nil {
			return m.knowledgeStep.Draft()
		}
	case draft.StepReview:
		if m.reviewStep != nil {
			return m.reviewStep.Draft()
		}
	}
	return m.draft
}

// initCurrentStep builds the component for the current step from the
// working draft.
func (m *Model) initCurrentStep() tea.Cmd {
	var cmd tea.Cmd
	switch m.gate.Current() {
	case draft.StepBranding:
		m.brandingStep = NewBrandingStep(m.draft, m.cfg.MaxAssetBytes, m.cfg.AssetBaseOrigin)
		cmd = m.brandingStep.Init()
	case draft.StepPersona:
		m.personaStep = NewPersonaStep(m.draft)
		cmd = m.personaStep.Init()
	case draft.StepKnowledge:
		m.knowledgeStep = NewKnowledgeStep(m.draft, m.cfg.MaxAssetBytes)
		cmd = m.knowledgeStep.Init()
	case draft.StepReview:
		m.reviewStep = NewReviewStep(m.draft, m.saved)
		cmd = m.reviewStep.Init()
	}
	m.updateCurrentStepSize()
	return cmd
}

// seedCurrentStep pushes a wholesale-replaced draft into the live step.
func (m *Model) seedCurrentStep() {
	switch m.gate.Current() {
	case draft.StepBranding:
		if m.brandingStep != nil {
			m.brandingStep.SetDraft(m.draft)
		}
	case draft.StepPersona:
		if m.personaStep != nil {
			m.personaStep.SetDraft(m.draft)
		}
	case draft.StepKnowledge:
		if m.knowledgeStep != nil {
			m.knowledgeStep.SetDraft(m.draft)
		}
	case draft.StepReview:
		if m.reviewStep != nil {
			m.reviewStep.SetDraft(m.draft, m.saved)
		}
	}
}

// updateCurrentStep forwards a message to the current step component.
func (m *Model) updateCurrentStep(msg tea.Msg) tea.Cmd {
	if m.gate.Completed() {
		if m.completionStep != nil {
			return m.completionStep.Update(msg)
		}
		return nil
	}
	switch m.gate.Current() {
	case draft.StepBranding:
		if m.brandingStep != nil {
			return m.brandingStep.Update(msg)
		}
	case draft.StepPersona:
		if m.personaStep != nil {
			return m.personaStep.Update(msg)
		}
	case draft.StepKnowledge:
		if m.knowledgeStep != nil {
			return m.knowledgeStep.Update(msg)
		}
	case draft.StepReview:
		if m.reviewStep != nil {
			return m.reviewStep.Update(msg)
		}
	}
	return nil
}

func (m *Model) showAllViolations() {
	switch m.gate.Current() {
	case draft.StepBranding:
		if m.brandingStep != nil {
			m.brandingStep.ShowAllViolations()
		}
	case draft.StepPersona:
		if m.personaStep != nil {
			m.personaStep.ShowAllViolations()
		}
	case draft.StepKnowledge:
		if m.knowledgeStep != nil {
			m.knowledgeStep.ShowAllViolations()
		}
	}
}

func (m *Model) getModalContentSize() (width, height int) {
	width = modalContentWidth

	height = m.height - 4
	if height < 20 {
		height = 20
	}
	if height > 40 {
		height = 40
	}
	height -= 10
	if height < 10 {
		height = 10
	}
	return width, height
}

func (m *Model) updateCurrentStepSize() {
	w, h := m.getModalContentSize()
	if m.gate.Completed() {
		if m.completionStep != nil {
			m.completionStep.SetSize(w, h)
		}
		return
	}
	switch m.gate.Current() {
	case draft.StepBranding:
		if m.brandingStep != nil {
			m.brandingStep.SetSize(w, h)
		}
	case draft.StepPersona:
		if m.personaStep != nil {
			m.personaStep.SetSize(w, h)
		}
	case draft.StepKnowledge:
		if m.knowledgeStep != nil {
			m.knowledgeStep.SetSize(w, h)
		}
	case draft.StepReview:
		if m.reviewStep != nil {
			m.reviewStep.SetSize(w, h)
		}
	}
}

// ensureButtonBar creates or reuses the button bar for the current step.
func (m *Model) ensureButtonBar() {
	step := m.gate.Current()
	if bar, ok := m.buttonBars[step]; ok {
		m.buttonBar = bar
		return
	}

	var buttons []Button
	if step > draft.StepBranding {
		buttons = append(buttons, Button{ID: ButtonBack, Label: "← Back"})
	}
	nextLabel := "Next →"
	if step == draft.StepReview {
		nextLabel = "Finish"
	}
	buttons = append(buttons, Button{ID: ButtonNext, Label: nextLabel})

	bar := NewButtonBar(buttons)
	bar.SetWidth(modalContentWidth)
	m.buttonBars[step] = bar
	m.buttonBar = bar
}

func (m *Model) activateButton(id ButtonID) (tea.Model, tea.Cmd) {
	switch id {
	case ButtonBack:
		return m.goBack()
	case ButtonNext:
		return m.goNext()
	}
	return m, nil
}

func (m *Model) focusStepContentFirst() {
	switch m.gate.Current() {
	case draft.StepBranding:
		if m.brandingStep != nil {
			m.brandingStep.Focus()
		}
	case draft.StepPersona:
		if m.personaStep != nil {
			m.personaStep.Focus()
		}
	case draft.StepKnowledge:
		if m.knowledgeStep != nil {
			m.knowledgeStep.Focus()
		}
	}
}

func (m *Model) focusStepContentLast() {
	switch m.gate.Current() {
	case draft.StepBranding:
		if m.brandingStep != nil {
			m.brandingStep.FocusLast()
		}
	case draft.StepPersona:
		if m.personaStep != nil {
			m.personaStep.FocusLast()
		}
	case draft.StepKnowledge:
		if m.knowledgeStep != nil {
			m.knowledgeStep.FocusLast()
		}
	}
}

func (m *Model) blurStepContent() {
	switch m.gate.Current() {
	case draft.StepBranding:
		if m.brandingStep != nil {
			m.brandingStep.Blur()
		}
	case draft.StepPersona:
		if m.personaStep != nil {
			m.personaStep.Blur()
		}
	case draft.StepKnowledge:
		if m.knowledgeStep != nil {
			m.knowledgeStep.Blur()
		}
	}
}

// View renders the wizard.
func (m *Model) View() tea.View {
	var view tea.View
	view.AltScreen = true

	if m.width == 0 || m.height == 0 {
		view.Content = lipgloss.NewLayer("")
		return view
	}

	content := m.renderCurrent()
	centered := lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)

	canvas := uv.NewScreenBuffer(m.width, m.height)
	uv.NewStyledString(centered).Draw(canvas, uv.Rectangle{
		Min: uv.Position{X: 0, Y: 0},
		Max: uv.Position{X: m.width, Y: m.height},
	})
	view.Content = lipgloss.NewLayer(canvas.Render())
	return view
}

func (m *Model) renderCurrent() string {
	t := theme.Current()
	st := t.S()

	if m.showSaveError {
		return m.renderSaveErrorModal()
	}

	if m.gate.Completed() {
		content := lipgloss.JoinVertical(lipgloss.Left,
			st.Title.Render("Agent Setup"),
			"",
			m.completionStep.View(),
		)
		return lipgloss.NewStyle().
			Width(modalWidth).
			Padding(2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.Primary)).
			Render(content)
	}

	title := st.Title.Render("Agent Setup")
	indicator := m.renderStepIndicator()

	var stepContent string
	switch m.gate.Current() {
	case draft.StepBranding:
		if m.brandingStep != nil {
			stepContent = m.brandingStep.View()
		}
	case draft.StepPersona:
		if m.personaStep != nil {
			stepContent = m.personaStep.View()
		}
	case draft.StepKnowledge:
		if m.knowledgeStep != nil {
			stepContent = m.knowledgeStep.View()
		}
	case draft.StepReview:
		if m.reviewStep != nil {
			stepContent = m.reviewStep.View()
		}
	}

	m.ensureButtonBar()
	buttonRow := m.buttonBar.Render()

	hint := "tab to navigate · 1-4 on the buttons to jump · esc to go back"
	if m.controller.SubmitInFlight() {
		hint = "saving…"
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		title,
		indicator,
		"",
		stepContent,
		"",
		buttonRow,
		"",
		st.Help.Render(hint),
	)

	return lipgloss.NewStyle().
		Width(modalWidth).
		Padding(2).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(t.Primary)).
		Render(content)
}

// renderStepIndicator draws the four step names with reachability state.
func (m *Model) renderStepIndicator() string {
	st := theme.Current().S()

	parts := make([]string, 0, draft.StepCount)
	for i, name := range stepNames {
		label := fmt.Sprintf("%d. %s", i+1, name)
		switch {
		case i == m.gate.Current():
			parts = append(parts, st.StepActive.Render(label))
		case i <= m.gate.HighestCompleted():
			parts = append(parts, st.StepDone.Render("✓ "+name))
		case m.gate.CanReach(i):
			parts = append(parts, st.Label.Render(label))
		default:
			parts = append(parts, st.StepLocked.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts[0], "  ", parts[1], "  ", parts[2], "  ", parts[3])
}

func (m *Model) renderSaveErrorModal() string {
	t := theme.Current()
	st := t.S()

	content := lipgloss.JoinVertical(lipgloss.Left,
		st.FieldError.Render("⚠ Save Failed"),
		"",
		st.Label.Render(m.saveError),
		"",
		st.Help.Render("Press Y to retry, N or ESC to keep editing"),
	)

	return lipgloss.NewStyle().
		Width(60).
		Padding(2).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(t.Error)).
		Render(content)
}
