package setupwizard

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/forgeworks/botsmith/internal/config"
	"github.com/forgeworks/botsmith/internal/draft"
	"github.com/forgeworks/botsmith/internal/draftsync"
	"github.com/forgeworks/botsmith/internal/recordapi"
)

func newTestModel(t *testing.T) *Model {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	t.Cleanup(server.Close)

	cfg := &config.Config{
		APIBaseURL:    server.URL,
		APIToken:      "test-token",
		MaxAssetBytes: 1 << 20,
	}
	m := NewModel(cfg, draftsync.New(recordapi.New(server.URL, "test-token")))
	m.Init()
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m
}

func savedDraft() draft.AgentDraft {
	d := draft.New()
	d.ID = "agent-123"
	d.Name = "Acme Bot"
	d.Description = "Support agent"
	d.Domain = "Support"
	logo := draft.RemoteAsset("/uploads/logo.png")
	return d.Apply(draft.Patch{Logo: &logo})
}

func TestWizardInitialRender(t *testing.T) {
	m := newTestModel(t)

	out := m.renderCurrent()
	if !strings.Contains(out, "Agent Setup") {
		t.Error("render missing title")
	}
	if !strings.Contains(out, "1. Branding") {
		t.Error("render missing active step name")
	}
	if !strings.Contains(out, "Next →") {
		t.Error("render missing next button")
	}
	if strings.Contains(out, "← Back") {
		t.Error("first step should not offer a back button")
	}
}

func TestWizardStepSavedAdvances(t *testing.T) {
	m := newTestModel(t)

	m.Update(StepSavedMsg{
		Step:  draft.StepBranding,
		Draft: savedDraft(),
		Gen:   m.controller.Generation(),
	})

	if got := m.gate.Current(); got != draft.StepPersona {
		t.Fatalf("current step = %d, want persona", got)
	}
	if m.personaStep == nil {
		t.Fatal("persona step should be initialized after advancing")
	}
	if m.draft.ID != "agent-123" {
		t.Error("draft should adopt the canonical identity")
	}
	if m.saved.ID != "agent-123" {
		t.Error("saved snapshot should track the canonical record")
	}
}

func TestWizardStaleSaveDiscarded(t *testing.T) {
	m := newTestModel(t)

	gen := m.controller.Generation()
	m.controller.Bump()
	m.Update(StepSavedMsg{Step: draft.StepBranding, Draft: savedDraft(), Gen: gen})

	if got := m.gate.Current(); got != draft.StepBranding {
		t.Errorf("stale save advanced the gate to %d", got)
	}
	if m.draft.ID != "" {
		t.Error("stale save must not touch the draft")
	}
}

func TestWizardSaveFailureModal(t *testing.T) {
	m := newTestModel(t)

	m.Update(SaveFailedMsg{
		Step: draft.StepBranding,
		Err:  errors.New("record service is down"),
		Gen:  m.controller.Generation(),
	})

	if !m.showSaveError {
		t.Fatal("save failure should open the error modal")
	}
	out := m.renderCurrent()
	if !strings.Contains(out, "Save Failed") {
		t.Error("modal missing heading")
	}
	if !strings.Contains(out, "record service is down") {
		t.Error("modal missing the failure message")
	}
	if got := m.gate.Current(); got != draft.StepBranding {
		t.Error("failed save must not advance the gate")
	}

	// Y retries
	_, cmd := m.Update(tea.KeyPressMsg{Code: 'y', Text: "y"})
	if _, ok := runCmd(t, cmd).(RetrySaveMsg); !ok {
		t.Error("Y in the modal should request a retry")
	}

	// N dismisses
	m.Update(tea.KeyPressMsg{Code: 'n', Text: "n"})
	if m.showSaveError {
		t.Error("N should dismiss the modal")
	}
}

func TestWizardValidationBlocksNext(t *testing.T) {
	m := newTestModel(t)

	_, cmd := m.Update(NextRequestedMsg{})
	if cmd != nil {
		t.Error("invalid step should not start a save")
	}
	if !m.brandingStep.showAll {
		t.Error("failed forward attempt should reveal all violations")
	}
	if got := m.gate.Current(); got != draft.StepBranding {
		t.Error("invalid step must not advance")
	}
}

func TestWizardJumpToLockedStepIgnored(t *testing.T) {
	m := newTestModel(t)

	m.Update(TabExitForwardMsg{})
	m.Update(tea.KeyPressMsg{Code: '3', Text: "3"})
	if got := m.gate.Current(); got != draft.StepBranding {
		t.Errorf("jump to a locked step moved the gate to %d", got)
	}
}

func TestWizardJumpBackToCompletedStep(t *testing.T) {
	m := newTestModel(t)
	m.Update(StepSavedMsg{Step: draft.StepBranding, Draft: savedDraft(), Gen: m.controller.Generation()})

	m.Update(TabExitForwardMsg{})
	m.Update(tea.KeyPressMsg{Code: '1', Text: "1"})
	if got := m.gate.Current(); got != draft.StepBranding {
		t.Errorf("jump back moved the gate to %d, want branding", got)
	}
	if m.brandingStep == nil {
		t.Fatal("branding step should be rebuilt on jump")
	}
}

func TestWizardDigitsReachFocusedInput(t *testing.T) {
	m := newTestModel(t)

	for _, r := range "My  Agent!! 2025" {
		key := tea.KeyPressMsg{Code: r, Text: string(r)}
		if r == ' ' {
			key = tea.KeyPressMsg{Code: tea.KeySpace, Text: " "}
		}
		m.Update(key)
	}
	if got := m.brandingStep.Draft().Name; got != "My  Agent!! 2025" {
		t.Errorf("name = %q, digits should type into the focused field", got)
	}
	if got := m.gate.Current(); got != draft.StepBranding {
		t.Errorf("typing digits moved the gate to %d", got)
	}
}

func TestWizardEscQuitsOnFirstStep(t *testing.T) {
	m := newTestModel(t)

	_, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if _, ok := runCmd(t, cmd).(tea.QuitMsg); !ok {
		t.Error("esc on the first step should quit")
	}
	if !m.cancelled {
		t.Error("quitting mid-setup should mark the run cancelled")
	}
}

func TestWizardEscGoesBack(t *testing.T) {
	m := newTestModel(t)
	m.Update(StepSavedMsg{Step: draft.StepBranding, Draft: savedDraft(), Gen: m.controller.Generation()})

	m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if got := m.gate.Current(); got != draft.StepBranding {
		t.Errorf("esc should go back one step, gate at %d", got)
	}
}

func TestWizardRefetchReplacesDraft(t *testing.T) {
	m := newTestModel(t)

	typeString(m.brandingStep, "local edit")
	m.Update(RefetchedMsg{Draft: savedDraft(), Gen: m.controller.Generation()})

	if m.draft.Name != "Acme Bot" {
		t.Errorf("draft name = %q, want wholesale replacement", m.draft.Name)
	}
	if got := m.brandingStep.Draft().Name; got != "Acme Bot" {
		t.Errorf("branding step name = %q, want reseeded value", got)
	}
}

func TestWizardRefetchNotFoundKeepsFreshDraft(t *testing.T) {
	m := newTestModel(t)

	m.Update(RefetchedMsg{Err: recordapi.ErrNotFound, Gen: m.controller.Generation()})
	if m.draft.HasIdentity() {
		t.Error("not-found refetch should leave the fresh draft in place")
	}
}

func TestWizardStaleRefetchDiscarded(t *testing.T) {
	m := newTestModel(t)

	gen := m.controller.Generation()
	m.controller.Bump()
	m.Update(RefetchedMsg{Draft: savedDraft(), Gen: gen})
	if m.draft.HasIdentity() {
		t.Error("stale refetch result must be discarded")
	}
}

func TestWizardPreSaveRefetchDiscarded(t *testing.T) {
	m := newTestModel(t)

	preGen := m.controller.Generation()
	m.Update(StepSavedMsg{Step: draft.StepBranding, Draft: savedDraft(), Gen: preGen})

	// A refetch issued before the save resolves late with the old record.
	old := savedDraft()
	old.Name = "Stale Old Name"
	m.Update(RefetchedMsg{Draft: old, Gen: preGen})

	if m.draft.Name != "Acme Bot" {
		t.Errorf("name = %q, a refetch issued before a successful save must be discarded", m.draft.Name)
	}
	if got := m.gate.Current(); got != draft.StepPersona {
		t.Errorf("gate at %d, want persona", got)
	}
}

func TestWizardForwardAdvanceRefetches(t *testing.T) {
	m := newTestModel(t)

	_, cmd := m.Update(StepSavedMsg{Step: draft.StepBranding, Draft: savedDraft(), Gen: m.controller.Generation()})
	batch, ok := runCmd(t, cmd).(tea.BatchMsg)
	if !ok {
		t.Fatal("advancing should batch the step init with a refetch")
	}

	found := false
	for _, c := range batch {
		if r, ok := c().(RefetchedMsg); ok {
			found = true
			if r.Gen != m.controller.Generation() {
				t.Error("refetch must carry the post-save generation")
			}
		}
	}
	if !found {
		t.Error("forward advance should refetch the canonical record")
	}
}

func TestWizardSavedSnapshotExcludesLocalEdits(t *testing.T) {
	m := newTestModel(t)
	m.draft.Greeting = "local greeting edit"

	// The merge keeps fields owned by steps other than the submitted one.
	merged := savedDraft()
	merged.Greeting = "local greeting edit"
	m.Update(StepSavedMsg{Step: draft.StepBranding, Draft: merged, Gen: m.controller.Generation()})

	if m.draft.Greeting != "local greeting edit" {
		t.Error("working draft should keep the unsaved persona edit")
	}
	if m.saved.Greeting != "" {
		t.Errorf("saved.Greeting = %q, snapshot must hold canonical values only", m.saved.Greeting)
	}
	if m.saved.Name != "Acme Bot" {
		t.Error("snapshot should adopt the submitted step's canonical fields")
	}
	if m.saved.ID != "agent-123" {
		t.Error("snapshot should adopt the canonical identity")
	}
}

func TestWizardTabFocusesButtons(t *testing.T) {
	m := newTestModel(t)

	m.Update(TabExitForwardMsg{})
	if !m.buttonFocused {
		t.Fatal("tab exit should focus the button bar")
	}
	if got := m.buttonBar.FocusedButton(); got != ButtonNext {
		t.Errorf("focused button = %v, want next (only button on step one)", got)
	}

	// Tab off the end of the bar hands focus back to the step
	m.Update(tea.KeyPressMsg{Code: tea.KeyTab})
	if m.buttonFocused {
		t.Error("tab off the bar should return focus to the step")
	}
}

func TestWizardCompletionAfterFinalSave(t *testing.T) {
	m := newTestModel(t)

	d := savedDraft()
	for step := draft.StepBranding; step < draft.StepCount; step++ {
		m.Update(StepSavedMsg{Step: step, Draft: d, Gen: m.controller.Generation()})
	}

	if !m.gate.Completed() {
		t.Fatal("saving every step should complete the wizard")
	}
	if m.completionStep == nil {
		t.Fatal("completion screen should be shown")
	}
	out := m.renderCurrent()
	if !strings.Contains(out, "Setup complete") {
		t.Error("completion render missing headline")
	}
	if !strings.Contains(out, "/chat/acme-bot") {
		t.Error("completion render missing the share slug")
	}
}
