package setupwizard

import (
	"strings"
	"testing"

	"github.com/forgeworks/botsmith/internal/draft"
)

func reviewDraft() draft.AgentDraft {
	d := draft.New()
	d.ID = "agent-123"
	d.Name = "Acme Bot"
	d.Description = "Answers support questions"
	d.Domain = "Support"
	logo := draft.RemoteAsset("/uploads/logo.png")
	d = d.Apply(draft.Patch{Logo: &logo})
	d, _ = d.AddStarter("How do I get a refund?")
	d, _ = d.AddFAQ("Hours?", "Nine to five.")
	return d
}

func TestPayloadJSONShape(t *testing.T) {
	out := payloadJSON(reviewDraft())

	for _, want := range []string{
		`"id": "agent-123"`,
		`"name": "Acme Bot"`,
		`"logo": "/uploads/logo.png"`,
		`"conversation_starters"`,
		`"tone": "friendly"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("payload missing %s", want)
		}
	}

	if out != payloadJSON(reviewDraft()) {
		t.Error("payload rendering must be deterministic")
	}
}

func TestAssetHandle(t *testing.T) {
	if got := assetHandle(draft.Asset{}); got != "" {
		t.Errorf("empty asset handle = %q, want empty", got)
	}
	if got := assetHandle(draft.LocalAsset("logo.png", []byte("x"))); got != "logo.png (pending upload)" {
		t.Errorf("pending handle = %q", got)
	}
	if got := assetHandle(draft.RemoteAsset("/uploads/logo.png")); got != "/uploads/logo.png" {
		t.Errorf("remote handle = %q", got)
	}
}

func TestUnsavedDiff(t *testing.T) {
	saved := reviewDraft()
	if diff := unsavedDiff(saved, saved); diff != "" {
		t.Errorf("identical drafts should produce no diff, got %q", diff)
	}

	current := saved
	current.Name = "Acme Bot v2"
	diff := unsavedDiff(saved, current)
	if diff == "" {
		t.Fatal("edited draft should produce a diff")
	}
	if !strings.Contains(diff, `-  "name": "Acme Bot",`) {
		t.Errorf("diff missing removed line:\n%s", diff)
	}
	if !strings.Contains(diff, `+  "name": "Acme Bot v2",`) {
		t.Errorf("diff missing added line:\n%s", diff)
	}
}

func TestReviewViewShowsUnsavedChanges(t *testing.T) {
	saved := reviewDraft()
	current := saved
	current.Greeting = "Hello!"

	s := NewReviewStep(current, saved)
	s.SetSize(80, 30)
	view := s.View()
	if !strings.Contains(view, "Unsaved changes") {
		t.Error("view should flag unsaved changes")
	}

	s.SetDraft(saved, saved)
	if strings.Contains(s.View(), "Unsaved changes") {
		t.Error("view should not flag changes when drafts match")
	}
}

func TestReviewDraftPassthrough(t *testing.T) {
	d := reviewDraft()
	s := NewReviewStep(d, d)
	if got := s.Draft(); got.Name != d.Name || got.ID != d.ID {
		t.Error("review must return the draft unmodified")
	}
}
