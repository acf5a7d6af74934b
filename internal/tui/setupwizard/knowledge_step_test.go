package setupwizard

import (
	"strings"
	"testing"

	"github.com/forgeworks/botsmith/internal/draft"
)

func knowledgeAtZone(d draft.AgentDraft, zone int) *KnowledgeStep {
	s := NewKnowledgeStep(d, 1<<20)
	for i := 0; i < zone; i++ {
		pressKey(s, keyTab)
	}
	return s
}

func TestKnowledgeAddFAQ(t *testing.T) {
	s := NewKnowledgeStep(draft.New(), 1<<20)

	typeString(s, "How do refunds work?")
	pressKey(s, keyEnter) // question -> answer
	typeString(s, "Within 30 days, no questions asked.")
	pressKey(s, keyEnter) // adds the pair

	d := s.Draft()
	if len(d.FAQs) != 1 {
		t.Fatalf("FAQs = %d, want 1", len(d.FAQs))
	}
	if d.FAQs[0].Question != "How do refunds work?" {
		t.Errorf("Question = %q", d.FAQs[0].Question)
	}
	if s.question.Value() != "" || s.answer.Value() != "" {
		t.Error("inputs should clear after a successful add")
	}
	if s.focused != knowledgeQuestion {
		t.Error("focus should return to the question input")
	}
}

func TestKnowledgeEmptyAnswerRejected(t *testing.T) {
	s := NewKnowledgeStep(draft.New(), 1<<20)

	typeString(s, "Question without answer")
	pressKey(s, keyEnter)
	pressKey(s, keyEnter) // empty answer

	if len(s.Draft().FAQs) != 0 {
		t.Error("FAQ with empty answer must be rejected")
	}
	if !strings.Contains(s.View(), "answer cannot be empty") {
		t.Error("rejection should surface inline")
	}
}

func TestKnowledgeRemoveLastFAQ(t *testing.T) {
	d, _ := draft.New().AddFAQ("q1", "a1")
	d, _ = d.AddFAQ("q2", "a2")
	s := NewKnowledgeStep(d, 1<<20)

	pressKey(s, keyCtrlD)
	got := s.Draft().FAQs
	if len(got) != 1 || got[0].Question != "q1" {
		t.Errorf("FAQs = %v, want only the first left", got)
	}
}

func TestKnowledgeAttachDocument(t *testing.T) {
	path := writeTempFile(t, "guide.md", []byte("# Guide"))
	s := knowledgeAtZone(draft.New(), knowledgeDocument)

	typeString(s, path)
	pressKey(s, keyEnter)

	d := s.Draft()
	if len(d.Documents) != 1 {
		t.Fatalf("Documents = %d, want 1", len(d.Documents))
	}
	if d.Documents[0].State() != draft.AssetLocalPending {
		t.Error("attached document should be local-pending")
	}
	if d.Documents[0].Name() != "guide.md" {
		t.Errorf("document name = %q", d.Documents[0].Name())
	}
}

func TestKnowledgeAttachRejectsWrongExtension(t *testing.T) {
	path := writeTempFile(t, "data.exe", []byte("nope"))
	s := knowledgeAtZone(draft.New(), knowledgeDocument)

	typeString(s, path)
	pressKey(s, keyEnter)
	if len(s.Draft().Documents) != 0 {
		t.Error("wrong-extension file must not be attached")
	}
	if !strings.Contains(s.View(), "✗") {
		t.Error("rejection should surface inline")
	}
}

func TestKnowledgeAttachAndClearCSV(t *testing.T) {
	path := writeTempFile(t, "faq_export.csv", []byte("q,a\n"))
	s := knowledgeAtZone(draft.New(), knowledgeCSV)

	typeString(s, path)
	pressKey(s, keyEnter)
	if s.Draft().CSV.State() != draft.AssetLocalPending {
		t.Fatal("CSV should be attached as local-pending")
	}

	pressKey(s, keyCtrlD)
	if !s.Draft().CSV.IsEmpty() {
		t.Error("ctrl+d should clear the CSV")
	}
}

func TestKnowledgeViolationFollowsTouch(t *testing.T) {
	s := NewKnowledgeStep(draft.New(), 1<<20)

	if strings.Contains(s.View(), "Add at least one") {
		t.Error("violation should stay hidden before any interaction")
	}
	pressKey(s, keyTab)
	if !strings.Contains(s.View(), "Add at least one") {
		t.Error("violation should show once the step is touched")
	}
}

func TestKnowledgeValidWithAnySource(t *testing.T) {
	d, _ := draft.New().AddFAQ("q", "a")
	s := NewKnowledgeStep(d, 1<<20)
	s.ShowAllViolations()
	if strings.Contains(s.View(), "Add at least one") {
		t.Error("a populated knowledge base should not show the violation")
	}
}
