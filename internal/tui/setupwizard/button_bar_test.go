package setupwizard

import (
	"strings"
	"testing"
)

func TestButtonBarFocusTraversal(t *testing.T) {
	bar := NewButtonBar([]Button{
		{ID: ButtonBack, Label: "← Back"},
		{ID: ButtonNext, Label: "Next →"},
	})

	if got := bar.FocusedButton(); got != -1 {
		t.Errorf("new bar should be unfocused, got %v", got)
	}

	bar.FocusFirst()
	if got := bar.FocusedButton(); got != ButtonBack {
		t.Errorf("FocusFirst = %v, want ButtonBack", got)
	}

	if !bar.FocusNext() {
		t.Error("FocusNext should reach the next button")
	}
	if got := bar.FocusedButton(); got != ButtonNext {
		t.Errorf("FocusNext = %v, want ButtonNext", got)
	}

	if bar.FocusNext() {
		t.Error("FocusNext off the end should report false")
	}

	bar.FocusLast()
	if got := bar.FocusedButton(); got != ButtonNext {
		t.Errorf("FocusLast = %v, want ButtonNext", got)
	}
	if !bar.FocusPrev() {
		t.Error("FocusPrev should reach the previous button")
	}
	if bar.FocusPrev() {
		t.Error("FocusPrev off the front should report false")
	}

	bar.Blur()
	if got := bar.FocusedButton(); got != -1 {
		t.Errorf("Blur should clear focus, got %v", got)
	}
}

func TestButtonBarSkipsDisabled(t *testing.T) {
	bar := NewButtonBar([]Button{
		{ID: ButtonBack, Label: "← Back", Disabled: true},
		{ID: ButtonNext, Label: "Next →"},
	})

	bar.FocusFirst()
	if got := bar.FocusedButton(); got != ButtonNext {
		t.Errorf("FocusFirst should skip disabled button, got %v", got)
	}
	if bar.FocusPrev() {
		t.Error("FocusPrev should not land on a disabled button")
	}
}

func TestButtonBarRender(t *testing.T) {
	bar := NewButtonBar([]Button{
		{ID: ButtonBack, Label: "← Back"},
		{ID: ButtonNext, Label: "Finish"},
	})
	bar.SetWidth(40)

	out := bar.Render()
	if !strings.Contains(out, "← Back") {
		t.Error("render should contain the back label")
	}
	if !strings.Contains(out, "Finish") {
		t.Error("render should contain the next label")
	}
}
