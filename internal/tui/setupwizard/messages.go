package setupwizard

import (
	"github.com/forgeworks/botsmith/internal/assets"
	"github.com/forgeworks/botsmith/internal/draft"
)

// NextRequestedMsg is sent when a step wants the wizard to validate and
// save the current step.
type NextRequestedMsg struct{}

// BackRequestedMsg is sent when a step wants the wizard to go back.
type BackRequestedMsg struct{}

// StepSavedMsg carries a successful step save. Gen is the draft generation
// the save was issued under; stale saves are dropped.
type StepSavedMsg struct {
	Step  int
	Draft draft.AgentDraft
	Gen   uint64
}

// SaveFailedMsg carries a failed step save.
type SaveFailedMsg struct {
	Step int
	Err  error
	Gen  uint64
}

// RefetchedMsg carries the result of a canonical-record fetch.
type RefetchedMsg struct {
	Draft draft.AgentDraft
	Err   error
	Gen   uint64
}

// AssetDecodedMsg carries a finished local-image decode. The preview's
// token identifies which selection it belongs to.
type AssetDecodedMsg struct {
	Field   string
	Preview assets.Preview
	Err     error
}

// RetrySaveMsg is sent when the user chooses to retry a failed save.
type RetrySaveMsg struct{}

// RulesEditedMsg is sent when the external editor returns with new custom
// rules content.
type RulesEditedMsg struct {
	Content string
}

// TabExitForwardMsg is sent by a step when Tab moves past its last input.
type TabExitForwardMsg struct{}

// TabExitBackwardMsg is sent by a step when Shift+Tab moves before its
// first input.
type TabExitBackwardMsg struct{}
