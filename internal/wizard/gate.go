// Package wizard is the navigation state machine for the setup flow:
// which step is current, which are reachable, and the validate-then-save
// contract that guards every forward move.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/forgeworks/botsmith/internal/draft"
	"github.com/forgeworks/botsmith/internal/draftsync"
	"github.com/forgeworks/botsmith/internal/logger"
	"github.com/gosimple/slug"
)

// ErrStepLocked is returned by JumpTo for steps beyond the reachable range.
var ErrStepLocked = errors.New("step is not reachable yet")

// ValidationError reports the violations that blocked a forward move.
type ValidationError struct {
	Step       int
	Violations []draft.Violation
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.Message
	}
	return fmt.Sprintf("step %d is not valid: %s", e.Step, strings.Join(msgs, "; "))
}

// Gate tracks wizard position and completion. Forward movement requires
// the current step to validate and save; backward movement and jumps to
// already-reached steps are always free. Like the sync controller, a Gate
// is confined to the UI event loop.
type Gate struct {
	controller *draftsync.Controller

	current          int
	highestCompleted int
	completed        bool
	shareSlug        string
}

// NewGate returns a gate positioned on the first step with nothing
// completed.
func NewGate(controller *draftsync.Controller) *Gate {
	return &Gate{controller: controller, highestCompleted: -1}
}

// Current returns the step the wizard is on.
func (g *Gate) Current() int { return g.current }

// HighestCompleted returns the largest step index that has been saved,
// or -1 when none has.
func (g *Gate) HighestCompleted() int { return g.highestCompleted }

// CanReach reports whether the given step may become current: every
// completed step plus the first uncompleted one.
func (g *Gate) CanReach(step int) bool {
	return step >= 0 && step < draft.StepCount && step <= g.highestCompleted+1
}

// JumpTo moves directly to a reachable step, or returns ErrStepLocked.
func (g *Gate) JumpTo(step int) error {
	if !g.CanReach(step) {
		return fmt.Errorf("%w: step %d", ErrStepLocked, step)
	}
	g.current = step
	return nil
}

// RequestBack moves one step back. On the first step it is a no-op.
func (g *Gate) RequestBack() {
	if g.current > 0 {
		g.current--
	}
}

// Validate runs the full validator set for the current step against the
// draft, returning a *ValidationError when anything is violated.
func (g *Gate) Validate(d draft.AgentDraft) error {
	if violations := draft.ValidateStep(g.current, d); len(violations) > 0 {
		return &ValidationError{Step: g.current, Violations: violations}
	}
	return nil
}

// Advance records the current step as completed and moves forward. On the
// last step it performs the terminal transition instead: the wizard is
// marked complete and the shareable slug is derived from the agent's name.
// Callers must only invoke Advance after the step's save succeeded.
func (g *Gate) Advance(d draft.AgentDraft) {
	if g.current > g.highestCompleted {
		g.highestCompleted = g.current
	}
	if g.current >= draft.StepCount-1 {
		g.completed = true
		g.shareSlug = slug.Make(d.Name)
		logger.Info("setup complete for agent %s (%s)", d.ID, g.shareSlug)
		return
	}
	g.current++
}

// RequestNext validates the current step, submits it through the sync
// controller, and advances on success. The returned draft carries the
// server's canonical values for the saved step; on any error the input
// draft comes back unchanged and the gate does not move.
func (g *Gate) RequestNext(ctx context.Context, d draft.AgentDraft) (draft.AgentDraft, error) {
	if err := g.Validate(d); err != nil {
		return d, err
	}
	merged, err := g.controller.SubmitStep(ctx, g.current, d)
	if err != nil {
		return d, err
	}
	g.Advance(merged)
	return merged, nil
}

// Completed reports whether the terminal transition has happened.
func (g *Gate) Completed() bool { return g.completed }

// Slug returns the shareable agent slug, set by the terminal transition.
func (g *Gate) Slug() string { return g.shareSlug }
