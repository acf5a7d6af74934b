// Package draftsync owns the traffic between the working draft and the
// record API: per-step submissions, canonical refetches, and the
// bookkeeping (generations, in-flight flag) that keeps overlapping async
// results from corrupting the draft.
package draftsync

import (
	"context"
	"fmt"

	"github.com/forgeworks/botsmith/internal/assets"
	"github.com/forgeworks/botsmith/internal/draft"
	"github.com/forgeworks/botsmith/internal/logger"
	"github.com/forgeworks/botsmith/internal/recordapi"
)

// Controller coordinates draft submissions and refetches. Its fields are
// confined to the UI event loop: SubmitStep and Refetch may run inside a
// command goroutine because they only touch their arguments and the HTTP
// client, but Generation, Bump, BeginSubmit and EndSubmit must be called
// from the loop.
type Controller struct {
	client *recordapi.Client

	gen        uint64
	submitting bool
}

// New creates a controller over the given record API client.
func New(client *recordapi.Client) *Controller {
	return &Controller{client: client}
}

// Generation returns the current draft generation. Async results tagged
// with an older generation refer to a draft that no longer exists and must
// be discarded.
func (c *Controller) Generation() uint64 { return c.gen }

// Bump advances the generation, invalidating every async result issued
// before it. Call it whenever the draft is wholesale replaced.
func (c *Controller) Bump() uint64 {
	c.gen++
	return c.gen
}

// BeginSubmit marks a submission for the given step as in flight, or
// returns ErrSubmitInFlight when one already is. Every successful
// BeginSubmit must be paired with EndSubmit.
func (c *Controller) BeginSubmit(step int) error {
	if c.submitting {
		logger.Debug("submit for step %d refused, another in flight", step)
		return ErrSubmitInFlight
	}
	c.submitting = true
	return nil
}

// EndSubmit clears the in-flight flag once the submission's result has
// been handled.
func (c *Controller) EndSubmit() { c.submitting = false }

// SubmitInFlight reports whether a submission is currently outstanding.
func (c *Controller) SubmitInFlight() bool { return c.submitting }

// SubmitStep sends the step-owned subset of the draft to the record API
// and returns the draft with the server's canonical values merged in for
// that step. The merge is all or nothing: on any error the returned draft
// is the input unchanged and the error is a *SubmitError.
func (c *Controller) SubmitStep(ctx context.Context, step int, d draft.AgentDraft) (draft.AgentDraft, error) {
	if step != draft.StepBranding && !d.HasIdentity() {
		return d, &SubmitError{Step: step, Cause: ErrMissingIdentity}
	}

	var (
		rec *recordapi.AgentRecord
		err error
	)
	switch step {
	case draft.StepBranding:
		rec, err = c.client.CreateBranding(ctx, d.ID, brandingPayload(d))
	case draft.StepPersona:
		rec, err = c.client.UpdatePersona(ctx, d.ID, personaPayload(d))
	case draft.StepKnowledge:
		rec, err = c.client.UpdateKnowledge(ctx, d.ID, knowledgePayload(d))
	case draft.StepReview:
		rec, err = c.client.Finalize(ctx, d.ID)
	default:
		err = fmt.Errorf("unknown step %d", step)
	}
	if err != nil {
		return d, &SubmitError{Step: step, Cause: err}
	}

	logger.Debug("step %d saved, agent %s", step, rec.ID)
	return mergeStep(d, step, rec), nil
}

// Refetch fetches the canonical record and returns it as a wholesale
// replacement draft. Local edits on the old draft are dropped; the caller
// is expected to Bump the generation when it installs the result.
func (c *Controller) Refetch(ctx context.Context) (draft.AgentDraft, error) {
	rec, err := c.client.Fetch(ctx)
	if err != nil {
		return draft.AgentDraft{}, &FetchError{Cause: err}
	}
	logger.Debug("refetched agent %s", rec.ID)
	return rec.ToDraft(), nil
}

func brandingPayload(d draft.AgentDraft) recordapi.BrandingPayload {
	p := recordapi.BrandingPayload{
		Name:        d.Name,
		Description: d.Description,
		Domain:      d.Domain,
		Color:       d.Color,
	}
	if logo, ok := assets.ForSave(d.Logo); ok {
		p.Logo = &logo
	}
	if banner, ok := assets.ForSave(d.Banner); ok {
		p.Banner = &banner
	}
	return p
}

func personaPayload(d draft.AgentDraft) recordapi.PersonaPayload {
	return recordapi.PersonaPayload{
		Greeting:        d.Greeting,
		Tone:            string(d.Tone),
		CustomRules:     d.CustomRules,
		Starters:        append([]string(nil), d.Starters...),
		Language:        d.Language,
		AllowFreeText:   d.AllowFreeText,
		AllowBranching:  d.AllowBranching,
		FlowDescription: d.FlowDescription,
	}
}

func knowledgePayload(d draft.AgentDraft) recordapi.KnowledgePayload {
	p := recordapi.KnowledgePayload{}
	for _, f := range d.FAQs {
		p.FAQs = append(p.FAQs, recordapi.FAQEntry{Question: f.Question, Answer: f.Answer})
	}
	for _, doc := range d.Documents {
		if payload, ok := assets.ForSave(doc); ok {
			p.Documents = append(p.Documents, payload)
		}
	}
	if csv, ok := assets.ForSave(d.CSV); ok {
		p.CSV = &csv
	}
	return p
}

// mergeStep replaces the submitted step's fields with the server's
// canonical values and adopts the record's identity. Fields owned by other
// steps keep their local values, so unsaved edits elsewhere survive a save.
func mergeStep(d draft.AgentDraft, step int, rec *recordapi.AgentRecord) draft.AgentDraft {
	canon := rec.ToDraft()
	out := d.Apply(StepPatch(step, canon))
	out.ID = canon.ID
	return out
}

// StepPatch extracts the fields owned by a step from the given draft as a
// patch. Applying it to another draft folds in exactly that step's values
// and nothing else.
func StepPatch(step int, from draft.AgentDraft) draft.Patch {
	switch step {
	case draft.StepBranding:
		return draft.Patch{
			Name:        &from.Name,
			Description: &from.Description,
			Domain:      &from.Domain,
			Color:       &from.Color,
			Logo:        &from.Logo,
			Banner:      &from.Banner,
		}
	case draft.StepPersona:
		return draft.Patch{
			Greeting:        &from.Greeting,
			Tone:            &from.Tone,
			CustomRules:     &from.CustomRules,
			Starters:        &from.Starters,
			Language:        &from.Language,
			AllowFreeText:   &from.AllowFreeText,
			AllowBranching:  &from.AllowBranching,
			FlowDescription: &from.FlowDescription,
		}
	case draft.StepKnowledge:
		return draft.Patch{
			FAQs:      &from.FAQs,
			Documents: &from.Documents,
			CSV:       &from.CSV,
		}
	}
	return draft.Patch{}
}
