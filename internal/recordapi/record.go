// Package recordapi is the HTTP client for the external agent-record API.
// The API persists the canonical agent configuration; each wizard step has
// its own POST endpoint and a GET endpoint returns the record for the
// authenticated owner.
package recordapi

import (
	"time"

	"github.com/forgeworks/botsmith/internal/draft"
)

// FAQEntry is a question/answer pair as the record API stores it.
type FAQEntry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// AgentRecord is the canonical agent configuration as returned by the
// record API. Asset fields are durable reference strings; the server never
// returns raw binaries.
type AgentRecord struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Description     string     `json:"description"`
	Domain          string     `json:"domain"`
	Color           string     `json:"color"`
	LogoURL         string     `json:"logo_url"`
	BannerURL       string     `json:"banner_url,omitempty"`
	Greeting        string     `json:"greeting"`
	Tone            string     `json:"tone"`
	CustomRules     string     `json:"custom_rules"`
	Starters        []string   `json:"conversation_starters"`
	Language        string     `json:"language"`
	AllowFreeText   bool       `json:"allow_free_text"`
	AllowBranching  bool       `json:"allow_branching"`
	FlowDescription string     `json:"flow_description"`
	FAQs            []FAQEntry `json:"faqs"`
	DocumentURLs    []string   `json:"document_urls"`
	CSVURL          string     `json:"csv_url,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// envelope is the record API's response wrapper.
type envelope struct {
	Success bool         `json:"success"`
	Data    *AgentRecord `json:"data,omitempty"`
	Message string       `json:"message,omitempty"`
}

// ToDraft converts a canonical record into a working draft. All asset
// fields come back as remote references.
func (r *AgentRecord) ToDraft() draft.AgentDraft {
	d := draft.AgentDraft{
		ID:              r.ID,
		Name:            r.Name,
		Description:     r.Description,
		Domain:          r.Domain,
		Color:           r.Color,
		Logo:            draft.RemoteAsset(r.LogoURL),
		Banner:          draft.RemoteAsset(r.BannerURL),
		Greeting:        r.Greeting,
		Tone:            draft.Tone(r.Tone),
		CustomRules:     r.CustomRules,
		Starters:        append([]string(nil), r.Starters...),
		Language:        r.Language,
		AllowFreeText:   r.AllowFreeText,
		AllowBranching:  r.AllowBranching,
		FlowDescription: r.FlowDescription,
		CSV:             draft.RemoteAsset(r.CSVURL),
	}
	for _, f := range r.FAQs {
		d.FAQs = append(d.FAQs, draft.FAQ{Question: f.Question, Answer: f.Answer})
	}
	for _, u := range r.DocumentURLs {
		d.Documents = append(d.Documents, draft.RemoteAsset(u))
	}
	return d
}
