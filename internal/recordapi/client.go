package recordapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/forgeworks/botsmith/internal/assets"
	"github.com/forgeworks/botsmith/internal/logger"
)

// ErrNotFound is returned by Fetch when the owner has no agent record yet
// (a fresh session).
var ErrNotFound = errors.New("no agent record exists for this owner")

// Client talks to the record API. All methods are safe to retry: the
// per-step endpoints are idempotent for identical content (an external
// contract of the API, not enforced here).
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New creates a record API client for the given base URL. The token, if
// non-empty, is sent as a bearer token on every request.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// BrandingPayload is the step-0 submission: identity fields plus the logo
// and banner assets. Nil asset payloads mean the field is absent.
type BrandingPayload struct {
	Name        string
	Description string
	Domain      string
	Color       string
	Logo        *assets.SavePayload
	Banner      *assets.SavePayload
}

// PersonaPayload is the step-1 submission.
type PersonaPayload struct {
	Greeting        string   `json:"greeting"`
	Tone            string   `json:"tone"`
	CustomRules     string   `json:"custom_rules"`
	Starters        []string `json:"conversation_starters"`
	Language        string   `json:"language"`
	AllowFreeText   bool     `json:"allow_free_text"`
	AllowBranching  bool     `json:"allow_branching"`
	FlowDescription string   `json:"flow_description"`
}

// KnowledgePayload is the step-2 submission.
type KnowledgePayload struct {
	FAQs      []FAQEntry
	Documents []assets.SavePayload
	CSV       *assets.SavePayload
}

// CreateBranding submits the branding step. On first submission the server
// assigns the agent its identity; passing an id updates the existing record.
func (c *Client) CreateBranding(ctx context.Context, id string, p BrandingPayload) (*AgentRecord, error) {
	path := "/agents"
	if id != "" {
		path = "/agents/" + id + "/branding"
	}

	if uploadNeeded(p.Logo, p.Banner) {
		return c.postMultipart(ctx, path, func(w *multipart.Writer) error {
			fields := map[string]string{
				"name":        p.Name,
				"description": p.Description,
				"domain":      p.Domain,
				"color":       p.Color,
			}
			for k, v := range fields {
				if err := w.WriteField(k, v); err != nil {
					return err
				}
			}
			if err := writeAssetPart(w, "logo", p.Logo); err != nil {
				return err
			}
			return writeAssetPart(w, "banner", p.Banner)
		})
	}

	body := map[string]any{
		"name":        p.Name,
		"description": p.Description,
		"domain":      p.Domain,
		"color":       p.Color,
	}
	if p.Logo != nil {
		body["logo_ref"] = p.Logo.Reference
	}
	if p.Banner != nil {
		body["banner_ref"] = p.Banner.Reference
	}
	return c.postJSON(ctx, path, body)
}

// UpdatePersona submits the persona step for an existing agent.
func (c *Client) UpdatePersona(ctx context.Context, id string, p PersonaPayload) (*AgentRecord, error) {
	return c.postJSON(ctx, "/agents/"+id+"/persona", p)
}

// UpdateKnowledge submits the knowledge step for an existing agent.
// Uses multipart encoding when any document or the CSV is a pending upload.
func (c *Client) UpdateKnowledge(ctx context.Context, id string, p KnowledgePayload) (*AgentRecord, error) {
	path := "/agents/" + id + "/knowledge"

	anyUpload := p.CSV != nil && p.CSV.IsUpload()
	for i := range p.Documents {
		if p.Documents[i].IsUpload() {
			anyUpload = true
		}
	}

	if anyUpload {
		return c.postMultipart(ctx, path, func(w *multipart.Writer) error {
			faqJSON, err := json.Marshal(p.FAQs)
			if err != nil {
				return err
			}
			if err := w.WriteField("faqs", string(faqJSON)); err != nil {
				return err
			}
			for i := range p.Documents {
				doc := p.Documents[i]
				if doc.IsUpload() {
					if err := writeAssetPart(w, "documents", &doc); err != nil {
						return err
					}
				} else if err := w.WriteField("document_refs", doc.Reference); err != nil {
					return err
				}
			}
			return writeAssetPart(w, "csv", p.CSV)
		})
	}

	refs := make([]string, 0, len(p.Documents))
	for _, doc := range p.Documents {
		refs = append(refs, doc.Reference)
	}
	body := map[string]any{
		"faqs":          p.FAQs,
		"document_refs": refs,
	}
	if p.CSV != nil {
		body["csv_ref"] = p.CSV.Reference
	}
	return c.postJSON(ctx, path, body)
}

// Finalize marks the agent's setup complete (the trivial review-step
// submission).
func (c *Client) Finalize(ctx context.Context, id string) (*AgentRecord, error) {
	return c.postJSON(ctx, "/agents/"+id+"/finalize", map[string]any{})
}

// Fetch returns the canonical record for the authenticated owner, or
// ErrNotFound when none exists.
func (c *Client) Fetch(ctx context.Context) (*AgentRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/agents/owner", nil)
	if err != nil {
		return nil, fmt.Errorf("building fetch request: %w", err)
	}
	c.setAuth(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching agent record: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	return decodeRecord(resp)
}

func (c *Client) postJSON(ctx context.Context, path string, body any) (*AgentRecord, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.setAuth(req)

	logger.Debug("POST %s (%d bytes)", path, len(data))
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("posting %s: %w", path, err)
	}
	defer resp.Body.Close()

	return decodeRecord(resp)
}

func (c *Client) postMultipart(ctx context.Context, path string, build func(*multipart.Writer) error) (*AgentRecord, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := build(w); err != nil {
		return nil, fmt.Errorf("building multipart body: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalizing multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	c.setAuth(req)

	logger.Debug("POST %s (multipart, %d bytes)", path, buf.Len())
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("posting %s: %w", path, err)
	}
	defer resp.Body.Close()

	return decodeRecord(resp)
}

func (c *Client) setAuth(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

// decodeRecord parses the API envelope and returns the record or an error
// built from the envelope message.
func decodeRecord(resp *http.Response) (*AgentRecord, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("server returned status %d with unparseable body", resp.StatusCode)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !env.Success {
		msg := env.Message
		if msg == "" {
			msg = fmt.Sprintf("server returned status %d", resp.StatusCode)
		}
		return nil, errors.New(msg)
	}
	if env.Data == nil {
		return nil, errors.New("server response missing agent record")
	}
	return env.Data, nil
}

func uploadNeeded(payloads ...*assets.SavePayload) bool {
	for _, p := range payloads {
		if p != nil && p.IsUpload() {
			return true
		}
	}
	return false
}

// writeAssetPart writes an upload as a file part, a reference as a
// <field>_ref form value, and nothing for a nil payload.
func writeAssetPart(w *multipart.Writer, field string, p *assets.SavePayload) error {
	if p == nil {
		return nil
	}
	if !p.IsUpload() {
		if p.Reference == "" {
			return nil
		}
		return w.WriteField(field+"_ref", p.Reference)
	}

	part, err := w.CreateFormFile(field, p.Filename)
	if err != nil {
		return err
	}
	_, err = part.Write(p.Binary)
	return err
}
