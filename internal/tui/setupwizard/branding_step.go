package setupwizard

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/forgeworks/botsmith/internal/assets"
	"github.com/forgeworks/botsmith/internal/draft"
	"github.com/forgeworks/botsmith/internal/logger"
	"github.com/forgeworks/botsmith/internal/tui/theme"
)

// Branding field indexes, in focus order.
const (
	brandingName = iota
	brandingDescription
	brandingDomain
	brandingColor
	brandingLogo
	brandingBanner
	brandingFieldCount
)

// brandingFieldKeys maps field indexes to validator field names.
var brandingFieldKeys = [brandingFieldCount]string{
	"name", "description", "domain", "color", "logo", "banner",
}

// BrandingStep edits the agent's identity: name, description, domain,
// accent color, and the logo/banner images. Violations for a field are
// shown live only once the field has been touched; a forward attempt
// reveals everything.
type BrandingStep struct {
	inputs  [brandingFieldCount]textinput.Model
	focused int
	d       draft.AgentDraft

	touched [brandingFieldCount]bool
	showAll bool

	// Per-field attach errors (bad extension, too large, unreadable)
	fileErr [brandingFieldCount]string

	// Decoded preview info keyed by asset token
	logoPreview   string
	bannerPreview string

	maxAssetBytes   int64
	assetBaseOrigin string
	width           int
	height          int
}

// NewBrandingStep creates the branding step seeded from the draft.
func NewBrandingStep(d draft.AgentDraft, maxAssetBytes int64, assetBaseOrigin string) *BrandingStep {
	s := &BrandingStep{d: d, maxAssetBytes: maxAssetBytes, assetBaseOrigin: assetBaseOrigin, width: 60}

	placeholders := [brandingFieldCount]string{
		"e.g. 'Acme Support Bot'",
		"What does this agent help with?",
		"e.g. 'Customer Support' or 'Sales'",
		"#007bff",
		"path to a logo image (.png, .jpg, .gif)",
		"path to a banner image (optional)",
	}
	for i := range s.inputs {
		ti := textinput.New()
		ti.Placeholder = placeholders[i]
		s.inputs[i] = ti
	}

	s.inputs[brandingName].SetValue(d.Name)
	s.inputs[brandingDescription].SetValue(d.Description)
	s.inputs[brandingDomain].SetValue(d.Domain)
	s.inputs[brandingColor].SetValue(d.Color)
	s.inputs[brandingName].Focus()

	return s
}

// SetDraft replaces the step's working draft, re-seeding the inputs. Used
// after a refetch wholesale-replaces the wizard draft.
func (s *BrandingStep) SetDraft(d draft.AgentDraft) {
	s.d = d
	s.inputs[brandingName].SetValue(d.Name)
	s.inputs[brandingDescription].SetValue(d.Description)
	s.inputs[brandingDomain].SetValue(d.Domain)
	s.inputs[brandingColor].SetValue(d.Color)
	s.inputs[brandingLogo].SetValue("")
	s.inputs[brandingBanner].SetValue("")
	s.logoPreview = ""
	s.bannerPreview = ""
}

// Draft returns the working draft with the current text values applied.
func (s *BrandingStep) Draft() draft.AgentDraft {
	name := strings.TrimSpace(s.inputs[brandingName].Value())
	description := strings.TrimSpace(s.inputs[brandingDescription].Value())
	domain := strings.TrimSpace(s.inputs[brandingDomain].Value())
	color := strings.TrimSpace(s.inputs[brandingColor].Value())
	return s.d.Apply(draft.Patch{
		Name:        &name,
		Description: &description,
		Domain:      &domain,
		Color:       &color,
	})
}

// ShowAllViolations reveals every violation regardless of touch state.
// Called by the wizard when a forward attempt fails validation.
func (s *BrandingStep) ShowAllViolations() { s.showAll = true }

func (s *BrandingStep) Init() tea.Cmd {
	return textinput.Blink
}

func (s *BrandingStep) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "enter":
			if s.focused == brandingLogo || s.focused == brandingBanner {
				return s.attachImage(s.focused)
			}
			return func() tea.Msg { return NextRequestedMsg{} }
		case "tab", "down":
			s.touched[s.focused] = true
			if s.focused == brandingFieldCount-1 {
				return func() tea.Msg { return TabExitForwardMsg{} }
			}
			s.focusField(s.focused + 1)
			return nil
		case "shift+tab", "up":
			s.touched[s.focused] = true
			if s.focused == 0 {
				return func() tea.Msg { return TabExitBackwardMsg{} }
			}
			s.focusField(s.focused - 1)
			return nil
		default:
			s.touched[s.focused] = true
			s.fileErr[s.focused] = ""
		}

	case AssetDecodedMsg:
		s.applyDecoded(msg)
		return nil
	}

	var cmd tea.Cmd
	s.inputs[s.focused], cmd = s.inputs[s.focused].Update(msg)
	return cmd
}

func (s *BrandingStep) focusField(i int) {
	s.inputs[s.focused].Blur()
	s.focused = i
	s.inputs[s.focused].Focus()
}

// attachImage validates and loads the image at the path typed into the
// given field. A rejected selection leaves the asset field untouched.
func (s *BrandingStep) attachImage(field int) tea.Cmd {
	path := strings.TrimSpace(s.inputs[field].Value())
	if path == "" {
		if field == brandingBanner {
			// Clearing the optional banner is allowed.
			empty := draft.Asset{}
			s.d = s.d.Apply(draft.Patch{Banner: &empty})
			s.bannerPreview = ""
		}
		return nil
	}

	info, err := os.Stat(path)
	if err != nil {
		s.fileErr[field] = fmt.Sprintf("cannot read %s", path)
		return nil
	}
	if err := assets.CheckSelection(info.Name(), info.Size(), assets.KindImage, s.maxAssetBytes); err != nil {
		s.fileErr[field] = err.Error()
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		s.fileErr[field] = fmt.Sprintf("cannot read %s", path)
		return nil
	}

	a := draft.LocalAsset(filepath.Base(path), data)
	fieldKey := brandingFieldKeys[field]
	if field == brandingLogo {
		s.d = s.d.Apply(draft.Patch{Logo: &a})
		s.logoPreview = ""
	} else {
		s.d = s.d.Apply(draft.Patch{Banner: &a})
		s.bannerPreview = ""
	}
	s.fileErr[field] = ""
	s.touched[field] = true
	logger.Debug("attached %s image %s (%d bytes)", fieldKey, a.Name(), len(data))

	// Decode off the loop; the token identifies the selection.
	return func() tea.Msg {
		preview, err := assets.Decode(context.Background(), a)
		return AssetDecodedMsg{Field: fieldKey, Preview: preview, Err: err}
	}
}

// applyDecoded installs a decode result if it still matches the current
// selection. A result from a replaced selection carries an old token and
// is dropped whatever order it arrived in.
func (s *BrandingStep) applyDecoded(msg AssetDecodedMsg) {
	if msg.Err != nil {
		logger.Debug("image decode failed: %v", msg.Err)
		return
	}
	label := fmt.Sprintf("%s %dx%d", msg.Preview.Format, msg.Preview.Width, msg.Preview.Height)
	switch msg.Field {
	case "logo":
		if s.d.Logo.Token() == msg.Preview.Token {
			s.logoPreview = label
		}
	case "banner":
		if s.d.Banner.Token() == msg.Preview.Token {
			s.bannerPreview = label
		}
	}
}

// visibleViolations returns the violation message per field, filtered by
// first-touch semantics.
func (s *BrandingStep) visibleViolations() map[string]string {
	out := make(map[string]string)
	for _, v := range draft.ValidateStep(draft.StepBranding, s.Draft()) {
		for i, key := range brandingFieldKeys {
			if v.Field == key && (s.showAll || s.touched[i]) {
				out[key] = v.Message
			}
		}
	}
	return out
}

func (s *BrandingStep) View() string {
	st := theme.Current().S()
	violations := s.visibleViolations()

	labels := [brandingFieldCount]string{
		"Name", "Description", "Domain expertise", "Accent color", "Logo", "Banner (optional)",
	}

	var rows []string
	for i, label := range labels {
		labelStyle := st.Label
		if i == s.focused {
			labelStyle = st.LabelFocused
		}
		rows = append(rows, labelStyle.Render(label))
		rows = append(rows, s.inputs[i].View())

		if i == brandingLogo {
			rows = append(rows, s.assetLine(s.d.Logo, s.logoPreview))
		}
		if i == brandingBanner {
			rows = append(rows, s.assetLine(s.d.Banner, s.bannerPreview))
		}

		if msg := s.fileErr[i]; msg != "" {
			rows = append(rows, st.FieldError.Render("✗ "+msg))
		} else if msg, ok := violations[brandingFieldKeys[i]]; ok {
			rows = append(rows, st.FieldError.Render("✗ "+msg))
		}
		rows = append(rows, "")
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// assetLine summarizes an asset field's current state.
func (s *BrandingStep) assetLine(a draft.Asset, preview string) string {
	st := theme.Current().S()
	switch a.State() {
	case draft.AssetLocalPending:
		line := "⏳ " + a.Name() + " (will upload on save)"
		if preview != "" {
			line += " · " + preview
		}
		return st.Subtitle.Render(line)
	case draft.AssetRemote:
		handle := a.Ref()
		if url, ok := assets.PreviewURL(a, s.assetBaseOrigin); ok {
			handle = url
		}
		return st.Success.Render("✓ saved: " + handle)
	default:
		return st.Help.Render("none attached")
	}
}

func (s *BrandingStep) SetSize(width, height int) {
	s.width = width
	s.height = height
	for i := range s.inputs {
		s.inputs[i].SetWidth(width - 4)
	}
}

func (s *BrandingStep) Focus() { s.inputs[s.focused].Focus() }

// FocusLast moves focus to the last field, for Shift+Tab from the buttons.
func (s *BrandingStep) FocusLast() { s.focusField(brandingFieldCount - 1) }

func (s *BrandingStep) Blur() { s.inputs[s.focused].Blur() }
