// Package preview is the local chat widget: a conversation with the
// configured agent, driven by the reply webhook and persisted in the
// embedded message store so the transcript survives restarts.
package preview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/textinput"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/glamour/v2"
	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"

	"github.com/forgeworks/botsmith/internal/chat"
	"github.com/forgeworks/botsmith/internal/config"
	"github.com/forgeworks/botsmith/internal/draft"
	"github.com/forgeworks/botsmith/internal/logger"
	"github.com/forgeworks/botsmith/internal/nats"
	"github.com/forgeworks/botsmith/internal/recordapi"
	"github.com/forgeworks/botsmith/internal/tui/theme"
)

// transcriptLoadedMsg delivers the stored transcript at startup.
type transcriptLoadedMsg struct {
	msgs []chat.Message
	err  error
}

// replyMsg delivers the assistant's reply to a sent message.
type replyMsg struct {
	msg chat.Message
}

// clearedMsg reports the outcome of a transcript refresh.
type clearedMsg struct {
	err error
}

// Model is the chat preview widget.
type Model struct {
	agent      draft.AgentDraft
	client     *chat.Client
	transcript *chat.Transcript

	viewport viewport.Model
	input    textinput.Model

	msgs    []chat.Message
	waiting bool

	width  int
	height int
}

// NewModel creates the preview over a fetched agent record.
func NewModel(agent draft.AgentDraft, client *chat.Client, transcript *chat.Transcript) *Model {
	vp := viewport.New(
		viewport.WithWidth(78),
		viewport.WithHeight(20),
	)
	vp.MouseWheelEnabled = true

	ti := textinput.New()
	ti.Placeholder = "Type a message, enter to send"
	ti.Focus()

	return &Model{
		agent:      agent,
		client:     client,
		transcript: transcript,
		viewport:   vp,
		input:      ti,
	}
}

// Run is the entry point for the chat preview. It fetches the configured
// agent, boots the embedded store, and hands the terminal to the widget.
func Run(cfg *config.Config) error {
	ctx := context.Background()

	rec, err := recordapi.New(cfg.APIBaseURL, cfg.APIToken).Fetch(ctx)
	if err != nil {
		if errors.Is(err, recordapi.ErrNotFound) {
			return errors.New("no agent configured yet, run 'botsmith setup' first")
		}
		return fmt.Errorf("fetching agent: %w", err)
	}

	ns, err := nats.StartEmbedded(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("starting message store: %w", err)
	}
	nc, err := nats.ConnectInProcess(ns)
	if err != nil {
		ns.Shutdown()
		return fmt.Errorf("connecting to message store: %w", err)
	}
	defer func() {
		if err := nats.Shutdown(nc, ns); err != nil {
			logger.Warn("message store shutdown: %v", err)
		}
	}()

	js, err := nats.JetStream(nc)
	if err != nil {
		return fmt.Errorf("opening jetstream: %w", err)
	}
	kv, err := nats.SetupChatBucket(ctx, js)
	if err != nil {
		return fmt.Errorf("opening chat bucket: %w", err)
	}

	m := NewModel(rec.ToDraft(), chat.NewClient(cfg.ChatWebhookURL), chat.NewTranscript(kv))
	if _, err := tea.NewProgram(m).Run(); err != nil {
		return fmt.Errorf("chat preview failed: %w", err)
	}
	return nil
}

// Init loads the persisted transcript.
func (m *Model) Init() tea.Cmd {
	tr := m.transcript
	id := m.agent.ID
	return tea.Batch(textinput.Blink, func() tea.Msg {
		msgs, err := tr.Load(context.Background(), id)
		return transcriptLoadedMsg{msgs: msgs, err: err}
	})
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "ctrl+r":
			return m, m.clearCmd()
		case "enter":
			return m, m.send()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.SetWidth(msg.Width - 4)
		vh := msg.Height - 7
		if vh < 5 {
			vh = 5
		}
		m.viewport.SetHeight(vh)
		m.input.SetWidth(msg.Width - 6)
		m.refreshViewport()
		return m, nil

	case transcriptLoadedMsg:
		if msg.err != nil {
			logger.Warn("loading transcript: %v", msg.err)
			return m, nil
		}
		m.msgs = msg.msgs
		m.refreshViewport()
		return m, nil

	case replyMsg:
		m.waiting = false
		m.msgs = append(m.msgs, msg.msg)
		m.refreshViewport()
		return m, nil

	case clearedMsg:
		if msg.err != nil {
			logger.Warn("clearing transcript: %v", msg.err)
			return m, nil
		}
		m.msgs = nil
		m.refreshViewport()
		return m, nil
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// send posts the typed message. The visitor entry shows immediately; the
// webhook call and both persistence writes run off the loop.
func (m *Model) send() tea.Cmd {
	text := strings.TrimSpace(m.input.Value())
	if text == "" || m.waiting {
		return nil
	}
	m.input.SetValue("")
	m.waiting = true

	visitor := chat.Message{Role: chat.RoleVisitor, Content: text, At: time.Now()}
	m.msgs = append(m.msgs, visitor)
	m.refreshViewport()

	client := m.client
	tr := m.transcript
	id := m.agent.ID
	return func() tea.Msg {
		ctx := context.Background()
		if err := tr.Append(ctx, id, visitor); err != nil {
			logger.Warn("persisting visitor message: %v", err)
		}

		replyText, err := client.Send(ctx, text)
		if err != nil {
			logger.Warn("chat webhook failed: %v", err)
			replyText = chat.FallbackReply
		}

		assistant := chat.Message{Role: chat.RoleAssistant, Content: replyText, At: time.Now()}
		if err := tr.Append(ctx, id, assistant); err != nil {
			logger.Warn("persisting assistant message: %v", err)
		}
		return replyMsg{msg: assistant}
	}
}

// clearCmd wipes the persisted transcript and restarts the conversation.
func (m *Model) clearCmd() tea.Cmd {
	tr := m.transcript
	id := m.agent.ID
	return func() tea.Msg {
		return clearedMsg{err: tr.Clear(context.Background(), id)}
	}
}

func (m *Model) refreshViewport() {
	m.viewport.SetContent(m.renderMessages())
	m.viewport.GotoBottom()
}

// renderMessages renders the conversation: the greeting and starters while
// the transcript is empty, then the exchanged messages. Assistant replies
// render as markdown.
func (m *Model) renderMessages() string {
	st := theme.Current().S()
	width := m.viewport.Width()
	if width <= 0 {
		width = 78
	}

	var b strings.Builder
	if m.agent.Greeting != "" {
		b.WriteString(st.ChatAssistant.Render(m.agent.Name + ": "))
		b.WriteString(m.agent.Greeting)
		b.WriteString("\n")
	}
	if len(m.msgs) == 0 && len(m.agent.Starters) > 0 {
		b.WriteString("\n")
		b.WriteString(st.Help.Render("Try asking:"))
		b.WriteString("\n")
		for _, s := range m.agent.Starters {
			b.WriteString(st.Help.Render("  · " + s))
			b.WriteString("\n")
		}
	}

	for _, msg := range m.msgs {
		b.WriteString("\n")
		if msg.Role == chat.RoleVisitor {
			b.WriteString(st.ChatVisitor.Render("You: "))
			b.WriteString(msg.Content)
		} else {
			b.WriteString(st.ChatAssistant.Render(m.agent.Name + ":"))
			b.WriteString("\n")
			b.WriteString(renderMarkdown(msg.Content, width))
		}
		b.WriteString("\n")
	}

	if m.waiting {
		b.WriteString("\n")
		b.WriteString(st.Help.Render(m.agent.Name + " is typing…"))
		b.WriteString("\n")
	}
	return b.String()
}

// renderMarkdown renders an assistant reply as markdown, falling back to
// the raw text when rendering fails.
func renderMarkdown(content string, width int) string {
	if width > 120 {
		width = 120
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return content
	}
	rendered, err := r.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimSuffix(rendered, "\n")
}

func (m *Model) View() tea.View {
	var view tea.View
	view.AltScreen = true

	if m.width == 0 || m.height == 0 {
		view.Content = lipgloss.NewLayer("")
		return view
	}

	t := theme.Current()
	st := t.S()

	accent := t.Primary
	if m.agent.Color != "" {
		accent = m.agent.Color
	}
	header := lipgloss.NewStyle().
		Foreground(lipgloss.Color(accent)).
		Bold(true).
		Render("● " + m.agent.Name + " — chat preview")

	content := lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		m.viewport.View(),
		"",
		m.input.View(),
		st.Help.Render("enter to send · ctrl+r to restart the conversation · esc to quit"),
	)
	framed := lipgloss.NewStyle().Padding(1, 2).Render(content)

	canvas := uv.NewScreenBuffer(m.width, m.height)
	uv.NewStyledString(framed).Draw(canvas, uv.Rect(0, 0, m.width, m.height))
	view.Content = lipgloss.NewLayer(canvas.Render())
	return view
}
