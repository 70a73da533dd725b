package ui

// Package ui is the terminal front of the copilot: a sidebar with the
// conversation list grouped by recency, a message view, and an input bar.
// All state lives in the conversation manager; the model only holds the last
// published snapshot plus view concerns.

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"github.com/rs/zerolog/log"

	"github.com/workopilot/copilot/pkg/api"
	"github.com/workopilot/copilot/pkg/attachments"
	"github.com/workopilot/copilot/pkg/conversation"
	"github.com/workopilot/copilot/pkg/export"
	"github.com/workopilot/copilot/pkg/render"
)

const sidebarWidth = 30

// Exporter is the slice of the transport used by the export dialog.
type Exporter interface {
	GenerateExportSummary(ctx context.Context, req *api.ExportRequest) (*api.ExportResponse, error)
}

type focusArea int

const (
	focusInput focusArea = iota
	focusSidebar
	focusRename
)

type Model struct {
	manager  conversation.Manager
	exporter Exporter

	snapshot conversation.Snapshot

	theme    string
	onTheme  func(theme string) error
	renderer *glamour.TermRenderer

	textArea    textarea.Model
	viewport    viewport.Model
	renameInput textinput.Model
	spinner     spinner.Model

	keyMap KeyMap
	style  *Style

	focus      focusArea
	sidebarIdx int
	staged     []*attachments.Attachment
	status     string
	statusErr  bool
	// partial completion of an in-flight reply, keyed by the conversation it
	// was issued for so late partials never bleed into another chat
	streamConvID string
	streamText   string

	width  int
	height int
	ready  bool
}

type ModelOption func(*Model)

func WithExporter(exporter Exporter) ModelOption {
	return func(m *Model) {
		m.exporter = exporter
	}
}

func WithTheme(theme string, onTheme func(theme string) error) ModelOption {
	return func(m *Model) {
		m.theme = theme
		m.onTheme = onTheme
	}
}

func NewModel(manager conversation.Manager, options ...ModelOption) *Model {
	ret := &Model{
		manager: manager,
		theme:   "system",
		keyMap:  DefaultKeyMap,
		style:   DefaultStyles(),
		focus:   focusInput,
	}
	for _, option := range options {
		option(ret)
	}

	ret.textArea = textarea.New()
	ret.textArea.Placeholder = "Ask about your portfolio..."
	ret.textArea.SetHeight(3)
	ret.textArea.Focus()

	ret.renameInput = textinput.New()
	ret.renameInput.Placeholder = "New title"

	ret.spinner = spinner.New(spinner.WithSpinner(spinner.Dot))

	return ret
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick, m.initializeCmd())
}

func (m *Model) initializeCmd() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		m.manager.Initialize(ctx)
		s := m.manager.Snapshot()
		if s.ActiveID != "" {
			m.manager.LoadMessages(ctx, s.ActiveID)
		}
		return SnapshotMsg(m.manager.Snapshot())
	}
}

func (m *Model) sendCmd(content string, atts []*attachments.Attachment) tea.Cmd {
	return func() tea.Msg {
		m.manager.SendMessage(context.Background(), content, atts)
		return SnapshotMsg(m.manager.Snapshot())
	}
}

func (m *Model) selectCmd(conversationID string) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		m.manager.SelectChat(conversationID)
		m.manager.LoadMessages(ctx, conversationID)
		return SnapshotMsg(m.manager.Snapshot())
	}
}

func (m *Model) exportCmd(conv *conversation.Conversation) tea.Cmd {
	return func() tea.Msg {
		if m.exporter == nil {
			return ExportDoneMsg{Err: fmt.Errorf("export requires a connected backend")}
		}
		req := &api.ExportRequest{
			Messages:              export.MessagesForExport(conv),
			ExportFormat:          "markdown",
			IncludeVisualizations: true,
			Title:                 conv.Title,
		}
		resp, err := m.exporter.GenerateExportSummary(context.Background(), req)
		if err != nil {
			return ExportDoneMsg{Err: err}
		}
		html, err := export.BuildHTML(resp, render.ToHTML)
		if err != nil {
			return ExportDoneMsg{Err: err}
		}
		path := fmt.Sprintf("copilot-export-%s.html", time.Now().Format("20060102-150405"))
		if err := export.WriteFile(path, html); err != nil {
			return ExportDoneMsg{Err: err}
		}
		return ExportDoneMsg{Path: path}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.refreshViewport()

	case SnapshotMsg:
		m.snapshot = conversation.Snapshot(msg)
		m.clampSidebar()
		m.refreshViewport()

	case StreamStartMsg:
		m.streamConvID = msg.Meta.ConversationID
		m.streamText = ""

	case StreamPartialMsg:
		m.streamConvID = msg.Meta.ConversationID
		m.streamText = msg.Completion
		m.refreshViewport()

	case StreamDoneMsg, StreamErrorMsg:
		m.streamConvID = ""
		m.streamText = ""
		m.refreshViewport()

	case ExportDoneMsg:
		if msg.Err != nil {
			m.status = "export failed: " + msg.Err.Error()
			m.statusErr = true
		} else {
			m.status = "exported to " + msg.Path + " (print to PDF from your browser)"
			m.statusErr = false
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case tea.KeyMsg:
		cmd, handled := m.handleKey(msg)
		if handled {
			// Consumed keys must not also reach the focused component: the
			// submit Enter would otherwise insert a newline into the freshly
			// reset textarea.
			return m, cmd
		}
	}

	if m.focus == focusInput {
		var cmd tea.Cmd
		m.textArea, cmd = m.textArea.Update(msg)
		cmds = append(cmds, cmd)
	}
	if m.focus == focusRename {
		var cmd tea.Cmd
		m.renameInput, cmd = m.renameInput.Update(msg)
		cmds = append(cmds, cmd)
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// handleKey dispatches a key press to the intent it is bound to in the
// current focus area. handled reports whether the key was consumed; only
// unhandled keys are forwarded to the focused component afterwards.
func (m *Model) handleKey(msg tea.KeyMsg) (cmd tea.Cmd, handled bool) {
	if key.Matches(msg, m.keyMap.Quit) {
		return tea.Quit, true
	}

	switch m.focus {
	case focusRename:
		switch {
		case key.Matches(msg, m.keyMap.ConfirmRename):
			title := strings.TrimSpace(m.renameInput.Value())
			id := m.sidebarSelection()
			m.focus = focusSidebar
			if id != "" && title != "" {
				m.manager.RenameChat(id, title)
				return func() tea.Msg { return SnapshotMsg(m.manager.Snapshot()) }, true
			}
			return nil, true
		case key.Matches(msg, m.keyMap.CancelRename):
			m.focus = focusSidebar
			return nil, true
		}
		return nil, false

	case focusSidebar:
		switch {
		case key.Matches(msg, m.keyMap.ToggleSidebar):
			m.focus = focusInput
			return m.textArea.Focus(), true
		case key.Matches(msg, m.keyMap.NextChat):
			m.sidebarIdx++
			m.clampSidebar()
			return nil, true
		case key.Matches(msg, m.keyMap.PrevChat):
			m.sidebarIdx--
			m.clampSidebar()
			return nil, true
		case key.Matches(msg, m.keyMap.SelectChat):
			if id := m.sidebarSelection(); id != "" {
				return m.selectCmd(id), true
			}
			return nil, true
		case key.Matches(msg, m.keyMap.DeleteChat):
			if id := m.sidebarSelection(); id != "" {
				m.manager.DeleteChat(id)
				return func() tea.Msg { return SnapshotMsg(m.manager.Snapshot()) }, true
			}
			return nil, true
		case key.Matches(msg, m.keyMap.RenameChat):
			if m.sidebarSelection() != "" {
				m.renameInput.SetValue("")
				m.focus = focusRename
				return m.renameInput.Focus(), true
			}
			return nil, true
		case key.Matches(msg, m.keyMap.NewChat):
			m.manager.NewChat()
			m.focus = focusInput
			return tea.Batch(m.textArea.Focus(),
				func() tea.Msg { return SnapshotMsg(m.manager.Snapshot()) }), true
		}
		return nil, false

	default: // focusInput
		switch {
		case key.Matches(msg, m.keyMap.ToggleSidebar):
			m.textArea.Blur()
			m.focus = focusSidebar
			return nil, true
		case key.Matches(msg, m.keyMap.NewChat):
			m.manager.NewChat()
			return func() tea.Msg { return SnapshotMsg(m.manager.Snapshot()) }, true
		case key.Matches(msg, m.keyMap.Export):
			if conv := m.snapshot.Active(); conv != nil && len(conv.Messages) > 0 {
				m.status = "generating export..."
				m.statusErr = false
				return m.exportCmd(conv), true
			}
			return nil, true
		case key.Matches(msg, m.keyMap.CycleTheme):
			m.cycleTheme()
			return nil, true
		case key.Matches(msg, m.keyMap.SubmitMessage):
			return m.submit(), true
		}
		return nil, false
	}
}

func (m *Model) submit() tea.Cmd {
	content := strings.TrimSpace(m.textArea.Value())
	if content == "" {
		return nil
	}
	m.textArea.Reset()

	// "/attach <path>" stages a file for the next message instead of
	// sending.
	if path, ok := strings.CutPrefix(content, "/attach "); ok {
		f, err := attachments.FromPath(strings.TrimSpace(path))
		if err != nil {
			m.status = err.Error()
			m.statusErr = true
			return nil
		}
		staged := attachments.Validate([]attachments.File{f})
		m.staged = append(m.staged, staged...)
		if len(staged) == 0 {
			m.status = "unsupported file type: " + f.Name
			m.statusErr = true
		} else {
			m.status = fmt.Sprintf("%d file(s) staged for next message", len(m.staged))
			m.statusErr = false
		}
		return nil
	}

	atts := m.staged
	m.staged = nil
	m.status = ""
	return m.sendCmd(content, atts)
}

func (m *Model) cycleTheme() {
	switch m.theme {
	case "light":
		m.theme = "dark"
	case "dark":
		m.theme = "system"
	default:
		m.theme = "light"
	}
	m.renderer = nil // rebuilt lazily for the new theme
	if m.onTheme != nil {
		if err := m.onTheme(m.theme); err != nil {
			log.Warn().Err(err).Msg("failed to persist theme")
		}
	}
	m.status = "theme: " + m.theme
	m.statusErr = false
	m.refreshViewport()
}

func (m *Model) layout() {
	mainWidth := m.width - sidebarWidth
	if mainWidth < 20 {
		mainWidth = m.width
	}
	inputHeight := 5 // textarea plus border
	viewportHeight := m.height - inputHeight - 2
	if viewportHeight < 1 {
		viewportHeight = 1
	}

	m.textArea.SetWidth(mainWidth - 4)
	if !m.ready {
		m.viewport = viewport.New(mainWidth, viewportHeight)
		m.ready = true
	} else {
		m.viewport.Width = mainWidth
		m.viewport.Height = viewportHeight
	}
}

func (m *Model) markdownRenderer() *glamour.TermRenderer {
	if m.renderer == nil {
		width := m.viewport.Width - 2
		if width < 20 {
			width = 78
		}
		r, err := render.NewTermRenderer(m.theme, width)
		if err != nil {
			log.Warn().Err(err).Msg("failed to build markdown renderer")
			return nil
		}
		m.renderer = r
	}
	return m.renderer
}

func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	conv := m.snapshot.Active()
	if conv == nil {
		m.viewport.SetContent("No conversation selected. Type a message to start one.")
		return
	}

	var sb strings.Builder
	for _, msg := range conv.Messages {
		sb.WriteString(m.renderMessage(msg))
		sb.WriteString("\n\n")
	}
	if m.streamText != "" && m.streamConvID == conv.ID {
		sb.WriteString(wordwrap.String(m.streamText, m.viewport.Width-2))
		sb.WriteString("\n")
	}
	m.viewport.SetContent(sb.String())
	m.viewport.GotoBottom()
}

func (m *Model) renderMessage(msg *conversation.Message) string {
	if msg.Role == conversation.RoleUser {
		text := wordwrap.String(msg.Content, m.viewport.Width-2)
		ret := m.style.UserMessage.Render("You: ") + text
		for _, a := range msg.Attachments {
			ret += "\n" + m.style.SourceLine.Render("  attached: "+a.Name)
		}
		return ret
	}

	ret := render.Markdown(m.markdownRenderer(), msg.Content)
	if msg.Visualization != nil && msg.Visualization.Type != conversation.ChartTypeNone {
		ret += "\n" + m.style.SourceLine.Render(
			fmt.Sprintf("[%s visualization available, use export to include it]", msg.Visualization.Type))
	}
	for _, s := range msg.Sources {
		line := "source: " + s.Name
		if s.URL != "" {
			line += " (" + s.URL + ")"
		}
		ret += "\n" + m.style.SourceLine.Render(line)
	}
	if msg.FollowUpQuestion != "" {
		ret += "\n" + m.style.FollowUp.Render("Follow up: "+msg.FollowUpQuestion)
	}
	return ret
}

// sidebarSelection returns the conversation id currently highlighted in the
// sidebar.
func (m *Model) sidebarSelection() string {
	ids := m.sidebarOrder()
	if m.sidebarIdx < 0 || m.sidebarIdx >= len(ids) {
		return ""
	}
	return ids[m.sidebarIdx]
}

func (m *Model) sidebarOrder() []string {
	var ids []string
	for _, g := range conversation.GroupByDate(m.snapshot.Conversations, time.Now()) {
		for _, c := range g.Conversations {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

func (m *Model) clampSidebar() {
	n := len(m.snapshot.Conversations)
	if m.sidebarIdx >= n {
		m.sidebarIdx = n - 1
	}
	if m.sidebarIdx < 0 {
		m.sidebarIdx = 0
	}
}

func (m *Model) View() string {
	if !m.ready {
		return "loading..."
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, m.viewSidebar(), m.viewMain()),
		m.viewStatus(),
	)
}

func (m *Model) viewSidebar() string {
	var sb strings.Builder
	selected := m.sidebarSelection()

	idx := 0
	for _, g := range conversation.GroupByDate(m.snapshot.Conversations, time.Now()) {
		sb.WriteString(m.style.GroupHeader.Render(g.Label))
		sb.WriteString("\n")
		for _, c := range g.Conversations {
			title := c.Title
			if title == "" {
				title = "Untitled"
			}
			if len(title) > sidebarWidth-4 {
				title = title[:sidebarWidth-4] + "…"
			}
			style := m.style.ChatEntry
			switch {
			case m.focus == focusSidebar && c.ID == selected:
				style = m.style.SelectedChat
			case c.ID == m.snapshot.ActiveID:
				style = m.style.ActiveChat
			}
			sb.WriteString(style.Render(title))
			sb.WriteString("\n")
			idx++
		}
	}
	if idx == 0 {
		sb.WriteString(m.style.ChatEntry.Render("(no conversations)"))
	}

	return m.style.Sidebar.
		Width(sidebarWidth - 2).
		Height(m.height - 2).
		Render(sb.String())
}

func (m *Model) viewMain() string {
	var input string
	if m.focus == focusRename {
		input = m.style.InputFocused.Render("Rename: " + m.renameInput.View())
	} else if m.focus == focusInput {
		input = m.style.InputFocused.Render(m.textArea.View())
	} else {
		input = m.style.InputUnfocused.Render(m.textArea.View())
	}

	return lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), input)
}

func (m *Model) viewStatus() string {
	parts := []string{}
	if m.snapshot.Streaming {
		parts = append(parts, m.spinner.View()+" thinking")
	}
	if len(m.staged) > 0 {
		parts = append(parts, fmt.Sprintf("%d file(s) staged", len(m.staged)))
	}
	if m.status != "" {
		if m.statusErr {
			parts = append(parts, m.style.StatusError.Render(m.status))
		} else {
			parts = append(parts, m.status)
		}
	}
	if len(parts) == 0 {
		parts = append(parts, "tab: sidebar · ctrl+n: new chat · ctrl+e: export · ctrl+t: theme · ctrl+c: quit")
	}
	return m.style.StatusBar.Render(strings.Join(parts, "  ·  "))
}
