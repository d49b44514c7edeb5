package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/w-h-a/ragchat"
)

// Source hands out the current RAGChat. *ragchat.Loader satisfies it.
type Source interface {
	Get(ctx context.Context) (*ragchat.RAGChat, error)
	Reset() error
}

type line struct {
	role ragchat.Role
	text string
}

// Each message carries the session id the command resolved, which differs
// from the requested one when that was empty.
type answerMsg struct {
	sessionId string
	text      string
}

type refreshMsg struct {
	sessionId string
	count     int
	err       error
}

type clearedMsg struct {
	sessionId string
	err       error
}

// Model is the Bubble Tea chat view.
type Model struct {
	ctx       context.Context
	source    Source
	sessionId string
	input     textinput.Model
	viewport  viewport.Model
	lines     []line
	status    string
	busy      bool
	ready     bool
}

func New(ctx context.Context, source Source, sessionId string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about a country and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		ctx:       ctx,
		source:    source,
		sessionId: sessionId,
		input:     ti,
		viewport:  vp,
		status:    "ctrl+r refresh data · ctrl+l clear history · enter ask · esc quit",
	}
}

func (m Model) Init() tea.Cmd { return textinput.Blink }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, ch := chatBoxStyle.GetFrameSize()
		_, ih := inputBoxStyle.GetFrameSize()
		reserved := 1 + 1 + ih + 1 + ch // header, status, input, spacer
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, msg.Height-reserved)
		m.viewport.SetContent(m.renderLines())
		return m, nil
	case answerMsg:
		m.busy = false
		m.adopt(msg.sessionId)
		m.lines = append(m.lines, line{role: ragchat.RoleAssistant, text: msg.text})
		m.status = "Ready."
		m.refreshView()
		return m, nil
	case refreshMsg:
		m.busy = false
		m.adopt(msg.sessionId)
		switch {
		case msg.err != nil:
			m.status = "error retrieving data"
		case msg.count == 0:
			m.status = "No countries found; keeping the existing data."
		default:
			m.status = fmt.Sprintf("Successfully scraped and stored %d countries!", msg.count)
		}
		return m, nil
	case clearedMsg:
		m.busy = false
		m.adopt(msg.sessionId)
		if msg.err != nil {
			m.status = "Could not clear the chat history."
			return m, nil
		}
		m.lines = nil
		m.status = "Chat history cleared."
		m.refreshView()
		return m, nil
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyCtrlR:
			if m.busy {
				return m, nil
			}
			m.busy = true
			m.status = "Scraping and storing data..."
			return m, m.refresh()
		case tea.KeyCtrlL:
			if m.busy {
				return m, nil
			}
			m.busy = true
			return m, m.clear()
		case tea.KeyEnter:
			q := strings.TrimSpace(m.input.Value())
			if len(q) == 0 || m.busy {
				return m, nil
			}
			m.busy = true
			m.input.SetValue("")
			m.lines = append(m.lines, line{role: ragchat.RoleUser, text: q})
			m.status = "Thinking..."
			m.refreshView()
			return m, m.ask(q)
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := headerStyle.Render("🌍 Country Information Chatbot")
	chat := chatBoxStyle.Render(m.viewport.View())
	input := inputBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + chat + "\n" + input + "\n" + status
}

func (m Model) ask(q string) tea.Cmd {
	ctx, source, sessionId := m.ctx, m.source, m.sessionId
	return func() tea.Msg {
		r, id, err := current(ctx, source, sessionId)
		if err != nil {
			slog.ErrorContext(ctx, "failed to build pipeline", "error", err)
			return answerMsg{text: "The chatbot is not configured correctly. Check the logs for details."}
		}
		answer, err := r.Chat(ctx, id, q)
		if err != nil {
			slog.ErrorContext(ctx, "failed to chat", "error", err)
			return answerMsg{sessionId: id, text: "Sorry, something went wrong."}
		}
		return answerMsg{sessionId: id, text: answer}
	}
}

func (m Model) refresh() tea.Cmd {
	ctx, source, sessionId := m.ctx, m.source, m.sessionId
	return func() tea.Msg {
		r, id, err := current(ctx, source, sessionId)
		if err != nil {
			return refreshMsg{err: err}
		}
		n, err := r.Refresh(ctx)
		return refreshMsg{sessionId: id, count: n, err: err}
	}
}

func (m Model) clear() tea.Cmd {
	ctx, source, sessionId := m.ctx, m.source, m.sessionId
	return func() tea.Msg {
		r, id, err := current(ctx, source, sessionId)
		if err != nil {
			return clearedMsg{err: err}
		}
		return clearedMsg{sessionId: id, err: r.ClearHistory(ctx, id)}
	}
}

func (m *Model) adopt(sessionId string) {
	if len(sessionId) > 0 {
		m.sessionId = sessionId
	}
}

func (m *Model) refreshView() {
	m.viewport.SetContent(m.renderLines())
	m.viewport.GotoBottom()
}

func (m Model) renderLines() string {
	if len(m.lines) == 0 {
		return mutedStyle.Render("Ask questions about countries around the world!")
	}
	var b strings.Builder
	for i, l := range m.lines {
		if i > 0 {
			b.WriteString("\n\n")
		}
		if l.role == ragchat.RoleUser {
			b.WriteString(userStyle.Render("You: "))
		} else {
			b.WriteString(botStyle.Render("Chatbot: "))
		}
		b.WriteString(l.text)
	}
	return lipgloss.NewStyle().Width(max(10, m.viewport.Width-4)).Render(b.String())
}

// current returns the live RAGChat and the id of the session it created or
// found for sessionId.
func current(ctx context.Context, source Source, sessionId string) (*ragchat.RAGChat, string, error) {
	r, err := source.Get(ctx)
	if err != nil {
		return nil, "", err
	}
	id, err := r.CreateSession(ctx, sessionId)
	if err != nil {
		return nil, "", err
	}
	return r, id, nil
}

// Run blocks until the user quits.
func Run(ctx context.Context, source Source, sessionId string) error {
	_, err := tea.NewProgram(New(ctx, source, sessionId), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

var (
	headerStyle   = lipgloss.NewStyle().Bold(true)
	chatBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	userStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	botStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)
