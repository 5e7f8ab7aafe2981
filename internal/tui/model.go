package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"graphrag/internal/rag"
)

// ChatPort is the TUI-facing subset of the turn service.
type ChatPort interface {
	Answer(ctx context.Context, question string) (*rag.Turn, error)
	Ingest(ctx context.Context, paths []string) (int, error)
	HasGraph() bool
	Count() int
}

type message struct {
	role    string
	content string
}

// Model is the Bubble Tea model for the chat application.
type Model struct {
	service  ChatPort
	input    textinput.Model
	viewport viewport.Model
	messages []message
	status   string
	ready    bool
}

// New creates a new chat model with the instructions banner as the
// first assistant message.
func New(service ChatPort) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Your question"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	m := Model{service: service, input: ti, viewport: vp, status: "Ready."}
	m.messages = append(m.messages, message{role: "assistant", content: m.instructions()})
	return m
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, ch := chatBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 1 + 1 + qh + 1 // header, status, input box, spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-ch)
		m.viewport.SetContent(m.renderHistory())
		m.viewport.GotoBottom()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q == "" {
				break
			}
			m.input.SetValue("")
			m = m.submit(q)
			m.viewport.SetContent(m.renderHistory())
			m.viewport.GotoBottom()
			return m, nil
		case "up":
			m.viewport.LineUp(3)
			return m, nil
		case "down":
			m.viewport.LineDown(3)
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit runs one user turn: an upload request when the input starts
// with "#", a question otherwise.
func (m Model) submit(q string) Model {
	ctx := context.Background()
	if strings.HasPrefix(q, "#") {
		path := strings.TrimSpace(strings.TrimPrefix(q, "#"))
		m.messages = append(m.messages, message{role: "user", content: fmt.Sprintf("Upload request for _%s_", path)})
		n, err := m.service.Ingest(ctx, []string{path})
		if err != nil {
			m.status = "Error: " + err.Error()
			m.messages = append(m.messages, message{role: "assistant", content: "Upload failed: " + err.Error()})
			return m
		}
		m.status = fmt.Sprintf("Indexed %d sections", n)
		m.messages = append(m.messages, message{role: "assistant", content: fmt.Sprintf("Added _%s_ to index (%d sections)", path, n)})
		return m
	}

	m.messages = append(m.messages, message{role: "user", content: q})
	turn, err := m.service.Answer(ctx, q)
	if err != nil {
		m.status = "Error: " + err.Error()
		m.messages = append(m.messages, message{role: "assistant", content: "Error: " + err.Error()})
		return m
	}
	if turn.Rendered != "" {
		m.messages = append(m.messages, message{role: "assistant", content: turn.Rendered})
	}
	m.messages = append(m.messages, message{role: "assistant", content: turn.Answer})
	if turn.GraphContext {
		m.status = "Answered from graph context"
	} else {
		m.status = "Answered from vector retrieval"
	}
	return m
}

// View renders the chat layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("GraphRAG")
	chat := chatBoxStyle.Render(m.viewport.View())
	input := queryBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + chat + "\n" + input + "\n" + status
}

func (m Model) renderHistory() string {
	var b strings.Builder
	for i, msg := range m.messages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		switch msg.role {
		case "user":
			b.WriteString(userStyle.Render("you: ") + msg.content)
		default:
			b.WriteString(assistantStyle.Render("assistant: ") + msg.content)
		}
	}
	return b.String()
}

// instructions builds the welcome message, including graph query
// examples when the index carries a graph.
func (m Model) instructions() string {
	var b strings.Builder
	b.WriteString("Ask a question such as `Who created Linux?`\n\n")
	if m.service.Count() == 0 {
		b.WriteString("**The index is currently empty**\n\n")
	}
	b.WriteString("Data can be added to this index as follows.\n\n")
	b.WriteString("- `# file path or glob`\n")
	if m.service.HasGraph() {
		b.WriteString("\nThis index also supports GraphRAG. Examples are shown below.\n")
		b.WriteString("- `gq: Tell me about Linux`\n")
		b.WriteString("  - Graph rag query, the `gq: ` prefix enables graph rag\n")
		b.WriteString("- `linux -> macos -> microsoft windows`\n")
		b.WriteString("  - Graph path query for a list of concepts separated by `->`\n")
		b.WriteString("- `linux -> macos -> microsoft windows gq: Tell me about Linux`\n")
		b.WriteString("  - Graph path with a graph rag query\n")
	}
	return b.String()
}

var (
	chatBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	userStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
