package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"codeguardian/internal/domain"
)

// CheckerPort is the TUI-facing subset of the plagiarism service.
type CheckerPort interface {
	CheckFile(path string) (domain.DocumentReport, error)
	Stats() domain.IndexStats
}

// Model is the Bubble Tea model for the interactive checker.
type Model struct {
	service  CheckerPort
	input    textinput.Model
	viewport viewport.Model
	report   *domain.DocumentReport
	status   string
	cursor   int
	ready    bool
}

// New creates a new TUI model instance.
func New(service CheckerPort) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Path to a code file, then Enter to check"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	stats := service.Stats()
	status := fmt.Sprintf("Index ready: %d vectors, dimension %d.", stats.TotalVectors, stats.Dimension)
	return Model{service: service, input: ti, viewport: vp, status: status}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		// account for frames around result and input boxes
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := inputBoxStyle.GetFrameSize()
		reserved := 2 + qh + 1 // header + status + input frame + spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.renderCurrentChunk())
		return m, nil
	case tea.KeyMsg:
		// Global quits
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			path := strings.TrimSpace(m.input.Value())
			if path != "" {
				report, err := m.service.CheckFile(path)
				if err != nil {
					m.status = "Error: " + err.Error()
					m.report = nil
				} else {
					m.report = &report
					m.cursor = 0
					m.status = fmt.Sprintf("Checked %s: plagiarism %.2f%%, originality %.2f%%, %d/%d chunks flagged",
						path, report.OverallPlagiarism, report.OverallOriginality, report.FlaggedChunks, report.TotalChunks)
				}
				m.viewport.SetContent(m.renderCurrentChunk())
				return m, nil
			}
		case "down":
			if m.report != nil && len(m.report.ChunkReports) > 0 {
				m.cursor = (m.cursor + 1) % len(m.report.ChunkReports)
				m.viewport.SetContent(m.renderCurrentChunk())
				return m, nil
			}
		case "up":
			if m.report != nil && len(m.report.ChunkReports) > 0 {
				m.cursor = (m.cursor - 1 + len(m.report.ChunkReports)) % len(m.report.ChunkReports)
				m.viewport.SetContent(m.renderCurrentChunk())
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the TUI layout and the current chunk report.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("CodeGuardian Plagiarism Checker")
	input := inputBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	results := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + results + "\n" + input + "\n" + status
}

func (m Model) renderCurrentChunk() string {
	if m.report == nil || len(m.report.ChunkReports) == 0 {
		return "No check run yet."
	}
	cr := m.report.ChunkReports[m.cursor]
	verdict := okStyle.Render(fmt.Sprintf("originality %.2f%%", cr.OriginalityScore))
	if cr.IsFlagged {
		verdict = flaggedStyle.Render(fmt.Sprintf("FLAGGED  plagiarism %.2f%%", cr.PlagiarismPercentage))
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Chunk %d/%d  words %d-%d  %s\n\n", m.cursor+1, len(m.report.ChunkReports), cr.StartWord, cr.EndWord, verdict)
	b.WriteString(truncate(cr.Text, 400))
	if len(cr.SimilarChunks) > 0 {
		b.WriteString("\n\nClosest matches:\n")
		for _, sim := range cr.SimilarChunks {
			fmt.Fprintf(&b, "  %6.2f%%  %s / %s (%s)\n",
				sim.SimilarityPercentage, sim.Metadata.TeamName, sim.Metadata.SubmissionName, sim.Metadata.SubmissionID)
		}
	}
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	flaggedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	okStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
