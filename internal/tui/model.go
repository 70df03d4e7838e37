package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/naka-gawa/gh-log/internal/domain"
)

const (
	defaultWidth  = 100
	defaultHeight = 30
)

type projection struct {
	mode    Mode
	groupBy GroupBy
}

func projectionOf(st State) projection {
	if st.Mode != ModeDetail {
		return projection{mode: st.Mode}
	}
	return projection{mode: ModeDetail, groupBy: st.GroupBy}
}

// Model is the bubbletea model for the dashboard. Rendered lines for every
// projection are cached per terminal width, so key presses only slice the
// cache.
type Model struct {
	summary *domain.MonthSummary
	state   State
	width   int
	height  int
	lines   map[projection][]string
}

// New builds a dashboard for summary starting on the summary view.
func New(summary *domain.MonthSummary) *Model {
	m := &Model{summary: summary, width: defaultWidth, height: defaultHeight}
	m.rebuild()
	return m
}

// State returns the current navigational state.
func (m *Model) State() State {
	return m.state
}

func (m *Model) rebuild() {
	m.lines = map[projection][]string{
		{mode: ModeSummary}:                 summaryLines(m.summary, m.width),
		{mode: ModeDetail, groupBy: ByWeek}: detailByWeekLines(m.summary, m.width),
		{mode: ModeDetail, groupBy: ByRepo}: detailByRepoLines(m.summary, m.width),
		{mode: ModeTail}:                    tailLines(m.summary, m.width),
	}
}

func (m *Model) content() []string {
	return m.lines[projectionOf(m.state)]
}

func (m *Model) chrome() (header, controls string) {
	return renderHeader(m.summary, m.state, m.width), renderControls(m.state)
}

func (m *Model) viewportHeight() int {
	header, controls := m.chrome()
	return max(m.height-lipgloss.Height(header)-lipgloss.Height(controls), 1)
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		resized := msg.Width != m.width
		m.width, m.height = msg.Width, msg.Height
		if resized {
			m.rebuild()
		}
		m.state.Offset = ClampOffset(m.state.Offset, len(m.content()), m.viewportHeight())
	case tea.KeyMsg:
		next, quit := m.state.HandleKey(msg.String(), len(m.content()), m.viewportHeight())
		if quit {
			return m, tea.Quit
		}
		m.state = next
	}
	return m, nil
}

func (m *Model) View() string {
	header, controls := m.chrome()
	lines := m.content()
	viewport := m.viewportHeight()

	start := min(m.state.Offset, len(lines))
	end := min(start+viewport, len(lines))

	out := make([]string, 0, viewport+2)
	out = append(out, header)
	out = append(out, lines[start:end]...)
	for i := end - start; i < viewport; i++ {
		out = append(out, "")
	}
	out = append(out, controls)
	return strings.Join(out, "\n")
}

// Run shows the dashboard in the alternate screen until the user quits.
func Run(summary *domain.MonthSummary) error {
	_, err := tea.NewProgram(New(summary), tea.WithAltScreen()).Run()
	return err
}
