package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"squarify/internal/batch"
)

// visibleLines is how much of the status log the view keeps on screen.
const visibleLines = 12

type logLine struct {
	text    string
	isError bool
}

// Model renders a run's status log and progress bar. It is the only
// consumer of the event channel and never writes back to the run.
type Model struct {
	events      <-chan batch.Event
	started     time.Time
	width       int
	lines       []logLine
	fraction    float64
	finished    bool
	interrupted bool
	quitting    bool
}

type closedMsg struct{}

type eventMsg batch.Event

func NewModel(events <-chan batch.Event) Model {
	return Model{events: events, started: time.Now()}
}

// Interrupted reports whether the user quit before the run finished.
func (m Model) Interrupted() bool {
	return m.interrupted
}

func (m Model) Finished() bool {
	return m.finished
}

func (m Model) Init() tea.Cmd {
	return listenForEvents(m.events)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		m = m.apply(batch.Event(msg))
		return m, listenForEvents(m.events)
	case closedMsg:
		m.quitting = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || (m.finished && msg.String() == "q") {
			m.interrupted = !m.finished
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	default:
		return m, nil
	}
}

func (m Model) apply(ev batch.Event) Model {
	switch ev.Kind {
	case batch.EventStatus:
		m.lines = append(m.lines, logLine{text: ev.Message, isError: ev.IsError})
	case batch.EventProgress:
		m.fraction = math.Max(0, math.Min(1, ev.Fraction))
	case batch.EventDone:
		m.finished = true
		m.lines = append(m.lines, logLine{text: "Conversion finished."})
	}
	return m
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	barWidth := 40
	if m.width > 0 {
		barWidth = int(math.Min(60, float64(m.width-10)))
		if barWidth < 20 {
			barWidth = 20
		}
	}

	lines := []string{titleStyle.Render("squarify ⬛")}

	start := 0
	if len(m.lines) > visibleLines {
		start = len(m.lines) - visibleLines
	}
	for _, line := range m.lines[start:] {
		lines = append(lines, renderLogLine(line))
	}

	elapsed := time.Since(m.started).Round(time.Millisecond)
	lines = append(lines,
		barStyle.Render(renderBar(barWidth, m.fraction))+dimStyle.Render(fmt.Sprintf(" %3.0f%%", m.fraction*100)),
		dimStyle.Render(fmt.Sprintf("Elapsed: %s", elapsed)),
	)

	return strings.Join(lines, "\n")
}

func renderLogLine(line logLine) string {
	if line.isError {
		return errorStyle.Render("ERROR: " + line.text)
	}
	return labelStyle.Render(line.text)
}

func listenForEvents(events <-chan batch.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return closedMsg{}
		}
		return eventMsg(ev)
	}
}

func renderBar(width int, ratio float64) string {
	filled := int(math.Round(ratio * float64(width)))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return "[" + strings.Repeat("=", filled) + strings.Repeat(" ", width-filled) + "]"
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	labelStyle = lipgloss.NewStyle().Foreground(ColorInk)
	errorStyle = lipgloss.NewStyle().Foreground(ColorError)
	barStyle   = lipgloss.NewStyle().Foreground(ColorSuccess)
	dimStyle   = lipgloss.NewStyle().Foreground(ColorDim)
)
