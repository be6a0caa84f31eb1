package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"ccabi/internal/driver"
)

// maxRows bounds the file list. Larger batches show the files that are in
// progress or finished most recently.
const maxRows = 12

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	workingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	idleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

type progressModel struct {
	title   string
	events  <-chan driver.Event
	spinner spinner.Model
	prog    progress.Model
	items   []fileItem
	index   map[string]int
	// touched lists item indexes, most recently updated last.
	touched []int
	width   int
	done    bool
}

type fileItem struct {
	path    string
	stage   driver.Stage
	status  driver.Status
	elapsed time.Duration
}

type eventMsg driver.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that renders the progress of
// a layout run over files. It quits once events is closed.
func NewProgressModel(title string, files []string, events <-chan driver.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = workingStyle

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76

	m := &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		prog:    prog,
		items:   make([]fileItem, len(files)),
		index:   make(map[string]int, len(files)),
		width:   80,
	}
	for i, file := range files {
		m.items[i] = fileItem{path: file, stage: driver.StageLoad, status: driver.StatusQueued}
		m.index[file] = i
	}
	return m
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		return m, tea.Batch(m.applyEvent(driver.Event(msg)), m.listenForEvent())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.prog.Width = max(msg.Width-4, 10)
		}
		return m, nil
	case progress.FrameMsg:
		next, cmd := m.prog.Update(msg)
		m.prog = next.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) applyEvent(ev driver.Event) tea.Cmd {
	idx, ok := m.index[ev.File]
	if !ok {
		return nil
	}
	item := &m.items[idx]
	item.stage, item.status = ev.Stage, ev.Status
	if finished(ev.Status) {
		item.elapsed = ev.Elapsed
	}
	if ev.Status != driver.StatusQueued {
		for i, t := range m.touched {
			if t == idx {
				m.touched = append(m.touched[:i], m.touched[i+1:]...)
				break
			}
		}
		m.touched = append(m.touched, idx)
	}
	return m.prog.SetPercent(m.percent())
}

func finished(s driver.Status) bool {
	return s == driver.StatusDone || s == driver.StatusCached || s == driver.StatusError
}

// percent counts finished files fully and working files by stage.
func (m *progressModel) percent() float64 {
	if len(m.items) == 0 {
		return 0
	}
	total := 0.0
	for _, item := range m.items {
		switch {
		case finished(item.status):
			total++
		case item.status == driver.StatusWorking && item.stage == driver.StageLayout:
			total += 0.3
		case item.status == driver.StatusWorking && item.stage == driver.StageReport:
			total += 0.8
		}
	}
	return total / float64(len(m.items))
}

// visible returns the indexes of the rows to draw.
func (m *progressModel) visible() []int {
	if len(m.items) <= maxRows {
		rows := make([]int, len(m.items))
		for i := range rows {
			rows[i] = i
		}
		return rows
	}
	rows := append([]int(nil), m.touched[max(len(m.touched)-maxRows, 0):]...)
	// fill up with queued files in order
	for i := 0; len(rows) < maxRows && i < len(m.items); i++ {
		if m.items[i].status == driver.StatusQueued {
			rows = append(rows, i)
		}
	}
	return rows
}

func (m *progressModel) View() string {
	if len(m.items) == 0 {
		return ""
	}
	var b strings.Builder
	header := m.title
	if m.done {
		header = "done: " + header
	} else {
		header = m.spinner.View() + " " + header
	}
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	nameWidth := max(m.width-26, 20)
	for _, idx := range m.visible() {
		item := m.items[idx]
		label, style := statusLabel(item)
		elapsed := ""
		if item.elapsed > 0 {
			elapsed = item.elapsed.Round(100 * time.Microsecond).String()
		}
		fmt.Fprintf(&b, "  %s %s %s\n", style.Render(fmt.Sprintf("%12s", label)), truncate(item.path, nameWidth), idleStyle.Render(elapsed))
	}
	if hidden := len(m.items) - len(m.visible()); hidden > 0 {
		fmt.Fprintf(&b, "  %s\n", idleStyle.Render(fmt.Sprintf("... and %d more", hidden)))
	}

	b.WriteString("\n")
	b.WriteString(m.counters())
	b.WriteString("\n")
	if m.done {
		b.WriteString(m.prog.ViewAs(1.0))
	} else {
		b.WriteString(m.prog.View())
	}
	b.WriteString("\n")
	return b.String()
}

// counters renders "n/total files" followed by the cached and failed counts.
func (m *progressModel) counters() string {
	var done, cached, failed int
	for _, item := range m.items {
		switch item.status {
		case driver.StatusDone:
			done++
		case driver.StatusCached:
			cached++
		case driver.StatusError:
			failed++
		}
	}
	s := fmt.Sprintf("%d/%d files", done+cached+failed, len(m.items))
	if cached > 0 {
		s += doneStyle.Render(fmt.Sprintf("  %d cached", cached))
	}
	if failed > 0 {
		s += errorStyle.Render(fmt.Sprintf("  %d failed", failed))
	}
	return s
}

func statusLabel(item fileItem) (string, lipgloss.Style) {
	switch item.status {
	case driver.StatusDone:
		return "done", doneStyle
	case driver.StatusCached:
		return "cached", doneStyle
	case driver.StatusError:
		return "error", errorStyle
	case driver.StatusWorking:
		switch item.stage {
		case driver.StageLayout:
			return "laying out", workingStyle
		case driver.StageReport:
			return "reporting", workingStyle
		default:
			return "loading", workingStyle
		}
	default:
		return "queued", idleStyle
	}
}

func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}
