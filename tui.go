package main

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"scout/clipboard"
	"scout/log"
	"scout/signal"
)

// TUI message types
type SessionMsg struct{ Session Session }
type AudioLevelMsg struct{ RMS float64 }
type SilenceMsg struct{ Active bool }
type HideMsg struct{}
type waveTickMsg time.Time
type copiedMsg struct{ err error }

var (
	tuiProgram *tea.Program
	tuiMu      sync.Mutex
)

// tuiSink forwards machine output into the bubbletea message queue.
// Program.Send is safe from any goroutine and never blocks.
type tuiSink struct{}

func (tuiSink) SessionUpdate(s Session) { tuiSend(SessionMsg{Session: s}) }
func (tuiSink) AudioLevel(rms float64)  { tuiSend(AudioLevelMsg{RMS: rms}) }
func (tuiSink) SilenceWarning(on bool)  { tuiSend(SilenceMsg{Active: on}) }

// tuiShell collapses the interface to a one-line standby view. A
// terminal program cannot hide its own window, so "hide" means getting
// out of the way until the next hotkey press.
type tuiShell struct{}

func (tuiShell) Hide() { tuiSend(HideMsg{}) }

func tuiSend(msg tea.Msg) {
	tuiMu.Lock()
	p := tuiProgram
	tuiMu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

type tuiModel struct {
	machine *Machine
	proc    *signal.Processor

	session Session
	cursor  int // selected row in results view
	ticking bool
	hidden  bool
	silence bool
	copied  bool

	prompt textinput.Model

	deviceLine    string
	width, height int
}

func NewTUIProgram(m *Machine, deviceLine string) *tea.Program {
	ti := textinput.New()
	ti.Placeholder = "City, Country"
	ti.CharLimit = 80
	ti.Width = 32
	model := tuiModel{
		machine:    m,
		proc:       signal.New(),
		prompt:     ti,
		deviceLine: deviceLine,
	}
	return tea.NewProgram(model, tea.WithAltScreen())
}

func SetTUIProgram(p *tea.Program) {
	tuiMu.Lock()
	tuiProgram = p
	tuiMu.Unlock()
}

func waveTick() tea.Cmd {
	return tea.Tick(60*time.Millisecond, func(t time.Time) tea.Msg {
		return waveTickMsg(t)
	})
}

func (m tuiModel) Init() tea.Cmd {
	return nil
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		return m.handleKey(msg)

	case SessionMsg:
		prev := m.session
		m.session = msg.Session
		if m.session.State != StateIdle {
			m.hidden = false
		}
		if m.session.PromptOpen && !prev.PromptOpen {
			m.prompt.SetValue("")
			m.prompt.Focus()
			return m, textinput.Blink
		}
		if !m.session.PromptOpen {
			m.prompt.Blur()
		}
		if m.session.State == StateRecording && prev.State != StateRecording {
			m.proc.Reset()
			m.silence = false
			m.copied = false
		}
		if m.session.State == StateResults && prev.State != StateResults {
			m.cursor = 0
		}
		// The redraw loop runs only while recording; the next frame is
		// simply not scheduled once the state moves on.
		if m.session.State == StateRecording && !m.ticking {
			m.ticking = true
			return m, waveTick()
		}

	case AudioLevelMsg:
		if m.session.State == StateRecording {
			m.proc.Ingest(msg.RMS)
		}

	case SilenceMsg:
		m.silence = msg.Active

	case HideMsg:
		m.hidden = true

	case waveTickMsg:
		if m.session.State != StateRecording {
			m.ticking = false
			return m, nil
		}
		m.proc.Tick()
		return m, waveTick()

	case copiedMsg:
		if msg.err != nil {
			log.Warnf("clipboard: %v", msg.err)
		} else {
			m.copied = true
		}
	}
	return m, nil
}

func (m tuiModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return m, tea.Quit
	}
	m.hidden = false

	// A modal prompt captures everything except its own two bindings.
	if m.session.PromptOpen {
		switch key {
		case "enter":
			m.machine.SaveLocation(m.prompt.Value(), "")
			return m, nil
		case "esc":
			m.machine.CloseLocationPrompt()
			return m, nil
		}
		var cmd tea.Cmd
		m.prompt, cmd = m.prompt.Update(msg)
		return m, cmd
	}

	switch key {
	case " ":
		m.machine.Toggle()
	case "enter":
		if m.session.State == StateResults && len(m.session.Events) > 0 {
			url := m.session.Events[m.cursor].URL
			if url != "" {
				return m, func() tea.Msg {
					return copiedMsg{err: clipboard.Copy(url)}
				}
			}
			return m, nil
		}
		m.machine.Search()
	case "esc":
		m.machine.Cancel()
	case "r":
		m.machine.Reset()
	case "l":
		m.machine.OpenLocationPrompt()
	case "c":
		if m.session.Transcript != "" {
			text := m.session.Transcript
			return m, func() tea.Msg {
				return copiedMsg{err: clipboard.Copy(text)}
			}
		}
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.session.Events)-1 {
			m.cursor++
		}
	}
	return m, nil
}

var (
	titleStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	statusRecStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	statusErrStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	statusStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	waveStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	transcriptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	dimStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	helpStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("239"))
	helpKeyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("239")).Bold(true)
	selectedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("57"))
	eventTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("230"))
	copiedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
)

func (m tuiModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}
	if m.hidden {
		return helpStyle.Render("scout — standby, Alt+E to record")
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("scout") + dimStyle.Render("  find free events near you") + "\n\n")
	b.WriteString(m.statusLine() + "\n\n")

	switch {
	case m.session.State == StateResults:
		b.WriteString(m.resultsView())
	case m.session.Transcript != "":
		// Errors raised while a transcript is held still show the
		// transcribed view; the status line carries the error.
		b.WriteString(m.transcriptView())
	default:
		b.WriteString(m.waveView())
	}

	if m.session.PromptOpen {
		b.WriteString("\n" + m.promptView())
	}

	b.WriteString("\n\n" + m.helpLine())
	return b.String()
}

func (m tuiModel) statusLine() string {
	switch m.session.State {
	case StateRecording:
		line := statusRecStyle.Render("● REC  ") + statusStyle.Render(m.session.Status)
		if m.silence {
			line += statusErrStyle.Render("  ⚠ no voice detected")
		}
		return line
	case StateProcessing:
		return statusStyle.Render("◌ " + m.session.Status)
	case StateError:
		return statusErrStyle.Render("✗ " + m.session.Status)
	case StateIdle:
		return dimStyle.Render("○ STANDBY  press Alt+E or space to record")
	default:
		return statusStyle.Render(m.session.Status)
	}
}

func (m tuiModel) waveView() string {
	width := m.width - 4
	if width < 10 {
		width = 10
	}
	if width > 72 {
		width = 72
	}
	frame := renderWave(width, 7, m.proc.Current(), time.Now(), m.session.State == StateRecording)
	return waveStyle.Render(frame)
}

func (m tuiModel) transcriptView() string {
	wrap := m.width - 4
	if wrap < 10 {
		wrap = 10
	}
	var b strings.Builder
	b.WriteString(dimStyle.Render("You said:") + "\n")
	for _, line := range wrapText(m.session.Transcript, wrap) {
		b.WriteString("  " + transcriptStyle.Render(line) + "\n")
	}
	if m.copied {
		b.WriteString("  " + copiedStyle.Render("[✓ copied]") + "\n")
	}
	return b.String()
}

func (m tuiModel) resultsView() string {
	var b strings.Builder
	b.WriteString(dimStyle.Render(fmt.Sprintf("Results for %q:", m.session.Transcript)) + "\n\n")

	visible := m.height - 10
	if visible < 1 {
		visible = 1
	}
	start := 0
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}
	for i := start; i < len(m.session.Events) && i < start+visible; i++ {
		ev := m.session.Events[i]
		title := fmt.Sprintf("%s — %s %s", ev.Title, ev.Date, ev.Time)
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("▸ "+title) + "\n")
			detail := ev.Location
			if ev.Price != "" {
				detail += "  ·  " + ev.Price
			}
			if ev.URL != "" {
				detail += "  ·  " + ev.URL
			}
			b.WriteString("    " + dimStyle.Render(detail) + "\n")
		} else {
			b.WriteString("  " + eventTitleStyle.Render(title) + "\n")
		}
	}
	if m.copied {
		b.WriteString("\n" + copiedStyle.Render("[✓ copied]") + "\n")
	}
	return b.String()
}

func (m tuiModel) promptView() string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("205")).
		Padding(0, 1)
	content := "Where are you?\n" + m.prompt.View() + "\n" +
		dimStyle.Render("enter save · esc cancel")
	return box.Render(content)
}

func (m tuiModel) helpLine() string {
	pairs := []struct{ key, action string }{
		{"Alt+E/space", "record"},
		{"enter", "search"},
		{"c", "copy"},
		{"l", "location"},
		{"esc", "cancel"},
		{"ctrl+c", "quit"},
	}
	parts := make([]string, 0, len(pairs)+1)
	for _, p := range pairs {
		parts = append(parts, helpKeyStyle.Render(p.key)+helpStyle.Render(" "+p.action))
	}
	line := strings.Join(parts, helpStyle.Render("  ·  "))
	if m.deviceLine != "" {
		line += "\n" + helpStyle.Render(m.deviceLine+"  ·  scout "+version)
	} else {
		line += "\n" + helpStyle.Render("scout " + version)
	}
	return line
}

func wrapText(text string, width int) []string {
	if len(text) == 0 {
		return []string{""}
	}
	if width <= 0 {
		width = 1
	}

	var lines []string
	for len(text) > width {
		splitAt := width
		for i := width; i > 0; i-- {
			if text[i] == ' ' {
				splitAt = i
				break
			}
		}
		lines = append(lines, text[:splitAt])
		text = strings.TrimLeft(text[splitAt:], " ")
	}
	if len(text) > 0 {
		lines = append(lines, text)
	}
	return lines
}
