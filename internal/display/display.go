// Package display provides the terminal UI using Bubble Tea.
//
// The [UI] type renders the active step, its countdown and the program
// progress above an input prompt at the bottom of the terminal. All other
// output is printed above the rendered area via Program.Println / Printf,
// so concurrent writes never garble the display.
package display

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hammamikhairi/dojotimer/internal/domain"
	"github.com/hammamikhairi/dojotimer/internal/session"
)

// ── Styles ───────────────────────────────────────────────────────

var (
	barBg = lipgloss.NewStyle().
		Background(lipgloss.Color("#27272a")).
		Foreground(lipgloss.Color("#a1a1aa"))

	timerRunStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fde68a")).
			Bold(true)

	timerDoneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fca5a5"))

	timerPausedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#71717a")).
				Italic(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#a1a1aa"))

	sepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#52525b"))

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94a3b8"))

	countdownStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fde68a")).
			Bold(true).
			Padding(0, 2)

	// Side colors for omote/ura steps.
	redStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f87171")).
			Bold(true)

	blueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#60a5fa")).
			Bold(true)

	plainTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4d4d8")).
			Bold(true)

	// ── Output styles ──

	// BannerStyle is the muted slate used for the startup banner.
	BannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94a3b8"))

	stepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bbf7d0"))

	primaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4d4d8"))

	secondaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#71717a"))

	urgentOutputStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#fca5a5"))

	userInputEchoStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#a1a1aa"))
)

const prompt = "dojo> "

// Source supplies the state the UI renders on every refresh.
type Source interface {
	View() session.View
}

// ── UI ───────────────────────────────────────────────────────────

// UI manages the terminal through Bubble Tea.
//
// Call [NewUI] then [UI.Run] (blocking). Other goroutines may safely call
// [UI.Println], [UI.Printf], and read from [UI.InputChan] at any time after
// [UI.WaitReady] returns.
type UI struct {
	program *tea.Program
	source  Source
	refresh time.Duration
	inputCh chan string
	readyCh chan struct{}
	quitCh  chan struct{}
	done    atomic.Bool
}

// NewUI creates the display over source. Call Run() to start.
func NewUI(source Source) *UI {
	return &UI{
		source:  source,
		refresh: 200 * time.Millisecond,
		inputCh: make(chan string, 16),
		readyCh: make(chan struct{}),
		quitCh:  make(chan struct{}),
	}
}

// Println prints a line above the prompt. Thread-safe. Falls back to
// fmt.Println before the program has started.
func (u *UI) Println(a ...interface{}) {
	if u.program != nil && !u.done.Load() {
		u.program.Println(a...)
	} else {
		fmt.Println(a...)
	}
}

// Printf prints formatted text above the prompt. Thread-safe.
func (u *UI) Printf(format string, a ...interface{}) {
	if u.program != nil && !u.done.Load() {
		u.program.Printf(format, a...)
	} else {
		fmt.Printf(format, a...)
	}
}

// InputChan returns completed user-input lines.
func (u *UI) InputChan() <-chan string { return u.inputCh }

// ── Styled print helpers ─────────────────────────────────────────

// PrintStep prints a step header like "Step 2/8  Randori / Person 1".
func (u *UI) PrintStep(text string) {
	u.Println(stepStyle.Render("  " + text))
}

// PrintInfo prints a primary line.
func (u *UI) PrintInfo(text string) {
	u.Println(primaryStyle.Render("  " + text))
}

// PrintHint prints a secondary/dimmed line.
func (u *UI) PrintHint(text string) {
	u.Println(secondaryStyle.Render("  " + text))
}

// PrintUrgent prints an error line.
func (u *UI) PrintUrgent(text string) {
	u.Println(urgentOutputStyle.Render("  " + text))
}

// PrintUserInput echoes the user's typed command into the scrollback.
func (u *UI) PrintUserInput(text string) {
	u.Println(promptStyle.Render("dojo") + secondaryStyle.Render("> ") + userInputEchoStyle.Render(text))
}

// WaitReady blocks until the Bubble Tea event loop is running.
func (u *UI) WaitReady() { <-u.readyCh }

// Quit tells Bubble Tea to exit.
func (u *UI) Quit() {
	if u.program != nil {
		u.program.Quit()
	}
}

// QuitChan is closed when Run returns.
func (u *UI) QuitChan() <-chan struct{} { return u.quitCh }

// Run starts the Bubble Tea event loop. Blocks until quit.
func (u *UI) Run() error {
	m := newModel(u.source, u.refresh, u.inputCh, u.readyCh)
	m.echoFn = u.PrintUserInput

	u.program = tea.NewProgram(m)
	_, err := u.program.Run()
	u.done.Store(true)
	close(u.quitCh)
	return err
}

// ── Bubble Tea model ─────────────────────────────────────────────

type model struct {
	source  Source
	refresh time.Duration
	input   textinput.Model
	bar     progress.Model
	inputCh chan<- string
	readyCh chan struct{}
	echoFn  func(string)
	view    session.View
	width   int
}

type tickMsg time.Time

func newModel(source Source, refresh time.Duration, inputCh chan<- string, readyCh chan struct{}) model {
	ti := textinput.New()
	// Plain-text prompt keeps the textinput width math correct.
	ti.Prompt = prompt
	ti.PromptStyle = promptStyle
	ti.TextStyle = userInputEchoStyle
	ti.Cursor.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#94a3b8"))
	ti.Focus()
	ti.CharLimit = 200
	ti.Width = 60

	bar := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	bar.Width = 40

	return model{
		source:  source,
		refresh: refresh,
		input:   ti,
		bar:     bar,
		inputCh: inputCh,
		readyCh: readyCh,
		view:    source.View(),
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.tickCmd(),
		signalReady(m.readyCh),
	)
}

func signalReady(ch chan struct{}) tea.Cmd {
	return func() tea.Msg {
		close(ch)
		return nil
	}
}

func (m model) tickCmd() tea.Cmd {
	return tea.Tick(m.refresh, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeyEnter:
			v := m.input.Value()
			m.input.Reset()
			if strings.TrimSpace(v) != "" {
				m.inputCh <- v
				echoFn := m.echoFn
				return m, func() tea.Msg {
					if echoFn != nil {
						echoFn(v)
					}
					return nil
				}
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		if msg.Width > len(prompt) {
			m.input.Width = msg.Width - len(prompt)
		}
		m.bar.Width = min(max(msg.Width-16, 10), 80)
		return m, nil

	case tickMsg:
		m.view = m.source.View()
		return m, tea.Batch(m.tickCmd(), tea.SetWindowTitle(windowTitle(m.view)))
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) View() string {
	var b strings.Builder

	if m.view.StepCount > 0 {
		b.WriteString(renderStep(m.view))
		b.WriteByte('\n')
		b.WriteString("  " + m.bar.ViewAs(m.view.ProgressInStep))
		b.WriteByte('\n')
		b.WriteString(m.renderBar())
		b.WriteByte('\n')
	}

	b.WriteByte('\n')
	b.WriteString(m.input.View())
	return b.String()
}

// renderBar draws the status line: status, step position, program
// progress and the upcoming step.
func (m model) renderBar() string {
	v := m.view
	parts := []string{
		labelStyle.Render(statusLabel(v)),
		labelStyle.Render(fmt.Sprintf("Step %d/%d", v.CurrentStepIndex+1, v.StepCount)),
		labelStyle.Render(fmt.Sprintf("%s / %s", fmtClock(v.TotalElapsedSec), fmtClock(v.TotalSec))),
	}
	if v.NextTitle != "" {
		parts = append(parts, labelStyle.Render("Next: "+v.NextTitle))
	}

	content := " " + strings.Join(parts, sepStyle.Render("  │  ")) + " "

	w := m.width
	if w <= 0 {
		w = 80
	}
	return barBg.Width(w).Render(content)
}

// renderStep draws the active title and its countdown, or the ready
// countdown while one is showing.
func renderStep(v session.View) string {
	if v.Countdown > 0 {
		return countdownStyle.Render(fmt.Sprintf("Ready  %d", v.Countdown))
	}

	title := v.Title
	if title == "" {
		title = "-"
	}
	var clock string
	switch v.Status {
	case domain.StatusFinished:
		clock = timerDoneStyle.Render("DONE")
	case domain.StatusRunning:
		clock = timerRunStyle.Render(fmtClock(v.RemainingSec))
	default:
		clock = timerPausedStyle.Render(fmtClock(v.RemainingSec))
	}

	var color domain.Color
	if v.CurrentStep != nil {
		color = v.CurrentStep.Color
	}
	return "  " + titleStyle(color).Render(title) + "  " + clock
}

func titleStyle(c domain.Color) lipgloss.Style {
	switch c {
	case domain.ColorRed:
		return redStyle
	case domain.ColorBlue:
		return blueStyle
	default:
		return plainTitleStyle
	}
}

func statusLabel(v session.View) string {
	if v.Countdown > 0 {
		return "ready"
	}
	return v.Status.String()
}

func windowTitle(v session.View) string {
	if v.StepCount == 0 {
		return "DojoTimer"
	}
	if v.Status == domain.StatusFinished {
		return "DojoTimer | done"
	}
	return fmt.Sprintf("DojoTimer | %s %s", v.Title, fmtClock(v.RemainingSec))
}

// ── Helpers ──────────────────────────────────────────────────────

// fmtClock renders whole seconds as m:ss, or h:mm:ss past an hour.
func fmtClock(sec int) string {
	if sec < 0 {
		sec = 0
	}
	h, m, s := sec/3600, (sec/60)%60, sec%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// fmtDuration renders a duration for scrollback messages, e.g. "2m05s".
func fmtDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	if m == 0 {
		return fmt.Sprintf("%ds", s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

// FormatView renders a one-line summary of v for the scrollback, used
// after each prompt command.
func FormatView(v session.View) string {
	if v.StepCount == 0 {
		return "nothing loaded"
	}
	line := fmt.Sprintf("%s  step %d/%d  %s", v.Status, v.CurrentStepIndex+1, v.StepCount, v.Title)
	if v.Countdown > 0 {
		return line + fmt.Sprintf("  (starting in %d)", v.Countdown)
	}
	if v.Status != domain.StatusFinished {
		line += "  " + fmtDuration(time.Duration(v.RemainingSec)*time.Second) + " left"
	}
	return line
}
