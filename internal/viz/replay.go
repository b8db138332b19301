package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/armsim/internal/arm"
)

const (
	canvasWidth  = 60
	canvasHeight = 24
	graphWindow  = 200
	maxSpeed     = 16
)

type TickMsg time.Time

// Replay plays back a recorded episode.
type Replay struct {
	snaps   []arm.Snapshot
	cfg     arm.Config
	title   string
	outcome string

	canvas   *Canvas
	view     Viewport
	frame    int
	speed    int
	running  bool
	theme    Theme
	styles   styles
	showHelp bool
}

func NewReplay(snaps []arm.Snapshot, cfg arm.Config, title, outcome string) Replay {
	c := NewCanvas(canvasWidth, canvasHeight)
	return Replay{
		snaps:   snaps,
		cfg:     cfg,
		title:   title,
		outcome: outcome,
		canvas:  c,
		view:    NewViewport(c, float64(cfg.Boundary)),
		speed:   1,
		running: len(snaps) > 1,
		theme:   ThemeWorkshop,
		styles:  stylesFor(ThemeWorkshop),
	}
}

// WithTheme selects the initial colour scheme.
func (m Replay) WithTheme(name string) Replay {
	m.theme = GetTheme(name)
	m.styles = stylesFor(m.theme)
	return m
}

func (m Replay) Frame() int        { return m.frame }
func (m Replay) Running() bool     { return m.running }
func (m Replay) Speed() int        { return m.speed }
func (m Replay) ThemeName() string { return m.theme.Name }

func (m Replay) tick() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Replay) Init() tea.Cmd { return m.tick() }

func (m Replay) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			if !m.running && m.frame >= len(m.snaps)-1 {
				m.frame = 0
			}
			m.running = !m.running
		case "r":
			m.frame = 0
			m.running = true
		case "[":
			m.scrub(-m.speed)
		case "]":
			m.scrub(m.speed)
		case "+", "=":
			m.speed = min(maxSpeed, m.speed*2)
		case "-", "_":
			m.speed = max(1, m.speed/2)
		case "t":
			m.theme = NextTheme(m.theme)
			m.styles = stylesFor(m.theme)
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			m.advance(m.speed)
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Replay) advance(n int) {
	if len(m.snaps) == 0 {
		return
	}
	m.frame += n
	if m.frame >= len(m.snaps)-1 {
		m.frame = len(m.snaps) - 1
		m.running = false
	}
}

// scrub pauses playback and moves the play head.
func (m *Replay) scrub(n int) {
	m.running = false
	if len(m.snaps) == 0 {
		return
	}
	m.frame = max(0, min(len(m.snaps)-1, m.frame+n))
}

func (m Replay) View() string {
	if len(m.snaps) == 0 {
		return "empty trajectory\n"
	}
	snap := m.snaps[m.frame]

	m.canvas.Clear()
	DrawSnapshot(m.canvas, m.view, snap, m.cfg)
	canvasView := m.styles.canvas.Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(m.styles.header.Render(strings.ToUpper(m.title)) + "\n")
	s.WriteString(m.status() + "\n\n")

	distance := r2.Norm(r2.Sub(snap.Target.Translation(), snap.Link2.Translation()))
	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + m.styles.value.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.2fs", snap.Time))
	row("Reward", fmt.Sprintf("%.3f", snap.Reward))
	row("Distance", fmt.Sprintf("%.3f", distance))
	row("Frame", fmt.Sprintf("%d/%d", m.frame+1, len(m.snaps)))
	row("Speed", fmt.Sprintf("%dx", m.speed))
	s.WriteString(ProgressBar(float64(m.frame+1)/float64(len(m.snaps)), 30, m.styles.running) + "\n")

	if chart := m.rewardChart(); chart != "" {
		s.WriteString(m.styles.graph.Render(chart) + "\n")
	}

	s.WriteString(helpStyle.Render("SP:Pause R:Restart Q:Quit\n[ ]:Scrub +/-:Speed T:Theme ?:Help"))
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
	if m.showHelp {
		return helpOverlay + "\n\n" + mainView
	}
	return mainView
}

func (m Replay) status() string {
	last := m.frame == len(m.snaps)-1
	switch {
	case last && m.outcome == arm.Success.String():
		return m.styles.success.Render("SUCCESS")
	case last && m.outcome != "" && m.outcome != arm.Running.String():
		return m.styles.failure.Render(strings.ToUpper(strings.ReplaceAll(m.outcome, "_", " ")))
	case m.running:
		return m.styles.running.Render("PLAYING")
	default:
		return m.styles.paused.Render("PAUSED")
	}
}

// rewardChart plots the rewards leading up to the current frame.
func (m Replay) rewardChart() string {
	end := m.frame + 1
	if end < 2 {
		return ""
	}
	start := max(0, end-graphWindow)
	rewards := make([]float64, 0, end-start)
	for _, snap := range m.snaps[start:end] {
		rewards = append(rewards, snap.Reward)
	}
	return asciigraph.Plot(rewards, asciigraph.Height(5), asciigraph.Width(30), asciigraph.Caption("Reward"))
}

const helpOverlay = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume playback    ║
║  R        - Restart from first tick  ║
║  [ / ]    - Step back / forward      ║
║  + / -    - Faster / slower          ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
║  Q        - Quit                     ║
╚══════════════════════════════════════╝`
