package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/golang/geo/r3"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/lookahead/internal/planner"
	"github.com/san-kum/lookahead/internal/sim"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 600
	statsWidth      = 50
)

type TickMsg time.Time

// LiveModel flies a mission one control cycle per tick and draws it.
type LiveModel struct {
	sim       *sim.Simulator
	session   *sim.Session
	obstacles []r3.Vector
	title     string
	interval  time.Duration

	canvas   *Canvas
	theme    Theme
	styles   styles
	trail    []r3.Vector
	distance []float64
	last     sim.Step
	tree     *planner.Tree
	stepped  bool

	running  bool
	showTree bool
	showHelp bool
	err      error
}

// NewLiveModel starts a session on s. interval is the wall time between
// control cycles.
func NewLiveModel(s *sim.Simulator, obstacles []r3.Vector, title string, interval time.Duration) (LiveModel, error) {
	sess, err := s.Begin()
	if err != nil {
		return LiveModel{}, err
	}
	if interval <= 0 {
		interval = time.Second / 20
	}
	m := LiveModel{
		sim:       s,
		session:   sess,
		obstacles: obstacles,
		title:     title,
		interval:  interval,
		canvas:    NewCanvas(width, height),
		theme:     ThemeTerminal,
		styles:    newStyles(ThemeTerminal),
		running:   true,
		showTree:  true,
	}
	m.resetHistory()
	return m, nil
}

func (m LiveModel) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m LiveModel) Init() tea.Cmd {
	return m.tick()
}

func (m LiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "n", "right":
			if !m.running {
				m.advance()
			}
		case "r":
			m.reset()
		case "tab":
			m.showTree = !m.showTree
		case "t":
			m.theme = m.theme.Next()
			m.styles = newStyles(m.theme)
		case "?":
			m.showHelp = !m.showHelp
		}
	case tea.WindowSizeMsg:
		w := msg.Width - statsWidth - 6
		h := msg.Height - 4
		if w >= 20 && h >= 8 {
			m.canvas = NewCanvas(w, h)
		}
	case TickMsg:
		if m.running {
			m.advance()
		}
		return m, m.tick()
	}
	return m, nil
}

// advance runs one control cycle unless the mission is over.
func (m *LiveModel) advance() {
	if m.session.Done() {
		return
	}
	step, tree, ok := m.session.Next()
	if !ok {
		m.err = m.session.Err()
		return
	}
	m.last, m.tree, m.stepped = step, tree, true
	m.trail = append(m.trail, step.State.Position)
	m.distance = append(m.distance, step.DistanceToGoal)
	if len(m.distance) > historyCapacity {
		m.distance = m.distance[1:]
	}
}

func (m *LiveModel) reset() {
	sess, err := m.sim.Begin()
	if err != nil {
		m.err = err
		return
	}
	m.session = sess
	m.tree = nil
	m.last = sim.Step{}
	m.stepped = false
	m.err = nil
	m.resetHistory()
}

func (m *LiveModel) resetHistory() {
	start := m.sim.Mission().Start.Position
	m.trail = append(m.trail[:0], start)
	m.distance = append(m.distance[:0], start.Sub(m.sim.Mission().Goal).Norm())
}

// Steps is the number of control cycles flown since the last reset.
func (m LiveModel) Steps() int { return len(m.trail) - 1 }

func (m LiveModel) Outcome() sim.Outcome { return m.session.Outcome() }

func (m LiveModel) Running() bool { return m.running }

func (m LiveModel) status() string {
	switch {
	case m.session.Done():
		return m.session.Outcome().String()
	case m.running:
		return "running"
	default:
		return "paused"
	}
}

func (m LiveModel) View() string {
	mission := m.sim.Mission()
	goal := mission.Goal
	vehicle := m.session.State().Position
	scene := Scene{
		Tree:             m.tree,
		Trail:            m.trail,
		Obstacles:        m.obstacles,
		Goal:             &goal,
		AcceptanceRadius: mission.AcceptanceRadius,
		Vehicle:          &vehicle,
		HideTree:         !m.showTree,
	}
	scene.Draw(m.canvas)
	canvasView := m.styles.canvas.Render(m.canvas.Render(m.theme))

	st := m.styles
	var s strings.Builder
	s.WriteString(st.header.Render(strings.ToUpper(m.title)) + "\n")
	s.WriteString(st.statusLine(m.status()) + "\n\n")

	if len(m.distance) > 1 {
		chart := asciigraph.Plot(m.distance,
			asciigraph.Height(5),
			asciigraph.Width(32),
			asciigraph.Caption("distance to goal (m)"),
		)
		s.WriteString(st.graph.Render(chart) + "\n")
	}

	row := func(label, value string) {
		s.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
	}
	state := m.session.State()
	row("Time", fmt.Sprintf("%.2fs / %.0fs", state.Time-mission.Start.Time, mission.Duration))
	row("Position", fmt.Sprintf("%.2f %.2f %.2f", vehicle.X, vehicle.Y, vehicle.Z))
	row("Speed", fmt.Sprintf("%.2f m/s", state.Velocity.Norm()))
	row("Distance", fmt.Sprintf("%.2f m", m.distance[len(m.distance)-1]))

	initial := mission.Start.Position.Sub(goal).Norm()
	progress := 1.0
	if initial > 0 {
		progress = 1 - m.distance[len(m.distance)-1]/initial
	}
	row("Progress", ProgressBar(progress, 20, m.theme))

	if m.stepped {
		row("Step", fmt.Sprintf("%d", m.last.Index))
		row("Termination", m.last.Termination.String())
		row("Tree", fmt.Sprintf("%d nodes / %d expanded", m.last.TreeSize, m.last.Expansions))
		row("Command", fmt.Sprintf("%.2f %.2f %.2f", m.last.Command.X, m.last.Command.Y, m.last.Command.Z))
	}
	if m.err != nil {
		row("Error", m.err.Error())
	}

	s.WriteString(st.help.Render("─────────────────────\nSP:Pause N:Step R:Reset\nTAB:Tree T:Theme Q:Quit ?:Help"))
	statsView := st.stats.Render(s.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)

	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume mission     ║
║  N / →    - Single cycle (paused)    ║
║  R        - Restart mission          ║
║  Tab      - Toggle search tree       ║
║  T        - Cycle themes             ║
║  Q        - Quit                     ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝
` + "\n\n" + mainView
	}
	return mainView
}
