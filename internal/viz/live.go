package viz

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/incline/internal/sim"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	sceneWidth  = 60
	sceneHeight = 20
	chartWidth  = 36
	chartHeight = 4
	chartPoints = 400
	fps         = 60
)

// Launcher builds a fresh runner and panel from the tunable parameters.
// The panel must already be attached to the runner.
type Launcher func(params map[string]float64) (*sim.Runner, *Panel, error)

type TickMsg time.Time

// LiveModel animates one run in the terminal. Every tick advances the
// runner by a fixed number of steps, so the tick rate paces the run.
type LiveModel struct {
	title        string
	launch       Launcher
	stepsPerTick int
	gifPath      string

	runner *sim.Runner
	panel  *Panel
	scene  *Scene

	params   map[string]float64
	initial  map[string]float64
	keys     []string
	selected int

	running   bool
	err       error
	recorder  *Recorder
	recording bool
	status    string
	showHelp  bool
}

// LiveOptions tune the live view.
type LiveOptions struct {
	Title string
	// Rate is the number of simulation steps per wall clock second.
	Rate float64
	// GIFPath is where the g key saves recordings.
	GIFPath string
}

func NewLiveModel(params map[string]float64, launch Launcher, opts LiveOptions) (LiveModel, error) {
	keys := make([]string, 0, len(params))
	initial := make(map[string]float64, len(params))
	current := make(map[string]float64, len(params))
	for k, v := range params {
		keys = append(keys, k)
		initial[k] = v
		current[k] = v
	}
	sort.Strings(keys)

	spt := int(math.Round(opts.Rate / fps))
	if spt < 1 {
		spt = 1
	}
	if opts.GIFPath == "" {
		opts.GIFPath = "incline.gif"
	}

	m := LiveModel{
		title:        opts.Title,
		launch:       launch,
		stepsPerTick: spt,
		gifPath:      opts.GIFPath,
		params:       current,
		initial:      initial,
		keys:         keys,
		recorder:     NewRecorder(2),
	}
	if err := m.restart(); err != nil {
		return LiveModel{}, err
	}
	return m, nil
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/fps, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m LiveModel) Init() tea.Cmd { return tick() }

func (m LiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.err = m.restart()
		case "tab":
			if len(m.keys) > 0 {
				m.selected = (m.selected + 1) % len(m.keys)
			}
		case "up", "k":
			m.tune(1.05)
		case "down", "j":
			m.tune(0.95)
		case "0":
			for k, v := range m.initial {
				m.params[k] = v
			}
			m.err = m.restart()
		case "g":
			m.toggleRecording()
		case "t":
			NextTheme()
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			m.advance()
		}
		if m.recording && m.scene != nil {
			m.scene.Draw(m.runner.Cart().Pos, m.panel.Trail, m.panel.MotionMap)
			m.recorder.Capture(m.scene.Canvas)
		}
		return m, tick()
	}
	return m, nil
}

// restart relaunches the run with the current parameters. A failed launch
// keeps the previous run on screen.
func (m *LiveModel) restart() error {
	runner, panel, err := m.launch(m.params)
	if err != nil {
		m.running = false
		return err
	}
	m.runner = runner
	m.panel = panel
	m.scene = NewScene(sceneWidth, sceneHeight, runner.Incline(), r3.Vec{X: panel.Timer.X, Y: panel.Timer.Y})
	m.running = true
	m.err = nil
	return nil
}

// tune scales the selected parameter and restarts the run with it.
func (m *LiveModel) tune(factor float64) {
	if len(m.keys) == 0 {
		return
	}
	k := m.keys[m.selected]
	v := m.params[k]
	if v == 0 {
		v = 0.01
	}
	m.params[k] = v * factor
	m.err = m.restart()
}

func (m *LiveModel) advance() {
	if m.runner == nil {
		return
	}
	for i := 0; i < m.stepsPerTick; i++ {
		more, err := m.runner.Step(context.Background())
		if err != nil {
			m.err = err
			m.running = false
			return
		}
		if !more {
			m.running = false
			return
		}
	}
}

func (m *LiveModel) toggleRecording() {
	if !m.recording {
		m.recorder.Reset()
		m.recording = true
		m.status = "recording"
		return
	}
	m.recording = false
	if err := m.recorder.Save(m.gifPath); err != nil {
		m.status = err.Error()
		return
	}
	m.status = fmt.Sprintf("saved %d frames to %s", m.recorder.Len(), m.gifPath)
}

func (m LiveModel) View() string {
	st := themeStyles(CurrentTheme)
	if m.runner == nil {
		return st.failed.Render(fmt.Sprintf("error: %v", m.err)) + "\n"
	}

	cart := m.runner.Cart()
	canvasView := st.canvas.Render(m.scene.Draw(cart.Pos, m.panel.Trail, m.panel.MotionMap))

	var s strings.Builder
	s.WriteString(st.header.Render(strings.ToUpper(m.title)) + "\n")

	switch {
	case m.err != nil:
		s.WriteString(st.failed.Render("ERROR") + "\n" + st.value.Render(m.err.Error()) + "\n\n")
	case m.runner.Done():
		s.WriteString(st.finished.Render("FINISHED") + "\n\n")
	case m.running:
		s.WriteString(st.running.Render("RUNNING") + "\n\n")
	default:
		s.WriteString(st.paused.Render("PAUSED") + "\n\n")
	}

	s.WriteString(st.value.Render(m.panel.Timer.String()) + "\n\n")
	row := func(label, value string) {
		s.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
	}
	row("Position", sim.FormatVec(cart.Pos))
	row("Height", fmt.Sprintf("%.4f m", cart.Pos.Y))
	row("Speed", fmt.Sprintf("%.4f m/s", cart.Speed()))
	if p, ok := m.panel.Acceleration.Last(); ok {
		row("Accel", fmt.Sprintf("%.4f m/s/s", p.V))
	}
	row("Steps", fmt.Sprintf("%d", m.runner.Steps()))
	row("Markers", fmt.Sprintf("%d", len(m.panel.MotionMap.Markers())))

	s.WriteString("\nPARAMETERS\n")
	for i, k := range m.keys {
		val, init := m.params[k], m.initial[k]
		ratio := 0.5
		if init != 0 {
			ratio = val / (2 * init)
		}
		line := fmt.Sprintf("%-10s %s %.3f", k, ProgressBar(ratio, 10), val)
		if i == m.selected {
			s.WriteString(st.active.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + st.label.Render(line) + "\n")
		}
	}

	if m.status != "" {
		s.WriteString("\n" + st.value.Render(m.status) + "\n")
	}
	s.WriteString(st.help.Render(Separator(30) + "\nSP:Pause R:Restart Q:Quit\nTAB:Param ↑↓:Tune ?:Help"))

	statsView := st.stats.Render(s.String())
	top := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)

	charts := make([]string, 0, 3)
	for _, series := range []*Series{m.panel.Position, m.panel.Velocity, m.panel.Acceleration} {
		if c := series.Chart(chartPoints, chartWidth, chartHeight); c != "" {
			charts = append(charts, st.graph.Render(c))
		}
	}
	view := top
	if len(charts) > 0 {
		view = lipgloss.JoinVertical(lipgloss.Left, top, lipgloss.JoinHorizontal(lipgloss.Top, charts...))
	}

	if m.showHelp {
		return helpText + "\n" + view
	}
	return view
}

const helpText = `
  Space    pause or resume
  R        restart with current parameters
  0        restore initial parameters
  Tab      select parameter
  Up/K     increase parameter (+5%)
  Down/J   decrease parameter (-5%)
  G        start or stop GIF recording
  T        cycle themes
  ?        toggle this help
  Q        quit
`

// Run starts the live view on the terminal.
func Run(m LiveModel) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
