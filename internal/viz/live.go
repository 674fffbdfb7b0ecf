package viz

import (
	"fmt"
	"log"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/springsim/internal/adapter"
	"github.com/san-kum/springsim/internal/control"
	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/integrators"
	"github.com/san-kum/springsim/internal/physics"
	"github.com/san-kum/springsim/internal/sim"
	"github.com/san-kum/springsim/internal/spring"
)

const (
	canvasCols      = 28
	canvasRows      = 10
	historyCapacity = 240
	eventLogSize    = 6
	maxFrameDt      = 0.25
	targetStep      = 0.25
	kickVelocity    = 4.0
	angleStep       = 45.0
	paramFactorUp   = 1.1
	paramFactorDown = 1 / 1.1
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// eventLog is shared between the Model copies Bubble Tea makes and the
// spring listeners.
type eventLog struct {
	lines []string
}

func (l *eventLog) add(who string, ev spring.Event, t float64) {
	l.lines = append(l.lines, fmt.Sprintf("%6.2fs %-8s %s", t, who, ev))
	if len(l.lines) > eventLogSize {
		l.lines = l.lines[len(l.lines)-eventLogSize:]
	}
}

// clock is the view time, shared with the listeners for time stamps.
type clock struct {
	t float64
}

type Model struct {
	tuning       dynamo.TuningConfig
	preset       string
	initialForce float64
	initialDrag  float64
	force, drag  float64
	params       []string
	selected     int

	driver     *sim.Driver
	position   *spring.Scalar
	point      *spring.Vector[mgl64.Vec2]
	tintSpring *spring.Vector[spring.Color]
	tint       *adapter.Component[spring.Color]
	swatch     *adapter.Property[spring.Color]
	attitude   *spring.Rotation
	input      *control.Manual
	osc        *physics.Oscillator

	yaw, pitch float64
	paletteIdx int

	running  bool
	clock    *clock
	lastTick time.Time
	energy   []float64
	trace    []float64
	events   *eventLog

	plane    *Canvas
	cubeView *Canvas
	cube     *Wireframe
	camera   *Camera
	showHelp bool
}

// NewModel builds the live view with every spring at rest and the given
// force and drag.
func NewModel(tuning dynamo.TuningConfig, force, drag float64, preset string) Model {
	m := Model{
		tuning:       tuning,
		preset:       preset,
		initialForce: force,
		initialDrag:  drag,
		force:        force,
		drag:         drag,
		params:       []string{"force", "drag"},
		driver:       sim.NewDriver(tuning),
		input:        control.NewManual(1),
		osc:          physics.NewOscillator(force, drag),
		running:      true,
		clock:        &clock{},
		energy:       make([]float64, 0, historyCapacity),
		trace:        make([]float64, 0, historyCapacity),
		events:       &eventLog{},
		plane:        NewCanvas(canvasCols, canvasRows),
		cubeView:     NewCanvas(canvasCols, canvasRows),
		cube:         NewCube(2),
		camera:       NewCamera(),
	}

	m.position = spring.NewScalar(tuning)
	m.position.SetMinValue(-1)
	m.position.SetMaxValue(1)
	m.position.SetClampTarget(true)

	m.point = spring.NewVector2(tuning)
	m.point.SetCommonForceAndDrag(true)
	m.point.SetMinValue(mgl64.Vec2{-1, -1})
	m.point.SetMaxValue(mgl64.Vec2{1, 1})
	m.point.SetClampTarget(true)
	m.point.SetClampCurrentValue(true)

	palette := m.palette()
	m.swatch = adapter.NewProperty(palette[0])
	m.tintSpring = spring.NewColor(tuning)
	m.tintSpring.SetCommonForceAndDrag(true)
	m.tint = adapter.NewComponent[spring.Color]("swatch", m.tintSpring, m.swatch, m.swatch)

	m.attitude = spring.NewRotation(tuning)

	m.applyParams()
	m.position.Initialize()
	m.point.Initialize()
	m.attitude.Initialize()
	if err := m.tint.Initialize(); err != nil {
		log.Printf("viz: %v", err)
	}

	m.driver.Register(m.position)
	m.driver.Register(m.point)
	m.driver.Register(m.tint)
	m.driver.Register(m.attitude)

	events, now := m.events, m.clock
	m.position.Events().Subscribe(func(ev spring.Event) { events.add("bar", ev, now.t) })
	m.point.Events().Subscribe(func(ev spring.Event) { events.add("point", ev, now.t) })
	m.tintSpring.Events().Subscribe(func(ev spring.Event) { events.add("swatch", ev, now.t) })
	m.attitude.Events().Subscribe(func(ev spring.Event) { events.add("cube", ev, now.t) })

	return m
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if quit := m.handleKey(msg.String()); quit {
			return m, tea.Quit
		}
	case TickMsg:
		now := time.Time(msg)
		dt := 1.0 / 60.0
		if !m.lastTick.IsZero() {
			dt = now.Sub(m.lastTick).Seconds()
		}
		m.lastTick = now
		m.Advance(dt)
		return m, tick()
	}
	return m, nil
}

// handleKey applies one key press and reports whether to quit.
func (m *Model) handleKey(key string) bool {
	switch key {
	case "q", "ctrl+c":
		return true
	case " ":
		m.running = !m.running
	case "r":
		m.reset()
	case "left", "h":
		m.nudgeBar(-targetStep)
	case "right", "l":
		m.nudgeBar(targetStep)
	case "x":
		m.flipBar()
	case "v":
		m.position.AddVelocity(kickVelocity)
	case "w":
		m.nudgePoint(0, targetStep)
	case "s":
		m.nudgePoint(0, -targetStep)
	case "a":
		m.nudgePoint(-targetStep, 0)
	case "d":
		m.nudgePoint(targetStep, 0)
	case "[":
		m.turn(-angleStep, 0)
	case "]":
		m.turn(angleStep, 0)
	case ",":
		m.turn(0, -angleStep)
	case ".":
		m.turn(0, angleStep)
	case "c":
		m.nextColor()
	case "tab":
		m.selected = (m.selected + 1) % len(m.params)
	case "up", "k":
		m.adjustParam(paramFactorUp)
	case "down", "j":
		m.adjustParam(paramFactorDown)
	case "i":
		m.setMode((m.position.IntegrationMode() + 1) % 3)
	case "f":
		m.tuning.DoFixedUpdateRate = !m.tuning.DoFixedUpdateRate
		m.setTuning(m.tuning)
	case "e":
		m.position.ReachEquilibrium()
		m.point.ReachEquilibrium()
		m.tint.ReachEquilibrium()
		m.attitude.ReachEquilibrium()
	case "+", "=":
		m.camera.ZoomIn()
	case "-", "_":
		m.camera.ZoomOut()
	case "t":
		NextTheme()
	case "?":
		m.showHelp = !m.showHelp
	}
	return false
}

// Advance runs one host frame of frameDt seconds.
func (m *Model) Advance(frameDt float64) {
	if !m.running {
		return
	}
	if frameDt > maxFrameDt {
		frameDt = maxFrameDt
	}
	if u := m.input.Compute(nil, m.clock.t); len(u) > 0 {
		m.position.Retarget(u)
	}
	m.driver.Update(frameDt)
	m.clock.t += frameDt

	x, u := m.position.Sample()
	m.energy = appendCapped(m.energy, m.osc.Energy(x, u))
	m.trace = appendCapped(m.trace, x[0])
}

func appendCapped(s []float64, v float64) []float64 {
	s = append(s, v)
	if len(s) > historyCapacity {
		s = s[len(s)-historyCapacity:]
	}
	return s
}

// nudgeBar moves from the last requested target, which may not have reached
// the spring yet.
func (m *Model) nudgeBar(delta float64) {
	next, _ := m.position.Clamp().Limit(m.input.U[0] + delta)
	m.input.SetControl([]float64{next})
}

func (m *Model) flipBar() {
	next, _ := m.position.Clamp().Limit(-m.input.U[0])
	m.input.SetControl([]float64{next})
}

func (m *Model) nudgePoint(dx, dy float64) {
	m.point.SetTarget(m.point.Target().Add(mgl64.Vec2{dx, dy}))
}

func (m *Model) turn(dyaw, dpitch float64) {
	m.yaw += dyaw
	m.pitch += dpitch
	m.attitude.SetTargetEuler(m.pitch, m.yaw, 0)
}

func (m *Model) palette() []spring.Color {
	out := make([]spring.Color, 0, len(CurrentTheme.Palette))
	for _, hex := range CurrentTheme.Palette {
		c, err := spring.ParseHex(hex)
		if err != nil {
			continue
		}
		out = append(out, c)
	}
	if len(out) == 0 {
		out = append(out, spring.White)
	}
	return out
}

func (m *Model) nextColor() {
	palette := m.palette()
	m.paletteIdx = (m.paletteIdx + 1) % len(palette)
	m.tint.SetTargetValue(palette[m.paletteIdx])
}

func (m *Model) adjustParam(factor float64) {
	switch m.params[m.selected] {
	case "force":
		m.force *= factor
	case "drag":
		m.drag *= factor
	}
	m.applyParams()
}

func (m *Model) applyParams() {
	m.position.SetForce(m.force)
	m.position.SetDrag(m.drag)
	m.point.SetCommonForce(m.force)
	m.point.SetCommonDrag(m.drag)
	m.tintSpring.SetCommonForce(m.force)
	m.tintSpring.SetCommonDrag(m.drag)
	m.attitude.SetForce(m.force)
	m.attitude.SetDrag(m.drag)
	m.osc.Force, m.osc.Drag = m.force, m.drag
}

func (m *Model) setMode(mode integrators.Mode) {
	m.position.SetIntegrationMode(mode)
	m.point.SetIntegrationMode(mode)
	m.tintSpring.SetIntegrationMode(mode)
	m.attitude.SetIntegrationMode(mode)
}

func (m *Model) setTuning(tuning dynamo.TuningConfig) {
	m.driver.SetTuning(tuning)
	m.position.SetTuning(tuning)
	m.point.SetTuning(tuning)
	m.tintSpring.SetTuning(tuning)
	m.attitude.SetTuning(tuning)
}

func (m *Model) reset() {
	running, help := m.running, m.showHelp
	*m = NewModel(m.tuning, m.initialForce, m.initialDrag, m.preset)
	m.running, m.showHelp = running, help
}

func (m *Model) draw() {
	m.plane.Clear()
	w, h := m.plane.Size()
	m.plane.Line(0, h/2, w-1, h/2)
	m.plane.Line(w/2, 0, w/2, h-1)
	tx, ty := m.plane.Plot(m.point.Target()[0], m.point.Target()[1], 1.1)
	m.plane.Cross(tx, ty, 3)
	px, py := m.plane.Plot(m.point.CurrentValue()[0], m.point.CurrentValue()[1], 1.1)
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			m.plane.Set(px+dx, py+dy)
		}
	}

	m.cubeView.Clear()
	m.cube.Render(m.cubeView, m.camera, m.attitude.CurrentValue())
}

func (m Model) View() string {
	m.draw()

	title := GradientText("SPRINGSIM", CurrentTheme.Primary, CurrentTheme.Secondary)
	if m.preset != "" {
		title += "  " + lipgloss.NewStyle().Foreground(CurrentTheme.Muted).Render(m.preset)
	}

	status := StatusRunning.Render("RUNNING")
	if !m.running {
		status = StatusPaused.Render("PAUSED")
	}
	rate := "variable rate"
	if m.tuning.DoFixedUpdateRate {
		rate = fmt.Sprintf("fixed %.0f Hz", 1/m.tuning.FixedTimeStep)
	}
	mode := m.position.IntegrationMode().String()
	if m.position.UsesAnalytical(1.0 / 60.0) {
		mode += " (analytical)"
	}

	var left strings.Builder
	left.WriteString(title + "\n" + status + "  " + rate + "  " + mode + "\n\n")
	left.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		panelStyle.Render(m.plane.String()),
		panelStyle.Render(m.cubeView.String())) + "\n")

	x := m.position.CurrentValue()
	left.WriteString(labelStyle.Render("Bar") + ProgressBar((x+1)/2, 40) + "\n")
	left.WriteString(labelStyle.Render("Swatch") + Swatch(m.swatch.Value(), 40) + "\n")

	var s strings.Builder
	if len(m.energy) > 1 {
		chart := asciigraph.Plot(m.energy, asciigraph.Height(5), asciigraph.Width(36), asciigraph.Caption("energy"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}
	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.2fs", m.clock.t)) + "\n")
	s.WriteString(labelStyle.Render("Bar") + valueStyle.Render(fmt.Sprintf("%+.3f → %+.3f", x, m.position.Target())) + "\n")
	s.WriteString(labelStyle.Render("Swatch") + valueStyle.Render(m.swatch.Value().Hex()) + "\n")
	s.WriteString(labelStyle.Render("Cube") + valueStyle.Render(fmt.Sprintf("%.1f° to go", mgl64.RadToDeg(m.attitude.AngleToTarget()))) + "\n")
	s.WriteString(labelStyle.Render("Damping") + valueStyle.Render(fmt.Sprintf("ζ=%.2f", m.osc.DampingRatio())) + "\n")

	s.WriteString("\nPARAMETERS\n")
	for i, name := range m.params {
		val := m.force
		if name == "drag" {
			val = m.drag
		}
		line := fmt.Sprintf("%-8s %10.2f", name, val)
		if i == m.selected {
			s.WriteString(activeParamStyle.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + labelStyle.Render(line) + "\n")
		}
	}

	s.WriteString("\nEVENTS\n")
	if len(m.events.lines) == 0 {
		s.WriteString(labelStyle.Render("  (none)") + "\n")
	}
	for _, line := range m.events.lines {
		s.WriteString(valueStyle.Render(line) + "\n")
	}
	s.WriteString(helpStyle.Render(Separator(20) + "\nSP:Pause R:Reset Q:Quit\n←→:Bar WASD:Point []:Cube\nC:Colour I:Mode F:Rate ?:Help"))

	view := lipgloss.JoinHorizontal(lipgloss.Top, left.String(), statsStyle.Render(s.String()))
	if m.showHelp {
		return helpOverlay + "\n\n" + view
	}
	return view
}

const helpOverlay = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume             ║
║  R        - Reset                    ║
║  Q        - Quit                     ║
║  ←/→ h/l  - Move bar target          ║
║  X / V    - Flip bar target / kick   ║
║  W/A/S/D  - Move crosshair           ║
║  [ ] , .  - Yaw / pitch cube target  ║
║  C        - Next swatch colour       ║
║  Tab      - Select force or drag     ║
║  ↑/↓ k/j  - Adjust by 10%            ║
║  I        - Cycle integration mode   ║
║  F        - Toggle fixed update rate ║
║  E        - Snap to equilibrium      ║
║  + / -    - Zoom cube                ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝`

func RunLive(tuning dynamo.TuningConfig, force, drag float64, preset string) error {
	_, err := tea.NewProgram(NewModel(tuning, force, drag, preset), tea.WithAltScreen()).Run()
	return err
}
