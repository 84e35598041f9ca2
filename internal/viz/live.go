package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/r-mohan/quadnmpc/internal/dynamics"
	"github.com/r-mohan/quadnmpc/internal/mpc"
	"github.com/r-mohan/quadnmpc/internal/sim"
	"github.com/r-mohan/quadnmpc/internal/vectors"
)

const historyCapacity = 400

type TickMsg time.Time

// Live is a terminal view of a running closed loop: each tick solves the
// NLP, applies the first input and redraws the recent state history.
type Live struct {
	plant      dynamics.Model
	controller sim.Controller
	xSet, uSet []float64

	state []float64
	input []float64
	t, dt float64

	history  vectors.VectorList
	times    []float64
	failures int
	running  bool
	err      string
}

// NewLive builds the live view starting from x0.
func NewLive(plant dynamics.Model, controller sim.Controller, x0, xSet, uSet []float64, dt float64) Live {
	state := make([]float64, len(x0))
	copy(state, x0)
	input := make([]float64, len(uSet))
	copy(input, uSet)
	return Live{
		plant:      plant,
		controller: controller,
		xSet:       xSet,
		uSet:       uSet,
		state:      state,
		input:      input,
		dt:         dt,
		history:    make(vectors.VectorList, 0, historyCapacity),
		times:      make([]float64, 0, historyCapacity),
		running:    true,
	}
}

func (m Live) Init() tea.Cmd {
	// NLP solves dominate the frame budget; tick well below refresh rate.
	return tea.Tick(time.Second/10, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Live) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		}
	case TickMsg:
		if m.running {
			m.step()
		}
		return m, tea.Tick(time.Second/10, func(t time.Time) tea.Msg { return TickMsg(t) })
	}
	return m, nil
}

func (m *Live) step() {
	n := m.controller.Horizon()
	_, err := m.controller.Solve(mpc.Request{
		X0:   m.state,
		XRef: vectors.Repeat(m.xSet, n),
		URef: vectors.Repeat(m.uSet, n),
	})
	if err != nil {
		m.failures++
		m.err = err.Error()
	} else {
		m.err = ""
		m.input = m.controller.PredictedInputs().Get(0)
	}

	next, err := m.plant.Step(m.dt, m.state, m.input, nil)
	if err != nil {
		m.err = err.Error()
		m.running = false
		return
	}
	m.state = next
	m.t += m.dt

	snap := make([]float64, len(m.state))
	copy(snap, m.state)
	m.history = append(m.history, snap)
	m.times = append(m.times, m.t)
	if len(m.history) > historyCapacity {
		m.history = m.history[1:]
		m.times = m.times[1:]
	}
}

func (m Live) View() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("receding-horizon control  t=%.2fs", m.t)))
	b.WriteString("\n")

	if len(m.history) >= 2 {
		channels := StateChannels()
		if m.plant.NX() != 13 {
			channels = []Channel{{Label: "lifted state", Start: 0, Stop: m.plant.NX()}}
		}
		b.WriteString(RenderSeries("state history", m.times, m.history, channels))
	}

	b.WriteString(labelStyle.Render(fmt.Sprintf("solve failures: %d", m.failures)))
	b.WriteString("\n")
	if m.err != "" {
		b.WriteString(labelStyle.Render("last error: " + m.err))
		b.WriteString("\n")
	}
	if !m.running {
		b.WriteString(labelStyle.Render("paused"))
		b.WriteString("\n")
	}
	b.WriteString(labelStyle.Render("space pause/resume, q quit"))
	b.WriteString("\n")
	return b.String()
}
