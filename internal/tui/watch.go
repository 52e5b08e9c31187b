// Package tui renders a running instance in the terminal.
package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/cbdfmu/internal/fmu"
	"github.com/san-kum/cbdfmu/internal/signal"
)

var (
	cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	green   = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
)

const historyLen = 120

// Watch steps a co-simulation instance on a timer and shows its outputs.
// The instance must already be out of initialization mode.
type Watch struct {
	inst     *fmu.Instance
	names    []string
	vrs      []signal.ValueReference
	values   []float64
	history  []float64
	stepSize float64
	stopTime float64
	interval time.Duration

	paused   bool
	done     bool
	status   string
	snapshot *fmu.Snapshot
	err      error

	width int
}

func NewWatch(inst *fmu.Instance, outputs []string, stepSize, stopTime float64) (*Watch, error) {
	if len(outputs) == 0 {
		for _, v := range inst.Variables().ByCausality(signal.Output) {
			outputs = append(outputs, v.Name)
		}
	}
	vrs := make([]signal.ValueReference, len(outputs))
	for i, name := range outputs {
		vr, err := inst.Lookup(name)
		if err != nil {
			return nil, err
		}
		vrs[i] = vr
	}
	w := &Watch{
		inst:     inst,
		names:    outputs,
		vrs:      vrs,
		values:   make([]float64, len(vrs)),
		history:  make([]float64, 0, historyLen),
		stepSize: stepSize,
		stopTime: stopTime,
		interval: 50 * time.Millisecond,
		width:    80,
	}
	if err := w.read(); err != nil {
		return nil, err
	}
	return w, nil
}

// Run blocks until the user quits.
func Run(w *Watch) error {
	final, err := tea.NewProgram(w).Run()
	if err != nil {
		return err
	}
	if fw, ok := final.(*Watch); ok {
		fw.snapshot.Release()
		return fw.err
	}
	return nil
}

type tickMsg time.Time

func (w *Watch) tick() tea.Cmd {
	return tea.Tick(w.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (w *Watch) Init() tea.Cmd { return w.tick() }

func (w *Watch) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return w.handleKey(msg)
	case tea.WindowSizeMsg:
		w.width = msg.Width
		return w, nil
	case tickMsg:
		if w.done {
			return w, nil
		}
		if !w.paused {
			w.step()
		}
		return w, w.tick()
	}
	return w, nil
}

func (w *Watch) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return w, tea.Quit
	case " ", "p":
		w.paused = !w.paused
	case "n":
		if w.paused {
			w.step()
		}
	case "s":
		w.capture()
	case "r":
		w.restore()
	}
	return w, nil
}

func (w *Watch) step() {
	t := w.inst.Time()
	if t+w.stepSize > w.stopTime+w.stepSize*0.01 {
		w.done = true
		w.status = "stop time reached"
		return
	}
	if err := w.inst.Step(t, w.stepSize); err != nil {
		w.done = true
		if errors.Is(err, fmu.ErrSimulationTerminated) {
			w.status = "model requested termination"
			return
		}
		w.err = err
		w.status = err.Error()
		return
	}
	if err := w.read(); err != nil {
		w.done = true
		w.err = err
	}
}

func (w *Watch) read() error {
	if err := w.inst.GetReal(w.vrs, w.values); err != nil {
		return err
	}
	if len(w.values) > 0 {
		if len(w.history) == historyLen {
			w.history = w.history[1:]
		}
		w.history = append(w.history, w.values[0])
	}
	return nil
}

func (w *Watch) capture() {
	s, err := w.inst.Capture()
	if err != nil {
		w.status = err.Error()
		return
	}
	w.snapshot.Release()
	w.snapshot = s
	w.status = fmt.Sprintf("captured at t=%.3f", w.inst.Time())
}

// restore brings back the captured signals. Time keeps running forward.
func (w *Watch) restore() {
	if w.snapshot == nil {
		w.status = "nothing captured"
		return
	}
	if err := w.inst.Restore(w.snapshot); err != nil {
		w.status = err.Error()
		return
	}
	w.done = false
	_ = w.read()
	w.status = fmt.Sprintf("restored at t=%.3f", w.inst.Time())
}

func (w *Watch) View() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString("  " + cyan.Render(w.inst.Model().Name()) + "  " +
		dim.Render(w.inst.Identity().Name) + "  " +
		white.Render(fmt.Sprintf("t=%.3f", w.inst.Time())) + "\n")
	b.WriteString(dimmer.Render("  "+strings.Repeat("─", 40)) + "\n\n")

	for i, name := range w.names {
		b.WriteString("  " + dim.Render(fmt.Sprintf("%-24s", name)) + magenta.Render(fmt.Sprintf("%14.6g", w.values[i])) + "\n")
	}
	b.WriteString("\n")

	if len(w.history) > 1 {
		plot := asciigraph.Plot(w.history,
			asciigraph.Height(8),
			asciigraph.Width(min(max(w.width-16, 20), historyLen)),
			asciigraph.Caption(w.names[0]))
		b.WriteString(plot + "\n\n")
	}

	switch {
	case w.err != nil:
		b.WriteString("  " + yellow.Render(w.status) + "\n")
	case w.done:
		b.WriteString("  " + green.Render(w.status) + "\n")
	case w.paused:
		b.WriteString("  " + yellow.Render("paused") + "  " + dim.Render(w.status) + "\n")
	default:
		b.WriteString("  " + green.Render("running") + "  " + dim.Render(w.status) + "\n")
	}
	b.WriteString(dim.Render("  space pause  n step  s capture  r restore  q quit") + "\n")
	return b.String()
}
