// Package teatest drives bubbletea models synchronously in tests.
//
// Update is called directly and every returned Cmd is executed inline. Cmds
// that do not return within a short timeout, such as tea.Tick, are dropped,
// so a model's refresh loop never blocks a test.
package teatest

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// MaxDepth bounds how many chained Cmds one Send will follow.
const MaxDepth = 64

// cmdTimeout separates immediate Cmds (engine calls against fakes) from
// timer-based ones.
const cmdTimeout = 20 * time.Millisecond

type Driver struct {
	T     *testing.T
	Model tea.Model

	// Quitting is set once a tea.QuitMsg has been produced.
	Quitting bool
	// Msgs records every message fed to the model, in order.
	Msgs []tea.Msg
}

func New(t *testing.T, model tea.Model) *Driver {
	t.Helper()
	return &Driver{T: t, Model: model}
}

// Init runs the model's Init Cmd.
func (d *Driver) Init() {
	d.T.Helper()
	d.run(d.Model.Init(), 0)
}

// Send feeds msg to the model and runs the resulting Cmds.
func (d *Driver) Send(msg tea.Msg) {
	d.T.Helper()
	if d.Quitting {
		return
	}
	d.update(msg, 0)
}

// Press sends a single rune key.
func (d *Driver) Press(r rune) {
	d.T.Helper()
	d.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
}

func (d *Driver) PressCtrlC() {
	d.T.Helper()
	d.Send(tea.KeyMsg{Type: tea.KeyCtrlC})
}

func (d *Driver) View() string {
	return d.Model.View()
}

func (d *Driver) update(msg tea.Msg, depth int) {
	d.Msgs = append(d.Msgs, msg)
	next, cmd := d.Model.Update(msg)
	d.Model = next
	d.run(cmd, depth+1)
}

func (d *Driver) run(cmd tea.Cmd, depth int) {
	d.T.Helper()
	if cmd == nil {
		return
	}
	if depth >= MaxDepth {
		d.T.Logf("teatest: command chain deeper than %d, stopping", MaxDepth)
		return
	}

	msg, ok := runWithTimeout(cmd)
	if !ok || msg == nil {
		return
	}
	switch m := msg.(type) {
	case tea.BatchMsg:
		for _, c := range m {
			d.run(c, depth+1)
		}
	case tea.QuitMsg:
		d.Quitting = true
		d.Msgs = append(d.Msgs, m)
	default:
		d.update(m, depth)
	}
}

func runWithTimeout(cmd tea.Cmd) (tea.Msg, bool) {
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	select {
	case msg := <-ch:
		return msg, true
	case <-time.After(cmdTimeout):
		return nil, false
	}
}
