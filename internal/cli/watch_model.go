package cli

import (
	"context"
	"strings"
	"time"

	"github.com/alexanderramin/worktimer/internal/cli/formatter"
	"github.com/alexanderramin/worktimer/internal/domain"
	"github.com/alexanderramin/worktimer/internal/engine"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// sessionEngine is the part of engine.Engine the watch view drives.
type sessionEngine interface {
	State() engine.View
	StartDay(ctx context.Context) error
	Pause(ctx context.Context) error
	Resume(ctx context.Context) error
	EndDay(ctx context.Context) error
}

type watchKeys struct {
	Start  key.Binding
	Pause  key.Binding
	Resume key.Binding
	End    key.Binding
	Yes    key.Binding
	Quit   key.Binding
}

func defaultWatchKeys() watchKeys {
	return watchKeys{
		Start:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "start")),
		Pause:  key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pause")),
		Resume: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "resume")),
		End:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "end")),
		Yes:    key.NewBinding(key.WithKeys("y", "Y")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

type refreshMsg time.Time

type commandDoneMsg struct {
	cmd domain.Command
	err error
}

type watchModel struct {
	ctx  context.Context
	eng  sessionEngine
	keys watchKeys

	view       engine.View
	err        error
	confirmEnd bool
	pending    bool
}

func newWatchModel(ctx context.Context, eng sessionEngine) *watchModel {
	return &watchModel{
		ctx:  ctx,
		eng:  eng,
		keys: defaultWatchKeys(),
		view: eng.State(),
	}
}

// refresh only re-reads the engine; elapsed time is computed there.
func refresh() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return refreshMsg(t) })
}

func (m *watchModel) Init() tea.Cmd {
	return refresh()
}

func (m *watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case refreshMsg:
		m.view = m.eng.State()
		return m, refresh()

	case commandDoneMsg:
		m.pending = false
		m.err = msg.err
		m.view = m.eng.State()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *watchModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}
	if m.confirmEnd {
		m.confirmEnd = false
		if key.Matches(msg, m.keys.Yes) {
			return m, m.exec(domain.CommandEnd)
		}
		return m, nil
	}
	if m.pending {
		return m, nil
	}

	v := m.eng.State()
	switch {
	case key.Matches(msg, m.keys.Start) && v.CanStart:
		return m, m.exec(domain.CommandStart)
	case key.Matches(msg, m.keys.Pause) && v.CanPause:
		return m, m.exec(domain.CommandPause)
	case key.Matches(msg, m.keys.Resume) && v.CanResume:
		return m, m.exec(domain.CommandResume)
	case key.Matches(msg, m.keys.End) && v.CanEnd:
		m.confirmEnd = true
	}
	return m, nil
}

func (m *watchModel) exec(cmd domain.Command) tea.Cmd {
	m.pending = true
	m.err = nil
	ctx, eng := m.ctx, m.eng
	return func() tea.Msg {
		var err error
		switch cmd {
		case domain.CommandStart:
			err = eng.StartDay(ctx)
		case domain.CommandPause:
			err = eng.Pause(ctx)
		case domain.CommandResume:
			err = eng.Resume(ctx)
		case domain.CommandEnd:
			err = eng.EndDay(ctx)
		}
		return commandDoneMsg{cmd: cmd, err: err}
	}
}

func (m *watchModel) View() string {
	var b strings.Builder
	b.WriteString(formatter.FormatTimer(m.view))
	b.WriteString("\n")
	b.WriteString(formatter.FormatControls(m.view))
	b.WriteString("\n")
	if m.confirmEnd {
		b.WriteString(formatter.StyleYellow.Render("End the work day? [y/N]"))
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString(formatter.Warn(m.err.Error()))
		b.WriteString("\n")
	}
	return b.String()
}
