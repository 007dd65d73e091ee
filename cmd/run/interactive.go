package main

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	lua "github.com/yuin/gopher-lua"

	"github.com/wippyai/lua-runtime/engine"
	"github.com/wippyai/lua-runtime/runtime"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	outputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// maxScrollback bounds the number of transcript lines kept in the view.
const maxScrollback = 200

// printSink collects output from the Lua print binding so the TUI can
// render it instead of letting it hit stdout under the alt screen.
type printSink struct {
	mu    sync.Mutex
	lines []string
}

func (s *printSink) write(line string) {
	s.mu.Lock()
	s.lines = append(s.lines, line)
	s.mu.Unlock()
}

func (s *printSink) drain() []string {
	s.mu.Lock()
	out := s.lines
	s.lines = nil
	s.mu.Unlock()
	return out
}

// restartNotifier forwards restart notifications into the TUI event loop.
type restartNotifier struct {
	events chan tea.Msg
}

func (n *restartNotifier) LuaInit(*engine.View) error     { return nil }
func (n *restartNotifier) LuaFinalize(*engine.View) error { return nil }

func (n *restartNotifier) LuaRestarted(*engine.View) error {
	select {
	case n.events <- restartedMsg{}:
	default:
	}
	return nil
}

type replModel struct {
	err      error
	ctx      *runtime.Context
	sink     *printSink
	events   chan tea.Msg
	opts     runOptions
	input    textinput.Model
	lines    []string
	history  []string
	histIdx  int
	pending  string
	quitting bool
}

type loadedMsg struct {
	err error
	ctx *runtime.Context
}

type evalMsg struct {
	err    error
	output []string
}

type restartedMsg struct{}

func newReplModel(opts runOptions) *replModel {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render("lua> ")
	ti.Placeholder = `print("hello")`
	ti.Width = 72
	ti.Focus()

	return &replModel{
		opts:   opts,
		input:  ti,
		sink:   &printSink{},
		events: make(chan tea.Msg, 8),
	}
}

func (m *replModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.load, m.waitEvent)
}

// load builds the Context off the UI goroutine and redirects print into
// the sink so script output lands in the transcript.
func (m *replModel) load() tea.Msg {
	ctx, err := newContext(m.opts)
	if err != nil {
		return loadedMsg{err: err}
	}

	sink := m.sink
	if err := ctx.BindFunction("print", func(L *lua.LState) int {
		var parts []string
		for i := 1; i <= L.GetTop(); i++ {
			parts = append(parts, L.Get(i).String())
		}
		sink.write(strings.Join(parts, "\t"))
		return 0
	}); err != nil {
		ctx.Close()
		return loadedMsg{err: err}
	}

	ctx.AddObserver(&restartNotifier{events: m.events})
	return loadedMsg{ctx: ctx}
}

// waitEvent blocks on the observer channel and re-arms itself after
// every delivered message.
func (m *replModel) waitEvent() tea.Msg {
	return <-m.events
}

func (m *replModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "ctrl+d", "esc":
			m.quitting = true
			if m.ctx != nil {
				m.ctx.Close()
			}
			return m, tea.Quit

		case "enter":
			if m.ctx == nil {
				return m, nil
			}
			chunk := strings.TrimSpace(m.input.Value())
			if chunk == "" {
				return m, nil
			}
			m.history = append(m.history, chunk)
			m.histIdx = len(m.history)
			m.pending = chunk
			m.input.SetValue("")
			return m, m.eval(chunk)

		case "up":
			if m.histIdx > 0 {
				m.histIdx--
				m.input.SetValue(m.history[m.histIdx])
				m.input.CursorEnd()
			}
			return m, nil

		case "down":
			if m.histIdx < len(m.history)-1 {
				m.histIdx++
				m.input.SetValue(m.history[m.histIdx])
				m.input.CursorEnd()
			} else {
				m.histIdx = len(m.history)
				m.input.SetValue("")
			}
			return m, nil
		}

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.ctx = msg.ctx
		m.appendLines(m.sink.drain()...)

	case evalMsg:
		m.appendLines(promptStyle.Render("lua> ") + m.pending)
		m.pending = ""
		m.appendLines(msg.output...)
		if msg.err != nil {
			m.appendLines(errorStyle.Render(msg.err.Error()))
		}

	case restartedMsg:
		m.appendLines(noticeStyle.Render("-- restarted --"))
		m.appendLines(m.sink.drain()...)
		return m.updateInput(msg, m.waitEvent)
	}

	return m.updateInput(msg, nil)
}

func (m *replModel) updateInput(msg tea.Msg, extra tea.Cmd) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if extra != nil {
		return m, tea.Batch(cmd, extra)
	}
	return m, cmd
}

func (m *replModel) appendLines(lines ...string) {
	m.lines = append(m.lines, lines...)
	if len(m.lines) > maxScrollback {
		m.lines = m.lines[len(m.lines)-maxScrollback:]
	}
}

// eval runs the chunk off the UI goroutine. As an expression convenience,
// a chunk that fails to parse is retried with a return prefix so "1+2"
// prints 3.
func (m *replModel) eval(chunk string) tea.Cmd {
	ctx := m.ctx
	sink := m.sink
	return func() tea.Msg {
		err := ctx.DoString(chunk)
		if err != nil {
			if rerr := ctx.DoString("print(" + chunk + ")"); rerr == nil {
				err = nil
			}
		}
		return evalMsg{output: sink.drain(), err: err}
	}
}

func (m *replModel) View() string {
	if m.quitting {
		return ""
	}
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress Ctrl+C to quit.", m.err))
	}
	if m.ctx == nil {
		return "Starting interpreter..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Lua Runner"))
	if m.opts.script != "" {
		b.WriteString(" ")
		b.WriteString(m.opts.script)
	}
	b.WriteString("\n\n")

	for _, line := range m.lines {
		b.WriteString(outputStyle.Render(line))
		b.WriteString("\n")
	}
	if len(m.lines) > 0 {
		b.WriteString("\n")
	}

	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("enter eval • ↑/↓ history • ctrl+c quit"))
	return b.String()
}

func runInteractive(opts runOptions) error {
	p := tea.NewProgram(newReplModel(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
