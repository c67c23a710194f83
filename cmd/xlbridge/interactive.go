package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/McLeodMoores/xl4j-sub002/registry"
	"github.com/McLeodMoores/xl4j-sub002/runtime"
	"github.com/McLeodMoores/xl4j-sub002/wire"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#217346")).
			Padding(0, 1)

	funcStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#217346"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type interactiveModel struct {
	err        error
	result     wire.Value
	rt         *runtime.Runtime
	configFile string
	exports    []registry.Registration
	inputs     []textinput.Model
	selected   int
	focusIdx   int
	state      modelState
}

type modelState int

const (
	stateSelectFunc modelState = iota
	stateInputArgs
	stateShowResult
)

func newInteractiveModel(configFile string) *interactiveModel {
	return &interactiveModel{
		configFile: configFile,
		state:      stateSelectFunc,
	}
}

type loadedMsg struct {
	err     error
	rt      *runtime.Runtime
	exports []registry.Registration
}

type callResultMsg struct {
	result wire.Value
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.load
}

func (m *interactiveModel) load() tea.Msg {
	cfg, err := loadConfig(m.configFile)
	if err != nil {
		return loadedMsg{err: err}
	}
	// Logs would draw over the alternate screen.
	rt, err := load(context.Background(), cfg, zap.NewNop())
	if err != nil {
		return loadedMsg{err: err}
	}
	var exports []registry.Registration
	for _, def := range rt.Exports() {
		exports = append(exports, def.Registration())
	}
	return loadedMsg{rt: rt, exports: exports}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, m.quit()

		case "q":
			if m.state != stateInputArgs {
				return m, m.quit()
			}

		case "up":
			if m.state == stateSelectFunc && m.selected > 0 {
				m.selected--
			}

		case "down":
			if m.state == stateSelectFunc && m.selected < len(m.exports)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateSelectFunc:
				if len(m.exports) == 0 {
					return m, nil
				}
				m.prepareInputs()
				if len(m.inputs) == 0 {
					return m, m.callFunction
				}
				m.state = stateInputArgs
				return m, nil

			case stateInputArgs:
				return m, m.callFunction

			case stateShowResult:
				m.state = stateSelectFunc
				m.result = nil
			}

		case "tab":
			if m.state == stateInputArgs && len(m.inputs) > 1 {
				m.inputs[m.focusIdx].Blur()
				m.focusIdx = (m.focusIdx + 1) % len(m.inputs)
				m.inputs[m.focusIdx].Focus()
			}

		case "esc":
			switch m.state {
			case stateInputArgs:
				m.state = stateSelectFunc
				m.inputs = nil
			case stateShowResult:
				m.state = stateSelectFunc
				m.result = nil
			}
		}

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.rt = msg.rt
		m.exports = msg.exports

	case callResultMsg:
		m.result = msg.result
		m.state = stateShowResult
	}

	if m.state == stateInputArgs {
		var cmds []tea.Cmd
		for i := range m.inputs {
			var cmd tea.Cmd
			m.inputs[i], cmd = m.inputs[i].Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m *interactiveModel) quit() tea.Cmd {
	if m.rt != nil {
		m.rt.Close()
	}
	return tea.Quit
}

func (m *interactiveModel) prepareInputs() {
	r := m.exports[m.selected]
	m.inputs = make([]textinput.Model, len(r.ArgNames))
	for i, name := range r.ArgNames {
		ti := textinput.New()
		ti.Prompt = name + ": "
		ti.Placeholder = argPlaceholder(r, i)
		ti.Width = 40
		if i == 0 {
			ti.Focus()
		}
		m.inputs[i] = ti
	}
	m.focusIdx = 0
}

func argPlaceholder(r registry.Registration, i int) string {
	if i < len(r.ArgHelp) && r.ArgHelp[i] != "" {
		return r.ArgHelp[i]
	}
	if r.Variadic && i == len(r.ArgNames)-1 {
		return "values, comma-separated"
	}
	return "value"
}

// callFunction parses the inputs as wire values. The last input of a
// variadic export may hold several comma-separated values.
func (m *interactiveModel) callFunction() tea.Msg {
	r := m.exports[m.selected]
	var args []wire.Value
	for i, input := range m.inputs {
		if r.Variadic && i == len(m.inputs)-1 {
			args = append(args, wire.ParseList(input.Value())...)
			continue
		}
		args = append(args, wire.Parse(input.Value()))
	}
	return callResultMsg{result: m.rt.Invoke(r.ExportID, args...)}
}

func (m *interactiveModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}

	if m.rt == nil {
		return "Building export table..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("xlbridge"))
	b.WriteString(fmt.Sprintf(" %d exports, %d live objects", len(m.exports), m.rt.Heap().Len()))
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectFunc:
		b.WriteString("Select an export to call:\n\n")
		for i, r := range m.exports {
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + formatExport(r, false)))
			} else {
				b.WriteString("  " + formatExport(r, true))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter call • q quit"))

	case stateInputArgs:
		r := m.exports[m.selected]
		b.WriteString(fmt.Sprintf("Calling %s\n", funcStyle.Render(r.Name)))
		if r.Help != "" {
			b.WriteString(helpStyle.Render(r.Help))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		for _, input := range m.inputs {
			b.WriteString(input.View())
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render(`tab next field • enter call • esc back • 1.5  TRUE  "text"  {1,2;3,4}  @handle`))

	case stateShowResult:
		r := m.exports[m.selected]
		b.WriteString(fmt.Sprintf("Result of %s:\n\n", funcStyle.Render(r.Name)))
		if m.result.Kind() == wire.KindError {
			b.WriteString(errorStyle.Render(formatValue(m.result)))
		} else {
			b.WriteString(resultStyle.Render(formatValue(m.result)))
			b.WriteString(" ")
			b.WriteString(typeStyle.Render(m.result.Kind().String()))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter continue • q quit"))
	}

	return b.String()
}

func runInteractive(configFile string) error {
	p := tea.NewProgram(newInteractiveModel(configFile), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
