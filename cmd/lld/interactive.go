package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	lld "github.com/wippyai/go-lld"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	flavorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// historyLimit bounds the runs kept on screen.
const historyLimit = 5

type modelState int

const (
	stateSelectFlavor modelState = iota
	stateEditArgs
	stateShowResult
)

type linkRun struct {
	err    error
	res    *lld.Result
	args   []string
	flavor lld.Flavor
}

type interactiveModel struct {
	ctx      context.Context
	bridge   *lld.Bridge
	backend  string
	flavors  []lld.Flavor
	history  []linkRun
	input    textinput.Model
	selected int
	running  bool
	state    modelState
}

type invokedMsg linkRun

func newInteractiveModel(ctx context.Context, bridge *lld.Bridge, cfg *config) *interactiveModel {
	ti := textinput.New()
	ti.Prompt = "args: "
	ti.Placeholder = "-o out main.o"
	ti.Width = 60
	ti.SetValue(strings.Join(cfg.args, " "))

	m := &interactiveModel{
		ctx:     ctx,
		bridge:  bridge,
		backend: cfg.backend,
		flavors: lld.Flavors(),
		input:   ti,
		state:   stateSelectFlavor,
	}
	for i, f := range m.flavors {
		if f == cfg.flavor {
			m.selected = i
		}
	}
	return m
}

func (m *interactiveModel) Init() tea.Cmd {
	return nil
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "q":
			if m.state != stateEditArgs {
				return m, tea.Quit
			}

		case "up", "k":
			if m.state == stateSelectFlavor && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectFlavor && m.selected < len(m.flavors)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateSelectFlavor:
				m.state = stateEditArgs
				m.input.Focus()
				return m, textinput.Blink

			case stateEditArgs:
				if m.running {
					return m, nil
				}
				m.running = true
				return m, m.invoke(m.flavors[m.selected], strings.Fields(m.input.Value()))

			case stateShowResult:
				m.state = stateEditArgs
				m.input.Focus()
				return m, textinput.Blink
			}

		case "esc":
			switch m.state {
			case stateEditArgs:
				m.input.Blur()
				m.state = stateSelectFlavor
			case stateShowResult:
				m.state = stateSelectFlavor
			}
			return m, nil
		}

	case invokedMsg:
		m.running = false
		m.history = append(m.history, linkRun(msg))
		if len(m.history) > historyLimit {
			m.history = m.history[len(m.history)-historyLimit:]
		}
		m.input.Blur()
		m.state = stateShowResult
		return m, nil
	}

	if m.state == stateEditArgs {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *interactiveModel) invoke(flavor lld.Flavor, args []string) tea.Cmd {
	return func() tea.Msg {
		res, err := m.bridge.Invoke(m.ctx, flavor, args)
		return invokedMsg{flavor: flavor, args: args, res: res, err: err}
	}
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("LLD"))
	b.WriteString(" ")
	b.WriteString(m.backend)
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectFlavor:
		b.WriteString("Select a flavor:\n\n")
		for i, f := range m.flavors {
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + f.String()))
			} else {
				b.WriteString("  " + f.String())
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter edit args • q quit"))

	case stateEditArgs:
		fmt.Fprintf(&b, "Linking with %s\n\n", flavorStyle.Render(m.flavors[m.selected].String()))
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
		if m.running {
			b.WriteString(helpStyle.Render("linking..."))
		} else {
			b.WriteString(helpStyle.Render("enter link • esc back"))
		}

	case stateShowResult:
		for i := len(m.history) - 1; i >= 0; i-- {
			b.WriteString(formatRun(m.history[i]))
			b.WriteString("\n")
		}
		b.WriteString(helpStyle.Render("enter edit again • esc flavors • q quit"))
	}

	return b.String()
}

func formatRun(r linkRun) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", flavorStyle.Render(r.flavor.String()), strings.Join(r.args, " "))

	switch {
	case r.err != nil:
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", r.err)))
	case r.res.Success:
		b.WriteString(resultStyle.Render("ok"))
		if r.res.Messages != "" {
			b.WriteString("\n")
			b.WriteString(strings.TrimRight(r.res.Messages, "\n"))
		}
	default:
		b.WriteString(errorStyle.Render("link failed"))
		if r.res.Messages != "" {
			b.WriteString("\n")
			b.WriteString(errorStyle.Render(strings.TrimRight(r.res.Messages, "\n")))
		}
	}
	b.WriteString("\n")
	return b.String()
}

func runInteractive(ctx context.Context, bridge *lld.Bridge, cfg *config) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("interactive mode requires a terminal")
	}
	p := tea.NewProgram(newInteractiveModel(ctx, bridge, cfg), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
