package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pierrevial/candy-for-charon/llbc"
	"github.com/pierrevial/candy-for-charon/translate"
	"github.com/pierrevial/candy-for-charon/ullbc"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	funStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#90EE90"))

	failStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	opaqueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type modelState int

const (
	stateSelectFun modelState = iota
	stateShowBody
)

// funEntry is one browsable declaration with both renderings precomputed.
type funEntry struct {
	name         string
	status       string
	unstructured string
	structured   string
	diag         string
}

type inspectModel struct {
	err       error
	cratePath string
	opts      []translate.Option
	crateName string
	funs      []funEntry
	selected  int
	state     modelState
	showRaw   bool
	viewport  viewport.Model
	width     int
	height    int
	ready     bool
}

type loadedMsg struct {
	err       error
	crateName string
	funs      []funEntry
}

func newInspectModel(cratePath string, opts []translate.Option) *inspectModel {
	return &inspectModel{
		cratePath: cratePath,
		opts:      opts,
		state:     stateSelectFun,
	}
}

func (m *inspectModel) Init() tea.Cmd {
	return m.loadCrate
}

func (m *inspectModel) loadCrate() tea.Msg {
	crate, out, err := load(m.cratePath, m.opts)
	if err != nil {
		return loadedMsg{err: err}
	}

	diags := make(map[string]string)
	for _, d := range out.Diagnostics {
		diags[d.Decl] = d.Error()
	}

	env := crate.FormatEnv()
	var funs []funEntry
	for i := range crate.Funs {
		d := &crate.Funs[i]
		e := funEntry{name: d.Name, status: status(d, out)}
		if d.Body != nil {
			e.unstructured = ullbc.FormatBody(localEnv(env, d.Body.Locals), d.Body)
		}
		if b := out.Funs[d.ID]; b != nil {
			e.structured = llbc.FormatBody(structuredEnv(env, b), b)
		}
		e.diag = diags[d.Name]
		funs = append(funs, e)
	}
	for i := range crate.Globals {
		d := &crate.Globals[i]
		e := funEntry{name: d.Name + " (global)", status: "opaque"}
		if d.Body != nil {
			e.status = "failed"
			e.unstructured = ullbc.FormatBody(localEnv(env, d.Body.Locals), d.Body)
		}
		if b := out.Globals[d.ID]; b != nil {
			e.status = "ok"
			e.structured = llbc.FormatBody(structuredEnv(env, b), b)
		}
		e.diag = diags[d.Name]
		funs = append(funs, e)
	}

	return loadedMsg{crateName: crate.Name, funs: funs}
}

func (m *inspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		// Header, mode line and help line bracket the viewport.
		vh := msg.Height - 5
		if vh < 1 {
			vh = 1
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width, vh)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = vh
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "up", "k":
			if m.state == stateSelectFun && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectFun && m.selected < len(m.funs)-1 {
				m.selected++
			}

		case "enter":
			if m.state == stateSelectFun && len(m.funs) > 0 {
				m.state = stateShowBody
				m.showRaw = m.funs[m.selected].structured == ""
				m.setContent()
			}

		case "tab":
			if m.state == stateShowBody {
				m.showRaw = !m.showRaw
				m.setContent()
			}

		case "esc":
			if m.state == stateShowBody {
				m.state = stateSelectFun
			}
		}

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.crateName = msg.crateName
		m.funs = msg.funs
	}

	if m.state == stateShowBody && m.ready {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *inspectModel) setContent() {
	if !m.ready {
		return
	}
	f := m.funs[m.selected]
	content := f.structured
	if m.showRaw {
		content = f.unstructured
	}
	if content == "" {
		content = "(no body)"
	}
	if f.diag != "" {
		content = failStyle.Render(f.diag) + "\n\n" + content
	}
	m.viewport.SetContent(content)
	m.viewport.GotoTop()
}

func (m *inspectModel) View() string {
	if m.err != nil {
		return failStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}

	if len(m.funs) == 0 {
		return "Loading crate..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("Crate Inspector"))
	b.WriteString(" ")
	b.WriteString(m.crateName)
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectFun:
		b.WriteString("Select a declaration:\n\n")
		for i, f := range m.funs {
			line := funStyle.Render(f.name) + "  " + statusBadge(f.status)
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + f.name + "  " + f.status))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter view • q quit"))

	case stateShowBody:
		f := m.funs[m.selected]
		mode := "structured"
		if m.showRaw {
			mode = "unstructured"
		}
		b.WriteString(funStyle.Render(f.name))
		b.WriteString("  [")
		b.WriteString(mode)
		b.WriteString("]\n")
		if m.ready {
			b.WriteString(m.viewport.View())
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("tab switch view • ↑/↓ scroll • esc back • q quit"))
	}

	return b.String()
}

func statusBadge(s string) string {
	switch s {
	case "ok":
		return okStyle.Render(s)
	case "failed":
		return failStyle.Render(s)
	default:
		return opaqueStyle.Render(s)
	}
}

func runInteractive(cratePath string, opts []translate.Option) error {
	p := tea.NewProgram(newInspectModel(cratePath, opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
