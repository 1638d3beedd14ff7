package cli

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/flownet/pkg/expr"
)

// REPL styles
var (
	replPromptStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	replInputStyle  = lipgloss.NewStyle().Foreground(colorWhite)
	replDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
)

// replScrollback bounds how many past entries the view shows.
const replScrollback = 20

// =============================================================================
// replModel - Interactive expression prompt
// =============================================================================

type replEntry struct {
	input  string
	output string
	err    bool
}

// replModel is the bubbletea model behind "flownet eval -i".
type replModel struct {
	eval    *expr.Evaluator
	input   []rune
	entries []replEntry

	// inputs is the recall history; recall indexes it while browsing and
	// equals len(inputs) otherwise.
	inputs []string
	recall int

	quitting bool
}

func newREPLModel(ev *expr.Evaluator) replModel {
	return replModel{eval: ev}
}

func (m replModel) Init() tea.Cmd {
	return nil
}

func (m replModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.quitting = true
		return m, tea.Quit
	case tea.KeyCtrlD:
		if len(m.input) == 0 {
			m.quitting = true
			return m, tea.Quit
		}
	case tea.KeyEnter:
		return m.submit()
	case tea.KeyBackspace:
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
	case tea.KeyCtrlU:
		m.input = nil
	case tea.KeyUp:
		if m.recall > 0 {
			m.recall--
			m.input = []rune(m.inputs[m.recall])
		}
	case tea.KeyDown:
		if m.recall < len(m.inputs)-1 {
			m.recall++
			m.input = []rune(m.inputs[m.recall])
		} else {
			m.recall = len(m.inputs)
			m.input = nil
		}
	case tea.KeySpace:
		m.input = append(m.input, ' ')
	case tea.KeyRunes:
		m.input = append(m.input, key.Runes...)
	}
	return m, nil
}

func (m replModel) submit() (tea.Model, tea.Cmd) {
	line := strings.TrimSpace(string(m.input))
	m.input = nil
	if line == "" {
		return m, nil
	}

	m.inputs = append(m.inputs, line)
	m.recall = len(m.inputs)

	switch line {
	case "quit", "exit":
		m.quitting = true
		return m, tea.Quit
	case "vars":
		out := strings.Join(sortedVars(m.eval), "\n")
		if out == "" {
			out = "no variables"
		}
		m.entries = append(m.entries, replEntry{input: line, output: out})
		return m, nil
	}

	out, err := evalLine(m.eval, line)
	if err != nil {
		m.entries = append(m.entries, replEntry{input: line, output: err.Error(), err: true})
		return m, nil
	}
	m.entries = append(m.entries, replEntry{input: line, output: out})
	return m, nil
}

func (m replModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("flownet eval"))
	b.WriteString("\n")
	b.WriteString(replDimStyle.Render("NAME = EXPR defines a variable  vars lists them  ↑/↓ history  esc quit"))
	b.WriteString("\n\n")

	start := 0
	if len(m.entries) > replScrollback {
		start = len(m.entries) - replScrollback
	}
	for _, e := range m.entries[start:] {
		b.WriteString(replDimStyle.Render(iconInfo + " " + e.input))
		b.WriteString("\n")
		if e.err {
			b.WriteString(StyleError.Render(iconError + " " + e.output))
		} else {
			b.WriteString(StyleNumber.Render(e.output))
		}
		b.WriteString("\n")
	}

	if m.quitting {
		return b.String()
	}
	b.WriteString(replPromptStyle.Render(iconInfo + " "))
	b.WriteString(replInputStyle.Render(string(m.input)))
	b.WriteString(replDimStyle.Render("█"))
	b.WriteString("\n")
	return b.String()
}
