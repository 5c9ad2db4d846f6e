package command

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/voter-roll/internal/theme"
)

// Verb names a palette command.
type Verb string

const (
	VerbWard    Verb = "ward"
	VerbBooth   Verb = "booth"
	VerbRefresh Verb = "refresh"
	VerbLogout  Verb = "logout"
	VerbQuit    Verb = "quit"
)

// CommandMsg is emitted when the user executes a valid command.
type CommandMsg struct {
	Verb Verb
	Arg  int
}

// ErrorMsg is emitted when the entered text is not a valid command.
type ErrorMsg struct {
	Err error
}

// Parse turns palette input into a command. ward and booth take a
// positive number; the other verbs take no argument.
func Parse(input string) (CommandMsg, error) {
	fields := strings.Fields(strings.ToLower(input))
	if len(fields) == 0 {
		return CommandMsg{}, fmt.Errorf("empty command")
	}

	verb := Verb(fields[0])
	switch verb {
	case "q":
		verb = VerbQuit
	case "w":
		verb = VerbWard
	case "b":
		verb = VerbBooth
	}

	switch verb {
	case VerbWard, VerbBooth:
		if len(fields) != 2 {
			return CommandMsg{}, fmt.Errorf("usage: %s <number>", verb)
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil || n <= 0 {
			return CommandMsg{}, fmt.Errorf("%s: %q is not a number", verb, fields[1])
		}
		return CommandMsg{Verb: verb, Arg: n}, nil
	case VerbRefresh, VerbLogout, VerbQuit:
		if len(fields) != 1 {
			return CommandMsg{}, fmt.Errorf("%s takes no argument", verb)
		}
		return CommandMsg{Verb: verb}, nil
	default:
		return CommandMsg{}, fmt.Errorf("unknown command %q", fields[0])
	}
}

// Model is the command palette view.
type Model struct {
	input  textinput.Model
	width  int
	height int
}

// New creates a new command palette model.
func New(width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "ward 12 · booth 3 · refresh · logout · quit"
	ti.Prompt = ": "
	ti.Focus()
	ti.Width = width - 6

	return Model{
		input:  ti,
		width:  width,
		height: height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the command palette.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			text := strings.TrimSpace(m.input.Value())
			m.input.Reset()
			if text == "" {
				return m, nil
			}
			parsed, err := Parse(text)
			return m, func() tea.Msg {
				if err != nil {
					return ErrorMsg{Err: err}
				}
				return parsed
			}
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the command palette.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	title := titleStyle.Render("Command Palette")
	input := m.input.View()

	content := lipgloss.JoinVertical(lipgloss.Left, title, input)

	return theme.PanelStyle.
		Width(m.width - 4).
		Render(content)
}

// SetSize updates the command palette dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 6
}

// Focus gives keyboard focus to the text input.
func (m *Model) Focus() tea.Cmd {
	return m.input.Focus()
}
