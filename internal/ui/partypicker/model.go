package partypicker

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/voter-roll/internal/model"
	"github.com/nhle/voter-roll/internal/theme"
)

// ChoosePartyText is the notice shown when a party was not picked.
const ChoosePartyText = "Choose a party"

// ErrChooseParty is returned when the form is submitted without a party.
var ErrChooseParty = errors.New("choose a party")

// ChosenMsg is dispatched when the user confirms a party.
type ChosenMsg struct {
	Party model.Party
}

// CancelMsg is dispatched when the user backs out of the picker.
type CancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	party   model.Party
	confirm bool
}

// Model is the party selection dialog of the political-status screen.
type Model struct {
	form     *huh.Form
	fb       *formBindings
	selected int
	width    int
	height   int
}

// New creates a new party picker model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// Start resets the form for tagging count selected voters. No party is
// preselected.
func (m *Model) Start(count int) tea.Cmd {
	m.selected = count
	m.fb.party = ""
	m.fb.confirm = true
	m.form = m.buildForm()
	return m.form.Init()
}

// Active reports whether the form is open.
func (m Model) Active() bool {
	return m.form != nil
}

// Update handles messages for the party picker.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
		m.form = nil
		return m, func() tea.Msg { return CancelMsg{} }
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.form = nil
		party, confirmed := m.fb.party, m.fb.confirm
		return m, func() tea.Msg {
			if !confirmed {
				return CancelMsg{}
			}
			return ChosenMsg{Party: party}
		}
	case huh.StateAborted:
		m.form = nil
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

// View renders the party picker.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	title := titleStyle.Render(fmt.Sprintf("Tag %d selected voter(s)", m.selected))

	return theme.PanelStyle.
		Width(m.formWidth()).
		Render(title + "\n" + m.form.View())
}

// SetSize updates the picker dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	options := []huh.Option[model.Party]{
		huh.NewOption("choose a party", model.Party("")),
	}
	for _, p := range model.Parties {
		options = append(options, huh.NewOption(string(p), p))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[model.Party]().
				Title("Party").
				Options(options...).
				Validate(validateParty).
				Value(&m.fb.party),
			huh.NewConfirm().
				Title("Send update?").
				Affirmative("Update").
				Negative("Cancel").
				Value(&m.fb.confirm),
		),
	).WithWidth(m.formWidth() - 6).WithShowHelp(true)
}

func (m Model) formWidth() int {
	if m.width < 40 {
		return 40
	}
	if m.width > 70 {
		return 60
	}
	return m.width - 10
}

func validateParty(p model.Party) error {
	if !p.Valid() {
		return ErrChooseParty
	}
	return nil
}
