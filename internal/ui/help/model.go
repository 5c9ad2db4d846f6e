package help

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/voter-roll/internal/keys"
	"github.com/nhle/voter-roll/internal/theme"
)

// Topic is the screen the help page was opened from. Its keys are listed
// first.
type Topic int

const (
	TopicDashboard Topic = iota
	TopicVoters
	TopicPolitical
	TopicVoting
)

type section struct {
	title    string
	bindings []key.Binding
	note     string
}

// Model is the help page.
type Model struct {
	keys   *keys.KeyMap
	topic  Topic
	width  int
	height int
}

// New creates a help page for the given key map.
func New(k *keys.KeyMap, width, height int) Model {
	return Model{keys: k, width: width, height: height}
}

// Init returns nil.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update is a no-op; the app closes the page.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

// SetTopic selects the screen whose keys lead the page.
func (m *Model) SetTopic(t Topic) {
	m.topic = t
}

// SetSize updates the page dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) topicSection() section {
	k := m.keys
	switch m.topic {
	case TopicVoters:
		return section{
			title:    "Voter list",
			bindings: []key.Binding{k.Up, k.Down, k.Search, k.Refresh, k.Back},
			note:     "Search matches a name fragment or an exact serial number.",
		}
	case TopicPolitical:
		return section{
			title:    "Political status",
			bindings: []key.Binding{k.Toggle, k.Mark, k.CycleFilter, k.CycleParty, k.Search, k.Back},
			note:     "Tab switches unmarked and marked. The party filter applies while marked.",
		}
	case TopicVoting:
		return section{
			title:    "Voting status",
			bindings: []key.Binding{k.Toggle, k.CycleFilter, k.CycleParty, k.Search, k.Back},
			note:     "Space saves at once. Tab cycles not voted, voted and all.",
		}
	default:
		return section{
			title:    "Dashboard",
			bindings: []key.Binding{k.Prev, k.Next, k.OpenVoters, k.OpenPolitical, k.OpenVoting, k.Refresh},
		}
	}
}

func (m Model) sections() []section {
	k := m.keys
	return []section{
		m.topicSection(),
		{
			title:    "Everywhere",
			bindings: []key.Binding{k.Command, k.Help, k.Quit},
			note:     "Lists load 20 voters at a time. Reaching the last page fetches more.",
		},
	}
}

// View renders the topic's keys, then the global ones.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	keyStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorBlue).Width(8)

	var b strings.Builder
	for i, s := range m.sections() {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(titleStyle.Render(s.title))
		b.WriteString("\n")
		for _, binding := range s.bindings {
			h := binding.Help()
			b.WriteString(keyStyle.Render(h.Key))
			b.WriteString(h.Desc)
			b.WriteString("\n")
		}
		if s.note != "" {
			b.WriteString(theme.HelpStyle.Render(s.note))
			b.WriteString("\n")
		}
	}

	return theme.PanelStyle.
		Width(m.width - 4).
		Height(m.height - 4).
		Render(strings.TrimRight(b.String(), "\n"))
}
