package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/voter-roll/internal/directory"
	"github.com/nhle/voter-roll/internal/keys"
	"github.com/nhle/voter-roll/internal/model"
	"github.com/nhle/voter-roll/internal/theme"
	"github.com/nhle/voter-roll/internal/ui"
	"github.com/nhle/voter-roll/internal/ui/roster"
)

const loadTimeout = 30 * time.Second

// SummaryLoadedMsg carries the ward's headline count.
type SummaryLoadedMsg struct {
	WardNo  int
	Summary *model.WardSummary
	Err     error
}

// BoothsLoadedMsg carries the booths of a ward.
type BoothsLoadedMsg struct {
	WardNo int
	Booths []model.Booth
	Err    error
}

// OpenMsg asks the app to open a booth screen.
type OpenMsg struct {
	Kind  roster.Kind
	Booth model.Booth
}

// Model is the ward dashboard: the voter count and a tab per booth.
type Model struct {
	dir  directory.Directory
	keys *keys.KeyMap

	wardNo  int
	summary *model.WardSummary
	booths  []model.Booth
	active  int
	loading int
	err     error

	width  int
	height int
}

// New creates a dashboard for wardNo.
func New(dir directory.Directory, wardNo int, k *keys.KeyMap, width, height int) Model {
	return Model{
		dir:    dir,
		keys:   k,
		wardNo: wardNo,
		width:  width,
		height: height,
	}
}

// Init loads the ward.
func (m Model) Init() tea.Cmd {
	return m.load()
}

// WardNo returns the ward being shown.
func (m Model) WardNo() int { return m.wardNo }

// Booths returns the loaded booths.
func (m Model) Booths() []model.Booth { return m.booths }

// ActiveBooth returns the selected booth, if any booths are loaded.
func (m Model) ActiveBooth() (model.Booth, bool) {
	if m.active < 0 || m.active >= len(m.booths) {
		return model.Booth{}, false
	}
	return m.booths[m.active], true
}

// SetWard switches to wardNo and reloads.
func (m *Model) SetWard(wardNo int) tea.Cmd {
	m.wardNo = wardNo
	m.summary = nil
	m.booths = nil
	m.active = 0
	return m.load()
}

// Reload fetches the current ward again, keeping the active booth when it
// still exists.
func (m *Model) Reload() tea.Cmd {
	return m.load()
}

// SelectBooth makes boothNumber the active tab. It reports false when the
// ward has no such booth.
func (m *Model) SelectBooth(boothNumber int) bool {
	for i, b := range m.booths {
		if b.BoothNumber == boothNumber {
			m.active = i
			return true
		}
	}
	return false
}

// SetSize updates the dashboard dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) load() tea.Cmd {
	m.loading = 2
	m.err = nil
	dir, ward := m.dir, m.wardNo

	count := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		s, err := dir.CountByWard(ctx, ward)
		return SummaryLoadedMsg{WardNo: ward, Summary: s, Err: err}
	}
	booths := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		b, err := dir.BoothsByWard(ctx, ward)
		return BoothsLoadedMsg{WardNo: ward, Booths: b, Err: err}
	}
	return tea.Batch(count, booths)
}

// Update handles messages for the dashboard.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case SummaryLoadedMsg:
		if msg.WardNo != m.wardNo {
			return m, nil
		}
		m.settled()
		if msg.Err != nil {
			return m, m.fail(msg.Err)
		}
		m.summary = msg.Summary
		return m, nil

	case BoothsLoadedMsg:
		if msg.WardNo != m.wardNo {
			return m, nil
		}
		m.settled()
		if msg.Err != nil {
			return m, m.fail(msg.Err)
		}
		current, hadActive := m.ActiveBooth()
		m.booths = msg.Booths
		m.active = 0
		if hadActive {
			m.SelectBooth(current.BoothNumber)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)
	}
	return m, nil
}

func (m *Model) settled() {
	if m.loading > 0 {
		m.loading--
	}
}

func (m *Model) fail(err error) tea.Cmd {
	m.err = err
	if directory.IsAuthError(err) {
		return func() tea.Msg { return ui.AuthErrorMsg{Err: err} }
	}
	return nil
}

func (m Model) handleKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Next):
		if len(m.booths) > 0 {
			m.active = (m.active + 1) % len(m.booths)
		}
		return m, nil

	case key.Matches(msg, m.keys.Prev):
		if len(m.booths) > 0 {
			m.active = (m.active - 1 + len(m.booths)) % len(m.booths)
		}
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		return m, m.Reload()

	case key.Matches(msg, m.keys.OpenVoters), key.Matches(msg, m.keys.Select):
		return m, m.open(roster.KindVoters)

	case key.Matches(msg, m.keys.OpenPolitical):
		return m, m.open(roster.KindPolitical)

	case key.Matches(msg, m.keys.OpenVoting):
		return m, m.open(roster.KindVoting)
	}
	return m, nil
}

func (m Model) open(kind roster.Kind) tea.Cmd {
	b, ok := m.ActiveBooth()
	if !ok {
		return nil
	}
	return func() tea.Msg { return OpenMsg{Kind: kind, Booth: b} }
}

// View renders the dashboard.
func (m Model) View() string {
	title := theme.HeaderStyle.Render(fmt.Sprintf("Ward %d", m.wardNo))

	var count string
	switch {
	case m.summary != nil:
		count = fmt.Sprintf("%d voters", m.summary.TotalVoters)
	case m.loading > 0:
		count = "Loading..."
	default:
		count = "-"
	}

	sections := []string{title, theme.PanelStyle.Render(count)}

	if m.err != nil {
		sections = append(sections, theme.ErrorStyle.Render("Could not load ward: "+m.err.Error()))
	}

	switch {
	case len(m.booths) > 0:
		sections = append(sections, m.boothTabs())
		if b, ok := m.ActiveBooth(); ok {
			detail := fmt.Sprintf("Booth %d", b.BoothNumber)
			if b.Location != "" {
				detail += "\n" + theme.DimmedStyle.Render(b.Location)
			}
			sections = append(sections, theme.PanelStyle.Render(detail))
		}
		sections = append(sections, theme.HelpStyle.Render(
			"v voters   p political status   s voting status",
		))
	case m.loading == 0 && m.err == nil:
		sections = append(sections, theme.DimmedStyle.Render("No booths in this ward."))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) boothTabs() string {
	tabs := make([]string, len(m.booths))
	for i, b := range m.booths {
		label := fmt.Sprintf("Booth %d", b.BoothNumber)
		if i == m.active {
			tabs[i] = theme.ActiveTabStyle.Render(label)
		} else {
			tabs[i] = theme.TabStyle.Render(label)
		}
	}
	return lipgloss.NewStyle().
		MaxWidth(m.width).
		Render(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
}

// Hints returns the key hints for the status bar.
func (m Model) Hints() string {
	return ui.HintLine(
		m.keys.Prev, m.keys.Next,
		m.keys.OpenVoters, m.keys.OpenPolitical, m.keys.OpenVoting,
		m.keys.Refresh, m.keys.Command, m.keys.Help, m.keys.Quit,
	)
}
