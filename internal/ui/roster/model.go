package roster

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/voter-roll/internal/directory"
	"github.com/nhle/voter-roll/internal/keys"
	"github.com/nhle/voter-roll/internal/listctl"
	"github.com/nhle/voter-roll/internal/model"
	"github.com/nhle/voter-roll/internal/theme"
	"github.com/nhle/voter-roll/internal/ui"
	"github.com/nhle/voter-roll/internal/ui/partypicker"
)

// Kind selects which booth screen a roster model drives.
type Kind int

const (
	KindVoters Kind = iota
	KindPolitical
	KindVoting
)

// Title returns the screen heading for k.
func (k Kind) Title() string {
	switch k {
	case KindPolitical:
		return "Political status"
	case KindVoting:
		return "Voting status"
	default:
		return "Voters"
	}
}

// votingParties is the party cycle of the voting-status screen.
var votingParties = append([]model.Party{model.PartyAll}, model.Parties...)

// rollList is the part of a listctl.Controller that does not depend on
// its filter type.
type rollList interface {
	Init() tea.Cmd
	Update(msg tea.Msg) tea.Cmd
	SetSearch(text string) tea.Cmd
	Refresh() tea.Cmd
	MaybeLoadMore(sentinelVisible bool) tea.Cmd
	Close()

	ID() string
	Items() []model.Voter
	Total() int
	Page() int
	HasMore() bool
	Fetching() bool
	Search() string
	Err() error

	Toggle(id string)
	IsSelected(id string) bool
	Selected() []string
	Submitting() bool
	SubmitPoliticalStatus(m directory.Mutator, party model.Party, updatedBy string) (tea.Cmd, error)
	ToggleVoted(m directory.Mutator, id string, current bool, updatedBy string) (tea.Cmd, error)
}

// Deps carries what a roster screen needs from the app.
type Deps struct {
	Directory directory.Directory
	Mutator   directory.Mutator
	UpdatedBy string
	Options   listctl.Options
}

// Model is one booth screen: the voter list, its filters and search box,
// and the party picker of the political-status screen.
type Model struct {
	kind  Kind
	booth model.Booth
	deps  Deps
	keys  *keys.KeyMap

	ctl       rollList
	political *listctl.Controller[model.PoliticalFilter]
	voting    *listctl.Controller[model.VotingFilter]

	list        list.Model
	searchInput textinput.Model
	searchMode  bool
	picker      partypicker.Model
	notice      string
	failed      bool

	width  int
	height int
}

// New creates the screen of kind for booth. The controller starts
// unloaded; Init issues the first page request.
func New(kind Kind, booth model.Booth, deps Deps, k *keys.KeyMap, width, height int) Model {
	m := Model{
		kind:  kind,
		booth: booth,
		deps:  deps,
		keys:  k,
	}

	switch kind {
	case KindPolitical:
		m.political = listctl.New(
			booth.BoothNumber,
			model.DefaultPoliticalFilter(),
			listctl.PoliticalQuery(deps.Directory),
			deps.Options,
		)
		m.ctl = m.political
	case KindVoting:
		m.voting = listctl.New(
			booth.BoothNumber,
			model.DefaultVotingFilter(),
			listctl.VotingQuery(deps.Directory),
			deps.Options,
		)
		m.ctl = m.voting
	default:
		m.ctl = listctl.New(
			booth.BoothNumber,
			model.BrowseFilter{},
			listctl.BrowseQuery(deps.Directory),
			deps.Options,
		)
	}

	delegate := voterDelegate{kind: kind, isSelected: m.ctl.IsSelected}
	l := list.New([]list.Item{}, delegate, width, 0)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	m.list = l

	si := textinput.New()
	si.Placeholder = "name or serial number..."
	si.Prompt = "/ "
	m.searchInput = si

	m.picker = partypicker.New(width, height)
	m.SetSize(width, height)
	return m
}

// Init loads the first page.
func (m Model) Init() tea.Cmd {
	return m.ctl.Init()
}

// Kind returns the screen kind.
func (m Model) Kind() Kind { return m.kind }

// Booth returns the booth the screen is scoped to.
func (m Model) Booth() model.Booth { return m.booth }

// ControllerID identifies the list controller behind the screen.
func (m Model) ControllerID() string { return m.ctl.ID() }

// Capturing reports whether keystrokes belong to a text field or dialog
// rather than to global bindings.
func (m Model) Capturing() bool {
	return m.searchMode || m.picker.Active()
}

// Close stops the screen's controller. Late responses are dropped.
func (m Model) Close() {
	m.ctl.Close()
}

// SetSize updates the screen dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.searchInput.Width = width - 4
	m.picker.SetSize(width, height)

	// header, filter bar, search line, footer
	listHeight := height - 4
	if listHeight < 0 {
		listHeight = 0
	}
	m.list.SetSize(width, listHeight)
}

// Update handles messages for the booth screen.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case listctl.Owned:
		return m.handleControllerMsg(msg)

	case partypicker.ChosenMsg:
		return m.submit(msg.Party)

	case partypicker.CancelMsg:
		m.setNotice("")
		return m, nil

	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, m.checkSentinel()

	case tea.KeyMsg:
		if m.picker.Active() {
			var cmd tea.Cmd
			m.picker, cmd = m.picker.Update(msg)
			return m, cmd
		}
		if m.searchMode {
			return m.handleSearchKeys(msg)
		}
		return m.handleNormalKeys(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, tea.Batch(cmd, m.checkSentinel())
	}

	if m.picker.Active() {
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleControllerMsg applies a listctl message and mirrors the outcome
// into the list and the notice line.
func (m Model) handleControllerMsg(msg listctl.Owned) (Model, tea.Cmd) {
	if msg.OwnerID() != m.ctl.ID() {
		return m, nil
	}

	cmd := m.ctl.Update(msg)
	m.syncItems()

	var errCmd tea.Cmd
	switch msg := msg.(type) {
	case listctl.PageLoadedMsg:
		if msg.Err != nil && errors.Is(m.ctl.Err(), msg.Err) {
			errCmd = m.reportError("Could not load voters", msg.Err)
		} else if msg.Err == nil && m.failed {
			m.setNotice("")
		}

	case listctl.BulkDoneMsg:
		if msg.Err != nil {
			errCmd = m.reportError("Update failed, selection kept", msg.Err)
		} else {
			m.setNotice(fmt.Sprintf("Tagged %d voter(s)", msg.Count))
		}

	case listctl.VoteToggledMsg:
		if msg.Err != nil {
			errCmd = m.reportError("Could not update voting status", msg.Err)
		} else {
			m.setNotice("")
		}
	}

	return m, tea.Batch(cmd, errCmd, m.checkSentinel())
}

// reportError shows err in the notice line. Rejected credentials are also
// escalated to the app.
func (m *Model) reportError(prefix string, err error) tea.Cmd {
	m.notice = prefix + ": " + err.Error()
	m.failed = true
	if directory.IsAuthError(err) {
		return func() tea.Msg { return ui.AuthErrorMsg{Err: err} }
	}
	return nil
}

func (m *Model) setNotice(text string) {
	m.notice = text
	m.failed = false
}

// handleSearchKeys processes key input while the search box has focus.
// Every edit restarts the controller's debounce timer.
func (m Model) handleSearchKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchMode = false
		m.searchInput.Blur()
		return m, nil

	case "esc":
		m.searchMode = false
		m.searchInput.Blur()
		m.searchInput.Reset()
		return m, m.ctl.SetSearch("")
	}

	before := m.searchInput.Value()
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	if after := m.searchInput.Value(); after != before {
		return m, tea.Batch(cmd, m.ctl.SetSearch(after))
	}
	return m, cmd
}

// handleNormalKeys processes key input while the list has focus.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m, func() tea.Msg { return ui.BackMsg{} }

	case key.Matches(msg, m.keys.Search):
		m.searchMode = true
		return m, m.searchInput.Focus()

	case key.Matches(msg, m.keys.Refresh):
		m.setNotice("")
		return m, m.ctl.Refresh()

	case key.Matches(msg, m.keys.CycleFilter):
		return m, m.cycleFilter()

	case key.Matches(msg, m.keys.CycleParty):
		return m, m.cycleParty()

	case key.Matches(msg, m.keys.Toggle):
		return m.toggleCurrent()

	case key.Matches(msg, m.keys.Mark):
		return m.openPicker()
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, tea.Batch(cmd, m.checkSentinel())
}

// cycleFilter advances the primary filter of the screen.
func (m *Model) cycleFilter() tea.Cmd {
	switch m.kind {
	case KindPolitical:
		f := m.political.Filter()
		next := model.MarkMarked
		if f.Mark == model.MarkMarked {
			next = model.MarkUnmarked
		}
		m.list.ResetSelected()
		return m.political.SetFilter(f.WithMark(next))

	case KindVoting:
		f := m.voting.Filter()
		switch f.Voted {
		case model.VotedNotYet:
			f.Voted = model.VotedYes
		case model.VotedYes:
			f.Voted = model.VotedAll
		default:
			f.Voted = model.VotedNotYet
		}
		m.list.ResetSelected()
		return m.voting.SetFilter(f)
	}
	return nil
}

// cycleParty advances the party refinement. The political screen only
// refines by party while showing marked voters.
func (m *Model) cycleParty() tea.Cmd {
	switch m.kind {
	case KindPolitical:
		f := m.political.Filter()
		if f.Mark != model.MarkMarked {
			return nil
		}
		f.Party = nextParty(model.Parties, f.Party)
		m.list.ResetSelected()
		return m.political.SetFilter(f)

	case KindVoting:
		f := m.voting.Filter()
		f.Party = nextParty(votingParties, f.Party)
		m.list.ResetSelected()
		return m.voting.SetFilter(f)
	}
	return nil
}

func nextParty(cycle []model.Party, current model.Party) model.Party {
	for i, p := range cycle {
		if p == current {
			return cycle[(i+1)%len(cycle)]
		}
	}
	return cycle[0]
}

// toggleCurrent checks the voter under the cursor on the political
// screen, or flips its voted flag on the voting screen.
func (m Model) toggleCurrent() (Model, tea.Cmd) {
	item, ok := m.list.SelectedItem().(voterItem)
	if !ok {
		return m, nil
	}

	switch m.kind {
	case KindPolitical:
		m.ctl.Toggle(item.voter.ID)
		return m, nil

	case KindVoting:
		cmd, err := m.ctl.ToggleVoted(m.deps.Mutator, item.voter.ID, item.voter.HasVoted, m.deps.UpdatedBy)
		if err != nil {
			m.setNotice(err.Error())
			return m, nil
		}
		m.setNotice("Saving...")
		return m, cmd
	}
	return m, nil
}

func (m Model) openPicker() (Model, tea.Cmd) {
	if m.kind != KindPolitical {
		return m, nil
	}
	if m.ctl.Submitting() {
		m.setNotice(listctl.ErrBusy.Error())
		return m, nil
	}
	n := len(m.ctl.Selected())
	if n == 0 {
		m.setNotice("Select voters with space first")
		return m, nil
	}
	return m, m.picker.Start(n)
}

// submit sends the chosen party for the current selection.
func (m Model) submit(party model.Party) (Model, tea.Cmd) {
	cmd, err := m.ctl.SubmitPoliticalStatus(m.deps.Mutator, party, m.deps.UpdatedBy)
	switch {
	case errors.Is(err, listctl.ErrNoParty):
		m.setNotice(partypicker.ChoosePartyText)
		return m, nil
	case errors.Is(err, listctl.ErrEmptySelection):
		m.setNotice("Select voters with space first")
		return m, nil
	case err != nil:
		m.setNotice(err.Error())
		return m, nil
	}
	m.setNotice(fmt.Sprintf("Tagging %d voter(s) as %s...", len(m.ctl.Selected()), party))
	return m, cmd
}

// syncItems copies the controller's loaded voters into the list. The
// cursor stays on the same voter while that voter is loaded, and goes back
// to the top when a reload drops it.
func (m *Model) syncItems() {
	var current string
	if it, ok := m.list.SelectedItem().(voterItem); ok {
		current = it.voter.ID
	}

	voters := m.ctl.Items()
	items := make([]list.Item, len(voters))
	for i, v := range voters {
		items[i] = voterItem{voter: v}
	}
	m.list.SetItems(items)

	for i, v := range voters {
		if v.ID == current {
			m.list.Select(i)
			return
		}
	}
	m.list.ResetSelected()
}

// checkSentinel reports end-of-list visibility to the controller. The
// last list page being on screen stands in for the sentinel row.
func (m *Model) checkSentinel() tea.Cmd {
	visible := len(m.list.Items()) > 0 && m.list.Paginator.OnLastPage()
	return m.ctl.MaybeLoadMore(visible)
}

// View renders the booth screen.
func (m Model) View() string {
	if m.picker.Active() {
		return lipgloss.Place(
			m.width, m.height,
			lipgloss.Center, lipgloss.Center,
			m.picker.View(),
		)
	}

	title := fmt.Sprintf("%s · Booth %d", m.kind.Title(), m.booth.BoothNumber)
	if m.booth.Location != "" {
		title += " · " + m.booth.Location
	}
	header := theme.HeaderStyle.Render(title)

	var search string
	switch {
	case m.searchMode:
		search = m.searchInput.View()
	case m.ctl.Search() != "":
		search = theme.DimmedStyle.Render("search: " + m.ctl.Search())
	}

	sections := []string{header, m.filterBar(), search, m.body(), m.footer()}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) body() string {
	if len(m.ctl.Items()) > 0 {
		return m.list.View()
	}

	var text string
	switch {
	case m.ctl.Fetching():
		text = "Loading voters..."
	case m.ctl.Err() != nil:
		text = "Press r to retry."
	default:
		text = "No voters match."
	}
	return lipgloss.NewStyle().
		Height(m.list.Height()).
		Render(theme.DimmedStyle.Render(text))
}

// filterBar shows the active filter values as tabs.
func (m Model) filterBar() string {
	switch m.kind {
	case KindPolitical:
		f := m.political.Filter()
		bar := tabs(
			[]string{"Unmarked", "Marked"},
			map[model.MarkFilter]int{model.MarkUnmarked: 0, model.MarkMarked: 1}[f.Mark],
		)
		if f.Mark == model.MarkMarked {
			bar += "  " + partyTabs(model.Parties, f.Party)
		}
		return bar

	case KindVoting:
		f := m.voting.Filter()
		bar := tabs(
			[]string{"Not voted", "Voted", "All"},
			map[model.VotedFilter]int{model.VotedNotYet: 0, model.VotedYes: 1, model.VotedAll: 2}[f.Voted],
		)
		return bar + "  " + partyTabs(votingParties, f.Party)
	}
	return theme.DimmedStyle.Render("All voters")
}

func tabs(labels []string, active int) string {
	out := make([]string, len(labels))
	for i, l := range labels {
		if i == active {
			out[i] = theme.ActiveTabStyle.Render(l)
		} else {
			out[i] = theme.TabStyle.Render(l)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, out...)
}

func partyTabs(parties []model.Party, active model.Party) string {
	labels := make([]string, len(parties))
	idx := 0
	for i, p := range parties {
		labels[i] = string(p)
		if p == active {
			idx = i
		}
	}
	return tabs(labels, idx)
}

// footer shows load progress, the selection and the notice line.
func (m Model) footer() string {
	parts := []string{fmt.Sprintf("%d of %d", len(m.ctl.Items()), m.ctl.Total())}
	if m.ctl.Fetching() && len(m.ctl.Items()) > 0 {
		parts = append(parts, "loading more...")
	}
	if n := len(m.ctl.Selected()); n > 0 {
		parts = append(parts, fmt.Sprintf("%d selected", n))
	}

	line := strings.Join(parts, " · ")
	if m.notice != "" {
		style := theme.HelpStyle
		if m.failed {
			style = theme.ErrorStyle
		}
		line += "  " + style.Render(m.notice)
	}
	return line
}

// Hints returns the key hints for the status bar.
func (m Model) Hints() string {
	switch {
	case m.picker.Active():
		return "enter confirm  esc cancel"
	case m.searchMode:
		return "enter keep  esc clear"
	}

	bindings := []key.Binding{m.keys.Search, m.keys.Refresh}
	switch m.kind {
	case KindPolitical:
		bindings = append(bindings, m.keys.CycleFilter, m.keys.CycleParty, m.keys.Toggle, m.keys.Mark)
	case KindVoting:
		bindings = append(bindings, m.keys.CycleFilter, m.keys.CycleParty, m.keys.Toggle)
	}
	bindings = append(bindings, m.keys.Back, m.keys.Help)
	return ui.HintLine(bindings...)
}

// Refresh reloads the list from page 1.
func (m *Model) Refresh() tea.Cmd {
	m.setNotice("")
	return m.ctl.Refresh()
}
