package app

import (
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/voter-roll/internal/directory"
	"github.com/nhle/voter-roll/internal/keys"
	"github.com/nhle/voter-roll/internal/listctl"
	"github.com/nhle/voter-roll/internal/model"
	"github.com/nhle/voter-roll/internal/ui"
	"github.com/nhle/voter-roll/internal/ui/command"
	"github.com/nhle/voter-roll/internal/ui/dashboard"
	helpview "github.com/nhle/voter-roll/internal/ui/help"
	"github.com/nhle/voter-roll/internal/ui/roster"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewDashboard ViewState = iota
	ViewRoster
	ViewHelp
	ViewCommand
)

// Options wires the app to the voter API and the operator's settings.
type Options struct {
	Directory directory.Directory
	Mutator   directory.Mutator

	// Ward is opened on the dashboard at startup.
	Ward int

	// UpdatedBy is recorded against every status mutation.
	UpdatedBy string

	List listctl.Options

	// Logout forgets the stored session token.
	Logout func() error

	// SessionReset drops the cached token after the API rejects it, so
	// the next request reads a fresh login.
	SessionReset func()
}

// Model is the root Bubble Tea model that manages view routing and
// layout. At most one booth screen exists at a time; navigating away
// closes its list controller.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	keys         *keys.KeyMap
	opts         Options

	dashboard   dashboard.Model
	roster      roster.Model
	hasRoster   bool
	helpView    helpview.Model
	commandView command.Model

	ready            bool
	authErrorMessage string
	notice           string
}

// New creates the root application model.
func New(opts Options) Model {
	k := keys.DefaultKeyMap()
	return Model{
		currentView: ViewDashboard,
		keys:        k,
		opts:        opts,
		layout:      ui.NewLayout(80, 24),
		dashboard:   dashboard.New(opts.Directory, opts.Ward, k, 80, 22),
		helpView:    helpview.New(k, 80, 22),
		commandView: command.New(80, 22),
	}
}

// Init loads the dashboard ward.
func (m Model) Init() tea.Cmd {
	return m.dashboard.Init()
}

// CurrentView returns the active view.
func (m Model) CurrentView() ViewState { return m.currentView }

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w, h := m.layout.ContentWidth(), m.layout.ContentHeight()
		m.dashboard.SetSize(w, h)
		m.helpView.SetSize(w, h)
		m.commandView.SetSize(w, h)
		if m.hasRoster {
			var cmd tea.Cmd
			m.roster, cmd = m.roster.Update(tea.WindowSizeMsg{Width: w, Height: h})
			return m, cmd
		}
		return m, nil

	case dashboard.SummaryLoadedMsg, dashboard.BoothsLoadedMsg:
		var cmd tea.Cmd
		m.dashboard, cmd = m.dashboard.Update(msg)
		return m, cmd

	case dashboard.OpenMsg:
		return m, m.openRoster(msg.Kind, msg.Booth)

	case ui.BackMsg:
		m.closeRoster()
		m.currentView = ViewDashboard
		return m, nil

	case ui.AuthErrorMsg:
		slog.Warn("session rejected", "err", msg.Err)
		if m.opts.SessionReset != nil {
			m.opts.SessionReset()
		}
		m.authErrorMessage = "Session rejected. Run `voterroll login <token>`, then press r."
		return m, nil

	case listctl.Owned:
		// Results for a screen that has been closed are dropped here.
		if !m.hasRoster {
			return m, nil
		}
		var cmd tea.Cmd
		m.roster, cmd = m.roster.Update(msg)
		return m, cmd

	case command.CommandMsg:
		m.currentView = m.previousView
		return m, m.executeCommand(msg)

	case command.ErrorMsg:
		m.currentView = m.previousView
		m.notice = msg.Err.Error()
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, m.quit()
		}

		// Text fields and dialogs get every key.
		if m.currentView == ViewRoster && m.roster.Capturing() {
			break
		}
		if m.currentView == ViewCommand {
			if msg.String() == "esc" {
				m.currentView = m.previousView
				return m, nil
			}
			break
		}

		m.notice = ""
		switch msg.String() {
		case "r":
			// A retry after a fresh login clears the banner; another
			// rejection raises it again.
			m.authErrorMessage = ""

		case "q":
			return m, m.quit()

		case "?":
			if m.currentView == ViewHelp {
				m.currentView = m.previousView
				return m, nil
			}
			m.helpView.SetTopic(m.helpTopic())
			m.previousView = m.currentView
			m.currentView = ViewHelp
			return m, nil

		case "esc":
			if m.currentView == ViewHelp {
				m.currentView = m.previousView
				return m, nil
			}

		case ":":
			if m.currentView == ViewHelp {
				break
			}
			m.previousView = m.currentView
			m.currentView = ViewCommand
			return m, m.commandView.Focus()
		}
	}

	// Delegate to active sub-view
	return m.updateActiveView(msg)
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewDashboard:
		m.dashboard, cmd = m.dashboard.Update(msg)
	case ViewRoster:
		m.roster, cmd = m.roster.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	}

	return m, cmd
}

// openRoster replaces any open booth screen with a new one scoped to
// booth.
func (m *Model) openRoster(kind roster.Kind, booth model.Booth) tea.Cmd {
	m.closeRoster()

	deps := roster.Deps{
		Directory: m.opts.Directory,
		Mutator:   m.opts.Mutator,
		UpdatedBy: m.opts.UpdatedBy,
		Options:   m.opts.List,
	}
	m.roster = roster.New(kind, booth, deps, m.keys, m.layout.ContentWidth(), m.layout.ContentHeight())
	m.hasRoster = true
	m.currentView = ViewRoster

	slog.Debug("opening booth screen", "booth", booth.BoothNumber, "screen", kind.Title())
	return m.roster.Init()
}

func (m *Model) closeRoster() {
	if !m.hasRoster {
		return
	}
	m.roster.Close()
	m.roster = roster.Model{}
	m.hasRoster = false
}

func (m *Model) quit() tea.Cmd {
	m.closeRoster()
	return tea.Quit
}

// executeCommand handles a command from the command palette.
func (m *Model) executeCommand(cmd command.CommandMsg) tea.Cmd {
	switch cmd.Verb {
	case command.VerbWard:
		m.closeRoster()
		m.currentView = ViewDashboard
		return m.dashboard.SetWard(cmd.Arg)

	case command.VerbBooth:
		if !m.dashboard.SelectBooth(cmd.Arg) {
			m.notice = fmt.Sprintf("Ward %d has no booth %d", m.dashboard.WardNo(), cmd.Arg)
			return nil
		}
		if m.hasRoster {
			b, _ := m.dashboard.ActiveBooth()
			return m.openRoster(m.roster.Kind(), b)
		}
		return nil

	case command.VerbRefresh:
		m.authErrorMessage = ""
		if m.currentView == ViewRoster && m.hasRoster {
			return m.roster.Refresh()
		}
		return m.dashboard.Reload()

	case command.VerbLogout:
		if m.opts.Logout != nil {
			if err := m.opts.Logout(); err != nil {
				m.notice = "Logout failed: " + err.Error()
				return nil
			}
		}
		return m.quit()

	case command.VerbQuit:
		return m.quit()
	}
	return nil
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.Header(
		fmt.Sprintf("Voter Roll · Ward %d", m.dashboard.WardNo()),
		m.opts.UpdatedBy,
	)

	notice := m.notice
	if m.authErrorMessage != "" {
		notice = m.authErrorMessage
	}
	footer := m.layout.Footer(m.keyHints(), notice)

	return m.layout.Compose(header, m.renderContent(), footer)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewDashboard:
		return m.dashboard.View()
	case ViewRoster:
		return m.roster.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	default:
		return ""
	}
}

// helpTopic maps the active screen to the help section shown first.
func (m Model) helpTopic() helpview.Topic {
	if m.currentView != ViewRoster || !m.hasRoster {
		return helpview.TopicDashboard
	}
	switch m.roster.Kind() {
	case roster.KindPolitical:
		return helpview.TopicPolitical
	case roster.KindVoting:
		return helpview.TopicVoting
	default:
		return helpview.TopicVoters
	}
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return "enter execute | esc back"
	case ViewRoster:
		return m.roster.Hints()
	default:
		return m.dashboard.Hints()
	}
}
