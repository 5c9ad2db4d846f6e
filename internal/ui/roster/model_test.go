package roster

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/voter-roll/internal/directory"
	"github.com/nhle/voter-roll/internal/keys"
	"github.com/nhle/voter-roll/internal/listctl"
	"github.com/nhle/voter-roll/internal/model"
	"github.com/nhle/voter-roll/internal/ui"
	"github.com/nhle/voter-roll/internal/ui/partypicker"
)

type fakeDirectory struct {
	mu      sync.Mutex
	voters  []model.Voter
	queries int

	lastPolitical model.PoliticalFilter
	lastVoting    model.VotingFilter
	lastSearch    string

	political [][]directory.PoliticalUpdate
	voting    [][]directory.VotingUpdate

	queryErr error
}

func newFakeDirectory(booth, n int) *fakeDirectory {
	f := &fakeDirectory{}
	for i := 1; i <= n; i++ {
		f.voters = append(f.voters, model.Voter{
			ID:          fmt.Sprintf("%d-%03d", booth, i),
			SerialNo:    i,
			Name:        fmt.Sprintf("Voter %d", i),
			BoothNumber: booth,
		})
	}
	return f
}

func (f *fakeDirectory) CountByWard(_ context.Context, wardNo int) (*model.WardSummary, error) {
	return &model.WardSummary{WardNo: wardNo, TotalVoters: len(f.voters)}, nil
}

func (f *fakeDirectory) BoothsByWard(context.Context, int) ([]model.Booth, error) {
	return nil, nil
}

func (f *fakeDirectory) VotersByBooth(_ context.Context, req directory.PageRequest) (*directory.Page, error) {
	return f.page(req, func(model.Voter) bool { return true })
}

func (f *fakeDirectory) PoliticalStatusVoters(
	_ context.Context,
	req directory.PageRequest,
	filter model.PoliticalFilter,
) (*directory.Page, error) {
	f.mu.Lock()
	f.lastPolitical = filter
	f.mu.Unlock()
	return f.page(req, filter.Matches)
}

func (f *fakeDirectory) VotingStatusVoters(
	_ context.Context,
	req directory.PageRequest,
	filter model.VotingFilter,
) (*directory.Page, error) {
	f.mu.Lock()
	f.lastVoting = filter
	f.mu.Unlock()
	return f.page(req, filter.Matches)
}

func (f *fakeDirectory) page(req directory.PageRequest, match func(model.Voter) bool) (*directory.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.queries++
	f.lastSearch = req.Search
	if f.queryErr != nil {
		return nil, f.queryErr
	}

	var hits []model.Voter
	for _, v := range f.voters {
		if !match(v) {
			continue
		}
		if req.Search != "" && !strings.Contains(strings.ToLower(v.Name), strings.ToLower(req.Search)) {
			continue
		}
		hits = append(hits, v)
	}

	start := (req.Page - 1) * req.Limit
	if start > len(hits) {
		start = len(hits)
	}
	end := start + req.Limit
	if end > len(hits) {
		end = len(hits)
	}
	return &directory.Page{Total: len(hits), Items: hits[start:end]}, nil
}

func (f *fakeDirectory) BulkSetPoliticalStatus(_ context.Context, updates []directory.PoliticalUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.political = append(f.political, updates)
	for _, u := range updates {
		for i := range f.voters {
			if f.voters[i].ID == u.VoterID {
				p := u.Party
				f.voters[i].PoliticalStatus = &p
			}
		}
	}
	return nil
}

func (f *fakeDirectory) BulkSetVotingStatus(_ context.Context, updates []directory.VotingUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.voting = append(f.voting, updates)
	for _, u := range updates {
		for i := range f.voters {
			if f.voters[i].ID == u.VoterID {
				f.voters[i].HasVoted = u.HasVoted
			}
		}
	}
	return nil
}

func (f *fakeDirectory) queryCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queries
}

func newScreen(kind Kind, dir *fakeDirectory) Model {
	deps := Deps{
		Directory: dir,
		Mutator:   dir,
		UpdatedBy: "tester",
		Options:   listctl.Options{Debounce: -1},
	}
	return New(kind, model.Booth{BoothNumber: 7, Location: "Town hall"}, deps, keys.DefaultKeyMap(), 80, 30)
}

// run executes cmd and flattens batches. Commands that do not return
// promptly, such as cursor blinks, are dropped.
func run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()

	select {
	case msg := <-ch:
		if batch, ok := msg.(tea.BatchMsg); ok {
			var out []tea.Msg
			for _, c := range batch {
				out = append(out, run(c)...)
			}
			return out
		}
		if msg == nil {
			return nil
		}
		return []tea.Msg{msg}
	case <-time.After(100 * time.Millisecond):
		return nil
	}
}

// settle feeds controller messages back into m until no work remains and
// returns any app-level messages the screen emitted.
func settle(t *testing.T, m Model, cmd tea.Cmd) (Model, []tea.Msg) {
	t.Helper()
	var emitted []tea.Msg
	for i := 0; cmd != nil; i++ {
		require.Less(t, i, 20, "command chain did not settle")

		var next []tea.Cmd
		for _, msg := range run(cmd) {
			if _, ok := msg.(listctl.Owned); !ok {
				emitted = append(emitted, msg)
				continue
			}
			var c tea.Cmd
			m, c = m.Update(msg)
			next = append(next, c)
		}
		cmd = tea.Batch(next...)
	}
	return m, emitted
}

func press(t *testing.T, m Model, msg tea.KeyMsg) (Model, []tea.Msg) {
	t.Helper()
	m, cmd := m.Update(msg)
	return settle(t, m, cmd)
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

var spaceKey = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}

func TestVotersScreenLoadsMoreAtListEnd(t *testing.T) {
	dir := newFakeDirectory(7, 25)
	m := newScreen(KindVoters, dir)

	m, _ = settle(t, m, m.Init())
	assert.Len(t, m.list.Items(), 20)
	assert.Equal(t, 1, dir.queryCount(), "first page does not reach the list end")
	assert.Contains(t, m.View(), "20 of 25")

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	assert.Len(t, m.list.Items(), 25)
	assert.Equal(t, 2, dir.queryCount())

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 2, dir.queryCount(), "short page ends the list")
}

func TestPoliticalSubmitReloadsUnmarked(t *testing.T) {
	dir := newFakeDirectory(7, 5)
	m := newScreen(KindPolitical, dir)
	m, _ = settle(t, m, m.Init())
	require.Len(t, m.list.Items(), 5)

	m, _ = press(t, m, spaceKey)
	assert.Equal(t, []string{"7-001"}, m.ctl.Selected())

	m, cmd := m.Update(partypicker.ChosenMsg{Party: model.PartyBJP})
	require.NotNil(t, cmd)
	m, _ = settle(t, m, cmd)

	require.Len(t, dir.political, 1)
	assert.Equal(t, []directory.PoliticalUpdate{
		{VoterID: "7-001", Party: model.PartyBJP, UpdatedBy: "tester"},
	}, dir.political[0])
	assert.Empty(t, m.ctl.Selected())
	assert.Len(t, m.list.Items(), 4)
	assert.Equal(t, "Tagged 1 voter(s)", m.notice)
}

func TestMarkWithoutSelection(t *testing.T) {
	dir := newFakeDirectory(7, 3)
	m := newScreen(KindPolitical, dir)
	m, _ = settle(t, m, m.Init())

	m, _ = press(t, m, runeKey('m'))
	assert.False(t, m.picker.Active())
	assert.Equal(t, "Select voters with space first", m.notice)
	assert.Empty(t, dir.political)
}

func TestChosenWithoutPartyIsRejected(t *testing.T) {
	dir := newFakeDirectory(7, 3)
	m := newScreen(KindPolitical, dir)
	m, _ = settle(t, m, m.Init())
	m, _ = press(t, m, spaceKey)

	m, cmd := m.Update(partypicker.ChosenMsg{})
	assert.Nil(t, cmd)
	assert.Equal(t, "Choose a party", m.notice)
	assert.Len(t, m.ctl.Selected(), 1)
}

func TestPoliticalFilterCycling(t *testing.T) {
	dir := newFakeDirectory(7, 3)
	m := newScreen(KindPolitical, dir)
	m, _ = settle(t, m, m.Init())

	m, _ = press(t, m, runeKey('f'))
	assert.Equal(t, model.DefaultPoliticalFilter(), m.political.Filter(), "party is fixed while unmarked")

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, model.PoliticalFilter{Mark: model.MarkMarked, Party: model.PartyLDF}, dir.lastPolitical)

	m, _ = press(t, m, runeKey('f'))
	assert.Equal(t, model.PartyUDF, dir.lastPolitical.Party)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, model.DefaultPoliticalFilter(), m.political.Filter())
}

func TestVotingToggleDropsVoter(t *testing.T) {
	dir := newFakeDirectory(7, 3)
	m := newScreen(KindVoting, dir)
	m, _ = settle(t, m, m.Init())
	require.Len(t, m.list.Items(), 3)

	m, _ = press(t, m, spaceKey)
	require.Len(t, dir.voting, 1)
	assert.Equal(t, directory.VotingUpdate{VoterID: "7-001", HasVoted: true, UpdatedBy: "tester"}, dir.voting[0][0])
	assert.Len(t, m.list.Items(), 2, "not-voted view drops the voter")

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, model.VotedYes, dir.lastVoting.Voted)
	assert.Len(t, m.list.Items(), 1)

	m, _ = press(t, m, runeKey('f'))
	assert.Equal(t, model.PartyLDF, dir.lastVoting.Party)
}

func TestSearchTypingReloads(t *testing.T) {
	dir := newFakeDirectory(7, 12)
	m := newScreen(KindVoters, dir)
	m, _ = settle(t, m, m.Init())

	m, _ = press(t, m, runeKey('/'))
	assert.True(t, m.Capturing())
	m, _ = press(t, m, runeKey('1'))
	m, _ = press(t, m, runeKey('2'))

	assert.Equal(t, "12", dir.lastSearch)
	assert.Len(t, m.list.Items(), 1)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.Capturing())
	assert.Equal(t, "", dir.lastSearch)
	assert.Len(t, m.list.Items(), 12)
}

func TestAuthErrorIsEscalated(t *testing.T) {
	dir := newFakeDirectory(7, 3)
	dir.queryErr = &directory.AuthError{Message: "Invalid token"}
	m := newScreen(KindVoters, dir)

	m, emitted := settle(t, m, m.Init())
	require.Len(t, emitted, 1)
	assert.IsType(t, ui.AuthErrorMsg{}, emitted[0])
	assert.Contains(t, m.notice, "Invalid token")
}

func TestEscGoesBack(t *testing.T) {
	m := newScreen(KindVoters, newFakeDirectory(7, 1))
	_, emitted := press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, []tea.Msg{ui.BackMsg{}}, emitted)
}

func TestClosedScreenIgnoresLateResults(t *testing.T) {
	dir := newFakeDirectory(7, 3)
	m := newScreen(KindVoters, dir)
	cmd := m.Init()
	m.Close()

	m, _ = settle(t, m, cmd)
	assert.Empty(t, m.list.Items())
}

// loadAll pages through the list until every voter of dir is loaded.
func loadAll(t *testing.T, m Model, want int) Model {
	t.Helper()
	m, _ = settle(t, m, m.Init())
	for i := 0; len(m.list.Items()) < want; i++ {
		require.Less(t, i, 10, "list never reached %d voters", want)
		m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	}
	return m
}

func selectedID(m Model) string {
	item, ok := m.list.SelectedItem().(voterItem)
	if !ok {
		return ""
	}
	return item.voter.ID
}

func TestToggleDeepInListReturnsCursorToTop(t *testing.T) {
	dir := newFakeDirectory(7, 45)
	m := newScreen(KindVoting, dir)
	m = loadAll(t, m, 45)

	m.list.Select(36)
	require.Equal(t, "7-037", selectedID(m))

	m, _ = press(t, m, spaceKey)
	require.Len(t, dir.voting, 1)
	assert.Equal(t, "7-037", dir.voting[0][0].VoterID)
	assert.Len(t, m.list.Items(), 20, "reload starts from page one")
	assert.Equal(t, 0, m.list.Index())
	assert.Equal(t, "7-001", selectedID(m))

	m, _ = press(t, m, spaceKey)
	require.Len(t, dir.voting, 2)
	assert.Equal(t, "7-001", dir.voting[1][0].VoterID, "second toggle hits the voter under the cursor")
}

func TestReloadKeepsCursorOnLoadedVoter(t *testing.T) {
	dir := newFakeDirectory(7, 45)
	m := newScreen(KindVoters, dir)
	m = loadAll(t, m, 45)

	m.list.Select(4)
	m, _ = press(t, m, runeKey('r'))
	assert.Len(t, m.list.Items(), 20)
	assert.Equal(t, "7-005", selectedID(m))
	assert.Equal(t, 4, m.list.Index())
}
