package dashboard

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/voter-roll/internal/directory"
	"github.com/nhle/voter-roll/internal/keys"
	"github.com/nhle/voter-roll/internal/model"
	"github.com/nhle/voter-roll/internal/ui"
	"github.com/nhle/voter-roll/internal/ui/roster"
)

type fakeWard struct {
	directory.Directory

	total  int
	booths []model.Booth
	err    error
}

func (f *fakeWard) CountByWard(_ context.Context, wardNo int) (*model.WardSummary, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &model.WardSummary{WardNo: wardNo, TotalVoters: f.total}, nil
}

func (f *fakeWard) BoothsByWard(context.Context, int) ([]model.Booth, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.booths, nil
}

func loaded(t *testing.T, dir directory.Directory) Model {
	t.Helper()
	m := New(dir, 12, keys.DefaultKeyMap(), 100, 30)
	cmd := m.Init()
	require.NotNil(t, cmd)
	for _, c := range cmd().(tea.BatchMsg) {
		m, _ = m.Update(c())
	}
	return m
}

func TestFirstBoothIsActive(t *testing.T) {
	m := loaded(t, &fakeWard{
		total: 1200,
		booths: []model.Booth{
			{BoothNumber: 3, Location: "LP school", WardNo: 12},
			{BoothNumber: 4, Location: "Library", WardNo: 12},
		},
	})

	b, ok := m.ActiveBooth()
	require.True(t, ok)
	assert.Equal(t, 3, b.BoothNumber)

	view := m.View()
	assert.Contains(t, view, "Ward 12")
	assert.Contains(t, view, "1200 voters")
	assert.Contains(t, view, "LP school")
}

func TestBoothTabsWrap(t *testing.T) {
	m := loaded(t, &fakeWard{booths: []model.Booth{{BoothNumber: 1}, {BoothNumber: 2}}})

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	b, _ := m.ActiveBooth()
	assert.Equal(t, 2, b.BoothNumber)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	b, _ = m.ActiveBooth()
	assert.Equal(t, 1, b.BoothNumber)
}

func TestOpenKeys(t *testing.T) {
	m := loaded(t, &fakeWard{booths: []model.Booth{{BoothNumber: 5, Location: "Hall"}}})

	tests := []struct {
		key  rune
		want roster.Kind
	}{
		{'v', roster.KindVoters},
		{'p', roster.KindPolitical},
		{'s', roster.KindVoting},
	}
	for _, tt := range tests {
		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{tt.key}})
		require.NotNil(t, cmd, string(tt.key))
		assert.Equal(t, OpenMsg{Kind: tt.want, Booth: model.Booth{BoothNumber: 5, Location: "Hall"}}, cmd())
	}
}

func TestNothingOpensWithoutBooths(t *testing.T) {
	m := loaded(t, &fakeWard{})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'v'}})
	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), "No booths in this ward.")
}

func TestStaleWardIgnored(t *testing.T) {
	m := loaded(t, &fakeWard{booths: []model.Booth{{BoothNumber: 1}}})
	m, _ = m.Update(BoothsLoadedMsg{WardNo: 99, Booths: []model.Booth{{BoothNumber: 8}}})
	b, _ := m.ActiveBooth()
	assert.Equal(t, 1, b.BoothNumber)
}

func TestAuthFailureEscalates(t *testing.T) {
	m := New(&fakeWard{}, 12, keys.DefaultKeyMap(), 100, 30)
	m, cmd := m.Update(SummaryLoadedMsg{WardNo: 12, Err: &directory.AuthError{Message: "No token found"}})
	require.NotNil(t, cmd)
	assert.IsType(t, ui.AuthErrorMsg{}, cmd())

	_, cmd = m.Update(BoothsLoadedMsg{WardNo: 12, Err: errors.New("boom")})
	assert.Nil(t, cmd)
}

func TestReloadKeepsActiveBooth(t *testing.T) {
	dir := &fakeWard{booths: []model.Booth{{BoothNumber: 1}, {BoothNumber: 2}}}
	m := loaded(t, dir)
	require.True(t, m.SelectBooth(2))

	m, _ = m.Update(BoothsLoadedMsg{WardNo: 12, Booths: dir.booths})
	b, _ := m.ActiveBooth()
	assert.Equal(t, 2, b.BoothNumber)
	assert.False(t, m.SelectBooth(7))
}
