package command

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  CommandMsg
	}{
		{"ward 12", CommandMsg{Verb: VerbWard, Arg: 12}},
		{"  BOOTH   3 ", CommandMsg{Verb: VerbBooth, Arg: 3}},
		{"b 4", CommandMsg{Verb: VerbBooth, Arg: 4}},
		{"refresh", CommandMsg{Verb: VerbRefresh}},
		{"logout", CommandMsg{Verb: VerbLogout}},
		{"q", CommandMsg{Verb: VerbQuit}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRejects(t *testing.T) {
	for _, input := range []string{"", "ward", "ward x", "booth 0", "refresh now", "vote"} {
		_, err := Parse(input)
		assert.Error(t, err, input)
	}
}

func TestEnterEmitsCommand(t *testing.T) {
	m := New(80, 24)
	for _, r := range "booth 9" {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, CommandMsg{Verb: VerbBooth, Arg: 9}, cmd())

	for _, r := range "nope" {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.IsType(t, ErrorMsg{}, cmd())
}
