package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestComposeKeepsFooterOnLastRow(t *testing.T) {
	l := NewLayout(60, 12)
	assert.Equal(t, 10, l.ContentHeight())

	for _, body := range []string{"short", strings.Repeat("row\n", 40)} {
		out := l.Compose(l.Header("Ward 12", "asha"), body, l.Footer("? help", ""))
		lines := strings.Split(out, "\n")
		assert.Len(t, lines, 12)
		assert.Contains(t, lines[11], "? help")
	}
}

func TestFooterNoticeReplacesHints(t *testing.T) {
	l := NewLayout(40, 10)
	out := l.Footer("? help", "Session rejected\nsecond line")
	assert.Contains(t, out, "Session rejected")
	assert.NotContains(t, out, "? help")
	assert.NotContains(t, out, "second line")
	assert.Equal(t, 1, lipgloss.Height(out))
}

func TestHeaderSpansWidth(t *testing.T) {
	l := NewLayout(50, 10)
	out := l.Header("Voter Roll", "asha")
	assert.Equal(t, 50, lipgloss.Width(out))
	assert.True(t, strings.HasSuffix(strings.TrimRight(out, " "), "asha"))
}
