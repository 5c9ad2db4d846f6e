package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/voter-roll/internal/theme"
)

// Layout splits the terminal into a one-line header, the active screen
// and a one-line footer.
type Layout struct {
	width  int
	height int
}

// NewLayout creates a Layout for a terminal of the given size.
func NewLayout(width, height int) Layout {
	return Layout{width: width, height: height}
}

// ContentWidth returns the width of the screen area.
func (l Layout) ContentWidth() int {
	return l.width
}

// ContentHeight returns the rows left between header and footer.
func (l Layout) ContentHeight() int {
	return max(l.height-2, 0)
}

// Header renders the title on the left and the operator on the right.
func (l Layout) Header(title, operator string) string {
	return bar(theme.HeaderStyle, l.width, title, operator)
}

// Footer renders the key hints, or notice when one is set. A notice is
// cut to a single line so the frame height never changes.
func (l Layout) Footer(hints, notice string) string {
	if notice == "" {
		return bar(theme.StatusBarStyle, l.width, hints, "")
	}
	line, _, _ := strings.Cut(notice, "\n")
	return theme.ErrorStyle.
		Width(l.width).
		MaxWidth(l.width).
		MaxHeight(1).
		Render(line)
}

// Compose stacks header, body and footer. The body is padded or clipped
// to ContentHeight so the footer stays on the last row.
func (l Layout) Compose(header, body, footer string) string {
	h := l.ContentHeight()
	body = lipgloss.NewStyle().Height(h).MaxHeight(h).Render(body)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

// bar fills width with style, left text first and right text flush right.
func bar(style lipgloss.Style, width int, left, right string) string {
	l := style.Render(left)
	var r string
	if right != "" {
		r = style.Render(right)
	}
	gap := max(width-lipgloss.Width(l)-lipgloss.Width(r), 0)
	fill := style.UnsetPadding().Render(strings.Repeat(" ", gap))
	return l + fill + r
}
