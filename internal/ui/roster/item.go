package roster

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/voter-roll/internal/model"
	"github.com/nhle/voter-roll/internal/theme"
)

// voterItem wraps a model.Voter so it can be used in a bubbles/list.
type voterItem struct {
	voter model.Voter
}

// FilterValue returns the string used for fuzzy filtering.
func (i voterItem) FilterValue() string { return i.voter.Name }

// voterDelegate implements list.ItemDelegate for roll entries. The
// selection lookup is shared with the screen's controller.
type voterDelegate struct {
	kind       Kind
	isSelected func(id string) bool
}

// Height returns the number of lines each item takes.
func (d voterDelegate) Height() int { return 2 }

// Spacing returns the number of blank lines between items.
func (d voterDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused).
func (d voterDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a voter as a headline and a dimmed detail line.
func (d voterDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	vi, ok := item.(voterItem)
	if !ok {
		return
	}
	v := vi.voter

	var marker string
	switch d.kind {
	case KindPolitical:
		marker = "☐ "
		if d.isSelected != nil && d.isSelected(v.ID) {
			marker = "☑ "
		}
	case KindVoting:
		if v.HasVoted {
			marker = theme.VotedStyle(true).Render("✓ ")
		} else {
			marker = theme.VotedStyle(false).Render("○ ")
		}
	}

	party := theme.PartyStyle(partyOf(v)).Render(v.PartyLabel())
	headline := fmt.Sprintf("%s%4d  %s  %s", marker, v.SerialNo, v.Name, party)
	details := theme.DimmedStyle.Render("      " + detailLine(v))

	style := theme.ListItemStyle
	if index == m.Index() {
		style = theme.SelectedItemStyle
	}

	fmt.Fprint(w, style.Render(headline+"\n"+details))
}

func partyOf(v model.Voter) model.Party {
	if !v.Marked() {
		return ""
	}
	return *v.PoliticalStatus
}

// detailLine joins the non-empty secondary fields of a voter.
func detailLine(v model.Voter) string {
	var parts []string
	if v.Guardian != "" {
		parts = append(parts, "c/o "+v.Guardian)
	}
	if v.Age > 0 || v.Gender != "" {
		parts = append(parts, strings.TrimSpace(fmt.Sprintf("%d %s", v.Age, v.Gender)))
	}
	house := strings.TrimSpace(strings.Join([]string{v.HouseNo, v.HouseName}, " "))
	if house != "" {
		parts = append(parts, house)
	}
	return strings.Join(parts, " · ")
}
