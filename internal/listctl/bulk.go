package listctl

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/voter-roll/internal/directory"
	"github.com/nhle/voter-roll/internal/model"
)

var (
	// ErrEmptySelection rejects a bulk submission with nothing selected.
	ErrEmptySelection = errors.New("no voters selected")

	// ErrNoParty rejects a political-status submission without a party.
	ErrNoParty = errors.New("choose a party")

	// ErrBusy rejects a mutation while another one is outstanding.
	ErrBusy = errors.New("an update is already being sent")
)

// Toggle flips membership of id in the selection.
func (c *Controller[F]) Toggle(id string) {
	if c.selected[id] {
		delete(c.selected, id)
		for i, sel := range c.selection {
			if sel == id {
				c.selection = append(c.selection[:i], c.selection[i+1:]...)
				break
			}
		}
		return
	}
	c.selected[id] = true
	c.selection = append(c.selection, id)
}

// IsSelected reports whether id is selected.
func (c *Controller[F]) IsSelected(id string) bool {
	return c.selected[id]
}

// Selected returns the selected ids in the order they were checked.
func (c *Controller[F]) Selected() []string {
	return append([]string(nil), c.selection...)
}

// ClearSelection empties the selection.
func (c *Controller[F]) ClearSelection() {
	c.selection = nil
	c.selected = make(map[string]bool)
}

// Submitting reports whether a mutation is outstanding.
func (c *Controller[F]) Submitting() bool { return c.submitting }

// SubmitPoliticalStatus tags every selected voter with party in one bulk
// request. Validation failures are returned without any network call.
// On success the selection is cleared and the list reloads from page 1;
// on failure the selection is kept so the user can retry.
func (c *Controller[F]) SubmitPoliticalStatus(
	m directory.Mutator,
	party model.Party,
	updatedBy string,
) (tea.Cmd, error) {
	if len(c.selection) == 0 {
		return nil, ErrEmptySelection
	}
	if !party.Valid() {
		return nil, ErrNoParty
	}
	if c.submitting {
		return nil, ErrBusy
	}
	c.submitting = true

	updates := make([]directory.PoliticalUpdate, 0, len(c.selection))
	for _, id := range c.selection {
		updates = append(updates, directory.PoliticalUpdate{
			VoterID:   id,
			Party:     party,
			UpdatedBy: updatedBy,
		})
	}

	owner, timeout := c.id, c.opts.Timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		err := m.BulkSetPoliticalStatus(ctx, updates)
		return BulkDoneMsg{Owner: owner, Count: len(updates), Err: err}
	}, nil
}

// ToggleVoted flips the voted flag of one voter through a single-element
// bulk update. Once acknowledged, the loaded item is patched in place and
// the list is reloaded so the active filter can drop it.
func (c *Controller[F]) ToggleVoted(
	m directory.Mutator,
	id string,
	current bool,
	updatedBy string,
) (tea.Cmd, error) {
	if c.submitting {
		return nil, ErrBusy
	}
	c.submitting = true

	update := directory.VotingUpdate{
		VoterID:   id,
		HasVoted:  !current,
		UpdatedBy: updatedBy,
	}

	owner, timeout := c.id, c.opts.Timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		err := m.BulkSetVotingStatus(ctx, []directory.VotingUpdate{update})
		return VoteToggledMsg{
			Owner:    owner,
			VoterID:  update.VoterID,
			HasVoted: update.HasVoted,
			Err:      err,
		}
	}, nil
}

func (c *Controller[F]) handleBulkDone(msg BulkDoneMsg) tea.Cmd {
	c.submitting = false
	if msg.Err != nil {
		c.lastErr = msg.Err
		c.log.Error("bulk political status update failed", "voters", msg.Count, "err", msg.Err)
		return nil
	}

	c.lastErr = nil
	c.log.Info("political status updated", "voters", msg.Count)
	c.ClearSelection()
	return c.reset()
}

func (c *Controller[F]) handleVoteToggled(msg VoteToggledMsg) tea.Cmd {
	c.submitting = false
	if msg.Err != nil {
		c.lastErr = msg.Err
		c.log.Error("voting status toggle failed", "voter", msg.VoterID, "err", msg.Err)
		return nil
	}

	c.lastErr = nil
	for i := range c.items {
		if c.items[i].ID == msg.VoterID {
			c.items[i].HasVoted = msg.HasVoted
			break
		}
	}
	return c.reset()
}
