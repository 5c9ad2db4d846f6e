package listctl

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/voter-roll/internal/directory"
	"github.com/nhle/voter-roll/internal/model"
)

func TestToggleSelection(t *testing.T) {
	c := New(1, model.DefaultPoliticalFilter(), PoliticalQuery(newFakeRoll(1, 0)), instantOpts())

	c.Toggle("a")
	c.Toggle("b")
	c.Toggle("c")
	c.Toggle("b")

	assert.Equal(t, []string{"a", "c"}, c.Selected())
	assert.True(t, c.IsSelected("a"))
	assert.False(t, c.IsSelected("b"))

	c.ClearSelection()
	assert.Empty(t, c.Selected())
}

func TestSubmitPoliticalStatusSendsOneBatch(t *testing.T) {
	roll := newFakeRoll(6, 30)
	c := New(6, model.DefaultPoliticalFilter(), PoliticalQuery(roll), instantOpts())
	drive(t, c, c.Init())
	drive(t, c, c.MaybeLoadMore(true))
	require.Equal(t, 2, c.Page())

	for _, id := range []string{"v002", "v005", "v021"} {
		c.Toggle(id)
	}

	cmd, err := c.SubmitPoliticalStatus(roll, model.PartyUDF, "admin")
	require.NoError(t, err)
	require.NotNil(t, cmd)
	assert.True(t, c.Submitting())

	drive(t, c, cmd)

	require.Len(t, roll.politicalCalls, 1)
	assert.Equal(t, []directory.PoliticalUpdate{
		{VoterID: "v002", Party: model.PartyUDF, UpdatedBy: "admin"},
		{VoterID: "v005", Party: model.PartyUDF, UpdatedBy: "admin"},
		{VoterID: "v021", Party: model.PartyUDF, UpdatedBy: "admin"},
	}, roll.politicalCalls[0])

	assert.Empty(t, c.Selected())
	assert.False(t, c.Submitting())
	assert.Equal(t, 1, c.Page())
	assert.Equal(t, 1, roll.lastQuery().Page)
	assert.Equal(t, 27, c.Total(), "tagged voters leave the unmarked view")
	for _, v := range c.Items() {
		assert.NotContains(t, []string{"v002", "v005", "v021"}, v.ID)
	}
}

func TestSubmitWithoutPartyIsRejectedLocally(t *testing.T) {
	roll := newFakeRoll(6, 5)
	c := New(6, model.DefaultPoliticalFilter(), PoliticalQuery(roll), instantOpts())
	drive(t, c, c.Init())
	c.Toggle("v001")

	cmd, err := c.SubmitPoliticalStatus(roll, "", "admin")
	assert.ErrorIs(t, err, ErrNoParty)
	assert.Nil(t, cmd)

	cmd, err = c.SubmitPoliticalStatus(roll, model.PartyAll, "admin")
	assert.ErrorIs(t, err, ErrNoParty)
	assert.Nil(t, cmd)

	assert.Empty(t, roll.politicalCalls)
	assert.Equal(t, []string{"v001"}, c.Selected())
}

func TestSubmitWithEmptySelectionIsRejected(t *testing.T) {
	roll := newFakeRoll(6, 5)
	c := New(6, model.DefaultPoliticalFilter(), PoliticalQuery(roll), instantOpts())

	_, err := c.SubmitPoliticalStatus(roll, model.PartyBJP, "admin")
	assert.ErrorIs(t, err, ErrEmptySelection)
	assert.Empty(t, roll.politicalCalls)
}

func TestFailedSubmitKeepsSelection(t *testing.T) {
	roll := newFakeRoll(6, 5)
	roll.failMutation = errors.New("bad gateway")
	c := New(6, model.DefaultPoliticalFilter(), PoliticalQuery(roll), instantOpts())
	drive(t, c, c.Init())
	c.Toggle("v001")
	c.Toggle("v002")
	queries := roll.queryCount()

	cmd, err := c.SubmitPoliticalStatus(roll, model.PartyLDF, "admin")
	require.NoError(t, err)
	drive(t, c, cmd)

	assert.Equal(t, []string{"v001", "v002"}, c.Selected())
	assert.Error(t, c.Err())
	assert.False(t, c.Submitting())
	assert.Equal(t, queries, roll.queryCount(), "no reload after a failed mutation")

	roll.failMutation = nil
	cmd, err = c.SubmitPoliticalStatus(roll, model.PartyLDF, "admin")
	require.NoError(t, err)
	drive(t, c, cmd)
	assert.Empty(t, c.Selected())
}

func TestSecondSubmitWhileBusyIsRejected(t *testing.T) {
	roll := newFakeRoll(6, 5)
	c := New(6, model.DefaultPoliticalFilter(), PoliticalQuery(roll), instantOpts())
	c.Toggle("v001")

	_, err := c.SubmitPoliticalStatus(roll, model.PartyLDF, "admin")
	require.NoError(t, err)
	_, err = c.SubmitPoliticalStatus(roll, model.PartyLDF, "admin")
	assert.ErrorIs(t, err, ErrBusy)
}

func TestToggleVotedPatchesThenReconciles(t *testing.T) {
	roll := newFakeRoll(8, 3)
	c := New(8, model.DefaultVotingFilter(), VotingQuery(roll), instantOpts())
	drive(t, c, c.Init())
	require.Len(t, c.Items(), 3)

	cmd, err := c.ToggleVoted(roll, "v002", false, "admin")
	require.NoError(t, err)

	follow := c.Update(cmd())
	require.NotNil(t, follow, "a reload follows the acknowledgement")
	assert.True(t, c.Items()[1].HasVoted, "the local item is patched before the reload lands")
	assert.Len(t, c.Items(), 3)

	drive(t, c, follow)
	require.Len(t, c.Items(), 2)
	for _, v := range c.Items() {
		assert.NotEqual(t, "v002", v.ID)
	}

	require.Len(t, roll.votingCalls, 1)
	assert.Equal(t, []directory.VotingUpdate{
		{VoterID: "v002", HasVoted: true, UpdatedBy: "admin"},
	}, roll.votingCalls[0])
}

func TestFailedVoteToggleLeavesItemUntouched(t *testing.T) {
	roll := newFakeRoll(8, 3)
	roll.failMutation = errors.New("timeout")
	c := New(8, model.DefaultVotingFilter(), VotingQuery(roll), instantOpts())
	drive(t, c, c.Init())

	cmd, err := c.ToggleVoted(roll, "v001", false, "admin")
	require.NoError(t, err)
	drive(t, c, cmd)

	assert.False(t, c.Items()[0].HasVoted)
	assert.Len(t, c.Items(), 3)
	assert.Error(t, c.Err())
}
