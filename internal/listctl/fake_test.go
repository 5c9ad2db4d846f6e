package listctl

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/nhle/voter-roll/internal/directory"
	"github.com/nhle/voter-roll/internal/model"
)

// fakeRoll is an in-memory directory.Directory and directory.Mutator.
type fakeRoll struct {
	mu sync.Mutex

	voters []model.Voter

	queries        []directory.PageRequest
	politicalCalls [][]directory.PoliticalUpdate
	votingCalls    [][]directory.VotingUpdate

	// failPage makes queries for that page number fail.
	failPage     int
	failMutation error
}

func newFakeRoll(booth, n int) *fakeRoll {
	f := &fakeRoll{}
	for i := 1; i <= n; i++ {
		f.voters = append(f.voters, model.Voter{
			ID:          fmt.Sprintf("v%03d", i),
			SerialNo:    i,
			Name:        fmt.Sprintf("Voter %d", i),
			BoothNumber: booth,
		})
	}
	return f
}

func (f *fakeRoll) CountByWard(_ context.Context, wardNo int) (*model.WardSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &model.WardSummary{WardNo: wardNo, TotalVoters: len(f.voters)}, nil
}

func (f *fakeRoll) BoothsByWard(context.Context, int) ([]model.Booth, error) {
	return nil, nil
}

func (f *fakeRoll) VotersByBooth(_ context.Context, req directory.PageRequest) (*directory.Page, error) {
	return f.page(req, func(model.Voter) bool { return true })
}

func (f *fakeRoll) PoliticalStatusVoters(
	_ context.Context,
	req directory.PageRequest,
	filter model.PoliticalFilter,
) (*directory.Page, error) {
	return f.page(req, filter.Matches)
}

func (f *fakeRoll) VotingStatusVoters(
	_ context.Context,
	req directory.PageRequest,
	filter model.VotingFilter,
) (*directory.Page, error) {
	return f.page(req, filter.Matches)
}

func (f *fakeRoll) page(req directory.PageRequest, match func(model.Voter) bool) (*directory.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.queries = append(f.queries, req)
	if f.failPage != 0 && req.Page == f.failPage {
		return nil, fmt.Errorf("server unavailable")
	}

	var hits []model.Voter
	for _, v := range f.voters {
		if v.BoothNumber != req.Booth || !match(v) {
			continue
		}
		if req.Search != "" &&
			!strings.Contains(strings.ToLower(v.Name), strings.ToLower(req.Search)) &&
			strconv.Itoa(v.SerialNo) != req.Search {
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
	return &directory.Page{
		Total: len(hits),
		Items: append([]model.Voter(nil), hits[start:end]...),
	}, nil
}

func (f *fakeRoll) BulkSetPoliticalStatus(_ context.Context, updates []directory.PoliticalUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.politicalCalls = append(f.politicalCalls, updates)
	if f.failMutation != nil {
		return f.failMutation
	}
	for _, u := range updates {
		for i := range f.voters {
			if f.voters[i].ID == u.VoterID {
				party := u.Party
				f.voters[i].PoliticalStatus = &party
			}
		}
	}
	return nil
}

func (f *fakeRoll) BulkSetVotingStatus(_ context.Context, updates []directory.VotingUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.votingCalls = append(f.votingCalls, updates)
	if f.failMutation != nil {
		return f.failMutation
	}
	for _, u := range updates {
		for i := range f.voters {
			if f.voters[i].ID == u.VoterID {
				f.voters[i].HasVoted = u.HasVoted
			}
		}
	}
	return nil
}

func (f *fakeRoll) queryCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

func (f *fakeRoll) lastQuery() directory.PageRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queries[len(f.queries)-1]
}

// drive executes cmd, feeds its message back into c, and keeps going until
// no follow-up command remains.
func drive[F comparable](t *testing.T, c *Controller[F], cmd tea.Cmd) {
	t.Helper()
	for i := 0; cmd != nil; i++ {
		require.Less(t, i, 10, "command chain did not settle")
		cmd = c.Update(cmd())
	}
}

func instantOpts() Options {
	return Options{Debounce: -1}
}
