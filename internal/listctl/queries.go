package listctl

import (
	"context"

	"github.com/nhle/voter-roll/internal/directory"
	"github.com/nhle/voter-roll/internal/model"
)

// BrowseQuery searches the full roll of a booth.
func BrowseQuery(d directory.Directory) QueryFunc[model.BrowseFilter] {
	return func(
		ctx context.Context,
		req directory.PageRequest,
		_ model.BrowseFilter,
	) (*directory.Page, error) {
		return d.VotersByBooth(ctx, req)
	}
}

// PoliticalQuery searches a booth by political tag.
func PoliticalQuery(d directory.Directory) QueryFunc[model.PoliticalFilter] {
	return d.PoliticalStatusVoters
}

// VotingQuery searches a booth by voted flag and party.
func VotingQuery(d directory.Directory) QueryFunc[model.VotingFilter] {
	return d.VotingStatusVoters
}
