package directory

import (
	"context"
	"errors"
	"fmt"

	"github.com/nhle/voter-roll/internal/model"
)

// AuthError indicates that the bearer credential was rejected or is missing.
// It is returned by directory clients when a 401 response is received.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth error: %s", e.Message)
}

// IsAuthError reports whether err (or any error in its chain) is an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// APIError is a non-2xx response other than 401.
type APIError struct {
	Status  int
	Method  string
	Path    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf(
		"voter API error (%d) on %s %s: %s",
		e.Status, e.Method, e.Path, e.Message,
	)
}

// PageRequest addresses one page of a booth-scoped voter query.
type PageRequest struct {
	Booth  int
	Page   int
	Limit  int
	Search string
}

// Page is one page of voters plus the server-reported total for the
// current filter. Every list endpoint is unwrapped into this shape
// regardless of how its payload names the voter array.
type Page struct {
	Total int
	Items []model.Voter
}

// PoliticalUpdate tags one voter with a party.
type PoliticalUpdate struct {
	VoterID   string      `json:"voterId"`
	Party     model.Party `json:"party"`
	UpdatedBy string      `json:"updatedBy"`
}

// VotingUpdate sets the voted flag for one voter.
type VotingUpdate struct {
	VoterID   string `json:"voterId"`
	HasVoted  bool   `json:"hasVoted"`
	UpdatedBy string `json:"updatedBy"`
}

// Directory is the read side of the remote voter API.
type Directory interface {
	// CountByWard returns the ward's headline voter count.
	CountByWard(ctx context.Context, wardNo int) (*model.WardSummary, error)

	// BoothsByWard lists the booths of a ward.
	BoothsByWard(ctx context.Context, wardNo int) ([]model.Booth, error)

	// VotersByBooth searches the full roll of one booth.
	VotersByBooth(ctx context.Context, req PageRequest) (*Page, error)

	// PoliticalStatusVoters searches one booth by political tag.
	PoliticalStatusVoters(
		ctx context.Context,
		req PageRequest,
		filter model.PoliticalFilter,
	) (*Page, error)

	// VotingStatusVoters searches one booth by voted flag and party.
	VotingStatusVoters(
		ctx context.Context,
		req PageRequest,
		filter model.VotingFilter,
	) (*Page, error)
}

// Mutator is the write side of the remote voter API. Each call is applied
// all-or-nothing by the server and is idempotent per voter id.
type Mutator interface {
	BulkSetPoliticalStatus(ctx context.Context, updates []PoliticalUpdate) error
	BulkSetVotingStatus(ctx context.Context, updates []VotingUpdate) error
}
