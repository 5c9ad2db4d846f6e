package store

import (
	"context"
	"errors"

	"github.com/nhle/voter-roll/internal/directory"
	"github.com/nhle/voter-roll/internal/model"
)

var (
	// ErrVoterNotFound aborts a bulk update that names an unknown voter.
	ErrVoterNotFound = errors.New("voter not found")

	// ErrInvalidParty rejects a political update outside the closed set.
	ErrInvalidParty = errors.New("invalid party")
)

// VoterQuery controls filtering and pagination for booth voter searches.
// Results are always ordered by serial number.
type VoterQuery struct {
	Booth int

	Marked   *bool       // nil matches both marked and unmarked
	Party    model.Party // "" or PartyAll matches any party
	HasVoted *bool       // nil matches both
	Search   string      // name substring or exact serial number

	Limit  int
	Offset int
}

// BoothTally aggregates the marking progress of one booth.
type BoothTally struct {
	BoothNumber int    `db:"booth_number"`
	Location    string `db:"location"`
	Total       int    `db:"total"`
	Voted       int    `db:"voted"`
	LDF         int    `db:"ldf"`
	UDF         int    `db:"udf"`
	BJP         int    `db:"bjp"`
	Unknown     int    `db:"unknown"`
	Unmarked    int    `db:"unmarked"`
}

// Store defines the persistence interface of the voter roll served by the
// development backend.
type Store interface {
	// === Roll structure ===

	UpsertWard(ctx context.Context, wardNo int, name string) error
	UpsertBooth(ctx context.Context, booth model.Booth) error
	UpsertVoters(ctx context.Context, voters []model.Voter) error

	// === Reads ===

	CountByWard(ctx context.Context, wardNo int) (int, error)
	BoothsByWard(ctx context.Context, wardNo int) ([]model.Booth, error)
	SearchVoters(ctx context.Context, q VoterQuery) ([]model.Voter, int, error)
	GetVoter(ctx context.Context, id string) (*model.Voter, error)
	Tallies(ctx context.Context, wardNo int) ([]BoothTally, error)

	// === Bulk status updates ===
	// Each batch is applied in one transaction: all or nothing.

	SetPoliticalStatus(ctx context.Context, updates []directory.PoliticalUpdate) (int, error)
	SetVotingStatus(ctx context.Context, updates []directory.VotingUpdate) (int, error)

	Close() error
}
