package listctl

import "github.com/nhle/voter-roll/internal/directory"

// Owned is implemented by every message a controller emits. The owner is
// the controller instance id, so a screen can drop messages addressed to a
// controller that has already been torn down.
type Owned interface {
	OwnerID() string
}

// PageLoadedMsg reports the outcome of one page query.
type PageLoadedMsg struct {
	Owner string

	// Gen is the controller generation the request was issued under.
	Gen uint64

	// Page is the page number that was requested.
	Page int

	// Reset is true when the page replaces the loaded items.
	Reset bool

	Result *directory.Page
	Err    error
}

// OwnerID implements Owned.
func (m PageLoadedMsg) OwnerID() string { return m.Owner }

// SearchSettledMsg fires when the search debounce timer expires.
type SearchSettledMsg struct {
	Owner string
	Seq   uint64
}

// OwnerID implements Owned.
func (m SearchSettledMsg) OwnerID() string { return m.Owner }

// BulkDoneMsg reports the outcome of a bulk political-status submission.
type BulkDoneMsg struct {
	Owner string
	Count int
	Err   error
}

// OwnerID implements Owned.
func (m BulkDoneMsg) OwnerID() string { return m.Owner }

// VoteToggledMsg reports the outcome of a single voted-flag flip.
type VoteToggledMsg struct {
	Owner    string
	VoterID  string
	HasVoted bool
	Err      error
}

// OwnerID implements Owned.
func (m VoteToggledMsg) OwnerID() string { return m.Owner }
