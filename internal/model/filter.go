package model

// MarkFilter selects voters by whether they carry a political tag.
type MarkFilter string

const (
	MarkUnmarked MarkFilter = "unmarked"
	MarkMarked   MarkFilter = "marked"
)

// VotedFilter selects voters by their voted flag.
type VotedFilter string

const (
	VotedNotYet VotedFilter = "notVoted"
	VotedYes    VotedFilter = "voted"
	VotedAll    VotedFilter = "all"
)

// BrowseFilter is the filter of the plain voter list. It has no fields:
// only the search text narrows that screen.
type BrowseFilter struct{}

// PoliticalFilter is the filter of the political-status marking screen.
// Party only applies while Mark is MarkMarked.
type PoliticalFilter struct {
	Mark  MarkFilter
	Party Party
}

// DefaultPoliticalFilter is the filter a political-status screen opens with.
func DefaultPoliticalFilter() PoliticalFilter {
	return PoliticalFilter{Mark: MarkUnmarked, Party: PartyLDF}
}

// WithMark switches between marked and unmarked. Any switch resets the
// party refinement to LDF.
func (f PoliticalFilter) WithMark(mark MarkFilter) PoliticalFilter {
	return PoliticalFilter{Mark: mark, Party: PartyLDF}
}

// Matches reports whether v belongs in the filtered view.
func (f PoliticalFilter) Matches(v Voter) bool {
	if f.Mark == MarkUnmarked {
		return !v.Marked()
	}
	return v.Marked() && *v.PoliticalStatus == f.Party
}

// VotingFilter is the filter of the voting-status screen.
type VotingFilter struct {
	Voted VotedFilter
	Party Party
}

// DefaultVotingFilter is the filter a voting-status screen opens with.
func DefaultVotingFilter() VotingFilter {
	return VotingFilter{Voted: VotedNotYet, Party: PartyAll}
}

// Matches reports whether v belongs in the filtered view.
func (f VotingFilter) Matches(v Voter) bool {
	switch f.Voted {
	case VotedNotYet:
		if v.HasVoted {
			return false
		}
	case VotedYes:
		if !v.HasVoted {
			return false
		}
	}
	if f.Party == PartyAll || f.Party == "" {
		return true
	}
	return v.Marked() && *v.PoliticalStatus == f.Party
}
