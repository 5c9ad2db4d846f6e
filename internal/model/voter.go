package model

import (
	"fmt"
	"strings"
)

// PageSize is the fixed page length used by every voter list screen.
const PageSize = 20

// Party is a political-leaning tag from a closed set.
type Party string

const (
	PartyLDF     Party = "LDF"
	PartyUDF     Party = "UDF"
	PartyBJP     Party = "BJP"
	PartyUnknown Party = "UNKNOWN"

	// PartyAll is the no-filter sentinel used by the voting-status screen.
	// It is never a valid tag value.
	PartyAll Party = "ALL"
)

// Parties lists the taggable parties in display order.
var Parties = []Party{PartyLDF, PartyUDF, PartyBJP, PartyUnknown}

// Valid reports whether p is one of the taggable parties.
func (p Party) Valid() bool {
	for _, known := range Parties {
		if p == known {
			return true
		}
	}
	return false
}

// ParseParty converts user or wire input into a Party. The ALL sentinel is
// accepted only when allowAll is true.
func ParseParty(s string, allowAll bool) (Party, error) {
	p := Party(strings.ToUpper(strings.TrimSpace(s)))
	if p.Valid() || (allowAll && p == PartyAll) {
		return p, nil
	}
	return "", fmt.Errorf("unknown party %q", s)
}

// Voter is a single entry of the electoral roll.
type Voter struct {
	ID          string `json:"_id" db:"id"`
	SerialNo    int    `json:"serialNo" db:"serial_no"`
	Name        string `json:"name" db:"name"`
	Guardian    string `json:"guardian" db:"guardian"`
	Age         int    `json:"age" db:"age"`
	Gender      string `json:"gender" db:"gender"`
	HouseNo     string `json:"houseNo" db:"house_no"`
	HouseName   string `json:"houseName" db:"house_name"`
	BoothNumber int    `json:"boothNumber" db:"booth_number"`

	// PoliticalStatus is nil while the voter is unmarked.
	PoliticalStatus *Party `json:"politicalStatus" db:"political_status"`
	HasVoted        bool   `json:"hasVoted" db:"has_voted"`
}

// Marked reports whether the voter carries a political tag.
func (v Voter) Marked() bool {
	return v.PoliticalStatus != nil && *v.PoliticalStatus != ""
}

// PartyLabel returns the political tag or "-" when unmarked.
func (v Voter) PartyLabel() string {
	if !v.Marked() {
		return "-"
	}
	return string(*v.PoliticalStatus)
}

// Booth is a polling location inside a ward.
type Booth struct {
	BoothNumber int    `json:"boothNumber" db:"booth_number"`
	Location    string `json:"location" db:"location"`
	WardNo      int    `json:"wardNo,omitempty" db:"ward_no"`
}

// WardSummary carries the headline numbers shown on the dashboard.
type WardSummary struct {
	WardNo      int `json:"wardNo"`
	TotalVoters int `json:"totalVoters"`
}
