package remote

import (
	"github.com/nhle/voter-roll/internal/directory"
	"github.com/nhle/voter-roll/internal/model"
)

// WardCountResponse is the response from GET /voter/by-ward/{ward}.
type WardCountResponse struct {
	Data struct {
		TotalVoters int `json:"totalVoters"`
	} `json:"data"`
}

// BoothsResponse is the response from GET /booth/getBooths/{ward}.
type BoothsResponse struct {
	Booths []model.Booth `json:"booths"`
}

// BoothVotersResponse is the response from GET /voter/by-booth/{booth}.
type BoothVotersResponse struct {
	Total  int           `json:"total"`
	Voters []model.Voter `json:"voters"`
}

// StatusVotersResponse is the response from the political-status and
// voting-status search endpoints.
type StatusVotersResponse struct {
	Total   int           `json:"total"`
	Results []model.Voter `json:"results"`
}

// PoliticalBulkRequest is the body of POST /voter/political-status/bulk.
type PoliticalBulkRequest struct {
	Updates []directory.PoliticalUpdate `json:"updates"`
}

// VotingBulkRequest is the body of POST /voter/voting-status/bulk.
type VotingBulkRequest struct {
	Updates []directory.VotingUpdate `json:"updates"`
}

// BulkAck acknowledges a bulk mutation.
type BulkAck struct {
	Success  bool `json:"success"`
	Modified int  `json:"modified"`
}

// ErrorResponse is the error envelope returned by the API.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (e ErrorResponse) text() string {
	if e.Error != "" {
		return e.Error
	}
	return e.Message
}
