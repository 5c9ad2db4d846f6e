package remote

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/nhle/voter-roll/internal/directory"
	"github.com/nhle/voter-roll/internal/model"
)

// Adapter implements directory.Directory and directory.Mutator against the
// voter directory REST API.
type Adapter struct {
	client *Client
}

// NewAdapter creates a new remote directory adapter.
func NewAdapter(baseURL string, token TokenFunc, timeout time.Duration) *Adapter {
	return &Adapter{client: NewClient(baseURL, token, timeout)}
}

var (
	_ directory.Directory = (*Adapter)(nil)
	_ directory.Mutator   = (*Adapter)(nil)
)

// CountByWard calls GET /voter/by-ward/{ward}.
func (a *Adapter) CountByWard(
	ctx context.Context,
	wardNo int,
) (*model.WardSummary, error) {
	var resp WardCountResponse
	path := fmt.Sprintf("/voter/by-ward/%d", wardNo)
	if err := a.client.Get(ctx, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("fetching ward %d voter count: %w", wardNo, err)
	}
	return &model.WardSummary{
		WardNo:      wardNo,
		TotalVoters: resp.Data.TotalVoters,
	}, nil
}

// BoothsByWard calls GET /booth/getBooths/{ward}.
func (a *Adapter) BoothsByWard(
	ctx context.Context,
	wardNo int,
) ([]model.Booth, error) {
	var resp BoothsResponse
	path := fmt.Sprintf("/booth/getBooths/%d", wardNo)
	if err := a.client.Get(ctx, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("fetching booths of ward %d: %w", wardNo, err)
	}
	return resp.Booths, nil
}

// VotersByBooth calls GET /voter/by-booth/{booth}.
func (a *Adapter) VotersByBooth(
	ctx context.Context,
	req directory.PageRequest,
) (*directory.Page, error) {
	var resp BoothVotersResponse
	path := fmt.Sprintf("/voter/by-booth/%d", req.Booth)
	if err := a.client.Get(ctx, path, pageQuery(req), &resp); err != nil {
		return nil, fmt.Errorf("fetching voters of booth %d: %w", req.Booth, err)
	}
	return &directory.Page{Total: resp.Total, Items: resp.Voters}, nil
}

// PoliticalStatusVoters calls GET /voter/political-status/{booth}.
func (a *Adapter) PoliticalStatusVoters(
	ctx context.Context,
	req directory.PageRequest,
	filter model.PoliticalFilter,
) (*directory.Page, error) {
	q := pageQuery(req)
	q.Set("filter", string(filter.Mark))
	q.Set("party", string(filter.Party))

	var resp StatusVotersResponse
	path := fmt.Sprintf("/voter/political-status/%d", req.Booth)
	if err := a.client.Get(ctx, path, q, &resp); err != nil {
		return nil, fmt.Errorf(
			"fetching political status of booth %d: %w", req.Booth, err,
		)
	}
	return &directory.Page{Total: resp.Total, Items: resp.Results}, nil
}

// VotingStatusVoters calls GET /voter/voting-status/{booth}.
func (a *Adapter) VotingStatusVoters(
	ctx context.Context,
	req directory.PageRequest,
	filter model.VotingFilter,
) (*directory.Page, error) {
	party := filter.Party
	if party == "" {
		party = model.PartyAll
	}

	q := pageQuery(req)
	q.Set("filter", string(filter.Voted))
	q.Set("party", string(party))

	var resp StatusVotersResponse
	path := fmt.Sprintf("/voter/voting-status/%d", req.Booth)
	if err := a.client.Get(ctx, path, q, &resp); err != nil {
		return nil, fmt.Errorf(
			"fetching voting status of booth %d: %w", req.Booth, err,
		)
	}
	return &directory.Page{Total: resp.Total, Items: resp.Results}, nil
}

// BulkSetPoliticalStatus calls POST /voter/political-status/bulk.
func (a *Adapter) BulkSetPoliticalStatus(
	ctx context.Context,
	updates []directory.PoliticalUpdate,
) error {
	var ack BulkAck
	body := PoliticalBulkRequest{Updates: updates}
	if err := a.client.Post(ctx, "/voter/political-status/bulk", body, &ack); err != nil {
		return fmt.Errorf("updating political status of %d voters: %w", len(updates), err)
	}
	return nil
}

// BulkSetVotingStatus calls POST /voter/voting-status/bulk.
func (a *Adapter) BulkSetVotingStatus(
	ctx context.Context,
	updates []directory.VotingUpdate,
) error {
	var ack BulkAck
	body := VotingBulkRequest{Updates: updates}
	if err := a.client.Post(ctx, "/voter/voting-status/bulk", body, &ack); err != nil {
		return fmt.Errorf("updating voting status of %d voters: %w", len(updates), err)
	}
	return nil
}

// pageQuery encodes the paging parameters shared by every list endpoint.
// search is always present, empty when unset.
func pageQuery(req directory.PageRequest) url.Values {
	page := req.Page
	if page < 1 {
		page = 1
	}
	limit := req.Limit
	if limit < 1 {
		limit = model.PageSize
	}

	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	q.Set("search", req.Search)
	return q
}
