package server

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/nhle/voter-roll/internal/directory/remote"
	"github.com/nhle/voter-roll/internal/model"
	"github.com/nhle/voter-roll/internal/store"
)

const maxLimit = 100

type handlers struct {
	store store.Store
	log   *slog.Logger
}

func (h *handlers) countByWard(c *fiber.Ctx) error {
	ward, err := c.ParamsInt("ward")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid ward number")
	}

	n, err := h.store.CountByWard(c.UserContext(), ward)
	if err != nil {
		return err
	}

	var resp remote.WardCountResponse
	resp.Data.TotalVoters = n
	return c.JSON(resp)
}

func (h *handlers) boothsByWard(c *fiber.Ctx) error {
	ward, err := c.ParamsInt("ward")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid ward number")
	}

	booths, err := h.store.BoothsByWard(c.UserContext(), ward)
	if err != nil {
		return err
	}
	return c.JSON(remote.BoothsResponse{Booths: booths})
}

func (h *handlers) votersByBooth(c *fiber.Ctx) error {
	q, err := pageQuery(c)
	if err != nil {
		return err
	}

	voters, total, err := h.store.SearchVoters(c.UserContext(), q)
	if err != nil {
		return err
	}
	return c.JSON(remote.BoothVotersResponse{Total: total, Voters: voters})
}

func (h *handlers) politicalStatusVoters(c *fiber.Ctx) error {
	q, err := pageQuery(c)
	if err != nil {
		return err
	}

	switch model.MarkFilter(c.Query("filter", string(model.MarkUnmarked))) {
	case model.MarkUnmarked:
		q.Marked = boolRef(false)
	case model.MarkMarked:
		party, err := model.ParseParty(c.Query("party", string(model.PartyLDF)), false)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		q.Marked = boolRef(true)
		q.Party = party
	default:
		return fiber.NewError(fiber.StatusBadRequest, "filter must be marked or unmarked")
	}

	voters, total, err := h.store.SearchVoters(c.UserContext(), q)
	if err != nil {
		return err
	}
	return c.JSON(remote.StatusVotersResponse{Total: total, Results: voters})
}

func (h *handlers) votingStatusVoters(c *fiber.Ctx) error {
	q, err := pageQuery(c)
	if err != nil {
		return err
	}

	switch model.VotedFilter(c.Query("filter", string(model.VotedNotYet))) {
	case model.VotedNotYet:
		q.HasVoted = boolRef(false)
	case model.VotedYes:
		q.HasVoted = boolRef(true)
	case model.VotedAll:
	default:
		return fiber.NewError(fiber.StatusBadRequest, "filter must be notVoted, voted or all")
	}

	party, err := model.ParseParty(c.Query("party", string(model.PartyAll)), true)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	q.Party = party

	voters, total, err := h.store.SearchVoters(c.UserContext(), q)
	if err != nil {
		return err
	}
	return c.JSON(remote.StatusVotersResponse{Total: total, Results: voters})
}

func (h *handlers) bulkPoliticalStatus(c *fiber.Ctx) error {
	var req remote.PoliticalBulkRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if len(req.Updates) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "no updates")
	}

	modified, err := h.store.SetPoliticalStatus(c.UserContext(), req.Updates)
	if err != nil {
		return mutationError(err)
	}

	h.log.Info("political status updated",
		"voters", len(req.Updates), "modified", modified, "operator", operator(c))
	return c.JSON(remote.BulkAck{Success: true, Modified: modified})
}

func (h *handlers) bulkVotingStatus(c *fiber.Ctx) error {
	var req remote.VotingBulkRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if len(req.Updates) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "no updates")
	}

	modified, err := h.store.SetVotingStatus(c.UserContext(), req.Updates)
	if err != nil {
		return mutationError(err)
	}

	h.log.Info("voting status updated",
		"voters", len(req.Updates), "modified", modified, "operator", operator(c))
	return c.JSON(remote.BulkAck{Success: true, Modified: modified})
}

func (h *handlers) tallies(c *fiber.Ctx) error {
	ward, err := c.ParamsInt("ward")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid ward number")
	}

	tallies, err := h.store.Tallies(c.UserContext(), ward)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "booths": tallies})
}

// voter returns one roll entry with its current markings. Field agents
// use it to confirm a status change landed.
func (h *handlers) voter(c *fiber.Ctx) error {
	v, err := h.store.GetVoter(c.UserContext(), c.Params("id"))
	if err != nil {
		return mutationError(err)
	}
	return c.JSON(fiber.Map{"success": true, "voter": v})
}

// pageQuery reads the booth parameter and the paging and search query
// values shared by every list route.
func pageQuery(c *fiber.Ctx) (store.VoterQuery, error) {
	booth, err := c.ParamsInt("booth")
	if err != nil {
		return store.VoterQuery{}, fiber.NewError(fiber.StatusBadRequest, "invalid booth number")
	}

	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit := c.QueryInt("limit", model.PageSize)
	if limit < 1 {
		limit = model.PageSize
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	return store.VoterQuery{
		Booth:  booth,
		Search: c.Query("search"),
		Limit:  limit,
		Offset: (page - 1) * limit,
	}, nil
}

func mutationError(err error) error {
	switch {
	case errors.Is(err, store.ErrVoterNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrInvalidParty):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	default:
		return err
	}
}

func operator(c *fiber.Ctx) string {
	if op, ok := c.Locals("operator").(string); ok {
		return op
	}
	return ""
}

func boolRef(b bool) *bool { return &b }
