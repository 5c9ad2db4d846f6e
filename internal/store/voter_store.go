package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/nhle/voter-roll/internal/directory"
	"github.com/nhle/voter-roll/internal/model"
)

const voterColumns = `
	id, serial_no, name, guardian, age, gender,
	house_no, house_name, booth_number,
	political_status, has_voted`

// SearchVoters returns one page of a booth's voters matching q, ordered by
// serial number, plus the total number of matches.
func (s *SQLStore) SearchVoters(
	ctx context.Context,
	q VoterQuery,
) ([]model.Voter, int, error) {
	conditions := []string{"booth_number = ?"}
	args := []interface{}{q.Booth}

	if q.Marked != nil {
		if *q.Marked {
			conditions = append(conditions,
				"(political_status IS NOT NULL AND political_status <> '')")
		} else {
			conditions = append(conditions,
				"(political_status IS NULL OR political_status = '')")
		}
	}
	if q.Party != "" && q.Party != model.PartyAll {
		conditions = append(conditions, "political_status = ?")
		args = append(args, string(q.Party))
	}
	if q.HasVoted != nil {
		conditions = append(conditions, "has_voted = ?")
		args = append(args, *q.HasVoted)
	}
	if search := strings.TrimSpace(q.Search); search != "" {
		conditions = append(conditions,
			"(LOWER(name) LIKE ? OR CAST(serial_no AS TEXT) = ?)")
		args = append(args, "%"+strings.ToLower(search)+"%", search)
	}

	where := " WHERE " + strings.Join(conditions, " AND ")

	var total int
	countQuery := s.db.Rebind("SELECT COUNT(*) FROM voters" + where)
	if err := s.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("counting voters of booth %d: %w", q.Booth, err)
	}

	query := "SELECT" + voterColumns + " FROM voters" + where +
		" ORDER BY serial_no, id"
	if q.Limit > 0 {
		query += " LIMIT " + strconv.Itoa(q.Limit)
		if q.Offset > 0 {
			query += " OFFSET " + strconv.Itoa(q.Offset)
		}
	}

	voters := []model.Voter{}
	if err := s.db.SelectContext(ctx, &voters, s.db.Rebind(query), args...); err != nil {
		return nil, 0, fmt.Errorf("querying voters of booth %d: %w", q.Booth, err)
	}

	return voters, total, nil
}

// GetVoter retrieves a single voter by id.
func (s *SQLStore) GetVoter(ctx context.Context, id string) (*model.Voter, error) {
	var v model.Voter
	query := s.db.Rebind("SELECT" + voterColumns + " FROM voters WHERE id = ?")
	err := s.db.GetContext(ctx, &v, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("getting voter %s: %w", id, ErrVoterNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting voter %s: %w", id, err)
	}
	return &v, nil
}

// SetPoliticalStatus tags every voter of the batch in one transaction and
// returns how many voters actually changed. Reapplying a batch changes
// nothing. An unknown voter id or an invalid party aborts the whole batch.
func (s *SQLStore) SetPoliticalStatus(
	ctx context.Context,
	updates []directory.PoliticalUpdate,
) (int, error) {
	for _, u := range updates {
		if !u.Party.Valid() {
			return 0, fmt.Errorf("voter %s: %w %q", u.VoterID, ErrInvalidParty, u.Party)
		}
	}

	return s.applyBatch(ctx, len(updates), func(tx *sqlx.Tx, now time.Time) (int, error) {
		modified := 0
		for _, u := range updates {
			current, err := lockVoter(ctx, tx, u.VoterID)
			if err != nil {
				return 0, err
			}
			if current.PartyLabel() == string(u.Party) {
				continue
			}

			_, err = tx.ExecContext(ctx, tx.Rebind(`
				UPDATE voters
				SET political_status = ?, updated_by = ?, updated_at = ?
				WHERE id = ?`),
				string(u.Party), u.UpdatedBy, now, u.VoterID,
			)
			if err != nil {
				return 0, fmt.Errorf("tagging voter %s: %w", u.VoterID, err)
			}
			if err := logChange(ctx, tx, u.VoterID, "politicalStatus", string(u.Party), u.UpdatedBy, now); err != nil {
				return 0, err
			}
			modified++
		}
		return modified, nil
	})
}

// SetVotingStatus sets the voted flag of every voter of the batch in one
// transaction and returns how many voters actually changed.
func (s *SQLStore) SetVotingStatus(
	ctx context.Context,
	updates []directory.VotingUpdate,
) (int, error) {
	return s.applyBatch(ctx, len(updates), func(tx *sqlx.Tx, now time.Time) (int, error) {
		modified := 0
		for _, u := range updates {
			current, err := lockVoter(ctx, tx, u.VoterID)
			if err != nil {
				return 0, err
			}
			if current.HasVoted == u.HasVoted {
				continue
			}

			_, err = tx.ExecContext(ctx, tx.Rebind(`
				UPDATE voters
				SET has_voted = ?, updated_by = ?, updated_at = ?
				WHERE id = ?`),
				u.HasVoted, u.UpdatedBy, now, u.VoterID,
			)
			if err != nil {
				return 0, fmt.Errorf("setting voted flag of %s: %w", u.VoterID, err)
			}
			if err := logChange(ctx, tx, u.VoterID, "hasVoted", strconv.FormatBool(u.HasVoted), u.UpdatedBy, now); err != nil {
				return 0, err
			}
			modified++
		}
		return modified, nil
	})
}

// applyBatch runs fn inside a transaction, committing only if it succeeds.
func (s *SQLStore) applyBatch(
	ctx context.Context,
	n int,
	fn func(tx *sqlx.Tx, now time.Time) (int, error),
) (int, error) {
	if n == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	modified, err := fn(tx, time.Now().UTC())
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing batch: %w", err)
	}
	return modified, nil
}

func lockVoter(ctx context.Context, tx *sqlx.Tx, id string) (*model.Voter, error) {
	var v model.Voter
	err := tx.GetContext(ctx, &v, tx.Rebind("SELECT"+voterColumns+" FROM voters WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("voter %s: %w", id, ErrVoterNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading voter %s: %w", id, err)
	}
	return &v, nil
}

func logChange(
	ctx context.Context,
	tx *sqlx.Tx,
	voterID, field, value, updatedBy string,
	at time.Time,
) error {
	_, err := tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO status_changes (voter_id, field, value, updated_by, changed_at)
		VALUES (?, ?, ?, ?, ?)`),
		voterID, field, value, updatedBy, at,
	)
	if err != nil {
		return fmt.Errorf("recording change of %s: %w", voterID, err)
	}
	return nil
}
