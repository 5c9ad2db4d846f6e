package store

import (
	"context"
	"fmt"

	"github.com/nhle/voter-roll/internal/model"
)

// UpsertWard inserts a ward or renames an existing one.
func (s *SQLStore) UpsertWard(ctx context.Context, wardNo int, name string) error {
	const query = `
		INSERT INTO wards (ward_no, name) VALUES (?, ?)
		ON CONFLICT (ward_no) DO UPDATE SET name = excluded.name`

	if _, err := s.db.ExecContext(ctx, s.db.Rebind(query), wardNo, name); err != nil {
		return fmt.Errorf("upserting ward %d: %w", wardNo, err)
	}
	return nil
}

// UpsertBooth inserts a booth or updates its ward and location.
func (s *SQLStore) UpsertBooth(ctx context.Context, booth model.Booth) error {
	const query = `
		INSERT INTO booths (booth_number, ward_no, location) VALUES (?, ?, ?)
		ON CONFLICT (booth_number) DO UPDATE SET
			ward_no = excluded.ward_no,
			location = excluded.location`

	_, err := s.db.ExecContext(ctx, s.db.Rebind(query),
		booth.BoothNumber, booth.WardNo, booth.Location,
	)
	if err != nil {
		return fmt.Errorf("upserting booth %d: %w", booth.BoothNumber, err)
	}
	return nil
}

// UpsertVoters inserts or refreshes a batch of roll entries. Re-importing
// a voter updates the roll details but never the marking state.
func (s *SQLStore) UpsertVoters(ctx context.Context, voters []model.Voter) error {
	if len(voters) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	const query = `
		INSERT INTO voters (
			id, serial_no, name, guardian, age, gender,
			house_no, house_name, booth_number,
			political_status, has_voted
		) VALUES (
			?, ?, ?, ?, ?, ?,
			?, ?, ?,
			?, ?
		)
		ON CONFLICT (id) DO UPDATE SET
			serial_no = excluded.serial_no,
			name = excluded.name,
			guardian = excluded.guardian,
			age = excluded.age,
			gender = excluded.gender,
			house_no = excluded.house_no,
			house_name = excluded.house_name,
			booth_number = excluded.booth_number`

	stmt, err := tx.PreparexContext(ctx, tx.Rebind(query))
	if err != nil {
		return fmt.Errorf("preparing upsert statement: %w", err)
	}
	defer stmt.Close()

	for _, v := range voters {
		_, err = stmt.ExecContext(ctx,
			v.ID, v.SerialNo, v.Name, v.Guardian, v.Age, v.Gender,
			v.HouseNo, v.HouseName, v.BoothNumber,
			v.PoliticalStatus, v.HasVoted,
		)
		if err != nil {
			return fmt.Errorf("upserting voter %s: %w", v.ID, err)
		}
	}

	return tx.Commit()
}

// CountByWard returns the number of voters across every booth of a ward.
func (s *SQLStore) CountByWard(ctx context.Context, wardNo int) (int, error) {
	const query = `
		SELECT COUNT(*) FROM voters v
		JOIN booths b ON b.booth_number = v.booth_number
		WHERE b.ward_no = ?`

	var n int
	if err := s.db.GetContext(ctx, &n, s.db.Rebind(query), wardNo); err != nil {
		return 0, fmt.Errorf("counting voters of ward %d: %w", wardNo, err)
	}
	return n, nil
}

// BoothsByWard lists the booths of a ward ordered by booth number.
func (s *SQLStore) BoothsByWard(ctx context.Context, wardNo int) ([]model.Booth, error) {
	const query = `
		SELECT booth_number, location, ward_no FROM booths
		WHERE ward_no = ?
		ORDER BY booth_number`

	booths := []model.Booth{}
	if err := s.db.SelectContext(ctx, &booths, s.db.Rebind(query), wardNo); err != nil {
		return nil, fmt.Errorf("listing booths of ward %d: %w", wardNo, err)
	}
	return booths, nil
}

// Tallies returns marking progress per booth of a ward. Booths without
// voters are included with zero counts.
func (s *SQLStore) Tallies(ctx context.Context, wardNo int) ([]BoothTally, error) {
	const query = `
		SELECT
			b.booth_number,
			b.location,
			COUNT(v.id) AS total,
			COALESCE(SUM(CASE WHEN v.has_voted THEN 1 ELSE 0 END), 0) AS voted,
			COALESCE(SUM(CASE WHEN v.political_status = 'LDF' THEN 1 ELSE 0 END), 0) AS ldf,
			COALESCE(SUM(CASE WHEN v.political_status = 'UDF' THEN 1 ELSE 0 END), 0) AS udf,
			COALESCE(SUM(CASE WHEN v.political_status = 'BJP' THEN 1 ELSE 0 END), 0) AS bjp,
			COALESCE(SUM(CASE WHEN v.political_status = 'UNKNOWN' THEN 1 ELSE 0 END), 0) AS unknown,
			COALESCE(SUM(CASE WHEN v.id IS NOT NULL
				AND (v.political_status IS NULL OR v.political_status = '')
				THEN 1 ELSE 0 END), 0) AS unmarked
		FROM booths b
		LEFT JOIN voters v ON v.booth_number = b.booth_number
		WHERE b.ward_no = ?
		GROUP BY b.booth_number, b.location
		ORDER BY b.booth_number`

	tallies := []BoothTally{}
	if err := s.db.SelectContext(ctx, &tallies, s.db.Rebind(query), wardNo); err != nil {
		return nil, fmt.Errorf("tallying ward %d: %w", wardNo, err)
	}
	return tallies, nil
}
