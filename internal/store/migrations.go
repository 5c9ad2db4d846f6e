package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
// The SQL is kept to the dialect shared by SQLite and PostgreSQL.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS wards (
	ward_no INTEGER PRIMARY KEY,
	name    TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS booths (
	booth_number INTEGER PRIMARY KEY,
	ward_no      INTEGER NOT NULL REFERENCES wards(ward_no) ON DELETE CASCADE,
	location     TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS voters (
	id               TEXT PRIMARY KEY,
	serial_no        INTEGER NOT NULL,
	name             TEXT NOT NULL,
	guardian         TEXT NOT NULL DEFAULT '',
	age              INTEGER NOT NULL DEFAULT 0,
	gender           TEXT NOT NULL DEFAULT '',
	house_no         TEXT NOT NULL DEFAULT '',
	house_name       TEXT NOT NULL DEFAULT '',
	booth_number     INTEGER NOT NULL REFERENCES booths(booth_number) ON DELETE CASCADE,
	political_status TEXT,
	has_voted        BOOLEAN NOT NULL DEFAULT FALSE,
	updated_by       TEXT NOT NULL DEFAULT '',
	updated_at       TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_booths_ward ON booths(ward_no);
CREATE INDEX IF NOT EXISTS idx_voters_booth_serial ON voters(booth_number, serial_no);
CREATE INDEX IF NOT EXISTS idx_voters_political ON voters(booth_number, political_status);
`,
	},
	{
		version: 2,
		sql: `
CREATE TABLE IF NOT EXISTS status_changes (
	voter_id   TEXT NOT NULL REFERENCES voters(id) ON DELETE CASCADE,
	field      TEXT NOT NULL,
	value      TEXT NOT NULL,
	updated_by TEXT NOT NULL,
	changed_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_status_changes_voter ON status_changes(voter_id);
`,
	},
}
