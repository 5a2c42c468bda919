// Package bank owns the answer bank: a content-addressed, sqlite-backed
// collection of canonical Q/A entries, plus the questionnaire import
// records that feed it.
package bank

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS answer_bank_entry (
	seq                INTEGER PRIMARY KEY AUTOINCREMENT,
	entry_id           TEXT NOT NULL UNIQUE,
	question_canonical TEXT NOT NULL,
	answer_short       TEXT NOT NULL,
	answer_long        TEXT NOT NULL,
	notes              TEXT,
	evidence_links     TEXT NOT NULL DEFAULT '[]',
	owner              TEXT NOT NULL,
	last_reviewed_at   TEXT,
	tags               TEXT NOT NULL DEFAULT '[]',
	source             TEXT NOT NULL,
	content_hash       TEXT NOT NULL,
	created_at         TEXT NOT NULL,
	updated_at         TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_answer_bank_entry_hash
	ON answer_bank_entry (content_hash);

CREATE TABLE IF NOT EXISTS questionnaire_import (
	import_id       TEXT PRIMARY KEY,
	source_filename TEXT NOT NULL,
	source_hash     TEXT NOT NULL,
	imported_at     TEXT NOT NULL,
	format          TEXT NOT NULL,
	status          TEXT NOT NULL,
	column_map      TEXT
);

CREATE TABLE IF NOT EXISTS import_column (
	import_id       TEXT NOT NULL REFERENCES questionnaire_import (import_id),
	col_ref         TEXT NOT NULL,
	ordinal         INTEGER NOT NULL,
	label           TEXT NOT NULL,
	non_empty_count INTEGER NOT NULL,
	sample          TEXT NOT NULL,
	PRIMARY KEY (import_id, col_ref)
);
`

// Open opens (creating if needed) the bank database at path and
// applies the schema. Use ":memory:" for an ephemeral database.
func Open(path string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open bank db: %w", err)
	}

	// sqlite handles one writer; a single connection keeps the
	// read-modify-write paths serialized at the driver level too.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply bank schema: %w", err)
	}
	return db, nil
}
