// Package sqlite implements the repository interfaces using SQLite as the
// storage backend.
//
// WHY SQLITE?
// SQLite is an embedded database — it lives inside your Go binary as a single
// file. No separate database server to install, configure, or manage. WAL
// mode gives concurrent reads during writes, which is all a single-server
// review site needs.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo, which needs a C compiler and makes
// cross-compilation painful. modernc.org/sqlite is a pure Go translation of
// the SQLite C code — works everywhere Go works.
//
// CONSISTENCY RULES IMPLEMENTED AT THIS LAYER:
//   - review.helpfulness_score is recomputed inside the same transaction as
//     every vote write/delete (review.go)
//   - reputation/XP increments are single atomic UPDATEs, so concurrent
//     callers can't lose updates (profile.go, skill.go)
//   - one-profile-per-user, one-vote-per-(review,user) and
//     one-award-per-(user,badge) are UNIQUE/PK constraints, surfaced as
//     apperror.ErrConflict rather than silent overwrites
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	// Side-effect import: registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and implements every repository
// interface declared in the repository package. One struct for all of them —
// the tables live in one database and share transactions.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the database at dbPath and runs migrations.
// Use ":memory:" for a throwaway in-memory database in tests.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Force an immediate connection so a bad path fails here, not on the
	// first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL mode allows concurrent reads while a write is in flight.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are OFF by default in SQLite. The cascade rules below
	// (author deletion sweeping snippets/votes/comments, reviewer deletion
	// nullifying the review reference) depend on them.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates all tables. CREATE TABLE IF NOT EXISTS keeps this
// idempotent — safe to run on every start.
func (db *DB) migrate() error {
	stmts := []struct {
		name string
		sql  string
	}{
		{"users", `
			CREATE TABLE IF NOT EXISTS users (
				id            TEXT PRIMARY KEY,
				username      TEXT NOT NULL UNIQUE,
				email         TEXT NOT NULL DEFAULT '',
				password_hash TEXT NOT NULL DEFAULT '',
				github_id     INTEGER UNIQUE,
				avatar_url    TEXT NOT NULL DEFAULT '',
				created_at    DATETIME NOT NULL,
				updated_at    DATETIME NOT NULL
			);
		`},
		{"user_profiles", `
			-- user_id doubles as the primary key: the schema itself
			-- enforces "exactly one profile per user". A second insert
			-- for the same user is a constraint violation, never an
			-- overwrite.
			CREATE TABLE IF NOT EXISTS user_profiles (
				user_id             TEXT PRIMARY KEY
				                    REFERENCES users(id) ON DELETE CASCADE,
				bio                 TEXT NOT NULL DEFAULT '',
				avatar_url          TEXT NOT NULL DEFAULT '',
				reputation_points   INTEGER NOT NULL DEFAULT 0,
				level               INTEGER NOT NULL DEFAULT 1,
				preferred_languages TEXT NOT NULL DEFAULT '',
				created_at          DATETIME NOT NULL,
				updated_at          DATETIME NOT NULL
			);
		`},
		{"snippets", `
			CREATE TABLE IF NOT EXISTS snippets (
				id          TEXT PRIMARY KEY,
				title       TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				code        TEXT NOT NULL,
				language    TEXT NOT NULL DEFAULT 'python',
				author_id   TEXT NOT NULL
				            REFERENCES users(id) ON DELETE CASCADE,
				status      TEXT NOT NULL DEFAULT 'pending',
				view_count  INTEGER NOT NULL DEFAULT 0,
				created_at  DATETIME NOT NULL,
				updated_at  DATETIME NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_snippets_author_id ON snippets(author_id);
			CREATE INDEX IF NOT EXISTS idx_snippets_created_at ON snippets(created_at);
		`},
		{"reviews", `
			-- reviewer_id is nullable: NULL means the review is
			-- AI-authored, or its human author deleted their account
			-- (ON DELETE SET NULL keeps the review text readable).
			CREATE TABLE IF NOT EXISTS reviews (
				id                TEXT PRIMARY KEY,
				snippet_id        TEXT NOT NULL
				                  REFERENCES snippets(id) ON DELETE CASCADE,
				reviewer_id       TEXT
				                  REFERENCES users(id) ON DELETE SET NULL,
				reviewer_type     TEXT NOT NULL,
				category          TEXT NOT NULL DEFAULT 'general',
				severity          TEXT NOT NULL DEFAULT 'info',
				content           TEXT NOT NULL,
				helpfulness_score INTEGER NOT NULL DEFAULT 0,
				created_at        DATETIME NOT NULL,
				updated_at        DATETIME NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_reviews_snippet_id ON reviews(snippet_id);
		`},
		{"review_votes", `
			CREATE TABLE IF NOT EXISTS review_votes (
				id         TEXT PRIMARY KEY,
				review_id  TEXT NOT NULL
				           REFERENCES reviews(id) ON DELETE CASCADE,
				user_id    TEXT NOT NULL
				           REFERENCES users(id) ON DELETE CASCADE,
				vote       INTEGER NOT NULL CHECK (vote IN (1, -1)),
				created_at DATETIME NOT NULL,
				UNIQUE (review_id, user_id)
			);
		`},
		{"comments", `
			CREATE TABLE IF NOT EXISTS comments (
				id         TEXT PRIMARY KEY,
				snippet_id TEXT NOT NULL
				           REFERENCES snippets(id) ON DELETE CASCADE,
				author_id  TEXT NOT NULL
				           REFERENCES users(id) ON DELETE CASCADE,
				content    TEXT NOT NULL,
				parent_id  TEXT
				           REFERENCES comments(id) ON DELETE CASCADE,
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_comments_snippet_id ON comments(snippet_id);
		`},
		{"badges", `
			CREATE TABLE IF NOT EXISTS badges (
				id              TEXT PRIMARY KEY,
				name            TEXT NOT NULL UNIQUE,
				description     TEXT NOT NULL DEFAULT '',
				badge_type      TEXT NOT NULL DEFAULT 'bronze',
				icon            TEXT NOT NULL DEFAULT '',
				points_required INTEGER NOT NULL DEFAULT 0,
				created_at      DATETIME NOT NULL
			);
		`},
		{"user_badges", `
			CREATE TABLE IF NOT EXISTS user_badges (
				user_id   TEXT NOT NULL
				          REFERENCES users(id) ON DELETE CASCADE,
				badge_id  TEXT NOT NULL
				          REFERENCES badges(id) ON DELETE CASCADE,
				earned_at DATETIME NOT NULL,
				PRIMARY KEY (user_id, badge_id)
			);
		`},
		{"skill_progress", `
			CREATE TABLE IF NOT EXISTS skill_progress (
				user_id           TEXT NOT NULL
				                  REFERENCES users(id) ON DELETE CASCADE,
				skill_area        TEXT NOT NULL,
				level             INTEGER NOT NULL DEFAULT 1,
				experience_points INTEGER NOT NULL DEFAULT 0,
				created_at        DATETIME NOT NULL,
				updated_at        DATETIME NOT NULL,
				PRIMARY KEY (user_id, skill_area)
			);
		`},
	}

	for _, s := range stmts {
		if _, err := db.conn.Exec(s.sql); err != nil {
			return fmt.Errorf("creating %s table: %w", s.name, err)
		}
	}

	return nil
}

// isUniqueViolation reports whether err is a UNIQUE/PRIMARY KEY constraint
// failure.
//
// modernc.org/sqlite surfaces constraint failures with the standard SQLite
// message text ("UNIQUE constraint failed: table.column"), so matching on
// the message is the stable way to detect them without depending on the
// driver's error type.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// isForeignKeyViolation reports whether err is a FOREIGN KEY constraint
// failure — typically an insert referencing a row that doesn't exist.
func isForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
