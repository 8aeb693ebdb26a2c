// Package sqlite implements the repository interfaces using SQLite as the
// storage backend.
//
// We use modernc.org/sqlite (a pure Go translation of SQLite) rather than
// the CGo driver, so the server cross-compiles without a C toolchain and
// tests can run against ":memory:" databases.
//
// All uniqueness invariants live here as UNIQUE constraints:
//
//	pools.code                          - join-code uniqueness
//	participants(user_id, pool_id)      - a user joins a pool at most once
//	guesses(participant_id, game_id)    - one guess per participant per game
//
// The services never do check-then-insert for these; two concurrent
// requests can race between the check and the write, so the constraint at
// commit time is the only reliable arbiter. Constraint violations are
// detected by SQLite error code and translated to apperror.ErrConflict.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// DB wraps a sql.DB connection pool and implements the repository
// interfaces. It owns the schema: New runs migrations and seeds the game
// catalog. The caller controls the lifecycle: open at startup, Close at
// shutdown; nothing here is ambient or global.
type DB struct {
	conn *sql.DB
}

// New opens the SQLite database at dbPath (use ":memory:" in tests), turns
// on WAL mode and foreign keys, and runs migrations.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// SQLite allows a single writer, and with ":memory:" every pooled
	// connection would get its own private database. One connection keeps
	// both semantics sane; concurrency is serialised here, not in the
	// services.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL allows concurrent reads while a write is in progress; the
	// default rollback journal locks the whole file per write.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are off by default in SQLite.
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

func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id          TEXT PRIMARY KEY,
			provider_id TEXT NOT NULL UNIQUE,
			name        TEXT NOT NULL,
			email       TEXT NOT NULL DEFAULT '',
			avatar_url  TEXT NOT NULL DEFAULT '',
			created_at  DATETIME NOT NULL,
			updated_at  DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS pools (
			id         TEXT PRIMARY KEY,
			title      TEXT NOT NULL,
			code       TEXT NOT NULL UNIQUE,
			owner_id   TEXT REFERENCES users(id),
			created_at DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS participants (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL REFERENCES users(id),
			pool_id    TEXT NOT NULL REFERENCES pools(id),
			created_at DATETIME NOT NULL,
			UNIQUE(user_id, pool_id)
		);
		CREATE INDEX IF NOT EXISTS idx_participants_pool_id ON participants(pool_id);

		CREATE TABLE IF NOT EXISTS games (
			id                TEXT PRIMARY KEY,
			first_team        TEXT NOT NULL,
			second_team       TEXT NOT NULL,
			date              DATETIME NOT NULL,
			first_team_score  INTEGER,
			second_team_score INTEGER
		);
		CREATE INDEX IF NOT EXISTS idx_games_date ON games(date);

		CREATE TABLE IF NOT EXISTS guesses (
			id                 TEXT PRIMARY KEY,
			participant_id     TEXT NOT NULL REFERENCES participants(id),
			game_id            TEXT NOT NULL REFERENCES games(id),
			first_team_points  INTEGER NOT NULL,
			second_team_points INTEGER NOT NULL,
			created_at         DATETIME NOT NULL,
			UNIQUE(participant_id, game_id)
		);
	`)
	if err != nil {
		return fmt.Errorf("creating tables: %w", err)
	}

	return db.seedGames()
}

// seedGames inserts the fixture catalog if the games table is empty. The
// catalog is read-only at the API surface; there is no write endpoint for
// games.
func (db *DB) seedGames() error {
	var count int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM games`).Scan(&count); err != nil {
		return fmt.Errorf("counting games: %w", err)
	}
	if count > 0 {
		return nil
	}

	fixtures := []struct {
		id            string
		first, second string
		date          time.Time
	}{
		{"g1", "BR", "RS", time.Date(2026, 6, 11, 16, 0, 0, 0, time.UTC)},
		{"g2", "AR", "MX", time.Date(2026, 6, 12, 12, 0, 0, 0, time.UTC)},
		{"g3", "DE", "JP", time.Date(2026, 6, 13, 16, 0, 0, 0, time.UTC)},
		{"g4", "FR", "AU", time.Date(2026, 6, 14, 19, 0, 0, 0, time.UTC)},
		{"g5", "ES", "CR", time.Date(2026, 6, 15, 16, 0, 0, 0, time.UTC)},
		{"g6", "PT", "GH", time.Date(2026, 6, 16, 12, 0, 0, 0, time.UTC)},
	}

	for _, f := range fixtures {
		_, err := db.conn.Exec(
			`INSERT INTO games (id, first_team, second_team, date) VALUES (?, ?, ?, ?)`,
			f.id, f.first, f.second, f.date,
		)
		if err != nil {
			return fmt.Errorf("seeding game %s: %w", f.id, err)
		}
	}

	return nil
}

// isUniqueViolation reports whether err is a SQLite UNIQUE (or primary key)
// constraint failure. This is how storage-level conflicts get recognised
// before being translated into domain Conflict errors.
func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			se.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}
