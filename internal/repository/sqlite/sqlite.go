// Package sqlite implements the repository interfaces using SQLite as the
// storage backend.
//
// We use modernc.org/sqlite (a pure Go translation of SQLite) rather than
// the CGo-based driver, so the binary cross-compiles without a C toolchain.
// ":memory:" gives each test a fresh, isolated database.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"

	// Side-effect import: registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool. The per-entity repositories returned
// by Users, Itineraries and Messages share this pool; sql.DB is safe for
// concurrent use so a single DB serves the whole server.
type DB struct {
	conn *sql.DB
}

// UserRepo implements repository.UserRepository.
type UserRepo struct {
	db *DB
}

// ItineraryRepo implements repository.ItineraryRepository.
type ItineraryRepo struct {
	db *DB
}

// MessageRepo implements repository.MessageRepository.
type MessageRepo struct {
	db *DB
}

func (db *DB) Users() *UserRepo            { return &UserRepo{db: db} }
func (db *DB) Itineraries() *ItineraryRepo { return &ItineraryRepo{db: db} }
func (db *DB) Messages() *MessageRepo      { return &MessageRepo{db: db} }

// New opens (or creates) the SQLite database at dbPath and runs migrations.
//
// dbPath examples:
//   - "data/travelmate.db" → file-based database (persistent)
//   - ":memory:"           → in-memory database (tests, lost on close)
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// An in-memory database exists per connection, so the pool must stay
	// at one connection or later queries land on a fresh, empty database.
	if dbPath == ":memory:" {
		conn.SetMaxOpenConns(1)
	}

	// Force an immediate connection so a bad path surfaces here, not on
	// the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL allows concurrent reads while a write is in progress — required
	// for a web server where requests hit the DB in parallel.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are OFF by default in SQLite. We need them ON: account
	// deletion cascades to the user's itineraries and messages.
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

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps it idempotent
// so it's safe on every startup.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id                 TEXT PRIMARY KEY,
			email              TEXT NOT NULL UNIQUE,
			password_hash      TEXT NOT NULL,
			name               TEXT NOT NULL,
			location           TEXT NOT NULL,
			status             TEXT NOT NULL CHECK (status IN ('Private', 'Travelling', 'Local')),
			profile_pic_url    TEXT NOT NULL DEFAULT '',
			travel_preferences TEXT NOT NULL DEFAULT '[]',
			social_media_link  TEXT NOT NULL DEFAULT '',
			is_admin           INTEGER NOT NULL DEFAULT 0,
			github_id          INTEGER NOT NULL DEFAULT 0,
			created_at         DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at         DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_users_location ON users(location);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS itineraries (
			id            TEXT PRIMARY KEY,
			user_id       TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			destination   TEXT NOT NULL,
			start_date    DATETIME NOT NULL,
			end_date      DATETIME NOT NULL,
			accommodation TEXT NOT NULL DEFAULT '',
			activities    TEXT NOT NULL DEFAULT '[]',
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_itineraries_user_destination
			ON itineraries(user_id, destination);
	`)
	if err != nil {
		return fmt.Errorf("creating itineraries table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS messages (
			id           TEXT PRIMARY KEY,
			sender_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			recipient_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			message      TEXT NOT NULL,
			timestamp    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_messages_sender_recipient
			ON messages(sender_id, recipient_id);
		CREATE INDEX IF NOT EXISTS idx_messages_recipient ON messages(recipient_id);
	`)
	if err != nil {
		return fmt.Errorf("creating messages table: %w", err)
	}

	return nil
}

// encodeTags serializes a string slice into the JSON TEXT column format used
// for travel_preferences and activities. nil encodes as "[]" so the column's
// NOT NULL DEFAULT stays meaningful.
func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("sqlite: encoding tags: %w", err)
	}
	return string(b), nil
}

// decodeTags is the inverse of encodeTags. An empty column decodes to nil.
func decodeTags(raw string) ([]string, error) {
	if raw == "" || raw == "[]" {
		return nil, nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return nil, fmt.Errorf("sqlite: decoding tags: %w", err)
	}
	return tags, nil
}
