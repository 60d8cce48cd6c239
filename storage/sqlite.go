package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"rpoptimizer/model"
)

// SQLiteChat is a chat history kept in a single SQLite table. Message ids
// are positions starting at 0, matching the JSON store.
type SQLiteChat struct {
	db     *sql.DB
	dbPath string
}

// OpenSQLite opens (or creates) the chat database at path.
// Pass ":memory:" for an in-memory database.
func OpenSQLite(path string) (*SQLiteChat, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if path == ":memory:" {
		// every pooled connection would get its own empty database
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", p, err)
		}
	}

	c := &SQLiteChat{db: db, dbPath: path}
	if err := c.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return c, nil
}

func (c *SQLiteChat) migrate() error {
	_, err := c.db.Exec(`
		CREATE TABLE IF NOT EXISTS messages (
			id         INTEGER PRIMARY KEY,
			role       TEXT NOT NULL,
			content    TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`)
	return err
}

// Close closes the database connection.
func (c *SQLiteChat) Close() error {
	return c.db.Close()
}

func (c *SQLiteChat) Messages(ctx context.Context, id int) ([]model.ChatMessage, error) {
	var m model.ChatMessage
	err := c.db.QueryRowContext(ctx,
		`SELECT id, role, content FROM messages WHERE id = ?`, id,
	).Scan(&m.ID, &m.Role, &m.Text)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading message %d: %w", id, err)
	}
	return []model.ChatMessage{m}, nil
}

// SetMessages updates every message in one transaction. An unknown id
// rolls the whole batch back.
func (c *SQLiteChat) SetMessages(ctx context.Context, msgs []model.ChatMessage) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for _, m := range msgs {
		res, err := tx.ExecContext(ctx,
			`UPDATE messages SET content = ?, updated_at = ? WHERE id = ?`,
			m.Text, now, m.ID)
		if err != nil {
			return fmt.Errorf("updating message %d: %w", m.ID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("updating message %d: %w", m.ID, err)
		}
		if n == 0 {
			return fmt.Errorf("failed to set message %d: %w", m.ID, ErrUnknownMessage)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func (c *SQLiteChat) LatestMessageID(ctx context.Context) (int, error) {
	var id sql.NullInt64
	if err := c.db.QueryRowContext(ctx, `SELECT MAX(id) FROM messages`).Scan(&id); err != nil {
		return -1, fmt.Errorf("reading latest message: %w", err)
	}
	if !id.Valid {
		return -1, nil
	}
	return int(id.Int64), nil
}

// Append adds a message and returns its id.
func (c *SQLiteChat) Append(ctx context.Context, role, text string) (int, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return -1, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var next int
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(id) + 1, 0) FROM messages`).Scan(&next); err != nil {
		return -1, fmt.Errorf("allocating message id: %w", err)
	}

	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO messages (id, role, content, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		next, role, text, now, now); err != nil {
		return -1, fmt.Errorf("inserting message: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return -1, fmt.Errorf("committing transaction: %w", err)
	}
	return next, nil
}

// All returns every message in order.
func (c *SQLiteChat) All(ctx context.Context) ([]model.ChatMessage, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT id, role, content FROM messages ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	defer rows.Close()

	var out []model.ChatMessage
	for rows.Next() {
		var m model.ChatMessage
		if err := rows.Scan(&m.ID, &m.Role, &m.Text); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
