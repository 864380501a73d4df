package comments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/playtestshot/internal/apperr"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS comment_records (
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	id         TEXT NOT NULL UNIQUE,
	screenshot TEXT NOT NULL,
	comment    TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_comment_records_created ON comment_records(created_at DESC);
`

// SQLiteStore persists records in a SQLite database.
type SQLiteStore struct {
	conn *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLite opens (or creates) the database at dsn and applies the schema.
func OpenSQLite(dsn string) (*SQLiteStore, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("comments: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("comments: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("comments: apply schema: %w", err)
	}
	return &SQLiteStore{conn: conn}, nil
}

// Append inserts rec.
func (s *SQLiteStore) Append(ctx context.Context, rec Record) error {
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO comment_records (id, screenshot, comment, created_at) VALUES (?, ?, ?, ?)`,
		rec.ID, rec.Screenshot, rec.Comment, rec.Timestamp.UnixNano())
	if err != nil {
		return fmt.Errorf("comments: insert %s: %w", rec.ID, err)
	}
	return nil
}

// List returns up to limit records, newest first. Records sharing a
// timestamp are ordered by insertion, latest first.
func (s *SQLiteStore) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, screenshot, comment, created_at FROM comment_records
		 ORDER BY created_at DESC, seq DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("comments: list: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Get returns the record with id.
func (s *SQLiteStore) Get(ctx context.Context, id string) (Record, error) {
	row := s.conn.QueryRowContext(ctx,
		`SELECT id, screenshot, comment, created_at FROM comment_records WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("comment %s: %w", id, apperr.ErrNotFound)
	}
	return rec, err
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (Record, error) {
	var (
		rec     Record
		created int64
	)
	if err := sc.Scan(&rec.ID, &rec.Screenshot, &rec.Comment, &created); err != nil {
		return Record{}, err
	}
	rec.Timestamp = time.Unix(0, created).UTC()
	return rec, nil
}
