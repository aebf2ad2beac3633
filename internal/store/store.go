// Package store handles SQLite persistence of the session log.
package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/verte-zerg/pagetype/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store is the append-only log of finished sessions.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// The Recorder worker and the caller share one connection.
	db.SetMaxOpenConns(1)
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS games (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL,
			started_at TEXT NOT NULL,
			completed_at TEXT NOT NULL,
			wpm INTEGER NOT NULL,
			accuracy REAL NOT NULL,
			typed INTEGER NOT NULL,
			mistakes INTEGER NOT NULL,
			target_length INTEGER NOT NULL,
			completed INTEGER NOT NULL,
			source TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_games_completed_at ON games(completed_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Append stores one record at the end of the log.
func (s *Store) Append(ctx context.Context, rec model.StatsRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO games (id, started_at, completed_at, wpm, accuracy, typed, mistakes, target_length, completed, source)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.StartedAt.Format(time.RFC3339Nano),
		rec.CompletedAt.Format(time.RFC3339Nano),
		rec.WPM,
		rec.Accuracy,
		rec.Typed,
		rec.Mistakes,
		rec.TargetLength,
		rec.Completed,
		rec.Source,
	)
	return err
}

// LoadAll returns every record in insertion order.
func (s *Store) LoadAll(ctx context.Context) ([]model.StatsRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, completed_at, wpm, accuracy, typed, mistakes, target_length, completed, source
		 FROM games
		 ORDER BY seq ASC`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var records []model.StatsRecord
	for rows.Next() {
		var rec model.StatsRecord
		var startedAt, completedAt string
		if err := rows.Scan(&rec.ID, &startedAt, &completedAt, &rec.WPM, &rec.Accuracy,
			&rec.Typed, &rec.Mistakes, &rec.TargetLength, &rec.Completed, &rec.Source); err != nil {
			return nil, err
		}
		if rec.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
			return nil, err
		}
		if rec.CompletedAt, err = time.Parse(time.RFC3339Nano, completedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// Clear removes every record.
func (s *Store) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM games`)
	return err
}
