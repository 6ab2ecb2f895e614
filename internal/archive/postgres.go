package archive

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// PostgresArchive stores publication history in a single table,
// created on connect.
type PostgresArchive struct {
	db *sql.DB
}

func NewPostgresArchive(databaseURL string) (*PostgresArchive, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	a := &PostgresArchive{db: db}
	if err := a.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return a, nil
}

func (a *PostgresArchive) initSchema() error {
	_, err := a.db.Exec(`
		CREATE TABLE IF NOT EXISTS published_articles (
			id SERIAL PRIMARY KEY,
			title TEXT NOT NULL,
			summary TEXT,
			source TEXT,
			source_url TEXT,
			run_date TIMESTAMPTZ NOT NULL,
			run_id TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_published_run_date ON published_articles (run_date);
	`)
	if err != nil {
		return fmt.Errorf("failed to init schema: %w", err)
	}
	return nil
}

func (a *PostgresArchive) Recent(ctx context.Context, windowDays int) ([]Entry, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT title, COALESCE(summary, ''), COALESCE(source, ''), COALESCE(source_url, ''), run_date, run_id
		FROM published_articles
		WHERE run_date > NOW() - make_interval(days => $1)
		ORDER BY run_date DESC`, windowDays)
	if err != nil {
		return nil, fmt.Errorf("failed to query archive: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Title, &e.Summary, &e.Source, &e.SourceURL, &e.RunDate, &e.RunID); err != nil {
			return nil, fmt.Errorf("failed to scan archive row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (a *PostgresArchive) Append(ctx context.Context, entries []Entry) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO published_articles (title, summary, source, source_url, run_date, run_id)
		VALUES ($1, $2, $3, $4, $5, $6)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, e.Title, e.Summary, e.Source, e.SourceURL, e.RunDate, e.RunID); err != nil {
			return fmt.Errorf("failed to insert entry: %w", err)
		}
	}
	return tx.Commit()
}

func (a *PostgresArchive) Close() error { return a.db.Close() }
