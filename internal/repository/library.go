package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rocketscienceinc/irene-skills/internal/entity"
)

// LibraryRepository keeps the index built by the last music scan.
type LibraryRepository interface {
	// Replace swaps the whole index for tracks and artists in one transaction.
	Replace(ctx context.Context, tracks []entity.Track, artists []string) error
	PureArtists(ctx context.Context) ([]string, error)
	CountTracks(ctx context.Context) (int, error)
}

type dbLibrary struct {
	db *sql.DB
}

func NewLibraryRepository(db *sql.DB) LibraryRepository {
	return &dbLibrary{db: db}
}

func (that *dbLibrary) Replace(ctx context.Context, tracks []entity.Track, artists []string) error {
	tx, err := that.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err = tx.ExecContext(ctx, `DELETE FROM tracks`); err != nil {
		return fmt.Errorf("failed to clear tracks: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM artists`); err != nil {
		return fmt.Errorf("failed to clear artists: %w", err)
	}

	trackStmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO tracks (path, artist, title, search_name, search_ru) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare track insert: %w", err)
	}
	defer trackStmt.Close()

	for _, track := range tracks {
		if _, err = trackStmt.ExecContext(ctx, track.Path, track.Artist, track.Title, track.SearchName, track.SearchRU); err != nil {
			return fmt.Errorf("failed to insert track %s: %w", track.Path, err)
		}
	}

	artistStmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO artists (name) VALUES (?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare artist insert: %w", err)
	}
	defer artistStmt.Close()

	for _, artist := range artists {
		if _, err = artistStmt.ExecContext(ctx, artist); err != nil {
			return fmt.Errorf("failed to insert artist %s: %w", artist, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit library: %w", err)
	}

	return nil
}

func (that *dbLibrary) PureArtists(ctx context.Context) ([]string, error) {
	rows, err := that.db.QueryContext(ctx, `SELECT name FROM artists ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query artists: %w", err)
	}
	defer rows.Close()

	var artists []string
	for rows.Next() {
		var name string
		if err = rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan artist: %w", err)
		}

		artists = append(artists, name)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read artists: %w", err)
	}

	return artists, nil
}

func (that *dbLibrary) CountTracks(ctx context.Context) (int, error) {
	var count int
	if err := that.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tracks`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count tracks: %w", err)
	}

	return count, nil
}
