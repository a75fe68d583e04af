package storage

import (
	"context"
	"database/sql"
	"fmt"

	// import the SQLite driver to register it with the database/sql package.
	_ "modernc.org/sqlite"
)

type Storage struct {
	Connection *sql.DB
}

func NewSQLiteStorage(path string) (*Storage, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("can't open database: %w", err)
	}

	// sqlite allows one writer at a time.
	conn.SetMaxOpenConns(1)

	if err = conn.Ping(); err != nil {
		return nil, fmt.Errorf("can't connect to database: %w", err)
	}

	return &Storage{Connection: conn}, nil
}

func (that *Storage) Init(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS tracks (
		path TEXT PRIMARY KEY,
		artist TEXT NOT NULL,
		title TEXT NOT NULL,
		search_name TEXT NOT NULL,
		search_ru TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS artists (
		name TEXT PRIMARY KEY
	);
	`

	if _, err := that.Connection.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("can't create tables: %w", err)
	}

	return nil
}

func (that *Storage) Close() error {
	return that.Connection.Close()
}
