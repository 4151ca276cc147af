package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/ppiankov/episodic/internal/model"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS episodes (
	id       TEXT PRIMARY KEY,
	position INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS entries (
	episode_id TEXT NOT NULL REFERENCES episodes(id) ON DELETE CASCADE,
	position   INTEGER NOT NULL,
	word       TEXT NOT NULL,
	rendering  TEXT NOT NULL,
	source     TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (episode_id, word)
);
CREATE INDEX IF NOT EXISTS idx_entries_order ON entries(episode_id, position);
`

// DBExecutor is satisfied by both *sql.DB and *sql.Tx
type DBExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// SQLiteStore keeps the corpus index in a SQLite database
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and applies the schema
func OpenSQLite(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := InitDB(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// InitDB applies the schema statements one by one
func InitDB(ctx context.Context, db DBExecutor) error {
	for _, stmt := range strings.Split(schemaSQL, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// Load reads episodes and entries in their stored order
func (s *SQLiteStore) Load(ctx context.Context) (*model.CorpusIndex, error) {
	index := model.NewCorpusIndex()

	rows, err := s.db.QueryContext(ctx, `SELECT id FROM episodes ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query episodes: %w", err)
	}
	var ids []model.EpisodeID
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan episode: %w", err)
		}
		id, err := model.ParseEpisodeID(raw)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, id := range ids {
		dict, err := loadEpisode(ctx, s.db, id)
		if err != nil {
			return nil, err
		}
		index.Put(dict)
	}
	return index, nil
}

func loadEpisode(ctx context.Context, db DBExecutor, id model.EpisodeID) (*model.EpisodeDictionary, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT word, rendering, source FROM entries WHERE episode_id = ? ORDER BY position`, string(id))
	if err != nil {
		return nil, fmt.Errorf("query entries for %s: %w", id, err)
	}
	defer rows.Close()

	dict := model.NewEpisodeDictionary(id)
	for rows.Next() {
		var e model.TranslationEntry
		if err := rows.Scan(&e.Word, &e.Rendering, &e.Source); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		dict.Add(e)
	}
	return dict, rows.Err()
}

// Save replaces the stored index in one transaction
func (s *SQLiteStore) Save(ctx context.Context, index *model.CorpusIndex) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM entries`); err != nil {
		return fmt.Errorf("clear entries: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM episodes`); err != nil {
		return fmt.Errorf("clear episodes: %w", err)
	}

	for pos, dict := range index.Episodes() {
		if err := insertEpisode(ctx, tx, pos, dict); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func insertEpisode(ctx context.Context, db DBExecutor, pos int, dict *model.EpisodeDictionary) error {
	if _, err := db.ExecContext(ctx,
		`INSERT INTO episodes (id, position) VALUES (?, ?)`, string(dict.ID), pos); err != nil {
		return fmt.Errorf("insert episode %s: %w", dict.ID, err)
	}
	for i, e := range dict.Entries() {
		if _, err := db.ExecContext(ctx,
			`INSERT INTO entries (episode_id, position, word, rendering, source) VALUES (?, ?, ?, ?, ?)`,
			string(dict.ID), i, e.Word, e.Rendering, e.Source); err != nil {
			return fmt.Errorf("insert entry %s/%s: %w", dict.ID, e.Word, err)
		}
	}
	return nil
}

// Close releases the database handle
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
