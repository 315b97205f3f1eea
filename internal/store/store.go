// Package store is the persistence adapter for the account's content:
// posts, comments, topics, media assets, daily account stats, and
// content plans. It requires only equality/range/substring filters with
// ordering and limits; no cross-table transactions.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/mattn/go-sqlite3"
)

// Store manages content persistence in SQLite.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates a store on an already-open database handle and runs
// migrations. Tests pass an in-memory handle here.
func New(db *sql.DB, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{db: db, logger: logger}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Open opens (or creates) the database at path with WAL journaling.
func Open(path string, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s, err := New(db, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	-- Published posts
	CREATE TABLE IF NOT EXISTS posts (
		id TEXT PRIMARY KEY,
		caption TEXT NOT NULL,
		content_type TEXT NOT NULL DEFAULT 'post',
		posted_at TEXT NOT NULL,
		likes INTEGER NOT NULL DEFAULT 0,
		comments_count INTEGER NOT NULL DEFAULT 0,
		shares INTEGER NOT NULL DEFAULT 0,
		reach INTEGER NOT NULL DEFAULT 0,
		impressions INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_posts_posted ON posts(posted_at);
	CREATE INDEX IF NOT EXISTS idx_posts_type ON posts(content_type);

	-- Audience comments on posts
	CREATE TABLE IF NOT EXISTS comments (
		id TEXT PRIMARY KEY,
		post_id TEXT NOT NULL,
		author TEXT NOT NULL,
		text TEXT NOT NULL,
		created_at TEXT NOT NULL,
		answered INTEGER NOT NULL DEFAULT 0,
		FOREIGN KEY (post_id) REFERENCES posts(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_comments_post ON comments(post_id);
	CREATE INDEX IF NOT EXISTS idx_comments_open ON comments(answered, created_at);

	-- Content topics maintained by the owner
	CREATE TABLE IF NOT EXISTS topics (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		notes TEXT,
		created_at TEXT NOT NULL
	);

	-- Media library
	CREATE TABLE IF NOT EXISTS media_assets (
		id TEXT PRIMARY KEY,
		url TEXT NOT NULL,
		tags TEXT,                -- JSON array
		ai_tags TEXT,             -- JSON array, from offline analysis
		mood TEXT,
		is_selfie INTEGER NOT NULL DEFAULT 0,
		is_good_reference INTEGER NOT NULL DEFAULT 0,
		analyzed INTEGER NOT NULL DEFAULT 0,
		identity_descriptor TEXT, -- "visual DNA", free text
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_media_selfie ON media_assets(is_selfie);
	CREATE INDEX IF NOT EXISTS idx_media_reference ON media_assets(is_good_reference);

	-- Daily account stats (one row per day)
	CREATE TABLE IF NOT EXISTS account_stats (
		day TEXT PRIMARY KEY,     -- YYYY-MM-DD
		followers INTEGER NOT NULL DEFAULT 0,
		following INTEGER NOT NULL DEFAULT 0,
		posts_count INTEGER NOT NULL DEFAULT 0,
		reach INTEGER NOT NULL DEFAULT 0,
		impressions INTEGER NOT NULL DEFAULT 0,
		profile_views INTEGER NOT NULL DEFAULT 0
	);

	-- Content plan drafts created by the agent; lifecycle is external
	CREATE TABLE IF NOT EXISTS content_plans (
		id TEXT PRIMARY KEY,
		status TEXT NOT NULL DEFAULT 'draft',
		scheduled_for TEXT,
		caption TEXT,
		image_url TEXT,
		concept_note TEXT,
		content_type TEXT NOT NULL DEFAULT 'post',
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_plans_status ON content_plans(status, scheduled_for);

	-- Tool call audit (structured, queryable)
	CREATE TABLE IF NOT EXISTS tool_calls (
		id TEXT PRIMARY KEY,
		tool_name TEXT NOT NULL,
		arguments TEXT NOT NULL,
		result TEXT,
		error TEXT,
		started_at TEXT NOT NULL,
		duration_ms INTEGER
	);
	CREATE INDEX IF NOT EXISTS idx_tool_calls_tool ON tool_calls(tool_name, started_at);
	`

	_, err := s.db.Exec(schema)
	return err
}
