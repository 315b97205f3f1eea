package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const commentColumns = "id, post_id, author, text, created_at, answered"

// InsertComment stores a comment.
func (s *Store) InsertComment(c *Comment) error {
	if c.ID == "" {
		id, _ := uuid.NewV7()
		c.ID = id.String()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}

	_, err := s.db.Exec(`
		INSERT INTO comments (`+commentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)
	`, c.ID, c.PostID, c.Author, c.Text, c.CreatedAt.UTC().Format(time.RFC3339), c.Answered)
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

// OpenComments returns unanswered comments, oldest first.
func (s *Store) OpenComments(limit int) ([]*Comment, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`
		SELECT `+commentColumns+` FROM comments
		WHERE answered = 0
		ORDER BY created_at ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("open comments: %w", err)
	}
	defer rows.Close()

	return scanComments(rows)
}

// CommentsSince returns comments created at or after t, newest first.
func (s *Store) CommentsSince(t time.Time, limit int) ([]*Comment, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := s.db.Query(`
		SELECT `+commentColumns+` FROM comments
		WHERE created_at >= ?
		ORDER BY created_at DESC
		LIMIT ?
	`, t.UTC().Format(time.RFC3339), limit)
	if err != nil {
		return nil, fmt.Errorf("comments since: %w", err)
	}
	defer rows.Close()

	return scanComments(rows)
}

// GetComment fetches a single comment by id.
func (s *Store) GetComment(id string) (*Comment, error) {
	row := s.db.QueryRow(`SELECT `+commentColumns+` FROM comments WHERE id = ?`, id)
	return scanComment(row)
}

func scanComments(rows *sql.Rows) ([]*Comment, error) {
	var comments []*Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func scanComment(r rowScanner) (*Comment, error) {
	var c Comment
	var createdAt string
	if err := r.Scan(&c.ID, &c.PostID, &c.Author, &c.Text, &createdAt, &c.Answered); err != nil {
		return nil, fmt.Errorf("scan comment: %w", err)
	}
	c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &c, nil
}
