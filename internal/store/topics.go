package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// InsertTopic stores a content topic.
func (s *Store) InsertTopic(t *Topic) error {
	if t.ID == "" {
		id, _ := uuid.NewV7()
		t.ID = id.String()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}

	_, err := s.db.Exec(`
		INSERT INTO topics (id, name, notes, created_at)
		VALUES (?, ?, ?, ?)
	`, t.ID, t.Name, nullable(t.Notes), t.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert topic: %w", err)
	}
	return nil
}

// ListTopics returns all topics, alphabetically.
func (s *Store) ListTopics() ([]*Topic, error) {
	rows, err := s.db.Query(`SELECT id, name, notes, created_at FROM topics ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}
	defer rows.Close()

	var topics []*Topic
	for rows.Next() {
		var t Topic
		var notes sql.NullString
		var createdAt string
		if err := rows.Scan(&t.ID, &t.Name, &notes, &createdAt); err != nil {
			return nil, fmt.Errorf("scan topic: %w", err)
		}
		t.Notes = notes.String
		t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		topics = append(topics, &t)
	}
	return topics, rows.Err()
}
