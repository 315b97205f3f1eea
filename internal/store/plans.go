package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const planColumns = "id, status, scheduled_for, caption, image_url, concept_note, content_type, created_at"

// InsertContentPlan stores a draft content plan. Status always starts
// as "draft"; approval happens outside this service.
func (s *Store) InsertContentPlan(p *ContentPlan) error {
	if p.ID == "" {
		id, _ := uuid.NewV7()
		p.ID = id.String()
	}
	if p.Status == "" {
		p.Status = "draft"
	}
	if p.ContentType == "" {
		p.ContentType = "post"
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}

	var scheduledFor any
	if p.ScheduledFor != nil {
		scheduledFor = p.ScheduledFor.UTC().Format(time.RFC3339)
	}

	_, err := s.db.Exec(`
		INSERT INTO content_plans (`+planColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.Status, scheduledFor, nullable(p.Caption), nullable(p.ImageURL),
		nullable(p.ConceptNote), p.ContentType, p.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert content plan: %w", err)
	}
	return nil
}

// ListContentPlans returns plans with the given status, soonest
// scheduled first. An empty status returns all plans.
func (s *Store) ListContentPlans(status string, limit int) ([]*ContentPlan, error) {
	if limit <= 0 {
		limit = 50
	}

	query := "SELECT " + planColumns + " FROM content_plans"
	var args []any
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, status)
	}
	query += " ORDER BY scheduled_for ASC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list content plans: %w", err)
	}
	defer rows.Close()

	var plans []*ContentPlan
	for rows.Next() {
		var p ContentPlan
		var scheduledFor, caption, imageURL, conceptNote sql.NullString
		var createdAt string
		if err := rows.Scan(&p.ID, &p.Status, &scheduledFor, &caption, &imageURL,
			&conceptNote, &p.ContentType, &createdAt); err != nil {
			return nil, fmt.Errorf("scan content plan: %w", err)
		}
		if scheduledFor.Valid {
			if t, err := time.Parse(time.RFC3339, scheduledFor.String); err == nil {
				p.ScheduledFor = &t
			}
		}
		p.Caption = caption.String
		p.ImageURL = imageURL.String
		p.ConceptNote = conceptNote.String
		p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		plans = append(plans, &p)
	}
	return plans, rows.Err()
}
