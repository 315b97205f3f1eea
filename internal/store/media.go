package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const mediaColumns = "id, url, tags, ai_tags, mood, is_selfie, is_good_reference, analyzed, identity_descriptor, created_at"

// InsertMediaAsset stores a media asset.
func (s *Store) InsertMediaAsset(m *MediaAsset) error {
	if m.ID == "" {
		id, _ := uuid.NewV7()
		m.ID = id.String()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}

	_, err := s.db.Exec(`
		INSERT INTO media_assets (`+mediaColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, m.ID, m.URL, encodeTags(m.Tags), encodeTags(m.AITags), m.Mood,
		m.IsSelfie, m.IsGoodReference, m.Analyzed, nullable(m.IdentityDescriptor),
		m.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert media asset: %w", err)
	}
	return nil
}

// ListMedia returns assets matching the filter, newest first. Tag
// filters match substrings in either the owner tags or AI tags, so a
// query for "portrait" also hits "self-portrait".
func (s *Store) ListMedia(f MediaFilter) ([]*MediaAsset, error) {
	var where []string
	var args []any

	if f.OnlySelfies {
		where = append(where, "is_selfie = 1")
	}
	if f.OnlyGoodReference {
		where = append(where, "is_good_reference = 1")
	}
	if f.Mood != "" {
		where = append(where, "mood = ? COLLATE NOCASE")
		args = append(args, f.Mood)
	}
	if len(f.Tags) > 0 {
		var tagClauses []string
		for _, tag := range f.Tags {
			tagClauses = append(tagClauses, "(tags LIKE ? COLLATE NOCASE OR ai_tags LIKE ? COLLATE NOCASE)")
			pattern := "%" + tag + "%"
			args = append(args, pattern, pattern)
		}
		where = append(where, "("+strings.Join(tagClauses, " OR ")+")")
	}

	query := "SELECT " + mediaColumns + " FROM media_assets"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list media: %w", err)
	}
	defer rows.Close()

	var assets []*MediaAsset
	for rows.Next() {
		a, err := scanMediaAsset(rows)
		if err != nil {
			return nil, err
		}
		assets = append(assets, a)
	}
	return assets, rows.Err()
}

// CountMedia returns the total number of assets in the library.
func (s *Store) CountMedia() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM media_assets`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count media: %w", err)
	}
	return n, nil
}

func scanMediaAsset(r rowScanner) (*MediaAsset, error) {
	var a MediaAsset
	var tags, aiTags, mood, descriptor sql.NullString
	var createdAt string
	if err := r.Scan(&a.ID, &a.URL, &tags, &aiTags, &mood, &a.IsSelfie,
		&a.IsGoodReference, &a.Analyzed, &descriptor, &createdAt); err != nil {
		return nil, fmt.Errorf("scan media asset: %w", err)
	}
	a.Tags = decodeTags(tags.String)
	a.AITags = decodeTags(aiTags.String)
	a.Mood = mood.String
	a.IdentityDescriptor = descriptor.String
	a.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &a, nil
}

func encodeTags(tags []string) string {
	if len(tags) == 0 {
		return "[]"
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func decodeTags(s string) []string {
	if s == "" || s == "[]" {
		return nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(s), &tags); err != nil {
		return nil
	}
	return tags
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
