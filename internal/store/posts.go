package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const postColumns = "id, caption, content_type, posted_at, likes, comments_count, shares, reach, impressions"

// InsertPost stores a post. A missing ID is filled with a UUIDv7.
func (s *Store) InsertPost(p *Post) error {
	if p.ID == "" {
		id, _ := uuid.NewV7()
		p.ID = id.String()
	}
	if p.PostedAt.IsZero() {
		p.PostedAt = time.Now()
	}

	_, err := s.db.Exec(`
		INSERT INTO posts (`+postColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.Caption, p.ContentType, p.PostedAt.UTC().Format(time.RFC3339),
		p.Likes, p.CommentsCount, p.Shares, p.Reach, p.Impressions)
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

// SearchResult carries a page of matched posts plus the total match
// count before the limit was applied.
type SearchResult struct {
	Posts      []*Post `json:"posts"`
	TotalFound int     `json:"total_found"`
}

// SearchPosts finds posts whose caption contains query, plus posts
// that match through their comment text. Results are deduplicated by
// post id and ordered newest first.
func (s *Store) SearchPosts(query string, limit int) (*SearchResult, error) {
	if limit <= 0 {
		limit = 5
	}
	pattern := "%" + query + "%"

	rows, err := s.db.Query(`
		SELECT `+postColumns+` FROM posts
		WHERE id IN (
			SELECT id FROM posts WHERE caption LIKE ? COLLATE NOCASE
			UNION
			SELECT post_id FROM comments WHERE text LIKE ? COLLATE NOCASE
		)
		ORDER BY posted_at DESC
	`, pattern, pattern)
	if err != nil {
		return nil, fmt.Errorf("search posts: %w", err)
	}
	defer rows.Close()

	var all []*Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		all = append(all, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search posts: %w", err)
	}

	result := &SearchResult{TotalFound: len(all)}
	if len(all) > limit {
		result.Posts = all[:limit]
	} else {
		result.Posts = all
	}
	return result, nil
}

// PostsInRange returns posts published in [from, to), oldest first.
func (s *Store) PostsInRange(from, to time.Time) ([]*Post, error) {
	rows, err := s.db.Query(`
		SELECT `+postColumns+` FROM posts
		WHERE posted_at >= ? AND posted_at < ?
		ORDER BY posted_at ASC
	`, from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("posts in range: %w", err)
	}
	defer rows.Close()

	var posts []*Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(r rowScanner) (*Post, error) {
	var p Post
	var postedAt string
	if err := r.Scan(&p.ID, &p.Caption, &p.ContentType, &postedAt,
		&p.Likes, &p.CommentsCount, &p.Shares, &p.Reach, &p.Impressions); err != nil {
		return nil, fmt.Errorf("scan post: %w", err)
	}
	p.PostedAt, _ = time.Parse(time.RFC3339, postedAt)
	return &p, nil
}
