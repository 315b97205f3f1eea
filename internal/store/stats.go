package store

import "fmt"

const statColumns = "day, followers, following, posts_count, reach, impressions, profile_views"

// UpsertDailyStat stores or replaces one day of account stats.
func (s *Store) UpsertDailyStat(d *DayStat) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO account_stats (`+statColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, d.Day, d.Followers, d.Following, d.PostsCount, d.Reach, d.Impressions, d.ProfileViews)
	if err != nil {
		return fmt.Errorf("upsert daily stat: %w", err)
	}
	return nil
}

// StatsInRange returns daily stats for days in [from, to], ascending.
// Day strings compare lexically, which matches chronological order
// for the YYYY-MM-DD format.
func (s *Store) StatsInRange(from, to string) ([]*DayStat, error) {
	rows, err := s.db.Query(`
		SELECT `+statColumns+` FROM account_stats
		WHERE day >= ? AND day <= ?
		ORDER BY day ASC
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("stats in range: %w", err)
	}
	defer rows.Close()

	var stats []*DayStat
	for rows.Next() {
		var d DayStat
		if err := rows.Scan(&d.Day, &d.Followers, &d.Following, &d.PostsCount,
			&d.Reach, &d.Impressions, &d.ProfileViews); err != nil {
			return nil, fmt.Errorf("scan daily stat: %w", err)
		}
		stats = append(stats, &d)
	}
	return stats, rows.Err()
}
