package analytics

import "fmt"

// PeriodMetrics holds the aggregates for one window.
type PeriodMetrics struct {
	Posts       int     `json:"posts"`
	Likes       int     `json:"likes"`
	Comments    int     `json:"comments"`
	Shares      int     `json:"shares"`
	Reach       int     `json:"reach"`
	Impressions int     `json:"impressions"`
	AvgPerPost  float64 `json:"avg_engagement_per_post"`
}

// MetricsReport compares the current window against the symmetric
// previous one. All change percentages are null when the previous
// period's baseline is zero.
type MetricsReport struct {
	PeriodDays  int            `json:"period_days"`
	Current     *PeriodMetrics `json:"current"`
	Previous    *PeriodMetrics `json:"previous,omitempty"`
	LikesPct    *float64       `json:"likes_change_pct,omitempty"`
	CommentsPct *float64       `json:"comments_change_pct,omitempty"`
	ReachPct    *float64       `json:"reach_change_pct,omitempty"`
	PostsPct    *float64       `json:"posts_change_pct,omitempty"`

	*NoData `json:",omitempty"`
}

// Metrics aggregates engagement for the window. With compare set, the
// symmetric previous period is aggregated too and percentage changes
// are attached.
func (a *Analyzer) Metrics(w Window, compare bool) (*MetricsReport, error) {
	current, err := a.periodMetrics(w)
	if err != nil {
		return nil, err
	}

	report := &MetricsReport{PeriodDays: w.Days(), Current: current}
	if current.Posts == 0 {
		report.NoData = &NoData{
			NoData:      true,
			Reason:      "no posts in this period",
			Remediation: "publish posts or extend the analysis window",
		}
		if !compare {
			return report, nil
		}
	}

	if compare {
		previous, err := a.periodMetrics(w.Previous())
		if err != nil {
			return nil, err
		}
		report.Previous = previous
		report.LikesPct = pctChange(float64(current.Likes), float64(previous.Likes))
		report.CommentsPct = pctChange(float64(current.Comments), float64(previous.Comments))
		report.ReachPct = pctChange(float64(current.Reach), float64(previous.Reach))
		report.PostsPct = pctChange(float64(current.Posts), float64(previous.Posts))
	}

	return report, nil
}

func (a *Analyzer) periodMetrics(w Window) (*PeriodMetrics, error) {
	posts, err := a.data.PostsInRange(w.From, w.To)
	if err != nil {
		return nil, fmt.Errorf("metrics: load posts: %w", err)
	}

	m := &PeriodMetrics{Posts: len(posts)}
	total := 0
	for _, p := range posts {
		m.Likes += p.Likes
		m.Comments += p.CommentsCount
		m.Shares += p.Shares
		m.Reach += p.Reach
		m.Impressions += p.Impressions
		total += p.Engagement()
	}
	if m.Posts > 0 {
		m.AvgPerPost = float64(total) / float64(m.Posts)
	}
	return m, nil
}
