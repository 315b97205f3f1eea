package analytics

import "fmt"

// GrowthReport summarizes follower and reach development over a
// window. FallbackMode is set when no daily stats exist and the
// report had to be derived from post engagement instead.
type GrowthReport struct {
	PeriodDays      int      `json:"period_days"`
	FallbackMode    bool     `json:"fallback_mode"`
	FollowersStart  int      `json:"followers_start,omitempty"`
	FollowersEnd    int      `json:"followers_end,omitempty"`
	FollowersChange int      `json:"followers_change"`
	FollowersPct    *float64 `json:"followers_change_pct"` // null when baseline is zero
	TotalReach      int      `json:"total_reach"`
	AvgDailyReach   float64  `json:"avg_daily_reach"`
	PostsPublished  int      `json:"posts_published"`
	TotalEngagement int      `json:"total_engagement"`
	Recommendation  string   `json:"recommendation,omitempty"`

	*NoData `json:",omitempty"`
}

// Growth analyzes follower growth over the window. With zero daily
// stat rows but at least one published post it degrades to an
// engagement-proxy summary rather than erroring.
func (a *Analyzer) Growth(w Window) (*GrowthReport, error) {
	stats, err := a.data.StatsInRange(dayKey(w.From), dayKey(w.To))
	if err != nil {
		return nil, fmt.Errorf("growth: load stats: %w", err)
	}
	posts, err := a.data.PostsInRange(w.From, w.To)
	if err != nil {
		return nil, fmt.Errorf("growth: load posts: %w", err)
	}

	report := &GrowthReport{PeriodDays: w.Days(), PostsPublished: len(posts)}

	if len(stats) == 0 {
		if len(posts) == 0 {
			report.NoData = &NoData{
				NoData:      true,
				Reason:      "no daily stats and no posts in this period",
				Remediation: "enable daily stats tracking or extend the analysis window",
			}
			return report, nil
		}
		// Engagement proxy: no follower series, but post performance
		// still tells a story.
		report.FallbackMode = true
		for _, p := range posts {
			report.TotalEngagement += p.Engagement()
			report.TotalReach += p.Reach
		}
		report.AvgDailyReach = float64(report.TotalReach) / float64(report.PeriodDays)
		report.Recommendation = "daily stats tracking is off; growth was estimated from post engagement. Enable tracking for follower-level insight."
		return report, nil
	}

	first, last := stats[0], stats[len(stats)-1]
	report.FollowersStart = first.Followers
	report.FollowersEnd = last.Followers
	report.FollowersChange = last.Followers - first.Followers
	report.FollowersPct = pctChange(float64(last.Followers), float64(first.Followers))

	for _, d := range stats {
		report.TotalReach += d.Reach
	}
	report.AvgDailyReach = float64(report.TotalReach) / float64(len(stats))

	for _, p := range posts {
		report.TotalEngagement += p.Engagement()
	}

	switch {
	case report.FollowersChange > 0 && len(posts) > 0:
		report.Recommendation = fmt.Sprintf("gained %d followers over %d posts; keep the current cadence", report.FollowersChange, len(posts))
	case report.FollowersChange <= 0 && len(posts) == 0:
		report.Recommendation = "no posts published this period; publishing regularly is the most reliable growth lever"
	case report.FollowersChange < 0:
		report.Recommendation = "follower count declined; review which recent posts underperformed"
	}

	return report, nil
}
