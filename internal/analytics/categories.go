package analytics

import (
	"fmt"
	"sort"
)

// CategoryStat aggregates performance for one content type.
type CategoryStat struct {
	ContentType   string  `json:"content_type"`
	Posts         int     `json:"posts"`
	AvgEngagement float64 `json:"avg_engagement"`
	AvgReach      float64 `json:"avg_reach"`
	TotalLikes    int     `json:"total_likes"`
	TotalComments int     `json:"total_comments"`
}

// CategoryReport ranks content types by average engagement.
type CategoryReport struct {
	PeriodDays     int             `json:"period_days"`
	Categories     []*CategoryStat `json:"categories"`
	Best           string          `json:"best_category,omitempty"`
	Recommendation string          `json:"recommendation,omitempty"`

	*NoData `json:",omitempty"`
}

// Categories groups posts in the window by content type and ranks the
// groups by average engagement.
func (a *Analyzer) Categories(w Window) (*CategoryReport, error) {
	posts, err := a.data.PostsInRange(w.From, w.To)
	if err != nil {
		return nil, fmt.Errorf("categories: load posts: %w", err)
	}

	report := &CategoryReport{PeriodDays: w.Days()}
	if len(posts) == 0 {
		report.NoData = &NoData{
			NoData:      true,
			Reason:      "no posts in this period",
			Remediation: "publish posts or extend the analysis window",
		}
		return report, nil
	}

	byType := map[string]*CategoryStat{}
	for _, p := range posts {
		ct := p.ContentType
		if ct == "" {
			ct = "post"
		}
		c := byType[ct]
		if c == nil {
			c = &CategoryStat{ContentType: ct}
			byType[ct] = c
		}
		c.Posts++
		c.TotalLikes += p.Likes
		c.TotalComments += p.CommentsCount
		c.AvgEngagement += float64(p.Engagement())
		c.AvgReach += float64(p.Reach)
	}

	for _, c := range byType {
		c.AvgEngagement /= float64(c.Posts)
		c.AvgReach /= float64(c.Posts)
		report.Categories = append(report.Categories, c)
	}
	sort.Slice(report.Categories, func(i, j int) bool {
		return report.Categories[i].AvgEngagement > report.Categories[j].AvgEngagement
	})

	best := report.Categories[0]
	report.Best = best.ContentType
	if len(report.Categories) > 1 {
		report.Recommendation = fmt.Sprintf("%s posts average %.0f engagement, the strongest format this period; lean into it", best.ContentType, best.AvgEngagement)
	}

	return report, nil
}
