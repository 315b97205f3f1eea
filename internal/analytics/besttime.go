package analytics

import (
	"fmt"
	"sort"
	"time"
)

// TimeSlot is one weekday/hour bucket with its averaged engagement.
type TimeSlot struct {
	Weekday       string  `json:"weekday"`
	Hour          int     `json:"hour"`
	Posts         int     `json:"posts"`
	AvgEngagement float64 `json:"avg_engagement"`
}

// BestTimeReport ranks posting slots by historical engagement.
type BestTimeReport struct {
	PeriodDays     int         `json:"period_days"`
	SampleSize     int         `json:"sample_size"`
	TopSlots       []*TimeSlot `json:"top_slots"`
	BestWeekday    string      `json:"best_weekday,omitempty"`
	BestHour       int         `json:"best_hour,omitempty"`
	Recommendation string      `json:"recommendation,omitempty"`

	*NoData `json:",omitempty"`
}

const topSlotCount = 5

// BestTime buckets the window's posts by weekday and hour and ranks
// the buckets by average engagement.
func (a *Analyzer) BestTime(w Window) (*BestTimeReport, error) {
	posts, err := a.data.PostsInRange(w.From, w.To)
	if err != nil {
		return nil, fmt.Errorf("best time: load posts: %w", err)
	}

	report := &BestTimeReport{PeriodDays: w.Days(), SampleSize: len(posts)}
	if len(posts) == 0 {
		report.NoData = &NoData{
			NoData:      true,
			Reason:      "no posts in this period",
			Remediation: "publish posts or extend the analysis window",
		}
		return report, nil
	}

	type key struct {
		day  time.Weekday
		hour int
	}
	buckets := map[key]*TimeSlot{}
	for _, p := range posts {
		t := p.PostedAt.Local()
		k := key{t.Weekday(), t.Hour()}
		s := buckets[k]
		if s == nil {
			s = &TimeSlot{Weekday: k.day.String(), Hour: k.hour}
			buckets[k] = s
		}
		s.Posts++
		s.AvgEngagement += float64(p.Engagement())
	}

	var slots []*TimeSlot
	for _, s := range buckets {
		s.AvgEngagement /= float64(s.Posts)
		slots = append(slots, s)
	}
	sort.Slice(slots, func(i, j int) bool {
		if slots[i].AvgEngagement != slots[j].AvgEngagement {
			return slots[i].AvgEngagement > slots[j].AvgEngagement
		}
		// Stable tiebreak so the ranking is deterministic.
		if slots[i].Weekday != slots[j].Weekday {
			return slots[i].Weekday < slots[j].Weekday
		}
		return slots[i].Hour < slots[j].Hour
	})

	if len(slots) > topSlotCount {
		slots = slots[:topSlotCount]
	}
	report.TopSlots = slots
	report.BestWeekday = slots[0].Weekday
	report.BestHour = slots[0].Hour
	report.Recommendation = fmt.Sprintf("posts published %s around %d:00 earn the most engagement (%.0f average over %d posts)",
		report.BestWeekday, report.BestHour, slots[0].AvgEngagement, slots[0].Posts)

	return report, nil
}
