package analytics

import (
	"fmt"
	"strings"

	"github.com/fenwick/mira-agent/internal/store"
)

// Sentiment lexicons. Deliberately small and bilingual; the audience
// writes in German and English.
var positiveWords = []string{
	"love", "great", "beautiful", "amazing", "awesome", "wonderful",
	"best", "perfect", "thank", "congrat", "stunning", "fantastic",
	"toll", "super", "schön", "danke", "klasse", "wunderbar", "mega",
	"herrlich", "grossartig", "großartig",
}

var negativeWords = []string{
	"hate", "awful", "terrible", "worst", "boring", "ugly", "bad",
	"disappointing", "scam", "fake", "spam",
	"schlecht", "langweilig", "furchtbar", "schrecklich", "enttäusch",
	"hässlich", "peinlich",
}

// SentimentReport summarizes audience comment sentiment.
type SentimentReport struct {
	SampleSize     int      `json:"sample_size"`
	Positive       int      `json:"positive"`
	Negative       int      `json:"negative"`
	Neutral        int      `json:"neutral"`
	Score          float64  `json:"score"` // -1..1
	TopPositive    []string `json:"top_positive,omitempty"`
	TopNegative    []string `json:"top_negative,omitempty"`
	Recommendation string   `json:"recommendation,omitempty"`

	*NoData `json:",omitempty"`
}

const sentimentExampleCount = 3

// Sentiment classifies comments from the window with a word-list
// lexicon and returns counts, an aggregate score, and a few example
// comments per polarity.
func (a *Analyzer) Sentiment(w Window) (*SentimentReport, error) {
	comments, err := a.data.CommentsSince(w.From, 500)
	if err != nil {
		return nil, fmt.Errorf("sentiment: load comments: %w", err)
	}

	report := &SentimentReport{}
	for _, c := range comments {
		if !c.CreatedAt.Before(w.To) {
			continue
		}
		report.SampleSize++
		switch ClassifyComment(c) {
		case 1:
			report.Positive++
			if len(report.TopPositive) < sentimentExampleCount {
				report.TopPositive = append(report.TopPositive, c.Text)
			}
		case -1:
			report.Negative++
			if len(report.TopNegative) < sentimentExampleCount {
				report.TopNegative = append(report.TopNegative, c.Text)
			}
		default:
			report.Neutral++
		}
	}

	if report.SampleSize == 0 {
		report.NoData = &NoData{
			NoData:      true,
			Reason:      "no comments in this period",
			Remediation: "extend the analysis window or wait for audience activity",
		}
		return report, nil
	}

	report.Score = float64(report.Positive-report.Negative) / float64(report.SampleSize)
	switch {
	case report.Score > 0.3:
		report.Recommendation = "audience sentiment is strongly positive; a good moment for bolder content"
	case report.Score < -0.1:
		report.Recommendation = "negative sentiment is elevated; review the flagged comments and consider responding personally"
	default:
		report.Recommendation = "sentiment is mixed; engaging with open comments may tip it positive"
	}

	return report, nil
}

// ClassifyComment returns 1 (positive), -1 (negative), or 0 (neutral).
// Positive and negative hits cancel out.
func ClassifyComment(c *store.Comment) int {
	text := strings.ToLower(c.Text)
	score := 0
	for _, w := range positiveWords {
		if strings.Contains(text, w) {
			score++
		}
	}
	for _, w := range negativeWords {
		if strings.Contains(text, w) {
			score--
		}
	}
	switch {
	case score > 0:
		return 1
	case score < 0:
		return -1
	default:
		return 0
	}
}
