package tools

import (
	"context"
	"fmt"
)

// windowParam is the shared time-window parameter of the analytics
// family.
var windowParam = map[string]any{
	"type":        "integer",
	"description": "Analysis window in days (default 30, max 365)",
}

func (r *Registry) registerAnalyticsTools() {
	r.Register(&Tool{
		Name:        "get_account_metrics",
		Description: "Get aggregate engagement metrics (likes, comments, reach) for a period, optionally compared to the previous period.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"days": windowParam,
				"compare": map[string]any{
					"type":        "boolean",
					"description": "Also aggregate the previous period and include change percentages",
				},
			},
		},
		Handler: r.handleMetrics,
	})

	r.Register(&Tool{
		Name:        "analyze_growth",
		Description: "Analyze follower growth and reach development over a period.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"days": windowParam,
			},
		},
		Handler: r.handleGrowth,
	})

	r.Register(&Tool{
		Name:        "analyze_categories",
		Description: "Compare performance across content types (post, reel, story, carousel) and find the strongest format.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"days": windowParam,
			},
		},
		Handler: r.handleCategories,
	})

	r.Register(&Tool{
		Name:        "best_posting_time",
		Description: "Find the weekday and hour where posts historically earn the most engagement.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"days": windowParam,
			},
		},
		Handler: r.handleBestTime,
	})

	r.Register(&Tool{
		Name:        "analyze_sentiment",
		Description: "Classify recent audience comments as positive, negative, or neutral and summarize the mood.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"days": windowParam,
			},
		},
		Handler: r.handleSentiment,
	})
}

func (r *Registry) handleMetrics(ctx context.Context, args map[string]any) (string, error) {
	if r.deps.Analyzer == nil {
		return "", fmt.Errorf("analytics not configured")
	}
	w := r.deps.Analyzer.LastDays(intArg(args, "days", 0))
	report, err := r.deps.Analyzer.Metrics(w, boolArg(args, "compare"))
	if err != nil {
		return "", err
	}
	return jsonResult(report)
}

func (r *Registry) handleGrowth(ctx context.Context, args map[string]any) (string, error) {
	if r.deps.Analyzer == nil {
		return "", fmt.Errorf("analytics not configured")
	}
	report, err := r.deps.Analyzer.Growth(r.deps.Analyzer.LastDays(intArg(args, "days", 0)))
	if err != nil {
		return "", err
	}
	return jsonResult(report)
}

func (r *Registry) handleCategories(ctx context.Context, args map[string]any) (string, error) {
	if r.deps.Analyzer == nil {
		return "", fmt.Errorf("analytics not configured")
	}
	report, err := r.deps.Analyzer.Categories(r.deps.Analyzer.LastDays(intArg(args, "days", 0)))
	if err != nil {
		return "", err
	}
	return jsonResult(report)
}

func (r *Registry) handleBestTime(ctx context.Context, args map[string]any) (string, error) {
	if r.deps.Analyzer == nil {
		return "", fmt.Errorf("analytics not configured")
	}
	report, err := r.deps.Analyzer.BestTime(r.deps.Analyzer.LastDays(intArg(args, "days", 0)))
	if err != nil {
		return "", err
	}
	return jsonResult(report)
}

func (r *Registry) handleSentiment(ctx context.Context, args map[string]any) (string, error) {
	if r.deps.Analyzer == nil {
		return "", fmt.Errorf("analytics not configured")
	}
	report, err := r.deps.Analyzer.Sentiment(r.deps.Analyzer.LastDays(intArg(args, "days", 0)))
	if err != nil {
		return "", err
	}
	return jsonResult(report)
}
