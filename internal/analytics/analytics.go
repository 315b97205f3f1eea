// Package analytics implements the read-only reporting tools: growth,
// category performance, best posting time, sentiment, and account
// metrics. Each report aggregates in memory over a bounded time window
// and degrades to an explicit no-data result instead of failing.
package analytics

import (
	"log/slog"
	"time"

	"github.com/fenwick/mira-agent/internal/store"
)

// DataSource is the slice of the persistence layer the analyzers read
// from.
type DataSource interface {
	PostsInRange(from, to time.Time) ([]*store.Post, error)
	StatsInRange(from, to string) ([]*store.DayStat, error)
	CommentsSince(t time.Time, limit int) ([]*store.Comment, error)
}

// Analyzer runs the reporting queries.
type Analyzer struct {
	data   DataSource
	logger *slog.Logger
	now    func() time.Time // swappable for tests
}

// NewAnalyzer creates an analyzer over the given data source.
func NewAnalyzer(data DataSource, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{
		data:   data,
		logger: logger.With("component", "analytics"),
		now:    time.Now,
	}
}

// Window is a half-open time range [From, To).
type Window struct {
	From time.Time
	To   time.Time
}

// Days returns the window length in whole days, at least 1.
func (w Window) Days() int {
	d := int(w.To.Sub(w.From).Hours() / 24)
	if d < 1 {
		return 1
	}
	return d
}

// Previous returns the symmetric window immediately before this one.
func (w Window) Previous() Window {
	span := w.To.Sub(w.From)
	return Window{From: w.From.Add(-span), To: w.From}
}

// LastDays builds a window covering the past n days ending now. n
// defaults to 30 and is capped at 365.
func (a *Analyzer) LastDays(n int) Window {
	if n <= 0 {
		n = 30
	}
	if n > 365 {
		n = 365
	}
	to := a.now()
	return Window{From: to.AddDate(0, 0, -n), To: to}
}

// dayKey formats a time as the account_stats day key.
func dayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// pctChange computes the percentage change from previous to current.
// A zero baseline has no defined change; nil stands for "N/A" and
// marshals to JSON null.
func pctChange(current, previous float64) *float64 {
	if previous == 0 {
		return nil
	}
	v := (current - previous) / previous * 100
	return &v
}

// NoData is the degraded result shared by all reports when the window
// holds nothing to aggregate.
type NoData struct {
	NoData      bool   `json:"no_data"`
	Reason      string `json:"reason"`
	Remediation string `json:"remediation"`
}
