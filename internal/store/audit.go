package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ToolCallRecord is one audited tool execution.
type ToolCallRecord struct {
	ID        string        `json:"id"`
	ToolName  string        `json:"tool_name"`
	Arguments string        `json:"arguments"`
	Result    string        `json:"result,omitempty"`
	Error     string        `json:"error,omitempty"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
}

// RecordToolCall persists one tool execution for later inspection.
// Audit failures are deliberately non-fatal to the request; callers
// log and move on.
func (s *Store) RecordToolCall(rec *ToolCallRecord) error {
	if rec.ID == "" {
		id, _ := uuid.NewV7()
		rec.ID = id.String()
	}
	_, err := s.db.Exec(`
		INSERT INTO tool_calls (id, tool_name, arguments, result, error, started_at, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.ToolName, rec.Arguments, nullable(rec.Result), nullable(rec.Error),
		rec.StartedAt.UTC().Format(time.RFC3339), rec.Duration.Milliseconds())
	if err != nil {
		return fmt.Errorf("record tool call: %w", err)
	}
	return nil
}

// RecentToolCalls returns the newest audit records, newest first.
func (s *Store) RecentToolCalls(limit int) ([]*ToolCallRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT id, tool_name, arguments, result, error, started_at, duration_ms
		FROM tool_calls
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent tool calls: %w", err)
	}
	defer rows.Close()

	var recs []*ToolCallRecord
	for rows.Next() {
		var rec ToolCallRecord
		var result, errText any
		var startedAt string
		var durationMS int64
		if err := rows.Scan(&rec.ID, &rec.ToolName, &rec.Arguments,
			&result, &errText, &startedAt, &durationMS); err != nil {
			return nil, fmt.Errorf("scan tool call: %w", err)
		}
		rec.Result = textValue(result)
		rec.Error = textValue(errText)
		rec.StartedAt, _ = time.Parse(time.RFC3339, startedAt)
		rec.Duration = time.Duration(durationMS) * time.Millisecond
		recs = append(recs, &rec)
	}
	return recs, rows.Err()
}

// textValue unwraps a nullable TEXT column. Drivers disagree on
// whether TEXT scans as string or []byte.
func textValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return ""
	}
}
