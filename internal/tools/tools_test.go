package tools

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/fenwick/mira-agent/internal/analytics"
	"github.com/fenwick/mira-agent/internal/llm"
	"github.com/fenwick/mira-agent/internal/store"
	_ "modernc.org/sqlite"
)

// mockLLM scripts chat responses for tools that call the reasoning
// service.
type mockLLM struct {
	response string
	err      error
}

func (m *mockLLM) Chat(ctx context.Context, model string, messages []llm.Message, tools []map[string]any) (*llm.ChatResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &llm.ChatResponse{Message: llm.Message{Role: "assistant", Content: m.response}}, nil
}

func (m *mockLLM) Ping(ctx context.Context) error { return nil }

func testRegistry(t *testing.T) (*Registry, *store.Store) {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	s, err := store.New(db, nil)
	if err != nil {
		t.Fatal(err)
	}
	r := NewRegistry(Deps{
		Store:    s,
		Analyzer: analytics.NewAnalyzer(s, nil),
		LLM:      &mockLLM{response: "Thanks so much!"},
		Model:    "test-model",
	}, nil)
	return r, s
}

var expectedTools = []string{
	"analyze_categories",
	"analyze_growth",
	"analyze_sentiment",
	"best_posting_time",
	"draft_reply",
	"generate_image",
	"get_account_metrics",
	"get_open_comments",
	"get_reference_photos",
	"plan_post",
	"search_posts",
}

func TestCatalogueComplete(t *testing.T) {
	r, _ := testRegistry(t)
	defs := r.List()
	if len(defs) != len(expectedTools) {
		t.Fatalf("got %d tools, want %d", len(defs), len(expectedTools))
	}
	for i, def := range defs {
		fn := def["function"].(map[string]any)
		if fn["name"] != expectedTools[i] {
			t.Errorf("tool %d: got %q, want %q", i, fn["name"], expectedTools[i])
		}
		if fn["description"] == "" || fn["parameters"] == nil {
			t.Errorf("tool %q missing description or schema", fn["name"])
		}
	}
}

func TestExecuteUnknownTool(t *testing.T) {
	r, _ := testRegistry(t)
	_, err := r.Execute(context.Background(), "no_such_tool", nil)
	var unavailable *ErrToolUnavailable
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected ErrToolUnavailable, got %v", err)
	}
}

func TestExecuteMalformedArguments(t *testing.T) {
	r, _ := testRegistry(t)
	_, err := r.Execute(context.Background(), "search_posts", map[string]any{
		llm.RawArgumentsKey: `{"query": broken`,
	})
	if err == nil || !strings.Contains(err.Error(), "invalid arguments") {
		t.Fatalf("expected argument parse error, got %v", err)
	}
}

func TestSearchPostsTool(t *testing.T) {
	r, s := testRegistry(t)
	if err := s.InsertPost(&store.Post{Caption: "Behind the scenes at the Tatort set"}); err != nil {
		t.Fatal(err)
	}

	out, err := r.Execute(context.Background(), "search_posts", map[string]any{"query": "tatort"})
	if err != nil {
		t.Fatal(err)
	}
	var result store.SearchResult
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("result not JSON: %v", err)
	}
	if result.TotalFound != 1 || len(result.Posts) != 1 {
		t.Errorf("got %+v", result)
	}
}

func TestSearchPostsRequiresQuery(t *testing.T) {
	r, _ := testRegistry(t)
	if _, err := r.Execute(context.Background(), "search_posts", map[string]any{}); err == nil {
		t.Fatal("expected error for missing query")
	}
}

func TestDraftReplyTool(t *testing.T) {
	r, s := testRegistry(t)
	c := &store.Comment{Author: "fan_01", Text: "Tolles Bild!"}
	if err := s.InsertComment(c); err != nil {
		t.Fatal(err)
	}

	out, err := r.Execute(context.Background(), "draft_reply", map[string]any{"comment_id": c.ID})
	if err != nil {
		t.Fatal(err)
	}
	var payload map[string]any
	json.Unmarshal([]byte(out), &payload)
	if payload["draft"] != "Thanks so much!" {
		t.Errorf("draft: got %v", payload["draft"])
	}
}

func TestDraftReplyStripsMarkdown(t *testing.T) {
	r, s := testRegistry(t)
	r.deps.LLM = &mockLLM{response: "**Thanks** so much!"}
	c := &store.Comment{Author: "fan_01", Text: "nice"}
	if err := s.InsertComment(c); err != nil {
		t.Fatal(err)
	}

	out, err := r.Execute(context.Background(), "draft_reply", map[string]any{"comment_id": c.ID})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, "**") {
		t.Errorf("markdown leaked into draft: %s", out)
	}
}

func TestPlanPostTool(t *testing.T) {
	r, s := testRegistry(t)

	out, err := r.Execute(context.Background(), "plan_post", map[string]any{
		"concept_note":  "Autumn walk series, part 2",
		"caption":       "Golden light in the park",
		"content_type":  "reel",
		"scheduled_for": "2025-10-01T18:00:00Z",
	})
	if err != nil {
		t.Fatal(err)
	}
	var payload map[string]any
	json.Unmarshal([]byte(out), &payload)
	if payload["status"] != "draft" {
		t.Errorf("status: got %v", payload["status"])
	}

	plans, err := s.ListContentPlans("draft", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(plans) != 1 || plans[0].ContentType != "reel" {
		t.Errorf("persisted plan: %+v", plans)
	}
}

func TestPlanPostRejectsBadTimestamp(t *testing.T) {
	r, _ := testRegistry(t)
	_, err := r.Execute(context.Background(), "plan_post", map[string]any{
		"concept_note":  "x",
		"scheduled_for": "next tuesday",
	})
	if err == nil {
		t.Fatal("expected timestamp parse error")
	}
}

func TestAnalyticsToolNoData(t *testing.T) {
	r, _ := testRegistry(t)
	out, err := r.Execute(context.Background(), "analyze_growth", map[string]any{"days": float64(30)})
	if err != nil {
		t.Fatalf("no-data must degrade, not fail: %v", err)
	}
	if !strings.Contains(out, "no_data") {
		t.Errorf("expected explicit no-data payload, got %s", out)
	}
}

func TestExecuteRecordsAudit(t *testing.T) {
	r, s := testRegistry(t)
	if _, err := r.Execute(context.Background(), "get_open_comments", nil); err != nil {
		t.Fatal(err)
	}

	recs, err := s.RecentToolCalls(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 || recs[0].ToolName != "get_open_comments" {
		t.Errorf("audit records: %+v", recs)
	}
}

func TestToolsDisabledWithoutDeps(t *testing.T) {
	r := NewRegistry(Deps{}, nil)
	for _, name := range []string{"search_posts", "draft_reply", "generate_image", "get_reference_photos"} {
		_, err := r.Execute(context.Background(), name, map[string]any{
			"query": "x", "comment_id": "y",
		})
		if err == nil {
			t.Errorf("%s: expected not-configured error", name)
		}
	}
}
