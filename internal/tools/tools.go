// Package tools defines the tools available to the agent.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/fenwick/mira-agent/internal/analytics"
	"github.com/fenwick/mira-agent/internal/imagine"
	"github.com/fenwick/mira-agent/internal/llm"
	"github.com/fenwick/mira-agent/internal/photos"
	"github.com/fenwick/mira-agent/internal/store"
)

// Tool represents a callable tool.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
	Handler     func(ctx context.Context, args map[string]any) (string, error) `json:"-"`
}

// Deps are the collaborators the built-in tools execute against. Any
// nil dependency disables the tools that need it at execution time.
type Deps struct {
	Store    *store.Store
	Analyzer *analytics.Analyzer
	LLM      llm.Client
	Model    string
	Photos   *photos.Resolver
	Imagine  *imagine.Generator
}

// Registry holds available tools.
type Registry struct {
	tools  map[string]*Tool
	deps   Deps
	logger *slog.Logger
}

// NewRegistry creates a registry with all built-in tools registered.
func NewRegistry(deps Deps, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{
		tools:  make(map[string]*Tool),
		deps:   deps,
		logger: logger.With("component", "tools"),
	}
	r.registerSearchTools()
	r.registerReplyTools()
	r.registerAnalyticsTools()
	r.registerPlanTools()
	r.registerImageTools()
	return r
}

// Register adds a tool to the registry.
func (r *Registry) Register(t *Tool) {
	r.tools[t.Name] = t
}

// Get retrieves a tool by name.
func (r *Registry) Get(name string) *Tool {
	return r.tools[name]
}

// List returns all tool definitions in the shape the reasoning
// service consumes, ordered by name so catalogue output is stable.
func (r *Registry) List() []map[string]any {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)

	var result []map[string]any
	for _, name := range names {
		t := r.tools[name]
		result = append(result, map[string]any{
			"type": "function",
			"function": map[string]any{
				"name":        t.Name,
				"description": t.Description,
				"parameters":  t.Parameters,
			},
		})
	}
	return result
}

// Execute runs a tool by name. Malformed arguments (flagged by the
// provider adapter) fail here, before the handler runs. The call is
// recorded in the audit table when a store is wired.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) (string, error) {
	started := time.Now()
	result, err := r.execute(ctx, name, args)

	r.logger.Info("tool executed",
		"tool", name,
		"duration", time.Since(started).Round(time.Millisecond),
		"error", err != nil,
	)
	if r.deps.Store != nil {
		rec := &store.ToolCallRecord{
			ToolName:  name,
			Arguments: encodeArgs(args),
			Result:    truncate(result, 2000),
			StartedAt: started,
			Duration:  time.Since(started),
		}
		if err != nil {
			rec.Error = err.Error()
		}
		if auditErr := r.deps.Store.RecordToolCall(rec); auditErr != nil {
			r.logger.Warn("audit record failed", "error", auditErr)
		}
	}
	return result, err
}

func (r *Registry) execute(ctx context.Context, name string, args map[string]any) (string, error) {
	tool := r.tools[name]
	if tool == nil {
		return "", &ErrToolUnavailable{ToolName: name}
	}
	if raw, ok := args[llm.RawArgumentsKey]; ok {
		return "", fmt.Errorf("invalid arguments for %s: not valid JSON: %.100v", name, raw)
	}
	return tool.Handler(ctx, args)
}

func encodeArgs(args map[string]any) string {
	b, err := json.Marshal(args)
	if err != nil {
		return ""
	}
	return string(b)
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// Argument accessors. The reasoning service sends JSON, so numbers
// arrive as float64.

func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

func intArg(args map[string]any, key string, def int) int {
	if f, ok := args[key].(float64); ok {
		return int(f)
	}
	return def
}

func boolArg(args map[string]any, key string) bool {
	b, _ := args[key].(bool)
	return b
}

func stringSliceArg(args map[string]any, key string) []string {
	raw, ok := args[key].([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// jsonResult marshals a structured payload for the reasoning service.
func jsonResult(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode result: %w", err)
	}
	return string(b), nil
}
