// Package agent implements the conversation orchestrator: the
// two-phase exchange with the reasoning service and the sequential
// tool dispatch between the phases.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fenwick/mira-agent/internal/llm"
	"github.com/fenwick/mira-agent/internal/prompts"
	"github.com/fenwick/mira-agent/internal/tools"
)

// DefaultToolTimeout bounds one tool execution. Image generation with
// its retry ladder is the slowest tool and sets the floor.
const DefaultToolTimeout = 120 * time.Second

// ToolResult is one executed tool call, success or failure.
type ToolResult struct {
	ToolCallID   string `json:"-"`
	FunctionName string `json:"function_name"`
	Result       string `json:"result"`
	IsError      bool   `json:"is_error,omitempty"`
}

// Reply is the orchestrator's final answer for one inbound message.
type Reply struct {
	Message     string       `json:"message"`
	ToolResults []ToolResult `json:"tool_results"`
}

// Orchestrator drives the two-phase protocol.
type Orchestrator struct {
	llm         llm.Client
	registry    *tools.Registry
	model       string
	toolTimeout time.Duration
	logger      *slog.Logger
}

// New creates an orchestrator. toolTimeout <= 0 selects the default.
func New(client llm.Client, registry *tools.Registry, model string, toolTimeout time.Duration, logger *slog.Logger) *Orchestrator {
	if toolTimeout <= 0 {
		toolTimeout = DefaultToolTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		llm:         client,
		registry:    registry,
		model:       model,
		toolTimeout: toolTimeout,
		logger:      logger.With("component", "agent"),
	}
}

// Handle runs one inbound message through the two-phase protocol.
// Phase 1 offers the tool catalogue; if the model requests tool calls
// they run sequentially, and exactly one synthesis call (phase 2, no
// tools) composes the final message from the results. Rate-limit and
// quota errors from the reasoning service propagate to the caller;
// everything else degrades to an apology.
func (o *Orchestrator) Handle(ctx context.Context, turns []llm.Message) (*Reply, error) {
	msgs := make([]llm.Message, 0, len(turns)+2)
	msgs = append(msgs, llm.Message{Role: "system", Content: prompts.System})
	msgs = append(msgs, turns...)

	o.logger.Info("handling message", "turns", len(turns))

	resp, err := o.llm.Chat(ctx, o.model, msgs, o.registry.List())
	if err != nil {
		return nil, fmt.Errorf("reasoning call: %w", err)
	}

	calls := resp.Message.ToolCalls
	if len(calls) == 0 {
		// Phase-1 text is the final message.
		text := resp.Message.Content
		if text == "" {
			o.logger.Warn("empty response without tool calls")
			text = prompts.Apology
		}
		return &Reply{Message: text, ToolResults: []ToolResult{}}, nil
	}

	o.logger.Info("executing tool calls", "count", len(calls))

	// The assistant turn that requested the calls must precede the
	// tool-result turns in the history.
	msgs = append(msgs, resp.Message)

	results := make([]ToolResult, 0, len(calls))
	for _, call := range calls {
		result := o.executeCall(ctx, call)
		results = append(results, result)

		content := result.Result
		if result.IsError {
			content = "Error: " + content
		}
		msgs = append(msgs, llm.Message{
			Role:       "tool",
			Content:    content,
			ToolCallID: result.ToolCallID,
		})
	}

	// Phase 2: one synthesis call, no tools offered.
	msgs = append(msgs, llm.Message{Role: "system", Content: prompts.Synthesis})
	synth, err := o.llm.Chat(ctx, o.model, msgs, nil)
	if err != nil {
		return nil, fmt.Errorf("synthesis call: %w", err)
	}

	text := synth.Message.Content
	if text == "" {
		o.logger.Warn("empty synthesis response")
		text = prompts.Apology
	}
	return &Reply{Message: text, ToolResults: results}, nil
}

// executeCall dispatches one tool call with its own timeout. Failures
// become error results; they never abort the batch.
func (o *Orchestrator) executeCall(ctx context.Context, call llm.ToolCall) ToolResult {
	name := call.Function.Name
	result := ToolResult{ToolCallID: call.ID, FunctionName: name}

	callCtx, cancel := context.WithTimeout(ctx, o.toolTimeout)
	defer cancel()

	out, err := o.registry.Execute(callCtx, name, call.Function.Arguments)
	if err != nil {
		o.logger.Warn("tool failed", "tool", name, "error", err)
		result.IsError = true
		result.Result = err.Error()
		return result
	}
	result.Result = out
	return result
}
