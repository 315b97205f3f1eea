package tools

import (
	"context"
	"fmt"

	"github.com/fenwick/mira-agent/internal/llm"
	"github.com/fenwick/mira-agent/internal/plaintext"
	"github.com/fenwick/mira-agent/internal/prompts"
)

func (r *Registry) registerReplyTools() {
	r.Register(&Tool{
		Name:        "draft_reply",
		Description: "Draft a reply to an audience comment in the owner's voice. Returns a draft, does not post it.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"comment_id": map[string]any{
					"type":        "string",
					"description": "ID of the comment to reply to",
				},
				"tone": map[string]any{
					"type":        "string",
					"description": "Optional tone for the reply",
					"enum":        []string{"warm", "professional", "playful", "brief"},
				},
			},
			"required": []string{"comment_id"},
		},
		Handler: r.handleDraftReply,
	})
}

func (r *Registry) handleDraftReply(ctx context.Context, args map[string]any) (string, error) {
	if r.deps.Store == nil || r.deps.LLM == nil {
		return "", fmt.Errorf("reply drafting not configured")
	}
	commentID := stringArg(args, "comment_id")
	if commentID == "" {
		return "", fmt.Errorf("comment_id is required")
	}

	comment, err := r.deps.Store.GetComment(commentID)
	if err != nil {
		return "", fmt.Errorf("load comment: %w", err)
	}

	resp, err := r.deps.LLM.Chat(ctx, r.deps.Model, []llm.Message{
		{Role: "user", Content: prompts.ReplyDraft(comment.Author, comment.Text, stringArg(args, "tone"))},
	}, nil)
	if err != nil {
		return "", fmt.Errorf("draft reply: %w", err)
	}

	// Models like to format; the platform renders plain text.
	draft := plaintext.FromMarkdown(resp.Message.Content)
	if draft == "" {
		return "", fmt.Errorf("drafting produced no text")
	}

	return jsonResult(map[string]any{
		"comment_id": comment.ID,
		"author":     comment.Author,
		"draft":      draft,
	})
}
