package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/fenwick/mira-agent/internal/plaintext"
	"github.com/fenwick/mira-agent/internal/store"
)

func (r *Registry) registerPlanTools() {
	r.Register(&Tool{
		Name:        "plan_post",
		Description: "Create a draft content plan for a future post. The owner approves or rejects drafts in the dashboard; this never publishes anything.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"caption": map[string]any{
					"type":        "string",
					"description": "Proposed caption text",
				},
				"concept_note": map[string]any{
					"type":        "string",
					"description": "Short note describing the content idea",
				},
				"content_type": map[string]any{
					"type":        "string",
					"description": "Kind of post",
					"enum":        []string{"post", "reel", "story", "carousel"},
				},
				"scheduled_for": map[string]any{
					"type":        "string",
					"description": "Proposed publish time, RFC 3339 (e.g. 2025-07-01T18:00:00Z)",
				},
				"image_url": map[string]any{
					"type":        "string",
					"description": "URL of an image to attach, e.g. from generate_image",
				},
			},
			"required": []string{"concept_note"},
		},
		Handler: r.handlePlanPost,
	})
}

func (r *Registry) handlePlanPost(ctx context.Context, args map[string]any) (string, error) {
	if r.deps.Store == nil {
		return "", fmt.Errorf("content planning not configured")
	}
	concept := stringArg(args, "concept_note")
	if concept == "" {
		return "", fmt.Errorf("concept_note is required")
	}

	plan := &store.ContentPlan{
		Caption:     plaintext.FromMarkdown(stringArg(args, "caption")),
		ConceptNote: concept,
		ContentType: stringArg(args, "content_type"),
		ImageURL:    stringArg(args, "image_url"),
	}

	if raw := stringArg(args, "scheduled_for"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return "", fmt.Errorf("scheduled_for must be RFC 3339: %w", err)
		}
		plan.ScheduledFor = &t
	}

	if err := r.deps.Store.InsertContentPlan(plan); err != nil {
		return "", err
	}

	return jsonResult(map[string]any{
		"plan_id": plan.ID,
		"status":  plan.Status,
		"note":    "draft created; it still needs the owner's approval in the dashboard",
	})
}
