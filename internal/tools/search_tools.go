package tools

import (
	"context"
	"fmt"
)

func (r *Registry) registerSearchTools() {
	r.Register(&Tool{
		Name:        "search_posts",
		Description: "Search the owner's published posts by caption text and comment text. Use this to find posts about a topic.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "Text to search for in captions and comments",
				},
				"limit": map[string]any{
					"type":        "integer",
					"description": "Maximum number of posts to return (default 5)",
				},
			},
			"required": []string{"query"},
		},
		Handler: r.handleSearchPosts,
	})

	r.Register(&Tool{
		Name:        "get_open_comments",
		Description: "Get audience comments that have not been answered yet, oldest first.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"limit": map[string]any{
					"type":        "integer",
					"description": "Maximum number of comments to return (default 20)",
				},
			},
		},
		Handler: r.handleOpenComments,
	})
}

func (r *Registry) handleSearchPosts(ctx context.Context, args map[string]any) (string, error) {
	if r.deps.Store == nil {
		return "", fmt.Errorf("post store not configured")
	}
	query := stringArg(args, "query")
	if query == "" {
		return "", fmt.Errorf("query is required")
	}

	result, err := r.deps.Store.SearchPosts(query, intArg(args, "limit", 0))
	if err != nil {
		return "", err
	}
	return jsonResult(result)
}

func (r *Registry) handleOpenComments(ctx context.Context, args map[string]any) (string, error) {
	if r.deps.Store == nil {
		return "", fmt.Errorf("comment store not configured")
	}

	comments, err := r.deps.Store.OpenComments(intArg(args, "limit", 0))
	if err != nil {
		return "", err
	}
	return jsonResult(map[string]any{
		"open_comments": comments,
		"count":         len(comments),
	})
}
