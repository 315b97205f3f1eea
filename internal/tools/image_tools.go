package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/fenwick/mira-agent/internal/imagine"
	"github.com/fenwick/mira-agent/internal/photos"
)

func (r *Registry) registerImageTools() {
	r.Register(&Tool{
		Name:        "get_reference_photos",
		Description: "Find reference photos of the owner in the media library, for image generation or content planning. Falls back to the best available photos when filters match nothing.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"only_selfies": map[string]any{
					"type":        "boolean",
					"description": "Only photos flagged as selfies",
				},
				"only_good_reference": map[string]any{
					"type":        "boolean",
					"description": "Only photos flagged as good generation references",
				},
				"tags": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "string"},
					"description": "Tags to match (any of)",
				},
				"mood": map[string]any{
					"type":        "string",
					"description": "Mood to match",
				},
				"limit": map[string]any{
					"type":        "integer",
					"description": "Maximum number of photos (default 3)",
				},
			},
		},
		Handler: r.handleReferencePhotos,
	})

	r.Register(&Tool{
		Name:        "generate_image",
		Description: "Generate a new image of the owner, preserving their real appearance. Describe the desired depiction, scene, wardrobe, and mood; safety rejections are retried automatically with softened prompts.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"transformation": map[string]any{
					"type":        "string",
					"description": "How to depict the person (e.g. 'as a film noir detective')",
				},
				"scene": map[string]any{
					"type":        "string",
					"description": "Setting and surroundings",
				},
				"wardrobe": map[string]any{
					"type":        "string",
					"description": "Clothing and styling",
				},
				"mood": map[string]any{
					"type":        "string",
					"description": "Emotional tone of the image",
				},
				"reference_tags": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "string"},
					"description": "Tags for picking reference photos",
				},
				"size": map[string]any{
					"type":        "string",
					"description": "Image dimensions, overriding the configured default",
					"enum":        []string{"1024x1024", "1024x1792", "1792x1024"},
				},
				"style": map[string]any{
					"type":        "string",
					"description": "Rendering style, overriding the configured default",
					"enum":        []string{"natural", "vivid"},
				},
			},
		},
		Handler: r.handleGenerateImage,
	})
}

func (r *Registry) handleReferencePhotos(ctx context.Context, args map[string]any) (string, error) {
	if r.deps.Photos == nil {
		return "", fmt.Errorf("media library not configured")
	}

	res, err := r.deps.Photos.Resolve(photos.Filters{
		OnlySelfies:       boolArg(args, "only_selfies"),
		OnlyGoodReference: boolArg(args, "only_good_reference"),
		Tags:              stringSliceArg(args, "tags"),
		Mood:              stringArg(args, "mood"),
		Limit:             intArg(args, "limit", 0),
	})
	if errors.Is(err, photos.ErrNoAssets) {
		return jsonResult(map[string]any{
			"photos":    []any{},
			"note":      "the media library is empty; upload photos before generating images",
			"no_assets": true,
		})
	}
	if err != nil {
		return "", err
	}

	return jsonResult(map[string]any{
		"photos":                  res.Assets,
		"used_fallback":           res.UsedFallback,
		"has_identity_descriptor": res.HasIdentityDescriptor,
	})
}

func (r *Registry) handleGenerateImage(ctx context.Context, args map[string]any) (string, error) {
	if r.deps.Imagine == nil {
		return "", fmt.Errorf("image generation not configured")
	}

	in := imagine.Inputs{
		Transformation: stringArg(args, "transformation"),
		Scene:          stringArg(args, "scene"),
		Wardrobe:       stringArg(args, "wardrobe"),
		Mood:           stringArg(args, "mood"),
	}
	filters := photos.Filters{Tags: stringSliceArg(args, "reference_tags")}
	override := imagine.Options{
		Size:  stringArg(args, "size"),
		Style: stringArg(args, "style"),
	}

	res, err := r.deps.Imagine.Generate(ctx, in, filters, override)
	if errors.Is(err, imagine.ErrRetryExhausted) {
		// Exhaustion is a conversational outcome, not a request failure.
		// The summary stays compact so the model paraphrases instead of
		// echoing internals.
		return jsonResult(map[string]any{
			"success":  false,
			"attempts": len(res.Attempts),
			"reason":   "the image service rejected every attempt, even a fully neutral scene",
			"note":     "suggest the owner rephrase the idea or try a different concept",
		})
	}
	if err != nil {
		return "", err
	}

	final := res.FinalAttempt()
	payload := map[string]any{
		"success":   true,
		"image_url": res.Image.URL,
		"attempts":  len(res.Attempts),
	}
	if res.AssetID != "" {
		payload["asset_id"] = res.AssetID
	}
	if final != nil && final.RewriteApplied != "" {
		payload["note"] = "the original idea was softened to pass the image service's safety filter"
	}
	if res.GenericIdentity {
		payload["identity_note"] = "no stored likeness description was available; the likeness may be approximate"
	} else if res.ReferenceFallback {
		payload["identity_note"] = "reference photos were substituted from the closest available matches"
	}
	return jsonResult(payload)
}
