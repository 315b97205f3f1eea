// Package photos resolves reference photos from the media library for
// image generation. Downstream generation is far more valuable with
// some reference than with none, so the resolver trades filter
// precision for availability through a strict fallback ladder and
// reports when it substituted.
package photos

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/fenwick/mira-agent/internal/store"
)

// ErrNoAssets is returned only when the media library is empty. Every
// other path yields at least one asset.
var ErrNoAssets = errors.New("media library is empty")

// Library is the slice of the persistence adapter the resolver needs.
type Library interface {
	ListMedia(f store.MediaFilter) ([]*store.MediaAsset, error)
}

// Filters narrows the reference search. Zero values mean unconstrained.
type Filters struct {
	OnlySelfies       bool
	OnlyGoodReference bool
	Tags              []string
	Mood              string
	Limit             int
}

// Result is the resolved reference set.
type Result struct {
	Assets []*store.MediaAsset
	// UsedFallback is true when the requested filters had to be
	// relaxed, so callers can disclose the substitution.
	UsedFallback bool
	// HasIdentityDescriptor is true when at least one returned asset
	// carries a visual-DNA descriptor.
	HasIdentityDescriptor bool
}

// IdentityDescriptor returns the first non-empty descriptor among the
// resolved assets, preferring good-reference assets.
func (r *Result) IdentityDescriptor() string {
	for _, a := range r.Assets {
		if a.IsGoodReference && a.IdentityDescriptor != "" {
			return a.IdentityDescriptor
		}
	}
	for _, a := range r.Assets {
		if a.IdentityDescriptor != "" {
			return a.IdentityDescriptor
		}
	}
	return ""
}

// portraitHints are tag fragments that suggest a person is in frame.
var portraitHints = []string{"portrait", "person", "face", "selfie", "headshot"}

// Resolver finds usable reference photos.
type Resolver struct {
	library Library
	logger  *slog.Logger
}

// NewResolver creates a resolver over the given media library.
func NewResolver(library Library, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{library: library, logger: logger}
}

// Resolve walks the fallback ladder. Each stage is only entered when
// the previous one yielded zero assets; as long as the library is
// non-empty the result is non-empty.
func (r *Resolver) Resolve(f Filters) (*Result, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 3
	}
	// Overfetch so post-filtering still fills the page.
	fetch := limit * 3

	// Stage 1: exactly what was asked for.
	assets, err := r.library.ListMedia(store.MediaFilter{
		OnlySelfies:       f.OnlySelfies,
		OnlyGoodReference: f.OnlyGoodReference,
		Tags:              f.Tags,
		Mood:              f.Mood,
		Limit:             fetch,
	})
	if err != nil {
		return nil, fmt.Errorf("resolve references: %w", err)
	}
	if len(assets) > 0 {
		return r.finish(assets, limit, false), nil
	}

	// Stage 2: a selfie-only miss retries without that flag, preferring
	// assets whose tags suggest a person is visible.
	if f.OnlySelfies {
		assets, err = r.library.ListMedia(store.MediaFilter{
			OnlyGoodReference: f.OnlyGoodReference,
			Tags:              f.Tags,
			Mood:              f.Mood,
			Limit:             fetch,
		})
		if err != nil {
			return nil, fmt.Errorf("resolve references: %w", err)
		}
		if len(assets) > 0 {
			r.logger.Debug("selfie filter relaxed", "candidates", len(assets))
			return r.finish(preferPortraits(assets), limit, true), nil
		}
	}

	// Stage 3: drop the tag/mood filters entirely and take the best
	// available tier: identity descriptor > good reference > analyzed > any.
	assets, err = r.library.ListMedia(store.MediaFilter{})
	if err != nil {
		return nil, fmt.Errorf("resolve references: %w", err)
	}
	if len(assets) == 0 {
		// Stage 4: the library itself is empty. The only case allowed
		// to report zero usable results.
		return nil, ErrNoAssets
	}

	r.logger.Debug("reference filters exhausted, using best-tier fallback",
		"library_size", len(assets))
	return r.finish(bestTier(assets), limit, true), nil
}

func (r *Resolver) finish(assets []*store.MediaAsset, limit int, fallback bool) *Result {
	if len(assets) > limit {
		assets = assets[:limit]
	}
	res := &Result{Assets: assets, UsedFallback: fallback}
	for _, a := range assets {
		if a.IdentityDescriptor != "" {
			res.HasIdentityDescriptor = true
			break
		}
	}
	return res
}

// preferPortraits stably moves assets with person-suggesting tags to
// the front.
func preferPortraits(assets []*store.MediaAsset) []*store.MediaAsset {
	var portraits, rest []*store.MediaAsset
	for _, a := range assets {
		if hasPortraitHint(a) {
			portraits = append(portraits, a)
		} else {
			rest = append(rest, a)
		}
	}
	return append(portraits, rest...)
}

func hasPortraitHint(a *store.MediaAsset) bool {
	for _, tag := range append(append([]string{}, a.Tags...), a.AITags...) {
		lower := strings.ToLower(tag)
		for _, hint := range portraitHints {
			if strings.Contains(lower, hint) {
				return true
			}
		}
	}
	return false
}

// bestTier returns the highest non-empty quality tier.
func bestTier(assets []*store.MediaAsset) []*store.MediaAsset {
	var withDNA, goodRef, analyzed []*store.MediaAsset
	for _, a := range assets {
		switch {
		case a.IdentityDescriptor != "":
			withDNA = append(withDNA, a)
		case a.IsGoodReference:
			goodRef = append(goodRef, a)
		case a.Analyzed:
			analyzed = append(analyzed, a)
		}
	}
	if len(withDNA) > 0 {
		return withDNA
	}
	if len(goodRef) > 0 {
		return goodRef
	}
	if len(analyzed) > 0 {
		return analyzed
	}
	return assets
}
