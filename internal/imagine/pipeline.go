package imagine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fenwick/mira-agent/internal/imagegen"
	"github.com/fenwick/mira-agent/internal/photos"
	"github.com/fenwick/mira-agent/internal/store"
)

// maxAttempts bounds the retry ladder. One initial attempt plus one
// per rewrite strategy.
const maxAttempts = 3

// retryDelay spaces attempts out so a transient gateway hiccup can
// clear.
const retryDelay = 2 * time.Second

// ErrRetryExhausted means every attempt, including all rewrites, was
// rejected. The Result still carries the full attempt history.
var ErrRetryExhausted = errors.New("image generation exhausted all retry attempts")

// Attempt statuses.
const (
	StatusTrying          = "trying"
	StatusSuccess         = "success"
	StatusPolicyViolation = "content_policy_violation"
	StatusNoImage         = "no_image"
	StatusError           = "error"
)

// Attempt records one rung of the ladder.
type Attempt struct {
	Number int // 1-based
	Inputs Inputs
	Prompt string
	Status string
	// RewriteApplied names the strategy that produced this attempt's
	// inputs. Empty on the first attempt.
	RewriteApplied string
	Error          string
}

// Result is the outcome of a full pipeline run.
type Result struct {
	Image    *imagegen.Result
	AssetID  string
	Attempts []Attempt
	// ReferenceFallback is true when the reference photos were resolved
	// through relaxed filters.
	ReferenceFallback bool
	// GenericIdentity is true when no visual descriptor was available
	// and the prompt used the generic identity fallback.
	GenericIdentity bool
}

// FinalAttempt returns the last attempt made.
func (r *Result) FinalAttempt() *Attempt {
	if len(r.Attempts) == 0 {
		return nil
	}
	return &r.Attempts[len(r.Attempts)-1]
}

// MediaWriter persists generated images into the library.
type MediaWriter interface {
	InsertMediaAsset(a *store.MediaAsset) error
}

// Options carry the rendering parameters passed through to the image
// service.
type Options struct {
	Size    string
	Quality string
	Style   string
}

// merge overlays the non-zero fields of override onto o.
func (o Options) merge(override Options) Options {
	if override.Size != "" {
		o.Size = override.Size
	}
	if override.Quality != "" {
		o.Quality = override.Quality
	}
	if override.Style != "" {
		o.Style = override.Style
	}
	return o
}

// Generator runs the compile/generate/rewrite loop.
type Generator struct {
	images   imagegen.Client
	resolver *photos.Resolver
	media    MediaWriter
	opts     Options
	logger   *slog.Logger

	// sleep is swappable for tests.
	sleep func(time.Duration)
}

// NewGenerator wires the pipeline. media may be nil when persistence
// is not wanted.
func NewGenerator(images imagegen.Client, resolver *photos.Resolver, media MediaWriter, opts Options, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		images:   images,
		resolver: resolver,
		media:    media,
		opts:     opts,
		logger:   logger.With("component", "imagine"),
		sleep:    time.Sleep,
	}
}

// Generate runs up to maxAttempts generations, applying the next
// rewrite strategy to the current inputs after each content-policy
// rejection. Non-policy failures retry with unchanged inputs. Non-zero
// fields of override take precedence over the configured defaults.
func (g *Generator) Generate(ctx context.Context, in Inputs, refFilters photos.Filters, override Options) (*Result, error) {
	res := &Result{}
	opts := g.opts.merge(override)

	descriptor := ""
	if g.resolver != nil {
		refs, err := g.resolver.Resolve(refFilters)
		switch {
		case errors.Is(err, photos.ErrNoAssets):
			g.logger.Info("no reference photos, using generic identity")
		case err != nil:
			return nil, fmt.Errorf("resolve references: %w", err)
		default:
			descriptor = refs.IdentityDescriptor()
			res.ReferenceFallback = refs.UsedFallback
		}
	}
	res.GenericIdentity = descriptor == ""

	ladder := Ladder()
	current := in

	for n := 1; n <= maxAttempts; n++ {
		prompt := Compile(current, descriptor)
		attempt := Attempt{
			Number: n,
			Inputs: current,
			Prompt: prompt,
			Status: StatusTrying,
		}
		if n > 1 {
			attempt.RewriteApplied = ladder[n-2].Name()
		}

		g.logger.Info("generation attempt",
			"attempt", n,
			"rewrite", attempt.RewriteApplied,
			"prompt_len", len(prompt),
		)

		img, err := g.images.Generate(ctx, imagegen.Request{
			Prompt:  prompt,
			Size:    opts.Size,
			Quality: opts.Quality,
			Style:   opts.Style,
		})
		if err == nil {
			attempt.Status = StatusSuccess
			res.Attempts = append(res.Attempts, attempt)
			res.Image = img
			if g.media != nil && img.URL != "" {
				asset := &store.MediaAsset{
					URL:      img.URL,
					Tags:     []string{"ai-generated"},
					Mood:     current.Mood,
					Analyzed: true,
				}
				if insErr := g.media.InsertMediaAsset(asset); insErr != nil {
					g.logger.Warn("persisting generated image failed", "error", insErr)
				} else {
					res.AssetID = asset.ID
				}
			}
			return res, nil
		}

		attempt.Error = err.Error()
		switch {
		case imagegen.IsContentPolicyViolation(err):
			attempt.Status = StatusPolicyViolation
		case errors.Is(err, imagegen.ErrNoImage):
			attempt.Status = StatusNoImage
		default:
			attempt.Status = StatusError
		}
		res.Attempts = append(res.Attempts, attempt)

		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		if imagegen.IsQuota(err) {
			// Retrying a quota failure with a rewritten prompt cannot
			// succeed.
			return res, err
		}

		if n < maxAttempts {
			// Each rung rewrites the CURRENT inputs, so escalations
			// compound instead of restarting from the original.
			current = ladder[n-1].Rewrite(current)
			g.logger.Warn("attempt failed, escalating",
				"attempt", n,
				"status", attempt.Status,
				"next_rewrite", ladder[n-1].Name(),
			)
			g.sleep(retryDelay)
		}
	}

	return res, ErrRetryExhausted
}
