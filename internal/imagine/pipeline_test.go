package imagine

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/fenwick/mira-agent/internal/imagegen"
	"github.com/fenwick/mira-agent/internal/photos"
	"github.com/fenwick/mira-agent/internal/store"
)

// fakeImages scripts the outcome of each call in order.
type fakeImages struct {
	results []any // *imagegen.Result or error
	prompts []string
	sizes   []string
	calls   int
}

func (f *fakeImages) Generate(_ context.Context, req imagegen.Request) (*imagegen.Result, error) {
	f.prompts = append(f.prompts, req.Prompt)
	f.sizes = append(f.sizes, req.Size)
	if f.calls >= len(f.results) {
		return nil, errors.New("unscripted call")
	}
	r := f.results[f.calls]
	f.calls++
	if err, ok := r.(error); ok {
		return nil, err
	}
	return r.(*imagegen.Result), nil
}

type fakeMedia struct {
	inserted []*store.MediaAsset
}

func (f *fakeMedia) InsertMediaAsset(a *store.MediaAsset) error {
	a.ID = "asset-1"
	f.inserted = append(f.inserted, a)
	return nil
}

func policyErr() error {
	return &imagegen.APIError{StatusCode: 400, Code: "content_policy_violation", Message: "rejected"}
}

func newTestGenerator(images imagegen.Client, media MediaWriter) *Generator {
	g := NewGenerator(images, nil, media, Options{Size: "1024x1024"}, nil)
	g.sleep = func(time.Duration) {}
	return g
}

func TestGenerateFirstAttemptSucceeds(t *testing.T) {
	img := &imagegen.Result{URL: "https://img/x.png"}
	fake := &fakeImages{results: []any{img}}
	media := &fakeMedia{}
	g := newTestGenerator(fake, media)

	res, err := g.Generate(context.Background(), Inputs{Scene: "a park"}, photos.Filters{}, Options{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(res.Attempts) != 1 {
		t.Fatalf("got %d attempts, want 1", len(res.Attempts))
	}
	a := res.Attempts[0]
	if a.Number != 1 || a.Status != StatusSuccess || a.RewriteApplied != "" {
		t.Errorf("attempt: %+v", a)
	}
	if res.Image != img {
		t.Error("image not propagated")
	}
	if len(media.inserted) != 1 {
		t.Fatalf("asset not persisted")
	}
	persisted := media.inserted[0]
	if len(persisted.Tags) != 1 || persisted.Tags[0] != "ai-generated" {
		t.Errorf("tags: %v", persisted.Tags)
	}
	if res.AssetID != "asset-1" {
		t.Errorf("asset id: %q", res.AssetID)
	}
	if !res.GenericIdentity {
		t.Error("no resolver wired, expected generic identity")
	}
}

func TestGenerateEscalatesThroughLadder(t *testing.T) {
	img := &imagegen.Result{URL: "https://img/x.png"}
	fake := &fakeImages{results: []any{policyErr(), policyErr(), img}}
	g := newTestGenerator(fake, nil)

	in := Inputs{Transformation: "a Tatort detective", Scene: "a gun on the table"}
	res, err := g.Generate(context.Background(), in, photos.Filters{}, Options{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(res.Attempts) != 3 {
		t.Fatalf("got %d attempts, want 3", len(res.Attempts))
	}

	for i, a := range res.Attempts {
		if a.Number != i+1 {
			t.Errorf("attempt %d numbered %d", i, a.Number)
		}
	}
	if res.Attempts[0].RewriteApplied != "" {
		t.Errorf("first attempt should carry no rewrite, got %q", res.Attempts[0].RewriteApplied)
	}
	if res.Attempts[1].RewriteApplied != "strip_protected_names" {
		t.Errorf("second rewrite: %q", res.Attempts[1].RewriteApplied)
	}
	if res.Attempts[2].RewriteApplied != "neutralize_scene" {
		t.Errorf("third rewrite: %q", res.Attempts[2].RewriteApplied)
	}

	if res.Attempts[0].Status != StatusPolicyViolation || res.Attempts[1].Status != StatusPolicyViolation {
		t.Error("rejected attempts not marked as policy violations")
	}
	if res.Attempts[2].Status != StatusSuccess {
		t.Errorf("final status: %q", res.Attempts[2].Status)
	}

	// The second attempt's inputs derive from the first's, and the
	// third's from the second's.
	if strings.Contains(strings.ToLower(res.Attempts[1].Inputs.Transformation), "tatort") {
		t.Error("second attempt still carries the protected name")
	}
	if strings.Contains(strings.ToLower(res.Attempts[2].Inputs.Scene), "gun") {
		t.Error("third attempt still carries the violent term")
	}
	if strings.Contains(strings.ToLower(fake.prompts[2]), "tatort") {
		t.Error("escalation restarted from original inputs instead of compounding")
	}
}

func TestGenerateExhaustsRetries(t *testing.T) {
	fake := &fakeImages{results: []any{policyErr(), policyErr(), policyErr()}}
	g := newTestGenerator(fake, nil)

	res, err := g.Generate(context.Background(), Inputs{Scene: "x"}, photos.Filters{}, Options{})
	if !errors.Is(err, ErrRetryExhausted) {
		t.Fatalf("expected ErrRetryExhausted, got %v", err)
	}
	if len(res.Attempts) != 3 {
		t.Fatalf("got %d attempts, want exactly 3", len(res.Attempts))
	}
	if fake.calls != 3 {
		t.Errorf("image service called %d times, want 3", fake.calls)
	}
	final := res.FinalAttempt()
	if final.RewriteApplied != "archetypal_fallback" {
		t.Errorf("last rung: %q", final.RewriteApplied)
	}
}

func TestGenerateNoImageRetriesWithoutRewriteSemantics(t *testing.T) {
	img := &imagegen.Result{URL: "https://img/x.png"}
	fake := &fakeImages{results: []any{imagegen.ErrNoImage, img}}
	g := newTestGenerator(fake, nil)

	res, err := g.Generate(context.Background(), Inputs{Scene: "x"}, photos.Filters{}, Options{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Attempts[0].Status != StatusNoImage {
		t.Errorf("first status: %q", res.Attempts[0].Status)
	}
	if res.Attempts[1].Status != StatusSuccess {
		t.Errorf("second status: %q", res.Attempts[1].Status)
	}
}

func TestGenerateQuotaAbortsImmediately(t *testing.T) {
	quota := &imagegen.APIError{StatusCode: http.StatusTooManyRequests, Code: "rate_limit_exceeded"}
	fake := &fakeImages{results: []any{quota}}
	g := newTestGenerator(fake, nil)

	res, err := g.Generate(context.Background(), Inputs{}, photos.Filters{}, Options{})
	if !imagegen.IsQuota(err) {
		t.Fatalf("expected quota error, got %v", err)
	}
	if fake.calls != 1 {
		t.Errorf("quota failure retried: %d calls", fake.calls)
	}
	if len(res.Attempts) != 1 {
		t.Errorf("got %d attempts", len(res.Attempts))
	}
}

func TestGenerateOptionOverride(t *testing.T) {
	fake := &fakeImages{results: []any{&imagegen.Result{URL: "u"}, &imagegen.Result{URL: "u"}}}
	g := newTestGenerator(fake, nil)

	if _, err := g.Generate(context.Background(), Inputs{}, photos.Filters{}, Options{}); err != nil {
		t.Fatal(err)
	}
	if _, err := g.Generate(context.Background(), Inputs{}, photos.Filters{}, Options{Size: "1792x1024"}); err != nil {
		t.Fatal(err)
	}
	if fake.sizes[0] != "1024x1024" {
		t.Errorf("default size: %q", fake.sizes[0])
	}
	if fake.sizes[1] != "1792x1024" {
		t.Errorf("override size: %q", fake.sizes[1])
	}
}

func TestGeneratePromptCarriesIdentityPreamble(t *testing.T) {
	fake := &fakeImages{results: []any{&imagegen.Result{URL: "u"}}}
	g := newTestGenerator(fake, nil)

	if _, err := g.Generate(context.Background(), Inputs{}, photos.Filters{}, Options{}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(fake.prompts[0], "Do not beautify") {
		t.Error("compiled prompt missing identity preamble")
	}
}
