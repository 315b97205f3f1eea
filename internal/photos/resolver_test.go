package photos

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/fenwick/mira-agent/internal/store"
	_ "modernc.org/sqlite"
)

func testLibrary(t *testing.T, assets []*store.MediaAsset) *store.Store {
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
	for _, a := range assets {
		if err := s.InsertMediaAsset(a); err != nil {
			t.Fatal(err)
		}
	}
	return s
}

func TestResolveEmptyLibrary(t *testing.T) {
	r := NewResolver(testLibrary(t, nil), nil)
	_, err := r.Resolve(Filters{OnlySelfies: true})
	if !errors.Is(err, ErrNoAssets) {
		t.Fatalf("expected ErrNoAssets, got %v", err)
	}
}

func TestResolveNeverEmptyOnNonEmptyLibrary(t *testing.T) {
	lib := testLibrary(t, []*store.MediaAsset{
		{URL: "u1", Tags: []string{"landscape"}},
		{URL: "u2", Analyzed: true},
	})
	r := NewResolver(lib, nil)

	// None of these filter combinations match directly; all must still
	// resolve something.
	filters := []Filters{
		{},
		{OnlySelfies: true},
		{OnlyGoodReference: true},
		{Tags: []string{"nosuchtag"}},
		{OnlySelfies: true, OnlyGoodReference: true, Tags: []string{"nope"}, Mood: "wistful"},
	}

	for i, f := range filters {
		res, err := r.Resolve(f)
		if err != nil {
			t.Fatalf("filter %d: %v", i, err)
		}
		if len(res.Assets) == 0 {
			t.Errorf("filter %d: empty result on non-empty library", i)
		}
	}
}

func TestResolveDirectMatchNoFallback(t *testing.T) {
	lib := testLibrary(t, []*store.MediaAsset{
		{URL: "u1", IsSelfie: true, IsGoodReference: true, Mood: "ernst"},
		{URL: "u2"},
	})
	r := NewResolver(lib, nil)

	res, err := r.Resolve(Filters{OnlySelfies: true, OnlyGoodReference: true})
	if err != nil {
		t.Fatal(err)
	}
	if res.UsedFallback {
		t.Error("direct match should not report fallback")
	}
	if len(res.Assets) != 1 || res.Assets[0].URL != "u1" {
		t.Errorf("got %+v", res.Assets)
	}
}

func TestResolveTagMissFallsBackToGoodReferences(t *testing.T) {
	// The "ernst" tag matches nothing, but two good-reference photos
	// exist; the resolver must return exactly those with the fallback
	// flag set.
	lib := testLibrary(t, []*store.MediaAsset{
		{URL: "ref1", IsGoodReference: true, Analyzed: true},
		{URL: "ref2", IsGoodReference: true, Analyzed: true},
		{URL: "plain", Analyzed: true},
	})
	r := NewResolver(lib, nil)

	res, err := r.Resolve(Filters{Tags: []string{"ernst"}})
	if err != nil {
		t.Fatal(err)
	}
	if !res.UsedFallback {
		t.Error("expected usedFallback=true")
	}
	if len(res.Assets) != 2 {
		t.Fatalf("got %d assets, want the 2 good references", len(res.Assets))
	}
	for _, a := range res.Assets {
		if !a.IsGoodReference {
			t.Errorf("non-reference asset leaked into fallback: %s", a.URL)
		}
	}
}

func TestResolveSelfieMissPrefersPortraitTags(t *testing.T) {
	lib := testLibrary(t, []*store.MediaAsset{
		{URL: "landscape", Tags: []string{"mountains"}},
		{URL: "headshot", AITags: []string{"portrait", "studio"}},
	})
	r := NewResolver(lib, nil)

	res, err := r.Resolve(Filters{OnlySelfies: true, Limit: 1})
	if err != nil {
		t.Fatal(err)
	}
	if !res.UsedFallback {
		t.Error("expected usedFallback=true")
	}
	if len(res.Assets) != 1 || res.Assets[0].URL != "headshot" {
		t.Errorf("expected portrait-tagged asset first, got %+v", res.Assets[0])
	}
}

func TestResolveIdentityDescriptorTierWins(t *testing.T) {
	lib := testLibrary(t, []*store.MediaAsset{
		{URL: "dna", Analyzed: true, IdentityDescriptor: "distinct asymmetric smile"},
		{URL: "ref", IsGoodReference: true, Analyzed: true},
		{URL: "plain", Analyzed: true},
	})
	r := NewResolver(lib, nil)

	res, err := r.Resolve(Filters{Tags: []string{"nomatch"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Assets) != 1 || res.Assets[0].URL != "dna" {
		t.Fatalf("expected identity-descriptor tier, got %+v", res.Assets)
	}
	if !res.HasIdentityDescriptor {
		t.Error("HasIdentityDescriptor not set")
	}
	if res.IdentityDescriptor() != "distinct asymmetric smile" {
		t.Errorf("descriptor: got %q", res.IdentityDescriptor())
	}
}

func TestResolveLimitApplied(t *testing.T) {
	var assets []*store.MediaAsset
	for i := 0; i < 10; i++ {
		assets = append(assets, &store.MediaAsset{URL: "u", IsSelfie: true})
	}
	r := NewResolver(testLibrary(t, assets), nil)

	res, err := r.Resolve(Filters{OnlySelfies: true, Limit: 4})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Assets) != 4 {
		t.Errorf("got %d assets, want 4", len(res.Assets))
	}
}
