package imagine

import (
	"strings"
	"testing"
)

func TestLadderOrder(t *testing.T) {
	names := []string{}
	for _, s := range Ladder() {
		names = append(names, s.Name())
	}
	want := []string{"strip_protected_names", "neutralize_scene", "archetypal_fallback"}
	if len(names) != len(want) {
		t.Fatalf("got %d strategies, want %d", len(names), len(want))
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("rung %d: got %q, want %q", i, names[i], want[i])
		}
	}
}

func TestStripProtectedNames(t *testing.T) {
	in := Inputs{
		Transformation: "a Tatort detective chasing a suspect",
		Scene:          "a crime scene like in TATORT, misty harbor",
		Mood:           "tense",
	}
	out := stripProtected{}.Rewrite(in)

	if strings.Contains(strings.ToLower(out.Transformation), "tatort") {
		t.Errorf("transformation still names the property: %q", out.Transformation)
	}
	if strings.Contains(strings.ToLower(out.Scene), "tatort") {
		t.Errorf("scene still names the property: %q", out.Scene)
	}
	if !strings.Contains(out.Transformation, "detective") {
		t.Errorf("non-protected content lost: %q", out.Transformation)
	}
	if out.Mood != "tense" {
		t.Errorf("mood should survive: %q", out.Mood)
	}
}

func TestNeutralizeScene(t *testing.T) {
	in := Inputs{
		Transformation: "a hardboiled killer",
		Scene:          "holding a gun over a corpse, blood everywhere",
		Wardrobe:       "trench coat",
	}
	out := neutralizeScene{}.Rewrite(in)

	if out.Transformation != "a cinematic character portrait in a dramatic film still" {
		t.Errorf("transformation not neutralized: %q", out.Transformation)
	}
	for _, banned := range []string{"gun", "corpse", "blood"} {
		if strings.Contains(strings.ToLower(out.Scene), banned) {
			t.Errorf("scene still contains %q: %q", banned, out.Scene)
		}
	}
	if out.Wardrobe != "trench coat" {
		t.Errorf("wardrobe should survive: %q", out.Wardrobe)
	}
}

func TestNeutralizeScenePunctuation(t *testing.T) {
	out := neutralizeScene{}.Rewrite(Inputs{Scene: "a knife, then violence!"})
	if strings.Contains(out.Scene, "knife") || strings.Contains(out.Scene, "violence") {
		t.Errorf("punctuation-adjacent terms not replaced: %q", out.Scene)
	}
}

func TestArchetypalDiscardsEverything(t *testing.T) {
	in := Inputs{
		Transformation: "anything at all",
		Scene:          "anywhere",
		Wardrobe:       "anything",
		Mood:           "any",
	}
	out := archetypal{}.Rewrite(in)

	if out == in {
		t.Error("archetypal rewrite returned inputs unchanged")
	}
	if out.Transformation == "" || out.Scene == "" || out.Wardrobe == "" || out.Mood == "" {
		t.Errorf("archetypal output has empty slots: %+v", out)
	}
	if strings.Contains(out.Scene, "anywhere") {
		t.Error("archetypal rewrite must not keep original content")
	}
}

func TestRemoveFoldMultipleOccurrences(t *testing.T) {
	got := removeFold("Tatort and tatort and TATORT", "tatort")
	if strings.Contains(strings.ToLower(got), "tatort") {
		t.Errorf("occurrences remain: %q", got)
	}
}
