package imagine

import "strings"

// RewriteStrategy transforms the creative inputs of a rejected
// generation attempt into a safer variant. Strategies are applied in
// escalating order; each one gives up more of the original intent.
type RewriteStrategy interface {
	Name() string
	Rewrite(in Inputs) Inputs
}

// Ladder returns the rewrite strategies in application order, mildest
// first.
func Ladder() []RewriteStrategy {
	return []RewriteStrategy{
		stripProtected{},
		neutralizeScene{},
		archetypal{},
	}
}

// protectedNames are properties and franchises the image service
// reliably rejects by name. Lowercase, matched case-insensitively.
var protectedNames = []string{
	"tatort",
	"james bond",
	"star wars",
	"star trek",
	"harry potter",
	"marvel",
	"batman",
	"superman",
	"spider-man",
	"disney",
	"game of thrones",
	"indiana jones",
	"mission impossible",
}

// stripProtected removes protected property and franchise names from
// the transformation slot. The mildest rewrite: the scene and mood
// survive intact.
type stripProtected struct{}

func (stripProtected) Name() string { return "strip_protected_names" }

func (stripProtected) Rewrite(in Inputs) Inputs {
	out := in
	out.Transformation = removeNames(in.Transformation)
	out.Scene = removeNames(in.Scene)
	return out
}

func removeNames(s string) string {
	for _, name := range protectedNames {
		s = removeFold(s, name)
	}
	// Collapse the whitespace the removals leave behind.
	return strings.Join(strings.Fields(s), " ")
}

// removeFold deletes every case-insensitive occurrence of sub from s.
func removeFold(s, sub string) string {
	lower := strings.ToLower(s)
	sub = strings.ToLower(sub)
	for {
		i := strings.Index(lower, sub)
		if i < 0 {
			return s
		}
		s = s[:i] + s[i+len(sub):]
		lower = lower[:i] + lower[i+len(sub):]
	}
}

// violentTerms maps loaded scene vocabulary to harmless stand-ins.
var violentTerms = map[string]string{
	"gun":       "prop",
	"pistol":    "prop",
	"weapon":    "prop",
	"knife":     "tool",
	"blood":     "red paint",
	"bloody":    "dramatic",
	"corpse":    "figure",
	"dead body": "figure",
	"murder":    "mystery",
	"killing":   "investigation",
	"violence":  "tension",
	"violent":   "tense",
	"fight":     "confrontation",
	"war":       "conflict",
}

// neutralizeScene replaces the transformation with a fixed neutral
// cinematic one and scrubs loaded vocabulary from the scene.
type neutralizeScene struct{}

func (neutralizeScene) Name() string { return "neutralize_scene" }

func (neutralizeScene) Rewrite(in Inputs) Inputs {
	out := in
	out.Transformation = "a cinematic character portrait in a dramatic film still"
	out.Scene = softenTerms(in.Scene)
	return out
}

func softenTerms(s string) string {
	fields := strings.Fields(s)
	for i, f := range fields {
		trimmed := strings.ToLower(strings.Trim(f, ".,;:!?\"'()"))
		if repl, ok := violentTerms[trimmed]; ok {
			fields[i] = repl
		}
	}
	return strings.Join(fields, " ")
}

// archetypal discards the creative intent entirely and falls back to a
// fixed, maximally safe composition. The last rung.
type archetypal struct{}

func (archetypal) Name() string { return "archetypal_fallback" }

func (archetypal) Rewrite(Inputs) Inputs {
	return Inputs{
		Transformation: "a contemplative figure in a quiet moment",
		Scene:          "a softly lit room with warm, diffuse window light",
		Wardrobe:       "simple, neutral attire",
		Mood:           "calm and introspective",
	}
}
