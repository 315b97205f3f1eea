package imagine

import (
	"strings"
	"testing"
)

func TestCompileWithDescriptor(t *testing.T) {
	in := Inputs{
		Transformation: "a detective in a rainy alley",
		Scene:          "neon-lit street at night",
		Wardrobe:       "a long coat",
		Mood:           "brooding",
	}
	descriptor := "oval face, slight overbite, gray-streaked hair"

	p := Compile(in, descriptor)

	if !strings.Contains(p, "Do not beautify") {
		t.Error("identity preamble missing")
	}
	if !strings.Contains(p, "MUST match this description exactly:\n"+descriptor) {
		t.Error("descriptor not injected verbatim")
	}
	if strings.Contains(p, genericIdentityFallback) {
		t.Error("generic fallback present despite descriptor")
	}
	for _, want := range []string{in.Transformation, in.Scene, in.Wardrobe, in.Mood} {
		if !strings.Contains(p, want) {
			t.Errorf("input %q missing from prompt", want)
		}
	}
	if !strings.Contains(p, "Strictly avoid") {
		t.Error("negative constraints missing")
	}
}

func TestCompileWithoutDescriptor(t *testing.T) {
	p := Compile(Inputs{Transformation: "x"}, "")

	if !strings.Contains(p, genericIdentityFallback) {
		t.Error("generic identity fallback missing")
	}
	if strings.Contains(p, "MUST match") {
		t.Error("must-match block present without a descriptor")
	}
}

func TestCompileEmptySlotsGetDefaults(t *testing.T) {
	p := Compile(Inputs{}, "desc")

	for _, want := range []string{
		defaultTransformation,
		defaultScene,
		defaultWardrobe,
		defaultMood,
	} {
		if !strings.Contains(p, want) {
			t.Errorf("default %q missing", want)
		}
	}
}

func TestCompileWhitespaceOnlySlotIsEmpty(t *testing.T) {
	p := Compile(Inputs{Mood: "   "}, "")
	if !strings.Contains(p, defaultMood) {
		t.Error("whitespace-only mood should fall back to default")
	}
}

func TestCompileSectionOrder(t *testing.T) {
	p := Compile(Inputs{Scene: "somewhere"}, "desc")

	iPre := strings.Index(p, "photorealistic image")
	iDesc := strings.Index(p, "MUST match")
	iScene := strings.Index(p, "Scene: somewhere")
	iNeg := strings.Index(p, "Strictly avoid")

	if !(iPre < iDesc && iDesc < iScene && iScene < iNeg) {
		t.Errorf("sections out of order: %d %d %d %d", iPre, iDesc, iScene, iNeg)
	}
}
