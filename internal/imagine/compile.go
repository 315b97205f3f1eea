// Package imagine implements the identity-preserving image generation
// pipeline: a fixed master-prompt template, an ordered ladder of
// safety rewrites, and a bounded retry loop around the external image
// service.
package imagine

import "strings"

// Inputs are the creative parameters of one generation request. Empty
// slots are filled with neutral defaults at compile time.
type Inputs struct {
	Transformation string `json:"transformation"`
	Scene          string `json:"scene"`
	Wardrobe       string `json:"wardrobe"`
	Mood           string `json:"mood"`
}

// Neutral slot defaults.
const (
	defaultTransformation = "a natural, true-to-life photographic rendering"
	defaultScene          = "a softly lit, unobtrusive studio setting"
	defaultWardrobe       = "their own everyday clothing"
	defaultMood           = "relaxed and authentic"
)

// identityPreamble is non-negotiable: every compiled prompt starts
// with it. It instructs the generator to reproduce the actual person,
// not an idealized stand-in.
const identityPreamble = `Create a photorealistic image of one specific real person. ` +
	`Reproduce this exact person's facial structure, proportions, natural asymmetries, ` +
	`skin texture, and age markers precisely as they are. Do not beautify, smooth, ` +
	`de-age, or otherwise idealize the face in any way.`

// genericIdentityFallback substitutes for a missing visual-DNA
// descriptor. Identity fidelity is degraded in this mode and callers
// are expected to disclose that.
const genericIdentityFallback = `Maintain a single consistent, ordinary, non-celebrity ` +
	`appearance for this person across the entire image.`

// negativeConstraints closes every prompt. The generator tends toward
// stock-photo faces without it.
const negativeConstraints = `Strictly avoid: generic or idealized model faces, ` +
	`beautification, cartoon or illustration rendering, anime styling, ` +
	`any resemblance to celebrities or well-known public figures, ` +
	`extra or distorted facial features.`

// Compile fills the master template with the given creative inputs
// and identity descriptor. The descriptor, when present, is injected
// verbatim into a dedicated must-match block.
func Compile(in Inputs, identityDescriptor string) string {
	var b strings.Builder

	b.WriteString(identityPreamble)
	b.WriteString("\n\n")

	if identityDescriptor != "" {
		b.WriteString("The person's appearance MUST match this description exactly:\n")
		b.WriteString(identityDescriptor)
	} else {
		b.WriteString(genericIdentityFallback)
	}
	b.WriteString("\n\n")

	b.WriteString("Depiction: ")
	b.WriteString(orDefault(in.Transformation, defaultTransformation))
	b.WriteString("\nScene: ")
	b.WriteString(orDefault(in.Scene, defaultScene))
	b.WriteString("\nWardrobe: ")
	b.WriteString(orDefault(in.Wardrobe, defaultWardrobe))
	b.WriteString("\nMood: ")
	b.WriteString(orDefault(in.Mood, defaultMood))
	b.WriteString("\n\n")

	b.WriteString(negativeConstraints)

	return b.String()
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
