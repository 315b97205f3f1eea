// Package prompts contains the prompt templates sent to the reasoning
// service.
//
// Prompt text is Go code rather than config files because it is
// program logic: templates use fmt.Sprintf interpolation, benefit from
// compile-time embedding, and can be validated by tests. User-facing
// configuration lives in config.yaml; this package holds the
// instructions we send to models.
package prompts
