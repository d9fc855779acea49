// Package gemini implements the generation.Generator interface using
// Google's Gemini API. The model is asked for a single JSON object with a
// fixed set of botanical fields; the response is extracted from free-form
// text and normalized into a domain.DetailSheet through a per-field
// coercion table.
package gemini
