// Package images aggregates illustration URLs for a plant species from a
// chain of public providers. The primary structured provider (Trefle) wins
// outright when it yields anything; otherwise an encyclopedia fallback walks
// Wikipedia page images and the Wikidata P18 claim. Providers degrade to
// empty results instead of failing the caller, and aggregation results are
// held in a short-lived in-process cache.
package images
