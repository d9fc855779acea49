package service

import "errors"

// Orchestrator errors surfaced to the API layer.
var (
	// ErrInvalidSpeciesName is returned when the requested plant identifier
	// is empty after trimming.
	ErrInvalidSpeciesName = errors.New("plant identifier cannot be empty")

	// ErrAllLocalesFailed is returned when generation produced no sheet for
	// any locale and the cache holds nothing either. Nothing is persisted in
	// that case, discovered images included.
	ErrAllLocalesFailed = errors.New("detail generation failed for every locale")
)
