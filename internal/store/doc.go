// Package store provides the persistence abstractions for the species
// cache: the SpeciesStore interface, its sentinel errors, and transaction
// helpers. Concrete implementations live under internal/platform.
package store
