// Package domain contains the core entities of the plant resolution
// pipeline: the cached SpeciesRecord and the per-locale DetailSheet.
// Domain objects carry their own validation and merge rules and have no
// dependencies on storage, transport, or provider packages.
package domain
