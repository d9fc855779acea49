package store

import (
	"context"
	"database/sql"

	"github.com/verdantlabs/flora-api/internal/domain"
)

// SpeciesStore defines the interface for species-record persistence.
// All operations are keyed on the scientific name, the record's natural key.
type SpeciesStore interface {
	// GetBySpecies retrieves the record for the given scientific name.
	// Returns ErrSpeciesNotFound if no record exists.
	GetBySpecies(ctx context.Context, scientificName string) (*domain.SpeciesRecord, error)

	// Create inserts a new record. The record must satisfy
	// domain.SpeciesRecord.Validate: a record with zero locale sheets is
	// never written. Returns ErrSpeciesExists when the scientific name is
	// already present.
	Create(ctx context.Context, record *domain.SpeciesRecord) error

	// Update rewrites the mutable columns of an existing record.
	// Returns ErrSpeciesNotFound if the record does not exist.
	Update(ctx context.Context, record *domain.SpeciesRecord) error

	// Upsert inserts the record or merges it into an existing row in one
	// atomic statement: locale sheets carried by the record replace only
	// their own column, absent sheets and an empty image list leave the
	// stored values untouched. This is the write path the resolution
	// orchestrator uses; it is safe under concurrent first-inserts for the
	// same species.
	Upsert(ctx context.Context, record *domain.SpeciesRecord) error

	// WithTx returns a new SpeciesStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller.
	WithTx(tx *sql.Tx) SpeciesStore
}
