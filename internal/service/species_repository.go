package service

import (
	"context"
	"database/sql"

	"github.com/verdantlabs/flora-api/internal/domain"
	"github.com/verdantlabs/flora-api/internal/store"
)

// SpeciesRepositoryAdapter wraps a SpeciesStore so that every write runs
// inside its own transaction. Reads go straight through.
type SpeciesRepositoryAdapter struct {
	store store.SpeciesStore
	db    *sql.DB
}

// NewSpeciesRepositoryAdapter creates the transactional wrapper. A nil db
// degrades to direct delegation, which keeps in-memory stores usable in
// tests.
func NewSpeciesRepositoryAdapter(speciesStore store.SpeciesStore, db *sql.DB) *SpeciesRepositoryAdapter {
	return &SpeciesRepositoryAdapter{store: speciesStore, db: db}
}

// Ensure the adapter can stand in wherever the plain store is expected.
var _ store.SpeciesStore = (*SpeciesRepositoryAdapter)(nil)

// GetBySpecies implements store.SpeciesStore.GetBySpecies.
func (a *SpeciesRepositoryAdapter) GetBySpecies(ctx context.Context, scientificName string) (*domain.SpeciesRecord, error) {
	return a.store.GetBySpecies(ctx, scientificName)
}

// Create implements store.SpeciesStore.Create within a transaction.
func (a *SpeciesRepositoryAdapter) Create(ctx context.Context, record *domain.SpeciesRecord) error {
	return a.inTransaction(ctx, func(ctx context.Context, s store.SpeciesStore) error {
		return s.Create(ctx, record)
	})
}

// Update implements store.SpeciesStore.Update within a transaction.
func (a *SpeciesRepositoryAdapter) Update(ctx context.Context, record *domain.SpeciesRecord) error {
	return a.inTransaction(ctx, func(ctx context.Context, s store.SpeciesStore) error {
		return s.Update(ctx, record)
	})
}

// Upsert implements store.SpeciesStore.Upsert within a transaction.
func (a *SpeciesRepositoryAdapter) Upsert(ctx context.Context, record *domain.SpeciesRecord) error {
	return a.inTransaction(ctx, func(ctx context.Context, s store.SpeciesStore) error {
		return s.Upsert(ctx, record)
	})
}

// WithTx implements store.SpeciesStore.WithTx.
func (a *SpeciesRepositoryAdapter) WithTx(tx *sql.Tx) store.SpeciesStore {
	return a.store.WithTx(tx)
}

func (a *SpeciesRepositoryAdapter) inTransaction(
	ctx context.Context,
	fn func(ctx context.Context, s store.SpeciesStore) error,
) error {
	if a.db == nil {
		return fn(ctx, a.store)
	}
	return store.RunInTransaction(ctx, a.db, func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, a.store.WithTx(tx))
	})
}
