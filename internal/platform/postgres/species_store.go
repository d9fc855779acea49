package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/verdantlabs/flora-api/internal/domain"
	"github.com/verdantlabs/flora-api/internal/store"
)

// uniqueViolationCode is the PostgreSQL unique constraint violation error code.
const uniqueViolationCode = "23505"

// PostgresSpeciesStore implements the store.SpeciesStore interface
// using a PostgreSQL database as the storage backend.
type PostgresSpeciesStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresSpeciesStore creates a new PostgreSQL implementation of the
// SpeciesStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
func NewPostgresSpeciesStore(db store.DBTX, logger *slog.Logger) *PostgresSpeciesStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresSpeciesStore{
		db:     db,
		logger: logger.With(slog.String("component", "species_store")),
	}
}

// Ensure PostgresSpeciesStore implements store.SpeciesStore.
var _ store.SpeciesStore = (*PostgresSpeciesStore)(nil)

// isUniqueViolation checks if the given error is a PostgreSQL unique
// constraint violation, used to detect concurrent first-inserts for the
// same scientific name.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

// GetBySpecies implements store.SpeciesStore.GetBySpecies.
func (s *PostgresSpeciesStore) GetBySpecies(ctx context.Context, scientificName string) (*domain.SpeciesRecord, error) {
	query := `
		SELECT id, scientific_name, details_fr, details_en, images, created_at, updated_at
		FROM plant_species
		WHERE scientific_name = $1`

	record := &domain.SpeciesRecord{}
	var detailsFR, detailsEN, images []byte

	row := s.db.QueryRowContext(ctx, query, scientificName)
	err := row.Scan(
		&record.ID,
		&record.ScientificName,
		&detailsFR,
		&detailsEN,
		&images,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrSpeciesNotFound
		}
		return nil, store.NewStoreError("species", "get", "failed to query record", err)
	}

	record.Details = make(map[domain.Locale]*domain.DetailSheet)
	if err := attachSheet(record, domain.LocaleFR, detailsFR); err != nil {
		return nil, store.NewStoreError("species", "get", "malformed fr detail column", err)
	}
	if err := attachSheet(record, domain.LocaleEN, detailsEN); err != nil {
		return nil, store.NewStoreError("species", "get", "malformed en detail column", err)
	}

	if len(images) > 0 {
		if err := json.Unmarshal(images, &record.Images); err != nil {
			return nil, store.NewStoreError("species", "get", "malformed images column", err)
		}
	}

	return record, nil
}

// Create implements store.SpeciesStore.Create.
func (s *PostgresSpeciesStore) Create(ctx context.Context, record *domain.SpeciesRecord) error {
	if err := record.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	detailsFR, detailsEN, images, err := marshalColumns(record)
	if err != nil {
		return store.NewStoreError("species", "create", "failed to encode columns", err)
	}

	query := `
		INSERT INTO plant_species (id, scientific_name, details_fr, details_en, images, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = s.db.ExecContext(ctx, query,
		record.ID,
		record.ScientificName,
		detailsFR,
		detailsEN,
		images,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrSpeciesExists
		}
		return store.NewStoreError("species", "create", "failed to insert record", err)
	}

	s.logger.DebugContext(ctx, "species record created",
		slog.String("scientific_name", record.ScientificName))
	return nil
}

// Update implements store.SpeciesStore.Update.
func (s *PostgresSpeciesStore) Update(ctx context.Context, record *domain.SpeciesRecord) error {
	if err := record.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	detailsFR, detailsEN, images, err := marshalColumns(record)
	if err != nil {
		return store.NewStoreError("species", "update", "failed to encode columns", err)
	}

	query := `
		UPDATE plant_species
		SET details_fr = $2, details_en = $3, images = $4, updated_at = $5
		WHERE scientific_name = $1`

	result, err := s.db.ExecContext(ctx, query,
		record.ScientificName,
		detailsFR,
		detailsEN,
		images,
		record.UpdatedAt,
	)
	if err != nil {
		return store.NewStoreError("species", "update", "failed to update record", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return store.NewStoreError("species", "update", "failed to read rows affected", err)
	}
	if rows == 0 {
		return store.ErrSpeciesNotFound
	}
	return nil
}

// Upsert implements store.SpeciesStore.Upsert.
//
// The COALESCE merge makes the statement safe under concurrent first-inserts
// for the same species: whichever request lands second augments the existing
// row instead of overwriting it, and a locale column is only replaced when
// this round actually produced that locale.
func (s *PostgresSpeciesStore) Upsert(ctx context.Context, record *domain.SpeciesRecord) error {
	if err := record.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	detailsFR, detailsEN, images, err := marshalColumns(record)
	if err != nil {
		return store.NewStoreError("species", "upsert", "failed to encode columns", err)
	}

	query := `
		INSERT INTO plant_species (id, scientific_name, details_fr, details_en, images, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (scientific_name) DO UPDATE SET
			details_fr = COALESCE(EXCLUDED.details_fr, plant_species.details_fr),
			details_en = COALESCE(EXCLUDED.details_en, plant_species.details_en),
			images = CASE
				WHEN jsonb_array_length(EXCLUDED.images) > 0 THEN EXCLUDED.images
				ELSE plant_species.images
			END,
			updated_at = EXCLUDED.updated_at`

	_, err = s.db.ExecContext(ctx, query,
		record.ID,
		record.ScientificName,
		detailsFR,
		detailsEN,
		images,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		return store.NewStoreError("species", "upsert", "failed to upsert record", err)
	}

	s.logger.DebugContext(ctx, "species record upserted",
		slog.String("scientific_name", record.ScientificName),
		slog.Int("image_count", len(record.Images)))
	return nil
}

// WithTx implements store.SpeciesStore.WithTx.
func (s *PostgresSpeciesStore) WithTx(tx *sql.Tx) store.SpeciesStore {
	return &PostgresSpeciesStore{
		db:     tx,
		logger: s.logger,
	}
}

// marshalColumns encodes the record's JSONB columns. Absent locale sheets
// encode as NULL so the upsert's COALESCE leaves the stored column alone;
// the image list always encodes as a JSON array, empty when nothing was
// discovered.
func marshalColumns(record *domain.SpeciesRecord) (detailsFR, detailsEN, images []byte, err error) {
	if sheet := record.Detail(domain.LocaleFR); sheet != nil {
		if detailsFR, err = json.Marshal(sheet); err != nil {
			return nil, nil, nil, fmt.Errorf("failed to marshal fr sheet: %w", err)
		}
	}
	if sheet := record.Detail(domain.LocaleEN); sheet != nil {
		if detailsEN, err = json.Marshal(sheet); err != nil {
			return nil, nil, nil, fmt.Errorf("failed to marshal en sheet: %w", err)
		}
	}

	urls := record.Images
	if urls == nil {
		urls = []string{}
	}
	if images, err = json.Marshal(urls); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal images: %w", err)
	}
	return detailsFR, detailsEN, images, nil
}

// attachSheet decodes one locale column onto the record; NULL columns are
// skipped.
func attachSheet(record *domain.SpeciesRecord, locale domain.Locale, raw []byte) error {
	if len(raw) == 0 {
		return nil
	}
	sheet := &domain.DetailSheet{}
	if err := json.Unmarshal(raw, sheet); err != nil {
		return err
	}
	record.Details[locale] = sheet
	return nil
}
