package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Species-record validation errors.
var (
	// ErrSpeciesNameEmpty is returned when the scientific name is blank.
	ErrSpeciesNameEmpty = errors.New("species scientific name cannot be empty")

	// ErrSpeciesNoDetails is returned when a record would be persisted with
	// zero locale detail sheets. A record with no locales is never written.
	ErrSpeciesNoDetails = errors.New("species record must have at least one locale detail sheet")
)

// SpeciesRecord is the durable cache entry for one species identifier.
// The scientific name is its natural key and is never mutated after
// creation. Detail sheets are keyed by locale; the image list is shared
// across locales and deduplicated in discovery order.
type SpeciesRecord struct {
	ID             uuid.UUID
	ScientificName string
	Details        map[Locale]*DetailSheet
	Images         []string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewSpeciesRecord creates an empty record for the given scientific name.
// The record is not yet valid for persistence: at least one detail sheet
// must be attached first.
func NewSpeciesRecord(scientificName string) (*SpeciesRecord, error) {
	name := strings.TrimSpace(scientificName)
	if name == "" {
		return nil, ErrSpeciesNameEmpty
	}

	now := time.Now().UTC()
	return &SpeciesRecord{
		ID:             uuid.New(),
		ScientificName: name,
		Details:        make(map[Locale]*DetailSheet),
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// Detail returns the sheet for the given locale, or nil when that locale
// has not been resolved yet.
func (r *SpeciesRecord) Detail(locale Locale) *DetailSheet {
	if r.Details == nil {
		return nil
	}
	return r.Details[locale]
}

// SetDetail attaches a sheet for the given locale. Nil sheets are ignored
// so callers can pass failed-generation sentinels straight through.
func (r *SpeciesRecord) SetDetail(locale Locale, sheet *DetailSheet) {
	if sheet == nil {
		return
	}
	if r.Details == nil {
		r.Details = make(map[Locale]*DetailSheet)
	}
	r.Details[locale] = sheet
	r.UpdatedAt = time.Now().UTC()
}

// SetImages replaces the image list. Empty lists are ignored: the update
// path augments a record, it never discards previously discovered images.
func (r *SpeciesRecord) SetImages(urls []string) {
	if len(urls) == 0 {
		return
	}
	r.Images = urls
	r.UpdatedAt = time.Now().UTC()
}

// HasAnyDetail reports whether at least one locale sheet is present.
func (r *SpeciesRecord) HasAnyDetail() bool {
	for _, locale := range SupportedLocales() {
		if r.Detail(locale) != nil {
			return true
		}
	}
	return false
}

// MissingLocales returns the supported locales that have no sheet yet, in
// fan-out order.
func (r *SpeciesRecord) MissingLocales() []Locale {
	var missing []Locale
	for _, locale := range SupportedLocales() {
		if r.Detail(locale) == nil {
			missing = append(missing, locale)
		}
	}
	return missing
}

// Validate checks the record's persistence invariants.
func (r *SpeciesRecord) Validate() error {
	if strings.TrimSpace(r.ScientificName) == "" {
		return ErrSpeciesNameEmpty
	}
	if !r.HasAnyDetail() {
		return ErrSpeciesNoDetails
	}
	return nil
}
