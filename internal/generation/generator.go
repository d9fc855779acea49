package generation

import (
	"context"

	"github.com/verdantlabs/flora-api/internal/domain"
)

// Generator defines the interface for producing locale-specific detail
// sheets for a species. This interface serves as a boundary between the
// application core and external AI/LLM services.
type Generator interface {
	// GenerateDetails produces the detail sheet for the given scientific
	// name in the given locale. A returned error means this locale failed;
	// the caller treats it as a null sheet and must not let it abort work
	// on other locales. A non-nil sheet always carries the complete field
	// set, with unknown fields set to explicit nulls.
	GenerateDetails(ctx context.Context, scientificName string, locale domain.Locale) (*domain.DetailSheet, error)
}
