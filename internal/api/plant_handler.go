package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/verdantlabs/flora-api/internal/api/shared"
	"github.com/verdantlabs/flora-api/internal/domain"
	"github.com/verdantlabs/flora-api/internal/service"
)

// DetailResolver is the slice of the orchestrator the handler depends on.
type DetailResolver interface {
	Resolve(ctx context.Context, scientificName string, locale domain.Locale) (*domain.SpeciesRecord, error)
}

// PlantHandler handles plant detail resolution requests.
type PlantHandler struct {
	resolver DetailResolver
	logger   *slog.Logger
}

// NewPlantHandler creates a new PlantHandler with the given resolver.
func NewPlantHandler(resolver DetailResolver, logger *slog.Logger) *PlantHandler {
	return &PlantHandler{
		resolver: resolver,
		logger:   logger.With(slog.String("component", "plant_handler")),
	}
}

// ResolveDetail handles POST /api/v1/plants/detail.
func (h *PlantHandler) ResolveDetail(w http.ResponseWriter, r *http.Request) {
	var req PlantDetailRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Missing plant identifier", err)
		return
	}

	locale := ResolveLocale(r)

	record, err := h.resolver.Resolve(r.Context(), req.Plant, locale)
	if err != nil {
		h.respondResolveError(w, r, err)
		return
	}

	// The negotiated locale may have failed while the other survived; the
	// response still carries the full key set, all null.
	sheet := record.Detail(locale)
	if sheet == nil {
		sheet = &domain.DetailSheet{}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, PlantDetailResponse{
		DetailSheet: sheet,
		Images:      record.Images,
	})
}

func (h *PlantHandler) respondResolveError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidSpeciesName):
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Missing plant identifier", err)
	case errors.Is(err, service.ErrAllLocalesFailed):
		shared.RespondWithErrorAndLog(w, r, http.StatusServiceUnavailable,
			"Detail generation is temporarily unavailable", err)
	default:
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to resolve plant details", err)
	}
}

// Health handles GET /healthz.
func Health(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, HealthResponse{Status: "ok"})
}
