package api

import "github.com/verdantlabs/flora-api/internal/domain"

// PlantDetailRequest is the body of the detail resolution endpoint.
type PlantDetailRequest struct {
	Plant string `json:"plant" validate:"required"`
}

// PlantDetailResponse is the resolved fact sheet for the negotiated locale
// plus the shared image list. The sheet is embedded so its fields sit at
// the top level of the response object, every key present, null where
// unknown.
type PlantDetailResponse struct {
	*domain.DetailSheet
	Images []string `json:"images"`
}

// HealthResponse is returned by the liveness endpoint.
type HealthResponse struct {
	Status string `json:"status"`
}
