// Package api implements the HTTP boundary: request decoding and
// validation, locale negotiation, and the mapping from orchestrator errors
// to status codes. Handlers stay thin; all resolution logic lives in the
// service layer.
package api
