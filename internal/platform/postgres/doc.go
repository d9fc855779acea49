// Package postgres contains the PostgreSQL implementation of the store
// interfaces. Locale detail sheets are stored as one JSONB column per
// locale and the shared image list as a JSONB array, all keyed by the
// species' scientific name.
package postgres
