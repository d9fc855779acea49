// Package generation defines the boundary between the application core and
// the external language-model service that produces botanical detail sheets.
// Concrete implementations live under internal/platform.
package generation
