package domain

// Locale identifies one of the two supported detail languages.
type Locale string

const (
	// LocaleFR is French, the default locale of the service.
	LocaleFR Locale = "fr"

	// LocaleEN is English.
	LocaleEN Locale = "en"

	// DefaultLocale is used when a request carries no recognizable locale.
	DefaultLocale = LocaleFR
)

// SupportedLocales returns every locale a DetailSheet can be generated in,
// in the order they are fanned out during resolution.
func SupportedLocales() []Locale {
	return []Locale{LocaleFR, LocaleEN}
}

// NormalizeLocale collapses an arbitrary tag to a supported locale.
// Anything that is not exactly "fr" or "en" becomes DefaultLocale.
func NormalizeLocale(tag string) Locale {
	switch Locale(tag) {
	case LocaleFR, LocaleEN:
		return Locale(tag)
	default:
		return DefaultLocale
	}
}
