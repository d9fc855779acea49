package api

import (
	"net/http"
	"strings"

	"github.com/verdantlabs/flora-api/internal/domain"
)

// localeHeader takes precedence over standard content negotiation.
const localeHeader = "X-Locale"

// ResolveLocale negotiates the response locale: the X-Locale header wins,
// then the first Accept-Language entry with its quality suffix and region
// subtag stripped, then the default. Unsupported values collapse to the
// default rather than erroring.
func ResolveLocale(r *http.Request) domain.Locale {
	if explicit := strings.TrimSpace(r.Header.Get(localeHeader)); explicit != "" {
		return domain.NormalizeLocale(strings.ToLower(explicit))
	}

	accept := r.Header.Get("Accept-Language")
	if accept == "" {
		return domain.DefaultLocale
	}

	first := strings.TrimSpace(strings.Split(accept, ",")[0])
	first = strings.TrimSpace(strings.Split(first, ";")[0])
	// "en-US" negotiates as "en".
	first = strings.Split(first, "-")[0]
	return domain.NormalizeLocale(strings.ToLower(first))
}
