package gemini

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/spf13/cast"

	"github.com/verdantlabs/flora-api/internal/domain"
)

// jsonObjectRegex greedily matches the first brace-delimited substring of
// the raw model output. The model routinely wraps its JSON in prose or
// markdown fences, so extraction cannot assume the payload starts at byte 0.
var jsonObjectRegex = regexp.MustCompile(`(?s)\{.*\}`)

// extractJSONObject returns the first greedy brace-delimited substring of
// the raw text, or false when the text contains no object at all.
func extractJSONObject(raw string) (string, bool) {
	match := jsonObjectRegex.FindString(raw)
	if match == "" {
		return "", false
	}
	return match, true
}

// normalizeSheet coerces the untyped payload into a DetailSheet with the
// complete field set. Missing or malformed fields default to nil; they are
// never allowed to fail the whole sheet.
func normalizeSheet(raw map[string]any) *domain.DetailSheet {
	return &domain.DetailSheet{
		CommonName:       stringField(raw, "common_name"),
		ScientificName:   stringField(raw, "scientific_name"),
		Difficulty:       stringField(raw, "difficulty"),
		Exposure:         stringField(raw, "exposure"),
		ExposureShort:    stringField(raw, "exposure_short"),
		Watering:         stringField(raw, "watering"),
		Family:           stringField(raw, "family"),
		Description:      stringField(raw, "description"),
		CareTips:         stringField(raw, "care_tips"),
		GrowthHabit:      stringField(raw, "growth_habit"),
		FloweringPeriod:  stringField(raw, "flowering_period"),
		Resistance:       stringField(raw, "resistance"),
		TemperatureRange: stringField(raw, "temperature_range"),
		Propagation:      stringField(raw, "propagation"),
		Diseases:         stringField(raw, "diseases"),
		Advice:           adviceField(raw, "advice"),
		Interest:         stringField(raw, "interest"),
		Toxicity:         stringField(raw, "toxicity"),
		Origin:           stringField(raw, "origin"),
	}
}

// stringField coerces one scalar field. List values, and string values that
// syntactically look like list literals, are flattened into a single
// comma-joined string; a literal that fails to parse keeps the raw string.
func stringField(raw map[string]any, key string) *string {
	value, ok := raw[key]
	if !ok || value == nil {
		return nil
	}

	if list, ok := value.([]any); ok {
		return joinList(list)
	}

	str, err := cast.ToStringE(value)
	if err != nil {
		return nil
	}
	if list, ok := parseListLiteral(str); ok {
		return joinList(list)
	}

	str = strings.TrimSpace(str)
	if str == "" {
		return nil
	}
	return &str
}

// adviceField coerces the advice list: scalars become a one-element list,
// string-encoded list literals are parsed, and the result is capped at
// domain.MaxAdviceEntries.
func adviceField(raw map[string]any, key string) []string {
	value, ok := raw[key]
	if !ok || value == nil {
		return nil
	}

	var entries []string
	switch v := value.(type) {
	case []any:
		entries = castEntries(v)
	default:
		str, err := cast.ToStringE(v)
		if err != nil {
			return nil
		}
		if list, ok := parseListLiteral(str); ok {
			entries = castEntries(list)
		} else if trimmed := strings.TrimSpace(str); trimmed != "" {
			entries = []string{trimmed}
		}
	}

	if len(entries) == 0 {
		return nil
	}
	if len(entries) > domain.MaxAdviceEntries {
		entries = entries[:domain.MaxAdviceEntries]
	}
	return entries
}

// parseListLiteral attempts to decode a string that looks like a JSON array
// literal. Failures report false so the caller keeps the raw string.
func parseListLiteral(str string) ([]any, bool) {
	trimmed := strings.TrimSpace(str)
	if !strings.HasPrefix(trimmed, "[") || !strings.HasSuffix(trimmed, "]") {
		return nil, false
	}
	var list []any
	if err := json.Unmarshal([]byte(trimmed), &list); err != nil {
		return nil, false
	}
	return list, true
}

func castEntries(list []any) []string {
	entries := make([]string, 0, len(list))
	for _, item := range list {
		str, err := cast.ToStringE(item)
		if err != nil {
			continue
		}
		if str = strings.TrimSpace(str); str != "" {
			entries = append(entries, str)
		}
	}
	return entries
}

func joinList(list []any) *string {
	entries := castEntries(list)
	if len(entries) == 0 {
		return nil
	}
	joined := strings.Join(entries, ", ")
	return &joined
}
