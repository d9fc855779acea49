package domain

// MaxAdviceEntries caps the advice list of a DetailSheet.
const MaxAdviceEntries = 5

// DetailSheet is the normalized botanical fact record for one species in one
// locale. Every field is independently optional; absence is an explicit JSON
// null, never a missing key, so consumers can distinguish "not yet known"
// from "key does not exist". Field keys are canonical English regardless of
// the sheet's locale.
type DetailSheet struct {
	CommonName       *string  `json:"common_name"`
	ScientificName   *string  `json:"scientific_name"`
	Difficulty       *string  `json:"difficulty"`
	Exposure         *string  `json:"exposure"`
	ExposureShort    *string  `json:"exposure_short"`
	Watering         *string  `json:"watering"`
	Family           *string  `json:"family"`
	Description      *string  `json:"description"`
	CareTips         *string  `json:"care_tips"`
	GrowthHabit      *string  `json:"growth_habit"`
	FloweringPeriod  *string  `json:"flowering_period"`
	Resistance       *string  `json:"resistance"`
	TemperatureRange *string  `json:"temperature_range"`
	Propagation      *string  `json:"propagation"`
	Diseases         *string  `json:"diseases"`
	Advice           []string `json:"advice"`
	Interest         *string  `json:"interest"`
	Toxicity         *string  `json:"toxicity"`
	Origin           *string  `json:"origin"`
}

// SheetFieldNames lists every DetailSheet key in its canonical order, used
// to verify that serialized sheets always carry the complete field set.
func SheetFieldNames() []string {
	return []string{
		"common_name",
		"scientific_name",
		"difficulty",
		"exposure",
		"exposure_short",
		"watering",
		"family",
		"description",
		"care_tips",
		"growth_habit",
		"flowering_period",
		"resistance",
		"temperature_range",
		"propagation",
		"diseases",
		"advice",
		"interest",
		"toxicity",
		"origin",
	}
}
