package gemini

import (
	"text/template"

	"github.com/verdantlabs/flora-api/internal/domain"
)

// promptData represents the data passed to the prompt templates.
type promptData struct {
	ScientificName string
}

// The two locale prompts differ only in wording. Field keys stay canonical
// English in both so the normalization table is locale-independent.
const (
	promptTemplateFR = `Tu es un botaniste expert. Donne une fiche descriptive complète de la plante "{{.ScientificName}}".
Réponds UNIQUEMENT avec un objet JSON unique, sans texte autour, avec exactement ces clés :
"common_name" (nom commun en français), "scientific_name", "difficulty" (facile/moyen/difficile),
"exposure" (description de l'exposition), "exposure_short" (soleil/mi-ombre/ombre),
"watering" (conseils d'arrosage), "family" (famille botanique), "description",
"care_tips" (entretien), "growth_habit" (port et croissance), "flowering_period",
"resistance" (rusticité), "temperature_range", "propagation" (multiplication),
"diseases" (maladies et ravageurs), "advice" (liste de 5 conseils maximum, en français),
"interest" (intérêt ornemental ou utilitaire), "toxicity", "origin" (origine géographique).
Toutes les valeurs sont en français. Mets null pour toute information inconnue.`

	promptTemplateEN = `You are an expert botanist. Produce a complete fact sheet for the plant "{{.ScientificName}}".
Answer ONLY with a single JSON object, no surrounding text, with exactly these keys:
"common_name", "scientific_name", "difficulty" (easy/medium/hard),
"exposure" (exposure description), "exposure_short" (sun/partial shade/shade),
"watering" (watering guidance), "family" (botanical family), "description",
"care_tips", "growth_habit", "flowering_period",
"resistance" (hardiness), "temperature_range", "propagation" (propagation methods),
"diseases" (diseases and pests), "advice" (list of at most 5 tips, in English),
"interest" (ornamental or utility interest), "toxicity", "origin" (geographic origin).
All values are in English. Use null for any unknown information.`
)

// parsePromptTemplates parses both locale templates once at construction.
func parsePromptTemplates() (map[domain.Locale]*template.Template, error) {
	templates := make(map[domain.Locale]*template.Template, 2)

	frTmpl, err := template.New("details_fr").Parse(promptTemplateFR)
	if err != nil {
		return nil, err
	}
	templates[domain.LocaleFR] = frTmpl

	enTmpl, err := template.New("details_en").Parse(promptTemplateEN)
	if err != nil {
		return nil, err
	}
	templates[domain.LocaleEN] = enTmpl

	return templates, nil
}
