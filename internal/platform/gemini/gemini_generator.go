package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"text/template"
	"time"

	"google.golang.org/genai"

	"github.com/verdantlabs/flora-api/internal/config"
	"github.com/verdantlabs/flora-api/internal/domain"
	"github.com/verdantlabs/flora-api/internal/generation"
)

// ErrEmptySpeciesName is returned when the scientific name is empty.
var ErrEmptySpeciesName = errors.New("scientific name cannot be empty")

// modelClient abstracts the single "generate content" call so tests can
// substitute a fake without reaching the network.
type modelClient interface {
	generateText(ctx context.Context, model, prompt string) (string, error)
}

// GeminiGenerator implements the generation.Generator interface using
// Google's Gemini API to produce botanical detail sheets.
type GeminiGenerator struct {
	logger    *slog.Logger
	config    config.LLMConfig
	templates map[domain.Locale]*template.Template
	client    modelClient
	model     string
}

// NewGeminiGenerator creates a new instance of GeminiGenerator with the
// provided dependencies.
func NewGeminiGenerator(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*GeminiGenerator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	templates, err := parsePromptTemplates()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse prompt templates: %v", generation.ErrInvalidConfig, err)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", generation.ErrInvalidConfig, err)
	}

	return &GeminiGenerator{
		logger:    logger.With(slog.String("component", "gemini_generator")),
		config:    cfg,
		templates: templates,
		client:    &genaiModelClient{client: client},
		model:     cfg.ModelName,
	}, nil
}

// Ensure GeminiGenerator implements generation.Generator.
var _ generation.Generator = (*GeminiGenerator)(nil)

// GenerateDetails produces the detail sheet for one species in one locale.
// The model is invoked exactly once; there is no retry. Any upstream
// failure surfaces as an error the orchestrator downgrades to a null sheet
// for this locale.
func (g *GeminiGenerator) GenerateDetails(
	ctx context.Context,
	scientificName string,
	locale domain.Locale,
) (*domain.DetailSheet, error) {
	prompt, err := g.createPrompt(scientificName, locale)
	if err != nil {
		return nil, err
	}

	if g.config.TimeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(g.config.TimeoutSeconds)*time.Second)
		defer cancel()
	}

	g.logger.InfoContext(ctx, "invoking detail generation model",
		slog.String("scientific_name", scientificName),
		slog.String("locale", string(locale)),
		slog.String("model", g.model))

	text, err := g.client.generateText(ctx, g.model, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", generation.ErrGenerationFailed, err)
	}
	if text == "" {
		return nil, fmt.Errorf("%w: empty text payload", generation.ErrInvalidResponse)
	}

	payload, ok := extractJSONObject(text)
	if !ok {
		return nil, fmt.Errorf("%w: no JSON object in model output", generation.ErrInvalidResponse)
	}

	// A brace-delimited substring that fails to decode falls back to an
	// empty object: the locale still "succeeds" with an all-null sheet
	// rather than failing the call.
	raw := map[string]any{}
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		g.logger.WarnContext(ctx, "model output contained unparseable JSON, defaulting all fields",
			slog.String("scientific_name", scientificName),
			slog.String("locale", string(locale)),
			slog.String("error", err.Error()))
		raw = map[string]any{}
	}

	sheet := normalizeSheet(raw)
	g.logger.DebugContext(ctx, "detail sheet generated",
		slog.String("scientific_name", scientificName),
		slog.String("locale", string(locale)),
		slog.Int("advice_count", len(sheet.Advice)))
	return sheet, nil
}

// createPrompt renders the locale-specific prompt template.
func (g *GeminiGenerator) createPrompt(scientificName string, locale domain.Locale) (string, error) {
	if scientificName == "" {
		return "", ErrEmptySpeciesName
	}

	tmpl, ok := g.templates[locale]
	if !ok {
		return "", fmt.Errorf("%w: %q", generation.ErrUnsupportedLocale, locale)
	}

	var promptBuffer bytes.Buffer
	if err := tmpl.Execute(&promptBuffer, promptData{ScientificName: scientificName}); err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}
	return promptBuffer.String(), nil
}

// genaiModelClient is the production modelClient backed by the genai SDK.
type genaiModelClient struct {
	client *genai.Client
}

func (c *genaiModelClient) generateText(ctx context.Context, model, prompt string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
	if err != nil {
		return "", err
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no content generated", generation.ErrInvalidResponse)
	}
	if resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
		return "", fmt.Errorf("%w: finish reason safety", generation.ErrContentBlocked)
	}
	return resp.Text(), nil
}
