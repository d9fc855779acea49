package images

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/antonholmquist/jason"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/verdantlabs/flora-api/internal/config"
)

// imageCategories is the fixed walk order over the structured provider's
// image buckets. Botanically salient categories come first so the cap trims
// the least informative ones.
var imageCategories = []string{"flower", "leaf", "habit", "fruit", "bark", "other"}

// TrefleProvider queries the Trefle botanical database: one search call to
// resolve the species identifier, then one detail call whose categorized
// image buckets are flattened in a fixed order.
type TrefleProvider struct {
	logger           *slog.Logger
	httpClient       *http.Client
	limiter          *rate.Limiter
	token            string
	baseURL          string
	perCategoryLimit int
}

// NewTrefleProvider creates the primary structured provider. An empty token
// is not an error: the provider simply yields nothing and the aggregator
// falls through to the encyclopedia chain.
func NewTrefleProvider(logger *slog.Logger, cfg config.ImagesConfig) *TrefleProvider {
	return &TrefleProvider{
		logger:           logger.With(slog.String("provider", SourceTrefle)),
		httpClient:       newHTTPClient(cfg.TimeoutSeconds),
		limiter:          rate.NewLimiter(rate.Limit(2), 2),
		token:            cfg.TrefleAPIKey,
		baseURL:          cfg.TrefleBaseURL,
		perCategoryLimit: cfg.PerCategoryLimit,
	}
}

func (p *TrefleProvider) Name() string { return SourceTrefle }

// Fetch resolves the species and flattens its categorized images. Every
// upstream failure is logged and degraded to an empty list.
func (p *TrefleProvider) Fetch(ctx context.Context, scientificName string) ([]string, error) {
	if p.token == "" {
		return nil, nil
	}

	reqID := uuid.New().String()
	log := p.logger.With(
		slog.String("request_id", reqID),
		slog.String("scientific_name", scientificName))

	speciesID, err := p.searchSpecies(ctx, scientificName)
	if err != nil {
		log.WarnContext(ctx, "species search failed", slog.String("error", err.Error()))
		return nil, nil
	}
	if speciesID == "" {
		log.DebugContext(ctx, "no species match")
		return nil, nil
	}

	urls, err := p.fetchSpeciesImages(ctx, speciesID)
	if err != nil {
		log.WarnContext(ctx, "species detail fetch failed",
			slog.String("species_id", speciesID),
			slog.String("error", err.Error()))
		return nil, nil
	}

	log.DebugContext(ctx, "structured provider fetch complete", slog.Int("url_count", len(urls)))
	return urls, nil
}

// searchSpecies resolves the scientific name to a Trefle species slug. The
// first search hit wins; an empty result set is not an error.
func (p *TrefleProvider) searchSpecies(ctx context.Context, scientificName string) (string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter wait: %w", err)
	}

	query := url.Values{}
	query.Set("token", p.token)
	query.Set("q", scientificName)
	body, err := httpGetJSON(ctx, p.httpClient, p.baseURL+"/api/v1/species/search?"+query.Encode())
	if err != nil {
		return "", err
	}

	doc, err := jason.NewObjectFromBytes(body)
	if err != nil {
		return "", fmt.Errorf("failed to parse search response: %w", err)
	}
	results, err := doc.GetObjectArray("data")
	if err != nil || len(results) == 0 {
		return "", nil
	}

	id, err := results[0].GetInt64("id")
	if err != nil {
		return "", fmt.Errorf("search result missing id: %w", err)
	}
	return fmt.Sprintf("%d", id), nil
}

// fetchSpeciesImages walks the detail payload's per-category image buckets
// in the fixed category order, taking at most perCategoryLimit new URLs from
// each. A URL already collected from an earlier bucket is skipped without
// consuming a slot, and the walk stops once the global cap is full.
func (p *TrefleProvider) fetchSpeciesImages(ctx context.Context, speciesID string) ([]string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	query := url.Values{}
	query.Set("token", p.token)
	body, err := httpGetJSON(ctx, p.httpClient, p.baseURL+"/api/v1/species/"+speciesID+"?"+query.Encode())
	if err != nil {
		return nil, err
	}

	doc, err := jason.NewObjectFromBytes(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse detail response: %w", err)
	}
	imagesObj, err := doc.GetObject("data", "images")
	if err != nil {
		return nil, nil
	}

	globalCap := p.perCategoryLimit * len(imageCategories)
	seen := make(map[string]struct{})
	var urls []string
	for _, category := range imageCategories {
		if len(urls) >= globalCap {
			break
		}
		bucket, err := imagesObj.GetObjectArray(category)
		if err != nil {
			continue
		}
		taken := 0
		for _, entry := range bucket {
			if taken >= p.perCategoryLimit || len(urls) >= globalCap {
				break
			}
			imageURL, err := entry.GetString("image_url")
			if err != nil || imageURL == "" {
				continue
			}
			if _, dup := seen[imageURL]; dup {
				continue
			}
			seen[imageURL] = struct{}{}
			urls = append(urls, imageURL)
			taken++
		}
	}
	return urls, nil
}
