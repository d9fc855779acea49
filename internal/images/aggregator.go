package images

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/verdantlabs/flora-api/internal/config"
)

// ErrEmptySpeciesName is returned when the aggregator is asked to resolve
// an empty name. This is caller misuse, not a provider failure.
var ErrEmptySpeciesName = errors.New("scientific name cannot be empty")

// Aggregator runs the provider chain for one species. The primary provider
// wins outright when it yields any URL; the fallback runs only when the
// primary yields nothing. Results, including empty ones, are cached so a
// burst of identical lookups hits the network once.
type Aggregator struct {
	logger   *slog.Logger
	primary  Provider
	fallback Provider
	cache    *gocache.Cache
}

// NewAggregator wires the default provider chain from configuration.
func NewAggregator(logger *slog.Logger, cfg config.ImagesConfig) *Aggregator {
	ttl := time.Duration(cfg.CacheTTLMinutes) * time.Minute
	return &Aggregator{
		logger:   logger.With(slog.String("component", "image_aggregator")),
		primary:  NewTrefleProvider(logger, cfg),
		fallback: NewWikipediaProvider(logger, cfg),
		cache:    gocache.New(ttl, 2*ttl),
	}
}

// NewAggregatorWithProviders builds an aggregator over explicit providers.
func NewAggregatorWithProviders(logger *slog.Logger, primary, fallback Provider, ttl time.Duration) *Aggregator {
	return &Aggregator{
		logger:   logger.With(slog.String("component", "image_aggregator")),
		primary:  primary,
		fallback: fallback,
		cache:    gocache.New(ttl, 2*ttl),
	}
}

// Aggregate returns the image URLs for the species. It never fails on
// provider trouble: total provider failure is an empty result tagged
// SourceNone.
func (a *Aggregator) Aggregate(ctx context.Context, scientificName string) (Result, error) {
	scientificName = strings.TrimSpace(scientificName)
	if scientificName == "" {
		return Result{Source: SourceNone}, ErrEmptySpeciesName
	}

	cacheKey := strings.ToLower(scientificName)
	if cached, ok := a.cache.Get(cacheKey); ok {
		result := cached.(Result)
		a.logger.DebugContext(ctx, "aggregation cache hit",
			slog.String("scientific_name", scientificName),
			slog.String("source", result.Source))
		return result, nil
	}

	result := a.runChain(ctx, scientificName)
	a.cache.SetDefault(cacheKey, result)
	a.logger.InfoContext(ctx, "image aggregation complete",
		slog.String("scientific_name", scientificName),
		slog.String("source", result.Source),
		slog.Int("url_count", len(result.URLs)))
	return result, nil
}

func (a *Aggregator) runChain(ctx context.Context, scientificName string) Result {
	primaryURLs, err := a.primary.Fetch(ctx, scientificName)
	if err != nil {
		a.logger.WarnContext(ctx, "primary provider error",
			slog.String("provider", a.primary.Name()),
			slog.String("error", err.Error()))
	}
	if len(primaryURLs) > 0 {
		return Result{URLs: primaryURLs, Source: a.primary.Name()}
	}

	fallbackURLs, err := a.fallback.Fetch(ctx, scientificName)
	if err != nil {
		a.logger.WarnContext(ctx, "fallback provider error",
			slog.String("provider", a.fallback.Name()),
			slog.String("error", err.Error()))
	}
	if len(fallbackURLs) > 0 {
		return Result{URLs: fallbackURLs, Source: a.fallback.Name()}
	}

	return Result{Source: SourceNone}
}
