package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/verdantlabs/flora-api/internal/config"
	"github.com/verdantlabs/flora-api/internal/domain"
	"github.com/verdantlabs/flora-api/internal/generation"
	"github.com/verdantlabs/flora-api/internal/images"
	"github.com/verdantlabs/flora-api/internal/store"
	"github.com/verdantlabs/flora-api/internal/task"
)

// ImageAggregator is the slice of the image pipeline the orchestrator needs.
type ImageAggregator interface {
	Aggregate(ctx context.Context, scientificName string) (images.Result, error)
}

// TaskSubmitter enqueues background work after persistence.
type TaskSubmitter interface {
	Submit(t task.Task) error
}

// ResolutionService orchestrates one resolution round: read the cache,
// fan out for what is missing, merge, guard, persist.
type ResolutionService struct {
	logger     *slog.Logger
	store      store.SpeciesStore
	generator  generation.Generator
	aggregator ImageAggregator
	tasks      TaskSubmitter
	webhookCfg config.WebhookConfig
}

// NewResolutionService creates the orchestrator. The task submitter may be
// nil when no webhook is configured.
func NewResolutionService(
	logger *slog.Logger,
	speciesStore store.SpeciesStore,
	generator generation.Generator,
	aggregator ImageAggregator,
	tasks TaskSubmitter,
	webhookCfg config.WebhookConfig,
) (*ResolutionService, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if speciesStore == nil {
		return nil, errors.New("species store cannot be nil")
	}
	if generator == nil {
		return nil, errors.New("generator cannot be nil")
	}
	if aggregator == nil {
		return nil, errors.New("image aggregator cannot be nil")
	}
	return &ResolutionService{
		logger:     logger.With(slog.String("component", "resolution_service")),
		store:      speciesStore,
		generator:  generator,
		aggregator: aggregator,
		tasks:      tasks,
		webhookCfg: webhookCfg,
	}, nil
}

// Resolve returns the species record covering the requested locale,
// generating and persisting whatever the durable cache is missing. The
// requested locale's sheet may still be absent on the returned record when
// its generation failed but another locale succeeded.
func (s *ResolutionService) Resolve(
	ctx context.Context,
	scientificName string,
	locale domain.Locale,
) (*domain.SpeciesRecord, error) {
	scientificName = strings.TrimSpace(scientificName)
	if scientificName == "" {
		return nil, ErrInvalidSpeciesName
	}

	log := s.logger.With(
		slog.String("scientific_name", scientificName),
		slog.String("locale", string(locale)))

	record, err := s.store.GetBySpecies(ctx, scientificName)
	if err != nil && !store.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to read species cache: %w", err)
	}

	missing := s.missingWork(record, locale)
	if !missing.any() {
		log.InfoContext(ctx, "resolution served from cache")
		return record, nil
	}

	outcome := s.fanOut(ctx, scientificName, missing, log)

	if record == nil {
		record, err = domain.NewSpeciesRecord(scientificName)
		if err != nil {
			return nil, err
		}
	}
	for loc, sheet := range outcome.sheets {
		record.SetDetail(loc, sheet)
	}

	// A record with zero locale sheets is never written; discovered images
	// die with the round.
	if !record.HasAnyDetail() {
		log.WarnContext(ctx, "all locales failed, nothing persisted")
		return nil, ErrAllLocalesFailed
	}

	record.SetImages(outcome.images)

	if err := s.store.Upsert(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to persist species record: %w", err)
	}
	log.InfoContext(ctx, "species record persisted",
		slog.Int("locale_count", len(record.Details)),
		slog.Int("image_count", len(record.Images)))

	s.notifyWebhook(ctx, record, log)
	return record, nil
}

// workSet describes what one resolution round still has to fetch.
type workSet struct {
	locales []domain.Locale
	images  bool
}

func (w workSet) any() bool { return len(w.locales) > 0 || w.images }

// missingWork decides what a resolution round still has to fetch. A cached
// sheet for the requested locale serves as-is, with no provider traffic at
// all. Only rounds that must generate anyway fill in every absent locale,
// so one miss completes the cache for both languages.
func (s *ResolutionService) missingWork(record *domain.SpeciesRecord, requested domain.Locale) workSet {
	if record == nil {
		return workSet{locales: domain.SupportedLocales(), images: true}
	}
	if record.Detail(requested) != nil {
		return workSet{}
	}
	return workSet{
		locales: record.MissingLocales(),
		images:  len(record.Images) == 0,
	}
}

// fanOutcome carries the merged results of one fan-out round.
type fanOutcome struct {
	sheets map[domain.Locale]*domain.DetailSheet
	images []string
}

// fanOut runs every missing piece concurrently and joins them all. A
// failing branch never cancels its siblings; it is logged and its slot
// stays empty.
func (s *ResolutionService) fanOut(
	ctx context.Context,
	scientificName string,
	missing workSet,
	log *slog.Logger,
) fanOutcome {
	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		outcome = fanOutcome{sheets: make(map[domain.Locale]*domain.DetailSheet, len(missing.locales))}
	)

	for _, locale := range missing.locales {
		wg.Add(1)
		go func(locale domain.Locale) {
			defer wg.Done()
			sheet, err := s.generator.GenerateDetails(ctx, scientificName, locale)
			if err != nil {
				log.WarnContext(ctx, "locale generation failed",
					slog.String("failed_locale", string(locale)),
					slog.String("error", err.Error()))
				return
			}
			mu.Lock()
			outcome.sheets[locale] = sheet
			mu.Unlock()
		}(locale)
	}

	if missing.images {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := s.aggregator.Aggregate(ctx, scientificName)
			if err != nil {
				log.WarnContext(ctx, "image aggregation failed",
					slog.String("error", err.Error()))
				return
			}
			mu.Lock()
			outcome.images = result.URLs
			mu.Unlock()
		}()
	}

	wg.Wait()
	return outcome
}

// notifyWebhook enqueues a best-effort persistence notification. A full
// queue or missing configuration never affects the caller.
func (s *ResolutionService) notifyWebhook(ctx context.Context, record *domain.SpeciesRecord, log *slog.Logger) {
	if s.tasks == nil || s.webhookCfg.URL == "" {
		return
	}

	locales := make([]string, 0, len(record.Details))
	for _, locale := range domain.SupportedLocales() {
		if record.Detail(locale) != nil {
			locales = append(locales, string(locale))
		}
	}

	notifyTask := task.NewWebhookNotifyTask(s.logger, s.webhookCfg, task.WebhookPayload{
		Species:    record.ScientificName,
		Locales:    locales,
		ImageCount: len(record.Images),
	})
	if err := s.tasks.Submit(notifyTask); err != nil {
		log.WarnContext(ctx, "failed to enqueue webhook notification",
			slog.String("error", err.Error()))
	}
}
