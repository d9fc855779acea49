package images

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubProvider is a scripted Provider that counts its invocations.
type stubProvider struct {
	name  string
	urls  []string
	err   error
	calls int
}

func (s *stubProvider) Fetch(context.Context, string) ([]string, error) {
	s.calls++
	return s.urls, s.err
}

func (s *stubProvider) Name() string { return s.name }

func newTestAggregator(primary, fallback Provider) *Aggregator {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewAggregatorWithProviders(logger, primary, fallback, time.Minute)
}

func TestAggregatePrimaryWinsOutright(t *testing.T) {
	t.Parallel()

	primary := &stubProvider{name: SourceTrefle, urls: []string{"https://img.test/a.jpg"}}
	fallback := &stubProvider{name: SourceWikipedia, urls: []string{"https://img.test/b.jpg"}}
	agg := newTestAggregator(primary, fallback)

	result, err := agg.Aggregate(context.Background(), "Rosa canina")
	require.NoError(t, err)
	assert.Equal(t, SourceTrefle, result.Source)
	assert.Equal(t, []string{"https://img.test/a.jpg"}, result.URLs)
	assert.Zero(t, fallback.calls, "fallback never runs when the primary yields")
}

func TestAggregateFallbackRunsWhenPrimaryEmpty(t *testing.T) {
	t.Parallel()

	primary := &stubProvider{name: SourceTrefle}
	fallback := &stubProvider{name: SourceWikipedia, urls: []string{"https://img.test/b.jpg"}}
	agg := newTestAggregator(primary, fallback)

	result, err := agg.Aggregate(context.Background(), "Rosa canina")
	require.NoError(t, err)
	assert.Equal(t, SourceWikipedia, result.Source)
	assert.Equal(t, []string{"https://img.test/b.jpg"}, result.URLs)
}

func TestAggregateTotalFailureYieldsNone(t *testing.T) {
	t.Parallel()

	primary := &stubProvider{name: SourceTrefle, err: errors.New("boom")}
	fallback := &stubProvider{name: SourceWikipedia, err: errors.New("boom")}
	agg := newTestAggregator(primary, fallback)

	result, err := agg.Aggregate(context.Background(), "Rosa canina")
	require.NoError(t, err, "provider failure never fails the aggregation")
	assert.Equal(t, SourceNone, result.Source)
	assert.Empty(t, result.URLs)
}

func TestAggregateCachesResults(t *testing.T) {
	t.Parallel()

	primary := &stubProvider{name: SourceTrefle, urls: []string{"https://img.test/a.jpg"}}
	agg := newTestAggregator(primary, &stubProvider{name: SourceWikipedia})

	_, err := agg.Aggregate(context.Background(), "Rosa canina")
	require.NoError(t, err)
	_, err = agg.Aggregate(context.Background(), "rosa canina")
	require.NoError(t, err)

	assert.Equal(t, 1, primary.calls, "case-insensitive cache absorbs the second lookup")
}

func TestAggregateCachesEmptyResults(t *testing.T) {
	t.Parallel()

	primary := &stubProvider{name: SourceTrefle}
	fallback := &stubProvider{name: SourceWikipedia}
	agg := newTestAggregator(primary, fallback)

	for range 3 {
		_, err := agg.Aggregate(context.Background(), "Plantus imaginarius")
		require.NoError(t, err)
	}

	assert.Equal(t, 1, primary.calls, "negative results are cached too")
	assert.Equal(t, 1, fallback.calls)
}

func TestAggregateEmptyName(t *testing.T) {
	t.Parallel()

	agg := newTestAggregator(&stubProvider{name: SourceTrefle}, &stubProvider{name: SourceWikipedia})

	_, err := agg.Aggregate(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptySpeciesName)
}
