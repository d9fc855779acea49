package images

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func newTestWikipedia(t *testing.T) *WikipediaProvider {
	t.Helper()
	client := &http.Client{}
	httpmock.ActivateNonDefault(client)
	t.Cleanup(httpmock.DeactivateAndReset)

	p := NewWikipediaProvider(slog.New(slog.NewTextHandler(io.Discard, nil)), testImagesConfig())
	p.httpClient = client
	p.limiter = rate.NewLimiter(rate.Inf, 1)
	return p
}

// registerWikiResponder routes MediaWiki API calls by their action/prop
// parameters, since every call shares one endpoint URL.
func registerWikiResponder(baseURL string, handler func(query map[string]string) (int, string)) {
	httpmock.RegisterResponder(http.MethodGet, `=~^`+baseURL,
		func(req *http.Request) (*http.Response, error) {
			params := map[string]string{}
			for key, values := range req.URL.Query() {
				if len(values) > 0 {
					params[key] = values[0]
				}
			}
			status, body := handler(params)
			return httpmock.NewStringResponse(status, body), nil
		})
}

func TestWikipediaFetchThumbnailAndPageImages(t *testing.T) {
	p := newTestWikipedia(t)

	registerWikiResponder(`https://wiki\.test/w/api\.php`, func(q map[string]string) (int, string) {
		switch q["prop"] {
		case "pageimages":
			return 200, `{"query": {"pages": [{"title": "Rosa canina",
				"thumbnail": {"source": "https://upload.test/thumb/rosa.jpg", "width": 500}}]}}`
		case "images":
			return 200, `{"query": {"pages": [{"title": "Rosa canina", "images": [
				{"title": "File:Rosa canina flower.jpg"},
				{"title": "File:Range map.svg"},
				{"title": "File:Rosa canina hips.png"}
			]}]}}`
		case "imageinfo":
			if q["titles"] == "File:Rosa canina flower.jpg" {
				return 200, `{"query": {"pages": [{"imageinfo": [{"url": "https://upload.test/rosa-flower.jpg"}]}]}}`
			}
			return 200, `{"query": {"pages": [{"imageinfo": [{"url": "https://upload.test/rosa-hips.png"}]}]}}`
		}
		return 404, `{}`
	})
	registerWikiResponder(`https://data\.test/w/api\.php`, func(q map[string]string) (int, string) {
		return 200, `{"search": []}`
	})

	urls, err := p.Fetch(context.Background(), "Rosa canina")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://upload.test/thumb/rosa.jpg",
		"https://upload.test/rosa-flower.jpg",
		"https://upload.test/rosa-hips.png",
	}, urls, "SVG files are filtered out of the page image listing")
}

func TestWikipediaFetchFallsThroughToWikidata(t *testing.T) {
	p := newTestWikipedia(t)

	registerWikiResponder(`https://wiki\.test/w/api\.php`, func(q map[string]string) (int, string) {
		// No article on the wiki at all.
		return 200, `{"query": {"pages": [{"title": "Plantus rarus", "missing": true}]}}`
	})
	registerWikiResponder(`https://data\.test/w/api\.php`, func(q map[string]string) (int, string) {
		switch q["action"] {
		case "wbsearchentities":
			return 200, `{"search": [{"id": "Q158754", "label": "Plantus rarus"}]}`
		case "wbgetclaims":
			return 200, `{"claims": {"P18": [{"mainsnak": {"datavalue": {"value": "Plantus rarus 01.jpg"}}}]}}`
		}
		return 404, `{}`
	})

	urls, err := p.Fetch(context.Background(), "Plantus rarus")
	require.NoError(t, err)
	require.Len(t, urls, 1)
	assert.Equal(t, commonsFilePathBase+"Plantus%20rarus%2001.jpg", urls[0])
}

func TestWikipediaFetchCapsAtMaxImages(t *testing.T) {
	p := newTestWikipedia(t)
	p.maxImages = 2

	registerWikiResponder(`https://wiki\.test/w/api\.php`, func(q map[string]string) (int, string) {
		switch q["prop"] {
		case "pageimages":
			return 200, `{"query": {"pages": [{"thumbnail": {"source": "https://upload.test/a.jpg"}}]}}`
		case "images":
			return 200, `{"query": {"pages": [{"images": [
				{"title": "File:b.jpg"}, {"title": "File:c.jpg"}, {"title": "File:d.jpg"}
			]}]}}`
		case "imageinfo":
			return 200, `{"query": {"pages": [{"imageinfo": [{"url": "https://upload.test/` + q["titles"][5:] + `"}]}]}}`
		}
		return 404, `{}`
	})

	urls, err := p.Fetch(context.Background(), "Rosa canina")
	require.NoError(t, err)
	assert.Len(t, urls, 2)
}

func TestWikipediaPageImageLookupsStopAtRemainingBudget(t *testing.T) {
	p := newTestWikipedia(t)
	p.maxImages = 2

	var infoCalls int
	registerWikiResponder(`https://wiki\.test/w/api\.php`, func(q map[string]string) (int, string) {
		switch q["prop"] {
		case "pageimages":
			return 200, `{"query": {"pages": [{"thumbnail": {"source": "https://upload.test/a.jpg"}}]}}`
		case "images":
			return 200, `{"query": {"pages": [{"images": [
				{"title": "File:b.jpg"}, {"title": "File:c.jpg"}, {"title": "File:d.jpg"}
			]}]}}`
		case "imageinfo":
			infoCalls++
			return 200, `{"query": {"pages": [{"imageinfo": [{"url": "https://upload.test/` + q["titles"][5:] + `"}]}]}}`
		}
		return 404, `{}`
	})

	urls, err := p.Fetch(context.Background(), "Rosa canina")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://upload.test/a.jpg", "https://upload.test/b.jpg"}, urls)
	assert.Equal(t, 1, infoCalls, "one slot left after the thumbnail means one file lookup")
}

func TestWikipediaFetchTotalOutageYieldsEmpty(t *testing.T) {
	p := newTestWikipedia(t)

	registerWikiResponder(`https://wiki\.test/w/api\.php`, func(q map[string]string) (int, string) {
		return 503, `upstream unavailable`
	})
	registerWikiResponder(`https://data\.test/w/api\.php`, func(q map[string]string) (int, string) {
		return 503, `upstream unavailable`
	})

	urls, err := p.Fetch(context.Background(), "Rosa canina")
	require.NoError(t, err, "total outage degrades to an empty result")
	assert.Empty(t, urls)
}

func TestHasUsableExtension(t *testing.T) {
	t.Parallel()

	assert.True(t, hasUsableExtension("File:Rosa.JPG"))
	assert.True(t, hasUsableExtension("File:Rosa.jpeg"))
	assert.True(t, hasUsableExtension("File:Rosa.png"))
	assert.False(t, hasUsableExtension("File:Range map.svg"))
	assert.False(t, hasUsableExtension("File:Birdsong.ogg"))
}
