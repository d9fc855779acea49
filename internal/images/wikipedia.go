package images

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/antonholmquist/jason"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/verdantlabs/flora-api/internal/config"
)

const commonsFilePathBase = "https://commons.wikimedia.org/wiki/Special:FilePath/"

// usableImageExtensions filters the page image listing down to photographic
// formats; SVG maps, locator dots and audio files are skipped.
var usableImageExtensions = []string{".jpg", ".jpeg", ".png"}

// WikipediaProvider is the encyclopedia fallback. It walks three sources in
// order until the image cap is reached: the article's lead thumbnail, the
// article's embedded image files, and the species' Wikidata P18 claim.
type WikipediaProvider struct {
	logger       *slog.Logger
	httpClient   *http.Client
	limiter      *rate.Limiter
	wikiBaseURL  string
	dataBaseURL  string
	maxImages    int
	searchLocale string
}

// NewWikipediaProvider creates the encyclopedia fallback provider.
func NewWikipediaProvider(logger *slog.Logger, cfg config.ImagesConfig) *WikipediaProvider {
	return &WikipediaProvider{
		logger:       logger.With(slog.String("provider", SourceWikipedia)),
		httpClient:   newHTTPClient(cfg.TimeoutSeconds),
		limiter:      rate.NewLimiter(rate.Limit(5), 5),
		wikiBaseURL:  cfg.WikipediaBaseURL,
		dataBaseURL:  cfg.WikidataBaseURL,
		maxImages:    cfg.MaxImages,
		searchLocale: "fr",
	}
}

func (p *WikipediaProvider) Name() string { return SourceWikipedia }

// Fetch accumulates URLs from the three encyclopedia sources. Each step is
// independent: a failing step is logged and skipped, never fatal.
func (p *WikipediaProvider) Fetch(ctx context.Context, scientificName string) ([]string, error) {
	reqID := uuid.New().String()
	log := p.logger.With(
		slog.String("request_id", reqID),
		slog.String("scientific_name", scientificName))

	var urls []string

	if thumb, err := p.fetchLeadThumbnail(ctx, scientificName); err != nil {
		log.WarnContext(ctx, "lead thumbnail fetch failed", slog.String("error", err.Error()))
	} else if thumb != "" {
		urls = append(urls, thumb)
	}

	if remaining := p.maxImages - len(urls); remaining > 0 {
		pageImages, err := p.fetchPageImages(ctx, scientificName, remaining)
		if err != nil {
			log.WarnContext(ctx, "page image listing failed", slog.String("error", err.Error()))
		} else {
			urls = dedupeURLs(append(urls, pageImages...), p.maxImages)
		}
	}

	if len(urls) < p.maxImages {
		claim, err := p.fetchWikidataImage(ctx, scientificName)
		if err != nil {
			log.WarnContext(ctx, "wikidata claim fetch failed", slog.String("error", err.Error()))
		} else if claim != "" {
			urls = append(urls, claim)
		}
	}

	urls = dedupeURLs(urls, p.maxImages)
	log.DebugContext(ctx, "encyclopedia fetch complete", slog.Int("url_count", len(urls)))
	return urls, nil
}

// fetchLeadThumbnail queries the pageimages prop for the article's lead
// thumbnail. Missing article or missing thumbnail both yield "".
func (p *WikipediaProvider) fetchLeadThumbnail(ctx context.Context, title string) (string, error) {
	doc, err := p.queryWiki(ctx, url.Values{
		"action":        {"query"},
		"prop":          {"pageimages"},
		"piprop":        {"thumbnail"},
		"pithumbsize":   {"500"},
		"titles":        {title},
		"format":        {"json"},
		"formatversion": {"2"},
	})
	if err != nil {
		return "", err
	}

	pages, err := doc.GetObjectArray("query", "pages")
	if err != nil || len(pages) == 0 {
		return "", nil
	}
	source, err := pages[0].GetString("thumbnail", "source")
	if err != nil {
		return "", nil
	}
	return source, nil
}

// fetchPageImages lists the files embedded in the article and resolves each
// photographic one to its direct URL, up to the caller's remaining image
// budget. The budget bounds the per-file imageinfo lookups, not just the
// final slice length.
func (p *WikipediaProvider) fetchPageImages(ctx context.Context, title string, limit int) ([]string, error) {
	doc, err := p.queryWiki(ctx, url.Values{
		"action":        {"query"},
		"prop":          {"images"},
		"imlimit":       {"20"},
		"titles":        {title},
		"format":        {"json"},
		"formatversion": {"2"},
	})
	if err != nil {
		return nil, err
	}

	pages, err := doc.GetObjectArray("query", "pages")
	if err != nil || len(pages) == 0 {
		return nil, nil
	}
	files, err := pages[0].GetObjectArray("images")
	if err != nil {
		return nil, nil
	}

	var urls []string
	for _, file := range files {
		if len(urls) >= limit {
			break
		}
		fileTitle, err := file.GetString("title")
		if err != nil || !hasUsableExtension(fileTitle) {
			continue
		}
		fileURL, err := p.resolveFileURL(ctx, fileTitle)
		if err != nil {
			p.logger.DebugContext(ctx, "file URL resolution failed",
				slog.String("file", fileTitle),
				slog.String("error", err.Error()))
			continue
		}
		if fileURL != "" {
			urls = append(urls, fileURL)
		}
	}
	return urls, nil
}

// resolveFileURL turns a "File:..." title into its direct upload URL via the
// imageinfo prop.
func (p *WikipediaProvider) resolveFileURL(ctx context.Context, fileTitle string) (string, error) {
	doc, err := p.queryWiki(ctx, url.Values{
		"action":        {"query"},
		"prop":          {"imageinfo"},
		"iiprop":        {"url"},
		"titles":        {fileTitle},
		"format":        {"json"},
		"formatversion": {"2"},
	})
	if err != nil {
		return "", err
	}

	pages, err := doc.GetObjectArray("query", "pages")
	if err != nil || len(pages) == 0 {
		return "", nil
	}
	infos, err := pages[0].GetObjectArray("imageinfo")
	if err != nil || len(infos) == 0 {
		return "", nil
	}
	return infos[0].GetString("url")
}

// fetchWikidataImage resolves the species entity and reads its P18 (image)
// claim, mapping the Commons filename to a stable Special:FilePath URL.
func (p *WikipediaProvider) fetchWikidataImage(ctx context.Context, scientificName string) (string, error) {
	doc, err := p.queryData(ctx, url.Values{
		"action":   {"wbsearchentities"},
		"search":   {scientificName},
		"language": {p.searchLocale},
		"limit":    {"1"},
		"format":   {"json"},
	})
	if err != nil {
		return "", err
	}
	entities, err := doc.GetObjectArray("search")
	if err != nil || len(entities) == 0 {
		return "", nil
	}
	entityID, err := entities[0].GetString("id")
	if err != nil || entityID == "" {
		return "", nil
	}

	claims, err := p.queryData(ctx, url.Values{
		"action":   {"wbgetclaims"},
		"entity":   {entityID},
		"property": {"P18"},
		"format":   {"json"},
	})
	if err != nil {
		return "", err
	}
	imageClaims, err := claims.GetObjectArray("claims", "P18")
	if err != nil || len(imageClaims) == 0 {
		return "", nil
	}
	fileName, err := imageClaims[0].GetString("mainsnak", "datavalue", "value")
	if err != nil || fileName == "" {
		return "", nil
	}
	return commonsFilePathBase + url.PathEscape(fileName), nil
}

func (p *WikipediaProvider) queryWiki(ctx context.Context, params url.Values) (*jason.Object, error) {
	return p.query(ctx, p.wikiBaseURL, params)
}

func (p *WikipediaProvider) queryData(ctx context.Context, params url.Values) (*jason.Object, error) {
	return p.query(ctx, p.dataBaseURL, params)
}

func (p *WikipediaProvider) query(ctx context.Context, baseURL string, params url.Values) (*jason.Object, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}
	body, err := httpGetJSON(ctx, p.httpClient, baseURL+"?"+params.Encode())
	if err != nil {
		return nil, err
	}
	doc, err := jason.NewObjectFromBytes(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse API response: %w", err)
	}
	return doc, nil
}

func hasUsableExtension(fileTitle string) bool {
	lower := strings.ToLower(fileTitle)
	for _, ext := range usableImageExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
