package stockimages

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	coreconfig "github.com/l0lsec/PodInsights/core/config"
	"github.com/sirupsen/logrus"
)

const httpTimeout = 15 * time.Second

var httpClient = &http.Client{Timeout: httpTimeout}

var ErrNoProviders = errors.New("no stock image provider configured")

// Image is one search hit, normalized across providers.
type Image struct {
	URL          string
	ThumbnailURL string
	Provider     string
	Credit       string
}

// Searcher queries whichever stock photo APIs have keys configured,
// in a fixed preference order: Unsplash, then Pexels, then Pixabay.
type Searcher struct {
	unsplashKey string
	pexelsKey   string
	pixabayKey  string
}

func NewSearcher(cfg coreconfig.StockImagesConfig) *Searcher {
	return &Searcher{
		unsplashKey: cfg.UnsplashAccessKey,
		pexelsKey:   cfg.PexelsAPIKey,
		pixabayKey:  cfg.PixabayAPIKey,
	}
}

func (s *Searcher) Configured() bool {
	return s.unsplashKey != "" || s.pexelsKey != "" || s.pixabayKey != ""
}

// Search walks the provider chain until one returns results. A provider
// that errors or comes back empty just hands off to the next one.
func (s *Searcher) Search(ctx context.Context, query string, limit int) ([]Image, error) {
	if !s.Configured() {
		return nil, ErrNoProviders
	}
	if limit <= 0 {
		limit = 10
	}

	if s.unsplashKey != "" {
		images, err := s.searchUnsplash(ctx, query, limit)
		if err != nil {
			logrus.WithError(err).Warn("[STOCK] Unsplash search failed, trying next provider")
		} else if len(images) > 0 {
			return images, nil
		}
	}

	if s.pexelsKey != "" {
		images, err := s.searchPexels(ctx, query, limit)
		if err != nil {
			logrus.WithError(err).Warn("[STOCK] Pexels search failed, trying next provider")
		} else if len(images) > 0 {
			return images, nil
		}
	}

	if s.pixabayKey != "" {
		images, err := s.searchPixabay(ctx, query, limit)
		if err != nil {
			logrus.WithError(err).Warn("[STOCK] Pixabay search failed")
		} else if len(images) > 0 {
			return images, nil
		}
	}

	return []Image{}, nil
}

func (s *Searcher) searchUnsplash(ctx context.Context, query string, limit int) ([]Image, error) {
	endpoint := fmt.Sprintf("https://api.unsplash.com/search/photos?query=%s&per_page=%d",
		url.QueryEscape(query), limit)

	var body struct {
		Results []struct {
			URLs struct {
				Regular string `json:"regular"`
				Thumb   string `json:"thumb"`
			} `json:"urls"`
			User struct {
				Name string `json:"name"`
			} `json:"user"`
		} `json:"results"`
	}
	headers := map[string]string{"Authorization": "Client-ID " + s.unsplashKey}
	if err := getJSON(ctx, endpoint, headers, &body); err != nil {
		return nil, err
	}

	images := make([]Image, 0, len(body.Results))
	for _, r := range body.Results {
		images = append(images, Image{
			URL:          r.URLs.Regular,
			ThumbnailURL: r.URLs.Thumb,
			Provider:     "unsplash",
			Credit:       r.User.Name,
		})
	}
	return images, nil
}

func (s *Searcher) searchPexels(ctx context.Context, query string, limit int) ([]Image, error) {
	endpoint := fmt.Sprintf("https://api.pexels.com/v1/search?query=%s&per_page=%d",
		url.QueryEscape(query), limit)

	var body struct {
		Photos []struct {
			Src struct {
				Large string `json:"large"`
				Tiny  string `json:"tiny"`
			} `json:"src"`
			Photographer string `json:"photographer"`
		} `json:"photos"`
	}
	headers := map[string]string{"Authorization": s.pexelsKey}
	if err := getJSON(ctx, endpoint, headers, &body); err != nil {
		return nil, err
	}

	images := make([]Image, 0, len(body.Photos))
	for _, p := range body.Photos {
		images = append(images, Image{
			URL:          p.Src.Large,
			ThumbnailURL: p.Src.Tiny,
			Provider:     "pexels",
			Credit:       p.Photographer,
		})
	}
	return images, nil
}

func (s *Searcher) searchPixabay(ctx context.Context, query string, limit int) ([]Image, error) {
	endpoint := fmt.Sprintf("https://pixabay.com/api/?key=%s&q=%s&image_type=photo&per_page=%d",
		url.QueryEscape(s.pixabayKey), url.QueryEscape(query), limit)

	var body struct {
		Hits []struct {
			LargeImageURL string `json:"largeImageURL"`
			PreviewURL    string `json:"previewURL"`
			User          string `json:"user"`
		} `json:"hits"`
	}
	if err := getJSON(ctx, endpoint, nil, &body); err != nil {
		return nil, err
	}

	images := make([]Image, 0, len(body.Hits))
	for _, h := range body.Hits {
		images = append(images, Image{
			URL:          h.LargeImageURL,
			ThumbnailURL: h.PreviewURL,
			Provider:     "pixabay",
			Credit:       h.User,
		})
	}
	return images, nil
}

func getJSON(ctx context.Context, endpoint string, headers map[string]string, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(b))
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}

var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "this": {}, "that": {},
	"from": {}, "your": {}, "about": {}, "into": {}, "what": {}, "when": {},
	"have": {}, "will": {}, "just": {}, "more": {}, "they": {}, "their": {},
	"episode": {}, "podcast": {}, "listen": {}, "check": {},
}

// ExtractKeywords distills post text into a short search query. Hashtags
// win when present; otherwise the first few significant words do.
func ExtractKeywords(text string) string {
	var hashtags []string
	for _, word := range strings.Fields(text) {
		if strings.HasPrefix(word, "#") && len(word) > 1 {
			tag := strings.TrimFunc(word[1:], func(r rune) bool {
				return !isWordRune(r)
			})
			if tag != "" {
				hashtags = append(hashtags, strings.ToLower(tag))
			}
		}
		if len(hashtags) == 3 {
			break
		}
	}
	if len(hashtags) > 0 {
		return strings.Join(hashtags, " ")
	}

	var words []string
	for _, word := range strings.Fields(text) {
		cleaned := strings.ToLower(strings.TrimFunc(word, func(r rune) bool {
			return !isWordRune(r)
		}))
		if len(cleaned) < 4 {
			continue
		}
		if _, skip := stopwords[cleaned]; skip {
			continue
		}
		words = append(words, cleaned)
		if len(words) == 4 {
			break
		}
	}
	return strings.Join(words, " ")
}

func isWordRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
