package webscrape

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	httpTimeout = 15 * time.Second
	userAgent   = "Mozilla/5.0 (compatible; PodInsights/1.0)"

	// maxBodyBytes caps how much HTML gets parsed, maxTextRunes caps the
	// extracted text so it fits in a generation prompt.
	maxBodyBytes = 5 << 20
	maxTextRunes = 8000
)

var httpClient = &http.Client{Timeout: httpTimeout}

var ErrNotHTML = errors.New("url did not return an html page")

// Page is the readable content extracted from a fetched URL.
type Page struct {
	Title       string
	Description string
	OGImage     string
	Text        string
}

// Fetch downloads the page and extracts OpenGraph metadata plus the main
// body text, with scripts, styles and site chrome stripped out.
func Fetch(ctx context.Context, pageURL string) (Page, error) {
	parsed, err := url.ParseRequestURI(pageURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return Page{}, fmt.Errorf("invalid url %q", pageURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return Page{}, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := httpClient.Do(req)
	if err != nil {
		return Page{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return Page{}, fmt.Errorf("fetch %s: status %d", pageURL, resp.StatusCode)
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !strings.Contains(contentType, "html") && !strings.Contains(contentType, "xml") {
		return Page{}, ErrNotHTML
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Page{}, err
	}

	page := Page{
		Title:       metaContent(doc, "og:title"),
		Description: metaContent(doc, "og:description"),
		OGImage:     metaContent(doc, "og:image"),
		Text:        bodyText(doc),
	}

	// Title ladder: og:title, then the <title> tag, then the host.
	if page.Title == "" {
		page.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	if page.Title == "" {
		page.Title = parsed.Host
	}
	if page.Description == "" {
		page.Description = strings.TrimSpace(doc.Find(`meta[name="description"]`).AttrOr("content", ""))
	}

	return page, nil
}

func metaContent(doc *goquery.Document, property string) string {
	return strings.TrimSpace(doc.Find(`meta[property="`+property+`"]`).AttrOr("content", ""))
}

// bodyText prefers the article or main element when the page has one,
// falling back to the whole body.
func bodyText(doc *goquery.Document) string {
	doc.Find("script, style, noscript, nav, header, footer, aside, form").Remove()

	for _, selector := range []string{"article", "main", "body"} {
		text := collapseWhitespace(doc.Find(selector).First().Text())
		if text != "" {
			return truncateRunes(text, maxTextRunes)
		}
	}
	return ""
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
