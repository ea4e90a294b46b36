package webscrape

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func serveHTML(t *testing.T, html string) {
	t.Helper()
	origClient := httpClient
	t.Cleanup(func() { httpClient = origClient })

	httpClient = &http.Client{
		Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: http.StatusOK,
				Header:     http.Header{"Content-Type": []string{"text/html; charset=utf-8"}},
				Body:       io.NopCloser(bytes.NewReader([]byte(html))),
			}, nil
		}),
	}
}

func TestFetchExtractsOpenGraphMetadata(t *testing.T) {
	serveHTML(t, `<html><head>
		<title>Fallback Title</title>
		<meta property="og:title" content="Shipping Faster">
		<meta property="og:description" content="How we cut release time in half">
		<meta property="og:image" content="https://cdn.example.com/cover.png">
	</head><body><article>Release trains used to take six weeks.</article></body></html>`)

	page, err := Fetch(context.Background(), "https://blog.example.com/shipping")
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}

	if page.Title != "Shipping Faster" {
		t.Errorf("Title = %q, want og:title", page.Title)
	}
	if page.Description != "How we cut release time in half" {
		t.Errorf("Description = %q", page.Description)
	}
	if page.OGImage != "https://cdn.example.com/cover.png" {
		t.Errorf("OGImage = %q", page.OGImage)
	}
	if !strings.Contains(page.Text, "Release trains") {
		t.Errorf("Text = %q, want article body", page.Text)
	}
}

func TestFetchTitleFallsBackToTitleTag(t *testing.T) {
	serveHTML(t, `<html><head><title>  Plain Page  </title></head><body><p>hello</p></body></html>`)

	page, err := Fetch(context.Background(), "https://example.com/plain")
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if page.Title != "Plain Page" {
		t.Errorf("Title = %q, want trimmed title tag", page.Title)
	}
}

func TestFetchTitleFallsBackToHost(t *testing.T) {
	serveHTML(t, `<html><head></head><body><p>no title anywhere</p></body></html>`)

	page, err := Fetch(context.Background(), "https://bare.example.com/post")
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if page.Title != "bare.example.com" {
		t.Errorf("Title = %q, want host fallback", page.Title)
	}
}

func TestFetchStripsChromeAndCollapsesWhitespace(t *testing.T) {
	serveHTML(t, `<html><body>
		<nav>Home About</nav>
		<script>var tracking = true;</script>
		<article>
			First    paragraph.

			Second paragraph.
		</article>
		<footer>All rights reserved</footer>
	</body></html>`)

	page, err := Fetch(context.Background(), "https://example.com/a")
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}

	if page.Text != "First paragraph. Second paragraph." {
		t.Errorf("Text = %q", page.Text)
	}
}

func TestFetchRejectsNonHTTPURL(t *testing.T) {
	if _, err := Fetch(context.Background(), "ftp://example.com/feed"); err == nil {
		t.Fatal("expected error for non-http scheme")
	}
	if _, err := Fetch(context.Background(), "not a url"); err == nil {
		t.Fatal("expected error for garbage input")
	}
}

func TestFetchRejectsNonHTMLContentType(t *testing.T) {
	origClient := httpClient
	t.Cleanup(func() { httpClient = origClient })

	httpClient = &http.Client{
		Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: http.StatusOK,
				Header:     http.Header{"Content-Type": []string{"application/pdf"}},
				Body:       io.NopCloser(bytes.NewReader([]byte("%PDF-1.4"))),
			}, nil
		}),
	}

	_, err := Fetch(context.Background(), "https://example.com/whitepaper.pdf")
	if err != ErrNotHTML {
		t.Fatalf("err = %v, want ErrNotHTML", err)
	}
}
