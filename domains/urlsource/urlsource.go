package urlsource

import (
	"context"
	"time"
)

type URLSource struct {
	ID          string     `json:"id"`
	URL         string     `json:"url"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Content     string     `json:"content"`
	OGImage     string     `json:"og_image,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	LastUsedAt  *time.Time `json:"last_used_at,omitempty"`
}

type ScrapeRequest struct {
	URL string `json:"url" form:"url"`
}

type IURLSourceUsecase interface {
	// Scrape fetches the page, extracts OpenGraph metadata and body text,
	// and upserts by URL so re-scraping refreshes the stored source.
	Scrape(ctx context.Context, request ScrapeRequest) (URLSource, error)
	List(ctx context.Context) ([]URLSource, error)
	Get(ctx context.Context, id string) (URLSource, error)
	Delete(ctx context.Context, id string) error
}
