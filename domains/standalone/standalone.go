package standalone

import (
	"context"
	"time"
)

type SourceType string

const (
	SourceText SourceType = "text"
	SourceURL  SourceType = "url"
)

type StandalonePost struct {
	ID            string     `json:"id"`
	SourceType    SourceType `json:"source_type"`
	SourceContent string     `json:"source_content"`
	Platform      string     `json:"platform"`
	Content       string     `json:"content"`
	ImageURL      string     `json:"image_url,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	Used          bool       `json:"used"`
}

// GeneratePostsRequest drafts posts straight from raw text or from a
// previously scraped URL source, without going through an episode.
type GeneratePostsRequest struct {
	SourceType    string `json:"source_type" form:"source_type"`
	SourceContent string `json:"source_content" form:"source_content"`
	Platform      string `json:"platform" form:"platform"`
	Count         int    `json:"count" form:"count"`
}

type UpdatePostRequest struct {
	Content  string `json:"content"`
	ImageURL string `json:"image_url"`
}

type IStandaloneUsecase interface {
	Generate(ctx context.Context, request GeneratePostsRequest) ([]StandalonePost, error)
	List(ctx context.Context, platform string, unusedOnly bool) ([]StandalonePost, error)
	Get(ctx context.Context, id string) (StandalonePost, error)
	Update(ctx context.Context, id string, request UpdatePostRequest) (StandalonePost, error)
	MarkUsed(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}
