package socialpost

import (
	"context"
	"time"
)

type SocialPost struct {
	ID        string    `json:"id"`
	ArticleID string    `json:"article_id"`
	Platform  string    `json:"platform"`
	Content   string    `json:"content"`
	ImageURL  string    `json:"image_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Used      bool      `json:"used"`
}

type GeneratePostsRequest struct {
	ArticleID string `json:"article_id" form:"article_id"`
	Platform  string `json:"platform" form:"platform"`
	Count     int    `json:"count" form:"count"`
}

type UpdatePostRequest struct {
	Content  string `json:"content"`
	ImageURL string `json:"image_url"`
}

type ISocialPostUsecase interface {
	Generate(ctx context.Context, request GeneratePostsRequest) ([]SocialPost, error)
	List(ctx context.Context, articleID string, unusedOnly bool) ([]SocialPost, error)
	Get(ctx context.Context, id string) (SocialPost, error)
	Update(ctx context.Context, id string, request UpdatePostRequest) (SocialPost, error)
	MarkUsed(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}
