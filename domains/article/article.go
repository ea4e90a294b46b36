package article

import (
	"context"
	"time"
)

type Article struct {
	ID        string    `json:"id"`
	EpisodeID string    `json:"episode_id"`
	Topic     string    `json:"topic"`
	Style     string    `json:"style"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type GenerateArticleRequest struct {
	EpisodeID string `json:"episode_id" form:"episode_id"`
	Topic     string `json:"topic" form:"topic"`
	Style     string `json:"style" form:"style"`
}

type UpdateArticleRequest struct {
	Topic   string `json:"topic"`
	Style   string `json:"style"`
	Content string `json:"content"`
}

type IArticleUsecase interface {
	Generate(ctx context.Context, request GenerateArticleRequest) (Article, error)
	List(ctx context.Context, episodeID string) ([]Article, error)
	Get(ctx context.Context, id string) (Article, error)
	Update(ctx context.Context, id string, request UpdateArticleRequest) (Article, error)
	Delete(ctx context.Context, id string) error
}
