package feed

import (
	"context"
	"time"
)

type Feed struct {
	ID          string     `json:"id"`
	URL         string     `json:"url"`
	Title       string     `json:"title"`
	FeedType    string     `json:"feed_type"`
	LastPost    *time.Time `json:"last_post,omitempty"`
	ItemCount   int        `json:"item_count"`
	LastChecked *time.Time `json:"last_checked,omitempty"`
}

type AddFeedRequest struct {
	URL string `json:"url" form:"url"`
}

type BulkDeleteRequest struct {
	FeedIDs []string `json:"feed_ids"`
}

type IFeedUsecase interface {
	Add(ctx context.Context, request AddFeedRequest) (Feed, error)
	List(ctx context.Context) ([]Feed, error)
	Get(ctx context.Context, id string) (Feed, error)
	Refresh(ctx context.Context, id string) (Feed, error)
	Delete(ctx context.Context, id string) error
	DeleteBulk(ctx context.Context, ids []string) (int64, error)
}
