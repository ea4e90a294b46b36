package episode

import (
	"context"
	"time"
)

type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusComplete   Status = "complete"
	StatusFailed     Status = "failed"
)

type Episode struct {
	ID          string     `json:"id"`
	FeedID      string     `json:"feed_id"`
	URL         string     `json:"url"`
	Title       string     `json:"title"`
	Transcript  string     `json:"transcript,omitempty"`
	Summary     string     `json:"summary,omitempty"`
	ActionItems string     `json:"action_items,omitempty"`
	Status      Status     `json:"status"`
	Error       string     `json:"error,omitempty"`
	Published   *time.Time `json:"published,omitempty"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
}

type IEpisodeUsecase interface {
	List(ctx context.Context, feedID string) ([]Episode, error)
	Get(ctx context.Context, id string) (Episode, error)
	// Process queues the transcribe/summarize pipeline on the worker pool
	// and returns immediately with the episode in its queued state.
	Process(ctx context.Context, id string) (Episode, error)
	Delete(ctx context.Context, id string) error
}
