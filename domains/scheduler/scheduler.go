package scheduler

import (
	"context"
	"time"

	"github.com/l0lsec/PodInsights/scheduler/domain/queue"
	"github.com/l0lsec/PodInsights/scheduler/domain/slots"
)

type ISchedulerUsecase interface {
	// Queue
	Enqueue(ctx context.Context, request EnqueueRequest) (queue.ScheduledPost, error)
	Get(ctx context.Context, id string) (queue.ScheduledPost, error)
	List(ctx context.Context, status queue.Status, platform string) ([]queue.ScheduledPost, error)
	PreviewNextSlot(ctx context.Context, platform string) (time.Time, error)
	UpdateTime(ctx context.Context, id string, scheduledFor time.Time) (bool, error)
	Cancel(ctx context.Context, id string) (bool, error)
	CancelBySource(ctx context.Context, request CancelBySourceRequest) (bool, error)
	Retry(ctx context.Context, id string) (queue.ScheduledPost, error)
	PostNow(ctx context.Context, id string) (queue.ScheduledPost, error)
	Delete(ctx context.Context, id string) error
	DeleteBulk(ctx context.Context, ids []string) (int64, error)
	ClearPending(ctx context.Context) (int64, error)
	Redistribute(ctx context.Context, platform string) (int, error)
	Reorder(ctx context.Context, postIDs []string) (bool, error)
	MoveToPosition(ctx context.Context, postIDs []string, position queue.Position) (bool, error)

	// Slot configuration
	ListSlots(ctx context.Context) ([]slots.TimeSlot, error)
	AddSlot(ctx context.Context, request SlotRequest) (slots.TimeSlot, error)
	UpdateSlot(ctx context.Context, id string, update slots.SlotUpdate) error
	DeleteSlot(ctx context.Context, id string) error

	// Platform limits
	GetLimit(ctx context.Context, platform string) (slots.PlatformLimit, error)
	SetLimit(ctx context.Context, platform string, maxPostsPerDay int) (slots.PlatformLimit, error)
	ListLimits(ctx context.Context) ([]slots.PlatformLimit, error)

	// Settings
	DefaultPlatform(ctx context.Context) (string, error)
	SetDefaultPlatform(ctx context.Context, platform string) error
	EnsureDefaults(ctx context.Context) error
}

type EnqueueRequest struct {
	PostType  string `json:"post_type" form:"post_type"` // social or standalone
	ContentID string `json:"content_id" form:"content_id"`
	ArticleID string `json:"article_id,omitempty" form:"article_id"`
	Platform  string `json:"platform,omitempty" form:"platform"` // empty uses the default platform
	// ScheduledFor accepts RFC3339 or a bare local timestamp; empty means
	// "next available slot".
	ScheduledFor string `json:"scheduled_for,omitempty" form:"scheduled_for"`
}

type CancelBySourceRequest struct {
	PostType  string `json:"post_type" form:"post_type"`
	ContentID string `json:"content_id" form:"content_id"`
	Platform  string `json:"platform" form:"platform"`
}

type SlotRequest struct {
	DayOfWeek int    `json:"day_of_week" form:"day_of_week"` // -1 for every day
	TimeOfDay string `json:"time_of_day" form:"time_of_day"` // HH:MM
	Enabled   *bool  `json:"enabled,omitempty" form:"enabled"`
}

type UpdateTimeRequest struct {
	// ScheduledFor accepts RFC3339 or a bare local timestamp.
	ScheduledFor string `json:"scheduled_for" form:"scheduled_for"`
}

type ReorderRequest struct {
	PostIDs []string `json:"post_ids"`
}

type MoveRequest struct {
	PostIDs  []string `json:"post_ids"`
	Position string   `json:"position"` // top or bottom
}

type BulkDeleteRequest struct {
	PostIDs []string `json:"post_ids"`
}

type LimitRequest struct {
	MaxPostsPerDay int `json:"max_posts_per_day" form:"max_posts_per_day"`
}

type DefaultPlatformRequest struct {
	Platform string `json:"platform" form:"platform"`
}
