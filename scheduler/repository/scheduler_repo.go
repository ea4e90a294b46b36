package repository

import (
	"context"
	"time"

	"github.com/l0lsec/PodInsights/scheduler/domain/queue"
	"github.com/l0lsec/PodInsights/scheduler/domain/slots"
)

type ISchedulerRepository interface {
	Init(ctx context.Context) error

	// Scheduled posts
	CreatePost(ctx context.Context, post queue.ScheduledPost) error
	GetPost(ctx context.Context, id string) (queue.ScheduledPost, error)
	ListPosts(ctx context.Context, status queue.Status, platform string) ([]queue.ScheduledPost, error)
	ListPending(ctx context.Context, platform string) ([]queue.ScheduledPost, error)
	ListDue(ctx context.Context, now time.Time) ([]queue.ScheduledPost, error)
	ListPostsForArticle(ctx context.Context, articleID string) ([]queue.ScheduledPost, error)
	UpdatePostTime(ctx context.Context, id string, scheduledFor time.Time) (bool, error)
	ParkPendingPosts(ctx context.Context, platform string, parkAt time.Time) (int64, error)
	UpdatePostStatus(ctx context.Context, id string, status queue.Status, externalRef, errorMessage string) error
	CancelPost(ctx context.Context, id string) (bool, error)
	CancelPostsBySource(ctx context.Context, ref queue.ContentRef, platform string) (bool, error)
	DeletePost(ctx context.Context, id string) error
	DeletePostsBulk(ctx context.Context, ids []string) (int64, error)
	ClearPendingPosts(ctx context.Context) (int64, error)
	CountForDay(ctx context.Context, platform string, dayStart, dayEnd time.Time) (int, error)

	// Time slots
	ListSlots(ctx context.Context) ([]slots.TimeSlot, error)
	ListEnabledSlots(ctx context.Context) ([]slots.TimeSlot, error)
	AddSlot(ctx context.Context, slot slots.TimeSlot) error
	UpdateSlot(ctx context.Context, id string, update slots.SlotUpdate) error
	DeleteSlot(ctx context.Context, id string) error

	// Platform daily limits
	GetLimit(ctx context.Context, platform string) (slots.PlatformLimit, error)
	SetLimit(ctx context.Context, limit slots.PlatformLimit) error
	ListLimits(ctx context.Context) ([]slots.PlatformLimit, error)

	// Schedule settings (key-value)
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
}
