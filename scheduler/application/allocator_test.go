package application_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/l0lsec/PodInsights/scheduler/application"
	"github.com/l0lsec/PodInsights/scheduler/domain/common"
	"github.com/l0lsec/PodInsights/scheduler/domain/queue"
	"github.com/l0lsec/PodInsights/scheduler/domain/slots"
	"github.com/l0lsec/PodInsights/scheduler/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Monday 2026-03-02 10:00 UTC anchors every scenario in this package.
var monday = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

func newTestRepo(t *testing.T) *repository.SchedulerGormRepository {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	repo := repository.NewSchedulerGormRepository(db)
	if err := repo.Init(context.Background()); err != nil {
		t.Fatalf("failed to init schema: %v", err)
	}
	return repo
}

func addSlot(t *testing.T, repo *repository.SchedulerGormRepository, day int, at string) {
	t.Helper()

	err := repo.AddSlot(context.Background(), slots.TimeSlot{
		ID:        uuid.NewString(),
		DayOfWeek: day,
		TimeOfDay: at,
		Enabled:   true,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("failed to add slot: %v", err)
	}
}

func addPendingAt(t *testing.T, repo *repository.SchedulerGormRepository, platform string, at, created time.Time) queue.ScheduledPost {
	t.Helper()

	post := queue.ScheduledPost{
		ID:           uuid.NewString(),
		Content:      queue.ContentRef{Type: queue.PostTypeSocial, ID: uuid.NewString()},
		Platform:     platform,
		ScheduledFor: at,
		Status:       queue.StatusPending,
		CreatedAt:    created,
	}
	if err := repo.CreatePost(context.Background(), post); err != nil {
		t.Fatalf("failed to create post: %v", err)
	}
	return post
}

func TestNextAvailableSlotPicksUpcomingSlotSameDay(t *testing.T) {
	repo := newTestRepo(t)
	addSlot(t, repo, slots.AllDays, "09:00")
	addSlot(t, repo, slots.AllDays, "12:00")
	addSlot(t, repo, slots.AllDays, "17:00")

	allocator := application.NewSlotAllocator(repo, common.FixedClock{Time: monday})

	got, err := allocator.NextAvailableSlot(context.Background(), "linkedin")
	if err != nil {
		t.Fatalf("NextAvailableSlot() unexpected error: %v", err)
	}
	want := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("NextAvailableSlot() = %v, want %v", got, want)
	}
}

func TestNextAvailableSlotSkipsOccupiedTimes(t *testing.T) {
	repo := newTestRepo(t)
	addSlot(t, repo, slots.AllDays, "09:00")
	addSlot(t, repo, slots.AllDays, "12:00")
	addSlot(t, repo, slots.AllDays, "17:00")
	addPendingAt(t, repo, "linkedin", time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC), monday)

	allocator := application.NewSlotAllocator(repo, common.FixedClock{Time: monday})

	got, err := allocator.NextAvailableSlot(context.Background(), "linkedin")
	if err != nil {
		t.Fatalf("NextAvailableSlot() unexpected error: %v", err)
	}
	want := time.Date(2026, 3, 2, 17, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("NextAvailableSlot() = %v, want %v", got, want)
	}
}

func TestNextAvailableSlotIgnoresOtherPlatforms(t *testing.T) {
	repo := newTestRepo(t)
	addSlot(t, repo, slots.AllDays, "12:00")
	addPendingAt(t, repo, "threads", time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC), monday)

	allocator := application.NewSlotAllocator(repo, common.FixedClock{Time: monday})

	got, err := allocator.NextAvailableSlot(context.Background(), "linkedin")
	if err != nil {
		t.Fatalf("NextAvailableSlot() unexpected error: %v", err)
	}
	want := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("NextAvailableSlot() = %v, want %v; a threads post must not block linkedin", got, want)
	}
}

func TestNextAvailableSlotHonorsDailyLimit(t *testing.T) {
	repo := newTestRepo(t)
	addSlot(t, repo, slots.AllDays, "09:00")
	addSlot(t, repo, slots.AllDays, "12:00")
	addSlot(t, repo, slots.AllDays, "17:00")

	ctx := context.Background()
	if err := repo.SetLimit(ctx, slots.PlatformLimit{Platform: "linkedin", MaxPostsPerDay: 1}); err != nil {
		t.Fatalf("SetLimit() unexpected error: %v", err)
	}
	addPendingAt(t, repo, "linkedin", time.Date(2026, 3, 2, 17, 0, 0, 0, time.UTC), monday)

	allocator := application.NewSlotAllocator(repo, common.FixedClock{Time: monday})

	got, err := allocator.NextAvailableSlot(ctx, "linkedin")
	if err != nil {
		t.Fatalf("NextAvailableSlot() unexpected error: %v", err)
	}
	want := time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("NextAvailableSlot() = %v, want %v (next day once today is full)", got, want)
	}
}

func TestDailyCapacityCountsPostedRows(t *testing.T) {
	repo := newTestRepo(t)
	addSlot(t, repo, slots.AllDays, "12:00")
	addSlot(t, repo, slots.AllDays, "17:00")

	ctx := context.Background()
	if err := repo.SetLimit(ctx, slots.PlatformLimit{Platform: "linkedin", MaxPostsPerDay: 1}); err != nil {
		t.Fatalf("SetLimit() unexpected error: %v", err)
	}

	// A post already published this morning still consumes today's capacity.
	published := addPendingAt(t, repo, "linkedin", time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC), monday)
	if err := repo.UpdatePostStatus(ctx, published.ID, queue.StatusPosted, "urn:li:share:1", ""); err != nil {
		t.Fatalf("UpdatePostStatus() unexpected error: %v", err)
	}

	allocator := application.NewSlotAllocator(repo, common.FixedClock{Time: monday})

	got, err := allocator.NextAvailableSlot(ctx, "linkedin")
	if err != nil {
		t.Fatalf("NextAvailableSlot() unexpected error: %v", err)
	}
	want := time.Date(2026, 3, 3, 12, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("NextAvailableSlot() = %v, want %v (posted rows count against the day)", got, want)
	}
}

func TestNextAvailableSlotWeekdaySpecific(t *testing.T) {
	repo := newTestRepo(t)
	addSlot(t, repo, int(time.Wednesday), "08:30")

	allocator := application.NewSlotAllocator(repo, common.FixedClock{Time: monday})

	got, err := allocator.NextAvailableSlot(context.Background(), "linkedin")
	if err != nil {
		t.Fatalf("NextAvailableSlot() unexpected error: %v", err)
	}
	want := time.Date(2026, 3, 4, 8, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("NextAvailableSlot() = %v, want %v", got, want)
	}
}

func TestNextAvailableSlotRequiresStrictlyFutureCandidate(t *testing.T) {
	repo := newTestRepo(t)
	addSlot(t, repo, slots.AllDays, "12:00")

	noon := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	allocator := application.NewSlotAllocator(repo, common.FixedClock{Time: noon})

	got, err := allocator.NextAvailableSlot(context.Background(), "linkedin")
	if err != nil {
		t.Fatalf("NextAvailableSlot() unexpected error: %v", err)
	}
	want := time.Date(2026, 3, 3, 12, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("NextAvailableSlot() = %v, want %v (a slot at exactly now is not future)", got, want)
	}
}

func TestNextAvailableSlotNoSlotsConfigured(t *testing.T) {
	repo := newTestRepo(t)

	allocator := application.NewSlotAllocator(repo, common.FixedClock{Time: monday})

	_, err := allocator.NextAvailableSlot(context.Background(), "linkedin")
	if !errors.Is(err, common.ErrNoSlotsConfigured) {
		t.Fatalf("NextAvailableSlot() error = %v, want ErrNoSlotsConfigured", err)
	}
}

func TestNextAvailableSlotIgnoresDisabledSlots(t *testing.T) {
	repo := newTestRepo(t)
	err := repo.AddSlot(context.Background(), slots.TimeSlot{
		ID:        uuid.NewString(),
		DayOfWeek: slots.AllDays,
		TimeOfDay: "12:00",
		Enabled:   false,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("AddSlot() unexpected error: %v", err)
	}

	allocator := application.NewSlotAllocator(repo, common.FixedClock{Time: monday})

	_, err = allocator.NextAvailableSlot(context.Background(), "linkedin")
	if !errors.Is(err, common.ErrNoSlotsConfigured) {
		t.Fatalf("NextAvailableSlot() error = %v, want ErrNoSlotsConfigured when every slot is disabled", err)
	}
}

func TestNextAvailableSlotWindowExhausted(t *testing.T) {
	repo := newTestRepo(t)
	addSlot(t, repo, slots.AllDays, "09:00")

	ctx := context.Background()
	if err := repo.SetLimit(ctx, slots.PlatformLimit{Platform: "linkedin", MaxPostsPerDay: 1}); err != nil {
		t.Fatalf("SetLimit() unexpected error: %v", err)
	}
	for offset := 0; offset < 31; offset++ {
		day := monday.AddDate(0, 0, offset)
		at := time.Date(day.Year(), day.Month(), day.Day(), 9, 0, 0, 0, time.UTC)
		addPendingAt(t, repo, "linkedin", at, monday)
	}

	allocator := application.NewSlotAllocator(repo, common.FixedClock{Time: monday})

	_, err := allocator.NextAvailableSlot(ctx, "linkedin")
	if !errors.Is(err, common.ErrNoAvailableSlot) {
		t.Fatalf("NextAvailableSlot() error = %v, want ErrNoAvailableSlot", err)
	}
}
