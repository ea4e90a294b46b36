package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/l0lsec/PodInsights/scheduler/domain/common"
	"github.com/l0lsec/PodInsights/scheduler/domain/queue"
	"github.com/l0lsec/PodInsights/scheduler/domain/slots"
	"github.com/l0lsec/PodInsights/scheduler/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var anchor = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

func setupRepo(t *testing.T) *repository.SchedulerGormRepository {
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

func newPost(platform string, at time.Time, status queue.Status) queue.ScheduledPost {
	return queue.ScheduledPost{
		ID:           uuid.NewString(),
		Content:      queue.ContentRef{Type: queue.PostTypeSocial, ID: uuid.NewString()},
		Platform:     platform,
		ScheduledFor: at,
		Status:       status,
		CreatedAt:    anchor,
	}
}

func mustCreate(t *testing.T, repo *repository.SchedulerGormRepository, post queue.ScheduledPost) queue.ScheduledPost {
	t.Helper()
	if err := repo.CreatePost(context.Background(), post); err != nil {
		t.Fatalf("CreatePost() unexpected error: %v", err)
	}
	return post
}

func TestPostRoundTrip(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	post := queue.ScheduledPost{
		ID:           uuid.NewString(),
		Content:      queue.ContentRef{Type: queue.PostTypeStandalone, ID: "content-1"},
		ArticleID:    "article-1",
		Platform:     "threads",
		ScheduledFor: anchor.Add(2 * time.Hour),
		Status:       queue.StatusPending,
		CreatedAt:    anchor,
	}
	mustCreate(t, repo, post)

	got, err := repo.GetPost(ctx, post.ID)
	if err != nil {
		t.Fatalf("GetPost() unexpected error: %v", err)
	}
	if got.Content != post.Content {
		t.Errorf("content = %+v, want %+v", got.Content, post.Content)
	}
	if got.ArticleID != "article-1" {
		t.Errorf("article id = %q, want article-1", got.ArticleID)
	}
	if got.Platform != "threads" {
		t.Errorf("platform = %q, want threads", got.Platform)
	}
	if !got.ScheduledFor.Equal(post.ScheduledFor) {
		t.Errorf("scheduled for = %v, want %v", got.ScheduledFor, post.ScheduledFor)
	}
	if got.PostedAt != nil {
		t.Errorf("posted_at should start empty")
	}
}

func TestGetPostNotFound(t *testing.T) {
	repo := setupRepo(t)

	_, err := repo.GetPost(context.Background(), "missing")
	if !errors.Is(err, common.ErrPostNotFound) {
		t.Fatalf("GetPost() error = %v, want ErrPostNotFound", err)
	}
}

func TestUpdatePostStatusTransitions(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	post := mustCreate(t, repo, newPost("linkedin", anchor.Add(time.Hour), queue.StatusPending))

	if err := repo.UpdatePostStatus(ctx, post.ID, queue.StatusFailed, "", "network unreachable"); err != nil {
		t.Fatalf("UpdatePostStatus(failed) unexpected error: %v", err)
	}
	got, _ := repo.GetPost(ctx, post.ID)
	if got.Status != queue.StatusFailed || got.ErrorMessage != "network unreachable" {
		t.Fatalf("after failure: status=%s error=%q", got.Status, got.ErrorMessage)
	}

	// Moving back to pending wipes the stale failure state.
	if err := repo.UpdatePostStatus(ctx, post.ID, queue.StatusPending, "", ""); err != nil {
		t.Fatalf("UpdatePostStatus(pending) unexpected error: %v", err)
	}
	got, _ = repo.GetPost(ctx, post.ID)
	if got.Status != queue.StatusPending || got.ErrorMessage != "" {
		t.Fatalf("after retry: status=%s error=%q, want pending with no error", got.Status, got.ErrorMessage)
	}

	if err := repo.UpdatePostStatus(ctx, post.ID, queue.StatusPosted, "urn:li:share:5", ""); err != nil {
		t.Fatalf("UpdatePostStatus(posted) unexpected error: %v", err)
	}
	got, _ = repo.GetPost(ctx, post.ID)
	if got.Status != queue.StatusPosted || got.ExternalRef != "urn:li:share:5" {
		t.Fatalf("after publish: status=%s ref=%q", got.Status, got.ExternalRef)
	}
	if got.PostedAt == nil {
		t.Errorf("posted_at not stamped on publish")
	}
}

func TestUpdatePostTimeGuardsPendingOnly(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	pending := mustCreate(t, repo, newPost("linkedin", anchor.Add(time.Hour), queue.StatusPending))
	posted := mustCreate(t, repo, newPost("linkedin", anchor.Add(2*time.Hour), queue.StatusPending))
	if err := repo.UpdatePostStatus(ctx, posted.ID, queue.StatusPosted, "ref", ""); err != nil {
		t.Fatalf("UpdatePostStatus() unexpected error: %v", err)
	}

	target := anchor.Add(26 * time.Hour)
	ok, err := repo.UpdatePostTime(ctx, pending.ID, target)
	if err != nil || !ok {
		t.Fatalf("UpdatePostTime(pending) = %v, %v; want true, nil", ok, err)
	}
	got, _ := repo.GetPost(ctx, pending.ID)
	if !got.ScheduledFor.Equal(target) {
		t.Errorf("scheduled for = %v, want %v", got.ScheduledFor, target)
	}

	ok, err = repo.UpdatePostTime(ctx, posted.ID, target)
	if err != nil {
		t.Fatalf("UpdatePostTime(posted) unexpected error: %v", err)
	}
	if ok {
		t.Errorf("UpdatePostTime() moved a posted row")
	}
}

func TestListPostsFilters(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	a := mustCreate(t, repo, newPost("linkedin", anchor.Add(3*time.Hour), queue.StatusPending))
	b := mustCreate(t, repo, newPost("linkedin", anchor.Add(time.Hour), queue.StatusPending))
	c := mustCreate(t, repo, newPost("threads", anchor.Add(2*time.Hour), queue.StatusPending))
	if err := repo.UpdatePostStatus(ctx, c.ID, queue.StatusPosted, "ref", ""); err != nil {
		t.Fatalf("UpdatePostStatus() unexpected error: %v", err)
	}

	all, err := repo.ListPosts(ctx, "", "")
	if err != nil {
		t.Fatalf("ListPosts() unexpected error: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("ListPosts(all) = %d rows, want 3", len(all))
	}
	// Ordered by scheduled time ascending.
	if all[0].ID != b.ID || all[1].ID != c.ID || all[2].ID != a.ID {
		t.Errorf("ListPosts(all) order = %s,%s,%s; want %s,%s,%s",
			all[0].ID, all[1].ID, all[2].ID, b.ID, c.ID, a.ID)
	}

	pendingLinked, err := repo.ListPosts(ctx, queue.StatusPending, "linkedin")
	if err != nil {
		t.Fatalf("ListPosts() unexpected error: %v", err)
	}
	if len(pendingLinked) != 2 {
		t.Fatalf("ListPosts(pending, linkedin) = %d rows, want 2", len(pendingLinked))
	}

	postedOnly, err := repo.ListPosts(ctx, queue.StatusPosted, "")
	if err != nil {
		t.Fatalf("ListPosts() unexpected error: %v", err)
	}
	if len(postedOnly) != 1 || postedOnly[0].ID != c.ID {
		t.Fatalf("ListPosts(posted) should return only the posted row")
	}
}

func TestListDueReturnsRipePendingOnly(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	due := mustCreate(t, repo, newPost("linkedin", anchor.Add(-time.Hour), queue.StatusPending))
	mustCreate(t, repo, newPost("linkedin", anchor.Add(time.Hour), queue.StatusPending))
	donePast := mustCreate(t, repo, newPost("linkedin", anchor.Add(-2*time.Hour), queue.StatusPending))
	if err := repo.UpdatePostStatus(ctx, donePast.ID, queue.StatusPosted, "ref", ""); err != nil {
		t.Fatalf("UpdatePostStatus() unexpected error: %v", err)
	}

	got, err := repo.ListDue(ctx, anchor)
	if err != nil {
		t.Fatalf("ListDue() unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID != due.ID {
		t.Fatalf("ListDue() = %d rows, want exactly the ripe pending post", len(got))
	}
}

func TestCancelPostOnlyPending(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	post := mustCreate(t, repo, newPost("linkedin", anchor.Add(time.Hour), queue.StatusPending))

	ok, err := repo.CancelPost(ctx, post.ID)
	if err != nil || !ok {
		t.Fatalf("CancelPost() = %v, %v; want true, nil", ok, err)
	}
	got, _ := repo.GetPost(ctx, post.ID)
	if got.Status != queue.StatusCancelled {
		t.Fatalf("status = %s, want cancelled", got.Status)
	}

	// A second cancel is a no-op.
	ok, err = repo.CancelPost(ctx, post.ID)
	if err != nil {
		t.Fatalf("CancelPost() unexpected error: %v", err)
	}
	if ok {
		t.Errorf("CancelPost() cancelled a non-pending row")
	}
}

func TestCancelPostsBySource(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	ref := queue.ContentRef{Type: queue.PostTypeSocial, ID: "shared-content"}
	one := queue.ScheduledPost{
		ID: uuid.NewString(), Content: ref, Platform: "linkedin",
		ScheduledFor: anchor.Add(time.Hour), Status: queue.StatusPending, CreatedAt: anchor,
	}
	two := queue.ScheduledPost{
		ID: uuid.NewString(), Content: ref, Platform: "threads",
		ScheduledFor: anchor.Add(time.Hour), Status: queue.StatusPending, CreatedAt: anchor,
	}
	mustCreate(t, repo, one)
	mustCreate(t, repo, two)

	ok, err := repo.CancelPostsBySource(ctx, ref, "linkedin")
	if err != nil || !ok {
		t.Fatalf("CancelPostsBySource() = %v, %v; want true, nil", ok, err)
	}

	gotOne, _ := repo.GetPost(ctx, one.ID)
	gotTwo, _ := repo.GetPost(ctx, two.ID)
	if gotOne.Status != queue.StatusCancelled {
		t.Errorf("linkedin post status = %s, want cancelled", gotOne.Status)
	}
	if gotTwo.Status != queue.StatusPending {
		t.Errorf("threads post status = %s, want untouched pending", gotTwo.Status)
	}
}

func TestClearPendingPostsDeletesOnlyPending(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	mustCreate(t, repo, newPost("linkedin", anchor.Add(time.Hour), queue.StatusPending))
	mustCreate(t, repo, newPost("threads", anchor.Add(2*time.Hour), queue.StatusPending))
	keep := mustCreate(t, repo, newPost("linkedin", anchor.Add(-time.Hour), queue.StatusPending))
	if err := repo.UpdatePostStatus(ctx, keep.ID, queue.StatusPosted, "ref", ""); err != nil {
		t.Fatalf("UpdatePostStatus() unexpected error: %v", err)
	}

	count, err := repo.ClearPendingPosts(ctx)
	if err != nil {
		t.Fatalf("ClearPendingPosts() unexpected error: %v", err)
	}
	if count != 2 {
		t.Fatalf("ClearPendingPosts() = %d, want 2", count)
	}

	if _, err := repo.GetPost(ctx, keep.ID); err != nil {
		t.Errorf("posted row should survive a queue clear: %v", err)
	}
	remaining, _ := repo.ListPosts(ctx, "", "")
	if len(remaining) != 1 {
		t.Errorf("remaining rows = %d, want 1", len(remaining))
	}
}

func TestDeletePostsBulk(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	a := mustCreate(t, repo, newPost("linkedin", anchor.Add(time.Hour), queue.StatusPending))
	b := mustCreate(t, repo, newPost("linkedin", anchor.Add(2*time.Hour), queue.StatusPending))
	mustCreate(t, repo, newPost("linkedin", anchor.Add(3*time.Hour), queue.StatusPending))

	count, err := repo.DeletePostsBulk(ctx, []string{a.ID, b.ID, "missing"})
	if err != nil {
		t.Fatalf("DeletePostsBulk() unexpected error: %v", err)
	}
	if count != 2 {
		t.Fatalf("DeletePostsBulk() = %d, want 2", count)
	}
}

func TestParkPendingPosts(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	a := mustCreate(t, repo, newPost("linkedin", anchor.Add(time.Hour), queue.StatusPending))
	other := mustCreate(t, repo, newPost("threads", anchor.Add(time.Hour), queue.StatusPending))

	count, err := repo.ParkPendingPosts(ctx, "linkedin", queue.FarFuture)
	if err != nil {
		t.Fatalf("ParkPendingPosts() unexpected error: %v", err)
	}
	if count != 1 {
		t.Fatalf("ParkPendingPosts() = %d, want 1", count)
	}

	gotA, _ := repo.GetPost(ctx, a.ID)
	gotOther, _ := repo.GetPost(ctx, other.ID)
	if !gotA.Parked() {
		t.Errorf("linkedin post not parked: %v", gotA.ScheduledFor)
	}
	if gotOther.Parked() {
		t.Errorf("threads post should not be parked")
	}
}

func TestCountForDay(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	dayStart := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.AddDate(0, 0, 1)

	mustCreate(t, repo, newPost("linkedin", dayStart.Add(9*time.Hour), queue.StatusPending))
	posted := mustCreate(t, repo, newPost("linkedin", dayStart.Add(12*time.Hour), queue.StatusPending))
	if err := repo.UpdatePostStatus(ctx, posted.ID, queue.StatusPosted, "ref", ""); err != nil {
		t.Fatalf("UpdatePostStatus() unexpected error: %v", err)
	}
	cancelled := mustCreate(t, repo, newPost("linkedin", dayStart.Add(15*time.Hour), queue.StatusPending))
	if _, err := repo.CancelPost(ctx, cancelled.ID); err != nil {
		t.Fatalf("CancelPost() unexpected error: %v", err)
	}
	mustCreate(t, repo, newPost("linkedin", dayEnd.Add(9*time.Hour), queue.StatusPending)) // next day
	mustCreate(t, repo, newPost("threads", dayStart.Add(9*time.Hour), queue.StatusPending))

	count, err := repo.CountForDay(ctx, "linkedin", dayStart, dayEnd)
	if err != nil {
		t.Fatalf("CountForDay() unexpected error: %v", err)
	}
	if count != 2 {
		t.Fatalf("CountForDay() = %d, want 2 (pending + posted within the day)", count)
	}
}

func TestSlotListOrderingAndUpdate(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	late := slots.TimeSlot{ID: uuid.NewString(), DayOfWeek: 2, TimeOfDay: "17:00", Enabled: true, CreatedAt: anchor}
	early := slots.TimeSlot{ID: uuid.NewString(), DayOfWeek: slots.AllDays, TimeOfDay: "09:00", Enabled: true, CreatedAt: anchor}
	mid := slots.TimeSlot{ID: uuid.NewString(), DayOfWeek: 2, TimeOfDay: "08:00", Enabled: false, CreatedAt: anchor}
	for _, s := range []slots.TimeSlot{late, early, mid} {
		if err := repo.AddSlot(ctx, s); err != nil {
			t.Fatalf("AddSlot() unexpected error: %v", err)
		}
	}

	all, err := repo.ListSlots(ctx)
	if err != nil {
		t.Fatalf("ListSlots() unexpected error: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("ListSlots() = %d rows, want 3", len(all))
	}
	if all[0].ID != early.ID || all[1].ID != mid.ID || all[2].ID != late.ID {
		t.Errorf("slots out of order: got %s,%s,%s", all[0].TimeOfDay, all[1].TimeOfDay, all[2].TimeOfDay)
	}

	enabled, err := repo.ListEnabledSlots(ctx)
	if err != nil {
		t.Fatalf("ListEnabledSlots() unexpected error: %v", err)
	}
	if len(enabled) != 2 {
		t.Fatalf("ListEnabledSlots() = %d rows, want 2", len(enabled))
	}

	newTime := "10:30"
	off := false
	if err := repo.UpdateSlot(ctx, late.ID, slots.SlotUpdate{TimeOfDay: &newTime, Enabled: &off}); err != nil {
		t.Fatalf("UpdateSlot() unexpected error: %v", err)
	}
	updated, _ := repo.ListSlots(ctx)
	for _, s := range updated {
		if s.ID == late.ID {
			if s.TimeOfDay != "10:30" || s.Enabled {
				t.Errorf("slot not updated: %+v", s)
			}
			if s.DayOfWeek != 2 {
				t.Errorf("untouched field changed: day = %d, want 2", s.DayOfWeek)
			}
		}
	}

	if err := repo.UpdateSlot(ctx, "missing", slots.SlotUpdate{TimeOfDay: &newTime}); !errors.Is(err, common.ErrSlotNotFound) {
		t.Errorf("UpdateSlot(missing) error = %v, want ErrSlotNotFound", err)
	}

	if err := repo.DeleteSlot(ctx, early.ID); err != nil {
		t.Fatalf("DeleteSlot() unexpected error: %v", err)
	}
	left, _ := repo.ListSlots(ctx)
	if len(left) != 2 {
		t.Errorf("slots after delete = %d, want 2", len(left))
	}
}

func TestLimitUpsert(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	missing, err := repo.GetLimit(ctx, "linkedin")
	if err != nil {
		t.Fatalf("GetLimit() unexpected error: %v", err)
	}
	if !missing.Unlimited() {
		t.Fatalf("absent limit should read as unlimited, got %+v", missing)
	}

	if err := repo.SetLimit(ctx, slots.PlatformLimit{Platform: "linkedin", MaxPostsPerDay: 3}); err != nil {
		t.Fatalf("SetLimit() unexpected error: %v", err)
	}
	if err := repo.SetLimit(ctx, slots.PlatformLimit{Platform: "linkedin", MaxPostsPerDay: 5}); err != nil {
		t.Fatalf("SetLimit() second write unexpected error: %v", err)
	}

	got, err := repo.GetLimit(ctx, "linkedin")
	if err != nil {
		t.Fatalf("GetLimit() unexpected error: %v", err)
	}
	if got.MaxPostsPerDay != 5 {
		t.Fatalf("limit = %d, want 5 after upsert", got.MaxPostsPerDay)
	}

	all, err := repo.ListLimits(ctx)
	if err != nil {
		t.Fatalf("ListLimits() unexpected error: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("ListLimits() = %d rows, want 1", len(all))
	}
}

func TestSettingsUpsert(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	got, err := repo.GetSetting(ctx, "default_platform")
	if err != nil {
		t.Fatalf("GetSetting() unexpected error: %v", err)
	}
	if got != "" {
		t.Fatalf("missing setting should read empty, got %q", got)
	}

	if err := repo.SetSetting(ctx, "default_platform", "linkedin"); err != nil {
		t.Fatalf("SetSetting() unexpected error: %v", err)
	}
	if err := repo.SetSetting(ctx, "default_platform", "threads"); err != nil {
		t.Fatalf("SetSetting() overwrite unexpected error: %v", err)
	}

	got, err = repo.GetSetting(ctx, "default_platform")
	if err != nil {
		t.Fatalf("GetSetting() unexpected error: %v", err)
	}
	if got != "threads" {
		t.Fatalf("setting = %q, want threads", got)
	}
}

func TestListPostsForArticle(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	linked := queue.ScheduledPost{
		ID:           uuid.NewString(),
		Content:      queue.ContentRef{Type: queue.PostTypeSocial, ID: "c1"},
		ArticleID:    "article-9",
		Platform:     "linkedin",
		ScheduledFor: anchor.Add(time.Hour),
		Status:       queue.StatusPending,
		CreatedAt:    anchor,
	}
	mustCreate(t, repo, linked)
	mustCreate(t, repo, newPost("linkedin", anchor.Add(2*time.Hour), queue.StatusPending))

	got, err := repo.ListPostsForArticle(ctx, "article-9")
	if err != nil {
		t.Fatalf("ListPostsForArticle() unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID != linked.ID {
		t.Fatalf("ListPostsForArticle() = %d rows, want the linked post only", len(got))
	}
}
