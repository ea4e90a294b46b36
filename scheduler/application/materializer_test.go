package application_test

import (
	"context"
	"testing"
	"time"

	"github.com/l0lsec/PodInsights/scheduler/application"
	"github.com/l0lsec/PodInsights/scheduler/domain/common"
	"github.com/l0lsec/PodInsights/scheduler/domain/queue"
	"github.com/l0lsec/PodInsights/scheduler/domain/slots"
	"github.com/l0lsec/PodInsights/scheduler/repository"
)

func newMaterializer(repo *repository.SchedulerGormRepository, at time.Time) *application.QueueMaterializer {
	allocator := application.NewSlotAllocator(repo, common.FixedClock{Time: at})
	return application.NewQueueMaterializer(repo, allocator)
}

func TestRedistributeAssignsSlotsByCreationOrder(t *testing.T) {
	repo := newTestRepo(t)
	addSlot(t, repo, slots.AllDays, "09:00")
	addSlot(t, repo, slots.AllDays, "12:00")
	addSlot(t, repo, slots.AllDays, "17:00")

	// Creation order deliberately disagrees with the scheduled times.
	first := addPendingAt(t, repo, "linkedin", time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC), monday.Add(-2*time.Hour))
	second := addPendingAt(t, repo, "linkedin", time.Date(2026, 3, 2, 23, 0, 0, 0, time.UTC), monday.Add(-time.Hour))
	third := addPendingAt(t, repo, "linkedin", queue.FarFuture, monday)

	m := newMaterializer(repo, monday)
	count, err := m.Redistribute(context.Background(), "linkedin")
	if err != nil {
		t.Fatalf("Redistribute() unexpected error: %v", err)
	}
	if count != 3 {
		t.Fatalf("Redistribute() = %d, want 3", count)
	}

	wantTimes := map[string]time.Time{
		first.ID:  time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC),
		second.ID: time.Date(2026, 3, 2, 17, 0, 0, 0, time.UTC),
		third.ID:  time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC),
	}
	for id, want := range wantTimes {
		got, err := repo.GetPost(context.Background(), id)
		if err != nil {
			t.Fatalf("GetPost(%s) unexpected error: %v", id, err)
		}
		if !got.ScheduledFor.Equal(want) {
			t.Errorf("post %s scheduled for %v, want %v", id, got.ScheduledFor, want)
		}
	}
}

func TestRedistributeParksPostsWithoutSlots(t *testing.T) {
	repo := newTestRepo(t)
	post := addPendingAt(t, repo, "linkedin", time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC), monday)

	m := newMaterializer(repo, monday)
	count, err := m.Redistribute(context.Background(), "linkedin")
	if err != nil {
		t.Fatalf("Redistribute() unexpected error: %v", err)
	}
	if count != 0 {
		t.Fatalf("Redistribute() = %d, want 0 when no slots exist", count)
	}

	got, err := repo.GetPost(context.Background(), post.ID)
	if err != nil {
		t.Fatalf("GetPost() unexpected error: %v", err)
	}
	if !got.Parked() {
		t.Errorf("post should be parked at the far-future sentinel, got %v", got.ScheduledFor)
	}
}

func TestRedistributeLeavesOtherPlatformsAlone(t *testing.T) {
	repo := newTestRepo(t)
	addSlot(t, repo, slots.AllDays, "12:00")

	threadsAt := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	other := addPendingAt(t, repo, "threads", threadsAt, monday)
	addPendingAt(t, repo, "linkedin", queue.FarFuture, monday)

	m := newMaterializer(repo, monday)
	if _, err := m.Redistribute(context.Background(), "linkedin"); err != nil {
		t.Fatalf("Redistribute() unexpected error: %v", err)
	}

	got, err := repo.GetPost(context.Background(), other.ID)
	if err != nil {
		t.Fatalf("GetPost() unexpected error: %v", err)
	}
	if !got.ScheduledFor.Equal(threadsAt) {
		t.Errorf("threads post moved to %v, want untouched %v", got.ScheduledFor, threadsAt)
	}
}

func TestRedistributeIsIdempotent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	addSlot(t, repo, slots.AllDays, "09:00")
	addSlot(t, repo, slots.AllDays, "17:00")

	a := addPendingAt(t, repo, "linkedin", queue.FarFuture, monday.Add(-2*time.Hour))
	b := addPendingAt(t, repo, "linkedin", queue.FarFuture, monday.Add(-time.Hour))

	m := newMaterializer(repo, monday)
	if _, err := m.Redistribute(ctx, "linkedin"); err != nil {
		t.Fatalf("Redistribute() unexpected error: %v", err)
	}

	firstPass := make(map[string]time.Time)
	for _, id := range []string{a.ID, b.ID} {
		got, err := repo.GetPost(ctx, id)
		if err != nil {
			t.Fatalf("GetPost(%s) unexpected error: %v", id, err)
		}
		firstPass[id] = got.ScheduledFor
	}

	// Running again over an already-settled queue must land every post on
	// the same time: creation order and the slot grid have not changed.
	if _, err := m.Redistribute(ctx, "linkedin"); err != nil {
		t.Fatalf("second Redistribute() unexpected error: %v", err)
	}
	for id, want := range firstPass {
		got, err := repo.GetPost(ctx, id)
		if err != nil {
			t.Fatalf("GetPost(%s) unexpected error: %v", id, err)
		}
		if !got.ScheduledFor.Equal(want) {
			t.Errorf("post %s drifted to %v, want stable %v", id, got.ScheduledFor, want)
		}
	}
}

func TestReorderReassignsHeldTimes(t *testing.T) {
	repo := newTestRepo(t)

	t1 := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	t2 := time.Date(2026, 3, 2, 17, 0, 0, 0, time.UTC)
	t3 := time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)
	a := addPendingAt(t, repo, "linkedin", t1, monday.Add(-3*time.Hour))
	b := addPendingAt(t, repo, "linkedin", t2, monday.Add(-2*time.Hour))
	c := addPendingAt(t, repo, "linkedin", t3, monday.Add(-time.Hour))

	m := newMaterializer(repo, monday)
	ok, err := m.Reorder(context.Background(), []string{c.ID, a.ID, b.ID})
	if err != nil {
		t.Fatalf("Reorder() unexpected error: %v", err)
	}
	if !ok {
		t.Fatalf("Reorder() = false, want true")
	}

	wantTimes := map[string]time.Time{c.ID: t1, a.ID: t2, b.ID: t3}
	for id, want := range wantTimes {
		got, err := repo.GetPost(context.Background(), id)
		if err != nil {
			t.Fatalf("GetPost(%s) unexpected error: %v", id, err)
		}
		if !got.ScheduledFor.Equal(want) {
			t.Errorf("post %s scheduled for %v, want %v", id, got.ScheduledFor, want)
		}
	}
}

func TestReorderSkipsUnknownAndTerminalPosts(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	t1 := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	t2 := time.Date(2026, 3, 2, 17, 0, 0, 0, time.UTC)
	a := addPendingAt(t, repo, "linkedin", t2, monday.Add(-2*time.Hour))
	b := addPendingAt(t, repo, "linkedin", t1, monday.Add(-time.Hour))

	done := addPendingAt(t, repo, "linkedin", time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC), monday.Add(-4*time.Hour))
	if err := repo.UpdatePostStatus(ctx, done.ID, queue.StatusPosted, "urn:li:share:9", ""); err != nil {
		t.Fatalf("UpdatePostStatus() unexpected error: %v", err)
	}
	doneAt := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	ok, err := newMaterializer(repo, monday).Reorder(ctx, []string{done.ID, a.ID, "no-such-post", b.ID})
	if err != nil {
		t.Fatalf("Reorder() unexpected error: %v", err)
	}
	if !ok {
		t.Fatalf("Reorder() = false, want true")
	}

	gotA, _ := repo.GetPost(ctx, a.ID)
	gotB, _ := repo.GetPost(ctx, b.ID)
	gotDone, _ := repo.GetPost(ctx, done.ID)
	if !gotA.ScheduledFor.Equal(t1) || !gotB.ScheduledFor.Equal(t2) {
		t.Errorf("pending posts not swapped: a=%v b=%v, want a=%v b=%v", gotA.ScheduledFor, gotB.ScheduledFor, t1, t2)
	}
	if !gotDone.ScheduledFor.Equal(doneAt) {
		t.Errorf("posted row moved to %v, want untouched %v", gotDone.ScheduledFor, doneAt)
	}
}

func TestMoveToTop(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	t1 := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	t2 := time.Date(2026, 3, 2, 17, 0, 0, 0, time.UTC)
	t3 := time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)
	a := addPendingAt(t, repo, "linkedin", t1, monday)
	b := addPendingAt(t, repo, "linkedin", t2, monday)
	c := addPendingAt(t, repo, "linkedin", t3, monday)

	ok, err := newMaterializer(repo, monday).MoveToPosition(ctx, []string{c.ID}, queue.PositionTop)
	if err != nil {
		t.Fatalf("MoveToPosition() unexpected error: %v", err)
	}
	if !ok {
		t.Fatalf("MoveToPosition() = false, want true")
	}

	wantTimes := map[string]time.Time{c.ID: t1, a.ID: t2, b.ID: t3}
	for id, want := range wantTimes {
		got, err := repo.GetPost(ctx, id)
		if err != nil {
			t.Fatalf("GetPost(%s) unexpected error: %v", id, err)
		}
		if !got.ScheduledFor.Equal(want) {
			t.Errorf("post %s scheduled for %v, want %v", id, got.ScheduledFor, want)
		}
	}
}

func TestMoveToBottom(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	t1 := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	t2 := time.Date(2026, 3, 2, 17, 0, 0, 0, time.UTC)
	t3 := time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)
	a := addPendingAt(t, repo, "linkedin", t1, monday)
	b := addPendingAt(t, repo, "linkedin", t2, monday)
	c := addPendingAt(t, repo, "linkedin", t3, monday)

	ok, err := newMaterializer(repo, monday).MoveToPosition(ctx, []string{a.ID}, queue.PositionBottom)
	if err != nil {
		t.Fatalf("MoveToPosition() unexpected error: %v", err)
	}
	if !ok {
		t.Fatalf("MoveToPosition() = false, want true")
	}

	wantTimes := map[string]time.Time{b.ID: t1, c.ID: t2, a.ID: t3}
	for id, want := range wantTimes {
		got, err := repo.GetPost(ctx, id)
		if err != nil {
			t.Fatalf("GetPost(%s) unexpected error: %v", id, err)
		}
		if !got.ScheduledFor.Equal(want) {
			t.Errorf("post %s scheduled for %v, want %v", id, got.ScheduledFor, want)
		}
	}
}

func TestMoveToPositionSpansPlatforms(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	t1 := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	t2 := time.Date(2026, 3, 2, 17, 0, 0, 0, time.UTC)
	linked := addPendingAt(t, repo, "linkedin", t1, monday)
	threaded := addPendingAt(t, repo, "threads", t2, monday)

	ok, err := newMaterializer(repo, monday).MoveToPosition(ctx, []string{threaded.ID}, queue.PositionTop)
	if err != nil {
		t.Fatalf("MoveToPosition() unexpected error: %v", err)
	}
	if !ok {
		t.Fatalf("MoveToPosition() = false, want true")
	}

	gotThreads, _ := repo.GetPost(ctx, threaded.ID)
	gotLinked, _ := repo.GetPost(ctx, linked.ID)
	if !gotThreads.ScheduledFor.Equal(t1) || !gotLinked.ScheduledFor.Equal(t2) {
		t.Errorf("cross-platform move failed: threads=%v linkedin=%v, want threads=%v linkedin=%v",
			gotThreads.ScheduledFor, gotLinked.ScheduledFor, t1, t2)
	}
}
