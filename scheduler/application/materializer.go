package application

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/l0lsec/PodInsights/scheduler/domain/common"
	"github.com/l0lsec/PodInsights/scheduler/domain/queue"
	"github.com/l0lsec/PodInsights/scheduler/repository"
	"github.com/sirupsen/logrus"
)

// QueueMaterializer reshapes the pending queue as a whole: redistribution
// after configuration changes, drag-reorder, and bulk moves to the front
// or back. Terminal rows are never touched.
type QueueMaterializer struct {
	repo      repository.ISchedulerRepository
	allocator *SlotAllocator
}

func NewQueueMaterializer(repo repository.ISchedulerRepository, allocator *SlotAllocator) *QueueMaterializer {
	return &QueueMaterializer{repo: repo, allocator: allocator}
}

// Redistribute reassigns every pending post on a platform to the earliest
// legal slots, FIFO by creation time so whoever queued first posts first.
// Posts the allocator cannot place stay parked at the far-future sentinel
// and need operator attention; the returned count covers only real
// reassignments.
func (m *QueueMaterializer) Redistribute(ctx context.Context, platform string) (int, error) {
	pending, err := m.repo.ListPending(ctx, platform)
	if err != nil {
		return 0, err
	}
	if len(pending) == 0 {
		return 0, nil
	}

	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].CreatedAt.Before(pending[j].CreatedAt)
	})

	// Park everything first so the allocator sees no conflicts from the
	// posts being moved.
	if _, err := m.repo.ParkPendingPosts(ctx, platform, queue.FarFuture); err != nil {
		return 0, err
	}

	redistributed := 0
	for _, post := range pending {
		slotTime, err := m.allocator.NextAvailableSlot(ctx, platform)
		if err != nil {
			if errors.Is(err, common.ErrNoSlotsConfigured) || errors.Is(err, common.ErrNoAvailableSlot) {
				logrus.WithField("post_id", post.ID).
					Warnf("[SCHEDULER] No slot available during redistribution for %s; post left parked", platform)
				continue
			}
			return redistributed, err
		}
		ok, err := m.repo.UpdatePostTime(ctx, post.ID, slotTime)
		if err != nil {
			return redistributed, err
		}
		if ok {
			redistributed++
		}
	}

	logrus.Infof("[SCHEDULER] Redistributed %d/%d pending posts for %s", redistributed, len(pending), platform)
	return redistributed, nil
}

// Reorder reassigns the scheduled times already held by the given pending
// posts so they fire in the caller-given order. The set of timestamps in
// use is unchanged; only which post occupies which timestamp moves.
func (m *QueueMaterializer) Reorder(ctx context.Context, postIDs []string) (bool, error) {
	if len(postIDs) < 2 {
		return true, nil // nothing to reorder
	}

	times := make([]time.Time, 0, len(postIDs))
	found := 0
	for _, id := range postIDs {
		post, err := m.repo.GetPost(ctx, id)
		if err != nil {
			if errors.Is(err, common.ErrPostNotFound) {
				continue
			}
			return false, err
		}
		if post.Status != queue.StatusPending {
			continue
		}
		times = append(times, post.ScheduledFor)
		found++
	}
	if found < 2 {
		return true, nil // not enough pending posts to reorder
	}

	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })

	for i, id := range postIDs {
		if i >= len(times) {
			break
		}
		if _, err := m.repo.UpdatePostTime(ctx, id, times[i]); err != nil {
			return false, err
		}
	}
	return true, nil
}

// MoveToPosition sends the selected pending posts to the front or back of
// the whole queue. The timestamp ladder spans every pending post on every
// platform, matching the queue the user sees.
func (m *QueueMaterializer) MoveToPosition(ctx context.Context, postIDs []string, position queue.Position) (bool, error) {
	if len(postIDs) == 0 {
		return true, nil
	}

	all, err := m.repo.ListPending(ctx, "")
	if err != nil {
		return false, err
	}
	if len(all) < 2 {
		return true, nil
	}

	selectedSet := make(map[string]struct{}, len(postIDs))
	for _, id := range postIDs {
		selectedSet[id] = struct{}{}
	}

	var selected, others []queue.ScheduledPost
	for _, post := range all {
		if _, ok := selectedSet[post.ID]; ok {
			selected = append(selected, post)
		} else {
			others = append(others, post)
		}
	}
	if len(selected) == 0 {
		return true, nil
	}

	ladder := make([]time.Time, len(all))
	for i, post := range all {
		ladder[i] = post.ScheduledFor
	}
	sort.Slice(ladder, func(i, j int) bool { return ladder[i].Before(ladder[j]) })

	var newOrder []queue.ScheduledPost
	if position == queue.PositionTop {
		newOrder = append(selected, others...)
	} else {
		newOrder = append(others, selected...)
	}

	for i, post := range newOrder {
		if i >= len(ladder) {
			break
		}
		if _, err := m.repo.UpdatePostTime(ctx, post.ID, ladder[i]); err != nil {
			return false, err
		}
	}
	return true, nil
}
