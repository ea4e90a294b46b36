package application

import (
	"context"
	"time"

	"github.com/l0lsec/PodInsights/pkg/timeutils"
	"github.com/l0lsec/PodInsights/scheduler/domain/common"
	"github.com/l0lsec/PodInsights/scheduler/repository"
)

// lookaheadDays bounds the slot search. Queues deeper than a month of
// slots are an operator problem, not a search problem.
const lookaheadDays = 30

// SlotAllocator finds the next free posting slot for a platform. Each
// platform has its own queue, so a LinkedIn post and a Threads post can
// occupy the same timestamp without conflict.
type SlotAllocator struct {
	repo  repository.ISchedulerRepository
	clock common.Clock
}

func NewSlotAllocator(repo repository.ISchedulerRepository, clock common.Clock) *SlotAllocator {
	return &SlotAllocator{repo: repo, clock: clock}
}

// NextAvailableSlot returns the earliest enabled slot within the lookahead
// window that is in the future, not already held by a pending post on the
// platform, and on a day that still has daily capacity. Slot times are
// local-clock semantics: users author them in their own timezone.
//
// Returns common.ErrNoSlotsConfigured when no enabled slots exist and
// common.ErrNoAvailableSlot when the window is exhausted.
func (a *SlotAllocator) NextAvailableSlot(ctx context.Context, platform string) (time.Time, error) {
	enabled, err := a.repo.ListEnabledSlots(ctx)
	if err != nil {
		return time.Time{}, err
	}
	if len(enabled) == 0 {
		return time.Time{}, common.ErrNoSlotsConfigured
	}

	limit, err := a.repo.GetLimit(ctx, platform)
	if err != nil {
		return time.Time{}, err
	}

	pending, err := a.repo.ListPending(ctx, platform)
	if err != nil {
		return time.Time{}, err
	}
	taken := make(map[int64]struct{}, len(pending))
	for _, p := range pending {
		taken[p.ScheduledFor.Truncate(time.Second).Unix()] = struct{}{}
	}

	now := a.clock.Now()

	// Daily counts are cached per date within this call; several slots can
	// land on the same day and the accepted candidate must be visible to
	// any later lookup in the same search.
	counts := make(map[string]int)

	for dayOffset := 0; dayOffset < lookaheadDays; dayOffset++ {
		day := now.AddDate(0, 0, dayOffset)
		dateKey := day.Format("2006-01-02")

		if !limit.Unlimited() {
			count, cached := counts[dateKey]
			if !cached {
				dayStart, dayEnd := timeutils.DayBounds(day)
				count, err = a.repo.CountForDay(ctx, platform, dayStart, dayEnd)
				if err != nil {
					return time.Time{}, err
				}
				counts[dateKey] = count
			}
			if count >= limit.MaxPostsPerDay {
				continue
			}
		}

		for _, slot := range enabled {
			if !slot.AppliesTo(day.Weekday()) {
				continue
			}
			hour, minute, err := slot.Clock()
			if err != nil {
				// Malformed rows never block the search.
				continue
			}
			candidate := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location())
			if !candidate.After(now) {
				continue
			}
			if _, conflict := taken[candidate.Unix()]; conflict {
				continue
			}
			if !limit.Unlimited() {
				counts[dateKey]++
			}
			return candidate, nil
		}
	}

	return time.Time{}, common.ErrNoAvailableSlot
}
