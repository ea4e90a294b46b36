package usecase

import (
	"context"
	"errors"
	"time"

	domainScheduler "github.com/l0lsec/PodInsights/domains/scheduler"
	pkgError "github.com/l0lsec/PodInsights/pkg/error"
	"github.com/l0lsec/PodInsights/pkg/timeutils"
	"github.com/l0lsec/PodInsights/scheduler/application"
	"github.com/l0lsec/PodInsights/scheduler/domain/common"
	"github.com/l0lsec/PodInsights/scheduler/domain/queue"
	"github.com/l0lsec/PodInsights/scheduler/domain/slots"
	"github.com/l0lsec/PodInsights/scheduler/repository"
	"github.com/l0lsec/PodInsights/validations"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	settingDefaultPlatform = "default_platform"
	fallbackPlatform       = "linkedin"

	// Explicit times slightly in the past are accepted so a "schedule for
	// now" from a slow client does not bounce.
	pastScheduleTolerance = time.Minute
)

var defaultSlotTimes = []string{"09:00", "12:00", "17:00"}

type serviceScheduler struct {
	repo         repository.ISchedulerRepository
	allocator    *application.SlotAllocator
	materializer *application.QueueMaterializer
	worker       *application.SchedulerWorker
	gate         *application.QueueGate
	clock        common.Clock
	emit         application.EventEmitter
}

func NewSchedulerService(
	repo repository.ISchedulerRepository,
	allocator *application.SlotAllocator,
	materializer *application.QueueMaterializer,
	worker *application.SchedulerWorker,
	gate *application.QueueGate,
	clock common.Clock,
	emit application.EventEmitter,
) domainScheduler.ISchedulerUsecase {
	return &serviceScheduler{
		repo:         repo,
		allocator:    allocator,
		materializer: materializer,
		worker:       worker,
		gate:         gate,
		clock:        clock,
		emit:         emit,
	}
}

func (service *serviceScheduler) emitEvent(code, message string, result any) {
	if service.emit != nil {
		service.emit(code, message, result)
	}
}

func (service *serviceScheduler) Enqueue(ctx context.Context, request domainScheduler.EnqueueRequest) (queue.ScheduledPost, error) {
	if err := validations.ValidateSchedulePost(ctx, request); err != nil {
		return queue.ScheduledPost{}, err
	}

	platform := request.Platform
	if platform == "" {
		var err error
		platform, err = service.DefaultPlatform(ctx)
		if err != nil {
			return queue.ScheduledPost{}, err
		}
	}

	now := service.clock.Now()
	post := queue.ScheduledPost{
		ID:        uuid.NewString(),
		Content:   queue.ContentRef{Type: queue.PostType(request.PostType), ID: request.ContentID},
		ArticleID: request.ArticleID,
		Platform:  platform,
		Status:    queue.StatusPending,
		CreatedAt: now.UTC(),
	}

	unlock := service.gate.LockPlatform(platform)
	defer unlock()

	if request.ScheduledFor != "" {
		at, err := timeutils.ParseLocalTimestamp(request.ScheduledFor, now.Location())
		if err != nil {
			return queue.ScheduledPost{}, pkgError.ValidationError("scheduled_for is not a recognized timestamp")
		}
		if at.Before(now.Add(-pastScheduleTolerance)) {
			return queue.ScheduledPost{}, pkgError.ValidationError("scheduled_for must be in the future")
		}
		post.ScheduledFor = at.Truncate(time.Second)
	} else {
		at, err := service.allocator.NextAvailableSlot(ctx, platform)
		if err != nil {
			return queue.ScheduledPost{}, err
		}
		post.ScheduledFor = at
	}

	if err := service.repo.CreatePost(ctx, post); err != nil {
		return queue.ScheduledPost{}, err
	}

	logrus.Infof("[SCHEDULER] Scheduled %s post %s on %s for %s", post.Content.Type, post.ID, platform, post.ScheduledFor.Format(time.RFC3339))
	service.emitEvent("POST_SCHEDULED", "Post added to queue", post)
	return post, nil
}

func (service *serviceScheduler) Get(ctx context.Context, id string) (queue.ScheduledPost, error) {
	return service.repo.GetPost(ctx, id)
}

func (service *serviceScheduler) List(ctx context.Context, status queue.Status, platform string) ([]queue.ScheduledPost, error) {
	switch status {
	case "", queue.StatusPending, queue.StatusPosted, queue.StatusFailed, queue.StatusCancelled:
	default:
		return nil, pkgError.ValidationError("unknown status filter")
	}
	return service.repo.ListPosts(ctx, status, platform)
}

func (service *serviceScheduler) PreviewNextSlot(ctx context.Context, platform string) (time.Time, error) {
	if platform == "" {
		var err error
		platform, err = service.DefaultPlatform(ctx)
		if err != nil {
			return time.Time{}, err
		}
	}

	unlock := service.gate.LockPlatform(platform)
	defer unlock()

	return service.allocator.NextAvailableSlot(ctx, platform)
}

func (service *serviceScheduler) UpdateTime(ctx context.Context, id string, scheduledFor time.Time) (bool, error) {
	post, err := service.repo.GetPost(ctx, id)
	if err != nil {
		return false, err
	}

	unlock := service.gate.LockPlatform(post.Platform)
	defer unlock()

	ok, err := service.repo.UpdatePostTime(ctx, id, scheduledFor)
	if err != nil {
		return false, err
	}
	if ok {
		service.emitEvent("POST_UPDATED", "Post rescheduled", map[string]string{"id": id})
	}
	return ok, nil
}

func (service *serviceScheduler) Cancel(ctx context.Context, id string) (bool, error) {
	post, err := service.repo.GetPost(ctx, id)
	if err != nil {
		return false, err
	}

	unlock := service.gate.LockPlatform(post.Platform)
	defer unlock()

	ok, err := service.repo.CancelPost(ctx, id)
	if err != nil {
		return false, err
	}
	if ok {
		service.emitEvent("POST_UPDATED", "Post cancelled", map[string]string{"id": id})
	}
	return ok, nil
}

func (service *serviceScheduler) CancelBySource(ctx context.Context, request domainScheduler.CancelBySourceRequest) (bool, error) {
	if err := validations.ValidateCancelBySource(ctx, request); err != nil {
		return false, err
	}

	unlock := service.gate.LockPlatform(request.Platform)
	defer unlock()

	ref := queue.ContentRef{Type: queue.PostType(request.PostType), ID: request.ContentID}
	return service.repo.CancelPostsBySource(ctx, ref, request.Platform)
}

// Retry puts a failed post back in the queue at the next available slot.
// When no slot can take it the post parks at the far-future sentinel until a
// redistribution picks it up.
func (service *serviceScheduler) Retry(ctx context.Context, id string) (queue.ScheduledPost, error) {
	post, err := service.repo.GetPost(ctx, id)
	if err != nil {
		return queue.ScheduledPost{}, err
	}
	if post.Status != queue.StatusFailed {
		return queue.ScheduledPost{}, pkgError.ValidationError("only failed posts can be retried")
	}

	unlock := service.gate.LockPlatform(post.Platform)
	defer unlock()

	if err := service.repo.UpdatePostStatus(ctx, id, queue.StatusPending, "", ""); err != nil {
		return queue.ScheduledPost{}, err
	}

	at, err := service.allocator.NextAvailableSlot(ctx, post.Platform)
	if err != nil {
		if !errors.Is(err, common.ErrNoSlotsConfigured) && !errors.Is(err, common.ErrNoAvailableSlot) {
			return queue.ScheduledPost{}, err
		}
		at = queue.FarFuture
	}

	if _, err := service.repo.UpdatePostTime(ctx, id, at); err != nil {
		return queue.ScheduledPost{}, err
	}

	logrus.Infof("[SCHEDULER] Retrying post %s at %s", id, at.Format(time.RFC3339))
	service.emitEvent("POST_UPDATED", "Post queued for retry", map[string]string{"id": id})
	return service.repo.GetPost(ctx, id)
}

func (service *serviceScheduler) PostNow(ctx context.Context, id string) (queue.ScheduledPost, error) {
	return service.worker.PublishNow(ctx, id)
}

func (service *serviceScheduler) Delete(ctx context.Context, id string) error {
	post, err := service.repo.GetPost(ctx, id)
	if err != nil {
		return err
	}

	unlock := service.gate.LockPlatform(post.Platform)
	defer unlock()

	return service.repo.DeletePost(ctx, id)
}

func (service *serviceScheduler) DeleteBulk(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	unlock := service.gate.LockQueue()
	defer unlock()

	return service.repo.DeletePostsBulk(ctx, ids)
}

func (service *serviceScheduler) ClearPending(ctx context.Context) (int64, error) {
	unlock := service.gate.LockQueue()
	defer unlock()

	count, err := service.repo.ClearPendingPosts(ctx)
	if err != nil {
		return 0, err
	}

	logrus.Infof("[SCHEDULER] Cleared %d pending posts", count)
	service.emitEvent("QUEUE_CLEARED", "Pending queue cleared", map[string]int64{"deleted": count})
	return count, nil
}

func (service *serviceScheduler) Redistribute(ctx context.Context, platform string) (int, error) {
	if platform == "" {
		var err error
		platform, err = service.DefaultPlatform(ctx)
		if err != nil {
			return 0, err
		}
	}

	unlock := service.gate.LockPlatform(platform)
	defer unlock()

	count, err := service.materializer.Redistribute(ctx, platform)
	if err != nil {
		return 0, err
	}

	service.emitEvent("QUEUE_REDISTRIBUTED", "Queue redistributed", map[string]any{"platform": platform, "count": count})
	return count, nil
}

func (service *serviceScheduler) Reorder(ctx context.Context, postIDs []string) (bool, error) {
	unlock := service.gate.LockQueue()
	defer unlock()

	ok, err := service.materializer.Reorder(ctx, postIDs)
	if err != nil {
		return false, err
	}
	if ok {
		service.emitEvent("QUEUE_REORDERED", "Queue order updated", map[string]int{"posts": len(postIDs)})
	}
	return ok, nil
}

func (service *serviceScheduler) MoveToPosition(ctx context.Context, postIDs []string, position queue.Position) (bool, error) {
	if position != queue.PositionTop && position != queue.PositionBottom {
		return false, pkgError.ValidationError("position must be top or bottom")
	}

	unlock := service.gate.LockQueue()
	defer unlock()

	ok, err := service.materializer.MoveToPosition(ctx, postIDs, position)
	if err != nil {
		return false, err
	}
	if ok {
		service.emitEvent("QUEUE_REORDERED", "Queue order updated", map[string]int{"posts": len(postIDs)})
	}
	return ok, nil
}

func (service *serviceScheduler) ListSlots(ctx context.Context) ([]slots.TimeSlot, error) {
	return service.repo.ListSlots(ctx)
}

func (service *serviceScheduler) AddSlot(ctx context.Context, request domainScheduler.SlotRequest) (slots.TimeSlot, error) {
	if err := validations.ValidateTimeSlot(ctx, request); err != nil {
		return slots.TimeSlot{}, err
	}

	enabled := true
	if request.Enabled != nil {
		enabled = *request.Enabled
	}

	slot := slots.TimeSlot{
		ID:        uuid.NewString(),
		DayOfWeek: request.DayOfWeek,
		TimeOfDay: request.TimeOfDay,
		Enabled:   enabled,
		CreatedAt: service.clock.Now().UTC(),
	}

	if err := service.repo.AddSlot(ctx, slot); err != nil {
		return slots.TimeSlot{}, err
	}

	service.redistributeAll(ctx)
	return slot, nil
}

func (service *serviceScheduler) UpdateSlot(ctx context.Context, id string, update slots.SlotUpdate) error {
	if err := validations.ValidateSlotUpdate(ctx, update); err != nil {
		return err
	}

	if err := service.repo.UpdateSlot(ctx, id, update); err != nil {
		return err
	}

	service.redistributeAll(ctx)
	return nil
}

func (service *serviceScheduler) DeleteSlot(ctx context.Context, id string) error {
	if err := service.repo.DeleteSlot(ctx, id); err != nil {
		return err
	}

	service.redistributeAll(ctx)
	return nil
}

func (service *serviceScheduler) GetLimit(ctx context.Context, platform string) (slots.PlatformLimit, error) {
	return service.repo.GetLimit(ctx, platform)
}

func (service *serviceScheduler) SetLimit(ctx context.Context, platform string, maxPostsPerDay int) (slots.PlatformLimit, error) {
	if platform == "" {
		return slots.PlatformLimit{}, pkgError.ValidationError("platform is required")
	}
	if err := validations.ValidateLimit(ctx, domainScheduler.LimitRequest{MaxPostsPerDay: maxPostsPerDay}); err != nil {
		return slots.PlatformLimit{}, err
	}

	limit := slots.PlatformLimit{Platform: platform, MaxPostsPerDay: maxPostsPerDay}
	if err := service.repo.SetLimit(ctx, limit); err != nil {
		return slots.PlatformLimit{}, err
	}

	// A tighter or looser cap changes which days can take posts.
	if _, err := service.Redistribute(ctx, platform); err != nil {
		logrus.WithError(err).Warnf("[SCHEDULER] Redistribution after limit change failed for %s", platform)
	}

	return limit, nil
}

func (service *serviceScheduler) ListLimits(ctx context.Context) ([]slots.PlatformLimit, error) {
	return service.repo.ListLimits(ctx)
}

func (service *serviceScheduler) DefaultPlatform(ctx context.Context) (string, error) {
	value, err := service.repo.GetSetting(ctx, settingDefaultPlatform)
	if err != nil {
		return "", err
	}
	if value == "" {
		return fallbackPlatform, nil
	}
	return value, nil
}

func (service *serviceScheduler) SetDefaultPlatform(ctx context.Context, platform string) error {
	if err := validations.ValidateDefaultPlatform(ctx, platform); err != nil {
		return err
	}
	return service.repo.SetSetting(ctx, settingDefaultPlatform, platform)
}

// EnsureDefaults seeds the three stock posting slots and the default
// platform on first boot. A database that already has slots is left alone.
func (service *serviceScheduler) EnsureDefaults(ctx context.Context) error {
	existing, err := service.repo.ListSlots(ctx)
	if err != nil {
		return err
	}
	if len(existing) == 0 {
		for _, at := range defaultSlotTimes {
			slot := slots.TimeSlot{
				ID:        uuid.NewString(),
				DayOfWeek: slots.AllDays,
				TimeOfDay: at,
				Enabled:   true,
				CreatedAt: service.clock.Now().UTC(),
			}
			if err := service.repo.AddSlot(ctx, slot); err != nil {
				return err
			}
		}
		logrus.Info("[SCHEDULER] Seeded default posting slots 09:00, 12:00 and 17:00")
	}

	current, err := service.repo.GetSetting(ctx, settingDefaultPlatform)
	if err != nil {
		return err
	}
	if current == "" {
		return service.repo.SetSetting(ctx, settingDefaultPlatform, fallbackPlatform)
	}
	return nil
}

// redistributeAll reflows every platform that still has pending posts. Slot
// changes shift the legal grid, so queued times are recomputed. Failures are
// logged rather than bubbled up; the slot change itself already stuck.
func (service *serviceScheduler) redistributeAll(ctx context.Context) {
	pending, err := service.repo.ListPending(ctx, "")
	if err != nil {
		logrus.WithError(err).Warn("[SCHEDULER] Could not list pending posts for redistribution")
		return
	}

	seen := make(map[string]struct{})
	for _, post := range pending {
		if _, ok := seen[post.Platform]; ok {
			continue
		}
		seen[post.Platform] = struct{}{}
		if _, err := service.Redistribute(ctx, post.Platform); err != nil {
			logrus.WithError(err).Warnf("[SCHEDULER] Redistribution failed for %s", post.Platform)
		}
	}
}
