package application

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/l0lsec/PodInsights/scheduler/domain/common"
	"github.com/l0lsec/PodInsights/scheduler/domain/publish"
	"github.com/l0lsec/PodInsights/scheduler/domain/queue"
	"github.com/l0lsec/PodInsights/scheduler/repository"
	"github.com/sirupsen/logrus"
)

// EventEmitter pushes queue events to whoever is listening, typically the
// websocket hub. A nil emitter drops them.
type EventEmitter func(code, message string, result any)

// SchedulerWorker drains due posts on a fixed interval. Rows are processed
// sequentially within a tick to keep platform rate limits conservative and
// the claim check trivial; a slow tick delays the next one rather than
// overlapping it.
type SchedulerWorker struct {
	repo         repository.ISchedulerRepository
	resolver     publish.ContentResolver
	credentials  publish.CredentialSource
	publishers   map[string]publish.Publisher
	materializer *QueueMaterializer
	gate         *QueueGate
	clock        common.Clock
	interval     time.Duration
	maxErrorSize int
	emit         EventEmitter

	ticking atomic.Bool

	statsMu  sync.Mutex
	ticks    int64
	posted   int64
	failed   int64
	lastTick time.Time
}

// WorkerStats is a snapshot of the worker's lifetime counters.
type WorkerStats struct {
	Ticks    int64     `json:"ticks"`
	Posted   int64     `json:"posted"`
	Failed   int64     `json:"failed"`
	LastTick time.Time `json:"last_tick"`
}

func NewSchedulerWorker(
	repo repository.ISchedulerRepository,
	resolver publish.ContentResolver,
	credentials publish.CredentialSource,
	publishers map[string]publish.Publisher,
	materializer *QueueMaterializer,
	gate *QueueGate,
	clock common.Clock,
	interval time.Duration,
	maxErrorSize int,
) *SchedulerWorker {
	if interval <= 0 {
		interval = time.Minute
	}
	if maxErrorSize <= 0 {
		maxErrorSize = 500
	}
	return &SchedulerWorker{
		repo:         repo,
		resolver:     resolver,
		credentials:  credentials,
		publishers:   publishers,
		materializer: materializer,
		gate:         gate,
		clock:        clock,
		interval:     interval,
		maxErrorSize: maxErrorSize,
	}
}

// SetEventEmitter wires an emitter in after construction. Call before Run.
func (w *SchedulerWorker) SetEventEmitter(emit EventEmitter) {
	w.emit = emit
}

func (w *SchedulerWorker) emitEvent(code, message string, result any) {
	if w.emit != nil {
		w.emit(code, message, result)
	}
}

// Run blocks pumping ticks until the context is cancelled.
func (w *SchedulerWorker) Run(ctx context.Context) {
	logrus.Infof("[WORKER] Scheduler worker started, tick interval %s", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logrus.Info("[WORKER] Scheduler worker stopped")
			return
		case <-ticker.C:
			w.Tick(ctx)
		}
	}
}

// Tick publishes every due post once. One row's failure never aborts the
// tick.
func (w *SchedulerWorker) Tick(ctx context.Context) {
	if !w.ticking.CompareAndSwap(false, true) {
		return
	}
	defer w.ticking.Store(false)

	due, err := w.repo.ListDue(ctx, w.clock.Now())
	if err != nil {
		logrus.WithError(err).Error("[WORKER] Failed to list due posts")
		return
	}

	w.statsMu.Lock()
	w.ticks++
	w.lastTick = w.clock.Now()
	w.statsMu.Unlock()

	if len(due) == 0 {
		return
	}
	logrus.Infof("[WORKER] Processing %d due posts", len(due))

	tokens := newTokenCache(w.credentials)
	for _, post := range due {
		w.processPost(ctx, post.ID, post.Platform, tokens)
	}
}

// PublishNow publishes a single pending post immediately, regardless of its
// scheduled time. When the post fires ahead of its slot, the platform's
// remaining queue is redistributed so later rows shift up to fill the gap.
func (w *SchedulerWorker) PublishNow(ctx context.Context, id string) (queue.ScheduledPost, error) {
	post, err := w.repo.GetPost(ctx, id)
	if err != nil {
		return queue.ScheduledPost{}, err
	}

	unlock := w.gate.LockPlatform(post.Platform)
	defer unlock()

	// Re-check under the lock: a worker tick may have claimed it already.
	post, err = w.repo.GetPost(ctx, id)
	if err != nil {
		return queue.ScheduledPost{}, err
	}
	if post.Status != queue.StatusPending {
		return queue.ScheduledPost{}, common.ErrNotPending
	}

	early := post.ScheduledFor.After(w.clock.Now())

	tokens := newTokenCache(w.credentials)
	if err := w.publishPost(ctx, post, tokens); err != nil {
		return queue.ScheduledPost{}, err
	}

	if early {
		if _, err := w.materializer.Redistribute(ctx, post.Platform); err != nil {
			logrus.WithError(err).Warnf("[WORKER] Redistribution after early publish failed for %s", post.Platform)
		}
	}

	return w.repo.GetPost(ctx, id)
}

// Stats returns a snapshot of the lifetime counters.
func (w *SchedulerWorker) Stats() WorkerStats {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	return WorkerStats{Ticks: w.ticks, Posted: w.posted, Failed: w.failed, LastTick: w.lastTick}
}

func (w *SchedulerWorker) processPost(ctx context.Context, id, platform string, tokens *tokenCache) {
	unlock := w.gate.LockPlatform(platform)
	defer unlock()

	// Claim check: the row may have been cancelled or moved since listing.
	post, err := w.repo.GetPost(ctx, id)
	if err != nil {
		logrus.WithError(err).Errorf("[WORKER] Failed to load post %s", id)
		return
	}
	if post.Status != queue.StatusPending || post.ScheduledFor.After(w.clock.Now()) {
		return
	}

	if err := w.publishPost(ctx, post, tokens); err != nil {
		logrus.WithError(err).Errorf("[WORKER] Post %s on %s failed", post.ID, post.Platform)
	}
}

// publishPost runs the resolve -> credential -> publish chain for one row
// and records the outcome on it. Callers hold the platform section.
func (w *SchedulerWorker) publishPost(ctx context.Context, post queue.ScheduledPost, tokens *tokenCache) error {
	content, err := w.resolver.Resolve(ctx, post.Content)
	if err != nil {
		w.fail(ctx, post.ID, post.Platform, "no content found")
		return fmt.Errorf("%w: %s %s", common.ErrContentMissing, post.Content.Type, post.Content.ID)
	}

	token, err := tokens.get(ctx, post.Platform)
	if err != nil {
		w.fail(ctx, post.ID, post.Platform, err.Error())
		return err
	}

	publisher, ok := w.publishers[post.Platform]
	if !ok {
		msg := fmt.Sprintf("no publisher configured for platform %s", post.Platform)
		w.fail(ctx, post.ID, post.Platform, msg)
		return fmt.Errorf("%w: %s", common.ErrPublishRejected, msg)
	}

	result, err := publisher.Publish(ctx, token, content)
	if err != nil {
		w.fail(ctx, post.ID, post.Platform, err.Error())
		return fmt.Errorf("%w: %v", common.ErrPublishRejected, err)
	}

	externalRef := result.ExternalRef
	if externalRef == "" {
		externalRef = result.Permalink
	}
	if err := w.repo.UpdatePostStatus(ctx, post.ID, queue.StatusPosted, externalRef, ""); err != nil {
		logrus.WithError(err).Errorf("[WORKER] Failed to mark post %s as posted", post.ID)
		return err
	}

	w.statsMu.Lock()
	w.posted++
	w.statsMu.Unlock()

	// Best effort; the publish already happened.
	if err := w.resolver.MarkUsed(ctx, post.Content); err != nil {
		logrus.WithError(err).Warnf("[WORKER] Failed to mark content used for post %s", post.ID)
	}

	logrus.Infof("[WORKER] Posted %s to %s (%s)", post.ID, post.Platform, externalRef)
	w.emitEvent("POST_PUBLISHED", fmt.Sprintf("Post published to %s", post.Platform), map[string]string{
		"id":           post.ID,
		"platform":     post.Platform,
		"external_ref": externalRef,
	})
	return nil
}

func (w *SchedulerWorker) fail(ctx context.Context, id, platform, message string) {
	if err := w.repo.UpdatePostStatus(ctx, id, queue.StatusFailed, "", truncateMessage(message, w.maxErrorSize)); err != nil {
		logrus.WithError(err).Errorf("[WORKER] Failed to mark post %s as failed", id)
		return
	}
	w.statsMu.Lock()
	w.failed++
	w.statsMu.Unlock()

	w.emitEvent("POST_FAILED", message, map[string]string{"id": id, "platform": platform})
}

func truncateMessage(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

// tokenCache caches credential lookups for the duration of one tick so many
// due rows on the same platform trigger a single refresh. Failures are
// cached too: a platform that is not connected stays not connected for the
// rest of the tick.
type tokenCache struct {
	source  publish.CredentialSource
	entries map[string]tokenEntry
}

type tokenEntry struct {
	token string
	err   error
}

func newTokenCache(source publish.CredentialSource) *tokenCache {
	return &tokenCache{source: source, entries: make(map[string]tokenEntry)}
}

func (c *tokenCache) get(ctx context.Context, platform string) (string, error) {
	if entry, ok := c.entries[platform]; ok {
		return entry.token, entry.err
	}
	token, err := c.source.EnsureValidToken(ctx, platform)
	c.entries[platform] = tokenEntry{token: token, err: err}
	return token, err
}
