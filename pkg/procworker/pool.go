package procworker

import (
	"context"
	"hash/fnv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// ProcessingJob is one unit of episode pipeline work. Jobs for the same
// feed always land on the same worker, so episodes of a feed are processed
// in submission order.
type ProcessingJob struct {
	FeedID    string
	EpisodeID string
	Handler   func(ctx context.Context) error
}

// PoolStats is a realtime snapshot of the pool.
type PoolStats struct {
	NumWorkers      int            `json:"num_workers"`
	QueueSize       int            `json:"queue_size"`
	ActiveWorkers   int            `json:"active_workers"`
	TotalDispatched int64          `json:"total_dispatched"`
	TotalProcessed  int64          `json:"total_processed"`
	TotalDropped    int64          `json:"total_dropped"`
	TotalErrors     int64          `json:"total_errors"`
	WorkerStats     []WorkerStats  `json:"worker_stats"`
	ActiveJobs      map[string]int `json:"active_jobs"` // feedID|episodeID -> worker_id
}

// WorkerStats is the per-worker slice of PoolStats.
type WorkerStats struct {
	WorkerID      int   `json:"worker_id"`
	QueueDepth    int   `json:"queue_depth"`
	IsProcessing  bool  `json:"is_processing"`
	JobsProcessed int64 `json:"jobs_processed"`
}

type activeJobEntry struct {
	workerID  int
	updatedAt time.Time
}

// ProcessingPool runs episode jobs across a fixed set of workers, one
// queue per worker, sharded by feed.
type ProcessingPool struct {
	numWorkers int
	queueSize  int
	workers    []*worker
	wg         sync.WaitGroup
	stopOnce   sync.Once
	stopped    int32
	stopCh     chan struct{}

	totalDispatched int64
	totalProcessed  int64
	totalDropped    int64
	totalErrors     int64
	activeJobsMu    sync.RWMutex
	activeJobs      map[string]activeJobEntry
	startTime       time.Time

	// Hooks for external monitoring.
	OnWorkerStart func(workerID int, jobKey string)
	OnWorkerEnd   func(workerID int, jobKey string)
}

type worker struct {
	id            int
	jobQueue      chan ProcessingJob
	ctx           context.Context
	cancel        context.CancelFunc
	isProcessing  int32
	jobsProcessed int64
	pool          *ProcessingPool
}

func NewProcessingPool(numWorkers, queueSize int) *ProcessingPool {
	if numWorkers <= 0 {
		numWorkers = 4
	}
	if queueSize <= 0 {
		queueSize = 100
	}

	return &ProcessingPool{
		numWorkers: numWorkers,
		queueSize:  queueSize,
		workers:    make([]*worker, numWorkers),
		activeJobs: make(map[string]activeJobEntry),
		stopCh:     make(chan struct{}),
		startTime:  time.Now(),
	}
}

// Start launches the workers plus a janitor that expires stale active-job
// entries. Episode jobs run for minutes, so the expiry window is generous.
func (p *ProcessingPool) Start(ctx context.Context) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-p.stopCh:
				return
			case <-ticker.C:
				now := time.Now()
				p.activeJobsMu.Lock()
				for k, v := range p.activeJobs {
					if !v.updatedAt.IsZero() && now.Sub(v.updatedAt) > 30*time.Minute {
						delete(p.activeJobs, k)
					}
				}
				p.activeJobsMu.Unlock()
			}
		}
	}()

	for i := 0; i < p.numWorkers; i++ {
		workerCtx, cancel := context.WithCancel(ctx)
		w := &worker{
			id:       i,
			jobQueue: make(chan ProcessingJob, p.queueSize),
			ctx:      workerCtx,
			cancel:   cancel,
			pool:     p,
		}
		p.workers[i] = w

		p.wg.Add(1)
		go w.run(&p.wg)
	}

	logrus.Infof("[PROC_POOL] Started with %d workers, queue size: %d", p.numWorkers, p.queueSize)
}

// TryDispatch enqueues a job on its feed's worker without blocking and
// reports whether the job was accepted. HTTP handlers use the result to
// apply backpressure.
func (p *ProcessingPool) TryDispatch(job ProcessingJob) bool {
	if atomic.LoadInt32(&p.stopped) == 1 {
		atomic.AddInt64(&p.totalDropped, 1)
		return false
	}

	shard := p.shardForFeed(job.FeedID)
	atomic.AddInt64(&p.totalDispatched, 1)

	jobKey := job.FeedID + "|" + job.EpisodeID
	p.activeJobsMu.Lock()
	p.activeJobs[jobKey] = activeJobEntry{workerID: shard, updatedAt: time.Now()}
	p.activeJobsMu.Unlock()

	sent := func() (ok bool) {
		defer func() {
			if r := recover(); r != nil {
				ok = false
			}
		}()
		select {
		case p.workers[shard].jobQueue <- job:
			return true
		default:
			return false
		}
	}()

	if sent {
		return true
	}
	p.activeJobsMu.Lock()
	delete(p.activeJobs, jobKey)
	p.activeJobsMu.Unlock()

	atomic.AddInt64(&p.totalDropped, 1)
	logrus.Warnf("[PROC_POOL] Worker %d queue full (or stopped), dropping job for %s|%s",
		shard, job.FeedID, job.EpisodeID)
	return false
}

// Dispatch enqueues a job, silently dropping it when the queue is full.
func (p *ProcessingPool) Dispatch(job ProcessingJob) {
	_ = p.TryDispatch(job)
}

// Stop shuts the pool down gracefully, draining queued jobs first.
func (p *ProcessingPool) Stop() {
	p.stopOnce.Do(func() {
		atomic.StoreInt32(&p.stopped, 1)
		close(p.stopCh)
		logrus.Info("[PROC_POOL] Stopping workers...")

		for _, w := range p.workers {
			w.cancel()
			close(w.jobQueue)
		}

		p.wg.Wait()

		logrus.Info("[PROC_POOL] All workers stopped")
	})
}

func (p *ProcessingPool) shardForFeed(feedID string) int {
	h := fnv.New32a()
	h.Write([]byte(feedID))
	return int(h.Sum32() % uint32(p.numWorkers))
}

// GetStats returns a realtime snapshot of the pool.
func (p *ProcessingPool) GetStats() PoolStats {
	workerStats := make([]WorkerStats, len(p.workers))
	activeWorkers := 0

	for i, w := range p.workers {
		isProcessing := atomic.LoadInt32(&w.isProcessing) == 1
		if isProcessing {
			activeWorkers++
		}

		workerStats[i] = WorkerStats{
			WorkerID:      w.id,
			QueueDepth:    len(w.jobQueue),
			IsProcessing:  isProcessing,
			JobsProcessed: atomic.LoadInt64(&w.jobsProcessed),
		}
	}

	now := time.Now()
	p.activeJobsMu.Lock()
	activeJobsSnapshot := make(map[string]int, len(p.activeJobs))
	for k, v := range p.activeJobs {
		if !v.updatedAt.IsZero() && now.Sub(v.updatedAt) > 30*time.Minute {
			delete(p.activeJobs, k)
			continue
		}
		activeJobsSnapshot[k] = v.workerID
	}
	p.activeJobsMu.Unlock()

	return PoolStats{
		NumWorkers:      p.numWorkers,
		QueueSize:       p.queueSize,
		ActiveWorkers:   activeWorkers,
		TotalDispatched: atomic.LoadInt64(&p.totalDispatched),
		TotalProcessed:  atomic.LoadInt64(&p.totalProcessed),
		TotalDropped:    atomic.LoadInt64(&p.totalDropped),
		TotalErrors:     atomic.LoadInt64(&p.totalErrors),
		WorkerStats:     workerStats,
		ActiveJobs:      activeJobsSnapshot,
	}
}

// StartedAt returns when the pool was created, for uptime display.
func (p *ProcessingPool) StartedAt() time.Time {
	return p.startTime
}

func (w *worker) run(wg *sync.WaitGroup) {
	defer wg.Done()

	logrus.Debugf("[PROC_POOL] Worker %d started", w.id)

	for {
		select {
		case job, ok := <-w.jobQueue:
			if !ok {
				logrus.Debugf("[PROC_POOL] Worker %d shutting down", w.id)
				return
			}

			func() {
				jobKey := job.FeedID + "|" + job.EpisodeID

				if w.pool.OnWorkerStart != nil {
					w.pool.OnWorkerStart(w.id, jobKey)
				}
				atomic.StoreInt32(&w.isProcessing, 1)
				defer func() {
					if r := recover(); r != nil {
						atomic.AddInt64(&w.pool.totalErrors, 1)
						logrus.Errorf("[PROC_POOL] Worker %d panic for %s: %v", w.id, jobKey, r)
					}
					if w.pool.OnWorkerEnd != nil {
						w.pool.OnWorkerEnd(w.id, jobKey)
					}
					atomic.StoreInt32(&w.isProcessing, 0)
					atomic.AddInt64(&w.jobsProcessed, 1)
					atomic.AddInt64(&w.pool.totalProcessed, 1)

					w.pool.activeJobsMu.Lock()
					delete(w.pool.activeJobs, jobKey)
					w.pool.activeJobsMu.Unlock()
				}()

				if err := job.Handler(w.ctx); err != nil {
					atomic.AddInt64(&w.pool.totalErrors, 1)
					logrus.WithError(err).Errorf("[PROC_POOL] Worker %d job failed for %s|%s",
						w.id, job.FeedID, job.EpisodeID)
				}
			}()

		case <-w.ctx.Done():
			logrus.Debugf("[PROC_POOL] Worker %d context cancelled, draining queue...", w.id)
			w.drainQueue()
			return
		}
	}
}

// drainQueue finishes queued jobs during shutdown so accepted episodes are
// not silently lost.
func (w *worker) drainQueue() {
	for {
		select {
		case job, ok := <-w.jobQueue:
			if !ok {
				return
			}
			func() {
				defer func() {
					if r := recover(); r != nil {
						atomic.AddInt64(&w.pool.totalErrors, 1)
						logrus.Errorf("[PROC_POOL] Worker %d drain panic: %v", w.id, r)
					}
				}()
				if err := job.Handler(w.ctx); err != nil {
					logrus.WithError(err).Errorf("[PROC_POOL] Worker %d drain job failed", w.id)
				}
			}()
		default:
			return
		}
	}
}
