package application

import "sync"

// QueueGate serializes queue mutations. Uniqueness of pending timestamps
// is scoped per platform, so most operations only take that platform's
// section; cross-platform moves take the whole queue.
type QueueGate struct {
	mu        sync.Mutex
	platforms map[string]*sync.Mutex
	queue     sync.RWMutex
}

func NewQueueGate() *QueueGate {
	return &QueueGate{platforms: make(map[string]*sync.Mutex)}
}

func (g *QueueGate) forPlatform(platform string) *sync.Mutex {
	g.mu.Lock()
	defer g.mu.Unlock()
	m, ok := g.platforms[platform]
	if !ok {
		m = &sync.Mutex{}
		g.platforms[platform] = m
	}
	return m
}

// LockPlatform enters the critical section for one platform's queue. The
// returned function leaves it.
func (g *QueueGate) LockPlatform(platform string) func() {
	g.queue.RLock()
	m := g.forPlatform(platform)
	m.Lock()
	return func() {
		m.Unlock()
		g.queue.RUnlock()
	}
}

// LockQueue enters the queue-wide critical section, excluding every
// per-platform holder.
func (g *QueueGate) LockQueue() func() {
	g.queue.Lock()
	return func() {
		g.queue.Unlock()
	}
}
