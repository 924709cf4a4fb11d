package loader

import (
	"errors"
	"sync"

	"VanBuilder/internal/logger"
	"VanBuilder/internal/renderer"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"
)

// Completion is a finished load waiting to be applied on the main goroutine.
type Completion struct {
	Path string
	Root *renderer.Node
	Err  error
	done func(*renderer.Node, error)
}

// Apply runs the caller's callback.
func (c Completion) Apply() {
	if c.done != nil {
		c.done(c.Root, c.Err)
	}
}

// Async parses models on a worker pool. Results are not delivered on the
// workers: they queue up until Drain runs them on the caller's goroutine,
// which keeps every scene mutation on one thread.
type Async struct {
	pool      pond.Pool
	cache     *ModelCache
	completed chan Completion
	inflight  sync.WaitGroup
}

func NewAsync(workers int, cache *ModelCache) *Async {
	if workers <= 0 {
		workers = 1
	}
	if cache == nil {
		cache = NewModelCache()
	}
	return &Async{
		pool:      pond.NewPool(workers),
		cache:     cache,
		completed: make(chan Completion, 1024),
	}
}

// ErrClosed is delivered to loads issued after Close.
var ErrClosed = errors.New("loader closed")

// Load schedules path for loading. done is invoked from Drain. There is no
// cancellation; an issued load always completes, with ErrClosed once the
// pool has been stopped.
func (a *Async) Load(path string, done func(*renderer.Node, error)) {
	a.inflight.Add(1)
	err := a.pool.Go(func() {
		defer a.inflight.Done()
		root, err := a.cache.Load(path)
		if err != nil {
			logger.Log.Warn("Model load failed", zap.String("path", path), zap.Error(err))
		}
		a.completed <- Completion{Path: path, Root: root, Err: err, done: done}
	})
	if err != nil {
		a.inflight.Done()
		logger.Log.Debug("Load after close", zap.String("path", path), zap.Error(err))
		a.completed <- Completion{Path: path, Err: ErrClosed, done: done}
	}
}

// Completed exposes the completion queue for select loops.
func (a *Async) Completed() <-chan Completion {
	return a.completed
}

// Drain applies every completion that is ready without blocking and returns
// how many were applied.
func (a *Async) Drain() int {
	n := 0
	for {
		select {
		case c := <-a.completed:
			c.Apply()
			n++
		default:
			return n
		}
	}
}

// Wait blocks until every issued load has been parsed and queued. It does
// not apply the completions.
func (a *Async) Wait() {
	a.inflight.Wait()
}

func (a *Async) Cache() *ModelCache {
	return a.cache
}

// Close stops the pool after in-flight loads finish.
func (a *Async) Close() {
	a.pool.StopAndWait()
}
