// internal/pipeline/pool.go
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"recgroup/internal/engine"
)

var (
	ErrPoolStopped = errors.New("pipeline: pool stopped")
	ErrStopTimeout = errors.New("pipeline: workers did not stop within grace period")
)

// Batch is a run of consecutively read lines.
type Batch struct {
	Seq   int // dispatch order, starting at 0
	Lines []string
}

// Completion is the result-or-fault of one batch.
type Completion struct {
	Seq      int
	Result   engine.BatchResult
	Err      error
	Duration time.Duration
}

// Pool runs a fixed number of workers. Submit never blocks as long as the
// caller keeps at most `capacity` batches outstanding; completions are read
// with Next.
type Pool struct {
	proc   BatchProcessor
	tasks  chan Batch
	done   chan Completion
	cancel context.CancelFunc
	g      *errgroup.Group

	mu      sync.Mutex
	stopped bool
}

// NewPool starts workers goroutines. capacity bounds the number of batches
// that may be submitted but not yet collected.
func NewPool(ctx context.Context, proc BatchProcessor, workers, capacity int) *Pool {
	if workers < 1 {
		workers = 1
	}
	if capacity < workers {
		capacity = workers
	}
	ctx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(ctx)
	p := &Pool{
		proc:   proc,
		tasks:  make(chan Batch, capacity),
		done:   make(chan Completion, capacity),
		cancel: cancel,
		g:      g,
	}
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			p.work(gctx)
			return nil
		})
	}
	return p
}

func (p *Pool) work(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case b, ok := <-p.tasks:
			if !ok {
				return
			}
			select {
			case p.done <- p.run(ctx, b):
			case <-ctx.Done():
				return
			}
		}
	}
}

// run processes one batch, turning a panic into a fault.
func (p *Pool) run(ctx context.Context, b Batch) (c Completion) {
	c.Seq = b.Seq
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			c.Err = fmt.Errorf("batch %d: panic: %v", b.Seq, r)
		}
		c.Duration = time.Since(start)
	}()
	res, err := p.proc.ProcessBatch(ctx, b.Lines)
	c.Result = res
	if err != nil {
		c.Err = errors.Wrapf(err, "batch %d", b.Seq)
	}
	return c
}

// Submit hands b to the workers.
func (p *Pool) Submit(b Batch) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return ErrPoolStopped
	}
	p.tasks <- b
	return nil
}

// Next blocks until a batch completes or ctx is done.
func (p *Pool) Next(ctx context.Context) (Completion, error) {
	select {
	case c := <-p.done:
		return c, nil
	case <-ctx.Done():
		return Completion{}, ctx.Err()
	}
}

// Stop closes the task queue and waits up to grace for the workers to exit.
// After grace the workers' context is cancelled and ErrStopTimeout is
// returned.
func (p *Pool) Stop(grace time.Duration) error {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return nil
	}
	p.stopped = true
	close(p.tasks)
	p.mu.Unlock()

	exited := make(chan struct{})
	go func() {
		_ = p.g.Wait()
		close(exited)
	}()

	timer := time.NewTimer(grace)
	defer timer.Stop()
	select {
	case <-exited:
		p.cancel()
		return nil
	case <-timer.C:
		p.cancel()
		return ErrStopTimeout
	}
}
