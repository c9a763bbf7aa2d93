package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recgroup/internal/engine"
)

type funcProc func(ctx context.Context, lines []string) (engine.BatchResult, error)

func (f funcProc) ProcessBatch(ctx context.Context, lines []string) (engine.BatchResult, error) {
	return f(ctx, lines)
}

func countLines(_ context.Context, lines []string) (engine.BatchResult, error) {
	return engine.BatchResult{Lines: len(lines)}, nil
}

type recorder struct {
	dispatched atomic.Int64
	completed  atomic.Int64
	maxSeen    atomic.Int64
}

func (r *recorder) Dispatched(inFlight int) {
	r.dispatched.Add(1)
	if int64(inFlight) > r.maxSeen.Load() {
		r.maxSeen.Store(int64(inFlight))
	}
}

func (r *recorder) Completed(Completion, int) { r.completed.Add(1) }

func input(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "%d;%d\n", i, i)
	}
	return b.String()
}

func TestBatchesCoverEveryLine(t *testing.T) {
	rec := &recorder{}
	s := New(Config{BatchSize: 7, Workers: 3}, funcProc(countLines), nil, rec)
	st, err := s.RunReader(context.Background(), strings.NewReader(input(100)))
	require.NoError(t, err)

	assert.Equal(t, 100, st.LinesRead)
	assert.Equal(t, 15, st.Batches)
	assert.Equal(t, 100, st.Result.Lines)
	assert.Zero(t, st.Faults)
	assert.EqualValues(t, 15, rec.dispatched.Load())
	assert.EqualValues(t, 15, rec.completed.Load())
}

func TestEmptyInput(t *testing.T) {
	st, err := New(Config{}, funcProc(countLines), nil, nil).RunReader(context.Background(), strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Stats{}, st)
}

func TestDefaults(t *testing.T) {
	c := New(Config{}, funcProc(countLines), nil, nil).Config()
	assert.Equal(t, DefaultBatchSize, c.BatchSize)
	assert.Equal(t, DefaultWindowFactor, c.WindowFactor)
	assert.Equal(t, Abort, c.FaultPolicy)
	assert.Equal(t, DefaultGracePeriod, c.GracePeriod)
	assert.Positive(t, c.Workers)
}

// With every worker blocked the producer must stop after window+1 dispatches.
func TestAdmissionWindowBlocksProducer(t *testing.T) {
	gate := make(chan struct{})
	proc := funcProc(func(ctx context.Context, lines []string) (engine.BatchResult, error) {
		<-gate
		return engine.BatchResult{Lines: len(lines)}, nil
	})
	rec := &recorder{}
	s := New(Config{BatchSize: 1, Workers: 2, WindowFactor: 2}, proc, nil, rec)

	var (
		st  Stats
		err error
		wg  sync.WaitGroup
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		st, err = s.RunReader(context.Background(), strings.NewReader(input(40)))
	}()

	require.Eventually(t, func() bool { return rec.dispatched.Load() == 5 }, time.Second, time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	assert.EqualValues(t, 5, rec.dispatched.Load(), "producer ran past the admission window")

	close(gate)
	wg.Wait()
	require.NoError(t, err)
	assert.Equal(t, 40, st.Batches)
	assert.Equal(t, 5, st.MaxInFlight)
	assert.EqualValues(t, 5, rec.maxSeen.Load())
}

func failOn(seq int, boom error) funcProc {
	var n atomic.Int64
	return func(_ context.Context, lines []string) (engine.BatchResult, error) {
		if int(n.Add(1)) == seq {
			return engine.BatchResult{Lines: len(lines)}, boom
		}
		return engine.BatchResult{Lines: len(lines)}, nil
	}
}

func TestAbortReturnsFirstFault(t *testing.T) {
	boom := errors.New("boom")
	s := New(Config{BatchSize: 2, Workers: 1, FaultPolicy: Abort}, failOn(3, boom), nil, nil)
	st, err := s.RunReader(context.Background(), strings.NewReader(input(50)))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, st.Faults)
	assert.Less(t, st.LinesRead, 50)
}

func TestBestEffortCountsFaults(t *testing.T) {
	boom := errors.New("boom")
	s := New(Config{BatchSize: 2, Workers: 2, FaultPolicy: BestEffort}, failOn(3, boom), nil, nil)
	st, err := s.RunReader(context.Background(), strings.NewReader(input(50)))
	require.NoError(t, err)
	assert.Equal(t, 1, st.Faults)
	assert.Equal(t, 25, st.Batches)
	assert.Equal(t, 50, st.Result.Lines)
}

func TestPanicBecomesFault(t *testing.T) {
	proc := funcProc(func(context.Context, []string) (engine.BatchResult, error) {
		panic("kaboom")
	})
	s := New(Config{BatchSize: 5, Workers: 2}, proc, nil, nil)
	_, err := s.RunReader(context.Background(), strings.NewReader(input(10)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kaboom")
}

func TestInterruptedWhileWaiting(t *testing.T) {
	gate := make(chan struct{})
	defer close(gate)
	proc := funcProc(func(ctx context.Context, lines []string) (engine.BatchResult, error) {
		select {
		case <-gate:
		case <-ctx.Done():
		}
		return engine.BatchResult{Lines: len(lines)}, nil
	})
	rec := &recorder{}
	ctx, cancel := context.WithCancel(context.Background())
	s := New(Config{BatchSize: 1, Workers: 1, GracePeriod: time.Second}, proc, nil, rec)

	errCh := make(chan error, 1)
	go func() {
		_, err := s.RunReader(ctx, strings.NewReader(input(20)))
		errCh <- err
	}()
	require.Eventually(t, func() bool { return rec.dispatched.Load() == 3 }, time.Second, time.Millisecond)
	cancel()

	err := <-errCh
	assert.ErrorIs(t, err, ErrInterrupted)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseFaultPolicy(t *testing.T) {
	p, err := ParseFaultPolicy("best-effort")
	require.NoError(t, err)
	assert.Equal(t, BestEffort, p)
	_, err = ParseFaultPolicy("ignore")
	assert.Error(t, err)
}

func TestRunMissingFile(t *testing.T) {
	_, err := New(Config{}, funcProc(countLines), nil, nil).Run(context.Background(), t.TempDir()+"/nope.txt")
	assert.Error(t, err)
}
