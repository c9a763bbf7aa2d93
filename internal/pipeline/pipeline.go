// internal/pipeline/pipeline.go
package pipeline

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"recgroup/internal/engine"
	"recgroup/internal/linesrc"
)

// ErrInterrupted marks a run cancelled while the producer was reading or
// waiting on completions.
var ErrInterrupted = errors.New("pipeline: interrupted")

// FaultPolicy decides what a failed batch does to the run.
type FaultPolicy string

const (
	// Abort stops the run at the first observed fault and returns it.
	Abort FaultPolicy = "abort"
	// BestEffort logs and counts faults and keeps going.
	BestEffort FaultPolicy = "best-effort"
)

func ParseFaultPolicy(s string) (FaultPolicy, error) {
	switch FaultPolicy(s) {
	case Abort, BestEffort:
		return FaultPolicy(s), nil
	}
	return "", fmt.Errorf("unknown fault policy %q (want %s | %s)", s, Abort, BestEffort)
}

const (
	DefaultBatchSize    = 500
	DefaultWindowFactor = 2
	DefaultGracePeriod  = 30 * time.Second
)

// Config controls the ingestion scheduler.
type Config struct {
	BatchSize    int           // lines per batch (>=1)
	Workers      int           // worker goroutines; 0 = runtime.NumCPU()
	WindowFactor int           // in-flight limit is WindowFactor*Workers
	FaultPolicy  FaultPolicy   // empty = Abort
	GracePeriod  time.Duration // pool shutdown wait before forced cancel
}

func (c Config) withDefaults() Config {
	if c.BatchSize < 1 {
		c.BatchSize = DefaultBatchSize
	}
	if c.Workers < 1 {
		c.Workers = runtime.NumCPU()
	}
	if c.WindowFactor < 1 {
		c.WindowFactor = DefaultWindowFactor
	}
	if c.FaultPolicy == "" {
		c.FaultPolicy = Abort
	}
	if c.GracePeriod <= 0 {
		c.GracePeriod = DefaultGracePeriod
	}
	return c
}

// Stats describes one run.
type Stats struct {
	LinesRead   int // every line read from the source, valid or not
	Batches     int
	Faults      int
	MaxInFlight int
	Result      engine.BatchResult // summed over completed batches
}

// Scheduler turns a sequential line source into batches on a worker pool.
type Scheduler struct {
	cfg  Config
	proc BatchProcessor
	log  logrus.FieldLogger
	obs  Observer
}

// New returns a scheduler. log and obs may be nil.
func New(cfg Config, proc BatchProcessor, log logrus.FieldLogger, obs Observer) *Scheduler {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	if obs == nil {
		obs = nopObserver{}
	}
	return &Scheduler{cfg: cfg.withDefaults(), proc: proc, log: log, obs: obs}
}

// Config returns the effective configuration.
func (s *Scheduler) Config() Config { return s.cfg }

// Run streams the file at path ("-" = stdin) through the pool.
func (s *Scheduler) Run(ctx context.Context, path string) (Stats, error) {
	rc, err := linesrc.Open(path)
	if err != nil {
		return Stats{}, err
	}
	defer rc.Close()
	return s.RunReader(ctx, rc)
}

// RunReader streams r through the pool and returns once every dispatched
// batch has completed, or at the first fatal error.
func (s *Scheduler) RunReader(parent context.Context, r io.Reader) (st Stats, err error) {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	window := s.cfg.WindowFactor * s.cfg.Workers
	pool := NewPool(ctx, s.proc, s.cfg.Workers, window+1)
	defer func() {
		if serr := pool.Stop(s.cfg.GracePeriod); serr != nil {
			s.log.WithError(serr).Warn("forced worker shutdown")
			if err == nil {
				err = serr
			}
		}
	}()

	var (
		inFlight int
		fault    error
		batch    = make([]string, 0, s.cfg.BatchSize)
	)

	collect := func() error {
		c, werr := pool.Next(ctx)
		if werr != nil {
			return werr
		}
		inFlight--
		st.Result.Add(c.Result)
		s.obs.Completed(c, inFlight)
		if c.Err == nil {
			s.log.WithFields(logrus.Fields{"batch": c.Seq, "lines": c.Result.Lines, "dur": c.Duration}).Debug("batch done")
			return nil
		}
		st.Faults++
		if s.cfg.FaultPolicy == Abort {
			fault = c.Err
			return c.Err
		}
		s.log.WithError(c.Err).WithField("batch", c.Seq).Warn("batch fault ignored")
		return nil
	}

	dispatch := func() error {
		if err := pool.Submit(Batch{Seq: st.Batches, Lines: batch}); err != nil {
			return err
		}
		st.Batches++
		inFlight++
		if inFlight > st.MaxInFlight {
			st.MaxInFlight = inFlight
		}
		s.obs.Dispatched(inFlight)
		batch = make([]string, 0, s.cfg.BatchSize)
		for inFlight > window {
			if err := collect(); err != nil {
				return err
			}
		}
		return nil
	}

	err = linesrc.Each(ctx, r, func(line string) error {
		st.LinesRead++
		batch = append(batch, line)
		if len(batch) >= s.cfg.BatchSize {
			return dispatch()
		}
		return nil
	})
	if err == nil && len(batch) > 0 {
		err = dispatch()
	}
	for err == nil && inFlight > 0 {
		err = collect()
	}

	if err == nil {
		return st, nil
	}
	cancel()
	switch {
	case parent.Err() != nil:
		return st, fmt.Errorf("%w: %w", ErrInterrupted, parent.Err())
	case fault != nil:
		return st, fault
	}
	return st, err
}
