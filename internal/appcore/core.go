// internal/appcore/core.go
package appcore

import (
	"context"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"recgroup/internal/engine"
	"recgroup/internal/metrics"
	"recgroup/internal/pipeline"
	"recgroup/internal/report"
	"recgroup/internal/writers"
)

// Exit codes.
const (
	ExitOK          = 0
	ExitUsage       = 2
	ExitRuntime     = 3
	ExitInterrupted = 130
)

type Options struct {
	Input string

	Output      string
	Format      string
	MetricsFile string

	Engine        engine.Strategy
	IndexCapacity int
	Pipeline      pipeline.Config
}

// Result is what one run produced, for callers that want more than the exit
// code.
type Result struct {
	Stats   pipeline.Stats
	Engine  engine.Stats
	Groups  []engine.Group // projected
	Elapsed time.Duration
}

// Run groups the records of o.Input, writes the report, and returns the exit
// code. Every failure is logged to log before returning.
func Run(ctx context.Context, stdout io.Writer, log logrus.FieldLogger, o Options) int {
	res, err := Execute(ctx, stdout, log, o)
	logSummary(log, res, err)
	code := ExitCode(err)
	switch code {
	case ExitOK:
	case ExitInterrupted:
		log.WithError(err).Warn("interrupted")
	default:
		log.WithError(err).Error("run failed")
	}
	return code
}

// Execute does the work behind Run and returns the first fatal error.
func Execute(ctx context.Context, stdout io.Writer, log logrus.FieldLogger, o Options) (res Result, err error) {
	start := time.Now()
	defer func() { res.Elapsed = time.Since(start) }()

	// Resolve the report writer before reading any input.
	if _, err := writers.Lookup(o.Format); err != nil {
		return res, err
	}

	eng, err := engine.New(engine.Config{Strategy: o.Engine, IndexCapacity: o.IndexCapacity, Logger: log})
	if err != nil {
		return res, err
	}
	rec := metrics.New()
	sched := pipeline.New(o.Pipeline, eng, log, rec)
	cfg := sched.Config()
	log.WithFields(logrus.Fields{
		"input":        o.Input,
		"engine":       engineName(o.Engine),
		"workers":      cfg.Workers,
		"batch_size":   cfg.BatchSize,
		"window":       cfg.WindowFactor * cfg.Workers,
		"fault_policy": cfg.FaultPolicy,
	}).Info("grouping started")

	res.Stats, err = sched.Run(ctx, o.Input)
	res.Engine = eng.Stats()
	rec.RecordEngine(res.Engine)
	if err != nil {
		if !errors.Is(err, pipeline.ErrStopTimeout) {
			writeMetrics(log, rec, o.MetricsFile)
			return res, err
		}
		// Every batch completed before the pool timed out; the result stands.
		log.WithError(err).Warn("workers were force-stopped")
	}

	res.Groups = report.Project(eng.Groups())
	if werr := writers.WriteReport(o.Output, o.Format, stdout, res.Groups); werr != nil {
		if writers.IsBrokenPipe(werr) {
			log.Debug("report reader went away")
		} else {
			writeMetrics(log, rec, o.MetricsFile)
			return res, werr
		}
	}
	if o.MetricsFile != "" {
		if merr := rec.WriteTextfile(o.MetricsFile); merr != nil {
			return res, merr
		}
	}
	return res, nil
}

// writeMetrics exports what was collected on a failing run; its own error is
// only logged so the original one is reported.
func writeMetrics(log logrus.FieldLogger, rec *metrics.Recorder, path string) {
	if path == "" {
		return
	}
	if err := rec.WriteTextfile(path); err != nil {
		log.WithError(err).Warn("metrics not written")
	}
}

func engineName(s engine.Strategy) string {
	if s == "" {
		return string(engine.UnionFind)
	}
	return string(s)
}

// ExitCode classifies a run error.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, pipeline.ErrInterrupted), errors.Is(err, context.Canceled):
		return ExitInterrupted
	}
	return ExitRuntime
}
