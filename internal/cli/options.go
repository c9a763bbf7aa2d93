// internal/cli/options.go
package cli

import (
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"recgroup/internal/engine"
	"recgroup/internal/logging"
	"recgroup/internal/output"
	"recgroup/internal/pipeline"
)

// Options holds every setting after flags, environment and config file have
// been merged.
type Options struct {
	Input string // the single positional argument; "-" = stdin

	// Output
	Output      string
	Format      string
	MetricsFile string

	// Performance
	BatchSize    int
	Workers      int // 0 = all CPUs
	WindowFactor int
	GracePeriod  time.Duration

	// Behaviour
	Engine      engine.Strategy
	FaultPolicy pipeline.FaultPolicy

	// Logging
	LogLevel  string
	LogFormat string

	Config string
}

// raw mirrors Options with the flag-level types before validation.
type raw struct {
	output, format, metricsFile string
	batchSize, workers, window  int
	grace                       time.Duration
	engine, faultPolicy         string
	logLevel, logFormat         string
	config                      string
}

func (r raw) validate() (Options, error) {
	o := Options{
		Output:       r.output,
		Format:       r.format,
		MetricsFile:  r.metricsFile,
		BatchSize:    r.batchSize,
		Workers:      r.workers,
		WindowFactor: r.window,
		GracePeriod:  r.grace,
		LogLevel:     r.logLevel,
		LogFormat:    r.logFormat,
		Config:       r.config,
	}
	if o.Output == "" {
		return o, errors.New("--output must not be empty")
	}
	if !knownFormat(o.Format) {
		return o, errors.Errorf("invalid --format %q", o.Format)
	}
	if o.BatchSize < 1 {
		return o, errors.New("--batch-size must be ≥ 1")
	}
	if o.Workers < 0 {
		return o, errors.New("--workers must be ≥ 0")
	}
	if o.WindowFactor < 1 {
		return o, errors.New("--window-factor must be ≥ 1")
	}
	if o.GracePeriod <= 0 {
		return o, errors.New("--grace-period must be > 0")
	}
	var err error
	if o.Engine, err = engine.ParseStrategy(r.engine); err != nil {
		return o, errors.Wrap(err, "--engine")
	}
	if o.FaultPolicy, err = pipeline.ParseFaultPolicy(r.faultPolicy); err != nil {
		return o, errors.Wrap(err, "--fault-policy")
	}
	if _, err := logrus.ParseLevel(o.LogLevel); err != nil {
		return o, errors.Wrap(err, "--log-level")
	}
	if o.LogFormat != logging.FormatText && o.LogFormat != logging.FormatJSON {
		return o, errors.Errorf("invalid --log-format %q", o.LogFormat)
	}
	return o, nil
}

func knownFormat(f string) bool {
	for _, k := range output.Formats {
		if f == k {
			return true
		}
	}
	return false
}
