// internal/app/app.go
package app

import (
	"context"
	"fmt"
	"io"

	"recgroup/internal/appcore"
	"recgroup/internal/cli"
	"recgroup/internal/engine"
	"recgroup/internal/logging"
	"recgroup/internal/pipeline"
	"recgroup/internal/writers"
)

// RunContext parses argv, runs one grouping job, and returns the exit code.
func RunContext(parent context.Context, argv []string, stdout, stderr io.Writer) int {
	opts, ok, err := cli.Parse(argv, stdout, stderr)
	if err != nil {
		if writers.IsBrokenPipe(err) {
			return appcore.ExitOK
		}
		_, _ = fmt.Fprintf(stderr, "error: %v\nRun 'recgroup --help' for usage.\n", err)
		return appcore.ExitUsage
	}
	if !ok {
		return appcore.ExitOK
	}

	log, err := logging.New(logging.Config{Level: opts.LogLevel, Format: opts.LogFormat, Out: stderr})
	if err != nil {
		_, _ = fmt.Fprintln(stderr, "error:", err)
		return appcore.ExitUsage
	}
	return appcore.Run(parent, stdout, log, appcore.Options{
		Input:         opts.Input,
		Output:        opts.Output,
		Format:        opts.Format,
		MetricsFile:   opts.MetricsFile,
		Engine:        opts.Engine,
		IndexCapacity: engine.DefaultIndexCapacity,
		Pipeline: pipeline.Config{
			BatchSize:    opts.BatchSize,
			Workers:      opts.Workers,
			WindowFactor: opts.WindowFactor,
			FaultPolicy:  opts.FaultPolicy,
			GracePeriod:  opts.GracePeriod,
		},
	})
}

func Run(argv []string, stdout, stderr io.Writer) int {
	return RunContext(context.Background(), argv, stdout, stderr)
}
