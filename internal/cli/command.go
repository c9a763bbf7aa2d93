// internal/cli/command.go
package cli

import (
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"recgroup/internal/engine"
	"recgroup/internal/pipeline"
	"recgroup/internal/version"
)

// Defaults shown in help and used when nothing else is set.
const (
	DefaultOutput = "output.txt"
	DefaultFormat = "text"
)

// Parse runs the command line through cobra. It returns ok=false when there
// is nothing to run: help, version, or a wrong number of positional
// arguments (usage is printed to stdout in every such case). A non-nil error
// is a flag or configuration problem.
func Parse(argv []string, stdout, stderr io.Writer) (opts Options, ok bool, err error) {
	var r raw
	cmd := &cobra.Command{
		Use:   "recgroup [flags] <input-file>",
		Short: "Group delimited records that share a value at the same field position",
		Long: `recgroup reads ';'-delimited records (one per line), links records that share
an identical value at the same field position, and reports every group with
more than one member, largest first.

Settings come from flags, then RECGROUP_* environment variables, then the
TOML file given with --config.`,
		Example: `  recgroup lng.txt
  recgroup -o - --format json lng.txt.gz
  zcat big.gz | recgroup -t 8 --batch-size 1000 -`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ArbitraryArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := setAllConfig(viper.New(), cmd.Flags()); err != nil {
				return err
			}
			opts, err = r.validate()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return cmd.Usage()
			}
			opts.Input = args[0]
			ok = true
			return nil
		},
	}
	cmd.SetArgs(argv)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	f := cmd.Flags()
	f.SortFlags = false
	f.StringVarP(&r.output, "output", "o", DefaultOutput, "report file ('-' = stdout)")
	f.StringVar(&r.format, "format", DefaultFormat, "report format: text | json | yaml")
	f.IntVar(&r.batchSize, "batch-size", pipeline.DefaultBatchSize, "lines per batch")
	f.IntVarP(&r.workers, "workers", "t", 0, "worker goroutines (0 = all CPUs)")
	f.IntVar(&r.window, "window-factor", pipeline.DefaultWindowFactor, "in-flight batch limit per worker")
	f.StringVar(&r.engine, "engine", string(engine.UnionFind), "grouping engine: union-find | split-lock")
	f.StringVar(&r.faultPolicy, "fault-policy", string(pipeline.Abort), "on a failed batch: abort | best-effort")
	f.DurationVar(&r.grace, "grace-period", pipeline.DefaultGracePeriod, "worker shutdown wait before forced cancel")
	f.StringVar(&r.metricsFile, "metrics-file", "", "write Prometheus text metrics here at exit")
	f.StringVar(&r.logLevel, "log-level", "info", "log level: debug | info | warn | error")
	f.StringVar(&r.logFormat, "log-format", "text", "log format: text | json")
	f.StringVarP(&r.config, "config", "c", "", "TOML configuration file")
	cmd.SetVersionTemplate("recgroup version {{.Version}}\n")

	err = cmd.Execute()
	return opts, ok && err == nil, err
}
