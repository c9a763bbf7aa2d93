// internal/appcore/summary.go
package appcore

import (
	"os"

	"github.com/dustin/go-humanize"
	"github.com/shirou/gopsutil/v3/process"
	"github.com/sirupsen/logrus"
)

// logSummary reports the run to the operator. It is emitted for failed runs
// too, with whatever was counted before the failure.
func logSummary(log logrus.FieldLogger, res Result, err error) {
	f := logrus.Fields{
		"elapsed_ms": res.Elapsed.Milliseconds(),
		"lines":      humanize.Comma(int64(res.Stats.LinesRead)),
		"invalid":    humanize.Comma(int64(res.Stats.Result.Invalid)),
		"batches":    res.Stats.Batches,
		"groups":     len(res.Groups),
		"faults":     res.Stats.Faults,
	}
	if rss, ok := residentBytes(); ok {
		f["rss"] = humanize.IBytes(rss)
	}
	entry := log.WithFields(f)
	if err != nil {
		entry.Warn("partial summary")
		return
	}
	entry.Info("grouping complete")
}

func residentBytes() (uint64, bool) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0, false
	}
	mi, err := p.MemoryInfo()
	if err != nil || mi == nil {
		return 0, false
	}
	return mi.RSS, true
}
