// internal/metrics/metrics.go
package metrics

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"recgroup/internal/engine"
	"recgroup/internal/pipeline"
)

const namespace = "recgroup"

// Recorder holds the run's metrics on a private registry. It implements
// pipeline.Observer.
type Recorder struct {
	reg *prometheus.Registry

	linesRead     prometheus.Counter
	linesInvalid  prometheus.Counter
	batches       *prometheus.CounterVec
	merges        prometheus.Counter
	groupsCreated prometheus.Counter
	inFlight      prometheus.Gauge
	batchDuration prometheus.Histogram
	groups        *prometheus.GaugeVec
	indexKeys     prometheus.Gauge
}

var _ pipeline.Observer = (*Recorder)(nil)

// New registers every metric on a fresh registry.
func New() *Recorder {
	r := &Recorder{
		reg: prometheus.NewRegistry(),
		linesRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "lines_read_total",
			Help: "Lines handled by completed batches, valid or not.",
		}),
		linesInvalid: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "lines_invalid_total",
			Help: "Lines rejected by the record validator.",
		}),
		batches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "batches_total",
			Help: "Completed batches by outcome.",
		}, []string{"status"}),
		merges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "merges_total",
			Help: "Groups tombstoned by merges.",
		}),
		groupsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "groups_created_total",
			Help: "Groups created.",
		}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "batches_in_flight",
			Help: "Batches dispatched but not yet completed.",
		}),
		batchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "batch_duration_seconds",
			Help:    "Time spent processing one batch.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
		}),
		groups: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "groups",
			Help: "Arena slots at the end of the run by state.",
		}, []string{"state"}),
		indexKeys: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "index_keys",
			Help: "Distinct field keys in the group index.",
		}),
	}
	r.reg.MustRegister(r.linesRead, r.linesInvalid, r.batches, r.merges,
		r.groupsCreated, r.inFlight, r.batchDuration, r.groups, r.indexKeys)
	// Both outcomes appear in the export even when zero.
	r.batches.WithLabelValues(statusOK)
	r.batches.WithLabelValues(statusFault)
	return r
}

const (
	statusOK    = "ok"
	statusFault = "fault"
)

// Registry exposes the underlying registry for gathering.
func (r *Recorder) Registry() *prometheus.Registry { return r.reg }

func (r *Recorder) Dispatched(inFlight int) { r.inFlight.Set(float64(inFlight)) }

func (r *Recorder) Completed(c pipeline.Completion, inFlight int) {
	r.inFlight.Set(float64(inFlight))
	status := statusOK
	if c.Err != nil {
		status = statusFault
	}
	r.batches.WithLabelValues(status).Inc()
	r.batchDuration.Observe(c.Duration.Seconds())
	r.linesRead.Add(float64(c.Result.Lines))
	r.linesInvalid.Add(float64(c.Result.Invalid))
	r.merges.Add(float64(c.Result.Merged))
	r.groupsCreated.Add(float64(c.Result.Created))
}

// RecordEngine snapshots the engine's arena and index sizes.
func (r *Recorder) RecordEngine(st engine.Stats) {
	r.groups.WithLabelValues(engine.Live.String()).Set(float64(st.Live))
	r.groups.WithLabelValues(engine.Tombstoned.String()).Set(float64(st.Groups - st.Live))
	r.indexKeys.Set(float64(st.Keys))
}

// WriteTextfile writes the registry in the Prometheus text format to path,
// via a temp file and rename so a textfile collector never reads a partial
// file.
func (r *Recorder) WriteTextfile(path string) error {
	mfs, err := r.reg.Gather()
	if err != nil {
		return errors.Wrap(err, "gather metrics")
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "create metrics file")
	}
	defer os.Remove(tmp.Name())
	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(tmp, mf); err != nil {
			tmp.Close()
			return errors.Wrapf(err, "encode %s", mf.GetName())
		}
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close metrics file")
	}
	return errors.Wrap(os.Rename(tmp.Name(), path), "rename metrics file")
}
