// internal/engine/engine.go
package engine

import (
	"context"
	"fmt"
	"sort"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ErrTombstoned is returned when a record resolves to a group whose members
// were already moved elsewhere.
var ErrTombstoned = errors.New("engine: target group is tombstoned")

// State tags an arena slot.
type State uint8

const (
	Live State = iota
	Tombstoned
)

func (s State) String() string {
	if s == Tombstoned {
		return "tombstoned"
	}
	return "live"
}

// Strategy selects the merge protocol.
type Strategy string

const (
	SplitLock Strategy = "split-lock"
	UnionFind Strategy = "union-find"
)

// ParseStrategy accepts the CLI spelling of a strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case SplitLock, UnionFind:
		return Strategy(s), nil
	}
	return "", fmt.Errorf("unknown engine %q (want %s | %s)", s, UnionFind, SplitLock)
}

// Group is a snapshot of one arena slot. Members are sorted.
type Group struct {
	ID      int
	State   State
	Members []string
}

func (g Group) Size() int { return len(g.Members) }

// BatchResult summarizes one ProcessBatch call.
type BatchResult struct {
	Lines   int // lines seen, valid or not
	Invalid int
	Created int // groups created
	Merged  int // groups tombstoned by merges
}

// Add accumulates o into r.
func (r *BatchResult) Add(o BatchResult) {
	r.Lines += o.Lines
	r.Invalid += o.Invalid
	r.Created += o.Created
	r.Merged += o.Merged
}

// Stats is a point-in-time view of the engine.
type Stats struct {
	Groups int // arena slots, tombstones included
	Live   int
	Keys   int // distinct FieldKeys indexed
}

// Grouper assigns records to groups. ProcessBatch is safe for concurrent use;
// lines within one call are handled in order.
type Grouper interface {
	ProcessBatch(ctx context.Context, lines []string) (BatchResult, error)
	Groups() []Group
	Stats() Stats
}

// Config controls engine construction.
type Config struct {
	Strategy      Strategy
	IndexCapacity int // presize hint for the FieldKey index
	Logger        logrus.FieldLogger
}

// DefaultIndexCapacity matches the initial index size used for large inputs.
const DefaultIndexCapacity = 50_000

// New returns a Grouper for cfg.Strategy (union-find when empty).
func New(cfg Config) (Grouper, error) {
	if cfg.IndexCapacity <= 0 {
		cfg.IndexCapacity = DefaultIndexCapacity
	}
	if cfg.Logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		cfg.Logger = l
	}
	log := cfg.Logger.WithField("engine", string(cfg.Strategy))
	switch cfg.Strategy {
	case "", UnionFind:
		return newUnionFind(NewGroupIndex(cfg.IndexCapacity), log), nil
	case SplitLock:
		return newSplitLock(NewGroupIndex(cfg.IndexCapacity), log), nil
	}
	return nil, errors.Errorf("unknown engine strategy %q", cfg.Strategy)
}

func sortedMembers(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for m := range set {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// distinct appends v to ids unless already present. Batches see few ids per
// record, so a linear scan beats a map.
func distinct(ids []int, v int) []int {
	for _, x := range ids {
		if x == v {
			return ids
		}
	}
	return append(ids, v)
}
