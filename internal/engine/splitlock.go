// internal/engine/splitlock.go
package engine

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"recgroup/internal/record"
)

type group struct {
	state   State
	members map[string]struct{}
}

// splitLock serializes arena mutation behind one mutex and updates the index
// after releasing it.
type splitLock struct {
	mu     sync.Mutex
	groups []*group
	index  *GroupIndex
	log    logrus.FieldLogger
}

func newSplitLock(index *GroupIndex, log logrus.FieldLogger) *splitLock {
	return &splitLock{index: index, log: log}
}

func (s *splitLock) ProcessBatch(ctx context.Context, lines []string) (BatchResult, error) {
	var res BatchResult
	if err := ctx.Err(); err != nil {
		return res, err
	}
	ids := make([]int, 0, 8)
	for _, line := range lines {
		res.Lines++
		if !record.Valid(line) {
			res.Invalid++
			continue
		}
		keys := record.Keys(line)

		ids = ids[:0]
		for _, k := range keys {
			if id, ok := s.index.Lookup(k); ok {
				ids = distinct(ids, id)
			}
		}

		target, created, merged, err := s.assign(line, ids)
		res.Created += created
		res.Merged += merged
		if err != nil {
			return res, errors.Wrapf(err, "record %d of batch", res.Lines)
		}

		for _, k := range keys {
			s.index.Store(k, target)
		}
	}
	return res, nil
}

// assign places line into a group under the arena lock and returns the
// target id.
func (s *splitLock) assign(line string, ids []int) (target, created, merged int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(ids) == 0 {
		target = len(s.groups)
		s.groups = append(s.groups, &group{members: map[string]struct{}{line: {}}})
		return target, 1, 0, nil
	}

	target = ids[0]
	for _, id := range ids[1:] {
		if id < target {
			target = id
		}
	}
	tg := s.groups[target]
	if tg.state == Tombstoned {
		s.log.WithField("group", target).Debug("stale index entry points at tombstone")
		return target, 0, 0, errors.Wrapf(ErrTombstoned, "group %d", target)
	}

	for _, id := range ids {
		if id == target {
			continue
		}
		g := s.groups[id]
		if g.state == Tombstoned {
			continue
		}
		for m := range g.members {
			tg.members[m] = struct{}{}
		}
		g.members = nil
		g.state = Tombstoned
		merged++
	}
	tg.members[line] = struct{}{}
	return target, 0, merged, nil
}

func (s *splitLock) Groups() []Group {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Group, len(s.groups))
	for id, g := range s.groups {
		out[id] = Group{ID: id, State: g.state}
		if g.state == Live {
			out[id].Members = sortedMembers(g.members)
		}
	}
	return out
}

func (s *splitLock) Stats() Stats {
	s.mu.Lock()
	st := Stats{Groups: len(s.groups)}
	for _, g := range s.groups {
		if g.state == Live {
			st.Live++
		}
	}
	s.mu.Unlock()
	st.Keys = s.index.Len()
	return st
}
