// internal/engine/unionfind.go
package engine

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"recgroup/internal/record"
)

// slot is one arena entry. Only roots hold members; canonical is the
// smallest id in the root's set.
type slot struct {
	parent    int
	rank      uint8
	canonical int
	members   map[string]struct{}
}

// unionFind keeps resolve, merge, and index update under a single lock, so a
// stale index entry always resolves to the live root of its set.
type unionFind struct {
	mu    sync.Mutex
	slots []slot
	index *GroupIndex
	log   logrus.FieldLogger
}

func newUnionFind(index *GroupIndex, log logrus.FieldLogger) *unionFind {
	return &unionFind{index: index, log: log}
}

func (u *unionFind) ProcessBatch(ctx context.Context, lines []string) (BatchResult, error) {
	var res BatchResult
	if err := ctx.Err(); err != nil {
		return res, err
	}
	roots := make([]int, 0, 8)
	for _, line := range lines {
		res.Lines++
		if !record.Valid(line) {
			res.Invalid++
			continue
		}
		keys := record.Keys(line)
		roots = u.place(line, keys, roots[:0], &res)
	}
	return res, nil
}

func (u *unionFind) place(line string, keys []record.FieldKey, roots []int, res *BatchResult) []int {
	u.mu.Lock()
	defer u.mu.Unlock()

	for _, k := range keys {
		if id, ok := u.index.Lookup(k); ok {
			roots = distinct(roots, u.find(id))
		}
	}

	var root int
	if len(roots) == 0 {
		root = len(u.slots)
		u.slots = append(u.slots, slot{parent: root, canonical: root, members: map[string]struct{}{}})
		res.Created++
	} else {
		root = roots[0]
		for _, r := range roots[1:] {
			root = u.union(root, r)
			res.Merged++
		}
	}
	u.slots[root].members[line] = struct{}{}

	for _, k := range keys {
		u.index.Store(k, root)
	}
	return roots
}

// find returns the root of x, halving the path on the way.
func (u *unionFind) find(x int) int {
	for u.slots[x].parent != x {
		p := u.slots[x].parent
		u.slots[x].parent = u.slots[p].parent
		x = u.slots[x].parent
	}
	return x
}

// union links two distinct roots by rank and returns the surviving root.
func (u *unionFind) union(a, b int) int {
	if u.slots[a].rank < u.slots[b].rank {
		a, b = b, a
	}
	ra, rb := &u.slots[a], &u.slots[b]
	rb.parent = a
	if ra.rank == rb.rank {
		ra.rank++
	}
	if rb.canonical < ra.canonical {
		ra.canonical = rb.canonical
	}
	if len(rb.members) > len(ra.members) {
		ra.members, rb.members = rb.members, ra.members
	}
	for m := range rb.members {
		ra.members[m] = struct{}{}
	}
	rb.members = nil
	u.log.WithFields(logrus.Fields{"root": a, "absorbed": b}).Debug("merged groups")
	return a
}

// Groups reports one live group per set, at the slot of its canonical id.
// Every other slot is a tombstone.
func (u *unionFind) Groups() []Group {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := make([]Group, len(u.slots))
	for id := range u.slots {
		out[id] = Group{ID: id, State: Tombstoned}
	}
	for id := range u.slots {
		if u.slots[id].parent != id {
			continue
		}
		c := u.slots[id].canonical
		out[c] = Group{ID: c, State: Live, Members: sortedMembers(u.slots[id].members)}
	}
	return out
}

func (u *unionFind) Stats() Stats {
	u.mu.Lock()
	st := Stats{Groups: len(u.slots)}
	for id := range u.slots {
		if u.slots[id].parent == id {
			st.Live++
		}
	}
	u.mu.Unlock()
	st.Keys = u.index.Len()
	return st
}
