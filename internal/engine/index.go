// internal/engine/index.go
package engine

import (
	"github.com/cespare/xxhash/v2"
	"github.com/puzpuzpuz/xsync/v3"

	"recgroup/internal/record"
)

// GroupIndex maps a FieldKey to the id of the group that last claimed it.
// Reads and writes never block; concurrent writers are last-writer-wins.
type GroupIndex struct {
	m *xsync.MapOf[record.FieldKey, int]
}

func NewGroupIndex(capacity int) *GroupIndex {
	return &GroupIndex{
		m: xsync.NewMapOfWithHasher[record.FieldKey, int](hashFieldKey, xsync.WithPresize(capacity)),
	}
}

func hashFieldKey(k record.FieldKey, seed uint64) uint64 {
	h := xxhash.Sum64String(k.Value) ^ seed
	h ^= uint64(k.Pos) * 0x9e3779b97f4a7c15
	h ^= h >> 33
	h *= 0xff51afd7ed558ccd
	h ^= h >> 33
	return h
}

func (x *GroupIndex) Lookup(k record.FieldKey) (int, bool) { return x.m.Load(k) }

func (x *GroupIndex) Store(k record.FieldKey, id int) { x.m.Store(k, id) }

func (x *GroupIndex) Len() int { return x.m.Size() }

// Range visits every entry until f returns false.
func (x *GroupIndex) Range(f func(record.FieldKey, int) bool) { x.m.Range(f) }
