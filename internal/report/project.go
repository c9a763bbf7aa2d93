// internal/report/project.go
package report

import (
	"sort"

	"recgroup/internal/engine"
)

// Less orders groups for the report: larger groups first, then by id.
func Less(a, b engine.Group) bool {
	if a.Size() != b.Size() {
		return a.Size() > b.Size()
	}
	return a.ID < b.ID
}

// Project keeps live groups with more than one member and sorts them with Less.
// The input slice is not modified.
func Project(groups []engine.Group) []engine.Group {
	out := make([]engine.Group, 0, len(groups)/4)
	for _, g := range groups {
		if g.State != engine.Live || g.Size() < 2 {
			continue
		}
		out = append(out, g)
	}
	sort.SliceStable(out, func(i, j int) bool { return Less(out[i], out[j]) })
	return out
}

// Summary counts what a projection dropped.
type Summary struct {
	Reported   int
	Singletons int
	Tombstones int
}

func Summarize(groups []engine.Group) Summary {
	var s Summary
	for _, g := range groups {
		switch {
		case g.State == engine.Tombstoned:
			s.Tombstones++
		case g.Size() < 2:
			s.Singletons++
		default:
			s.Reported++
		}
	}
	return s
}
