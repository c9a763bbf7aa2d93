// internal/output/json.go
package output

import (
	"encoding/json"
	"io"

	"recgroup/internal/engine"
	"recgroup/pkg/api"
)

// ToAPIReport converts projected groups to the stable wire schema (v1).
func ToAPIReport(groups []engine.Group) api.ReportV1 {
	r := api.ReportV1{Schema: api.SchemaV1, Count: len(groups), Groups: make([]api.GroupV1, 0, len(groups))}
	for i, g := range groups {
		r.Groups = append(r.Groups, api.GroupV1{
			Index:   i + 1,
			ID:      g.ID,
			Size:    g.Size(),
			Members: sortedCopy(g.Members),
		})
	}
	return r
}

// WriteJSON writes the v1 report as indented JSON.
func WriteJSON(w io.Writer, groups []engine.Group) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ToAPIReport(groups))
}
