// pkg/api/groups_v1.go
package api

// SchemaV1 identifies the report layout below.
const SchemaV1 = "recgroup/v1"

// GroupV1 is one reported group. Index is the 1-based position in the
// report; ID is the engine's group id.
// Keep fields, names, and types stable. Add new fields only with ",omitempty".
type GroupV1 struct {
	Index   int      `json:"index" yaml:"index"`
	ID      int      `json:"id" yaml:"id"`
	Size    int      `json:"size" yaml:"size"`
	Members []string `json:"members" yaml:"members"`
}

// ReportV1 is the stable JSON/YAML schema for a grouping report.
type ReportV1 struct {
	Schema string    `json:"schema" yaml:"schema"`
	Count  int       `json:"count" yaml:"count"` // groups with more than one member
	Groups []GroupV1 `json:"groups" yaml:"groups"`
}
