// internal/output/yaml.go
package output

import (
	"io"

	"gopkg.in/yaml.v3"

	"recgroup/internal/engine"
)

// WriteYAML writes the v1 report as a single YAML document.
func WriteYAML(w io.Writer, groups []engine.Group) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(ToAPIReport(groups)); err != nil {
		return err
	}
	return enc.Close()
}
