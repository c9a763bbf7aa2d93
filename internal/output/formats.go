// internal/output/formats.go
package output

// Report formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Formats lists every format in help order.
var Formats = []string{FormatText, FormatJSON, FormatYAML}

// HeaderPrefix starts the first line of a text report.
const HeaderPrefix = "Groups with more than one element: "
