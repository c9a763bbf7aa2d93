// internal/writers/registry.go
package writers

import (
	"io"
	"sort"
	"sync"

	"github.com/pkg/errors"

	"recgroup/internal/engine"
	"recgroup/internal/output"
)

// GroupWriter renders projected groups to w.
type GroupWriter func(w io.Writer, groups []engine.Group) error

var (
	mu      sync.RWMutex
	reports = map[string]GroupWriter{}
)

func init() {
	Register(output.FormatText, output.WriteText)
	Register(output.FormatJSON, output.WriteJSON)
	Register(output.FormatYAML, output.WriteYAML)
}

// Register adds or replaces the writer for format (last wins).
func Register(format string, fn GroupWriter) {
	mu.Lock()
	reports[format] = fn
	mu.Unlock()
}

// Lookup returns the writer registered for format.
func Lookup(format string) (GroupWriter, error) {
	mu.RLock()
	fn, ok := reports[format]
	mu.RUnlock()
	if !ok {
		return nil, errors.Errorf("unknown report format %q (no writer registered)", format)
	}
	return fn, nil
}

// Registered lists the known formats, sorted.
func Registered() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(reports))
	for f := range reports {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Write dispatches to the writer for format.
func Write(format string, w io.Writer, groups []engine.Group) error {
	fn, err := Lookup(format)
	if err != nil {
		return err
	}
	return fn(w, groups)
}
