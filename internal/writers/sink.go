// internal/writers/sink.go
package writers

import (
	"bufio"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"recgroup/internal/engine"
)

// Stdout is the sink path that selects standard output.
const Stdout = "-"

// Sink is a buffered report destination. Close flushes and, for files,
// closes the handle.
type Sink struct {
	*bufio.Writer
	path string
	f    *os.File
}

// OpenSink creates (truncating) the file at path, or wraps stdout when path
// is "-".
func OpenSink(path string, stdout io.Writer) (*Sink, error) {
	if path == "" {
		return nil, errors.New("empty output path")
	}
	if path == Stdout {
		return &Sink{Writer: bufio.NewWriter(stdout), path: path}, nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrapf(err, "create output dir %s", dir)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrapf(err, "create output %s", path)
	}
	return &Sink{Writer: bufio.NewWriter(f), path: path, f: f}, nil
}

// Path returns the path the sink was opened with.
func (s *Sink) Path() string { return s.path }

func (s *Sink) Close() error {
	ferr := s.Flush()
	if s.f == nil {
		return ferr
	}
	cerr := s.f.Close()
	if ferr != nil {
		return errors.Wrapf(ferr, "write %s", s.path)
	}
	return errors.Wrapf(cerr, "close %s", s.path)
}

// WriteReport renders groups in format to the sink at path. The format is
// resolved before the file is created.
func WriteReport(path, format string, stdout io.Writer, groups []engine.Group) error {
	fn, err := Lookup(format)
	if err != nil {
		return err
	}
	s, err := OpenSink(path, stdout)
	if err != nil {
		return err
	}
	if err := fn(s, groups); err != nil {
		_ = s.Close()
		return errors.Wrapf(err, "render %s report", format)
	}
	return s.Close()
}
