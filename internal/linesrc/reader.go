// internal/linesrc/reader.go
package linesrc

import (
	"bufio"
	"compress/gzip"
	"context"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// BufferSize is the read buffer used for input files.
const BufferSize = 8 << 20

// maxLine bounds a single record; longer lines are an I/O error.
const maxLine = 64 << 20

var ErrEmptyPath = errors.New("linesrc: empty input path")

// Open returns a reader for path. "-" reads stdin; a .gz suffix is
// decompressed transparently.
func Open(path string) (io.ReadCloser, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	fh, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open input")
	}
	if strings.HasSuffix(path, ".gz") {
		gr, err := gzip.NewReader(fh)
		if err != nil {
			fh.Close()
			return nil, errors.Wrapf(err, "gzip %s", path)
		}
		return struct {
			io.Reader
			io.Closer
		}{Reader: gr, Closer: fh}, nil
	}
	return fh, nil
}

// Each calls emit for every line of r in order, without the line terminator
// (LF or CRLF). It stops at the first emit error or when ctx is done.
func Each(ctx context.Context, r io.Reader, emit func(string) error) error {
	sc := bufio.NewScanner(bufio.NewReaderSize(r, BufferSize))
	sc.Buffer(make([]byte, 64*1024), maxLine)
	for sc.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		line := sc.Text()
		line = strings.TrimSuffix(line, "\r")
		if err := emit(line); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return errors.Wrap(err, "read input")
	}
	return nil
}

// EachFile opens path and streams its lines through emit.
func EachFile(ctx context.Context, path string, emit func(string) error) error {
	rc, err := Open(path)
	if err != nil {
		return err
	}
	defer rc.Close()
	return Each(ctx, rc, emit)
}
