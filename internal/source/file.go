package source

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/paulmach/osm/osmxml"
)

// Format is an input file encoding.
type Format int

const (
	FormatPBF Format = iota
	FormatXML
)

// DetectFormat picks the format from the file name. Anything that is not
// .osm / .xml (optionally gzipped) is treated as PBF.
func DetectFormat(path string) (Format, bool) {
	name := strings.ToLower(path)
	gz := strings.HasSuffix(name, ".gz")
	name = strings.TrimSuffix(name, ".gz")
	if strings.HasSuffix(name, ".osm") || strings.HasSuffix(name, ".xml") {
		return FormatXML, gz
	}
	return FormatPBF, false
}

// osmScanner adapts an osm.Scanner and owns the readers behind it.
type osmScanner struct {
	scanner osm.Scanner
	closers []io.Closer
	record  Record
}

// Open opens path and returns a scanner over its elements. workers is the
// number of PBF decoding goroutines; values below 1 use all CPUs. The caller
// must Close the scanner, which also closes the file.
func Open(ctx context.Context, path string, workers int) (Scanner, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	return NewReader(ctx, f, path, workers)
}

// NewReader wraps r, named name for format detection. When r is an
// io.Closer it is closed with the scanner.
func NewReader(ctx context.Context, r io.Reader, name string, workers int) (Scanner, error) {
	if workers < 1 {
		workers = runtime.NumCPU()
	}

	s := &osmScanner{}
	if c, ok := r.(io.Closer); ok {
		s.closers = append(s.closers, c)
	}

	format, gz := DetectFormat(name)
	if gz {
		gzReader, err := gzip.NewReader(r)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		s.closers = append(s.closers, gzReader)
		r = gzReader
	}

	switch format {
	case FormatXML:
		s.scanner = osmxml.New(ctx, r)
	default:
		s.scanner = osmpbf.New(ctx, r, workers)
	}
	return s, nil
}

func (s *osmScanner) Scan() bool {
	if !s.scanner.Scan() {
		return false
	}
	s.record = FromObject(s.scanner.Object())
	return true
}

func (s *osmScanner) Record() Record { return s.record }

func (s *osmScanner) Err() error {
	err := s.scanner.Err()
	if err == io.EOF {
		return nil
	}
	return err
}

// Close stops decoding and releases the underlying readers, innermost
// first.
func (s *osmScanner) Close() error {
	var first error
	if s.scanner != nil {
		first = s.scanner.Close()
	}
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	s.closers = nil
	return first
}
