// Package telemetry reads steering-wheel logs recorded alongside session
// video. Only named numeric columns are exposed.
package telemetry

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/banshee-data/steering.dataset/internal/fsutil"
)

// DefaultColumn holds the steering value in the recorded logs.
const DefaultColumn = "wheel"

// ErrRead is matched by every malformed-table and missing-column error.
var ErrRead = errors.New("telemetry: read failed")

// Source is an open telemetry table.
type Source interface {
	// ReadColumn returns the named column in row order.
	ReadColumn(name string) ([]float64, error)
	Close() error
}

// Opener opens a telemetry Source by path. A missing path yields an error
// matching fs.ErrNotExist.
type Opener interface {
	Open(path string) (Source, error)
}

// CSVOpener opens comma-separated logs on a FileSystem.
type CSVOpener struct {
	FS fsutil.FileSystem
}

// Open opens path for column reads.
func (o CSVOpener) Open(path string) (Source, error) {
	fsys := o.FS
	if fsys == nil {
		fsys = fsutil.OSFileSystem{}
	}
	f, err := fsys.Open(path)
	if err != nil {
		return nil, err
	}
	return &CSVSource{r: f, c: f, path: path}, nil
}

// CSVSource is a CSV table with a header row. The table is parsed on the
// first ReadColumn call and kept for later calls.
type CSVSource struct {
	r    io.Reader
	c    io.Closer
	path string

	header  []string
	records [][]string
	parsed  bool
}

// NewCSVSource wraps r. The reader is not closed by Close.
func NewCSVSource(r io.Reader) *CSVSource {
	return &CSVSource{r: r, path: "<reader>"}
}

func (s *CSVSource) parse() error {
	if s.parsed {
		return nil
	}
	cr := csv.NewReader(s.r)
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrRead, s.path, err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("%w: %s: missing header row", ErrRead, s.path)
	}
	s.header = rows[0]
	if len(s.header) > 0 {
		s.header[0] = strings.TrimPrefix(s.header[0], "\ufeff")
	}
	s.records = rows[1:]
	s.parsed = true
	return nil
}

// Columns returns the header names.
func (s *CSVSource) Columns() ([]string, error) {
	if err := s.parse(); err != nil {
		return nil, err
	}
	return append([]string(nil), s.header...), nil
}

// ReadColumn parses every row's value for name. Empty, NaN and
// non-numeric cells are errors.
func (s *CSVSource) ReadColumn(name string) ([]float64, error) {
	if err := s.parse(); err != nil {
		return nil, err
	}
	col := -1
	for i, h := range s.header {
		if strings.TrimSpace(h) == name {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("%w: %s: no column %q (have %s)", ErrRead, s.path, name, strings.Join(s.header, ","))
	}

	out := make([]float64, 0, len(s.records))
	for i, rec := range s.records {
		// Data rows are numbered from 2 to match editor line numbers.
		line := i + 2
		if col >= len(rec) {
			return nil, fmt.Errorf("%w: %s line %d: missing %q value", ErrRead, s.path, line, name)
		}
		cell := strings.TrimSpace(rec[col])
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil || math.IsNaN(v) {
			return nil, fmt.Errorf("%w: %s line %d: %q is not a number", ErrRead, s.path, line, cell)
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *CSVSource) Close() error {
	if s.c == nil {
		return nil
	}
	err := s.c.Close()
	s.c = nil
	return err
}
