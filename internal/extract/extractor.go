// SPDX-License-Identifier: Apache-2.0

package extract

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// Extractor scans log files line by line. An Extractor holds no per-scan
// state and may be shared between goroutines.
type Extractor struct {
	enc    encoding.Encoding
	logger *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithEncoding sets the text encoding of scanned input.
func WithEncoding(enc encoding.Encoding) Option {
	return func(e *Extractor) {
		if enc != nil {
			e.enc = enc
		}
	}
}

// WithLogger overrides the default slog logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Extractor) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewExtractor creates an Extractor reading UTF-8 unless configured otherwise.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{}
	for _, opt := range opts {
		opt(e)
	}
	if e.enc == nil {
		e.enc, _ = LookupEncoding(DefaultEncoding)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// Extract returns the qualifying values of the file at path in order of
// appearance.
func (e *Extractor) Extract(ctx context.Context, path string, c Criteria) ([]int64, error) {
	report, err := e.Run(ctx, path, c)
	if err != nil {
		return nil, err
	}
	return report.Values, nil
}

// ExtractReader is Extract over an arbitrary reader.
func (e *Extractor) ExtractReader(ctx context.Context, r io.Reader, c Criteria) ([]int64, error) {
	report, err := e.RunReader(ctx, r, "", c)
	if err != nil {
		return nil, err
	}
	return report.Values, nil
}

// Run scans the file at path and returns the values, their summary and
// scan counters. A missing or unreadable file yields *NotFoundError; any
// other failure yields *IOError.
func (e *Extractor) Run(ctx context.Context, path string, c Criteria) (Report, error) {
	if err := c.Validate(); err != nil {
		return Report{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			return Report{}, &NotFoundError{Path: path, Err: err}
		}
		return Report{}, &IOError{Path: path, Err: err}
	}
	defer f.Close()

	return e.RunReader(ctx, f, path, c)
}

// RunReader is Run over an arbitrary reader. source labels the input in
// errors and logs.
func (e *Extractor) RunReader(ctx context.Context, r io.Reader, source string, c Criteria) (Report, error) {
	if err := c.Validate(); err != nil {
		return Report{}, err
	}

	m := newTokenMatcher(c.Marker)
	report := Report{Source: source, Values: []int64{}}
	br := bufio.NewReader(transform.NewReader(r, e.enc.NewDecoder()))

	for {
		line, err := br.ReadString('\n')
		if line != "" {
			report.LinesScanned++
			e.scanLine(ctx, m, strings.TrimRight(line, "\r\n"), c, &report)
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Report{}, &IOError{Path: source, Err: err}
		}
	}

	summary, err := Summarize(report.Values)
	if err != nil {
		return Report{}, fmt.Errorf("summarizing %q: %w", source, err)
	}
	report.Summary = summary
	e.logger.InfoContext(ctx, "log scan complete",
		"source", source,
		"marker", c.Marker,
		"lines", report.LinesScanned,
		"matched", report.Summary.Count,
		"filtered", report.Filtered,
		"malformed", report.Malformed,
	)
	return report, nil
}

func (e *Extractor) scanLine(ctx context.Context, m *tokenMatcher, line string, c Criteria, report *Report) {
	for _, occ := range m.scan(line, c.FirstPerLine) {
		if !occ.ok {
			report.Malformed++
			e.logger.DebugContext(ctx, "skipping marker without integer",
				"source", report.Source, "line", report.LinesScanned)
			continue
		}
		report.Occurrences++
		if !c.Accepts(occ.value) {
			report.Filtered++
			continue
		}
		report.Values = append(report.Values, occ.value)
	}
}
