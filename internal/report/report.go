// SPDX-License-Identifier: Apache-2.0

// Package report renders scan results for people and machines.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/gemaraproj/logtally/internal/extract"
)

// Document is the serializable form of a scan outcome. Error is set instead
// of the statistics when the log could not be read.
type Document struct {
	Source         string   `json:"source" yaml:"source"`
	Marker         string   `json:"marker" yaml:"marker"`
	Minimum        *int64   `json:"minimum,omitempty" yaml:"minimum,omitempty"`
	Comparison     string   `json:"comparison" yaml:"comparison"`
	Values         []int64  `json:"values" yaml:"values"`
	Count          int      `json:"count" yaml:"count"`
	Sum            int64    `json:"sum" yaml:"sum"`
	Average        *float64 `json:"average,omitempty" yaml:"average,omitempty"`
	AverageDisplay string   `json:"average_display,omitempty" yaml:"average_display,omitempty"`
	HasData        bool     `json:"has_data" yaml:"has_data"`
	LinesScanned   int      `json:"lines_scanned" yaml:"lines_scanned"`
	Filtered       int      `json:"filtered" yaml:"filtered"`
	Malformed      int      `json:"malformed" yaml:"malformed"`
	Error          string   `json:"error,omitempty" yaml:"error,omitempty"`

	notFound bool
}

// New builds a Document from a scan. scanErr is the error returned by the
// extractor, if any.
func New(source string, c extract.Criteria, r extract.Report, scanErr error) Document {
	doc := Document{
		Source:     source,
		Marker:     c.Marker,
		Minimum:    c.Minimum,
		Comparison: c.Mode.String(),
		Values:     []int64{},
	}
	if scanErr != nil {
		var nf *extract.NotFoundError
		doc.notFound = errors.As(scanErr, &nf)
		doc.Error = scanErr.Error()
		return doc
	}
	if r.Values != nil {
		doc.Values = r.Values
	}
	doc.Count = r.Summary.Count
	doc.Sum = r.Summary.Sum
	doc.HasData = r.Summary.HasData
	if r.Summary.HasData {
		avg := r.Summary.Average
		doc.Average = &avg
		doc.AverageDisplay = r.Summary.AverageDisplay()
	}
	doc.LinesScanned = r.LinesScanned
	doc.Filtered = r.Filtered
	doc.Malformed = r.Malformed
	return doc
}

// Write renders doc in the given format: text, json or yaml.
func Write(w io.Writer, format string, doc Document, showValues bool) error {
	switch strings.ToLower(format) {
	case "", "text":
		return WriteText(w, doc, showValues)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case "yaml":
		out, err := yaml.Marshal(doc)
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		_, err = w.Write(out)
		return err
	}
	return fmt.Errorf("unknown output format %q", format)
}

// WriteText prints the human-readable summary.
func WriteText(w io.Writer, doc Document, showValues bool) error {
	var b strings.Builder
	switch {
	case doc.Error != "" && doc.notFound:
		fmt.Fprintf(&b, "Error: The file '%s' was not found.\n", doc.Source)
	case doc.Error != "":
		fmt.Fprintf(&b, "An unexpected error occurred: %s\n", doc.Error)
	case !doc.HasData:
		fmt.Fprintf(&b, "Could not find any instances of '%s'%s in the log file.\n", doc.Marker, doc.thresholdPhrase())
	default:
		fmt.Fprintf(&b, "Found %d instances of '%s'%s.\n", doc.Count, doc.Marker, doc.thresholdPhrase())
		if showValues {
			fmt.Fprintf(&b, "Matched values: %s\n", joinValues(doc.Values))
		}
		fmt.Fprintf(&b, "The sum of all '%s' numbers is: %d\n", doc.Marker, doc.Sum)
		fmt.Fprintf(&b, "The average of all '%s' numbers is: %s\n", doc.Marker, doc.AverageDisplay)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func (d Document) thresholdPhrase() string {
	if d.Minimum == nil {
		return ""
	}
	if d.Comparison == extract.GreaterOrEqual.String() {
		return fmt.Sprintf(" at or above the threshold of %d", *d.Minimum)
	}
	return fmt.Sprintf(" above the threshold of %d", *d.Minimum)
}

func joinValues(values []int64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatInt(v, 10)
	}
	return strings.Join(parts, ", ")
}
