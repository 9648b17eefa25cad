// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gemaraproj/logtally/internal/extract"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// MetadataExtractLogNumbers describes the extract_log_numbers tool.
var MetadataExtractLogNumbers = &mcp.Tool{
	Name: "extract_log_numbers",
	Description: "Scan a text log for integers that follow a marker token (for example 'sent:') " +
		"and return the matched values with their count, sum and average. " +
		"The marker is matched literally and only as a whole token, so 'sent:' does not match inside 'audiosent:'. " +
		"Provide either a file path readable by the server or the log content inline. " +
		"An optional minimum filters values using comparison 'gt' (default) or 'gte'.",
	InputSchema: map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"path": map[string]interface{}{
				"type":        "string",
				"description": "Path of the log file to scan. Mutually exclusive with content.",
			},
			"content": map[string]interface{}{
				"type":        "string",
				"description": "Raw log text to scan. Mutually exclusive with path.",
			},
			"marker": map[string]interface{}{
				"type":        "string",
				"description": "Literal token preceding the number. Defaults to 'sent:'.",
			},
			"minimum": map[string]interface{}{
				"type":        "integer",
				"description": "Optional threshold. Omit to keep every value.",
			},
			"comparison": map[string]interface{}{
				"type":        "string",
				"description": "How values are compared with minimum.",
				"enum":        []string{"gt", "gte"},
			},
			"first_per_line": map[string]interface{}{
				"type":        "boolean",
				"description": "Only take the first valid number per line.",
			},
			"encoding": map[string]interface{}{
				"type":        "string",
				"description": "Text encoding of the file, e.g. utf-8 (default), latin1, utf-16le.",
			},
		},
	},
}

// DefaultMarker is used when the caller does not provide one.
const DefaultMarker = "sent:"

// InputExtractLogNumbers is the input for the ExtractLogNumbers tool.
type InputExtractLogNumbers struct {
	Path         string `json:"path,omitempty"`
	Content      string `json:"content,omitempty"`
	Marker       string `json:"marker,omitempty"`
	Minimum      *int64 `json:"minimum,omitempty"`
	Comparison   string `json:"comparison,omitempty"`
	FirstPerLine bool   `json:"first_per_line,omitempty"`
	Encoding     string `json:"encoding,omitempty"`
}

// OutputExtractLogNumbers is the output for the ExtractLogNumbers tool.
type OutputExtractLogNumbers struct {
	// Values are the qualifying integers in file order.
	Values []int64 `json:"values"`
	Count  int     `json:"count"`
	Sum    int64   `json:"sum"`
	// Average is omitted when no value qualified.
	Average        *float64 `json:"average,omitempty"`
	AverageDisplay string   `json:"average_display,omitempty"`
	HasData        bool     `json:"has_data"`
	LinesScanned   int      `json:"lines_scanned"`
	// Filtered counts values rejected by the minimum.
	Filtered int `json:"filtered"`
	// Malformed counts markers not followed by a parseable integer.
	Malformed int `json:"malformed"`
}

// ExtractLogNumbers scans the requested log and summarizes the matched values.
func ExtractLogNumbers(ctx context.Context, _ *mcp.CallToolRequest, input InputExtractLogNumbers) (*mcp.CallToolResult, OutputExtractLogNumbers, error) {
	if (input.Path == "") == (input.Content == "") {
		return nil, OutputExtractLogNumbers{}, fmt.Errorf("exactly one of path or content is required")
	}

	criteria, err := criteriaFromInput(input)
	if err != nil {
		return nil, OutputExtractLogNumbers{}, err
	}
	enc, err := extract.LookupEncoding(input.Encoding)
	if err != nil {
		return nil, OutputExtractLogNumbers{}, err
	}
	extractor := extract.NewExtractor(extract.WithEncoding(enc))

	var report extract.Report
	if input.Path != "" {
		report, err = extractor.Run(ctx, input.Path, criteria)
	} else {
		report, err = extractor.RunReader(ctx, strings.NewReader(input.Content), "content", criteria)
	}
	if err != nil {
		var nf *extract.NotFoundError
		if errors.As(err, &nf) {
			return nil, OutputExtractLogNumbers{}, fmt.Errorf("file not found: %s", nf.Path)
		}
		return nil, OutputExtractLogNumbers{}, err
	}

	out := OutputExtractLogNumbers{
		Values:       report.Values,
		Count:        report.Summary.Count,
		Sum:          report.Summary.Sum,
		HasData:      report.Summary.HasData,
		LinesScanned: report.LinesScanned,
		Filtered:     report.Filtered,
		Malformed:    report.Malformed,
	}
	if report.Summary.HasData {
		avg := report.Summary.Average
		out.Average = &avg
		out.AverageDisplay = report.Summary.AverageDisplay()
	}
	return nil, out, nil
}

func criteriaFromInput(input InputExtractLogNumbers) (extract.Criteria, error) {
	marker := input.Marker
	if marker == "" {
		marker = DefaultMarker
	}
	mode, err := extract.ParseComparisonMode(input.Comparison)
	if err != nil {
		return extract.Criteria{}, err
	}
	return extract.Criteria{
		Marker:       marker,
		Minimum:      input.Minimum,
		Mode:         mode,
		FirstPerLine: input.FirstPerLine,
	}, nil
}
