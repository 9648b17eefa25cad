// SPDX-License-Identifier: Apache-2.0

// Package extract scans free-text logs for integers that follow a marker
// token and aggregates the qualifying values.
package extract

import (
	"errors"
	"fmt"
	"strings"
)

// ComparisonMode selects how a matched value is compared with the minimum.
type ComparisonMode int

const (
	// GreaterThan keeps values strictly above the minimum.
	GreaterThan ComparisonMode = iota
	// GreaterOrEqual keeps values at or above the minimum.
	GreaterOrEqual
)

func (m ComparisonMode) String() string {
	switch m {
	case GreaterOrEqual:
		return "gte"
	default:
		return "gt"
	}
}

// ParseComparisonMode accepts "gt", ">", "gte" and ">=" (case-insensitive).
// An empty string selects GreaterThan.
func ParseComparisonMode(s string) (ComparisonMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "gt", ">":
		return GreaterThan, nil
	case "gte", ">=", "ge":
		return GreaterOrEqual, nil
	}
	return GreaterThan, fmt.Errorf("unknown comparison mode %q (want gt or gte)", s)
}

// Criteria describes which numbers qualify.
type Criteria struct {
	// Marker is matched literally; regex metacharacters have no meaning.
	Marker string
	// Minimum is the optional threshold. Nil disables filtering.
	Minimum *int64
	Mode    ComparisonMode
	// FirstPerLine stops at the first marker on each line that is followed
	// by a valid integer, whether or not that value passes the threshold.
	FirstPerLine bool
}

// Validate reports whether the criteria can be used for a scan.
func (c Criteria) Validate() error {
	if c.Marker == "" {
		return errors.New("marker is required")
	}
	return nil
}

// Accepts applies the threshold filter to a single value.
func (c Criteria) Accepts(v int64) bool {
	if c.Minimum == nil {
		return true
	}
	if c.Mode == GreaterOrEqual {
		return v >= *c.Minimum
	}
	return v > *c.Minimum
}

// Min is a helper for building Criteria literals.
func Min(v int64) *int64 {
	return &v
}
