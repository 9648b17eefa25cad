// SPDX-License-Identifier: Apache-2.0

package extract

// Report is the output of a completed scan.
type Report struct {
	Source string
	// Values holds the qualifying integers in file order. Never nil.
	Values  []int64
	Summary Summary

	LinesScanned int
	// Occurrences counts markers followed by a valid integer, before filtering.
	Occurrences int
	// Filtered counts occurrences rejected by the threshold.
	Filtered int
	// Malformed counts markers not followed by a parseable integer.
	Malformed int
}
