// SPDX-License-Identifier: Apache-2.0

package extract

import (
	"errors"
	"math"
	"strconv"
)

// ErrSumOverflow is returned when the matched values do not sum within int64.
var ErrSumOverflow = errors.New("sum of matched values overflows int64")

// Summary aggregates the matched values. HasData is false for an empty
// sequence, in which case Average is zero and carries no meaning.
type Summary struct {
	Count   int     `json:"count" yaml:"count"`
	Sum     int64   `json:"sum" yaml:"sum"`
	Average float64 `json:"average,omitempty" yaml:"average,omitempty"`
	HasData bool    `json:"has_data" yaml:"has_data"`
}

// Summarize computes count, sum and mean of values. It fails with
// ErrSumOverflow rather than return a wrapped sum.
func Summarize(values []int64) (Summary, error) {
	if len(values) == 0 {
		return Summary{}, nil
	}
	var sum int64
	for _, v := range values {
		if (v > 0 && sum > math.MaxInt64-v) || (v < 0 && sum < math.MinInt64-v) {
			return Summary{}, ErrSumOverflow
		}
		sum += v
	}
	return Summary{
		Count:   len(values),
		Sum:     sum,
		Average: float64(sum) / float64(len(values)),
		HasData: true,
	}, nil
}

// AverageDisplay renders the mean with two decimals, or "" when there is no data.
func (s Summary) AverageDisplay() string {
	if !s.HasData {
		return ""
	}
	return strconv.FormatFloat(s.Average, 'f', 2, 64)
}
