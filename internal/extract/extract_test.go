// SPDX-License-Identifier: Apache-2.0

package extract_test

import (
	"context"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/gemaraproj/logtally/internal/extract"
)

const sampleLog = `
    Aug 28 16:39:50 buildroot user.info root: ... decoded:120 scaled:120 sent:118 ...
    Aug 28 16:39:55 buildroot user.info root: ... decoded:120 scaled:120 sent:116 ...
    ERROR: A different error message.
    Aug 28 16:40:00 buildroot user.info root: ... decoded:120 scaled:120 sent:114 ...
    INFO: Some other process sent:9999 bytes which we should ignore.
    Aug 28 16:40:05 buildroot user.info root: ... audioSent:0 packet errors:0 sent:115 ...
`

func writeLog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "messages.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// ---------------------------------------------------------------------------
// Extract
// ---------------------------------------------------------------------------

func TestExtractor_Extract(t *testing.T) {
	ctx := context.Background()
	ex := extract.NewExtractor()

	tests := []struct {
		name     string
		content  string
		criteria extract.Criteria
		want     []int64
	}{
		{
			name:     "multiple occurrences on one line",
			content:  "sent:118 sent:9999\n",
			criteria: extract.Criteria{Marker: "sent:", Minimum: extract.Min(89)},
			want:     []int64{118, 9999},
		},
		{
			name:     "marker embedded in identifier is ignored",
			content:  "audioSent:0 packet errors:0 sent:115\n",
			criteria: extract.Criteria{Marker: "sent:", Minimum: extract.Min(89)},
			want:     []int64{115},
		},
		{
			name:     "lowercase suffix does not match",
			content:  "audiosent:500 x_sent:600 sent:7\n",
			criteria: extract.Criteria{Marker: "sent:"},
			want:     []int64{7},
		},
		{
			name:     "value below threshold",
			content:  "sent:50\n",
			criteria: extract.Criteria{Marker: "sent:", Minimum: extract.Min(89)},
			want:     []int64{},
		},
		{
			name:     "greater than excludes the minimum itself",
			content:  "sent:89 sent:90\n",
			criteria: extract.Criteria{Marker: "sent:", Minimum: extract.Min(89)},
			want:     []int64{90},
		},
		{
			name:     "greater or equal includes the minimum",
			content:  "sent:89 sent:90 sent:88\n",
			criteria: extract.Criteria{Marker: "sent:", Minimum: extract.Min(89), Mode: extract.GreaterOrEqual},
			want:     []int64{89, 90},
		},
		{
			name:     "no minimum keeps everything including negatives",
			content:  "sent:0\nsent:-4\nsent: 12\n",
			criteria: extract.Criteria{Marker: "sent:"},
			want:     []int64{0, -4, 12},
		},
		{
			name:     "malformed tokens are skipped",
			content:  "sent:abc sent: sent:- sent:42\nsent:\n",
			criteria: extract.Criteria{Marker: "sent:"},
			want:     []int64{42},
		},
		{
			name:     "regex metacharacters are literal",
			content:  "a.b:1 axb:2 (x)+ 3\n",
			criteria: extract.Criteria{Marker: "a.b:"},
			want:     []int64{1},
		},
		{
			name:     "marker with trailing parenthesis",
			content:  "(x)+ 3 (x)+4\n",
			criteria: extract.Criteria{Marker: "(x)+"},
			want:     []int64{3, 4},
		},
		{
			name:     "out of range integer is skipped",
			content:  "sent:99999999999999999999 sent:5\n",
			criteria: extract.Criteria{Marker: "sent:"},
			want:     []int64{5},
		},
		{
			name:     "first per line stops after first valid value",
			content:  "sent:abc sent:118 sent:9999\nsent:1 sent:500\n",
			criteria: extract.Criteria{Marker: "sent:", Minimum: extract.Min(89), FirstPerLine: true},
			want:     []int64{118},
		},
		{
			name:     "windows line endings",
			content:  "sent:100\r\nsent:200\r\n",
			criteria: extract.Criteria{Marker: "sent:"},
			want:     []int64{100, 200},
		},
		{
			name:     "last line without newline",
			content:  "sent:1\nsent:2",
			criteria: extract.Criteria{Marker: "sent:"},
			want:     []int64{1, 2},
		},
		{
			name:     "empty file",
			content:  "",
			criteria: extract.Criteria{Marker: "sent:"},
			want:     []int64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ex.Extract(ctx, writeLog(t, tt.content), tt.criteria)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractor_Run_SampleLog(t *testing.T) {
	ex := extract.NewExtractor()
	report, err := ex.Run(context.Background(), writeLog(t, sampleLog), extract.Criteria{
		Marker:  "sent:",
		Minimum: extract.Min(89),
	})
	require.NoError(t, err)

	assert.Equal(t, []int64{118, 116, 114, 9999, 115}, report.Values)
	assert.Equal(t, 5, report.Summary.Count)
	assert.Equal(t, int64(10462), report.Summary.Sum)
	assert.Equal(t, "2092.40", report.Summary.AverageDisplay())
	assert.Equal(t, 7, report.LinesScanned)
	assert.Equal(t, 5, report.Occurrences)
	assert.Zero(t, report.Filtered)
}

func TestExtractor_Run_Counters(t *testing.T) {
	ex := extract.NewExtractor()
	report, err := ex.RunReader(context.Background(),
		strings.NewReader("sent:1 sent:x\nnothing here\nsent:200\n"), "inline",
		extract.Criteria{Marker: "sent:", Minimum: extract.Min(10)})
	require.NoError(t, err)

	assert.Equal(t, "inline", report.Source)
	assert.Equal(t, 3, report.LinesScanned)
	assert.Equal(t, 2, report.Occurrences)
	assert.Equal(t, 1, report.Filtered)
	assert.Equal(t, 1, report.Malformed)
	assert.Equal(t, []int64{200}, report.Values)
}

func TestExtractor_Run_ScenarioOne(t *testing.T) {
	report, err := extract.NewExtractor().Run(context.Background(), writeLog(t, "sent:118 sent:9999"),
		extract.Criteria{Marker: "sent:", Minimum: extract.Min(89)})
	require.NoError(t, err)

	assert.Equal(t, []int64{118, 9999}, report.Values)
	assert.Equal(t, 2, report.Summary.Count)
	assert.Equal(t, int64(10117), report.Summary.Sum)
	assert.Equal(t, "5058.50", report.Summary.AverageDisplay())
}

func TestExtractor_Run_NoData(t *testing.T) {
	report, err := extract.NewExtractor().Run(context.Background(), writeLog(t, "sent:50\n"),
		extract.Criteria{Marker: "sent:", Minimum: extract.Min(89)})
	require.NoError(t, err)

	assert.NotNil(t, report.Values)
	assert.Empty(t, report.Values)
	assert.False(t, report.Summary.HasData)
	assert.Equal(t, "", report.Summary.AverageDisplay())
}

// ---------------------------------------------------------------------------
// Errors
// ---------------------------------------------------------------------------

func TestExtractor_Run_NotFound(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.txt")
	_, err := extract.NewExtractor().Run(context.Background(), path, extract.Criteria{Marker: "sent:"})
	require.Error(t, err)

	var nf *extract.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, path, nf.Path)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestExtractor_Run_EmptyMarker(t *testing.T) {
	_, err := extract.NewExtractor().Run(context.Background(), writeLog(t, "sent:1"), extract.Criteria{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "marker is required")
}

type failingReader struct{ err error }

func (r failingReader) Read([]byte) (int, error) { return 0, r.err }

func TestExtractor_RunReader_IOError(t *testing.T) {
	cause := errors.New("device unplugged")
	_, err := extract.NewExtractor().RunReader(context.Background(),
		io.MultiReader(strings.NewReader("sent:1\n"), failingReader{err: cause}), "usb.log",
		extract.Criteria{Marker: "sent:"})
	require.Error(t, err)

	var ioErr *extract.IOError
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, "usb.log", ioErr.Path)
	assert.ErrorIs(t, err, cause)
}

func TestExtractor_Run_Directory(t *testing.T) {
	_, err := extract.NewExtractor().Run(context.Background(), t.TempDir(), extract.Criteria{Marker: "sent:"})
	require.Error(t, err)

	var ioErr *extract.IOError
	assert.True(t, errors.As(err, &ioErr))
}

// ---------------------------------------------------------------------------
// Encoding
// ---------------------------------------------------------------------------

func TestExtractor_InvalidUTF8IsTolerated(t *testing.T) {
	content := "garbage \xff\xfe\xfd sent:120\n\xc3 sent:130\n"
	got, err := extract.NewExtractor().Extract(context.Background(), writeLog(t, content),
		extract.Criteria{Marker: "sent:"})
	require.NoError(t, err)
	assert.Equal(t, []int64{120, 130}, got)
}

func TestExtractor_BOMIsStripped(t *testing.T) {
	got, err := extract.NewExtractor().Extract(context.Background(), writeLog(t, "\xef\xbb\xbfsent:7\n"),
		extract.Criteria{Marker: "sent:"})
	require.NoError(t, err)
	assert.Equal(t, []int64{7}, got)
}

func TestExtractor_Latin1(t *testing.T) {
	raw, err := charmap.Windows1252.NewEncoder().String("café über:42 sent:1\n")
	require.NoError(t, err)

	enc, err := extract.LookupEncoding("latin1")
	require.NoError(t, err)

	got, err := extract.NewExtractor(extract.WithEncoding(enc)).
		ExtractReader(context.Background(), strings.NewReader(raw), extract.Criteria{Marker: "über:"})
	require.NoError(t, err)
	assert.Equal(t, []int64{42}, got)
}

func TestExtractor_UTF16(t *testing.T) {
	raw, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder().String("sent:11\nsent:12\n")
	require.NoError(t, err)

	enc, err := extract.LookupEncoding("utf-16le")
	require.NoError(t, err)

	got, err := extract.NewExtractor(extract.WithEncoding(enc)).
		ExtractReader(context.Background(), strings.NewReader(raw), extract.Criteria{Marker: "sent:"})
	require.NoError(t, err)
	assert.Equal(t, []int64{11, 12}, got)
}

func TestLookupEncoding_Unknown(t *testing.T) {
	_, err := extract.LookupEncoding("klingon-8")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported encoding")
}

// ---------------------------------------------------------------------------
// Properties
// ---------------------------------------------------------------------------

func TestExtractor_ThresholdProperty(t *testing.T) {
	content := "sent:-10 sent:0 sent:5 sent:9 sent:10 sent:11\nsent:100 sent:10\n"
	path := writeLog(t, content)

	for _, mode := range []extract.ComparisonMode{extract.GreaterThan, extract.GreaterOrEqual} {
		t.Run(mode.String(), func(t *testing.T) {
			got, err := extract.NewExtractor().Extract(context.Background(), path,
				extract.Criteria{Marker: "sent:", Minimum: extract.Min(10), Mode: mode})
			require.NoError(t, err)
			require.NotEmpty(t, got)
			for _, v := range got {
				if mode == extract.GreaterThan {
					assert.Greater(t, v, int64(10))
				} else {
					assert.GreaterOrEqual(t, v, int64(10))
				}
			}
		})
	}
}

func TestExtractor_OrderPreserved(t *testing.T) {
	content := "sent:5 x sent:3\nsent:9\nfoo sent:1 sent:7\n"
	got, err := extract.NewExtractor().Extract(context.Background(), writeLog(t, content),
		extract.Criteria{Marker: "sent:"})
	require.NoError(t, err)
	assert.Equal(t, []int64{5, 3, 9, 1, 7}, got)
}

// ---------------------------------------------------------------------------
// Summarize
// ---------------------------------------------------------------------------

func TestSummarize(t *testing.T) {
	tests := []struct {
		name   string
		values []int64
		want   extract.Summary
	}{
		{name: "nil", values: nil, want: extract.Summary{}},
		{name: "empty", values: []int64{}, want: extract.Summary{}},
		{name: "single", values: []int64{7}, want: extract.Summary{Count: 1, Sum: 7, Average: 7, HasData: true}},
		{name: "mixed sign", values: []int64{-3, 3, 6}, want: extract.Summary{Count: 3, Sum: 6, Average: 2, HasData: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extract.Summarize(tt.values)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSummarize_Overflow(t *testing.T) {
	tests := []struct {
		name   string
		values []int64
	}{
		{name: "max plus one", values: []int64{math.MaxInt64, 1}},
		{name: "min minus one", values: []int64{math.MinInt64, -1}},
		{name: "overflow after several values", values: []int64{1, math.MaxInt64 - 1, 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := extract.Summarize(tt.values)
			assert.ErrorIs(t, err, extract.ErrSumOverflow)
		})
	}
}

func TestSummarize_Extremes(t *testing.T) {
	s, err := extract.Summarize([]int64{math.MaxInt64, math.MinInt64, 1})
	require.NoError(t, err)
	assert.Equal(t, int64(0), s.Sum)
	assert.Equal(t, 3, s.Count)
}

func TestExtractor_RunReader_SumOverflow(t *testing.T) {
	_, err := extract.NewExtractor().RunReader(context.Background(),
		strings.NewReader("sent:9223372036854775807 sent:1"), "big.log",
		extract.Criteria{Marker: "sent:"})
	require.Error(t, err)
	assert.ErrorIs(t, err, extract.ErrSumOverflow)
	assert.Contains(t, err.Error(), "big.log")
}

func TestSummarize_SumEqualsCountTimesAverage(t *testing.T) {
	inputs := [][]int64{
		{1, 2},
		{118, 9999},
		{1, 1, 1, 2},
		{-7, 13, 1000003, 42, 5},
	}
	for _, values := range inputs {
		s, err := extract.Summarize(values)
		require.NoError(t, err)
		assert.Equal(t, len(values), s.Count)
		assert.InDelta(t, float64(s.Sum), float64(s.Count)*s.Average, 1e-6)
	}
}

func TestSummary_AverageDisplayKeepsPrecision(t *testing.T) {
	s, err := extract.Summarize([]int64{1, 1, 2})
	require.NoError(t, err)
	assert.Equal(t, "1.33", s.AverageDisplay())
	assert.False(t, math.Abs(s.Average-1.33) < 1e-9, "underlying average must not be rounded")
}

// ---------------------------------------------------------------------------
// Criteria
// ---------------------------------------------------------------------------

func TestParseComparisonMode(t *testing.T) {
	tests := []struct {
		in      string
		want    extract.ComparisonMode
		wantErr bool
	}{
		{in: "", want: extract.GreaterThan},
		{in: "gt", want: extract.GreaterThan},
		{in: ">", want: extract.GreaterThan},
		{in: "GTE", want: extract.GreaterOrEqual},
		{in: ">=", want: extract.GreaterOrEqual},
		{in: "lt", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := extract.ParseComparisonMode(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCriteria_Accepts(t *testing.T) {
	assert.True(t, extract.Criteria{Marker: "x"}.Accepts(math.MinInt64))
	assert.False(t, extract.Criteria{Marker: "x", Minimum: extract.Min(5)}.Accepts(5))
	assert.True(t, extract.Criteria{Marker: "x", Minimum: extract.Min(5), Mode: extract.GreaterOrEqual}.Accepts(5))
}
