// SPDX-License-Identifier: Apache-2.0

package extract

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// integerPrefix matches the signed integer literal that must directly follow
// the marker once leading whitespace has been trimmed.
var integerPrefix = regexp.MustCompile(`^-?[0-9]+`)

// occurrence is one whole-token marker hit within a line.
type occurrence struct {
	value int64
	// ok is false when the marker is not followed by a parseable integer.
	ok bool
}

// tokenMatcher finds whole-token marker occurrences in a line.
type tokenMatcher struct {
	marker string
}

func newTokenMatcher(marker string) *tokenMatcher {
	return &tokenMatcher{marker: marker}
}

// scan returns the marker occurrences of line from left to right. With
// firstOnly set it stops after the first occurrence carrying a valid integer.
func (m *tokenMatcher) scan(line string, firstOnly bool) []occurrence {
	var found []occurrence
	pos := 0
	for pos <= len(line)-len(m.marker) {
		idx := strings.Index(line[pos:], m.marker)
		if idx < 0 {
			break
		}
		start := pos + idx
		if !atTokenBoundary(line, start) {
			pos = start + 1
			continue
		}

		tail := line[start+len(m.marker):]
		trimmed := strings.TrimLeftFunc(tail, unicode.IsSpace)
		digits := integerPrefix.FindString(trimmed)
		if digits == "" {
			found = append(found, occurrence{})
			pos = start + 1
			continue
		}
		v, err := strconv.ParseInt(digits, 10, 64)
		if err != nil {
			// Out of int64 range.
			found = append(found, occurrence{})
			pos = start + 1
			continue
		}
		found = append(found, occurrence{value: v, ok: true})
		if firstOnly {
			break
		}
		pos = start + len(m.marker) + (len(tail) - len(trimmed)) + len(digits)
	}
	return found
}

// atTokenBoundary reports whether the byte offset i is not preceded by a
// letter, digit or underscore.
func atTokenBoundary(line string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(line[:i])
	return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_')
}
