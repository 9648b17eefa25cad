// SPDX-License-Identifier: Apache-2.0

package extract

import "fmt"

// NotFoundError is returned when the log file does not exist or cannot be
// opened for reading.
type NotFoundError struct {
	Path string
	Err  error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("log file %q not found: %v", e.Path, e.Err)
}

func (e *NotFoundError) Unwrap() error { return e.Err }

// IOError wraps any other failure while opening, reading or decoding a log.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("reading %q: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }
