package loader

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinels matched by errors.Is against a *LoadError.
var (
	ErrUnreachable     = errors.New("loader: resource unreachable")
	ErrMalformedHeader = errors.New("loader: malformed header")
	ErrBadTimestamp    = errors.New("loader: unparseable timestamp")
	ErrBadValue        = errors.New("loader: unparseable value")
	ErrInvariant       = errors.New("loader: invariant violated")
)

// LoadError reports why a CSV resource could not be turned into readings.
// Row is the 1-based CSV line of the offending record (header is line 1), 0 when the
// failure is not tied to a row.
type LoadError struct {
	Kind   error
	Source string
	Row    int
	Column string
	Err    error
}

func (e *LoadError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Source != "" {
		fmt.Fprintf(&b, " (%s)", e.Source)
	}
	if e.Row > 0 {
		fmt.Fprintf(&b, " at line %d", e.Row)
	}
	if e.Column != "" {
		fmt.Fprintf(&b, " column %q", e.Column)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Is lets errors.Is match the kind sentinel.
func (e *LoadError) Is(target error) bool {
	return e.Kind == target
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
