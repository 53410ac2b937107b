package domain

import (
	"fmt"
	"strings"
)

// NotFoundError reports a variable that is absent from its backing file.
type NotFoundError struct {
	Variable string
	Path     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("variable %q not found in %s", e.Variable, e.Path)
}

// AmbiguousInputError reports more than one time-series file matching a
// variable. The run refuses to guess which one is authoritative.
type AmbiguousInputError struct {
	Case     string
	Variable string
	Matches  []string
}

func (e *AmbiguousInputError) Error() string {
	return fmt.Sprintf("case %q: only one time series file per variable is supported, found %d for %q: %s",
		e.Case, len(e.Matches), e.Variable, strings.Join(e.Matches, ", "))
}

// InputDirError reports a missing or invalid time-series input directory.
type InputDirError struct {
	Case string
	Dir  string
	Err  error
}

func (e *InputDirError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("case %q: time series directory %q not found: %v", e.Case, e.Dir, e.Err)
	}
	return fmt.Sprintf("case %q: time series directory %q not found", e.Case, e.Dir)
}

func (e *InputDirError) Unwrap() error { return e.Err }
