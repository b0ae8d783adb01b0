package table

import (
	"fmt"
	"strings"

	"github.com/arloliu/tsview/errs"
)

// CycleError reports a column that depends on itself.
type CycleError struct {
	// Path lists the columns along the cycle; the first and last entries are equal.
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%s: %s", errs.ErrCircularDependency, strings.Join(e.Path, " -> "))
}

func (e *CycleError) Unwrap() error { return errs.ErrCircularDependency }

// MultiSampleError reports a table combining several multi-sample sources.
type MultiSampleError struct {
	Sources []string
}

func (e *MultiSampleError) Error() string {
	return fmt.Sprintf("cannot build TableView: %s detected (%s): "+
		"entity expansion is undefined when more than one source holds several entities at the same timestamp, "+
		"ensure only one line or point source in the table is multi-sample",
		errs.ErrMultipleMultiSampleSources, strings.Join(e.Sources, ", "))
}

func (e *MultiSampleError) Unwrap() error { return errs.ErrMultipleMultiSampleSources }
