// Package errs defines the sentinel errors returned by tsview packages.
//
// Only configuration mistakes are reported as errors. Empty ranges, missing samples and
// inverted bounds are data conditions and are represented by empty results or NaN instead.
//
// Call sites wrap these sentinels with context using fmt.Errorf("%w: ...") so callers can
// match them with errors.Is.
package errs

import "errors"

// Table configuration errors.
var (
	ErrColumnNotFound             = errors.New("column not found")
	ErrColumnTypeMismatch         = errors.New("column type mismatch")
	ErrDuplicateColumn            = errors.New("column already exists")
	ErrEmptyColumnName            = errors.New("column name must not be empty")
	ErrCircularDependency         = errors.New("circular column dependency")
	ErrMultipleMultiSampleSources = errors.New("multiple multi-sample sources")
	ErrNilRowSelector             = errors.New("row selector must not be nil")
	ErrNilComputer                = errors.New("column computer must not be nil")
	ErrNilExtension               = errors.New("data manager extension must not be nil")
	ErrRowCountMismatch           = errors.New("computed value count does not match row count")
	ErrUnsupportedSelector        = errors.New("row selector not supported by computer")
	ErrRowOutOfRange              = errors.New("row index out of range")
)

// Series construction errors.
var (
	ErrLengthMismatch = errors.New("values and times have different lengths")
)

// Source resolution errors.
var (
	ErrSourceNotFound     = errors.New("data source not found")
	ErrSourceTypeMismatch = errors.New("data source has unexpected type")
	ErrInvalidSourceName  = errors.New("data source name must not be empty")
	ErrHashCollision      = errors.New("source name hash collision")
)

// Computer, transform and pipeline errors.
var (
	ErrUnknownComputer   = errors.New("unknown column computer")
	ErrDuplicateComputer = errors.New("column computer already registered")
	ErrUnknownOperation  = errors.New("unknown transform operation")
	ErrInvalidParameter  = errors.New("invalid parameter")
	ErrInvalidConfig     = errors.New("invalid table configuration")
	ErrNilInput          = errors.New("input data must not be nil")
)
