package compute

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/arloliu/tsview/errs"
)

// Params holds computer parameters as text, the way table configurations carry them.
type Params map[string]string

// String returns the value of key, or def when it is unset.
func (p Params) String(key, def string) string {
	if v, ok := p[key]; ok {
		return v
	}

	return def
}

// Int parses key as an integer, returning def when it is unset.
func (p Params) Int(key string, def int) (int, error) {
	v, ok := p[key]
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("%w: %s=%q is not an integer", errs.ErrInvalidParameter, key, v)
	}

	return n, nil
}

// Int64 parses key as a 64-bit integer, returning def when it is unset.
func (p Params) Int64(key string, def int64) (int64, error) {
	v, ok := p[key]
	if !ok {
		return def, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def, fmt.Errorf("%w: %s=%q is not an integer", errs.ErrInvalidParameter, key, v)
	}

	return n, nil
}

// Float parses key as a float, returning def when it is unset.
func (p Params) Float(key string, def float64) (float64, error) {
	v, ok := p[key]
	if !ok {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def, fmt.Errorf("%w: %s=%q is not a number", errs.ErrInvalidParameter, key, v)
	}

	return f, nil
}

// OneOf returns the value of key, def when unset, failing when it is not one of options.
func (p Params) OneOf(key, def string, options ...string) (string, error) {
	v := p.String(key, def)
	if !slices.Contains(options, v) {
		return def, fmt.Errorf("%w: %s=%q, want one of %v", errs.ErrInvalidParameter, key, v, options)
	}

	return v, nil
}

// ParamInfo describes one computer parameter.
type ParamInfo struct {
	Name        string
	Description string
	Default     string
	// Options lists the accepted values of an enumerated parameter.
	Options  []string
	Required bool
}
