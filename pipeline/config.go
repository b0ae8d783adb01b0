// Package pipeline builds tables from declarative HCL configurations.
//
// A configuration declares one or more tables. Each table names its rows and its columns:
//
//	table "licks_per_trial" {
//	  description = "lick counts per trial"
//
//	  rows {
//	    type   = "interval"
//	    source = "trials"
//	  }
//
//	  column "licks" {
//	    computer = "event_count"
//	    source   = "licks"
//	  }
//
//	  column "lick_times" {
//	    computer = "event_gather"
//	    source   = "licks"
//	    params   = { mode = "centered" }
//	  }
//	}
//
// Rows are "interval" (from an interval series or an explicit intervals list), "timestamp"
// (from an event series, every index of a registered timeline, or an explicit timestamps list)
// or "index" (count rows numbered from zero).
package pipeline

import (
	"fmt"
	"slices"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/arloliu/tsview/errs"
	"github.com/arloliu/tsview/table/compute"
)

// Row selector types.
const (
	RowsInterval  = "interval"
	RowsTimestamp = "timestamp"
	RowsIndex     = "index"
)

// Config is a parsed table configuration.
type Config struct {
	Tables []TableConfig
}

// TableConfig declares one table.
type TableConfig struct {
	ID          string
	Description string
	Tags        []string
	Rows        RowsConfig
	Columns     []ColumnConfig
}

// RowsConfig declares the rows of a table.
type RowsConfig struct {
	Type string
	// Source names the series the rows come from, or for timestamp rows a registered timeline.
	Source     string
	Timestamps []int64
	Intervals  [][2]int64
	// TimeFrame names the timeline explicit timestamps and intervals are expressed on.
	TimeFrame string
	Count     int
}

// ColumnConfig declares one column.
type ColumnConfig struct {
	Name     string
	Computer string
	Source   string
	Params   compute.Params
}

type hclConfig struct {
	Tables []hclTable `hcl:"table,block"`
}

type hclTable struct {
	ID          string      `hcl:"id,label"`
	Description *string     `hcl:"description,optional"`
	Tags        []string    `hcl:"tags,optional"`
	Rows        *hclRows    `hcl:"rows,block"`
	Columns     []hclColumn `hcl:"column,block"`
}

type hclRows struct {
	Type       string    `hcl:"type"`
	Source     *string   `hcl:"source,optional"`
	Timestamps []int64   `hcl:"timestamps,optional"`
	Intervals  [][]int64 `hcl:"intervals,optional"`
	TimeFrame  *string   `hcl:"timeframe,optional"`
	Count      *int      `hcl:"count,optional"`
}

type hclColumn struct {
	Name     string         `hcl:"name,label"`
	Computer string         `hcl:"computer"`
	Source   string         `hcl:"source"`
	Params   *hcl.Attribute `hcl:"params,optional"`
}

// Parse parses an HCL configuration. filename is only used in diagnostics.
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("%w: parse %s: %s", errs.ErrInvalidConfig, filename, diags.Error())
	}

	return decode(file)
}

// ParseFile reads and parses the HCL configuration at path.
func ParseFile(path string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("%w: parse %s: %s", errs.ErrInvalidConfig, path, diags.Error())
	}

	return decode(file)
}

func decode(file *hcl.File) (*Config, error) {
	evalCtx := &hcl.EvalContext{Variables: map[string]cty.Value{}}

	var raw hclConfig
	if diags := gohcl.DecodeBody(file.Body, evalCtx, &raw); diags.HasErrors() {
		return nil, fmt.Errorf("%w: decode: %s", errs.ErrInvalidConfig, diags.Error())
	}

	cfg := &Config{Tables: make([]TableConfig, 0, len(raw.Tables))}
	for _, t := range raw.Tables {
		tc, err := convertTable(t, evalCtx)
		if err != nil {
			return nil, err
		}
		cfg.Tables = append(cfg.Tables, tc)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func convertTable(t hclTable, evalCtx *hcl.EvalContext) (TableConfig, error) {
	tc := TableConfig{ID: t.ID, Tags: t.Tags}
	if t.Description != nil {
		tc.Description = *t.Description
	}
	if t.Rows == nil {
		return tc, fmt.Errorf("%w: table %q has no rows block", errs.ErrInvalidConfig, t.ID)
	}

	rows := RowsConfig{Type: t.Rows.Type, Timestamps: t.Rows.Timestamps}
	if t.Rows.Source != nil {
		rows.Source = *t.Rows.Source
	}
	if t.Rows.TimeFrame != nil {
		rows.TimeFrame = *t.Rows.TimeFrame
	}
	if t.Rows.Count != nil {
		rows.Count = *t.Rows.Count
	}
	for _, pair := range t.Rows.Intervals {
		if len(pair) != 2 {
			return tc, fmt.Errorf("%w: table %q: interval %v must be [start, end]", errs.ErrInvalidConfig, t.ID, pair)
		}
		rows.Intervals = append(rows.Intervals, [2]int64{pair[0], pair[1]})
	}
	tc.Rows = rows

	for _, c := range t.Columns {
		cc := ColumnConfig{Name: c.Name, Computer: c.Computer, Source: c.Source}
		if c.Params != nil {
			val, diags := c.Params.Expr.Value(evalCtx)
			if diags.HasErrors() {
				return tc, fmt.Errorf("%w: table %q column %q params: %s", errs.ErrInvalidConfig, t.ID, c.Name, diags.Error())
			}
			params, err := paramsFromValue(val)
			if err != nil {
				return tc, fmt.Errorf("table %q column %q: %w", t.ID, c.Name, err)
			}
			cc.Params = params
		}
		tc.Columns = append(tc.Columns, cc)
	}

	return tc, nil
}

// paramsFromValue flattens an HCL object of scalars into text parameters.
func paramsFromValue(val cty.Value) (compute.Params, error) {
	if val.IsNull() {
		return nil, nil
	}
	if !val.Type().IsObjectType() && !val.Type().IsMapType() {
		return nil, fmt.Errorf("%w: params must be an object, got %s", errs.ErrInvalidConfig, val.Type().FriendlyName())
	}

	out := make(compute.Params)
	for key, v := range val.AsValueMap() {
		s, err := scalarText(v)
		if err != nil {
			return nil, fmt.Errorf("param %q: %w", key, err)
		}
		out[key] = s
	}

	return out, nil
}

func scalarText(v cty.Value) (string, error) {
	if v.IsNull() || !v.IsKnown() {
		return "", fmt.Errorf("%w: value must be known and not null", errs.ErrInvalidConfig)
	}

	switch v.Type() {
	case cty.String:
		return v.AsString(), nil
	case cty.Number:
		return v.AsBigFloat().Text('f', -1), nil
	case cty.Bool:
		if v.True() {
			return "true", nil
		}

		return "false", nil
	default:
		return "", fmt.Errorf("%w: %s is not a scalar", errs.ErrInvalidConfig, v.Type().FriendlyName())
	}
}

// Validate checks the configuration for missing or duplicate names and malformed rows.
func (c *Config) Validate() error {
	seen := make(map[string]struct{}, len(c.Tables))
	for _, t := range c.Tables {
		if t.ID == "" {
			return fmt.Errorf("%w: table id must not be empty", errs.ErrInvalidConfig)
		}
		if _, dup := seen[t.ID]; dup {
			return fmt.Errorf("%w: duplicate table %q", errs.ErrInvalidConfig, t.ID)
		}
		seen[t.ID] = struct{}{}

		if err := t.Rows.validate(); err != nil {
			return fmt.Errorf("table %q: %w", t.ID, err)
		}

		cols := make(map[string]struct{}, len(t.Columns))
		for _, col := range t.Columns {
			if col.Computer == "" || col.Source == "" {
				return fmt.Errorf("%w: table %q column %q needs a computer and a source", errs.ErrInvalidConfig, t.ID, col.Name)
			}
			if _, dup := cols[col.Name]; dup {
				return fmt.Errorf("%w: table %q declares column %q twice", errs.ErrInvalidConfig, t.ID, col.Name)
			}
			cols[col.Name] = struct{}{}
		}
	}

	return nil
}

func (r RowsConfig) validate() error {
	switch r.Type {
	case RowsInterval:
		if r.Source == "" && len(r.Intervals) == 0 {
			return fmt.Errorf("%w: interval rows need a source or intervals", errs.ErrInvalidConfig)
		}
	case RowsTimestamp:
		if r.Source == "" && len(r.Timestamps) == 0 {
			return fmt.Errorf("%w: timestamp rows need a source or timestamps", errs.ErrInvalidConfig)
		}
	case RowsIndex:
		if r.Count <= 0 {
			return fmt.Errorf("%w: index rows need a positive count, got %d", errs.ErrInvalidConfig, r.Count)
		}
	default:
		return fmt.Errorf("%w: unknown rows type %q, want one of %v", errs.ErrInvalidConfig, r.Type,
			[]string{RowsInterval, RowsTimestamp, RowsIndex})
	}

	return nil
}

// TableIDs returns the ids of the configured tables in declaration order.
func (c *Config) TableIDs() []string {
	ids := make([]string, len(c.Tables))
	for i, t := range c.Tables {
		ids[i] = t.ID
	}

	return ids
}

// hasTag reports whether t carries tag.
func (t TableConfig) hasTag(tag string) bool {
	return slices.Contains(t.Tags, tag)
}
