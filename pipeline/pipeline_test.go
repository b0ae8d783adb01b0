package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/tsview/errs"
	"github.com/arloliu/tsview/internal/intern"
	"github.com/arloliu/tsview/registry"
	"github.com/arloliu/tsview/series"
	"github.com/arloliu/tsview/source"
	"github.com/arloliu/tsview/table"
	"github.com/arloliu/tsview/table/compute"
	"github.com/arloliu/tsview/timeframe"
)

const sessionConfig = `
# trial summaries
table "per_trial" {
  description = "lick summary per trial"
  tags        = ["behavior"]

  rows {
    type   = "interval"
    source = "trials"
  }

  column "licks" {
    computer = "event_count"
    source   = "licks"
  }

  column "lick_times" {
    computer = "event_gather"
    source   = "licks"
    params   = { mode = "centered" }
  }

  column "lfp_max" {
    computer = "analog_reduction"
    source   = "lfp"
    params   = { reduction = "max" }
  }
}

table "at_licks" {
  rows {
    type   = "timestamp"
    source = "licks"
  }

  column "lfp" {
    computer = "analog_value"
    source   = "lfp"
  }
}

table "explicit" {
  tags = ["behavior"]

  rows {
    type      = "interval"
    intervals = [[0, 4], [5, 9]]
    timeframe = "cam"
  }

  column "licked" {
    computer = "event_presence"
    source   = "licks"
  }
}

table "broken" {
  rows {
    type  = "index"
    count = 3
  }

  column "licks" {
    computer = "event_count"
    source   = "licks"
  }
}
`

func session(t *testing.T) *source.Extension {
	t.Helper()

	reg := registry.New()
	require.NoError(t, reg.SetTime("cam", timeframe.NewUniform(100, 0, 1)))

	lfp := make([]float32, 100)
	for i := range lfp {
		lfp[i] = float32(i)
	}
	require.NoError(t, reg.Set("lfp", series.NewDenseAnalog(0, lfp), "cam"))
	require.NoError(t, reg.Set("licks", series.NewEventSeries([]timeframe.Index{1, 3, 12, 25, 27}), "cam"))
	require.NoError(t, reg.Set("trials", series.NewIntervalSeries([]timeframe.Interval{
		timeframe.NewInterval(0, 9), timeframe.NewInterval(10, 19), timeframe.NewInterval(20, 29),
	}), "cam"))

	ext, err := source.NewExtension(reg)
	require.NoError(t, err)
	t.Cleanup(ext.Close)

	return ext
}

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(sessionConfig), "session.hcl")
	require.NoError(t, err)
	require.Equal(t, []string{"per_trial", "at_licks", "explicit", "broken"}, cfg.TableIDs())

	perTrial := cfg.Tables[0]
	require.Equal(t, "lick summary per trial", perTrial.Description)
	require.Equal(t, []string{"behavior"}, perTrial.Tags)
	require.Equal(t, RowsConfig{Type: RowsInterval, Source: "trials"}, perTrial.Rows)
	require.Len(t, perTrial.Columns, 3)
	require.Equal(t, compute.Params{"mode": "centered"}, perTrial.Columns[1].Params)
	require.Nil(t, perTrial.Columns[0].Params)

	explicit := cfg.Tables[2]
	require.Equal(t, [][2]int64{{0, 4}, {5, 9}}, explicit.Rows.Intervals)
	require.Equal(t, "cam", explicit.Rows.TimeFrame)
	require.Equal(t, 3, cfg.Tables[3].Rows.Count)
}

func TestParse_NumericAndBoolParams(t *testing.T) {
	cfg, err := Parse([]byte(`
table "t" {
  rows {
    type  = "index"
    count = 1
  }
  column "c" {
    computer = "line_sampling"
    source   = "whisker"
    params   = { segments = 4, scale = 0.5, strict = true }
  }
}`), "t.hcl")
	require.NoError(t, err)
	require.Equal(t, compute.Params{"segments": "4", "scale": "0.5", "strict": "true"}, cfg.Tables[0].Columns[0].Params)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{name: "syntax", src: `table "t" {`},
		{name: "missing rows", src: `table "t" {}`},
		{name: "unknown rows type", src: `
table "t" {
  rows {
    type = "frames"
  }
}`},
		{name: "index without count", src: `
table "t" {
  rows {
    type = "index"
  }
}`},
		{name: "malformed interval", src: `
table "t" {
  rows {
    type      = "interval"
    intervals = [[1, 2, 3]]
  }
}`},
		{name: "duplicate table", src: `
table "t" {
  rows {
    type  = "index"
    count = 1
  }
}
table "t" {
  rows {
    type  = "index"
    count = 1
  }
}`},
		{name: "duplicate column", src: `
table "t" {
  rows {
    type  = "index"
    count = 1
  }
  column "a" {
    computer = "event_count"
    source   = "licks"
  }
  column "a" {
    computer = "event_count"
    source   = "licks"
  }
}`},
		{name: "params not an object", src: `
table "t" {
  rows {
    type  = "index"
    count = 1
  }
  column "a" {
    computer = "event_count"
    source   = "licks"
    params   = ["x"]
  }
}`},
		{name: "nested params", src: `
table "t" {
  rows {
    type  = "index"
    count = 1
  }
  column "a" {
    computer = "event_count"
    source   = "licks"
    params   = { inner = { x = 1 } }
  }
}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src), "bad.hcl")
			require.ErrorIs(t, err, errs.ErrInvalidConfig)
		})
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.hcl")
	require.NoError(t, os.WriteFile(path, []byte(sessionConfig), 0o600))

	cfg, err := ParseFile(path)
	require.NoError(t, err)
	require.Len(t, cfg.Tables, 4)

	_, err = ParseFile(filepath.Join(t.TempDir(), "missing.hcl"))
	require.ErrorIs(t, err, errs.ErrInvalidConfig)
}

func TestExecute(t *testing.T) {
	cfg, err := Parse([]byte(sessionConfig), "session.hcl")
	require.NoError(t, err)

	ex, err := New(session(t), WithConcurrency(2))
	require.NoError(t, err)
	res, err := ex.Execute(context.Background(), cfg)
	require.NoError(t, err)

	require.False(t, res.OK())
	require.Len(t, res.Tables, 3)
	require.Len(t, res.Errors, 1)
	require.ErrorIs(t, res.Errors["broken"], errs.ErrUnsupportedSelector)

	perTrial := res.Tables["per_trial"]
	require.Equal(t, 3, perTrial.RowCount())
	require.True(t, perTrial.IsMaterialized("licks"))
	licks, err := table.ColumnValues[int](perTrial, "licks")
	require.NoError(t, err)
	require.Equal(t, []int{2, 1, 2}, licks)
	centered, err := table.ColumnValues[[]int64](perTrial, "lick_times")
	require.NoError(t, err)
	require.Equal(t, [][]int64{{-3, -1}, {-2}, {1, 3}}, centered)
	peaks, err := table.ColumnValues[float64](perTrial, "lfp_max")
	require.NoError(t, err)
	require.Equal(t, []float64{9, 19, 29}, peaks)

	atLicks, err := table.ColumnValues[float64](res.Tables["at_licks"], "lfp")
	require.NoError(t, err)
	require.Equal(t, []float64{1, 3, 12, 25, 27}, atLicks)

	licked, err := table.ColumnValues[bool](res.Tables["explicit"], "licked")
	require.NoError(t, err)
	require.Equal(t, []bool{true, false}, licked)
}

func TestExecute_Options(t *testing.T) {
	cfg, err := Parse([]byte(sessionConfig), "session.hcl")
	require.NoError(t, err)
	ext := session(t)

	ex, err := New(ext, WithTag("behavior"), WithLazyColumns())
	require.NoError(t, err)
	res, err := ex.Execute(context.Background(), cfg)
	require.NoError(t, err)
	require.True(t, res.OK())
	require.Len(t, res.Tables, 2)
	require.False(t, res.Tables["per_trial"].IsMaterialized("licks"))

	_, err = New(ext, WithConcurrency(0))
	require.ErrorIs(t, err, errs.ErrInvalidParameter)
	_, err = New(nil)
	require.ErrorIs(t, err, errs.ErrNilExtension)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = ex.Execute(ctx, cfg)
	require.ErrorIs(t, err, context.Canceled)
}

func TestExecute_SharedSourceIDs(t *testing.T) {
	cfg, err := Parse([]byte(sessionConfig), "session.hcl")
	require.NoError(t, err)

	in := intern.New()
	ex, err := New(session(t), WithSourceIDs(in), WithConcurrency(3))
	require.NoError(t, err)
	res, err := ex.Execute(context.Background(), cfg)
	require.NoError(t, err)

	want, ok := in.Lookup("lfp")
	require.True(t, ok)
	for _, id := range []string{"per_trial", "at_licks"} {
		got, ok := res.Tables[id].SourceID("lfp")
		require.True(t, ok, id)
		require.Equal(t, want, got, id)
	}

	_, err = New(session(t), WithSourceIDs(nil))
	require.ErrorIs(t, err, errs.ErrNilInput)
}

func TestExecute_RowSourceErrors(t *testing.T) {
	ex, err := New(session(t))
	require.NoError(t, err)

	cfg := &Config{Tables: []TableConfig{
		{ID: "no_source", Rows: RowsConfig{Type: RowsInterval, Source: "nope"}},
		{ID: "wrong_kind", Rows: RowsConfig{Type: RowsInterval, Source: "licks"}},
		{ID: "frames", Rows: RowsConfig{Type: RowsTimestamp, Source: "cam"}},
		{ID: "bad_timeline", Rows: RowsConfig{Type: RowsTimestamp, Timestamps: []int64{1}, TimeFrame: "nope"}},
		{ID: "bad_computer", Rows: RowsConfig{Type: RowsIndex, Count: 1}, Columns: []ColumnConfig{
			{Name: "x", Computer: "nope", Source: "licks"},
		}},
	}}
	res, err := ex.Execute(context.Background(), cfg)
	require.NoError(t, err)

	require.ErrorIs(t, res.Errors["no_source"], errs.ErrSourceNotFound)
	require.ErrorIs(t, res.Errors["wrong_kind"], errs.ErrSourceTypeMismatch)
	require.ErrorIs(t, res.Errors["bad_timeline"], errs.ErrInvalidConfig)
	require.ErrorIs(t, res.Errors["bad_computer"], errs.ErrUnknownComputer)
	require.Equal(t, 100, res.Tables["frames"].RowCount())
}
