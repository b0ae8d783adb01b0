package tsview

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/tsview/errs"
	"github.com/arloliu/tsview/internal/intern"
	"github.com/arloliu/tsview/pipeline"
	"github.com/arloliu/tsview/registry"
	"github.com/arloliu/tsview/series"
	"github.com/arloliu/tsview/table"
	"github.com/arloliu/tsview/table/compute"
	"github.com/arloliu/tsview/timeframe"
	"github.com/arloliu/tsview/transform"
)

func newSession(t *testing.T) *Session {
	t.Helper()

	s, err := NewSession()
	require.NoError(t, err)
	t.Cleanup(s.Close)

	require.NoError(t, s.Data().SetTime("cam", timeframe.NewUniform(40, 0, 1)))
	require.NoError(t, s.Data().Set("licks", series.NewEventSeries([]timeframe.Index{2, 5, 21}), "cam"))

	lfp := make([]float32, 40)
	for i := range lfp {
		lfp[i] = float32(i % 10)
	}
	require.NoError(t, s.Data().Set("lfp", series.NewDenseAnalog(0, lfp), "cam"))

	return s
}

func TestNewSession(t *testing.T) {
	s, err := NewSession()
	require.NoError(t, err)
	defer s.Close()

	require.NotNil(t, s.Data())
	require.NotNil(t, s.Extension())
	require.Contains(t, s.Computers().Names(), "event_count")
	require.Contains(t, s.Transforms().Names(), "event_window")

	reg := registry.New()
	shared, err := NewSession(WithRegistry(reg))
	require.NoError(t, err)
	defer shared.Close()
	require.Same(t, reg, shared.Data())

	_, err = NewSession(WithRegistry(nil))
	require.ErrorIs(t, err, errs.ErrNilInput)
	_, err = NewSession(WithComputers(nil))
	require.ErrorIs(t, err, errs.ErrNilInput)
	_, err = NewSession(WithTransforms(nil))
	require.ErrorIs(t, err, errs.ErrNilInput)
}

func TestSession_NewTable(t *testing.T) {
	s := newSession(t)

	trials := []timeframe.Interval{timeframe.NewInterval(0, 9), timeframe.NewInterval(20, 29)}
	b, err := s.NewTable(table.NewIntervalSelector(trials, nil))
	require.NoError(t, err)
	require.NoError(t, s.AddColumn(b, "licks", "event_count", "licks", nil))
	require.NoError(t, s.AddColumn(b, "peak", "analog_reduction", "lfp", compute.Params{"reduction": "max"}))

	tv, err := b.Build()
	require.NoError(t, err)
	require.Equal(t, 2, tv.RowCount())

	licks, err := table.ColumnValues[int](tv, "licks")
	require.NoError(t, err)
	require.Equal(t, []int{2, 1}, licks)
	peaks, err := table.ColumnValues[float64](tv, "peak")
	require.NoError(t, err)
	require.Equal(t, []float64{9, 9}, peaks)

	_, err = s.NewTable(nil)
	require.ErrorIs(t, err, errs.ErrNilInput)
	require.ErrorIs(t, s.AddColumn(b, "x", "event_count", "nope", nil), errs.ErrSourceNotFound)
	require.ErrorIs(t, s.AddColumn(b, "x", "nope", "licks", nil), errs.ErrUnknownComputer)
}

func TestSession_BuildTables(t *testing.T) {
	s := newSession(t)

	src := []byte(`
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
`)
	res, err := s.BuildTables(context.Background(), src, "licks.hcl", pipeline.WithConcurrency(1))
	require.NoError(t, err)
	require.True(t, res.OK())

	values, err := table.ColumnValues[float64](res.Tables["at_licks"], "lfp")
	require.NoError(t, err)
	require.Equal(t, []float64{2, 5, 1}, values)

	_, err = s.BuildTables(context.Background(), []byte(`table "t" {`), "bad.hcl")
	require.ErrorIs(t, err, errs.ErrInvalidConfig)
}

func TestSession_TransformThenTable(t *testing.T) {
	s := newSession(t)

	p, err := s.NewTransformPipeline()
	require.NoError(t, err)
	require.NoError(t, p.AddStep(transform.Step{
		ID:        "lick_windows",
		Operation: "event_window",
		Input:     "licks",
		Params:    transform.EventWindowParams{Before: 1, After: 1},
	}))
	res, err := p.Run(context.Background())
	require.NoError(t, err)
	require.True(t, res.OK())

	tres, err := s.ExecuteConfig(context.Background(), &pipeline.Config{Tables: []pipeline.TableConfig{{
		ID:   "windows",
		Rows: pipeline.RowsConfig{Type: pipeline.RowsInterval, Source: "lick_windows"},
		Columns: []pipeline.ColumnConfig{
			{Name: "start", Computer: "interval_property", Source: "lick_windows", Params: compute.Params{"property": "start"}},
		},
	}}})
	require.NoError(t, err)
	require.True(t, tres.OK())

	starts, err := table.ColumnValues[int64](tres.Tables["windows"], "start")
	require.NoError(t, err)
	require.Equal(t, []int64{1, 4, 20}, starts)
}

func TestSourceID(t *testing.T) {
	require.Equal(t, intern.Hash("licks"), SourceID("licks"))
	require.NotEqual(t, SourceID("licks"), SourceID("lfp"))

	s := newSession(t)
	b, err := s.NewTable(table.NewTimestampSelector([]timeframe.Index{2, 5}, nil))
	require.NoError(t, err)
	require.NoError(t, s.AddColumn(b, "lfp", "analog_value", "lfp", nil))
	built, err := b.Build()
	require.NoError(t, err)
	require.NoError(t, built.MaterializeAll())

	res, err := s.BuildTables(context.Background(), []byte(`
table "t" {
  rows {
    type   = "timestamp"
    source = "licks"
  }
  column "lfp" {
    computer = "analog_value"
    source   = "lfp"
  }
}
`), "t.hcl")
	require.NoError(t, err)
	require.True(t, res.OK())

	direct, ok := built.SourceID("lfp")
	require.True(t, ok)
	configured, ok := res.Tables["t"].SourceID("lfp")
	require.True(t, ok)
	require.Equal(t, direct, configured)
	require.Equal(t, SourceID("lfp"), uint64(direct))
}
