package transform

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/arloliu/tsview/errs"
	"github.com/arloliu/tsview/progress"
	"github.com/arloliu/tsview/registry"
	"github.com/arloliu/tsview/series"
	"github.com/arloliu/tsview/timeframe"
)

// Reference selects what point distances are measured against.
type Reference uint8

const (
	// GlobalAverage is the mean of every point in the series.
	GlobalAverage Reference = iota
	// RollingAverage is the mean of the points within WindowSize/2 of each time.
	RollingAverage
	// SetPoint is the fixed point (X, Y).
	SetPoint
	// OtherPoints is the first point of another point series at the same time.
	OtherPoints
)

func (r Reference) String() string {
	switch r {
	case GlobalAverage:
		return "global_average"
	case RollingAverage:
		return "rolling_average"
	case SetPoint:
		return "set_point"
	case OtherPoints:
		return "other_points"
	default:
		return fmt.Sprintf("Reference(%d)", r)
	}
}

// PointDistanceParams configures point distances.
type PointDistanceParams struct {
	Reference  Reference
	WindowSize int
	X, Y       float32
	// ReferenceKey names the registry entry read by OtherPoints.
	ReferenceKey string
}

// DefaultPointDistanceParams measures against the global average with a 1000 sample window.
func DefaultPointDistanceParams() PointDistanceParams {
	return PointDistanceParams{Reference: GlobalAverage, WindowSize: 1000}
}

func (p PointDistanceParams) validate() error {
	if p.Reference == RollingAverage && p.WindowSize < 1 {
		return fmt.Errorf("%w: window size %d, want at least 1", errs.ErrInvalidParameter, p.WindowSize)
	}
	if p.Reference > OtherPoints {
		return fmt.Errorf("%w: reference %s", errs.ErrInvalidParameter, p.Reference)
	}

	return nil
}

type timedPoint struct {
	t timeframe.Index
	p series.Point2D
}

func flatten(points *series.PointData) []timedPoint {
	var out []timedPoint
	for t, entries := range points.All() {
		for _, e := range entries {
			out = append(out, timedPoint{t: t, p: e.Value})
		}
	}

	return out
}

func mean(points []timedPoint) series.Point2D {
	var x, y float64
	for _, tp := range points {
		x += float64(tp.p.X)
		y += float64(tp.p.Y)
	}
	n := float64(len(points))

	return series.Point2D{X: float32(x / n), Y: float32(y / n)}
}

// PointDistances measures the distance of every point to the reference. With several points at
// one time, the first one is measured. ref is consulted only by OtherPoints; times missing from
// it are skipped.
func PointDistances(points *series.PointData, p PointDistanceParams, ref *series.PointData, report progress.Func) *series.AnalogTimeSeries {
	report = progress.OrNoop(report)
	all := flatten(points)
	if len(all) == 0 || (p.Reference == OtherPoints && ref == nil) {
		report(100)

		return series.NewDenseAnalog(0, nil)
	}

	var global series.Point2D
	if p.Reference == GlobalAverage {
		global = mean(all)
	}

	times := make([]timeframe.Index, 0, points.Len())
	values := make([]float32, 0, points.Len())
	half := timeframe.Index(p.WindowSize / 2)
	for i, tp := range all {
		if i > 0 && all[i-1].t == tp.t {
			continue
		}

		var target series.Point2D
		switch p.Reference {
		case GlobalAverage:
			target = global
		case SetPoint:
			target = series.Point2D{X: p.X, Y: p.Y}
		case RollingAverage:
			lo := sort.Search(len(all), func(k int) bool { return all[k].t >= tp.t-half })
			hi := sort.Search(len(all), func(k int) bool { return all[k].t > tp.t+half })
			target = mean(all[lo:hi])
		case OtherPoints:
			other, ok := ref.EntityAt(tp.t, 0)
			if !ok {
				continue
			}
			target = other
		}

		times = append(times, tp.t)
		values = append(values, float32(tp.p.Distance(target)))
		report((i + 1) * 100 / len(all))
	}
	report(100)

	// times are strictly increasing, so construction cannot fail
	out, _ := series.NewAnalog(values, times)
	out.SetTimeFrame(points.TimeFrame())

	return out
}

// NewPointDistance returns the operation measuring point distances.
func NewPointDistance() Operation {
	return &op[*series.PointData, *series.AnalogTimeSeries, PointDistanceParams]{
		name:     "point_distance",
		defaults: DefaultPointDistanceParams(),
		empty:    func() *series.AnalogTimeSeries { return series.NewDenseAnalog(0, nil) },
		run: func(_ context.Context, in *series.PointData, p PointDistanceParams, env Env) (*series.AnalogTimeSeries, error) {
			var ref *series.PointData
			if p.Reference == OtherPoints {
				ref = referencePoints(env, p.ReferenceKey)
			}

			return PointDistances(in, p, ref, env.Progress), nil
		},
	}
}

func referencePoints(env Env, key string) *series.PointData {
	if env.Data == nil {
		env.Logger.Warn("point distance reference needs a registry", slog.String("reference", key))

		return nil
	}
	ref, err := registry.Get[*series.PointData](env.Data, key)
	if err != nil {
		env.Logger.Warn("point distance reference unavailable", slog.String("reference", key), slog.Any("error", err))

		return nil
	}

	return ref
}
