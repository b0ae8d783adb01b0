// Package series implements the time-indexed containers tsview queries.
//
// Every container keys its samples by timeframe.Index and stores them either densely
// (consecutive indices, O(1) lookups) or sparsely (sorted keys, binary search). The layout is
// chosen at construction and changes only through the container's own mutation methods.
//
// Range queries on AnalogTimeSeries, DigitalEventSeries and DigitalIntervalSeries return
// subslices of the container's storage and views (AnalogView, EventView, IntervalView) that
// alias it. Any mutation of the container invalidates them. Ragged containers (PointData,
// LineData, MaskData) keep several entities per index and hand out owned copies instead
// (CreateTimeRangeCopy).
//
// Containers are not safe for concurrent mutation. Concurrent reads are safe as long as no
// goroutine mutates.
package series
