package geoblob

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    rowCounter     prometheus.Counter
//	    batchHistogram prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordBatch(rows, failed int, duration time.Duration) {
//	    p.batchHistogram.Observe(duration.Seconds())
//	}
type MetricsCollector interface {
	// RecordBatch is called after each batch. rows is the batch size,
	// failed the number of rows replaced by NULL.
	RecordBatch(rows, failed int, duration time.Duration)

	// RecordRow is called for each non-NULL input row. err is nil if the row
	// succeeded.
	RecordRow(err error)

	// RecordReset is called after each lane reset with the arena bytes the
	// batch used.
	RecordReset(bytesUsed uint64)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordBatch(int, int, time.Duration) {}
func (NoopMetricsCollector) RecordRow(error)                     {}
func (NoopMetricsCollector) RecordReset(uint64)                  {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	BatchCount      atomic.Int64
	BatchRows       atomic.Int64
	BatchFailed     atomic.Int64
	BatchTotalNanos atomic.Int64
	RowCount        atomic.Int64
	RowErrors       atomic.Int64
	ResetCount      atomic.Int64
	ResetBytesUsed  atomic.Int64
	PeakBytesUsed   atomic.Int64
}

// RecordBatch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBatch(rows, failed int, duration time.Duration) {
	b.BatchCount.Add(1)
	b.BatchRows.Add(int64(rows))
	b.BatchFailed.Add(int64(failed))
	b.BatchTotalNanos.Add(duration.Nanoseconds())
}

// RecordRow implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRow(err error) {
	b.RowCount.Add(1)
	if err != nil {
		b.RowErrors.Add(1)
	}
}

// RecordReset implements MetricsCollector.
func (b *BasicMetricsCollector) RecordReset(bytesUsed uint64) {
	b.ResetCount.Add(1)
	used := int64(bytesUsed)
	b.ResetBytesUsed.Add(used)
	for {
		peak := b.PeakBytesUsed.Load()
		if used <= peak || b.PeakBytesUsed.CompareAndSwap(peak, used) {
			return
		}
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		BatchCount:     b.BatchCount.Load(),
		BatchRows:      b.BatchRows.Load(),
		BatchFailed:    b.BatchFailed.Load(),
		BatchAvgNanos:  b.getAvgBatchNanos(),
		RowCount:       b.RowCount.Load(),
		RowErrors:      b.RowErrors.Load(),
		ResetCount:     b.ResetCount.Load(),
		ResetBytesUsed: b.ResetBytesUsed.Load(),
		PeakBytesUsed:  b.PeakBytesUsed.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgBatchNanos() int64 {
	count := b.BatchCount.Load()
	if count == 0 {
		return 0
	}
	return b.BatchTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	BatchCount     int64
	BatchRows      int64
	BatchFailed    int64
	BatchAvgNanos  int64
	RowCount       int64
	RowErrors      int64
	ResetCount     int64
	ResetBytesUsed int64
	PeakBytesUsed  int64
}
