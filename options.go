package geoblob

import (
	"fmt"
	"log/slog"
	"runtime"

	"github.com/hupe1980/geoblob/column"
	"github.com/hupe1980/geoblob/factory"
)

// DefaultBatchSize is the number of rows processed per lane between resets.
const DefaultBatchSize = 2048

type options struct {
	lanes            int
	batchSize        int
	chunkSize        int
	maxChunks        int
	memoryLimit      int64
	ioLimit          int64
	bboxPolicy       factory.BBoxPolicy
	maxDepth         int
	strictBBox       bool
	compression      column.Compression
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures an Engine.
type Option func(*options)

// WithLanes sets the number of parallel lanes. Each lane owns one factory
// and arena. Default: runtime.GOMAXPROCS(0).
func WithLanes(n int) Option {
	return func(o *options) {
		o.lanes = n
	}
}

// WithBatchSize sets the rows per batch. A lane resets its arena after every
// batch, so this bounds the memory a lane holds.
func WithBatchSize(n int) Option {
	return func(o *options) {
		o.batchSize = n
	}
}

// WithChunkSize sets the arena chunk size of every lane.
func WithChunkSize(size int) Option {
	return func(o *options) {
		o.chunkSize = size
	}
}

// WithMaxChunks caps the arena chunks of every lane.
func WithMaxChunks(n int) Option {
	return func(o *options) {
		o.maxChunks = n
	}
}

// WithMemoryLimit caps the arena memory shared by all lanes. A row that
// needs more fails with ErrAllocationExhausted. Zero means unlimited.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.memoryLimit = bytes
	}
}

// WithIOLimit caps Save and Load throughput in bytes per second.
func WithIOLimit(bytesPerSec int64) Option {
	return func(o *options) {
		o.ioLimit = bytesPerSec
	}
}

// WithBoundingBoxPolicy controls whether serialized rows carry a box.
//
// Example:
//
//	eng, _ := geoblob.New(geoblob.WithBoundingBoxPolicy(factory.BBoxAlways))
func WithBoundingBoxPolicy(p factory.BBoxPolicy) Option {
	return func(o *options) {
		o.bboxPolicy = p
	}
}

// WithMaxDepth limits collection nesting on decode and encode.
func WithMaxDepth(depth int) Option {
	return func(o *options) {
		o.maxDepth = depth
	}
}

// WithStrictBoundingBox makes every lane verify cached boxes on decode.
func WithStrictBoundingBox(strict bool) Option {
	return func(o *options) {
		o.strictBBox = strict
	}
}

// WithCompression sets the block compression used by Save.
func WithCompression(c column.Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &geoblob.BasicMetricsCollector{}
//	eng, _ := geoblob.New(geoblob.WithMetricsCollector(metrics))
//	// ... use eng ...
//	stats := metrics.GetStats()
//	fmt.Printf("Rows: %d, failed: %d\n", stats.RowCount, stats.RowErrors)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := geoblob.NewJSONLogger(slog.LevelInfo)
//	eng, _ := geoblob.New(geoblob.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) (options, error) {
	o := options{
		lanes:            runtime.GOMAXPROCS(0),
		batchSize:        DefaultBatchSize,
		bboxPolicy:       factory.BBoxPreserve,
		maxDepth:         factory.DefaultMaxDepth,
		compression:      column.CompressionLZ4,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}

	switch {
	case o.lanes <= 0:
		return o, fmt.Errorf("%w: lanes must be positive, got %d", ErrInvalidOption, o.lanes)
	case o.batchSize <= 0:
		return o, fmt.Errorf("%w: batch size must be positive, got %d", ErrInvalidOption, o.batchSize)
	case o.memoryLimit < 0:
		return o, fmt.Errorf("%w: negative memory limit %d", ErrInvalidOption, o.memoryLimit)
	case o.ioLimit < 0:
		return o, fmt.Errorf("%w: negative IO limit %d", ErrInvalidOption, o.ioLimit)
	case o.maxDepth <= 0:
		return o, fmt.Errorf("%w: max depth must be positive, got %d", ErrInvalidOption, o.maxDepth)
	}
	return o, nil
}
