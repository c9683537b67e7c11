// Package arena provides the bump allocator that backs per-lane geometry buffers.
//
// The arena hands out byte slices from large off-heap chunks (anonymous mmap),
// so per-row coordinate buffers never add GC pressure. Individual allocations
// are never freed; Reset rewinds the whole arena in O(1) and bumps a
// generation counter that views use to detect use-after-reset.
//
// # Features
//
//   - Off-heap allocation via mmap (no GC pressure)
//   - 1 MiB default chunks, oversized requests get a dedicated chunk
//   - Generation tracking for stale-view detection
//   - Optional MemoryAcquirer for a process-wide memory budget
//
// # Concurrency
//
// An Arena belongs to exactly one execution lane and is not safe for
// concurrent use.
package arena
