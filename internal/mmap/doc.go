// Package mmap provides memory mappings used by the arena and the local blob store.
//
// # Overview
//
// Two kinds of mappings are supported:
//
//   - Anonymous read-write mappings (MapAnon) that back arena chunks. They live
//     outside the Go heap, so per-row geometry buffers never add GC pressure.
//   - Read-only file mappings (Open) that let encoded column blocks be decoded
//     straight from the page cache.
//
// # Usage
//
//	m, err := mmap.MapAnon(1 << 20)
//	if err != nil { ... }
//	defer m.Close()
//	buf := m.Bytes()
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2) with madvise(2) for access hints
//   - Windows: CreateFileMapping/MapViewOfFile and VirtualAlloc (advise is a no-op)
//   - Other platforms: heap-backed fallback
//
// # Thread Safety
//
// Close is idempotent and protected by an atomic flag. Callers must ensure no
// goroutine touches Bytes() after Close returns.
package mmap
