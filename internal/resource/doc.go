// Package resource governs the resources shared by execution lanes.
//
//   - Memory: lane arenas charge every chunk they map against one budget
//     (non-blocking, fail-fast). A refused chunk surfaces as an arena
//     allocation failure for the row that needed it.
//   - IO: column blocks are saved and loaded through a token bucket so bulk
//     storage traffic cannot starve the store.
//
// A Controller satisfies the arena's MemoryAcquirer interface:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes:   256 << 20,
//	    IOLimitBytesPerSec: 64 << 20,
//	})
//	a, err := arena.New(arena.WithMemoryAcquirer(rc))
//
// All methods are safe for concurrent use and accept a nil *Controller,
// which imposes no limits.
package resource
