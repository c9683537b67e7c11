// Package cache provides an LRU cache for immutable blob blocks.
//
// Remote column blocks are read in fixed-size blocks; LRUBlockCache keeps
// the most recently used ones in memory. When constructed with a
// resource.Controller, every cached byte is charged against the shared
// memory budget, and blocks that do not fit the budget are not cached.
package cache
