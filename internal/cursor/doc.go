// Package cursor implements bounds-checked little-endian readers and writers
// over fixed byte buffers.
//
// Every operation checks that the access fits the buffer before touching it.
// A failed check returns an error wrapping ErrBufferOverrun and leaves the
// cursor where it was; no partial reads or writes happen.
package cursor
