package cursor

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrBufferOverrun is returned when an access would cross the end of the buffer.
var ErrBufferOverrun = errors.New("buffer overrun")

func overrun(op string, off, need, size int) error {
	return fmt.Errorf("%w: %s needs %d bytes at offset %d, buffer has %d", ErrBufferOverrun, op, need, off, size)
}

// Reader decodes fixed-width values from a byte slice.
type Reader struct {
	buf []byte
	off int
}

// NewReader returns a Reader positioned at the start of buf.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Len returns the size of the underlying buffer.
func (r *Reader) Len() int { return len(r.buf) }

// Offset returns the current position.
func (r *Reader) Offset() int { return r.off }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.buf) - r.off }

// SetOffset repositions the reader. off may equal Len().
func (r *Reader) SetOffset(off int) error {
	if off < 0 || off > len(r.buf) {
		return overrun("seek", off, 0, len(r.buf))
	}
	r.off = off
	return nil
}

// Require checks that n more bytes are available without consuming them.
func (r *Reader) Require(n int) error {
	return r.check("require", r.off, n)
}

func (r *Reader) check(op string, at, n int) error {
	if n < 0 || at < 0 || at > len(r.buf) || n > len(r.buf)-at {
		return overrun(op, at, n, len(r.buf))
	}
	return nil
}

// Skip advances the reader by n bytes.
func (r *Reader) Skip(n int) error {
	if err := r.check("skip", r.off, n); err != nil {
		return err
	}
	r.off += n
	return nil
}

// ReadUint8 reads one byte.
func (r *Reader) ReadUint8() (uint8, error) {
	v, err := r.PeekUint8(r.off)
	if err != nil {
		return 0, err
	}
	r.off++
	return v, nil
}

// ReadUint32 reads a little-endian uint32.
func (r *Reader) ReadUint32() (uint32, error) {
	v, err := r.PeekUint32(r.off)
	if err != nil {
		return 0, err
	}
	r.off += 4
	return v, nil
}

// ReadFloat64 reads a little-endian IEEE-754 double.
func (r *Reader) ReadFloat64() (float64, error) {
	v, err := r.PeekFloat64(r.off)
	if err != nil {
		return 0, err
	}
	r.off += 8
	return v, nil
}

// ReadBytes returns the next n bytes as a sub-slice of the buffer. The result
// aliases the buffer and its capacity is clipped to n.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if err := r.check("read bytes", r.off, n); err != nil {
		return nil, err
	}
	b := r.buf[r.off : r.off+n : r.off+n]
	r.off += n
	return b, nil
}

// PeekUint8 reads the byte at absolute offset at without moving the cursor.
func (r *Reader) PeekUint8(at int) (uint8, error) {
	if err := r.check("read uint8", at, 1); err != nil {
		return 0, err
	}
	return r.buf[at], nil
}

// PeekUint32 reads a uint32 at absolute offset at without moving the cursor.
func (r *Reader) PeekUint32(at int) (uint32, error) {
	if err := r.check("read uint32", at, 4); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(r.buf[at:]), nil
}

// PeekFloat64 reads a float64 at absolute offset at without moving the cursor.
func (r *Reader) PeekFloat64(at int) (float64, error) {
	if err := r.check("read float64", at, 8); err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(r.buf[at:])), nil
}
