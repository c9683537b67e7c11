package cursor

import (
	"encoding/binary"
	"math"
)

// Writer encodes fixed-width values into a pre-sized byte slice.
type Writer struct {
	buf []byte
	off int
}

// NewWriter returns a Writer positioned at the start of buf.
func NewWriter(buf []byte) *Writer {
	return &Writer{buf: buf}
}

// Bytes returns the underlying buffer.
func (w *Writer) Bytes() []byte { return w.buf }

// Offset returns the current position.
func (w *Writer) Offset() int { return w.off }

// Remaining returns the number of bytes left before the end of the buffer.
func (w *Writer) Remaining() int { return len(w.buf) - w.off }

// SetOffset repositions the writer, typically to backpatch a count.
func (w *Writer) SetOffset(off int) error {
	if off < 0 || off > len(w.buf) {
		return overrun("seek", off, 0, len(w.buf))
	}
	w.off = off
	return nil
}

func (w *Writer) check(op string, at, n int) error {
	if n < 0 || at < 0 || at > len(w.buf) || n > len(w.buf)-at {
		return overrun(op, at, n, len(w.buf))
	}
	return nil
}

// Skip advances the writer by n bytes, leaving them untouched.
func (w *Writer) Skip(n int) error {
	if err := w.check("skip", w.off, n); err != nil {
		return err
	}
	w.off += n
	return nil
}

// WriteUint8 writes one byte.
func (w *Writer) WriteUint8(v uint8) error {
	if err := w.check("write uint8", w.off, 1); err != nil {
		return err
	}
	w.buf[w.off] = v
	w.off++
	return nil
}

// WriteUint32 writes a little-endian uint32.
func (w *Writer) WriteUint32(v uint32) error {
	if err := w.PutUint32At(w.off, v); err != nil {
		return err
	}
	w.off += 4
	return nil
}

// WriteFloat64 writes a little-endian IEEE-754 double.
func (w *Writer) WriteFloat64(v float64) error {
	if err := w.check("write float64", w.off, 8); err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(w.buf[w.off:], math.Float64bits(v))
	w.off += 8
	return nil
}

// WriteBytes copies p into the buffer.
func (w *Writer) WriteBytes(p []byte) error {
	if err := w.check("write bytes", w.off, len(p)); err != nil {
		return err
	}
	w.off += copy(w.buf[w.off:], p)
	return nil
}

// PutUint32At writes a uint32 at absolute offset at without moving the cursor.
func (w *Writer) PutUint32At(at int, v uint32) error {
	if err := w.check("write uint32", at, 4); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(w.buf[at:], v)
	return nil
}
