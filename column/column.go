package column

import (
	"fmt"
	"iter"
	"math"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/geoblob/factory"
	"github.com/hupe1980/geoblob/geometry"
)

// Column is an immutable sequence of nullable geometry blobs.
//
// Values returned by Value alias the column's storage and must not be
// modified.
type Column struct {
	valid   *roaring.Bitmap // set bits mark non-NULL rows
	offsets []uint32        // rows+1 absolute offsets into data
	data    []byte
}

// Len returns the number of rows.
func (c *Column) Len() int { return len(c.offsets) - 1 }

// IsNull reports whether row i is NULL.
func (c *Column) IsNull(i int) bool { return !c.valid.Contains(uint32(i)) }

// NullCount returns the number of NULL rows.
func (c *Column) NullCount() int { return c.Len() - int(c.valid.GetCardinality()) }

// Value returns the blob of row i, or nil when the row is NULL.
func (c *Column) Value(i int) []byte {
	if i < 0 || i >= c.Len() {
		panic(fmt.Sprintf("column: row %d out of range [0,%d)", i, c.Len()))
	}
	if c.IsNull(i) {
		return nil
	}
	lo, hi := c.offsets[i], c.offsets[i+1]
	return c.data[lo:hi:hi]
}

// All iterates over rows in order. NULL rows yield nil.
func (c *Column) All() iter.Seq2[int, []byte] {
	return func(yield func(int, []byte) bool) {
		for i := range c.Len() {
			if !yield(i, c.Value(i)) {
				return
			}
		}
	}
}

// Slice returns rows [lo, hi) sharing storage with c.
func (c *Column) Slice(lo, hi int) (*Column, error) {
	if lo < 0 || hi < lo || hi > c.Len() {
		return nil, fmt.Errorf("%w: slice [%d,%d) of %d rows", ErrRowOutOfRange, lo, hi, c.Len())
	}
	valid := roaring.New()
	it := c.valid.Iterator()
	it.AdvanceIfNeeded(uint32(lo))
	for it.HasNext() {
		r := it.Next()
		if int(r) >= hi {
			break
		}
		valid.Add(r - uint32(lo))
	}
	return &Column{
		valid:   valid,
		offsets: c.offsets[lo : hi+1],
		data:    c.data,
	}, nil
}

// Header returns the header of row i without decoding it.
func (c *Column) Header(i int) (geometry.Header, error) {
	blob, err := c.row(i)
	if err != nil {
		return geometry.Header{}, err
	}
	return factory.GetHeader(blob)
}

// Describe summarizes row i from its header and cached box.
func (c *Column) Describe(i int) (factory.Description, error) {
	blob, err := c.row(i)
	if err != nil {
		return factory.Description{}, err
	}
	return factory.Describe(blob)
}

// Extent returns the union of the boxes of all non-NULL rows. Rows with a
// cached box are read in O(1); the rest are decoded into f, which the caller
// resets afterwards.
func (c *Column) Extent(f *factory.Factory) (geometry.Box, error) {
	box := geometry.EmptyBox()
	for i, blob := range c.All() {
		if blob == nil {
			continue
		}
		b, err := f.Extent(blob)
		if err != nil {
			return geometry.EmptyBox(), fmt.Errorf("row %d: %w", i, err)
		}
		box = box.Union(b)
	}
	return box, nil
}

// PayloadSize returns the number of blob bytes referenced by the column.
func (c *Column) PayloadSize() int {
	return int(c.offsets[len(c.offsets)-1] - c.offsets[0])
}

func (c *Column) row(i int) ([]byte, error) {
	if i < 0 || i >= c.Len() {
		return nil, fmt.Errorf("%w: row %d of %d", ErrRowOutOfRange, i, c.Len())
	}
	if c.IsNull(i) {
		return nil, geometry.ErrNullGeometry
	}
	return c.Value(i), nil
}

// Builder accumulates rows for a Column. The zero value is not usable; call
// NewBuilder.
type Builder struct {
	valid   *roaring.Bitmap
	offsets []uint32
	data    []byte
}

// NewBuilder creates a builder with room for rows rows.
func NewBuilder(rows int) *Builder {
	b := &Builder{
		valid:   roaring.New(),
		offsets: make([]uint32, 1, max(rows, 0)+1),
	}
	return b
}

// Len returns the number of rows appended so far.
func (b *Builder) Len() int { return len(b.offsets) - 1 }

// AppendBlob appends an encoded geometry. The blob is copied; only its
// header is validated.
func (b *Builder) AppendBlob(blob []byte) error {
	if _, err := factory.GetHeader(blob); err != nil {
		return err
	}
	if err := b.checkGrow(len(blob)); err != nil {
		return err
	}
	b.data = append(b.data, blob...)
	b.commit()
	return nil
}

// AppendNull appends a NULL row.
func (b *Builder) AppendNull() error {
	if err := b.checkGrow(0); err != nil {
		return err
	}
	b.offsets = append(b.offsets, uint32(len(b.data)))
	return nil
}

// AppendGeometry serializes g with f and appends it. The null geometry
// appends a NULL row.
func (b *Builder) AppendGeometry(f *factory.Factory, g geometry.Geometry) error {
	if g.IsNull() {
		return b.AppendNull()
	}
	size, err := f.SerializedSize(g)
	if err != nil {
		return err
	}
	if err := b.checkGrow(size); err != nil {
		return err
	}
	data, err := f.AppendSerialized(b.data, g)
	if err != nil {
		return err
	}
	b.data = data
	b.commit()
	return nil
}

// Build returns the column and resets the builder.
func (b *Builder) Build() *Column {
	c := &Column{valid: b.valid, offsets: b.offsets, data: b.data}
	c.valid.RunOptimize()
	*b = *NewBuilder(0)
	return c
}

func (b *Builder) checkGrow(n int) error {
	if b.Len() >= math.MaxUint32-1 || uint64(len(b.data))+uint64(n) > math.MaxUint32 {
		return fmt.Errorf("%w: %d rows, %d bytes", ErrColumnTooLarge, b.Len(), len(b.data))
	}
	return nil
}

func (b *Builder) commit() {
	b.valid.Add(uint32(b.Len()))
	b.offsets = append(b.offsets, uint32(len(b.data)))
}

// FromBlobs builds a column from blobs; nil entries become NULL rows.
func FromBlobs(blobs ...[]byte) (*Column, error) {
	b := NewBuilder(len(blobs))
	for i, blob := range blobs {
		var err error
		if blob == nil {
			err = b.AppendNull()
		} else {
			err = b.AppendBlob(blob)
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
	}
	return b.Build(), nil
}
