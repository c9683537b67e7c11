package geometry

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"iter"
	"math"
)

// Vertex is one coordinate tuple. Z and M are zero when the layout lacks them.
type Vertex struct {
	X, Y, Z, M float64
}

// IsNaN reports whether every ordinate of the vertex is NaN.
func (v Vertex) IsNaN(layout Properties) bool {
	if !math.IsNaN(v.X) || !math.IsNaN(v.Y) {
		return false
	}
	if layout.HasZ() && !math.IsNaN(v.Z) {
		return false
	}
	if layout.HasM() && !math.IsNaN(v.M) {
		return false
	}
	return true
}

// VertexArray is a run of vertices stored in the wire layout: each vertex is
// Ordinates() little-endian float64 values (x, y, [z], [m]).
//
// A VertexArray either aliases a decoded blob (capacity equals length, so it
// cannot grow) or owns an arena buffer sized up front by a builder.
type VertexArray struct {
	data   []byte
	layout Properties
}

// NewVertexArray returns an empty array that appends into buf's capacity.
func NewVertexArray(buf []byte, layout Properties) VertexArray {
	return VertexArray{data: buf[:0], layout: layout.Layout()}
}

// WrapVertexArray views already encoded vertex bytes.
func WrapVertexArray(data []byte, layout Properties) (VertexArray, error) {
	layout = layout.Layout()
	if len(data)%layout.VertexSize() != 0 {
		return VertexArray{}, fmt.Errorf("%w: %d bytes is not a multiple of the %s vertex size", ErrMalformedGeometry, len(data), layout)
	}
	return VertexArray{data: data[:len(data):len(data)], layout: layout}, nil
}

// Layout returns the z/m flags of the vertices.
func (v VertexArray) Layout() Properties { return v.layout }

// Stride returns the encoded size of one vertex.
func (v VertexArray) Stride() int { return v.layout.VertexSize() }

// Len returns the number of vertices.
func (v VertexArray) Len() int { return len(v.data) / v.Stride() }

// Cap returns the number of vertices the array can hold without reallocation.
func (v VertexArray) Cap() int { return cap(v.data) / v.Stride() }

// Bytes returns the encoded vertices.
func (v VertexArray) Bytes() []byte { return v.data }

func (v VertexArray) ord(i, k int) float64 {
	off := i*v.Stride() + k*8
	return math.Float64frombits(binary.LittleEndian.Uint64(v.data[off : off+8]))
}

// XY returns the planar ordinates of vertex i.
func (v VertexArray) XY(i int) (float64, float64) {
	return v.ord(i, 0), v.ord(i, 1)
}

// At returns vertex i. It panics if i is out of range.
func (v VertexArray) At(i int) Vertex {
	vx := Vertex{X: v.ord(i, 0), Y: v.ord(i, 1)}
	k := 2
	if v.layout.HasZ() {
		vx.Z = v.ord(i, k)
		k++
	}
	if v.layout.HasM() {
		vx.M = v.ord(i, k)
	}
	return vx
}

// All iterates over the vertices in order.
func (v VertexArray) All() iter.Seq2[int, Vertex] {
	return func(yield func(int, Vertex) bool) {
		for i := range v.Len() {
			if !yield(i, v.At(i)) {
				return
			}
		}
	}
}

// AppendUnsafe writes vx after the last vertex. It performs no capacity check
// of its own; appending past capacity panics like an out-of-range slice index.
func (v *VertexArray) AppendUnsafe(vx Vertex) {
	n := len(v.data)
	v.data = v.data[:n+v.Stride()]
	put := func(k int, f float64) {
		binary.LittleEndian.PutUint64(v.data[n+k*8:], math.Float64bits(f))
	}
	put(0, vx.X)
	put(1, vx.Y)
	k := 2
	if v.layout.HasZ() {
		put(k, vx.Z)
		k++
	}
	if v.layout.HasM() {
		put(k, vx.M)
	}
}

// Append writes vx after the last vertex, or fails when the array is full.
func (v *VertexArray) Append(vx Vertex) error {
	if cap(v.data)-len(v.data) < v.Stride() {
		return fmt.Errorf("%w: vertex array holds %d vertices", ErrCapacityExceeded, v.Cap())
	}
	v.AppendUnsafe(vx)
	return nil
}

// Extent returns the box of all finite vertices.
func (v VertexArray) Extent() Box {
	b := EmptyBox()
	for i := range v.Len() {
		b.Extend(v.XY(i))
	}
	return b
}

// IsClosed reports whether the array is non-empty and its first and last
// vertices are equal in every ordinate. Bit-identical NaN ordinates count as
// equal.
func (v VertexArray) IsClosed() bool {
	n := v.Len()
	if n == 0 {
		return false
	}
	if v.At(0) == v.At(n-1) {
		return true
	}
	s := v.Stride()
	return bytes.Equal(v.data[:s], v.data[(n-1)*s:])
}

// Equal reports whether both arrays have the same layout and bit-identical
// ordinates.
func (v VertexArray) Equal(o VertexArray) bool {
	return v.layout == o.layout && bytes.Equal(v.data, o.data)
}
