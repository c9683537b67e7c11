package column

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/geoblob/geometry"
	"github.com/hupe1980/geoblob/internal/cursor"
)

const (
	magic   = "GBC1"
	version = 1

	fixedHeaderSize = len(magic) + 1 + 1 + 4
)

// Encode writes c as one block to w and returns the number of bytes written.
func (c *Column) Encode(w io.Writer, comp Compression) (int64, error) {
	buf, err := c.AppendEncoded(nil, comp)
	if err != nil {
		return 0, err
	}
	n, err := w.Write(buf)
	return int64(n), err
}

// AppendEncoded appends the encoded block to dst.
func (c *Column) AppendEncoded(dst []byte, comp Compression) ([]byte, error) {
	if !comp.valid() {
		return dst, fmt.Errorf("%w: %d", ErrUnknownCompression, comp)
	}
	rows := c.Len()
	start := len(dst)

	dst = append(dst, magic...)
	dst = append(dst, version, byte(comp))
	dst = binary.LittleEndian.AppendUint32(dst, uint32(rows))

	validity, err := c.valid.ToBytes()
	if err != nil {
		return dst[:start], err
	}
	dst = binary.LittleEndian.AppendUint32(dst, uint32(len(validity)))
	dst = append(dst, validity...)

	base := c.offsets[0]
	offsets := make([]byte, 0, 4*(rows+1))
	for _, off := range c.offsets {
		offsets = binary.LittleEndian.AppendUint32(offsets, off-base)
	}
	if dst, err = appendBlock(dst, offsets, comp); err != nil {
		return dst[:start], err
	}
	if dst, err = appendBlock(dst, c.data[base:c.offsets[rows]], comp); err != nil {
		return dst[:start], err
	}

	return binary.LittleEndian.AppendUint32(dst, crc32.ChecksumIEEE(dst[start:])), nil
}

// Decode parses an encoded block. The returned column may alias data.
func Decode(data []byte) (*Column, error) {
	if len(data) < fixedHeaderSize+4 {
		return nil, fmt.Errorf("%w: %d bytes", ErrCorruptBlock, len(data))
	}
	body, sum := data[:len(data)-4], binary.LittleEndian.Uint32(data[len(data)-4:])
	if crc32.ChecksumIEEE(body) != sum {
		return nil, ErrChecksumMismatch
	}

	r := cursor.NewReader(body)
	m, err := r.ReadBytes(len(magic))
	if err != nil {
		return nil, err
	}
	if string(m) != magic {
		return nil, fmt.Errorf("%w: bad magic %q", ErrCorruptBlock, m)
	}
	v, err := r.ReadUint8()
	if err != nil {
		return nil, err
	}
	if v != version {
		return nil, fmt.Errorf("%w: version %d", ErrCorruptBlock, v)
	}
	cb, err := r.ReadUint8()
	if err != nil {
		return nil, err
	}
	comp := Compression(cb)
	if !comp.valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCompression, cb)
	}
	rows, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}

	vlen, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	vbytes, err := r.ReadBytes(int(vlen))
	if err != nil {
		return nil, err
	}
	valid := roaring.New()
	if err := valid.UnmarshalBinary(vbytes); err != nil {
		return nil, fmt.Errorf("%w: validity: %w", ErrCorruptBlock, err)
	}
	if !valid.IsEmpty() && uint64(valid.Maximum()) >= uint64(rows) {
		return nil, fmt.Errorf("%w: validity bit %d beyond %d rows", ErrCorruptBlock, valid.Maximum(), rows)
	}

	rest := body[r.Offset():]
	rawOffsets, n, err := readBlock(rest, comp)
	if err != nil {
		return nil, err
	}
	rest = rest[n:]
	if uint64(len(rawOffsets)) != 4*(uint64(rows)+1) {
		return nil, fmt.Errorf("%w: %d offset bytes for %d rows", ErrCorruptBlock, len(rawOffsets), rows)
	}
	payload, n, err := readBlock(rest, comp)
	if err != nil {
		return nil, err
	}
	if n != len(rest) {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrCorruptBlock, len(rest)-n)
	}

	offsets := make([]uint32, rows+1)
	for i := range offsets {
		offsets[i] = binary.LittleEndian.Uint32(rawOffsets[4*i:])
	}
	if offsets[0] != 0 || offsets[rows] != uint32(len(payload)) {
		return nil, fmt.Errorf("%w: offsets do not span payload", ErrCorruptBlock)
	}
	for i := range int(rows) {
		if offsets[i+1] < offsets[i] {
			return nil, fmt.Errorf("%w: offsets decrease at row %d", ErrCorruptBlock, i)
		}
		size := offsets[i+1] - offsets[i]
		if valid.Contains(uint32(i)) {
			if size < geometry.HeaderSize {
				return nil, fmt.Errorf("%w: row %d holds %d bytes, shorter than a header", ErrCorruptBlock, i, size)
			}
		} else if size != 0 {
			return nil, fmt.Errorf("%w: NULL row %d has data", ErrCorruptBlock, i)
		}
	}

	return &Column{valid: valid, offsets: offsets, data: payload}, nil
}
