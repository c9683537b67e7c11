package factory

import (
	"fmt"

	"github.com/hupe1980/geoblob/geometry"
	"github.com/hupe1980/geoblob/internal/cursor"
)

// GetHeader decodes the two header bytes of blob.
func GetHeader(blob []byte) (geometry.Header, error) {
	r := cursor.NewReader(blob)
	if err := r.Require(geometry.HeaderSize); err != nil {
		return geometry.Header{}, err
	}
	tag, _ := r.ReadUint8()
	props, _ := r.ReadUint8()
	return geometry.ParseHeader(tag, props)
}

// TryGetCachedBoundingBox returns the box stored after the header. ok is
// false when the blob carries none.
func TryGetCachedBoundingBox(blob []byte) (box geometry.Box, ok bool, err error) {
	h, err := GetHeader(blob)
	if err != nil {
		return geometry.Box{}, false, err
	}
	if !h.Props.HasBBox() {
		return geometry.EmptyBox(), false, nil
	}
	r := cursor.NewReader(blob)
	if err := r.SetOffset(geometry.HeaderSize); err != nil {
		return geometry.Box{}, false, err
	}
	box, err = readBox(r)
	if err != nil {
		return geometry.Box{}, false, err
	}
	return box, true, nil
}

// Description is the metadata readable without parsing the payload.
type Description struct {
	Type    geometry.Type
	HasZ    bool
	HasM    bool
	HasBBox bool
	// Size is the encoded size in bytes.
	Size int
	// Box is the cached bounding box, or an empty box when absent.
	Box geometry.Box
}

// Describe reads the header and the cached box of blob.
func Describe(blob []byte) (Description, error) {
	h, err := GetHeader(blob)
	if err != nil {
		return Description{}, err
	}
	box, _, err := TryGetCachedBoundingBox(blob)
	if err != nil {
		return Description{}, err
	}
	return Description{
		Type:    h.Type,
		HasZ:    h.Props.HasZ(),
		HasM:    h.Props.HasM(),
		HasBBox: h.Props.HasBBox(),
		Size:    len(blob),
		Box:     box,
	}, nil
}

func (d Description) String() string {
	layout := ""
	if d.HasZ || d.HasM {
		layout = " "
		if d.HasZ {
			layout += "Z"
		}
		if d.HasM {
			layout += "M"
		}
	}
	if !d.HasBBox {
		return fmt.Sprintf("%s%s, %d bytes", d.Type, layout, d.Size)
	}
	return fmt.Sprintf("%s%s, %d bytes, %s", d.Type, layout, d.Size, d.Box)
}

// Extent returns the bounding box of blob, read from the cache when present
// and computed from a full decode otherwise. Decoded nodes live until the
// next Reset.
func (f *Factory) Extent(blob []byte) (geometry.Box, error) {
	box, ok, err := TryGetCachedBoundingBox(blob)
	if err != nil {
		return geometry.Box{}, err
	}
	if ok {
		return box, nil
	}
	g, err := f.Deserialize(blob)
	if err != nil {
		return geometry.Box{}, err
	}
	return g.Extent(), nil
}
