package geometry

import "fmt"

// Type is the wire tag of a geometry kind.
type Type uint8

const (
	// TypeInvalid is the zero value; it never appears on the wire.
	TypeInvalid Type = iota
	TypePoint
	TypeLineString
	TypePolygon
	TypeMultiPoint
	TypeMultiLineString
	TypeMultiPolygon
	TypeGeometryCollection
)

// Valid reports whether t is one of the seven kinds.
func (t Type) Valid() bool {
	return t >= TypePoint && t <= TypeGeometryCollection
}

// IsMulti reports whether t is MultiPoint, MultiLineString or MultiPolygon.
func (t Type) IsMulti() bool {
	return t >= TypeMultiPoint && t <= TypeMultiPolygon
}

// IsCollection reports whether t has child geometries.
func (t Type) IsCollection() bool {
	return t >= TypeMultiPoint && t <= TypeGeometryCollection
}

// Element returns the child kind of a multi kind, or TypeInvalid.
func (t Type) Element() Type {
	if !t.IsMulti() {
		return TypeInvalid
	}
	return t - 3
}

func (t Type) String() string {
	switch t {
	case TypePoint:
		return "POINT"
	case TypeLineString:
		return "LINESTRING"
	case TypePolygon:
		return "POLYGON"
	case TypeMultiPoint:
		return "MULTIPOINT"
	case TypeMultiLineString:
		return "MULTILINESTRING"
	case TypeMultiPolygon:
		return "MULTIPOLYGON"
	case TypeGeometryCollection:
		return "GEOMETRYCOLLECTION"
	default:
		return fmt.Sprintf("Type(%d)", uint8(t))
	}
}

// Properties is the flag byte that follows the type tag.
type Properties uint8

const (
	HasZ Properties = 1 << iota
	HasM
	HasBBox

	// XY, XYZ, XYM and XYZM are the four vertex layouts.
	XY   Properties = 0
	XYZ             = HasZ
	XYM             = HasM
	XYZM            = HasZ | HasM

	layoutMask   = HasZ | HasM
	reservedMask = ^(HasZ | HasM | HasBBox)
)

// HasZ reports whether vertices carry a z ordinate.
func (p Properties) HasZ() bool { return p&HasZ != 0 }

// HasM reports whether vertices carry an m ordinate.
func (p Properties) HasM() bool { return p&HasM != 0 }

// HasBBox reports whether a bounding box follows the header.
func (p Properties) HasBBox() bool { return p&HasBBox != 0 }

// Layout strips everything but the z and m bits.
func (p Properties) Layout() Properties { return p & layoutMask }

// Ordinates returns the number of float64 values per vertex (2 to 4).
func (p Properties) Ordinates() int {
	n := 2
	if p.HasZ() {
		n++
	}
	if p.HasM() {
		n++
	}
	return n
}

// VertexSize returns the encoded size of one vertex in bytes.
func (p Properties) VertexSize() int { return p.Ordinates() * 8 }

// Validate rejects reserved bits.
func (p Properties) Validate() error {
	if p&reservedMask != 0 {
		return fmt.Errorf("%w: reserved property bits set (0x%02x)", ErrMalformedGeometry, uint8(p))
	}
	return nil
}

func (p Properties) String() string {
	s := ""
	if p.HasZ() {
		s += "Z"
	}
	if p.HasM() {
		s += "M"
	}
	if s == "" {
		return "XY"
	}
	return s
}

// HeaderSize is the encoded size of a Header.
const HeaderSize = 2

// Header is the fixed prefix of every encoded geometry.
type Header struct {
	Type  Type
	Props Properties
}

// ParseHeader validates the two header bytes.
func ParseHeader(tag, props byte) (Header, error) {
	h := Header{Type: Type(tag), Props: Properties(props)}
	if !h.Type.Valid() {
		return Header{}, fmt.Errorf("%w: unknown type tag %d", ErrMalformedGeometry, tag)
	}
	if err := h.Props.Validate(); err != nil {
		return Header{}, err
	}
	return h, nil
}
