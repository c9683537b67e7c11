package testutil

import (
	"math/rand"
	"sync"

	"github.com/hupe1980/geoblob/column"
	"github.com/hupe1980/geoblob/factory"
	"github.com/hupe1980/geoblob/geometry"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// GeometryOptions bounds the shape of random geometries. Zero fields select
// the defaults.
type GeometryOptions struct {
	// Layout fixes the vertex layout. Nil picks one at random per geometry.
	Layout *geometry.Properties
	// MaxDepth limits collection nesting. Default: 2.
	MaxDepth int
	// MaxVertices limits vertices per line or ring. Default: 16.
	MaxVertices int
	// MaxParts limits children per collection and rings per polygon. Default: 4.
	MaxParts int
	// EmptyRate is the probability of an empty geometry at each level.
	EmptyRate float64
}

func (o GeometryOptions) withDefaults() GeometryOptions {
	if o.MaxDepth <= 0 {
		o.MaxDepth = 2
	}
	if o.MaxVertices < 4 {
		o.MaxVertices = 16
	}
	if o.MaxParts <= 0 {
		o.MaxParts = 4
	}
	return o
}

var layouts = [...]geometry.Properties{geometry.XY, geometry.XYZ, geometry.XYM, geometry.XYZM}

// Geometry builds a random geometry in f.
func (r *RNG) Geometry(f *factory.Factory, opts GeometryOptions) (geometry.Geometry, error) {
	opts = opts.withDefaults()

	r.mu.Lock()
	defer r.mu.Unlock()

	layout := layouts[r.rand.Intn(len(layouts))]
	if opts.Layout != nil {
		layout = opts.Layout.Layout()
	}
	b := builder{r: r.rand, f: f, opts: opts, layout: layout}
	return b.any(opts.MaxDepth)
}

// Column builds a column of rows random geometries; each row is NULL with
// probability nullRate.
func (r *RNG) Column(f *factory.Factory, rows int, nullRate float64, opts GeometryOptions) (*column.Column, error) {
	b := column.NewBuilder(rows)
	for range rows {
		if r.Float64() < nullRate {
			if err := b.AppendNull(); err != nil {
				return nil, err
			}
			continue
		}
		g, err := r.Geometry(f, opts)
		if err != nil {
			return nil, err
		}
		if err := b.AppendGeometry(f, g); err != nil {
			return nil, err
		}
	}
	return b.Build(), nil
}

type builder struct {
	r      *rand.Rand
	f      *factory.Factory
	opts   GeometryOptions
	layout geometry.Properties
}

func (b *builder) empty() bool {
	return b.r.Float64() < b.opts.EmptyRate
}

func (b *builder) vertex() geometry.Vertex {
	return geometry.Vertex{
		X: b.r.Float64()*360 - 180,
		Y: b.r.Float64()*180 - 90,
		Z: b.r.Float64() * 1000,
		M: float64(b.r.Intn(1 << 20)),
	}
}

func (b *builder) any(depth int) (geometry.Geometry, error) {
	kinds := int(geometry.TypeMultiPolygon)
	if depth > 0 {
		kinds = int(geometry.TypeGeometryCollection)
	}
	switch t := geometry.Type(1 + b.r.Intn(kinds)); t {
	case geometry.TypePoint:
		p, err := b.point()
		return p.Geometry(), err
	case geometry.TypeLineString:
		ls, err := b.lineString()
		return ls.Geometry(), err
	case geometry.TypePolygon:
		p, err := b.polygon()
		return p.Geometry(), err
	default:
		return b.collection(t, depth)
	}
}

func (b *builder) point() (geometry.Point, error) {
	p, err := b.f.CreatePoint(b.layout)
	if err != nil || b.empty() {
		return p, err
	}
	p.AppendUnsafe(b.vertex())
	return p, nil
}

func (b *builder) lineString() (geometry.LineString, error) {
	n := 0
	if !b.empty() {
		n = 2 + b.r.Intn(b.opts.MaxVertices-1)
	}
	ls, err := b.f.CreateLineString(b.layout, n)
	if err != nil {
		return ls, err
	}
	for range n {
		ls.AppendUnsafe(b.vertex())
	}
	return ls, nil
}

// polygon builds closed rings of at least four vertices.
func (b *builder) polygon() (geometry.Polygon, error) {
	var caps []int
	if !b.empty() {
		caps = make([]int, 1+b.r.Intn(b.opts.MaxParts))
		for i := range caps {
			caps[i] = 4 + b.r.Intn(b.opts.MaxVertices-3)
		}
	}
	p, err := b.f.CreatePolygon(b.layout, caps...)
	if err != nil {
		return p, err
	}
	for i, n := range caps {
		first := b.vertex()
		p.AppendUnsafe(i, first)
		for range n - 2 {
			p.AppendUnsafe(i, b.vertex())
		}
		p.AppendUnsafe(i, first)
	}
	return p, nil
}

func (b *builder) collection(t geometry.Type, depth int) (geometry.Geometry, error) {
	n := 0
	if !b.empty() {
		n = 1 + b.r.Intn(b.opts.MaxParts)
	}
	g, err := b.f.Create(t, b.layout, n)
	if err != nil {
		return geometry.Geometry{}, err
	}

	for range n {
		var child geometry.Geometry
		switch t {
		case geometry.TypeMultiPoint:
			p, err := b.point()
			if err != nil {
				return geometry.Geometry{}, err
			}
			child = p.Geometry()
		case geometry.TypeMultiLineString:
			ls, err := b.lineString()
			if err != nil {
				return geometry.Geometry{}, err
			}
			child = ls.Geometry()
		case geometry.TypeMultiPolygon:
			p, err := b.polygon()
			if err != nil {
				return geometry.Geometry{}, err
			}
			child = p.Geometry()
		default:
			child, err = b.any(depth - 1)
			if err != nil {
				return geometry.Geometry{}, err
			}
		}
		if err := addChild(g, child); err != nil {
			return geometry.Geometry{}, err
		}
	}
	return g, nil
}

// addChild fails with ErrTypeMismatch for non-collection parents.
func addChild(parent, child geometry.Geometry) error {
	_, err := geometry.Match(parent, geometry.Cases[struct{}]{
		MultiPoint: func(m geometry.MultiPoint) (struct{}, error) {
			p, err := child.AsPoint()
			if err != nil {
				return struct{}{}, err
			}
			return struct{}{}, m.Add(p)
		},
		MultiLineString: func(m geometry.MultiLineString) (struct{}, error) {
			ls, err := child.AsLineString()
			if err != nil {
				return struct{}{}, err
			}
			return struct{}{}, m.Add(ls)
		},
		MultiPolygon: func(m geometry.MultiPolygon) (struct{}, error) {
			p, err := child.AsPolygon()
			if err != nil {
				return struct{}{}, err
			}
			return struct{}{}, m.Add(p)
		},
		GeometryCollection: func(c geometry.GeometryCollection) (struct{}, error) {
			return struct{}{}, c.Add(child)
		},
	})
	return err
}
