package column

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/hupe1980/geoblob/blobstore"
	"github.com/hupe1980/geoblob/internal/resource"
)

// Option configures Save and Load.
type Option func(*options)

type options struct {
	compression Compression
	rc          *resource.Controller
}

// WithCompression sets the block compression used by Save. Default: LZ4.
func WithCompression(c Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithIOLimit caps Save and Load throughput at bytesPerSec.
func WithIOLimit(bytesPerSec int64) Option {
	return func(o *options) {
		o.rc = resource.NewController(resource.Config{IOLimitBytesPerSec: bytesPerSec})
	}
}

// WithResourceController charges Save and Load IO against rc.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.rc = rc
	}
}

func newOptions(optFns []Option) options {
	o := options{compression: CompressionLZ4}
	for _, fn := range optFns {
		fn(&o)
	}
	return o
}

// Save encodes c and stores it under name.
func Save(ctx context.Context, store blobstore.Store, name string, c *Column, optFns ...Option) error {
	o := newOptions(optFns)

	var buf bytes.Buffer
	var w io.Writer = &buf
	if o.rc != nil {
		w = resource.NewRateLimitedWriter(ctx, &buf, o.rc)
	}
	if _, err := c.Encode(w, o.compression); err != nil {
		return fmt.Errorf("column: save %s: %w", name, err)
	}
	return store.Put(ctx, name, buf.Bytes())
}

// Load reads and decodes the column stored under name.
func Load(ctx context.Context, store blobstore.Store, name string, optFns ...Option) (*Column, error) {
	o := newOptions(optFns)

	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer blob.Close()

	r := blobstore.NewReader(ctx, blob)
	if o.rc != nil {
		r = resource.NewRateLimitedReader(ctx, r, o.rc)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("column: load %s: %w", name, err)
	}
	c, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("column: load %s: %w", name, err)
	}
	return c, nil
}
