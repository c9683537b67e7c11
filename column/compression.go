package column

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects the block compression algorithm.
type Compression uint8

const (
	// CompressionNone stores blocks raw.
	CompressionNone Compression = 0
	// CompressionLZ4 uses LZ4 block compression (fast, good for hot data).
	CompressionLZ4 Compression = 1
	// CompressionZSTD uses ZSTD (better ratio, good for cold data).
	CompressionZSTD Compression = 2
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("Compression(%d)", uint8(c))
	}
}

func (c Compression) valid() bool { return c <= CompressionZSTD }

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func putZstdEncoder(enc *zstd.Encoder) {
	zstdEncoderPool.Put(enc)
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	return dec
}

func putZstdDecoder(dec *zstd.Decoder) {
	zstdDecoderPool.Put(dec)
}

const (
	blockHeaderSize = 8
	maxBlockSize    = 1 << 31
)

// appendBlock appends data as a framed block:
// [uncompressed u32][compressed u32, 0 = raw][data].
// Data that does not shrink below 90% is stored raw.
func appendBlock(dst, data []byte, c Compression) ([]byte, error) {
	var compressed []byte
	switch c {
	case CompressionNone:
	case CompressionLZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil {
			return dst, err
		}
		compressed = buf[:n]
	case CompressionZSTD:
		enc := getZstdEncoder()
		compressed = enc.EncodeAll(data, nil)
		putZstdEncoder(enc)
	default:
		return dst, fmt.Errorf("%w: %d", ErrUnknownCompression, c)
	}

	dst = binary.LittleEndian.AppendUint32(dst, uint32(len(data)))
	if len(compressed) == 0 || float64(len(compressed)) > float64(len(data))*0.9 {
		dst = binary.LittleEndian.AppendUint32(dst, 0)
		return append(dst, data...), nil
	}
	dst = binary.LittleEndian.AppendUint32(dst, uint32(len(compressed)))
	return append(dst, compressed...), nil
}

// readBlock decodes one framed block from the front of src and returns it
// together with the number of bytes consumed.
func readBlock(src []byte, c Compression) ([]byte, int, error) {
	if len(src) < blockHeaderSize {
		return nil, 0, fmt.Errorf("%w: block header truncated", ErrCorruptBlock)
	}
	uncompressedSize := binary.LittleEndian.Uint32(src[0:])
	compressedSize := binary.LittleEndian.Uint32(src[4:])
	body := src[blockHeaderSize:]

	if compressedSize == 0 {
		if uint64(len(body)) < uint64(uncompressedSize) {
			return nil, 0, fmt.Errorf("%w: raw block needs %d bytes, have %d", ErrCorruptBlock, uncompressedSize, len(body))
		}
		return body[:uncompressedSize:uncompressedSize], blockHeaderSize + int(uncompressedSize), nil
	}

	if uint64(len(body)) < uint64(compressedSize) {
		return nil, 0, fmt.Errorf("%w: compressed block needs %d bytes, have %d", ErrCorruptBlock, compressedSize, len(body))
	}
	if uncompressedSize > maxBlockSize {
		return nil, 0, fmt.Errorf("%w: block of %d bytes", ErrCorruptBlock, uncompressedSize)
	}
	compressedData := body[:compressedSize]
	result := make([]byte, uncompressedSize)

	switch c {
	case CompressionLZ4:
		n, err := lz4.UncompressBlock(compressedData, result)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: %w", ErrCorruptBlock, err)
		}
		if uint32(n) != uncompressedSize {
			return nil, 0, fmt.Errorf("%w: decompressed size mismatch", ErrCorruptBlock)
		}
	case CompressionZSTD:
		dec := getZstdDecoder()
		decoded, err := dec.DecodeAll(compressedData, result[:0])
		putZstdDecoder(dec)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: %w", ErrCorruptBlock, err)
		}
		if uint32(len(decoded)) != uncompressedSize {
			return nil, 0, fmt.Errorf("%w: decompressed size mismatch", ErrCorruptBlock)
		}
		result = decoded
	default:
		return nil, 0, fmt.Errorf("%w: compressed block under %s", ErrCorruptBlock, c)
	}
	return result, blockHeaderSize + int(compressedSize), nil
}
