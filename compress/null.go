package compress

import (
	"bytes"
	"fmt"

	"github.com/arloliu/goethe/stats"
)

// NullVersion is the version string reported by NullBackend.
const NullVersion = "1.0.0"

// NullBackend copies data unchanged in both directions.
//
// Decompress rejects buffers longer than one byte made entirely of 0x00 or 0xFF
// with ErrCorruptData. This is a heuristic guard against obviously garbage
// input, not an integrity check, and it also rejects legitimate uniform data.
type NullBackend struct {
	base
}

var _ Backend = (*NullBackend)(nil)

// NewNullBackend creates a NullBackend. Levels and options are accepted and ignored.
func NewNullBackend(opts ...BackendOption) (*NullBackend, error) {
	cfg, err := newBackendConfig(opts...)
	if err != nil {
		return nil, err
	}

	b := &NullBackend{}
	b.init(NameNull, NullVersion, cfg)

	return b, nil
}

// Compress returns a copy of data.
func (b *NullBackend) Compress(data []byte) ([]byte, error) {
	return b.run(stats.OpCompress, data, func(in []byte) ([]byte, error) {
		return bytes.Clone(in), nil
	})
}

// Decompress returns a copy of data after the uniform-buffer check.
func (b *NullBackend) Decompress(data []byte) ([]byte, error) {
	return b.run(stats.OpDecompress, data, func(in []byte) ([]byte, error) {
		if looksCorrupt(in) {
			return nil, fmt.Errorf("%w: null: uniform 0x%02x buffer of %d bytes", ErrCorruptData, in[0], len(in))
		}

		return bytes.Clone(in), nil
	})
}

func looksCorrupt(data []byte) bool {
	if len(data) <= 1 {
		return false
	}
	first := data[0]
	if first != 0x00 && first != 0xFF {
		return false
	}
	for _, c := range data[1:] {
		if c != first {
			return false
		}
	}

	return true
}

// IsAvailable always reports true.
func (b *NullBackend) IsAvailable() bool { return true }

// CompressionLevel is always 0.
func (b *NullBackend) CompressionLevel() int { return 0 }

// SetCompressionLevel is a no-op.
func (b *NullBackend) SetCompressionLevel(int) error { return nil }

// SetOptions is a no-op; Options keeps reporting the defaults.
func (b *NullBackend) SetOptions(Options) error { return nil }

// Close is a no-op.
func (b *NullBackend) Close() error { return nil }
