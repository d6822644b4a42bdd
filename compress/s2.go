package compress

import (
	"encoding/binary"
	"fmt"

	"github.com/klauspost/compress/s2"

	"github.com/arloliu/goethe/stats"
)

// S2 level bounds.
const (
	MinS2Level = 0
	MaxS2Level = 9

	// S2Version is reported by S2Backend.Version.
	S2Version = "klauspost-1.18"
)

// s2MaxExpansion bounds the output per block byte. The longest repeat code
// takes 5 bytes and copies a little under 1<<24 bytes.
const s2MaxExpansion = 1 << 22

// S2Backend compresses with S2, the Snappy-compatible block format. Levels 0-3
// use the default encoder, 4-7 the better encoder and 8-9 the best encoder.
//
// S2 is registered by RegisterBuiltins but takes no part in auto-selection.
type S2Backend struct {
	base
}

var _ Backend = (*S2Backend)(nil)

// NewS2Backend creates an S2Backend at the default level.
//
// Parameters:
//   - opts: Optional backend options (stats manager, level, statistics toggle)
//
// Returns:
//   - *S2Backend: The configured backend
//   - error: ErrInvalidConfiguration if an option or level is out of range
func NewS2Backend(opts ...BackendOption) (*S2Backend, error) {
	cfg, err := newBackendConfig(opts...)
	if err != nil {
		return nil, err
	}

	b := &S2Backend{}
	b.init(NameS2, S2Version, cfg)
	if err := b.SetOptions(cfg.Options); err != nil {
		return nil, err
	}

	return b, nil
}

// IsAvailable always reports true; the codec is pure Go.
func (b *S2Backend) IsAvailable() bool { return true }

// Compress encodes data as one S2 block.
func (b *S2Backend) Compress(data []byte) ([]byte, error) {
	return b.run(stats.OpCompress, data, func(in []byte) ([]byte, error) {
		dst := make([]byte, s2.MaxEncodedLen(len(in)))
		switch {
		case b.opts.Level >= 8:
			return s2.EncodeBest(dst, in), nil
		case b.opts.Level >= 4:
			return s2.EncodeBetter(dst, in), nil
		default:
			return s2.Encode(dst, in), nil
		}
	})
}

// Decompress decodes one S2 block. A declared length above the input limit
// or beyond what the block can produce is rejected with ErrInvalidFrame
// before allocating.
func (b *S2Backend) Decompress(data []byte) ([]byte, error) {
	return b.run(stats.OpDecompress, data, func(in []byte) ([]byte, error) {
		n, err := s2.DecodedLen(in)
		if err != nil {
			return nil, fmt.Errorf("%w: s2: %v", ErrInvalidFrame, err)
		}
		_, hn := binary.Uvarint(in)
		if n > maxInputSize || uint64(n) > s2MaxExpansion*uint64(len(in)-hn) {
			return nil, fmt.Errorf("%w: s2: header declares %d bytes, %d byte block cannot produce it", ErrInvalidFrame, n, len(in)-hn)
		}
		out, err := s2.Decode(make([]byte, n), in)
		if err != nil {
			return nil, fmt.Errorf("%w: s2: %v", ErrCorruptData, err)
		}

		return out, nil
	})
}

// SetCompressionLevel sets the level in 0..9.
func (b *S2Backend) SetCompressionLevel(level int) error {
	if err := checkRange("s2 level", level, MinS2Level, MaxS2Level); err != nil {
		return err
	}
	b.opts.Level = level

	return nil
}

// SetOptions applies the level. Dictionary, window log and strategy are
// stored but unused.
func (b *S2Backend) SetOptions(o Options) error {
	if err := checkRange("s2 level", o.Level, MinS2Level, MaxS2Level); err != nil {
		return err
	}
	b.opts = o.Clone()

	return nil
}

// Close is a no-op.
func (b *S2Backend) Close() error { return nil }
