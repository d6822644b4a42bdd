package compress

import (
	"encoding/binary"
	"fmt"

	"github.com/pierrec/lz4/v4"

	"github.com/arloliu/goethe/stats"
)

// LZ4 level bounds. Level 0 uses the fast block compressor, 1..9 the HC compressor.
const (
	MinLZ4Level = 0
	MaxLZ4Level = 9

	// LZ4Version is reported by LZ4Backend.Version.
	LZ4Version = "pierrec-4.1"
)

// LZ4 payload modes, stored in the first byte.
const (
	lz4ModeStored byte = 0
	lz4ModeBlock  byte = 1
)

// lz4MaxExpansion is the most output one block byte can produce: a match
// length extension byte adds at most 255 bytes.
const lz4MaxExpansion = 255

var lz4HCLevels = [...]lz4.CompressionLevel{
	lz4.Fast,
	lz4.Level1, lz4.Level2, lz4.Level3,
	lz4.Level4, lz4.Level5, lz4.Level6,
	lz4.Level7, lz4.Level8, lz4.Level9,
}

// LZ4Backend compresses with LZ4 blocks.
//
// The raw block format does not record the decoded length, so each payload is
// prefixed with a mode byte and the uvarint original length. Input the block
// compressor cannot shrink is stored as is.
type LZ4Backend struct {
	base
	fast lz4.Compressor
	hc   lz4.CompressorHC
}

var _ Backend = (*LZ4Backend)(nil)

// NewLZ4Backend creates an LZ4Backend. The default level 6 selects HC compression.
//
// Parameters:
//   - opts: Optional backend options (stats manager, level, statistics toggle)
//
// Returns:
//   - *LZ4Backend: The configured backend
//   - error: ErrInvalidConfiguration if an option or level is out of range
func NewLZ4Backend(opts ...BackendOption) (*LZ4Backend, error) {
	cfg, err := newBackendConfig(opts...)
	if err != nil {
		return nil, err
	}

	b := &LZ4Backend{}
	b.init(NameLZ4, LZ4Version, cfg)
	if err := b.SetOptions(cfg.Options); err != nil {
		return nil, err
	}

	return b, nil
}

// IsAvailable always reports true; the codec is pure Go.
func (b *LZ4Backend) IsAvailable() bool { return true }

// Compress encodes data as a mode byte, the uvarint length and the LZ4 block.
func (b *LZ4Backend) Compress(data []byte) ([]byte, error) {
	return b.run(stats.OpCompress, data, b.compress)
}

func (b *LZ4Backend) compress(data []byte) ([]byte, error) {
	header := make([]byte, 1+binary.MaxVarintLen64)
	header[0] = lz4ModeBlock
	hn := 1 + binary.PutUvarint(header[1:], uint64(len(data)))

	dst := make([]byte, hn+lz4.CompressBlockBound(len(data)))
	copy(dst, header[:hn])

	var (
		n   int
		err error
	)
	if b.opts.Level == 0 {
		n, err = b.fast.CompressBlock(data, dst[hn:])
	} else {
		n, err = b.hc.CompressBlock(data, dst[hn:])
	}
	if err != nil {
		return nil, fmt.Errorf("%w: lz4: %v", ErrCompressionFailed, err)
	}

	if n == 0 || n >= len(data) {
		dst = append(dst[:hn], data...)
		dst[0] = lz4ModeStored

		return dst, nil
	}

	return dst[:hn+n], nil
}

// Decompress decodes a payload produced by Compress. A declared length the
// block cannot produce is rejected with ErrInvalidFrame before allocating.
func (b *LZ4Backend) Decompress(data []byte) ([]byte, error) {
	return b.run(stats.OpDecompress, data, b.decompress)
}

func (b *LZ4Backend) decompress(data []byte) ([]byte, error) {
	mode := data[0]
	size, hn := binary.Uvarint(data[1:])
	if hn <= 0 || size > uint64(maxInputSize) {
		return nil, fmt.Errorf("%w: lz4: bad length header", ErrInvalidFrame)
	}
	payload := data[1+hn:]

	switch mode {
	case lz4ModeStored:
		if uint64(len(payload)) != size {
			return nil, fmt.Errorf("%w: lz4: header declares %d bytes, stored %d", ErrSizeMismatch, size, len(payload))
		}

		return append([]byte(nil), payload...), nil
	case lz4ModeBlock:
		if size > lz4MaxExpansion*uint64(len(payload))+16 {
			return nil, fmt.Errorf("%w: lz4: header declares %d bytes, %d byte block cannot produce it", ErrInvalidFrame, size, len(payload))
		}
		out := make([]byte, size)
		n, err := lz4.UncompressBlock(payload, out)
		if err != nil {
			return nil, fmt.Errorf("%w: lz4: %v", ErrCorruptData, err)
		}
		if uint64(n) != size {
			return nil, fmt.Errorf("%w: lz4: header declares %d bytes, decoded %d", ErrSizeMismatch, size, n)
		}

		return out, nil
	default:
		return nil, fmt.Errorf("%w: lz4: unknown mode %d", ErrInvalidFrame, mode)
	}
}

// SetCompressionLevel sets the level, 0 for the fast compressor or 1..9 for HC.
func (b *LZ4Backend) SetCompressionLevel(level int) error {
	if err := checkRange("lz4 level", level, MinLZ4Level, MaxLZ4Level); err != nil {
		return err
	}
	b.opts.Level = level
	b.hc.Level = lz4HCLevels[level]

	return nil
}

// SetOptions applies the level. LZ4 has no dictionary, window or strategy
// settings; they are stored and reported back unchanged.
func (b *LZ4Backend) SetOptions(o Options) error {
	if err := checkRange("lz4 level", o.Level, MinLZ4Level, MaxLZ4Level); err != nil {
		return err
	}
	b.opts = o.Clone()
	b.hc.Level = lz4HCLevels[o.Level]

	return nil
}

// Close is a no-op.
func (b *LZ4Backend) Close() error { return nil }
