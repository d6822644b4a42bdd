package compress

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"

	"github.com/arloliu/goethe/internal/pool"
	"github.com/arloliu/goethe/stats"
)

// Zlib level bounds: -2 is Huffman-only, -1 the library default.
const (
	MinZlibLevel = zlib.HuffmanOnly
	MaxZlibLevel = zlib.BestCompression

	// ZlibVersion is reported by ZlibBackend.Version.
	ZlibVersion = "klauspost-1.18"
)

// ZlibBackend compresses into zlib (RFC 1950) streams. In dictionary mode the
// preset dictionary is given to both the writer and the reader.
type ZlibBackend struct {
	base
}

var _ Backend = (*ZlibBackend)(nil)

// NewZlibBackend creates a ZlibBackend at the default level.
//
// Parameters:
//   - opts: Optional backend options (stats manager, level, dictionary, statistics toggle)
//
// Returns:
//   - *ZlibBackend: The configured backend
//   - error: ErrInvalidConfiguration if an option or level is out of range
func NewZlibBackend(opts ...BackendOption) (*ZlibBackend, error) {
	cfg, err := newBackendConfig(opts...)
	if err != nil {
		return nil, err
	}

	b := &ZlibBackend{}
	b.init(NameZlib, ZlibVersion, cfg)
	if err := b.SetOptions(cfg.Options); err != nil {
		return nil, err
	}

	return b, nil
}

// IsAvailable always reports true; the codec is pure Go.
func (b *ZlibBackend) IsAvailable() bool { return true }

// Compress encodes data as one zlib stream.
func (b *ZlibBackend) Compress(data []byte) ([]byte, error) {
	return b.run(stats.OpCompress, data, b.compress)
}

func (b *ZlibBackend) compress(data []byte) ([]byte, error) {
	buf := pool.GetCodecBuffer()
	defer pool.PutCodecBuffer(buf)

	w, err := zlib.NewWriterLevelDict(buf, b.opts.Level, b.opts.dictionary())
	if err != nil {
		return nil, fmt.Errorf("%w: zlib: %v", ErrCompressionFailed, err)
	}
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("%w: zlib: %v", ErrCompressionFailed, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("%w: zlib: %v", ErrCompressionFailed, err)
	}

	return buf.Clone(), nil
}

// Decompress inflates one zlib stream. Output beyond the input limit fails
// with ErrSizeMismatch.
func (b *ZlibBackend) Decompress(data []byte) ([]byte, error) {
	return b.run(stats.OpDecompress, data, b.decompress)
}

func (b *ZlibBackend) decompress(data []byte) ([]byte, error) {
	r, err := zlib.NewReaderDict(bytes.NewReader(data), b.opts.dictionary())
	if err != nil {
		return nil, zlibError(err)
	}
	defer r.Close()

	buf := pool.GetCodecBuffer()
	defer pool.PutCodecBuffer(buf)

	limit := int64(maxInputSize)
	if _, err := buf.ReadFrom(io.LimitReader(r, limit+1)); err != nil {
		return nil, zlibError(err)
	}
	if int64(buf.Len()) > limit {
		return nil, fmt.Errorf("%w: zlib: output exceeds %d bytes", ErrSizeMismatch, limit)
	}

	return buf.Clone(), nil
}

func zlibError(err error) error {
	if errors.Is(err, zlib.ErrHeader) {
		return fmt.Errorf("%w: zlib: %v", ErrInvalidFrame, err)
	}

	return fmt.Errorf("%w: zlib: %v", ErrCorruptData, err)
}

// SetCompressionLevel sets the level in -2..9.
func (b *ZlibBackend) SetCompressionLevel(level int) error {
	if err := checkRange("zlib level", level, MinZlibLevel, MaxZlibLevel); err != nil {
		return err
	}
	b.opts.Level = level

	return nil
}

// SetOptions applies the level and dictionary. Window log and strategy are
// stored but have no zlib equivalent here.
func (b *ZlibBackend) SetOptions(o Options) error {
	if err := checkRange("zlib level", o.Level, MinZlibLevel, MaxZlibLevel); err != nil {
		return err
	}
	b.opts = o.Clone()

	return nil
}

// Close is a no-op.
func (b *ZlibBackend) Close() error { return nil }
