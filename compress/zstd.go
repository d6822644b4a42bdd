package compress

import (
	"fmt"

	"github.com/klauspost/compress/zstd"

	"github.com/arloliu/goethe/stats"
)

// Zstd parameter bounds.
const (
	MinZstdLevel = -131072
	MaxZstdLevel = 22

	// MinZstdWindowLog and MaxZstdWindowLog bound a non-zero window log.
	MinZstdWindowLog = 10
	MaxZstdWindowLog = 29

	MaxZstdStrategy = 9
)

const zstdBlockSizeMax = 128 << 10

// ZstdCompressBound returns the worst-case compressed size of n input bytes.
func ZstdCompressBound(n int) int {
	bound := n + n>>8
	if n < zstdBlockSizeMax {
		bound += (zstdBlockSizeMax - n) >> 11
	}

	return bound
}

// zstdParams is the full codec configuration pushed into an engine.
type zstdParams struct {
	level     int
	windowLog int
	strategy  int
	dict      []byte
}

// zstdEngine owns one compression and one decompression context. The default
// build uses the pure Go codec; building with cgo and the gozstd tag links libzstd.
type zstdEngine interface {
	configure(p zstdParams) error
	compress(dst, src []byte) ([]byte, error)
	decompress(dst, src []byte) ([]byte, error)
	version() string
	close() error
}

// ZstdBackend compresses with Zstandard. Each instance exclusively owns its
// codec contexts; Close releases them.
type ZstdBackend struct {
	base
	engine zstdEngine
}

var _ Backend = (*ZstdBackend)(nil)

// NewZstdBackend creates a ZstdBackend and applies any configured options.
//
// Returns ErrBackendUnavailable when the codec contexts cannot be created, and
// ErrInvalidConfiguration when the initial options are out of range.
func NewZstdBackend(opts ...BackendOption) (*ZstdBackend, error) {
	cfg, err := newBackendConfig(opts...)
	if err != nil {
		return nil, err
	}
	if err := validateZstdOptions(cfg.Options); err != nil {
		return nil, err
	}

	engine, err := newZstdEngine(zstdParams{level: DefaultLevel})
	if err != nil {
		return nil, fmt.Errorf("%w: zstd: %v", ErrBackendUnavailable, err)
	}

	b := &ZstdBackend{engine: engine}
	b.init(NameZstd, engine.version(), cfg)
	if err := b.SetOptions(cfg.Options); err != nil {
		_ = engine.close()
		return nil, err
	}

	return b, nil
}

// IsAvailable reports whether the codec contexts are still open.
func (b *ZstdBackend) IsAvailable() bool { return b.engine != nil }

// Compress encodes data as a single zstd frame that declares its content size.
func (b *ZstdBackend) Compress(data []byte) ([]byte, error) {
	return b.run(stats.OpCompress, data, b.compress)
}

func (b *ZstdBackend) compress(data []byte) ([]byte, error) {
	if b.engine == nil {
		return nil, fmt.Errorf("%w: zstd: closed", ErrBackendUnavailable)
	}

	bound := ZstdCompressBound(len(data))
	out, err := b.engine.compress(make([]byte, 0, bound), data)
	if err != nil {
		return nil, fmt.Errorf("%w: zstd: %v", ErrCompressionFailed, err)
	}
	if len(out) > bound {
		return nil, fmt.Errorf("%w: zstd: %d bytes exceeds bound %d", ErrCompressionFailed, len(out), bound)
	}

	return out, nil
}

// Decompress decodes a frame produced by Compress.
//
// The frame must declare its content size; the output is allocated to exactly
// that size and the decoded length must match it.
func (b *ZstdBackend) Decompress(data []byte) ([]byte, error) {
	return b.run(stats.OpDecompress, data, b.decompress)
}

func (b *ZstdBackend) decompress(data []byte) ([]byte, error) {
	if b.engine == nil {
		return nil, fmt.Errorf("%w: zstd: closed", ErrBackendUnavailable)
	}

	size, err := zstdFrameContentSize(data)
	if err != nil {
		return nil, err
	}

	out, err := b.engine.decompress(make([]byte, 0, size), data)
	if err != nil {
		return nil, fmt.Errorf("%w: zstd: %v", ErrCorruptData, err)
	}
	if len(out) != size {
		return nil, fmt.Errorf("%w: zstd: frame declares %d bytes, decoded %d", ErrSizeMismatch, size, len(out))
	}

	return out, nil
}

const zstdMaxBlockSize = 128 << 10

func zstdFrameContentSize(data []byte) (int, error) {
	var h zstd.Header
	if err := h.Decode(data); err != nil {
		return 0, fmt.Errorf("%w: zstd: %v", ErrInvalidFrame, err)
	}
	if h.Skippable || !h.HasFCS {
		return 0, fmt.Errorf("%w: zstd: frame does not declare its content size", ErrInvalidFrame)
	}
	if h.FrameContentSize > uint64(maxInputSize) {
		return 0, fmt.Errorf("%w: zstd: declared content size %d too large", ErrInvalidFrame, h.FrameContentSize)
	}
	// every block takes at least a 3 byte header and yields at most zstdMaxBlockSize
	if h.FrameContentSize > (uint64(len(data))/3+1)*zstdMaxBlockSize {
		return 0, fmt.Errorf("%w: zstd: declared content size %d exceeds what %d bytes can hold", ErrInvalidFrame, h.FrameContentSize, len(data))
	}

	return int(h.FrameContentSize), nil
}

// SetCompressionLevel validates level against the zstd level range and applies it.
func (b *ZstdBackend) SetCompressionLevel(level int) error {
	if err := checkRange("zstd level", level, MinZstdLevel, MaxZstdLevel); err != nil {
		return err
	}
	o := b.opts
	o.Level = level

	return b.apply(o)
}

// SetOptions validates o and loads it into both contexts.
func (b *ZstdBackend) SetOptions(o Options) error {
	if err := validateZstdOptions(o); err != nil {
		return err
	}

	return b.apply(o.Clone())
}

// SetWindowLog sets log2 of the match window; 0 restores the codec default.
func (b *ZstdBackend) SetWindowLog(windowLog int) error {
	if err := validateWindowLog(windowLog); err != nil {
		return err
	}
	o := b.opts
	o.WindowLog = windowLog

	return b.apply(o)
}

// SetStrategy sets the encoder strategy; 0 lets the level decide.
func (b *ZstdBackend) SetStrategy(strategy int) error {
	if err := checkRange("zstd strategy", strategy, 0, MaxZstdStrategy); err != nil {
		return err
	}
	o := b.opts
	o.Strategy = strategy

	return b.apply(o)
}

// SetDictionary loads dict into both contexts. An empty dict turns dictionary
// mode off.
func (b *ZstdBackend) SetDictionary(dict []byte) error {
	o := b.opts.Clone()
	o.Dictionary = append([]byte(nil), dict...)
	o.DictionaryMode = len(dict) > 0

	return b.apply(o)
}

// ClearDictionary removes the dictionary from both contexts.
func (b *ZstdBackend) ClearDictionary() error {
	o := b.opts
	o.Dictionary = nil
	o.DictionaryMode = false

	return b.apply(o)
}

func (b *ZstdBackend) apply(o Options) error {
	if b.engine == nil {
		return fmt.Errorf("%w: zstd: closed", ErrBackendUnavailable)
	}

	err := b.engine.configure(zstdParams{
		level:     o.Level,
		windowLog: o.WindowLog,
		strategy:  o.Strategy,
		dict:      o.dictionary(),
	})
	if err != nil {
		return fmt.Errorf("%w: zstd: %v", ErrInvalidConfiguration, err)
	}
	b.opts = o

	return nil
}

// Close releases both codec contexts. The backend is unavailable afterwards.
func (b *ZstdBackend) Close() error {
	if b.engine == nil {
		return nil
	}
	err := b.engine.close()
	b.engine = nil

	return err
}

func validateZstdOptions(o Options) error {
	if err := checkRange("zstd level", o.Level, MinZstdLevel, MaxZstdLevel); err != nil {
		return err
	}
	if err := validateWindowLog(o.WindowLog); err != nil {
		return err
	}

	return checkRange("zstd strategy", o.Strategy, 0, MaxZstdStrategy)
}

func validateWindowLog(windowLog int) error {
	if windowLog == 0 {
		return nil
	}

	return checkRange("zstd window log", windowLog, MinZstdWindowLog, MaxZstdWindowLog)
}
