package compress

import (
	"fmt"
	"io"
	"math"
	"sync/atomic"

	"github.com/arloliu/goethe/stats"
)

// Backend is a compression algorithm behind a uniform contract.
//
// Compress and Decompress return a newly allocated buffer owned by the caller.
// Zero-length input yields an empty, non-nil result without touching the codec.
// Every other call produces exactly one statistics record while statistics are
// enabled, whether it succeeds or fails.
//
// A Backend instance is not safe for concurrent use; serialize calls per
// instance or create one instance per goroutine.
type Backend interface {
	io.Closer

	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)

	// Name and Version identify the backend and key its statistics. They
	// never change for an instance.
	Name() string
	Version() string
	// IsAvailable reports whether the codec resources initialized successfully.
	IsAvailable() bool

	SetCompressionLevel(level int) error
	CompressionLevel() int
	// SetOptions applies o to both directions before the next call.
	SetOptions(o Options) error
	Options() Options

	EnableStatistics(enable bool)
	StatisticsEnabled() bool
	Statistics() stats.BackendStats
	ResetStatistics()
}

// maxInputSize bounds a single buffer. Tests lower it to exercise ErrInvalidInput.
var maxInputSize = math.MaxInt32

type codecFunc func(data []byte) ([]byte, error)

// base carries identity, options and statistics plumbing common to every backend.
type base struct {
	name    string
	version string
	opts    Options

	stats        *stats.Manager
	statsEnabled atomic.Bool
}

func (b *base) init(name, version string, cfg *BackendConfig) {
	b.name = name
	b.version = version
	b.opts = DefaultOptions()
	b.stats = cfg.Stats
	b.statsEnabled.Store(cfg.Statistics)
}

func (b *base) Name() string    { return b.name }
func (b *base) Version() string { return b.version }

func (b *base) CompressionLevel() int { return b.opts.Level }

func (b *base) Options() Options { return b.opts.Clone() }

func (b *base) EnableStatistics(enable bool) { b.statsEnabled.Store(enable) }

func (b *base) StatisticsEnabled() bool { return b.statsEnabled.Load() }

func (b *base) Statistics() stats.BackendStats {
	return b.stats.BackendStats(b.name)
}

func (b *base) ResetStatistics() {
	b.stats.ResetBackendStats(b.name)
}

// run validates data, short-circuits empty input and wraps fn in a recording
// scope when statistics are enabled.
func (b *base) run(op stats.Operation, data []byte, fn codecFunc) ([]byte, error) {
	if len(data) > maxInputSize {
		return nil, fmt.Errorf("%w: %s %s: %d bytes exceeds limit of %d",
			ErrInvalidInput, b.name, op, len(data), maxInputSize)
	}
	if len(data) == 0 {
		return []byte{}, nil
	}
	if !b.statsEnabled.Load() {
		return fn(data)
	}

	scope := b.stats.NewScope(b.name, b.version, op)
	defer scope.Close()

	out, err := fn(data)
	if err != nil {
		scope.SetSizes(len(data), 0)
		scope.SetSuccess(false, err.Error())

		return nil, err
	}
	scope.SetSizes(len(data), len(out))
	scope.SetSuccess(true, "")

	return out, nil
}

// checkRange returns ErrInvalidConfiguration when v is outside [lo, hi].
func checkRange(what string, v, lo, hi int) error {
	if v < lo || v > hi {
		return fmt.Errorf("%w: %s %d outside [%d, %d]", ErrInvalidConfiguration, what, v, lo, hi)
	}

	return nil
}
