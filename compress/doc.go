// Package compress provides pluggable compression backends and the factory that
// selects them.
//
// # Overview
//
// Every backend implements the Backend contract: one-shot Compress/Decompress on
// complete in-memory buffers, a stable Name/Version identity, level and Options
// accessors, and a statistics toggle that records each operation into a
// stats.Manager under the backend's name.
//
// # Supported Backends
//
// **Null** (NameNull)
//
// Identity copy. Always available and the last entry of PriorityOrder, so
// auto-selection always terminates. Decompress rejects uniform 0x00/0xFF buffers
// as corrupt.
//
// **Zstd** (NameZstd)
//
// Zstandard frames that always declare their content size. The default build uses
// the pure Go codec from github.com/klauspost/compress/zstd; building with cgo and
// the gozstd tag links libzstd through github.com/valyala/gozstd instead.
// Supports levels -131072..22, window log, strategy and raw dictionaries.
//
// **LZ4** (NameLZ4)
//
// LZ4 blocks from github.com/pierrec/lz4/v4 with a small length header. Level 0
// is the fast compressor, 1..9 select HC levels.
//
// **Zlib** (NameZlib)
//
// RFC 1950 streams with optional preset dictionary, levels -2..9.
//
// **S2** (NameS2)
//
// Snappy-compatible S2 blocks. Registered, but not part of PriorityOrder.
//
// # Factory
//
//	f := compress.NewFactory(stats.NewManager())
//	compress.RegisterBuiltins(f)
//
//	b, err := f.CreateBest()
//	if err != nil {
//		return err
//	}
//	defer b.Close()
//
//	compressed, err := b.Compress(data)
//
// # Errors
//
// Failures wrap one of the package sentinels (ErrInvalidInput,
// ErrInvalidConfiguration, ErrBackendUnavailable, ErrUnknownBackend,
// ErrNoBackendsAvailable, ErrCompressionFailed, ErrInvalidFrame,
// ErrSizeMismatch, ErrCorruptData); use errors.Is to classify them.
//
// # Thread Safety
//
// Factory is safe for concurrent use. Backend instances are not: use one
// instance per goroutine or serialize calls.
package compress
