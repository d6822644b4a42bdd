// Package goethe exposes a pluggable compression subsystem behind one facade.
//
// A Manager holds exactly one active compression backend, chosen by name or
// automatically by priority (zstd, lz4, zlib, null), and routes every
// compress/decompress call through it. Each operation is recorded in a
// stats.Manager, which aggregates per-backend and global counters and exports
// them as JSON, CSV or Prometheus metrics.
//
// # Basic Usage
//
//	m, err := goethe.NewManager(goethe.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	if err := m.Initialize(""); err != nil { // best available backend
//		return err
//	}
//	defer m.Close()
//
//	compressed, err := m.Compress(payload)
//	...
//	restored, err := m.Decompress(compressed)
//
// The package-level Compress and Decompress functions use the process-wide
// Default manager and initialize it with the given backend on first use:
//
//	compressed, err := goethe.Compress(payload, "zstd")
//
// # Configuration
//
// A Manager can also be configured from YAML:
//
//	backend: zstd
//	statistics: true
//	options:
//	  level: 9
//	  windowLog: 20
//
//	cfg, err := goethe.LoadConfig("compression.yaml")
//	err = m.ApplyConfig(cfg)
//
// # Package Structure
//
// Backends and the factory live in the compress package; counters, timers and
// exporters live in the stats package.
package goethe

import (
	"sync"

	"github.com/arloliu/goethe/compress"
	"github.com/arloliu/goethe/stats"
)

var (
	defaultManager     *Manager
	defaultManagerOnce sync.Once
)

// Default returns the process-wide Manager, backed by compress.DefaultFactory
// and stats.Default. It must be initialized before use.
func Default() *Manager {
	defaultManagerOnce.Do(func() {
		defaultManager = newManager(&ManagerConfig{
			Factory: compress.DefaultFactory(),
			Stats:   stats.Default(),
		})
	})

	return defaultManager
}

// Compress compresses data with the Default manager, initializing it with
// backend first if needed. An empty backend selects the best available one.
// The backend argument is ignored once the manager is initialized.
func Compress(data []byte, backend string) ([]byte, error) {
	m := Default()
	if err := m.ensureInitialized(backend); err != nil {
		return nil, err
	}

	return m.Compress(data)
}

// Decompress decompresses data with the Default manager, initializing it with
// backend first if needed.
func Decompress(data []byte, backend string) ([]byte, error) {
	m := Default()
	if err := m.ensureInitialized(backend); err != nil {
		return nil, err
	}

	return m.Decompress(data)
}
