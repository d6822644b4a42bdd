package compress

import (
	"fmt"
	"slices"
	"sync"

	"go.uber.org/multierr"

	"github.com/arloliu/goethe/stats"
)

// Built-in backend names. Lookup is case-sensitive.
const (
	NameZstd = "zstd"
	NameLZ4  = "lz4"
	NameZlib = "zlib"
	NameS2   = "s2"
	NameNull = "null"
)

// PriorityOrder is the order CreateBest tries registered backends in.
var PriorityOrder = []string{NameZstd, NameLZ4, NameZlib, NameNull}

// Constructor builds a new backend instance.
type Constructor func(opts ...BackendOption) (Backend, error)

// Factory maps backend names to constructors. It never caches instances:
// every Create builds a new backend owned by the caller.
//
// A Factory is safe for concurrent use.
type Factory struct {
	mu           sync.RWMutex
	constructors map[string]Constructor
	stats        *stats.Manager
}

// NewFactory creates an empty Factory whose backends record into m.
// A nil m means stats.Default().
func NewFactory(m *stats.Manager) *Factory {
	if m == nil {
		m = stats.Default()
	}

	return &Factory{
		constructors: make(map[string]Constructor),
		stats:        m,
	}
}

var (
	defaultFactory     *Factory
	defaultFactoryOnce sync.Once
)

// DefaultFactory returns the process-wide factory with every built-in backend
// registered against stats.Default().
func DefaultFactory() *Factory {
	defaultFactoryOnce.Do(func() {
		defaultFactory = NewFactory(stats.Default())
		RegisterBuiltins(defaultFactory)
	})

	return defaultFactory
}

// RegisterBuiltins registers null, zstd, lz4, zlib and s2 on f, replacing
// any existing registration under those names.
func RegisterBuiltins(f *Factory) {
	f.Register(NameNull, func(opts ...BackendOption) (Backend, error) {
		return NewNullBackend(opts...)
	})
	f.Register(NameZstd, func(opts ...BackendOption) (Backend, error) {
		return NewZstdBackend(opts...)
	})
	f.Register(NameLZ4, func(opts ...BackendOption) (Backend, error) {
		return NewLZ4Backend(opts...)
	})
	f.Register(NameZlib, func(opts ...BackendOption) (Backend, error) {
		return NewZlibBackend(opts...)
	})
	f.Register(NameS2, func(opts ...BackendOption) (Backend, error) {
		return NewS2Backend(opts...)
	})
}

// Register adds or replaces the constructor for name.
func (f *Factory) Register(name string, c Constructor) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.constructors[name] = c
}

// Unregister removes name. Unknown names are ignored.
func (f *Factory) Unregister(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.constructors, name)
}

// Registered reports whether name has a constructor.
func (f *Factory) Registered(name string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.constructors[name]

	return ok
}

// Names returns every registered name, sorted.
func (f *Factory) Names() []string {
	f.mu.RLock()
	names := make([]string, 0, len(f.constructors))
	for name := range f.constructors {
		names = append(names, name)
	}
	f.mu.RUnlock()
	slices.Sort(names)

	return names
}

// Stats returns the statistics manager injected into created backends.
func (f *Factory) Stats() *stats.Manager {
	return f.stats
}

// Create builds a new backend registered under name.
//
// Returns ErrUnknownBackend for an unregistered name and ErrBackendUnavailable
// when the instance reports it is not available.
func (f *Factory) Create(name string, opts ...BackendOption) (Backend, error) {
	f.mu.RLock()
	c, ok := f.constructors[name]
	f.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}

	all := make([]BackendOption, 0, len(opts)+1)
	all = append(all, WithStatsManager(f.stats))
	all = append(all, opts...)

	b, err := c(all...)
	if err != nil {
		return nil, fmt.Errorf("create %s backend: %w", name, err)
	}
	if !b.IsAvailable() {
		return nil, multierr.Append(fmt.Errorf("%w: %s", ErrBackendUnavailable, name), b.Close())
	}

	return b, nil
}

// CreateBest returns the first backend in PriorityOrder that is registered
// and available.
func (f *Factory) CreateBest(opts ...BackendOption) (Backend, error) {
	var errs error
	for _, name := range PriorityOrder {
		if !f.Registered(name) {
			continue
		}
		b, err := f.Create(name, opts...)
		if err == nil {
			return b, nil
		}
		errs = multierr.Append(errs, err)
	}

	if errs != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoBackendsAvailable, errs)
	}

	return nil, ErrNoBackendsAvailable
}

// IsAvailable reports whether name is registered and a fresh instance is
// available. The probe instance is closed before returning.
func (f *Factory) IsAvailable(name string) bool {
	b, err := f.Create(name)
	if err != nil {
		return false
	}
	_ = b.Close()

	return true
}

// AvailableBackends returns the sorted names whose constructed instance is
// available. It builds and closes one instance per registered name.
func (f *Factory) AvailableBackends() []string {
	var names []string
	for _, name := range f.Names() {
		if f.IsAvailable(name) {
			names = append(names, name)
		}
	}

	return names
}
