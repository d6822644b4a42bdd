package goethe

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/arloliu/goethe/compress"
	"github.com/arloliu/goethe/internal/options"
	"github.com/arloliu/goethe/stats"
)

// ErrNotInitialized is returned by Manager operations called before Initialize.
var ErrNotInitialized = errors.New("compression manager not initialized")

const (
	uninitializedName    = "uninitialized"
	uninitializedVersion = "unknown"
)

// ManagerConfig holds the collaborators of a Manager.
type ManagerConfig struct {
	// Factory resolves backend names. When nil, a private factory with every
	// built-in backend registered is created.
	Factory *compress.Factory
	// Stats is the statistics store. Defaults to the factory's store.
	Stats  *stats.Manager
	Logger *zap.Logger
}

// ManagerOption configures a ManagerConfig.
type ManagerOption = options.Option[*ManagerConfig]

// WithFactory uses f to create backends. Registration on f is left to the caller.
func WithFactory(f *compress.Factory) ManagerOption {
	return options.New(func(c *ManagerConfig) error {
		if f == nil {
			return fmt.Errorf("%w: nil factory", compress.ErrInvalidConfiguration)
		}
		c.Factory = f

		return nil
	})
}

// WithStats records statistics into m.
func WithStats(m *stats.Manager) ManagerOption {
	return options.New(func(c *ManagerConfig) error {
		if m == nil {
			return fmt.Errorf("%w: nil statistics manager", compress.ErrInvalidConfiguration)
		}
		c.Stats = m

		return nil
	})
}

// WithLogger sets the logger for backend selection and configuration events.
func WithLogger(l *zap.Logger) ManagerOption {
	return options.NoError(func(c *ManagerConfig) {
		c.Logger = l
	})
}

// Manager is a facade over one active compression backend.
//
// All methods are safe for concurrent use; calls through one Manager are
// serialized, since backend instances are not safe for concurrent use.
type Manager struct {
	mu      sync.Mutex
	factory *compress.Factory
	stats   *stats.Manager
	logger  *zap.Logger
	backend compress.Backend
}

// NewManager creates an uninitialized Manager.
func NewManager(opts ...ManagerOption) (*Manager, error) {
	cfg := &ManagerConfig{}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return newManager(cfg), nil
}

func newManager(cfg *ManagerConfig) *Manager {
	m := &Manager{
		factory: cfg.Factory,
		stats:   cfg.Stats,
		logger:  cfg.Logger,
	}
	if m.factory == nil {
		m.factory = compress.NewFactory(m.stats)
		compress.RegisterBuiltins(m.factory)
	}
	if m.stats == nil {
		m.stats = m.factory.Stats()
	}
	if m.logger == nil {
		m.logger = zap.NewNop()
	}

	return m
}

// Initialize selects the named backend, or the best available one when name is
// empty, replacing any backend held before. Factory errors are returned as is
// and leave the current backend in place.
func (m *Manager) Initialize(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.initializeLocked(name)
}

func (m *Manager) ensureInitialized(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.backend != nil {
		return nil
	}

	return m.initializeLocked(name)
}

func (m *Manager) initializeLocked(name string) error {
	b, err := m.create(name)
	if err != nil {
		return err
	}
	m.replaceLocked(b)
	m.logger.Info("compression backend selected",
		zap.String("requested", name),
		zap.String("backend", b.Name()),
		zap.String("version", b.Version()),
	)

	return nil
}

// create builds a backend recording into m.stats.
func (m *Manager) create(name string) (compress.Backend, error) {
	opts := []compress.BackendOption{compress.WithStatsManager(m.stats)}
	if name == "" {
		return m.factory.CreateBest(opts...)
	}

	return m.factory.Create(name, opts...)
}

func (m *Manager) replaceLocked(b compress.Backend) {
	old := m.backend
	m.backend = b
	if old == nil {
		return
	}
	if err := old.Close(); err != nil {
		m.logger.Warn("close replaced backend", zap.String("backend", old.Name()), zap.Error(err))
	}
}

// SwitchBackend replaces the active backend with a new instance of name. On
// failure the current backend stays active; the error is logged, never returned.
func (m *Manager) SwitchBackend(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, err := m.factory.Create(name, compress.WithStatsManager(m.stats))
	if err != nil {
		current := uninitializedName
		if m.backend != nil {
			current = m.backend.Name()
		}
		m.logger.Warn("backend switch rejected",
			zap.String("requested", name),
			zap.String("current", current),
			zap.Error(err),
		)

		return
	}

	m.replaceLocked(b)
	m.logger.Info("compression backend switched",
		zap.String("backend", b.Name()),
		zap.String("version", b.Version()),
	)
}

// active returns the held backend or ErrNotInitialized. Callers hold m.mu.
func (m *Manager) active() (compress.Backend, error) {
	if m.backend == nil {
		return nil, ErrNotInitialized
	}

	return m.backend, nil
}

// Compress compresses data with the active backend.
func (m *Manager) Compress(data []byte) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, err := m.active()
	if err != nil {
		return nil, err
	}

	return b.Compress(data)
}

// Decompress decompresses data with the active backend.
func (m *Manager) Decompress(data []byte) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, err := m.active()
	if err != nil {
		return nil, err
	}

	return b.Decompress(data)
}

// CompressString compresses the bytes of s.
func (m *Manager) CompressString(s string) ([]byte, error) {
	return m.Compress([]byte(s))
}

// DecompressString decompresses data and returns it as a string.
func (m *Manager) DecompressString(data []byte) (string, error) {
	out, err := m.Decompress(data)
	if err != nil {
		return "", err
	}

	return string(out), nil
}

// SetCompressionLevel sets the level on the active backend.
func (m *Manager) SetCompressionLevel(level int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, err := m.active()
	if err != nil {
		return err
	}

	return b.SetCompressionLevel(level)
}

// CompressionLevel returns the active backend's level.
func (m *Manager) CompressionLevel() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, err := m.active()
	if err != nil {
		return 0, err
	}

	return b.CompressionLevel(), nil
}

// SetOptions applies o to the active backend.
func (m *Manager) SetOptions(o compress.Options) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, err := m.active()
	if err != nil {
		return err
	}

	return b.SetOptions(o)
}

// Options returns a copy of the active backend's options.
func (m *Manager) Options() (compress.Options, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, err := m.active()
	if err != nil {
		return compress.Options{}, err
	}

	return b.Options(), nil
}

// BackendName returns the active backend's name, or "uninitialized".
func (m *Manager) BackendName() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.backend == nil {
		return uninitializedName
	}

	return m.backend.Name()
}

// BackendVersion returns the active backend's version, or "unknown".
func (m *Manager) BackendVersion() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.backend == nil {
		return uninitializedVersion
	}

	return m.backend.Version()
}

// IsInitialized reports whether a backend is active.
func (m *Manager) IsInitialized() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.backend != nil
}

// AvailableBackends lists the factory's available backend names.
func (m *Manager) AvailableBackends() []string {
	return m.factory.AvailableBackends()
}

// Stats returns the statistics store the Manager records into.
func (m *Manager) Stats() *stats.Manager {
	return m.stats
}

// EnableStatistics toggles both the active backend's flag and the global flag.
func (m *Manager) EnableStatistics(enable bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.backend != nil {
		m.backend.EnableStatistics(enable)
	}
	m.stats.Enable(enable)
	m.logger.Debug("statistics toggled", zap.Bool("enabled", enable))
}

// StatisticsEnabled reports the global statistics flag.
func (m *Manager) StatisticsEnabled() bool {
	return m.stats.Enabled()
}

// Statistics returns a snapshot of the active backend's counters, or zero
// values before initialization.
func (m *Manager) Statistics() stats.BackendStats {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.backend == nil {
		return stats.BackendStats{}
	}

	return m.backend.Statistics()
}

// GlobalStatistics returns a snapshot of the global aggregate.
func (m *Manager) GlobalStatistics() stats.BackendStats {
	return m.stats.GlobalStats()
}

// ResetStatistics zeroes the active backend's counters.
func (m *Manager) ResetStatistics() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.backend != nil {
		m.backend.ResetStatistics()
		m.logger.Debug("backend statistics reset", zap.String("backend", m.backend.Name()))
	}
}

// ResetGlobalStatistics zeroes every backend's counters and the global aggregate.
func (m *Manager) ResetGlobalStatistics() {
	m.stats.ResetAllStats()
	m.logger.Debug("all statistics reset")
}

// ExportStatisticsJSON renders every counter as JSON.
func (m *Manager) ExportStatisticsJSON() (string, error) {
	return m.stats.ExportJSON()
}

// ExportStatisticsCSV renders every counter as CSV.
func (m *Manager) ExportStatisticsCSV() (string, error) {
	return m.stats.ExportCSV()
}

// Close releases the active backend. The Manager can be initialized again.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.backend == nil {
		return nil
	}
	err := m.backend.Close()
	m.backend = nil

	return err
}
