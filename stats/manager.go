package stats

import (
	"slices"
	"sync"
)

// Manager aggregates operation records per backend name and globally.
//
// The zero value is not usable; create instances with NewManager or use the
// process-wide Default. Recording is enabled on a new Manager.
type Manager struct {
	mu       sync.Mutex
	enabled  bool
	backends map[string]*BackendStats
	global   BackendStats
}

// Snapshot is a consistent copy of a Manager's state taken under one lock.
type Snapshot struct {
	Enabled bool
	Global  BackendStats
	// Backends is sorted by BackendName.
	Backends []BackendStats
}

var defaultManager = NewManager()

// Default returns the process-wide Manager.
func Default() *Manager {
	return defaultManager
}

// NewManager creates an empty Manager with recording enabled.
func NewManager() *Manager {
	return &Manager{
		enabled:  true,
		backends: make(map[string]*BackendStats),
		global:   BackendStats{BackendName: GlobalName},
	}
}

// Enable turns recording on or off. Existing counters are kept.
func (m *Manager) Enable(enable bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.enabled = enable
}

// Enabled reports whether records are currently accepted.
func (m *Manager) Enabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.enabled
}

// RecordCompression folds one compression record into the backend's counters
// and the global aggregate. It is a no-op while recording is disabled.
func (m *Manager) RecordCompression(name, version string, rec OperationStats) {
	m.record(OpCompress, name, version, rec)
}

// RecordDecompression folds one decompression record into the backend's
// counters and the global aggregate. It is a no-op while recording is disabled.
func (m *Manager) RecordDecompression(name, version string, rec OperationStats) {
	m.record(OpDecompress, name, version, rec)
}

// Record dispatches rec by operation kind.
func (m *Manager) Record(op Operation, name, version string, rec OperationStats) {
	m.record(op, name, version, rec)
}

func (m *Manager) record(op Operation, name, version string, rec OperationStats) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.enabled {
		return
	}

	bs, ok := m.backends[name]
	if !ok {
		bs = &BackendStats{}
		m.backends[name] = bs
	}
	bs.BackendName = name
	bs.BackendVersion = version

	bs.record(op, rec)
	m.global.record(op, rec)
}

// BackendStats returns a snapshot of the named backend's counters. An unknown
// name yields zero counters carrying that name.
func (m *Manager) BackendStats(name string) BackendStats {
	m.mu.Lock()
	defer m.mu.Unlock()

	if bs, ok := m.backends[name]; ok {
		return *bs
	}

	return BackendStats{BackendName: name}
}

// GlobalStats returns a snapshot of the aggregate across all backends.
func (m *Manager) GlobalStats() BackendStats {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.global
}

// BackendNames returns the names that have recorded at least once, sorted.
func (m *Manager) BackendNames() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.sortedNamesLocked()
}

// Snapshot copies the enabled flag, the global aggregate and every backend
// under a single lock acquisition.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := m.sortedNamesLocked()
	snap := Snapshot{
		Enabled:  m.enabled,
		Global:   m.global,
		Backends: make([]BackendStats, 0, len(names)),
	}
	for _, name := range names {
		snap.Backends = append(snap.Backends, *m.backends[name])
	}

	return snap
}

// ResetBackendStats zeroes one backend's counters. The global aggregate is
// left untouched. Unknown names are ignored.
func (m *Manager) ResetBackendStats(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if bs, ok := m.backends[name]; ok {
		bs.Reset()
	}
}

// ResetAllStats zeroes every backend and the global aggregate.
func (m *Manager) ResetAllStats() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, bs := range m.backends {
		bs.Reset()
	}
	m.global.Reset()
}

func (m *Manager) sortedNamesLocked() []string {
	names := make([]string, 0, len(m.backends))
	for name := range m.backends {
		names = append(names, name)
	}
	slices.Sort(names)

	return names
}
