// Package stats records compression and decompression operations and exports
// aggregated per-backend metrics.
//
// # Overview
//
// Every backend operation produces one OperationStats record. A Manager folds
// those records into long-lived BackendStats counters, one set per backend name
// plus a global aggregate across all names:
//
//	m := stats.NewManager()
//	scope := m.NewScope("zstd", "1.5.6", stats.OpCompress)
//	defer scope.Close()
//
//	out, err := codec(data)
//	if err != nil {
//	    scope.SetSizes(len(data), 0)
//	    scope.SetSuccess(false, err.Error())
//	    return nil, err
//	}
//	scope.SetSizes(len(data), len(out))
//	scope.SetSuccess(true, "")
//
// A RecordingScope records exactly once. Close records a failure with the
// message "Operation not completed" when SetSuccess was never reached, so an
// early return or a panic between NewScope and SetSuccess is still counted.
//
// # Thread Safety
//
// A Manager guards its enabled flag, the per-backend map and the global
// aggregate with a single mutex. Record, query, reset and export calls are
// linearized; snapshots returned to callers are value copies, never live views.
//
// Timer and RecordingScope are not safe for concurrent use; each operation owns
// its own scope.
//
// # Export
//
// ExportJSON and ExportCSV render the global aggregate followed by every
// backend, sorted by name, with raw counters and derived metrics computed from
// one consistent snapshot. NewCollector exposes the same data to Prometheus.
//
// # Process-wide Instance
//
// Default returns the process-wide Manager. Components accept a *Manager so
// tests can use isolated instances from NewManager.
package stats
